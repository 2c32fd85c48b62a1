// Package cidr converts textual IPv4 addresses and subnets to the uint32
// form used by subnettree and back.
package cidr

import (
	"encoding/binary"
	"net/netip"
	"strings"

	"github.com/hideo55/go-popcount"
	"github.com/pkg/errors"
)

const addrBits = 32

// ErrInvalid is wrapped by every parsing error.
var ErrInvalid = errors.New("invalid IPv4 notation")

// ParseAddr parses a dotted IPv4 address.
func ParseAddr(s string) (uint32, error) {
	ip, err := netip.ParseAddr(s)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalid, "address %q: %v", s, err)
	}

	if !ip.Is4() {
		return 0, errors.Wrapf(ErrInvalid, "address %q is not IPv4", s)
	}

	return addrToUint(ip), nil
}

// ParsePrefix parses "a.b.c.d/n", "a.b.c.d/m.m.m.m" or a bare address
// (taken as /32). Host bits are kept as given.
func ParsePrefix(s string) (network uint32, bits int, err error) {
	host, mask, found := strings.Cut(s, "/")

	if !found {
		network, err = ParseAddr(s)
		return network, addrBits, err
	}

	if strings.Contains(mask, ".") {
		if network, err = ParseAddr(host); err != nil {
			return 0, 0, err
		}

		var m uint32
		if m, err = ParseAddr(mask); err != nil {
			return 0, 0, errors.Wrapf(ErrInvalid, "netmask of %q", s)
		}

		if bits, err = MaskBits(m); err != nil {
			return 0, 0, errors.Wrapf(err, "netmask of %q", s)
		}

		return network, bits, nil
	}

	pfx, err := netip.ParsePrefix(s)
	if err != nil {
		return 0, 0, errors.Wrapf(ErrInvalid, "prefix %q: %v", s, err)
	}

	if !pfx.Addr().Is4() {
		return 0, 0, errors.Wrapf(ErrInvalid, "prefix %q is not IPv4", s)
	}

	return addrToUint(pfx.Addr()), pfx.Bits(), nil
}

// MaskBits returns the prefix length of a netmask such as 0xFFFFFF00.
// Masks with holes are rejected.
func MaskBits(mask uint32) (int, error) {
	ones := int(popcount.Count(uint64(mask)))

	// a contiguous mask is all ones followed by all zeros
	if mask != ^uint32(0)<<(addrBits-ones) {
		return 0, errors.Wrapf(ErrInvalid, "netmask %s is not contiguous", FormatAddr(mask))
	}

	return ones, nil
}

// FormatAddr returns the dotted form of an address.
func FormatAddr(addr uint32) string {
	return uintToAddr(addr).String()
}

// FormatPrefix returns the canonical CIDR form of a subnet, host bits cleared.
func FormatPrefix(network uint32, bits int) string {
	return netip.PrefixFrom(uintToAddr(network), bits).Masked().String()
}

func addrToUint(ip netip.Addr) uint32 {
	a := ip.As4()
	return binary.BigEndian.Uint32(a[:])
}

func uintToAddr(val uint32) netip.Addr {
	var a [4]byte
	binary.BigEndian.PutUint32(a[:], val)
	return netip.AddrFrom4(a)
}
