package subnettree

import (
	"encoding/binary"
	"net/netip"
)

// addr converts a dotted IPv4 address to its uint32 form.
func addr(s string) uint32 {
	a := netip.MustParseAddr(s).As4()
	return binary.BigEndian.Uint32(a[:])
}

// subnet converts a CIDR to a (network, bits) pair.
func subnet(s string) (uint32, int) {
	pfx := netip.MustParsePrefix(s)
	a := pfx.Addr().As4()
	return binary.BigEndian.Uint32(a[:]), pfx.Bits()
}

func prefixOf(network uint32, bits int) netip.Prefix {
	var a [4]byte
	binary.BigEndian.PutUint32(a[:], network)
	return netip.PrefixFrom(netip.AddrFrom4(a), bits).Masked()
}

func addrOf(val uint32) netip.Addr {
	var a [4]byte
	binary.BigEndian.PutUint32(a[:], val)
	return netip.AddrFrom4(a)
}

func mustInsert(tree *Tree, cidr, owner string) {
	network, bits := subnet(cidr)
	if err := tree.Insert(network, bits, owner); err != nil {
		panic(err)
	}
}

func mustRemove(tree *Tree, cidr, owner string) {
	network, bits := subnet(cidr)
	if err := tree.Remove(network, bits, owner); err != nil {
		panic(err)
	}
}
