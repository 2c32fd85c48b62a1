// Package rules loads owner-to-subnet rule files into a subnet tree.
//
// A rule file is a YAML document:
//
//	owners:
//	  - name: office
//	    cidrs:
//	      - 192.168.0.0/16
//	      - 10.1.0.0/255.255.0.0
//	  - name: dns
//	    cidrs: [8.8.8.8, 8.8.4.4]
package rules

import (
	"io"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/aglyzov/go-subnet/cidr"
)

// Owner is a named list of subnets.
type Owner struct {
	Name  string   `yaml:"name"`
	CIDRs []string `yaml:"cidrs"`
}

// Set is the content of a rule file.
type Set struct {
	Owners []Owner `yaml:"owners"`
}

// Inserter is implemented by *subnettree.Tree and *subnettree.Locked.
type Inserter interface {
	Insert(network uint32, bits int, owner string) error
}

// Load decodes and validates a rule set. Unknown keys are rejected; an empty
// document yields an empty set.
func Load(r io.Reader) (*Set, error) {
	var (
		set Set
		dec = yaml.NewDecoder(r)
	)

	dec.KnownFields(true)

	if err := dec.Decode(&set); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decoding rules")
	}

	if err := set.validate(); err != nil {
		return nil, err
	}

	return &set, nil
}

func LoadFile(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening rules")
	}
	defer f.Close()

	set, err := Load(f)
	if err != nil {
		return nil, errors.Wrapf(err, "rules file %s", path)
	}

	return set, nil
}

func (s *Set) validate() error {
	for i, owner := range s.Owners {
		if owner.Name == "" {
			return errors.Errorf("owner #%d has no name", i+1)
		}

		for _, c := range owner.CIDRs {
			if _, _, err := cidr.ParsePrefix(c); err != nil {
				return errors.Wrapf(err, "owner %s", owner.Name)
			}
		}
	}

	return nil
}

// Len returns the number of (subnet, owner) pairs in the set.
func (s *Set) Len() int {
	var total int
	for _, owner := range s.Owners {
		total += len(owner.CIDRs)
	}
	return total
}

// Apply inserts every (subnet, owner) pair of the set into t.
func (s *Set) Apply(t Inserter) error {
	for _, owner := range s.Owners {
		for _, c := range owner.CIDRs {
			network, bits, err := cidr.ParsePrefix(c)
			if err != nil {
				return errors.Wrapf(err, "owner %s", owner.Name)
			}

			if err := t.Insert(network, bits, owner.Name); err != nil {
				return errors.Wrapf(err, "owner %s: inserting %s", owner.Name, c)
			}
		}

		log.WithFields(log.Fields{
			"owner": owner.Name,
			"cidrs": len(owner.CIDRs),
		}).Debug("rules applied")
	}

	return nil
}
