package subnettree

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// ErrPrefixLength is returned for a prefix length outside [0..32].
var ErrPrefixLength = errors.New("prefix length out of range")

// Tree maps IPv4 subnets to the owners attached to them.
type Tree struct {
	root *node
	size int
}

// New returns an empty Tree.
func New() *Tree {
	return &Tree{root: newRoot()}
}

// Len returns the number of owner attachments held by the tree.
func (t *Tree) Len() int {
	return t.size
}

// Empty reports whether the tree holds no nodes besides a bare root.
func (t *Tree) Empty() bool {
	return !t.root.isPopulated()
}

// Insert attaches owner to the subnet made of the leading bits of network.
// Host bits past the prefix are ignored. Inserting the same pair twice
// attaches the owner twice.
func (t *Tree) Insert(network uint32, bits int, owner string) error {
	if err := checkBits(bits); err != nil {
		return err
	}

	n, depth := t.walk(network, bits, true, nil)
	if depth != bits {
		panic(fmt.Sprintf("subnettree: insert stopped at depth %d of %d", depth, bits))
	}

	n.addOwner(owner)
	t.size++

	return nil
}

// Remove detaches every occurrence of owner from the subnet. Removing a
// subnet or an owner that was never inserted does nothing.
func (t *Tree) Remove(network uint32, bits int, owner string) error {
	if err := checkBits(bits); err != nil {
		return err
	}

	n, depth := t.walk(network, bits, false, nil)
	if depth != bits {
		return nil // subnet not in the tree
	}

	t.size -= n.removeOwner(owner)
	n.prune()

	return nil
}

// Match returns the owners of every subnet containing addr, coarser subnets
// first. Owners of one subnet keep their insertion order and duplicates.
func (t *Tree) Match(addr uint32) []string {
	var owners []string

	t.walk(addr, addrBits, false, func(n *node) {
		owners = append(owners, n.owners...)
	})

	return owners
}

// Walk calls fn for every subnet holding owners, in address order with a
// subnet preceding the subnets it contains. It returns false if fn aborted
// the walk by returning false.
func (t *Tree) Walk(fn func(network uint32, bits int, owners []string) bool) bool {
	return walkNode(t.root, 0, 0, fn)
}

func walkNode(n *node, prefix uint32, depth int, fn func(uint32, int, []string) bool) bool {
	if n.owners != nil {
		network := uint32(uint64(prefix) << (addrBits - depth))
		if !fn(network, depth, slices.Clone(n.owners)) {
			return false
		}
	}

	for _, edge := range n.sortedEdges() {
		next := uint32(uint64(prefix)<<n.stride) | edge
		if !walkNode(n.children[edge], next, depth+n.stride, fn) {
			return false
		}
	}

	return true
}

// walk descends from the root along the leading bits of addr, calling visit
// (when given) on every node it reaches, the root included.
//
// With grow set the walk creates missing children and narrows strides so it
// always ends on a node at exactly the requested depth. Otherwise it stops
// at the first gap. Returns the last node reached and its depth.
func (t *Tree) walk(addr uint32, bits int, grow bool, visit func(*node)) (*node, int) {
	var (
		n     = t.root
		depth = 0
	)

	if visit != nil {
		visit(n)
	}

	for depth < bits {
		remaining := bits - depth

		if grow {
			if len(n.children) == 0 {
				// nothing to keep aligned with - take the bits still needed
				if n.stride == 0 || n.stride > remaining {
					n.stride = remaining
				}
			} else if n.stride > remaining {
				n.split(remaining)
			}
		} else if n.stride == 0 || n.stride > remaining {
			break // no node at this boundary
		}

		edge := edgeBits(addr, depth, n.stride)

		next := n.children[edge]
		if next == nil {
			if !grow {
				break
			}
			next = n.createChild(edge)
		}

		depth += n.stride
		n = next

		if visit != nil {
			visit(n)
		}
	}

	return n, depth
}

// String returns an indented dump of the node graph.
func (t *Tree) String() string {
	var b strings.Builder

	dumpNode(&b, t.root, 0, "")

	return b.String()
}

func dumpNode(b *strings.Builder, n *node, width int, indent string) {
	b.WriteString(indent)

	if n.isRoot() {
		b.WriteString("<root")
	} else {
		fmt.Fprintf(b, "<%0*b", width, n.edge)
	}

	fmt.Fprintf(b, "|stride:%d", n.stride)

	if n.owners != nil {
		fmt.Fprintf(b, "|%q", n.owners)
	}

	b.WriteString(">\n")

	for _, edge := range n.sortedEdges() {
		dumpNode(b, n.children[edge], n.stride, indent+"  ")
	}
}

func checkBits(bits int) error {
	if bits < 0 || bits > addrBits {
		return errors.Wrapf(ErrPrefixLength, "/%d", bits)
	}
	return nil
}
