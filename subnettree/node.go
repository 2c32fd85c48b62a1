package subnettree

import (
	"fmt"
	"slices"
)

const (
	addrBits   = 32 // IPv4 address width
	rootStride = 8  // granularity of a fresh root
)

type node struct {
	edge     uint32
	stride   int
	children map[uint32]*node
	owners   []string
	parent   *node
}

func newRoot() *node {
	return &node{stride: rootStride}
}

func (n *node) isRoot() bool {
	return n.parent == nil
}

// createChild registers an unsized child under the given edge value.
func (n *node) createChild(edge uint32) *node {
	if n.children == nil {
		n.children = make(map[uint32]*node)
	}

	child := &node{edge: edge, parent: n}
	n.children[edge] = child

	return child
}

func (n *node) sortedEdges() []uint32 {
	edges := make([]uint32, 0, len(n.children))
	for edge := range n.children {
		edges = append(edges, edge)
	}
	slices.Sort(edges)

	return edges
}

func (n *node) isPopulated() bool {
	return n.owners != nil || len(n.children) != 0
}

// split narrows the node's stride to width bits by placing a layer of
// intermediate nodes between the node and its children. The node keeps its
// owners: it still stands for the same subnet.
func (n *node) split(width int) {
	if width <= 0 || width >= n.stride {
		panic(fmt.Sprintf("subnettree: cannot split stride %d to %d", n.stride, width))
	}

	rem := n.stride - width

	n.children = n.regroup(rem)
	n.stride = width
}

// regroup consumes the node's children and returns them re-hung under a new
// layer of intermediates. An intermediate takes the high bits of a child's
// edge and has a stride of rem; the child keeps the low rem bits.
func (n *node) regroup(rem int) map[uint32]*node {
	var (
		mask  = uint32(1)<<rem - 1 // rem is always below addrBits
		layer = make(map[uint32]*node, len(n.children))
	)

	for edge, child := range n.children {
		high, low := edge>>rem, edge&mask

		mid := layer[high]
		if mid == nil {
			mid = &node{
				edge:     high,
				stride:   rem,
				children: make(map[uint32]*node),
				parent:   n,
			}
			layer[high] = mid
		}

		if _, dup := mid.children[low]; dup {
			panic(fmt.Sprintf("subnettree: edge %#x collides while regrouping", edge))
		}

		child.edge = low
		child.parent = mid
		mid.children[low] = child
	}

	return layer
}

// prune detaches the node and every ancestor that is left unpopulated by it,
// stopping at the root or at the first populated node.
func (n *node) prune() {
	for cur := n; !cur.isRoot() && !cur.isPopulated(); {
		parent := cur.parent

		delete(parent.children, cur.edge)
		cur.parent = nil

		if len(parent.children) == 0 {
			// no siblings left to agree with - forget the granularity
			parent.children = nil
			parent.stride = 0
			if parent.isRoot() {
				parent.stride = rootStride
			}
		}

		cur = parent
	}
}

func (n *node) addOwner(id string) {
	n.owners = append(n.owners, id)
}

// removeOwner drops every occurrence of id and returns how many there were.
func (n *node) removeOwner(id string) int {
	kept := n.owners[:0]

	for _, owner := range n.owners {
		if owner != id {
			kept = append(kept, owner)
		}
	}

	removed := len(n.owners) - len(kept)

	if len(kept) == 0 {
		n.owners = nil
	} else {
		n.owners = kept
	}

	return removed
}

// edgeBits returns width bits of addr starting at bit offset start
// (0 - the most significant bit), right aligned.
func edgeBits(addr uint32, start, width int) uint32 {
	return uint32((uint64(addr) >> (addrBits - start - width)) & (uint64(1)<<width - 1))
}
