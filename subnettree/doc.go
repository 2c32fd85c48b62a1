// Package subnettree defines a compressed binary trie over IPv4 subnets that
// answers which owners cover a given address.
//
// Addresses are plain uint32 values (most significant bit first) and subnets
// are (network, prefix length) pairs. Every subnet may carry any number of
// owner ids, duplicates included.
//
// Node layout:
// -----------
//
//   - edge     - value of the incoming edge, right aligned;
//   - stride   - width in bits of every edge leading to the node's children
//     (0 - unsized, the node has no children yet);
//   - children - map of child nodes keyed by their edge value;
//   - owners   - owner ids attached to the subnet the node stands for (nil - none);
//   - parent   - back link used only when pruning.
//
// A node's depth is the sum of the strides along its path from the root, and
// it stands for the subnet made of that many leading address bits.
//
// Example trie:
// ------------
//
// After inserting 10.0.0.0/8, 10.1.0.0/16 and 10.1.2.3/32 the trie is a
// straight line (strides shown in brackets):
//
//	[root:8] --00001010--> [10/8:8] --00000001--> [10.1/16:16] --0000001000000011--> [10.1.2.3/32:0]
//
// Inserting 10.1.2.0/24 then splits the 16-bit stride of 10.1/16 in two:
//
//	[10.1/16:8] --00000010--> [10.1.2/24:8] --00000011--> [10.1.2.3/32:0]
//
// Owners are collected on the way down, so a match for 10.1.2.3 yields the
// owners of all four subnets, coarser ones first.
//
// A Tree is not safe for concurrent use; see Locked.
package subnettree
