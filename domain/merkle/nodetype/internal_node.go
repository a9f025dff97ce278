package nodetype

import (
	"bytes"
	"io"
	"math/bits"

	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/flexidag/util/binaryserializer"
	"github.com/pkg/errors"
)

// Nibble is a 4-bit index of a child of an internal node
type Nibble uint8

const childCount = 16

// Child is a child of an internal node
type Child struct {
	Hash   *externalapi.DomainHash
	IsLeaf bool
}

// InternalNode compresses four levels of a binary sparse Merkle tree into
// one node with up to 16 children at the bottom level. Its hash is that of
// the 4-level subtree, where an empty subtree hashes to PlaceholderHash and
// a subtree holding a single leaf hashes to that leaf.
//
// InternalNode is immutable. Its hash is computed once, on construction.
type InternalNode struct {
	children map[Nibble]Child
	hash     *externalapi.DomainHash
}

// NewInternalNode returns an internal node with the given children. An
// internal node must have a child, and a single child must not be a leaf.
func NewInternalNode(children map[Nibble]Child) (*InternalNode, error) {
	if len(children) == 0 {
		return nil, errors.WithStack(ErrNoChildren)
	}
	if len(children) == 1 {
		for _, child := range children {
			if child.IsLeaf {
				return nil, errors.WithStack(ErrSingleLeafChild)
			}
		}
	}
	copied := make(map[Nibble]Child, len(children))
	for nibble, child := range children {
		if nibble >= childCount {
			return nil, errors.Errorf("child index %d out of range", nibble)
		}
		copied[nibble] = child
	}

	node := &InternalNode{children: copied}
	existence, leaves := node.bitmaps()
	node.hash = node.merkleHash(0, childCount, existence, leaves)
	return node, nil
}

func (n *InternalNode) isNode() {}

// Hash returns the hash of the node
func (n *InternalNode) Hash() *externalapi.DomainHash {
	return n.hash
}

// Child returns the n-th child
func (n *InternalNode) Child(nibble Nibble) (Child, bool) {
	child, ok := n.children[nibble]
	return child, ok
}

// NumChildren returns the number of existing children
func (n *InternalNode) NumChildren() int {
	return len(n.children)
}

// ChildHashes returns the hashes of all children, ordered by index
func (n *InternalNode) ChildHashes() []*externalapi.DomainHash {
	hashes := make([]*externalapi.DomainHash, 0, len(n.children))
	for nibble := Nibble(0); nibble < childCount; nibble++ {
		if child, ok := n.children[nibble]; ok {
			hashes = append(hashes, child.Hash)
		}
	}
	return hashes
}

// Equal returns whether n and other have the same children
func (n *InternalNode) Equal(other *InternalNode) bool {
	if len(n.children) != len(other.children) {
		return false
	}
	for nibble, child := range n.children {
		otherChild, ok := other.children[nibble]
		if !ok || child.IsLeaf != otherChild.IsLeaf || !child.Hash.Equal(otherChild.Hash) {
			return false
		}
	}
	return true
}

// bitmaps returns the existence bitmap and the leaf bitmap of the children.
// Bit i of the existence bitmap is set if child i exists, and bit i of the
// leaf bitmap is set if child i is a leaf.
func (n *InternalNode) bitmaps() (existence, leaves uint16) {
	for nibble, child := range n.children {
		existence |= 1 << nibble
		if child.IsLeaf {
			leaves |= 1 << nibble
		}
	}
	return existence, leaves
}

// rangeBitmaps returns the bitmaps restricted to [start, start+width)
func rangeBitmaps(start, width uint8, existence, leaves uint16) (uint16, uint16) {
	mask := uint16(0xffff)
	if width < childCount {
		mask = (1<<width - 1) << start
	}
	return existence & mask, leaves & mask
}

func (n *InternalNode) merkleHash(start, width uint8, existence, leaves uint16) *externalapi.DomainHash {
	rangeExistence, rangeLeaves := rangeBitmaps(start, width, existence, leaves)
	if rangeExistence == 0 {
		return PlaceholderHash
	}
	if bits.OnesCount16(rangeExistence) == 1 && (rangeLeaves != 0 || width == 1) {
		onlyChild := Nibble(bits.TrailingZeros16(rangeExistence))
		return n.children[onlyChild].Hash
	}
	left := n.merkleHash(start, width/2, existence, leaves)
	right := n.merkleHash(start+width/2, width/2, existence, leaves)
	return hashInternal(left, right)
}

// childAndSiblingHalfStart returns the first index of the subtree at the
// given height that contains the n-th child, and the first index of its
// sibling subtree
func childAndSiblingHalfStart(nibble Nibble, height uint8) (childHalfStart, siblingHalfStart uint8) {
	childHalfStart = (0xff << height) & uint8(nibble)
	siblingHalfStart = childHalfStart ^ (1 << height)
	return childHalfStart, siblingHalfStart
}

// GetChildWithSiblings returns the child on the path to the n-th child and
// the sibling hashes from the top of the node down, which together prove
// the n-th child inside the node.
//
// The returned child is nil if no child exists on the path. It may be a
// leaf other than the n-th child, which proves the n-th child doesn't
// exist.
func (n *InternalNode) GetChildWithSiblings(nibble Nibble) (*externalapi.DomainHash, []*externalapi.DomainHash) {
	siblings := make([]*externalapi.DomainHash, 0, 4)
	existence, leaves := n.bitmaps()

	for height := 3; height >= 0; height-- {
		width := uint8(1) << height
		childHalfStart, siblingHalfStart := childAndSiblingHalfStart(nibble, uint8(height))
		siblings = append(siblings, n.merkleHash(siblingHalfStart, width, existence, leaves))

		rangeExistence, rangeLeaves := rangeBitmaps(childHalfStart, width, existence, leaves)
		if rangeExistence == 0 {
			return nil, siblings
		}
		if bits.OnesCount16(rangeExistence) == 1 && (bits.OnesCount16(rangeLeaves) == 1 || width == 1) {
			onlyChild := Nibble(bits.TrailingZeros16(rangeExistence))
			return n.children[onlyChild].Hash, siblings
		}
	}
	panic("the lowest level always returns")
}

func (n *InternalNode) serialize(w io.Writer) error {
	existence, leaves := n.bitmaps()
	err := binaryserializer.PutUint16(w, existence)
	if err != nil {
		return err
	}
	err = binaryserializer.PutUint16(w, leaves)
	if err != nil {
		return err
	}
	for nibble := Nibble(0); nibble < childCount; nibble++ {
		child, ok := n.children[nibble]
		if !ok {
			continue
		}
		_, err := w.Write(child.Hash.ByteSlice())
		if err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

func deserializeInternalNode(data []byte) (*InternalNode, error) {
	r := bytes.NewReader(data)
	existence, err := binaryserializer.Uint16(r)
	if err != nil {
		return nil, errors.Wrap(ErrNotEnoughBytes, "existence bitmap")
	}
	leaves, err := binaryserializer.Uint16(r)
	if err != nil {
		return nil, errors.Wrap(ErrNotEnoughBytes, "leaf bitmap")
	}
	if existence == 0 {
		return nil, errors.WithStack(ErrNoChildren)
	}
	if existence&leaves != leaves {
		return nil, errors.WithStack(ExtraLeavesError{Existing: existence, Leaves: leaves})
	}

	children := make(map[Nibble]Child, bits.OnesCount16(existence))
	for remaining := existence; remaining != 0; remaining &= remaining - 1 {
		nibble := Nibble(bits.TrailingZeros16(remaining))
		var hashBytes [externalapi.DomainHashSize]byte
		_, err := io.ReadFull(r, hashBytes[:])
		if err != nil {
			return nil, errors.Wrapf(ErrNotEnoughBytes, "children: %d, bytes: %d",
				bits.OnesCount16(existence), len(data))
		}
		children[nibble] = Child{
			Hash:   externalapi.NewDomainHashFromByteArray(&hashBytes),
			IsLeaf: leaves&(1<<nibble) != 0,
		}
	}
	if r.Len() != 0 {
		return nil, errors.Errorf("%d trailing bytes after internal node", r.Len())
	}
	return NewInternalNode(children)
}
