package nodetype

import (
	"bytes"

	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// NodeTag is the lead byte of a serialized node
type NodeTag byte

// The node variants
const (
	NodeTagNull     NodeTag = 0
	NodeTagInternal NodeTag = 1
	NodeTagLeaf     NodeTag = 2
)

// Node is a node of a sparse Merkle tree: a NullNode, an *InternalNode
// or a *LeafNode
type Node interface {
	Hash() *externalapi.DomainHash
	isNode()
}

// NullNode is the empty tree
type NullNode struct{}

func (NullNode) isNode() {}

// Hash returns PlaceholderHash
func (NullNode) Hash() *externalapi.DomainHash {
	return PlaceholderHash
}

// Encode serializes node prefixed by its tag
func Encode(node Node) ([]byte, error) {
	buf := &bytes.Buffer{}
	switch node := node.(type) {
	case NullNode:
		buf.WriteByte(byte(NodeTagNull))
	case *InternalNode:
		buf.WriteByte(byte(NodeTagInternal))
		err := node.serialize(buf)
		if err != nil {
			return nil, err
		}
	case *LeafNode:
		buf.WriteByte(byte(NodeTagLeaf))
		err := node.serialize(buf)
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.Errorf("unexpected node type %T", node)
	}
	return buf.Bytes(), nil
}

// Decode deserializes a node serialized by Encode
func Decode(data []byte) (Node, error) {
	if len(data) == 0 {
		return nil, errors.WithStack(ErrEmptyInput)
	}
	tag := NodeTag(data[0])
	switch tag {
	case NodeTagNull:
		return NullNode{}, nil
	case NodeTagInternal:
		return deserializeInternalNode(data[1:])
	case NodeTagLeaf:
		return deserializeLeafNode(data[1:])
	default:
		return nil, errors.WithStack(UnknownTagError{Tag: data[0]})
	}
}
