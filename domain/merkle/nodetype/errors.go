package nodetype

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrEmptyInput is returned when decoding an empty byte slice
	ErrEmptyInput = errors.New("missing tag due to empty input")

	// ErrNoChildren is returned for an internal node without children
	ErrNoChildren = errors.New("no children found in internal node")

	// ErrSingleLeafChild is returned for an internal node whose only child
	// is a leaf. Such a leaf belongs to the parent of the internal node.
	ErrSingleLeafChild = errors.New("internal node with a single leaf child")

	// ErrNotEnoughBytes is returned when a serialized node is truncated
	ErrNotEnoughBytes = errors.New("not enough bytes left")
)

// UnknownTagError is returned when the lead byte of a serialized node is
// not the tag of any node variant
type UnknownTagError struct {
	Tag byte
}

func (e UnknownTagError) Error() string {
	return fmt.Sprintf("lead tag byte is unknown: %d", e.Tag)
}

// ExtraLeavesError is returned when the leaf bitmap of a serialized
// internal node marks children that don't exist
type ExtraLeavesError struct {
	Existing uint16
	Leaves   uint16
}

func (e ExtraLeavesError) Error() string {
	return fmt.Sprintf("non-existent leaf bits set, existing: %d, leaves: %d", e.Existing, e.Leaves)
}
