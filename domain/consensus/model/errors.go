package model

import "github.com/pkg/errors"

var (
	// ErrKeyAlreadyExists is returned when a write-once record is written twice.
	ErrKeyAlreadyExists = errors.New("key already exists")

	// ErrDataInconsistency marks a violated structural invariant of the
	// reachability index, e.g. an exhausted interval space.
	ErrDataInconsistency = errors.New("data inconsistency")

	// ErrBadQuery is returned by chain queries whose arguments are not in the
	// required relation, e.g. asking for the next chain ancestor of a block
	// that is not in the chain of ancestor.
	ErrBadQuery = errors.New("bad reachability query")

	// ErrDataOverflow is returned when a counter or an interval bound would
	// overflow its width.
	ErrDataOverflow = errors.New("data overflow")

	// ErrDAGDupBlocks is returned when a block appears twice while merging
	// mergeset iterators.
	ErrDAGDupBlocks = errors.New("DAG has duplicate blocks")

	// ErrGHOSTDAGDataMismatch is returned when recomputed GHOSTDAG data
	// disagrees with the data it is checked against.
	ErrGHOSTDAGDataMismatch = errors.New("GHOSTDAG data mismatch")

	// ErrGenesisMismatch is returned when a DAG is initialized with a genesis
	// other than the one it was created with.
	ErrGenesisMismatch = errors.New("genesis mismatch")

	// ErrMissingParents is returned when a block is committed before all of
	// its parents.
	ErrMissingParents = errors.New("missing parents")
)
