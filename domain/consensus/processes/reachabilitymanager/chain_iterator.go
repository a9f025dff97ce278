package reachabilitymanager

import (
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
)

// ChainIterator walks a selected chain one block at a time. It takes the
// read lock of its service on every step rather than for its whole
// lifetime, so a long walk doesn't starve writers.
//
// Usage follows bufio.Scanner:
//
//	for iterator.Next() {
//	    hash := iterator.Get()
//	}
//	if iterator.Err() != nil { ... }
type ChainIterator struct {
	service   *Service
	pending   *externalapi.DomainHash
	target    *externalapi.DomainHash
	inclusive bool
	forward   bool
	current   *externalapi.DomainHash
	err       error
}

// ForwardChainIterator returns an iterator walking up the chain-selection
// tree from fromAncestor to toDescendant. toDescendant is included if
// inclusive is set. fromAncestor is expected to be a chain ancestor of
// toDescendant, otherwise the iteration fails with ErrBadQuery.
func (s *Service) ForwardChainIterator(fromAncestor, toDescendant *externalapi.DomainHash, inclusive bool) *ChainIterator {
	return &ChainIterator{
		service:   s,
		pending:   fromAncestor,
		target:    toDescendant,
		inclusive: inclusive,
		forward:   true,
	}
}

// BackwardChainIterator returns an iterator walking down the selected chain
// from fromDescendant to toAncestor. toAncestor is included if inclusive
// is set.
func (s *Service) BackwardChainIterator(fromDescendant, toAncestor *externalapi.DomainHash, inclusive bool) *ChainIterator {
	return &ChainIterator{
		service:   s,
		pending:   fromDescendant,
		target:    toAncestor,
		inclusive: inclusive,
	}
}

// DefaultBackwardChainIterator returns an iterator walking down the
// selected chain from `from` until the origin, which is excluded.
func (s *Service) DefaultBackwardChainIterator(from *externalapi.DomainHash) *ChainIterator {
	return &ChainIterator{
		service: s,
		pending: from,
	}
}

// Next advances the iterator. It returns false once the walk is over or
// has failed.
func (it *ChainIterator) Next() bool {
	if it.err != nil || it.pending == nil {
		return false
	}
	current := it.pending

	if it.target != nil && current.Equal(it.target) {
		it.pending = nil
		if !it.inclusive {
			return false
		}
		it.current = current
		return true
	}

	var next *externalapi.DomainHash
	var err error
	if it.forward {
		next, err = it.service.GetNextChainAncestor(it.target, current)
	} else {
		next, err = it.service.parent(current)
	}
	if err != nil {
		it.err = err
		it.pending = nil
		return false
	}

	// Without a target the walk ends at the origin, the only block
	// without a tree parent
	if it.target == nil && next.IsZero() {
		it.pending = nil
		return false
	}

	it.pending = next
	it.current = current
	return true
}

// Get returns the block the iterator is at
func (it *ChainIterator) Get() *externalapi.DomainHash {
	return it.current
}

// Err returns the error that stopped the iteration, if any
func (it *ChainIterator) Err() error {
	return it.err
}
