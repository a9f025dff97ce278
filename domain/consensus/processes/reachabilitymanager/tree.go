package reachabilitymanager

import (
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// AddTreeBlock adds newBlock as a reachability tree child of parent. The
// new block gets the first half of the free capacity following parent's
// last child. If no capacity is left a reindex is triggered. Adding a block
// that is already in the tree fails with ErrKeyAlreadyExists and changes
// nothing.
func AddTreeBlock(store model.ReachabilityStore, newBlock, parent *externalapi.DomainHash,
	reindexDepth, reindexSlack uint64) error {

	exists, err := store.Has(newBlock)
	if err != nil {
		return err
	}
	if exists {
		return errors.Wrapf(model.ErrKeyAlreadyExists, "%s is already in the reachability tree", newBlock)
	}

	// Get the remaining interval capacity
	remaining, err := remainingIntervalAfter(store, parent)
	if err != nil {
		return err
	}
	// Append the new child to parent children
	parentHeight, err := store.AppendChild(parent, newBlock)
	if err != nil {
		return err
	}

	if remaining.IsEmpty() {
		// Init with the empty interval.
		// Note: internal logic relies on interval being this specific interval
		//       which comes exactly at the end of current capacity
		err = store.Insert(newBlock, parent, remaining, parentHeight+1)
		if err != nil {
			return err
		}

		reindexRoot, err := store.ReindexRoot()
		if err != nil {
			return err
		}

		log.Debugf("Reindexing intervals for %s under reindex root %s", newBlock, reindexRoot)
		return newReindexContext(store, reindexDepth, reindexSlack).reindexIntervals(newBlock, reindexRoot)
	}

	allocated, _, err := SplitHalf(remaining)
	if err != nil {
		return err
	}
	return store.Insert(newBlock, parent, allocated, parentHeight+1)
}

// FindCommonTreeAncestor returns the first ancestor of block in the
// reachability tree that is also a chain ancestor of reindexRoot.
func FindCommonTreeAncestor(store model.ReachabilityStoreReader, block, reindexRoot *externalapi.DomainHash) (
	*externalapi.DomainHash, error) {

	current := block
	for {
		isAncestor, err := IsChainAncestorOf(store, current, reindexRoot)
		if err != nil {
			return nil, err
		}
		if isAncestor {
			return current, nil
		}
		current, err = store.Parent(current)
		if err != nil {
			return nil, err
		}
	}
}

// FindNextReindexRoot finds the next reindex root based on the current one
// and the new hint. It returns the common ancestor of both along with the
// block that should become the next reindex root. When the reindex root
// should not move, both returned hashes are current.
func FindNextReindexRoot(store model.ReachabilityStoreReader, current, hint *externalapi.DomainHash,
	reindexDepth, reindexSlack uint64) (ancestor, next *externalapi.DomainHash, err error) {

	ancestor = current
	next = current

	if current.Equal(hint) {
		return current, current, nil
	}

	hintHeight, err := store.Height(hint)
	if err != nil {
		return nil, nil, err
	}

	// Test if current root is ancestor of selected tip (`hint`) - if not, this
	// is a reorg case
	isCurrentAncestorOfHint, err := IsChainAncestorOf(store, current, hint)
	if err != nil {
		return nil, nil, err
	}
	if !isCurrentAncestorOfHint {
		currentHeight, err := store.Height(current)
		if err != nil {
			return nil, nil, err
		}

		// We have reindex root out of (hint) selected tip chain, however we
		// switch chains only after a sufficient threshold of reindexSlack
		// diff in order to address possible alternating reorg attacks.
		// The reindexSlack constant is used as an heuristic for a large
		// enough constant on the one hand, but one which will not harm
		// performance on the other hand - given the available slack at the
		// chain split point.
		//
		// Note: In some cases the height of the (hint) selected tip can be
		// lower than the current reindex root height. If that's the case we
		// keep the reindex root unchanged.
		if hintHeight < currentHeight || hintHeight-currentHeight < reindexSlack {
			return current, current, nil
		}

		common, err := FindCommonTreeAncestor(store, hint, current)
		if err != nil {
			return nil, nil, err
		}
		ancestor = common
		next = common
	}

	// Iterate from ancestor towards the selected tip (`hint`) until passing
	// the reindexWindow threshold, for finding the new reindex root
	for {
		child, err := getNextChainAncestorUnchecked(store, hint, next)
		if err != nil {
			return nil, nil, err
		}
		childHeight, err := store.Height(child)
		if err != nil {
			return nil, nil, err
		}

		if hintHeight < childHeight {
			return nil, nil, errors.Wrapf(model.ErrDataInconsistency,
				"height of %s is lower than the height of its chain ancestor %s", hint, child)
		}
		if hintHeight-childHeight < reindexDepth {
			// We reached a reindex root
			break
		}

		next = child
	}

	return ancestor, next, nil
}

// TryAdvancingReindexRoot attempts to advance or move the current reindex
// root according to the provided virtual selected parent (`hint`). It is
// important for the reindex root point to follow the consensus-agreed chain
// since this way it can benefit from chain-robustness which is implied by
// the security of the ordering protocol. That is, it enjoys from the fact
// that all future blocks are expected to elect the root subtree (by
// converging to the agreement to have it on the selected chain).
func TryAdvancingReindexRoot(store model.ReachabilityStore, hint *externalapi.DomainHash,
	reindexDepth, reindexSlack uint64) error {

	// Get current root from the store
	current, err := store.ReindexRoot()
	if err != nil {
		return err
	}

	// Find the possible new root
	ancestor, next, err := FindNextReindexRoot(store, current, hint, reindexDepth, reindexSlack)
	if err != nil {
		return err
	}

	// No update to root, return
	if current.Equal(next) {
		return nil
	}

	// Apply the interval reallocation step by step, from the common ancestor
	// down to the new root, so that capacity is concentrated around the
	// chain the DAG is expected to grow on
	for !ancestor.Equal(next) {
		child, err := getNextChainAncestorUnchecked(store, next, ancestor)
		if err != nil {
			return err
		}
		err = newReindexContext(store, reindexDepth, reindexSlack).concentrateInterval(ancestor, child, child.Equal(next))
		if err != nil {
			return err
		}
		ancestor = child
	}

	log.Debugf("Moving reindex root from %s to %s", current, next)
	return store.SetReindexRoot(next)
}
