package reachabilitymanager

import (
	"sort"

	"github.com/Hoosat-Oy/flexidag/domain/consensus/model"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

const (
	// DefaultReindexDepth is the target depth of the reindex root below
	// the virtual selected parent
	DefaultReindexDepth uint64 = 100

	// DefaultReindexSlack is the slack interval given to reachability
	// tree nodes not in the selected parent chain
	DefaultReindexSlack uint64 = 1 << 12
)

// Init initializes the reachability tree of store with origin as its root,
// using the maximal interval as its capacity.
func Init(store model.ReachabilityStore, origin *externalapi.DomainHash) error {
	return InitWithParams(store, origin, model.MaximalReachabilityInterval())
}

// InitWithParams initializes the reachability tree of store with origin as
// its root and the given capacity. It does nothing if origin already exists.
func InitWithParams(store model.ReachabilityStore, origin *externalapi.DomainHash, capacity model.ReachabilityInterval) error {
	exists, err := store.Has(origin)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	err = store.Init(origin, capacity)
	if errors.Is(err, model.ErrKeyAlreadyExists) {
		return nil
	}
	return err
}

// AddBlock adds newBlock to the reachability index: it becomes a tree
// child of selectedParent and is added to the future covering set of every
// block of its mergeset. A block can only be added once: adding it again
// fails with ErrKeyAlreadyExists, even if the first attempt failed after
// the block entered the tree. Errors wrapping ErrDataOverflow or
// ErrDataInconsistency mean the index is out of capacity or corrupted.
func AddBlock(store model.ReachabilityStore, newBlock, selectedParent *externalapi.DomainHash,
	mergeSet []*externalapi.DomainHash) error {

	return AddBlockWithParams(store, newBlock, selectedParent, mergeSet, DefaultReindexDepth, DefaultReindexSlack)
}

// AddBlockWithParams is AddBlock with an explicit reindex depth and slack
func AddBlockWithParams(store model.ReachabilityStore, newBlock, selectedParent *externalapi.DomainHash,
	mergeSet []*externalapi.DomainHash, reindexDepth, reindexSlack uint64) error {

	err := AddTreeBlock(store, newBlock, selectedParent, reindexDepth, reindexSlack)
	if err != nil {
		return err
	}

	for _, mergedBlock := range mergeSet {
		err = insertToFutureCoveringSet(store, mergedBlock, newBlock)
		if err != nil {
			return err
		}
	}
	return nil
}

// insertToFutureCoveringSet inserts newBlock to the future covering set of
// mergedBlock, keeping the set ordered by interval start.
func insertToFutureCoveringSet(store model.ReachabilityStore, mergedBlock, newBlock *externalapi.DomainHash) error {
	futureCoveringSet, err := store.FutureCoveringSet(mergedBlock)
	if err != nil {
		return err
	}
	for _, item := range futureCoveringSet {
		if item.Equal(newBlock) {
			return nil
		}
	}

	found, index, err := binarySearchDescendant(store, futureCoveringSet, newBlock)
	if err != nil {
		return err
	}
	if found {
		// A block of the future covering set is a chain ancestor of a
		// brand new block, which means the mergeset is not minimal
		return errors.Wrapf(model.ErrDataInconsistency,
			"%s is already covered by the future covering set of %s", newBlock, mergedBlock)
	}

	err = store.InsertFutureCoveringItem(mergedBlock, newBlock, index)
	if errors.Is(err, model.ErrKeyAlreadyExists) {
		return nil
	}
	return err
}

// HintVirtualSelectedParent hints the reachability index that hint is the
// new virtual selected parent, which may advance the reindex root.
func HintVirtualSelectedParent(store model.ReachabilityStore, hint *externalapi.DomainHash) error {
	return TryAdvancingReindexRoot(store, hint, DefaultReindexDepth, DefaultReindexSlack)
}

// IsStrictChainAncestorOf returns true if this is in the selected parent
// chain of queried, excluding queried itself.
func IsStrictChainAncestorOf(store model.ReachabilityStoreReader, this, queried *externalapi.DomainHash) (bool, error) {
	thisInterval, err := store.Interval(this)
	if err != nil {
		return false, err
	}
	queriedInterval, err := store.Interval(queried)
	if err != nil {
		return false, err
	}
	return thisInterval.StrictlyContains(queriedInterval), nil
}

// IsChainAncestorOf returns true if this is in the selected parent chain of
// queried. A block is a chain ancestor of itself.
func IsChainAncestorOf(store model.ReachabilityStoreReader, this, queried *externalapi.DomainHash) (bool, error) {
	thisInterval, err := store.Interval(this)
	if err != nil {
		return false, err
	}
	queriedInterval, err := store.Interval(queried)
	if err != nil {
		return false, err
	}
	return thisInterval.Contains(queriedInterval), nil
}

// IsDAGAncestorOf returns true if this is in the past of queried. A block
// is a DAG ancestor of itself.
//
// The queried block is in the future of this if it's in the tree subtree of
// this, or if it's in the subtree of one of the blocks in the future
// covering set of this.
func IsDAGAncestorOf(store model.ReachabilityStoreReader, this, queried *externalapi.DomainHash) (bool, error) {
	// First, check if this is a chain ancestor of queried
	isChainAncestor, err := IsChainAncestorOf(store, this, queried)
	if err != nil {
		return false, err
	}
	if isChainAncestor {
		return true, nil
	}

	// Otherwise, use the future covering set to complete the check
	futureCoveringSet, err := store.FutureCoveringSet(this)
	if err != nil {
		return false, err
	}
	found, _, err := binarySearchDescendant(store, futureCoveringSet, queried)
	if err != nil {
		return false, err
	}
	return found, nil
}

// GetNextChainAncestor returns the tree child of ancestor which is in the
// selected chain of descendant (possibly descendant itself). Fails with
// ErrBadQuery if ancestor is not a strict chain ancestor of descendant.
func GetNextChainAncestor(store model.ReachabilityStoreReader, descendant, ancestor *externalapi.DomainHash) (
	*externalapi.DomainHash, error) {

	if descendant.Equal(ancestor) {
		return nil, errors.Wrapf(model.ErrBadQuery, "%s is not a strict chain ancestor of itself", ancestor)
	}
	isStrictAncestor, err := IsStrictChainAncestorOf(store, ancestor, descendant)
	if err != nil {
		return nil, err
	}
	if !isStrictAncestor {
		return nil, errors.Wrapf(model.ErrBadQuery, "%s is not a strict chain ancestor of %s", ancestor, descendant)
	}

	return getNextChainAncestorUnchecked(store, descendant, ancestor)
}

// getNextChainAncestorUnchecked is GetNextChainAncestor without the
// ancestry check. The caller is expected to know that ancestor is a strict
// chain ancestor of descendant.
func getNextChainAncestorUnchecked(store model.ReachabilityStoreReader, descendant, ancestor *externalapi.DomainHash) (
	*externalapi.DomainHash, error) {

	children, err := store.Children(ancestor)
	if err != nil {
		return nil, err
	}
	found, index, err := binarySearchDescendant(store, children, descendant)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Wrapf(model.ErrBadQuery, "none of the children of %s is a chain ancestor of %s", ancestor, descendant)
	}
	return children[index], nil
}

// binarySearchDescendant looks for the block of orderedHashes that is a
// chain ancestor of descendant. orderedHashes must be ordered by interval
// and their intervals must be disjoint, which holds for both tree children
// and future covering sets. If no such block exists, the returned index is
// the position at which descendant should be inserted.
func binarySearchDescendant(store model.ReachabilityStoreReader, orderedHashes []*externalapi.DomainHash,
	descendant *externalapi.DomainHash) (found bool, index int, err error) {

	descendantInterval, err := store.Interval(descendant)
	if err != nil {
		return false, 0, err
	}
	point := descendantInterval.End

	var searchErr error
	i := sort.Search(len(orderedHashes), func(i int) bool {
		if searchErr != nil {
			return true
		}
		interval, err := store.Interval(orderedHashes[i])
		if err != nil {
			searchErr = err
			return true
		}
		return interval.Start >= point
	})
	if searchErr != nil {
		return false, 0, searchErr
	}
	if i < len(orderedHashes) {
		interval, err := store.Interval(orderedHashes[i])
		if err != nil {
			return false, 0, err
		}
		if interval.Start == point {
			return true, i, nil
		}
	}

	// The start of orderedHashes[i-1] precedes point, so it is the only candidate to
	// contain descendant
	if i > 0 {
		isAncestor, err := IsChainAncestorOf(store, orderedHashes[i-1], descendant)
		if err != nil {
			return false, 0, err
		}
		if isAncestor {
			return true, i - 1, nil
		}
	}
	return false, i, nil
}
