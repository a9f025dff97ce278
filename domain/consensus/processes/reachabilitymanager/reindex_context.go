package reachabilitymanager

import (
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// intervalOp derives a new interval from an existing one and an offset
type intervalOp func(ri model.ReachabilityInterval, offset uint64) (model.ReachabilityInterval, error)

var (
	increase      intervalOp = model.ReachabilityInterval.Increase
	decrease      intervalOp = model.ReachabilityInterval.Decrease
	increaseStart intervalOp = model.ReachabilityInterval.IncreaseStart
	decreaseStart intervalOp = model.ReachabilityInterval.DecreaseStart
	increaseEnd   intervalOp = model.ReachabilityInterval.IncreaseEnd
	decreaseEnd   intervalOp = model.ReachabilityInterval.DecreaseEnd
)

// reindexContext holds the state of a single reindex operation. Subtree
// sizes are cached for the lifetime of the operation only.
type reindexContext struct {
	store        model.ReachabilityStore
	subtreeSizes map[externalapi.DomainHash]uint64
	depth        uint64
	slack        uint64
}

func newReindexContext(store model.ReachabilityStore, depth, slack uint64) *reindexContext {
	return &reindexContext{
		store:        store,
		subtreeSizes: make(map[externalapi.DomainHash]uint64),
		depth:        depth,
		slack:        slack,
	}
}

// reindexIntervals traverses the reachability subtree that's defined by
// newChild and allocates intervals to its nodes so that the tree has enough
// capacity for newChild. It climbs towards the root until it finds a block
// whose interval is large enough for its subtree, then propagates.
func (rc *reindexContext) reindexIntervals(newChild, reindexRoot *externalapi.DomainHash) error {
	current := newChild

	// Search for the first ancestor with sufficient interval space
	for {
		currentInterval, err := rc.store.Interval(current)
		if err != nil {
			return err
		}

		err = rc.countSubtrees(current)
		if err != nil {
			return err
		}

		if currentInterval.Size() >= rc.subtreeSizes[*current] {
			break
		}

		parent, err := rc.store.Parent(current)
		if err != nil {
			return err
		}

		if parent.IsZero() {
			// This should only ever happen if there are more than 2^64
			// blocks in the DAG
			return errors.Wrapf(model.ErrDataOverflow, "missing tree parent of %s during reindexing", current)
		}

		if current.Equal(reindexRoot) {
			// Reindex root is expected to hold enough capacity as long as
			// there are less than ~2^52 blocks in the DAG
			return errors.Wrapf(model.ErrDataOverflow, "reindex root %s is out of capacity during reindexing", reindexRoot)
		}

		isParentStrictAncestorOfRoot, err := IsStrictChainAncestorOf(rc.store, parent, reindexRoot)
		if err != nil {
			return err
		}
		if isParentStrictAncestorOfRoot {
			// In this case parent is guaranteed to have sufficient interval space,
			// however we avoid reindexing the entire subtree above parent
			// (which includes root and thus majority of blocks mined since)
			// and use slacks along the chain up from parent to reindex root.
			// Notes:
			// 1. we set requiredAllocation=subtreeSize of current in order to double the
			//    current interval capacity
			// 2. it might be the case that current is the newChild itself
			return rc.reindexIntervalsEarlierThanRoot(current, reindexRoot, parent, rc.subtreeSizes[*current])
		}

		current = parent
	}

	return rc.propagateInterval(current)
}

// countSubtrees counts the size of each subtree under block. It caches the
// results in subtreeSizes.
//
// This method is equivalent to the following recursive implementation:
//
//	func (rc *reindexContext) countSubtrees(block) uint64 {
//	    size := uint64(1)
//	    for _, child := range children(block) {
//	        size += rc.countSubtrees(child)
//	    }
//	    return size
//	}
//
// However, we are expecting (linearly) deep trees, and so a recursive
// Go implementation would not scale. Instead, this method walks down
// to the leaves and then climbs back up, counting how many children of
// every block were already counted.
func (rc *reindexContext) countSubtrees(block *externalapi.DomainHash) error {
	if _, ok := rc.subtreeSizes[*block]; ok {
		return nil
	}

	queue := []*externalapi.DomainHash{block}
	counts := make(map[externalapi.DomainHash]uint64)

	for len(queue) > 0 {
		var current *externalapi.DomainHash
		current, queue = queue[0], queue[1:]

		children, err := rc.store.Children(current)
		if err != nil {
			return err
		}

		if len(children) == 0 {
			// We reached a leaf
			rc.subtreeSizes[*current] = 1
		} else if _, ok := rc.subtreeSizes[*current]; !ok {
			// We haven't yet calculated the subtree size of
			// the current block. Add all its children to the
			// queue
			queue = append(queue, children...)
			continue
		}

		// We reached a leaf or a pre-calculated subtree.
		// Push information up
		for !current.Equal(block) {
			current, err = rc.store.Parent(current)
			if err != nil {
				return err
			}

			counts[*current]++
			children, err := rc.store.Children(current)
			if err != nil {
				return err
			}

			if counts[*current] < uint64(len(children)) {
				// Not all subtrees of the current block are ready
				break
			}

			// All children of current have calculated their subtree size.
			// Sum them all together and add 1 to get the subtree size of
			// current.
			childSubtreeSizeSum := uint64(0)
			for _, child := range children {
				childSubtreeSizeSum += rc.subtreeSizes[*child]
			}
			rc.subtreeSizes[*current] = childSubtreeSizeSum + 1
		}
	}

	return nil
}

// propagateInterval propagates the new interval of block down its subtree
// using BFS. Every child receives a share of its parent's capacity
// according to SplitExponential.
func (rc *reindexContext) propagateInterval(block *externalapi.DomainHash) error {
	// Make sure subtree sizes are calculated
	err := rc.countSubtrees(block)
	if err != nil {
		return err
	}

	queue := []*externalapi.DomainHash{block}
	for len(queue) > 0 {
		var current *externalapi.DomainHash
		current, queue = queue[0], queue[1:]

		children, err := rc.store.Children(current)
		if err != nil {
			return err
		}
		if len(children) == 0 {
			continue
		}

		sizes := make([]uint64, len(children))
		for i, child := range children {
			sizes[i] = rc.subtreeSizes[*child]
		}

		capacity, err := childrenCapacity(rc.store, current)
		if err != nil {
			return err
		}

		intervals, err := SplitExponential(capacity, sizes)
		if err != nil {
			return errors.Wrapf(err, "propagating the interval of %s", current)
		}
		for i, child := range children {
			err := rc.store.SetInterval(child, intervals[i])
			if err != nil {
				return err
			}
		}
		queue = append(queue, children...)
	}
	return nil
}

// reindexIntervalsEarlierThanRoot implements the reindex algorithm for the
// case where the new child block is not in reindex root's subtree. The
// function is expected to allocate requiredAllocation to be added to
// allocationBlock. It searches for slack in the reindex root's chain to
// reclaim it before or after the chosen child of commonAncestor.
func (rc *reindexContext) reindexIntervalsEarlierThanRoot(allocationBlock, reindexRoot, commonAncestor *externalapi.DomainHash,
	requiredAllocation uint64) error {

	// The chosen child is:
	// a. A reachability tree child of commonAncestor
	// b. A reachability tree ancestor of reindexRoot or reindexRoot itself
	chosenChild, err := getNextChainAncestorUnchecked(rc.store, reindexRoot, commonAncestor)
	if err != nil {
		return err
	}

	blockInterval, err := rc.store.Interval(allocationBlock)
	if err != nil {
		return err
	}
	chosenInterval, err := rc.store.Interval(chosenChild)
	if err != nil {
		return err
	}

	if blockInterval.Start < chosenInterval.Start {
		// allocationBlock is in the subtree before the chosen child
		return rc.reclaimIntervalBefore(allocationBlock, commonAncestor, chosenChild, reindexRoot, requiredAllocation)
	}

	// allocationBlock is in the subtree after the chosen child
	return rc.reclaimIntervalAfter(allocationBlock, commonAncestor, chosenChild, reindexRoot, requiredAllocation)
}

func (rc *reindexContext) reclaimIntervalBefore(allocationBlock, commonAncestor, chosenChild, reindexRoot *externalapi.DomainHash,
	requiredAllocation uint64) error {

	slackSum := uint64(0)
	pathLength := uint64(0)
	pathSlackAllocation := uint64(0)

	var err error
	current := chosenChild

	// Walk up the chain from common ancestor's chosen child towards reindex root
	for {
		if current.Equal(reindexRoot) {
			// Reached reindex root. In this case, since we reached (the unlimited) root,
			// we also re-allocate new slack for the chain we just traversed
			offset := requiredAllocation + rc.slack*pathLength - slackSum
			err = rc.applyIntervalOpAndPropagate(current, offset, increaseStart)
			if err != nil {
				return err
			}
			err = rc.offsetSiblingsBefore(allocationBlock, current, offset)
			if err != nil {
				return err
			}

			// Set the slack for each chain block to be reserved below during the chain walk-down
			pathSlackAllocation = rc.slack
			break
		}

		slackBeforeCurrent, err := remainingIntervalBefore(rc.store, current)
		if err != nil {
			return err
		}
		slackSum += slackBeforeCurrent.Size()

		if slackSum >= requiredAllocation {
			// Set offset to be just enough to satisfy required allocation
			offset := slackBeforeCurrent.Size() - (slackSum - requiredAllocation)
			err = rc.applyIntervalOp(current, offset, increaseStart)
			if err != nil {
				return err
			}
			err = rc.offsetSiblingsBefore(allocationBlock, current, offset)
			if err != nil {
				return err
			}

			break
		}

		current, err = getNextChainAncestorUnchecked(rc.store, reindexRoot, current)
		if err != nil {
			return err
		}
		pathLength++
	}

	// Go back down the reachability tree towards the common ancestor.
	// On every hop we reindex the reachability subtree before the
	// current block with an interval that is smaller.
	// This is to make room for the required allocation.
	for {
		current, err = rc.store.Parent(current)
		if err != nil {
			return err
		}
		if current.Equal(commonAncestor) {
			break
		}

		slackBeforeCurrent, err := remainingIntervalBefore(rc.store, current)
		if err != nil {
			return err
		}
		offset := slackBeforeCurrent.Size() - pathSlackAllocation
		err = rc.applyIntervalOp(current, offset, increaseStart)
		if err != nil {
			return err
		}
		err = rc.offsetSiblingsBefore(allocationBlock, current, offset)
		if err != nil {
			return err
		}
	}

	return nil
}

func (rc *reindexContext) reclaimIntervalAfter(allocationBlock, commonAncestor, chosenChild, reindexRoot *externalapi.DomainHash,
	requiredAllocation uint64) error {

	slackSum := uint64(0)
	pathLength := uint64(0)
	pathSlackAllocation := uint64(0)

	var err error
	current := chosenChild

	// Walk up the chain from common ancestor's chosen child towards reindex root
	for {
		if current.Equal(reindexRoot) {
			offset := requiredAllocation + rc.slack*pathLength - slackSum
			err = rc.applyIntervalOpAndPropagate(current, offset, decreaseEnd)
			if err != nil {
				return err
			}
			err = rc.offsetSiblingsAfter(allocationBlock, current, offset)
			if err != nil {
				return err
			}

			pathSlackAllocation = rc.slack
			break
		}

		slackAfterCurrent, err := remainingIntervalAfter(rc.store, current)
		if err != nil {
			return err
		}
		slackSum += slackAfterCurrent.Size()

		if slackSum >= requiredAllocation {
			offset := slackAfterCurrent.Size() - (slackSum - requiredAllocation)
			err = rc.applyIntervalOp(current, offset, decreaseEnd)
			if err != nil {
				return err
			}
			err = rc.offsetSiblingsAfter(allocationBlock, current, offset)
			if err != nil {
				return err
			}

			break
		}

		current, err = getNextChainAncestorUnchecked(rc.store, reindexRoot, current)
		if err != nil {
			return err
		}
		pathLength++
	}

	for {
		current, err = rc.store.Parent(current)
		if err != nil {
			return err
		}
		if current.Equal(commonAncestor) {
			break
		}

		slackAfterCurrent, err := remainingIntervalAfter(rc.store, current)
		if err != nil {
			return err
		}
		offset := slackAfterCurrent.Size() - pathSlackAllocation
		err = rc.applyIntervalOp(current, offset, decreaseEnd)
		if err != nil {
			return err
		}
		err = rc.offsetSiblingsAfter(allocationBlock, current, offset)
		if err != nil {
			return err
		}
	}

	return nil
}

// offsetSiblingsBefore shifts the siblings preceding current up by offset,
// walking backwards until allocationBlock, which is expanded instead.
func (rc *reindexContext) offsetSiblingsBefore(allocationBlock, current *externalapi.DomainHash, offset uint64) error {
	parent, err := rc.store.Parent(current)
	if err != nil {
		return err
	}
	children, err := rc.store.Children(parent)
	if err != nil {
		return err
	}

	siblingsBefore, _, err := splitChildren(children, current)
	if err != nil {
		return err
	}

	for i := len(siblingsBefore) - 1; i >= 0; i-- {
		sibling := siblingsBefore[i]
		if sibling.Equal(allocationBlock) {
			// We reached our final destination, allocate offset to allocationBlock by increasing end and break
			return rc.applyIntervalOpAndPropagate(allocationBlock, offset, increaseEnd)
		}
		// For non-allocation blocks, simply offset them by the given offset
		err = rc.applyIntervalOpAndPropagate(sibling, offset, increase)
		if err != nil {
			return err
		}
	}
	return nil
}

// offsetSiblingsAfter is the mirror of offsetSiblingsBefore for the
// siblings following current.
func (rc *reindexContext) offsetSiblingsAfter(allocationBlock, current *externalapi.DomainHash, offset uint64) error {
	parent, err := rc.store.Parent(current)
	if err != nil {
		return err
	}
	children, err := rc.store.Children(parent)
	if err != nil {
		return err
	}

	_, siblingsAfter, err := splitChildren(children, current)
	if err != nil {
		return err
	}

	for _, sibling := range siblingsAfter {
		if sibling.Equal(allocationBlock) {
			return rc.applyIntervalOpAndPropagate(allocationBlock, offset, decreaseStart)
		}
		err = rc.applyIntervalOpAndPropagate(sibling, offset, decrease)
		if err != nil {
			return err
		}
	}
	return nil
}

func (rc *reindexContext) applyIntervalOp(block *externalapi.DomainHash, offset uint64, op intervalOp) error {
	interval, err := rc.store.Interval(block)
	if err != nil {
		return err
	}
	newInterval, err := op(interval, offset)
	if err != nil {
		return errors.Wrapf(err, "offsetting the interval %s of %s by %d", interval, block, offset)
	}
	return rc.store.SetInterval(block, newInterval)
}

func (rc *reindexContext) applyIntervalOpAndPropagate(block *externalapi.DomainHash, offset uint64, op intervalOp) error {
	err := rc.applyIntervalOp(block, offset, op)
	if err != nil {
		return err
	}
	return rc.propagateInterval(block)
}

// concentrateInterval moves the capacity of parent towards child: the
// siblings of child are tightened to their subtree sizes plus slack and
// child gets everything in between.
func (rc *reindexContext) concentrateInterval(parent, child *externalapi.DomainHash, isFinalReindexRoot bool) error {
	children, err := rc.store.Children(parent)
	if err != nil {
		return err
	}

	siblingsBefore, siblingsAfter, err := splitChildren(children, child)
	if err != nil {
		return err
	}

	siblingsBeforeSubtreesSum, err := rc.tightenIntervalsBefore(parent, siblingsBefore)
	if err != nil {
		return err
	}
	siblingsAfterSubtreesSum, err := rc.tightenIntervalsAfter(parent, siblingsAfter)
	if err != nil {
		return err
	}

	return rc.expandIntervalToChosen(parent, child, siblingsBeforeSubtreesSum, siblingsAfterSubtreesSum, isFinalReindexRoot)
}

func (rc *reindexContext) subtreeSizesOf(blocks []*externalapi.DomainHash) ([]uint64, uint64, error) {
	sizes := make([]uint64, len(blocks))
	sizesSum := uint64(0)
	for i, block := range blocks {
		err := rc.countSubtrees(block)
		if err != nil {
			return nil, 0, err
		}
		sizes[i] = rc.subtreeSizes[*block]
		sizesSum += sizes[i]
	}
	return sizes, sizesSum, nil
}

func (rc *reindexContext) tightenIntervalsBefore(parent *externalapi.DomainHash, childrenBefore []*externalapi.DomainHash) (uint64, error) {
	if len(childrenBefore) == 0 {
		return 0, nil
	}
	sizes, sizesSum, err := rc.subtreeSizesOf(childrenBefore)
	if err != nil {
		return 0, err
	}

	interval, err := rc.store.Interval(parent)
	if err != nil {
		return 0, err
	}
	if sizesSum > interval.Size() || rc.slack > interval.Size()-sizesSum {
		return 0, errors.Wrapf(model.ErrDataOverflow,
			"interval %s of %s can't hold %d blocks before the chosen child with slack %d",
			interval, parent, sizesSum, rc.slack)
	}
	intervalBefore, err := model.NewReachabilityInterval(
		interval.Start+rc.slack,
		interval.Start+rc.slack+sizesSum-1,
	)
	if err != nil {
		return 0, err
	}
	intervals, err := SplitExact(intervalBefore, sizes)
	if err != nil {
		return 0, err
	}

	err = rc.setAndPropagate(childrenBefore, intervals)
	if err != nil {
		return 0, err
	}
	return sizesSum, nil
}

func (rc *reindexContext) tightenIntervalsAfter(parent *externalapi.DomainHash, childrenAfter []*externalapi.DomainHash) (uint64, error) {
	if len(childrenAfter) == 0 {
		return 0, nil
	}
	sizes, sizesSum, err := rc.subtreeSizesOf(childrenAfter)
	if err != nil {
		return 0, err
	}

	interval, err := rc.store.Interval(parent)
	if err != nil {
		return 0, err
	}
	// The last index of parent is never allocated to its children
	if sizesSum >= interval.Size() || rc.slack > interval.Size()-sizesSum-1 {
		return 0, errors.Wrapf(model.ErrDataOverflow,
			"interval %s of %s can't hold %d blocks after the chosen child with slack %d",
			interval, parent, sizesSum, rc.slack)
	}
	intervalAfter, err := model.NewReachabilityInterval(
		interval.End-rc.slack-sizesSum,
		interval.End-rc.slack-1,
	)
	if err != nil {
		return 0, err
	}
	intervals, err := SplitExact(intervalAfter, sizes)
	if err != nil {
		return 0, err
	}

	err = rc.setAndPropagate(childrenAfter, intervals)
	if err != nil {
		return 0, err
	}
	return sizesSum, nil
}

func (rc *reindexContext) setAndPropagate(blocks []*externalapi.DomainHash, intervals []model.ReachabilityInterval) error {
	for i, block := range blocks {
		err := rc.store.SetInterval(block, intervals[i])
		if err != nil {
			return err
		}
		err = rc.propagateInterval(block)
		if err != nil {
			return err
		}
	}
	return nil
}

func (rc *reindexContext) expandIntervalToChosen(parent, child *externalapi.DomainHash,
	siblingsBeforeSubtreesSum, siblingsAfterSubtreesSum uint64, isFinalReindexRoot bool) error {

	interval, err := rc.store.Interval(parent)
	if err != nil {
		return err
	}
	reserved := siblingsBeforeSubtreesSum + siblingsAfterSubtreesSum + 2*rc.slack + 1
	if reserved > interval.Size() {
		return errors.Wrapf(model.ErrDataOverflow,
			"interval %s of %s is out of capacity for %s: %d indexes are reserved for siblings and slack",
			interval, parent, child, reserved)
	}
	allocation, err := model.NewReachabilityInterval(
		interval.Start+siblingsBeforeSubtreesSum+rc.slack,
		interval.End-siblingsAfterSubtreesSum-rc.slack-1,
	)
	if err != nil {
		return err
	}
	current, err := rc.store.Interval(child)
	if err != nil {
		return err
	}

	// Propagate interval only if the chosen child is the final reindex root
	// and the new interval doesn't contain the previous one
	if isFinalReindexRoot && !allocation.Contains(current) {
		// Slack is deallocated on both sides so that the next time the
		// reindex root moves, allocation is likely to contain current.
		// The full allocation is reassigned to child right after the
		// propagation.
		if allocation.Size() < 2*rc.slack {
			return errors.Wrapf(model.ErrDataOverflow,
				"allocation %s of %s is smaller than twice the slack %d", allocation, child, rc.slack)
		}
		narrowed, err := model.NewReachabilityInterval(allocation.Start+rc.slack, allocation.End-rc.slack)
		if err != nil {
			return err
		}
		err = rc.store.SetInterval(child, narrowed)
		if err != nil {
			return err
		}
		err = rc.propagateInterval(child)
		if err != nil {
			return err
		}
	}

	return rc.store.SetInterval(child, allocation)
}

// splitChildren splits children into two slices: the children before pivot
// and the children after it.
func splitChildren(children []*externalapi.DomainHash, pivot *externalapi.DomainHash) (
	before, after []*externalapi.DomainHash, err error) {

	for i, child := range children {
		if child.Equal(pivot) {
			return children[:i], children[i+1:], nil
		}
	}
	return nil, nil, errors.Wrapf(model.ErrDataInconsistency, "pivot %s is not a child", pivot)
}
