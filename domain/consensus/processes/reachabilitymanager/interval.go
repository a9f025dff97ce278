package reachabilitymanager

import (
	"math"

	"github.com/Hoosat-Oy/flexidag/domain/consensus/model"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// SplitHalf splits ri by a fraction of 0.5.
// See splitFraction for further details.
func SplitHalf(ri model.ReachabilityInterval) (left, right model.ReachabilityInterval, err error) {
	return splitFraction(ri, 0.5)
}

// splitFraction splits ri to two parts such that their union is equal to
// ri and the first (left) part contains the given fraction of ri's size.
// Note: if the split results in fractional parts, this method rounds
// the first part up and the last part down.
func splitFraction(ri model.ReachabilityInterval, fraction float64) (left, right model.ReachabilityInterval, err error) {
	leftSize := uint64(math.Ceil(float64(ri.Size()) * fraction))
	left, err = model.NewReachabilityInterval(ri.Start, ri.Start+leftSize-1)
	if err != nil {
		return model.ReachabilityInterval{}, model.ReachabilityInterval{}, err
	}
	right, err = model.NewReachabilityInterval(ri.Start+leftSize, ri.End)
	if err != nil {
		return model.ReachabilityInterval{}, model.ReachabilityInterval{}, err
	}
	return left, right, nil
}

// SplitExact splits ri to exactly |sizes| parts where |part_i| = sizes[i].
// sum(sizes) must be exactly equal to ri's size.
func SplitExact(ri model.ReachabilityInterval, sizes []uint64) ([]model.ReachabilityInterval, error) {
	sizesSum := sum(sizes)
	if sizesSum != ri.Size() {
		return nil, errors.Wrapf(model.ErrDataInconsistency,
			"sum of sizes %d must be equal to the size of interval %s", sizesSum, ri)
	}

	intervals := make([]model.ReachabilityInterval, len(sizes))
	start := ri.Start
	for i, size := range sizes {
		interval, err := model.NewReachabilityInterval(start, start+size-1)
		if err != nil {
			return nil, err
		}
		intervals[i] = interval
		start += size
	}
	return intervals, nil
}

// SplitExponential splits ri to |sizes| parts by the allocation rule
// described below. sum(sizes) must be positive and not greater than ri's
// size. Every part_i is allocated at least sizes[i] capacity. The remaining
// budget is split by an exponentially biased rule described below.
//
// This rule follows the GHOSTDAG protocol behavior where the child
// with the largest subtree is expected to dominate the competition
// for new blocks and thus grow the most. However, we may need to
// add slack for non-largest subtrees in order to make CPU reindexing
// attacks unworthy.
func SplitExponential(ri model.ReachabilityInterval, sizes []uint64) ([]model.ReachabilityInterval, error) {
	intervalSize := ri.Size()
	sizesSum := sum(sizes)
	if intervalSize < sizesSum {
		return nil, errors.Wrapf(model.ErrDataOverflow,
			"interval %s is smaller than the sum of sizes %d", ri, sizesSum)
	}
	if sizesSum == 0 {
		return nil, errors.Wrapf(model.ErrDataInconsistency, "cannot split %s to 0 parts", ri)
	}
	if intervalSize == sizesSum {
		return SplitExact(ri, sizes)
	}

	// Add a fractional bias to every size in the given sizes
	remainingBias := intervalSize - sizesSum
	totalBias := float64(remainingBias)

	biasedSizes := make([]uint64, len(sizes))
	fractions := exponentialFractions(sizes)
	for i, fraction := range fractions {
		var bias uint64
		if i == len(fractions)-1 {
			bias = remainingBias
		} else {
			bias = min(remainingBias, uint64(math.Round(totalBias*fraction)))
		}
		biasedSizes[i] = sizes[i] + bias
		remainingBias -= bias
	}
	return SplitExact(ri, biasedSizes)
}

// exponentialFractions returns a fraction of each size in sizes
// as follows:
//
//	fraction[i] = 2^size[i] / sum_j(2^size[j])
//
// In the code below the above equation is divided by 2^max(size)
// to avoid exploding numbers. Note that in 1 / 2^(max(size)-size[i])
// we divide 1 by potentially a very large number, which will
// result in loss of float precision. This is not a problem - all
// numbers close to 0 bear effectively the same weight.
func exponentialFractions(sizes []uint64) []float64 {
	maxSize := uint64(0)
	for _, size := range sizes {
		if size > maxSize {
			maxSize = size
		}
	}
	fractions := make([]float64, len(sizes))
	for i, size := range sizes {
		fractions[i] = 1 / math.Pow(2, float64(maxSize-size))
	}
	fractionsSum := float64(0)
	for _, fraction := range fractions {
		fractionsSum += fraction
	}
	for i, fraction := range fractions {
		fractions[i] = fraction / fractionsSum
	}
	return fractions
}

func sum(sizes []uint64) uint64 {
	total := uint64(0)
	for _, size := range sizes {
		total += size
	}
	return total
}

// childrenCapacity returns the part of the interval of blockHash that may be
// allocated to its children. The last index is kept so that the interval
// of blockHash strictly contains the intervals of its children.
func childrenCapacity(store model.ReachabilityStoreReader, blockHash *externalapi.DomainHash) (model.ReachabilityInterval, error) {
	interval, err := store.Interval(blockHash)
	if err != nil {
		return model.ReachabilityInterval{}, err
	}
	return interval.DecreaseEnd(1)
}

// remainingIntervalBefore returns the free capacity of blockHash that
// precedes its first child.
func remainingIntervalBefore(store model.ReachabilityStoreReader, blockHash *externalapi.DomainHash) (model.ReachabilityInterval, error) {
	capacity, err := childrenCapacity(store, blockHash)
	if err != nil {
		return model.ReachabilityInterval{}, err
	}
	children, err := store.Children(blockHash)
	if err != nil {
		return model.ReachabilityInterval{}, err
	}
	if len(children) == 0 {
		return capacity, nil
	}
	firstChildInterval, err := store.Interval(children[0])
	if err != nil {
		return model.ReachabilityInterval{}, err
	}
	return model.NewReachabilityInterval(capacity.Start, firstChildInterval.Start-1)
}

// remainingIntervalAfter returns the free capacity of blockHash that
// follows its last child.
func remainingIntervalAfter(store model.ReachabilityStoreReader, blockHash *externalapi.DomainHash) (model.ReachabilityInterval, error) {
	capacity, err := childrenCapacity(store, blockHash)
	if err != nil {
		return model.ReachabilityInterval{}, err
	}
	children, err := store.Children(blockHash)
	if err != nil {
		return model.ReachabilityInterval{}, err
	}
	if len(children) == 0 {
		return capacity, nil
	}
	lastChildInterval, err := store.Interval(children[len(children)-1])
	if err != nil {
		return model.ReachabilityInterval{}, err
	}
	return model.NewReachabilityInterval(lastChildInterval.End+1, capacity.End)
}
