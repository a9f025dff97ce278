package model

import (
	"fmt"
	"math"

	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// ReachabilityInterval is an inclusive interval of reachability tree
// indexes [Start, End]. Its size is End - Start + 1, so the empty interval
// is any interval with End = Start - 1.
type ReachabilityInterval struct {
	Start uint64
	End   uint64
}

// NewReachabilityInterval returns the interval [start, end]. Start must be
// positive, end must be below MaxUint64 and end+1 must not be below start.
// Otherwise a wrapped ErrDataOverflow is returned.
func NewReachabilityInterval(start, end uint64) (ReachabilityInterval, error) {
	if start == 0 || end == math.MaxUint64 || end+1 < start {
		return ReachabilityInterval{}, errors.Wrapf(ErrDataOverflow, "malformed interval [%d,%d]", start, end)
	}
	return ReachabilityInterval{Start: start, End: end}, nil
}

// MaximalReachabilityInterval is the capacity of the origin. 0 and MaxUint64
// are kept out of it so that empty intervals can always be expressed.
func MaximalReachabilityInterval() ReachabilityInterval {
	return ReachabilityInterval{Start: 1, End: math.MaxUint64 - 1}
}

// EmptyReachabilityInterval returns the canonical empty interval [1, 0].
func EmptyReachabilityInterval() ReachabilityInterval {
	return ReachabilityInterval{Start: 1, End: 0}
}

// Size returns the number of indexes in ri.
func (ri ReachabilityInterval) Size() uint64 {
	return ri.End + 1 - ri.Start
}

// IsEmpty returns whether ri has no indexes.
func (ri ReachabilityInterval) IsEmpty() bool {
	return ri.Size() == 0
}

func addOffset(bound, offset uint64) (uint64, error) {
	if offset > math.MaxUint64-bound {
		return 0, errors.Wrapf(ErrDataOverflow, "%d + %d overflows", bound, offset)
	}
	return bound + offset, nil
}

func subtractOffset(bound, offset uint64) (uint64, error) {
	if offset > bound {
		return 0, errors.Wrapf(ErrDataOverflow, "%d - %d underflows", bound, offset)
	}
	return bound - offset, nil
}

// Increase returns ri shifted up by offset.
func (ri ReachabilityInterval) Increase(offset uint64) (ReachabilityInterval, error) {
	start, err := addOffset(ri.Start, offset)
	if err != nil {
		return ReachabilityInterval{}, err
	}
	end, err := addOffset(ri.End, offset)
	if err != nil {
		return ReachabilityInterval{}, err
	}
	return NewReachabilityInterval(start, end)
}

// Decrease returns ri shifted down by offset.
func (ri ReachabilityInterval) Decrease(offset uint64) (ReachabilityInterval, error) {
	start, err := subtractOffset(ri.Start, offset)
	if err != nil {
		return ReachabilityInterval{}, err
	}
	end, err := subtractOffset(ri.End, offset)
	if err != nil {
		return ReachabilityInterval{}, err
	}
	return NewReachabilityInterval(start, end)
}

// IncreaseStart returns ri with its start moved up by offset.
func (ri ReachabilityInterval) IncreaseStart(offset uint64) (ReachabilityInterval, error) {
	start, err := addOffset(ri.Start, offset)
	if err != nil {
		return ReachabilityInterval{}, err
	}
	return NewReachabilityInterval(start, ri.End)
}

// DecreaseStart returns ri with its start moved down by offset.
func (ri ReachabilityInterval) DecreaseStart(offset uint64) (ReachabilityInterval, error) {
	start, err := subtractOffset(ri.Start, offset)
	if err != nil {
		return ReachabilityInterval{}, err
	}
	return NewReachabilityInterval(start, ri.End)
}

// IncreaseEnd returns ri with its end moved up by offset.
func (ri ReachabilityInterval) IncreaseEnd(offset uint64) (ReachabilityInterval, error) {
	end, err := addOffset(ri.End, offset)
	if err != nil {
		return ReachabilityInterval{}, err
	}
	return NewReachabilityInterval(ri.Start, end)
}

// DecreaseEnd returns ri with its end moved down by offset.
func (ri ReachabilityInterval) DecreaseEnd(offset uint64) (ReachabilityInterval, error) {
	end, err := subtractOffset(ri.End, offset)
	if err != nil {
		return ReachabilityInterval{}, err
	}
	return NewReachabilityInterval(ri.Start, end)
}

// Contains returns true if ri contains other.
func (ri ReachabilityInterval) Contains(other ReachabilityInterval) bool {
	return ri.Start <= other.Start && other.End <= ri.End
}

// StrictlyContains returns true if ri contains other and is not equal to it.
func (ri ReachabilityInterval) StrictlyContains(other ReachabilityInterval) bool {
	return ri.Start <= other.Start && other.End < ri.End
}

// Equal returns whether ri equals to other
func (ri ReachabilityInterval) Equal(other ReachabilityInterval) bool {
	return ri.Start == other.Start && ri.End == other.End
}

func (ri ReachabilityInterval) String() string {
	return fmt.Sprintf("[%d,%d]", ri.Start, ri.End)
}

// ReachabilityData is the reachability tree record of a block. Parent and
// Height are fixed on insertion, Interval is rewritten by reindexing.
type ReachabilityData struct {
	Parent   *externalapi.DomainHash
	Interval ReachabilityInterval
	Height   uint64
}

// Clone returns a clone of ReachabilityData
func (rd *ReachabilityData) Clone() *ReachabilityData {
	return &ReachabilityData{
		Parent:   rd.Parent,
		Interval: rd.Interval,
		Height:   rd.Height,
	}
}

// Equal returns whether rd equals to other
func (rd *ReachabilityData) Equal(other *ReachabilityData) bool {
	if rd == nil || other == nil {
		return rd == other
	}
	return rd.Parent.Equal(other.Parent) && rd.Interval.Equal(other.Interval) && rd.Height == other.Height
}
