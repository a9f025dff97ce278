package externalapi

import "github.com/holiman/uint256"

// SortableBlock pairs a block hash with its blue work. SortableBlocks are
// ordered by blue work, and then by hash.
type SortableBlock struct {
	Hash     *DomainHash
	BlueWork *uint256.Int
}

// Less returns whether sb precedes other in the consensus order
func (sb *SortableBlock) Less(other *SortableBlock) bool {
	return sb.Cmp(other) < 0
}

// Cmp compares sb with other in the consensus order
func (sb *SortableBlock) Cmp(other *SortableBlock) int {
	cmp := sb.BlueWork.Cmp(other.BlueWork)
	if cmp != 0 {
		return cmp
	}
	return sb.Hash.Cmp(other.Hash)
}
