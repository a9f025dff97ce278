package externalapi

import (
	"github.com/holiman/uint256"
)

// KType defines the size of GHOSTDAG consensus algorithm K parameter.
type KType uint16

// BlockGHOSTDAGData represents GHOSTDAG data for some block
type BlockGHOSTDAGData struct {
	blueScore          uint64
	blueWork           *uint256.Int
	selectedParent     *DomainHash
	mergeSetBlues      []*DomainHash
	mergeSetReds       []*DomainHash
	bluesAnticoneSizes map[DomainHash]KType
}

// NewBlockGHOSTDAGData creates a new instance of BlockGHOSTDAGData
func NewBlockGHOSTDAGData(
	blueScore uint64,
	blueWork *uint256.Int,
	selectedParent *DomainHash,
	mergeSetBlues []*DomainHash,
	mergeSetReds []*DomainHash,
	bluesAnticoneSizes map[DomainHash]KType) *BlockGHOSTDAGData {

	return &BlockGHOSTDAGData{
		blueScore:          blueScore,
		blueWork:           blueWork,
		selectedParent:     selectedParent,
		mergeSetBlues:      mergeSetBlues,
		mergeSetReds:       mergeSetReds,
		bluesAnticoneSizes: bluesAnticoneSizes,
	}
}

// NewBlockGHOSTDAGDataWithSelectedParent creates the in-progress GHOSTDAG
// data of a new block: the selected parent is its first blue with an empty
// blue anticone.
func NewBlockGHOSTDAGDataWithSelectedParent(selectedParent *DomainHash, k KType) *BlockGHOSTDAGData {
	mergeSetBlues := make([]*DomainHash, 1, k+1)
	mergeSetBlues[0] = selectedParent

	bluesAnticoneSizes := make(map[DomainHash]KType, k)
	bluesAnticoneSizes[*selectedParent] = 0

	return &BlockGHOSTDAGData{
		blueWork:           new(uint256.Int),
		selectedParent:     selectedParent,
		mergeSetBlues:      mergeSetBlues,
		mergeSetReds:       make([]*DomainHash, 0),
		bluesAnticoneSizes: bluesAnticoneSizes,
	}
}

// BlueScore returns the BlueScore of the block
func (bgd *BlockGHOSTDAGData) BlueScore() uint64 {
	return bgd.blueScore
}

// BlueWork returns the BlueWork of the block
func (bgd *BlockGHOSTDAGData) BlueWork() *uint256.Int {
	return bgd.blueWork
}

// SelectedParent returns the SelectedParent of the block
func (bgd *BlockGHOSTDAGData) SelectedParent() *DomainHash {
	return bgd.selectedParent
}

// MergeSetBlues returns the MergeSetBlues of the block (not a copy)
func (bgd *BlockGHOSTDAGData) MergeSetBlues() []*DomainHash {
	return bgd.mergeSetBlues
}

// MergeSetReds returns the MergeSetReds of the block (not a copy)
func (bgd *BlockGHOSTDAGData) MergeSetReds() []*DomainHash {
	return bgd.mergeSetReds
}

// BluesAnticoneSizes returns a map between the blocks in its MergeSetBlues and the size of their anticone
func (bgd *BlockGHOSTDAGData) BluesAnticoneSizes() map[DomainHash]KType {
	return bgd.bluesAnticoneSizes
}

// MergeSet returns the whole MergeSet of the block (equivalent to MergeSetBlues+MergeSetReds)
func (bgd *BlockGHOSTDAGData) MergeSet() []*DomainHash {
	mergeSet := make([]*DomainHash, len(bgd.mergeSetBlues)+len(bgd.mergeSetReds))
	copy(mergeSet, bgd.mergeSetBlues)
	if len(bgd.mergeSetReds) > 0 {
		copy(mergeSet[len(bgd.mergeSetBlues):], bgd.mergeSetReds)
	}

	return mergeSet
}

// AddBlue adds blue to the mergeset blues, records its anticone size and
// updates the anticone sizes of the blues it affects.
func (bgd *BlockGHOSTDAGData) AddBlue(blue *DomainHash, blueAnticoneSize KType,
	affectedBluesAnticoneSizes map[DomainHash]KType) {

	bgd.mergeSetBlues = append(bgd.mergeSetBlues, blue)
	bgd.bluesAnticoneSizes[*blue] = blueAnticoneSize
	for blueHash, size := range affectedBluesAnticoneSizes {
		bgd.bluesAnticoneSizes[blueHash] = size + 1
	}
}

// AddRed adds red to the mergeset reds
func (bgd *BlockGHOSTDAGData) AddRed(red *DomainHash) {
	bgd.mergeSetReds = append(bgd.mergeSetReds, red)
}

// FinalizeScoreAndWork sets the final blue score and blue work of the block
func (bgd *BlockGHOSTDAGData) FinalizeScoreAndWork(blueScore uint64, blueWork *uint256.Int) {
	bgd.blueScore = blueScore
	bgd.blueWork = blueWork
}

// ToCompact returns the compact projection of the data
func (bgd *BlockGHOSTDAGData) ToCompact() *CompactGHOSTDAGData {
	return &CompactGHOSTDAGData{
		BlueScore:      bgd.blueScore,
		BlueWork:       bgd.blueWork.Clone(),
		SelectedParent: bgd.selectedParent,
	}
}

// Equal returns whether bgd equals to other
func (bgd *BlockGHOSTDAGData) Equal(other *BlockGHOSTDAGData) bool {
	if bgd == nil || other == nil {
		return bgd == other
	}
	if bgd.blueScore != other.blueScore {
		return false
	}
	if !bgd.blueWork.Eq(other.blueWork) {
		return false
	}
	if !bgd.selectedParent.Equal(other.selectedParent) {
		return false
	}
	if !HashesEqual(bgd.mergeSetBlues, other.mergeSetBlues) {
		return false
	}
	if !HashesEqual(bgd.mergeSetReds, other.mergeSetReds) {
		return false
	}
	if len(bgd.bluesAnticoneSizes) != len(other.bluesAnticoneSizes) {
		return false
	}
	for hash, size := range bgd.bluesAnticoneSizes {
		otherSize, ok := other.bluesAnticoneSizes[hash]
		if !ok || otherSize != size {
			return false
		}
	}
	return true
}

// CompactGHOSTDAGData is the read-only projection of BlockGHOSTDAGData
// used for cheap comparisons
type CompactGHOSTDAGData struct {
	BlueScore      uint64
	BlueWork       *uint256.Int
	SelectedParent *DomainHash
}

// Equal returns whether cgd equals to other
func (cgd *CompactGHOSTDAGData) Equal(other *CompactGHOSTDAGData) bool {
	if cgd == nil || other == nil {
		return cgd == other
	}
	return cgd.BlueScore == other.BlueScore &&
		cgd.BlueWork.Eq(other.BlueWork) &&
		cgd.SelectedParent.Equal(other.SelectedParent)
}
