package ghostdagmanager

import (
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// AscendingMergeSetWithoutSelectedParent returns the mergeset of
// ghostdagData, blues and reds together and without the selected parent,
// in ascending consensus order
func (gm *ghostdagManager) AscendingMergeSetWithoutSelectedParent(stagingArea *model.StagingArea,
	ghostdagData *externalapi.BlockGHOSTDAGData) ([]*externalapi.DomainHash, error) {

	blues, reds, err := gm.sortableMergeSet(stagingArea, ghostdagData)
	if err != nil {
		return nil, err
	}
	return mergeJoin(blues, reds, 1)
}

// DescendingMergeSetWithoutSelectedParent is the reverse of
// AscendingMergeSetWithoutSelectedParent
func (gm *ghostdagManager) DescendingMergeSetWithoutSelectedParent(stagingArea *model.StagingArea,
	ghostdagData *externalapi.BlockGHOSTDAGData) ([]*externalapi.DomainHash, error) {

	blues, reds, err := gm.sortableMergeSet(stagingArea, ghostdagData)
	if err != nil {
		return nil, err
	}
	reverseSortableBlocks(blues)
	reverseSortableBlocks(reds)
	return mergeJoin(blues, reds, -1)
}

// ConsensusOrderedMergeSet returns the selected parent followed by
// AscendingMergeSetWithoutSelectedParent
func (gm *ghostdagManager) ConsensusOrderedMergeSet(stagingArea *model.StagingArea,
	ghostdagData *externalapi.BlockGHOSTDAGData) ([]*externalapi.DomainHash, error) {

	ascending, err := gm.AscendingMergeSetWithoutSelectedParent(stagingArea, ghostdagData)
	if err != nil {
		return nil, err
	}
	if ghostdagData.SelectedParent().IsZero() {
		return ascending, nil
	}
	return append([]*externalapi.DomainHash{ghostdagData.SelectedParent()}, ascending...), nil
}

// UnorderedMergeSetWithoutSelectedParent returns the mergeset blues other
// than the selected parent followed by the mergeset reds
func (gm *ghostdagManager) UnorderedMergeSetWithoutSelectedParent(
	ghostdagData *externalapi.BlockGHOSTDAGData) []*externalapi.DomainHash {

	blues := ghostdagData.MergeSetBlues()
	if len(blues) > 0 {
		blues = blues[1:]
	}
	mergeSet := make([]*externalapi.DomainHash, 0, len(blues)+len(ghostdagData.MergeSetReds()))
	mergeSet = append(mergeSet, blues...)
	return append(mergeSet, ghostdagData.MergeSetReds()...)
}

// UnorderedMergeSet returns the mergeset blues followed by the mergeset reds
func (gm *ghostdagManager) UnorderedMergeSet(ghostdagData *externalapi.BlockGHOSTDAGData) []*externalapi.DomainHash {
	return ghostdagData.MergeSet()
}

// sortableMergeSet returns the mergeset blues without the selected parent
// and the mergeset reds, each in the ascending order it was colored in
func (gm *ghostdagManager) sortableMergeSet(stagingArea *model.StagingArea,
	ghostdagData *externalapi.BlockGHOSTDAGData) (blues, reds []*externalapi.SortableBlock, err error) {

	blueHashes := ghostdagData.MergeSetBlues()
	if len(blueHashes) > 0 {
		blueHashes = blueHashes[1:]
	}
	blues, err = gm.sortableBlocks(stagingArea, blueHashes)
	if err != nil {
		return nil, nil, err
	}
	reds, err = gm.sortableBlocks(stagingArea, ghostdagData.MergeSetReds())
	if err != nil {
		return nil, nil, err
	}
	return blues, reds, nil
}

// mergeJoin merges two lists sorted in the direction of sign: 1 for
// ascending, -1 for descending. A block appearing in both lists is an
// error.
func mergeJoin(a, b []*externalapi.SortableBlock, sign int) ([]*externalapi.DomainHash, error) {
	merged := make([]*externalapi.DomainHash, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		cmp := a[i].Cmp(b[j]) * sign
		switch {
		case cmp == 0:
			return nil, errors.Wrapf(model.ErrDAGDupBlocks, "block %s is both blue and red", a[i].Hash)
		case cmp < 0:
			merged = append(merged, a[i].Hash)
			i++
		default:
			merged = append(merged, b[j].Hash)
			j++
		}
	}
	for ; i < len(a); i++ {
		merged = append(merged, a[i].Hash)
	}
	for ; j < len(b); j++ {
		merged = append(merged, b[j].Hash)
	}
	return merged, nil
}

func reverseSortableBlocks(blocks []*externalapi.SortableBlock) {
	for i, j := 0, len(blocks)-1; i < j; i, j = i+1, j-1 {
		blocks[i], blocks[j] = blocks[j], blocks[i]
	}
}
