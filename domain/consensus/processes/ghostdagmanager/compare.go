package ghostdagmanager

import (
	"sort"

	"github.com/Hoosat-Oy/flexidag/domain/consensus/model"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

func (gm *ghostdagManager) sortableBlock(stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (*externalapi.SortableBlock, error) {

	blueWork, err := gm.ghostdagDataStore.BlueWork(gm.databaseContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	return &externalapi.SortableBlock{Hash: blockHash, BlueWork: blueWork}, nil
}

func (gm *ghostdagManager) sortableBlocks(stagingArea *model.StagingArea,
	blockHashes []*externalapi.DomainHash) ([]*externalapi.SortableBlock, error) {

	sortableBlocks := make([]*externalapi.SortableBlock, len(blockHashes))
	for i, blockHash := range blockHashes {
		sortableBlock, err := gm.sortableBlock(stagingArea, blockHash)
		if err != nil {
			return nil, err
		}
		sortableBlocks[i] = sortableBlock
	}
	return sortableBlocks, nil
}

// ChooseSelectedParent returns the block with the most blue work among
// blockHashes, breaking ties by the larger hash. blockHashes must not be
// empty.
func (gm *ghostdagManager) ChooseSelectedParent(stagingArea *model.StagingArea,
	blockHashes ...*externalapi.DomainHash) (*externalapi.DomainHash, error) {

	if len(blockHashes) == 0 {
		return nil, errors.Wrap(model.ErrMissingParents, "cannot choose a selected parent out of no blocks")
	}

	selected, err := gm.sortableBlock(stagingArea, blockHashes[0])
	if err != nil {
		return nil, err
	}
	for _, blockHash := range blockHashes[1:] {
		candidate, err := gm.sortableBlock(stagingArea, blockHash)
		if err != nil {
			return nil, err
		}
		if selected.Less(candidate) {
			selected = candidate
		}
	}
	return selected.Hash, nil
}

// SortBlocks returns blocks sorted in ascending consensus order: by blue
// work, and then by hash
func (gm *ghostdagManager) SortBlocks(stagingArea *model.StagingArea,
	blocks []*externalapi.DomainHash) ([]*externalapi.DomainHash, error) {

	sortableBlocks, err := gm.sortableBlocks(stagingArea, blocks)
	if err != nil {
		return nil, err
	}
	sort.Slice(sortableBlocks, func(i, j int) bool {
		return sortableBlocks[i].Less(sortableBlocks[j])
	})

	sorted := make([]*externalapi.DomainHash, len(sortableBlocks))
	for i, sortableBlock := range sortableBlocks {
		sorted[i] = sortableBlock.Hash
	}
	return sorted, nil
}
