package ghostdagmanager

import (
	"math"

	"github.com/Hoosat-Oy/flexidag/domain/consensus/database"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// GHOSTDAG runs the GHOSTDAG protocol and calculates the block GHOSTDAG data
// of a new block with the given parents.
//
// The protocol colors the mergeset of the new block blue or red, where the
// mergeset is the set of blocks in the past of the new block which are
// neither its selected parent nor in the past of it. A mergeset block is
// colored blue iff, together with the blues already chosen:
//  1. it has at most K blue blocks in its anticone, as seen from the new block
//  2. it does not push the anticone of any existing blue above K
//
// The selected parent is always the first blue. The remaining mergeset
// blocks are tried in ascending order of blue work, and then hash.
//
// The blue score of the new block is the blue score of its selected parent
// plus the number of its mergeset blues. Its blue work is the blue work of
// its selected parent plus the difficulty of every mergeset blue.
func (gm *ghostdagManager) GHOSTDAG(stagingArea *model.StagingArea,
	parents []*externalapi.DomainHash) (*externalapi.BlockGHOSTDAGData, error) {

	if len(parents) == 0 {
		return nil, errors.New("cannot run GHOSTDAG for a block without parents")
	}

	selectedParent, err := gm.ChooseSelectedParent(stagingArea, parents...)
	if err != nil {
		return nil, err
	}

	newBlockData := externalapi.NewBlockGHOSTDAGDataWithSelectedParent(selectedParent, gm.k)

	mergeSetWithoutSelectedParent, err := gm.OrderedMergeSetWithoutSelectedParent(stagingArea, selectedParent, parents)
	if err != nil {
		return nil, err
	}

	err = gm.colorBlueCandidates(stagingArea, newBlockData, mergeSetWithoutSelectedParent)
	if err != nil {
		return nil, err
	}

	err = gm.finalizeScoreAndWork(stagingArea, newBlockData)
	if err != nil {
		return nil, err
	}
	return newBlockData, nil
}

func (gm *ghostdagManager) colorBlueCandidates(stagingArea *model.StagingArea,
	newBlockData *externalapi.BlockGHOSTDAGData, blueCandidates []*externalapi.DomainHash) error {

	for _, blueCandidate := range blueCandidates {
		isBlue, candidateBlueAnticoneSize, candidateBluesAnticoneSizes, err :=
			gm.checkBlueCandidate(stagingArea, newBlockData, blueCandidate)
		if err != nil {
			return err
		}

		if isBlue {
			// No k-cluster violation found, we can now set the candidate block as blue
			newBlockData.AddBlue(blueCandidate, candidateBlueAnticoneSize, candidateBluesAnticoneSizes)
		} else {
			newBlockData.AddRed(blueCandidate)
		}
	}
	return nil
}

func (gm *ghostdagManager) finalizeScoreAndWork(stagingArea *model.StagingArea,
	newBlockData *externalapi.BlockGHOSTDAGData) error {

	selectedParentData, err := gm.ghostdagDataStore.GetCompact(gm.databaseContext, stagingArea,
		newBlockData.SelectedParent())
	if err != nil {
		return err
	}

	blues := uint64(len(newBlockData.MergeSetBlues()))
	if selectedParentData.BlueScore > math.MaxUint64-blues {
		return errors.Wrapf(model.ErrDataOverflow, "blue score of %s overflows", newBlockData.SelectedParent())
	}
	blueScore := selectedParentData.BlueScore + blues

	addedWork := new(uint256.Int)
	for _, blue := range newBlockData.MergeSetBlues() {
		difficulty, err := gm.difficulty(stagingArea, blue)
		if err != nil {
			return err
		}
		if _, overflow := addedWork.AddOverflow(addedWork, difficulty); overflow {
			return errors.Wrapf(model.ErrDataOverflow, "added blue work of %s overflows", blue)
		}
	}

	blueWork := new(uint256.Int)
	if _, overflow := blueWork.AddOverflow(selectedParentData.BlueWork, addedWork); overflow {
		return errors.Wrapf(model.ErrDataOverflow, "blue work over %s overflows", newBlockData.SelectedParent())
	}

	newBlockData.FinalizeScoreAndWork(blueScore, blueWork)
	return nil
}

// difficulty returns the difficulty of blockHash. Blocks without a header,
// such as the origin, contribute no work.
func (gm *ghostdagManager) difficulty(stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (*uint256.Int, error) {

	difficulty, err := gm.headerStore.Difficulty(gm.databaseContext, stagingArea, blockHash)
	if database.IsNotFoundError(err) {
		log.Warnf("Block %s has no header, counting zero work for it", blockHash)
		return new(uint256.Int), nil
	}
	if err != nil {
		return nil, err
	}
	return difficulty, nil
}
