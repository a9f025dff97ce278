package ghostdagmanager

import (
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
)

// VerifyAndGHOSTDAG calculates the GHOSTDAG data of header using the blue
// set claimed by a remote peer as the only candidates besides its parents.
// If the claimed blue set disagrees with the coloring, the data is
// recalculated from the parents alone and the claim is checked again. The
// recalculation only decides whether the claim is accepted: the returned
// data is always the coloring of the parents and the claimed blues.
func (gm *ghostdagManager) VerifyAndGHOSTDAG(stagingArea *model.StagingArea, blueBlocks []externalapi.BlockHeader,
	header externalapi.BlockHeader) (*externalapi.BlockGHOSTDAGData, error) {

	parents := header.ParentsHash()
	if len(parents) == 0 {
		return nil, errors.Errorf("header %s has no parents", header.BlockHash())
	}

	selectedParent, err := gm.ChooseSelectedParent(stagingArea, parents...)
	if err != nil {
		return nil, err
	}

	claimedBlues := make(map[externalapi.DomainHash]struct{}, len(blueBlocks))
	candidateSet := make(map[externalapi.DomainHash]struct{}, len(parents)+len(blueBlocks))
	candidates := make([]*externalapi.DomainHash, 0, len(parents)+len(blueBlocks))
	addCandidate := func(candidate *externalapi.DomainHash) {
		if candidate.Equal(selectedParent) {
			return
		}
		if _, ok := candidateSet[*candidate]; ok {
			return
		}
		candidateSet[*candidate] = struct{}{}
		candidates = append(candidates, candidate)
	}
	for _, parent := range parents {
		addCandidate(parent)
	}
	for _, blueBlock := range blueBlocks {
		claimedBlues[*blueBlock.BlockHash()] = struct{}{}
		addCandidate(blueBlock.BlockHash())
	}

	sortedCandidates, err := gm.SortBlocks(stagingArea, candidates)
	if err != nil {
		return nil, err
	}

	newBlockData := externalapi.NewBlockGHOSTDAGDataWithSelectedParent(selectedParent, gm.k)
	err = gm.colorBlueCandidates(stagingArea, newBlockData, sortedCandidates)
	if err != nil {
		return nil, err
	}

	if !bluesMatch(newBlockData.MergeSetBlues()[1:], claimedBlues) {
		log.Warnf("The claimed blue set of %s disagrees with its coloring, recalculating from its parents",
			header.BlockHash())
		recalculated, err := gm.GHOSTDAG(stagingArea, parents)
		if err != nil {
			return nil, err
		}
		if !bluesMatch(recalculated.MergeSetBlues()[1:], claimedBlues) {
			log.Debugf("GHOSTDAG data mismatch for %s. Calculated: %s Claimed blues: %s",
				header.BlockHash(), spew.Sdump(recalculated), spew.Sdump(claimedBlues))
			return nil, errors.Wrapf(model.ErrGHOSTDAGDataMismatch, "the claimed blue set of %s is invalid",
				header.BlockHash())
		}
	}

	err = gm.finalizeScoreAndWork(stagingArea, newBlockData)
	if err != nil {
		return nil, err
	}
	log.Debugf("Verified the blue set of %s", header.BlockHash())
	return newBlockData, nil
}

// CheckGHOSTDAGDataBlueBlock recolors the mergeset blues of ghostdagData on
// top of its selected parent and checks that every one of them comes out
// blue with the same blue score and blue work.
func (gm *ghostdagManager) CheckGHOSTDAGDataBlueBlock(stagingArea *model.StagingArea,
	ghostdagData *externalapi.BlockGHOSTDAGData) error {

	blues := ghostdagData.MergeSetBlues()
	if len(blues) == 0 {
		return errors.Wrapf(model.ErrGHOSTDAGDataMismatch, "GHOSTDAG data has no selected parent blue")
	}

	checkData := externalapi.NewBlockGHOSTDAGDataWithSelectedParent(ghostdagData.SelectedParent(), gm.k)
	err := gm.colorBlueCandidates(stagingArea, checkData, blues[1:])
	if err != nil {
		return err
	}

	if len(checkData.MergeSetBlues()) != len(blues) {
		return errors.Wrapf(model.ErrGHOSTDAGDataMismatch, "expected %d blues, recolored %d",
			len(blues), len(checkData.MergeSetBlues()))
	}
	expectedBlues := make(map[externalapi.DomainHash]struct{}, len(blues))
	for _, blue := range blues[1:] {
		expectedBlues[*blue] = struct{}{}
	}
	if !bluesMatch(checkData.MergeSetBlues()[1:], expectedBlues) {
		return errors.Wrapf(model.ErrGHOSTDAGDataMismatch, "recolored blue set differs")
	}

	err = gm.finalizeScoreAndWork(stagingArea, checkData)
	if err != nil {
		return err
	}
	if !checkData.ToCompact().Equal(ghostdagData.ToCompact()) {
		log.Debugf("Compact GHOSTDAG data mismatch. Expected: %s Got: %s",
			spew.Sdump(ghostdagData.ToCompact()), spew.Sdump(checkData.ToCompact()))
		return errors.Wrapf(model.ErrGHOSTDAGDataMismatch, "blue score or blue work differs")
	}
	return nil
}

func bluesMatch(blues []*externalapi.DomainHash, expected map[externalapi.DomainHash]struct{}) bool {
	if len(blues) != len(expected) {
		return false
	}
	for _, blue := range blues {
		if _, ok := expected[*blue]; !ok {
			return false
		}
	}
	return true
}
