package ghostdagmanager

import (
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// chainBlock is a block on the selected parent chain walked while coloring
// a blue candidate. The walk starts at the new block itself, which is not
// stored yet, and continues through stored ancestors.
type chainBlock interface {
	ghostdagData() *externalapi.BlockGHOSTDAGData
}

type candidateChainBlock struct {
	data *externalapi.BlockGHOSTDAGData
}

func (b *candidateChainBlock) ghostdagData() *externalapi.BlockGHOSTDAGData {
	return b.data
}

type ancestorChainBlock struct {
	hash *externalapi.DomainHash
	data *externalapi.BlockGHOSTDAGData
}

func (b *ancestorChainBlock) ghostdagData() *externalapi.BlockGHOSTDAGData {
	return b.data
}

type coloringState int

const (
	coloringPending coloringState = iota
	coloringBlue
	coloringRed
)

type blueAnticoneSizeCacheKey struct {
	block      externalapi.DomainHash
	chainBlock externalapi.DomainHash
}

func (gm *ghostdagManager) checkBlueCandidate(stagingArea *model.StagingArea,
	newBlockData *externalapi.BlockGHOSTDAGData, blueCandidate *externalapi.DomainHash) (
	isBlue bool, candidateBlueAnticoneSize externalapi.KType,
	candidateBluesAnticoneSizes map[externalapi.DomainHash]externalapi.KType, err error) {

	// The maximum length of node.blues can be K+1 because
	// it contains the selected parent.
	if externalapi.KType(len(newBlockData.MergeSetBlues())) == gm.k+1 {
		return false, 0, nil, nil
	}

	candidateBluesAnticoneSizes = make(map[externalapi.DomainHash]externalapi.KType, gm.k)

	var current chainBlock = &candidateChainBlock{data: newBlockData}
	for {
		state, err := gm.checkBlueCandidateWithChainBlock(stagingArea, newBlockData, current, blueCandidate,
			candidateBluesAnticoneSizes, &candidateBlueAnticoneSize)
		if err != nil {
			return false, 0, nil, err
		}

		switch state {
		case coloringBlue:
			return true, candidateBlueAnticoneSize, candidateBluesAnticoneSizes, nil
		case coloringRed:
			return false, 0, nil, nil
		}

		selectedParent := current.ghostdagData().SelectedParent()
		if selectedParent.IsZero() {
			return false, 0, nil, errors.Wrapf(model.ErrDataInconsistency,
				"the selected parent chain ended before reaching an ancestor of %s", blueCandidate)
		}
		selectedParentData, err := gm.ghostdagDataStore.Get(gm.databaseContext, stagingArea, selectedParent)
		if err != nil {
			return false, 0, nil, err
		}
		current = &ancestorChainBlock{hash: selectedParent, data: selectedParentData}
	}
}

func (gm *ghostdagManager) checkBlueCandidateWithChainBlock(stagingArea *model.StagingArea,
	newBlockData *externalapi.BlockGHOSTDAGData, current chainBlock, blueCandidate *externalapi.DomainHash,
	candidateBluesAnticoneSizes map[externalapi.DomainHash]externalapi.KType,
	candidateBlueAnticoneSize *externalapi.KType) (coloringState, error) {

	// If blueCandidate is in the future of the chain block, then the chain
	// block's past is in the past of blueCandidate too, and every blue left
	// unchecked is in its past. Nothing remains to test.
	if ancestor, ok := current.(*ancestorChainBlock); ok {
		isAncestorOfBlueCandidate, err := gm.reachabilityService.IsDAGAncestorOf(ancestor.hash, blueCandidate)
		if err != nil {
			return coloringPending, err
		}
		if isAncestorOfBlueCandidate {
			return coloringBlue, nil
		}
	}

	for _, block := range current.ghostdagData().MergeSetBlues() {
		// Skip blocks that exist in the past of blueCandidate.
		isAncestorOfBlueCandidate, err := gm.reachabilityService.IsDAGAncestorOf(block, blueCandidate)
		if err != nil {
			return coloringPending, err
		}
		if isAncestorOfBlueCandidate {
			continue
		}

		blueAnticoneSize, err := gm.blueAnticoneSize(stagingArea, block, newBlockData)
		if err != nil {
			return coloringPending, err
		}
		candidateBluesAnticoneSizes[*block] = blueAnticoneSize

		*candidateBlueAnticoneSize++
		if *candidateBlueAnticoneSize > gm.k {
			// k-cluster violation: The candidate's blue anticone exceeded k
			return coloringRed, nil
		}

		if blueAnticoneSize == gm.k {
			// k-cluster violation: A block in candidate's blue anticone already
			// has k blue blocks in its own anticone
			return coloringRed, nil
		}

		if blueAnticoneSize > gm.k {
			return coloringPending, errors.Wrapf(model.ErrDataInconsistency,
				"found blue anticone size of %s larger than k", block)
		}
	}

	return coloringPending, nil
}

// blueAnticoneSize returns the blue anticone size of block from the
// worldview of context. Expects block to be in the blue set of context.
func (gm *ghostdagManager) blueAnticoneSize(stagingArea *model.StagingArea,
	block *externalapi.DomainHash, context *externalapi.BlockGHOSTDAGData) (externalapi.KType, error) {

	if blueAnticoneSize, ok := context.BluesAnticoneSizes()[*block]; ok {
		return blueAnticoneSize, nil
	}

	cacheKey := blueAnticoneSizeCacheKey{block: *block, chainBlock: *context.SelectedParent()}
	if cached, ok := gm.blueAnticoneSizeCache.Get(cacheKey); ok {
		return cached.(externalapi.KType), nil
	}

	current := context.SelectedParent()
	for !current.IsZero() {
		currentData, err := gm.ghostdagDataStore.Get(gm.databaseContext, stagingArea, current)
		if err != nil {
			return 0, err
		}
		if blueAnticoneSize, ok := currentData.BluesAnticoneSizes()[*block]; ok {
			gm.blueAnticoneSizeCache.Add(cacheKey, blueAnticoneSize)
			return blueAnticoneSize, nil
		}
		current = currentData.SelectedParent()
	}
	return 0, errors.Wrapf(model.ErrDataInconsistency,
		"block %s is not in blue set of the given context", block)
}
