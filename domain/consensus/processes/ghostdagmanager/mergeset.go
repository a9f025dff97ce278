package ghostdagmanager

import (
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
)

// OrderedMergeSetWithoutSelectedParent returns the blocks in the past of
// parents that are neither the selected parent nor in its past, sorted in
// ascending consensus order
func (gm *ghostdagManager) OrderedMergeSetWithoutSelectedParent(stagingArea *model.StagingArea,
	selectedParent *externalapi.DomainHash, parents []*externalapi.DomainHash) ([]*externalapi.DomainHash, error) {

	mergeSet, err := gm.mergeSetWithoutSelectedParent(stagingArea, selectedParent, parents)
	if err != nil {
		return nil, err
	}
	return gm.SortBlocks(stagingArea, mergeSet)
}

func (gm *ghostdagManager) mergeSetWithoutSelectedParent(stagingArea *model.StagingArea,
	selectedParent *externalapi.DomainHash, parents []*externalapi.DomainHash) ([]*externalapi.DomainHash, error) {

	mergeSetMap := make(map[externalapi.DomainHash]struct{}, gm.k)
	mergeSetSlice := make([]*externalapi.DomainHash, 0, gm.k)
	selectedParentPast := make(map[externalapi.DomainHash]struct{})
	queue := []*externalapi.DomainHash{}
	// Queueing all parents (other than the selected parent itself) for processing.
	for _, parent := range parents {
		if parent.Equal(selectedParent) {
			continue
		}
		if _, ok := mergeSetMap[*parent]; ok {
			continue
		}
		mergeSetMap[*parent] = struct{}{}
		mergeSetSlice = append(mergeSetSlice, parent)
		queue = append(queue, parent)
	}

	for len(queue) > 0 {
		var current *externalapi.DomainHash
		current, queue = queue[0], queue[1:]
		// For each parent of the current block we check whether it is in the past of the selected parent. If not,
		// we add it to the resulting merge-set and queue it for further processing.
		currentParents, err := gm.relationStore.Parents(gm.databaseContext, stagingArea, current)
		if err != nil {
			return nil, err
		}
		for _, parent := range currentParents {
			if _, ok := mergeSetMap[*parent]; ok {
				continue
			}
			if _, ok := selectedParentPast[*parent]; ok {
				continue
			}

			isAncestorOfSelectedParent, err := gm.reachabilityService.IsDAGAncestorOf(parent, selectedParent)
			if err != nil {
				return nil, err
			}
			if isAncestorOfSelectedParent {
				selectedParentPast[*parent] = struct{}{}
				continue
			}

			mergeSetMap[*parent] = struct{}{}
			mergeSetSlice = append(mergeSetSlice, parent)
			queue = append(queue, parent)
		}
	}

	return mergeSetSlice, nil
}
