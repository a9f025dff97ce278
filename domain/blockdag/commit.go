package blockdag

import (
	"github.com/Hoosat-Oy/flexidag/domain/consensus/database"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/datastructures/reachabilitydatastore"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/processes/reachabilitymanager"
	"github.com/Hoosat-Oy/flexidag/infrastructure/logger"
	"github.com/pkg/errors"
)

// InitWithGenesis initializes the DAG with genesis as its first block. The
// origin, which is the parent of genesis, becomes the root of the
// reachability tree. Initializing again with the same genesis does nothing.
func (dag *BlockDAG) InitWithGenesis(genesis externalapi.BlockHeader) error {
	dag.commitLock.Lock()
	defer dag.commitLock.Unlock()

	stagingArea := model.NewStagingArea()
	genesisHash := genesis.BlockHash()

	storedGenesis, err := dag.tipsStore.Genesis(dag.databaseContext, stagingArea)
	if err == nil {
		if !storedGenesis.Equal(genesisHash) {
			return errors.Wrapf(model.ErrGenesisMismatch, "the DAG is initialized with genesis %s, got %s",
				storedGenesis, genesisHash)
		}
		return nil
	}
	if !database.IsNotFoundError(err) {
		return err
	}

	origin := genesis.ParentHash()
	if !origin.Equal(dag.params.Origin) {
		return errors.Wrapf(model.ErrGenesisMismatch, "genesis %s has parent %s instead of the origin %s",
			genesisHash, origin, dag.params.Origin)
	}

	reachabilityStore := reachabilitydatastore.NewStagingStore(dag.reachabilityDataStore, dag.databaseContext, stagingArea)
	err = reachabilitymanager.Init(reachabilityStore, origin)
	if err != nil {
		return err
	}
	err = dag.ghostdagDataStore.Insert(dag.databaseContext, stagingArea, origin, dag.ghostdagManager.OriginGHOSTDAGData())
	if err != nil && !errors.Is(err, model.ErrKeyAlreadyExists) {
		return err
	}
	err = dag.relationStore.StageBlockRelation(dag.databaseContext, stagingArea, origin, nil)
	if err != nil {
		return err
	}
	dag.tipsStore.StageGenesis(stagingArea, genesisHash, origin)
	dag.tipsStore.StageTips(stagingArea, []*externalapi.DomainHash{})

	err = dag.stageBlock(stagingArea, reachabilityStore, genesis, dag.ghostdagManager.GenesisGHOSTDAGData(genesis))
	if err != nil {
		return err
	}
	err = dag.flush(stagingArea)
	if err != nil {
		return err
	}

	log.Infof("Initialized the DAG with genesis %s", genesisHash)
	return nil
}

// Commit adds header to the DAG. Every parent of header must be committed
// already. Committing a block that is already in the DAG does nothing.
//
// All the data of the block is written in a single database transaction.
func (dag *BlockDAG) Commit(header externalapi.BlockHeader) error {
	onEnd := logger.LogAndMeasureExecutionTime(log, "BlockDAG.Commit")
	defer onEnd()

	dag.commitLock.Lock()
	defer dag.commitLock.Unlock()

	if dag.haltErr != nil {
		return errors.Wrapf(dag.haltErr, "commits are halted")
	}

	stagingArea := model.NewStagingArea()
	blockHash := header.BlockHash()

	exists, err := dag.ghostdagDataStore.Has(dag.databaseContext, stagingArea, blockHash)
	if err != nil {
		return err
	}
	if exists {
		log.Debugf("Block %s is already committed", blockHash)
		return nil
	}

	_, err = dag.tipsStore.Genesis(dag.databaseContext, stagingArea)
	if database.IsNotFoundError(err) {
		return errors.WithStack(ErrNotInitialized)
	}
	if err != nil {
		return err
	}
	if header.IsGenesis() {
		return errors.Wrapf(model.ErrGenesisMismatch, "block %s claims to be a genesis", blockHash)
	}

	parents := header.ParentsHash()
	if len(parents) == 0 {
		return errors.Wrapf(model.ErrMissingParents, "block %s has no parents", blockHash)
	}
	missingParents := make([]*externalapi.DomainHash, 0)
	for _, parent := range parents {
		hasParent, err := dag.ghostdagDataStore.Has(dag.databaseContext, stagingArea, parent)
		if err != nil {
			return err
		}
		if !hasParent {
			missingParents = append(missingParents, parent)
		}
	}
	if len(missingParents) > 0 {
		return errors.Wrapf(model.ErrMissingParents, "block %s is missing parents %v", blockHash, missingParents)
	}

	ghostdagData, err := dag.ghostdagManager.GHOSTDAG(stagingArea, parents)
	if err != nil {
		return err
	}

	reachabilityStore := reachabilitydatastore.NewStagingStore(dag.reachabilityDataStore, dag.databaseContext, stagingArea)
	err = dag.stageBlock(stagingArea, reachabilityStore, header, ghostdagData)
	if err != nil {
		return err
	}
	return dag.flush(stagingArea)
}

// stageBlock stages the GHOSTDAG data, reachability, relations and header
// of a block, updates the tips and hints the heaviest tip to the
// reachability index.
func (dag *BlockDAG) stageBlock(stagingArea *model.StagingArea, reachabilityStore model.ReachabilityStore,
	header externalapi.BlockHeader, ghostdagData *externalapi.BlockGHOSTDAGData) error {

	blockHash := header.BlockHash()

	err := dag.ghostdagDataStore.Insert(dag.databaseContext, stagingArea, blockHash, ghostdagData)
	if errors.Is(err, model.ErrKeyAlreadyExists) {
		log.Debugf("GHOSTDAG data of %s was inserted concurrently", blockHash)
		return nil
	}
	if err != nil {
		return err
	}

	mergeSet := dag.ghostdagManager.UnorderedMergeSetWithoutSelectedParent(ghostdagData)
	for _, block := range mergeSet {
		inReachability, err := reachabilityStore.Has(block)
		if err != nil {
			return err
		}
		if !inReachability {
			return dag.haltOnReachabilityError(blockHash, errors.Wrapf(model.ErrDataInconsistency,
				"block %s of the mergeset of %s is missing from the reachability index", block, blockHash))
		}
	}
	err = reachabilitymanager.AddBlockWithParams(reachabilityStore, blockHash, ghostdagData.SelectedParent(), mergeSet,
		dag.params.ReindexDepth, dag.params.ReindexSlack)
	if err != nil {
		return dag.haltOnReachabilityError(blockHash, err)
	}

	err = dag.relationStore.StageBlockRelation(dag.databaseContext, stagingArea, blockHash, header.ParentsHash())
	if err != nil {
		return err
	}
	dag.headerStore.Stage(stagingArea, blockHash, header)

	tips, err := dag.updateTips(stagingArea, reachabilityStore, blockHash)
	if err != nil {
		return err
	}
	heaviestTip, err := dag.ghostdagManager.ChooseSelectedParent(stagingArea, tips...)
	if err != nil {
		return err
	}
	err = reachabilitymanager.TryAdvancingReindexRoot(reachabilityStore, heaviestTip,
		dag.params.ReindexDepth, dag.params.ReindexSlack)
	if err != nil {
		return dag.haltOnReachabilityError(blockHash, err)
	}
	return nil
}

// haltOnReachabilityError halts all further commits if err means the
// reachability index is out of capacity or corrupted. It returns err.
func (dag *BlockDAG) haltOnReachabilityError(blockHash *externalapi.DomainHash, err error) error {
	if errors.Is(err, model.ErrDataInconsistency) || errors.Is(err, model.ErrDataOverflow) {
		log.Criticalf("Adding block %s to the reachability index failed: %+v", blockHash, err)
		dag.haltErr = err
	}
	return err
}

// updateTips adds newBlock to the tips and removes the tips in its past
func (dag *BlockDAG) updateTips(stagingArea *model.StagingArea, reachabilityStore model.ReachabilityStore,
	newBlock *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {

	oldTips, err := dag.tipsStore.Tips(dag.databaseContext, stagingArea)
	if err != nil && !database.IsNotFoundError(err) {
		return nil, err
	}

	newTips := make([]*externalapi.DomainHash, 0, len(oldTips)+1)
	for _, tip := range oldTips {
		isAncestorOfNewBlock, err := reachabilitymanager.IsDAGAncestorOf(reachabilityStore, tip, newBlock)
		if err != nil {
			return nil, err
		}
		if !isAncestorOfNewBlock {
			newTips = append(newTips, tip)
		}
	}
	newTips = append(newTips, newBlock)

	dag.tipsStore.StageTips(stagingArea, newTips)
	return newTips, nil
}

// flush commits stagingArea in one database transaction. Reachability
// readers are held off while the stores and their caches are updated.
func (dag *BlockDAG) flush(stagingArea *model.StagingArea) (err error) {
	unlock := dag.reachabilityService.Lock()
	defer unlock()

	dbTx, err := dag.databaseContext.Begin()
	if err != nil {
		return err
	}
	defer func() {
		rollbackErr := dbTx.RollbackUnlessClosed()
		if err == nil {
			err = rollbackErr
		}
	}()

	err = stagingArea.Commit(dbTx)
	if err != nil {
		return err
	}
	err = dbTx.Commit()
	if err != nil {
		return err
	}
	stagingArea.UpdateCaches()
	return nil
}
