package blockdag

import (
	"github.com/Hoosat-Oy/flexidag/domain/consensus/database"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// GhostData calculates the GHOSTDAG data a block with the given parents
// would have. Nothing is stored.
func (dag *BlockDAG) GhostData(parents []*externalapi.DomainHash) (*externalapi.BlockGHOSTDAGData, error) {
	return dag.ghostdagManager.GHOSTDAG(model.NewStagingArea(), parents)
}

// GhostDataByHash returns the stored GHOSTDAG data of blockHash
func (dag *BlockDAG) GhostDataByHash(blockHash *externalapi.DomainHash) (*externalapi.BlockGHOSTDAGData, error) {
	return dag.ghostdagDataStore.Get(dag.databaseContext, model.NewStagingArea(), blockHash)
}

// VerifyAndGHOSTDAG calculates the GHOSTDAG data of header and checks it
// against the blue set claimed for it
func (dag *BlockDAG) VerifyAndGHOSTDAG(blueBlocks []externalapi.BlockHeader,
	header externalapi.BlockHeader) (*externalapi.BlockGHOSTDAGData, error) {

	return dag.ghostdagManager.VerifyAndGHOSTDAG(model.NewStagingArea(), blueBlocks, header)
}

// CheckGHOSTDAGDataBlueBlock checks that ghostdagData is consistent with
// the coloring of its mergeset blues
func (dag *BlockDAG) CheckGHOSTDAGDataBlueBlock(ghostdagData *externalapi.BlockGHOSTDAGData) error {
	return dag.ghostdagManager.CheckGHOSTDAGDataBlueBlock(model.NewStagingArea(), ghostdagData)
}

// HasBlockConnected returns whether blockHash is committed to the DAG
func (dag *BlockDAG) HasBlockConnected(blockHash *externalapi.DomainHash) (bool, error) {
	hasGHOSTDAGData, err := dag.ghostdagDataStore.Has(dag.databaseContext, model.NewStagingArea(), blockHash)
	if err != nil || !hasGHOSTDAGData {
		return false, err
	}
	return dag.reachabilityStore.Has(blockHash)
}

// IsAncestorOf returns whether ancestor is in the past of descendant. A
// block is an ancestor of itself.
func (dag *BlockDAG) IsAncestorOf(ancestor, descendant *externalapi.DomainHash) (bool, error) {
	return dag.reachabilityService.IsDAGAncestorOf(ancestor, descendant)
}

// CheckAncestorOf returns whether ancestor is in the past of any of
// descendants. Unlike IsAncestorOf it fails for blocks that are not in the
// DAG.
func (dag *BlockDAG) CheckAncestorOf(ancestor *externalapi.DomainHash,
	descendants []*externalapi.DomainHash) (bool, error) {

	for _, block := range append([]*externalapi.DomainHash{ancestor}, descendants...) {
		exists, err := dag.reachabilityStore.Has(block)
		if err != nil {
			return false, err
		}
		if !exists {
			return false, errors.Wrapf(database.ErrNotFound, "block %s is not in the DAG", block)
		}
	}
	return dag.reachabilityService.IsDAGAncestorOfAny(ancestor, descendants)
}

// Parents returns the parents of blockHash
func (dag *BlockDAG) Parents(blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {
	return dag.relationStore.Parents(dag.databaseContext, model.NewStagingArea(), blockHash)
}

// Children returns the children of blockHash
func (dag *BlockDAG) Children(blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {
	return dag.relationStore.Children(dag.databaseContext, model.NewStagingArea(), blockHash)
}

// Header returns the header of blockHash
func (dag *BlockDAG) Header(blockHash *externalapi.DomainHash) (externalapi.BlockHeader, error) {
	return dag.headerStore.BlockHeader(dag.databaseContext, model.NewStagingArea(), blockHash)
}

// Tips returns the blocks of the DAG that have no children
func (dag *BlockDAG) Tips() ([]*externalapi.DomainHash, error) {
	tips, err := dag.tipsStore.Tips(dag.databaseContext, model.NewStagingArea())
	if database.IsNotFoundError(err) {
		return nil, errors.WithStack(ErrNotInitialized)
	}
	return tips, err
}

// Genesis returns the hash of the genesis the DAG was initialized with
func (dag *BlockDAG) Genesis() (*externalapi.DomainHash, error) {
	genesis, err := dag.tipsStore.Genesis(dag.databaseContext, model.NewStagingArea())
	if database.IsNotFoundError(err) {
		return nil, errors.WithStack(ErrNotInitialized)
	}
	return genesis, err
}

// Origin returns the hash of the virtual origin of the DAG
func (dag *BlockDAG) Origin() (*externalapi.DomainHash, error) {
	origin, err := dag.tipsStore.Origin(dag.databaseContext, model.NewStagingArea())
	if database.IsNotFoundError(err) {
		return nil, errors.WithStack(ErrNotInitialized)
	}
	return origin, err
}

// SelectedTip returns the tip with the most blue work
func (dag *BlockDAG) SelectedTip() (*externalapi.DomainHash, error) {
	tips, err := dag.Tips()
	if err != nil {
		return nil, err
	}
	return dag.ghostdagManager.ChooseSelectedParent(model.NewStagingArea(), tips...)
}

// ReindexRoot returns the current reindex root of the reachability index
func (dag *BlockDAG) ReindexRoot() (*externalapi.DomainHash, error) {
	return dag.reachabilityStore.ReindexRoot()
}

// SetReindexRoot sets the reindex root of the reachability index. The root
// must be in the DAG.
func (dag *BlockDAG) SetReindexRoot(root *externalapi.DomainHash) error {
	dag.commitLock.Lock()
	defer dag.commitLock.Unlock()

	exists, err := dag.reachabilityStore.Has(root)
	if err != nil {
		return err
	}
	if !exists {
		return errors.Wrapf(database.ErrNotFound, "block %s is not in the DAG", root)
	}

	unlock := dag.reachabilityService.Lock()
	defer unlock()
	return dag.reachabilityStore.SetReindexRoot(root)
}
