package blockdag

import (
	"sync"

	consensusdatabase "github.com/Hoosat-Oy/flexidag/domain/consensus/database"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/datastructures/blockheaderstore"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/datastructures/blockrelationstore"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/datastructures/dagtipsstore"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/datastructures/ghostdagdatastore"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/datastructures/reachabilitydatastore"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/processes/ghostdagmanager"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/processes/reachabilitymanager"
	"github.com/Hoosat-Oy/flexidag/domain/dagconfig"
	"github.com/pkg/errors"
)

var dagBucket = consensusdatabase.MakeBucket([]byte("flexidag"))

// ErrNotInitialized is returned by operations on a DAG that was not
// initialized with a genesis yet.
var ErrNotInitialized = errors.New("the DAG is not initialized with a genesis")

// BlockDAG orders block headers with the GHOSTDAG protocol and keeps them,
// their GHOSTDAG data and their reachability index in a database.
//
// Commits are serialized. Queries may run concurrently with a commit: they
// observe the DAG either before or after it.
type BlockDAG struct {
	params          *dagconfig.Params
	databaseContext model.DBManager

	commitLock sync.Mutex
	// haltErr is set once the reachability index fails to take a block.
	// No further commits are accepted after that.
	haltErr error

	ghostdagDataStore     model.GHOSTDAGDataStore
	relationStore         model.BlockRelationStore
	headerStore           model.BlockHeaderStore
	tipsStore             model.DAGTipsStore
	reachabilityDataStore model.ReachabilityDataStore
	reachabilityStore     model.ReachabilityStore

	reachabilityService *reachabilitymanager.Service
	ghostdagManager     model.GHOSTDAGManager
}

// New instantiates a BlockDAG over databaseContext
func New(databaseContext model.DBManager, params *dagconfig.Params) (*BlockDAG, error) {
	err := params.Validate()
	if err != nil {
		return nil, err
	}

	headerStore, err := blockheaderstore.New(databaseContext, dagBucket, params.BlockHeaderCacheSize,
		params.PreallocateCaches)
	if err != nil {
		return nil, err
	}
	reachabilityDataStore := reachabilitydatastore.New(dagBucket, params.ReachabilityDataCacheSize,
		params.PreallocateCaches)
	reachabilityStore := reachabilitydatastore.NewDBStore(reachabilityDataStore, databaseContext)

	dag := &BlockDAG{
		params:          params,
		databaseContext: databaseContext,

		ghostdagDataStore: ghostdagdatastore.New(dagBucket, params.GHOSTDAGDataCacheSize,
			params.PreallocateCaches),
		relationStore: blockrelationstore.New(dagBucket, params.BlockRelationCacheSize,
			params.PreallocateCaches),
		headerStore:           headerStore,
		tipsStore:             dagtipsstore.New(dagBucket),
		reachabilityDataStore: reachabilityDataStore,
		reachabilityStore:     reachabilityStore,
		reachabilityService:   reachabilitymanager.NewService(reachabilityStore),
	}
	dag.ghostdagManager = ghostdagmanager.New(databaseContext, dag.ghostdagDataStore, dag.relationStore,
		dag.headerStore, dag.reachabilityService, params.K)

	return dag, nil
}

// Params returns the parameters the DAG was created with
func (dag *BlockDAG) Params() *dagconfig.Params {
	return dag.params
}

// ReachabilityService returns the reachability service of the DAG
func (dag *BlockDAG) ReachabilityService() *reachabilitymanager.Service {
	return dag.reachabilityService
}

// GHOSTDAGManager returns the GHOSTDAG manager of the DAG
func (dag *BlockDAG) GHOSTDAGManager() model.GHOSTDAGManager {
	return dag.ghostdagManager
}
