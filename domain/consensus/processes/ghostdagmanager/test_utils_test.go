package ghostdagmanager

import (
	"encoding/binary"
	"testing"

	"github.com/Hoosat-Oy/flexidag/domain/consensus/datastructures/blockheaderstore"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/datastructures/blockrelationstore"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/datastructures/ghostdagdatastore"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/datastructures/reachabilitydatastore"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/datastructures/testutils"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/processes/reachabilitymanager"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/utils/blockheader"
	"github.com/holiman/uint256"
)

func hash(i uint64) *externalapi.DomainHash {
	var hashArray [externalapi.DomainHashSize]byte
	binary.LittleEndian.PutUint64(hashArray[:], i)
	return externalapi.NewDomainHashFromByteArray(&hashArray)
}

// testDAG builds a DAG in a single staging area on top of a genesis block.
// Nothing is committed, so every store reads from staging.
type testDAG struct {
	t                 *testing.T
	stagingArea       *model.StagingArea
	dbContext         model.DBReader
	ghostdagDataStore model.GHOSTDAGDataStore
	relationStore     model.BlockRelationStore
	headerStore       model.BlockHeaderStore
	reachabilityStore model.ReachabilityStore
	manager           *ghostdagManager

	origin  *externalapi.DomainHash
	genesis *externalapi.DomainHash
	headers map[externalapi.DomainHash]externalapi.BlockHeader
	nonce   uint64
}

func newTestDAG(t *testing.T, k externalapi.KType) (dag *testDAG, teardown func()) {
	t.Helper()

	dbManager, prefixBucket, teardown := testutils.NewTestDB(t)
	headerStore, err := blockheaderstore.New(dbManager, prefixBucket, 100, false)
	if err != nil {
		teardown()
		t.Fatalf("blockheaderstore.New: %v", err)
	}
	reachabilityStore := reachabilitydatastore.NewMemoryStore()

	dag = &testDAG{
		t:                 t,
		stagingArea:       model.NewStagingArea(),
		dbContext:         dbManager,
		ghostdagDataStore: ghostdagdatastore.NewMemoryStore(),
		relationStore:     blockrelationstore.New(prefixBucket, 100, false),
		headerStore:       headerStore,
		reachabilityStore: reachabilityStore,
		origin:            hash(0xffff),
		headers:           make(map[externalapi.DomainHash]externalapi.BlockHeader),
	}
	dag.manager = New(dbManager, dag.ghostdagDataStore, dag.relationStore, headerStore,
		reachabilitymanager.NewService(reachabilityStore), k).(*ghostdagManager)

	dag.insertData(dag.origin, dag.manager.OriginGHOSTDAGData())
	dag.stageRelation(dag.origin, nil)
	err = reachabilitymanager.Init(reachabilityStore, dag.origin)
	if err != nil {
		teardown()
		t.Fatalf("reachabilitymanager.Init: %v", err)
	}

	genesisHeader := dag.newHeader([]*externalapi.DomainHash{dag.origin})
	dag.genesis = genesisHeader.BlockHash()
	dag.insertData(dag.genesis, dag.manager.GenesisGHOSTDAGData(genesisHeader))
	dag.stageRelation(dag.genesis, []*externalapi.DomainHash{dag.origin})
	dag.addToReachability(dag.genesis, dag.origin, nil)

	return dag, teardown
}

func (dag *testDAG) newHeader(parents []*externalapi.DomainHash) externalapi.BlockHeader {
	dag.nonce++
	header := blockheader.NewBlockHeader(parents[0], parents, dag.nonce, 1000+dag.nonce,
		uint256.NewInt(1), dag.nonce, nil)
	dag.headerStore.Stage(dag.stagingArea, header.BlockHash(), header)
	dag.headers[*header.BlockHash()] = header
	return header
}

func (dag *testDAG) insertData(blockHash *externalapi.DomainHash, data *externalapi.BlockGHOSTDAGData) {
	dag.t.Helper()
	err := dag.ghostdagDataStore.Insert(dag.dbContext, dag.stagingArea, blockHash, data)
	if err != nil {
		dag.t.Fatalf("Insert %s: %v", blockHash, err)
	}
}

func (dag *testDAG) stageRelation(blockHash *externalapi.DomainHash, parents []*externalapi.DomainHash) {
	dag.t.Helper()
	err := dag.relationStore.StageBlockRelation(dag.dbContext, dag.stagingArea, blockHash, parents)
	if err != nil {
		dag.t.Fatalf("StageBlockRelation %s: %v", blockHash, err)
	}
}

func (dag *testDAG) addToReachability(blockHash, selectedParent *externalapi.DomainHash,
	mergeSet []*externalapi.DomainHash) {

	dag.t.Helper()
	err := reachabilitymanager.AddBlock(dag.reachabilityStore, blockHash, selectedParent, mergeSet)
	if err != nil {
		dag.t.Fatalf("reachability AddBlock %s: %v", blockHash, err)
	}
}

// addBlock runs GHOSTDAG for a new block with the given parents and stores
// its data, relations and reachability.
func (dag *testDAG) addBlock(parents ...*externalapi.DomainHash) *externalapi.DomainHash {
	dag.t.Helper()

	header := dag.newHeader(parents)
	blockHash := header.BlockHash()
	data, err := dag.manager.GHOSTDAG(dag.stagingArea, parents)
	if err != nil {
		dag.t.Fatalf("GHOSTDAG: %v", err)
	}
	dag.insertData(blockHash, data)
	dag.stageRelation(blockHash, parents)
	dag.addToReachability(blockHash, data.SelectedParent(), dag.manager.UnorderedMergeSetWithoutSelectedParent(data))
	return blockHash
}

func (dag *testDAG) data(blockHash *externalapi.DomainHash) *externalapi.BlockGHOSTDAGData {
	dag.t.Helper()
	data, err := dag.ghostdagDataStore.Get(dag.dbContext, dag.stagingArea, blockHash)
	if err != nil {
		dag.t.Fatalf("Get %s: %v", blockHash, err)
	}
	return data
}

func containsHash(hashes []*externalapi.DomainHash, hash *externalapi.DomainHash) bool {
	for _, h := range hashes {
		if h.Equal(hash) {
			return true
		}
	}
	return false
}
