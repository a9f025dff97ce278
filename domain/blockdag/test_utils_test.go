package blockdag

import (
	"testing"

	"github.com/Hoosat-Oy/flexidag/domain/consensus/datastructures/testutils"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/utils/blockheader"
	"github.com/Hoosat-Oy/flexidag/domain/dagconfig"
	"github.com/holiman/uint256"
)

type testDAG struct {
	t         *testing.T
	dag       *BlockDAG
	dbManager model.DBManager
	genesis   *externalapi.DomainHash
	headers   map[externalapi.DomainHash]externalapi.BlockHeader
	number    uint64
}

// newTestDAG creates a DAG over a fresh database and initializes it with
// the genesis of params
func newTestDAG(t *testing.T, params *dagconfig.Params) (td *testDAG, teardown func()) {
	t.Helper()

	dbManager, _, teardown := testutils.NewTestDB(t)
	td = newTestDAGOver(t, dbManager, params)
	return td, teardown
}

func newTestDAGOver(t *testing.T, dbManager model.DBManager, params *dagconfig.Params) *testDAG {
	t.Helper()

	dag, err := New(dbManager, params)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	genesis := params.GenesisHeader()
	err = dag.InitWithGenesis(genesis)
	if err != nil {
		t.Fatalf("InitWithGenesis: %v", err)
	}
	return &testDAG{
		t:         t,
		dag:       dag,
		dbManager: dbManager,
		genesis:   genesis.BlockHash(),
		headers:   map[externalapi.DomainHash]externalapi.BlockHeader{*genesis.BlockHash(): genesis},
	}
}

// newHeader builds a header with the given parents and difficulty 1. Every
// header gets a distinct number so every header has a distinct hash.
func (td *testDAG) newHeader(parents ...*externalapi.DomainHash) externalapi.BlockHeader {
	td.number++
	header := blockheader.NewBlockHeader(parents[0], parents, td.number, 1000*td.number,
		uint256.NewInt(1), td.number, nil)
	td.headers[*header.BlockHash()] = header
	return header
}

func (td *testDAG) commit(parents ...*externalapi.DomainHash) *externalapi.DomainHash {
	td.t.Helper()

	header := td.newHeader(parents...)
	err := td.dag.Commit(header)
	if err != nil {
		td.t.Fatalf("Commit: %v", err)
	}
	return header.BlockHash()
}

func (td *testDAG) ghostdagData(blockHash *externalapi.DomainHash) *externalapi.BlockGHOSTDAGData {
	td.t.Helper()

	data, err := td.dag.GhostDataByHash(blockHash)
	if err != nil {
		td.t.Fatalf("GhostDataByHash %s: %v", blockHash, err)
	}
	return data
}

// chain commits a chain of length blocks on top of from and returns its
// blocks in order
func (td *testDAG) chain(from *externalapi.DomainHash, length int) []*externalapi.DomainHash {
	td.t.Helper()

	blocks := make([]*externalapi.DomainHash, length)
	tip := from
	for i := range blocks {
		tip = td.commit(tip)
		blocks[i] = tip
	}
	return blocks
}

func (td *testDAG) allBlocks() []*externalapi.DomainHash {
	blocks := make([]*externalapi.DomainHash, 0, len(td.headers))
	for blockHash := range td.headers {
		blocks = append(blocks, &blockHash)
	}
	return blocks
}
