package blockheaderstore

import (
	"testing"

	"github.com/Hoosat-Oy/flexidag/domain/consensus/datastructures/testutils"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/utils/blockheader"
	"github.com/holiman/uint256"
)

func TestBlockHeaderStoreRoundTripAndCount(t *testing.T) {
	testutils.ForAllDatabaseTypes(t, func(t *testing.T, dbManager model.DBManager, prefixBucket model.DBBucket) {
		store, err := New(dbManager, prefixBucket, 10, false)
		if err != nil {
			t.Fatalf("New: %v", err)
		}

		header1 := blockheader.NewBlockHeader(testutils.Hash(10), []*externalapi.DomainHash{testutils.Hash(10)},
			1, 1000, uint256.NewInt(5), 1, nil)
		header2 := blockheader.NewBlockHeader(header1.BlockHash(), []*externalapi.DomainHash{header1.BlockHash()},
			2, 2000, uint256.NewInt(6), 2, nil)

		stagingArea := model.NewStagingArea()
		store.Stage(stagingArea, header1.BlockHash(), header1)
		store.Stage(stagingArea, header2.BlockHash(), header2)
		if !store.IsStaged(stagingArea) {
			t.Fatalf("expected IsStaged to be true after Stage")
		}
		if store.Count(stagingArea) != 2 {
			t.Fatalf("unexpected Count before commit: %d", store.Count(stagingArea))
		}
		testutils.Commit(t, dbManager, stagingArea)

		reopened, err := New(dbManager, prefixBucket, 10, false)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		stagingArea = model.NewStagingArea()
		if reopened.Count(stagingArea) != 2 {
			t.Fatalf("unexpected Count after reopening: %d", reopened.Count(stagingArea))
		}
		got, err := reopened.BlockHeader(dbManager, stagingArea, header2.BlockHash())
		if err != nil {
			t.Fatalf("BlockHeader: %v", err)
		}
		if !got.Equal(header2) || got.Number() != 2 {
			t.Fatalf("unexpected header %s", got.BlockHash())
		}
		difficulty, err := reopened.Difficulty(dbManager, stagingArea, header1.BlockHash())
		if err != nil {
			t.Fatalf("Difficulty: %v", err)
		}
		if difficulty.Uint64() != 5 {
			t.Fatalf("unexpected difficulty %s", difficulty)
		}

		has, err := reopened.HasBlockHeader(dbManager, stagingArea, testutils.Hash(99))
		if err != nil {
			t.Fatalf("HasBlockHeader: %v", err)
		}
		if has {
			t.Fatalf("expected HasBlockHeader to be false for an unknown block")
		}
	})
}
