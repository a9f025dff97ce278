package ghostdagdatastore

import (
	"testing"

	"github.com/Hoosat-Oy/flexidag/domain/consensus/datastructures/testutils"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

func testData(selectedParent *externalapi.DomainHash, blueScore uint64) *externalapi.BlockGHOSTDAGData {
	return externalapi.NewBlockGHOSTDAGData(blueScore, uint256.NewInt(blueScore*100), selectedParent,
		[]*externalapi.DomainHash{selectedParent, testutils.Hash(50)},
		[]*externalapi.DomainHash{testutils.Hash(51)},
		map[externalapi.DomainHash]externalapi.KType{*selectedParent: 0, *testutils.Hash(50): 1})
}

func TestGHOSTDAGDataStoreStageCommitAndReload(t *testing.T) {
	testutils.ForAllDatabaseTypes(t, func(t *testing.T, dbManager model.DBManager, prefixBucket model.DBBucket) {
		store := New(prefixBucket, 10, false)

		blockHash := testutils.Hash(1)
		data := testData(testutils.Hash(2), 7)

		stagingArea := model.NewStagingArea()
		err := store.Insert(dbManager, stagingArea, blockHash, data)
		if err != nil {
			t.Fatalf("Insert: %+v", err)
		}
		err = store.Insert(dbManager, stagingArea, blockHash, data)
		if !errors.Is(err, model.ErrKeyAlreadyExists) {
			t.Fatalf("second Insert: expected ErrKeyAlreadyExists, got %v", err)
		}
		if !store.IsStaged(stagingArea) {
			t.Fatalf("expected IsStaged to be true after Insert")
		}
		testutils.Commit(t, dbManager, stagingArea)

		// Read through a fresh store so that nothing comes from the caches
		reloaded := New(prefixBucket, 10, false)
		stagingArea = model.NewStagingArea()
		compact, err := reloaded.GetCompact(dbManager, stagingArea, blockHash)
		if err != nil {
			t.Fatalf("GetCompact: %+v", err)
		}
		if !compact.Equal(data.ToCompact()) {
			t.Fatalf("unexpected compact data %+v", compact)
		}
		got, err := reloaded.Get(dbManager, stagingArea, blockHash)
		if err != nil {
			t.Fatalf("Get: %+v", err)
		}
		if !got.Equal(data) {
			t.Fatalf("reloaded data differs from the inserted data")
		}

		err = reloaded.Insert(dbManager, stagingArea, blockHash, data)
		if !errors.Is(err, model.ErrKeyAlreadyExists) {
			t.Fatalf("Insert after commit: expected ErrKeyAlreadyExists, got %v", err)
		}

		has, err := reloaded.Has(dbManager, stagingArea, testutils.Hash(3))
		if err != nil {
			t.Fatalf("Has: %+v", err)
		}
		if has {
			t.Fatalf("expected Has to be false for an unknown block")
		}
	})
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	blockHash := testutils.Hash(1)
	data := testData(testutils.Hash(2), 3)

	err := store.Insert(nil, nil, blockHash, data)
	if err != nil {
		t.Fatalf("Insert: %+v", err)
	}
	err = store.Insert(nil, nil, blockHash, data)
	if !errors.Is(err, model.ErrKeyAlreadyExists) {
		t.Fatalf("second Insert: expected ErrKeyAlreadyExists, got %v", err)
	}

	blueScore, err := store.BlueScore(nil, nil, blockHash)
	if err != nil {
		t.Fatalf("BlueScore: %+v", err)
	}
	if blueScore != 3 {
		t.Fatalf("expected blue score 3, got %d", blueScore)
	}
	reds, err := store.MergeSetReds(nil, nil, blockHash)
	if err != nil {
		t.Fatalf("MergeSetReds: %+v", err)
	}
	if !externalapi.HashesEqual(reds, []*externalapi.DomainHash{testutils.Hash(51)}) {
		t.Fatalf("unexpected reds %v", reds)
	}
	_, err = store.Get(nil, nil, testutils.Hash(9))
	if err == nil {
		t.Fatalf("Get of an unknown block: expected an error")
	}
}
