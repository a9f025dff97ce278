package dagtipsstore

import (
	"testing"

	"github.com/Hoosat-Oy/flexidag/domain/consensus/datastructures/testutils"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/flexidag/infrastructure/db/database"
)

func TestDAGTipsStore(t *testing.T) {
	testutils.ForAllDatabaseTypes(t, func(t *testing.T, dbManager model.DBManager, prefixBucket model.DBBucket) {
		store := New(prefixBucket)

		stagingArea := model.NewStagingArea()
		_, err := store.Genesis(dbManager, stagingArea)
		if !database.IsNotFoundError(err) {
			t.Fatalf("Genesis of an empty store: expected a not-found error, got %v", err)
		}

		genesis := testutils.Hash(1)
		origin := testutils.Hash(2)
		store.StageGenesis(stagingArea, genesis, origin)
		store.StageTips(stagingArea, []*externalapi.DomainHash{genesis})
		if !store.IsStaged(stagingArea) {
			t.Fatalf("expected IsStaged to be true")
		}
		testutils.Commit(t, dbManager, stagingArea)

		stagingArea = model.NewStagingArea()
		tips := []*externalapi.DomainHash{testutils.Hash(3), testutils.Hash(4)}
		store.StageTips(stagingArea, tips)
		testutils.Commit(t, dbManager, stagingArea)

		reloaded := New(prefixBucket)
		stagingArea = model.NewStagingArea()
		gotTips, err := reloaded.Tips(dbManager, stagingArea)
		if err != nil {
			t.Fatalf("Tips: %+v", err)
		}
		if !externalapi.HashesEqual(gotTips, tips) {
			t.Fatalf("unexpected tips %v", gotTips)
		}
		gotGenesis, err := reloaded.Genesis(dbManager, stagingArea)
		if err != nil {
			t.Fatalf("Genesis: %+v", err)
		}
		if !gotGenesis.Equal(genesis) {
			t.Fatalf("unexpected genesis %s", gotGenesis)
		}
		gotOrigin, err := reloaded.Origin(dbManager, stagingArea)
		if err != nil {
			t.Fatalf("Origin: %+v", err)
		}
		if !gotOrigin.Equal(origin) {
			t.Fatalf("unexpected origin %s", gotOrigin)
		}
	})
}
