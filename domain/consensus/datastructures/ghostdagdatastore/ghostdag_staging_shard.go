package ghostdagdatastore

import (
	"github.com/Hoosat-Oy/flexidag/domain/consensus/database/binaryserialization"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
)

type ghostdagDataStagingShard struct {
	store *ghostdagDataStore
	toAdd map[externalapi.DomainHash]*externalapi.BlockGHOSTDAGData
}

func (gds *ghostdagDataStore) stagingShard(stagingArea *model.StagingArea) *ghostdagDataStagingShard {
	return stagingArea.GetOrCreateShard(gds.shardID, func() model.StagingShard {
		return &ghostdagDataStagingShard{
			store: gds,
			toAdd: make(map[externalapi.DomainHash]*externalapi.BlockGHOSTDAGData),
		}
	}).(*ghostdagDataStagingShard)
}

// Commit writes the full and the compact record of every staged block
func (gdss *ghostdagDataStagingShard) Commit(dbTx model.DBTransaction) error {
	for hash, blockGHOSTDAGData := range gdss.toAdd {
		hash := hash
		err := dbTx.Put(gdss.store.ghostdagDataBucket.Key(hash.ByteSlice()),
			binaryserialization.SerializeBlockGHOSTDAGData(blockGHOSTDAGData))
		if err != nil {
			return err
		}
		compactData := blockGHOSTDAGData.ToCompact()
		err = dbTx.Put(gdss.store.compactDataBucket.Key(hash.ByteSlice()),
			binaryserialization.SerializeCompactGHOSTDAGData(compactData))
		if err != nil {
			return err
		}
	}

	return nil
}

func (gdss *ghostdagDataStagingShard) UpdateCaches() {
	for hash, blockGHOSTDAGData := range gdss.toAdd {
		hash := hash
		gdss.store.cache.Add(&hash, blockGHOSTDAGData)
		gdss.store.compactCache.Add(&hash, blockGHOSTDAGData.ToCompact())
	}
}

func (gdss *ghostdagDataStagingShard) isStaged() bool {
	return len(gdss.toAdd) != 0
}
