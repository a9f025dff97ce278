package blockheaderstore

import (
	"github.com/Hoosat-Oy/flexidag/domain/consensus/database/binaryserialization"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
)

type blockHeaderStagingShard struct {
	store *blockHeaderStore
	toAdd map[externalapi.DomainHash]externalapi.BlockHeader
	count uint64
}

func (bhs *blockHeaderStore) stagingShard(stagingArea *model.StagingArea) *blockHeaderStagingShard {
	return stagingArea.GetOrCreateShard(bhs.shardID, func() model.StagingShard {
		return &blockHeaderStagingShard{
			store: bhs,
			toAdd: make(map[externalapi.DomainHash]externalapi.BlockHeader),
		}
	}).(*blockHeaderStagingShard)
}

func (bhss *blockHeaderStagingShard) Commit(dbTx model.DBTransaction) error {
	for hash, header := range bhss.toAdd {
		hash := hash
		err := dbTx.Put(bhss.store.hashAsKey(&hash), binaryserialization.SerializeHeader(header))
		if err != nil {
			return err
		}
	}

	return bhss.commitCount(dbTx)
}

func (bhss *blockHeaderStagingShard) commitCount(dbTx model.DBTransaction) error {
	if len(bhss.toAdd) == 0 {
		return nil
	}
	bhss.count = bhss.store.count(bhss)
	return dbTx.Put(bhss.store.countKey, binaryserialization.SerializeUint64(bhss.count))
}

func (bhss *blockHeaderStagingShard) UpdateCaches() {
	if len(bhss.toAdd) == 0 {
		return
	}
	for hash, header := range bhss.toAdd {
		hash := hash
		bhss.store.cache.Add(&hash, header)
	}
	bhss.store.countCached.Store(bhss.count)
}

func (bhss *blockHeaderStagingShard) isStaged() bool {
	return len(bhss.toAdd) != 0
}
