package blockrelationstore

import (
	"github.com/Hoosat-Oy/flexidag/domain/consensus/database/binaryserialization"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
)

type blockRelationStagingShard struct {
	store    *blockRelationStore
	parents  map[externalapi.DomainHash][]*externalapi.DomainHash
	children map[externalapi.DomainHash][]*externalapi.DomainHash
}

func (brs *blockRelationStore) stagingShard(stagingArea *model.StagingArea) *blockRelationStagingShard {
	return stagingArea.GetOrCreateShard(brs.shardID, func() model.StagingShard {
		return &blockRelationStagingShard{
			store:    brs,
			parents:  make(map[externalapi.DomainHash][]*externalapi.DomainHash),
			children: make(map[externalapi.DomainHash][]*externalapi.DomainHash),
		}
	}).(*blockRelationStagingShard)
}

func (brss *blockRelationStagingShard) Commit(dbTx model.DBTransaction) error {
	for hash, parents := range brss.parents {
		hash := hash
		err := dbTx.Put(brss.store.parentsBucket.Key(hash.ByteSlice()), binaryserialization.SerializeHashes(parents))
		if err != nil {
			return err
		}
	}

	for hash, children := range brss.children {
		hash := hash
		err := dbTx.Put(brss.store.childrenBucket.Key(hash.ByteSlice()), binaryserialization.SerializeHashes(children))
		if err != nil {
			return err
		}
	}

	return nil
}

func (brss *blockRelationStagingShard) UpdateCaches() {
	for hash, parents := range brss.parents {
		hash := hash
		brss.store.parentsCache.Add(&hash, parents)
	}
	for hash, children := range brss.children {
		hash := hash
		brss.store.childrenCache.Add(&hash, children)
	}
}

func (brss *blockRelationStagingShard) isStaged() bool {
	return len(brss.parents) != 0 || len(brss.children) != 0
}
