package reachabilitydatastore

import (
	"github.com/Hoosat-Oy/flexidag/domain/consensus/database/binaryserialization"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
)

type reachabilityDataStagingShard struct {
	store                   *reachabilityDataStore
	reachabilityData        map[externalapi.DomainHash]*model.ReachabilityData
	children                map[externalapi.DomainHash][]*externalapi.DomainHash
	futureCoveringSet       map[externalapi.DomainHash][]*externalapi.DomainHash
	reachabilityReindexRoot *externalapi.DomainHash
}

func (rds *reachabilityDataStore) stagingShard(stagingArea *model.StagingArea) *reachabilityDataStagingShard {
	return stagingArea.GetOrCreateShard(rds.shardID, func() model.StagingShard {
		return &reachabilityDataStagingShard{
			store:                   rds,
			reachabilityData:        make(map[externalapi.DomainHash]*model.ReachabilityData),
			children:                make(map[externalapi.DomainHash][]*externalapi.DomainHash),
			futureCoveringSet:       make(map[externalapi.DomainHash][]*externalapi.DomainHash),
			reachabilityReindexRoot: nil,
		}
	}).(*reachabilityDataStagingShard)
}

func (rdss *reachabilityDataStagingShard) Commit(dbTx model.DBTransaction) error {
	if rdss.reachabilityReindexRoot != nil {
		err := dbTx.Put(rdss.store.reachabilityReindexRootKey,
			binaryserialization.SerializeHash(rdss.reachabilityReindexRoot))
		if err != nil {
			return err
		}
	}

	for hash, reachabilityData := range rdss.reachabilityData {
		hash := hash
		err := dbTx.Put(rdss.store.reachabilityDataBucket.Key(hash.ByteSlice()),
			binaryserialization.SerializeReachabilityData(reachabilityData))
		if err != nil {
			return err
		}
	}

	for hash, children := range rdss.children {
		hash := hash
		err := dbTx.Put(rdss.store.childrenBucket.Key(hash.ByteSlice()),
			binaryserialization.SerializeHashes(children))
		if err != nil {
			return err
		}
	}

	for hash, futureCoveringSet := range rdss.futureCoveringSet {
		hash := hash
		err := dbTx.Put(rdss.store.futureCoveringSetBucket.Key(hash.ByteSlice()),
			binaryserialization.SerializeHashes(futureCoveringSet))
		if err != nil {
			return err
		}
	}

	return nil
}

func (rdss *reachabilityDataStagingShard) UpdateCaches() {
	if rdss.reachabilityReindexRoot != nil {
		rdss.store.setReindexRootCache(rdss.reachabilityReindexRoot)
	}
	for hash, reachabilityData := range rdss.reachabilityData {
		hash := hash
		rdss.store.reachabilityDataCache.Add(&hash, reachabilityData)
	}
	for hash, children := range rdss.children {
		hash := hash
		rdss.store.childrenCache.Add(&hash, children)
	}
	for hash, futureCoveringSet := range rdss.futureCoveringSet {
		hash := hash
		rdss.store.futureCoveringSetCache.Add(&hash, futureCoveringSet)
	}
}

func (rdss *reachabilityDataStagingShard) isStaged() bool {
	return len(rdss.reachabilityData) != 0 || len(rdss.children) != 0 ||
		len(rdss.futureCoveringSet) != 0 || rdss.reachabilityReindexRoot != nil
}
