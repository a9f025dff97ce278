package reachabilitydatastore

import (
	"sync"

	"github.com/Hoosat-Oy/flexidag/domain/consensus/database/binaryserialization"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/utils/lrucache"
	"github.com/Hoosat-Oy/flexidag/infrastructure/db/database"
	"github.com/Hoosat-Oy/flexidag/util/staging"
)

var reachabilityDataBucketName = []byte("reachability-data")
var reachabilityChildrenBucketName = []byte("reachability-set-data")
var reachabilityFutureCoveringSetBucketName = []byte("reachability-fcs-data")
var reachabilityReindexRootKeyName = []byte("reachability-reindex-root")

// reachabilityDataStore represents a store of ReachabilityData
type reachabilityDataStore struct {
	shardID                      model.StagingShardID
	reachabilityDataCache        *lrucache.LRUCache[*model.ReachabilityData]
	childrenCache                *lrucache.LRUCache[[]*externalapi.DomainHash]
	futureCoveringSetCache       *lrucache.LRUCache[[]*externalapi.DomainHash]
	reindexRootLock              sync.RWMutex
	reachabilityReindexRootCache *externalapi.DomainHash

	reachabilityDataBucket     model.DBBucket
	childrenBucket             model.DBBucket
	futureCoveringSetBucket    model.DBBucket
	reachabilityReindexRootKey model.DBKey
}

// New instantiates a new ReachabilityDataStore
func New(prefixBucket model.DBBucket, cacheSize int, preallocate bool) model.ReachabilityDataStore {
	return &reachabilityDataStore{
		shardID:                    staging.GenerateShardingID(),
		reachabilityDataCache:      lrucache.New[*model.ReachabilityData](cacheSize, preallocate),
		childrenCache:              lrucache.New[[]*externalapi.DomainHash](cacheSize, preallocate),
		futureCoveringSetCache:     lrucache.New[[]*externalapi.DomainHash](cacheSize, preallocate),
		reachabilityDataBucket:     prefixBucket.Bucket(reachabilityDataBucketName),
		childrenBucket:             prefixBucket.Bucket(reachabilityChildrenBucketName),
		futureCoveringSetBucket:    prefixBucket.Bucket(reachabilityFutureCoveringSetBucketName),
		reachabilityReindexRootKey: prefixBucket.Key(reachabilityReindexRootKeyName),
	}
}

// StageReachabilityData stages the given reachabilityData for the given blockHash
func (rds *reachabilityDataStore) StageReachabilityData(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash, reachabilityData *model.ReachabilityData) {
	stagingShard := rds.stagingShard(stagingArea)

	stagingShard.reachabilityData[*blockHash] = reachabilityData
}

// StageChildren stages the tree children of the given blockHash
func (rds *reachabilityDataStore) StageChildren(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash, children []*externalapi.DomainHash) {
	stagingShard := rds.stagingShard(stagingArea)

	stagingShard.children[*blockHash] = children
}

// StageFutureCoveringSet stages the future covering set of the given blockHash
func (rds *reachabilityDataStore) StageFutureCoveringSet(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash, futureCoveringSet []*externalapi.DomainHash) {
	stagingShard := rds.stagingShard(stagingArea)

	stagingShard.futureCoveringSet[*blockHash] = futureCoveringSet
}

// StageReachabilityReindexRoot stages the given reachabilityReindexRoot
func (rds *reachabilityDataStore) StageReachabilityReindexRoot(stagingArea *model.StagingArea, reachabilityReindexRoot *externalapi.DomainHash) {
	stagingShard := rds.stagingShard(stagingArea)

	stagingShard.reachabilityReindexRoot = reachabilityReindexRoot
}

func (rds *reachabilityDataStore) IsStaged(stagingArea *model.StagingArea) bool {
	return rds.stagingShard(stagingArea).isStaged()
}

// ReachabilityData returns the reachabilityData associated with the given blockHash
func (rds *reachabilityDataStore) ReachabilityData(dbContext model.DBReader, stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) (*model.ReachabilityData, error) {
	stagingShard := rds.stagingShard(stagingArea)

	reachabilityData, ok := stagingShard.reachabilityData[*blockHash]
	if ok && reachabilityData != nil {
		return reachabilityData, nil
	}

	reachabilityDataCached, ok := rds.reachabilityDataCache.Get(blockHash)
	if ok && reachabilityDataCached != nil {
		return reachabilityDataCached, nil
	}

	reachabilityDataBytes, err := dbContext.Get(rds.reachabilityDataBucket.Key(blockHash.ByteSlice()))
	if err != nil {
		return nil, err
	}

	deserializedReachabilityData, err := binaryserialization.DeserializeReachabilityData(reachabilityDataBytes)
	if err != nil {
		return nil, err
	}
	rds.reachabilityDataCache.Add(blockHash, deserializedReachabilityData)
	return deserializedReachabilityData, nil
}

func (rds *reachabilityDataStore) HasReachabilityData(dbContext model.DBReader, stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) (bool, error) {
	_, err := rds.ReachabilityData(dbContext, stagingArea, blockHash)
	if database.IsNotFoundError(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

// Children returns the tree children of the given blockHash
func (rds *reachabilityDataStore) Children(dbContext model.DBReader, stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {
	stagingShard := rds.stagingShard(stagingArea)
	if children, ok := stagingShard.children[*blockHash]; ok {
		return children, nil
	}
	return rds.hashes(dbContext, rds.childrenCache, rds.childrenBucket, blockHash)
}

// FutureCoveringSet returns the future covering set of the given blockHash
func (rds *reachabilityDataStore) FutureCoveringSet(dbContext model.DBReader, stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {
	stagingShard := rds.stagingShard(stagingArea)
	if futureCoveringSet, ok := stagingShard.futureCoveringSet[*blockHash]; ok {
		return futureCoveringSet, nil
	}
	return rds.hashes(dbContext, rds.futureCoveringSetCache, rds.futureCoveringSetBucket, blockHash)
}

func (rds *reachabilityDataStore) hashes(dbContext model.DBReader, cache *lrucache.LRUCache[[]*externalapi.DomainHash],
	bucket model.DBBucket, blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {

	if hashes, ok := cache.Get(blockHash); ok {
		return hashes, nil
	}

	hashesBytes, err := dbContext.Get(bucket.Key(blockHash.ByteSlice()))
	if err != nil {
		return nil, err
	}
	hashes, err := binaryserialization.DeserializeHashes(hashesBytes)
	if err != nil {
		return nil, err
	}
	cache.Add(blockHash, hashes)
	return hashes, nil
}

// ReachabilityReindexRoot returns the current reachability reindex root
func (rds *reachabilityDataStore) ReachabilityReindexRoot(dbContext model.DBReader, stagingArea *model.StagingArea) (*externalapi.DomainHash, error) {
	stagingShard := rds.stagingShard(stagingArea)

	if stagingShard.reachabilityReindexRoot != nil {
		return stagingShard.reachabilityReindexRoot, nil
	}

	rds.reindexRootLock.RLock()
	reindexRootCached := rds.reachabilityReindexRootCache
	rds.reindexRootLock.RUnlock()
	if reindexRootCached != nil {
		return reindexRootCached, nil
	}

	reachabilityReindexRootBytes, err := dbContext.Get(rds.reachabilityReindexRootKey)
	if err != nil {
		return nil, err
	}

	reachabilityReindexRoot, err := binaryserialization.DeserializeHash(reachabilityReindexRootBytes)
	if err != nil {
		return nil, err
	}
	rds.setReindexRootCache(reachabilityReindexRoot)
	return reachabilityReindexRoot, nil
}

func (rds *reachabilityDataStore) setReindexRootCache(reindexRoot *externalapi.DomainHash) {
	rds.reindexRootLock.Lock()
	defer rds.reindexRootLock.Unlock()
	rds.reachabilityReindexRootCache = reindexRoot
}
