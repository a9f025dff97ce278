package dagtipsstore

import (
	"sync"

	"github.com/Hoosat-Oy/flexidag/domain/consensus/database/binaryserialization"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/flexidag/util/staging"
)

var bucketName = []byte("dag-state")
var tipsKeyName = []byte("tips")
var genesisKeyName = []byte("genesis")
var originKeyName = []byte("origin")

// dagTipsStore keeps the DAG frontier and the genesis and origin the DAG
// was initialized with, under the dag-state bucket.
type dagTipsStore struct {
	shardID model.StagingShardID

	cacheLock    sync.RWMutex
	tipsCache    []*externalapi.DomainHash
	genesisCache *externalapi.DomainHash
	originCache  *externalapi.DomainHash

	tipsKey    model.DBKey
	genesisKey model.DBKey
	originKey  model.DBKey
}

// New instantiates a new DAGTipsStore
func New(prefixBucket model.DBBucket) model.DAGTipsStore {
	bucket := prefixBucket.Bucket(bucketName)
	return &dagTipsStore{
		shardID:    staging.GenerateShardingID(),
		tipsKey:    bucket.Key(tipsKeyName),
		genesisKey: bucket.Key(genesisKeyName),
		originKey:  bucket.Key(originKeyName),
	}
}

func (dts *dagTipsStore) StageTips(stagingArea *model.StagingArea, tips []*externalapi.DomainHash) {
	stagingShard := dts.stagingShard(stagingArea)
	stagingShard.tips = externalapi.CloneHashes(tips)
}

func (dts *dagTipsStore) StageGenesis(stagingArea *model.StagingArea, genesis, origin *externalapi.DomainHash) {
	stagingShard := dts.stagingShard(stagingArea)
	stagingShard.genesis = genesis
	stagingShard.origin = origin
}

func (dts *dagTipsStore) IsStaged(stagingArea *model.StagingArea) bool {
	return dts.stagingShard(stagingArea).isStaged()
}

func (dts *dagTipsStore) Tips(dbContext model.DBReader, stagingArea *model.StagingArea) ([]*externalapi.DomainHash, error) {
	stagingShard := dts.stagingShard(stagingArea)
	if stagingShard.tips != nil {
		return externalapi.CloneHashes(stagingShard.tips), nil
	}

	dts.cacheLock.RLock()
	tips := dts.tipsCache
	dts.cacheLock.RUnlock()
	if tips != nil {
		return externalapi.CloneHashes(tips), nil
	}

	tipsBytes, err := dbContext.Get(dts.tipsKey)
	if err != nil {
		return nil, err
	}
	tips, err = binaryserialization.DeserializeHashes(tipsBytes)
	if err != nil {
		return nil, err
	}

	dts.cacheLock.Lock()
	dts.tipsCache = tips
	dts.cacheLock.Unlock()
	return externalapi.CloneHashes(tips), nil
}

func (dts *dagTipsStore) Genesis(dbContext model.DBReader, stagingArea *model.StagingArea) (*externalapi.DomainHash, error) {
	stagingShard := dts.stagingShard(stagingArea)
	if stagingShard.genesis != nil {
		return stagingShard.genesis, nil
	}
	return dts.hash(dbContext, dts.genesisKey, &dts.genesisCache)
}

func (dts *dagTipsStore) Origin(dbContext model.DBReader, stagingArea *model.StagingArea) (*externalapi.DomainHash, error) {
	stagingShard := dts.stagingShard(stagingArea)
	if stagingShard.origin != nil {
		return stagingShard.origin, nil
	}
	return dts.hash(dbContext, dts.originKey, &dts.originCache)
}

func (dts *dagTipsStore) hash(dbContext model.DBReader, key model.DBKey, cache **externalapi.DomainHash) (*externalapi.DomainHash, error) {
	dts.cacheLock.RLock()
	cached := *cache
	dts.cacheLock.RUnlock()
	if cached != nil {
		return cached, nil
	}

	hashBytes, err := dbContext.Get(key)
	if err != nil {
		return nil, err
	}
	hash, err := binaryserialization.DeserializeHash(hashBytes)
	if err != nil {
		return nil, err
	}

	dts.cacheLock.Lock()
	*cache = hash
	dts.cacheLock.Unlock()
	return hash, nil
}
