package ghostdagdatastore

import (
	"github.com/Hoosat-Oy/flexidag/domain/consensus/database/binaryserialization"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/utils/lrucache"
	"github.com/Hoosat-Oy/flexidag/infrastructure/db/database"
	"github.com/Hoosat-Oy/flexidag/util/staging"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

var ghostdagDataBucketName = []byte("block-ghostdag-data")
var compactGHOSTDAGDataBucketName = []byte("compact-block-ghostdag-data")

// ghostdagDataStore represents a store of BlockGHOSTDAGData
type ghostdagDataStore struct {
	shardID            model.StagingShardID
	cache              *lrucache.LRUCache[*externalapi.BlockGHOSTDAGData]
	compactCache       *lrucache.LRUCache[*externalapi.CompactGHOSTDAGData]
	ghostdagDataBucket model.DBBucket
	compactDataBucket  model.DBBucket
}

// New instantiates a new GHOSTDAGDataStore
func New(prefixBucket model.DBBucket, cacheSize int, preallocate bool) model.GHOSTDAGDataStore {
	return &ghostdagDataStore{
		shardID:            staging.GenerateShardingID(),
		cache:              lrucache.New[*externalapi.BlockGHOSTDAGData](cacheSize, preallocate),
		compactCache:       lrucache.New[*externalapi.CompactGHOSTDAGData](cacheSize, preallocate),
		ghostdagDataBucket: prefixBucket.Bucket(ghostdagDataBucketName),
		compactDataBucket:  prefixBucket.Bucket(compactGHOSTDAGDataBucketName),
	}
}

// Insert stages the given blockGHOSTDAGData for the given blockHash
func (gds *ghostdagDataStore) Insert(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash, blockGHOSTDAGData *externalapi.BlockGHOSTDAGData) error {

	exists, err := gds.Has(dbContext, stagingArea, blockHash)
	if err != nil {
		return err
	}
	if exists {
		return errors.Wrapf(model.ErrKeyAlreadyExists, "GHOSTDAG data of %s", blockHash)
	}

	stagingShard := gds.stagingShard(stagingArea)
	stagingShard.toAdd[*blockHash] = blockGHOSTDAGData
	return nil
}

func (gds *ghostdagDataStore) IsStaged(stagingArea *model.StagingArea) bool {
	return gds.stagingShard(stagingArea).isStaged()
}

// Get gets the blockGHOSTDAGData associated with the given blockHash
func (gds *ghostdagDataStore) Get(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (*externalapi.BlockGHOSTDAGData, error) {

	stagingShard := gds.stagingShard(stagingArea)

	if blockGHOSTDAGData, ok := stagingShard.toAdd[*blockHash]; ok {
		return blockGHOSTDAGData, nil
	}

	if blockGHOSTDAGData, ok := gds.cache.Get(blockHash); ok {
		return blockGHOSTDAGData, nil
	}

	blockGHOSTDAGDataBytes, err := dbContext.Get(gds.ghostdagDataBucket.Key(blockHash.ByteSlice()))
	if err != nil {
		return nil, err
	}

	blockGHOSTDAGData, err := binaryserialization.DeserializeBlockGHOSTDAGData(blockGHOSTDAGDataBytes)
	if err != nil {
		return nil, err
	}
	gds.cache.Add(blockHash, blockGHOSTDAGData)
	return blockGHOSTDAGData, nil
}

// GetCompact gets the compact projection of the data of blockHash without
// loading its mergeset
func (gds *ghostdagDataStore) GetCompact(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (*externalapi.CompactGHOSTDAGData, error) {

	stagingShard := gds.stagingShard(stagingArea)

	if blockGHOSTDAGData, ok := stagingShard.toAdd[*blockHash]; ok {
		return blockGHOSTDAGData.ToCompact(), nil
	}

	if compactData, ok := gds.compactCache.Get(blockHash); ok {
		return compactData, nil
	}
	if blockGHOSTDAGData, ok := gds.cache.Get(blockHash); ok {
		return blockGHOSTDAGData.ToCompact(), nil
	}

	compactDataBytes, err := dbContext.Get(gds.compactDataBucket.Key(blockHash.ByteSlice()))
	if err != nil {
		return nil, err
	}

	compactData, err := binaryserialization.DeserializeCompactGHOSTDAGData(compactDataBytes)
	if err != nil {
		return nil, err
	}
	gds.compactCache.Add(blockHash, compactData)
	return compactData, nil
}

func (gds *ghostdagDataStore) BlueScore(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (uint64, error) {

	compactData, err := gds.GetCompact(dbContext, stagingArea, blockHash)
	if err != nil {
		return 0, err
	}
	return compactData.BlueScore, nil
}

func (gds *ghostdagDataStore) BlueWork(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (*uint256.Int, error) {

	compactData, err := gds.GetCompact(dbContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	return compactData.BlueWork, nil
}

func (gds *ghostdagDataStore) SelectedParent(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (*externalapi.DomainHash, error) {

	compactData, err := gds.GetCompact(dbContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	return compactData.SelectedParent, nil
}

func (gds *ghostdagDataStore) MergeSetBlues(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {

	blockGHOSTDAGData, err := gds.Get(dbContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	return blockGHOSTDAGData.MergeSetBlues(), nil
}

func (gds *ghostdagDataStore) MergeSetReds(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {

	blockGHOSTDAGData, err := gds.Get(dbContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	return blockGHOSTDAGData.MergeSetReds(), nil
}

func (gds *ghostdagDataStore) BluesAnticoneSizes(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (map[externalapi.DomainHash]externalapi.KType, error) {

	blockGHOSTDAGData, err := gds.Get(dbContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	return blockGHOSTDAGData.BluesAnticoneSizes(), nil
}

func (gds *ghostdagDataStore) Has(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (bool, error) {

	stagingShard := gds.stagingShard(stagingArea)
	if _, ok := stagingShard.toAdd[*blockHash]; ok {
		return true, nil
	}
	if gds.compactCache.Has(blockHash) || gds.cache.Has(blockHash) {
		return true, nil
	}

	_, err := gds.GetCompact(dbContext, stagingArea, blockHash)
	if database.IsNotFoundError(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
