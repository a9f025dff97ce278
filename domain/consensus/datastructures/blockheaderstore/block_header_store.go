package blockheaderstore

import (
	"sync/atomic"

	"github.com/Hoosat-Oy/flexidag/domain/consensus/database/binaryserialization"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/utils/lrucache"
	"github.com/Hoosat-Oy/flexidag/util/staging"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

var bucketName = []byte("block-headers")
var countKeyName = []byte("block-headers-count")

// blockHeaderStore represents a store of block headers
type blockHeaderStore struct {
	shardID     model.StagingShardID
	cache       *lrucache.LRUCache[externalapi.BlockHeader]
	countCached atomic.Uint64
	bucket      model.DBBucket
	countKey    model.DBKey
}

// New instantiates a new BlockHeaderStore
func New(dbContext model.DBReader, prefixBucket model.DBBucket, cacheSize int, preallocate bool) (model.BlockHeaderStore, error) {
	blockHeaderStore := &blockHeaderStore{
		shardID:  staging.GenerateShardingID(),
		cache:    lrucache.New[externalapi.BlockHeader](cacheSize, preallocate),
		bucket:   prefixBucket.Bucket(bucketName),
		countKey: prefixBucket.Key(countKeyName),
	}

	err := blockHeaderStore.initializeCount(dbContext)
	if err != nil {
		return nil, err
	}

	return blockHeaderStore, nil
}

func (bhs *blockHeaderStore) initializeCount(dbContext model.DBReader) error {
	count := uint64(0)
	hasCountBytes, err := dbContext.Has(bhs.countKey)
	if err != nil {
		return err
	}
	if hasCountBytes {
		countBytes, err := dbContext.Get(bhs.countKey)
		if err != nil {
			return err
		}
		if len(countBytes) != 8 {
			return errors.Errorf("invalid header count size %d", len(countBytes))
		}
		count = binaryserialization.DeserializeUint64(countBytes)
	}
	bhs.countCached.Store(count)
	return nil
}

// Stage stages the given block header for the given blockHash
func (bhs *blockHeaderStore) Stage(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash, blockHeader externalapi.BlockHeader) {
	stagingShard := bhs.stagingShard(stagingArea)
	stagingShard.toAdd[*blockHash] = blockHeader
}

func (bhs *blockHeaderStore) IsStaged(stagingArea *model.StagingArea) bool {
	return bhs.stagingShard(stagingArea).isStaged()
}

// BlockHeader gets the block header associated with the given blockHash
func (bhs *blockHeaderStore) BlockHeader(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (externalapi.BlockHeader, error) {

	stagingShard := bhs.stagingShard(stagingArea)

	if header, ok := stagingShard.toAdd[*blockHash]; ok {
		return header, nil
	}

	if header, ok := bhs.cache.Get(blockHash); ok {
		return header, nil
	}

	headerBytes, err := dbContext.Get(bhs.hashAsKey(blockHash))
	if err != nil {
		return nil, err
	}

	header, err := binaryserialization.DeserializeHeader(headerBytes)
	if err != nil {
		return nil, err
	}
	bhs.cache.Add(blockHash, header)
	return header, nil
}

// HasBlockHeader returns whether a block header with a given hash exists in the store.
func (bhs *blockHeaderStore) HasBlockHeader(dbContext model.DBReader, stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) (bool, error) {
	stagingShard := bhs.stagingShard(stagingArea)

	if _, ok := stagingShard.toAdd[*blockHash]; ok {
		return true, nil
	}

	if bhs.cache.Has(blockHash) {
		return true, nil
	}

	exists, err := dbContext.Has(bhs.hashAsKey(blockHash))
	if err != nil {
		return false, err
	}

	return exists, nil
}

// Difficulty returns the difficulty of the header of blockHash
func (bhs *blockHeaderStore) Difficulty(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (*uint256.Int, error) {

	header, err := bhs.BlockHeader(dbContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	return header.Difficulty(), nil
}

func (bhs *blockHeaderStore) hashAsKey(hash *externalapi.DomainHash) model.DBKey {
	return bhs.bucket.Key(hash.ByteSlice())
}

func (bhs *blockHeaderStore) Count(stagingArea *model.StagingArea) uint64 {
	stagingShard := bhs.stagingShard(stagingArea)

	return bhs.count(stagingShard)
}

func (bhs *blockHeaderStore) count(stagingShard *blockHeaderStagingShard) uint64 {
	return bhs.countCached.Load() + uint64(len(stagingShard.toAdd))
}
