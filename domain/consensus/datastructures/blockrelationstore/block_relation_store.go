package blockrelationstore

import (
	"github.com/Hoosat-Oy/flexidag/domain/consensus/database/binaryserialization"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/utils/lrucache"
	"github.com/Hoosat-Oy/flexidag/infrastructure/db/database"
	"github.com/Hoosat-Oy/flexidag/util/staging"
	"github.com/pkg/errors"
)

var parentsBucketName = []byte("block-parents")
var childrenBucketName = []byte("block-children")

// blockRelationStore represents a store of BlockRelations. Parents and
// children are kept in separate tables since children keep growing after
// a block is added.
type blockRelationStore struct {
	shardID        model.StagingShardID
	parentsCache   *lrucache.LRUCache[[]*externalapi.DomainHash]
	childrenCache  *lrucache.LRUCache[[]*externalapi.DomainHash]
	parentsBucket  model.DBBucket
	childrenBucket model.DBBucket
}

// New instantiates a new BlockRelationStore
func New(prefixBucket model.DBBucket, cacheSize int, preallocate bool) model.BlockRelationStore {
	return &blockRelationStore{
		shardID:        staging.GenerateShardingID(),
		parentsCache:   lrucache.New[[]*externalapi.DomainHash](cacheSize, preallocate),
		childrenCache:  lrucache.New[[]*externalapi.DomainHash](cacheSize, preallocate),
		parentsBucket:  prefixBucket.Bucket(parentsBucketName),
		childrenBucket: prefixBucket.Bucket(childrenBucketName),
	}
}

func (brs *blockRelationStore) StageBlockRelation(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash, parents []*externalapi.DomainHash) error {

	newChildrenOfParents := make(map[externalapi.DomainHash][]*externalapi.DomainHash, len(parents))
	for _, parent := range parents {
		children, err := brs.Children(dbContext, stagingArea, parent)
		if err != nil {
			return errors.Wrapf(err, "children of parent %s", parent)
		}
		if containsHash(children, blockHash) {
			continue
		}
		newChildren := make([]*externalapi.DomainHash, len(children), len(children)+1)
		copy(newChildren, children)
		newChildrenOfParents[*parent] = append(newChildren, blockHash)
	}

	_, err := brs.Children(dbContext, stagingArea, blockHash)
	hasChildren := err == nil
	if err != nil && !database.IsNotFoundError(err) {
		return err
	}

	stagingShard := brs.stagingShard(stagingArea)
	stagingShard.parents[*blockHash] = externalapi.CloneHashes(parents)
	if !hasChildren {
		stagingShard.children[*blockHash] = []*externalapi.DomainHash{}
	}
	for parent, children := range newChildrenOfParents {
		stagingShard.children[parent] = children
	}
	return nil
}

func (brs *blockRelationStore) IsStaged(stagingArea *model.StagingArea) bool {
	return brs.stagingShard(stagingArea).isStaged()
}

func (brs *blockRelationStore) BlockRelation(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (*model.BlockRelations, error) {

	parents, err := brs.Parents(dbContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	children, err := brs.Children(dbContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	return &model.BlockRelations{
		Parents:  externalapi.CloneHashes(parents),
		Children: externalapi.CloneHashes(children),
	}, nil
}

func (brs *blockRelationStore) Parents(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {

	stagingShard := brs.stagingShard(stagingArea)
	if parents, ok := stagingShard.parents[*blockHash]; ok {
		return parents, nil
	}
	return brs.hashes(dbContext, brs.parentsCache, brs.parentsBucket, blockHash)
}

func (brs *blockRelationStore) Children(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {

	stagingShard := brs.stagingShard(stagingArea)
	if children, ok := stagingShard.children[*blockHash]; ok {
		return children, nil
	}
	return brs.hashes(dbContext, brs.childrenCache, brs.childrenBucket, blockHash)
}

func (brs *blockRelationStore) Has(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (bool, error) {

	_, err := brs.Parents(dbContext, stagingArea, blockHash)
	if database.IsNotFoundError(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (brs *blockRelationStore) hashes(dbContext model.DBReader, cache *lrucache.LRUCache[[]*externalapi.DomainHash],
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

func containsHash(hashes []*externalapi.DomainHash, hash *externalapi.DomainHash) bool {
	for _, candidate := range hashes {
		if candidate.Equal(hash) {
			return true
		}
	}
	return false
}
