package ghostdagdatastore

import (
	"sync"

	"github.com/Hoosat-Oy/flexidag/domain/consensus/model"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/flexidag/infrastructure/db/database"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// memoryStore is a GHOSTDAGDataStore kept in a map. Writes are immediately
// visible; the database context and staging area are ignored.
type memoryStore struct {
	lock sync.RWMutex
	data map[externalapi.DomainHash]*externalapi.BlockGHOSTDAGData
}

// NewMemoryStore returns an empty in-memory GHOSTDAGDataStore
func NewMemoryStore() model.GHOSTDAGDataStore {
	return &memoryStore{
		data: make(map[externalapi.DomainHash]*externalapi.BlockGHOSTDAGData),
	}
}

func (ms *memoryStore) IsStaged(*model.StagingArea) bool {
	return false
}

func (ms *memoryStore) Insert(_ model.DBReader, _ *model.StagingArea, blockHash *externalapi.DomainHash,
	blockGHOSTDAGData *externalapi.BlockGHOSTDAGData) error {

	ms.lock.Lock()
	defer ms.lock.Unlock()

	if _, ok := ms.data[*blockHash]; ok {
		return errors.Wrapf(model.ErrKeyAlreadyExists, "GHOSTDAG data of %s", blockHash)
	}
	ms.data[*blockHash] = blockGHOSTDAGData
	return nil
}

func (ms *memoryStore) Get(_ model.DBReader, _ *model.StagingArea, blockHash *externalapi.DomainHash) (*externalapi.BlockGHOSTDAGData, error) {
	ms.lock.RLock()
	defer ms.lock.RUnlock()

	blockGHOSTDAGData, ok := ms.data[*blockHash]
	if !ok {
		return nil, errors.Wrapf(database.ErrNotFound, "GHOSTDAG data of %s", blockHash)
	}
	return blockGHOSTDAGData, nil
}

func (ms *memoryStore) GetCompact(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (*externalapi.CompactGHOSTDAGData, error) {

	blockGHOSTDAGData, err := ms.Get(dbContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	return blockGHOSTDAGData.ToCompact(), nil
}

func (ms *memoryStore) BlueScore(dbContext model.DBReader, stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) (uint64, error) {
	blockGHOSTDAGData, err := ms.Get(dbContext, stagingArea, blockHash)
	if err != nil {
		return 0, err
	}
	return blockGHOSTDAGData.BlueScore(), nil
}

func (ms *memoryStore) BlueWork(dbContext model.DBReader, stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) (*uint256.Int, error) {
	blockGHOSTDAGData, err := ms.Get(dbContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	return blockGHOSTDAGData.BlueWork(), nil
}

func (ms *memoryStore) SelectedParent(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (*externalapi.DomainHash, error) {

	blockGHOSTDAGData, err := ms.Get(dbContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	return blockGHOSTDAGData.SelectedParent(), nil
}

func (ms *memoryStore) MergeSetBlues(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {

	blockGHOSTDAGData, err := ms.Get(dbContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	return blockGHOSTDAGData.MergeSetBlues(), nil
}

func (ms *memoryStore) MergeSetReds(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {

	blockGHOSTDAGData, err := ms.Get(dbContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	return blockGHOSTDAGData.MergeSetReds(), nil
}

func (ms *memoryStore) BluesAnticoneSizes(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (map[externalapi.DomainHash]externalapi.KType, error) {

	blockGHOSTDAGData, err := ms.Get(dbContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	return blockGHOSTDAGData.BluesAnticoneSizes(), nil
}

func (ms *memoryStore) Has(_ model.DBReader, _ *model.StagingArea, blockHash *externalapi.DomainHash) (bool, error) {
	ms.lock.RLock()
	defer ms.lock.RUnlock()

	_, ok := ms.data[*blockHash]
	return ok, nil
}
