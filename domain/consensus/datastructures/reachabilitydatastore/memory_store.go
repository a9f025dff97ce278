package reachabilitydatastore

import (
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/flexidag/infrastructure/db/database"
	"github.com/pkg/errors"
)

type memoryRecord struct {
	data              model.ReachabilityData
	children          []*externalapi.DomainHash
	futureCoveringSet []*externalapi.DomainHash
}

// memoryStore is a ReachabilityStore kept entirely in maps. It is not
// safe for concurrent use.
type memoryStore struct {
	records     map[externalapi.DomainHash]*memoryRecord
	reindexRoot *externalapi.DomainHash
}

// NewMemoryStore returns an empty in-memory ReachabilityStore
func NewMemoryStore() model.ReachabilityStore {
	return &memoryStore{
		records: make(map[externalapi.DomainHash]*memoryRecord),
	}
}

func (ms *memoryStore) record(blockHash *externalapi.DomainHash) (*memoryRecord, error) {
	record, ok := ms.records[*blockHash]
	if !ok {
		return nil, errors.Wrapf(database.ErrNotFound, "reachability data of %s", blockHash)
	}
	return record, nil
}

func (ms *memoryStore) Init(origin *externalapi.DomainHash, capacity model.ReachabilityInterval) error {
	err := ms.Insert(origin, externalapi.ZeroHash, capacity, 0)
	if err != nil {
		return err
	}
	return ms.SetReindexRoot(origin)
}

func (ms *memoryStore) Insert(blockHash, parent *externalapi.DomainHash, interval model.ReachabilityInterval, height uint64) error {
	if _, ok := ms.records[*blockHash]; ok {
		return errors.Wrapf(model.ErrKeyAlreadyExists, "reachability data of %s", blockHash)
	}
	ms.records[*blockHash] = &memoryRecord{
		data: model.ReachabilityData{
			Parent:   parent,
			Interval: interval,
			Height:   height,
		},
	}
	return nil
}

func (ms *memoryStore) SetInterval(blockHash *externalapi.DomainHash, interval model.ReachabilityInterval) error {
	record, err := ms.record(blockHash)
	if err != nil {
		return err
	}
	record.data.Interval = interval
	return nil
}

func (ms *memoryStore) AppendChild(blockHash, child *externalapi.DomainHash) (uint64, error) {
	record, err := ms.record(blockHash)
	if err != nil {
		return 0, err
	}
	for _, existing := range record.children {
		if existing.Equal(child) {
			return record.data.Height, nil
		}
	}
	record.children = append(record.children, child)
	return record.data.Height, nil
}

func (ms *memoryStore) InsertFutureCoveringItem(blockHash, fci *externalapi.DomainHash, index int) error {
	record, err := ms.record(blockHash)
	if err != nil {
		return err
	}
	futureCoveringSet, err := insertAt(record.futureCoveringSet, fci, index)
	if err != nil {
		return errors.Wrapf(err, "future covering set of %s", blockHash)
	}
	record.futureCoveringSet = futureCoveringSet
	return nil
}

func (ms *memoryStore) SetReindexRoot(root *externalapi.DomainHash) error {
	ms.reindexRoot = root
	return nil
}

func (ms *memoryStore) Has(blockHash *externalapi.DomainHash) (bool, error) {
	_, ok := ms.records[*blockHash]
	return ok, nil
}

func (ms *memoryStore) Interval(blockHash *externalapi.DomainHash) (model.ReachabilityInterval, error) {
	record, err := ms.record(blockHash)
	if err != nil {
		return model.ReachabilityInterval{}, err
	}
	return record.data.Interval, nil
}

func (ms *memoryStore) Parent(blockHash *externalapi.DomainHash) (*externalapi.DomainHash, error) {
	record, err := ms.record(blockHash)
	if err != nil {
		return nil, err
	}
	return record.data.Parent, nil
}

func (ms *memoryStore) Children(blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {
	record, err := ms.record(blockHash)
	if err != nil {
		return nil, err
	}
	return record.children, nil
}

func (ms *memoryStore) FutureCoveringSet(blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {
	record, err := ms.record(blockHash)
	if err != nil {
		return nil, err
	}
	return record.futureCoveringSet, nil
}

func (ms *memoryStore) Height(blockHash *externalapi.DomainHash) (uint64, error) {
	record, err := ms.record(blockHash)
	if err != nil {
		return 0, err
	}
	return record.data.Height, nil
}

func (ms *memoryStore) ReindexRoot() (*externalapi.DomainHash, error) {
	if ms.reindexRoot == nil {
		return nil, errors.Wrap(database.ErrNotFound, "reindex root")
	}
	return ms.reindexRoot, nil
}
