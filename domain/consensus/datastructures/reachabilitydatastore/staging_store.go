package reachabilitydatastore

import (
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// stagingStore is a reachability session: writes go to the staging area,
// reads see staged writes first and fall back to the database.
type stagingStore struct {
	dataStore   model.ReachabilityDataStore
	dbContext   model.DBReader
	stagingArea *model.StagingArea
}

// NewStagingStore returns a ReachabilityStore whose mutations are staged
// in stagingArea. They reach the database when the staging area is
// committed.
func NewStagingStore(dataStore model.ReachabilityDataStore, dbContext model.DBReader,
	stagingArea *model.StagingArea) model.ReachabilityStore {

	return &stagingStore{
		dataStore:   dataStore,
		dbContext:   dbContext,
		stagingArea: stagingArea,
	}
}

func (ss *stagingStore) Init(origin *externalapi.DomainHash, capacity model.ReachabilityInterval) error {
	err := ss.Insert(origin, externalapi.ZeroHash, capacity, 0)
	if err != nil {
		return err
	}
	return ss.SetReindexRoot(origin)
}

func (ss *stagingStore) Insert(blockHash, parent *externalapi.DomainHash,
	interval model.ReachabilityInterval, height uint64) error {

	exists, err := ss.Has(blockHash)
	if err != nil {
		return err
	}
	if exists {
		return errors.Wrapf(model.ErrKeyAlreadyExists, "reachability data of %s", blockHash)
	}

	ss.dataStore.StageReachabilityData(ss.stagingArea, blockHash, &model.ReachabilityData{
		Parent:   parent,
		Interval: interval,
		Height:   height,
	})
	ss.dataStore.StageChildren(ss.stagingArea, blockHash, []*externalapi.DomainHash{})
	ss.dataStore.StageFutureCoveringSet(ss.stagingArea, blockHash, []*externalapi.DomainHash{})
	return nil
}

func (ss *stagingStore) SetInterval(blockHash *externalapi.DomainHash, interval model.ReachabilityInterval) error {
	data, err := ss.dataStore.ReachabilityData(ss.dbContext, ss.stagingArea, blockHash)
	if err != nil {
		return err
	}
	newData := data.Clone()
	newData.Interval = interval
	ss.dataStore.StageReachabilityData(ss.stagingArea, blockHash, newData)
	return nil
}

func (ss *stagingStore) AppendChild(blockHash, child *externalapi.DomainHash) (uint64, error) {
	data, err := ss.dataStore.ReachabilityData(ss.dbContext, ss.stagingArea, blockHash)
	if err != nil {
		return 0, err
	}
	children, err := ss.dataStore.Children(ss.dbContext, ss.stagingArea, blockHash)
	if err != nil {
		return 0, err
	}
	for _, existing := range children {
		if existing.Equal(child) {
			return data.Height, nil
		}
	}

	newChildren := make([]*externalapi.DomainHash, len(children), len(children)+1)
	copy(newChildren, children)
	newChildren = append(newChildren, child)
	ss.dataStore.StageChildren(ss.stagingArea, blockHash, newChildren)
	return data.Height, nil
}

func (ss *stagingStore) InsertFutureCoveringItem(blockHash, fci *externalapi.DomainHash, index int) error {
	futureCoveringSet, err := ss.dataStore.FutureCoveringSet(ss.dbContext, ss.stagingArea, blockHash)
	if err != nil {
		return err
	}
	newFutureCoveringSet, err := insertAt(futureCoveringSet, fci, index)
	if err != nil {
		return errors.Wrapf(err, "future covering set of %s", blockHash)
	}
	ss.dataStore.StageFutureCoveringSet(ss.stagingArea, blockHash, newFutureCoveringSet)
	return nil
}

func (ss *stagingStore) SetReindexRoot(root *externalapi.DomainHash) error {
	ss.dataStore.StageReachabilityReindexRoot(ss.stagingArea, root)
	return nil
}

func (ss *stagingStore) Has(blockHash *externalapi.DomainHash) (bool, error) {
	return ss.dataStore.HasReachabilityData(ss.dbContext, ss.stagingArea, blockHash)
}

func (ss *stagingStore) Interval(blockHash *externalapi.DomainHash) (model.ReachabilityInterval, error) {
	data, err := ss.dataStore.ReachabilityData(ss.dbContext, ss.stagingArea, blockHash)
	if err != nil {
		return model.ReachabilityInterval{}, err
	}
	return data.Interval, nil
}

func (ss *stagingStore) Parent(blockHash *externalapi.DomainHash) (*externalapi.DomainHash, error) {
	data, err := ss.dataStore.ReachabilityData(ss.dbContext, ss.stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	return data.Parent, nil
}

func (ss *stagingStore) Children(blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {
	return ss.dataStore.Children(ss.dbContext, ss.stagingArea, blockHash)
}

func (ss *stagingStore) FutureCoveringSet(blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {
	return ss.dataStore.FutureCoveringSet(ss.dbContext, ss.stagingArea, blockHash)
}

func (ss *stagingStore) Height(blockHash *externalapi.DomainHash) (uint64, error) {
	data, err := ss.dataStore.ReachabilityData(ss.dbContext, ss.stagingArea, blockHash)
	if err != nil {
		return 0, err
	}
	return data.Height, nil
}

func (ss *stagingStore) ReindexRoot() (*externalapi.DomainHash, error) {
	return ss.dataStore.ReachabilityReindexRoot(ss.dbContext, ss.stagingArea)
}

// insertAt returns a copy of hashes with hash inserted at index
func insertAt(hashes []*externalapi.DomainHash, hash *externalapi.DomainHash, index int) ([]*externalapi.DomainHash, error) {
	if index < 0 || index > len(hashes) {
		return nil, errors.Wrapf(model.ErrDataInconsistency, "index %d out of range [0,%d]", index, len(hashes))
	}
	inserted := make([]*externalapi.DomainHash, 0, len(hashes)+1)
	inserted = append(inserted, hashes[:index]...)
	inserted = append(inserted, hash)
	inserted = append(inserted, hashes[index:]...)
	return inserted, nil
}
