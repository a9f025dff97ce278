package reachabilitydatastore

import (
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
)

// dbStore is a write-through ReachabilityStore: every mutation is staged
// and committed in its own database transaction.
type dbStore struct {
	dataStore model.ReachabilityDataStore
	dbManager model.DBManager
}

// NewDBStore returns a write-through ReachabilityStore over dbManager
func NewDBStore(dataStore model.ReachabilityDataStore, dbManager model.DBManager) model.ReachabilityStore {
	return &dbStore{
		dataStore: dataStore,
		dbManager: dbManager,
	}
}

func (ds *dbStore) reader() model.ReachabilityStore {
	return NewStagingStore(ds.dataStore, ds.dbManager, model.NewStagingArea())
}

func (ds *dbStore) write(writeFunc func(store model.ReachabilityStore) error) (err error) {
	stagingArea := model.NewStagingArea()
	err = writeFunc(NewStagingStore(ds.dataStore, ds.dbManager, stagingArea))
	if err != nil {
		return err
	}

	dbTx, err := ds.dbManager.Begin()
	if err != nil {
		return err
	}
	defer func() {
		rollbackErr := dbTx.RollbackUnlessClosed()
		if err == nil {
			err = rollbackErr
		}
	}()

	err = stagingArea.Commit(dbTx)
	if err != nil {
		return err
	}
	err = dbTx.Commit()
	if err != nil {
		return err
	}
	stagingArea.UpdateCaches()
	return nil
}

func (ds *dbStore) Init(origin *externalapi.DomainHash, capacity model.ReachabilityInterval) error {
	return ds.write(func(store model.ReachabilityStore) error {
		return store.Init(origin, capacity)
	})
}

func (ds *dbStore) Insert(blockHash, parent *externalapi.DomainHash, interval model.ReachabilityInterval, height uint64) error {
	return ds.write(func(store model.ReachabilityStore) error {
		return store.Insert(blockHash, parent, interval, height)
	})
}

func (ds *dbStore) SetInterval(blockHash *externalapi.DomainHash, interval model.ReachabilityInterval) error {
	return ds.write(func(store model.ReachabilityStore) error {
		return store.SetInterval(blockHash, interval)
	})
}

func (ds *dbStore) AppendChild(blockHash, child *externalapi.DomainHash) (uint64, error) {
	var height uint64
	err := ds.write(func(store model.ReachabilityStore) error {
		var err error
		height, err = store.AppendChild(blockHash, child)
		return err
	})
	return height, err
}

func (ds *dbStore) InsertFutureCoveringItem(blockHash, fci *externalapi.DomainHash, index int) error {
	return ds.write(func(store model.ReachabilityStore) error {
		return store.InsertFutureCoveringItem(blockHash, fci, index)
	})
}

func (ds *dbStore) SetReindexRoot(root *externalapi.DomainHash) error {
	return ds.write(func(store model.ReachabilityStore) error {
		return store.SetReindexRoot(root)
	})
}

func (ds *dbStore) Has(blockHash *externalapi.DomainHash) (bool, error) {
	return ds.reader().Has(blockHash)
}

func (ds *dbStore) Interval(blockHash *externalapi.DomainHash) (model.ReachabilityInterval, error) {
	return ds.reader().Interval(blockHash)
}

func (ds *dbStore) Parent(blockHash *externalapi.DomainHash) (*externalapi.DomainHash, error) {
	return ds.reader().Parent(blockHash)
}

func (ds *dbStore) Children(blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {
	return ds.reader().Children(blockHash)
}

func (ds *dbStore) FutureCoveringSet(blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {
	return ds.reader().FutureCoveringSet(blockHash)
}

func (ds *dbStore) Height(blockHash *externalapi.DomainHash) (uint64, error) {
	return ds.reader().Height(blockHash)
}

func (ds *dbStore) ReindexRoot() (*externalapi.DomainHash, error) {
	return ds.reader().ReindexRoot()
}
