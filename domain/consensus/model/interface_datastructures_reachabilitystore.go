package model

import "github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"

// ReachabilityStoreReader is the read side of the reachability index
// storage. Reads of unknown hashes return an error satisfying
// database.IsNotFoundError.
type ReachabilityStoreReader interface {
	Has(blockHash *externalapi.DomainHash) (bool, error)
	Interval(blockHash *externalapi.DomainHash) (ReachabilityInterval, error)
	Parent(blockHash *externalapi.DomainHash) (*externalapi.DomainHash, error)
	Children(blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error)
	FutureCoveringSet(blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error)
	Height(blockHash *externalapi.DomainHash) (uint64, error)
	ReindexRoot() (*externalapi.DomainHash, error)
}

// ReachabilityStore is the storage contract the reachability algorithms
// run against. It is implemented by a staging session over the database, a
// write-through database store and a plain in-memory store.
type ReachabilityStore interface {
	ReachabilityStoreReader

	// Init creates the origin record with the given capacity and makes it
	// the reindex root. Fails with ErrKeyAlreadyExists if origin exists.
	Init(origin *externalapi.DomainHash, capacity ReachabilityInterval) error

	// Insert creates a new record. Fails with ErrKeyAlreadyExists if
	// blockHash exists.
	Insert(blockHash, parent *externalapi.DomainHash, interval ReachabilityInterval, height uint64) error

	SetInterval(blockHash *externalapi.DomainHash, interval ReachabilityInterval) error

	// AppendChild appends child to the children of blockHash, unless it's
	// already there, and returns the height of blockHash.
	AppendChild(blockHash, child *externalapi.DomainHash) (uint64, error)

	// InsertFutureCoveringItem inserts fci to the future covering set of
	// blockHash at the given index.
	InsertFutureCoveringItem(blockHash, fci *externalapi.DomainHash, index int) error

	SetReindexRoot(root *externalapi.DomainHash) error
}

// ReachabilityDataStore represents the persistent, staged store of the
// reachability index. ReachabilityStore sessions are built on top of it.
type ReachabilityDataStore interface {
	Store
	StageReachabilityData(stagingArea *StagingArea, blockHash *externalapi.DomainHash, reachabilityData *ReachabilityData)
	StageChildren(stagingArea *StagingArea, blockHash *externalapi.DomainHash, children []*externalapi.DomainHash)
	StageFutureCoveringSet(stagingArea *StagingArea, blockHash *externalapi.DomainHash, futureCoveringSet []*externalapi.DomainHash)
	StageReachabilityReindexRoot(stagingArea *StagingArea, reachabilityReindexRoot *externalapi.DomainHash)
	ReachabilityData(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) (*ReachabilityData, error)
	HasReachabilityData(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) (bool, error)
	Children(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error)
	FutureCoveringSet(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error)
	ReachabilityReindexRoot(dbContext DBReader, stagingArea *StagingArea) (*externalapi.DomainHash, error)
}
