package model

import (
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/holiman/uint256"
)

// GHOSTDAGDataStore represents a store of BlockGHOSTDAGData. Records are
// written once: Insert fails with ErrKeyAlreadyExists for a known hash.
type GHOSTDAGDataStore interface {
	Store
	Insert(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash, blockGHOSTDAGData *externalapi.BlockGHOSTDAGData) error
	Get(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) (*externalapi.BlockGHOSTDAGData, error)
	GetCompact(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) (*externalapi.CompactGHOSTDAGData, error)
	BlueScore(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) (uint64, error)
	BlueWork(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) (*uint256.Int, error)
	SelectedParent(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) (*externalapi.DomainHash, error)
	MergeSetBlues(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error)
	MergeSetReds(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error)
	BluesAnticoneSizes(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) (map[externalapi.DomainHash]externalapi.KType, error)
	Has(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) (bool, error)
}
