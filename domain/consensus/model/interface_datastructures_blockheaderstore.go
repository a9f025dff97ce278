package model

import (
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/holiman/uint256"
)

// BlockHeaderStore represents a store of block headers
type BlockHeaderStore interface {
	Store
	Stage(stagingArea *StagingArea, blockHash *externalapi.DomainHash, blockHeader externalapi.BlockHeader)
	BlockHeader(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) (externalapi.BlockHeader, error)
	HasBlockHeader(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) (bool, error)
	Difficulty(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) (*uint256.Int, error)
	Count(stagingArea *StagingArea) uint64
}
