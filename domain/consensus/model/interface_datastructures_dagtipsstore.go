package model

import "github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"

// DAGState is the persisted frontier of the DAG
type DAGState struct {
	Tips []*externalapi.DomainHash
}

// DAGTipsStore represents a store of the DAG state: its tips, and the
// genesis and origin it was initialized with.
type DAGTipsStore interface {
	Store
	StageTips(stagingArea *StagingArea, tips []*externalapi.DomainHash)
	Tips(dbContext DBReader, stagingArea *StagingArea) ([]*externalapi.DomainHash, error)
	StageGenesis(stagingArea *StagingArea, genesis, origin *externalapi.DomainHash)
	Genesis(dbContext DBReader, stagingArea *StagingArea) (*externalapi.DomainHash, error)
	Origin(dbContext DBReader, stagingArea *StagingArea) (*externalapi.DomainHash, error)
}
