package model

import "github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"

// BlockRelations represents the parents and children of a block
type BlockRelations struct {
	Parents  []*externalapi.DomainHash
	Children []*externalapi.DomainHash
}

// Clone returns a clone of BlockRelations
func (br *BlockRelations) Clone() *BlockRelations {
	return &BlockRelations{
		Parents:  externalapi.CloneHashes(br.Parents),
		Children: externalapi.CloneHashes(br.Children),
	}
}

// BlockRelationStore represents a store of BlockRelations
type BlockRelationStore interface {
	Store
	// StageBlockRelation stages the parents of blockHash and appends
	// blockHash to the children of each of them.
	StageBlockRelation(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash, parents []*externalapi.DomainHash) error
	BlockRelation(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) (*BlockRelations, error)
	Parents(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error)
	Children(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error)
	Has(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) (bool, error)
}
