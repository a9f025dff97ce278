package model

import "github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"

// GHOSTDAGManager resolves and manages GHOSTDAG block data
type GHOSTDAGManager interface {
	GHOSTDAG(stagingArea *StagingArea, parents []*externalapi.DomainHash) (*externalapi.BlockGHOSTDAGData, error)
	GenesisGHOSTDAGData(genesis externalapi.BlockHeader) *externalapi.BlockGHOSTDAGData
	OriginGHOSTDAGData() *externalapi.BlockGHOSTDAGData
	ChooseSelectedParent(stagingArea *StagingArea, blockHashes ...*externalapi.DomainHash) (*externalapi.DomainHash, error)
	OrderedMergeSetWithoutSelectedParent(stagingArea *StagingArea, selectedParent *externalapi.DomainHash,
		parents []*externalapi.DomainHash) ([]*externalapi.DomainHash, error)
	SortBlocks(stagingArea *StagingArea, blocks []*externalapi.DomainHash) ([]*externalapi.DomainHash, error)
	VerifyAndGHOSTDAG(stagingArea *StagingArea, blueBlocks []externalapi.BlockHeader,
		header externalapi.BlockHeader) (*externalapi.BlockGHOSTDAGData, error)
	CheckGHOSTDAGDataBlueBlock(stagingArea *StagingArea, ghostdagData *externalapi.BlockGHOSTDAGData) error

	AscendingMergeSetWithoutSelectedParent(stagingArea *StagingArea,
		ghostdagData *externalapi.BlockGHOSTDAGData) ([]*externalapi.DomainHash, error)
	DescendingMergeSetWithoutSelectedParent(stagingArea *StagingArea,
		ghostdagData *externalapi.BlockGHOSTDAGData) ([]*externalapi.DomainHash, error)
	ConsensusOrderedMergeSet(stagingArea *StagingArea,
		ghostdagData *externalapi.BlockGHOSTDAGData) ([]*externalapi.DomainHash, error)
	UnorderedMergeSetWithoutSelectedParent(ghostdagData *externalapi.BlockGHOSTDAGData) []*externalapi.DomainHash
	UnorderedMergeSet(ghostdagData *externalapi.BlockGHOSTDAGData) []*externalapi.DomainHash
}
