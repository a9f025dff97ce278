package ghostdagmanager

import (
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	lru "github.com/hashicorp/golang-lru"
	"github.com/holiman/uint256"
)

const blueAnticoneSizeCacheSize = 9000

// ghostdagManager resolves and manages GHOSTDAG block data
type ghostdagManager struct {
	databaseContext     model.DBReader
	ghostdagDataStore   model.GHOSTDAGDataStore
	relationStore       model.BlockRelationStore
	headerStore         model.BlockHeaderStore
	reachabilityService model.ReachabilityService

	k                     externalapi.KType
	blueAnticoneSizeCache *lru.Cache
}

// New instantiates a new GHOSTDAGManager
func New(
	databaseContext model.DBReader,
	ghostdagDataStore model.GHOSTDAGDataStore,
	relationStore model.BlockRelationStore,
	headerStore model.BlockHeaderStore,
	reachabilityService model.ReachabilityService,
	k externalapi.KType) model.GHOSTDAGManager {

	cache, _ := lru.New(blueAnticoneSizeCacheSize)
	return &ghostdagManager{
		databaseContext:       databaseContext,
		ghostdagDataStore:     ghostdagDataStore,
		relationStore:         relationStore,
		headerStore:           headerStore,
		reachabilityService:   reachabilityService,
		k:                     k,
		blueAnticoneSizeCache: cache,
	}
}

// GenesisGHOSTDAGData returns the GHOSTDAG data of the genesis block. The
// genesis starts the blue work count at its own difficulty and selects the
// origin as its parent.
func (gm *ghostdagManager) GenesisGHOSTDAGData(genesis externalapi.BlockHeader) *externalapi.BlockGHOSTDAGData {
	return externalapi.NewBlockGHOSTDAGData(
		0,
		genesis.Difficulty().Clone(),
		genesis.ParentHash(),
		make([]*externalapi.DomainHash, 0),
		make([]*externalapi.DomainHash, 0),
		make(map[externalapi.DomainHash]externalapi.KType),
	)
}

// OriginGHOSTDAGData returns the GHOSTDAG data of the virtual origin block
func (gm *ghostdagManager) OriginGHOSTDAGData() *externalapi.BlockGHOSTDAGData {
	return externalapi.NewBlockGHOSTDAGData(
		0,
		new(uint256.Int),
		externalapi.ZeroHash,
		make([]*externalapi.DomainHash, 0),
		make([]*externalapi.DomainHash, 0),
		make(map[externalapi.DomainHash]externalapi.KType),
	)
}
