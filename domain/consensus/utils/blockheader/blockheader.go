package blockheader

import (
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/utils/consensushashing"
	"github.com/holiman/uint256"
)

type blockHeader struct {
	parentHash   *externalapi.DomainHash
	parentsHash  []*externalapi.DomainHash
	number       uint64
	timestamp    uint64
	difficulty   *uint256.Int
	nonce        uint64
	pruningPoint *externalapi.DomainHash

	blockHash *externalapi.DomainHash
}

func (bh *blockHeader) BlockHash() *externalapi.DomainHash {
	return bh.blockHash
}

func (bh *blockHeader) ParentHash() *externalapi.DomainHash {
	return bh.parentHash
}

func (bh *blockHeader) ParentsHash() []*externalapi.DomainHash {
	return bh.parentsHash
}

func (bh *blockHeader) Number() uint64 {
	return bh.number
}

func (bh *blockHeader) Timestamp() uint64 {
	return bh.timestamp
}

func (bh *blockHeader) Difficulty() *uint256.Int {
	return bh.difficulty
}

func (bh *blockHeader) Nonce() uint64 {
	return bh.nonce
}

func (bh *blockHeader) PruningPoint() *externalapi.DomainHash {
	return bh.pruningPoint
}

func (bh *blockHeader) IsGenesis() bool {
	return bh.number == 0
}

func (bh *blockHeader) Equal(other externalapi.BlockHeader) bool {
	if bh == nil || other == nil {
		return bh == nil && other == nil
	}
	return bh.blockHash.Equal(other.BlockHash())
}

// NewBlockHeader returns a new immutable header. Its hash is computed here,
// once. A nil pruningPoint is stored as the zero hash.
func NewBlockHeader(
	parentHash *externalapi.DomainHash,
	parentsHash []*externalapi.DomainHash,
	number uint64,
	timestamp uint64,
	difficulty *uint256.Int,
	nonce uint64,
	pruningPoint *externalapi.DomainHash) externalapi.BlockHeader {

	if pruningPoint == nil {
		pruningPoint = externalapi.ZeroHash
	}
	if difficulty == nil {
		difficulty = new(uint256.Int)
	}
	header := &blockHeader{
		parentHash:   parentHash,
		parentsHash:  externalapi.CloneHashes(parentsHash),
		number:       number,
		timestamp:    timestamp,
		difficulty:   difficulty.Clone(),
		nonce:        nonce,
		pruningPoint: pruningPoint,
	}
	header.blockHash = consensushashing.HeaderHash(header)
	return header
}
