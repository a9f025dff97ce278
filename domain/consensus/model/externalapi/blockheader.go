package externalapi

import "github.com/holiman/uint256"

// BlockHeader represents a DAG block header. Implementations are immutable
// and carry their hash, computed once at construction.
type BlockHeader interface {
	BlockHash() *DomainHash
	// ParentHash is the hash of the chain parent. For the genesis it's the origin.
	ParentHash() *DomainHash
	ParentsHash() []*DomainHash
	Number() uint64
	Timestamp() uint64
	Difficulty() *uint256.Int
	Nonce() uint64
	PruningPoint() *DomainHash
	IsGenesis() bool
	Equal(other BlockHeader) bool
}
