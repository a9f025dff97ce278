package model

import "github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"

// TransactionExecutor applies the transactions of a block on top of a state
// root. Implemented by the execution layer.
type TransactionExecutor interface {
	ExecuteBlock(header externalapi.BlockHeader, parentStateRoot *externalapi.DomainHash) (stateRoot *externalapi.DomainHash, err error)
	ExecuteReadOnlyFunction(stateRoot *externalapi.DomainHash, function string, args [][]byte) ([][]byte, error)
}

// BlockFetcher fetches blocks from peers by hash.
type BlockFetcher interface {
	FetchBlockHeaders(blockHashes []*externalapi.DomainHash) ([]externalapi.BlockHeader, error)
}

// PeerStateSource fetches state and accumulator nodes from peers.
type PeerStateSource interface {
	FetchStateNodes(nodeHashes []*externalapi.DomainHash) ([][]byte, error)
	FetchAccumulatorNodes(nodeHashes []*externalapi.DomainHash) ([][]byte, error)
	SubmitTransaction(transaction []byte) error
}

// MerkleAccumulator is an append-only Merkle accumulator.
type MerkleAccumulator interface {
	Append(leaves []*externalapi.DomainHash) (root *externalapi.DomainHash, err error)
	GetLeaf(index uint64) (*externalapi.DomainHash, error)
	GetProof(index uint64) ([]*externalapi.DomainHash, error)
	RootHash() *externalapi.DomainHash
	NumLeaves() uint64
}
