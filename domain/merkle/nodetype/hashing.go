package nodetype

import (
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"lukechampine.com/blake3"
)

var (
	internalNodeDomain = []byte("SparseMerkleInternalNode")
	leafNodeDomain     = []byte("SparseMerkleLeafNode")
	blobDomain         = []byte("Blob")
	rawKeyDomain       = []byte("RawKey")
)

// PlaceholderHash is the hash of an empty subtree
var PlaceholderHash = hashParts([]byte("SPARSE_MERKLE_PLACEHOLDER_HASH"))

// hashParts returns the blake3 digest of the concatenation of parts
func hashParts(parts ...[]byte) *externalapi.DomainHash {
	hasher := blake3.New(externalapi.DomainHashSize, nil)
	for _, part := range parts {
		// A hasher never fails on write
		_, _ = hasher.Write(part)
	}
	var hashBytes [externalapi.DomainHashSize]byte
	copy(hashBytes[:], hasher.Sum(nil))
	return externalapi.NewDomainHashFromByteArray(&hashBytes)
}

func hashInternal(left, right *externalapi.DomainHash) *externalapi.DomainHash {
	return hashParts(internalNodeDomain, left.ByteSlice(), right.ByteSlice())
}

func hashLeaf(keyHash, blobHash *externalapi.DomainHash) *externalapi.DomainHash {
	return hashParts(leafNodeDomain, keyHash.ByteSlice(), blobHash.ByteSlice())
}

// HashBlob returns the hash of a blob stored in a leaf
func HashBlob(blob []byte) *externalapi.DomainHash {
	return hashParts(blobDomain, blob)
}

// HashRawKey returns the hash a raw key is placed in the tree by
func HashRawKey(rawKey []byte) *externalapi.DomainHash {
	return hashParts(rawKeyDomain, rawKey)
}
