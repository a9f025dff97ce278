package consensushashing

import (
	"io"

	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/flexidag/util/binaryserializer"
	"github.com/pkg/errors"
	"lukechampine.com/blake3"
)

// HeaderHash returns the given header's hash: a blake3 digest of its
// serialized fields. The header's own BlockHash is not consulted.
func HeaderHash(header externalapi.BlockHeader) *externalapi.DomainHash {
	hasher := blake3.New(externalapi.DomainHashSize, nil)
	err := SerializeHeaderFields(hasher, header)
	if err != nil {
		// A hasher never fails on write
		panic(errors.Wrap(err, "this should never happen. Hash digest should never return an error"))
	}

	var hashBytes [externalapi.DomainHashSize]byte
	copy(hashBytes[:], hasher.Sum(nil))
	return externalapi.NewDomainHashFromByteArray(&hashBytes)
}

// SerializeHeaderFields writes the hashed fields of header to w.
func SerializeHeaderFields(w io.Writer, header externalapi.BlockHeader) error {
	err := writeHash(w, header.ParentHash())
	if err != nil {
		return err
	}
	parents := header.ParentsHash()
	err = binaryserializer.PutUint64(w, uint64(len(parents)))
	if err != nil {
		return err
	}
	for _, parent := range parents {
		err = writeHash(w, parent)
		if err != nil {
			return err
		}
	}
	err = binaryserializer.PutUint64(w, header.Number())
	if err != nil {
		return err
	}
	err = binaryserializer.PutUint64(w, header.Timestamp())
	if err != nil {
		return err
	}
	difficulty := header.Difficulty().Bytes32()
	_, err = w.Write(difficulty[:])
	if err != nil {
		return errors.WithStack(err)
	}
	err = binaryserializer.PutUint64(w, header.Nonce())
	if err != nil {
		return err
	}
	return writeHash(w, header.PruningPoint())
}

func writeHash(w io.Writer, hash *externalapi.DomainHash) error {
	if hash == nil {
		hash = externalapi.ZeroHash
	}
	_, err := w.Write(hash.ByteSlice())
	return errors.WithStack(err)
}
