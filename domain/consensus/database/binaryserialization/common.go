package binaryserialization

import (
	"encoding/binary"
	"io"

	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/flexidag/util/binaryserializer"
	"github.com/pkg/errors"
)

// byteOrder is the byte order used for every fixed width integer
var byteOrder = binary.LittleEndian

// maxHashesLength bounds the length prefix of a serialized hash list so a
// corrupted value can't trigger a huge allocation.
const maxHashesLength = 1 << 20

func writeHash(w io.Writer, hash *externalapi.DomainHash) error {
	if hash == nil {
		hash = externalapi.ZeroHash
	}
	_, err := w.Write(hash.ByteSlice())
	return errors.WithStack(err)
}

func readHash(r io.Reader) (*externalapi.DomainHash, error) {
	var hashBytes [externalapi.DomainHashSize]byte
	_, err := io.ReadFull(r, hashBytes[:])
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return externalapi.NewDomainHashFromByteArray(&hashBytes), nil
}

func writeHashes(w io.Writer, hashes []*externalapi.DomainHash) error {
	err := binaryserializer.PutUint64(w, uint64(len(hashes)))
	if err != nil {
		return err
	}
	for _, hash := range hashes {
		err = writeHash(w, hash)
		if err != nil {
			return err
		}
	}
	return nil
}

func readHashes(r io.Reader) ([]*externalapi.DomainHash, error) {
	length, err := binaryserializer.Uint64(r)
	if err != nil {
		return nil, err
	}
	if length > maxHashesLength {
		return nil, errors.Errorf("hash list length %d exceeds the maximum of %d", length, maxHashesLength)
	}
	hashes := make([]*externalapi.DomainHash, length)
	for i := range hashes {
		hashes[i], err = readHash(r)
		if err != nil {
			return nil, err
		}
	}
	return hashes, nil
}

func checkFullyRead(r interface{ Len() int }) error {
	if r.Len() != 0 {
		return errors.Errorf("%d unexpected trailing bytes", r.Len())
	}
	return nil
}
