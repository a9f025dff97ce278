package binaryserialization

import (
	"bytes"

	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
)

// SerializeHash serializes hash to a slice of bytes
func SerializeHash(hash *externalapi.DomainHash) []byte {
	return hash.ByteSlice()
}

// DeserializeHash a slice of bytes to a hash
func DeserializeHash(hashBytes []byte) (*externalapi.DomainHash, error) {
	return externalapi.NewDomainHashFromByteSlice(hashBytes)
}

// SerializeHashes serializes a list of hashes, prefixed with its length
func SerializeHashes(hashes []*externalapi.DomainHash) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, 8+len(hashes)*externalapi.DomainHashSize))
	// Writes to a bytes.Buffer never fail
	_ = writeHashes(buf, hashes)
	return buf.Bytes()
}

// DeserializeHashes deserializes a list of hashes written by SerializeHashes
func DeserializeHashes(hashesBytes []byte) ([]*externalapi.DomainHash, error) {
	reader := bytes.NewReader(hashesBytes)
	hashes, err := readHashes(reader)
	if err != nil {
		return nil, err
	}
	err = checkFullyRead(reader)
	if err != nil {
		return nil, err
	}
	return hashes, nil
}
