package binaryserialization

import (
	"bytes"

	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/utils/blockheader"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/utils/consensushashing"
	"github.com/Hoosat-Oy/flexidag/util/binaryserializer"
	"github.com/pkg/errors"
)

// SerializeHeader serializes a block header. The hash isn't stored, it is
// recomputed on deserialization.
func SerializeHeader(header externalapi.BlockHeader) []byte {
	buf := &bytes.Buffer{}
	_ = consensushashing.SerializeHeaderFields(buf, header)
	return buf.Bytes()
}

// DeserializeHeader deserializes bytes written by SerializeHeader
func DeserializeHeader(headerBytes []byte) (externalapi.BlockHeader, error) {
	reader := bytes.NewReader(headerBytes)
	parentHash, err := readHash(reader)
	if err != nil {
		return nil, err
	}
	parentsHash, err := readHashes(reader)
	if err != nil {
		return nil, err
	}
	number, err := binaryserializer.Uint64(reader)
	if err != nil {
		return nil, err
	}
	timestamp, err := binaryserializer.Uint64(reader)
	if err != nil {
		return nil, err
	}
	difficulty, err := readBlueWork(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read the header difficulty")
	}
	nonce, err := binaryserializer.Uint64(reader)
	if err != nil {
		return nil, err
	}
	pruningPoint, err := readHash(reader)
	if err != nil {
		return nil, err
	}
	err = checkFullyRead(reader)
	if err != nil {
		return nil, err
	}
	return blockheader.NewBlockHeader(parentHash, parentsHash, number, timestamp, difficulty, nonce, pruningPoint), nil
}
