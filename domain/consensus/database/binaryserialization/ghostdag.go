package binaryserialization

import (
	"bytes"
	"io"
	"sort"

	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/flexidag/util/binaryserializer"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

func writeBlueWork(w io.Writer, blueWork *uint256.Int) error {
	if blueWork == nil {
		blueWork = new(uint256.Int)
	}
	blueWorkBytes := blueWork.Bytes32()
	_, err := w.Write(blueWorkBytes[:])
	return errors.WithStack(err)
}

func readBlueWork(r io.Reader) (*uint256.Int, error) {
	var blueWorkBytes [32]byte
	_, err := io.ReadFull(r, blueWorkBytes[:])
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return new(uint256.Int).SetBytes32(blueWorkBytes[:]), nil
}

// SerializeBlockGHOSTDAGData serializes the full GHOSTDAG data of a block.
// Blue anticone sizes are written sorted by hash so that equal data always
// serializes to equal bytes.
func SerializeBlockGHOSTDAGData(data *externalapi.BlockGHOSTDAGData) []byte {
	buf := &bytes.Buffer{}
	_ = binaryserializer.PutUint64(buf, data.BlueScore())
	_ = writeBlueWork(buf, data.BlueWork())
	_ = writeHash(buf, data.SelectedParent())
	_ = writeHashes(buf, data.MergeSetBlues())
	_ = writeHashes(buf, data.MergeSetReds())

	anticoneSizes := data.BluesAnticoneSizes()
	hashes := make([]externalapi.DomainHash, 0, len(anticoneSizes))
	for hash := range anticoneSizes {
		hashes = append(hashes, hash)
	}
	sort.Slice(hashes, func(i, j int) bool {
		return hashes[i].Less(&hashes[j])
	})
	_ = binaryserializer.PutUint64(buf, uint64(len(hashes)))
	for i := range hashes {
		_ = writeHash(buf, &hashes[i])
		_ = binaryserializer.PutUint16(buf, uint16(anticoneSizes[hashes[i]]))
	}
	return buf.Bytes()
}

// DeserializeBlockGHOSTDAGData deserializes bytes written by SerializeBlockGHOSTDAGData
func DeserializeBlockGHOSTDAGData(dataBytes []byte) (*externalapi.BlockGHOSTDAGData, error) {
	reader := bytes.NewReader(dataBytes)
	blueScore, err := binaryserializer.Uint64(reader)
	if err != nil {
		return nil, err
	}
	blueWork, err := readBlueWork(reader)
	if err != nil {
		return nil, err
	}
	selectedParent, err := readHash(reader)
	if err != nil {
		return nil, err
	}
	mergeSetBlues, err := readHashes(reader)
	if err != nil {
		return nil, err
	}
	mergeSetReds, err := readHashes(reader)
	if err != nil {
		return nil, err
	}
	length, err := binaryserializer.Uint64(reader)
	if err != nil {
		return nil, err
	}
	if length > maxHashesLength {
		return nil, errors.Errorf("anticone sizes length %d exceeds the maximum of %d", length, maxHashesLength)
	}
	bluesAnticoneSizes := make(map[externalapi.DomainHash]externalapi.KType, length)
	for i := uint64(0); i < length; i++ {
		hash, err := readHash(reader)
		if err != nil {
			return nil, err
		}
		size, err := binaryserializer.Uint16(reader)
		if err != nil {
			return nil, err
		}
		bluesAnticoneSizes[*hash] = externalapi.KType(size)
	}
	err = checkFullyRead(reader)
	if err != nil {
		return nil, err
	}
	return externalapi.NewBlockGHOSTDAGData(blueScore, blueWork, selectedParent,
		mergeSetBlues, mergeSetReds, bluesAnticoneSizes), nil
}

const compactGHOSTDAGDataSize = 8 + 32 + 32

// SerializeCompactGHOSTDAGData serializes the compact projection of GHOSTDAG data
func SerializeCompactGHOSTDAGData(data *externalapi.CompactGHOSTDAGData) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, compactGHOSTDAGDataSize))
	_ = binaryserializer.PutUint64(buf, data.BlueScore)
	_ = writeBlueWork(buf, data.BlueWork)
	_ = writeHash(buf, data.SelectedParent)
	return buf.Bytes()
}

// DeserializeCompactGHOSTDAGData deserializes bytes written by SerializeCompactGHOSTDAGData
func DeserializeCompactGHOSTDAGData(dataBytes []byte) (*externalapi.CompactGHOSTDAGData, error) {
	if len(dataBytes) != compactGHOSTDAGDataSize {
		return nil, errors.Errorf("invalid compact GHOSTDAG data size. Want: %d, got: %d",
			compactGHOSTDAGDataSize, len(dataBytes))
	}
	reader := bytes.NewReader(dataBytes)
	blueScore, err := binaryserializer.Uint64(reader)
	if err != nil {
		return nil, err
	}
	blueWork, err := readBlueWork(reader)
	if err != nil {
		return nil, err
	}
	selectedParent, err := readHash(reader)
	if err != nil {
		return nil, err
	}
	return &externalapi.CompactGHOSTDAGData{
		BlueScore:      blueScore,
		BlueWork:       blueWork,
		SelectedParent: selectedParent,
	}, nil
}
