package binaryserialization

import (
	"bytes"

	"github.com/Hoosat-Oy/flexidag/domain/consensus/model"
	"github.com/Hoosat-Oy/flexidag/util/binaryserializer"
	"github.com/pkg/errors"
)

const reachabilityDataSize = 32 + 8 + 8 + 8

// SerializeReachabilityData serializes the tree record of a block: its
// parent, interval and height.
func SerializeReachabilityData(reachabilityData *model.ReachabilityData) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, reachabilityDataSize))
	_ = writeHash(buf, reachabilityData.Parent)
	_ = binaryserializer.PutUint64(buf, reachabilityData.Interval.Start)
	_ = binaryserializer.PutUint64(buf, reachabilityData.Interval.End)
	_ = binaryserializer.PutUint64(buf, reachabilityData.Height)
	return buf.Bytes()
}

// DeserializeReachabilityData deserializes bytes written by SerializeReachabilityData
func DeserializeReachabilityData(reachabilityDataBytes []byte) (*model.ReachabilityData, error) {
	if len(reachabilityDataBytes) != reachabilityDataSize {
		return nil, errors.Errorf("invalid reachability data size. Want: %d, got: %d",
			reachabilityDataSize, len(reachabilityDataBytes))
	}
	reader := bytes.NewReader(reachabilityDataBytes)
	parent, err := readHash(reader)
	if err != nil {
		return nil, err
	}
	start, err := binaryserializer.Uint64(reader)
	if err != nil {
		return nil, err
	}
	end, err := binaryserializer.Uint64(reader)
	if err != nil {
		return nil, err
	}
	height, err := binaryserializer.Uint64(reader)
	if err != nil {
		return nil, err
	}
	return &model.ReachabilityData{
		Parent:   parent,
		Interval: model.ReachabilityInterval{Start: start, End: end},
		Height:   height,
	}, nil
}
