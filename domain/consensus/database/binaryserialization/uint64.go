package binaryserialization

// SerializeUint64 serializes a counter such as the stored header count
func SerializeUint64(value uint64) []byte {
	var valueBytes [8]byte
	byteOrder.PutUint64(valueBytes[:], value)
	return valueBytes[:]
}

// DeserializeUint64 deserializes a counter written by SerializeUint64
func DeserializeUint64(valueBytes []byte) uint64 {
	return byteOrder.Uint64(valueBytes)
}
