package nodetype

import (
	"bytes"
	"io"

	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/flexidag/util/binaryserializer"
	"github.com/pkg/errors"
)

// maxFieldLength bounds the length prefix of a serialized key or blob
const maxFieldLength = 1 << 26

// LeafNode holds a raw key and the blob stored under it
type LeafNode struct {
	RawKey   []byte
	BlobHash *externalapi.DomainHash
	Blob     []byte
}

// NewLeafNode returns a leaf storing blob under rawKey
func NewLeafNode(rawKey, blob []byte) *LeafNode {
	return &LeafNode{
		RawKey:   rawKey,
		BlobHash: HashBlob(blob),
		Blob:     blob,
	}
}

func (n *LeafNode) isNode() {}

// KeyHash returns the position of the leaf in the tree
func (n *LeafNode) KeyHash() *externalapi.DomainHash {
	return HashRawKey(n.RawKey)
}

// Hash returns the hash of the node
func (n *LeafNode) Hash() *externalapi.DomainHash {
	return hashLeaf(n.KeyHash(), n.BlobHash)
}

// Equal returns whether n and other hold the same key and blob
func (n *LeafNode) Equal(other *LeafNode) bool {
	return bytes.Equal(n.RawKey, other.RawKey) &&
		n.BlobHash.Equal(other.BlobHash) &&
		bytes.Equal(n.Blob, other.Blob)
}

func (n *LeafNode) serialize(w io.Writer) error {
	err := writeField(w, n.RawKey)
	if err != nil {
		return err
	}
	_, err = w.Write(n.BlobHash.ByteSlice())
	if err != nil {
		return errors.WithStack(err)
	}
	return writeField(w, n.Blob)
}

func deserializeLeafNode(data []byte) (*LeafNode, error) {
	r := bytes.NewReader(data)
	rawKey, err := readField(r)
	if err != nil {
		return nil, errors.Wrap(err, "raw key")
	}
	var hashBytes [externalapi.DomainHashSize]byte
	_, err = io.ReadFull(r, hashBytes[:])
	if err != nil {
		return nil, errors.Wrap(ErrNotEnoughBytes, "blob hash")
	}
	blob, err := readField(r)
	if err != nil {
		return nil, errors.Wrap(err, "blob")
	}
	if r.Len() != 0 {
		return nil, errors.Errorf("%d trailing bytes after leaf node", r.Len())
	}
	return &LeafNode{
		RawKey:   rawKey,
		BlobHash: externalapi.NewDomainHashFromByteArray(&hashBytes),
		Blob:     blob,
	}, nil
}

func writeField(w io.Writer, field []byte) error {
	err := binaryserializer.PutUint64(w, uint64(len(field)))
	if err != nil {
		return err
	}
	_, err = w.Write(field)
	return errors.WithStack(err)
}

func readField(r *bytes.Reader) ([]byte, error) {
	length, err := binaryserializer.Uint64(r)
	if err != nil {
		return nil, errors.Wrap(ErrNotEnoughBytes, "length prefix")
	}
	if length > maxFieldLength || length > uint64(r.Len()) {
		return nil, errors.Wrapf(ErrNotEnoughBytes, "length %d, remaining %d", length, r.Len())
	}
	field := make([]byte, length)
	_, err = io.ReadFull(r, field)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return field, nil
}
