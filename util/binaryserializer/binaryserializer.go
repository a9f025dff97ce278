// Package binaryserializer reads and writes the fixed-width little-endian
// integers used by the consensus store encodings.
package binaryserializer

import (
	"encoding/binary"
	"io"
	"sync"
	"unsafe"

	"github.com/pkg/errors"
)

// Unsigned lists the integer widths the store encodings use.
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// scratch holds 8-byte buffers. Handing a stack array to an io.Reader or
// io.Writer makes it escape, so reads and writes share pooled buffers.
var scratch = sync.Pool{
	New: func() any { return new([8]byte) },
}

func width[T Unsigned]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// Read reads a little-endian T from r.
func Read[T Unsigned](r io.Reader) (T, error) {
	buf := scratch.Get().(*[8]byte)
	defer scratch.Put(buf)

	*buf = [8]byte{}
	_, err := io.ReadFull(r, buf[:width[T]()])
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return T(binary.LittleEndian.Uint64(buf[:])), nil
}

// Write writes value to w as a little-endian T.
func Write[T Unsigned](w io.Writer, value T) error {
	buf := scratch.Get().(*[8]byte)
	defer scratch.Put(buf)

	binary.LittleEndian.PutUint64(buf[:], uint64(value))
	_, err := w.Write(buf[:width[T]()])
	return errors.WithStack(err)
}

// Uint16 reads a little-endian uint16 from r.
func Uint16(r io.Reader) (uint16, error) {
	return Read[uint16](r)
}

// Uint64 reads a little-endian uint64 from r.
func Uint64(r io.Reader) (uint64, error) {
	return Read[uint64](r)
}

// PutUint16 writes value to w as a little-endian uint16.
func PutUint16(w io.Writer, value uint16) error {
	return Write(w, value)
}

// PutUint64 writes value to w as a little-endian uint64.
func PutUint64(w io.Writer, value uint64) error {
	return Write(w, value)
}
