package random

import (
	"crypto/rand"

	"github.com/Hoosat-Oy/flexidag/util/binaryserializer"
)

// Uint64 returns a cryptographically random uint64 value.
func Uint64() (uint64, error) {
	return binaryserializer.Uint64(rand.Reader)
}
