// Copyright (c) 2024 Hoosat Oy
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dagconfig

import (
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/utils/blockheader"
	"lukechampine.com/blake3"
)

// originHash is the hash of the virtual origin. No header hashes to it.
var originHash = externalapi.NewDomainHashFromByteArray(func() *[externalapi.DomainHashSize]byte {
	hash := blake3.Sum256([]byte("flexidag-origin"))
	return &hash
}())

// GenesisHeader returns the genesis header of p. The genesis is the only
// block whose parent is the origin.
func (p *Params) GenesisHeader() externalapi.BlockHeader {
	return blockheader.NewBlockHeader(
		p.Origin,
		[]*externalapi.DomainHash{p.Origin},
		0,
		p.GenesisTimestamp,
		p.GenesisDifficulty,
		0,
		nil,
	)
}
