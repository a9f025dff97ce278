// Copyright (c) 2024 Hoosat Oy
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dagconfig

import (
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/processes/reachabilitymanager"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

const (
	// DefaultGHOSTDAGK is the default K parameter of the GHOSTDAG protocol
	DefaultGHOSTDAGK externalapi.KType = 8

	defaultCacheSize = 10_000
)

// Params defines a DAG by its parameters. A BlockDAG is built from a Params
// and uses nothing else for configuration.
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// K defines the K parameter for GHOSTDAG consensus algorithm.
	// See ghostdag.go for further details.
	K externalapi.KType

	// ReindexDepth is the depth below the virtual selected parent at which
	// the reachability reindex root is kept.
	ReindexDepth uint64

	// ReindexSlack is the interval capacity a reindex leaves free on each
	// side of the reindexed subtree.
	ReindexSlack uint64

	// GHOSTDAGDataCacheSize, ReachabilityDataCacheSize, BlockRelationCacheSize
	// and BlockHeaderCacheSize bound the in-memory caches of the stores.
	GHOSTDAGDataCacheSize     int
	ReachabilityDataCacheSize int
	BlockRelationCacheSize    int
	BlockHeaderCacheSize      int

	// PreallocateCaches makes the stores allocate their caches up front.
	PreallocateCaches bool

	// GenesisTimestamp and GenesisDifficulty define the genesis header.
	// Its parent is the virtual origin.
	GenesisTimestamp  uint64
	GenesisDifficulty *uint256.Int

	// Origin is the virtual block every block descends from. It's the
	// parent of the genesis block and has no header of its own.
	Origin *externalapi.DomainHash
}

// Validate returns an error if p cannot describe a DAG
func (p *Params) Validate() error {
	if p.K == 0 {
		return errors.Errorf("%s: K must be positive", p.Name)
	}
	if p.ReindexDepth == 0 {
		return errors.Errorf("%s: the reindex depth must be positive", p.Name)
	}
	if p.ReindexSlack == 0 {
		return errors.Errorf("%s: the reindex slack must be positive", p.Name)
	}
	if p.Origin == nil || p.Origin.IsZero() {
		return errors.Errorf("%s: the origin must be a non-zero hash", p.Name)
	}
	if p.GenesisDifficulty == nil {
		return errors.Errorf("%s: missing genesis difficulty", p.Name)
	}
	return nil
}

// WithK returns a copy of p using k as its GHOSTDAG K
func (p *Params) WithK(k externalapi.KType) *Params {
	params := *p
	params.K = k
	return &params
}

// MainnetParams defines the parameters of the main network.
var MainnetParams = Params{
	Name:                      "flexidag-mainnet",
	K:                         DefaultGHOSTDAGK,
	ReindexDepth:              reachabilitymanager.DefaultReindexDepth,
	ReindexSlack:              reachabilitymanager.DefaultReindexSlack,
	GHOSTDAGDataCacheSize:     defaultCacheSize,
	ReachabilityDataCacheSize: defaultCacheSize,
	BlockRelationCacheSize:    defaultCacheSize,
	BlockHeaderCacheSize:      defaultCacheSize,
	PreallocateCaches:         true,
	GenesisTimestamp:          1_700_000_000_000,
	GenesisDifficulty:         uint256.NewInt(1),
	Origin:                    originHash,
}

// DevnetParams defines the parameters of the development network. It
// keeps small caches and reindexes often, which exercises the reachability
// reindexing paths on short DAGs.
var DevnetParams = Params{
	Name:                      "flexidag-devnet",
	K:                         DefaultGHOSTDAGK,
	ReindexDepth:              16,
	ReindexSlack:              64,
	GHOSTDAGDataCacheSize:     1_000,
	ReachabilityDataCacheSize: 1_000,
	BlockRelationCacheSize:    1_000,
	BlockHeaderCacheSize:      1_000,
	GenesisTimestamp:          1_700_000_000_000,
	GenesisDifficulty:         uint256.NewInt(1),
	Origin:                    originHash,
}

// SimnetParams defines the parameters of the simulation network, used by
// tests. Its genesis has zero difficulty.
var SimnetParams = Params{
	Name:                      "flexidag-simnet",
	K:                         DefaultGHOSTDAGK,
	ReindexDepth:              reachabilitymanager.DefaultReindexDepth,
	ReindexSlack:              reachabilitymanager.DefaultReindexSlack,
	GHOSTDAGDataCacheSize:     1_000,
	ReachabilityDataCacheSize: 1_000,
	BlockRelationCacheSize:    1_000,
	BlockHeaderCacheSize:      1_000,
	GenesisTimestamp:          0,
	GenesisDifficulty:         new(uint256.Int),
	Origin:                    originHash,
}

// ParamsByName returns the parameters of the network called name
func ParamsByName(name string) (*Params, error) {
	for _, params := range []*Params{&MainnetParams, &DevnetParams, &SimnetParams} {
		if params.Name == name {
			log.Debugf("Using the %s parameters", name)
			return params, nil
		}
	}
	return nil, errors.Errorf("unknown network %s", name)
}
