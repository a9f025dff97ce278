// Copyright (c) 2024 Hoosat Oy
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dagconfig

import (
	"testing"

	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
)

func TestParamsValidate(t *testing.T) {
	for _, params := range []*Params{&MainnetParams, &DevnetParams, &SimnetParams} {
		err := params.Validate()
		if err != nil {
			t.Fatalf("%s: %v", params.Name, err)
		}
	}

	tests := []struct {
		name   string
		mutate func(params *Params)
	}{
		{name: "zero k", mutate: func(params *Params) { params.K = 0 }},
		{name: "zero reindex depth", mutate: func(params *Params) { params.ReindexDepth = 0 }},
		{name: "zero reindex slack", mutate: func(params *Params) { params.ReindexSlack = 0 }},
		{name: "zero origin", mutate: func(params *Params) { params.Origin = externalapi.ZeroHash }},
		{name: "missing genesis difficulty", mutate: func(params *Params) { params.GenesisDifficulty = nil }},
	}
	for _, test := range tests {
		params := MainnetParams
		test.mutate(&params)
		if params.Validate() == nil {
			t.Fatalf("%s: expected an error", test.name)
		}
	}
}

func TestGenesisHeader(t *testing.T) {
	genesis := MainnetParams.GenesisHeader()
	if !genesis.IsGenesis() {
		t.Fatalf("expected the genesis header to be a genesis")
	}
	if !genesis.ParentHash().Equal(MainnetParams.Origin) {
		t.Fatalf("expected the genesis parent to be the origin, got %s", genesis.ParentHash())
	}
	if !externalapi.HashesEqual(genesis.ParentsHash(), []*externalapi.DomainHash{MainnetParams.Origin}) {
		t.Fatalf("unexpected genesis parents %v", genesis.ParentsHash())
	}
	if !genesis.BlockHash().Equal(MainnetParams.GenesisHeader().BlockHash()) {
		t.Fatalf("the genesis hash is not stable")
	}
	if genesis.BlockHash().Equal(SimnetParams.GenesisHeader().BlockHash()) {
		t.Fatalf("mainnet and simnet share a genesis")
	}
}

func TestParamsByName(t *testing.T) {
	params, err := ParamsByName(DevnetParams.Name)
	if err != nil {
		t.Fatalf("ParamsByName: %v", err)
	}
	if params != &DevnetParams {
		t.Fatalf("expected the devnet parameters")
	}
	_, err = ParamsByName("no-such-net")
	if err == nil {
		t.Fatalf("expected an error for an unknown network")
	}

	withK := MainnetParams.WithK(3)
	if withK.K != 3 || MainnetParams.K != DefaultGHOSTDAGK {
		t.Fatalf("WithK must not modify the original parameters")
	}
}
