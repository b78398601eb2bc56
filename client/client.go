// Package client selects the HAPI Core chain client for a network.
package client

import (
	"github.com/hapi-protocol/hapi-core/client/core/evm"
	"github.com/hapi-protocol/hapi-core/client/core/near"
	"github.com/hapi-protocol/hapi-core/client/core/solana"
	"github.com/hapi-protocol/hapi-core/pkg/interfaces/hapicore"
	"github.com/hapi-protocol/hapi-core/pkg/types"
)

// New returns the HapiCore implementation serving opts.Network
func New(opts hapicore.Options) (hapicore.HapiCore, error) {
	var (
		c   hapicore.HapiCore
		err error
	)
	switch opts.Network.Backend() {
	case types.BackendEVM:
		c, err = evm.NewClient(opts)
	case types.BackendSolana:
		c, err = solana.NewClient(opts)
	case types.BackendNear:
		c, err = near.NewClient(opts)
	default:
		return nil, types.NewError(types.KindUnsupported, "network %q has no client", opts.Network)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// NewToken returns the token contract client for opts.Network;
// opts.ContractAddress is the token address
func NewToken(opts hapicore.Options) (hapicore.TokenContract, error) {
	var (
		t   hapicore.TokenContract
		err error
	)
	switch opts.Network.Backend() {
	case types.BackendEVM:
		t, err = evm.NewToken(opts)
	case types.BackendSolana:
		t, err = solana.NewToken(opts)
	case types.BackendNear:
		t, err = near.NewToken(opts)
	default:
		return nil, types.NewError(types.KindUnsupported, "network %q has no token client", opts.Network)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}
