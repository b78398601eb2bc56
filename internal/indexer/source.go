package indexer

import (
	"context"
	"time"

	"github.com/hapi-protocol/hapi-core/client/core/evm"
	"github.com/hapi-protocol/hapi-core/client/core/near"
	solanaclient "github.com/hapi-protocol/hapi-core/client/core/solana"
	"github.com/hapi-protocol/hapi-core/pkg/interfaces/hapicore"
	"github.com/hapi-protocol/hapi-core/pkg/interfaces/infrastructure/log"
	"github.com/hapi-protocol/hapi-core/pkg/types"
)

// Source reads contract activity of one chain family
type Source interface {
	// Fetch lists the jobs found after cursor and the cursor to resume from
	Fetch(ctx context.Context, cursor Cursor) ([]Job, Cursor, error)
	// Process resolves a job into the entity snapshots to push; network
	// data is filled in by the indexer
	Process(ctx context.Context, job Job) ([]PushPayload, error)
}

// registry reads entities from the contract
type registry interface {
	GetReporter(ctx context.Context, id types.UUID) (types.Reporter, error)
	GetCase(ctx context.Context, id types.UUID) (types.Case, error)
	GetAddress(ctx context.Context, address string) (types.Address, error)
	GetAsset(ctx context.Context, address, assetID string) (types.Asset, error)
}

// sleep waits for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func payload(name types.EventName, txHash string, txIndex, timestamp uint64, data PushData) PushPayload {
	return PushPayload{
		Event: PushEvent{Name: name, TxHash: txHash, TxIndex: txIndex, Timestamp: timestamp},
		Data:  data,
	}
}

// NewSource connects to the chain family serving opts.Network
func NewSource(opts hapicore.Options, pageSize uint64, fetchingDelay time.Duration, logger log.Logger) (Source, error) {
	switch opts.Network.Backend() {
	case types.BackendEVM:
		c, err := evm.NewClient(opts)
		if err != nil {
			return nil, err
		}
		return NewEVMSource(c.Backend(), c, c.ContractAddress(), pageSize, fetchingDelay, logger)
	case types.BackendSolana:
		c, err := solanaclient.NewClient(opts)
		if err != nil {
			return nil, err
		}
		return NewSolanaSource(c, int(pageSize), fetchingDelay, logger), nil
	case types.BackendNear:
		c, err := near.NewClient(opts)
		if err != nil {
			return nil, err
		}
		return NewNearSource(c, fetchingDelay, logger), nil
	default:
		return nil, types.NewError(types.KindInvalidData, "unsupported network %q", opts.Network)
	}
}
