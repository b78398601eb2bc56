package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hapi-protocol/hapi-core/client/core/near"
	"github.com/hapi-protocol/hapi-core/pkg/interfaces/infrastructure/log"
	"github.com/hapi-protocol/hapi-core/pkg/types"
)

// nearPageSize is the number of blocks scanned per fetch
const nearPageSize = 600

// activation goes through ft_transfer_call on the stake token
const nearActivationMethod = "ft_on_transfer"

// nearChain is the part of the NEAR client the indexer reads; *near.Client satisfies it
type nearChain interface {
	registry
	Block(ctx context.Context, height uint64) (near.BlockHeader, error)
	Changes(ctx context.Context, height uint64) ([]near.StateChange, error)
	Receipt(ctx context.Context, id string) (near.ReceiptCall, error)
	GetReporterByAccount(ctx context.Context, accountID string) (types.Reporter, error)
}

// NearSource scans blocks for contract data changes
type NearSource struct {
	chain         nearChain
	fetchingDelay time.Duration
	logger        log.Logger
}

func NewNearSource(chain nearChain, fetchingDelay time.Duration, logger log.Logger) *NearSource {
	return &NearSource{chain: chain, fetchingDelay: fetchingDelay, logger: logger}
}

// Fetch scans up to nearPageSize blocks after the cursor. Two failed blocks
// in a row mean the head was reached; the cursor steps back before them.
func (s *NearSource) Fetch(ctx context.Context, cursor Cursor) ([]Job, Cursor, error) {
	var start uint64
	switch cursor.Kind {
	case CursorNone:
	case CursorBlock:
		start = cursor.Block
	default:
		return nil, cursor, fmt.Errorf("near network must have a block cursor, got %s", cursor)
	}

	var (
		jobs   []Job
		height = start
		missed bool
	)
	s.logger.Debugf("fetching near jobs from block %d", start)
	for height-start < nearPageSize {
		began := time.Now()
		height++

		changes, err := s.chain.Changes(ctx, height)
		if err != nil {
			if ctx.Err() != nil {
				return nil, cursor, ctx.Err()
			}
			if !errors.Is(err, near.ErrUnknownBlock) {
				s.logger.Errorf("failed to fetch changes for block %d: %v", height, err)
			}
			if missed {
				if height >= 2 {
					height -= 2
				} else {
					height = 0
				}
				break
			}
			missed = true
			continue
		}
		missed = false

		if len(changes) > 0 {
			header, err := s.chain.Block(ctx, height)
			if err != nil {
				return nil, cursor, fmt.Errorf("get block %d: %w", height, err)
			}
			seen := make(map[string]bool, len(changes))
			for _, change := range changes {
				hash, ok := change.Hash()
				if !ok || seen[hash] {
					continue
				}
				seen[hash] = true
				jobs = append(jobs, ReceiptJob(NearReceipt{
					Hash:        hash,
					BlockHeight: height,
					Timestamp:   header.Timestamp(),
				}))
			}
		}

		if rest := s.fetchingDelay - time.Since(began); rest > 0 {
			if err := sleep(ctx, rest); err != nil {
				return nil, cursor, err
			}
		}
	}
	s.logger.Debugf("fetched until block %d", height)
	return jobs, BlockCursor(height), nil
}

type nearArgs map[string]json.RawMessage

func (a nearArgs) str(field string) (string, error) {
	raw, ok := a[field]
	if !ok {
		return "", types.NewError(types.KindInvalidData, "argument %q is absent", field)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", types.WrapError(types.KindInvalidData, err, "argument %q", field)
	}
	return s, nil
}

func (a nearArgs) id() (types.UUID, error) {
	s, err := a.str("id")
	if err != nil {
		return types.NilUUID, err
	}
	return types.UUIDFromDecimal(s)
}

// Process resolves the receipt method call into the entity it changed
func (s *NearSource) Process(ctx context.Context, job Job) ([]PushPayload, error) {
	if job.Receipt == nil {
		return nil, fmt.Errorf("near source cannot process %s", job)
	}
	r := *job.Receipt
	call, err := s.chain.Receipt(ctx, r.Hash)
	if err != nil {
		return nil, err
	}
	var args nearArgs
	if err := json.Unmarshal(call.Args, &args); err != nil {
		return nil, types.WrapError(types.KindInvalidData, err, "receipt %s args", r.Hash)
	}

	var name types.EventName
	if call.MethodName == nearActivationMethod {
		name = types.EventActivateReporter
	} else if name, err = types.ParseEventName(call.MethodName); err != nil {
		s.logger.Warnf("ignoring method %s in receipt %s", call.MethodName, r.Hash)
		return nil, nil
	}

	var data PushData
	switch {
	case name == types.EventActivateReporter:
		account, err := args.str("sender_id")
		if err != nil {
			return nil, err
		}
		rep, err := s.chain.GetReporterByAccount(ctx, account)
		if err != nil {
			return nil, err
		}
		data.Reporter = &rep
	case name.Entity() == types.EntityReporter:
		id, err := args.id()
		if err != nil {
			return nil, err
		}
		rep, err := s.chain.GetReporter(ctx, id)
		if err != nil {
			return nil, err
		}
		data.Reporter = &rep
	case name.Entity() == types.EntityCase:
		id, err := args.id()
		if err != nil {
			return nil, err
		}
		c, err := s.chain.GetCase(ctx, id)
		if err != nil {
			return nil, err
		}
		data.Case = &c
	case name.Entity() == types.EntityAddress:
		addr, err := args.str("address")
		if err != nil {
			return nil, err
		}
		a, err := s.chain.GetAddress(ctx, addr)
		if err != nil {
			return nil, err
		}
		data.Address = &a
	case name.Entity() == types.EntityAsset:
		addr, err := args.str("address")
		if err != nil {
			return nil, err
		}
		assetID, err := args.str("id")
		if err != nil {
			return nil, err
		}
		a, err := s.chain.GetAsset(ctx, addr, assetID)
		if err != nil {
			return nil, err
		}
		data.Asset = &a
	default:
		s.logger.Debugf("no entity for %s in receipt %s", name, r.Hash)
		return nil, nil
	}

	s.logger.Infof("processed %s receipt=%s block=%d", name, r.Hash, r.BlockHeight)
	return []PushPayload{payload(name, r.Hash, 0, r.Timestamp, data)}, nil
}
