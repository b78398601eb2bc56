package indexer

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	solanaclient "github.com/hapi-protocol/hapi-core/client/core/solana"
	"github.com/hapi-protocol/hapi-core/pkg/interfaces/infrastructure/log"
	"github.com/hapi-protocol/hapi-core/pkg/types"
)

// solanaChain is the part of the program client the indexer reads; *solana.Client satisfies it
type solanaChain interface {
	Signatures(ctx context.Context, before, until string, limit int) ([]*rpc.TransactionSignature, error)
	Instructions(ctx context.Context, signature string) ([]solanaclient.DecodedInstruction, error)
	ReporterAt(ctx context.Context, key solana.PublicKey) (types.Reporter, error)
	CaseAt(ctx context.Context, key solana.PublicKey) (types.Case, error)
	AddressAt(ctx context.Context, key solana.PublicKey) (types.Address, error)
	AssetAt(ctx context.Context, key solana.PublicKey) (types.Asset, error)
}

// SolanaSource walks program signatures back to the cursor transaction
type SolanaSource struct {
	chain         solanaChain
	pageSize      int
	fetchingDelay time.Duration
	logger        log.Logger
}

func NewSolanaSource(chain solanaChain, pageSize int, fetchingDelay time.Duration, logger log.Logger) *SolanaSource {
	if pageSize <= 0 {
		pageSize = 1
	}
	return &SolanaSource{chain: chain, pageSize: pageSize, fetchingDelay: fetchingDelay, logger: logger}
}

// Fetch returns the signatures newer than the cursor, oldest first
func (s *SolanaSource) Fetch(ctx context.Context, cursor Cursor) ([]Job, Cursor, error) {
	var until string
	switch cursor.Kind {
	case CursorNone:
	case CursorTransaction:
		until = cursor.Transaction
	default:
		return nil, cursor, fmt.Errorf("solana network must have a transaction cursor, got %s", cursor)
	}

	var (
		jobs   []Job
		newest string
		before string
	)
	for {
		batch, err := s.chain.Signatures(ctx, before, until, s.pageSize)
		if err != nil {
			return nil, cursor, fmt.Errorf("get signatures: %w", err)
		}
		if len(batch) == 0 {
			break
		}
		if newest == "" {
			newest = batch[0].Signature.String()
		}
		before = batch[len(batch)-1].Signature.String()

		page := make([]Job, 0, len(batch))
		for i := len(batch) - 1; i >= 0; i-- {
			sig := batch[i]
			if sig.Err != nil {
				s.logger.Debugf("skipping failed tx %s", sig.Signature)
				continue
			}
			page = append(page, TransactionJob(sig.Signature.String()))
		}
		jobs = append(page, jobs...)

		if err := sleep(ctx, s.fetchingDelay); err != nil {
			return nil, cursor, err
		}
	}

	if newest == "" {
		return nil, cursor, nil
	}
	if len(jobs) > 0 {
		s.logger.Infof("found %d transactions up to %s", len(jobs), newest)
	}
	return jobs, TransactionCursor(newest), nil
}

// Process decodes the program instructions of a transaction
func (s *SolanaSource) Process(ctx context.Context, job Job) ([]PushPayload, error) {
	if job.Kind() != JobTransaction {
		return nil, fmt.Errorf("solana source cannot process %s", job)
	}
	instructions, err := s.chain.Instructions(ctx, job.Transaction)
	if err != nil {
		return nil, err
	}
	if len(instructions) == 0 {
		s.logger.Warnf("ignoring transaction %s", job.Transaction)
		return nil, nil
	}

	var out []PushPayload
	for _, in := range instructions {
		data, ok, err := s.entity(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("instruction %d of %s: %w", in.Index, in.TxHash, err)
		}
		if !ok {
			s.logger.Debugf("no entity for %s in %s", in.Name, in.TxHash)
			continue
		}
		var ts uint64
		if in.BlockTime > 0 {
			ts = uint64(in.BlockTime)
		}
		out = append(out, payload(in.Name, in.TxHash, uint64(in.Index), ts, data))
	}
	return out, nil
}

func (s *SolanaSource) entity(ctx context.Context, in solanaclient.DecodedInstruction) (PushData, bool, error) {
	kind := in.Name.Entity()
	index := solanaclient.EntityAccountIndex
	switch kind {
	case "":
		return PushData{}, false, nil
	case types.EntityReporter:
		index = solanaclient.ReporterAccountIndex
	case types.EntityCase:
		index = solanaclient.CaseAccountIndex
	}
	key, ok := in.Account(index)
	if !ok {
		return PushData{}, false, fmt.Errorf("account %d is absent", index)
	}

	switch kind {
	case types.EntityReporter:
		r, err := s.chain.ReporterAt(ctx, key)
		return PushData{Reporter: &r}, err == nil, err
	case types.EntityCase:
		c, err := s.chain.CaseAt(ctx, key)
		return PushData{Case: &c}, err == nil, err
	case types.EntityAddress:
		a, err := s.chain.AddressAt(ctx, key)
		return PushData{Address: &a}, err == nil, err
	default:
		a, err := s.chain.AssetAt(ctx, key)
		return PushData{Asset: &a}, err == nil, err
	}
}
