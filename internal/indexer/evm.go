package indexer

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/hapi-protocol/hapi-core/client/core/evm"
	"github.com/hapi-protocol/hapi-core/pkg/interfaces/infrastructure/log"
	"github.com/hapi-protocol/hapi-core/pkg/types"
)

// evmChain is the part of an Ethereum node the indexer reads; *ethclient.Client satisfies it
type evmChain interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]ethtypes.Log, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*ethtypes.Header, error)
}

// EVMSource scans contract logs block range by block range
type EVMSource struct {
	chain         evmChain
	registry      registry
	contract      common.Address
	pageSize      uint64
	fetchingDelay time.Duration
	logger        log.Logger
}

// NewEVMSource reads logs of contract through chain and entities through reg
func NewEVMSource(chain evmChain, reg registry, contract string, pageSize uint64, fetchingDelay time.Duration, logger log.Logger) (*EVMSource, error) {
	if !common.IsHexAddress(contract) {
		return nil, types.NewError(types.KindInvalidData, "invalid contract address %q", contract)
	}
	if pageSize == 0 {
		pageSize = 1
	}
	return &EVMSource{
		chain:         chain,
		registry:      reg,
		contract:      common.HexToAddress(contract),
		pageSize:      pageSize,
		fetchingDelay: fetchingDelay,
		logger:        logger,
	}, nil
}

// Fetch pages through the blocks from the cursor up to the chain head.
// A Block cursor is the next block to scan.
func (s *EVMSource) Fetch(ctx context.Context, cursor Cursor) ([]Job, Cursor, error) {
	var from uint64
	switch cursor.Kind {
	case CursorNone:
	case CursorBlock:
		from = cursor.Block
	default:
		return nil, cursor, fmt.Errorf("evm network must have a block cursor, got %s", cursor)
	}

	latest, err := s.chain.BlockNumber(ctx)
	if err != nil {
		return nil, cursor, fmt.Errorf("get block number: %w", err)
	}
	if from > latest {
		return nil, cursor, nil
	}

	var jobs []Job
	for start := from; start <= latest; start += s.pageSize {
		end := start + s.pageSize - 1
		if end > latest {
			end = latest
		}
		logs, err := s.chain.FilterLogs(ctx, ethereum.FilterQuery{
			FromBlock: new(big.Int).SetUint64(start),
			ToBlock:   new(big.Int).SetUint64(end),
			Addresses: []common.Address{s.contract},
		})
		if err != nil {
			return nil, cursor, fmt.Errorf("get logs %d..%d: %w", start, end, err)
		}
		for _, l := range logs {
			if l.Removed {
				continue
			}
			s.logger.Debugf("found log tx=%s block=%d index=%d", l.TxHash.Hex(), l.BlockNumber, l.Index)
			jobs = append(jobs, LogJob(l))
		}
		if end < latest {
			if err := sleep(ctx, s.fetchingDelay); err != nil {
				return nil, cursor, err
			}
		}
	}
	if len(jobs) > 0 {
		s.logger.Infof("found %d logs in blocks %d..%d", len(jobs), from, latest)
	}
	return jobs, BlockCursor(latest + 1), nil
}

// Process decodes a log and reads the entity it touched
func (s *EVMSource) Process(ctx context.Context, job Job) ([]PushPayload, error) {
	if job.Log == nil {
		return nil, fmt.Errorf("evm source cannot process %s", job)
	}
	l := *job.Log
	ev, err := evm.DecodeLog(l)
	if err != nil {
		return nil, err
	}
	header, err := s.chain.HeaderByNumber(ctx, new(big.Int).SetUint64(l.BlockNumber))
	if err != nil {
		return nil, fmt.Errorf("get block %d: %w", l.BlockNumber, err)
	}

	data, ok, err := s.entity(ctx, ev)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.logger.Debugf("ignoring %s tx=%s", ev.EventName, l.TxHash.Hex())
		return nil, nil
	}
	s.logger.Infof("processed %s tx=%s", ev.Name, l.TxHash.Hex())
	return []PushPayload{payload(ev.Name, l.TxHash.Hex(), 0, header.Time, data)}, nil
}

func (s *EVMSource) entity(ctx context.Context, ev evm.LogEvent) (PushData, bool, error) {
	switch ev.Name.Entity() {
	case types.EntityReporter:
		id, err := ev.ID()
		if err != nil {
			return PushData{}, false, err
		}
		r, err := s.registry.GetReporter(ctx, id)
		return PushData{Reporter: &r}, err == nil, err
	case types.EntityCase:
		id, err := ev.ID()
		if err != nil {
			return PushData{}, false, err
		}
		c, err := s.registry.GetCase(ctx, id)
		return PushData{Case: &c}, err == nil, err
	case types.EntityAddress:
		addr, err := ev.Address()
		if err != nil {
			return PushData{}, false, err
		}
		a, err := s.registry.GetAddress(ctx, addr)
		return PushData{Address: &a}, err == nil, err
	case types.EntityAsset:
		addr, err := ev.Address()
		if err != nil {
			return PushData{}, false, err
		}
		assetID, err := ev.AssetID()
		if err != nil {
			return PushData{}, false, err
		}
		a, err := s.registry.GetAsset(ctx, addr, assetID)
		return PushData{Asset: &a}, err == nil, err
	default:
		return PushData{}, false, nil
	}
}
