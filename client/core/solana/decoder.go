package solana

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/hapi-protocol/hapi-core/pkg/idl"
	"github.com/hapi-protocol/hapi-core/pkg/types"
)

// Account positions shared by the reporter, case, address and asset instructions
const (
	ReporterAccountIndex = 2
	CaseAccountIndex     = 3
	EntityAccountIndex   = 4
)

// DecodedInstruction is a program instruction found in a transaction
type DecodedInstruction struct {
	Index     int
	TxHash    string
	BlockTime int64
	Name      types.EventName
	Accounts  []solana.PublicKey
	Data      []byte
}

// Account returns the instruction account at position i
func (d DecodedInstruction) Account(i int) (solana.PublicKey, bool) {
	if i < 0 || i >= len(d.Accounts) {
		return solana.PublicKey{}, false
	}
	return d.Accounts[i], true
}

// DecodeTransaction returns the instructions of tx addressed to programID, in order
func DecodeTransaction(programID solana.PublicKey, tx *solana.Transaction, blockTime int64) ([]DecodedInstruction, error) {
	if tx == nil || len(tx.Signatures) == 0 {
		return nil, types.NewError(types.KindInvalidData, "transaction without signature")
	}
	keys := tx.Message.AccountKeys
	if len(keys) == 0 {
		return nil, types.NewError(types.KindInvalidData, "transaction %s has no accounts", tx.Signatures[0])
	}

	var out []DecodedInstruction
	for i, compiled := range tx.Message.Instructions {
		if int(compiled.ProgramIDIndex) >= len(keys) {
			return nil, types.NewError(types.KindInvalidData, "instruction %d: program index out of range", i)
		}
		if !keys[compiled.ProgramIDIndex].Equals(programID) {
			continue
		}
		index, ok := idl.InstructionIndex(compiled.Data)
		if !ok {
			continue
		}
		name, err := types.EventNameFromIndex(index)
		if err != nil {
			return nil, err
		}
		accounts := make([]solana.PublicKey, 0, len(compiled.Accounts))
		for _, a := range compiled.Accounts {
			if int(a) >= len(keys) {
				return nil, types.NewError(types.KindInvalidData, "instruction %d: account index out of range", i)
			}
			accounts = append(accounts, keys[a])
		}
		out = append(out, DecodedInstruction{
			Index:     i,
			TxHash:    tx.Signatures[0].String(),
			BlockTime: blockTime,
			Name:      name,
			Accounts:  accounts,
			Data:      compiled.Data,
		})
	}
	return out, nil
}

// Signatures lists program signatures newest first, stopping at until
func (c *Client) Signatures(ctx context.Context, before, until string, limit int) ([]*rpc.TransactionSignature, error) {
	opts := &rpc.GetSignaturesForAddressOpts{Limit: &limit, Commitment: commitment}
	if before != "" {
		sig, err := solana.SignatureFromBase58(before)
		if err != nil {
			return nil, types.WrapError(types.KindInvalidData, err, "`before`")
		}
		opts.Before = sig
	}
	if until != "" {
		sig, err := solana.SignatureFromBase58(until)
		if err != nil {
			return nil, types.WrapError(types.KindInvalidData, err, "`until`")
		}
		opts.Until = sig
	}
	out, err := c.rpc.GetSignaturesForAddressWithOpts(ctx, c.programID, opts)
	if err != nil {
		return nil, mapRPCError("get_signatures", err)
	}
	return out, nil
}

// Instructions fetches a transaction and decodes its program instructions;
// failed transactions yield none
func (c *Client) Instructions(ctx context.Context, signature string) ([]DecodedInstruction, error) {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return nil, types.WrapError(types.KindInvalidData, err, "`signature`")
	}
	version := uint64(0)
	res, err := c.rpc.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Encoding:                       solana.EncodingBase64,
		Commitment:                     commitment,
		MaxSupportedTransactionVersion: &version,
	})
	if err != nil {
		return nil, mapRPCError("get_transaction", err)
	}
	if res == nil || res.Transaction == nil {
		return nil, types.NewError(types.KindInvalidResponse, "transaction %s not found", signature)
	}
	if res.Meta != nil && res.Meta.Err != nil {
		return nil, nil
	}
	tx, err := res.Transaction.GetTransaction()
	if err != nil {
		return nil, types.WrapError(types.KindInvalidResponse, err, "transaction %s", signature)
	}
	var blockTime int64
	if res.BlockTime != nil {
		blockTime = int64(*res.BlockTime)
	}
	return DecodeTransaction(c.programID, tx, blockTime)
}

// ReporterAt loads the reporter stored at key
func (c *Client) ReporterAt(ctx context.Context, key solana.PublicKey) (types.Reporter, error) {
	r, err := c.reporterAccount(ctx, "get_reporter", key)
	if err != nil {
		return types.Reporter{}, err
	}
	return r.toReporter()
}

// CaseAt loads the case stored at key
func (c *Client) CaseAt(ctx context.Context, key solana.PublicKey) (types.Case, error) {
	var ca CaseAccount
	if err := c.fetch(ctx, "get_case", idl.AccountCase, key, &ca); err != nil {
		return types.Case{}, err
	}
	r, err := c.reporterAccount(ctx, "get_case", ca.Reporter)
	if err != nil {
		return types.Case{}, err
	}
	return ca.toCase(r.ID.UUID())
}

// AddressAt loads the address stored at key
func (c *Client) AddressAt(ctx context.Context, key solana.PublicKey) (types.Address, error) {
	var a AddressAccount
	if err := c.fetch(ctx, "get_address", idl.AccountAddress, key, &a); err != nil {
		return types.Address{}, err
	}
	return a.toAddress()
}

// AssetAt loads the asset stored at key
func (c *Client) AssetAt(ctx context.Context, key solana.PublicKey) (types.Asset, error) {
	var a AssetAccount
	if err := c.fetch(ctx, "get_asset", idl.AccountAsset, key, &a); err != nil {
		return types.Asset{}, err
	}
	return a.toAsset()
}
