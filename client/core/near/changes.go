package near

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"

	"github.com/hapi-protocol/hapi-core/client/core/transport"
	"github.com/hapi-protocol/hapi-core/pkg/types"
)

// ErrUnknownBlock is returned for heights the node has not produced (or skipped)
var ErrUnknownBlock = errors.New("unknown block")

// BlockHeader is the part of a block header the indexer needs
type BlockHeader struct {
	Height           uint64 `json:"height"`
	Hash             string `json:"hash"`
	TimestampNanosec string `json:"timestamp_nanosec"`
}

// Timestamp returns the block time in seconds
func (h BlockHeader) Timestamp() uint64 {
	amount, err := types.ParseAmount(h.TimestampNanosec)
	if err != nil {
		return 0
	}
	ns, _ := amount.Uint64()
	return ns / 1_000_000_000
}

// StateChange is one contract data change and its cause
type StateChange struct {
	Cause struct {
		Type        string `json:"type"`
		TxHash      string `json:"tx_hash"`
		ReceiptHash string `json:"receipt_hash"`
	} `json:"cause"`
}

// Hash returns the transaction or receipt hash behind the change
func (s StateChange) Hash() (string, bool) {
	switch s.Cause.Type {
	case "transaction_processing":
		return s.Cause.TxHash, s.Cause.TxHash != ""
	case "receipt_processing":
		return s.Cause.ReceiptHash, s.Cause.ReceiptHash != ""
	}
	return "", false
}

// ReceiptCall is the first function call of an action receipt
type ReceiptCall struct {
	ReceiptID     string
	PredecessorID string
	SignerID      string
	MethodName    string
	Args          json.RawMessage
}

// Block returns the header at height, or the latest final block when height is 0
func (c *Client) Block(ctx context.Context, height uint64) (BlockHeader, error) {
	params := map[string]any{"finality": "final"}
	if height > 0 {
		params = map[string]any{"block_id": height}
	}
	var res struct {
		Header BlockHeader `json:"header"`
	}
	if err := c.rpc.Call(ctx, "block", params, &res); err != nil {
		return BlockHeader{}, blockError("block", err)
	}
	return res.Header, nil
}

// Changes returns the contract data changes in block height
func (c *Client) Changes(ctx context.Context, height uint64) ([]StateChange, error) {
	var res struct {
		Changes []StateChange `json:"changes"`
	}
	err := c.rpc.Call(ctx, "EXPERIMENTAL_changes", map[string]any{
		"changes_type":      "data_changes",
		"account_ids":       []string{c.contract},
		"key_prefix_base64": base64.StdEncoding.EncodeToString(nil),
		"block_id":          height,
	}, &res)
	if err != nil {
		return nil, blockError("changes", err)
	}
	return res.Changes, nil
}

// Receipt loads a receipt and returns its first function call
func (c *Client) Receipt(ctx context.Context, id string) (ReceiptCall, error) {
	var res struct {
		ReceiptID     string `json:"receipt_id"`
		PredecessorID string `json:"predecessor_id"`
		Receipt       struct {
			Action *struct {
				SignerID string `json:"signer_id"`
				Actions  []map[string]json.RawMessage `json:"actions"`
			} `json:"Action"`
		} `json:"receipt"`
	}
	if err := c.rpc.Call(ctx, "EXPERIMENTAL_receipt", map[string]any{"receipt_id": id}, &res); err != nil {
		return ReceiptCall{}, rpcError("receipt", err)
	}
	if res.Receipt.Action == nil || len(res.Receipt.Action.Actions) == 0 {
		return ReceiptCall{}, types.NewError(types.KindInvalidResponse, "receipt %s has no actions", id)
	}
	raw, ok := res.Receipt.Action.Actions[0]["FunctionCall"]
	if !ok {
		return ReceiptCall{}, types.NewError(types.KindInvalidResponse, "receipt %s is not a function call", id)
	}
	var call struct {
		MethodName string `json:"method_name"`
		Args       string `json:"args"`
	}
	if err := json.Unmarshal(raw, &call); err != nil {
		return ReceiptCall{}, types.WrapError(types.KindInvalidResponse, err, "receipt %s", id)
	}
	args, err := base64.StdEncoding.DecodeString(call.Args)
	if err != nil {
		return ReceiptCall{}, types.WrapError(types.KindInvalidResponse, err, "receipt %s args", id)
	}
	if len(args) == 0 {
		args = []byte("{}")
	}
	return ReceiptCall{
		ReceiptID:     res.ReceiptID,
		PredecessorID: res.PredecessorID,
		SignerID:      res.Receipt.Action.SignerID,
		MethodName:    call.MethodName,
		Args:          args,
	}, nil
}

func blockError(method string, err error) error {
	var rpcErr *transport.RPCError
	if errors.As(err, &rpcErr) {
		text := string(rpcErr.Cause) + string(rpcErr.Data) + rpcErr.Message
		if strings.Contains(text, "UNKNOWN_BLOCK") || strings.Contains(text, "DB Not Found") {
			return ErrUnknownBlock
		}
	}
	return rpcError(method, err)
}
