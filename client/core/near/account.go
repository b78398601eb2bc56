package near

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/hapi-protocol/hapi-core/client/core/transport"
	"github.com/hapi-protocol/hapi-core/pkg/types"
)

const rpcTimeout = 30 * time.Second

var (
	accountIDRe = regexp.MustCompile(`^(([a-z\d]+[\-_])*[a-z\d]+\.)*([a-z\d]+[\-_])*[a-z\d]+$`)
	panicRe     = regexp.MustCompile(`Smart contract panicked: ([^"\\]+)`)
)

// ValidateAccountID checks the NEAR account id format
func ValidateAccountID(field, id string) error {
	if len(id) < 2 || len(id) > 64 || !accountIDRe.MatchString(id) {
		return types.NewError(types.KindNearAccountParse, "`%s`: invalid account id %q", field, id)
	}
	return nil
}

// account signs and submits calls, and runs views, against NEAR RPC
type account struct {
	rpc transport.Caller
	id  string
	key ed25519.PrivateKey
	gas uint64
}

func newAccount(providerURL, accountID, privateKey string) (account, error) {
	u, err := url.Parse(providerURL)
	if err != nil || u.Scheme == "" || u.Host == "" || strings.Contains(providerURL, ",") {
		return account{}, types.NewError(types.KindURLParse, "`provider_url`: invalid url %q", providerURL)
	}
	// one endpoint, one attempt: a signed transaction is never re-broadcast
	rpc := transport.NewJSONRPCClient(providerURL, rpcTimeout)
	key, err := ParseSecretKey(privateKey)
	if err != nil {
		return account{}, err
	}
	if accountID != "" {
		if err := ValidateAccountID("account_id", accountID); err != nil {
			return account{}, err
		}
	}
	return account{rpc: rpc, id: accountID, key: key, gas: DefaultGas}, nil
}

type queryResult struct {
	Result []int  `json:"result"`
	Error  string `json:"error"`
}

// view runs a call_function query and decodes its JSON result into out
func (a account) view(ctx context.Context, contract, method string, args, out any) error {
	encoded, err := encodeArgs(args)
	if err != nil {
		return err
	}
	params := map[string]any{
		"request_type": "call_function",
		"finality":     "final",
		"account_id":   contract,
		"method_name":  method,
		"args_base64":  base64.StdEncoding.EncodeToString(encoded),
	}
	var res queryResult
	if err := a.rpc.Call(ctx, "query", params, &res); err != nil {
		return rpcError(method, err)
	}
	if res.Error != "" {
		return contractError(method, res.Error)
	}
	raw := make([]byte, len(res.Result))
	for i, b := range res.Result {
		raw[i] = byte(b)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return types.WrapError(types.KindInvalidResponse, err, "`%s`: unexpected result %s", method, raw)
	}
	return nil
}

type accessKey struct {
	Nonce     uint64 `json:"nonce"`
	BlockHash string `json:"block_hash"`
}

type txOutcome struct {
	Status      map[string]json.RawMessage `json:"status"`
	Transaction struct {
		Hash string `json:"hash"`
	} `json:"transaction"`
}

func (a account) signer() error {
	if a.key == nil {
		return types.ErrSigner
	}
	if a.id == "" {
		return types.NewError(types.KindSigner, "`account_id` is required to sign transactions")
	}
	return nil
}

// call signs a single function call to receiver and waits for its outcome
func (a account) call(ctx context.Context, receiver, method string, args any, deposit types.Amount) (types.Tx, error) {
	if err := a.signer(); err != nil {
		return types.Tx{}, err
	}
	encoded, err := encodeArgs(args)
	if err != nil {
		return types.Tx{}, err
	}
	action, err := NewFunctionCall(method, encoded, a.gas, deposit)
	if err != nil {
		return types.Tx{}, err
	}

	pub := PublicKeyOf(a.key)
	var ak accessKey
	err = a.rpc.Call(ctx, "query", map[string]any{
		"request_type": "view_access_key",
		"finality":     "final",
		"account_id":   a.id,
		"public_key":   pub.String(),
	}, &ak)
	if err != nil {
		return types.Tx{}, rpcError(method, err)
	}
	blockHash, err := decodeHash(ak.BlockHash)
	if err != nil {
		return types.Tx{}, err
	}

	tx := Transaction{
		SignerID:   a.id,
		PublicKey:  pub,
		Nonce:      ak.Nonce + 1,
		ReceiverID: receiver,
		BlockHash:  blockHash,
		Actions:    []FunctionCall{action},
	}
	signed, hash, err := tx.Sign(a.key)
	if err != nil {
		return types.Tx{}, err
	}

	var outcome txOutcome
	if err := a.rpc.Call(ctx, "broadcast_tx_commit", []string{base64.StdEncoding.EncodeToString(signed)}, &outcome); err != nil {
		return types.Tx{}, rpcError(method, err)
	}
	if failure, ok := outcome.Status["Failure"]; ok {
		if msg, ok := panicMessage(string(failure)); ok {
			return types.Tx{}, types.NewError(types.KindContractRevert, "`%s` reverted with: %s", method, msg)
		}
		return types.Tx{}, types.NewError(types.KindInvalidResponse, "Call method failed with %s", failure)
	}
	if outcome.Transaction.Hash != "" {
		hash = outcome.Transaction.Hash
	}
	return types.Tx{Hash: hash}, nil
}

func encodeArgs(args any) ([]byte, error) {
	if args == nil {
		return []byte("{}"), nil
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, types.WrapError(types.KindInvalidData, err, "encode arguments")
	}
	return raw, nil
}

func panicMessage(text string) (string, bool) {
	m := panicRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// contractError maps a contract panic; missing records become typed not-found errors
func contractError(method, text string) error {
	msg, ok := panicMessage(text)
	if !ok {
		return types.NewError(types.KindProvider, "`%s` failed: %s", method, text)
	}
	switch {
	case msg == "Reporter not found":
		return types.ErrInvalidReporter
	case strings.HasSuffix(msg, "not found"):
		return types.NewError(types.KindAccountNotFound, "`%s`: %s", method, msg)
	}
	return types.NewError(types.KindContractRevert, "`%s` reverted with: %s", method, msg)
}

func rpcError(method string, err error) error {
	var ce *types.ClientError
	if errors.As(err, &ce) {
		return err
	}
	var rpcErr *transport.RPCError
	if errors.As(err, &rpcErr) {
		text := rpcErr.Message + " " + string(rpcErr.Data) + " " + string(rpcErr.Cause)
		if _, ok := panicMessage(text); ok {
			return contractError(method, text)
		}
		return types.NewError(types.KindProvider, "`%s` failed: %s", method, strings.TrimSpace(text))
	}
	return types.WrapError(types.KindProvider, err, "`%s` failed", method)
}
