package solana

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hapi-protocol/hapi-core/pkg/idl"
	"github.com/hapi-protocol/hapi-core/pkg/interfaces/hapicore"
	"github.com/hapi-protocol/hapi-core/pkg/types"
)

var (
	testProgram  = solana.MustPublicKeyFromBase58("hapiAwBQLYRXrjGn6FLCgC8FpQd2yWbKMqS6AYZ48g6")
	reporterID   = types.MustParseUUID("c9b1e8a4-2f0c-4d1e-9a55-0b1f7a3c2d10")
	otherID      = types.MustParseUUID("0a7d5b44-8c1e-4f6b-8e2d-3b9c4e5f6a71")
	caseID       = types.MustParseUUID("5e2b0c6a-1d3f-4a8e-b7c9-2f4e6a8b0c1d")
	testBlockHsh = solana.HashFromBytes(make([]byte, 32))
)

// fakeCluster serves the subset of the Solana JSON-RPC API used by the client
type fakeCluster struct {
	mu       sync.Mutex
	accounts map[solana.PublicKey][]byte
	owners   map[solana.PublicKey]solana.PublicKey
	sent     []*solana.Transaction
	txErr    any
	balances map[solana.PublicKey]string
}

func newFakeCluster(t *testing.T) (*fakeCluster, string) {
	t.Helper()
	c := &fakeCluster{
		accounts: map[solana.PublicKey][]byte{},
		owners:   map[solana.PublicKey]solana.PublicKey{},
		balances: map[solana.PublicKey]string{},
	}
	srv := httptest.NewServer(http.HandlerFunc(c.serve))
	t.Cleanup(srv.Close)
	return c, srv.URL
}

func (c *fakeCluster) put(t *testing.T, key solana.PublicKey, name string, v any) {
	t.Helper()
	data, err := EncodeAccount(name, v)
	require.NoError(t, err)
	size := idl.AllocatedSize(name)
	require.LessOrEqual(t, len(data), size)
	padded := make([]byte, size)
	copy(padded, data)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.accounts[key] = padded
	c.owners[key] = testProgram
}

func (c *fakeCluster) putTokenAccount(key solana.PublicKey, amount string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accounts[key] = make([]byte, 165)
	c.owners[key] = solana.TokenProgramID
	c.balances[key] = amount
}

func (c *fakeCluster) sentTransactions() []*solana.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*solana.Transaction(nil), c.sent...)
}

func (c *fakeCluster) accountJSON(key solana.PublicKey) map[string]any {
	return map[string]any{
		"data":       []string{base64.StdEncoding.EncodeToString(c.accounts[key]), "base64"},
		"executable": false,
		"lamports":   1000000,
		"owner":      c.owners[key].String(),
		"rentEpoch":  0,
	}
}

func (c *fakeCluster) serve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     json.RawMessage   `json:"id"`
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	defer func() { _ = json.NewEncoder(w).Encode(resp) }()

	c.mu.Lock()
	defer c.mu.Unlock()
	ctx := map[string]any{"slot": 100}

	switch req.Method {
	case "getAccountInfo":
		var key solana.PublicKey
		_ = json.Unmarshal(req.Params[0], &key)
		if _, ok := c.accounts[key]; !ok {
			resp["result"] = map[string]any{"context": ctx, "value": nil}
			return
		}
		resp["result"] = map[string]any{"context": ctx, "value": c.accountJSON(key)}
	case "getProgramAccounts":
		var opts struct {
			Filters []struct {
				DataSize uint64 `json:"dataSize"`
				Memcmp   *struct {
					Offset uint64        `json:"offset"`
					Bytes  solana.Base58 `json:"bytes"`
				} `json:"memcmp"`
			} `json:"filters"`
		}
		if len(req.Params) > 1 {
			_ = json.Unmarshal(req.Params[1], &opts)
		}
		result := []map[string]any{}
	next:
		for key, data := range c.accounts {
			if c.owners[key] != testProgram {
				continue
			}
			for _, f := range opts.Filters {
				if f.DataSize != 0 && uint64(len(data)) != f.DataSize {
					continue next
				}
				if m := f.Memcmp; m != nil {
					end := m.Offset + uint64(len(m.Bytes))
					if end > uint64(len(data)) || string(data[m.Offset:end]) != string(m.Bytes) {
						continue next
					}
				}
			}
			result = append(result, map[string]any{"pubkey": key.String(), "account": c.accountJSON(key)})
		}
		resp["result"] = result
	case "getLatestBlockhash":
		resp["result"] = map[string]any{
			"context": ctx,
			"value":   map[string]any{"blockhash": testBlockHsh.String(), "lastValidBlockHeight": 200},
		}
	case "sendTransaction":
		var encoded string
		_ = json.Unmarshal(req.Params[0], &encoded)
		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			resp["error"] = map[string]any{"code": -32602, "message": err.Error()}
			return
		}
		tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
		if err != nil {
			resp["error"] = map[string]any{"code": -32602, "message": err.Error()}
			return
		}
		c.sent = append(c.sent, tx)
		resp["result"] = tx.Signatures[0].String()
	case "getSignatureStatuses":
		resp["result"] = map[string]any{
			"context": ctx,
			"value": []map[string]any{{
				"slot":               101,
				"confirmations":      nil,
				"err":                c.txErr,
				"confirmationStatus": "confirmed",
			}},
		}
	case "getTokenAccountBalance":
		var key solana.PublicKey
		_ = json.Unmarshal(req.Params[0], &key)
		resp["result"] = map[string]any{
			"context": ctx,
			"value":   map[string]any{"amount": c.balances[key], "decimals": 6, "uiAmountString": c.balances[key]},
		}
	default:
		resp["error"] = map[string]any{"code": -32601, "message": "method not found"}
	}
}

func newTestClient(t *testing.T, url string, key solana.PrivateKey) *Client {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	opts := hapicore.Options{Network: types.NetworkSolana, ProviderURL: url}
	if key != nil {
		opts.PrivateKey = key.String()
	}
	c, err := NewClient(opts)
	require.NoError(t, err)
	c.pollInterval = 5 * time.Millisecond
	c.confirmTimeout = 2 * time.Second
	return c
}

func newKey(t *testing.T) solana.PrivateKey {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return key
}

func reporterFixture(c *Client, id types.UUID, account solana.PublicKey, role types.ReporterRole) ReporterAccount {
	return ReporterAccount{
		Version: 1,
		ID:      u128FromUUID(id),
		Network: c.networkPD,
		Account: account,
		Name:    "reporter",
		Role:    uint8(role),
		Status:  uint8(types.StatusActive),
		Stake:   1000,
		URL:     "https://hapi.one",
	}
}

func TestPDA_Derivation(t *testing.T) {
	network, _, err := FindNetworkAddress(testProgram, types.NetworkSolana)
	require.NoError(t, err)
	again, _, err := FindNetworkAddress(testProgram, types.NetworkSolana)
	require.NoError(t, err)
	assert.Equal(t, network, again)

	btc, _, err := FindNetworkAddress(testProgram, types.NetworkBitcoin)
	require.NoError(t, err)
	assert.NotEqual(t, network, btc)

	a, _, err := FindReporterAddress(testProgram, network, reporterID)
	require.NoError(t, err)
	b, _, err := FindCaseAddress(testProgram, network, reporterID)
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "seed prefix separates reporters from cases")

	_, _, err = FindAddressAddress(testProgram, network, string(make([]byte, 65)))
	assert.ErrorIs(t, err, types.ErrInvalidData)

	_, _, err = FindAssetAddress(testProgram, network, "addr", "1")
	require.NoError(t, err)
}

func TestDecodeAccount(t *testing.T) {
	in := ReporterAccount{Version: 1, Bump: 254, ID: u128FromUUID(reporterID), Name: "n", Role: 1, URL: "u"}
	data, err := EncodeAccount(idl.AccountReporter, in)
	require.NoError(t, err)

	var out ReporterAccount
	require.NoError(t, DecodeAccount(idl.AccountReporter, data, &out))
	assert.Equal(t, in, out)
	assert.Equal(t, reporterID, out.ID.UUID())

	err = DecodeAccount(idl.AccountCase, data, &CaseAccount{})
	assert.ErrorIs(t, err, types.ErrDeserialization)

	err = DecodeAccount(idl.AccountCase, data[:4], &CaseAccount{})
	assert.ErrorIs(t, err, types.ErrDeserialization)
}

func TestAssetAccount_TrimsPadding(t *testing.T) {
	var a AssetAccount
	copy(a.Address[:], "0xabc")
	copy(a.ID[:], "42")
	a.Category = uint8(types.CategoryScam)
	a.RiskScore = 7
	a.Confirmations = 3

	asset, err := a.toAsset()
	require.NoError(t, err)
	assert.Equal(t, "0xabc", asset.Address)
	assert.Equal(t, "42", asset.AssetID)
	assert.Equal(t, uint64(3), asset.Confirmations)

	copy(a.ID[:], "x")
	_, err = a.toAsset()
	assert.ErrorIs(t, err, types.ErrAssetIDParse)
}

func TestClient_GetReporter(t *testing.T) {
	cluster, url := newFakeCluster(t)
	c := newTestClient(t, url, nil)

	account := newKey(t).PublicKey()
	key, _, err := FindReporterAddress(testProgram, c.networkPD, reporterID)
	require.NoError(t, err)
	cluster.put(t, key, idl.AccountReporter, reporterFixture(c, reporterID, account, types.RoleTracer))

	r, err := c.GetReporter(context.Background(), reporterID)
	require.NoError(t, err)
	assert.Equal(t, reporterID, r.ID)
	assert.Equal(t, account.String(), r.Account)
	assert.Equal(t, types.RoleTracer, r.Role)
	assert.Equal(t, types.StatusActive, r.Status)
	assert.Equal(t, "1000", r.Stake.String())

	_, err = c.GetReporter(context.Background(), otherID)
	assert.ErrorIs(t, err, types.ErrInvalidReporter)
}

func TestClient_ListingSortsAndPages(t *testing.T) {
	cluster, url := newFakeCluster(t)
	c := newTestClient(t, url, nil)

	for _, id := range []types.UUID{reporterID, otherID} {
		key, _, err := FindReporterAddress(testProgram, c.networkPD, id)
		require.NoError(t, err)
		cluster.put(t, key, idl.AccountReporter, reporterFixture(c, id, newKey(t).PublicKey(), types.RoleValidator))
	}
	// a reporter of another network must not be listed
	foreign := reporterFixture(c, caseID, newKey(t).PublicKey(), types.RoleValidator)
	foreign.Network = testProgram
	cluster.put(t, newKey(t).PublicKey(), idl.AccountReporter, foreign)

	ctx := context.Background()
	count, err := c.GetReporterCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	all, err := c.GetReporters(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, otherID, all[0].ID, "0a7d... sorts before c9b1...")
	assert.Equal(t, reporterID, all[1].ID)

	second, err := c.GetReporters(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, reporterID, second[0].ID)

	none, err := c.GetReporters(ctx, 5, 1)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestClient_GetCaseResolvesReporter(t *testing.T) {
	cluster, url := newFakeCluster(t)
	c := newTestClient(t, url, nil)

	reporterKey, _, err := FindReporterAddress(testProgram, c.networkPD, reporterID)
	require.NoError(t, err)
	cluster.put(t, reporterKey, idl.AccountReporter, reporterFixture(c, reporterID, newKey(t).PublicKey(), types.RolePublisher))

	caseKey, _, err := FindCaseAddress(testProgram, c.networkPD, caseID)
	require.NoError(t, err)
	cluster.put(t, caseKey, idl.AccountCase, CaseAccount{
		Version:  1,
		ID:       u128FromUUID(caseID),
		Network:  c.networkPD,
		Name:     "theft",
		Reporter: reporterKey,
		Status:   uint8(types.CaseOpen),
		URL:      "https://case",
	})

	got, err := c.GetCase(context.Background(), caseID)
	require.NoError(t, err)
	assert.Equal(t, caseID, got.ID)
	assert.Equal(t, reporterID, got.ReporterID)
	assert.Equal(t, types.CaseOpen, got.Status)

	cases, err := c.GetCases(context.Background(), 0, 10)
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, reporterID, cases[0].ReporterID)
}

func TestClient_GetAddressNotFound(t *testing.T) {
	_, url := newFakeCluster(t)
	c := newTestClient(t, url, nil)

	_, err := c.GetAddress(context.Background(), "0x922ffdfcb57de5dd6f641f275e98b684ce5576a3")
	assert.ErrorIs(t, err, types.ErrAccountNotFound)
}

func TestClient_WritesNeedSigner(t *testing.T) {
	_, url := newFakeCluster(t)
	c := newTestClient(t, url, nil)

	_, err := c.SetAuthority(context.Background(), newKey(t).PublicKey().String())
	assert.ErrorIs(t, err, types.ErrSigner)

	_, err = c.CreateCase(context.Background(), types.CreateCaseInput{ID: caseID, Name: "case", URL: "https://case"})
	assert.ErrorIs(t, err, types.ErrSigner)
}

func TestClient_CreateCaseSendsInstruction(t *testing.T) {
	cluster, url := newFakeCluster(t)
	key := newKey(t)
	c := newTestClient(t, url, key)

	reporterKey, _, err := FindReporterAddress(testProgram, c.networkPD, reporterID)
	require.NoError(t, err)
	cluster.put(t, reporterKey, idl.AccountReporter, reporterFixture(c, reporterID, key.PublicKey(), types.RolePublisher))

	tx, err := c.CreateCase(context.Background(), types.CreateCaseInput{ID: caseID, Name: "case", URL: "https://case"})
	require.NoError(t, err)

	sent := cluster.sentTransactions()
	require.Len(t, sent, 1)
	assert.Equal(t, sent[0].Signatures[0].String(), tx.Hash)

	decoded, err := DecodeTransaction(testProgram, sent[0], 0)
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, types.EventCreateCase, decoded[0].Name)

	caseKey, bump, err := FindCaseAddress(testProgram, c.networkPD, caseID)
	require.NoError(t, err)
	got, ok := decoded[0].Account(ReporterAccountIndex)
	require.True(t, ok)
	assert.Equal(t, reporterKey, got)
	got, ok = decoded[0].Account(CaseAccountIndex)
	require.True(t, ok)
	assert.Equal(t, caseKey, got)

	var args CreateCaseData
	require.NoError(t, bin.NewBorshDecoder(decoded[0].Data[idl.DiscriminatorLength:]).Decode(&args))
	assert.Equal(t, caseID, args.CaseID.UUID())
	assert.Equal(t, "case", args.Name)
	assert.Equal(t, bump, args.Bump)
}

func TestClient_TransactionErrorIsMapped(t *testing.T) {
	cluster, url := newFakeCluster(t)
	key := newKey(t)
	c := newTestClient(t, url, key)
	cluster.txErr = map[string]any{"InstructionError": []any{0, map[string]any{"Custom": 6014}}}

	_, err := c.SetAuthority(context.Background(), newKey(t).PublicKey().String())
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrContractRevert)
	assert.Equal(t, "`set_authority` reverted with: Case closed (CaseClosed)", err.Error())
}

func TestClient_ActivateReporterChecksBalance(t *testing.T) {
	cluster, url := newFakeCluster(t)
	key := newKey(t)
	c := newTestClient(t, url, key)
	mint := newKey(t).PublicKey()

	cluster.put(t, c.networkPD, idl.AccountNetwork, NetworkAccount{
		Version:   1,
		StakeMint: mint,
		StakeInfo: StakeInfo{UnlockDuration: 60, TracerStake: 500},
	})
	reporterKey, _, err := FindReporterAddress(testProgram, c.networkPD, reporterID)
	require.NoError(t, err)
	r := reporterFixture(c, reporterID, key.PublicKey(), types.RoleTracer)
	r.Status = uint8(types.StatusInactive)
	cluster.put(t, reporterKey, idl.AccountReporter, r)

	ctx := context.Background()
	_, err = c.ActivateReporter(ctx)
	assert.ErrorIs(t, err, types.ErrAbsentTokenAccount)

	ata, _, err := solana.FindAssociatedTokenAddress(key.PublicKey(), mint)
	require.NoError(t, err)
	cluster.putTokenAccount(ata, "100")
	_, err = c.ActivateReporter(ctx)
	assert.ErrorIs(t, err, types.ErrFailedToParseBalance)

	cluster.putTokenAccount(ata, "500")
	_, err = c.ActivateReporter(ctx)
	require.NoError(t, err)

	sent := cluster.sentTransactions()
	require.Len(t, sent, 1)
	decoded, err := DecodeTransaction(testProgram, sent[0], 0)
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, types.EventActivateReporter, decoded[0].Name)
	assert.Len(t, decoded[0].Accounts, 6)
}

func TestToken_Balance(t *testing.T) {
	cluster, url := newFakeCluster(t)
	t.Setenv("HOME", t.TempDir())
	mint := newKey(t).PublicKey()
	owner := newKey(t).PublicKey()

	token, err := NewToken(hapicore.Options{Network: types.NetworkSolana, ProviderURL: url, ContractAddress: mint.String()})
	require.NoError(t, err)
	assert.False(t, token.IsApproveNeeded())

	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	require.NoError(t, err)
	cluster.putTokenAccount(ata, "123456789")

	balance, err := token.Balance(context.Background(), owner.String())
	require.NoError(t, err)
	assert.Equal(t, "123456789", balance.String())

	_, err = token.Approve(context.Background(), owner.String(), types.NewAmount(1))
	assert.ErrorIs(t, err, types.ErrUnsupported)
}

func TestMapRPCError(t *testing.T) {
	err := mapRPCError("create_address", &jsonrpc.RPCError{
		Code:    -32002,
		Message: "Transaction simulation failed",
		Data:    map[string]any{"err": map[string]any{"InstructionError": []any{0, map[string]any{"Custom": 6016}}}},
	})
	assert.ErrorIs(t, err, types.ErrContractRevert)
	assert.Contains(t, err.Error(), "Risk score must be in 0..10 range")

	err = mapRPCError("get_case", &jsonrpc.RPCError{Code: -32005, Message: "node is behind"})
	assert.ErrorIs(t, err, types.ErrProvider)
	assert.Equal(t, "`get_case` failed: node is behind", err.Error())
}

func TestIsValidAddress(t *testing.T) {
	_, url := newFakeCluster(t)
	c := newTestClient(t, url, nil)
	assert.NoError(t, c.IsValidAddress(testProgram.String()))
	assert.ErrorIs(t, c.IsValidAddress("0xdeadbeef"), types.ErrSolanaAddressParse)

	t.Setenv("HOME", t.TempDir())
	btc, err := NewClient(hapicore.Options{Network: types.NetworkBitcoin, ProviderURL: url})
	require.NoError(t, err)
	assert.NoError(t, btc.IsValidAddress("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"))
	assert.NoError(t, btc.IsValidAddress("bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq"))
	assert.Error(t, btc.IsValidAddress("not-an-address"))
}

func TestPage(t *testing.T) {
	items := []int{1, 2, 3, 4}
	assert.Equal(t, []int{2, 3}, page(items, 1, 2))
	assert.Equal(t, []int{4}, page(items, 3, 10))
	assert.Equal(t, []int{}, page(items, 4, 1))
	assert.Equal(t, []int{1, 2, 3, 4}, page(items, 0, ^uint64(0)))
}
