package evm

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hapi-protocol/hapi-core/pkg/interfaces/hapicore"
	"github.com/hapi-protocol/hapi-core/pkg/types"
)

const (
	testContract = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	testToken    = "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"
	testSigner   = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	testKey      = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
)

// callResult is either packed outputs or revert data
type callResult struct {
	outputs []any
	revert  []byte
}

type fakeNode struct {
	t     *testing.T
	mu    sync.Mutex
	calls map[string]func(args []any) callResult
	seen  map[string][]any
}

func (n *fakeNode) args(method string) []any {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.seen[method]
}

func newFakeNode(t *testing.T) (*fakeNode, string) {
	t.Helper()
	node := &fakeNode{t: t, calls: map[string]func([]any) callResult{}, seen: map[string][]any{}}
	srv := httptest.NewServer(http.HandlerFunc(node.serve))
	t.Cleanup(srv.Close)
	return node, srv.URL
}

func (n *fakeNode) on(method string, fn func(args []any) callResult) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls[method] = fn
}

func (n *fakeNode) serve(w http.ResponseWriter, r *http.Request) {
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

	switch req.Method {
	case "eth_chainId":
		resp["result"] = "0x7a69"
	case "eth_call":
		var msg struct {
			Data  hexutil.Bytes `json:"data"`
			Input hexutil.Bytes `json:"input"`
		}
		if err := json.Unmarshal(req.Params[0], &msg); err != nil {
			resp["error"] = map[string]any{"code": -32602, "message": err.Error()}
			return
		}
		input := msg.Input
		if len(input) == 0 {
			input = msg.Data
		}
		method, err := methodByID(input)
		if err != nil {
			resp["error"] = map[string]any{"code": -32602, "message": err.Error()}
			return
		}
		args, err := method.Inputs.Unpack(input[4:])
		if err != nil {
			resp["error"] = map[string]any{"code": -32602, "message": err.Error()}
			return
		}
		n.mu.Lock()
		n.seen[method.Name] = args
		fn, ok := n.calls[method.Name]
		n.mu.Unlock()
		if !ok {
			resp["error"] = map[string]any{"code": -32601, "message": "unexpected call " + method.Name}
			return
		}
		res := fn(args)
		if res.revert != nil {
			resp["error"] = map[string]any{"code": 3, "message": "execution reverted", "data": hexutil.Encode(res.revert)}
			return
		}
		packed, err := method.Outputs.Pack(res.outputs...)
		if err != nil {
			resp["error"] = map[string]any{"code": -32603, "message": err.Error()}
			return
		}
		resp["result"] = hexutil.Encode(packed)
	default:
		resp["error"] = map[string]any{"code": -32601, "message": "method not found"}
	}
}

func methodByID(input []byte) (*abi.Method, error) {
	if len(input) < 4 {
		return nil, errors.New("short input")
	}
	if m, err := hapiCoreABI.MethodById(input[:4]); err == nil {
		return m, nil
	}
	return erc20ABI.MethodById(input[:4])
}

func out(values ...any) func([]any) callResult {
	return func([]any) callResult { return callResult{outputs: values} }
}

func revertWith(reason string) func([]any) callResult {
	stringTy, _ := abi.NewType("string", "", nil)
	packed, _ := abi.Arguments{{Type: stringTy}}.Pack(reason)
	return func([]any) callResult {
		return callResult{revert: append(hexutil.MustDecode("0x08c379a0"), packed...)}
	}
}

func newTestClient(t *testing.T, url, key string) *Client {
	t.Helper()
	c, err := NewClient(hapicore.Options{
		Network:         types.NetworkEthereum,
		ProviderURL:     url,
		ContractAddress: testContract,
		PrivateKey:      key,
	})
	require.NoError(t, err)
	return c
}

var (
	reporterID = types.MustParseUUID("8bb9c5a4-4dc4-4d5c-9a4c-3e1d6e9f9a01")
	caseID     = types.MustParseUUID("a4ce3f4e-7e0c-4b7d-8e0a-1c9b8f5d2e11")
)

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(hapicore.Options{ProviderURL: "not a url", ContractAddress: testContract})
	assert.True(t, errors.Is(err, types.ErrURLParse))

	_, err = NewClient(hapicore.Options{ProviderURL: "http://localhost:8545", ContractAddress: "0x123"})
	assert.True(t, errors.Is(err, types.ErrEthAddressParse))

	_, err = NewClient(hapicore.Options{ProviderURL: "http://localhost:8545", ContractAddress: testContract, PrivateKey: "zz"})
	assert.True(t, errors.Is(err, types.ErrSigner))

	c, err := NewClient(hapicore.Options{ProviderURL: "http://localhost:8545", ContractAddress: testContract, PrivateKey: testKey})
	require.NoError(t, err)
	assert.Equal(t, testSigner, c.SignerAddress())
	assert.Equal(t, testContract, c.ContractAddress())
}

func TestClient_GetAuthority(t *testing.T) {
	node, url := newFakeNode(t)
	node.on("authority", out(common.HexToAddress(testSigner)))

	authority, err := newTestClient(t, url, "").GetAuthority(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testSigner, authority)
}

func TestClient_GetReporter(t *testing.T) {
	node, url := newFakeNode(t)
	node.on("getReporter", out(evmReporter{
		Id:              reporterID.Big(),
		Account:         common.HexToAddress(testSigner),
		Name:            "alice",
		Url:             "https://alice.example",
		Role:            uint8(types.RolePublisher),
		Status:          uint8(types.StatusActive),
		Stake:           big.NewInt(1000),
		UnlockTimestamp: big.NewInt(0),
	}))

	reporter, err := newTestClient(t, url, "").GetReporter(context.Background(), reporterID)
	require.NoError(t, err)
	assert.Equal(t, reporterID, reporter.ID)
	assert.Equal(t, testSigner, reporter.Account)
	assert.Equal(t, types.RolePublisher, reporter.Role)
	assert.Equal(t, types.StatusActive, reporter.Status)
	assert.Equal(t, "1000", reporter.Stake.String())

	require.Len(t, node.args("getReporter"), 1)
	assert.Equal(t, 0, reporterID.Big().Cmp(node.args("getReporter")[0].(*big.Int)))
}

func TestClient_GetReporterZeroTupleIsInvalidReporter(t *testing.T) {
	node, url := newFakeNode(t)
	node.on("getReporter", out(evmReporter{
		Id: big.NewInt(0), Stake: big.NewInt(0), UnlockTimestamp: big.NewInt(0),
	}))

	_, err := newTestClient(t, url, "").GetReporter(context.Background(), reporterID)
	assert.True(t, errors.Is(err, types.ErrInvalidReporter))
	assert.EqualError(t, err, "The reporter does not exist")
}

func TestClient_GetReportersPaging(t *testing.T) {
	node, url := newFakeNode(t)
	node.on("getReporters", out([]evmReporter{{
		Id: reporterID.Big(), Account: common.HexToAddress(testSigner), Name: "alice",
		Url: "https://alice.example", Stake: big.NewInt(0), UnlockTimestamp: big.NewInt(0),
	}}))

	list, err := newTestClient(t, url, "").GetReporters(context.Background(), 5, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "alice", list[0].Name)

	args := node.args("getReporters")
	require.Len(t, args, 2)
	assert.Equal(t, int64(10), args[0].(*big.Int).Int64(), "take comes first")
	assert.Equal(t, int64(5), args[1].(*big.Int).Int64())
}

func TestClient_GetCaseRevert(t *testing.T) {
	node, url := newFakeNode(t)
	node.on("getCase", revertWith("Case does not exist"))

	_, err := newTestClient(t, url, "").GetCase(context.Background(), caseID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrContractRevert))
	assert.Equal(t, "`getCase` reverted with: Case does not exist", err.Error())
}

func TestClient_GetAddress(t *testing.T) {
	node, url := newFakeNode(t)
	target := "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	node.on("getAddress", out(evmAddress{
		Addr:          common.HexToAddress(target),
		CaseId:        caseID.Big(),
		ReporterId:    reporterID.Big(),
		Confirmations: big.NewInt(2),
		Risk:          7,
		Category:      uint8(types.CategoryMixer),
	}))

	addr, err := newTestClient(t, url, "").GetAddress(context.Background(), target)
	require.NoError(t, err)
	assert.Equal(t, target, addr.Address)
	assert.Equal(t, caseID, addr.CaseID)
	assert.Equal(t, uint8(7), addr.Risk)
	assert.Equal(t, types.CategoryMixer, addr.Category)
	assert.Equal(t, uint64(2), addr.Confirmations)
}

func TestClient_GetAddressNotFound(t *testing.T) {
	node, url := newFakeNode(t)
	node.on("getAddress", out(evmAddress{
		CaseId: big.NewInt(0), ReporterId: big.NewInt(0), Confirmations: big.NewInt(0),
	}))

	_, err := newTestClient(t, url, "").GetAddress(context.Background(), testToken)
	assert.True(t, errors.Is(err, types.ErrAccountNotFound))
}

func TestClient_GetAssetParsesID(t *testing.T) {
	_, url := newFakeNode(t)
	_, err := newTestClient(t, url, "").GetAsset(context.Background(), testToken, "not-a-number")
	assert.True(t, errors.Is(err, types.ErrAssetIDParse))
}

func TestClient_GetStakeConfiguration(t *testing.T) {
	node, url := newFakeNode(t)
	node.on("stakeConfiguration", out(evmStakeConfiguration{
		Token:          common.HexToAddress(testToken),
		UnlockDuration: big.NewInt(60),
		ValidatorStake: big.NewInt(101),
		TracerStake:    big.NewInt(102),
		PublisherStake: big.NewInt(103),
		AuthorityStake: big.NewInt(104),
	}))

	cfg, err := newTestClient(t, url, "").GetStakeConfiguration(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testToken, cfg.Token)
	assert.Equal(t, uint64(60), cfg.UnlockDuration)
	assert.Equal(t, "103", cfg.StakeFor(types.RolePublisher).String())
}

func TestClient_Counts(t *testing.T) {
	node, url := newFakeNode(t)
	node.on("getCaseCount", out(big.NewInt(3)))

	n, err := newTestClient(t, url, "").GetCaseCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)
}

func TestClient_WritesRequireSigner(t *testing.T) {
	_, url := newFakeNode(t)
	c := newTestClient(t, url, "")

	_, err := c.DeactivateReporter(context.Background())
	assert.True(t, errors.Is(err, types.ErrSigner))

	_, err = c.SetAuthority(context.Background(), "nope")
	assert.True(t, errors.Is(err, types.ErrEthAddressParse))

	_, err = c.CreateAddress(context.Background(), types.CreateAddressInput{
		Address: testToken, CaseID: caseID, Risk: 11,
	})
	assert.True(t, errors.Is(err, types.ErrInvalidData))
}

func TestClient_ActivateReporterInsufficientBalance(t *testing.T) {
	node, url := newFakeNode(t)
	node.on("stakeConfiguration", out(evmStakeConfiguration{
		Token:          common.HexToAddress(testToken),
		UnlockDuration: big.NewInt(60),
		ValidatorStake: big.NewInt(100),
		TracerStake:    big.NewInt(100),
		PublisherStake: big.NewInt(500),
		AuthorityStake: big.NewInt(100),
	}))
	node.on("getMyReporterId", out(reporterID.Big()))
	node.on("getReporter", out(evmReporter{
		Id: reporterID.Big(), Account: common.HexToAddress(testSigner), Name: "alice",
		Url: "https://alice.example", Role: uint8(types.RolePublisher),
		Stake: big.NewInt(0), UnlockTimestamp: big.NewInt(0),
	}))
	node.on("balanceOf", out(big.NewInt(499)))

	_, err := newTestClient(t, url, testKey).ActivateReporter(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrFailedToParseBalance))
	assert.Contains(t, err.Error(), "need 500")

	require.Len(t, node.args("balanceOf"), 1)
	assert.Equal(t, common.HexToAddress(testSigner), node.args("balanceOf")[0])
}

func TestToken_Balance(t *testing.T) {
	node, url := newFakeNode(t)
	node.on("balanceOf", out(big.NewInt(42)))

	token, err := NewToken(hapicore.Options{ProviderURL: url, ContractAddress: testToken})
	require.NoError(t, err)
	assert.True(t, token.IsApproveNeeded())

	balance, err := token.Balance(context.Background(), testSigner)
	require.NoError(t, err)
	assert.Equal(t, "42", balance.String())
}

func TestDecodeRevert(t *testing.T) {
	custom := hapiCoreABI.Errors["InvalidReporter"]
	data, err := custom.Inputs.Pack(common.HexToAddress(testSigner))
	require.NoError(t, err)

	reason := DecodeRevert(append(custom.ID[:4:4], data...))
	assert.Equal(t, "InvalidReporter("+testSigner+")", reason)

	notConfigured := hapiCoreABI.Errors["ContractNotConfigured"]
	assert.Equal(t, "ContractNotConfigured", DecodeRevert(notConfigured.ID[:4]))

	assert.Equal(t, "Tracer can't change case", DecodeRevert(revertWith("Tracer can't change case")(nil).revert))
}

func TestMapContractError_Provider(t *testing.T) {
	err := mapContractError("authority", errors.New("connection refused"))
	assert.True(t, errors.Is(err, types.ErrProvider))
	assert.Equal(t, "`authority` failed: connection refused", err.Error())

	err = mapContractError("getCase", errors.New("execution reverted: Case not found"))
	assert.Equal(t, "`getCase` reverted with: Case not found", err.Error())
}

func TestDecodeLog(t *testing.T) {
	event := hapiCoreABI.Events["AssetCreated"]
	data, err := event.Inputs.Pack(common.HexToAddress(testToken), big.NewInt(77), uint8(5), uint8(types.CategoryScam))
	require.NoError(t, err)

	decoded, err := DecodeLog(ethtypes.Log{Topics: []common.Hash{event.ID}, Data: data})
	require.NoError(t, err)
	assert.Equal(t, types.EventCreateAsset, decoded.Name)
	assert.Equal(t, "AssetCreated", decoded.EventName)

	addr, err := decoded.Address()
	require.NoError(t, err)
	assert.Equal(t, testToken, addr)

	assetID, err := decoded.AssetID()
	require.NoError(t, err)
	assert.Equal(t, "77", assetID)

	_, err = decoded.ID()
	assert.Error(t, err)
}

func TestDecodeLog_Reporter(t *testing.T) {
	event := hapiCoreABI.Events["ReporterUnstaked"]
	data, err := event.Inputs.Pack(reporterID.Big())
	require.NoError(t, err)

	decoded, err := DecodeLog(ethtypes.Log{Topics: []common.Hash{event.ID}, Data: data})
	require.NoError(t, err)
	assert.Equal(t, types.EventUnstake, decoded.Name)

	id, err := decoded.ID()
	require.NoError(t, err)
	assert.Equal(t, reporterID, id)
}

func TestDecodeLog_Unknown(t *testing.T) {
	_, err := DecodeLog(ethtypes.Log{Topics: []common.Hash{common.HexToHash("0x01")}})
	assert.Error(t, err)

	_, err = DecodeLog(ethtypes.Log{})
	assert.Error(t, err)
}
