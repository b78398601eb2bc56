package indexer

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorJSON(t *testing.T) {
	cases := []struct {
		cursor Cursor
		json   string
	}{
		{NoCursor, `"None"`},
		{BlockCursor(42), `{"Block":42}`},
		{TransactionCursor("5xSig"), `{"Transaction":"5xSig"}`},
	}
	for _, tc := range cases {
		data, err := json.Marshal(tc.cursor)
		require.NoError(t, err)
		assert.JSONEq(t, tc.json, string(data))

		var back Cursor
		require.NoError(t, json.Unmarshal([]byte(tc.json), &back))
		assert.Equal(t, tc.cursor, back)
	}

	var c Cursor
	assert.Error(t, json.Unmarshal([]byte(`"Some"`), &c))
	assert.Error(t, json.Unmarshal([]byte(`{"Height":1}`), &c))
}

func TestStateJSON(t *testing.T) {
	cases := []struct {
		state State
		json  string
	}{
		{Init(), `"Init"`},
		{CheckForUpdates(BlockCursor(7)), `{"CheckForUpdates":{"cursor":{"Block":7}}}`},
		{Processing(TransactionCursor("sig")), `{"Processing":{"cursor":{"Transaction":"sig"}}}`},
		{Waiting(NoCursor, 1700000000), `{"Waiting":{"cursor":"None","until":1700000000}}`},
		{Stopped("Stopped by user"), `{"Stopped":{"message":"Stopped by user"}}`},
	}
	for _, tc := range cases {
		data, err := json.Marshal(tc.state)
		require.NoError(t, err)
		assert.JSONEq(t, tc.json, string(data))
	}
}

func TestTransition(t *testing.T) {
	s := Init()

	ok, changed := s.transition(CheckForUpdates(NoCursor))
	assert.True(t, ok)
	assert.True(t, changed)

	ok, changed = s.transition(Waiting(BlockCursor(1), 100))
	assert.True(t, ok)
	assert.True(t, changed)

	// the original deadline is kept
	ok, changed = s.transition(Waiting(BlockCursor(1), 200))
	assert.True(t, ok)
	assert.False(t, changed)
	assert.Equal(t, int64(100), s.Until)

	_, _ = s.transition(Processing(BlockCursor(1)))
	ok, changed = s.transition(Processing(BlockCursor(5)))
	assert.True(t, ok)
	assert.False(t, changed)
	assert.Equal(t, BlockCursor(5), s.Cursor)

	ok, changed = s.transition(Stopped("done"))
	assert.True(t, ok)
	assert.True(t, changed)

	ok, changed = s.transition(CheckForUpdates(NoCursor))
	assert.False(t, ok)
	assert.False(t, changed)
	assert.Equal(t, StateStopped, s.Kind)
	assert.Equal(t, "done", s.Message)
}

func TestStateNames(t *testing.T) {
	assert.Equal(t, "check_for_updates", StateCheckForUpdates.String())
	assert.Equal(t, "stopped", StateStopped.String())
	assert.Equal(t, "Waiting(block 3, until 9)", Waiting(BlockCursor(3), 9).String())
}

func TestPersistedStateJSON(t *testing.T) {
	log := ethtypes.Log{
		Address:     common.HexToAddress("0x0DCd1Bf9A1b36cE34237eEaFef220932846BCD82"),
		Topics:      []common.Hash{common.HexToHash("0x01")},
		Data:        []byte{1, 2},
		BlockNumber: 10,
		TxHash:      common.HexToHash("0xab"),
		Index:       3,
	}
	state := PersistedState{
		Cursor: BlockCursor(11),
		Jobs: []Job{
			LogJob(log),
			TransactionJob("sig"),
			ReceiptJob(NearReceipt{Hash: "rcpt", BlockHeight: 5, Timestamp: 1700000000}),
		},
	}
	data, err := json.Marshal(state)
	require.NoError(t, err)

	var raw struct {
		Jobs []map[string]json.RawMessage `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw.Jobs, 3)
	assert.Contains(t, raw.Jobs[0], "Log")
	assert.JSONEq(t, `"sig"`, string(raw.Jobs[1]["Transaction"]))
	assert.JSONEq(t, `{"hash":"rcpt","block_height":5,"timestamp":1700000000}`, string(raw.Jobs[2]["TransactionReceipt"]))

	var back PersistedState
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, BlockCursor(11), back.Cursor)
	require.Len(t, back.Jobs, 3)
	assert.Equal(t, JobLog, back.Jobs[0].Kind())
	assert.Equal(t, log.TxHash, back.Jobs[0].Log.TxHash)
	assert.Equal(t, uint64(10), back.Jobs[0].Log.BlockNumber)
	assert.Equal(t, JobTransaction, back.Jobs[1].Kind())
	assert.Equal(t, "rcpt", back.Jobs[2].Receipt.Hash)

	var j Job
	assert.Error(t, json.Unmarshal([]byte(`{"Unknown":1}`), &j))
}
