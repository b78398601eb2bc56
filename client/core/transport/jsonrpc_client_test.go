package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rpcServer(t *testing.T, handler func(method string, params json.RawMessage) (any, *RPCError)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string          `json:"method"`
			Params json.RawMessage `json:"params"`
			ID     uint64          `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		result, rpcErr := handler(req.Method, req.Params)
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestJSONRPCClient_Call(t *testing.T) {
	srv := rpcServer(t, func(method string, params json.RawMessage) (any, *RPCError) {
		assert.Equal(t, "query", method)
		assert.JSONEq(t, `{"finality":"final"}`, string(params))
		return map[string]any{"block_height": 42}, nil
	})

	c := NewJSONRPCClient(srv.URL, 0)
	var out struct {
		BlockHeight uint64 `json:"block_height"`
	}
	require.NoError(t, c.Call(context.Background(), "query", map[string]string{"finality": "final"}, &out))
	assert.Equal(t, uint64(42), out.BlockHeight)
}

func TestJSONRPCClient_NilParamsEncodeAsArray(t *testing.T) {
	srv := rpcServer(t, func(method string, params json.RawMessage) (any, *RPCError) {
		assert.Equal(t, "[]", string(params))
		return "0x1", nil
	})

	var out string
	require.NoError(t, NewJSONRPCClient(srv.URL, time.Second).Call(context.Background(), "eth_chainId", nil, &out))
	assert.Equal(t, "0x1", out)
}

func TestJSONRPCClient_Error(t *testing.T) {
	srv := rpcServer(t, func(string, json.RawMessage) (any, *RPCError) {
		return nil, &RPCError{Code: -32000, Message: "Server error"}
	})

	err := NewJSONRPCClient(srv.URL, 0).Call(context.Background(), "query", nil, nil)
	var rpcErr *RPCError
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, -32000, rpcErr.Code)
	assert.Equal(t, "jsonrpc error -32000: Server error", err.Error())
}

func TestJSONRPCClient_HTTPFailureIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "<html>bad gateway</html>", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	err := NewJSONRPCClient(srv.URL, time.Second).Call(context.Background(), "broadcast_tx_commit", []string{"tx"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Equal(t, int32(1), hits.Load())
}
