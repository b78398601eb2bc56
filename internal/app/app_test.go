package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	indexerconfig "github.com/hapi-protocol/hapi-core/internal/config/indexer"
)

// failingRPC answers every JSON-RPC call with an error
func failingRPC(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID json.RawMessage `json:"id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"error":{"code":-32000,"message":"unavailable"}}`, req.ID)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func loadConfig(t *testing.T, rpcURL string) *indexerconfig.Config {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "configuration.toml")
	body := fmt.Sprintf(`
log_level = "error"
is_json_logging = true
listener = "127.0.0.1:0"

[indexer]
network = "ethereum"
chain_id = 1
rpc_node_url = %q
webhook_url = "http://127.0.0.1:1/events"
contract_address = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
jwt_secret = "secret"
state_file = %q
`, rpcURL, filepath.Join(dir, "state.json"))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := indexerconfig.LoadFiles(path, "")
	require.NoError(t, err)
	return cfg
}

func TestStartRequiresConfig(t *testing.T) {
	_, err := Start()
	assert.ErrorContains(t, err, "no configuration")
}

func TestAppShutsDownWhenIndexerStops(t *testing.T) {
	for name, opts := range map[string][]Option{
		"with api":    nil,
		"without api": {WithoutAPI()},
	} {
		t.Run(name, func(t *testing.T) {
			cfg := loadConfig(t, failingRPC(t).URL)

			a, err := Start(append([]Option{WithConfig(cfg)}, opts...)...)
			require.NoError(t, err)

			select {
			case <-a.Done():
			case <-time.After(10 * time.Second):
				_ = a.Stop()
				t.Fatal("application did not shut down after the indexer stopped")
			}
			require.NoError(t, a.Stop())
		})
	}
}
