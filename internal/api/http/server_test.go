package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hapi-protocol/hapi-core/internal/api/http/handlers"
	"github.com/hapi-protocol/hapi-core/internal/api/websocket"
	coreevent "github.com/hapi-protocol/hapi-core/internal/core/infrastructure/event"
	corelog "github.com/hapi-protocol/hapi-core/internal/core/infrastructure/log"
	coremetrics "github.com/hapi-protocol/hapi-core/internal/core/infrastructure/metrics"
	"github.com/hapi-protocol/hapi-core/internal/indexer"
	"github.com/hapi-protocol/hapi-core/pkg/interfaces/infrastructure/event"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeIndexer struct {
	mu    sync.Mutex
	state indexer.State
	stops int
}

func (f *fakeIndexer) State() indexer.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeIndexer) Cursor() indexer.Cursor { return indexer.BlockCursor(42) }

func (f *fakeIndexer) QueueLength() int { return 3 }

func (f *fakeIndexer) Stop(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	if f.state.Kind != indexer.StateStopped {
		f.state = indexer.Stopped(message)
	}
}

type harness struct {
	ix     *fakeIndexer
	bus    *coreevent.EventBus
	ws     *websocket.Server
	server *Server
	http   *httptest.Server
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		ix:  &fakeIndexer{state: indexer.Processing(indexer.BlockCursor(42))},
		bus: coreevent.New(nil, nil),
	}
	ws, err := websocket.NewServer(nil, h.bus, h.ix)
	require.NoError(t, err)
	h.ws = ws
	h.server = NewServer("127.0.0.1:0", corelog.NewNop(), coremetrics.NewPrometheus("ethereum").Registry(), h.ix, ws)
	h.http = httptest.NewServer(h.server.Handler())
	t.Cleanup(func() {
		h.http.Close()
		_ = ws.Close()
	})
	return h
}

func (h *harness) do(t *testing.T, method, path string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, h.http.URL+path, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestGetState(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(t, http.MethodGet, "/state")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"state":{"Processing":{"cursor":{"Block":42}}}}`, string(body))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestStop(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(t, http.MethodPut, "/stop")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"success":true}`, string(body))

	_, body = h.do(t, http.MethodGet, "/state")
	assert.JSONEq(t, `{"state":{"Stopped":{"message":"Stopped by user"}}}`, string(body))

	// a second stop keeps the first message
	resp, _ = h.do(t, http.MethodPut, "/stop")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, indexer.Stopped(handlers.StopMessage), h.ix.State())
	assert.Equal(t, 2, h.ix.stops)
}

func TestStopRequiresPut(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(t, http.MethodGet, "/stop")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), `"error"`)
	assert.Equal(t, indexer.StateProcessing, h.ix.State().Kind)
}

func TestHealth(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(t, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok","state":"processing","cursor":{"Block":42},"queue_length":3}`, string(body))

	h.ix.Stop("boom")
	resp, body = h.do(t, http.MethodGet, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"stopped"`)
}

func TestUnknownRoute(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(t, http.MethodGet, "/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var out map[string]string
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "no route for GET /nope", out["error"])
}

func TestMetrics(t *testing.T) {
	h := newHarness(t)
	h.do(t, http.MethodGet, "/state")

	resp, body := h.do(t, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	text := string(body)
	assert.Contains(t, text, `hapi_api_requests_total{method="GET",path="/state",status="200"} 1`)
	assert.Contains(t, text, "go_goroutines")
}

func TestWebSocketStreamsTransitions(t *testing.T) {
	h := newHarness(t)

	url := "ws" + strings.TrimPrefix(h.http.URL, "http") + "/ws"
	conn, resp, err := gorillaws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	defer resp.Body.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, first, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"to":{"Processing":{"cursor":{"Block":42}}}}`, string(first))
	assert.Equal(t, 1, h.ws.Clients())

	h.bus.Publish(event.EventTypeStateChanged,
		indexer.Processing(indexer.BlockCursor(42)),
		indexer.Waiting(indexer.BlockCursor(43), 100))

	_, next, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"from":{"Processing":{"cursor":{"Block":42}}},"to":{"Waiting":{"cursor":{"Block":43},"until":100}}}`,
		string(next))
}

func TestStartStop(t *testing.T) {
	ix := &fakeIndexer{state: indexer.Init()}
	s := NewServer("127.0.0.1:0", corelog.NewNop(), coremetrics.NewPrometheus("near").Registry(), ix, nil)
	require.NoError(t, s.Start())

	resp, err := http.Get("http://" + s.Addr() + "/state")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.JSONEq(t, `{"state":"Init"}`, string(body))

	require.NoError(t, s.Stop(t.Context()))
	_, err = http.Get("http://" + s.Addr() + "/state")
	assert.Error(t, err)
}
