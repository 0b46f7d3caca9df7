package testserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ganot/studyvault/internal/domain/activity"
	"github.com/ganot/studyvault/internal/domain/project"
	"github.com/ganot/studyvault/internal/domain/task"
	"github.com/ganot/studyvault/internal/domain/template"
	"github.com/ganot/studyvault/internal/mcp"
	"github.com/ganot/studyvault/internal/medium"
	"github.com/ganot/studyvault/internal/metrics"
	"github.com/ganot/studyvault/internal/repository"
	"github.com/ganot/studyvault/internal/sqlite"
	"github.com/ganot/studyvault/internal/transport"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

// TestServer is the full HTTP stack over an in-memory SQLite task backend and a
// caller-supplied snapshot backend.
type TestServer struct {
	Server  *httptest.Server
	DB      *sqlite.DB
	Backend repository.KVStore
	Metrics *metrics.Metrics
}

// New starts a server with a fresh in-memory snapshot backend.
func New(t *testing.T) *TestServer {
	t.Helper()
	return NewWithBackend(t, medium.NewMemoryStore())
}

// NewWithBackend starts a server whose project and template stores load from
// and write to backend. Reusing a backend simulates a restart.
func NewWithBackend(t *testing.T, backend repository.KVStore) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.Open(dsn)
	require.NoError(t, err)

	m := metrics.New()
	snapshots := medium.New(backend, medium.WithObserver(m))

	services := mcp.Services{
		Projects:  project.NewStore(snapshots, project.WithObserver(m)),
		Templates: template.NewStore(snapshots, template.WithObserver(m)),
		Tasks:     task.NewStore(sqlite.NewTaskRepository(db, nil), nil),
		Activity:  activity.NewService(sqlite.NewActivityRepository(db), nil),
	}

	mcpServer := mcp.NewServer(mcp.Config{Services: services, TransportMode: "http"})
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{Stateless: true},
	)

	server := httptest.NewServer(transport.NewServer(mcp.NewHandler(services), transport.Options{
		MCP:           mcpHandler,
		Metrics:       m,
		SecureHeaders: true,
		HealthChecks: map[string]transport.HealthCheck{
			"database": db.PingContext,
			"medium":   snapshots.Ping,
		},
	}))

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return &TestServer{
		Server:  server,
		DB:      db,
		Backend: backend,
		Metrics: m,
	}
}

// Call posts a JSON-RPC request to /rpc and decodes the response.
func (ts *TestServer) Call(t *testing.T, method string, params any) transport.Response {
	t.Helper()

	payload := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"id":      1,
	}
	if params != nil {
		payload["params"] = params
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := http.Post(ts.Server.URL+"/rpc", "application/json", bytes.NewBuffer(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out transport.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// Result calls method, requires success and decodes the result into out.
func (ts *TestServer) Result(t *testing.T, method string, params any, out any) {
	t.Helper()
	resp := ts.Call(t, method, params)
	require.Nil(t, resp.Error, "%s failed: %+v", method, resp.Error)
	require.NoError(t, json.Unmarshal(resp.Result, out))
}
