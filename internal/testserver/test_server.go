// Package testserver provides an in-process MCP client session wired to a
// fully assembled ledgermind stack, for end-to-end tests.
package testserver

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/hyperfocal/ledgermind/internal/domain/analytics"
	"github.com/hyperfocal/ledgermind/internal/domain/insight"
	"github.com/hyperfocal/ledgermind/internal/domain/portfolio"
	"github.com/hyperfocal/ledgermind/internal/mcp"
	"github.com/hyperfocal/ledgermind/internal/storage"
	"github.com/hyperfocal/ledgermind/internal/store"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

// TestServer bundles a connected client session with the store underneath it,
// so tests can drive tools over the wire and then assert on persisted state.
type TestServer struct {
	Session   *sdkmcp.ClientSession
	Store     *store.Store
	StatePath string
}

// DefaultLifecycle mirrors the configuration defaults used in production.
var DefaultLifecycle = portfolio.Defaults{
	AutoScale:      true,
	MaxDailySpend:  100,
	KillThreshold:  -10,
	ScaleThreshold: 50,
}

// New assembles the full stack over a file backend in a temp dir and connects
// a client through an in-memory transport pair. Everything is torn down via
// t.Cleanup.
func New(t *testing.T) *TestServer {
	t.Helper()
	return NewWithPath(t, filepath.Join(t.TempDir(), "state.json"))
}

// NewWithPath is New with an explicit state file, so a test can reopen the
// same file and verify persistence across restarts.
func NewWithPath(t *testing.T, statePath string) *TestServer {
	t.Helper()

	backend := storage.NewFileBackend(statePath)
	st, err := store.Open(context.Background(), backend, nil)
	require.NoError(t, err)

	portfolioSvc := portfolio.NewService(st, DefaultLifecycle, nil)
	services := mcp.Services{
		Portfolio: portfolioSvc,
		Insight:   insight.NewService(st, portfolioSvc, nil),
		Analytics: analytics.NewService(st),
	}
	server := mcp.NewServer(mcp.Config{Services: services})

	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()

	ctx, cancel := context.WithCancel(context.Background())
	serveDone := make(chan struct{})
	go func() {
		defer close(serveDone)
		_ = server.Run(ctx, serverTransport)
	}()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "testclient", Version: "0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = session.Close()
		cancel()
		<-serveDone
	})

	return &TestServer{Session: session, Store: st, StatePath: statePath}
}

// Call invokes a tool and fails the test on transport errors or an IsError
// result.
func (ts *TestServer) Call(t *testing.T, tool string, args map[string]any) *sdkmcp.CallToolResult {
	t.Helper()
	res, err := ts.Session.CallTool(context.Background(), &sdkmcp.CallToolParams{
		Name:      tool,
		Arguments: args,
	})
	require.NoError(t, err)
	require.False(t, res.IsError, "tool %s returned an error result: %s", tool, Text(t, res))
	return res
}

// CallExpectError invokes a tool and requires an error result.
func (ts *TestServer) CallExpectError(t *testing.T, tool string, args map[string]any) *sdkmcp.CallToolResult {
	t.Helper()
	res, err := ts.Session.CallTool(context.Background(), &sdkmcp.CallToolParams{
		Name:      tool,
		Arguments: args,
	})
	require.NoError(t, err)
	require.True(t, res.IsError, "tool %s unexpectedly succeeded", tool)
	return res
}

// Decode unmarshals a result's structured content into out.
func Decode(t *testing.T, res *sdkmcp.CallToolResult, out any) {
	t.Helper()
	raw, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

// Text returns the narrative half of a tool result.
func Text(t *testing.T, res *sdkmcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		return ""
	}
	if text, ok := res.Content[0].(*sdkmcp.TextContent); ok {
		return text.Text
	}
	return ""
}
