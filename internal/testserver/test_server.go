// Package testserver runs the full gantt stack over an in-memory database for
// end-to-end tests.
package testserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/gantt/internal/app"
	"github.com/rpggio/gantt/internal/config"
	"github.com/stretchr/testify/require"
)

type TestServer struct {
	Server   *httptest.Server
	App      *app.App
	Token    string
	TenantID string
}

// New serves the MCP endpoint over HTTP with bearer auth enabled and registers
// token for tenantID.
func New(t *testing.T, token, tenantID string) *TestServer {
	t.Helper()

	cfg := testConfig()
	cfg.Transport.Mode = config.TransportHTTP
	cfg.Auth.Enabled = true

	a := openApp(t, cfg)
	mcpServer := a.MCPServer()
	handler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{SessionTimeout: time.Minute},
	)
	server := httptest.NewServer(handler)

	ts := &TestServer{
		Server:   server,
		App:      a,
		Token:    token,
		TenantID: tenantID,
	}
	require.NoError(t, ts.AddAPIKey(token, tenantID))

	t.Cleanup(server.Close)
	return ts
}

// AddAPIKey authorizes another token.
func (ts *TestServer) AddAPIKey(token, tenantID string) error {
	return ts.App.APIKeys.Create(context.Background(), tenantID, token, "test")
}

// Connect opens a client session over HTTP. header is sent with every
// request; the server's bearer token is added unless header sets one.
func (ts *TestServer) Connect(t *testing.T, header http.Header) *sdkmcp.ClientSession {
	t.Helper()

	h := http.Header{}
	for k, v := range header {
		h[k] = v
	}
	if h.Get("Authorization") == "" && ts.Token != "" {
		h.Set("Authorization", "Bearer "+ts.Token)
	}
	transport := &sdkmcp.StreamableClientTransport{
		Endpoint:   ts.Server.URL,
		HTTPClient: &http.Client{Transport: &headerTransport{header: h, base: http.DefaultTransport}},
	}
	return connect(t, transport)
}

// ConnectInMemory runs a stdio-mode server (no auth, default tenant) and
// connects a client to it without a network.
func ConnectInMemory(t *testing.T) (*sdkmcp.ClientSession, *app.App) {
	t.Helper()

	cfg := testConfig()
	cfg.Transport.Mode = config.TransportStdio
	a := openApp(t, cfg)

	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
	ctx, cancel := context.WithCancel(context.Background())
	serverSession, err := a.MCPServer().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		serverSession.Close()
		cancel()
	})

	return connect(t, clientTransport), a
}

// CallTool calls a tool, requires success, and returns its JSON text.
func CallTool(t *testing.T, cs *sdkmcp.ClientSession, name string, args map[string]any) json.RawMessage {
	t.Helper()
	result := call(t, cs, name, args)
	require.False(t, result.IsError, "tool %s returned error: %s", name, text(result))
	return json.RawMessage(text(result))
}

// CallToolError calls a tool that must fail and returns its error code.
func CallToolError(t *testing.T, cs *sdkmcp.ClientSession, name string, args map[string]any) string {
	t.Helper()
	result := call(t, cs, name, args)
	require.True(t, result.IsError, "tool %s succeeded: %s", name, text(result))
	var apiErr struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal([]byte(text(result)), &apiErr))
	return apiErr.Code
}

func call(t *testing.T, cs *sdkmcp.ClientSession, name string, args map[string]any) *sdkmcp.CallToolResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if args == nil {
		args = map[string]any{}
	}
	result, err := cs.CallTool(ctx, &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err, "CallTool %s failed", name)
	require.NotEmpty(t, result.Content, "tool %s returned no content", name)
	return result
}

func text(result *sdkmcp.CallToolResult) string {
	for _, c := range result.Content {
		if tc, ok := c.(*sdkmcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.DB.Path = ":memory:"
	return cfg
}

func openApp(t *testing.T, cfg config.Config) *app.App {
	t.Helper()
	a, err := app.Open(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func connect(t *testing.T, transport sdkmcp.Transport) *sdkmcp.ClientSession {
	t.Helper()
	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)

	// The session lives as long as ctx, so it is only canceled at cleanup.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	cs, err := client.Connect(ctx, transport, nil)
	if err != nil {
		cancel()
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		cs.Close()
		cancel()
	})
	return cs
}

type headerTransport struct {
	header http.Header
	base   http.RoundTripper
}

func (h *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range h.header {
		req.Header[k] = v
	}
	return h.base.RoundTrip(req)
}
