// ABOUTME: Tests for the MCP server: handshake, tool listing, calls, and dispatch
// ABOUTME: Drives handleRequest directly plus the Serve loop over an in-memory reader

package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gielinor/osrsdex/internal/datafile"
	"github.com/gielinor/osrsdex/internal/tools"
)

func testRegistry(t *testing.T) *tools.Registry {
	t.Helper()

	dir := t.TempDir()
	table := "526\tBones\n4151\tAbyssal whip\n"
	if err := os.WriteFile(filepath.Join(dir, "items.tsv"), []byte(table), 0o644); err != nil {
		t.Fatalf("writing items table: %v", err)
	}
	man, err := datafile.LoadManifest(dir)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	reg, err := tools.New(&tools.Deps{Store: datafile.NewStore(dir, man, time.Hour)})
	if err != nil {
		t.Fatalf("building registry: %v", err)
	}
	return reg
}

func testServer(t *testing.T) (*Server, *bytes.Buffer) {
	t.Helper()
	s := NewServer(testRegistry(t), "test")
	var buf bytes.Buffer
	s.writer = &buf
	return s, &buf
}

func decodeResponse(t *testing.T, buf *bytes.Buffer) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &resp); err != nil {
		t.Fatalf("parsing response: %v (raw: %s)", err, buf.Bytes())
	}
	return resp
}

func TestServer_Initialize(t *testing.T) {
	s, buf := testServer(t)

	s.handleRequest(context.Background(), &Request{JSONRPC: "2.0", ID: 1, Method: "initialize"})

	resp := decodeResponse(t, buf)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %s", resp.Error.Message)
	}
	if resp.ID != 1 {
		t.Errorf("expected ID 1, got %d", resp.ID)
	}

	var result InitializeResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatalf("parsing result: %v", err)
	}
	if result.ProtocolVersion != "2024-11-05" {
		t.Errorf("protocol version = %q", result.ProtocolVersion)
	}
	if result.ServerInfo.Name != "osrsdex" {
		t.Errorf("server name = %q", result.ServerInfo.Name)
	}
	if result.Capabilities.Tools == nil {
		t.Error("tools capability not advertised")
	}
}

func TestServer_ToolsList(t *testing.T) {
	s, buf := testServer(t)

	s.handleRequest(context.Background(), &Request{ID: 2, Method: "tools/list"})

	resp := decodeResponse(t, buf)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %s", resp.Error.Message)
	}

	var result struct {
		Tools []MCPTool `json:"tools"`
	}
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatalf("parsing tools: %v", err)
	}
	if len(result.Tools) != 14 {
		t.Fatalf("expected 14 tools, got %d", len(result.Tools))
	}

	var searchIDs *MCPTool
	for i := range result.Tools {
		if result.Tools[i].Name == "search_ids" {
			searchIDs = &result.Tools[i]
		}
	}
	if searchIDs == nil {
		t.Fatal("search_ids not listed")
	}
	if !strings.Contains(string(searchIDs.InputSchema), `"dataset"`) {
		t.Errorf("search_ids schema missing dataset: %s", searchIDs.InputSchema)
	}
}

func TestServer_ToolsCall(t *testing.T) {
	s, buf := testServer(t)

	params, _ := json.Marshal(map[string]any{
		"name":      "search_ids",
		"arguments": map[string]any{"dataset": "items", "query": "whip"},
	})
	s.handleRequest(context.Background(), &Request{ID: 3, Method: "tools/call", Params: params})

	resp := decodeResponse(t, buf)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %s", resp.Error.Message)
	}

	var result ToolCallResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatalf("parsing result: %v", err)
	}
	if result.IsError {
		t.Error("IsError set on a successful call")
	}
	if len(result.Content) != 1 {
		t.Fatalf("expected 1 content item, got %d", len(result.Content))
	}
	if !strings.Contains(result.Content[0].Text, "Abyssal whip") {
		t.Errorf("unexpected content: %q", result.Content[0].Text)
	}
}

func TestServer_ToolsCall_NotFoundStaysInBand(t *testing.T) {
	s, buf := testServer(t)

	params, _ := json.Marshal(map[string]any{
		"name":      "get_by_id",
		"arguments": map[string]any{"dataset": "items", "id": 99999},
	})
	s.handleRequest(context.Background(), &Request{ID: 4, Method: "tools/call", Params: params})

	resp := decodeResponse(t, buf)
	if resp.Error != nil {
		t.Fatalf("lookup misses must not fail the call: %s", resp.Error.Message)
	}

	var result ToolCallResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatalf("parsing result: %v", err)
	}
	if result.IsError {
		t.Error("IsError set for a lookup miss")
	}
	if !strings.Contains(result.Content[0].Text, `"error"`) {
		t.Errorf("expected in-band error payload, got %q", result.Content[0].Text)
	}
}

func TestServer_ToolsCall_SchemaRejection(t *testing.T) {
	s, buf := testServer(t)

	params, _ := json.Marshal(map[string]any{
		"name":      "search_ids",
		"arguments": map[string]any{"dataset": "items"},
	})
	s.handleRequest(context.Background(), &Request{ID: 5, Method: "tools/call", Params: params})

	resp := decodeResponse(t, buf)
	if resp.Error == nil {
		t.Fatal("expected error for missing required argument")
	}
	if resp.Error.Code != -32602 {
		t.Errorf("expected code -32602, got %d", resp.Error.Code)
	}
}

func TestServer_ToolsCall_UnknownTool(t *testing.T) {
	s, buf := testServer(t)

	params, _ := json.Marshal(map[string]any{"name": "no_such_tool"})
	s.handleRequest(context.Background(), &Request{ID: 6, Method: "tools/call", Params: params})

	resp := decodeResponse(t, buf)
	if resp.Error == nil {
		t.Fatal("expected error for unknown tool")
	}
	if resp.Error.Code != -32602 {
		t.Errorf("expected code -32602, got %d", resp.Error.Code)
	}
	if !strings.Contains(resp.Error.Message, "unknown tool") {
		t.Errorf("unexpected message: %q", resp.Error.Message)
	}
}

func TestServer_ToolsCall_ExecutionError(t *testing.T) {
	s, buf := testServer(t)

	err := s.registry.Register(&tools.Tool{
		Name:        "boom",
		Description: "always fails",
		Schema:      json.RawMessage(`{"type":"object"}`),
		Execute: func(context.Context, map[string]any) (any, error) {
			return nil, errors.New("upstream exploded")
		},
	})
	if err != nil {
		t.Fatalf("registering tool: %v", err)
	}

	params, _ := json.Marshal(map[string]any{"name": "boom", "arguments": map[string]any{}})
	s.handleRequest(context.Background(), &Request{ID: 7, Method: "tools/call", Params: params})

	resp := decodeResponse(t, buf)
	if resp.Error != nil {
		t.Fatalf("execution failures must stay in-band: %s", resp.Error.Message)
	}

	var result ToolCallResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatalf("parsing result: %v", err)
	}
	if !result.IsError {
		t.Error("expected IsError for a failing tool")
	}
	if !strings.Contains(result.Content[0].Text, "upstream exploded") {
		t.Errorf("unexpected content: %q", result.Content[0].Text)
	}
}

func TestServer_Ping(t *testing.T) {
	s, buf := testServer(t)

	s.handleRequest(context.Background(), &Request{ID: 8, Method: "ping"})

	resp := decodeResponse(t, buf)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %s", resp.Error.Message)
	}
	if string(resp.Result) != "{}" {
		t.Errorf("expected empty object result, got %s", resp.Result)
	}
}

func TestServer_ResourcesListEmpty(t *testing.T) {
	s, buf := testServer(t)

	s.handleRequest(context.Background(), &Request{ID: 9, Method: "resources/list"})

	resp := decodeResponse(t, buf)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %s", resp.Error.Message)
	}

	var result struct {
		Resources []Resource `json:"resources"`
	}
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatalf("parsing result: %v", err)
	}
	if len(result.Resources) != 0 {
		t.Errorf("expected no resources, got %d", len(result.Resources))
	}
}

func TestServer_UnknownMethod(t *testing.T) {
	s, buf := testServer(t)

	s.handleRequest(context.Background(), &Request{ID: 10, Method: "unknown/method"})

	resp := decodeResponse(t, buf)
	if resp.Error == nil {
		t.Fatal("expected error for unknown method")
	}
	if resp.Error.Code != -32601 {
		t.Errorf("expected code -32601, got %d", resp.Error.Code)
	}
}

func TestServer_InitializedNotification_NoResponse(t *testing.T) {
	s, buf := testServer(t)

	s.handleRequest(context.Background(), &Request{Method: "notifications/initialized"})

	if buf.Len() != 0 {
		t.Errorf("notification must not produce a response, got %s", buf.Bytes())
	}
}

func TestServer_Serve(t *testing.T) {
	s, buf := testServer(t)

	input := `{"jsonrpc":"2.0","id":1,"method":"ping"}
{"jsonrpc":"2.0","id":2,"method":"ping"}
not json
{"jsonrpc":"2.0","id":3,"method":"tools/list"}
`
	s.reader = bufio.NewScanner(strings.NewReader(input))

	if err := s.Serve(context.Background()); err != nil {
		t.Fatalf("Serve: %v", err)
	}

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 4 {
		t.Fatalf("expected 4 responses, got %d: %s", len(lines), buf.Bytes())
	}

	got := make(map[int64]Response)
	for _, ln := range lines {
		var resp Response
		if err := json.Unmarshal(ln, &resp); err != nil {
			t.Fatalf("parsing response line %q: %v", ln, err)
		}
		got[resp.ID] = resp
	}

	for _, id := range []int64{1, 2, 3} {
		resp, ok := got[id]
		if !ok {
			t.Fatalf("no response for request %d", id)
		}
		if resp.Error != nil {
			t.Errorf("request %d failed: %s", id, resp.Error.Message)
		}
		if len(resp.Result) == 0 {
			t.Errorf("request %d has empty result", id)
		}
	}

	parseErr, ok := got[0]
	if !ok {
		t.Fatal("no response for the malformed line")
	}
	if parseErr.Error == nil || parseErr.Error.Code != -32700 {
		t.Errorf("expected parse error -32700, got %+v", parseErr.Error)
	}
}
