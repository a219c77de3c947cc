// ABOUTME: MCP server exposing the tool registry via JSON-RPC over stdin/stdout
// ABOUTME: Handles initialize, tools/list, tools/call, resources/list, and ping

package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/gielinor/osrsdex/internal/tools"
	"github.com/gielinor/osrsdex/internal/types"
)

const maxScannerBuffer = 10 * 1024 * 1024 // 10MB

// Server exposes the tool registry over the Model Context Protocol.
// Requests are dispatched on their own goroutines; the response writer is
// serialized so concurrent calls never interleave output lines.
type Server struct {
	registry *tools.Registry
	version  string
	reader   *bufio.Scanner
	writer   io.Writer

	writeMu sync.Mutex
	wg      sync.WaitGroup
}

// NewServer creates an MCP server backed by the given registry.
func NewServer(registry *tools.Registry, version string) *Server {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, maxScannerBuffer), maxScannerBuffer)

	return &Server{
		registry: registry,
		version:  version,
		reader:   scanner,
		writer:   os.Stdout,
	}
}

// Serve reads JSON-RPC messages from stdin and dispatches them. It returns
// when stdin closes and every in-flight call has finished.
func (s *Server) Serve(ctx context.Context) error {
	for s.reader.Scan() {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			return ctx.Err()
		default:
		}

		raw := s.reader.Bytes()
		if len(raw) == 0 {
			continue
		}
		// The scanner reuses its buffer between Scan calls; a dispatched
		// request outlives this iteration, so copy before parsing.
		line := append([]byte(nil), raw...)

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.writeError(0, -32700, "Parse error")
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleRequest(ctx, &req)
		}()
	}

	s.wg.Wait()
	return s.reader.Err()
}

func (s *Server) handleRequest(ctx context.Context, req *Request) {
	switch req.Method {
	case "initialize":
		s.handleInitialize(req)
	case "tools/list":
		s.handleToolsList(req)
	case "tools/call":
		s.handleToolsCall(ctx, req)
	case "resources/list":
		s.handleResourcesList(req)
	case "ping":
		s.writeResult(req.ID, map[string]any{})
	case "notifications/initialized":
		// ACK; no response needed
	default:
		s.writeError(req.ID, -32601, fmt.Sprintf("method not found: %s", req.Method))
	}
}

func (s *Server) handleInitialize(req *Request) {
	result := InitializeResult{
		ProtocolVersion: "2024-11-05",
		Capabilities: ServerCapabilities{
			Tools: &ToolsCapability{},
		},
		ServerInfo: ServerInfo{
			Name:    "osrsdex",
			Version: s.version,
		},
	}
	s.writeResult(req.ID, result)
}

func (s *Server) handleToolsList(req *Request) {
	all := s.registry.All()
	list := make([]MCPTool, 0, len(all))
	for _, t := range all {
		list = append(list, MCPTool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.Schema,
		})
	}
	s.writeResult(req.ID, map[string]any{"tools": list})
}

func (s *Server) handleToolsCall(ctx context.Context, req *Request) {
	var params struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		s.writeError(req.ID, -32602, "invalid params")
		return
	}

	result, err := s.registry.Call(ctx, params.Name, params.Arguments)
	if err != nil {
		// Unknown tools and schema rejections abort before execution and
		// surface as protocol errors. Execution failures stay in-band so
		// the client sees the failure text as tool output.
		if errors.Is(err, types.ErrInvalidInput) {
			s.writeError(req.ID, -32602, err.Error())
			return
		}
		s.writeResult(req.ID, ToolCallResult{
			Content: []ContentItem{{Type: "text", Text: err.Error()}},
			IsError: true,
		})
		return
	}

	text, err := json.Marshal(result)
	if err != nil {
		s.writeError(req.ID, -32603, fmt.Sprintf("encoding result: %v", err))
		return
	}

	s.writeResult(req.ID, ToolCallResult{
		Content: []ContentItem{{Type: "text", Text: string(text)}},
	})
}

func (s *Server) handleResourcesList(req *Request) {
	s.writeResult(req.ID, map[string]any{"resources": []Resource{}})
}

func (s *Server) writeResult(id int64, result any) {
	data, _ := json.Marshal(result)
	s.write(Response{JSONRPC: jsonRPCVersion, ID: id, Result: data})
}

func (s *Server) writeError(id int64, code int, message string) {
	s.write(Response{JSONRPC: jsonRPCVersion, ID: id, Error: &RPCError{Code: code, Message: message}})
}

func (s *Server) write(resp Response) {
	out, _ := json.Marshal(resp)
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	fmt.Fprintf(s.writer, "%s\n", out)
}
