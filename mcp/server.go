// Package mcp serves the search engine to MCP clients as newline-delimited
// JSON-RPC 2.0 over a pair of streams.
package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"mcpnvidia/engine"
	"mcpnvidia/search"
)

// Searcher is the engine surface the tools call.
type Searcher interface {
	Search(ctx context.Context, q search.Query) (search.ResultSet, error)
	Discover(ctx context.Context, req engine.DiscoverRequest) (search.ResultSet, error)
	Domains() []string
}

type Server struct {
	searcher Searcher
	logger   *zap.Logger
	name     string
	version  string
}

func NewServer(searcher Searcher, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		searcher: searcher,
		logger:   logger,
		name:     "mcp-nvidia",
		version:  version,
	}
}

// Serve reads one request per line from r and writes responses to w until r is
// exhausted or ctx is cancelled. Requests are handled concurrently, so responses
// may be written in a different order than the requests arrived.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		reader := bufio.NewReader(r)
		for {
			line, err := reader.ReadBytes('\n')
			if line = bytes.TrimSpace(line); len(line) > 0 {
				select {
				case lines <- line:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					readErr <- err
				}
				return
			}
		}
	}()

	out := &encoder{enc: json.NewEncoder(w)}
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					return fmt.Errorf("read request: %w", err)
				default:
					return nil
				}
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				if resp := s.handleLine(ctx, line); resp != nil {
					if err := out.write(resp); err != nil {
						s.logger.Error("Failed to write response", zap.Error(err))
					}
				}
			}()
		}
	}
}

type encoder struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func (e *encoder) write(resp *Response) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enc.Encode(resp)
}

func (s *Server) handleLine(ctx context.Context, line []byte) *Response {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		s.logger.Warn("Failed to parse request", zap.Error(err))
		return errorResponse(nil, ParseError, "Failed to parse request")
	}
	if req.JSONRPC != jsonRPCVersion || req.Method == "" {
		if req.ID == nil {
			return nil
		}
		return errorResponse(req.ID, InvalidRequest, "Invalid request")
	}

	resp := s.HandleRequest(ctx, &req)
	// notifications never get a response
	if req.ID == nil {
		return nil
	}
	return resp
}

// HandleRequest processes one request. It returns nil when there is nothing to send.
func (s *Server) HandleRequest(ctx context.Context, req *Request) (resp *Response) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Request handler panicked",
				zap.String("method", req.Method),
				zap.Any("panic", r))
			resp = errorResponse(req.ID, InternalError, "Internal error")
		}
	}()

	s.logger.Debug("Handling request", zap.String("method", req.Method))

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req.ID)
	case "notifications/initialized", "notifications/cancelled":
		return nil
	case "ping":
		return successResponse(req.ID, map[string]any{})
	case "tools/list":
		return successResponse(req.ID, map[string]any{"tools": getAllTools(s.searcher.Domains())})
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	}

	if req.ID == nil {
		return nil
	}
	return errorResponse(req.ID, MethodNotFound, "Method not found: "+req.Method)
}

func (s *Server) handleInitialize(id any) *Response {
	return successResponse(id, map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities": map[string]any{
			"tools": map[string]any{},
		},
		"serverInfo": map[string]any{
			"name":    s.name,
			"version": s.version,
		},
	})
}

func (s *Server) handleToolsCall(ctx context.Context, req *Request) *Response {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, InvalidParams, "Invalid parameters")
	}
	if len(params.Arguments) == 0 {
		params.Arguments = json.RawMessage(`{}`)
	}

	switch params.Name {
	case toolSearch:
		return s.handleSearch(ctx, req.ID, params.Arguments)
	case toolDiscover:
		return s.handleDiscover(ctx, req.ID, params.Arguments)
	}
	return errorResponse(req.ID, MethodNotFound, "Unknown tool: "+params.Name)
}

func successResponse(id any, result any) *Response {
	raw, err := json.Marshal(result)
	if err != nil {
		return errorResponse(id, InternalError, fmt.Sprintf("Failed to marshal result: %v", err))
	}
	return &Response{
		JSONRPC: jsonRPCVersion,
		ID:      id,
		Result:  raw,
	}
}

func errorResponse(id any, code int, message string) *Response {
	return &Response{
		JSONRPC: jsonRPCVersion,
		ID:      id,
		Error: &ErrorObject{
			Code:    code,
			Message: message,
		},
	}
}
