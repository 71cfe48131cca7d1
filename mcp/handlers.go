package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"mcpnvidia/engine"
	"mcpnvidia/search"
)

type searchArgs struct {
	Query               string   `json:"query"`
	Domains             []string `json:"domains"`
	MaxResultsPerDomain int      `json:"max_results_per_domain"`
	MaxResults          int      `json:"max_results"`
	ContentType         string   `json:"content_type"`
	SortBy              string   `json:"sort_by"`
}

type discoverArgs struct {
	ContentType string `json:"content_type"`
	Topic       string `json:"topic"`
	MaxResults  int    `json:"max_results"`
}

func (s *Server) handleSearch(ctx context.Context, id any, arguments json.RawMessage) *Response {
	var args searchArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return s.invalidArguments(id, toolSearch, err)
	}

	q := search.Query{
		Text:                args.Query,
		Domains:             args.Domains,
		MaxResultsPerDomain: args.MaxResultsPerDomain,
		MaxResults:          args.MaxResults,
		Sort:                search.SortMode(args.SortBy),
	}
	if args.ContentType != "" {
		ct, err := search.ParseContentType(args.ContentType)
		if err != nil {
			return s.toolError(id, err)
		}
		q.ContentType = ct
	}

	rs, err := s.searcher.Search(ctx, q)
	if err != nil {
		return s.toolError(id, err)
	}
	return s.toolResult(id, rs, q.ContentType)
}

func (s *Server) handleDiscover(ctx context.Context, id any, arguments json.RawMessage) *Response {
	var args discoverArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return s.invalidArguments(id, toolDiscover, err)
	}

	rs, err := s.searcher.Discover(ctx, engine.DiscoverRequest{
		ContentType: args.ContentType,
		Topic:       args.Topic,
		MaxResults:  args.MaxResults,
	})
	if err != nil {
		return s.toolError(id, err)
	}
	ct, _ := search.ParseContentType(args.ContentType)
	return s.toolResult(id, rs, ct)
}

// toolResult carries the structured response as JSON text first, followed by
// the human-readable rendering.
func (s *Server) toolResult(id any, rs search.ResultSet, ct search.ContentType) *Response {
	payload, err := json.Marshal(search.NewResponse(rs, ct))
	if err != nil {
		return errorResponse(id, InternalError, "Failed to marshal result")
	}
	return successResponse(id, ToolResult{
		Content: []Content{
			{Type: "text", Text: string(payload)},
			{Type: "text", Text: search.FormatText(rs)},
		},
	})
}

func (s *Server) toolError(id any, err error) *Response {
	var inputErr *search.InputError
	if !errors.As(err, &inputErr) {
		s.logger.Error("Tool call failed", zap.Error(err))
	}
	payload, mErr := json.Marshal(search.NewErrorResponse(err))
	if mErr != nil {
		return errorResponse(id, InternalError, "Failed to marshal result")
	}
	return successResponse(id, ToolResult{
		Content: []Content{{Type: "text", Text: string(payload)}},
		IsError: true,
	})
}

// invalidArguments keeps decoder details in the log.
func (s *Server) invalidArguments(id any, tool string, err error) *Response {
	s.logger.Debug("Rejected tool arguments", zap.String("tool", tool), zap.Error(err))
	return errorResponse(id, InvalidParams, "Invalid arguments for "+tool)
}
