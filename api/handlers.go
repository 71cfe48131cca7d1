package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"mcpnvidia/engine"
	"mcpnvidia/search"
)

type searchRequest struct {
	Query               string   `json:"query"`
	Domains             []string `json:"domains"`
	MaxResultsPerDomain int      `json:"max_results_per_domain"`
	MaxResults          int      `json:"max_results"`
	ContentType         string   `json:"content_type"`
	SortBy              string   `json:"sort_by"`
}

type discoverRequest struct {
	ContentType string `json:"content_type"`
	Topic       string `json:"topic"`
	MaxResults  int    `json:"max_results"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"domains": s.searcher.Domains(),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, search.NewInputError("body", "invalid request body"))
		return
	}
	s.runSearch(w, r, req)
}

func (s *Server) handleSearchQuery(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	req := searchRequest{
		Query:       v.Get("query"),
		ContentType: v.Get("content_type"),
		SortBy:      v.Get("sort_by"),
	}
	if req.Query == "" {
		req.Query = v.Get("q")
	}
	for _, d := range v["domains"] {
		for _, part := range strings.Split(d, ",") {
			if part = strings.TrimSpace(part); part != "" {
				req.Domains = append(req.Domains, part)
			}
		}
	}

	var err error
	if req.MaxResultsPerDomain, err = intParam(v.Get("max_results_per_domain"), "max_results_per_domain"); err != nil {
		s.writeError(w, err)
		return
	}
	if req.MaxResults, err = intParam(v.Get("max_results"), "max_results"); err != nil {
		s.writeError(w, err)
		return
	}
	s.runSearch(w, r, req)
}

func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, req searchRequest) {
	q := search.Query{
		Text:                req.Query,
		Domains:             req.Domains,
		MaxResultsPerDomain: req.MaxResultsPerDomain,
		MaxResults:          req.MaxResults,
		Sort:                search.SortMode(req.SortBy),
	}
	if req.ContentType != "" {
		ct, err := search.ParseContentType(req.ContentType)
		if err != nil {
			s.writeError(w, err)
			return
		}
		q.ContentType = ct
	}

	rs, err := s.searcher.Search(r.Context(), q)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, search.NewResponse(rs, q.ContentType))
}

func (s *Server) handleDiscover(w http.ResponseWriter, r *http.Request) {
	var req discoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, search.NewInputError("body", "invalid request body"))
		return
	}
	s.runDiscover(w, r, req)
}

func (s *Server) handleDiscoverQuery(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	maxResults, err := intParam(v.Get("max_results"), "max_results")
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.runDiscover(w, r, discoverRequest{
		ContentType: v.Get("content_type"),
		Topic:       v.Get("topic"),
		MaxResults:  maxResults,
	})
}

func (s *Server) runDiscover(w http.ResponseWriter, r *http.Request, req discoverRequest) {
	rs, err := s.searcher.Discover(r.Context(), engine.DiscoverRequest{
		ContentType: req.ContentType,
		Topic:       req.Topic,
		MaxResults:  req.MaxResults,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	ct, _ := search.ParseContentType(req.ContentType)
	writeJSON(w, http.StatusOK, search.NewResponse(rs, ct))
}

func intParam(raw, field string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, search.NewInputError(field, field+" must be an integer")
	}
	return n, nil
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	var inputErr *search.InputError
	if !errors.As(err, &inputErr) {
		status = http.StatusInternalServerError
		s.logger.Error("Request failed", zap.Error(err))
	}
	writeJSON(w, status, search.NewErrorResponse(err))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
