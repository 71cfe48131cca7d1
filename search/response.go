package search

import (
	"errors"
	"fmt"
	"strings"
)

const dateLayout = "2006-01-02"

// HitView is the caller-facing shape of one result.
type HitView struct {
	Title          string    `json:"title"`
	URL            string    `json:"url"`
	Snippet        string    `json:"snippet"`
	Domain         string    `json:"domain"`
	RelevanceScore int       `json:"relevance_score"`
	ContentType    string    `json:"content_type"`
	PublishedDate  string    `json:"published_date,omitempty"`
	Metadata       *Metadata `json:"metadata,omitempty"`
}

type Summary struct {
	TotalConsidered int      `json:"total_considered"`
	TotalReturned   int      `json:"total_returned"`
	DomainsSearched []string `json:"domains_searched"`
	SortBy          string   `json:"sort_by"`
	Partial         bool     `json:"partial,omitempty"`
}

type ErrorView struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Response is the structured payload returned for both operations.
type Response struct {
	Success     bool       `json:"success"`
	Query       string     `json:"query,omitempty"`
	ContentType string     `json:"content_type,omitempty"`
	Results     []HitView  `json:"results,omitempty"`
	Summary     *Summary   `json:"summary,omitempty"`
	Error       *ErrorView `json:"error,omitempty"`
}

// NewResponse shapes a result set for callers.
func NewResponse(rs ResultSet, contentType ContentType) Response {
	views := make([]HitView, 0, len(rs.Hits))
	for _, h := range rs.Hits {
		v := HitView{
			Title:          h.Title,
			URL:            h.URL,
			Snippet:        h.Snippet,
			Domain:         h.Domain,
			RelevanceScore: h.Score,
			ContentType:    string(h.ContentType),
			Metadata:       h.Metadata,
		}
		if h.PublishedDate != nil {
			v.PublishedDate = h.PublishedDate.Format(dateLayout)
		}
		views = append(views, v)
	}

	domains := rs.DomainsSearched
	if domains == nil {
		domains = []string{}
	}
	return Response{
		Success:     true,
		Query:       rs.Query,
		ContentType: string(contentType),
		Results:     views,
		Summary: &Summary{
			TotalConsidered: rs.TotalConsidered,
			TotalReturned:   rs.TotalReturned,
			DomainsSearched: domains,
			SortBy:          string(rs.Sort),
			Partial:         rs.Partial,
		},
	}
}

// NewErrorResponse builds a failure payload carrying only a sanitized message.
func NewErrorResponse(err error) Response {
	kind := "internal_error"
	var inputErr *InputError
	if errors.As(err, &inputErr) {
		kind = "input_error"
	}
	return Response{
		Success: false,
		Error:   &ErrorView{Type: kind, Message: Sanitize(err)},
	}
}

// FormatText renders a result set as a numbered plain text list.
func FormatText(rs ResultSet) string {
	if len(rs.Hits) == 0 {
		return "No results found for query: " + rs.Query
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Search results for: %s\n", rs.Query)
	b.WriteString(strings.Repeat("=", 60))
	b.WriteString("\n")

	for i, h := range rs.Hits {
		title := h.Title
		if title == "" {
			title = "Untitled"
		}
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, title)
		fmt.Fprintf(&b, "   URL: %s\n", h.URL)
		if h.Snippet != "" {
			fmt.Fprintf(&b, "   %s\n", h.Snippet)
		}
		fmt.Fprintf(&b, "   Domain: %s | Score: %d/100 | Type: %s", h.Domain, h.Score, h.ContentType)
		if h.PublishedDate != nil {
			fmt.Fprintf(&b, " | Date: %s", h.PublishedDate.Format(dateLayout))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nShowing %d of %d results", rs.TotalReturned, rs.TotalConsidered)
	if rs.Partial {
		b.WriteString(" (partial: deadline reached)")
	}
	return b.String()
}
