package search

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxQueryLength          = 500
	DefaultResultsPerDomain = 3
	MaxResultsPerDomain     = 10
	MaxTotalResults         = 50
)

// Domain is a validated origin. Hosts are lower-cased and carry no trailing dot.
type Domain struct {
	Host string
	Port string
}

// Origin returns the https origin of the domain.
func (d Domain) Origin() string {
	if d.Port != "" {
		return "https://" + d.Host + ":" + d.Port
	}
	return "https://" + d.Host
}

func (d Domain) String() string {
	return d.Host
}

// Query is an immutable search request once Normalize has accepted it.
type Query struct {
	Text                string
	Domains             []string
	MaxResultsPerDomain int
	MaxResults          int
	ContentType         ContentType
	Sort                SortMode
}

// Normalize trims the text, applies defaults and clamps the caps. Empty or
// over-long text and negative caps are rejected with an *InputError.
func (q Query) Normalize() (Query, error) {
	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" {
		return Query{}, NewInputError("query", "query is required")
	}
	if utf8.RuneCountInString(q.Text) > MaxQueryLength {
		return Query{}, NewInputError("query", "query too long (max 500 characters)")
	}
	if q.MaxResultsPerDomain < 0 || q.MaxResults < 0 {
		return Query{}, NewInputError("max_results", "result limits must be positive")
	}

	if q.MaxResultsPerDomain == 0 {
		q.MaxResultsPerDomain = DefaultResultsPerDomain
	}
	q.MaxResultsPerDomain = min(q.MaxResultsPerDomain, MaxResultsPerDomain)
	if q.MaxResults == 0 {
		q.MaxResults = MaxTotalResults
	}
	q.MaxResults = min(q.MaxResults, MaxTotalResults)

	if q.Sort == "" {
		q.Sort = SortRelevance
	}
	if !q.Sort.Valid() {
		return Query{}, NewInputError("sort", "unknown sort mode: "+string(q.Sort))
	}
	if q.ContentType != "" && !q.ContentType.Valid() {
		return Query{}, NewInputError("content_type", "unknown content type: "+string(q.ContentType))
	}

	domains := make([]string, len(q.Domains))
	copy(domains, q.Domains)
	q.Domains = domains

	return q, nil
}

// RawHit is a single candidate returned by the search backend.
type RawHit struct {
	Title   string
	URL     string
	Snippet string
	Domain  string
	// Rank is the zero-based position in the backend response.
	Rank int
	// DomainOrder is the dispatch index of the domain the hit came from.
	DomainOrder int
}

// Metadata is populated only for pages that were fetched successfully.
type Metadata struct {
	Author     string `json:"author,omitempty"`
	WordCount  int    `json:"word_count"`
	HasCode    bool   `json:"has_code"`
	HasVideo   bool   `json:"has_video"`
	HasImages  bool   `json:"has_images"`
	ImageCount int    `json:"image_count"`
}

// EnrichedHit is a RawHit plus whatever the enricher managed to extract.
type EnrichedHit struct {
	RawHit
	Snippet       string
	PublishedDate *time.Time
	ContentType   ContentType
	Metadata      *Metadata
}

// ScoredHit is an EnrichedHit with its relevance score in [0,100].
type ScoredHit struct {
	EnrichedHit
	Score int
}

// ResultSet is the final, sorted and truncated output of one orchestration.
type ResultSet struct {
	Query           string
	Sort            SortMode
	Hits            []ScoredHit
	TotalConsidered int
	TotalReturned   int
	// DomainsSearched lists the hosts a task was dispatched for.
	DomainsSearched []string
	// Partial is set when the orchestration deadline expired before all tasks finished cleanly.
	Partial bool
}

// Backend issues a single domain-scoped query to a search provider.
type Backend interface {
	Search(ctx context.Context, query Query, domain Domain, limit int) ([]RawHit, error)
}
