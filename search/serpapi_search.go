package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"mcpnvidia/pkg/throttle"
)

const DefaultSerpApiURL = "https://serpapi.com/search"

// SerpApiSearchEngine is the Backend backed by SerpAPI. Every call waits on the
// shared limiter first.
type SerpApiSearchEngine struct {
	client  *http.Client
	apiKey  string
	baseURL string
	engine  string
	limiter *throttle.Limiter
	logger  *zap.Logger
}

type serpApiResponse struct {
	OrganicResults []struct {
		Position int    `json:"position"`
		Title    string `json:"title"`
		Link     string `json:"link"`
		Snippet  string `json:"snippet"`
	} `json:"organic_results"`
	SearchMetadata struct {
		Status string `json:"status"`
	} `json:"search_metadata"`
	Error string `json:"error"`
}

type SerpApiConfig struct {
	APIKey  string
	BaseURL string
	// Engine is "google" or "duckduckgo".
	Engine  string
	Timeout time.Duration
}

func NewSerpApiSearchEngine(cfg SerpApiConfig, limiter *throttle.Limiter, logger *zap.Logger) *SerpApiSearchEngine {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultSerpApiURL
	}
	if cfg.Engine == "" {
		cfg.Engine = "google"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &SerpApiSearchEngine{
		client:  &http.Client{Timeout: cfg.Timeout},
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		engine:  cfg.Engine,
		limiter: limiter,
		logger:  logger,
	}
}

// Search issues one site-restricted query for domain. Hits outside the domain and
// advertising links are dropped.
func (s *SerpApiSearchEngine) Search(ctx context.Context, query Query, domain Domain, limit int) ([]RawHit, error) {
	if _, err := s.limiter.Acquire(ctx); err != nil {
		return nil, &BackendError{Domain: domain.Host, Err: err}
	}

	params := url.Values{}
	params.Set("engine", s.engine)
	params.Set("q", "site:"+domain.Host+" "+query.Text)
	params.Set("api_key", s.apiKey)
	if s.engine == "google" {
		params.Set("num", strconv.Itoa(limit))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &BackendError{Domain: domain.Host, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, &BackendError{Domain: domain.Host, Err: fmt.Errorf("failed to make request: %w", redactURLError(err))}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &BackendError{Domain: domain.Host, StatusCode: resp.StatusCode}
	}

	var searchResp serpApiResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, &BackendError{Domain: domain.Host, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	if searchResp.Error != "" {
		return nil, &BackendError{Domain: domain.Host, Err: fmt.Errorf("provider error: %s", searchResp.Error)}
	}
	if status := searchResp.SearchMetadata.Status; status != "" && status != "Success" {
		return nil, &BackendError{Domain: domain.Host, Err: fmt.Errorf("search status %q", status)}
	}

	hits := make([]RawHit, 0, min(limit, len(searchResp.OrganicResults)))
	for _, item := range searchResp.OrganicResults {
		if len(hits) >= limit {
			break
		}
		if IsAdURL(item.Link) {
			s.logger.Debug("dropping ad result", zap.String("url", item.Link))
			continue
		}
		if !onDomain(item.Link, domain) {
			s.logger.Debug("dropping off-domain result",
				zap.String("url", item.Link),
				zap.String("domain", domain.Host))
			continue
		}
		hits = append(hits, RawHit{
			Title:   strings.TrimSpace(item.Title),
			URL:     item.Link,
			Snippet: strings.TrimSpace(item.Snippet),
			Domain:  domain.Host,
			Rank:    len(hits),
		})
	}

	return hits, nil
}

// redactURLError hides the api_key query parameter that net/http echoes back
// in transport errors.
func redactURLError(err error) error {
	var uerr *url.Error
	if !errors.As(err, &uerr) {
		return err
	}
	return &url.Error{Op: uerr.Op, URL: redactKey(uerr.URL), Err: uerr.Err}
}

func redactKey(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "[unparseable url]"
	}
	q := u.Query()
	if q.Has("api_key") {
		q.Set("api_key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func onDomain(link string, domain Domain) bool {
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	return host == domain.Host || strings.HasSuffix(host, "."+domain.Host)
}
