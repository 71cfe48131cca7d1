package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"mcpnvidia/crawler"
	"mcpnvidia/enrich"
	"mcpnvidia/metrics"
	"mcpnvidia/pkg/throttle"
	"mcpnvidia/relevance"
	"mcpnvidia/search"
)

// Fetcher retrieves one page. *crawler.Fetcher is the production implementation.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*crawler.Page, error)
}

type Config struct {
	Backend   search.Backend
	Fetcher   Fetcher
	Validator *crawler.DomainValidator
	Enricher  *enrich.Enricher
	Scorer    relevance.Scorer
	Extractor search.KeywordExtractor
	Gate      *throttle.Gate
	Metrics   *metrics.Metrics
	Logger    *zap.Logger

	// Domains are searched when a request names none.
	Domains                 []string
	Deadline                time.Duration
	DefaultResultsPerDomain int
	MaxResultsPerDomain     int
	Observer                Observer
}

// Engine runs search orchestrations. It is safe for concurrent use; the gate and
// the backend's rate limiter are the only state shared between runs.
type Engine struct {
	backend   search.Backend
	fetcher   Fetcher
	validator *crawler.DomainValidator
	enricher  *enrich.Enricher
	scorer    relevance.Scorer
	extractor search.KeywordExtractor
	gate      *throttle.Gate
	metrics   *metrics.Metrics
	logger    *zap.Logger

	domains          []search.Domain
	deadline         time.Duration
	defaultPerDomain int
	maxPerDomain     int
	observer         Observer
}

func New(cfg Config) (*Engine, error) {
	if cfg.Backend == nil || cfg.Fetcher == nil || cfg.Validator == nil {
		return nil, errors.New("engine: backend, fetcher and validator are required")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Extractor == nil {
		cfg.Extractor = search.NewSimpleKeywordExtractor()
	}
	if cfg.Scorer == nil {
		cfg.Scorer = relevance.NewKeywordScorer(cfg.Extractor, nil)
	}
	if cfg.Enricher == nil {
		cfg.Enricher = enrich.NewEnricher(cfg.Logger)
	}
	if cfg.Gate == nil {
		cfg.Gate = throttle.NewGate(5)
	}
	if cfg.Deadline <= 0 {
		cfg.Deadline = 25 * time.Second
	}
	if cfg.DefaultResultsPerDomain <= 0 {
		cfg.DefaultResultsPerDomain = search.DefaultResultsPerDomain
	}
	if cfg.MaxResultsPerDomain <= 0 || cfg.MaxResultsPerDomain > search.MaxResultsPerDomain {
		cfg.MaxResultsPerDomain = search.MaxResultsPerDomain
	}

	e := &Engine{
		backend:          cfg.Backend,
		fetcher:          cfg.Fetcher,
		validator:        cfg.Validator,
		enricher:         cfg.Enricher,
		scorer:           cfg.Scorer,
		extractor:        cfg.Extractor,
		gate:             cfg.Gate,
		metrics:          cfg.Metrics,
		logger:           cfg.Logger,
		deadline:         cfg.Deadline,
		defaultPerDomain: min(cfg.DefaultResultsPerDomain, cfg.MaxResultsPerDomain),
		maxPerDomain:     cfg.MaxResultsPerDomain,
		observer:         cfg.Observer,
	}

	seen := make(map[string]bool)
	for _, raw := range cfg.Domains {
		d, err := e.validator.Validate(raw)
		if err != nil {
			e.logger.Warn("Dropping configured domain outside the allow-list",
				zap.String("domain", raw),
				zap.Error(err))
			continue
		}
		if !seen[d.Host] {
			seen[d.Host] = true
			e.domains = append(e.domains, d)
		}
	}
	if len(e.domains) == 0 {
		return nil, errors.New("engine: no configured domain passed validation")
	}
	return e, nil
}

// Domains returns the default domain hosts in dispatch order.
func (e *Engine) Domains() []string {
	out := make([]string, len(e.domains))
	for i, d := range e.domains {
		out[i] = d.Host
	}
	return out
}

// Search validates q, fans it out to the requested domains (or the defaults) and
// assembles the results. The only error it returns is an *search.InputError.
func (e *Engine) Search(ctx context.Context, q search.Query) (search.ResultSet, error) {
	r := e.newRun(ctx, "search")
	r.enter(ValidatingInput)

	if q.MaxResultsPerDomain == 0 {
		q.MaxResultsPerDomain = e.defaultPerDomain
	}
	q, err := q.Normalize()
	if err != nil {
		return r.fail(err)
	}
	q.MaxResultsPerDomain = min(q.MaxResultsPerDomain, e.maxPerDomain)

	domains, err := e.resolveDomains(q.Domains)
	if err != nil {
		return r.fail(err)
	}

	return e.execute(r, q, q, domains, q.MaxResultsPerDomain), nil
}

func (e *Engine) resolveDomains(requested []string) ([]search.Domain, error) {
	if len(requested) == 0 {
		return e.domains, nil
	}
	seen := make(map[string]bool, len(requested))
	out := make([]search.Domain, 0, len(requested))
	for _, raw := range requested {
		d, err := e.validator.Validate(raw)
		if err != nil {
			return nil, search.NewInputError("domains", fmt.Sprintf("invalid domain: %s", strings.TrimSpace(raw)))
		}
		if !seen[d.Host] {
			seen[d.Host] = true
			out = append(out, d)
		}
	}
	return out, nil
}

// execute runs the Dispatching, Collecting and Assembling states. scoreQuery is
// what hits are scored and highlighted against; backendQuery is what is sent to
// the search provider.
func (e *Engine) execute(r *run, scoreQuery, backendQuery search.Query, domains []search.Domain, limit int) search.ResultSet {
	ctx, cancel := context.WithTimeout(r.ctx, e.deadline)
	defer cancel()

	terms := e.extractor.ExtractKeywords(scoreQuery.Text)
	if len(terms) == 0 {
		terms = strings.Fields(strings.ToLower(scoreQuery.Text))
	}

	r.enter(Dispatching)
	perDomain := make([][]search.ScoredHit, len(domains))
	var wg sync.WaitGroup
	for i, d := range domains {
		wg.Add(1)
		go func() {
			defer wg.Done()
			perDomain[i] = e.searchDomain(ctx, r.logger, i, d, scoreQuery, backendQuery, terms, limit)
		}()
	}

	r.enter(Collecting)
	wg.Wait()
	partial := ctx.Err() != nil

	r.enter(Assembling)
	var all []search.ScoredHit
	for _, hits := range perDomain {
		all = append(all, hits...)
	}
	rs := search.Assemble(all, scoreQuery.Sort, scoreQuery.MaxResultsPerDomain, scoreQuery.MaxResults, scoreQuery.ContentType)
	rs.Query = scoreQuery.Text
	rs.Partial = partial
	rs.DomainsSearched = make([]string, len(domains))
	for i, d := range domains {
		rs.DomainsSearched[i] = d.Host
	}

	r.enter(Done)
	elapsed := time.Since(r.start)
	e.metrics.Search(r.operation, elapsed, rs.TotalReturned, partial)
	r.logger.Info("Search completed",
		zap.String("query", scoreQuery.Text),
		zap.Int("domains", len(domains)),
		zap.Int("considered", rs.TotalConsidered),
		zap.Int("returned", rs.TotalReturned),
		zap.Bool("partial", partial),
		zap.Duration("duration", elapsed))
	return rs
}

// searchDomain is one task: backend, then fetch, enrich and score for each hit.
// Any failure shrinks or degrades its own output and never reaches the caller.
func (e *Engine) searchDomain(ctx context.Context, logger *zap.Logger, order int, d search.Domain, scoreQuery, backendQuery search.Query, terms []string, limit int) []search.ScoredHit {
	lease, err := e.gate.Acquire(ctx)
	if err != nil {
		logger.Debug("Deadline reached before a slot was free", zap.String("domain", d.Host))
		return nil
	}
	defer lease.Release()

	ctx = crawler.WithDomain(ctx, d.Host)
	logger = logger.With(zap.String("domain", d.Host))

	hits, err := e.backend.Search(ctx, backendQuery, d, limit)
	if err != nil {
		e.metrics.BackendRequest(false)
		logger.Warn("Backend search failed", zap.Error(err))
		return nil
	}
	e.metrics.BackendRequest(true)

	out := make([]search.ScoredHit, 0, len(hits))
	for _, hit := range hits {
		hit.DomainOrder = order
		enriched := e.enrichHit(ctx, logger, hit, terms)
		out = append(out, search.ScoredHit{
			EnrichedHit: enriched,
			Score:       e.scorer.Score(enriched, scoreQuery),
		})
	}
	return out
}

func (e *Engine) enrichHit(ctx context.Context, logger *zap.Logger, hit search.RawHit, terms []string) search.EnrichedHit {
	page, err := e.fetcher.Fetch(ctx, hit.URL)
	if err != nil {
		outcome := "error"
		var fetchErr *search.FetchError
		if errors.As(err, &fetchErr) {
			outcome = string(fetchErr.Kind)
		}
		e.metrics.Fetch(outcome)
		logger.Debug("Fetch failed, keeping degraded hit",
			zap.String("url", hit.URL),
			zap.String("outcome", outcome),
			zap.Error(err))
		return e.enricher.Degraded(hit)
	}
	e.metrics.Fetch("ok")

	finalURL := hit.URL
	if page.FinalURL != nil {
		finalURL = page.FinalURL.String()
	}
	return e.enricher.Enrich(ctx, hit, page.Body, finalURL, terms)
}

// run carries the per-request identity and state of one orchestration.
type run struct {
	ctx       context.Context
	id        string
	operation string
	start     time.Time
	state     State
	logger    *zap.Logger
	observer  Observer
}

func (e *Engine) newRun(ctx context.Context, operation string) *run {
	id := crawler.GetRequestID(ctx)
	if id == "" {
		id = crawler.NewRequestID()
		ctx = crawler.WithRequestID(ctx, id)
	}
	r := &run{
		ctx:       ctx,
		id:        id,
		operation: operation,
		start:     time.Now(),
		logger:    crawler.GetContextLogger(ctx, e.logger).With(zap.String("operation", operation)),
		observer:  e.observer,
	}
	r.enter(Idle)
	return r
}

func (r *run) enter(s State) {
	r.logger.Debug("State transition",
		zap.Stringer("from", r.state),
		zap.Stringer("to", s))
	r.state = s
	if r.observer != nil {
		r.observer(r.id, s)
	}
}

func (r *run) fail(err error) (search.ResultSet, error) {
	r.enter(Failed)
	r.logger.Info("Rejected request", zap.Error(err))
	return search.ResultSet{}, err
}
