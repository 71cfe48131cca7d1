// Package enrich turns fetched pages into enriched hits. Every extraction step is
// independent: a failing step leaves its field empty and the others still run.
package enrich

import (
	"context"
	"net/url"
	"time"

	"go.uber.org/zap"

	"mcpnvidia/crawler"
	"mcpnvidia/search"
)

type Enricher struct {
	logger *zap.Logger
	now    func() time.Time
}

func NewEnricher(logger *zap.Logger) *Enricher {
	return &Enricher{logger: logger, now: time.Now}
}

// Enrich extracts snippet, date, content type and metadata from body. terms are
// the query keywords used to place and highlight the snippet.
func (e *Enricher) Enrich(ctx context.Context, hit search.RawHit, body []byte, pageURL string, terms []string) search.EnrichedHit {
	logger := crawler.GetContextLogger(ctx, e.logger).With(zap.String("url", hit.URL))

	u, err := url.Parse(pageURL)
	if err != nil {
		logger.Debug("Unparsable page URL, enriching from search hit only", zap.Error(err))
		return e.Degraded(hit)
	}

	doc, errs := parseDocument(body, u)
	for _, err := range errs {
		logger.Debug("Extraction step failed", zap.Error(err))
	}

	out := search.EnrichedHit{RawHit: hit}
	video := false

	steps := []struct {
		name string
		run  func()
	}{
		{"date", func() { out.PublishedDate = publishedDate(doc, e.now()) }},
		{"metadata", func() {
			video = hasVideo(doc)
			out.Metadata = extractMetadata(doc, video)
		}},
		{"content_type", func() { out.ContentType = classify(pageSignals(doc, hit, video)) }},
		{"snippet", func() { out.Snippet = buildSnippet(doc.text, hit.Snippet, terms) }},
	}
	for _, step := range steps {
		if err := safely(func() error { step.run(); return nil }); err != nil {
			logger.Debug("Extraction step failed",
				zap.Error(&search.ExtractionError{Step: step.name, Err: err}))
		}
	}

	if out.ContentType == "" {
		out.ContentType = classify(urlSignals(hit.URL, hit.Title))
	}
	return out
}

// Degraded builds the hit kept when the page could not be fetched: title and URL
// survive, snippet and metadata stay empty.
func (e *Enricher) Degraded(hit search.RawHit) search.EnrichedHit {
	return search.EnrichedHit{
		RawHit:      hit,
		ContentType: classify(urlSignals(hit.URL, hit.Title)),
	}
}
