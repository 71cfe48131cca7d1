package crawler

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"mcpnvidia/pkg/egress"
	"mcpnvidia/search"
)

// Page is a fetched HTML document.
type Page struct {
	Body        []byte
	FinalURL    *url.URL
	ContentType string
	// Truncated is set when the body was cut at the configured size limit.
	Truncated bool
}

// Fetcher retrieves allow-listed pages. Every redirect hop is re-validated and
// every connection goes to an address that passed the private network check.
type Fetcher struct {
	collector *colly.Collector
	validator *DomainValidator
	config    *FetcherConfig
	logger    *zap.Logger
}

func NewFetcher(config *FetcherConfig, validator *DomainValidator, logger *zap.Logger) (*Fetcher, error) {
	if config == nil {
		config = DefaultConfig()
	}

	dialer, err := egress.NewDialer(config.ProxyURL, config.Timeout)
	if err != nil {
		return nil, err
	}
	guard := &guardedDialer{
		resolver:     net.DefaultResolver,
		dialer:       dialer,
		blockPrivate: config.BlockPrivateNetworks,
		logger:       logger,
	}

	f := &Fetcher{
		validator: validator,
		config:    config,
		logger:    logger,
	}

	// one extra byte tells a body at the limit from a truncated one
	c := colly.NewCollector(
		colly.UserAgent(config.UserAgent),
		colly.Headers(map[string]string{"Accept": "text/html,application/xhtml+xml;q=0.9,*/*;q=0.1"}),
		colly.MaxBodySize(int(config.MaxBodyBytes+1)),
		colly.AllowURLRevisit(),
	)
	c.WithTransport(&http.Transport{
		DialContext:           guard.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   config.Timeout,
		ResponseHeaderTimeout: config.Timeout,
	})
	c.DisableCookies()
	c.SetRequestTimeout(config.Timeout)
	// the collector shares one http.Client with its clones, so the handler is
	// set once here and reads per-fetch state from the request context
	c.SetRedirectHandler(f.checkRedirect)
	f.collector = c

	return f, nil
}

// Fetch downloads rawURL within the configured timeout. Bodies larger than the
// size limit are truncated, not rejected.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &search.FetchError{Kind: search.FetchSSRF, URL: rawURL, Err: err}
	}
	if strings.EqualFold(u.Scheme, "http") && !f.config.AllowPlainHTTP {
		u.Scheme = "https"
	}
	if err := f.validator.ValidateURL(u); err != nil {
		return nil, &search.FetchError{Kind: search.FetchSSRF, URL: rawURL, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	loops := NewLoopDetector(1)
	loops.IncVisit(u.String())
	ctx = withLoopDetector(ctx, loops)

	var (
		page     *Page
		rejected *search.FetchError
	)
	c := f.collector.Clone()
	c.Context = ctx
	c.OnResponseHeaders(func(r *colly.Response) {
		if r.StatusCode != http.StatusOK {
			rejected = &search.FetchError{
				Kind: search.FetchStatus,
				URL:  rawURL,
				Err:  fmt.Errorf("unexpected status %d", r.StatusCode),
			}
			r.Request.Abort()
			return
		}
		if contentType := r.Headers.Get("Content-Type"); !isHTML(contentType) {
			rejected = &search.FetchError{
				Kind: search.FetchContentType,
				URL:  rawURL,
				Err:  fmt.Errorf("unsupported content type %q", contentType),
			}
			r.Request.Abort()
		}
	})
	c.OnResponse(func(r *colly.Response) {
		page = &Page{
			Body:        r.Body,
			FinalURL:    r.Request.URL,
			ContentType: r.Headers.Get("Content-Type"),
		}
	})

	err = c.Visit(u.String())
	switch {
	case rejected != nil:
		return nil, rejected
	case err != nil:
		return nil, &search.FetchError{Kind: classifyFetchError(err), URL: rawURL, Err: err}
	case page == nil:
		return nil, &search.FetchError{Kind: search.FetchNetwork, URL: rawURL, Err: errors.New("no response")}
	}

	if int64(len(page.Body)) > f.config.MaxBodyBytes {
		page.Body = page.Body[:f.config.MaxBodyBytes]
		page.Truncated = true
		GetContextLogger(ctx, f.logger).Debug("Truncated oversized page",
			zap.String("url", rawURL),
			zap.Int64("limit", f.config.MaxBodyBytes))
	}

	return page, nil
}

func (f *Fetcher) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) > f.config.MaxRedirects {
		return fmt.Errorf("%w: more than %d hops", search.ErrTooManyRedirects, f.config.MaxRedirects)
	}
	if err := f.validator.ValidateURL(req.URL); err != nil {
		GetContextLogger(req.Context(), f.logger).Warn("Blocked redirect",
			zap.String("from", via[len(via)-1].URL.String()),
			zap.String("to", req.URL.String()),
			zap.Error(err))
		return err
	}

	target := req.URL.String()
	if loops := loopDetectorFrom(req.Context()); loops != nil {
		if loops.CheckLoop(target) {
			return fmt.Errorf("%w: %s", search.ErrRedirectLoop, target)
		}
		loops.IncVisit(target)
	}
	return nil
}

func classifyFetchError(err error) search.FetchErrorKind {
	switch {
	case errors.Is(err, search.ErrDomainNotAllowed), errors.Is(err, search.ErrPrivateAddress):
		return search.FetchSSRF
	case errors.Is(err, search.ErrTooManyRedirects), errors.Is(err, search.ErrRedirectLoop):
		return search.FetchRedirectLimit
	case errors.Is(err, context.DeadlineExceeded):
		return search.FetchTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return search.FetchTimeout
	}
	return search.FetchNetwork
}

func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}
