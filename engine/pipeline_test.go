package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mcpnvidia/crawler"
	"mcpnvidia/metrics"
	"mcpnvidia/pkg/throttle"
	"mcpnvidia/search"
)

const streamsPage = `<html><head><title>%s</title>
<meta name="author" content="Jane Doe">
<meta property="article:published_time" content="2024-03-05T10:00:00Z">
</head><body><article>
<h1>%s</h1>
<p>CUDA streams let independent kernels and memory copies overlap on the GPU.
Work issued to different streams may run concurrently, which keeps the copy engines busy.</p>
<pre><code>cudaStreamCreate(&amp;stream);</code></pre>
</article></body></html>`

// pipelineFixture runs the real provider adapter and fetcher against local servers.
type pipelineFixture struct {
	pages   *httptest.Server
	backend *httptest.Server
	engine  *Engine
	metrics *metrics.Metrics
}

func newPipelineFixture(t *testing.T, titles []string, slow map[int]bool) *pipelineFixture {
	t.Helper()
	f := &pipelineFixture{metrics: metrics.New()}

	f.pages = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var n int
		if _, err := fmt.Sscanf(r.URL.Path, "/post/%d", &n); err != nil || n < 1 || n > len(titles) {
			http.NotFound(w, r)
			return
		}
		if slow[n] {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, streamsPage, titles[n-1], titles[n-1])
	}))
	t.Cleanup(f.pages.Close)

	f.backend = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Query().Get("q"), "site:127.0.0.1 "))
		results := make([]map[string]any, len(titles))
		for i, title := range titles {
			results[i] = map[string]any{
				"position": i + 1,
				"title":    title,
				"link":     fmt.Sprintf("%s/post/%d", f.pages.URL, i+1),
				"snippet":  "Provider snippet about " + title,
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"organic_results": results})
	}))
	t.Cleanup(f.backend.Close)

	logger := zap.NewNop()
	validator, err := crawler.NewDomainValidator([]string{"127.0.0.1"})
	require.NoError(t, err)

	fetchCfg := crawler.DefaultConfig()
	fetchCfg.BlockPrivateNetworks = false
	fetchCfg.AllowPlainHTTP = true
	fetchCfg.Timeout = 200 * time.Millisecond
	fetcher, err := crawler.NewFetcher(fetchCfg, validator, logger)
	require.NoError(t, err)

	backend := search.NewSerpApiSearchEngine(search.SerpApiConfig{
		APIKey:  "test",
		BaseURL: f.backend.URL,
	}, throttle.NewLimiter(time.Millisecond), logger)

	f.engine, err = New(Config{
		Backend:   backend,
		Fetcher:   fetcher,
		Validator: validator,
		Metrics:   f.metrics,
		Logger:    logger,
		Domains:   []string{f.pages.URL},
		Deadline:  3 * time.Second,
	})
	require.NoError(t, err)
	return f
}

func TestPipeline_FetchTimeoutDegradesOneHit(t *testing.T) {
	titles := []string{"CUDA Streams Best Practices", "CUDA Streams and Events", "Overlapping Transfers with CUDA Streams"}
	f := newPipelineFixture(t, titles, map[int]bool{2: true})

	start := time.Now()
	rs, err := f.engine.Search(context.Background(), search.Query{Text: "CUDA streams"})
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 3*time.Second)
	assert.False(t, rs.Partial)
	require.Len(t, rs.Hits, 3)

	byURL := map[string]search.ScoredHit{}
	for _, h := range rs.Hits {
		byURL[h.URL] = h
		assert.Equal(t, "127.0.0.1", h.Domain)
		assert.GreaterOrEqual(t, h.Score, 0)
		assert.LessOrEqual(t, h.Score, 100)
	}

	degraded, ok := byURL[f.pages.URL+"/post/2"]
	require.True(t, ok)
	assert.Equal(t, "CUDA Streams and Events", degraded.Title)
	assert.Empty(t, degraded.Snippet)
	assert.Nil(t, degraded.Metadata)

	for _, n := range []int{1, 3} {
		h := byURL[fmt.Sprintf("%s/post/%d", f.pages.URL, n)]
		require.NotNil(t, h.Metadata, "hit %d", n)
		assert.True(t, h.Metadata.HasCode)
		assert.Equal(t, "Jane Doe", h.Metadata.Author)
		assert.NotEmpty(t, h.Snippet)
		require.NotNil(t, h.PublishedDate)
		assert.Equal(t, "2024-03-05", h.PublishedDate.Format(time.DateOnly))
	}

	expected := `
# HELP mcp_nvidia_fetch_total Page fetches by outcome
# TYPE mcp_nvidia_fetch_total counter
mcp_nvidia_fetch_total{outcome="ok"} 2
mcp_nvidia_fetch_total{outcome="timeout"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(f.metrics.Registry(), strings.NewReader(expected), "mcp_nvidia_fetch_total"))
}

func TestPipeline_DiscoverFiltersByContentType(t *testing.T) {
	titles := []string{"CUDA Streams Tutorial", "CUDA Streams Release Notes"}
	f := newPipelineFixture(t, titles, nil)

	rs, err := f.engine.Discover(context.Background(), DiscoverRequest{ContentType: "tutorial", Topic: "CUDA streams"})
	require.NoError(t, err)

	require.Len(t, rs.Hits, 1)
	assert.Equal(t, "CUDA Streams Tutorial", rs.Hits[0].Title)
	assert.Equal(t, search.ContentTutorial, rs.Hits[0].ContentType)
	assert.Equal(t, 1, rs.TotalConsidered)
}
