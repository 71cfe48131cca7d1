package search

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryNormalize(t *testing.T) {
	tests := []struct {
		name    string
		in      Query
		want    Query
		wantErr string
	}{
		{
			name: "defaults",
			in:   Query{Text: "  cuda streams "},
			want: Query{Text: "cuda streams", Domains: []string{}, MaxResultsPerDomain: 3, MaxResults: 50, Sort: SortRelevance},
		},
		{
			name: "caps clamped",
			in:   Query{Text: "tensorrt", MaxResultsPerDomain: 25, MaxResults: 500, Sort: SortDate},
			want: Query{Text: "tensorrt", Domains: []string{}, MaxResultsPerDomain: 10, MaxResults: 50, Sort: SortDate},
		},
		{name: "empty", in: Query{Text: "   "}, wantErr: "query is required"},
		{name: "too long", in: Query{Text: strings.Repeat("a", 501)}, wantErr: "query too long (max 500 characters)"},
		{name: "negative cap", in: Query{Text: "x", MaxResultsPerDomain: -1}, wantErr: "result limits must be positive"},
		{name: "bad sort", in: Query{Text: "x", Sort: "random"}, wantErr: "unknown sort mode: random"},
		{name: "bad content type", in: Query{Text: "x", ContentType: "podcast"}, wantErr: "unknown content type: podcast"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.in.Normalize()
			if tt.wantErr != "" {
				var inputErr *InputError
				require.True(t, errors.As(err, &inputErr), "expected *InputError, got %v", err)
				assert.Equal(t, tt.wantErr, inputErr.Message)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQueryNormalize_ExactlyMaxLength(t *testing.T) {
	_, err := Query{Text: strings.Repeat("é", MaxQueryLength)}.Normalize()
	assert.NoError(t, err)
}

func TestParseContentType(t *testing.T) {
	tests := []struct {
		in   string
		want ContentType
	}{
		{"tutorial", ContentTutorial},
		{"Blog", ContentBlogPost},
		{"forum", ContentForumDiscussion},
		{"paper", ContentResearchPaper},
		{"webinar", ContentVideo},
		{"docs", ContentDocumentation},
		{"research paper", ContentResearchPaper},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseContentType(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseContentType("podcast")
	assert.EqualError(t, err, "invalid content type: podcast")
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "query is required", Sanitize(NewInputError("query", "query is required")))
	assert.Equal(t, genericErrorMessage, Sanitize(errors.New("dial tcp 10.0.0.1:443: connection refused")))
	assert.Equal(t, genericErrorMessage, Sanitize(&BackendError{Domain: "docs.nvidia.com", StatusCode: 500}))
}

func TestIsAdURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://duckduckgo.com/y.js?ad_domain=nvidia.com", true},
		{"https://duckduckgo.com/y.js?u3=abc", true},
		{"https://example.com/page?ad_provider=bing", true},
		{"https://example.com/page?adurl=x", true},
		{"https://developer.nvidia.com/cuda-toolkit", false},
		{"https://docs.nvidia.com/cuda/?ref=adclicker", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAdURL(tt.url))
		})
	}
}
