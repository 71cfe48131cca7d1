package mcp

import (
	"strings"

	"mcpnvidia/search"
)

const (
	toolSearch   = "search_nvidia"
	toolDiscover = "discover_nvidia_content"
)

func contentTypeNames() []string {
	names := make([]string, len(search.ContentTypes))
	for i, ct := range search.ContentTypes {
		names[i] = string(ct)
	}
	return names
}

// getAllTools describes the tools offered to the client. domains is the default
// domain list named in the descriptions.
func getAllTools(domains []string) []Tool {
	domainList := strings.Join(domains, ", ")
	return []Tool{
		{
			Name: toolSearch,
			Description: "Search across NVIDIA domains (" + domainList + ") for NVIDIA-specific information. " +
				"Finds documentation, blog posts, news, forum threads and developer resources " +
				"and returns them ranked with snippets, content type, date and page metadata.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "The search query (max 500 characters)",
						"maxLength":   search.MaxQueryLength,
					},
					"domains": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "Optional list of NVIDIA domains to search. If not provided, all default domains are searched.",
					},
					"max_results_per_domain": map[string]any{
						"type":        "integer",
						"description": "Maximum number of results per domain (default: 3, max: 10)",
						"default":     search.DefaultResultsPerDomain,
						"minimum":     1,
						"maximum":     search.MaxResultsPerDomain,
					},
					"max_results": map[string]any{
						"type":        "integer",
						"description": "Maximum number of results in total (max: 50)",
						"minimum":     1,
						"maximum":     search.MaxTotalResults,
					},
					"content_type": map[string]any{
						"type":        "string",
						"description": "Only return results of this content type",
						"enum":        contentTypeNames(),
					},
					"sort_by": map[string]any{
						"type":        "string",
						"description": "Result ordering (default: relevance)",
						"enum":        []string{string(search.SortRelevance), string(search.SortDate), string(search.SortDomain)},
						"default":     string(search.SortRelevance),
					},
				},
				"required": []string{"query"},
			},
		},
		{
			Name: toolDiscover,
			Description: "Discover NVIDIA content of a specific type (tutorials, videos, courses, " +
				"blog posts, documentation, research papers...) about a topic.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"content_type": map[string]any{
						"type": "string",
						"description": "Type of content to find. Aliases such as blog, forum, paper, " +
							"webinar and docs are accepted.",
					},
					"topic": map[string]any{
						"type":        "string",
						"description": "Topic to find content about (max 500 characters)",
						"maxLength":   search.MaxQueryLength,
					},
					"max_results": map[string]any{
						"type":        "integer",
						"description": "Maximum number of results (default: 5, max: 10)",
						"default":     5,
						"minimum":     1,
						"maximum":     10,
					},
				},
				"required": []string{"content_type", "topic"},
			},
		},
	}
}
