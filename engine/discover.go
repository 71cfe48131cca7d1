package engine

import (
	"context"
	"strings"
	"unicode/utf8"

	"mcpnvidia/search"
)

const (
	defaultDiscoverResults = 5
	maxDiscoverResults     = 10
)

// DiscoverRequest asks for content of one type about a topic.
type DiscoverRequest struct {
	ContentType string
	Topic       string
	MaxResults  int
}

// typeHints bias the provider query towards pages of the requested type.
var typeHints = map[search.ContentType]string{
	search.ContentAnnouncement:    "announcement",
	search.ContentTutorial:        "tutorial",
	search.ContentGuide:           "guide",
	search.ContentForumDiscussion: "forum",
	search.ContentBlogPost:        "blog",
	search.ContentDocumentation:   "documentation",
	search.ContentResearchPaper:   "research paper",
	search.ContentNews:            "news",
	search.ContentVideo:           "video",
	search.ContentCourse:          "course",
}

// Discover searches every default domain for topic and keeps only hits whose
// detected content type matches the request.
func (e *Engine) Discover(ctx context.Context, req DiscoverRequest) (search.ResultSet, error) {
	r := e.newRun(ctx, "discover")
	r.enter(ValidatingInput)

	ct, err := search.ParseContentType(req.ContentType)
	if err != nil {
		return r.fail(err)
	}

	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return r.fail(search.NewInputError("topic", "topic is required"))
	}
	if utf8.RuneCountInString(topic) > search.MaxQueryLength {
		return r.fail(search.NewInputError("topic", "topic too long (max 500 characters)"))
	}
	if req.MaxResults < 0 {
		return r.fail(search.NewInputError("max_results", "result limits must be positive"))
	}
	maxResults := req.MaxResults
	if maxResults == 0 {
		maxResults = defaultDiscoverResults
	}
	maxResults = min(maxResults, maxDiscoverResults)

	q, err := search.Query{
		Text:                topic,
		MaxResultsPerDomain: maxResults,
		MaxResults:          maxResults,
		ContentType:         ct,
		Sort:                search.SortRelevance,
	}.Normalize()
	if err != nil {
		return r.fail(err)
	}

	backendQuery := q
	if hint := typeHints[ct]; hint != "" && !strings.Contains(strings.ToLower(topic), hint) {
		backendQuery.Text = topic + " " + hint
	}

	return e.execute(r, q, backendQuery, e.domains, min(maxResults, e.maxPerDomain)), nil
}
