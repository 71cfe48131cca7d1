package enrich

import (
	"net/url"
	"strings"

	"mcpnvidia/search"
)

// signals are the page features content type rules look at. All strings are lower case.
type signals struct {
	host     string
	path     string
	title    string
	headings string
	ogType   string
	hasVideo bool
}

type contentTypeRule struct {
	contentType search.ContentType
	match       func(s signals) bool
}

// contentTypeRules are evaluated in order; the first match wins.
var contentTypeRules = []contentTypeRule{
	{search.ContentVideo, func(s signals) bool {
		return strings.HasPrefix(s.ogType, "video") ||
			containsAny(s.path, "/video", "/on-demand", "/webinar", "youtube.com/watch") ||
			containsAny(s.title, "webinar", "[video]", "(video)", "gtc session") ||
			(s.hasVideo && containsAny(s.title, "video", "demo", "talk", "keynote"))
	}},
	{search.ContentCourse, func(s signals) bool {
		return containsAny(s.path, "/training", "/course", "/dli/", "/learn/", "/certification") ||
			containsAny(s.title, "course", "training", "workshop", "certification")
	}},
	{search.ContentResearchPaper, func(s signals) bool {
		return (strings.HasPrefix(s.host, "research.") && containsAny(s.path, "/publication", "/labs/")) ||
			containsAny(s.path, "/publication", "/papers/", ".pdf", "arxiv") ||
			containsAny(s.title, "arxiv", "research paper") ||
			containsAny(s.headings, "abstract\n", "related work")
	}},
	{search.ContentForumDiscussion, func(s signals) bool {
		return strings.HasPrefix(s.host, "forums.") ||
			containsAny(s.path, "/forum", "/discussion", "/t/", "/community/")
	}},
	{search.ContentAnnouncement, func(s signals) bool {
		return containsAny(s.path, "/announcement", "/press-release") ||
			containsAny(s.title, "announces", "announcing", "introducing", "unveils", "launches", "now available")
	}},
	{search.ContentNews, func(s signals) bool {
		return strings.HasPrefix(s.host, "nvidianews.") ||
			containsAny(s.path, "/news/", "/newsroom", "/press/")
	}},
	{search.ContentTutorial, func(s signals) bool {
		return containsAny(s.path, "/tutorial", "/how-to", "/getting-started") ||
			containsAny(s.title, "tutorial", "how to", "step-by-step", "getting started", "walkthrough") ||
			containsAny(s.headings, "step 1", "prerequisites")
	}},
	{search.ContentGuide, func(s signals) bool {
		return containsAny(s.path, "/guide", "/best-practices") ||
			containsAny(s.title, "guide", "best practices", "handbook", "cheat sheet")
	}},
	{search.ContentDocumentation, func(s signals) bool {
		return strings.HasPrefix(s.host, "docs.") ||
			containsAny(s.path, "/docs/", "/documentation", "/api/", "/reference", "/sdk/") ||
			containsAny(s.title, "documentation", "api reference", "release notes", "sdk reference")
	}},
	{search.ContentBlogPost, func(s signals) bool {
		return strings.HasPrefix(s.host, "blogs.") ||
			containsAny(s.path, "/blog")
	}},
}

func classify(s signals) search.ContentType {
	for _, rule := range contentTypeRules {
		if rule.match(s) {
			return rule.contentType
		}
	}
	return search.ContentArticle
}

// urlSignals derives the URL and title part of the signals, which is all a
// degraded hit has.
func urlSignals(rawURL, title string) signals {
	s := signals{title: strings.ToLower(title)}
	if u, err := url.Parse(rawURL); err == nil {
		s.host = strings.ToLower(u.Hostname())
		s.path = strings.ToLower(u.EscapedPath())
	}
	return s
}

func pageSignals(d *document, hit search.RawHit, hasVideo bool) signals {
	title := hit.Title
	if title == "" {
		title = d.title()
	}
	s := urlSignals(hit.URL, title)
	s.headings = strings.ToLower(d.headings())
	s.ogType = strings.ToLower(d.meta("og:type"))
	s.hasVideo = hasVideo
	return s
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
