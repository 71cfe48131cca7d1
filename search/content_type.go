package search

import "strings"

// ContentType is the closed set of page classifications.
type ContentType string

const (
	ContentAnnouncement    ContentType = "announcement"
	ContentTutorial        ContentType = "tutorial"
	ContentGuide           ContentType = "guide"
	ContentForumDiscussion ContentType = "forum_discussion"
	ContentBlogPost        ContentType = "blog_post"
	ContentDocumentation   ContentType = "documentation"
	ContentResearchPaper   ContentType = "research_paper"
	ContentNews            ContentType = "news"
	ContentVideo           ContentType = "video"
	ContentCourse          ContentType = "course"
	ContentArticle         ContentType = "article"
)

// ContentTypes lists every valid content type in declaration order.
var ContentTypes = []ContentType{
	ContentAnnouncement,
	ContentTutorial,
	ContentGuide,
	ContentForumDiscussion,
	ContentBlogPost,
	ContentDocumentation,
	ContentResearchPaper,
	ContentNews,
	ContentVideo,
	ContentCourse,
	ContentArticle,
}

var contentTypeAliases = map[string]ContentType{
	"blog":      ContentBlogPost,
	"blogs":     ContentBlogPost,
	"forum":     ContentForumDiscussion,
	"forums":    ContentForumDiscussion,
	"paper":     ContentResearchPaper,
	"papers":    ContentResearchPaper,
	"research":  ContentResearchPaper,
	"webinar":   ContentVideo,
	"videos":    ContentVideo,
	"docs":      ContentDocumentation,
	"courses":   ContentCourse,
	"training":  ContentCourse,
	"tutorials": ContentTutorial,
	"guides":    ContentGuide,
}

func (c ContentType) Valid() bool {
	for _, ct := range ContentTypes {
		if c == ct {
			return true
		}
	}
	return false
}

// ParseContentType accepts a canonical content type or one of its aliases.
func ParseContentType(s string) (ContentType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	if ct := ContentType(s); ct.Valid() {
		return ct, nil
	}
	if ct, ok := contentTypeAliases[s]; ok {
		return ct, nil
	}
	return "", NewInputError("content_type", "invalid content type: "+s)
}

// SortMode selects the ordering applied by Assemble.
type SortMode string

const (
	SortRelevance SortMode = "relevance"
	SortDate      SortMode = "date"
	SortDomain    SortMode = "domain"
)

func (m SortMode) Valid() bool {
	switch m {
	case SortRelevance, SortDate, SortDomain:
		return true
	}
	return false
}
