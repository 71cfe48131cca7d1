package enrich

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"mcpnvidia/search"
)

const maxAuthorLength = 100

// authorRule returns an author candidate or "".
type authorRule func(d *document) string

var authorRules = []authorRule{
	func(d *document) string { return d.meta("author", "article:author", "dc.creator") },
	jsonLDAuthor,
	func(d *document) string { return d.extractedAuthor },
	func(d *document) string { return d.byline },
	func(d *document) string { return d.dom.Find(`[rel="author"]`).First().Text() },
	func(d *document) string { return d.dom.Find(".author-name, .author, .byline").First().Text() },
}

func extractAuthor(d *document) string {
	for _, rule := range authorRules {
		if a := cleanAuthor(rule(d)); a != "" {
			return a
		}
	}
	return ""
}

func cleanAuthor(a string) string {
	a = collapseSpace(a)
	a = strings.TrimPrefix(a, "By ")
	a = strings.TrimPrefix(a, "by ")
	// profile links in article:author are not names
	if strings.HasPrefix(a, "http://") || strings.HasPrefix(a, "https://") {
		return ""
	}
	if utf8.RuneCountInString(a) > maxAuthorLength {
		return ""
	}
	return a
}

func jsonLDAuthor(d *document) string {
	var author string
	d.dom.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var data any
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return true
		}
		author = findJSONLDAuthor(data)
		return author == ""
	})
	return author
}

func findJSONLDAuthor(node any) string {
	switch v := node.(type) {
	case map[string]any:
		switch a := v["author"].(type) {
		case string:
			return a
		case map[string]any:
			if name, ok := a["name"].(string); ok {
				return name
			}
		case []any:
			if name := findJSONLDAuthor(map[string]any{"author": firstOf(a)}); name != "" {
				return name
			}
		}
		if graph, ok := v["@graph"]; ok {
			return findJSONLDAuthor(graph)
		}
	case []any:
		for _, item := range v {
			if name := findJSONLDAuthor(item); name != "" {
				return name
			}
		}
	}
	return ""
}

func firstOf(items []any) any {
	if len(items) == 0 {
		return nil
	}
	return items[0]
}

func hasCode(d *document) bool {
	return d.dom.Find("pre, code, .highlight, .codehilite, .code-block").Length() > 0
}

func hasVideo(d *document) bool {
	if d.dom.Find("video").Length() > 0 {
		return true
	}
	if d.meta("og:video", "og:video:url", "twitter:player") != "" {
		return true
	}
	found := false
	d.dom.Find("iframe[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, _ := s.Attr("src")
		found = containsAny(strings.ToLower(src), "youtube.com", "youtube-nocookie.com", "vimeo.com", "player.", "brightcove", "kaltura")
		return !found
	})
	return found
}

// imageCount skips 1x1 tracking pixels.
func imageCount(d *document) int {
	n := 0
	d.dom.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		if w, _ := s.Attr("width"); w == "1" || w == "0" {
			return
		}
		if h, _ := s.Attr("height"); h == "1" || h == "0" {
			return
		}
		n++
	})
	return n
}

func extractMetadata(d *document, video bool) *search.Metadata {
	images := imageCount(d)
	return &search.Metadata{
		Author:     extractAuthor(d),
		WordCount:  len(strings.Fields(d.text)),
		HasCode:    hasCode(d),
		HasVideo:   video,
		HasImages:  images > 0,
		ImageCount: images,
	}
}
