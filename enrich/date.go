package enrich

import (
	"cmp"
	"encoding/json"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
)

const (
	minYear       = 1990
	dateScanRunes = 5000
)

// dateRule yields zero or more raw date candidates. Rules run in order and the
// first candidate that parses wins.
type dateRule func(d *document) []string

var dateRules = []dateRule{
	metaDates,
	jsonLDDates,
	timeElementDates,
	extractorDate,
	textDates,
}

// "Sept." and "Mar." style abbreviations
var monthAbbrev = regexp.MustCompile(`\b(Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sep|Oct|Nov|Dec)t?\.?(\s)`)

var textDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
	regexp.MustCompile(`\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec)[a-z]*\.? \d{1,2},? \d{4}\b`),
	regexp.MustCompile(`\b\d{1,2} (?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec)[a-z]*\.? \d{4}\b`),
	regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`),
}

// publishedDate returns the publication date at day precision, or nil.
func publishedDate(d *document, now time.Time) *time.Time {
	for _, rule := range dateRules {
		for _, candidate := range rule(d) {
			if t, ok := parseDate(candidate, now); ok {
				return &t
			}
		}
	}
	return nil
}

func parseDate(raw string, now time.Time) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	raw = monthAbbrev.ReplaceAllString(raw, "$1$2")

	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return time.Time{}, false
	}
	if t.Year() < minYear || t.Year() > now.Year()+1 {
		return time.Time{}, false
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
}

func metaDates(d *document) []string {
	v := d.meta(
		"article:published_time",
		"og:published_time",
		"datePublished",
		"publish-date",
		"publish_date",
		"pubdate",
		"date",
		"dc.date",
		"DC.date.issued",
	)
	if v == "" {
		return nil
	}
	return []string{v}
}

func timeElementDates(d *document) []string {
	var out []string
	d.dom.Find("time[datetime]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if v, ok := s.Attr("datetime"); ok {
			out = append(out, v)
		}
		return len(out) < 3
	})
	return out
}

func jsonLDDates(d *document) []string {
	var out []string
	d.dom.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var data any
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return
		}
		collectJSONLD(data, "datePublished", &out)
	})
	return out
}

// collectJSONLD walks objects, arrays and @graph nodes for string values of key.
func collectJSONLD(node any, key string, out *[]string) {
	switch v := node.(type) {
	case map[string]any:
		if s, ok := v[key].(string); ok && s != "" {
			*out = append(*out, s)
		}
		if graph, ok := v["@graph"]; ok {
			collectJSONLD(graph, key, out)
		}
	case []any:
		for _, item := range v {
			collectJSONLD(item, key, out)
		}
	}
}

func extractorDate(d *document) []string {
	if d.extractedDate.IsZero() {
		return nil
	}
	return []string{d.extractedDate.Format(time.RFC3339)}
}

func textDates(d *document) []string {
	text := d.text
	if r := []rune(text); len(r) > dateScanRunes {
		text = string(r[:dateScanRunes])
	}

	type found struct {
		at    int
		value string
	}
	var all []found
	for _, p := range textDatePatterns {
		for _, loc := range p.FindAllStringIndex(text, 3) {
			all = append(all, found{at: loc[0], value: text[loc[0]:loc[1]]})
		}
	}

	// earliest occurrence in the text first
	slices.SortStableFunc(all, func(a, b found) int { return cmp.Compare(a.at, b.at) })
	out := make([]string, len(all))
	for i, f := range all {
		out[i] = f.value
	}
	return out
}
