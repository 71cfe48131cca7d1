package enrich

import (
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

const (
	snippetLength = 300
	snippetLead   = 100
	ellipsis      = "..."
)

// termPattern matches any term at the start of a word, case-insensitively.
// Group 2 is the term itself.
func termPattern(terms []string) *regexp.Regexp {
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			quoted = append(quoted, regexp.QuoteMeta(t))
		}
	}
	if len(quoted) == 0 {
		return nil
	}
	// longest first so "cudnn" wins over "cuda" style prefixes
	slices.SortStableFunc(quoted, func(a, b string) int { return len(b) - len(a) })
	return regexp.MustCompile(`(?i)(^|[^\p{L}\p{N}])(` + strings.Join(quoted, "|") + `)`)
}

// buildSnippet cuts a window of text around the first term occurrence and marks
// every term as **term**. Without a match it falls back to fallback, then to the
// start of text.
func buildSnippet(text, fallback string, terms []string) string {
	re := termPattern(terms)
	text = collapseSpace(text)

	if re != nil {
		if loc := re.FindStringSubmatchIndex(text); loc != nil {
			return highlight(re, window(text, utf8.RuneCountInString(text[:loc[4]])))
		}
	}
	if fallback = collapseSpace(fallback); fallback != "" {
		return highlight(re, fallback)
	}
	if text == "" {
		return ""
	}
	return highlight(re, window(text, 0))
}

// window returns about snippetLength runes starting snippetLead runes before
// the rune at index at, trimmed to word boundaries.
func window(text string, at int) string {
	runes := []rune(text)
	start := max(0, at-snippetLead)
	end := min(len(runes), start+snippetLength)

	if start > 0 {
		for i := start; i < at; i++ {
			if runes[i] == ' ' {
				start = i + 1
				break
			}
		}
	}
	if end < len(runes) {
		for i := end; i > at; i-- {
			if runes[i] == ' ' {
				end = i
				break
			}
		}
	}

	out := string(runes[start:end])
	if start > 0 {
		out = ellipsis + out
	}
	if end < len(runes) {
		out += ellipsis
	}
	return out
}

func highlight(re *regexp.Regexp, s string) string {
	if re == nil {
		return s
	}
	return re.ReplaceAllString(s, "$1**$2**")
}
