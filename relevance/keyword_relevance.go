package relevance

import (
	"math"
	"net/url"
	"regexp"
	"strings"

	"github.com/cloudflare/ahocorasick"

	"mcpnvidia/search"
)

const (
	titleWeight   = 50.0
	snippetWeight = 30.0
	urlWeight     = 10.0
	phraseBonus   = 10
	maxScore      = 100
)

// KeywordMatcher finds which of a fixed set of terms occur in a text. Terms and
// text are both reduced to stemmed words, so a term only matches whole words.
type KeywordMatcher struct {
	matcher  *ahocorasick.Matcher
	keywords []string
	stem     func(string) string
}

var wordSplit = regexp.MustCompile(`[^\p{L}\p{N}+#.]+`)

// NewKeywordMatcher builds an Aho-Corasick matcher over the stemmed terms. A nil
// extractor leaves words unstemmed.
func NewKeywordMatcher(terms []string, extractor search.KeywordExtractor) *KeywordMatcher {
	m := &KeywordMatcher{stem: stemmer(extractor)}
	seen := make(map[string]bool, len(terms))
	for _, t := range terms {
		pattern := m.normalize(t)
		if pattern == " " || seen[pattern] {
			continue
		}
		seen[pattern] = true
		m.keywords = append(m.keywords, pattern)
	}
	m.matcher = ahocorasick.NewStringMatcher(m.keywords)
	return m
}

// Coverage returns the fraction of terms found in content.
func (m *KeywordMatcher) Coverage(content string) float64 {
	if content == "" || len(m.keywords) == 0 {
		return 0
	}
	matches := m.matcher.MatchThreadSafe([]byte(m.normalize(content)))
	if len(matches) == 0 {
		return 0
	}

	found := make(map[string]struct{})
	for _, idx := range matches {
		found[m.keywords[idx]] = struct{}{}
	}
	return float64(len(found)) / float64(len(m.keywords))
}

// normalize turns text into its stemmed words, space separated and space padded.
func (m *KeywordMatcher) normalize(text string) string {
	ws := words(text)
	for i, w := range ws {
		ws[i] = m.stem(w)
	}
	return " " + strings.Join(ws, " ") + " "
}

func words(text string) []string {
	var out []string
	for _, w := range wordSplit.Split(strings.ToLower(text), -1) {
		if w = strings.Trim(w, "."); w != "" {
			out = append(out, w)
		}
	}
	return out
}

func stemmer(extractor search.KeywordExtractor) func(string) string {
	if extractor == nil {
		return func(w string) string { return w }
	}
	return func(w string) string {
		if stems := extractor.Stems([]string{w}); len(stems) == 1 {
			return stems[0]
		}
		return w
	}
}

// KeywordScorer is the default Scorer. It weighs stemmed query term coverage in
// the title, snippet and URL, then adds a per-domain authority bonus and a bonus
// for the exact query phrase in the title.
type KeywordScorer struct {
	extractor search.KeywordExtractor
	authority map[string]int
}

func NewKeywordScorer(extractor search.KeywordExtractor, authority map[string]int) *KeywordScorer {
	if authority == nil {
		authority = DefaultAuthority()
	}
	return &KeywordScorer{extractor: extractor, authority: authority}
}

// DefaultAuthority gives primary documentation and developer sites the highest bonus.
func DefaultAuthority() map[string]int {
	return map[string]int{
		"developer.nvidia.com":        10,
		"docs.nvidia.com":             10,
		"nvidianews.nvidia.com":       8,
		"blogs.nvidia.com":            8,
		"research.nvidia.com":         8,
		"catalog.ngc.nvidia.com":      6,
		"build.nvidia.com":            6,
		"forums.developer.nvidia.com": 5,
	}
}

const defaultAuthority = 4

func (s *KeywordScorer) Score(hit search.EnrichedHit, query search.Query) int {
	terms := s.terms(query.Text)
	if len(terms) == 0 {
		return 0
	}
	m := NewKeywordMatcher(terms, s.extractor)

	snippet := hit.Snippet
	if snippet == "" {
		snippet = hit.RawHit.Snippet
	}

	titleCov := m.Coverage(hit.Title)
	snippetCov := m.Coverage(snippet)
	urlCov := m.Coverage(urlText(hit.URL))

	score := titleWeight*titleCov + snippetWeight*snippetCov + urlWeight*urlCov
	if titleCov+snippetCov+urlCov > 0 {
		score += float64(s.authorityFor(hit.Domain))
		phrase := strings.ToLower(strings.Join(strings.Fields(query.Text), " "))
		if len(terms) > 1 && strings.Contains(strings.ToLower(hit.Title), phrase) {
			score += phraseBonus
		}
	}

	return min(maxScore, max(0, int(math.Round(score))))
}

func (s *KeywordScorer) terms(text string) []string {
	keywords := s.extractor.ExtractKeywords(text)
	if len(keywords) == 0 {
		// stop-word-only queries still match on their literal words
		keywords = words(text)
	}
	return keywords
}

func (s *KeywordScorer) authorityFor(domain string) int {
	if bonus, ok := s.authority[domain]; ok {
		return bonus
	}
	return defaultAuthority
}

// urlText is the host and path with separators turned into spaces.
func urlText(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.NewReplacer("/", " ", "-", " ", "_", " ", ".", " ").Replace(u.Host + u.Path)
}
