package search

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scored(domain string, rank, score int) ScoredHit {
	return ScoredHit{
		EnrichedHit: EnrichedHit{
			RawHit: RawHit{
				Title:  fmt.Sprintf("%s-%d", domain, rank),
				URL:    fmt.Sprintf("https://%s/page/%d", domain, rank),
				Domain: domain,
				Rank:   rank,
			},
			ContentType: ContentArticle,
		},
		Score: score,
	}
}

func dated(h ScoredHit, day string) ScoredHit {
	if day != "" {
		d, _ := time.Parse(time.DateOnly, day)
		h.PublishedDate = &d
	}
	return h
}

func scores(hits []ScoredHit) []int {
	out := make([]int, len(hits))
	for i, h := range hits {
		out[i] = h.Score
	}
	return out
}

func TestAssemble_RelevanceOrder(t *testing.T) {
	hits := []ScoredHit{
		scored("a.nvidia.com", 0, 10),
		scored("a.nvidia.com", 1, 90),
		scored("a.nvidia.com", 2, 50),
	}

	rs := Assemble(hits, SortRelevance, 10, 50, "")

	assert.Equal(t, []int{90, 50, 10}, scores(rs.Hits))
	assert.Equal(t, 3, rs.TotalConsidered)
	assert.Equal(t, 3, rs.TotalReturned)
}

func TestAssemble_RelevanceTiesKeepBackendOrder(t *testing.T) {
	a := scored("a.nvidia.com", 1, 40)
	b := scored("a.nvidia.com", 0, 40)
	c := scored("b.nvidia.com", 0, 40)
	c.DomainOrder = 1

	rs := Assemble([]ScoredHit{c, a, b}, SortRelevance, 10, 50, "")

	require.Len(t, rs.Hits, 3)
	assert.Equal(t, b.URL, rs.Hits[0].URL)
	assert.Equal(t, a.URL, rs.Hits[1].URL)
	assert.Equal(t, c.URL, rs.Hits[2].URL)
}

func TestAssemble_DateOrderUndatedLast(t *testing.T) {
	hits := []ScoredHit{
		dated(scored("a.nvidia.com", 0, 10), "2024-01-01"),
		dated(scored("a.nvidia.com", 1, 99), ""),
		dated(scored("a.nvidia.com", 2, 20), "2025-01-01"),
	}

	rs := Assemble(hits, SortDate, 10, 50, "")

	require.Len(t, rs.Hits, 3)
	assert.Equal(t, "2025-01-01", rs.Hits[0].PublishedDate.Format(time.DateOnly))
	assert.Equal(t, "2024-01-01", rs.Hits[1].PublishedDate.Format(time.DateOnly))
	assert.Nil(t, rs.Hits[2].PublishedDate)
}

func TestAssemble_DateTiesByRelevance(t *testing.T) {
	hits := []ScoredHit{
		dated(scored("a.nvidia.com", 0, 10), "2024-05-01"),
		dated(scored("a.nvidia.com", 1, 80), "2024-05-01"),
	}

	rs := Assemble(hits, SortDate, 10, 50, "")

	assert.Equal(t, []int{80, 10}, scores(rs.Hits))
}

func TestAssemble_DomainOrder(t *testing.T) {
	hits := []ScoredHit{
		scored("docs.nvidia.com", 0, 10),
		scored("blogs.nvidia.com", 0, 5),
		scored("docs.nvidia.com", 1, 70),
	}

	rs := Assemble(hits, SortDomain, 10, 50, "")

	require.Len(t, rs.Hits, 3)
	assert.Equal(t, "blogs.nvidia.com", rs.Hits[0].Domain)
	assert.Equal(t, 70, rs.Hits[1].Score)
	assert.Equal(t, 10, rs.Hits[2].Score)
}

func TestAssemble_PerDomainCapBeforeGlobalCap(t *testing.T) {
	var hits []ScoredHit
	for i := range 5 {
		hits = append(hits, scored("a.nvidia.com", i, 90-i))
	}
	hits = append(hits, scored("b.nvidia.com", 0, 1))

	rs := Assemble(hits, SortRelevance, 2, 3, "")

	require.Len(t, rs.Hits, 3)
	assert.Equal(t, "a.nvidia.com", rs.Hits[0].Domain)
	assert.Equal(t, "a.nvidia.com", rs.Hits[1].Domain)
	// the lowest scored domain still gets its slot
	assert.Equal(t, "b.nvidia.com", rs.Hits[2].Domain)
	assert.Equal(t, 6, rs.TotalConsidered)
}

func TestAssemble_GlobalCap(t *testing.T) {
	var hits []ScoredHit
	for i := range 5 {
		hits = append(hits, scored(fmt.Sprintf("d%d.nvidia.com", i), 0, i))
	}

	rs := Assemble(hits, SortRelevance, 10, 2, "")

	assert.Equal(t, []int{4, 3}, scores(rs.Hits))
	assert.Equal(t, 2, rs.TotalReturned)
}

func TestAssemble_ContentTypeFilter(t *testing.T) {
	tutorial := scored("a.nvidia.com", 0, 10)
	tutorial.ContentType = ContentTutorial
	other := scored("a.nvidia.com", 1, 90)

	rs := Assemble([]ScoredHit{tutorial, other}, SortRelevance, 10, 50, ContentTutorial)

	require.Len(t, rs.Hits, 1)
	assert.Equal(t, ContentTutorial, rs.Hits[0].ContentType)
	assert.Equal(t, 1, rs.TotalConsidered)
}

func TestAssemble_DeduplicatesURLs(t *testing.T) {
	a := scored("a.nvidia.com", 0, 10)
	dup := a
	dup.Score = 60
	dup.Rank = 3

	rs := Assemble([]ScoredHit{a, dup}, SortRelevance, 10, 50, "")

	require.Len(t, rs.Hits, 1)
	assert.Equal(t, 60, rs.Hits[0].Score)
}

func TestAssemble_DoesNotMutateInput(t *testing.T) {
	hits := []ScoredHit{scored("a.nvidia.com", 0, 1), scored("a.nvidia.com", 1, 2)}

	Assemble(hits, SortRelevance, 10, 50, "")

	assert.Equal(t, []int{1, 2}, scores(hits))
}

func TestAssemble_Empty(t *testing.T) {
	rs := Assemble(nil, SortRelevance, 3, 50, "")

	assert.Empty(t, rs.Hits)
	assert.Equal(t, 0, rs.TotalConsidered)
	assert.Equal(t, SortRelevance, rs.Sort)
}
