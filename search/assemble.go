package search

import (
	"cmp"
	"slices"
)

// Assemble filters, orders and truncates scored hits. Hits of a different content
// type are dropped when filter is set. The per-domain cap is applied before the
// global cap and duplicate URLs keep their first position in the sorted order.
func Assemble(hits []ScoredHit, mode SortMode, perDomain, total int, filter ContentType) ResultSet {
	considered := make([]ScoredHit, 0, len(hits))
	for _, h := range hits {
		if filter != "" && h.ContentType != filter {
			continue
		}
		considered = append(considered, h)
	}

	sorted := slices.Clone(considered)
	slices.SortStableFunc(sorted, compareFor(mode))

	seen := make(map[string]bool, len(sorted))
	perDomainCount := make(map[string]int)
	out := make([]ScoredHit, 0, min(len(sorted), max(total, 0)))
	for _, h := range sorted {
		if len(out) >= total {
			break
		}
		if seen[h.URL] {
			continue
		}
		if perDomain > 0 && perDomainCount[h.Domain] >= perDomain {
			continue
		}
		seen[h.URL] = true
		perDomainCount[h.Domain]++
		out = append(out, h)
	}

	return ResultSet{
		Sort:            mode,
		Hits:            out,
		TotalConsidered: len(considered),
		TotalReturned:   len(out),
	}
}

func compareFor(mode SortMode) func(a, b ScoredHit) int {
	switch mode {
	case SortDate:
		return func(a, b ScoredHit) int {
			if c := compareDatesDesc(a, b); c != 0 {
				return c
			}
			return byRelevance(a, b)
		}
	case SortDomain:
		return func(a, b ScoredHit) int {
			if c := cmp.Compare(a.Domain, b.Domain); c != 0 {
				return c
			}
			return byRelevance(a, b)
		}
	default:
		return byRelevance
	}
}

// byRelevance orders by descending score, then by backend order.
func byRelevance(a, b ScoredHit) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	return byBackendOrder(a, b)
}

func byBackendOrder(a, b ScoredHit) int {
	if c := cmp.Compare(a.DomainOrder, b.DomainOrder); c != 0 {
		return c
	}
	return cmp.Compare(a.Rank, b.Rank)
}

// undated hits sort after dated ones
func compareDatesDesc(a, b ScoredHit) int {
	switch {
	case a.PublishedDate == nil && b.PublishedDate == nil:
		return 0
	case a.PublishedDate == nil:
		return 1
	case b.PublishedDate == nil:
		return -1
	}
	return b.PublishedDate.Compare(*a.PublishedDate)
}
