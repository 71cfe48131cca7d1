package relevance

import "mcpnvidia/search"

// Scorer rates how well a hit answers a query. Implementations must return a value
// in [0,100] that depends only on the two arguments.
type Scorer interface {
	Score(hit search.EnrichedHit, query search.Query) int
}
