package crawler

import (
	"context"
	"sync"
)

// LoopDetector counts how often each URL is seen during one redirect chain.
type LoopDetector struct {
	visited   map[string]int
	maxVisits int
	mutex     sync.Mutex
}

func NewLoopDetector(maxVisits int) *LoopDetector {
	return &LoopDetector{
		visited:   make(map[string]int),
		maxVisits: maxVisits,
	}
}

func (ld *LoopDetector) CheckLoop(url string) bool {
	ld.mutex.Lock()
	defer ld.mutex.Unlock()
	return ld.visited[url] >= ld.maxVisits
}

func (ld *LoopDetector) IncVisit(url string) {
	ld.mutex.Lock()
	defer ld.mutex.Unlock()
	ld.visited[url]++
}

type loopDetectorKey struct{}

func withLoopDetector(ctx context.Context, ld *LoopDetector) context.Context {
	return context.WithValue(ctx, loopDetectorKey{}, ld)
}

func loopDetectorFrom(ctx context.Context) *LoopDetector {
	ld, _ := ctx.Value(loopDetectorKey{}).(*LoopDetector)
	return ld
}
