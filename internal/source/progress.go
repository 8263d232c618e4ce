package source

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/paulmach/osm"
)

// ProgressTicker calls a function periodically for progress updates
type ProgressTicker struct {
	ctx      context.Context
	callback func()
	interval time.Duration
}

// NewProgressTicker creates a new progress ticker
func NewProgressTicker(ctx context.Context, interval time.Duration, callback func()) *ProgressTicker {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &ProgressTicker{
		ctx:      ctx,
		callback: callback,
		interval: interval,
	}
}

// Run blocks, invoking the callback every interval until ctx is done
func (p *ProgressTicker) Run() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.callback()
		}
	}
}

// CountingScanner counts records per type as they pass through. The counts
// may be read from another goroutine while scanning.
type CountingScanner struct {
	Scanner
	nodes, ways, relations atomic.Int64
}

// Counting wraps s.
func Counting(s Scanner) *CountingScanner {
	return &CountingScanner{Scanner: s}
}

func (c *CountingScanner) Scan() bool {
	if !c.Scanner.Scan() {
		return false
	}
	switch c.Scanner.Record().Type {
	case osm.TypeNode:
		c.nodes.Add(1)
	case osm.TypeWay:
		c.ways.Add(1)
	case osm.TypeRelation:
		c.relations.Add(1)
	}
	return true
}

// Counts returns the number of nodes, ways and relations seen so far.
func (c *CountingScanner) Counts() (nodes, ways, relations int64) {
	return c.nodes.Load(), c.ways.Load(), c.relations.Load()
}
