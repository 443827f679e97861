package pargethttp

import (
	"sync"
	"sync/atomic"
	"time"
)

// ProgressFunc receives (completed, total) snapshots for rendering.
type ProgressFunc func(completed, total int64)

// Progress accumulates bytes written by every fetcher of one download.
// Advance is safe for concurrent use.
type Progress struct {
	total     int64
	completed atomic.Int64
}

func NewProgress(total int64) *Progress {
	return &Progress{total: total}
}

func (p *Progress) Advance(n int64) {
	if n <= 0 {
		return
	}
	p.completed.Add(n)
}

// Completed never reports more than Total.
func (p *Progress) Completed() int64 {
	return min(p.completed.Load(), p.total)
}

func (p *Progress) Total() int64 {
	return p.total
}

// Watch pushes snapshots to fn every interval until the returned stop
// function is called; stop sends one final snapshot and waits for the
// watcher to exit. A nil fn makes Watch a no-op.
func (p *Progress) Watch(interval time.Duration, fn ProgressFunc) (stop func()) {
	if fn == nil {
		return func() {}
	}
	doneCh := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		var last int64 = -1
		for {
			select {
			case <-ticker.C:
				if current := p.Completed(); current != last {
					fn(current, p.total)
					last = current
				}
			case <-doneCh:
				fn(p.Completed(), p.total)
				return
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			close(doneCh)
			wg.Wait()
		})
	}
}
