package main

import (
	"fmt"
	"time"
)

// dotProgress prints one line of dots for a multi-session run, 40 dots
// total regardless of session count. The simulator serializes Progress
// callbacks, so no locking is needed here.
type dotProgress struct {
	total       int
	dotsPrinted int
	start       time.Time
}

func newDotProgress(total int) *dotProgress {
	fmt.Printf("Sessions (%d): ", total)
	return &dotProgress{total: total, start: time.Now()}
}

func (p *dotProgress) onSession(done, total int) {
	target := done * 40 / total
	for i := p.dotsPrinted; i < target; i++ {
		fmt.Print(".")
		p.dotsPrinted++
	}
}

func (p *dotProgress) finish() {
	for i := p.dotsPrinted; i < 40; i++ {
		fmt.Print(".")
		p.dotsPrinted++
	}
	fmt.Printf(" done in %.1fs\n", time.Since(p.start).Seconds())
}
