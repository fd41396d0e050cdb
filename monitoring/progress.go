package monitoring

import (
	"sync"
	"time"
)

// A ProgressBar counts the completed requests of a simulation and the data
// bursts served on their behalf.
type ProgressBar struct {
	mu sync.Mutex

	id        string
	name      string
	startTime time.Time
	total     uint64
	finished  uint64
	bursts    uint64
}

// Progress is a snapshot of a progress bar.
type Progress struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	Total     uint64    `json:"total"`
	Finished  uint64    `json:"finished"`
	Bursts    uint64    `json:"bursts"`

	// Rate is the number of requests finished per wall-clock second.
	Rate float64 `json:"rate"`

	// Remaining estimates the wall-clock time until every request finishes.
	// It is zero until the first request finishes.
	Remaining time.Duration `json:"remaining_ns"`
}

// RequestFinished records that one request has completed.
func (b *ProgressBar) RequestFinished() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.finished++
}

// BurstServed records that one read or write burst has been issued.
func (b *ProgressBar) BurstServed() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.bursts++
}

// Snapshot returns the current progress as seen at the given time.
func (b *ProgressBar) Snapshot(now time.Time) Progress {
	b.mu.Lock()
	defer b.mu.Unlock()

	p := Progress{
		ID:        b.id,
		Name:      b.name,
		StartTime: b.startTime,
		Total:     b.total,
		Finished:  b.finished,
		Bursts:    b.bursts,
	}

	elapsed := now.Sub(b.startTime).Seconds()
	if elapsed <= 0 || b.finished == 0 {
		return p
	}

	p.Rate = float64(b.finished) / elapsed

	if b.total > b.finished {
		left := float64(b.total - b.finished)
		p.Remaining = time.Duration(left / p.Rate * float64(time.Second))
	}

	return p
}
