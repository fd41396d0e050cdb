// Package cmdq decides which of the commands a controller could send next is
// issued.
package cmdq

import (
	"fmt"
	"strings"

	"github.com/sarchlab/ddrsim/mem/dram/internal/signal"
)

// A Candidate is a command that the controller would like to issue, together
// with the information that a policy ranks it by.
type Candidate struct {
	Cmd *signal.Command

	// Earliest is the first cycle at which the command satisfies all timing
	// constraints.
	Earliest uint64

	// Arrival is the arrival cycle of the oldest request that needs the
	// command.
	Arrival uint64

	// RowHit marks reads and writes to an already open row.
	RowHit bool

	// Urgent marks refresh work, which goes before any request.
	Urgent bool
}

// Ready returns true if the command may issue at the given cycle.
func (c Candidate) Ready(now uint64) bool {
	return c.Earliest <= now
}

// A Policy picks the command to issue among the candidates of a cycle.
type Policy interface {
	Name() string

	// Pick returns the index of the chosen candidate, or -1 if no candidate is
	// ready.
	Pick(now uint64, candidates []Candidate) int
}

// FCFS issues the ready command of the oldest request first.
type FCFS struct{}

// Name returns "fcfs".
func (FCFS) Name() string { return "fcfs" }

// Pick returns the oldest ready candidate.
func (FCFS) Pick(now uint64, candidates []Candidate) int {
	return pick(now, candidates, func(a, b Candidate) bool {
		return a.Arrival < b.Arrival
	})
}

// FRFCFS issues reads and writes to open rows before anything else, then
// falls back to FCFS.
type FRFCFS struct{}

// Name returns "frfcfs".
func (FRFCFS) Name() string { return "frfcfs" }

// Pick returns the oldest ready row hit, or the oldest ready candidate if no
// row hit is ready.
func (FRFCFS) Pick(now uint64, candidates []Candidate) int {
	return pick(now, candidates, func(a, b Candidate) bool {
		if a.RowHit != b.RowHit {
			return a.RowHit
		}

		return a.Arrival < b.Arrival
	})
}

// pick returns the best ready candidate. Urgent candidates always go first.
// Among equals, the earlier candidate in the slice wins.
func pick(
	now uint64,
	candidates []Candidate,
	better func(a, b Candidate) bool,
) int {
	best := -1

	for i, c := range candidates {
		if !c.Ready(now) {
			continue
		}

		if best < 0 {
			best = i
			continue
		}

		b := candidates[best]

		if c.Urgent != b.Urgent {
			if c.Urgent {
				best = i
			}

			continue
		}

		if better(c, b) {
			best = i
		}
	}

	return best
}

// ParsePolicy returns the policy with the given name.
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(name) {
	case "fcfs":
		return FCFS{}, nil
	case "frfcfs", "fr-fcfs":
		return FRFCFS{}, nil
	}

	return nil, fmt.Errorf("unknown scheduling policy %q", name)
}
