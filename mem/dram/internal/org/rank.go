package org

import (
	"github.com/sarchlab/ddrsim/mem/dram/internal/signal"
)

// A Rank is a group of banks that share a command bus, activation window and
// refresh schedule.
type Rank struct {
	// Banks are indexed by bank group, then by bank within the group.
	Banks [][]*Bank

	PoweredDown bool

	// LastRefresh is the cycle of the most recent refresh. RefreshDeadline is
	// the cycle by which the next refresh must issue.
	LastRefresh     uint64
	RefreshDeadline uint64
	NumRefresh      uint64

	earliest   [signal.NumCmdKind]uint64
	activates  []uint64 // ring of recent activate cycles
	nextActPos int
	window     int
	limit      int
}

func newRank(numBankGroup, numBankPerGroup int, t Timing) *Rank {
	r := &Rank{
		Banks:           make([][]*Bank, numBankGroup),
		RefreshDeadline: uint64(t.REFI),
		window:          t.XAW,
		limit:           t.ActivationLimit,
	}

	for g := range r.Banks {
		r.Banks[g] = make([]*Bank, numBankPerGroup)
		for b := range r.Banks[g] {
			r.Banks[g][b] = &Bank{}
		}
	}

	return r
}

// Earliest returns the first cycle at which the rank-level constraints allow
// the given command kind.
func (r *Rank) Earliest(kind signal.CmdKind) uint64 {
	return r.earliest[kind]
}

// UpdateTiming makes sure a command of the given kind does not issue to the
// rank before the given cycle.
func (r *Rank) UpdateTiming(kind signal.CmdKind, cycle uint64) {
	if r.earliest[kind] < cycle {
		r.earliest[kind] = cycle
	}
}

// ActivationWindowEarliest returns the first cycle at which another activate
// fits in the sliding activation window.
func (r *Rank) ActivationWindowEarliest() uint64 {
	if r.limit <= 0 || len(r.activates) < r.limit {
		return 0
	}

	oldest := r.activates[r.nextActPos]

	return oldest + uint64(r.window)
}

func (r *Rank) recordActivate(now uint64) {
	if r.limit <= 0 {
		return
	}

	if len(r.activates) < r.limit {
		r.activates = append(r.activates, now)
		return
	}

	r.activates[r.nextActPos] = now
	r.nextActPos = (r.nextActPos + 1) % r.limit
}

// AllBanksClosed returns true if no bank in the rank has an open row.
func (r *Rank) AllBanksClosed() bool {
	for _, group := range r.Banks {
		for _, b := range group {
			if b.IsOpen() {
				return false
			}
		}
	}

	return true
}

// ForEachBank calls f on every bank of the rank.
func (r *Rank) ForEachBank(f func(group, bank int, b *Bank)) {
	for g, group := range r.Banks {
		for i, b := range group {
			f(g, i, b)
		}
	}
}

func (r *Rank) start(cmd *signal.Command, now uint64, refi int) {
	switch cmd.Kind {
	case signal.CmdKindActivate:
		r.recordActivate(now)
	case signal.CmdKindRefresh:
		r.LastRefresh = now
		r.RefreshDeadline = now + uint64(refi)
		r.NumRefresh++
	case signal.CmdKindPowerDownEnter:
		r.PoweredDown = true
	case signal.CmdKindPowerDownExit:
		r.PoweredDown = false
	}
}
