// Package org models the organization of a DRAM channel: ranks, bank groups
// and banks, and the timing state each of them carries.
package org

import (
	"github.com/sarchlab/ddrsim/mem/dram/internal/signal"
)

// BankState is the state of a bank.
type BankState int

// A list of all possible bank states.
const (
	BankStateClosed BankState = iota
	BankStateOpen
)

func (s BankState) String() string {
	if s == BankStateOpen {
		return "Open"
	}

	return "Closed"
}

// A Bank is a DRAM Bank. It contains a number of rows and columns.
type Bank struct {
	State   BankState
	OpenRow int

	// LastIssue is the cycle of the most recent command the bank executed.
	LastIssue uint64

	earliest [signal.NumCmdKind]uint64
}

// Earliest returns the first cycle at which the bank itself allows the given
// command kind.
func (b *Bank) Earliest(kind signal.CmdKind) uint64 {
	return b.earliest[kind]
}

// UpdateTiming makes sure a command of the given kind does not issue before
// the given cycle.
func (b *Bank) UpdateTiming(kind signal.CmdKind, cycle uint64) {
	if b.earliest[kind] < cycle {
		b.earliest[kind] = cycle
	}
}

// IsOpen returns true if the bank has a row open.
func (b *Bank) IsOpen() bool {
	return b.State == BankStateOpen
}

// IsRowHit returns true if the given row is currently open in the bank.
func (b *Bank) IsRowHit(row int) bool {
	return b.State == BankStateOpen && b.OpenRow == row
}

func (b *Bank) start(cmd *signal.Command, now uint64) {
	b.LastIssue = now

	switch cmd.Kind {
	case signal.CmdKindActivate:
		b.State = BankStateOpen
		b.OpenRow = cmd.Location.Row
	case signal.CmdKindPrecharge:
		b.State = BankStateClosed
		b.OpenRow = 0
	}
}
