// Package signal defines the commands and transactions that flow inside a
// DRAM controller.
package signal

import (
	"fmt"

	"github.com/sarchlab/ddrsim/mem/dram/internal/addressmapping"
)

// CmdKind is the kind of a DRAM command.
type CmdKind int

// CmdKinds
const (
	CmdKindActivate CmdKind = iota
	CmdKindRead
	CmdKindWrite
	CmdKindPrecharge
	CmdKindRefresh
	CmdKindPowerDownEnter
	CmdKindPowerDownExit
	NumCmdKind
)

var cmdKindNames = [...]string{
	"ACT", "RD", "WR", "PRE", "REF", "PDE", "PDX",
}

func (k CmdKind) String() string {
	if k < 0 || k >= NumCmdKind {
		return fmt.Sprintf("CmdKind(%d)", int(k))
	}

	return cmdKindNames[k]
}

// IsRankWide returns true if the command addresses a whole rank rather than a
// single bank.
func (k CmdKind) IsRankWide() bool {
	return k == CmdKindRefresh ||
		k == CmdKindPowerDownEnter ||
		k == CmdKindPowerDownExit
}

// IsColumnAccess returns true for reads and writes.
func (k CmdKind) IsColumnAccess() bool {
	return k == CmdKindRead || k == CmdKindWrite
}

// Command is a command that is executed by a bank or a rank.
type Command struct {
	ID       string
	Kind     CmdKind
	Location addressmapping.Location
	SubTrans *SubTransaction

	IssueCycle uint64
}

func (c *Command) String() string {
	if c.Kind.IsRankWide() {
		return fmt.Sprintf("%s rank %d", c.Kind, c.Location.Rank)
	}

	return fmt.Sprintf("%s %s", c.Kind, c.Location)
}
