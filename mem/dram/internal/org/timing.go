package org

import (
	"github.com/sarchlab/ddrsim/mem/dram/internal/signal"
	"github.com/sarchlab/ddrsim/mem/dram/param"
)

// TimeTableEntry is an entry in the TimeTable.
type TimeTableEntry struct {
	NextCmdKind       signal.CmdKind
	MinCycleInBetween int
}

// TimeTable is a table that records the minimum number of cycles between any
// two types of DRAM commands.
type TimeTable [][]TimeTableEntry

// MakeTimeTable creates a new TimeTable.
func MakeTimeTable() TimeTable {
	return make([][]TimeTableEntry, signal.NumCmdKind)
}

// Timing records all the timing-related parameters for a DRAM model, in
// cycles of the command clock.
type Timing struct {
	SameBank              TimeTable
	OtherBanksInBankGroup TimeTable
	SameRank              TimeTable
	OtherRanks            TimeTable

	BurstCycle      int
	ReadDelay       int
	WriteDelay      int
	XAW             int
	ActivationLimit int
	REFI            int
	RFC             int
	RAS             int
	RP              int
	XP              int
	ReadToPrecharge int
	WritePrecharge  int
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}

	return b
}

// MakeTiming converts the durations of a parameter table into command-pair
// constraints counted in cycles. Every duration is rounded up to whole
// cycles.
//
//nolint:funlen
func MakeTiming(p *param.Table) Timing {
	c := p.Cycles

	t := Timing{
		SameBank:              MakeTimeTable(),
		OtherBanksInBankGroup: MakeTimeTable(),
		SameRank:              MakeTimeTable(),
		OtherRanks:            MakeTimeTable(),
	}

	burstCycle := c(p.TBURST())
	tRL := c(p.TCL())
	tWL := tRL
	tCS := c(p.TCS())

	t.BurstCycle = burstCycle
	t.ReadDelay = tRL + burstCycle
	t.WriteDelay = tWL + burstCycle
	t.XAW = c(p.TXAW())
	t.ActivationLimit = p.ActivationLimit()
	t.REFI = p.WholeCycles(p.TREFI())
	t.RFC = c(p.TRFC())
	t.RAS = c(p.TRAS())
	t.RP = c(p.TRP())
	t.XP = c(p.TXP())

	readToReadL := maxInt(burstCycle, c(p.TCCDL()))
	readToReadS := burstCycle
	readToReadO := burstCycle + tCS
	readToWrite := burstCycle + c(p.TRTW())
	readToWriteO := burstCycle + tCS
	readToPrecharge := c(p.TRTP())

	writeToReadL := tWL + burstCycle + c(p.TWTR())
	writeToReadS := writeToReadL
	writeToReadO := burstCycle + tCS
	writeToWriteL := maxInt(burstCycle, c(p.TCCDL()))
	writeToWriteS := burstCycle
	writeToWriteO := burstCycle + tCS
	writeToPrecharge := tWL + burstCycle + c(p.TWR())

	activateToActivate := c(p.TRC())
	activateToActivateL := c(p.TRRDL())
	activateToActivateS := c(p.TRRD())
	activateToAccess := c(p.TRCD())
	activateToPrecharge := t.RAS

	prechargeToActivate := t.RP
	refreshToAny := t.RFC
	powerDownExitToAny := t.XP

	if p.BankGroupsPerRank() == 1 {
		readToReadL = readToReadS
		writeToWriteL = writeToWriteS
		activateToActivateL = activateToActivateS
	}

	t.ReadToPrecharge = readToPrecharge
	t.WritePrecharge = writeToPrecharge

	t.SameBank[signal.CmdKindRead] = []TimeTableEntry{
		{signal.CmdKindRead, readToReadL},
		{signal.CmdKindWrite, readToWrite},
		{signal.CmdKindPrecharge, readToPrecharge},
		{signal.CmdKindPowerDownEnter, t.ReadDelay + 1},
	}
	t.OtherBanksInBankGroup[signal.CmdKindRead] = []TimeTableEntry{
		{signal.CmdKindRead, readToReadL},
		{signal.CmdKindWrite, readToWrite},
	}
	t.SameRank[signal.CmdKindRead] = []TimeTableEntry{
		{signal.CmdKindRead, readToReadS},
		{signal.CmdKindWrite, readToWrite},
	}
	t.OtherRanks[signal.CmdKindRead] = []TimeTableEntry{
		{signal.CmdKindRead, readToReadO},
		{signal.CmdKindWrite, readToWriteO},
	}

	t.SameBank[signal.CmdKindWrite] = []TimeTableEntry{
		{signal.CmdKindRead, writeToReadL},
		{signal.CmdKindWrite, writeToWriteL},
		{signal.CmdKindPrecharge, writeToPrecharge},
		{signal.CmdKindPowerDownEnter, writeToPrecharge},
	}
	t.OtherBanksInBankGroup[signal.CmdKindWrite] = []TimeTableEntry{
		{signal.CmdKindRead, writeToReadL},
		{signal.CmdKindWrite, writeToWriteL},
	}
	t.SameRank[signal.CmdKindWrite] = []TimeTableEntry{
		{signal.CmdKindRead, writeToReadS},
		{signal.CmdKindWrite, writeToWriteS},
	}
	t.OtherRanks[signal.CmdKindWrite] = []TimeTableEntry{
		{signal.CmdKindRead, writeToReadO},
		{signal.CmdKindWrite, writeToWriteO},
	}

	t.SameBank[signal.CmdKindActivate] = []TimeTableEntry{
		{signal.CmdKindActivate, activateToActivate},
		{signal.CmdKindRead, activateToAccess},
		{signal.CmdKindWrite, activateToAccess},
		{signal.CmdKindPrecharge, activateToPrecharge},
	}
	t.OtherBanksInBankGroup[signal.CmdKindActivate] = []TimeTableEntry{
		{signal.CmdKindActivate, activateToActivateL},
	}
	t.SameRank[signal.CmdKindActivate] = []TimeTableEntry{
		{signal.CmdKindActivate, activateToActivateS},
	}

	t.SameBank[signal.CmdKindPrecharge] = []TimeTableEntry{
		{signal.CmdKindActivate, prechargeToActivate},
		{signal.CmdKindRefresh, prechargeToActivate},
		{signal.CmdKindPowerDownEnter, prechargeToActivate},
	}

	t.SameRank[signal.CmdKindRefresh] = []TimeTableEntry{
		{signal.CmdKindActivate, refreshToAny},
		{signal.CmdKindRefresh, refreshToAny},
		{signal.CmdKindPowerDownEnter, refreshToAny},
	}

	t.SameRank[signal.CmdKindPowerDownEnter] = []TimeTableEntry{
		{signal.CmdKindPowerDownExit, powerDownExitToAny},
	}

	t.SameRank[signal.CmdKindPowerDownExit] = []TimeTableEntry{
		{signal.CmdKindActivate, powerDownExitToAny},
		{signal.CmdKindRead, powerDownExitToAny},
		{signal.CmdKindWrite, powerDownExitToAny},
		{signal.CmdKindPrecharge, powerDownExitToAny},
		{signal.CmdKindRefresh, powerDownExitToAny},
		{signal.CmdKindPowerDownEnter, powerDownExitToAny},
	}

	return t
}
