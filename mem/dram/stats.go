package dram

import (
	"github.com/sarchlab/ddrsim/mem/dram/internal/signal"
)

// Stats counts the requests and commands handled by a controller.
type Stats struct {
	NumReads       uint64
	NumWrites      uint64
	NumReadBursts  uint64
	NumWriteBursts uint64

	// NumForwarded counts read bursts served from the write queue.
	NumForwarded uint64

	// NumMerged counts write bursts merged into an already queued write.
	NumMerged uint64

	NumReadsDone     uint64
	TotalReadLatency uint64

	NumCmd [signal.NumCmdKind]uint64
}

// AvgReadLatency returns the mean number of cycles between the arrival and the
// completion of a read.
func (s Stats) AvgReadLatency() float64 {
	if s.NumReadsDone == 0 {
		return 0
	}

	return float64(s.TotalReadLatency) / float64(s.NumReadsDone)
}

// Commands returns the number of issued commands, keyed by mnemonic.
func (s Stats) Commands() map[string]uint64 {
	m := make(map[string]uint64, len(s.NumCmd))

	for k, n := range s.NumCmd {
		m[signal.CmdKind(k).String()] = n
	}

	return m
}

// RowHitRate returns the share of column accesses that did not need an
// activate.
func (s Stats) RowHitRate() float64 {
	col := s.NumCmd[signal.CmdKindRead] + s.NumCmd[signal.CmdKindWrite]
	if col == 0 {
		return 0
	}

	act := s.NumCmd[signal.CmdKindActivate]
	if act >= col {
		return 0
	}

	return float64(col-act) / float64(col)
}
