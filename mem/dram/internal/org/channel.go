package org

import (
	"errors"
	"fmt"

	"github.com/sarchlab/ddrsim/mem/dram/internal/signal"
	"github.com/sarchlab/ddrsim/mem/dram/param"
)

// Errors that Check returns when a command does not fit the state of the
// banks.
var (
	ErrBankClosed          = errors.New("bank has no open row")
	ErrRowMismatch         = errors.New("bank has a different row open")
	ErrBankOpen            = errors.New("bank already has an open row")
	ErrRankNotPrecharged   = errors.New("rank has open banks")
	ErrRankPoweredDown     = errors.New("rank is powered down")
	ErrRankNotPoweredDown  = errors.New("rank is not powered down")
	ErrLocationOutOfBounds = errors.New("location is outside the channel")
)

// A TimingViolation reports a command that would issue before the cycle that
// all of its timing constraints allow.
type TimingViolation struct {
	Cmd      *signal.Command
	Now      uint64
	Earliest uint64
}

func (e *TimingViolation) Error() string {
	return fmt.Sprintf("%s at cycle %d violates timing, earliest legal cycle %d",
		e.Cmd, e.Now, e.Earliest)
}

// A Channel tracks the state of every bank and rank that share one command
// bus.
type Channel struct {
	Ranks  []*Rank
	Timing Timing
}

// NewChannel creates a channel with all banks closed and the first refresh
// due one refresh interval after cycle 0.
func NewChannel(p *param.Table) *Channel {
	return NewChannelWithTiming(
		p.RanksPerChannel(), p.BankGroupsPerRank(), p.BanksPerGroup(),
		MakeTiming(p))
}

// NewChannelWithTiming creates a channel of the given shape that follows the
// given timing.
func NewChannelWithTiming(
	numRank, numBankGroup, numBankPerGroup int,
	t Timing,
) *Channel {
	c := &Channel{
		Ranks:  make([]*Rank, numRank),
		Timing: t,
	}

	for i := range c.Ranks {
		c.Ranks[i] = newRank(numBankGroup, numBankPerGroup, t)
	}

	return c
}

// Bank returns the bank that the command targets.
func (c *Channel) Bank(cmd *signal.Command) *Bank {
	loc := cmd.Location
	return c.Ranks[loc.Rank].Banks[loc.BankGroup][loc.Bank]
}

// Rank returns the rank that the command targets.
func (c *Channel) Rank(cmd *signal.Command) *Rank {
	return c.Ranks[cmd.Location.Rank]
}

func (c *Channel) inBounds(cmd *signal.Command) bool {
	loc := cmd.Location
	if loc.Rank < 0 || loc.Rank >= len(c.Ranks) {
		return false
	}

	if cmd.Kind.IsRankWide() {
		return true
	}

	rank := c.Ranks[loc.Rank]
	if loc.BankGroup < 0 || loc.BankGroup >= len(rank.Banks) {
		return false
	}

	return loc.Bank >= 0 && loc.Bank < len(rank.Banks[loc.BankGroup])
}

// EarliestCycle returns the first cycle at which the command satisfies every
// timing constraint that applies to it. The result is the maximum over the
// constraints of the target bank, of its rank, and of the activation window.
// Rank-wide commands take the maximum over every bank of the rank.
func (c *Channel) EarliestCycle(cmd *signal.Command) uint64 {
	rank := c.Rank(cmd)
	earliest := rank.Earliest(cmd.Kind)

	if cmd.Kind.IsRankWide() {
		rank.ForEachBank(func(_, _ int, b *Bank) {
			earliest = maxUint64(earliest, b.Earliest(cmd.Kind))
		})

		return earliest
	}

	earliest = maxUint64(earliest, c.Bank(cmd).Earliest(cmd.Kind))

	if cmd.Kind == signal.CmdKindActivate {
		earliest = maxUint64(earliest, rank.ActivationWindowEarliest())
	}

	return earliest
}

// Check returns an error if the command cannot issue at the given cycle. State
// errors are reported before timing violations.
func (c *Channel) Check(cmd *signal.Command, now uint64) error {
	if err := c.checkState(cmd); err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}

	if earliest := c.EarliestCycle(cmd); now < earliest {
		return &TimingViolation{Cmd: cmd, Now: now, Earliest: earliest}
	}

	return nil
}

func (c *Channel) checkState(cmd *signal.Command) error {
	if !c.inBounds(cmd) {
		return ErrLocationOutOfBounds
	}

	rank := c.Rank(cmd)

	if cmd.Kind == signal.CmdKindPowerDownExit {
		if !rank.PoweredDown {
			return ErrRankNotPoweredDown
		}

		return nil
	}

	if rank.PoweredDown {
		return ErrRankPoweredDown
	}

	switch cmd.Kind {
	case signal.CmdKindRefresh, signal.CmdKindPowerDownEnter:
		if !rank.AllBanksClosed() {
			return ErrRankNotPrecharged
		}
	case signal.CmdKindActivate:
		if c.Bank(cmd).IsOpen() {
			return ErrBankOpen
		}
	case signal.CmdKindPrecharge:
		if !c.Bank(cmd).IsOpen() {
			return ErrBankClosed
		}
	case signal.CmdKindRead, signal.CmdKindWrite:
		bank := c.Bank(cmd)
		if !bank.IsOpen() {
			return ErrBankClosed
		}

		if bank.OpenRow != cmd.Location.Row {
			return ErrRowMismatch
		}
	}

	return nil
}

// Issue checks the command and, if it is legal, applies it to the state of
// the channel.
func (c *Channel) Issue(cmd *signal.Command, now uint64) error {
	if err := c.Check(cmd, now); err != nil {
		return err
	}

	cmd.IssueCycle = now

	rank := c.Rank(cmd)
	rank.start(cmd, now, c.Timing.REFI)

	if !cmd.Kind.IsRankWide() {
		c.Bank(cmd).start(cmd, now)
	}

	c.UpdateTiming(cmd, now)

	return nil
}

// UpdateTiming records the constraints that the command issued at the given
// cycle puts on later commands.
func (c *Channel) UpdateTiming(cmd *signal.Command, now uint64) {
	if cmd.Kind.IsRankWide() {
		c.updateRankWideTiming(cmd, now)
		return
	}

	loc := cmd.Location

	for r, rank := range c.Ranks {
		rank.ForEachBank(func(g, b int, bank *Bank) {
			var table TimeTable

			switch {
			case r != loc.Rank:
				table = c.Timing.OtherRanks
			case g != loc.BankGroup:
				table = c.Timing.SameRank
			case b != loc.Bank:
				table = c.Timing.OtherBanksInBankGroup
			default:
				table = c.Timing.SameBank
			}

			for _, e := range table[cmd.Kind] {
				bank.UpdateTiming(e.NextCmdKind, now+uint64(e.MinCycleInBetween))
			}
		})
	}
}

func (c *Channel) updateRankWideTiming(cmd *signal.Command, now uint64) {
	for r, rank := range c.Ranks {
		table := c.Timing.OtherRanks
		if r == cmd.Location.Rank {
			table = c.Timing.SameRank
		}

		for _, e := range table[cmd.Kind] {
			rank.UpdateTiming(e.NextCmdKind, now+uint64(e.MinCycleInBetween))
		}
	}
}

func maxUint64(a, b uint64) uint64 {
	if a > b {
		return a
	}

	return b
}
