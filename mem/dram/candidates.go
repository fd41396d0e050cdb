package dram

import (
	"github.com/sarchlab/ddrsim/mem/dram/internal/addressmapping"
	"github.com/sarchlab/ddrsim/mem/dram/internal/cmdq"
	"github.com/sarchlab/ddrsim/mem/dram/internal/org"
	"github.com/sarchlab/ddrsim/mem/dram/internal/signal"
	"github.com/sarchlab/ddrsim/mem/dram/internal/trans"
)

type bankKey struct {
	rank, group, bank int
}

func keyOf(loc addressmapping.Location) bankKey {
	return bankKey{loc.Rank, loc.BankGroup, loc.Bank}
}

// candidateSet collects the commands that could issue in a cycle. Activates,
// precharges and power-down exits are collected once per bank or rank, on
// behalf of the oldest request that needs them.
type candidateSet struct {
	list    []cmdq.Candidate
	bankCmd map[bankKey]bool
	pdx     map[int]bool
}

func newCandidateSet() *candidateSet {
	return &candidateSet{
		bankCmd: make(map[bankKey]bool),
		pdx:     make(map[int]bool),
	}
}

func (s *candidateSet) add(c cmdq.Candidate) {
	s.list = append(s.list, c)
}

func (s *candidateSet) addBankCmd(c cmdq.Candidate) {
	k := keyOf(c.Cmd.Location)
	if s.bankCmd[k] {
		return
	}

	s.bankCmd[k] = true
	s.add(c)
}

func (s *candidateSet) addPowerDownExit(rank int, arrival uint64, urgent bool) {
	if s.pdx[rank] {
		return
	}

	s.pdx[rank] = true
	s.add(cmdq.Candidate{
		Cmd: &signal.Command{
			Kind:     signal.CmdKindPowerDownExit,
			Location: addressmapping.Location{Rank: rank},
		},
		Arrival: arrival,
		Urgent:  urgent,
	})
}

func (c *Controller) candidates(now uint64) []cmdq.Candidate {
	set := newCandidateSet()

	c.refreshCandidates(set, now)
	c.requestCandidates(set)
	c.maintenanceCandidates(set, now)

	return set.list
}

func (c *Controller) refreshCandidates(set *candidateSet, now uint64) {
	for r, rank := range c.channel.Ranks {
		if !c.refreshPending[r] {
			continue
		}

		if rank.PoweredDown {
			set.addPowerDownExit(r, now, true)
			continue
		}

		if rank.AllBanksClosed() {
			set.add(cmdq.Candidate{
				Cmd: &signal.Command{
					Kind:     signal.CmdKindRefresh,
					Location: addressmapping.Location{Rank: r},
				},
				Arrival: now,
				Urgent:  true,
			})

			continue
		}

		rank.ForEachBank(func(g, b int, bank *org.Bank) {
			if !bank.IsOpen() {
				return
			}

			set.addBankCmd(cmdq.Candidate{
				Cmd: &signal.Command{
					Kind: signal.CmdKindPrecharge,
					Location: addressmapping.Location{
						Rank: r, BankGroup: g, Bank: b, Row: bank.OpenRow,
					},
				},
				Arrival: now,
				Urgent:  true,
			})
		})
	}
}

// activeQueue returns the queue to serve. Writes are served when the reads
// run out or while the write queue drains from its high watermark down to its
// low watermark.
func (c *Controller) activeQueue() (*trans.Queue, signal.CmdKind) {
	n := c.writeQueue.Len()

	switch {
	case n >= c.writeHigh:
		c.draining = true
	case n <= c.writeLow:
		c.draining = false
	}

	if n > 0 && (c.draining || c.readQueue.Len() == 0) {
		return c.writeQueue, signal.CmdKindWrite
	}

	return c.readQueue, signal.CmdKindRead
}

func (c *Controller) requestCandidates(set *candidateSet) {
	q, colKind := c.activeQueue()
	entries := q.Entries()
	hits := c.queuedRowHits(entries)

	for _, st := range entries {
		loc := st.Location
		if c.refreshPending[loc.Rank] {
			continue
		}

		if c.channel.Ranks[loc.Rank].PoweredDown {
			set.addPowerDownExit(loc.Rank, st.ArrivalCycle, false)
			continue
		}

		bank := c.channel.Ranks[loc.Rank].Banks[loc.BankGroup][loc.Bank]

		switch {
		case !bank.IsOpen():
			set.addBankCmd(cmdq.Candidate{
				Cmd:     &signal.Command{Kind: signal.CmdKindActivate, Location: loc},
				Arrival: st.ArrivalCycle,
			})
		case bank.IsRowHit(loc.Row):
			set.add(cmdq.Candidate{
				Cmd: &signal.Command{
					Kind:     colKind,
					Location: loc,
					SubTrans: st,
				},
				Arrival: st.ArrivalCycle,
				RowHit:  true,
			})
		case !hits[keyOf(loc)]:
			set.addBankCmd(cmdq.Candidate{
				Cmd: &signal.Command{
					Kind:     signal.CmdKindPrecharge,
					Location: loc,
				},
				Arrival: st.ArrivalCycle,
			})
		}
	}
}

// queuedRowHits returns the banks whose open row is hit by a queued request.
// Such banks are not precharged for a conflicting request.
func (c *Controller) queuedRowHits(
	entries []*signal.SubTransaction,
) map[bankKey]bool {
	hits := make(map[bankKey]bool)

	for _, st := range entries {
		loc := st.Location
		bank := c.channel.Ranks[loc.Rank].Banks[loc.BankGroup][loc.Bank]

		if bank.IsRowHit(loc.Row) {
			hits[keyOf(loc)] = true
		}
	}

	return hits
}

func (c *Controller) maintenanceCandidates(set *candidateSet, now uint64) {
	if c.pagePolicy == ClosePage {
		c.closePageCandidates(set)
	}

	if c.powerDownIdle == 0 {
		return
	}

	for r := range c.channel.Ranks {
		if c.canPowerDown(r) && now >= c.lastActivity[r]+c.powerDownIdle {
			set.add(cmdq.Candidate{
				Cmd: &signal.Command{
					Kind:     signal.CmdKindPowerDownEnter,
					Location: addressmapping.Location{Rank: r},
				},
				Arrival: now,
			})
		}
	}
}

func (c *Controller) closePageCandidates(set *candidateSet) {
	hits := c.queuedRowHits(c.readQueue.Entries())
	for k := range c.queuedRowHits(c.writeQueue.Entries()) {
		hits[k] = true
	}

	for r, rank := range c.channel.Ranks {
		if c.refreshPending[r] || rank.PoweredDown {
			continue
		}

		rank.ForEachBank(func(g, b int, bank *org.Bank) {
			k := bankKey{r, g, b}
			if !bank.IsOpen() || hits[k] {
				return
			}

			set.addBankCmd(cmdq.Candidate{
				Cmd: &signal.Command{
					Kind: signal.CmdKindPrecharge,
					Location: addressmapping.Location{
						Rank: r, BankGroup: g, Bank: b, Row: bank.OpenRow,
					},
				},
				Arrival: bank.LastIssue,
			})
		})
	}
}

func (c *Controller) canPowerDown(r int) bool {
	rank := c.channel.Ranks[r]

	if c.powerDownIdle == 0 ||
		c.refreshPending[r] ||
		rank.PoweredDown ||
		!rank.AllBanksClosed() {
		return false
	}

	return !c.rankHasRequests(r)
}

func (c *Controller) rankHasRequests(r int) bool {
	for _, q := range []*trans.Queue{c.readQueue, c.writeQueue} {
		for _, st := range q.Entries() {
			if st.Location.Rank == r {
				return true
			}
		}
	}

	return false
}
