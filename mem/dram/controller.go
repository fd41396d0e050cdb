// Package dram provides a DRAM memory controller that issues activate, read,
// write, precharge, refresh and power-down commands cycle by cycle, under the
// timing constraints of a DRAM parameter table.
package dram

import (
	"errors"
	"fmt"
	"math"

	"github.com/sarchlab/ddrsim/mem/dram/internal/addressmapping"
	"github.com/sarchlab/ddrsim/mem/dram/internal/cmdq"
	"github.com/sarchlab/ddrsim/mem/dram/internal/org"
	"github.com/sarchlab/ddrsim/mem/dram/internal/signal"
	"github.com/sarchlab/ddrsim/mem/dram/internal/trans"
	"github.com/sarchlab/ddrsim/mem/dram/param"
	"github.com/sarchlab/ddrsim/mem/mem"
	"github.com/sarchlab/ddrsim/sim"
)

// HookPosCmdIssue marks the issuing of a DRAM command. The hook item is the
// *signal.Command.
var HookPosCmdIssue = &sim.HookPos{Name: "DRAM Command Issue"}

// IsColumnCommand returns true if a HookPosCmdIssue item is a read or a write,
// that is, a command that moves one burst of data.
func IsColumnCommand(item any) bool {
	cmd, ok := item.(*signal.Command)

	return ok && cmd.Kind.IsColumnAccess()
}

// HookPosReqComplete marks the completion of a request. The hook item is the
// mem.Response.
var HookPosReqComplete = &sim.HookPos{Name: "DRAM Request Complete"}

// HookPosRefreshPending marks a rank that stops taking new requests until it
// is refreshed. The hook item is the rank index.
var HookPosRefreshPending = &sim.HookPos{Name: "DRAM Refresh Pending"}

// Errors returned when a request cannot be accepted.
var (
	ErrBufferFull         = errors.New("request buffer is full")
	ErrAddressOutOfRange  = errors.New("address is beyond the channel capacity")
	errUnsupportedRequest = errors.New("unsupported request type")
)

// A RefreshDeadlineError reports a rank that was not refreshed in time. Real
// DRAM loses data in this case, so the simulation must stop.
type RefreshDeadlineError struct {
	Rank     int
	Deadline uint64
	Now      uint64
}

func (e *RefreshDeadlineError) Error() string {
	return fmt.Sprintf(
		"rank %d missed its refresh deadline at cycle %d, now at cycle %d",
		e.Rank, e.Deadline, e.Now)
}

// PagePolicy decides whether rows stay open after they are accessed.
type PagePolicy int

// Page policies.
const (
	// OpenPage keeps a row open until a request to another row needs the
	// bank.
	OpenPage PagePolicy = iota

	// ClosePage precharges a bank as soon as no queued request hits its open
	// row.
	ClosePage
)

// ParsePagePolicy converts "open" or "close" into a PagePolicy.
func ParsePagePolicy(s string) (PagePolicy, error) {
	switch s {
	case "open":
		return OpenPage, nil
	case "close":
		return ClosePage, nil
	}

	return 0, fmt.Errorf("unknown page policy %q", s)
}

func (p PagePolicy) String() string {
	if p == ClosePage {
		return "close"
	}

	return "open"
}

type finishedTrans struct {
	trans *signal.Transaction
	cycle uint64
}

// Controller schedules the commands of one DRAM channel. It is driven by
// calling Tick once per command-clock cycle. A Controller is not safe for
// concurrent use.
type Controller struct {
	sim.HookableBase

	table    *param.Table
	channel  *org.Channel
	mapper   addressmapping.Mapper
	splitter trans.SubTransSplitter

	readQueue  *trans.Queue
	writeQueue *trans.Queue

	policy     cmdq.Policy
	pagePolicy PagePolicy

	writeHigh int
	writeLow  int
	draining  bool

	refreshLead    uint64
	refreshPending []bool

	powerDownIdle uint64
	lastActivity  []uint64

	inflight []*signal.SubTransaction
	finished []finishedTrans

	// nextCandidateCycle is the earliest cycle at which a candidate that was
	// not ready in the last tick becomes ready.
	nextCandidateCycle uint64

	stats Stats
}

// Table returns the parameter table the controller runs with.
func (c *Controller) Table() *param.Table {
	return c.table
}

// Channel returns the bank and rank state of the channel.
func (c *Controller) Channel() *org.Channel {
	return c.channel
}

// RefreshLead returns how many cycles before a refresh deadline the
// controller stops serving the rank to prepare the refresh.
func (c *Controller) RefreshLead() uint64 {
	return c.refreshLead
}

// Stats returns the counters collected so far.
func (c *Controller) Stats() Stats {
	return c.stats
}

// CanAccept returns true if the buffers have room for every burst of the
// request.
func (c *Controller) CanAccept(req mem.AccessReq) bool {
	if !c.inRange(req) {
		return false
	}

	n := trans.NumBursts(req.GetAddress(), req.GetByteSize(),
		c.table.BurstSize())

	if req.IsWrite() {
		return c.writeQueue.CanPush(n)
	}

	return c.readQueue.CanPush(n)
}

// inRange returns true if every byte of the request lies in the channel.
func (c *Controller) inRange(req mem.AccessReq) bool {
	addr, size := req.GetAddress(), req.GetByteSize()
	capacity := c.mapper.Capacity()

	return addr < capacity && size <= capacity-addr
}

// Accept queues a request that arrives at the given cycle. Reads that hit a
// queued write are served from the write queue. Writes to a burst that is
// already queued merge with the queued write. Writes are acknowledged as soon
// as they are queued.
func (c *Controller) Accept(req mem.AccessReq, now uint64) error {
	switch req.(type) {
	case *mem.ReadReq, *mem.WriteReq:
	default:
		return errUnsupportedRequest
	}

	if !c.inRange(req) {
		return fmt.Errorf("%w: 0x%x", ErrAddressOutOfRange, req.GetAddress())
	}

	if !c.CanAccept(req) {
		return ErrBufferFull
	}

	t := &signal.Transaction{Req: req, ArrivalCycle: now}
	c.splitter.Split(t)

	if t.IsWrite() {
		c.acceptWrite(t, now)
	} else {
		c.acceptRead(t, now)
	}

	return nil
}

func (c *Controller) acceptRead(t *signal.Transaction, now uint64) {
	c.stats.NumReads++

	for _, st := range t.SubTransactions {
		c.stats.NumReadBursts++

		if c.writeQueue.Contains(st.Address) {
			st.Forwarded = true
			st.Issued = true
			st.DoneCycle = now
			c.inflight = append(c.inflight, st)
			c.stats.NumForwarded++

			continue
		}

		c.readQueue.Push(st)
	}
}

func (c *Controller) acceptWrite(t *signal.Transaction, now uint64) {
	c.stats.NumWrites++

	for _, st := range t.SubTransactions {
		c.stats.NumWriteBursts++

		if c.writeQueue.Contains(st.Address) {
			st.Completed = true
			c.stats.NumMerged++

			continue
		}

		c.writeQueue.Push(st)
	}

	c.finished = append(c.finished, finishedTrans{trans: t, cycle: now})
}

// Tick advances the controller by one cycle. It retires finished bursts,
// tracks refresh deadlines and issues at most one command. It returns true if
// any state changed.
func (c *Controller) Tick(now uint64) (madeProgress bool, err error) {
	madeProgress = c.retire(now)

	progress, err := c.manageRefresh(now)
	if err != nil {
		return madeProgress, err
	}

	madeProgress = progress || madeProgress

	issued, err := c.issue(now)
	if err != nil {
		return madeProgress, err
	}

	return issued || madeProgress, nil
}

func (c *Controller) retire(now uint64) bool {
	if len(c.inflight) == 0 {
		return false
	}

	madeProgress := false
	kept := c.inflight[:0]

	for _, st := range c.inflight {
		if st.DoneCycle > now {
			kept = append(kept, st)
			continue
		}

		st.Completed = true
		madeProgress = true

		if st.IsRead() && st.Transaction.IsCompleted() {
			c.stats.NumReadsDone++
			c.stats.TotalReadLatency += now - st.Transaction.ArrivalCycle
			c.finished = append(c.finished,
				finishedTrans{trans: st.Transaction, cycle: now})
		}
	}

	for i := len(kept); i < len(c.inflight); i++ {
		c.inflight[i] = nil
	}

	c.inflight = kept

	return madeProgress
}

func (c *Controller) manageRefresh(now uint64) (bool, error) {
	madeProgress := false

	for r, rank := range c.channel.Ranks {
		if now > rank.RefreshDeadline {
			return madeProgress, &RefreshDeadlineError{
				Rank:     r,
				Deadline: rank.RefreshDeadline,
				Now:      now,
			}
		}

		if !c.refreshPending[r] && now+c.refreshLead >= rank.RefreshDeadline {
			c.refreshPending[r] = true
			madeProgress = true

			c.InvokeHook(sim.HookCtx{
				Domain: c,
				Pos:    HookPosRefreshPending,
				Item:   r,
			})
		}
	}

	return madeProgress, nil
}

func (c *Controller) issue(now uint64) (bool, error) {
	candidates := c.candidates(now)
	c.nextCandidateCycle = math.MaxUint64

	for i := range candidates {
		e := c.channel.EarliestCycle(candidates[i].Cmd)
		candidates[i].Earliest = e

		if e > now && e < c.nextCandidateCycle {
			c.nextCandidateCycle = e
		}
	}

	idx := c.policy.Pick(now, candidates)
	if idx < 0 {
		return false, nil
	}

	cmd := candidates[idx].Cmd
	cmd.ID = sim.GetIDGenerator().Generate()

	if err := c.channel.Issue(cmd, now); err != nil {
		return false, err
	}

	c.afterIssue(cmd, now)

	return true, nil
}

func (c *Controller) afterIssue(cmd *signal.Command, now uint64) {
	c.stats.NumCmd[cmd.Kind]++
	c.lastActivity[cmd.Location.Rank] = now

	switch cmd.Kind {
	case signal.CmdKindRead:
		st := cmd.SubTrans
		st.Issued = true
		st.DoneCycle = now + uint64(c.channel.Timing.ReadDelay)
		c.readQueue.Remove(st)
		c.inflight = append(c.inflight, st)
	case signal.CmdKindWrite:
		st := cmd.SubTrans
		st.Issued = true
		st.DoneCycle = now + uint64(c.channel.Timing.WriteDelay)
		c.writeQueue.Remove(st)
		c.inflight = append(c.inflight, st)
	case signal.CmdKindRefresh:
		c.refreshPending[cmd.Location.Rank] = false
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosCmdIssue,
		Item:   cmd,
	})
}

// takeFinished returns the transactions that can be responded to and forgets
// them.
func (c *Controller) takeFinished() []finishedTrans {
	f := c.finished
	c.finished = nil

	return f
}

// HasRequests returns true if a request is buffered, being served, or waiting
// to be responded to.
func (c *Controller) HasRequests() bool {
	return c.readQueue.Len() > 0 ||
		c.writeQueue.Len() > 0 ||
		len(c.inflight) > 0 ||
		len(c.finished) > 0
}

// NextActionCycle returns the first cycle after now at which the controller
// may change state without receiving a new request. It returns false if no
// such cycle exists.
func (c *Controller) NextActionCycle(now uint64) (uint64, bool) {
	next := uint64(math.MaxUint64)

	consider := func(cycle uint64) {
		if cycle > now && cycle < next {
			next = cycle
		}
	}

	consider(c.nextCandidateCycle)

	for _, st := range c.inflight {
		consider(st.DoneCycle)
	}

	for r, rank := range c.channel.Ranks {
		if !c.refreshPending[r] {
			consider(c.refreshStart(rank))
		}

		if c.canPowerDown(r) {
			consider(c.lastActivity[r] + c.powerDownIdle)
		}
	}

	if next == math.MaxUint64 {
		return 0, false
	}

	return next, true
}

func (c *Controller) refreshStart(rank *org.Rank) uint64 {
	if rank.RefreshDeadline < c.refreshLead {
		return 0
	}

	return rank.RefreshDeadline - c.refreshLead
}
