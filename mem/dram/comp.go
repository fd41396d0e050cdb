package dram

import (
	"github.com/sarchlab/ddrsim/mem/dram/internal/trans"
	"github.com/sarchlab/ddrsim/mem/dram/param"
	"github.com/sarchlab/ddrsim/mem/mem"
	"github.com/sarchlab/ddrsim/sim"
)

// A Responder receives the responses of a memory controller.
type Responder interface {
	Respond(rsp mem.Response)
}

// Comp is a memory controller component that runs a Controller on a
// simulation engine. The component sleeps while nothing can change and wakes
// up for arriving requests, finishing bursts and refreshes.
type Comp struct {
	*sim.TickingComponent

	ctrl      *Controller
	responder Responder
	err       error
	shutdown  bool
}

// SetResponder sets the receiver of the responses.
func (c *Comp) SetResponder(r Responder) {
	c.responder = r
}

// Controller returns the controller that schedules the commands.
func (c *Comp) Controller() *Controller {
	return c.ctrl
}

// Table returns the parameter table that the component runs with.
func (c *Comp) Table() *param.Table {
	return c.ctrl.Table()
}

// Stats returns the counters collected so far.
func (c *Comp) Stats() Stats {
	return c.ctrl.Stats()
}

// AcceptHook registers a hook that observes commands and completed requests.
func (c *Comp) AcceptHook(hook sim.Hook) {
	c.ctrl.AcceptHook(hook)
}

// NumHooks returns the number of hooks registered.
func (c *Comp) NumHooks() int {
	return c.ctrl.NumHooks()
}

// BufferLevel reports how many bursts wait in a request buffer.
type BufferLevel struct {
	name  string
	queue *trans.Queue
}

// Name returns the name of the buffer.
func (b BufferLevel) Name() string { return b.name }

// Size returns the number of bursts in the buffer.
func (b BufferLevel) Size() int { return b.queue.Len() }

// Capacity returns the number of bursts the buffer can hold.
func (b BufferLevel) Capacity() int { return b.queue.Capacity }

// Buffers returns the read and the write buffer.
func (c *Comp) Buffers() []BufferLevel {
	return []BufferLevel{
		{name: c.Name() + ".ReadBuffer", queue: c.ctrl.readQueue},
		{name: c.Name() + ".WriteBuffer", queue: c.ctrl.writeQueue},
	}
}

// Err returns the error that stopped the component, if any.
func (c *Comp) Err() error {
	return c.err
}

// Shutdown lets the component stop ticking once every accepted request is
// responded to. Without it, refreshes keep the component alive forever.
func (c *Comp) Shutdown() {
	c.shutdown = true
	c.TickNow()
}

// CanAccept returns true if the request fits into the buffers.
func (c *Comp) CanAccept(req mem.AccessReq) bool {
	return c.ctrl.CanAccept(req)
}

// Accept hands a request to the controller at the current cycle.
func (c *Comp) Accept(req mem.AccessReq) error {
	if err := c.ctrl.Accept(req, c.CurrentCycle()); err != nil {
		return err
	}

	c.TickLater()

	return nil
}

// Tick runs the controller for one cycle.
func (c *Comp) Tick() bool {
	if c.err != nil {
		return false
	}

	now := c.CurrentCycle()

	madeProgress, err := c.ctrl.Tick(now)
	if err != nil {
		c.err = err
		return false
	}

	madeProgress = c.respond() || madeProgress
	if madeProgress {
		return true
	}

	if c.shutdown && !c.ctrl.HasRequests() {
		return false
	}

	if next, ok := c.ctrl.NextActionCycle(now); ok {
		c.TickAt(c.Freq.CycleTime(next))
	}

	return false
}

func (c *Comp) respond() bool {
	finished := c.ctrl.takeFinished()

	for _, f := range finished {
		rsp := mem.Response{
			Req:       f.trans.Req,
			Issued:    c.Freq.CycleTime(f.trans.ArrivalCycle),
			Completed: c.Freq.CycleTime(f.cycle),
			Forwarded: allForwarded(f),
		}

		c.ctrl.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    HookPosReqComplete,
			Item:   rsp,
		})

		if c.responder != nil {
			c.responder.Respond(rsp)
		}
	}

	return len(finished) > 0
}

func allForwarded(f finishedTrans) bool {
	for _, st := range f.trans.SubTransactions {
		if !st.Forwarded {
			return false
		}
	}

	return len(f.trans.SubTransactions) > 0
}
