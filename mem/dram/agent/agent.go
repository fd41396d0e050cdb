// Package agent provides a traffic generator that drives a memory controller
// with read and write requests.
package agent

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/sarchlab/ddrsim/mem/mem"
	"github.com/sarchlab/ddrsim/sim"
)

// A MemPort is where the agent sends its requests.
type MemPort interface {
	CanAccept(req mem.AccessReq) bool
	Accept(req mem.AccessReq) error
}

// Pattern is the way the agent picks addresses.
type Pattern int

// Address patterns.
const (
	Random Pattern = iota
	Linear
)

// ParsePattern converts "random" or "linear" into a Pattern.
func ParsePattern(s string) (Pattern, error) {
	switch s {
	case "random":
		return Random, nil
	case "linear":
		return Linear, nil
	}

	return 0, fmt.Errorf("unknown address pattern %q", s)
}

func (p Pattern) String() string {
	if p == Linear {
		return "linear"
	}

	return "random"
}

// Stats summarizes the requests that the agent has seen completed.
type Stats struct {
	NumRead      int
	NumWrite     int
	NumForwarded int

	TotalReadLatency sim.VTimeInSec
	MaxReadLatency   sim.VTimeInSec
}

// AvgReadLatency returns the mean read latency in seconds.
func (s Stats) AvgReadLatency() sim.VTimeInSec {
	if s.NumRead == 0 {
		return 0
	}

	return s.TotalReadLatency / sim.VTimeInSec(s.NumRead)
}

// An Agent is a component that generates a fixed number of memory accesses,
// one per cycle at most, and waits for all of them to complete.
type Agent struct {
	*sim.TickingComponent

	Mem MemPort

	maxAddress uint64
	byteSize   uint64
	readRatio  float64
	pattern    Pattern
	rnd        *rand.Rand

	left     int
	nextAddr uint64
	blocked  mem.AccessReq
	pending  map[string]mem.AccessReq
	onFinish func()
	finished bool

	stats Stats
}

// Stats returns the statistics of the completed requests.
func (a *Agent) Stats() Stats {
	return a.stats
}

// NumLeft returns the number of requests that are not sent yet.
func (a *Agent) NumLeft() int {
	return a.left
}

// NumPending returns the number of requests sent but not completed.
func (a *Agent) NumPending() int {
	return len(a.pending)
}

// Finished returns true once every request is sent and completed.
func (a *Agent) Finished() bool {
	return a.finished
}

// Tick sends one request if the memory port can take it.
func (a *Agent) Tick() bool {
	if a.left == 0 {
		a.finishIfDone()
		return false
	}

	req := a.blocked
	if req == nil {
		req = a.nextReq()
	}

	if !a.Mem.CanAccept(req) {
		a.blocked = req

		// A response wakes the agent up. Without any response to wait for,
		// keep polling.
		return len(a.pending) == 0
	}

	if err := a.Mem.Accept(req); err != nil {
		log.Panicf("agent %s: %v", a.Name(), err)
	}

	a.blocked = nil
	a.left--
	a.pending[req.ReqID()] = req

	return true
}

func (a *Agent) nextReq() mem.AccessReq {
	addr := a.nextAddress()

	if a.rnd.Float64() < a.readRatio {
		return mem.ReadReqBuilder{}.
			WithAddress(addr).
			WithByteSize(a.byteSize).
			Build()
	}

	return mem.WriteReqBuilder{}.
		WithAddress(addr).
		WithByteSize(a.byteSize).
		Build()
}

func (a *Agent) nextAddress() uint64 {
	n := a.maxAddress / a.byteSize

	if a.pattern == Random {
		return a.rnd.Uint64() % n * a.byteSize
	}

	addr := a.nextAddr
	a.nextAddr = (a.nextAddr + a.byteSize) % (n * a.byteSize)

	return addr
}

// Respond receives the response of a request sent earlier.
func (a *Agent) Respond(rsp mem.Response) {
	id := rsp.Req.ReqID()
	if _, ok := a.pending[id]; !ok {
		log.Panicf("agent %s: response to unknown request %s", a.Name(), id)
	}

	delete(a.pending, id)

	if rsp.Forwarded {
		a.stats.NumForwarded++
	}

	if rsp.Req.IsWrite() {
		a.stats.NumWrite++
	} else {
		lat := rsp.Latency()
		a.stats.NumRead++
		a.stats.TotalReadLatency += lat

		if lat > a.stats.MaxReadLatency {
			a.stats.MaxReadLatency = lat
		}
	}

	if a.left > 0 {
		a.TickLater()
		return
	}

	a.finishIfDone()
}

func (a *Agent) finishIfDone() {
	if a.left > 0 || len(a.pending) > 0 || a.finished {
		return
	}

	a.finished = true

	if a.onFinish != nil {
		a.onFinish()
	}
}
