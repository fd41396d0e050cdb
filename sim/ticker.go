package sim

import (
	"sync"
)

// TickEvent is a generic event that almost all the component can use to
// update their status.
type TickEvent struct {
	EventBase
}

// MakeTickEvent creates a new TickEvent
func MakeTickEvent(handler Handler, time VTimeInSec) TickEvent {
	evt := TickEvent{}
	evt.ID = GetIDGenerator().Generate()
	evt.handler = handler
	evt.time = time

	return evt
}

// A Ticker is an object that updates states with ticks.
type Ticker interface {
	Tick() bool
}

// An ErrorReporter is a Ticker that can fail. If Err returns an error after a
// tick, the tick event returns it and the engine stops.
type ErrorReporter interface {
	Err() error
}

// TickScheduler can help schedule tick events.
type TickScheduler struct {
	lock    sync.Mutex
	handler Handler
	Freq    Freq
	Engine  Engine

	pending []VTimeInSec
}

// NewTickScheduler creates a scheduler for tick events.
func NewTickScheduler(
	handler Handler,
	engine Engine,
	freq Freq,
) *TickScheduler {
	ticker := new(TickScheduler)

	ticker.handler = handler
	ticker.Engine = engine
	ticker.Freq = freq

	return ticker
}

// TickNow schedule a Tick event at the current time.
func (t *TickScheduler) TickNow() {
	t.TickAt(t.Freq.ThisTick(t.CurrentTime()))
}

// TickLater will schedule a tick event at the cycle after the now time.
func (t *TickScheduler) TickLater() {
	t.TickAt(t.Freq.NextTick(t.CurrentTime()))
}

// TickAt schedules a tick event at the given time, unless a tick that is no
// later than the given time is already pending. The pending tick will decide
// again whether the component needs to tick.
func (t *TickScheduler) TickAt(time VTimeInSec) {
	t.lock.Lock()
	defer t.lock.Unlock()

	now := t.Engine.CurrentTime()
	kept := t.pending[:0]

	for _, p := range t.pending {
		if p >= now {
			kept = append(kept, p)
		}
	}

	t.pending = kept

	for _, p := range t.pending {
		if p <= time {
			return
		}
	}

	t.pending = append(t.pending, time)
	t.Engine.Schedule(MakeTickEvent(t.handler, time))
}

// tickStarted forgets the pending tick that is being handled.
func (t *TickScheduler) tickStarted(time VTimeInSec) {
	t.lock.Lock()
	defer t.lock.Unlock()

	kept := t.pending[:0]

	for _, p := range t.pending {
		if p > time {
			kept = append(kept, p)
		}
	}

	t.pending = kept
}

// CurrentTime returns the current time of the engine.
func (t *TickScheduler) CurrentTime() VTimeInSec {
	return t.Engine.CurrentTime()
}

// CurrentCycle returns the cycle count of the current time.
func (t *TickScheduler) CurrentCycle() uint64 {
	return t.Freq.Cycle(t.CurrentTime())
}

// TickingComponent is a type of component that update states from cycle to
// cycle. A programmer would only need to program a tick function for a ticking
// component.
type TickingComponent struct {
	*ComponentBase
	*TickScheduler

	ticker Ticker
}

// Handle triggers the tick function of the TickingComponent
func (c *TickingComponent) Handle(e Event) error {
	c.tickStarted(e.Time())

	madeProgress := c.ticker.Tick()

	if r, ok := c.ticker.(ErrorReporter); ok {
		if err := r.Err(); err != nil {
			return err
		}
	}

	if madeProgress {
		c.TickLater()
	}

	return nil
}

// NewTickingComponent creates a new ticking component
func NewTickingComponent(
	name string,
	engine Engine,
	freq Freq,
	ticker Ticker,
) *TickingComponent {
	tc := new(TickingComponent)
	tc.TickScheduler = NewTickScheduler(tc, engine, freq)
	tc.ComponentBase = NewComponentBase(name)
	tc.ticker = ticker

	return tc
}
