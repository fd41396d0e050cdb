package agent

import (
	"math/rand"

	"github.com/sarchlab/ddrsim/mem/mem"
	"github.com/sarchlab/ddrsim/sim"
)

// Builder can build agents.
type Builder struct {
	engine     sim.Engine
	freq       sim.Freq
	numAccess  int
	readRatio  float64
	maxAddress uint64
	byteSize   uint64
	pattern    Pattern
	seed       int64
	onFinish   func()
}

// MakeBuilder creates a builder with default configuration.
func MakeBuilder() Builder {
	return Builder{
		freq:       1 * sim.GHz,
		numAccess:  10000,
		readRatio:  0.5,
		maxAddress: 1 << 30,
		byteSize:   64,
		pattern:    Random,
		seed:       1,
	}
}

// WithEngine sets the engine that the agent runs on.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency at which the agent sends requests.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithNumAccess sets the number of requests to send.
func (b Builder) WithNumAccess(n int) Builder {
	b.numAccess = n
	return b
}

// WithReadRatio sets the share of reads among the requests.
func (b Builder) WithReadRatio(r float64) Builder {
	b.readRatio = r
	return b
}

// WithMaxAddress limits the addresses to [0, max).
func (b Builder) WithMaxAddress(max uint64) Builder {
	b.maxAddress = max
	return b
}

// WithByteSize sets the size of every access.
func (b Builder) WithByteSize(n uint64) Builder {
	b.byteSize = n
	return b
}

// WithPattern sets the address pattern.
func (b Builder) WithPattern(p Pattern) Builder {
	b.pattern = p
	return b
}

// WithSeed sets the seed of the random generator.
func (b Builder) WithSeed(seed int64) Builder {
	b.seed = seed
	return b
}

// WithFinishCallback sets a function to call once every request completes.
func (b Builder) WithFinishCallback(f func()) Builder {
	b.onFinish = f
	return b
}

// Build creates an agent that sends requests to the memory port. An agent
// with nothing to send finishes on its first tick.
func (b Builder) Build(name string, port MemPort) *Agent {
	if b.numAccess < 0 {
		panic("agent: number of accesses must not be negative")
	}

	if b.byteSize == 0 || b.maxAddress < b.byteSize {
		panic("agent: max address must hold at least one access")
	}

	a := &Agent{
		Mem:        port,
		maxAddress: b.maxAddress,
		byteSize:   b.byteSize,
		readRatio:  b.readRatio,
		pattern:    b.pattern,
		rnd:        rand.New(rand.NewSource(b.seed)),
		left:       b.numAccess,
		pending:    make(map[string]mem.AccessReq),
		onFinish:   b.onFinish,
	}
	a.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, a)

	a.TickNow()

	return a
}
