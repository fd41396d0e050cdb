package dram

import (
	"fmt"

	"github.com/sarchlab/ddrsim/mem/dram/internal/addressmapping"
	"github.com/sarchlab/ddrsim/mem/dram/internal/cmdq"
	"github.com/sarchlab/ddrsim/mem/dram/internal/org"
	"github.com/sarchlab/ddrsim/mem/dram/internal/trans"
	"github.com/sarchlab/ddrsim/mem/dram/param"
	"github.com/sarchlab/ddrsim/sim"
)

// Builder can build new memory controllers.
type Builder struct {
	engine sim.Engine
	table  *param.Table
	hooks  []sim.Hook

	policy         cmdq.Policy
	pagePolicy     PagePolicy
	scheme         addressmapping.Scheme
	writeHighRatio float64
	writeLowRatio  float64
	powerDownIdle  uint64
}

// MakeBuilder creates a builder with default configuration. The default
// device is DDR5-4800 with an FR-FCFS scheduler and an open-page policy.
func MakeBuilder() Builder {
	return Builder{
		table:          param.DDR5_4800_16x4(),
		policy:         cmdq.FRFCFS{},
		pagePolicy:     OpenPage,
		scheme:         addressmapping.RoRaBaCo,
		writeHighRatio: 0.85,
		writeLowRatio:  0.5,
	}
}

// WithEngine sets the engine that the controller runs on.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithParamTable sets the device parameters.
func (b Builder) WithParamTable(t *param.Table) Builder {
	b.table = t
	return b
}

// WithPolicy sets the command scheduling policy.
func (b Builder) WithPolicy(p cmdq.Policy) Builder {
	b.policy = p
	return b
}

// WithPolicyName sets the command scheduling policy by name, "fcfs" or
// "frfcfs".
func (b Builder) WithPolicyName(name string) (Builder, error) {
	p, err := cmdq.ParsePolicy(name)
	if err != nil {
		return b, err
	}

	b.policy = p

	return b, nil
}

// WithPagePolicy sets the page policy.
func (b Builder) WithPagePolicy(p PagePolicy) Builder {
	b.pagePolicy = p
	return b
}

// WithAddressMapping sets the order in which address bits select the column,
// the bank and the rank.
func (b Builder) WithAddressMapping(s addressmapping.Scheme) Builder {
	b.scheme = s
	return b
}

// WithAddressMappingName sets the address mapping by name, "RoRaBaCo" or
// "RoCoRaBa".
func (b Builder) WithAddressMappingName(name string) (Builder, error) {
	s, err := addressmapping.ParseScheme(name)
	if err != nil {
		return b, err
	}

	b.scheme = s

	return b, nil
}

// WithWriteThresholds sets the fill ratios of the write buffer at which the
// controller starts and stops draining writes.
func (b Builder) WithWriteThresholds(high, low float64) Builder {
	b.writeHighRatio = high
	b.writeLowRatio = low

	return b
}

// WithPowerDownIdleCycles lets a rank power down after being idle for the
// given number of cycles. Zero disables power-down.
func (b Builder) WithPowerDownIdleCycles(n uint64) Builder {
	b.powerDownIdle = n
	return b
}

// WithAdditionalHooks adds hooks to the controller.
func (b Builder) WithAdditionalHooks(hooks ...sim.Hook) Builder {
	b.hooks = append(b.hooks, hooks...)
	return b
}

// BuildController builds a controller that is not attached to any engine.
func (b Builder) BuildController() (*Controller, error) {
	if b.table == nil {
		return nil, fmt.Errorf("dram: parameter table is not set")
	}

	if b.writeLowRatio < 0 || b.writeHighRatio > 1 ||
		b.writeLowRatio > b.writeHighRatio {
		return nil, fmt.Errorf(
			"dram: invalid write thresholds %.2f/%.2f",
			b.writeHighRatio, b.writeLowRatio)
	}

	t := b.table
	numRank := t.RanksPerChannel()

	c := &Controller{
		table:          t,
		channel:        org.NewChannel(t),
		policy:         b.policy,
		pagePolicy:     b.pagePolicy,
		powerDownIdle:  b.powerDownIdle,
		refreshPending: make([]bool, numRank),
		lastActivity:   make([]uint64, numRank),
		readQueue:      trans.NewQueue(t.ReadBufferSize()),
		writeQueue:     trans.NewQueue(t.WriteBufferSize()),
	}

	c.writeHigh = int(float64(t.WriteBufferSize()) * b.writeHighRatio)
	c.writeLow = int(float64(t.WriteBufferSize()) * b.writeLowRatio)

	c.mapper = addressmapping.MakeBuilder().
		WithScheme(b.scheme).
		WithBurstSize(t.BurstSize()).
		WithNumRank(numRank).
		WithNumBankGroup(t.BankGroupsPerRank()).
		WithNumBank(t.BanksPerGroup()).
		WithNumRow(int(t.RowsPerBank())).
		WithNumCol(int(t.BurstsPerRow())).
		Build()
	c.splitter = trans.NewSubTransSplitter(t.BurstSize(), c.mapper)

	c.refreshLead = refreshLead(c.channel)
	if c.refreshLead+uint64(c.channel.Timing.RFC) >=
		uint64(c.channel.Timing.REFI) {
		return nil, fmt.Errorf(
			"dram: refresh interval of %d cycles is too short to "+
				"prepare and run a refresh", c.channel.Timing.REFI)
	}

	for _, h := range b.hooks {
		c.AcceptHook(h)
	}

	return c, nil
}

// refreshLead returns a bound on the cycles needed to bring a rank from any
// state to a state where it can be refreshed: waking it up, letting the last
// access finish, and precharging every bank.
func refreshLead(ch *org.Channel) uint64 {
	t := ch.Timing
	numRank := len(ch.Ranks)
	numBank := 0

	ch.Ranks[0].ForEachBank(func(_, _ int, _ *org.Bank) {
		numBank++
	})

	settle := t.RAS
	if t.WritePrecharge > settle {
		settle = t.WritePrecharge
	}

	if t.ReadToPrecharge > settle {
		settle = t.ReadToPrecharge
	}

	return uint64(settle + t.RP + 2*t.XP + numRank*numBank + numRank + 1)
}

// Build builds a memory controller component with the given name.
func (b Builder) Build(name string) (*Comp, error) {
	if b.engine == nil {
		return nil, fmt.Errorf("dram: engine is not set")
	}

	ctrl, err := b.BuildController()
	if err != nil {
		return nil, err
	}

	c := &Comp{ctrl: ctrl}
	c.TickingComponent = sim.NewTickingComponent(
		name, b.engine, b.table.Freq(), c)
	c.TickNow()

	return c, nil
}
