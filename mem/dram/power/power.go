// Package power estimates the energy a DRAM channel spends, from the commands
// that a memory controller issues and the currents of the parameter table.
//
// The model follows the Micron power calculation method. Every activate pays
// for one row cycle above the standby current, every burst pays its read or
// write current above active standby, and every refresh pays its current over
// tRFC. Between commands, each rank draws the standby current of the state it
// is in.
package power

import (
	"fmt"
	"math"

	"github.com/sarchlab/ddrsim/mem/dram"
	"github.com/sarchlab/ddrsim/mem/dram/internal/signal"
	"github.com/sarchlab/ddrsim/mem/dram/param"
	"github.com/sarchlab/ddrsim/sim"
)

// Breakdown is an amount of energy in picojoules, split by cause.
type Breakdown struct {
	ActPre     float64
	Read       float64
	Write      float64
	Refresh    float64
	Background float64
}

// Total returns the sum of every part.
func (b Breakdown) Total() float64 {
	return b.ActPre + b.Read + b.Write + b.Refresh + b.Background
}

func (b Breakdown) add(o Breakdown) Breakdown {
	return Breakdown{
		ActPre:     b.ActPre + o.ActPre,
		Read:       b.Read + o.Read,
		Write:      b.Write + o.Write,
		Refresh:    b.Refresh + o.Refresh,
		Background: b.Background + o.Background,
	}
}

func (b Breakdown) String() string {
	return fmt.Sprintf(
		"act/pre %.1f pJ, read %.1f pJ, write %.1f pJ, "+
			"refresh %.1f pJ, background %.1f pJ, total %.1f pJ",
		b.ActPre, b.Read, b.Write, b.Refresh, b.Background, b.Total())
}

// energy returns the energy, in picojoules, of a current drawn at a voltage
// for a duration.
func energy(i param.Current, v param.Voltage, d param.Duration) float64 {
	// uA * mV * ps = 1e-21 J
	return float64(i) * float64(v) * float64(d) * 1e-9
}

type rankState struct {
	openBanks   int
	poweredDown bool
	lastCycle   uint64
	energy      Breakdown
}

// Meter is a hook that accumulates the energy of the commands issued by a
// memory controller. Attach it with AcceptHook.
type Meter struct {
	table *param.Table
	ranks []*rankState

	actPre  float64
	read    float64
	write   float64
	refresh float64
}

// NewMeter creates a meter for a channel described by the table.
func NewMeter(t *param.Table) *Meter {
	m := &Meter{table: t}

	for i := 0; i < t.RanksPerChannel(); i++ {
		m.ranks = append(m.ranks, &rankState{})
	}

	devices := float64(t.DevicesPerRank())
	vdd := t.VDD()
	vdd2 := t.VDD2()
	burst := t.TBURST()

	// Parts whose IDD0 is below the standby currents would get a negative
	// activate energy. Such activates are free.
	m.actPre = math.Max(0, devices*(energy(t.IDD0(), vdd, t.TRC())-
		energy(t.IDD3N(), vdd, t.TRAS())-
		energy(t.IDD2N(), vdd, t.TRP())+
		energy(t.IDD02(), vdd2, t.TRC())-
		energy(t.IDD3N2(), vdd2, t.TRC())))
	m.read = devices * energy(t.IDD4R()-t.IDD3N(), vdd, burst)
	m.write = devices * energy(t.IDD4W()-t.IDD3N(), vdd, burst)
	m.refresh = devices * energy(t.IDD5()-t.IDD3N(), vdd, t.TRFC())

	return m
}

// Func accumulates the energy of a command.
func (m *Meter) Func(ctx sim.HookCtx) {
	if ctx.Pos != dram.HookPosCmdIssue {
		return
	}

	cmd, ok := ctx.Item.(*signal.Command)
	if !ok {
		return
	}

	m.Record(cmd)
}

// CommandEnergy returns the energy, in picojoules, that one command of the
// given kind costs on top of the background.
func (m *Meter) CommandEnergy(kind signal.CmdKind) float64 {
	switch kind {
	case signal.CmdKindActivate:
		return m.actPre
	case signal.CmdKindRead:
		return m.read
	case signal.CmdKindWrite:
		return m.write
	case signal.CmdKindRefresh:
		return m.refresh
	}

	return 0
}

// Record accounts for a command that issued.
func (m *Meter) Record(cmd *signal.Command) {
	r := m.ranks[cmd.Location.Rank]
	m.accrueBackground(r, cmd.IssueCycle)

	switch cmd.Kind {
	case signal.CmdKindActivate:
		r.openBanks++
		r.energy.ActPre += m.actPre
	case signal.CmdKindPrecharge:
		if r.openBanks > 0 {
			r.openBanks--
		}
	case signal.CmdKindRead:
		r.energy.Read += m.read
	case signal.CmdKindWrite:
		r.energy.Write += m.write
	case signal.CmdKindRefresh:
		r.energy.Refresh += m.refresh
	case signal.CmdKindPowerDownEnter:
		r.poweredDown = true
	case signal.CmdKindPowerDownExit:
		r.poweredDown = false
	}
}

func (m *Meter) accrueBackground(r *rankState, cycle uint64) {
	if cycle <= r.lastCycle {
		return
	}

	d := m.table.CycleDuration(cycle - r.lastCycle)
	r.lastCycle = cycle
	r.energy.Background += m.backgroundEnergy(r, d)
}

func (m *Meter) backgroundEnergy(r *rankState, d param.Duration) float64 {
	t := m.table

	var i param.Current

	switch {
	case r.poweredDown && r.openBanks > 0:
		i = t.IDD3P1()
	case r.poweredDown:
		i = t.IDD2P1()
	case r.openBanks > 0:
		i = t.IDD3N()
	default:
		i = t.IDD2N()
	}

	devices := float64(t.DevicesPerRank())

	return devices * (energy(i, t.VDD(), d) + energy(t.IDD3N2(), t.VDD2(), d))
}

// Finalize charges every rank for the background energy up to the given
// cycle. Call it once the simulation ends.
func (m *Meter) Finalize(cycle uint64) {
	for _, r := range m.ranks {
		m.accrueBackground(r, cycle)
	}
}

// Rank returns the energy spent by one rank so far.
func (m *Meter) Rank(i int) Breakdown {
	return m.ranks[i].energy
}

// Total returns the energy spent by the whole channel so far.
func (m *Meter) Total() Breakdown {
	var b Breakdown

	for _, r := range m.ranks {
		b = b.add(r.energy)
	}

	return b
}

// AveragePower returns the average power in milliwatts over the given number
// of cycles.
func (m *Meter) AveragePower(cycles uint64) float64 {
	if cycles == 0 {
		return 0
	}

	seconds := m.table.CycleDuration(cycles).Seconds()

	return m.Total().Total() * 1e-12 / seconds * 1e3
}
