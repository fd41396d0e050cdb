package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/pkg/browser"
	"github.com/rs/xid"
	"github.com/sarchlab/ddrsim/datarecording"
	"github.com/sarchlab/ddrsim/mem/dram"
	"github.com/sarchlab/ddrsim/mem/dram/agent"
	"github.com/sarchlab/ddrsim/mem/dram/param"
	"github.com/sarchlab/ddrsim/mem/dram/power"
	"github.com/sarchlab/ddrsim/mem/dram/trace"
	"github.com/sarchlab/ddrsim/monitoring"
	"github.com/sarchlab/ddrsim/sim"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type runOptions struct {
	presets       []string
	configs       []string
	policy        string
	pagePolicy    string
	mapping       string
	powerDownIdle uint64
	numAccess     int
	readRatio     float64
	maxAddress    string
	byteSize      uint64
	pattern       string
	seed          int64
	record        bool
	recordDir     string
	traceCmds     bool
	traceEvents   bool
	monitor       bool
	monitorPort   int
	openBrowser   bool
	parallel      int
}

var runOpts runOptions

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate a DRAM channel under synthetic traffic.",
	Long: `Simulate a DRAM channel under synthetic traffic. Every preset and ` +
		`every configuration file given is simulated independently, in ` +
		`parallel, and reported in one table.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd.OutOrStdout(), runOpts)
	},
}

func init() {
	f := runCmd.Flags()

	f.StringSliceVar(&runOpts.presets, "preset", nil,
		"built-in parameter tables to simulate")
	f.StringSliceVar(&runOpts.configs, "config", nil,
		"parameter table files to simulate")
	f.StringVar(&runOpts.policy, "policy", "frfcfs",
		"command scheduling policy, fcfs or frfcfs")
	f.StringVar(&runOpts.pagePolicy, "page-policy", "open",
		"page policy, open or close")
	f.StringVar(&runOpts.mapping, "mapping", "RoRaBaCo",
		"address mapping, RoRaBaCo or RoCoRaBa")
	f.Uint64Var(&runOpts.powerDownIdle, "power-down-idle", 0,
		"idle cycles before a rank powers down, 0 to disable")
	f.IntVar(&runOpts.numAccess, "num-access", 10000,
		"number of requests to send")
	f.Float64Var(&runOpts.readRatio, "read-ratio", 0.7,
		"share of reads among the requests")
	f.StringVar(&runOpts.maxAddress, "max-address", "256MiB",
		"requests target addresses below this size")
	f.Uint64Var(&runOpts.byteSize, "byte-size", 64,
		"size of every request in bytes")
	f.StringVar(&runOpts.pattern, "pattern", "random",
		"address pattern, random or linear")
	f.Int64Var(&runOpts.seed, "seed", 1, "seed of the traffic generator")
	f.BoolVar(&runOpts.record, "record", false,
		"record commands and requests into an SQLite database")
	f.StringVar(&runOpts.recordDir, "record-dir", ".",
		"directory of the recorded databases")
	f.BoolVar(&runOpts.traceCmds, "trace", false,
		"log every command and request to stderr")
	f.BoolVar(&runOpts.traceEvents, "trace-events", false,
		"log every simulation event to stderr")
	f.BoolVar(&runOpts.monitor, "monitor", false,
		"serve the monitoring API while simulating")
	f.IntVar(&runOpts.monitorPort, "monitor-port", 0,
		"port of the monitoring server, 0 for a random port")
	f.BoolVar(&runOpts.openBrowser, "open-browser", false,
		"open the monitoring server in a browser")
	f.IntVar(&runOpts.parallel, "parallel", 0,
		"maximum number of simulations to run at once, 0 for no limit")

	rootCmd.AddCommand(runCmd)
}

type namedTable struct {
	name  string
	table *param.Table
}

func (o runOptions) tables() ([]namedTable, error) {
	var tables []namedTable

	for _, name := range o.presets {
		t, err := param.Preset(name)
		if err != nil {
			return nil, err
		}

		tables = append(tables, namedTable{name: t.Name(), table: t})
	}

	for _, path := range o.configs {
		t, err := param.LoadFile(path)
		if err != nil {
			return nil, err
		}

		tables = append(tables, namedTable{name: path, table: t})
	}

	if len(tables) == 0 {
		t := param.DDR5_4800_16x4()
		tables = append(tables, namedTable{name: t.Name(), table: t})
	}

	return tables, nil
}

func run(w io.Writer, o runOptions) error {
	tables, err := o.tables()
	if err != nil {
		return err
	}

	if o.monitor && len(tables) > 1 {
		return fmt.Errorf("the monitor can only watch one simulation")
	}

	results := make([]*result, len(tables))

	var g errgroup.Group
	if o.parallel > 0 {
		g.SetLimit(o.parallel)
	}

	for i, nt := range tables {
		i, nt := i, nt

		g.Go(func() error {
			r, err := simulate(nt, o)
			if err != nil {
				return fmt.Errorf("%s: %w", nt.name, err)
			}

			results[i] = r

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	return report(w, results)
}

type result struct {
	name     string
	table    *param.Table
	cycles   uint64
	ctrl     dram.Stats
	agent    agent.Stats
	energy   power.Breakdown
	avgPower float64
}

type progressHook struct {
	bar *monitoring.ProgressBar
}

func (h progressHook) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case dram.HookPosReqComplete:
		h.bar.RequestFinished()
	case dram.HookPosCmdIssue:
		if dram.IsColumnCommand(ctx.Item) {
			h.bar.BurstServed()
		}
	}
}

// logMu serializes the trace output of simulations that run in parallel.
var logMu sync.Mutex

type lockedWriter struct {
	w io.Writer
}

func (l lockedWriter) Write(p []byte) (int, error) {
	logMu.Lock()
	defer logMu.Unlock()

	return l.w.Write(p)
}

// checkTraffic rejects traffic that the agent cannot generate or that the
// channel cannot hold.
func (o runOptions) checkTraffic(t *param.Table, maxAddr param.Bytes) error {
	switch {
	case o.numAccess < 0:
		return fmt.Errorf("--num-access must not be negative, got %d",
			o.numAccess)
	case o.readRatio < 0 || o.readRatio > 1:
		return fmt.Errorf("--read-ratio must be within [0, 1], got %g",
			o.readRatio)
	case o.byteSize == 0:
		return fmt.Errorf("--byte-size must be positive")
	case maxAddr > t.ChannelCapacity():
		return fmt.Errorf("--max-address %s exceeds the channel capacity %s",
			maxAddr, t.ChannelCapacity())
	case uint64(maxAddr) < o.byteSize:
		return fmt.Errorf("--max-address %s is smaller than --byte-size %d",
			maxAddr, o.byteSize)
	}

	return nil
}

//nolint:funlen
func simulate(nt namedTable, o runOptions) (*result, error) {
	maxAddr, err := param.ParseBytes(o.maxAddress)
	if err != nil {
		return nil, err
	}

	if err := o.checkTraffic(nt.table, maxAddr); err != nil {
		return nil, err
	}

	pattern, err := agent.ParsePattern(o.pattern)
	if err != nil {
		return nil, err
	}

	pagePolicy, err := dram.ParsePagePolicy(o.pagePolicy)
	if err != nil {
		return nil, err
	}

	engine := sim.NewSerialEngine()
	meter := power.NewMeter(nt.table)

	b := dram.MakeBuilder().
		WithEngine(engine).
		WithParamTable(nt.table).
		WithPagePolicy(pagePolicy).
		WithPowerDownIdleCycles(o.powerDownIdle).
		WithAdditionalHooks(meter)

	if b, err = b.WithPolicyName(o.policy); err != nil {
		return nil, err
	}

	if b, err = b.WithAddressMappingName(o.mapping); err != nil {
		return nil, err
	}

	logger := log.New(lockedWriter{os.Stderr}, nt.name+": ", 0)

	if o.traceCmds {
		b = b.WithAdditionalHooks(trace.NewCommandLogger(logger))
	}

	if o.traceEvents {
		engine.AcceptHook(sim.NewEventLogger(logger))
	}

	var recorder datarecording.DataRecorder

	if o.record {
		name := filepath.Join(o.recordDir, "ddrsim_"+xid.New().String())
		recorder = datarecording.New(name)
		defer recorder.Close()

		exec := datarecording.NewExecRecorder(recorder)
		exec.Start()
		exec.Set("Parameter Table", nt.name)
		exec.Set("Policy", o.policy)
		exec.Set("Page Policy", o.pagePolicy)
		exec.Set("Address Mapping", o.mapping)

		defer exec.End()

		b = b.WithAdditionalHooks(trace.NewDBRecorder(recorder))
	}

	comp, err := b.Build("DRAM")
	if err != nil {
		return nil, err
	}

	gen := agent.MakeBuilder().
		WithEngine(engine).
		WithFreq(nt.table.Freq()).
		WithNumAccess(o.numAccess).
		WithReadRatio(o.readRatio).
		WithMaxAddress(uint64(maxAddr)).
		WithByteSize(o.byteSize).
		WithPattern(pattern).
		WithSeed(o.seed).
		WithFinishCallback(comp.Shutdown).
		Build("Agent", comp)
	comp.SetResponder(gen)

	if o.monitor {
		stop, err := startMonitor(engine, comp, gen, o)
		if err != nil {
			return nil, err
		}

		defer stop()
	}

	if err := engine.Run(); err != nil {
		return nil, err
	}

	if !gen.Finished() {
		return nil, fmt.Errorf("simulation stopped with %d requests left",
			gen.NumLeft()+gen.NumPending())
	}

	cycles := comp.CurrentCycle()
	meter.Finalize(cycles)

	return &result{
		name:     nt.name,
		table:    nt.table,
		cycles:   cycles,
		ctrl:     comp.Stats(),
		agent:    gen.Stats(),
		energy:   meter.Total(),
		avgPower: meter.AveragePower(cycles),
	}, nil
}

func startMonitor(
	engine sim.Engine,
	comp *dram.Comp,
	gen *agent.Agent,
	o runOptions,
) (func(), error) {
	m := monitoring.NewMonitor().WithPortNumber(o.monitorPort)
	m.RegisterEngine(engine)
	m.RegisterComponent(comp)
	m.RegisterComponent(gen)

	for _, buf := range comp.Buffers() {
		m.RegisterBuffer(buf)
	}

	bar := m.CreateProgressBar("Requests", uint64(o.numAccess))
	comp.AcceptHook(progressHook{bar: bar})

	url, err := m.StartServer()
	if err != nil {
		return nil, err
	}

	if o.openBrowser {
		if err := browser.OpenURL(url + "/api/list_components"); err != nil {
			fmt.Fprintf(os.Stderr, "cannot open browser: %v\n", err)
		}
	}

	return func() {
		m.CompleteProgressBar(bar)

		if err := m.StopServer(); err != nil {
			fmt.Fprintf(os.Stderr, "stopping monitor: %v\n", err)
		}
	}, nil
}

func report(w io.Writer, results []*result) error {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].name < results[j].name
	})

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "table\tcycles\ttime\treads\twrites\t"+
		"avg read lat\trow hit\tACT\tREF\tPDE\tenergy\tavg power\t")

	for _, r := range results {
		cmds := r.ctrl.Commands()

		fmt.Fprintf(tw,
			"%s\t%s\t%s\t%s\t%s\t%.1f cyc\t%.1f%%\t%s\t%s\t%s\t%s\t%.1f mW\t\n",
			r.name,
			humanize.Comma(int64(r.cycles)),
			r.table.CycleDuration(r.cycles),
			humanize.Comma(int64(r.agent.NumRead)),
			humanize.Comma(int64(r.agent.NumWrite)),
			r.ctrl.AvgReadLatency(),
			100*r.ctrl.RowHitRate(),
			humanize.Comma(int64(cmds["ACT"])),
			humanize.Comma(int64(cmds["REF"])),
			humanize.Comma(int64(cmds["PDE"])),
			humanize.SIWithDigits(r.energy.Total()*1e-12, 2, "J"),
			r.avgPower,
		)
	}

	return tw.Flush()
}
