package power

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/ddrsim/mem/dram"
	"github.com/sarchlab/ddrsim/mem/dram/internal/addressmapping"
	"github.com/sarchlab/ddrsim/mem/dram/internal/signal"
	"github.com/sarchlab/ddrsim/mem/dram/param"
	"github.com/sarchlab/ddrsim/mem/mem"
	"github.com/sarchlab/ddrsim/sim"
)

func cmd(kind signal.CmdKind, rank int, cycle uint64) *signal.Command {
	return &signal.Command{
		Kind:       kind,
		Location:   addressmapping.Location{Rank: rank},
		IssueCycle: cycle,
	}
}

var _ = Describe("Meter", func() {
	var (
		table *param.Table
		meter *Meter
	)

	BeforeEach(func() {
		table = param.DDR4_2400_16x4()
		meter = NewMeter(table)
	})

	It("should charge every command kind", func() {
		Expect(meter.CommandEnergy(signal.CmdKindActivate)).To(BeNumerically(">", 0))
		Expect(meter.CommandEnergy(signal.CmdKindRead)).To(BeNumerically(">", 0))
		Expect(meter.CommandEnergy(signal.CmdKindWrite)).To(BeNumerically(">", 0))
		Expect(meter.CommandEnergy(signal.CmdKindRefresh)).To(BeNumerically(">", 0))
		Expect(meter.CommandEnergy(signal.CmdKindPrecharge)).To(BeZero())
	})

	It("should never charge a negative activate energy", func() {
		m := NewMeter(param.DDR5_4800_16x4())
		Expect(m.CommandEnergy(signal.CmdKindActivate)).To(BeNumerically(">=", 0))
	})

	It("should add up the command energy", func() {
		meter.Record(cmd(signal.CmdKindActivate, 0, 0))
		meter.Record(cmd(signal.CmdKindRead, 0, 0))
		meter.Record(cmd(signal.CmdKindRead, 0, 0))
		meter.Record(cmd(signal.CmdKindPrecharge, 0, 0))

		b := meter.Rank(0)
		Expect(b.ActPre).To(Equal(meter.CommandEnergy(signal.CmdKindActivate)))
		Expect(b.Read).To(Equal(2 * meter.CommandEnergy(signal.CmdKindRead)))
		Expect(b.Write).To(BeZero())
		Expect(b.Background).To(BeZero())
		Expect(meter.Rank(1).Total()).To(BeZero())
	})

	It("should charge precharge standby while idle", func() {
		meter.Finalize(1000)

		d := table.CycleDuration(1000)
		devices := float64(table.DevicesPerRank())
		expected := devices * (energy(table.IDD2N(), table.VDD(), d) +
			energy(table.IDD3N2(), table.VDD2(), d))

		Expect(meter.Rank(0).Background).To(BeNumerically("~", expected, 1e-6))
		Expect(meter.Total().Background).
			To(BeNumerically("~", 2*expected, 1e-6))
	})

	It("should charge less while powered down", func() {
		other := NewMeter(table)

		meter.Record(cmd(signal.CmdKindPowerDownEnter, 0, 0))
		meter.Finalize(1000)
		other.Finalize(1000)

		Expect(meter.Rank(0).Background).
			To(BeNumerically("<", other.Rank(0).Background))
	})

	It("should charge more while a bank is open", func() {
		other := NewMeter(table)

		meter.Record(cmd(signal.CmdKindActivate, 0, 0))
		meter.Finalize(1000)
		other.Finalize(1000)

		Expect(meter.Rank(0).Background).
			To(BeNumerically(">", other.Rank(0).Background))
	})

	It("should grow with the number of commands", func() {
		var last float64

		for i := uint64(0); i < 10; i++ {
			meter.Record(cmd(signal.CmdKindWrite, 1, 0))

			total := meter.Total().Total()
			Expect(total).To(BeNumerically(">", last))
			last = total
		}
	})

	It("should report the average power", func() {
		Expect(meter.AveragePower(0)).To(BeZero())

		meter.Finalize(10000)
		Expect(meter.AveragePower(10000)).To(BeNumerically(">", 0))
	})

	It("should observe a controller through its hooks", func() {
		ctrl, err := dram.MakeBuilder().
			WithParamTable(table).
			WithAdditionalHooks(meter).
			BuildController()
		Expect(err).NotTo(HaveOccurred())

		for i := uint64(0); i < 8; i++ {
			req := mem.ReadReqBuilder{}.
				WithAddress(i * 4096).
				WithByteSize(64).
				Build()
			Expect(ctrl.Accept(req, 0)).To(Succeed())
		}

		for now := uint64(0); now < 2000; now++ {
			_, err := ctrl.Tick(now)
			Expect(err).NotTo(HaveOccurred())
		}

		meter.Finalize(2000)

		stats := ctrl.Stats()
		numRead := float64(stats.NumCmd[signal.CmdKindRead])
		Expect(numRead).To(Equal(8.0))
		Expect(meter.Total().Read).To(BeNumerically("~",
			numRead*meter.CommandEnergy(signal.CmdKindRead), 1e-6))
		Expect(meter.Total().Background).To(BeNumerically(">", 0))
	})

	It("should ignore other hook positions", func() {
		meter.Func(sim.HookCtx{Pos: dram.HookPosReqComplete, Item: mem.Response{}})
		Expect(meter.Total().Total()).To(BeZero())
	})
})
