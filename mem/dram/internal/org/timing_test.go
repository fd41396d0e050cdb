package org

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/ddrsim/mem/dram/internal/signal"
	"github.com/sarchlab/ddrsim/mem/dram/param"
)

func find(table TimeTable, from, to signal.CmdKind) (int, bool) {
	for _, e := range table[from] {
		if e.NextCmdKind == to {
			return e.MinCycleInBetween, true
		}
	}

	return 0, false
}

var _ = Describe("MakeTiming", func() {
	var t Timing

	BeforeEach(func() {
		t = MakeTiming(param.DDR5_4800_16x4())
	})

	It("should round every duration up to whole cycles", func() {
		Expect(t.BurstCycle).To(Equal(9))
		Expect(t.ReadDelay).To(Equal(40 + 9))
		Expect(t.XAW).To(Equal(33))
		Expect(t.ActivationLimit).To(Equal(4))
		Expect(t.REFI).To(Equal(9375))
		Expect(t.RFC).To(Equal(710))
		Expect(t.XP).To(Equal(19))
	})

	It("should round the refresh interval down", func() {
		ddr4 := MakeTiming(param.DDR4_2400_16x4())

		Expect(ddr4.REFI).To(Equal(9363))
	})

	DescribeTable("command pairs",
		func(table func() TimeTable, from, to signal.CmdKind, cycles int) {
			v, ok := find(table(), from, to)
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(cycles))
		},
		Entry("ACT to RD, same bank", func() TimeTable { return t.SameBank },
			signal.CmdKindActivate, signal.CmdKindRead, 39),
		Entry("ACT to ACT, same bank", func() TimeTable { return t.SameBank },
			signal.CmdKindActivate, signal.CmdKindActivate, 116),
		Entry("ACT to PRE, same bank", func() TimeTable { return t.SameBank },
			signal.CmdKindActivate, signal.CmdKindPrecharge, 77),
		Entry("ACT to ACT, same bank group",
			func() TimeTable { return t.OtherBanksInBankGroup },
			signal.CmdKindActivate, signal.CmdKindActivate, 13),
		Entry("ACT to ACT, other bank group",
			func() TimeTable { return t.SameRank },
			signal.CmdKindActivate, signal.CmdKindActivate, 8),
		Entry("RD to RD, same bank group",
			func() TimeTable { return t.OtherBanksInBankGroup },
			signal.CmdKindRead, signal.CmdKindRead, 13),
		Entry("RD to RD, other bank group",
			func() TimeTable { return t.SameRank },
			signal.CmdKindRead, signal.CmdKindRead, 9),
		Entry("RD to RD, other rank", func() TimeTable { return t.OtherRanks },
			signal.CmdKindRead, signal.CmdKindRead, 11),
		Entry("RD to WR, same rank", func() TimeTable { return t.SameRank },
			signal.CmdKindRead, signal.CmdKindWrite, 9+3),
		Entry("WR to RD, same bank", func() TimeTable { return t.SameBank },
			signal.CmdKindWrite, signal.CmdKindRead, 40+9+16),
		Entry("WR to PRE, same bank", func() TimeTable { return t.SameBank },
			signal.CmdKindWrite, signal.CmdKindPrecharge, 40+9+73),
		Entry("RD to PRE, same bank", func() TimeTable { return t.SameBank },
			signal.CmdKindRead, signal.CmdKindPrecharge, 19),
		Entry("PRE to ACT, same bank", func() TimeTable { return t.SameBank },
			signal.CmdKindPrecharge, signal.CmdKindActivate, 39),
		Entry("REF to ACT, same rank", func() TimeTable { return t.SameRank },
			signal.CmdKindRefresh, signal.CmdKindActivate, 710),
		Entry("PDX to ACT, same rank", func() TimeTable { return t.SameRank },
			signal.CmdKindPowerDownExit, signal.CmdKindActivate, 19),
	)

	It("should fall back to short timings without bank groups", func() {
		s := param.DDR5_4800_16x4Spec()
		s.BankGroupsPerRank = 1
		t := MakeTiming(param.MustNew(s))

		v, _ := find(t.OtherBanksInBankGroup,
			signal.CmdKindActivate, signal.CmdKindActivate)
		Expect(v).To(Equal(8))
	})
})
