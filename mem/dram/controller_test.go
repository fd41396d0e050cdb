package dram

import (
	"errors"
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/ddrsim/mem/dram/internal/signal"
	"github.com/sarchlab/ddrsim/mem/dram/param"
	"github.com/sarchlab/ddrsim/mem/mem"
	"github.com/sarchlab/ddrsim/sim"
)

type cmdRecorder struct {
	cmds []*signal.Command
}

func (r *cmdRecorder) Func(ctx sim.HookCtx) {
	if ctx.Pos != HookPosCmdIssue {
		return
	}

	r.cmds = append(r.cmds, ctx.Item.(*signal.Command))
}

func (r *cmdRecorder) kinds() []signal.CmdKind {
	kinds := make([]signal.CmdKind, 0, len(r.cmds))
	for _, c := range r.cmds {
		kinds = append(kinds, c.Kind)
	}

	return kinds
}

func (r *cmdRecorder) ofKind(kind signal.CmdKind) []*signal.Command {
	var cmds []*signal.Command

	for _, c := range r.cmds {
		if c.Kind == kind {
			cmds = append(cmds, c)
		}
	}

	return cmds
}

func read(addr, size uint64) *mem.ReadReq {
	return mem.ReadReqBuilder{}.WithAddress(addr).WithByteSize(size).Build()
}

func write(addr, size uint64) *mem.WriteReq {
	return mem.WriteReqBuilder{}.WithAddress(addr).WithByteSize(size).Build()
}

const rowStride = 1 << 20

var _ = Describe("Controller", func() {
	var (
		builder  Builder
		ctrl     *Controller
		recorder *cmdRecorder
		finished []finishedTrans
	)

	build := func() {
		var err error

		ctrl, err = builder.WithAdditionalHooks(recorder).BuildController()
		Expect(err).NotTo(HaveOccurred())
	}

	run := func(from, to uint64) {
		for now := from; now < to; now++ {
			_, err := ctrl.Tick(now)
			Expect(err).NotTo(HaveOccurred())

			finished = append(finished, ctrl.takeFinished()...)
		}
	}

	BeforeEach(func() {
		builder = MakeBuilder()
		recorder = &cmdRecorder{}
		finished = nil
	})

	It("should tell column commands from other commands", func() {
		Expect(IsColumnCommand(&signal.Command{Kind: signal.CmdKindRead})).
			To(BeTrue())
		Expect(IsColumnCommand(&signal.Command{Kind: signal.CmdKindWrite})).
			To(BeTrue())
		Expect(IsColumnCommand(&signal.Command{Kind: signal.CmdKindActivate})).
			To(BeFalse())
		Expect(IsColumnCommand(3)).To(BeFalse())
	})

	Context("when accepting requests", func() {
		BeforeEach(func() {
			build()
		})

		It("should reject requests beyond the capacity", func() {
			err := ctrl.Accept(read(ctrl.mapper.Capacity(), 64), 0)
			Expect(errors.Is(err, ErrAddressOutOfRange)).To(BeTrue())
		})

		It("should reject requests that wrap around the address space", func() {
			req := read(math.MaxUint64-10, 64)

			Expect(ctrl.CanAccept(req)).To(BeFalse())
			err := ctrl.Accept(req, 0)
			Expect(errors.Is(err, ErrAddressOutOfRange)).To(BeTrue())
			Expect(ctrl.HasRequests()).To(BeFalse())
		})

		It("should reject requests when the buffer is full", func() {
			for i := 0; i < ctrl.Table().ReadBufferSize(); i++ {
				Expect(ctrl.Accept(read(uint64(i)*256, 256), 0)).To(Succeed())
			}

			Expect(ctrl.CanAccept(read(1<<30, 64))).To(BeFalse())
			err := ctrl.Accept(read(1<<30, 64), 0)
			Expect(err).To(MatchError(ErrBufferFull))
			Expect(ctrl.CanAccept(write(1<<30, 64))).To(BeTrue())
		})

		It("should split requests into bursts", func() {
			Expect(ctrl.Accept(read(128, 512), 0)).To(Succeed())

			Expect(ctrl.readQueue.Len()).To(Equal(3))
			Expect(ctrl.Stats().NumReadBursts).To(Equal(uint64(3)))
		})

		It("should respond to writes as soon as they are queued", func() {
			Expect(ctrl.Accept(write(0, 64), 5)).To(Succeed())

			f := ctrl.takeFinished()
			Expect(f).To(HaveLen(1))
			Expect(f[0].cycle).To(Equal(uint64(5)))
			Expect(ctrl.writeQueue.Len()).To(Equal(1))
		})

		It("should merge writes to a queued burst", func() {
			Expect(ctrl.Accept(write(0, 64), 0)).To(Succeed())
			Expect(ctrl.Accept(write(64, 64), 1)).To(Succeed())

			Expect(ctrl.writeQueue.Len()).To(Equal(1))
			Expect(ctrl.Stats().NumMerged).To(Equal(uint64(1)))
		})

		It("should forward reads from the write queue", func() {
			Expect(ctrl.Accept(write(0x40, 64), 0)).To(Succeed())
			Expect(ctrl.Accept(read(0x40, 64), 2)).To(Succeed())
			ctrl.takeFinished()

			run(2, 3)

			Expect(finished).To(HaveLen(1))
			Expect(finished[0].trans.IsRead()).To(BeTrue())
			Expect(finished[0].cycle).To(Equal(uint64(2)))
			Expect(ctrl.readQueue.Len()).To(Equal(0))
			Expect(ctrl.Stats().NumForwarded).To(Equal(uint64(1)))
		})

		It("should forward the queued bursts of a partly written read", func() {
			Expect(ctrl.Accept(write(0, 256), 0)).To(Succeed())
			Expect(ctrl.Accept(read(0, 512), 2)).To(Succeed())
			ctrl.takeFinished()

			Expect(ctrl.Stats().NumForwarded).To(Equal(uint64(1)))
			Expect(ctrl.readQueue.Len()).To(Equal(1))

			run(2, 200)

			Expect(finished).To(HaveLen(1))
			Expect(finished[0].cycle).To(BeNumerically(">", 2))
			Expect(allForwarded(finished[0])).To(BeFalse())
		})
	})

	Context("with an open-page policy", func() {
		BeforeEach(func() {
			build()
		})

		It("should activate a closed bank before reading", func() {
			Expect(ctrl.Accept(read(0, 64), 0)).To(Succeed())

			run(0, 200)

			Expect(recorder.kinds()).To(Equal([]signal.CmdKind{
				signal.CmdKindActivate, signal.CmdKindRead,
			}))

			act, rd := recorder.cmds[0], recorder.cmds[1]
			Expect(act.IssueCycle).To(Equal(uint64(0)))
			Expect(rd.IssueCycle).To(Equal(uint64(39)))
			Expect(rd.SubTrans.DoneCycle).To(Equal(
				39 + uint64(ctrl.Channel().Timing.ReadDelay)))

			Expect(finished).To(HaveLen(1))
			Expect(finished[0].cycle).To(Equal(rd.SubTrans.DoneCycle))
			Expect(ctrl.Stats().NumReadsDone).To(Equal(uint64(1)))
		})

		It("should keep the row open for later hits", func() {
			Expect(ctrl.Accept(read(0, 64), 0)).To(Succeed())
			Expect(ctrl.Accept(read(256, 64), 0)).To(Succeed())

			run(0, 200)

			Expect(recorder.kinds()).To(Equal([]signal.CmdKind{
				signal.CmdKindActivate, signal.CmdKindRead, signal.CmdKindRead,
			}))
			Expect(recorder.cmds[2].IssueCycle - recorder.cmds[1].IssueCycle).
				To(BeNumerically(">=", 13))
		})

		It("should precharge on a row conflict", func() {
			Expect(ctrl.Accept(read(0, 64), 0)).To(Succeed())
			Expect(ctrl.Accept(read(rowStride, 64), 0)).To(Succeed())

			run(0, 400)

			Expect(recorder.kinds()).To(Equal([]signal.CmdKind{
				signal.CmdKindActivate, signal.CmdKindRead,
				signal.CmdKindPrecharge,
				signal.CmdKindActivate, signal.CmdKindRead,
			}))
			Expect(recorder.cmds[2].IssueCycle).To(BeNumerically(">=", 77))
			Expect(recorder.cmds[3].Location.Row).To(Equal(1))
		})

		It("should serve row hits before precharging for a conflict", func() {
			Expect(ctrl.Accept(read(0, 64), 0)).To(Succeed())
			Expect(ctrl.Accept(read(rowStride, 64), 0)).To(Succeed())
			Expect(ctrl.Accept(read(512, 64), 0)).To(Succeed())

			run(0, 400)

			Expect(recorder.kinds()).To(Equal([]signal.CmdKind{
				signal.CmdKindActivate,
				signal.CmdKindRead, signal.CmdKindRead,
				signal.CmdKindPrecharge,
				signal.CmdKindActivate, signal.CmdKindRead,
			}))
		})

		It("should serve reads before a few writes", func() {
			Expect(ctrl.Accept(write(16384, 64), 0)).To(Succeed())
			Expect(ctrl.Accept(read(0, 64), 0)).To(Succeed())

			run(0, 400)

			Expect(recorder.cmds[0].Kind).To(Equal(signal.CmdKindActivate))
			Expect(recorder.cmds[0].Location.BankGroup).To(Equal(0))

			rd := recorder.ofKind(signal.CmdKindRead)
			wr := recorder.ofKind(signal.CmdKindWrite)
			Expect(rd).To(HaveLen(1))
			Expect(wr).To(HaveLen(1))
			Expect(wr[0].IssueCycle).To(BeNumerically(">", rd[0].IssueCycle))
			Expect(wr[0].Location.BankGroup).To(Equal(1))
		})
	})

	Context("with a close-page policy", func() {
		BeforeEach(func() {
			builder = builder.WithPagePolicy(ClosePage)
			build()
		})

		It("should precharge after the last hit", func() {
			Expect(ctrl.Accept(read(0, 64), 0)).To(Succeed())

			run(0, 300)

			Expect(recorder.kinds()).To(Equal([]signal.CmdKind{
				signal.CmdKindActivate, signal.CmdKindRead,
				signal.CmdKindPrecharge,
			}))
			Expect(ctrl.Channel().Ranks[0].AllBanksClosed()).To(BeTrue())
		})
	})

	Context("with power-down enabled", func() {
		BeforeEach(func() {
			builder = builder.WithPowerDownIdleCycles(100)
			build()
		})

		It("should power down idle ranks and wake them up on demand", func() {
			run(0, 200)

			pde := recorder.ofKind(signal.CmdKindPowerDownEnter)
			Expect(pde).To(HaveLen(2))
			Expect(pde[0].IssueCycle).To(Equal(uint64(100)))
			Expect(pde[1].IssueCycle).To(Equal(uint64(101)))
			Expect(ctrl.Channel().Ranks[0].PoweredDown).To(BeTrue())

			Expect(ctrl.Accept(read(0, 64), 300)).To(Succeed())
			run(300, 500)

			pdx := recorder.ofKind(signal.CmdKindPowerDownExit)
			act := recorder.ofKind(signal.CmdKindActivate)
			Expect(pdx).To(HaveLen(1))
			Expect(pdx[0].IssueCycle).To(Equal(uint64(300)))
			Expect(act).To(HaveLen(1))
			Expect(act[0].IssueCycle).To(Equal(uint64(319)))
			Expect(ctrl.Channel().Ranks[1].PoweredDown).To(BeTrue())
		})

		It("should plan to wake up for the power-down", func() {
			run(0, 1)

			next, ok := ctrl.NextActionCycle(0)
			Expect(ok).To(BeTrue())
			Expect(next).To(Equal(uint64(100)))
		})
	})

	Context("when refreshing", func() {
		BeforeEach(func() {
			build()
		})

		It("should plan to wake up before the refresh deadline", func() {
			run(0, 1)

			next, ok := ctrl.NextActionCycle(0)
			Expect(ok).To(BeTrue())
			Expect(next).To(Equal(9375 - ctrl.RefreshLead()))
		})

		It("should refresh every rank in time", func() {
			run(0, 30000)

			for r := range ctrl.Channel().Ranks {
				var last uint64

				refs := 0

				for _, c := range recorder.ofKind(signal.CmdKindRefresh) {
					if c.Location.Rank != r {
						continue
					}

					Expect(c.IssueCycle - last).To(BeNumerically("<=", 9375))
					last = c.IssueCycle
					refs++
				}

				Expect(refs).To(BeNumerically(">=", 3))
			}
		})

		It("should fail when a deadline is missed", func() {
			run(0, 1)

			_, err := ctrl.Tick(9376)

			var deadlineErr *RefreshDeadlineError
			Expect(errors.As(err, &deadlineErr)).To(BeTrue())
			Expect(deadlineErr.Rank).To(Equal(0))
			Expect(deadlineErr.Deadline).To(Equal(uint64(9375)))
			Expect(deadlineErr.Now).To(Equal(uint64(9376)))
		})
	})

	Context("when the refresh interval is not a whole number of cycles", func() {
		var table *param.Table

		BeforeEach(func() {
			table = param.DDR4_2400_16x4()
			builder = builder.WithParamTable(table)
			build()
		})

		It("should never let a refresh gap exceed the interval", func() {
			run(0, 40000)

			for r := range ctrl.Channel().Ranks {
				var last uint64

				refs := 0

				for _, c := range recorder.ofKind(signal.CmdKindRefresh) {
					if c.Location.Rank != r {
						continue
					}

					gap := table.CycleDuration(c.IssueCycle - last)
					Expect(gap).To(BeNumerically("<=", table.TREFI()))
					last = c.IssueCycle
					refs++
				}

				Expect(refs).To(BeNumerically(">=", 4))
			}
		})

		It("should fail once the interval has passed", func() {
			run(0, 1)

			_, err := ctrl.Tick(9364)

			var deadlineErr *RefreshDeadlineError
			Expect(errors.As(err, &deadlineErr)).To(BeTrue())
			Expect(deadlineErr.Deadline).To(Equal(uint64(9363)))
		})
	})

	It("should serve random traffic without breaking any constraint", func() {
		builder = builder.WithPowerDownIdleCycles(200)
		build()

		rnd := rand.New(rand.NewSource(1))
		region := uint64(16 * rowStride)
		accepted := 0

		for now := uint64(0); now < 60000; now++ {
			if now < 40000 && rnd.Intn(4) == 0 {
				addr := rnd.Uint64() % region / 64 * 64

				var req mem.AccessReq = read(addr, 64)
				if rnd.Intn(3) == 0 {
					req = write(addr, 64)
				}

				if ctrl.CanAccept(req) {
					Expect(ctrl.Accept(req, now)).To(Succeed())
					accepted++
				}
			}

			_, err := ctrl.Tick(now)
			Expect(err).NotTo(HaveOccurred())

			finished = append(finished, ctrl.takeFinished()...)
		}

		Expect(accepted).To(BeNumerically(">", 1000))
		Expect(finished).To(HaveLen(accepted))
		Expect(ctrl.HasRequests()).To(BeFalse())

		for r := range ctrl.Channel().Ranks {
			var last uint64

			for _, c := range recorder.ofKind(signal.CmdKindRefresh) {
				if c.Location.Rank == r {
					Expect(c.IssueCycle - last).To(BeNumerically("<=", 9375))
					last = c.IssueCycle
				}
			}
		}
	})
})
