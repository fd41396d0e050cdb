package agent

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/ddrsim/mem/dram"
	"github.com/sarchlab/ddrsim/mem/mem"
	"github.com/sarchlab/ddrsim/sim"
	"go.uber.org/mock/gomock"
)

var _ = Describe("Agent", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *sim.SerialEngine
		port     *MockMemPort
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = sim.NewSerialEngine()
		port = NewMockMemPort(mockCtrl)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should parse patterns", func() {
		p, err := ParsePattern("linear")
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(Equal(Linear))
		Expect(p.String()).To(Equal("linear"))

		_, err = ParsePattern("zigzag")
		Expect(err).To(HaveOccurred())
	})

	It("should send linear addresses and wrap around", func() {
		var addrs []uint64

		port.EXPECT().CanAccept(gomock.Any()).Return(true).AnyTimes()
		port.EXPECT().
			Accept(gomock.Any()).
			DoAndReturn(func(req mem.AccessReq) error {
				addrs = append(addrs, req.GetAddress())
				return nil
			}).
			Times(5)

		a := MakeBuilder().
			WithEngine(engine).
			WithNumAccess(5).
			WithPattern(Linear).
			WithMaxAddress(256).
			WithByteSize(64).
			Build("Agent", port)

		Expect(engine.Run()).To(Succeed())
		Expect(addrs).To(Equal([]uint64{0, 64, 128, 192, 0}))
		Expect(a.NumLeft()).To(Equal(0))
		Expect(a.NumPending()).To(Equal(5))
	})

	It("should only send reads with a read ratio of 1", func() {
		port.EXPECT().CanAccept(gomock.Any()).Return(true).AnyTimes()
		port.EXPECT().
			Accept(gomock.Any()).
			DoAndReturn(func(req mem.AccessReq) error {
				Expect(req.IsWrite()).To(BeFalse())
				Expect(req.GetAddress() % 64).To(BeZero())
				Expect(req.GetAddress()).To(BeNumerically("<", 4096))
				return nil
			}).
			Times(20)

		MakeBuilder().
			WithEngine(engine).
			WithNumAccess(20).
			WithReadRatio(1).
			WithMaxAddress(4096).
			Build("Agent", port)

		Expect(engine.Run()).To(Succeed())
	})

	It("should retry a blocked request after a response", func() {
		var sent []mem.AccessReq

		port.EXPECT().CanAccept(gomock.Any()).Return(true)
		port.EXPECT().CanAccept(gomock.Any()).Return(false)
		port.EXPECT().
			Accept(gomock.Any()).
			DoAndReturn(func(req mem.AccessReq) error {
				sent = append(sent, req)
				return nil
			})

		a := MakeBuilder().
			WithEngine(engine).
			WithNumAccess(2).
			WithReadRatio(1).
			Build("Agent", port)

		Expect(engine.Run()).To(Succeed())
		Expect(sent).To(HaveLen(1))
		Expect(a.NumLeft()).To(Equal(1))

		port.EXPECT().CanAccept(gomock.Any()).Return(true)
		port.EXPECT().
			Accept(gomock.Any()).
			DoAndReturn(func(req mem.AccessReq) error {
				sent = append(sent, req)
				return nil
			})

		a.Respond(mem.Response{Req: sent[0]})

		Expect(engine.Run()).To(Succeed())
		Expect(sent).To(HaveLen(2))
		Expect(a.NumLeft()).To(Equal(0))
		Expect(a.Stats().NumRead).To(Equal(1))
	})

	It("should drive a memory controller to completion", func() {
		comp, err := dram.MakeBuilder().WithEngine(engine).Build("DRAM")
		Expect(err).NotTo(HaveOccurred())

		a := MakeBuilder().
			WithEngine(engine).
			WithNumAccess(500).
			WithMaxAddress(1 << 24).
			WithFinishCallback(comp.Shutdown).
			Build("Agent", comp)
		comp.SetResponder(a)

		Expect(engine.Run()).To(Succeed())

		Expect(comp.Err()).NotTo(HaveOccurred())
		Expect(a.Finished()).To(BeTrue())

		stats := a.Stats()
		Expect(stats.NumRead + stats.NumWrite).To(Equal(500))
		Expect(stats.AvgReadLatency()).To(BeNumerically(">", 0))
		Expect(stats.MaxReadLatency).
			To(BeNumerically(">=", stats.AvgReadLatency()))
		Expect(comp.Stats().NumReadsDone).To(Equal(uint64(stats.NumRead)))
	})

	It("should finish at once when there is nothing to send", func() {
		comp, err := dram.MakeBuilder().WithEngine(engine).Build("DRAM")
		Expect(err).NotTo(HaveOccurred())

		a := MakeBuilder().
			WithEngine(engine).
			WithNumAccess(0).
			WithFinishCallback(comp.Shutdown).
			Build("Agent", comp)
		comp.SetResponder(a)

		Expect(engine.Run()).To(Succeed())
		Expect(a.Finished()).To(BeTrue())
		Expect(a.NumLeft()).To(BeZero())
		Expect(comp.Stats().NumReads).To(BeZero())
	})

	It("should refuse a negative number of accesses", func() {
		Expect(func() {
			MakeBuilder().
				WithEngine(engine).
				WithNumAccess(-1).
				Build("Agent", port)
		}).To(Panic())
	})
})
