package cmdq

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/ddrsim/mem/dram/internal/signal"
)

func candidate(
	kind signal.CmdKind,
	earliest, arrival uint64,
	rowHit, urgent bool,
) Candidate {
	return Candidate{
		Cmd:      &signal.Command{Kind: kind},
		Earliest: earliest,
		Arrival:  arrival,
		RowHit:   rowHit,
		Urgent:   urgent,
	}
}

var _ = Describe("Policies", func() {
	It("should return -1 if nothing is ready", func() {
		candidates := []Candidate{
			candidate(signal.CmdKindActivate, 10, 0, false, false),
		}

		Expect(FCFS{}.Pick(5, candidates)).To(Equal(-1))
		Expect(FRFCFS{}.Pick(5, nil)).To(Equal(-1))
	})

	It("should pick the oldest ready candidate with FCFS", func() {
		candidates := []Candidate{
			candidate(signal.CmdKindRead, 0, 5, true, false),
			candidate(signal.CmdKindActivate, 0, 3, false, false),
			candidate(signal.CmdKindActivate, 20, 1, false, false),
		}

		Expect(FCFS{}.Pick(10, candidates)).To(Equal(1))
	})

	It("should prefer row hits with FR-FCFS", func() {
		candidates := []Candidate{
			candidate(signal.CmdKindPrecharge, 0, 1, false, false),
			candidate(signal.CmdKindRead, 0, 5, true, false),
			candidate(signal.CmdKindWrite, 0, 4, true, false),
			candidate(signal.CmdKindRead, 20, 2, true, false),
		}

		Expect(FRFCFS{}.Pick(10, candidates)).To(Equal(2))
	})

	It("should put refresh work first", func() {
		candidates := []Candidate{
			candidate(signal.CmdKindRead, 0, 0, true, false),
			candidate(signal.CmdKindPrecharge, 0, 100, false, true),
		}

		Expect(FCFS{}.Pick(10, candidates)).To(Equal(1))
		Expect(FRFCFS{}.Pick(10, candidates)).To(Equal(1))
	})

	It("should keep the earlier candidate on ties", func() {
		candidates := []Candidate{
			candidate(signal.CmdKindActivate, 0, 3, false, false),
			candidate(signal.CmdKindActivate, 0, 3, false, false),
		}

		Expect(FCFS{}.Pick(10, candidates)).To(Equal(0))
	})

	It("should parse policy names", func() {
		p, err := ParsePolicy("FR-FCFS")
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Name()).To(Equal("frfcfs"))

		_, err = ParsePolicy("random")
		Expect(err).To(HaveOccurred())
	})
})
