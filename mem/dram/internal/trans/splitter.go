// Package trans splits transactions into bursts and buffers them until the
// controller serves them.
package trans

import (
	"github.com/sarchlab/ddrsim/mem/dram/internal/addressmapping"
	"github.com/sarchlab/ddrsim/mem/dram/internal/signal"
	"github.com/sarchlab/ddrsim/sim"
)

// A SubTransSplitter can split transactions into sub-transactions.
type SubTransSplitter interface {
	Split(t *signal.Transaction)
}

type subTransSplitterImpl struct {
	burstSize uint64
	mapper    addressmapping.Mapper
}

// NewSubTransSplitter creates a splitter that cuts transactions at burst
// boundaries and locates every burst with the mapper.
func NewSubTransSplitter(
	burstSize uint64,
	mapper addressmapping.Mapper,
) SubTransSplitter {
	return &subTransSplitterImpl{
		burstSize: burstSize,
		mapper:    mapper,
	}
}

// NumBursts returns the number of bursts that an access touches. An access
// that wraps around the end of the address space touches none.
func NumBursts(addr, byteSize, burstSize uint64) int {
	if byteSize == 0 {
		byteSize = 1
	}

	end := addr + byteSize - 1
	if end < addr {
		return 0
	}

	first := addr / burstSize
	last := end / burstSize

	return int(last - first + 1)
}

func (s *subTransSplitterImpl) Split(t *signal.Transaction) {
	addr := t.GlobalAddress()
	n := NumBursts(addr, t.AccessByteSize(), s.burstSize)
	start := addr / s.burstSize * s.burstSize

	t.SubTransactions = make([]*signal.SubTransaction, 0, n)

	for i := 0; i < n; i++ {
		burstAddr := start + uint64(i)*s.burstSize
		st := &signal.SubTransaction{
			ID:           sim.GetIDGenerator().Generate(),
			Transaction:  t,
			Address:      burstAddr,
			Location:     s.mapper.Map(burstAddr),
			ArrivalCycle: t.ArrivalCycle,
		}

		t.SubTransactions = append(t.SubTransactions, st)
	}
}
