package signal

import (
	"github.com/sarchlab/ddrsim/mem/dram/internal/addressmapping"
	"github.com/sarchlab/ddrsim/mem/mem"
)

// Transaction is the state associated with the processing of a read or write
// request.
type Transaction struct {
	Req mem.AccessReq

	ArrivalCycle    uint64
	SubTransactions []*SubTransaction
}

// GlobalAddress returns the address that the transaction is accessing.
func (t *Transaction) GlobalAddress() uint64 {
	return t.Req.GetAddress()
}

// AccessByteSize returns the number of bytes that the transaction is accessing.
func (t *Transaction) AccessByteSize() uint64 {
	return t.Req.GetByteSize()
}

// IsRead returns true if the transaction is a read transaction.
func (t *Transaction) IsRead() bool {
	return !t.Req.IsWrite()
}

// IsWrite returns true if the transaction is a write transaction.
func (t *Transaction) IsWrite() bool {
	return t.Req.IsWrite()
}

// IsCompleted returns true if the transaction is fully ready to be returned.
func (t *Transaction) IsCompleted() bool {
	for _, st := range t.SubTransactions {
		if !st.Completed {
			return false
		}
	}

	return true
}

// SubTransaction is the part of a transaction that one burst serves.
type SubTransaction struct {
	ID          string
	Transaction *Transaction

	// Address is aligned to the burst size.
	Address  uint64
	Location addressmapping.Location

	ArrivalCycle uint64

	// Forwarded reads are served by a queued write to the same burst.
	Forwarded bool

	// Issued is set once the column command of the sub-transaction has been
	// sent to the DRAM. DoneCycle is the cycle its data transfer finishes.
	Issued    bool
	DoneCycle uint64
	Completed bool
}

// IsRead returns true if the sub-transaction belongs to a read.
func (st *SubTransaction) IsRead() bool {
	return st.Transaction.IsRead()
}
