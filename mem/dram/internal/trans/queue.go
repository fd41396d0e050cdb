package trans

import (
	"github.com/sarchlab/ddrsim/mem/dram/internal/signal"
)

// A Queue buffers sub-transactions in arrival order. Its capacity is counted
// in bursts.
type Queue struct {
	Capacity int

	entries []*signal.SubTransaction
	byAddr  map[uint64]int
}

// NewQueue creates an empty queue.
func NewQueue(capacity int) *Queue {
	return &Queue{
		Capacity: capacity,
		byAddr:   make(map[uint64]int),
	}
}

// CanPush returns true if n more sub-transactions fit in the queue.
func (q *Queue) CanPush(n int) bool {
	return len(q.entries)+n <= q.Capacity
}

// Push appends a sub-transaction to the end of the queue.
func (q *Queue) Push(st *signal.SubTransaction) {
	if !q.CanPush(1) {
		panic("queue is full")
	}

	q.entries = append(q.entries, st)
	q.byAddr[st.Address]++
}

// Remove takes a sub-transaction out of the queue.
func (q *Queue) Remove(st *signal.SubTransaction) {
	for i, e := range q.entries {
		if e != st {
			continue
		}

		q.entries = append(q.entries[:i], q.entries[i+1:]...)

		q.byAddr[st.Address]--
		if q.byAddr[st.Address] == 0 {
			delete(q.byAddr, st.Address)
		}

		return
	}

	panic("sub-transaction not in queue")
}

// Contains returns true if a queued sub-transaction covers the burst at the
// given address.
func (q *Queue) Contains(addr uint64) bool {
	return q.byAddr[addr] > 0
}

// Entries returns the queued sub-transactions, oldest first. The caller must
// not modify the returned slice.
func (q *Queue) Entries() []*signal.SubTransaction {
	return q.entries
}

// Len returns the number of queued sub-transactions.
func (q *Queue) Len() int {
	return len(q.entries)
}
