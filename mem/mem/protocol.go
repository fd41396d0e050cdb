// Package mem defines the requests that memory components accept and the
// responses they return.
package mem

import (
	"github.com/sarchlab/ddrsim/sim"
)

// AccessReq abstracts read and write requests that are sent to the memory
// controllers.
type AccessReq interface {
	ReqID() string
	GetAddress() uint64
	GetByteSize() uint64
	IsWrite() bool
}

// A ReadReq is a request sent to a memory controller to fetch data
type ReadReq struct {
	ID             string
	Address        uint64
	AccessByteSize uint64
	Info           interface{}
}

// ReqID returns the ID of the request.
func (r *ReadReq) ReqID() string {
	return r.ID
}

// GetByteSize returns the number of byte that the request is accessing.
func (r *ReadReq) GetByteSize() uint64 {
	return r.AccessByteSize
}

// GetAddress returns the address that the request is accessing
func (r *ReadReq) GetAddress() uint64 {
	return r.Address
}

// IsWrite returns false.
func (r *ReadReq) IsWrite() bool {
	return false
}

// ReadReqBuilder can build read requests.
type ReadReqBuilder struct {
	address, byteSize uint64
	info              interface{}
}

// WithInfo sets the Info of the request to build.
func (b ReadReqBuilder) WithInfo(info interface{}) ReadReqBuilder {
	b.info = info
	return b
}

// WithAddress sets the address of the request to build.
func (b ReadReqBuilder) WithAddress(address uint64) ReadReqBuilder {
	b.address = address
	return b
}

// WithByteSize sets the byte size of the request to build.
func (b ReadReqBuilder) WithByteSize(byteSize uint64) ReadReqBuilder {
	b.byteSize = byteSize
	return b
}

// Build creates a new ReadReq
func (b ReadReqBuilder) Build() *ReadReq {
	r := &ReadReq{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Address = b.address
	r.AccessByteSize = b.byteSize
	r.Info = b.info

	return r
}

// A WriteReq is a request sent to a memory controller to write data. Only the
// footprint of the write is modeled, not its payload.
type WriteReq struct {
	ID             string
	Address        uint64
	AccessByteSize uint64
	Info           interface{}
}

// ReqID returns the ID of the request.
func (r *WriteReq) ReqID() string {
	return r.ID
}

// GetByteSize returns the number of byte that the request is writing.
func (r *WriteReq) GetByteSize() uint64 {
	return r.AccessByteSize
}

// GetAddress returns the address that the request is accessing
func (r *WriteReq) GetAddress() uint64 {
	return r.Address
}

// IsWrite returns true.
func (r *WriteReq) IsWrite() bool {
	return true
}

// WriteReqBuilder can build write requests.
type WriteReqBuilder struct {
	address, byteSize uint64
	info              interface{}
}

// WithInfo sets the information attached to the request to build.
func (b WriteReqBuilder) WithInfo(info interface{}) WriteReqBuilder {
	b.info = info
	return b
}

// WithAddress sets the address of the request to build.
func (b WriteReqBuilder) WithAddress(address uint64) WriteReqBuilder {
	b.address = address
	return b
}

// WithByteSize sets the number of bytes to write.
func (b WriteReqBuilder) WithByteSize(byteSize uint64) WriteReqBuilder {
	b.byteSize = byteSize
	return b
}

// Build creates a new WriteReq
func (b WriteReqBuilder) Build() *WriteReq {
	r := &WriteReq{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Address = b.address
	r.AccessByteSize = b.byteSize
	r.Info = b.info

	return r
}

// A Response tells the requester that an access has completed.
type Response struct {
	Req AccessReq

	// Issued and Completed are the simulated times at which the controller
	// accepted the request and finished it.
	Issued    sim.VTimeInSec
	Completed sim.VTimeInSec

	// Forwarded is set when a read was served from the write queue without
	// touching the DRAM array.
	Forwarded bool
}

// Latency returns the time between acceptance and completion.
func (r Response) Latency() sim.VTimeInSec {
	return r.Completed - r.Issued
}
