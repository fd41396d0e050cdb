// Package trace provides hooks that record the commands and the completed
// requests of a memory controller.
package trace

import (
	"log"

	"github.com/sarchlab/ddrsim/datarecording"
	"github.com/sarchlab/ddrsim/mem/dram"
	"github.com/sarchlab/ddrsim/mem/dram/internal/signal"
	"github.com/sarchlab/ddrsim/mem/mem"
	"github.com/sarchlab/ddrsim/sim"
)

// CommandLogger is a hook that writes every issued command and every
// completed request as a line of text.
type CommandLogger struct {
	*log.Logger
}

// NewCommandLogger creates a CommandLogger that writes to the logger.
func NewCommandLogger(logger *log.Logger) *CommandLogger {
	return &CommandLogger{Logger: logger}
}

// Func writes one line for the hook context.
func (l *CommandLogger) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case dram.HookPosCmdIssue:
		cmd := ctx.Item.(*signal.Command)
		l.Printf("cmd, %d, %s, %s\n",
			cmd.IssueCycle, cmd.Kind, cmd.Location)
	case dram.HookPosReqComplete:
		rsp := ctx.Item.(mem.Response)
		l.Printf("req, %.12f, %.12f, %s, 0x%x, %d, %t\n",
			rsp.Issued, rsp.Completed, rsp.Req.ReqID(),
			rsp.Req.GetAddress(), rsp.Req.GetByteSize(), rsp.Req.IsWrite())
	}
}

// CommandEntry is a row of the command table.
type CommandEntry struct {
	ID        string
	Kind      string
	Rank      int
	BankGroup int
	Bank      int
	RowAddr   int
	ColAddr   int
	Cycle     uint64
}

// RequestEntry is a row of the request table.
type RequestEntry struct {
	ID        string
	IsWrite   bool
	Address   uint64
	ByteSize  uint64
	Issued    float64
	Completed float64
	Forwarded bool
}

// Table names used by the DBRecorder.
const (
	CommandTable = "dram_commands"
	RequestTable = "dram_requests"
)

// DBRecorder is a hook that stores every issued command and every completed
// request through a data recorder.
type DBRecorder struct {
	recorder datarecording.DataRecorder
}

// NewDBRecorder creates the tables in the recorder and returns a hook that
// fills them.
func NewDBRecorder(recorder datarecording.DataRecorder) *DBRecorder {
	recorder.CreateTable(CommandTable, CommandEntry{})
	recorder.CreateTable(RequestTable, RequestEntry{})

	return &DBRecorder{recorder: recorder}
}

// Func records the hook context.
func (r *DBRecorder) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case dram.HookPosCmdIssue:
		cmd := ctx.Item.(*signal.Command)
		loc := cmd.Location

		r.recorder.InsertData(CommandTable, CommandEntry{
			ID:        cmd.ID,
			Kind:      cmd.Kind.String(),
			Rank:      loc.Rank,
			BankGroup: loc.BankGroup,
			Bank:      loc.Bank,
			RowAddr:   loc.Row,
			ColAddr:   loc.Column,
			Cycle:     cmd.IssueCycle,
		})
	case dram.HookPosReqComplete:
		rsp := ctx.Item.(mem.Response)

		r.recorder.InsertData(RequestTable, RequestEntry{
			ID:        rsp.Req.ReqID(),
			IsWrite:   rsp.Req.IsWrite(),
			Address:   rsp.Req.GetAddress(),
			ByteSize:  rsp.Req.GetByteSize(),
			Issued:    float64(rsp.Issued),
			Completed: float64(rsp.Completed),
			Forwarded: rsp.Forwarded,
		})
	}
}
