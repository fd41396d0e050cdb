package trace

import (
	"context"

	"github.com/sarchlab/ddrsim/datarecording"
	"github.com/sarchlab/ddrsim/mem/dram/internal/signal"
)

// Summary condenses the tables written by a DBRecorder.
type Summary struct {
	// Commands counts the issued commands by mnemonic.
	Commands map[string]int

	NumRead      int
	NumWrite     int
	NumForwarded int

	// AvgReadLatency is in seconds.
	AvgReadLatency float64
}

// OpenReader opens a recording and maps the tables of a DBRecorder.
func OpenReader(path string) (datarecording.DataReader, error) {
	reader, err := datarecording.NewReader(path)
	if err != nil {
		return nil, err
	}

	reader.MapTable(CommandTable, CommandEntry{})
	reader.MapTable(RequestTable, RequestEntry{})

	return reader, nil
}

// Summarize reads back a recording opened with OpenReader.
func Summarize(
	ctx context.Context,
	reader datarecording.DataReader,
) (Summary, error) {
	s := Summary{Commands: make(map[string]int)}

	for k := signal.CmdKind(0); k < signal.NumCmdKind; k++ {
		n, err := count(ctx, reader, CommandTable, "Kind = ?", k.String())
		if err != nil {
			return Summary{}, err
		}

		s.Commands[k.String()] = n
	}

	var err error

	s.NumWrite, err = count(ctx, reader, RequestTable, "IsWrite = 1")
	if err != nil {
		return Summary{}, err
	}

	s.NumForwarded, err = count(ctx, reader, RequestTable, "Forwarded = 1")
	if err != nil {
		return Summary{}, err
	}

	reads, _, err := reader.Query(ctx, RequestTable,
		datarecording.QueryParams{Where: "IsWrite = 0"})
	if err != nil {
		return Summary{}, err
	}

	s.NumRead = len(reads)

	total := 0.0
	for _, r := range reads {
		e := r.(*RequestEntry)
		total += e.Completed - e.Issued
	}

	if s.NumRead > 0 {
		s.AvgReadLatency = total / float64(s.NumRead)
	}

	return s, nil
}

func count(
	ctx context.Context,
	reader datarecording.DataReader,
	table, where string,
	args ...any,
) (int, error) {
	_, n, err := reader.Query(ctx, table, datarecording.QueryParams{
		Where: where,
		Args:  args,
		Limit: 1,
	})

	return n, err
}
