package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/sarchlab/ddrsim/datarecording"
	"github.com/sarchlab/ddrsim/mem/dram/trace"
	"github.com/spf13/cobra"
)

var showRecordCommands int

var showRecordCmd = &cobra.Command{
	Use:   "show-record <db>",
	Short: "Summarize a database written by run --record.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(args[0]); err != nil {
			return err
		}

		reader, err := trace.OpenReader(args[0])
		if err != nil {
			return err
		}

		defer reader.Close()

		return showRecord(cmd, reader, showRecordCommands)
	},
}

func init() {
	showRecordCmd.Flags().IntVar(&showRecordCommands, "commands", 0,
		"also list the first n commands")

	rootCmd.AddCommand(showRecordCmd)
}

func showRecord(
	cmd *cobra.Command,
	reader datarecording.DataReader,
	numCmds int,
) error {
	ctx := cmd.Context()

	s, err := trace.Summarize(ctx, reader)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "reads: %d, writes: %d, forwarded: %d\n",
		s.NumRead, s.NumWrite, s.NumForwarded)
	fmt.Fprintf(w, "average read latency: %.3f ns\n", s.AvgReadLatency*1e9)
	fmt.Fprintf(w, "commands: ACT %d, RD %d, WR %d, PRE %d, REF %d, "+
		"PDE %d, PDX %d\n",
		s.Commands["ACT"], s.Commands["RD"], s.Commands["WR"],
		s.Commands["PRE"], s.Commands["REF"],
		s.Commands["PDE"], s.Commands["PDX"])

	if numCmds <= 0 {
		return nil
	}

	cmds, _, err := reader.Query(ctx, trace.CommandTable,
		datarecording.QueryParams{OrderBy: "Cycle", Limit: numCmds})
	if err != nil {
		return err
	}

	return listCommands(w, cmds)
}

func listCommands(w io.Writer, cmds []any) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "cycle\tkind\trank\tgroup\tbank\trow\tcol\t")

	for _, c := range cmds {
		e := c.(*trace.CommandEntry)
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\t%d\t\n",
			e.Cycle, e.Kind, e.Rank, e.BankGroup, e.Bank, e.RowAddr, e.ColAddr)
	}

	return tw.Flush()
}
