package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/sarchlab/ddrsim/mem/dram/param"
	"github.com/spf13/cobra"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the built-in parameter tables.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		for _, name := range param.PresetNames() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}

var showCmd = &cobra.Command{
	Use:   "show <preset|file>",
	Short: "Print a parameter table as YAML.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadTable(args[0])
		if err != nil {
			return err
		}

		return param.Dump(cmd.OutOrStdout(), t)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Check parameter table files.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0

		for _, path := range args {
			t, err := param.LoadFile(path)
			if err != nil {
				failed++

				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)

				continue
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%s, %s per channel)\n",
				path, t.Name(), t.ChannelCapacity())
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d files are invalid", failed, len(args))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(presetsCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(validateCmd)
}

// loadTable returns the preset of the given name or, if no preset has that
// name, the table in the file at that path.
func loadTable(nameOrPath string) (*param.Table, error) {
	t, err := param.Preset(nameOrPath)
	if err == nil {
		return t, nil
	}

	if _, statErr := os.Stat(nameOrPath); errors.Is(statErr, os.ErrNotExist) {
		return nil, err
	}

	return param.LoadFile(nameOrPath)
}
