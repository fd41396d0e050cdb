// Package cmd provides the command-line interface of ddrsim.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tebeka/atexit"
)

// envPrefix is the prefix of the environment variables that set flag
// defaults, as in DDRSIM_PRESET or DDRSIM_NUM_ACCESS.
const envPrefix = "DDRSIM_"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ddrsim",
	Short: "ddrsim inspects DRAM parameter tables and simulates DRAM channels.",
	Long: `ddrsim inspects DRAM parameter tables and simulates a DRAM ` +
		`channel driven by synthetic traffic. Flags that are not given on ` +
		`the command line are read from DDRSIM_* environment variables, ` +
		`which may also be set in a .env file.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadEnv,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func loadEnv(cmd *cobra.Command, _ []string) error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	var setErr error

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed || setErr != nil {
			return
		}

		name := envPrefix +
			strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))

		value, ok := os.LookupEnv(name)
		if !ok {
			return
		}

		if err := cmd.Flags().Set(f.Name, value); err != nil {
			setErr = fmt.Errorf("%s: %w", name, err)
		}
	})

	return setErr
}
