// Command dock runs the docking pipeline from the shell: prepare inputs,
// pick or accept a search box, invoke the engine and print ranked poses.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "dock",
		Short:         "Rigid docking pipeline driver",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "config file path")
	pf.StringVar(&opts.enginePath, "engine", "", "docking engine binary")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newRunCmd(opts))
	cmd.AddCommand(newConvertCmd())
	cmd.AddCommand(newPocketCmd())
	cmd.AddCommand(newVersionCmd(opts))

	return cmd
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
