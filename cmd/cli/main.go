// Command accelprofile runs acceleration profile simulations and inspects plans.
//
//	accelprofile sim input.json            # JSON log to stdout
//	accelprofile sim < input.yaml --format yaml --plot run.png
//	accelprofile schedule plan.yaml
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootOptions holds the flags shared by every subcommand.
type rootOptions struct {
	logLevel string
}

func newRootCmd() *cobra.Command {
	var ro rootOptions
	root := &cobra.Command{
		Use:           "accelprofile",
		Short:         "Acceleration profile playback for longitudinal test drives",
		Long:          "accelprofile plays back staged acceleration plans against a simulated vehicle and inspects plan schedules.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&ro.logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")

	root.AddCommand(newSimCmd(&ro), newScheduleCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
