package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cxd309/accel-profile/internal/planfile"
	"github.com/cxd309/accel-profile/internal/profile"
)

func newScheduleCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "schedule <plan.json|plan.yaml>",
		Short: "Print the cumulative schedule derived from a plan file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := planfile.Load(args[0])
			if err != nil {
				return err
			}
			schedule := profile.BuildSchedule(doc.Stages)

			if asJSON {
				out, err := json.MarshalIndent(schedule, "", "  ")
				if err != nil {
					return fmt.Errorf("marshaling schedule: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}

			if doc.Name != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "plan: %s\n", doc.Name)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "STAGE\tACCEL (m/s²)\tSTART (s)\tEND (s)")
			start := 0.0
			for i, e := range schedule {
				fmt.Fprintf(tw, "%d\t%.2f\t%.2f\t%.2f\n", i, e.Accel, start, e.EndTime)
				start = e.EndTime
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the schedule as JSON")
	return cmd
}
