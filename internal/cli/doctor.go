package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"media-scribe/internal/diagnostics"
	"media-scribe/internal/domain"
)

// NewDoctorCmd prints the diagnostics report for the configured engine.
func NewDoctorCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the configured engine can run",
		RunE: func(cmd *cobra.Command, args []string) error {
			report := diagnostics.NewChecker().Run(deps.Env.Settings)
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "engine: %s\n", report.Engine)
			for _, item := range report.Items {
				mark := "ok"
				if item.Status == domain.DiagnosticStatusFail {
					mark = "FAIL"
				}
				fmt.Fprintf(out, "[%s] %s: %s\n", mark, item.Name, item.Message)
				if item.Hint != "" && item.Status == domain.DiagnosticStatusFail {
					fmt.Fprintf(out, "       %s\n", item.Hint)
				}
			}

			if report.HasFailures {
				return fmt.Errorf("diagnostics reported failures")
			}
			return nil
		},
	}
}
