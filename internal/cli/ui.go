package cli

import (
	"github.com/spf13/cobra"

	"media-scribe/internal/bootstrap"
)

// NewUICmd opens the desktop window, serving the frontend from ./frontend.
func NewUICmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the desktop window",
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps.RunUI != nil {
				return deps.RunUI()
			}
			app, err := bootstrap.New()
			if err != nil {
				return err
			}
			return app.Run()
		},
	}
}
