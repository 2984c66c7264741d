package cli

import (
	"github.com/spf13/cobra"

	"media-scribe/internal/bootstrap"
)

// Dependencies are shared by every subcommand.
type Dependencies struct {
	Env *bootstrap.Environment
	// RunUI starts the desktop window; replaced in tests.
	RunUI func() error
}

// NewRootCmd assembles the scribe command tree.
func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "scribe",
		Short:        "Pick audio or video files and transcribe them",
		Long:         "Picks media into a private scratch directory, keeps a session history and transcribes the selected file with whisper.cpp or the OpenAI API.",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(NewTranscribeCmd(deps))
	rootCmd.AddCommand(NewDoctorCmd(deps))
	rootCmd.AddCommand(NewUICmd(deps))

	return rootCmd
}
