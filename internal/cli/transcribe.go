package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"media-scribe/internal/bootstrap"
	"media-scribe/internal/controller"
	"media-scribe/internal/domain"
	"media-scribe/internal/media"
)

const pollInterval = 100 * time.Millisecond

// NewTranscribeCmd picks each file in order, then transcribes one of them.
func NewTranscribeCmd(deps *Dependencies) *cobra.Command {
	var selectName string
	var engine string

	cmd := &cobra.Command{
		Use:   "transcribe FILE...",
		Short: "Pick media files and transcribe the selected one",
		Long:  "Copies every FILE into the scratch directory as if picked one after another, then transcribes the last one, or the one named by --select.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := deps.Env.Settings
			if engine != "" {
				settings.Engine = engine
			}
			ctrl := bootstrap.NewController(settings, media.NewQueuePicker(args...), deps.Env.Logger, nil)
			return runTranscribe(cmd.Context(), ctrl, len(args), selectName, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&selectName, "select", "s", "", "File name from the history to transcribe")
	cmd.Flags().StringVarP(&engine, "engine", "e", "", "Engine override: whisper.cpp or openai")

	return cmd
}

func runTranscribe(ctx context.Context, ctrl *controller.Controller, picks int, selectName string, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	loopCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() { _ = ctrl.Run(loopCtx) }()

	var state domain.AppState
	for i := 0; i < picks; i++ {
		var err error
		state, err = ctrl.PickMedia(ctx)
		if err != nil {
			if errors.Is(err, controller.ErrStopped) {
				return err
			}
			fmt.Fprintf(errOut, "skipped: %v\n", err)
		}
	}

	if selectName != "" {
		ref, ok := lo.Find(state.History, func(r domain.MediaReference) bool {
			return r.Name == selectName
		})
		if !ok {
			return fmt.Errorf("%w: %s", controller.ErrNotInHistory, selectName)
		}
		var err error
		if state, err = ctrl.SelectFromHistory(ctx, ref.Location); err != nil {
			return err
		}
	}

	for _, ref := range state.RecentHistory() {
		marker := " "
		if state.Selection != nil && state.Selection.Location == ref.Location {
			marker = "*"
		}
		fmt.Fprintf(errOut, "%s %-5s %s\n", marker, ref.Label(), ref.Name)
	}

	state, err := ctrl.StartTranscription(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(errOut, state.DisplayText)

	state, err = awaitResult(ctx, ctrl)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, state.DisplayText)
	if state.Session.Status == domain.SessionStatusFailed {
		return fmt.Errorf("transcription failed: %s", state.Session.Reason)
	}
	return nil
}

// awaitResult polls until the running session settles.
func awaitResult(ctx context.Context, ctrl *controller.Controller) (domain.AppState, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		state, err := ctrl.State(ctx)
		if err != nil {
			return domain.AppState{}, err
		}
		if !state.Session.Running() {
			return state, nil
		}
		select {
		case <-ctx.Done():
			return domain.AppState{}, ctx.Err()
		case <-ticker.C:
		}
	}
}
