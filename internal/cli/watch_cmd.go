package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newWatchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Show a live timer with session controls",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, cleanup, err := app.newEngine()
			defer cleanup()
			if err != nil {
				return err
			}
			defer e.Close(ctx)

			// A failed load is shown in the view; the engine keeps retrying.
			if err := e.Start(ctx); err != nil {
				app.Logger.Warn().Err(err).Msg("watch_start_offline")
			}

			run := app.RunProgram
			if run == nil {
				run = runProgram
			}
			return run(ctx, newWatchModel(ctx, e))
		},
	}
}

func runProgram(ctx context.Context, m tea.Model) error {
	_, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}
