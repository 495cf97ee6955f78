package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/worktimer/internal/cli/formatter"
	"github.com/alexanderramin/worktimer/internal/domain"
	"github.com/alexanderramin/worktimer/internal/engine"
	"github.com/spf13/cobra"
)

var errEndNotConfirmed = errors.New("ending the day needs --yes on a non-interactive terminal")

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current work day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runOnce(cmd, nil)
		},
	}
}

func newStartCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the work day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runOnce(cmd, (*engine.Engine).StartDay)
		},
	}
}

func newPauseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Pause the running work day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runOnce(cmd, (*engine.Engine).Pause)
		},
	}
}

func newResumeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Resume a paused work day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runOnce(cmd, (*engine.Engine).Resume)
		},
	}
}

func newEndCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "end",
		Short: "End the work day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				if !app.interactive() || app.Confirm == nil {
					return errEndNotConfirmed
				}
				ok, err := app.Confirm("End the work day?")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Cancelled."))
					return nil
				}
			}
			return app.runOnce(cmd, (*engine.Engine).EndDay)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// runOnce loads the engine, applies action and prints the resulting view.
// Close pushes the final elapsed value before the command returns.
func (a *App) runOnce(cmd *cobra.Command, action func(*engine.Engine, context.Context) error) error {
	ctx := cmd.Context()
	e, cleanup, err := a.newEngine()
	defer cleanup()
	if err != nil {
		return err
	}
	defer e.Close(ctx)

	if err := e.Start(ctx); err != nil {
		return err
	}
	if action != nil {
		if err := action(e, ctx); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, formatter.FormatTimer(e.State()))
	if hint := reminderHint(e.Reminder()); hint != "" {
		fmt.Fprintln(out, formatter.Dim(hint))
	}
	return nil
}

func reminderHint(r engine.ReminderView) string {
	switch {
	case r.Status == domain.StatusPaused:
		return "Paused. Run `worktimer resume` to continue."
	case !r.HasActiveDay && r.Status != domain.StatusCompleted:
		return "No work day running. Run `worktimer start` to begin."
	}
	return ""
}
