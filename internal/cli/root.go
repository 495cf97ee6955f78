package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alexanderramin/worktimer/internal/config"
	"github.com/alexanderramin/worktimer/internal/db"
	"github.com/alexanderramin/worktimer/internal/engine"
	"github.com/alexanderramin/worktimer/internal/remote"
	"github.com/alexanderramin/worktimer/internal/snapshot"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// App holds the settings and collaborators shared by all commands.
type App struct {
	Config config.Config
	Logger zerolog.Logger
	Clock  clockwork.Clock

	// Tracker and Snapshots replace the HTTP client and the SQLite snapshot
	// store built from Config when set.
	Tracker   remote.Tracker
	Snapshots snapshot.Store

	IsInteractive func() bool
	// Confirm asks a yes/no question on an interactive terminal.
	Confirm func(title string) (bool, error)
	// RunProgram runs the watch TUI.
	RunProgram func(ctx context.Context, m tea.Model) error

	noSnapshot bool
}

// NewRootCmd creates the top-level "worktimer" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "worktimer",
		Short:         "Work-day timer synced with a time-tracking service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	registerGlobalFlags(root.PersistentFlags(), app)

	root.AddCommand(
		newStatusCmd(app),
		newStartCmd(app),
		newPauseCmd(app),
		newResumeCmd(app),
		newEndCmd(app),
		newWatchCmd(app),
		newServeCmd(app),
	)
	return root
}

func registerGlobalFlags(fs *pflag.FlagSet, app *App) {
	fs.StringVar(&app.Config.Endpoint, "endpoint", app.Config.Endpoint, "time-tracking service URL")
	fs.StringVar(&app.Config.DBPath, "db", app.Config.DBPath, "SQLite database for the local snapshot")
	fs.BoolVar(&app.noSnapshot, "no-snapshot", false, "keep the local snapshot in memory only")
}

func (a *App) clock() clockwork.Clock {
	if a.Clock == nil {
		return clockwork.NewRealClock()
	}
	return a.Clock
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// newEngine builds an engine from the App. The returned cleanup releases the
// snapshot database and must run after the engine is closed.
func (a *App) newEngine() (*engine.Engine, func(), error) {
	cleanup := func() {}
	clock := a.clock()

	tracker := a.Tracker
	if tracker == nil {
		var obs remote.Observer = remote.NoopObserver{}
		if a.Config.LogCalls {
			obs = remote.NewLogObserver(a.Logger)
		}
		tracker = remote.NewHTTPClient(a.Config.Remote(), obs, clock)
	}

	snaps := a.Snapshots
	if snaps == nil {
		opts := snapshot.Options{Key: a.Config.SnapshotKey, TTL: a.Config.SnapshotTTL, Clock: clock}
		if a.noSnapshot {
			snaps = snapshot.NewMemoryStore(opts)
		} else {
			database, err := a.openDB()
			if err != nil {
				return nil, cleanup, err
			}
			snaps = snapshot.NewSQLiteStore(database, opts, a.Logger)
			cleanup = func() { database.Close() }
		}
	}

	e := engine.New(engine.Options{
		Tracker:          tracker,
		Snapshots:        snaps,
		Clock:            clock,
		Logger:           a.Logger,
		Observer:         engine.NewLogObserver(a.Logger),
		TickInterval:     a.Config.TickInterval,
		SyncInterval:     a.Config.SyncInterval,
		AutosaveInterval: a.Config.AutosaveInterval,
	})
	return e, cleanup, nil
}

func (a *App) openDB() (*sql.DB, error) {
	database, err := db.OpenDB(a.Config.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", a.Config.DBPath, err)
	}
	return database, nil
}
