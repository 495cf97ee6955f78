package cli

import (
	"time"

	"github.com/alexanderramin/worktimer/internal/db"
	"github.com/alexanderramin/worktimer/internal/repository"
	"github.com/alexanderramin/worktimer/internal/server"
	"github.com/alexanderramin/worktimer/internal/service"
	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the time-tracking service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := app.openDB()
			if err != nil {
				return err
			}
			defer database.Close()

			svc := service.NewTimeTrackingService(
				repository.NewSQLiteWorkSessionRepo(database),
				db.NewSQLiteUnitOfWork(database),
				app.clock(),
				time.Local,
				service.NewLogUseCaseObserver(app.Logger),
			)
			return server.New(svc, app.Logger).Run(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", app.Config.Addr, "listen address")
	return cmd
}
