package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/langdict/internal/bootstrap"
	"github.com/at-ishikawa/langdict/internal/config"
	"github.com/at-ishikawa/langdict/internal/database"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			app := bootstrap.New()
			return app.Run(cmd.Context(), func(ctx context.Context) error {
				db, err := openDatabase(ctx, cfg)
				if err != nil {
					return err
				}
				app.Manage(db)

				version, err := database.Migrate(db)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Schema is at version %d\n", version)
				return err
			})
		},
	}
}

func openDatabase(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	switch cfg.Store.Driver {
	case config.DriverMySQL:
		db, err := database.Open(cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := database.Ping(ctx, db, cfg.Database.ConnectAttempts); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	case config.DriverSQLite3:
		return database.OpenSQLite(cfg.SQLite)
	default:
		return nil, fmt.Errorf("store driver %q has no database schema", cfg.Store.Driver)
	}
}
