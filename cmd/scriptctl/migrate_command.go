package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/johnquangdev/script-workspace/internal/infrastructure/database"
	"github.com/johnquangdev/script-workspace/pkg/config"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the snapshot table of SQL stores",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSQLStore(cmd, ctx, func(db *sql.DB, dialect string) error {
				if err := database.Migrate(db, dialect, nil); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List migrations and when they were applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSQLStore(cmd, ctx, func(db *sql.DB, dialect string) error {
				states, err := database.MigrationStatus(db, dialect)
				if err != nil {
					return err
				}
				rows := make([][]string, len(states))
				for i, s := range states {
					applied := "pending"
					if s.AppliedAt != nil {
						applied = s.AppliedAt.Local().Format(time.DateTime)
					}
					rows[i] = []string{s.ID, applied}
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Migration", "Applied"}, rows, nil))
				return nil
			})
		},
	})

	return cmd
}

// withSQLStore connects to the SQL store selected by STORE_DRIVER.
func withSQLStore(cmd *cobra.Command, ctx *commandContext, fn func(db *sql.DB, dialect string) error) error {
	cfg, err := ctx.config()
	if err != nil {
		return err
	}
	c, cancel := context.WithTimeout(cmd.Context(), storeTimeout)
	defer cancel()

	switch cfg.Store.Driver {
	case config.StoreDriverSQLite:
		db, err := database.NewSQLiteDB(c, cfg.Store.SQLitePath)
		if err != nil {
			return err
		}
		defer db.Close()
		return fn(db, database.DialectSQLite)
	case config.StoreDriverPostgres:
		gdb, err := database.NewPostgresDB(c, cfg, nil)
		if err != nil {
			return err
		}
		defer database.CloseDB(gdb)
		db, err := gdb.DB()
		if err != nil {
			return err
		}
		return fn(db, database.DialectPostgres)
	default:
		return fmt.Errorf("STORE_DRIVER=%s has no migrations; use sqlite or postgres", cfg.Store.Driver)
	}
}
