package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/labtrack/labtrack/infrastructure/service/logger"
	"github.com/labtrack/labtrack/internal/adapter/persistence"
	"github.com/labtrack/labtrack/internal/app"
	"github.com/labtrack/labtrack/internal/config"
	"github.com/labtrack/labtrack/internal/domain"
)

// --- Global Flags ---
var actorID int64

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "labctl",
		Short:         "Operational tasks for the laboratory resource database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().Int64Var(&actorID, "actor", domain.PrimordialAdministratorID, "user id recorded in the access history")

	rootCmd.AddCommand(
		newMigrateCmd(),
		newSeedAdminCmd(),
		newBackupCmd(),
		newRestoreCmd(),
		newDeleteEquipmentCmd(),
		newStatsCmd(),
	)
	return rootCmd
}

// withApp loads configuration, opens the database and hands the wired
// application to fn. Logs go to stderr so stdout stays scriptable.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.NewStructuredLogger(logger.LoggerConfig{
		Level:       cfg.Logging.Level,
		Format:      "text",
		ServiceName: "labctl",
		Output:      cmd.ErrOrStderr(),
	})

	a, err := app.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the schema or apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				version, err := a.Gateway.SchemaVersion(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
				return nil
			})
		},
	}
}

func newSeedAdminCmd() *cobra.Command {
	var login, password string
	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the primordial administrator on an empty user table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if login == "" {
					login = a.Config.Admin.Login
				}
				if password == "" {
					password = a.Config.Admin.Password
				}
				if password == "" {
					return errors.New("a password is required (--password or ADMIN_PASSWORD)")
				}
				admin, err := a.UseCases.Users.SeedAdministrator(ctx, login, password)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "administrator %q has id %d\n", admin.Login, admin.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&login, "login", "", "administrator login (default ADMIN_LOGIN)")
	cmd.Flags().StringVar(&password, "password", "", "administrator password (default ADMIN_PASSWORD)")
	return cmd
}

func newBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup [destination]",
		Short: "Write a consistent copy of the sqlite database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Gateway.Backup(ctx, args[0]); err != nil {
					return err
				}
				a.UseCases.Audit.Record(ctx, actorID, domain.ActionDatabaseBackup, "backup written to "+args[0])
				fmt.Fprintf(cmd.OutOrStdout(), "backup written to %s\n", args[0])
				return nil
			})
		},
	}
}

func newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore [backup]",
		Short: "Replace the sqlite database with a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if persistence.Dialect(cfg.Database.Driver) != persistence.DialectSQLite {
				return persistence.ErrBackupUnsupported
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if err := persistence.RestoreSQLiteFile(ctx, args[0], cfg.Database.Path); err != nil {
				return err
			}

			// the entry lands in the restored database
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				a.UseCases.Audit.Record(ctx, actorID, domain.ActionDatabaseRestore, "restored from "+args[0])
				fmt.Fprintf(cmd.OutOrStdout(), "database restored from %s\n", args[0])
				return nil
			})
		},
	}
}

func newDeleteEquipmentCmd() *cobra.Command {
	var confirm bool
	cmd := &cobra.Command{
		Use:   "delete-equipment [id]",
		Short: "Delete equipment together with its reports and reservations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid equipment id %q", args[0])
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				deps, err := a.UseCases.Integrity.DeleteEquipment(ctx, actorID, id, confirm)
				if errors.Is(err, domain.ErrConfirmationRequired) {
					return fmt.Errorf("equipment %d has %d report(s) and %d reservation(s); rerun with --confirm", id, deps.Reports, deps.Reservations)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted equipment %d with %d report(s) and %d reservation(s)\n", id, deps.Reports, deps.Reservations)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&confirm, "confirm", false, "also delete dependent reports and reservations")
	return cmd
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the statistics summary as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				stats, err := a.UseCases.Stats.Summary(ctx)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			})
		},
	}
}
