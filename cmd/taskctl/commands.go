// AngelaMos | 2026
// commands.go

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/taskboard/internal/activity"
	"github.com/carterperez-dev/taskboard/internal/auth"
	"github.com/carterperez-dev/taskboard/internal/config"
	"github.com/carterperez-dev/taskboard/internal/core"
	"github.com/carterperez-dev/taskboard/internal/user"
	"github.com/carterperez-dev/taskboard/migrations"
)

const commandTimeout = 2 * time.Minute

func keygenCmd() *cobra.Command {
	var privatePath, publicPath string

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an ES256 key pair for signing access tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, p := range []string{privatePath, publicPath} {
				if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
					return fmt.Errorf("create key directory: %w", err)
				}
			}
			if err := auth.GenerateKeyPair(privatePath, publicPath); err != nil {
				return fmt.Errorf("generate key pair: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s and %s\n", privatePath, publicPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&privatePath, "private", "keys/private.pem", "private key output path")
	cmd.Flags().StringVar(&publicPath, "public", "keys/public.pem", "public key output path")

	return cmd
}

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(cmd, *configPath, func(ctx context.Context, cfg *config.Config, db *core.Database) error {
				if err := migrations.Apply(ctx, db.DB); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "applied %d schema files\n", len(migrations.Files()))
				return nil
			})
		},
	}
}

func pruneActivityCmd(configPath *string) *cobra.Command {
	var retentionDays int

	cmd := &cobra.Command{
		Use:   "prune-activity",
		Short: "Delete activity entries older than the retention window",
		Long: `Delete activity entries older than the retention window.

The window defaults to activity.retention_days from the config file and can
be overridden with --retention-days.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(cmd, *configPath, func(ctx context.Context, cfg *config.Config, db *core.Database) error {
				retention := cfg.Activity.RetentionWindow()
				if retentionDays > 0 {
					retention = time.Duration(retentionDays) * 24 * time.Hour
				}

				svc := activity.NewService(activity.NewRepository(db.DB), nil, retention, cliLogger())
				n, err := svc.Prune(ctx)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d activity entries older than %s\n", n, retention)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&retentionDays, "retention-days", 0, "override the configured retention window")

	return cmd
}

func promoteCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "promote [email]",
		Short: "Grant the admin role to an existing user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd, *configPath, func(ctx context.Context, cfg *config.Config, db *core.Database) error {
				svc := user.NewService(user.NewRepository(db.DB), user.Quota{
					MaxProjects:          cfg.Quota.DefaultMaxProjects,
					MaxMembersPerProject: cfg.Quota.DefaultMaxMembers,
				})

				u, err := svc.PromoteByEmail(ctx, args[0])
				if err != nil {
					return fmt.Errorf("promote %s: %w", args[0], err)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) is now %s\n", u.Email, u.ID, u.Role)
				return nil
			})
		},
	}
}

func withDatabase(
	cmd *cobra.Command,
	configPath string,
	fn func(ctx context.Context, cfg *config.Config, db *core.Database) error,
) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck // process exits right after

	return fn(ctx, cfg, db)
}

func cliLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}
