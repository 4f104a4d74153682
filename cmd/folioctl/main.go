// Package main is the entry point for folioctl, the folio operator CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	pgdb "github.com/folio-dev/folio/internal/adapter/postgres"
	"github.com/folio-dev/folio/internal/config"
	"github.com/folio-dev/folio/internal/wire"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "folioctl",
	Short: "folioctl - operator tasks for the folio portfolio backend",
	Long: `folioctl runs one-off operator tasks against the folio database and
upload directory: schema migrations, admin provisioning and orphan-image
sweeps. It reads the same environment (and .env file) as the server.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help() //nolint:errcheck
	},
}

var verbose bool

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetVersionTemplate("folioctl version {{.Version}}\n")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
}

// openPool loads config and connects to the database.
func openPool(ctx context.Context) (*config.Config, *pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	pool, err := pgdb.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}
	return cfg, pool, nil
}

// openServices is openPool plus the service layer. The caller closes the pool.
func openServices(ctx context.Context) (*config.Config, *wire.Services, *pgxpool.Pool, error) {
	cfg, pool, err := openPool(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	svcs, err := wire.BuildServices(ctx, cfg, pool, slog.Default())
	if err != nil {
		pool.Close()
		return nil, nil, nil, err
	}
	return cfg, svcs, pool, nil
}
