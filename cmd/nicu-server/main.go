package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nicu/fluidcalc/internal/config"
	"github.com/nicu/fluidcalc/internal/platform/db"
	"github.com/nicu/fluidcalc/internal/reference"
	"github.com/nicu/fluidcalc/migrations"
	"github.com/nicu/fluidcalc/pkg/nutrition"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "nicu-server",
		Short:        "NICU fluid and nutrition calculator",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(referenceCmd())
	rootCmd.AddCommand(calculateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger.Level(cfg.ZerologLevel())
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the calculator API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServer(cfg, newLogger(cfg))
		},
	}
}

func openPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	return db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	// migrate up
	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, _ := cmd.Flags().GetString("schema")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, migrations.FS)
			fmt.Fprintf(cmd.OutOrStdout(), "Running migrations on schema: %s\n", schema)

			count, err := migrator.Up(ctx, schema)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("schema", "public", "Target schema for migrations")
	cmd.AddCommand(upCmd)

	// migrate status
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, _ := cmd.Flags().GetString("schema")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, migrations.FS).Status(ctx, schema)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}
			printMigrationStatus(cmd.OutOrStdout(), schema, statuses)
			return nil
		},
	}
	statusCmd.Flags().String("schema", "public", "Target schema for migrations")
	cmd.AddCommand(statusCmd)

	return cmd
}

func printMigrationStatus(w io.Writer, schema string, statuses []db.MigrationStatus) {
	fmt.Fprintf(w, "Migration status for schema: %s\n", schema)
	fmt.Fprintf(w, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
	fmt.Fprintln(w, "---------- ---------------------------------------- ---------- --------------------")
	for _, s := range statuses {
		status := "pending"
		appliedAt := ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(w, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
	}
}

func referenceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reference",
		Short: "Inspect and publish reference tables",
	}

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Write reference tables into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			ref, err := reference.Default()
			if dir != "" {
				ref, err = reference.LoadDir(dir)
			}
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			n, err := reference.NewPGStore(pool, logger).Seed(ctx, ref)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d reference row(s).\n", n)
			return nil
		},
	}
	seedCmd.Flags().String("dir", "", "Directory with the JSON tables (default: built-in tables)")
	cmd.AddCommand(seedCmd)

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the configured reference tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := context.Background()
			ref, pool, err := loadReference(ctx, cfg, newLogger(cfg))
			if err != nil {
				return err
			}
			if pool != nil {
				defer pool.Close()
			}

			if out != "" {
				if err := reference.WriteDir(out, ref); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote reference tables to %s\n", out)
				return nil
			}
			return writeReference(cmd.OutOrStdout(), ref)
		},
	}
	showCmd.Flags().String("out", "", "Write the tables as JSON files into this directory instead of stdout")
	cmd.AddCommand(showCmd)

	return cmd
}

func writeReference(w io.Writer, ref *nutrition.ReferenceData) error {
	fluid, tpn, solutions := reference.Documents(ref)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]interface{}{
		"fluid_requirements":    fluid,
		"tpn_compositions":      tpn,
		"solution_compositions": solutions,
	})
}

// loadReference resolves the configured reference source. The pool is
// returned when the source is Postgres so the caller can reuse and close it.
func loadReference(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*nutrition.ReferenceData, *pgxpool.Pool, error) {
	switch cfg.ReferenceSource {
	case config.SourceFile:
		ref, err := reference.LoadDir(cfg.ReferenceDataDir)
		return ref, nil, err
	case config.SourcePostgres:
		pool, err := openPool(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		ref, err := reference.NewPGStore(pool, logger).Load(ctx)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return ref, pool, nil
	default:
		ref, err := reference.Default()
		return ref, nil, err
	}
}
