// Package serve runs the local API server and the live-update relay.
package serve

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/ticks/internal/cli"
	"github.com/thenoetrevino/ticks/internal/config"
	"github.com/thenoetrevino/ticks/internal/database"
	"github.com/thenoetrevino/ticks/internal/events"
	"github.com/thenoetrevino/ticks/internal/server"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the checklist API server",
		Long: `Run the checklist API server on a local SQLite database.

Writes are announced to the live-update relay when it is running.

Examples:
  ticks serve
  ticks serve --memory --seed --workspace demo`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "Listen address (defaults to server.listen_addr)")
	cmd.Flags().String("db", "", "SQLite database path (defaults to server.db_path)")
	cmd.Flags().Bool("memory", false, "Use an in-memory database")
	cmd.Flags().Bool("seed", false, "Fill the database with demo data first")
	cmd.Flags().String("workspace", "", "Workspace slug for --seed (defaults to the configured workspace)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	out := cli.NewFormatter(cmd)
	cfg, err := config.Load()
	if err != nil {
		_ = out.Error("CONFIG_ERROR", err.Error())
		return &cli.ExitStatusError{Code: cli.ExitError, Err: err}
	}

	addr := flagOr(cmd, "addr", cfg.Server.ListenAddr)
	db, err := openDatabase(ctx, cmd, cfg)
	if err != nil {
		_ = out.Error("DATABASE_ERROR", err.Error())
		return &cli.ExitStatusError{Code: cli.ExitDataErr, Err: err}
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("error closing database", "error", err)
		}
	}()
	repo := database.NewRepository(db)

	if seed, _ := cmd.Flags().GetBool("seed"); seed {
		workspace := flagOr(cmd, "workspace", cfg.Workspace)
		if workspace == "" {
			return out.Usage("MISSING_WORKSPACE", "--seed needs a workspace", "Pass --workspace")
		}
		result, err := database.Seed(ctx, repo, workspace)
		if err != nil {
			_ = out.Error("SEED_ERROR", err.Error())
			return &cli.ExitStatusError{Code: cli.ExitDataErr, Err: err}
		}
		printSeed(cmd, result)
	}

	opts := []server.Option{server.WithAPIKey(cfg.Server.APIKey)}
	if !cfg.Daemon.Disabled {
		if pub := connectRelay(ctx, cfg.Daemon.Socket); pub != nil {
			defer func() { _ = pub.Close() }()
			opts = append(opts, server.WithPublisher(pub))
		}
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Serving on http://%s\n", addr)
	if err := server.New(repo, opts...).Run(ctx, addr); err != nil {
		_ = out.Error("SERVER_ERROR", err.Error())
		return &cli.ExitStatusError{Code: cli.ExitError, Err: err}
	}
	return nil
}

func openDatabase(ctx context.Context, cmd *cobra.Command, cfg *config.Config) (*sql.DB, error) {
	if memory, _ := cmd.Flags().GetBool("memory"); memory {
		return database.Open(ctx, database.MemoryDSN)
	}
	return database.InitDB(ctx, flagOr(cmd, "db", cfg.Server.DBPath))
}

// connectRelay returns a publisher for the relay, or nil when it is not running
func connectRelay(ctx context.Context, socket string) events.EventPublisher {
	client, err := events.NewClient(socket)
	if err != nil {
		return nil
	}
	if err := client.Connect(ctx); err != nil {
		daemonErr := events.ClassifyDaemonError(err)
		slog.Info("serving without live updates", "message", daemonErr.Message, "hint", daemonErr.Hint)
		_ = client.Close()
		return nil
	}
	return client
}

func printSeed(cmd *cobra.Command, result *database.SeedResult) {
	w := cmd.ErrOrStderr()
	fmt.Fprintf(w, "Seeded workspace %s, project %s\n", result.Workspace, result.ProjectID)
	for _, user := range result.Users {
		fmt.Fprintf(w, "  user  %s  %s\n", user.ID, user.DisplayName)
	}
	for _, issue := range result.Issues {
		fmt.Fprintf(w, "  issue %s  #%d %s\n", issue.ID, issue.SequenceID, issue.Name)
	}
}

func flagOr(cmd *cobra.Command, name, fallback string) string {
	if v, _ := cmd.Flags().GetString(name); v != "" {
		return v
	}
	return fallback
}
