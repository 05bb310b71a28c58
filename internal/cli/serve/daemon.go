package serve

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/ticks/internal/cli"
	"github.com/thenoetrevino/ticks/internal/config"
	"github.com/thenoetrevino/ticks/internal/daemon"
)

// DaemonCmd returns the daemon command
func DaemonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the live-update relay",
		Long: `Run the relay that forwards change events between the API server and
open interactive views over a Unix socket.`,
		Args: cobra.NoArgs,
		RunE: runDaemon,
	}
	cmd.Flags().String("socket", "", "Socket path (defaults to daemon.socket)")
	cmd.Flags().Duration("ping", 30*time.Second, "Interval between health checks")
	cmd.Flags().Duration("stale-after", 90*time.Second, "Drop peers silent for this long")
	return cmd
}

func runDaemon(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	out := cli.NewFormatter(cmd)
	cfg, err := config.Load()
	if err != nil {
		_ = out.Error("CONFIG_ERROR", err.Error())
		return &cli.ExitStatusError{Code: cli.ExitError, Err: err}
	}

	socket := flagOr(cmd, "socket", cfg.Daemon.Socket)

	ping, _ := cmd.Flags().GetDuration("ping")
	staleAfter, _ := cmd.Flags().GetDuration("stale-after")
	srv, err := daemon.NewServer(socket, daemon.WithHealthCheck(ping, staleAfter))
	if err != nil {
		_ = out.Error("DAEMON_ERROR", err.Error())
		return &cli.ExitStatusError{Code: cli.ExitError, Err: err}
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Relay listening on %s (pid %d)\n", socket, os.Getpid())
	if err := srv.Start(ctx); err != nil {
		_ = out.Error("DAEMON_ERROR", err.Error())
		return &cli.ExitStatusError{Code: cli.ExitError, Err: err}
	}

	stats, _ := json.Marshal(srv.Metrics().Snapshot())
	fmt.Fprintf(cmd.ErrOrStderr(), "Relay stopped: %s\n", stats)
	return nil
}
