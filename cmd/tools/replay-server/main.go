// Package main serves recorded sensor messages to an SCR race client over UDP
// so that drivers can be exercised without a running simulator.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/monitoring"
	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/replay"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		listen       string
		recording    string
		ticks        int
		speed        float64
		restartAfter int
		logLevel     string
	)

	cmd := &cobra.Command{
		Use:          "replay-server",
		Short:        "Replay recorded sensor messages to one race client",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := monitoring.Configure(logLevel); err != nil {
				return fmt.Errorf("invalid log level %q: %w", logLevel, err)
			}

			lines, err := loadLines(recording, ticks, speed)
			if err != nil {
				return err
			}

			srv, err := replay.Listen(listen, lines, replay.Options{RestartAfter: restartAfter})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if err := srv.Serve(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d commands received\n", len(srv.Commands()))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&listen, "listen", "l", "127.0.0.1:3001", "UDP listen address")
	flags.StringVarP(&recording, "recording", "r", "", "File with one sensor message per line (default: synthesized straight)")
	flags.IntVar(&ticks, "ticks", 500, "Number of synthesized ticks when no recording is given")
	flags.Float64Var(&speed, "speed", 100, "Speed in km/h of the synthesized car")
	flags.IntVar(&restartAfter, "restart-after", 0, "Send a restart marker after this many commands (0 disables)")
	flags.StringVar(&logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	return cmd
}

// loadLines reads the recording, or synthesizes one when path is empty.
func loadLines(path string, ticks int, speed float64) ([][]byte, error) {
	if path == "" {
		if ticks <= 0 {
			return nil, fmt.Errorf("ticks must be positive, got %d", ticks)
		}
		return replay.Straight(ticks, speed), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open recording: %w", err)
	}
	defer f.Close()
	return replay.ReadLines(f)
}
