package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/client"
	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/config"
	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/driver"
	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/monitoring"
	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/version"
	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/wire"
)

// runFlags holds the values of the run command flags. They override the
// config file only when set on the command line.
type runFlags struct {
	configPath  string
	host        string
	port        int
	timeout     time.Duration
	fitnessFile string
	stopOn      []string
	debugListen string
	logLevel    string
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "scr-client",
		Short:        "Race client for the TORCS SCR server",
		SilenceUsage: true,
	}
	root.AddCommand(newRunCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "scr-client", version.String())
		},
	}
}

func newRunCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Connect to the race server and drive until the race ends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := loadSettings(cmd, &f)
			if err != nil {
				return err
			}
			if err := monitoring.Configure(cc.GetLogLevel()); err != nil {
				return fmt.Errorf("invalid log level %q: %w", cc.GetLogLevel(), err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fitness, err := race(ctx, cc, driver.NewSimple(), client.NewFileSink(cc.GetFitnessFile()))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), wire.FormatNumber(fitness))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.configPath, "config", "c", "", "YAML config file")
	flags.StringVar(&f.host, "host", config.DefaultHost, "Race server host")
	flags.IntVarP(&f.port, "port", "p", config.DefaultPort, "Race server port")
	flags.DurationVar(&f.timeout, "timeout", config.DefaultTimeout, "Receive timeout")
	flags.StringVarP(&f.fitnessFile, "fitness-file", "f", config.DefaultFitnessFile, "File the fitness is written to")
	flags.StringSliceVar(&f.stopOn, "stop-on", nil, "Stop the run on any of: crashed, stuck, lap")
	flags.StringVar(&f.debugListen, "debug-listen", "", "Listen address of the debug HTTP server (empty disables it)")
	flags.StringVar(&f.logLevel, "log-level", config.DefaultLogLevel, "Log level (trace, debug, info, warn, error)")
	return cmd
}

// loadSettings reads the config file, if any, and applies explicitly set
// flags on top of it.
func loadSettings(cmd *cobra.Command, f *runFlags) (*config.ClientConfig, error) {
	cc := &config.ClientConfig{}
	if f.configPath != "" {
		loaded, err := config.LoadClientConfig(f.configPath)
		if err != nil {
			return nil, err
		}
		cc = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		cc.Host = &f.host
	}
	if flags.Changed("port") {
		cc.Port = &f.port
	}
	if flags.Changed("timeout") {
		s := f.timeout.String()
		cc.Timeout = &s
	}
	if flags.Changed("fitness-file") {
		cc.FitnessFile = &f.fitnessFile
	}
	if flags.Changed("stop-on") {
		cc.StopOn = f.stopOn
	}
	if flags.Changed("debug-listen") {
		cc.DebugListen = &f.debugListen
	}
	if flags.Changed("log-level") {
		cc.LogLevel = &f.logLevel
	}

	if err := cc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cc, nil
}

// clientConfig translates the file settings into client settings.
func clientConfig(cc *config.ClientConfig) (client.Config, error) {
	stopOn, err := client.ParseStopConditions(cc.GetStopOn())
	if err != nil {
		return client.Config{}, err
	}
	cfg := client.DefaultConfig()
	cfg.Host = cc.GetHost()
	cfg.Port = cc.GetPort()
	cfg.Timeout = cc.GetTimeout()
	cfg.Weights = cc.GetWeights()
	cfg.StopOn = stopOn
	return cfg, nil
}

// race runs one client session and, when configured, the debug HTTP server
// next to it. It returns the fitness of the run.
func race(ctx context.Context, cc *config.ClientConfig, d driver.Driver, sink client.FitnessSink) (float64, error) {
	cfg, err := clientConfig(cc)
	if err != nil {
		return 0, err
	}
	c := client.New(cfg, d, sink)
	log := monitoring.Logger.WithField("session", c.Session())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return c.Run(gctx)
	})

	if addr := cc.GetDebugListen(); addr != "" {
		mux := http.NewServeMux()
		c.AttachAdminRoutes(mux)
		server := &http.Server{Addr: addr, Handler: mux}

		g.Go(func() error {
			log.WithField("addr", addr).Info("Debug server listening.")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("debug server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.WithError(err).Warn("Debug server shutdown error.")
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}
	return c.Metrics().Fitness, nil
}
