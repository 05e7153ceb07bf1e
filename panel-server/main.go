// Command panel-server runs the simulated customer-panel backend: seeded
// fixtures behind a REST API with configurable latency and failure injection.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"panel/internal/api"
	"panel/internal/config"
)

const serverVersion = "0.1.0-dev"

func main() {
	var (
		port         string
		configPath   string
		logLevel     string
		failPercent  float64
		latencyScale float64
		flakyPercent float64
	)

	app := &cli.Command{
		Name:    "panel-server",
		Usage:   "Serve the mock customer-panel API",
		Version: serverVersion,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "port",
				Usage:       "HTTP listen port",
				Sources:     cli.EnvVars("PANEL_PORT"),
				Value:       "8480",
				Destination: &port,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("PANEL_CONFIG"),
				Destination: &configPath,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error)",
				Sources:     cli.EnvVars("PANEL_LOG_LEVEL"),
				Value:       "info",
				Destination: &logLevel,
			},
			&cli.FloatFlag{
				Name:        "fail-percent",
				Usage:       "chance, in percent, of an injected 500/503 on validated requests",
				Sources:     cli.EnvVars("PANEL_FAIL_PERCENT"),
				Value:       -1,
				Destination: &failPercent,
			},
			&cli.FloatFlag{
				Name:        "latency-scale",
				Usage:       "multiplier on simulated response latency (0 disables delays)",
				Sources:     cli.EnvVars("PANEL_LATENCY_SCALE"),
				Value:       -1,
				Destination: &latencyScale,
			},
			&cli.FloatFlag{
				Name:        "flaky-percent",
				Usage:       "failure rate of the /api/test/flaky endpoint",
				Sources:     cli.EnvVars("PANEL_FLAKY_PERCENT"),
				Value:       -1,
				Destination: &flakyPercent,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger, err := newLogger(logLevel)
			if err != nil {
				return err
			}

			path := configPath
			if path == "" {
				path, err = config.Path()
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
			}
			cfg, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			// Flags override file values when set.
			if failPercent >= 0 {
				cfg.Mock.FailPercent = failPercent
			}
			if latencyScale >= 0 {
				cfg.Mock.LatencyScale = latencyScale
			}
			if flakyPercent >= 0 {
				cfg.Mock.FlakyPercent = flakyPercent
			}

			reg := api.NewRegistry(api.Options{
				FailPercent:  cfg.Mock.FailPercent,
				LatencyScale: cfg.Mock.LatencyScale,
				FlakyPercent: cfg.Mock.FlakyPercent,
				Logger:       logger,
			})

			server := &http.Server{
				Addr:         ":" + port,
				Handler:      api.NewRouter(reg),
				ReadTimeout:  10 * time.Second,
				WriteTimeout: 0,
				IdleTimeout:  60 * time.Second,
			}

			shutdownDone := make(chan struct{})
			go func() {
				defer close(shutdownDone)
				sigCh := make(chan os.Signal, 1)
				signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
				select {
				case <-sigCh:
				case <-ctx.Done():
				}

				shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := server.Shutdown(shutCtx); err != nil {
					logger.Error().Err(err).Msg("graceful shutdown failed")
				}
			}()

			logger.Info().
				Str("addr", server.Addr).
				Float64("failPercent", cfg.Mock.FailPercent).
				Float64("latencyScale", cfg.Mock.LatencyScale).
				Msg("panel-server listening")

			err = server.ListenAndServe()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			<-shutdownDone
			return nil
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func newLogger(level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("parse log level: %w", err)
	}
	var out = zerolog.New(os.Stderr)
	if isatty.IsTerminal(os.Stderr.Fd()) {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	return out.With().Timestamp().Logger().Level(lvl), nil
}
