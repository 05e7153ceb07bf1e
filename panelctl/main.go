// Command panelctl drives the customer panel from the terminal. By
// default it does not touch the network at all: requests are routed
// through the interception runtime into an in-process mock backend,
// matching what the hosted panel would return.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"panel/internal/api"
	"panel/internal/client"
	"panel/internal/config"
	"panel/internal/intercept"
	"panel/internal/notify"
)

const ctlVersion = "0.1.0-dev"

// appState carries everything the subcommands share. Built once in the
// root Before hook.
type appState struct {
	cfg     *config.Config
	cfgPath string
	log     zerolog.Logger
	api     *client.Client
	toasts  *notify.Toasts
	runtime *intercept.Runtime

	format string
	quiet  bool
}

func main() {
	st := &appState{}

	var (
		configPath string
		logLevel   string
	)

	app := &cli.Command{
		Name:    "panelctl",
		Usage:   "Manage domains, billing, tickets, and notifications",
		Version: ctlVersion,
		Flags: []cli.Flag{
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
				Value:       "warn",
				Destination: &logLevel,
			},
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format: table, json, plain, quiet",
				Destination: &st.format,
			},
			&cli.BoolFlag{
				Name:        "quiet",
				Aliases:     []string{"q"},
				Usage:       "print ids only",
				Destination: &st.quiet,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, err := newLogger(logLevel)
			if err != nil {
				return ctx, err
			}
			st.log = logger

			path := configPath
			if path == "" {
				path, err = config.Path()
				if err != nil {
					return ctx, fmt.Errorf("resolve config path: %w", err)
				}
			}
			cfg, err := config.Load(path)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			st.cfg = cfg
			st.cfgPath = path
			st.toasts = notify.NewToasts(cfg.Notify.MaxToasts)

			var httpClient *http.Client
			if cfg.MockEnabled() {
				reg := api.NewRegistry(api.Options{
					FailPercent:  cfg.Mock.FailPercent,
					LatencyScale: cfg.Mock.LatencyScale,
					FlakyPercent: cfg.Mock.FlakyPercent,
					Logger:       logger,
				})
				st.runtime = intercept.New(api.NewRouter(reg), nil, logger)
				st.runtime.Start()
				httpClient = st.runtime.Client()
			}

			st.api = client.New(cfg.Server.URL, cfg.Server.Token, httpClient)
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			flushToasts(st)
			if st.toasts != nil {
				st.toasts.Close()
			}
			if st.runtime != nil {
				st.runtime.Stop()
			}
			return nil
		},
		Commands: []*cli.Command{
			newLoginCmd(st),
			newStatusCmd(st),
			newProfileCmd(st),
			newDomainsCmd(st),
			newInvoicesCmd(st),
			newTicketsCmd(st),
			newPaymentsCmd(st),
			newNotificationsCmd(st),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err.Error())
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

// flushToasts surfaces queued mutation-failure toasts on stderr before
// the process exits, since there is no panel UI to render them.
func flushToasts(st *appState) {
	if st.toasts == nil {
		return
	}
	for _, t := range st.toasts.Active() {
		st.log.Warn().Str("kind", string(t.Type)).Msg(t.Message)
	}
}
