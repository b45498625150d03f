package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/deltegui/bankconsole"
	"github.com/deltegui/bankconsole/bank"
	"github.com/deltegui/bankconsole/clock"
	"github.com/deltegui/bankconsole/config"
	"github.com/deltegui/bankconsole/extensions"
	"github.com/deltegui/bankconsole/localizer"
	"github.com/deltegui/bankconsole/logging"
	"github.com/deltegui/bankconsole/pages"
	qc "github.com/deltegui/bankconsole/querycache"
	"github.com/deltegui/bankconsole/validator"
	"github.com/deltegui/bankconsole/views"
)

const (
	sharedBundle   = "shared"
	errorsBundle   = "errors"
	sessionSweep   = time.Minute
	csrfTokenValid = 2 * time.Hour
)

type serveOptions struct {
	configPath string
	listen     string
	logLevel   string
}

func newServeCmd() *cobra.Command {
	opts := serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Loads the configuration from --config (optional), then BANKCONSOLE_*
environment variables, then the flags, and serves until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if opts.listen != "" {
				cfg.Listen = opts.listen
			}
			if opts.logLevel != "" {
				cfg.Log.Level = opts.logLevel
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to a YAML configuration file")
	flags.StringVar(&opts.listen, "listen", "", "address to listen on, overrides the configuration")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	logger.Info().
		Str("version", version).
		Str("api", cfg.API.BaseURL).
		Str("sessions", cfg.Session.Store).
		Msg("starting bankconsole")
	if cfg.Session.Secret == "" {
		logger.Warn().Msg("no session secret configured, cookies will not survive a restart")
	}

	clk := clock.Real()
	cy, err := extensions.NewCypher(cfg.Session.Secret)
	if err != nil {
		return fmt.Errorf("cannot create cypher: %w", err)
	}

	r := bankconsole.NewRouter(bankconsole.Config{
		Localizer:        localizer.NewStore(views.Bundles(), sharedBundle, errorsBundle, cy, logger),
		Validator:        validator.New(),
		Logger:           logger,
		NotFoundRedirect: "/",
	})
	extensions.AddCypher(r, cy)
	extensions.UseLogging(r, logger)
	if cfg.CORS.Enabled {
		extensions.UseCors(r, cfg.CORS.Origin)
	}
	extensions.UseCsrf(r, cy, csrfTokenValid, clk, logger)

	rend := extensions.AddRendering(r, views.Templates(), logger)
	views.Parse(rend, pages.Views)
	if logger.GetLevel() <= zerolog.DebugLevel {
		rend.ShowAvailableTemplates()
	}

	cache := qc.New(qc.Options{
		Clock:         clk,
		StaleAfter:    cfg.Cache.StaleAfter,
		KeepUnusedFor: cfg.Cache.KeepUnusedFor,
		FetchTimeout:  cfg.Cache.FetchTimeout,
		Debounce:      cfg.Cache.Debounce,
		Logger:        logging.ComponentLogger(logger, "querycache"),
	})
	defer cache.Close()
	api := bank.NewAPI(bank.NewClient(cfg.API.BaseURL, cfg.API.Timeout, logger), cache)

	manager, release, err := extensions.AddSession(ctx, r, cfg.Session, cy, clk, logger)
	if err != nil {
		return fmt.Errorf("cannot create session store: %w", err)
	}
	defer func() {
		if err := release(); err != nil {
			logger.Error().Err(err).Msg("cannot close session store")
		}
	}()
	go manager.RunJanitor(ctx, sessionSweep)

	r.Add(func() *bank.API { return api })
	r.Add(func() clock.Clock { return clk })
	if logger.GetLevel() <= zerolog.DebugLevel {
		r.ShowAvailableBuilders()
	}

	pages.Register(r, manager)
	r.Static("/static/*filepath", views.Static())
	return r.Run(ctx, cfg.Listen)
}
