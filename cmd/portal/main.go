package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"libportal/internal/apiclient"
	"libportal/internal/config"
	"libportal/internal/database"
	"libportal/internal/logging"
	"libportal/internal/modules/admin"
	"libportal/internal/modules/auth"
	"libportal/internal/modules/booking"
	"libportal/internal/modules/catalog"
	"libportal/internal/modules/scanner"
	"libportal/internal/pkg/apperr"
	"libportal/internal/pkg/metrics"
	"libportal/internal/repository"
)

const usage = `usage: portal [-metrics] <command> [flags]

session:
  login      -dni -password
  register   -dni -email -password
  logout
  whoami
  forgot     -dni -email
  verify     -dni -email -code
  reset      -dni -email -code -password

catalog:
  sites
  books      [-q] [-site] [-category]
  resources  [-kind SALA|EQUIPO] [-site]

reservations:
  reserve-book  -id -from YYYY-MM-DD -to YYYY-MM-DD [-dni -password]
  reserve-room  -id -date YYYY-MM-DD -slot HH:MM [-dni -password]

staff:
  validate   -code CODE | -scanner ws://...
`

type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	out      io.Writer

	client  *apiclient.Client
	auth    *auth.Service
	catalog *catalog.Service
	engine  *booking.Engine
	desk    *admin.Service
	station *admin.Station
}

func main() {
	global := flag.NewFlagSet("portal", flag.ExitOnError)
	showMetrics := global.Bool("metrics", false, "print client metrics to stderr on exit")
	global.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	_ = global.Parse(os.Args[1:])

	args := global.Args()
	if len(args) == 0 {
		global.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stderr, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.ContextWithLogger(ctx, logger)

	a, err := newApp(ctx, cfg, logger, os.Stdout)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	err = a.run(ctx, args[0], args[1:])
	if *showMetrics {
		a.dumpMetrics(os.Stderr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", apperr.Message(err, err.Error()))
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) (*app, error) {
	tokens, err := credentialStore(cfg)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	m := metrics.NewClientMetrics("libportal", registry)

	client := apiclient.New(cfg.APIBaseURL, cfg.HTTPTimeout,
		apiclient.WithMetrics(m),
		apiclient.WithLogger(logger),
	)

	nav := auth.NavigatorFunc(func(route auth.Route) {
		logger.Info("navigate", "route", route)
	})
	authSvc := auth.NewService(client, tokens, nav, auth.WithLogger(logger))
	client.Bind(authSvc)
	authSvc.Hydrate(ctx)

	cat := catalog.NewService(client, logger)
	engine := booking.NewEngine(authSvc, cat, booking.NewReservationAPI(client),
		booking.WithLocation(cfg.Location),
		booking.WithLogger(logger),
		booking.WithMetrics(m),
	)

	var open scanner.Opener
	if cfg.ScannerURL != "" {
		open = scanner.DialOpener(cfg.ScannerURL, logger)
	}
	desk := admin.NewService(client, authSvc, logger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		out:      out,
		client:   client,
		auth:     authSvc,
		catalog:  cat,
		engine:   engine,
		desk:     desk,
		station:  admin.NewStation(desk, open),
	}, nil
}

func credentialStore(cfg *config.Config) (auth.TokenStore, error) {
	if cfg.Ephemeral {
		return repository.NewMemoryCredentialStore(""), nil
	}
	db, err := database.Connect(cfg.StateDSN)
	if err != nil {
		return nil, err
	}
	return repository.NewCredentialRepository(db), nil
}

func (a *app) dumpMetrics(w io.Writer) {
	families, err := a.registry.Gather()
	if err != nil {
		a.logger.Warn("gather metrics", "error", err)
		return
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			a.logger.Warn("write metrics", "error", err)
			return
		}
	}
}
