package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alexanderramin/agendacycle/internal/app"
	"github.com/alexanderramin/agendacycle/internal/cli"
	"github.com/alexanderramin/agendacycle/internal/config"
	"github.com/alexanderramin/agendacycle/internal/db"
	"github.com/alexanderramin/agendacycle/internal/graph"
	"github.com/alexanderramin/agendacycle/internal/guard"
	"github.com/alexanderramin/agendacycle/internal/httpapi"
	"github.com/alexanderramin/agendacycle/internal/metrics"
	"github.com/alexanderramin/agendacycle/internal/repository"
	"github.com/alexanderramin/agendacycle/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	a := &cli.App{
		Build: build,
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		},
	}
	if err := cli.NewRootCmd(a).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func build(_ context.Context, cfg config.Config) (*cli.Runtime, error) {
	logger := cfg.Log.NewLogger(os.Stderr)

	database, err := db.OpenDB(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	var publisher graph.Publisher = graph.NoopPublisher{}
	conn, err := graph.ConnectNATS(cfg.NATS.URL, "agendacycle")
	if err != nil {
		database.Close()
		return nil, err
	}
	if conn != nil {
		publisher = graph.NewNATSPublisher(conn, cfg.NATS.Subject)
	}

	m := metrics.New()
	sqlite := graph.NewSQLiteStore(database, cfg.Graph.Partition,
		graph.WithPublisher(publisher),
		graph.WithMutationObserver(m),
		graph.WithLogger(logger),
	)
	store := graph.NewRetryingStore(sqlite, cfg.Retry())

	lc := service.NewLifecycle(store, cfg.Service(),
		service.WithLogger(logger),
		service.WithObservers(service.NewSlogUseCaseObserver(logger), m),
	)
	actions := app.NewActions(lc, repository.NewGraphLocator(store), guard.New(cfg.GuardConfig()),
		app.WithSettler(service.NewSettler(cfg.Lifecycle.SettleDelay)),
		app.WithRecorder(m),
		app.WithLogger(logger),
	)
	handler := httpapi.NewRouter(actions, httpapi.Options{
		Metrics:        m.Handler(),
		RequestTimeout: cfg.HTTP.RequestTimeout,
		Logger:         logger,
	})

	return &cli.Runtime{
		Config:  cfg,
		Actions: actions,
		Handler: handler,
		Logger:  logger,
		Close: func() error {
			if conn != nil {
				if err := conn.Drain(); err != nil {
					logger.Warn("draining NATS connection", "error", err)
				}
			}
			return database.Close()
		},
	}, nil
}
