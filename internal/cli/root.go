package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexanderramin/agendacycle/internal/app"
	"github.com/alexanderramin/agendacycle/internal/config"
	"github.com/spf13/cobra"
)

// Runtime is everything a command needs once config is resolved.
type Runtime struct {
	Config  config.Config
	Actions app.AgendaActions
	Handler http.Handler
	Logger  *slog.Logger
	Close   func() error
}

// Builder wires a Runtime for the resolved config.
type Builder func(ctx context.Context, cfg config.Config) (*Runtime, error)

// App holds the wiring hooks and flag state shared by all commands.
type App struct {
	Build Builder

	// IsInteractive reports whether stdin is a terminal.
	IsInteractive func() bool
	// Confirm asks a yes/no question. Defaults to a huh prompt.
	Confirm func(title string) (bool, error)

	configPath string
	overrides  config.Config
	rt         *Runtime
}

// NewRootCmd creates the top-level "agendacycle" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	if app.IsInteractive == nil {
		app.IsInteractive = func() bool { return false }
	}
	if app.Confirm == nil {
		app.Confirm = confirmPrompt
	}

	root := &cobra.Command{
		Use:           "agendacycle",
		Short:         "Approve, close, reopen and delete meeting agendas",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&app.configPath, "config", "", "YAML config file")
	flags.StringVar(&app.overrides.Database.Path, "db", "", "SQLite database path (overrides config)")
	flags.StringVar(&app.overrides.Graph.Partition, "graph", "", "Graph partition IRI (overrides config)")
	flags.StringVar(&app.overrides.Log.Level, "log-level", "", "debug, info, warn or error")

	root.AddCommand(newActionCmds(app)...)
	root.AddCommand(
		newDeleteAgendaCmd(app),
		newShowCmd(app),
		newServeCmd(app),
	)
	return root
}

func (a *App) runtime(ctx context.Context) (*Runtime, error) {
	if a.rt != nil {
		return a.rt, nil
	}
	if a.Build == nil {
		return nil, errors.New("no runtime builder configured")
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, err
	}
	cfg = config.Merge(cfg, a.overrides)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rt, err := a.Build(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.rt = rt
	return rt, nil
}

func (a *App) close() error {
	if a.rt == nil || a.rt.Close == nil {
		return nil
	}
	err := a.rt.Close()
	a.rt = nil
	return err
}
