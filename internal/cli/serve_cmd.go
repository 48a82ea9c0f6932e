package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/alexanderramin/agendacycle/internal/httpapi"
	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the agenda actions over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := app.runtime(cmd.Context())
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return httpapi.Serve(ctx, rt.Config.HTTP.Addr, rt.Handler, rt.Logger)
		},
	}

	cmd.Flags().StringVar(&app.overrides.HTTP.Addr, "addr", "", "Listen address (overrides config)")
	return cmd
}
