package cli

import (
	"encoding/json"
	"fmt"

	"github.com/alexanderramin/agendacycle/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newShowCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <meeting-id>",
		Short: "List a meeting's agendas and their items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := app.runtime(cmd.Context())
			if err != nil {
				return err
			}
			view, err := rt.Actions.Overview(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatOverview(view))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}
