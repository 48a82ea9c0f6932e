package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/agendacycle/internal/cli/formatter"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

func confirmPrompt(title string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Delete").
		Negative("Cancel").
		Value(&ok).
		Run()
	return ok, err
}

func newDeleteAgendaCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete-agenda <meeting-id> <agenda-id>",
		Short: "Delete the most recent agenda of a meeting with its items",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			meetingID, agendaID := args[0], args[1]
			if !yes {
				if !app.IsInteractive() {
					return errors.New("refusing to delete without --yes when stdin is not a terminal")
				}
				ok, err := app.Confirm(fmt.Sprintf("Delete agenda %s and all its items?", formatter.TruncID(agendaID)))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("aborted"))
					return nil
				}
			}

			rt, err := app.runtime(cmd.Context())
			if err != nil {
				return err
			}
			if err := rt.Actions.DeleteAgenda(cmd.Context(), meetingID, agendaID); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatResult("deleted", nil))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
