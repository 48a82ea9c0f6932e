package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/agendacycle/internal/app"
	"github.com/alexanderramin/agendacycle/internal/cli/formatter"
	"github.com/spf13/cobra"
)

type agendaFunc = func(ctx context.Context, meetingID string) (*app.AgendaResult, error)

type actionCmd struct {
	use   string
	short string
	verb  string
	run   func(app.AgendaActions) agendaFunc
}

var actionCmds = []actionCmd{
	{"approve", "Approve the design agenda and open the next one", "approved; new design", func(a app.AgendaActions) agendaFunc {
		return a.ApproveAgenda
	}},
	{"approve-close", "Approve the design agenda and close the meeting", "approved and closed on", func(a app.AgendaActions) agendaFunc {
		return a.ApproveAgendaAndCloseMeeting
	}},
	{"approve-only", "Approve the design agenda without opening a new one", "approved", func(a app.AgendaActions) agendaFunc {
		return a.ApproveOnly
	}},
	{"close", "Close the meeting on its last approved agenda", "closed on", func(a app.AgendaActions) agendaFunc {
		return a.CloseMeeting
	}},
	{"reopen", "Reopen the last approved agenda as the design agenda", "reopened", func(a app.AgendaActions) agendaFunc {
		return a.ReopenPreviousAgenda
	}},
	{"design", "Start a new design agenda from the last approved one", "created design", func(a app.AgendaActions) agendaFunc {
		return a.CreateDesignAgenda
	}},
}

func newActionCmds(app *App) []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(actionCmds))
	for _, spec := range actionCmds {
		cmds = append(cmds, &cobra.Command{
			Use:   spec.use + " <meeting-id>",
			Short: spec.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				rt, err := app.runtime(cmd.Context())
				if err != nil {
					return err
				}
				res, err := spec.run(rt.Actions)(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatResult(spec.verb, res))
				return nil
			},
		})
	}
	return cmds
}
