package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/agendacycle/internal/app"
	"github.com/alexanderramin/agendacycle/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		Padding(1, 2)

	if title != "" {
		return boxStyle.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// FormatResult renders the outcome of a lifecycle action.
func FormatResult(verb string, res *app.AgendaResult) string {
	if res == nil || res.AgendaID == "" {
		return StyleGreen.Render("✔ ") + verb + "\n"
	}
	return fmt.Sprintf("%s%s agenda %s %s %s\n",
		StyleGreen.Render("✔ "),
		verb,
		Bold(res.Serial),
		Dim("("+res.AgendaID+")"),
		StatusPill(res.Status),
	)
}

// FormatOverview renders every agenda generation of a meeting, oldest
// first, with its items in numbering order.
func FormatOverview(v *app.MeetingView) string {
	var b strings.Builder

	final := Dim("open")
	if v.Final {
		final = StyleBlue.Render("final")
	}
	summary := fmt.Sprintf("%s  %s\n%s %s\n%s %d",
		Bold(v.Date.Format("Mon 2 Jan 2006 15:04")), final,
		Dim("id"), v.ID,
		Dim("agendas"), len(v.Agendas),
	)
	b.WriteString(RenderBox("Meeting", summary))
	b.WriteString("\n")

	for _, a := range v.Agendas {
		b.WriteString("\n")
		b.WriteString(Header("Agenda " + a.Serial))
		b.WriteString("\n")
		fmt.Fprintf(&b, "%s  %s  %s\n", StatusPill(a.Status), Dim(TruncID(a.ID)), Dim(a.Modified.Format("2006-01-02 15:04")))
		if len(a.Items) == 0 {
			b.WriteString(Dim("  no items") + "\n")
			continue
		}
		b.WriteString(itemTable(a.Items))
		b.WriteString("\n")
	}
	return b.String()
}

func itemTable(items []*app.ItemView) string {
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("#", "KIND", "APPROVAL", "ORIGIN", "ID").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return StyleHeader.PaddingRight(2)
			}
			return lipgloss.NewStyle().PaddingRight(2)
		})
	for _, it := range items {
		number := Dim("–")
		if it.Number != nil {
			number = strconv.Itoa(*it.Number)
		}
		kind := "note"
		if it.Category == domain.CategoryAnnouncement {
			kind = StyleBlue.Render("announcement")
		}
		origin := Dim("recurring")
		if it.New {
			origin = StyleYellow.Render("new")
		}
		t.Row(number, kind, ApprovalIndicator(it.Approval), origin, Dim(TruncID(it.ID)))
	}
	return t.Render()
}
