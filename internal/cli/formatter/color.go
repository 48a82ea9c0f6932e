package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/agendacycle/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// StatusPill returns a colored indicator for an agenda status.
func StatusPill(status domain.AgendaStatus) string {
	switch status {
	case domain.AgendaDesign:
		return StyleYellow.Render("✎ Design")
	case domain.AgendaApproved:
		return StyleGreen.Render("● Approved")
	case domain.AgendaClosed:
		return StyleDim.Render("✔ Closed")
	default:
		return StyleDim.Render(string(status))
	}
}

// ApprovalIndicator renders the formally-OK flag of an item.
func ApprovalIndicator(a domain.Approval) string {
	switch a {
	case domain.ApprovalOK:
		return StyleGreen.Render("OK")
	case domain.ApprovalNotOK:
		return StyleRed.Render("NOT OK")
	default:
		return StyleDim.Render("–")
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}

// TruncID shortens a uuid for display.
func TruncID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
