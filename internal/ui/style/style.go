// Package style provides shared UI styling primitives including brand colors
// and icons for consistent visual presentation across the CLI.
package style

import "github.com/charmbracelet/lipgloss"

// Brand Colors.
var (
	Leaf   = lipgloss.Color("#3C873A")
	Slate  = lipgloss.Color("#667085")
	Ink    = lipgloss.Color("#0B0F19")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Dot     = "●"
	Circle  = "○"
	Arrow   = "→"
)

// Styles bound to a renderer, so that colors follow the profile of the output they are printed to.
type Styles struct {
	Active  lipgloss.Style
	Idle    lipgloss.Style
	Name    lipgloss.Style
	Version lipgloss.Style
	Muted   lipgloss.Style
}

// New returns the list styles for r.
func New(r *lipgloss.Renderer) Styles {
	return Styles{
		Active:  r.NewStyle().Foreground(Leaf).Bold(true),
		Idle:    r.NewStyle().Foreground(Slate),
		Name:    r.NewStyle().Foreground(Ink),
		Version: r.NewStyle().Foreground(Green),
		Muted:   r.NewStyle().Foreground(Slate).Italic(true),
	}
}
