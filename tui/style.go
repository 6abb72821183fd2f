package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleMessage = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleSuccess = lipgloss.NewStyle().
			Foreground(lipgloss.Color("40"))

	styleFailure = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208"))

	styleCritical = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	styleEffect = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindMessage lineKind = iota
	kindSuccess
	kindFailure
	kindCritical
	kindEffect
	kindSystem
	kindTrace
)

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasPrefix(line, "  * "):
		return kindEffect
	case line == "(critical failure)":
		return kindCritical
	case line == "(failed)":
		return kindFailure
	default:
		return kindMessage
	}
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindSuccess:
		return styleSuccess.Render(line)
	case kindFailure:
		return styleFailure.Render(line)
	case kindCritical:
		return styleCritical.Render(line)
	case kindEffect:
		return styleEffect.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return styleMessage.Render(line)
	}
}
