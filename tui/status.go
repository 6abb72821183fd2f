package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// renderStatusBar produces a full-width inverted status line showing
// the engine metrics and the dice seed.
func (m Model) renderStatusBar() string {
	metrics := m.engine.Metrics()

	left := fmt.Sprintf(" rulecore | processed: %d | success: %.0f%%",
		metrics.Processed, metrics.SuccessRate()*100)
	if metrics.Processed > 0 {
		left += fmt.Sprintf(" | avg: %s", metrics.AvgDuration.Round(time.Microsecond))
	}

	right := fmt.Sprintf("seed %d @%d ",
		m.store.Roller().Seed(), m.store.Roller().Position())

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
