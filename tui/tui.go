package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/rulecore/cli"
	"github.com/nathoo/rulecore/engine"
	"github.com/nathoo/rulecore/engine/store"
	"github.com/nathoo/rulecore/types"
)

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text    string
	kind    lineKind
	isInput bool // true for echoed user input
}

// Model is the Bubble Tea model for the rulecore simulator.
type Model struct {
	engine *engine.Engine
	store  *store.Store

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine // accumulated log lines (unstyled, for re-wrapping)

	width    int
	height   int
	ready    bool
	trace    bool
	quitting bool
	lastCmd  string
}

// outputMsg carries resolution output into the Update loop.
type outputMsg struct {
	input    string // echoed user input (empty for the banner)
	lines    []string
	isSystem bool
}

// New creates a TUI model wired to the given engine and store.
func New(eng *engine.Engine, st *store.Store) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	return Model{
		engine:  eng,
		store:   st,
		input:   ti,
		history: NewHistory(100),
	}
}

// Run starts the Bubble Tea program.
func Run(eng *engine.Engine, st *store.Store) error {
	m := New(eng, st)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init returns the initial command that produces the banner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.banner())
}

func (m Model) banner() tea.Cmd {
	return func() tea.Msg {
		return outputMsg{lines: []string{
			fmt.Sprintf("rulecore simulator (seed %d)", m.store.Roller().Seed()),
			"Type /help for commands.",
		}}
	}
}

// Update handles messages (key presses, window resize, resolution output).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 2 // 1 status bar + 1 input line
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}

		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
				m.history.ResetCursor()
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case outputMsg:
		m = m.appendOutput(msg)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}

	m.history.Push(input)
	m.history.ResetCursor()

	// Handle "again" / "g".
	lower := strings.ToLower(input)
	if lower == "again" || lower == "g" {
		if m.lastCmd == "" {
			m = m.appendOutput(outputMsg{
				input: input, lines: []string{"Nothing to repeat."}, isSystem: true,
			})
			return m, nil
		}
		input = m.lastCmd
	} else if !strings.HasPrefix(input, "/") {
		m.lastCmd = input
	}

	// Meta-commands.
	if strings.HasPrefix(input, "/") {
		output, quit := m.handleMeta(input)
		m = m.appendOutput(outputMsg{input: input, lines: output, isSystem: true})
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	m = m.appendOutput(outputMsg{input: input, lines: m.resolve(input)})
	return m, nil
}

// resolve parses and executes one simulator command, formatting the
// result the same way the plain CLI does.
func (m *Model) resolve(input string) []string {
	action, err := cli.Parse(input)
	if err != nil {
		return []string{"[" + err.Error() + "]"}
	}

	result, err := action.Execute(m.engine, m.store)
	if err != nil {
		return []string{fmt.Sprintf("[Error: %v]", err)}
	}

	return m.formatResult(result)
}

func (m *Model) formatResult(result types.CommandResult) []string {
	var lines []string
	if result.Message != "" {
		lines = append(lines, result.Message)
	}
	if !result.Success {
		if result.Critical {
			lines = append(lines, "(critical failure)")
		} else {
			lines = append(lines, "(failed)")
		}
	}
	for _, eff := range result.Effects {
		lines = append(lines, "  * "+eff)
	}
	if m.trace {
		lines = append(lines, m.formatTrace(result)...)
	}
	return lines
}

func (m *Model) formatTrace(result types.CommandResult) []string {
	lines := []string{
		fmt.Sprintf("[trace] %s %s in %s", result.ExecutionID, result.Command, result.Duration),
	}
	for _, r := range result.Results {
		status := "ok"
		if !r.Success {
			status = "FAIL"
			if r.Critical {
				status = "CRIT"
			}
		}
		lines = append(lines, fmt.Sprintf("[trace]   %-20s %-4s %s", r.Rule, status, r.Message))
	}
	if result.StoppedEarly {
		lines = append(lines, "[trace]   chain stopped early")
	}
	return lines
}

// appendOutput adds lines to the log and refreshes the viewport.
func (m Model) appendOutput(msg outputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{
			text: "> " + msg.input, isInput: true,
		})
	}

	for _, line := range msg.lines {
		rl := rawLine{text: line}
		if msg.isSystem {
			rl.kind = kindSystem
		} else {
			rl.kind = classifyLine(line)
		}
		m.rawLines = append(m.rawLines, rl)
	}

	// Blank line separator between actions.
	m.rawLines = append(m.rawLines, rawLine{})

	m.refreshViewport()

	return m
}

// refreshViewport re-wraps and re-styles all raw lines at the current
// width and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		wrapped := wordWrap(rl.text, width)

		if rl.isInput {
			styled = append(styled, stylePlayerInput.Render(wrapped))
		} else {
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// wordWrap wraps text to fit within the given width, breaking at word
// boundaries.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	var result strings.Builder
	words := strings.Fields(text)
	lineLen := 0

	for i, word := range words {
		wLen := len(word)

		if i == 0 {
			result.WriteString(word)
			lineLen = wLen
			continue
		}

		if lineLen+1+wLen > width {
			result.WriteString("\n")
			result.WriteString(word)
			lineLen = wLen
		} else {
			result.WriteString(" ")
			result.WriteString(word)
			lineLen += 1 + wLen
		}
	}

	return result.String()
}

// View renders the full TUI layout: viewport + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// handleMeta dispatches meta-commands. Returns output lines and quit flag.
func (m *Model) handleMeta(input string) ([]string, bool) {
	parts := strings.Fields(input)
	cmd := parts[0]

	switch cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true

	case "/help":
		return m.cmdHelp(), false

	case "/metrics":
		return m.cmdMetrics(), false

	case "/reset":
		m.engine.ResetMetrics()
		return []string{"Metrics reset."}, false

	case "/validate":
		if err := m.engine.Validate(); err != nil {
			return []string{fmt.Sprintf("Validation failed: %v", err)}, false
		}
		return []string{"All chains valid."}, false

	case "/roster":
		return m.cmdRoster(), false

	case "/seed":
		return []string{fmt.Sprintf("Seed: %d, position: %d",
			m.store.Roller().Seed(), m.store.Roller().Position())}, false

	case "/trace":
		m.trace = !m.trace
		if m.trace {
			return []string{"Trace output enabled."}, false
		}
		return []string{"Trace output disabled."}, false

	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

func (m *Model) cmdHelp() []string {
	return []string{
		"System:",
		"  /metrics   — Show engine metrics",
		"  /reset     — Reset engine metrics",
		"  /validate  — Validate registered chains",
		"  /roster    — List entities and their stats",
		"  /seed      — Show dice seed and position",
		"  /trace     — Toggle per-rule trace output",
		"  /quit      — Exit",
		"",
		"Actions:",
		"  attack <actor> <target> [dice]",
		"  save <actor> <category> [dice]",
		"  turn <cleric> <undead>...",
		"  fall <actor> <feet>",
		"  morale <target>",
		"  xp <actor> <amount>",
		"  again (g) — repeat your last action",
		"",
		"Navigation: PgUp/PgDn to scroll, Up/Down for command history",
	}
}

func (m *Model) cmdMetrics() []string {
	metrics := m.engine.Metrics()
	lines := []string{
		fmt.Sprintf("Processed: %d", metrics.Processed),
		fmt.Sprintf("Succeeded: %d (%.0f%%)", metrics.Succeeded, metrics.SuccessRate()*100),
		fmt.Sprintf("Avg duration: %s", metrics.AvgDuration),
	}
	if len(metrics.ByType) > 0 {
		keys := make([]string, 0, len(metrics.ByType))
		for t := range metrics.ByType {
			keys = append(keys, string(t))
		}
		sort.Strings(keys)
		lines = append(lines, "By type:")
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("  %s: %d", k, metrics.ByType[types.CommandType(k)]))
		}
	}
	return lines
}

func (m *Model) cmdRoster() []string {
	ids := m.store.EntityIDs()
	sort.Strings(ids)
	var lines []string
	for _, id := range ids {
		e, _ := m.store.Entity(id)
		status := "alive"
		if !e.Alive() {
			status = "dead"
		}
		lines = append(lines, fmt.Sprintf("%s (%s, %s): hp %d/%d, AC %d, level %d",
			id, e.Kind, status,
			e.Stat("hp"), e.Stat("max_hp"),
			e.Stat("armor_class"), e.Stat("level")))
	}
	return lines
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
