// Package cli provides terminal I/O, output formatting, and meta-command
// dispatch for the rulecore simulator.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/nathoo/rulecore/engine"
	"github.com/nathoo/rulecore/engine/store"
	"github.com/nathoo/rulecore/rulebook"
	"github.com/nathoo/rulecore/types"
)

// CLI handles terminal interaction with the user.
type CLI struct {
	Engine    *engine.Engine
	Store     *store.Store
	In        io.Reader
	Out       io.Writer
	Trace     bool
	EchoInput bool   // echo each input line after the prompt (for script playback)
	lastCmd   string // for "again"/"g" repeat
}

// New creates a CLI wired to the given engine and store.
func New(eng *engine.Engine, st *store.Store) *CLI {
	return &CLI{
		Engine: eng,
		Store:  st,
		In:     os.Stdin,
		Out:    os.Stdout,
	}
}

// Run starts the simulator loop: prompt → input → dispatch → output.
func (c *CLI) Run() {
	c.printLine(fmt.Sprintf("rulecore simulator (seed %d). Type /help for commands.", c.Store.Roller().Seed()))
	c.printLine("")

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		// Meta-commands start with '/'.
		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return // /quit
			}
			continue
		}

		// "again" / "g" repeats the last command.
		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printLine("Nothing to repeat.")
				continue
			}
			input = c.lastCmd
		} else {
			c.lastCmd = input
		}

		c.dispatch(input)
	}
}

// dispatch parses and executes one simulator command.
func (c *CLI) dispatch(input string) {
	action, err := Parse(input)
	if err != nil {
		c.printSystem(err.Error())
		return
	}

	result, err := action.Execute(c.Engine, c.Store)
	if err != nil {
		c.printSystem(fmt.Sprintf("Error: %v", err))
		return
	}

	c.printResult(result)
	if c.Trace {
		c.printTrace(result)
	}
}

// Parse turns a simulator line into an action.
//
//	attack <actor> <target> [damage-dice]
//	save <actor> <category> [damage-dice]
//	turn <cleric> <undead> [undead...]
//	fall <actor> <feet>
//	morale <target>
//	xp <actor> <amount>
func Parse(input string) (rulebook.Action, error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	verb := strings.ToLower(fields[0])
	args := fields[1:]

	switch verb {
	case "attack":
		if len(args) < 2 {
			return nil, fmt.Errorf("usage: attack <actor> <target> [damage-dice]")
		}
		a := rulebook.Attack{Actor: args[0], Target: args[1]}
		if len(args) > 2 {
			a.Damage = args[2]
		}
		return a, nil

	case "save":
		if len(args) < 2 {
			return nil, fmt.Errorf("usage: save <actor> <category> [damage-dice]")
		}
		s := rulebook.SavingThrow{Actor: args[0], Category: args[1]}
		if len(args) > 2 {
			s.Damage = args[2]
		}
		return s, nil

	case "turn":
		if len(args) < 2 {
			return nil, fmt.Errorf("usage: turn <cleric> <undead> [undead...]")
		}
		return rulebook.TurnUndead{Actor: args[0], Targets: args[1:]}, nil

	case "fall":
		if len(args) < 2 {
			return nil, fmt.Errorf("usage: fall <actor> <feet>")
		}
		feet, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("fall: %q is not a number of feet", args[1])
		}
		return rulebook.FallingDamage{Actor: args[0], Feet: feet}, nil

	case "morale":
		if len(args) < 1 {
			return nil, fmt.Errorf("usage: morale <target>")
		}
		return rulebook.Morale{Target: args[0]}, nil

	case "xp":
		if len(args) < 2 {
			return nil, fmt.Errorf("usage: xp <actor> <amount>")
		}
		amount, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("xp: %q is not an amount", args[1])
		}
		return rulebook.AwardExperience{Actor: args[0], Amount: amount}, nil

	default:
		return nil, fmt.Errorf("unknown command %q, type /help for commands", verb)
	}
}

// handleMeta dispatches meta-commands. Returns true if the loop should exit.
func (c *CLI) handleMeta(input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/help":
		c.cmdHelp()

	case "/metrics":
		c.cmdMetrics()

	case "/reset":
		c.Engine.ResetMetrics()
		c.printSystem("Metrics reset.")

	case "/validate":
		if err := c.Engine.Validate(); err != nil {
			c.printSystem(fmt.Sprintf("Validation failed: %v", err))
		} else {
			c.printSystem("All chains valid.")
		}

	case "/roster":
		c.cmdRoster()

	case "/seed":
		c.printSystem(fmt.Sprintf("Seed: %d, position: %d",
			c.Store.Roller().Seed(), c.Store.Roller().Position()))

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdHelp() {
	help := []string{
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
		"  attack <actor> <target> [dice]  — Resolve an attack (default 1d6 damage)",
		"  save <actor> <category> [dice]  — Saving throw (death, wands, petrify, breath, spells)",
		"  turn <cleric> <undead>...       — Attempt to turn undead",
		"  fall <actor> <feet>             — Falling damage",
		"  morale <target>                 — Morale check for a monster",
		"  xp <actor> <amount>             — Award experience",
		"  again (g)                       — Repeat your last action",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) cmdMetrics() {
	m := c.Engine.Metrics()
	c.printLine(fmt.Sprintf("Processed: %d", m.Processed))
	c.printLine(fmt.Sprintf("Succeeded: %d (%.0f%%)", m.Succeeded, m.SuccessRate()*100))
	c.printLine(fmt.Sprintf("Avg duration: %s", m.AvgDuration))
	if len(m.ByType) > 0 {
		keys := make([]string, 0, len(m.ByType))
		for t := range m.ByType {
			keys = append(keys, string(t))
		}
		sort.Strings(keys)
		c.printLine("By type:")
		for _, k := range keys {
			c.printLine(fmt.Sprintf("  %s: %d", k, m.ByType[types.CommandType(k)]))
		}
	}
}

func (c *CLI) cmdRoster() {
	ids := c.Store.EntityIDs()
	sort.Strings(ids)
	for _, id := range ids {
		e, _ := c.Store.Entity(id)
		status := "alive"
		if !e.Alive() {
			status = "dead"
		}
		c.printLine(fmt.Sprintf("%s (%s, %s): hp %d/%d, AC %d, level %d",
			id, e.Kind, status,
			e.Stat("hp"), e.Stat("max_hp"),
			e.Stat("armor_class"), e.Stat("level")))
	}
}

func (c *CLI) printResult(result types.CommandResult) {
	if result.Message != "" {
		c.printLine(result.Message)
	}
	if !result.Success {
		if result.Critical {
			c.printLine("(critical failure)")
		} else {
			c.printLine("(failed)")
		}
	}
	for _, eff := range result.Effects {
		c.printLine("  * " + eff)
	}
}

func (c *CLI) printTrace(result types.CommandResult) {
	c.printSystem(fmt.Sprintf("[trace] %s %s in %s", result.ExecutionID, result.Command, result.Duration))
	for _, r := range result.Results {
		status := "ok"
		if !r.Success {
			status = "FAIL"
			if r.Critical {
				status = "CRIT"
			}
		}
		c.printSystem(fmt.Sprintf("[trace]   %-20s %-4s %s", r.Rule, status, r.Message))
	}
	if result.StoppedEarly {
		c.printSystem("[trace]   chain stopped early")
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
