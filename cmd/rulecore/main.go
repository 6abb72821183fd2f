// rulecore is a deterministic rule-resolution engine for classic tabletop
// procedures (attacks, saving throws, turning undead, falling damage,
// morale, experience).
// Usage: rulecore [--version] [--plain] [--seed <n>] [--script <file>] [--trace] [--rules <dir>]
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/caarlos0/env/v11"

	"github.com/nathoo/rulecore/cli"
	"github.com/nathoo/rulecore/engine"
	"github.com/nathoo/rulecore/engine/dice"
	"github.com/nathoo/rulecore/engine/store"
	"github.com/nathoo/rulecore/loader"
	"github.com/nathoo/rulecore/rulebook"
	"github.com/nathoo/rulecore/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// config holds environment-variable defaults; flags override them.
type config struct {
	Seed     int64  `env:"RULECORE_SEED"`
	Plain    bool   `env:"RULECORE_PLAIN"`
	Trace    bool   `env:"RULECORE_TRACE"`
	RulesDir string `env:"RULECORE_RULES"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading environment: %v\n", err)
		os.Exit(1)
	}

	seedSet := cfg.Seed != 0
	var scriptFile string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("rulecore %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			cfg.Plain = true
		case "--trace":
			cfg.Trace = true
		case "--seed":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--seed requires a value\n")
				os.Exit(1)
			}
			i++
			n, err := strconv.ParseInt(args[i], 10, 64)
			if err != nil {
				fmt.Fprintf(os.Stderr, "--seed: %q is not a number\n", args[i])
				os.Exit(1)
			}
			cfg.Seed = n
			seedSet = true
		case "--script":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--script requires a file path\n")
				os.Exit(1)
			}
			i++
			scriptFile = args[i]
		case "--rules":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--rules requires a directory\n")
				os.Exit(1)
			}
			i++
			cfg.RulesDir = args[i]
		default:
			fmt.Fprintf(os.Stderr, "Unknown flag %q\n", args[i])
			fmt.Fprintf(os.Stderr, "Usage: rulecore [--version] [--plain] [--seed <n>] [--script <file>] [--trace] [--rules <dir>]\n")
			os.Exit(1)
		}
	}

	if !seedSet {
		s, err := dice.NewSeed()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating seed: %v\n", err)
			os.Exit(1)
		}
		cfg.Seed = s
	}

	// Built-in chains, plus any Lua-defined chains layered on top.
	eng := engine.New()
	if err := eng.RegisterChains(rulebook.Chains()); err != nil {
		fmt.Fprintf(os.Stderr, "Error registering chains: %v\n", err)
		os.Exit(1)
	}
	if cfg.RulesDir != "" {
		chains, err := loader.Load(cfg.RulesDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading rules: %v\n", err)
			os.Exit(1)
		}
		if err := eng.RegisterChains(chains); err != nil {
			fmt.Fprintf(os.Stderr, "Error registering loaded chains: %v\n", err)
			os.Exit(1)
		}
	}
	if err := eng.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error validating chains: %v\n", err)
		os.Exit(1)
	}

	st := store.New(dice.NewRoller(cfg.Seed))
	rulebook.Populate(st)

	// Script mode: feed a file through the plain CLI and exit.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()

		c := cli.New(eng, st)
		c.In = f
		c.Trace = cfg.Trace
		c.EchoInput = true
		c.Run()
		return
	}

	if cfg.Plain {
		c := cli.New(eng, st)
		c.Trace = cfg.Trace
		c.Run()
		return
	}

	if err := tui.Run(eng, st); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
