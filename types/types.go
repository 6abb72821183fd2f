// Package types defines the shared data structures for the rulecore engine.
// This package contains only type definitions and trivial accessors, no
// resolution logic.
package types

import "time"

// CommandType tags a command with the chain that resolves it. It is a
// distinct type so registrations and dispatches cannot be confused with
// arbitrary strings.
type CommandType string

// Entity is a persistent game actor: a character, monster, or NPC.
type Entity struct {
	ID    string
	Name  string
	Kind  string         // "character", "monster", "npc"
	Stats map[string]int // hp, max_hp, level, armor_class, morale, xp, ...
	Props map[string]any
}

// Stat returns a named stat. Unset stats return 0.
func (e *Entity) Stat(name string) int {
	if e == nil || e.Stats == nil {
		return 0
	}
	return e.Stats[name]
}

// Alive reports whether the entity has hit points remaining.
func (e *Entity) Alive() bool {
	return e.Stat("hp") > 0
}

// Item is an inventory-style object (weapon, potion, treasure).
type Item struct {
	ID    string
	Name  string
	Kind  string // "weapon", "armor", "potion", "treasure"
	Props map[string]any
}

// RuleResult is the outcome of one rule application. A single Success
// discriminant is used everywhere; there is no separate tagged kind.
type RuleResult struct {
	Rule    string // set by the chain before the result is stored
	Success bool
	Message string

	Data    map[string]any
	Effects []string
	Damage  []int

	// Critical marks a failure severe enough to abort a batch.
	Critical bool
	// StopChain forces early chain termination regardless of success.
	StopChain bool
}

// ChainResult aggregates the rule results of one chain execution.
type ChainResult struct {
	Success  bool // AND of all executed rules; vacuously true
	Critical bool // any failed rule flagged critical
	Message  string

	Data    map[string]any
	Effects []string
	Damage  []int

	// Results holds every individual result in execution order, including
	// synthetic "prerequisites not met" failures.
	Results []RuleResult

	// StoppedEarly is set when a rule requested StopChain or a failure
	// tripped the stop-on-failure policy.
	StoppedEarly bool
}

// CommandResult is the engine's reshaping of a chain result for the
// command's caller.
type CommandResult struct {
	ExecutionID string
	Command     CommandType
	Duration    time.Duration
	ChainResult
}

// Metrics is a snapshot of the engine's running counters.
type Metrics struct {
	Processed   int
	Succeeded   int
	AvgDuration time.Duration
	ByType      map[CommandType]int
}

// SuccessRate returns the fraction of processed commands that succeeded,
// or 0 when nothing has been processed.
func (m Metrics) SuccessRate() float64 {
	if m.Processed == 0 {
		return 0
	}
	return float64(m.Succeeded) / float64(m.Processed)
}
