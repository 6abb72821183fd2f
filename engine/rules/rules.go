// Package rules implements the rule chain: an ordered, conditionally
// filtered set of rules bound to one command type, executed as a unit
// against a shared store.
package rules

import (
	"github.com/nathoo/rulecore/engine/store"
	"github.com/nathoo/rulecore/types"
)

// Rule is one independently authored unit of domain logic. Rules are
// registered into a chain once at setup time and must be stateless per
// execution: all per-run state lives in the store's temporary namespace
// or in the returned result.
type Rule interface {
	// Name uniquely identifies the rule within its chain.
	Name() string
	// Priority orders execution; lower runs earlier.
	Priority() int
	// Prerequisites names rules that must have already succeeded earlier
	// in the same run before this rule may execute.
	Prerequisites() []string
	// CanApply decides applicability at this point in the sequence. A
	// rule returning false contributes no result and is invisible to
	// merging, counters, and prerequisite satisfaction.
	CanApply(st *store.Store, cmd Command) bool
	// Apply executes the rule. A returned error (or a panic) is converted
	// by the chain into a failure result.
	Apply(st *store.Store, cmd Command) (types.RuleResult, error)
}

// Func is a Rule built from plain functions, for content that does not
// warrant a named type.
type Func struct {
	RuleName string
	Prio     int
	Requires []string
	When     func(st *store.Store, cmd Command) bool
	Run      func(st *store.Store, cmd Command) (types.RuleResult, error)
}

func (f Func) Name() string            { return f.RuleName }
func (f Func) Priority() int           { return f.Prio }
func (f Func) Prerequisites() []string { return f.Requires }

func (f Func) CanApply(st *store.Store, cmd Command) bool {
	if f.When == nil {
		return true
	}
	return f.When(st, cmd)
}

func (f Func) Apply(st *store.Store, cmd Command) (types.RuleResult, error) {
	return f.Run(st, cmd)
}

// Success builds a successful result with the given message.
func Success(message string) types.RuleResult {
	return types.RuleResult{Success: true, Message: message}
}

// Failure builds a failed, non-critical result with the given message.
func Failure(message string) types.RuleResult {
	return types.RuleResult{Success: false, Message: message}
}

// CriticalFailure builds a failed result flagged critical. Batch
// processing aborts after a chain result carrying this flag.
func CriticalFailure(message string) types.RuleResult {
	return types.RuleResult{Success: false, Message: message, Critical: true}
}
