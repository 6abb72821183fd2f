// Package engine provides the rule engine: the registry mapping command
// types to rule chains and the single entry point that dispatches
// commands, records metrics, and supports batch execution.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/nathoo/rulecore/engine/rules"
	"github.com/nathoo/rulecore/engine/store"
	"github.com/nathoo/rulecore/types"
)

// Configuration faults. These surface during bootstrap, never during
// normal play, and are distinct from domain failures (which are values).
var (
	// ErrNoChain is returned by Process when no chain is registered for
	// the command's type.
	ErrNoChain = errors.New("no rule chain registered")
	// ErrEmptyChain is returned when registering a chain with no rules.
	ErrEmptyChain = errors.New("chain has no rules")
	// ErrNoChains is reported by Validate when the registry is empty.
	ErrNoChains = errors.New("no rule chains registered")
)

// Engine owns the command-type → chain registry for the lifetime of the
// process and keeps running execution metrics.
type Engine struct {
	chains map[types.CommandType]*rules.Chain

	processed     int
	succeeded     int
	totalDuration time.Duration
	byType        map[types.CommandType]int
}

// New creates an engine with an empty registry.
func New() *Engine {
	return &Engine{
		chains: map[types.CommandType]*rules.Chain{},
		byType: map[types.CommandType]int{},
	}
}

// RegisterChain binds a chain to a command type. A chain must contain at
// least one rule before registration; re-registering a type replaces the
// previous chain.
func (e *Engine) RegisterChain(t types.CommandType, c *rules.Chain) error {
	if c == nil || c.Len() == 0 {
		return fmt.Errorf("register %q: %w", t, ErrEmptyChain)
	}
	e.chains[t] = c
	return nil
}

// RegisterChains is the bulk variant of RegisterChain. It stops at the
// first rejected chain.
func (e *Engine) RegisterChains(chains map[types.CommandType]*rules.Chain) error {
	for t, c := range chains {
		if err := e.RegisterChain(t, c); err != nil {
			return err
		}
	}
	return nil
}

// Chain returns the chain registered for a command type.
func (e *Engine) Chain(t types.CommandType) (*rules.Chain, bool) {
	c, ok := e.chains[t]
	return c, ok
}

// Process locates the chain for the command's type, executes it, records
// metrics, and reshapes the chain result into a command result. A missing
// chain is a configuration fault, not a domain outcome.
func (e *Engine) Process(cmd rules.Command, st *store.Store) (types.CommandResult, error) {
	chain, ok := e.chains[cmd.Type]
	if !ok {
		return types.CommandResult{}, fmt.Errorf("process %q: %w", cmd.Type, ErrNoChain)
	}

	start := time.Now()
	chainResult := chain.Execute(st, cmd)
	elapsed := time.Since(start)

	e.processed++
	e.totalDuration += elapsed
	e.byType[cmd.Type]++
	if chainResult.Success {
		e.succeeded++
	}

	return types.CommandResult{
		ExecutionID: ulid.Make().String(),
		Command:     cmd.Type,
		Duration:    elapsed,
		ChainResult: chainResult,
	}, nil
}

// ProcessBatch executes commands sequentially in order. A critical chain
// result stops the batch: results for later commands are never produced.
// The result that triggered the stop is included.
func (e *Engine) ProcessBatch(cmds []rules.Command, st *store.Store) ([]types.CommandResult, error) {
	results := make([]types.CommandResult, 0, len(cmds))
	for _, cmd := range cmds {
		res, err := e.Process(cmd, st)
		if err != nil {
			return results, err
		}
		results = append(results, res)
		if res.Critical {
			break
		}
	}
	return results, nil
}

// Metrics returns a snapshot of the running counters.
func (e *Engine) Metrics() types.Metrics {
	byType := make(map[types.CommandType]int, len(e.byType))
	for t, n := range e.byType {
		byType[t] = n
	}
	m := types.Metrics{
		Processed: e.processed,
		Succeeded: e.succeeded,
		ByType:    byType,
	}
	if e.processed > 0 {
		m.AvgDuration = e.totalDuration / time.Duration(e.processed)
	}
	return m
}

// ResetMetrics zeroes all counters. The registry is untouched.
func (e *Engine) ResetMetrics() {
	e.processed = 0
	e.succeeded = 0
	e.totalDuration = 0
	e.byType = map[types.CommandType]int{}
}

// Validate performs a structural self-check: the registry must not be
// empty and every registered chain must itself validate.
func (e *Engine) Validate() error {
	if len(e.chains) == 0 {
		return ErrNoChains
	}
	var problems []error
	for t, c := range e.chains {
		if err := c.Validate(); err != nil {
			problems = append(problems, fmt.Errorf("chain %q: %w", t, err))
		}
	}
	return errors.Join(problems...)
}
