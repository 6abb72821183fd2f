package rules

import (
	"github.com/nathoo/rulecore/engine/store"
	"github.com/nathoo/rulecore/types"
)

// Command is the immutable value object describing one requested action.
// It is created by a caller, consumed once by the engine, and discarded
// after execution.
type Command struct {
	Type    types.CommandType
	Actor   string
	Targets []string // order-preserving
	Params  map[string]any
}

// NewCommand builds a command. The params map is copied so the command
// stays immutable even if the caller reuses its map.
func NewCommand(t types.CommandType, actor string, targets []string, params map[string]any) Command {
	p := make(map[string]any, len(params))
	for k, v := range params {
		p[k] = v
	}
	return Command{
		Type:    t,
		Actor:   actor,
		Targets: append([]string(nil), targets...),
		Params:  p,
	}
}

// EntityIDs returns the actor followed by the targets, preserving order.
func (c Command) EntityIDs() []string {
	ids := make([]string, 0, len(c.Targets)+1)
	if c.Actor != "" {
		ids = append(ids, c.Actor)
	}
	return append(ids, c.Targets...)
}

// Param returns a named parameter.
func (c Command) Param(key string) (any, bool) {
	v, ok := c.Params[key]
	return v, ok
}

// ParamInt returns a named parameter as an int. Missing or non-numeric
// parameters return 0.
func (c Command) ParamInt(key string) int {
	switch v := c.Params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// ParamString returns a named parameter as a string, or "" if missing.
func (c Command) ParamString(key string) string {
	if v, ok := c.Params[key].(string); ok {
		return v
	}
	return ""
}

// CanExecute reports whether the command is currently executable against
// the store: every entity it involves must exist.
func (c Command) CanExecute(st *store.Store) bool {
	for _, id := range c.EntityIDs() {
		if !st.HasEntity(id) {
			return false
		}
	}
	return true
}
