package loader

import (
	"fmt"
	"strings"

	"github.com/nathoo/rulecore/engine/rules"
	"github.com/nathoo/rulecore/engine/store"
	"github.com/nathoo/rulecore/types"
)

// condDef is one compiled applicability condition.
type condDef struct {
	condType string // "temp_set", "temp_is", "stat_gt", "stat_lt", "prop_is", "exists", "has_item", "not"
	key      string
	ref      string // "actor", "target", or a literal entity ID
	stat     string
	prop     string
	item     string
	value    any
	inner    *condDef // for "not"
}

// luaRule is a declarative rule compiled from a Lua table. The Lua VM is
// gone by the time it runs; everything it needs lives in plain Go values.
type luaRule struct {
	name     string
	priority int
	requires []string

	conditions []condDef

	roll         string // dice expression, optional
	successAt    *int   // roll >= n succeeds
	successUnder *int   // roll <= n succeeds

	message     string
	failMessage string
	critical    bool
	stopChain   bool

	data    map[string]any
	effects []string
	damage  string // dice expression, optional
	setTemp map[string]any
}

func (r *luaRule) Name() string            { return r.name }
func (r *luaRule) Priority() int           { return r.priority }
func (r *luaRule) Prerequisites() []string { return r.requires }

func (r *luaRule) CanApply(st *store.Store, cmd rules.Command) bool {
	for _, c := range r.conditions {
		if !evalCondition(c, st, cmd) {
			return false
		}
	}
	return true
}

// Apply resolves the declarative rule: evaluate the roll against its
// threshold (a rule without a threshold always succeeds), then fill in
// the declared message, data, effects, damage, and temporary entries.
func (r *luaRule) Apply(st *store.Store, cmd rules.Command) (types.RuleResult, error) {
	success := true
	var roll int

	if r.roll != "" {
		v, err := st.Roller().RollExpr(r.roll)
		if err != nil {
			return types.RuleResult{}, fmt.Errorf("roll %q: %w", r.roll, err)
		}
		roll = v
		switch {
		case r.successAt != nil:
			success = roll >= *r.successAt
		case r.successUnder != nil:
			success = roll <= *r.successUnder
		}
	}

	res := types.RuleResult{
		Success:   success,
		StopChain: r.stopChain,
	}

	if r.roll != "" {
		res.Data = map[string]any{"roll": roll}
	}

	if !success {
		res.Message = r.failMessage
		res.Critical = r.critical
		return res, nil
	}

	res.Message = interpolateMessage(r.message, cmd, st)
	for k, v := range r.data {
		if res.Data == nil {
			res.Data = map[string]any{}
		}
		res.Data[k] = v
	}
	res.Effects = append(res.Effects, r.effects...)

	if r.damage != "" {
		dmg, err := st.Roller().RollExpr(r.damage)
		if err != nil {
			return types.RuleResult{}, fmt.Errorf("damage %q: %w", r.damage, err)
		}
		res.Damage = []int{dmg}
	}

	for k, v := range r.setTemp {
		st.SetTemp(k, v)
	}

	return res, nil
}

// evalCondition evaluates one condition against the store and command.
// Unknown condition types evaluate false; validation reports them at
// load time.
func evalCondition(c condDef, st *store.Store, cmd rules.Command) bool {
	switch c.condType {
	case "temp_set":
		_, ok := st.Temp(c.key)
		return ok
	case "temp_is":
		v, ok := st.Temp(c.key)
		return ok && v == c.value
	case "stat_gt":
		e, ok := st.Entity(resolveRef(c.ref, cmd))
		return ok && e.Stat(c.stat) > toInt(c.value)
	case "stat_lt":
		e, ok := st.Entity(resolveRef(c.ref, cmd))
		return ok && e.Stat(c.stat) < toInt(c.value)
	case "prop_is":
		e, ok := st.Entity(resolveRef(c.ref, cmd))
		return ok && e.Props != nil && e.Props[c.prop] == c.value
	case "exists":
		return st.HasEntity(resolveRef(c.ref, cmd))
	case "has_item":
		return st.HasItem(c.item)
	case "not":
		return !evalCondition(*c.inner, st, cmd)
	default:
		return false
	}
}

// resolveRef maps "actor" and "target" to the command's entity IDs;
// anything else is a literal ID.
func resolveRef(ref string, cmd rules.Command) string {
	switch ref {
	case "actor":
		return cmd.Actor
	case "target":
		if len(cmd.Targets) > 0 {
			return cmd.Targets[0]
		}
		return ""
	default:
		return ref
	}
}

// interpolateMessage replaces {actor} and {target} with entity names.
func interpolateMessage(msg string, cmd rules.Command, st *store.Store) string {
	if msg == "" {
		return ""
	}
	replace := func(msg, placeholder, id string) string {
		name := id
		if e, ok := st.Entity(id); ok {
			name = e.Name
		}
		return strings.ReplaceAll(msg, placeholder, name)
	}
	msg = replace(msg, "{actor}", cmd.Actor)
	if len(cmd.Targets) > 0 {
		msg = replace(msg, "{target}", cmd.Targets[0])
	}
	return msg
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
