package loader

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/rulecore/engine/rules"
	"github.com/nathoo/rulecore/types"
)

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	if s, ok := tbl.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	if b, ok := tbl.RawGetString(key).(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	if n, ok := tbl.RawGetString(key).(lua.LNumber); ok {
		return int(n)
	}
	return 0
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	if t, ok := tbl.RawGetString(key).(*lua.LTable); ok {
		return t
	}
	return nil
}

// hasField reports whether a field is present at all.
func hasField(tbl *lua.LTable, key string) bool {
	return tbl.RawGetString(key) != lua.LNil
}

// toGoValue converts a Lua value to a Go value recursively.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case *lua.LNilType:
		return nil
	case lua.LString:
		return string(val)
	case *lua.LTable:
		// Array if sequential integer keys starting at 1.
		maxN := val.MaxN()
		if maxN > 0 {
			arr := make([]any, 0, maxN)
			for i := 1; i <= maxN; i++ {
				arr = append(arr, toGoValue(val.RawGetInt(i)))
			}
			return arr
		}
		m := map[string]any{}
		val.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				m[string(ks)] = toGoValue(v)
			}
		})
		return m
	default:
		return nil
	}
}

// tableToAnyMap converts a Lua table to a map[string]any.
func tableToAnyMap(tbl *lua.LTable) map[string]any {
	if tbl == nil {
		return nil
	}
	m := map[string]any{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			m[string(ks)] = toGoValue(v)
		}
	})
	return m
}

// tableToStringSlice converts a Lua array table to a []string.
func tableToStringSlice(tbl *lua.LTable) []string {
	if tbl == nil {
		return nil
	}
	var out []string
	for i := 1; i <= tbl.MaxN(); i++ {
		if s, ok := tbl.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// compile converts all collected Lua data into chains keyed by command type.
func compile(coll *collector) (map[types.CommandType]*rules.Chain, error) {
	chains := map[types.CommandType]*rules.Chain{}
	for _, raw := range coll.chains {
		if _, dup := chains[types.CommandType(raw.commandType)]; dup {
			return nil, fmt.Errorf("chain %q declared twice", raw.commandType)
		}
		chains[types.CommandType(raw.commandType)] = rules.NewChain(rules.Config{
			StopOnFailure:  getBool(raw.table, "stop_on_failure", false),
			MergeResults:   getBool(raw.table, "merge_results", true),
			ClearTemporary: getBool(raw.table, "clear_temporary", false),
		})
	}

	// Rules attach in source order; the chain's stable sort preserves it
	// for equal priorities.
	for _, raw := range coll.rules {
		chain, ok := chains[types.CommandType(raw.chain)]
		if !ok {
			return nil, fmt.Errorf("rule %q references undeclared chain %q", raw.name, raw.chain)
		}
		rule, err := compileRule(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling rule %s: %w", raw.name, err)
		}
		chain.Add(rule)
	}

	return chains, nil
}

// compileRule converts one raw rule table into a declarative rule.
func compileRule(raw rawRule) (*luaRule, error) {
	r := &luaRule{
		name:     raw.name,
		priority: getInt(raw.table, "priority"),
		requires: tableToStringSlice(getTable(raw.table, "requires")),

		message:     getString(raw.table, "message"),
		failMessage: getString(raw.table, "fail_message"),
		critical:    getBool(raw.table, "critical", false),
		stopChain:   getBool(raw.table, "stop_chain", false),

		roll: getString(raw.table, "roll"),
		data: tableToAnyMap(getTable(raw.table, "data")),

		effects: tableToStringSlice(getTable(raw.table, "effects")),
		damage:  getString(raw.table, "damage"),
		setTemp: tableToAnyMap(getTable(raw.table, "set_temp")),
	}

	if hasField(raw.table, "success_at") {
		v := getInt(raw.table, "success_at")
		r.successAt = &v
	}
	if hasField(raw.table, "success_under") {
		v := getInt(raw.table, "success_under")
		r.successUnder = &v
	}
	if r.successAt != nil && r.successUnder != nil {
		return nil, fmt.Errorf("success_at and success_under are mutually exclusive")
	}
	if (r.successAt != nil || r.successUnder != nil) && r.roll == "" {
		return nil, fmt.Errorf("success threshold requires a roll expression")
	}

	if condTbl := getTable(raw.table, "conditions"); condTbl != nil {
		for i := 1; i <= condTbl.MaxN(); i++ {
			if ct, ok := condTbl.RawGetInt(i).(*lua.LTable); ok {
				cond, err := compileCondition(ct)
				if err != nil {
					return nil, err
				}
				r.conditions = append(r.conditions, cond)
			}
		}
	}

	return r, nil
}

func compileCondition(tbl *lua.LTable) (condDef, error) {
	c := condDef{
		condType: getString(tbl, "type"),
		key:      getString(tbl, "key"),
		ref:      getString(tbl, "ref"),
		stat:     getString(tbl, "stat"),
		prop:     getString(tbl, "prop"),
		item:     getString(tbl, "item"),
		value:    toGoValue(tbl.RawGetString("value")),
	}
	if c.condType == "" {
		return condDef{}, fmt.Errorf("condition is missing a type")
	}
	if c.condType == "not" {
		inner := getTable(tbl, "inner")
		if inner == nil {
			return condDef{}, fmt.Errorf("Not() is missing its inner condition")
		}
		ic, err := compileCondition(inner)
		if err != nil {
			return condDef{}, err
		}
		c.inner = &ic
	}
	return c, nil
}
