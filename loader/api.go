package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// rawChain holds a chain declaration before compilation.
type rawChain struct {
	commandType string
	table       *lua.LTable
}

// rawRule holds a rule declaration before compilation.
type rawRule struct {
	chain string
	name  string
	table *lua.LTable
	order int
}

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerConditionHelpers(L)
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Chain "command_type" { stop_on_failure = true, ... } — curried:
	// Chain("attack") returns a function that takes the config table.
	L.SetGlobal("Chain", L.NewFunction(func(L *lua.LState) int {
		commandType := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.chains = append(coll.chains, rawChain{commandType: commandType, table: tbl})
			return 0
		}))
		return 1
	}))

	// Rule("chain", "name") { priority = 10, ... } — curried.
	L.SetGlobal("Rule", L.NewFunction(func(L *lua.LState) int {
		chain := L.CheckString(1)
		name := L.CheckString(2)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.rules = append(coll.rules, rawRule{
				chain: chain,
				name:  name,
				table: tbl,
				order: coll.nextSourceOrder(),
			})
			return 0
		}))
		return 1
	}))
}

// condition builds the standard {type = ..., ...} condition table.
func condition(L *lua.LState, condType string, fields map[string]lua.LValue) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString("type", lua.LString(condType))
	for k, v := range fields {
		tbl.RawSetString(k, v)
	}
	return tbl
}

func registerConditionHelpers(L *lua.LState) {
	// TempSet("key") — a temporary entry exists.
	L.SetGlobal("TempSet", L.NewFunction(func(L *lua.LState) int {
		key := L.CheckString(1)
		L.Push(condition(L, "temp_set", map[string]lua.LValue{
			"key": lua.LString(key),
		}))
		return 1
	}))

	// TempIs("key", value)
	L.SetGlobal("TempIs", L.NewFunction(func(L *lua.LState) int {
		key := L.CheckString(1)
		value := L.Get(2)
		L.Push(condition(L, "temp_is", map[string]lua.LValue{
			"key":   lua.LString(key),
			"value": value,
		}))
		return 1
	}))

	// StatGt("actor"|"target"|entity-id, "stat", value)
	L.SetGlobal("StatGt", L.NewFunction(func(L *lua.LState) int {
		ref := L.CheckString(1)
		stat := L.CheckString(2)
		value := L.CheckNumber(3)
		L.Push(condition(L, "stat_gt", map[string]lua.LValue{
			"ref":   lua.LString(ref),
			"stat":  lua.LString(stat),
			"value": value,
		}))
		return 1
	}))

	// StatLt("actor"|"target"|entity-id, "stat", value)
	L.SetGlobal("StatLt", L.NewFunction(func(L *lua.LState) int {
		ref := L.CheckString(1)
		stat := L.CheckString(2)
		value := L.CheckNumber(3)
		L.Push(condition(L, "stat_lt", map[string]lua.LValue{
			"ref":   lua.LString(ref),
			"stat":  lua.LString(stat),
			"value": value,
		}))
		return 1
	}))

	// PropIs("actor"|"target"|entity-id, "prop", value)
	L.SetGlobal("PropIs", L.NewFunction(func(L *lua.LState) int {
		ref := L.CheckString(1)
		prop := L.CheckString(2)
		value := L.Get(3)
		L.Push(condition(L, "prop_is", map[string]lua.LValue{
			"ref":   lua.LString(ref),
			"prop":  lua.LString(prop),
			"value": value,
		}))
		return 1
	}))

	// Exists("actor"|"target"|entity-id)
	L.SetGlobal("Exists", L.NewFunction(func(L *lua.LState) int {
		ref := L.CheckString(1)
		L.Push(condition(L, "exists", map[string]lua.LValue{
			"ref": lua.LString(ref),
		}))
		return 1
	}))

	// HasItem("item-id")
	L.SetGlobal("HasItem", L.NewFunction(func(L *lua.LState) int {
		item := L.CheckString(1)
		L.Push(condition(L, "has_item", map[string]lua.LValue{
			"item": lua.LString(item),
		}))
		return 1
	}))

	// Not(condition)
	L.SetGlobal("Not", L.NewFunction(func(L *lua.LState) int {
		inner := L.CheckTable(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("not"))
		tbl.RawSetString("inner", inner)
		L.Push(tbl)
		return 1
	}))
}
