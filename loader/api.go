package loader

import (
	"strconv"

	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers the world constructors as globals:
//
//	Region "Fort" { {0,0}, {10,0}, {10,10}, {0,10} }
//	Path "King's Road" { {0,0}, {50,0}, aliases = {"Road"} }
//	Landmark "Old Tower" { 5, 5 }
//	Entry "Harbor" { boundary = {...}, location = {3,4}, content = "..." }
//
// Region, Path and Landmark read their array part as the geometry of
// their kind. Every constructor also accepts the named fields.
func registerAPI(L *lua.LState, coll *collector) {
	L.SetGlobal("Region", constructor(L, coll, "boundary"))
	L.SetGlobal("Path", constructor(L, coll, "path"))
	L.SetGlobal("Landmark", constructor(L, coll, "location"))
	L.SetGlobal("Entry", constructor(L, coll, ""))
}

// constructor builds a curried Name "id" { ... } function.
func constructor(L *lua.LState, coll *collector, shorthand string) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.add(name, shorthand, tbl)
			return 0
		}))
		return 1
	})
}

// add records a declared entry. uids follow declaration order.
func (c *collector) add(name, shorthand string, tbl *lua.LTable) {
	raw := rawEntry{
		uid:      strconv.Itoa(len(c.entries)),
		keys:     []string{name},
		content:  getString(tbl, "content"),
		boundary: getValue(tbl, "boundary"),
		path:     getValue(tbl, "path"),
		location: getValue(tbl, "location"),
	}

	if aliases := getTable(tbl, "aliases"); aliases != nil {
		for i := 1; i <= aliases.MaxN(); i++ {
			if s, ok := aliases.RawGetInt(i).(lua.LString); ok {
				raw.keys = append(raw.keys, string(s))
			}
		}
	}

	if shorthand != "" && tbl.MaxN() > 0 {
		positional := toGoValue(tbl)
		switch shorthand {
		case "boundary":
			if raw.boundary == nil {
				raw.boundary = positional
			}
		case "path":
			if raw.path == nil {
				raw.path = positional
			}
		case "location":
			if raw.location == nil {
				raw.location = positional
			}
		}
	}

	c.entries = append(c.entries, raw)
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	if s, ok := tbl.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	if t, ok := tbl.RawGetString(key).(*lua.LTable); ok {
		return t
	}
	return nil
}

// getValue returns a field converted to Go, or nil if missing.
func getValue(tbl *lua.LTable, key string) any {
	v := tbl.RawGetString(key)
	if v == lua.LNil {
		return nil
	}
	return toGoValue(v)
}
