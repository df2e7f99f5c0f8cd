package loader

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// luaChunk is one script to execute.
type luaChunk struct {
	name string
	code string
}

// collector accumulates entries declared while scripts run.
type collector struct {
	entries []rawEntry
}

// loadLuaDir runs every .lua file in dir, world.lua first and the rest
// alphabetically.
func loadLuaDir(dir string) ([]rawEntry, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, &ImportError{Path: dir, Reason: "cannot read world directory", Err: err}
	}

	var names []string
	for _, f := range files {
		if !f.IsDir() && strings.HasSuffix(f.Name(), ".lua") {
			names = append(names, f.Name())
		}
	}
	if len(names) == 0 {
		return nil, &ImportError{Path: dir, Reason: "no .lua files found"}
	}

	chunks := make([]luaChunk, 0, len(names))
	for _, name := range sortedLuaFiles(names) {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &ImportError{Path: path, Reason: "cannot read script", Err: err}
		}
		chunks = append(chunks, luaChunk{name: path, code: string(data)})
	}
	return runLua(chunks)
}

// runLua executes the chunks in a sandboxed VM and returns the declared
// entries. The VM is discarded afterwards.
func runLua(chunks []luaChunk) ([]rawEntry, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	openSafeLibs(L)
	sandbox(L)

	coll := &collector{}
	registerAPI(L, coll)

	for _, c := range chunks {
		if err := L.DoString(c.code); err != nil {
			return nil, &ImportError{Path: c.name, Reason: "script failed", Err: err}
		}
	}
	return coll.entries, nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes globals that reach outside the script.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring", "require",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}
}

// sortedLuaFiles puts world.lua first, then the rest alphabetically.
func sortedLuaFiles(files []string) []string {
	var first string
	var others []string
	for _, f := range files {
		if f == "world.lua" {
			first = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if first != "" {
		return append([]string{first}, others...)
	}
	return others
}

// toGoValue converts a Lua value to the shapes the JSON decoder produces:
// arrays become []any, tables with string keys become map[string]any.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		return float64(val)
	case lua.LString:
		return string(val)
	case *lua.LTable:
		if n := val.MaxN(); n > 0 {
			arr := make([]any, 0, n)
			for i := 1; i <= n; i++ {
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
