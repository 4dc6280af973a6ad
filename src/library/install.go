package library

import (
	"fmt"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// Entry describes a library offered to a Lua engine.
type Entry struct {
	Library *CoreLibrary
	// DeferLoad makes the library available through require only.
	DeferLoad bool
}

// Install registers every entry in L. Deferred entries are preloaded under
// their name; the rest are built now and assigned to the dotted global path.
func Install(L *lua.LState, entries map[string]Entry) error {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		e := entries[name]
		if e.Library == nil {
			return fmt.Errorf("library %q has no implementation", name)
		}
		if e.DeferLoad {
			L.PreloadModule(name, e.Library.Loader)
			continue
		}
		if err := setPath(L, name, e.Library.module(L)); err != nil {
			return err
		}
	}
	return nil
}

func setPath(L *lua.LState, path string, mod *lua.LTable) error {
	parts := strings.Split(path, ".")
	if len(parts) == 1 {
		L.SetGlobal(path, mod)
		return nil
	}
	parent, ok := L.GetGlobal(parts[0]).(*lua.LTable)
	if !ok {
		if L.GetGlobal(parts[0]) != lua.LNil {
			return fmt.Errorf("cannot install %q: %s is not a table", path, parts[0])
		}
		parent = L.NewTable()
		L.SetGlobal(parts[0], parent)
	}
	for i, part := range parts[1 : len(parts)-1] {
		next := parent.RawGetString(part)
		switch t := next.(type) {
		case *lua.LTable:
			parent = t
		case *lua.LNilType:
			child := L.NewTable()
			parent.RawSetString(part, child)
			parent = child
		default:
			return fmt.Errorf("cannot install %q: %s is not a table", path, strings.Join(parts[:i+2], "."))
		}
	}
	parent.RawSetString(parts[len(parts)-1], mod)
	return nil
}
