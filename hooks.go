package toolhub

import "github.com/toolhub-scripting/go-toolhub/src/library"

// LuaEngine is the engine name the library is offered to.
const LuaEngine = "lua"

// OnExternalLibraries adds mw.ext.toolhub to extra when engine is Lua. The
// library is deferred so scripts load it with require.
func (t *Toolhub) OnExternalLibraries(engine string, extra map[string]library.Entry) {
	if engine != LuaEngine {
		return
	}
	extra[library.Name] = library.Entry{Library: t.lib, DeferLoad: true}
}
