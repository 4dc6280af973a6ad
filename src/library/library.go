// Package library exposes the Toolhub client to Lua scripts as mw.ext.toolhub.
package library

import (
	"context"
	"math"

	lua "github.com/yuin/gopher-lua"

	"github.com/toolhub-scripting/go-toolhub/src/bridge"
	"github.com/toolhub-scripting/go-toolhub/src/request"
	"github.com/toolhub-scripting/go-toolhub/src/value"
)

// Name is the module name scripts require.
const Name = "mw.ext.toolhub"

// ToolhubAPI is the part of apiclient.Client the library calls.
type ToolhubAPI interface {
	GetToolByName(ctx context.Context, name string) (value.Value, error)
	GetListByID(ctx context.Context, id int64) (value.Value, error)
	SearchTools(ctx context.Context, query *string, page, pageSize int) (value.Value, error)
}

// CoreLibrary holds the Lua functions of mw.ext.toolhub.
type CoreLibrary struct {
	api    ToolhubAPI
	conv   *bridge.Converter
	logger func(format string, args ...interface{})
}

func New(api ToolhubAPI, conv *bridge.Converter, logger func(format string, args ...interface{})) *CoreLibrary {
	if conv == nil {
		conv = bridge.NewConverter(bridge.RebaseShift)
	}
	if logger == nil {
		logger = func(format string, args ...interface{}) {}
	}
	return &CoreLibrary{api: api, conv: conv, logger: logger}
}

// Funcs returns the functions registered in the module table.
func (lib *CoreLibrary) Funcs() map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"getTool":   lib.getTool,
		"getList":   lib.getList,
		"findTools": lib.findTools,
	}
}

// Loader is a lua.LGFunction suitable for PreloadModule.
func (lib *CoreLibrary) Loader(L *lua.LState) int {
	L.Push(lib.module(L))
	return 1
}

func (lib *CoreLibrary) module(L *lua.LState) *lua.LTable {
	mod := L.SetFuncs(L.NewTable(), lib.Funcs())
	mod.RawSetString("pageSize", lua.LNumber(request.DefaultPageSize))
	return mod
}

func (lib *CoreLibrary) getTool(L *lua.LState) int {
	name := L.CheckString(1)
	v, err := lib.api.GetToolByName(scriptContext(L), name)
	return lib.result(L, "getTool", v, err)
}

func (lib *CoreLibrary) getList(L *lua.LState) int {
	id := checkInteger(L, 1)
	v, err := lib.api.GetListByID(scriptContext(L), id)
	return lib.result(L, "getList", v, err)
}

// checkInteger is CheckNumber that also rejects fractional values instead
// of truncating them.
func checkInteger(L *lua.LState, n int) int64 {
	f := float64(L.CheckNumber(n))
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		L.ArgError(n, "integer expected")
	}
	return int64(f)
}

func (lib *CoreLibrary) findTools(L *lua.LState) int {
	var query *string
	switch lv := L.Get(1); lv.Type() {
	case lua.LTNil:
	case lua.LTString, lua.LTNumber:
		s := L.CheckString(1)
		query = &s
	default:
		L.TypeError(1, lua.LTString)
	}
	page := L.OptInt(2, 1)
	pageSize := L.OptInt(3, request.DefaultPageSize)
	if page < 1 {
		L.ArgError(2, "page must be at least 1")
	}
	if pageSize < 1 {
		L.ArgError(3, "page size must be at least 1")
	}
	v, err := lib.api.SearchTools(scriptContext(L), query, page, pageSize)
	return lib.result(L, "findTools", v, err)
}

// result pushes the converted value, or nil and a message on failure.
func (lib *CoreLibrary) result(L *lua.LState, fn string, v value.Value, err error) int {
	if err != nil {
		lib.logger("%s.%s: %v", Name, fn, err)
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	for _, lv := range lib.conv.ToLua(L, v) {
		L.Push(lv)
	}
	return 1
}

func scriptContext(L *lua.LState) context.Context {
	if ctx := L.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
