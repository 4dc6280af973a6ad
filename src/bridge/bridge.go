// Package bridge converts decoded Toolhub values into Lua values and back.
package bridge

import (
	"fmt"
	"math"
	"strconv"

	lua "github.com/yuin/gopher-lua"

	"github.com/toolhub-scripting/go-toolhub/src/value"
)

// Rebase selects how 0-based lists are laid out in 1-based Lua tables.
type Rebase int

const (
	// RebaseShift stores list element i at key i+1. Nothing is dropped.
	RebaseShift Rebase = iota
	// RebaseDropFirst drops the first list element and keeps the remaining
	// elements at their source index, so [a, b, c] becomes {b, c}. It
	// exists for scripts written against deployments that behaved this way.
	RebaseDropFirst
)

func (r Rebase) String() string {
	switch r {
	case RebaseShift:
		return "shift"
	case RebaseDropFirst:
		return "drop-first"
	default:
		return fmt.Sprintf("Rebase(%d)", int(r))
	}
}

// ParseRebase accepts "shift" (or "") and "drop-first".
func ParseRebase(s string) (Rebase, error) {
	switch s {
	case "", "shift":
		return RebaseShift, nil
	case "drop-first":
		return RebaseDropFirst, nil
	}
	return RebaseShift, fmt.Errorf("unknown rebase mode %q", s)
}

// Converter turns value.Value trees into Lua values. The zero value uses
// RebaseShift.
type Converter struct {
	mode Rebase
}

func NewConverter(mode Rebase) *Converter {
	return &Converter{mode: mode}
}

func (c *Converter) Mode() Rebase {
	if c == nil {
		return RebaseShift
	}
	return c.mode
}

// ToLua converts v and wraps it as a single return value.
func (c *Converter) ToLua(L *lua.LState, v value.Value) []lua.LValue {
	return []lua.LValue{c.Convert(L, v)}
}

// Convert maps v onto a Lua value. Kinds without a Lua counterpart become nil.
func (c *Converter) Convert(L *lua.LState, v value.Value) lua.LValue {
	switch v.Kind() {
	case value.KindBool:
		return lua.LBool(v.Bool())
	case value.KindNumber:
		return lua.LNumber(v.Float())
	case value.KindString:
		return lua.LString(v.Text())
	case value.KindList:
		return c.listTable(L, v.Items())
	case value.KindMap:
		return c.mapTable(L, v.Map())
	default:
		return lua.LNil
	}
}

func (c *Converter) listTable(L *lua.LState, items []value.Value) *lua.LTable {
	start := 0
	if c.Mode() == RebaseDropFirst {
		start = 1
	}
	n := len(items) - start
	if n < 0 {
		n = 0
	}
	tbl := L.CreateTable(n, 0)
	for i := start; i < len(items); i++ {
		key := i + 1
		if start == 1 {
			key = i
		}
		// RawSetInt with LNil leaves a hole, like a nil in a Lua array literal.
		tbl.RawSetInt(key, c.Convert(L, items[i]))
	}
	return tbl
}

func (c *Converter) mapTable(L *lua.LState, m *value.Map) *lua.LTable {
	tbl := L.CreateTable(0, m.Len())
	m.Range(func(k string, v value.Value) bool {
		lv := c.Convert(L, v)
		if lv != lua.LNil {
			tbl.RawSetString(k, lv)
		}
		return true
	})
	return tbl
}

// FromLua is the inverse of Convert. Tables keyed exactly 1..n become lists,
// every other table becomes a map.
func FromLua(lv lua.LValue) value.Value {
	return fromLua(lv, make(map[*lua.LTable]bool))
}

func fromLua(lv lua.LValue, seen map[*lua.LTable]bool) value.Value {
	switch x := lv.(type) {
	case *lua.LNilType:
		return value.Null()
	case lua.LBool:
		return value.Bool(bool(x))
	case lua.LNumber:
		return value.Number(float64(x))
	case lua.LString:
		return value.String(string(x))
	case *lua.LTable:
		if seen[x] {
			return value.Opaque(x)
		}
		seen[x] = true
		defer delete(seen, x)
		return tableValue(x, seen)
	case *lua.LFunction:
		name := "function"
		if x.IsG && x.GFunction != nil {
			name = "builtin"
		}
		return value.Function(name)
	default:
		return value.Opaque(lv)
	}
}

func tableValue(tbl *lua.LTable, seen map[*lua.LTable]bool) value.Value {
	type pair struct{ k, v lua.LValue }
	var pairs []pair
	sequence := true
	for k, v := tbl.Next(lua.LNil); k != lua.LNil; k, v = tbl.Next(k) {
		pairs = append(pairs, pair{k, v})
		if n, ok := k.(lua.LNumber); !ok || float64(n) != math.Trunc(float64(n)) || n < 1 {
			sequence = false
		}
	}
	if len(pairs) == 0 {
		return value.Object(value.NewMap())
	}
	if sequence {
		items := make([]value.Value, len(pairs))
		for _, p := range pairs {
			idx := int(p.k.(lua.LNumber))
			if idx > len(pairs) {
				sequence = false
				break
			}
			items[idx-1] = fromLua(p.v, seen)
		}
		if sequence {
			return value.List(items...)
		}
	}
	m := value.NewMap()
	for _, p := range pairs {
		m.Set(keyString(p.k), fromLua(p.v, seen))
	}
	return value.Object(m)
}

func keyString(k lua.LValue) string {
	if n, ok := k.(lua.LNumber); ok {
		f := float64(n)
		if f == math.Trunc(f) && math.Abs(f) < 1e15 {
			return strconv.FormatInt(int64(f), 10)
		}
		return strconv.FormatFloat(f, 'g', 14, 64)
	}
	return k.String()
}
