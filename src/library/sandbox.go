package library

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/toolhub-scripting/go-toolhub/src/bridge"
	"github.com/toolhub-scripting/go-toolhub/src/value"
)

const (
	DefaultTimeout   = 5 * time.Second
	DefaultMaxOutput = 64 << 10
)

var (
	ErrTimeout     = errors.New("script exceeded its time limit")
	ErrOutputLimit = errors.New("script exceeded its output limit")
)

// Limits bounds a single script run. Zero fields take the defaults.
type Limits struct {
	Timeout   time.Duration
	MaxOutput int
}

// Result is what a script returned plus everything it printed.
type Result struct {
	Value  value.Value
	Output string
}

// Sandbox runs untrusted scripts with mw.ext.toolhub available through require.
type Sandbox struct {
	lib    *CoreLibrary
	limits Limits
}

func NewSandbox(lib *CoreLibrary, limits Limits) *Sandbox {
	if limits.Timeout <= 0 {
		limits.Timeout = DefaultTimeout
	}
	if limits.MaxOutput <= 0 {
		limits.MaxOutput = DefaultMaxOutput
	}
	return &Sandbox{lib: lib, limits: limits}
}

var safeLibs = []struct {
	name string
	open lua.LGFunction
}{
	{lua.LoadLibName, lua.OpenPackage},
	{lua.BaseLibName, lua.OpenBase},
	{lua.TabLibName, lua.OpenTable},
	{lua.StringLibName, lua.OpenString},
	{lua.MathLibName, lua.OpenMath},
}

// Run evaluates source in a fresh state and returns its first return value.
func (s *Sandbox) Run(ctx context.Context, source string) (Result, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	for _, l := range safeLibs {
		L.Push(L.NewFunction(l.open))
		L.Push(lua.LString(l.name))
		L.Call(1, 0)
	}
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}
	if pkg, ok := L.GetGlobal("package").(*lua.LTable); ok {
		pkg.RawSetString("path", lua.LString(""))
		pkg.RawSetString("cpath", lua.LString(""))
	}

	out := &boundedBuffer{max: s.limits.MaxOutput}
	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		parts := make([]string, 0, n)
		for i := 1; i <= n; i++ {
			parts = append(parts, L.ToStringMeta(L.Get(i)).String())
		}
		if !out.writeLine(strings.Join(parts, "\t")) {
			L.RaiseError("%s", ErrOutputLimit.Error())
		}
		return 0
	}))

	if err := Install(L, map[string]Entry{Name: {Library: s.lib, DeferLoad: true}}); err != nil {
		return Result{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.limits.Timeout)
	defer cancel()
	L.SetContext(ctx)

	fn, err := L.LoadString(source)
	if err != nil {
		return Result{Output: out.String()}, fmt.Errorf("compile: %w", err)
	}
	L.Push(fn)
	err = L.PCall(0, 1, nil)
	res := Result{Output: out.String()}
	switch {
	case out.overflow:
		return res, ErrOutputLimit
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return res, ErrTimeout
	case err != nil:
		return res, err
	}
	res.Value = bridge.FromLua(L.Get(-1))
	L.Pop(1)
	return res, nil
}

type boundedBuffer struct {
	sb       strings.Builder
	max      int
	overflow bool
}

func (b *boundedBuffer) writeLine(s string) bool {
	if b.overflow || b.sb.Len()+len(s)+1 > b.max {
		b.overflow = true
		return false
	}
	b.sb.WriteString(s)
	b.sb.WriteByte('\n')
	return true
}

func (b *boundedBuffer) String() string { return b.sb.String() }
