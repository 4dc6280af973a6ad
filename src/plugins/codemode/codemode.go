// Package codemode runs Go snippets against the Toolhub client using the
// yaegi interpreter.
package codemode

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/toolhub-scripting/go-toolhub/src/json"
	"github.com/toolhub-scripting/go-toolhub/src/value"
)

const defaultTimeout = 5 * time.Second

// Client is the lookup surface snippets can reach.
type Client interface {
	GetToolByName(ctx context.Context, name string) (value.Value, error)
	GetListByID(ctx context.Context, id int64) (value.Value, error)
	SearchTools(ctx context.Context, query *string, page, pageSize int) (value.Value, error)
}

type Args struct {
	Code    string        `json:"code"`
	Timeout time.Duration `json:"timeout"` // defaults to 5s
}

type Result struct {
	Value  any    `json:"value"`
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
}

type CodeMode struct {
	client Client
}

func New(client Client) *CodeMode {
	return &CodeMode{client: client}
}

func newInterpreter() (*interp.Interpreter, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer

	i := interp.New(interp.Options{
		Stdout: &stdout,
		Stderr: &stderr,
	})

	return i, &stdout, &stderr
}

var (
	outDeclRe   = regexp.MustCompile(`(?m)^\s*var\s+__out\b.*$`)
	outWalrusRe = regexp.MustCompile(`__out\s*:=`)
)

func preprocessUserCode(code string) string {
	trim := strings.TrimSpace(code)

	if strings.HasPrefix(trim, "{") {
		code = "__out = " + jsonToGoMap(trim)
	}

	code = stripOutRedeclarations(code)
	code = convertOutWalrus(code)
	code = ensureOutAssigned(code)

	return code
}

func stripOutRedeclarations(code string) string {
	return outDeclRe.ReplaceAllString(code, "")
}

func convertOutWalrus(code string) string {
	return outWalrusRe.ReplaceAllString(code, "__out = ")
}

func ensureOutAssigned(code string) string {
	if !strings.Contains(code, "__out") {
		return "__out = " + strings.TrimSpace(code)
	}
	return code
}

func wrapIntoProgram(clean string) string {
	return fmt.Sprintf(`package main

import (
    "fmt"
    toolhub "toolhub/toolhub"
)

var _ = fmt.Sprint
var _ = toolhub.GetTool

func run() any {
    var __out any

    %s

    return __out
}
`, clean)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = defaultTimeout
	}
	return context.WithTimeout(ctx, d)
}

// Execute interprets args.Code and returns whatever it assigned to __out.
func (c *CodeMode) Execute(ctx context.Context, args Args) (Result, error) {
	ctx, cancel := withTimeout(ctx, args.Timeout)
	defer cancel()

	i, stdout, stderr := newInterpreter()

	if err := c.injectHelpers(ctx, i); err != nil {
		return Result{}, fmt.Errorf("failed to inject helpers: %w", err)
	}

	wrapped := wrapIntoProgram(preprocessUserCode(args.Code))

	if _, err := i.EvalWithContext(ctx, wrapped); err != nil {
		return Result{}, fmt.Errorf("code execution failed: %w\n%s", err, stderr.String())
	}

	v, err := i.EvalWithContext(ctx, "main.run()")
	if err != nil {
		return Result{}, fmt.Errorf("failed to get return value: %w\n%s", err, stderr.String())
	}

	var out any
	if v.IsValid() {
		out = v.Interface()
	}
	return Result{
		Value:  out,
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}, nil
}

func (c *CodeMode) injectHelpers(ctx context.Context, i *interp.Interpreter) error {
	if err := i.Use(stdlib.Symbols); err != nil {
		return fmt.Errorf("codemode: failed to load stdlib: %w", err)
	}

	lookup := func(op string, fn func() (value.Value, error)) (any, error) {
		if c.client == nil {
			return nil, fmt.Errorf("codemode %s: no Toolhub client configured", op)
		}
		v, err := fn()
		if err != nil {
			return nil, fmt.Errorf("codemode %s failed: %w", op, err)
		}
		return value.ToNative(v), nil
	}

	if err := i.Use(interp.Exports{
		"toolhub/toolhub": {
			"Errorf": reflect.ValueOf(func(format string, args ...any) error {
				return fmt.Errorf(format, args...)
			}),
			"GetTool": reflect.ValueOf(func(name string) (any, error) {
				return lookup("GetTool("+name+")", func() (value.Value, error) {
					return c.client.GetToolByName(ctx, name)
				})
			}),
			"GetList": reflect.ValueOf(func(id int) (any, error) {
				return lookup(fmt.Sprintf("GetList(%d)", id), func() (value.Value, error) {
					return c.client.GetListByID(ctx, int64(id))
				})
			}),
			// FindTools treats "" as no query and omits q. SearchTools sends
			// whatever query points at, so &"" sends an empty q=.
			"FindTools": reflect.ValueOf(func(query string, page, pageSize int) (any, error) {
				return lookup(fmt.Sprintf("FindTools(%q)", query), func() (value.Value, error) {
					var q *string
					if query != "" {
						q = &query
					}
					return c.client.SearchTools(ctx, q, page, pageSize)
				})
			}),
			"SearchTools": reflect.ValueOf(func(query *string, page, pageSize int) (any, error) {
				label := "SearchTools(nil)"
				if query != nil {
					label = fmt.Sprintf("SearchTools(%q)", *query)
				}
				return lookup(label, func() (value.Value, error) {
					return c.client.SearchTools(ctx, query, page, pageSize)
				})
			}),
		},
	}); err != nil {
		return fmt.Errorf("codemode: failed to load exports: %w", err)
	}

	return nil
}

// jsonToGoMap converts a JSON object string into a Go map literal.
func jsonToGoMap(s string) string {
	s = strings.TrimSpace(s)

	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return s
	}

	// %#v prints Go map syntax like: map[string]interface {}{"a":1}
	return fmt.Sprintf("%#v", m)
}
