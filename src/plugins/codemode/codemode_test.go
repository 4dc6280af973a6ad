package codemode

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/toolhub-scripting/go-toolhub/src/value"
)

//
// ─────────────────────────────────────────────────────────────
//   Mock Toolhub Client
// ─────────────────────────────────────────────────────────────
//

type mockClient struct {
	getToolFn     func(name string) (value.Value, error)
	getListFn     func(id int64) (value.Value, error)
	searchToolsFn func(query *string, page, pageSize int) (value.Value, error)
}

func (m *mockClient) GetToolByName(ctx context.Context, name string) (value.Value, error) {
	return m.getToolFn(name)
}

func (m *mockClient) GetListByID(ctx context.Context, id int64) (value.Value, error) {
	return m.getListFn(id)
}

func (m *mockClient) SearchTools(ctx context.Context, query *string, page, pageSize int) (value.Value, error) {
	return m.searchToolsFn(query, page, pageSize)
}

func mockResponse() value.Value {
	m := value.NewMap()
	m.Set("mock", value.String("response"))
	return value.Object(m)
}

func TestCodeMode_Execute_Simple(t *testing.T) {
	cm := New(&mockClient{})

	res, err := cm.Execute(context.Background(), Args{
		Code:    `__out = 2 + 3`,
		Timeout: 2 * time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Value.(int) != 5 {
		t.Fatalf("expected 5, got %#v", res.Value)
	}
}

func TestCodeMode_Execute_Timeout(t *testing.T) {
	cm := New(&mockClient{})

	_, err := cm.Execute(context.Background(), Args{
		Code: `
            for {
            }
        `,
		Timeout: 50 * time.Millisecond,
	})
	if err == nil {
		t.Fatalf("expected timeout error, got nil")
	}
}

func TestCodeMode_Execute_GetTool(t *testing.T) {
	mock := &mockClient{
		getToolFn: func(name string) (value.Value, error) {
			if name != "test" {
				t.Fatalf("unexpected tool name: %s", name)
			}
			return mockResponse(), nil
		},
	}

	res, err := New(mock).Execute(context.Background(), Args{
		Code: `
            tool, err := toolhub.GetTool("test")
            if err != nil {
                __out = err.Error()
            } else {
                __out = tool
            }
        `,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m, ok := res.Value.(map[string]any)
	if !ok {
		t.Fatalf("expected a map, got %T", res.Value)
	}
	if m["mock"] != "response" {
		t.Fatalf("expected mock=response, got %#v", m)
	}
}

func TestCodeMode_Execute_GetListAndFindTools(t *testing.T) {
	var gotQuery *string
	var gotPage, gotSize int
	mock := &mockClient{
		getListFn: func(id int64) (value.Value, error) {
			return value.List(value.Number(float64(id)), value.String("tools")), nil
		},
		searchToolsFn: func(query *string, page, pageSize int) (value.Value, error) {
			gotQuery, gotPage, gotSize = query, page, pageSize
			return value.List(), nil
		},
	}

	res, err := New(mock).Execute(context.Background(), Args{
		Code: `
            list, _ := toolhub.GetList(42)
            found, _ := toolhub.FindTools("", 2, 10)
            __out = fmt.Sprint(list.([]any)[0], len(found.([]any)))
        `,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Value != "42 0" {
		t.Fatalf("expected '42 0', got %#v", res.Value)
	}
	if gotQuery != nil || gotPage != 2 || gotSize != 10 {
		t.Fatalf("unexpected search args: %v %d %d", gotQuery, gotPage, gotSize)
	}
}

func TestCodeMode_Execute_SearchToolsSendsEmptyQuery(t *testing.T) {
	var gotQuery *string
	mock := &mockClient{
		searchToolsFn: func(query *string, page, pageSize int) (value.Value, error) {
			gotQuery = query
			return value.List(value.String("hit")), nil
		},
	}

	res, err := New(mock).Execute(context.Background(), Args{
		Code: `
            q := ""
            found, _ := toolhub.SearchTools(&q, 1, 25)
            __out = len(found.([]any))
        `,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Value != 1 {
		t.Fatalf("expected 1, got %#v", res.Value)
	}
	if gotQuery == nil || *gotQuery != "" {
		t.Fatalf("expected explicit empty query, got %v", gotQuery)
	}
}

func TestCodeMode_Execute_LookupError(t *testing.T) {
	mock := &mockClient{
		getToolFn: func(name string) (value.Value, error) {
			return value.Value{}, errors.New("empty body")
		},
	}

	res, err := New(mock).Execute(context.Background(), Args{
		Code: `
            _, err := toolhub.GetTool("missing")
            __out = err.Error()
        `,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Value != `codemode GetTool(missing) failed: empty body` {
		t.Fatalf("unexpected value %#v", res.Value)
	}
}

func TestCodeMode_Execute_Stdout(t *testing.T) {
	res, err := New(nil).Execute(context.Background(), Args{
		Code: `
            fmt.Println("hello")
            __out = true
        `,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Stdout != "hello\n" {
		t.Fatalf("expected stdout 'hello\\n', got %q", res.Stdout)
	}
}

func TestCodeMode_Execute_CompileError(t *testing.T) {
	_, err := New(nil).Execute(context.Background(), Args{Code: `__out = undefinedThing`})
	if err == nil {
		t.Fatalf("expected compile error")
	}
}
