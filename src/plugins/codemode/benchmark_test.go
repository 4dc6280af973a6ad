package codemode

import (
	"context"
	"testing"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

func BenchmarkNewInterpreter(b *testing.B) {
	for i := 0; i < b.N; i++ {
		interp.New(interp.Options{})
	}
}

func BenchmarkUseStdlib(b *testing.B) {
	for i := 0; i < b.N; i++ {
		in := interp.New(interp.Options{})
		in.Use(stdlib.Symbols)
	}
}

func BenchmarkInjectHelpers(b *testing.B) {
	// Helpers only capture the client, so a nil one is enough here.
	cm := New(nil)
	ctx := context.Background()
	for i := 0; i < b.N; i++ {
		in := interp.New(interp.Options{})
		_ = cm.injectHelpers(ctx, in)
	}
}

func BenchmarkExecuteSimple(b *testing.B) {
	cm := New(nil)
	ctx := context.Background()
	args := Args{Code: `a := 1; b := 2; __out = a + b`}
	for i := 0; i < b.N; i++ {
		if _, err := cm.Execute(ctx, args); err != nil {
			b.Fatal(err)
		}
	}
}
