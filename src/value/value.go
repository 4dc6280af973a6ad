// Package value holds the decoded form of Toolhub API payloads.
//
// A Value is a closed tagged union. Null, Bool, Number, String, List and Map
// come out of JSON/YAML decoding; Function and Opaque exist so that values
// lifted from a host runtime can be carried around and recognised as having
// no script-side representation.
package value

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Kind discriminates the variants of Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindMap
	KindFunction
	KindOpaque
)

var kindNames = [...]string{
	KindNull:     "null",
	KindBool:     "bool",
	KindNumber:   "number",
	KindString:   "string",
	KindList:     "list",
	KindMap:      "map",
	KindFunction: "function",
	KindOpaque:   "opaque",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Representable reports whether values of this kind have a counterpart in a
// script host's value model.
func (k Kind) Representable() bool {
	return k != KindFunction && k != KindOpaque
}

// IsContainer reports whether k is List or Map.
func (k Kind) IsContainer() bool {
	return k == KindList || k == KindMap
}

// Value is an immutable-by-convention decoded value. The zero Value is Null.
type Value struct {
	kind  Kind
	b     bool
	n     float64
	s     string
	items []Value
	m     *Map
	ref   any
}

func Null() Value            { return Value{} }
func Bool(b bool) Value      { return Value{kind: KindBool, b: b} }
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }
func String(s string) Value  { return Value{kind: KindString, s: s} }

// List returns a list of items. A nil slice yields an empty list.
func List(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindList, items: items}
}

// Object wraps an ordered map. A nil map yields an empty one.
func Object(m *Map) Value {
	if m == nil {
		m = NewMap()
	}
	return Value{kind: KindMap, m: m}
}

// Function returns a function reference named name.
func Function(name string) Value { return Value{kind: KindFunction, s: name} }

// Opaque wraps a host-native value that has no portable representation.
func Opaque(ref any) Value { return Value{kind: KindOpaque, ref: ref} }

func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsNull() bool   { return v.kind == KindNull }
func (v Value) Bool() bool     { return v.b }
func (v Value) Float() float64 { return v.n }

// Text returns the string payload of a String value, or the name of a
// Function value.
func (v Value) Text() string { return v.s }

// Items returns the elements of a List value.
func (v Value) Items() []Value { return v.items }

// Map returns the entries of a Map value, or nil.
func (v Value) Map() *Map { return v.m }

// Ref returns the wrapped host value of an Opaque value.
func (v Value) Ref() any { return v.ref }

// Len returns the number of members of a container, zero otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.items)
	case KindMap:
		return v.m.Len()
	}
	return 0
}

// Equal reports deep equality. Opaque values compare by identity of Ref.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindNumber:
		return v.n == o.n
	case KindString, KindFunction:
		return v.s == o.s
	case KindList:
		if len(v.items) != len(o.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	case KindMap:
		return v.m.Equal(o.m)
	case KindOpaque:
		if v.ref == nil || o.ref == nil {
			return v.ref == o.ref
		}
		t := reflect.TypeOf(v.ref)
		return t == reflect.TypeOf(o.ref) && t.Comparable() && v.ref == o.ref
	}
	return false
}

// String renders v in a compact JSON-like form for logs and test output.
func (v Value) String() string {
	var sb strings.Builder
	v.write(&sb)
	return sb.String()
}

func (v Value) write(sb *strings.Builder) {
	switch v.kind {
	case KindNull:
		sb.WriteString("null")
	case KindBool:
		sb.WriteString(strconv.FormatBool(v.b))
	case KindNumber:
		sb.WriteString(strconv.FormatFloat(v.n, 'g', -1, 64))
	case KindString:
		sb.WriteString(strconv.Quote(v.s))
	case KindList:
		sb.WriteByte('[')
		for i, it := range v.items {
			if i > 0 {
				sb.WriteByte(',')
			}
			it.write(sb)
		}
		sb.WriteByte(']')
	case KindMap:
		sb.WriteByte('{')
		i := 0
		v.m.Range(func(k string, val Value) bool {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.Quote(k))
			sb.WriteByte(':')
			val.write(sb)
			i++
			return true
		})
		sb.WriteByte('}')
	case KindFunction:
		fmt.Fprintf(sb, "<function %s>", v.s)
	case KindOpaque:
		fmt.Fprintf(sb, "<opaque %T>", v.ref)
	}
}
