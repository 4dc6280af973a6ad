package value

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	json "github.com/toolhub-scripting/go-toolhub/src/json"
)

var (
	// ErrEmptyDocument is returned when there is nothing to decode.
	ErrEmptyDocument = errors.New("empty document")
	// ErrTruncatedDocument is returned when input ends inside a JSON value.
	ErrTruncatedDocument = errors.New("truncated document")
	// ErrTrailingData is returned when a JSON document is followed by more input.
	ErrTrailingData = errors.New("trailing data after document")
)

// DecodeJSON decodes a single JSON document, keeping object keys in the
// order they appear.
func DecodeJSON(data []byte) (Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Value{}, ErrEmptyDocument
	}
	// The trailing space terminates a bare top-level number, so a complete
	// document never reaches EOF while it is being read.
	padded := make([]byte, len(data)+1)
	copy(padded, data)
	padded[len(data)] = ' '

	iter := json.BorrowIterator(padded)
	defer json.ReturnIterator(iter)

	v := readJSON(iter)
	if iter.Error == io.EOF {
		return Value{}, fmt.Errorf("decode json: %w", ErrTruncatedDocument)
	}
	if iter.Error != nil {
		return Value{}, fmt.Errorf("decode json: %w", iter.Error)
	}
	iter.WhatIsNext()
	if iter.Error != io.EOF {
		return Value{}, fmt.Errorf("decode json: %w", ErrTrailingData)
	}
	return v, nil
}

func readJSON(iter *jsoniter.Iterator) Value {
	switch iter.WhatIsNext() {
	case jsoniter.NilValue:
		iter.ReadNil()
		return Null()
	case jsoniter.BoolValue:
		return Bool(iter.ReadBool())
	case jsoniter.NumberValue:
		return Number(iter.ReadFloat64())
	case jsoniter.StringValue:
		return String(iter.ReadString())
	case jsoniter.ArrayValue:
		items := []Value{}
		iter.ReadArrayCB(func(it *jsoniter.Iterator) bool {
			items = append(items, readJSON(it))
			return it.Error == nil
		})
		return List(items...)
	case jsoniter.ObjectValue:
		m := NewMap()
		iter.ReadObjectCB(func(it *jsoniter.Iterator, key string) bool {
			m.Set(key, readJSON(it))
			return it.Error == nil
		})
		return Object(m)
	default:
		iter.ReportError("readJSON", "unexpected token")
		return Null()
	}
}

// DecodeYAML decodes the first YAML document in data. Mapping keys keep
// their document order; aliases are resolved.
func DecodeYAML(data []byte) (Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Value{}, fmt.Errorf("decode yaml: %w", err)
	}
	if doc.Kind == 0 || (doc.Kind == yaml.DocumentNode && len(doc.Content) == 0) {
		return Value{}, ErrEmptyDocument
	}
	root := &doc
	if doc.Kind == yaml.DocumentNode {
		root = doc.Content[0]
	}
	return fromYAMLNode(root)
}

func fromYAMLNode(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return fromYAMLNode(n.Alias)
	case yaml.ScalarNode:
		var raw any
		if err := n.Decode(&raw); err != nil {
			return Value{}, fmt.Errorf("decode yaml scalar at line %d: %w", n.Line, err)
		}
		return FromAny(raw), nil
	case yaml.SequenceNode:
		items := make([]Value, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := fromYAMLNode(c)
			if err != nil {
				return Value{}, err
			}
			items = append(items, v)
		}
		return List(items...), nil
	case yaml.MappingNode:
		m := NewMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := fromYAMLNode(n.Content[i+1])
			if err != nil {
				return Value{}, err
			}
			m.Set(n.Content[i].Value, v)
		}
		return Object(m), nil
	}
	return Value{}, fmt.Errorf("decode yaml: unsupported node kind %d at line %d", n.Kind, n.Line)
}
