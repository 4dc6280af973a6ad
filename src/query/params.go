// Package query builds deterministic query strings for Toolhub API requests.
package query

import (
	"fmt"
	"net/url"
	"reflect"

	"github.com/spf13/cast"
)

// Params maps parameter names to optional scalar values. A nil value (or a
// nil pointer) marks the parameter as absent.
type Params map[string]any

// Set records key=val and returns p for chaining.
func (p Params) Set(key string, val any) Params {
	p[key] = val
	return p
}

// Values drops absent entries and stringifies the rest.
func (p Params) Values() (url.Values, error) {
	out := make(url.Values, len(p))
	for k, v := range p {
		if absent(v) {
			continue
		}
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, fmt.Errorf("query parameter %q: %w", k, err)
		}
		out.Set(k, s)
	}
	return out, nil
}

// Encode serializes the present parameters as a form-urlencoded string
// sorted by key, so equal parameter sets always yield identical output.
func (p Params) Encode() (string, error) {
	vals, err := p.Values()
	if err != nil {
		return "", err
	}
	return vals.Encode(), nil
}

func absent(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}
