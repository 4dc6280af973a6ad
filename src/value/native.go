package value

import (
	"reflect"
	"runtime"
	"sort"
	"time"

	"github.com/spf13/cast"
)

// FromAny lifts a native Go value. Maps with string keys become Map values
// (keys sorted, since Go maps carry no order), slices and arrays become List
// values, every numeric type becomes a Number, functions become Function
// values and anything else is wrapped as Opaque.
func FromAny(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case *Map:
		return Object(t)
	case bool:
		return Bool(t)
	case string:
		return String(t)
	case []byte:
		return String(string(t))
	case time.Time:
		return String(t.Format(time.RFC3339Nano))
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return Number(cast.ToFloat64(t))
	case []any:
		items := make([]Value, len(t))
		for i, it := range t {
			items[i] = FromAny(it)
		}
		return List(items...)
	case map[string]any:
		m := NewMap()
		for _, k := range sortedKeys(t) {
			m.Set(k, FromAny(t[k]))
		}
		return Object(m)
	}

	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null()
		}
		return FromAny(rv.Elem().Interface())
	case reflect.Func:
		return Function(runtimeName(rv))
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Null()
		}
		items := make([]Value, rv.Len())
		for i := range items {
			items[i] = FromAny(rv.Index(i).Interface())
		}
		return List(items...)
	case reflect.Map:
		if rv.IsNil() {
			return Null()
		}
		keys := make(map[string]reflect.Value, rv.Len())
		for _, k := range rv.MapKeys() {
			s, err := cast.ToStringE(k.Interface())
			if err != nil {
				return Opaque(x)
			}
			keys[s] = k
		}
		names := make([]string, 0, len(keys))
		for s := range keys {
			names = append(names, s)
		}
		sort.Strings(names)
		m := NewMap()
		for _, s := range names {
			m.Set(s, FromAny(rv.MapIndex(keys[s]).Interface()))
		}
		return Object(m)
	case reflect.Bool:
		return Bool(rv.Bool())
	case reflect.String:
		return String(rv.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Number(float64(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Number(float64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return Number(rv.Float())
	}
	return Opaque(x)
}

// ToNative lowers v to plain Go values: map[string]any, []any, float64,
// string, bool and nil. Function and Opaque values lower to nil.
func ToNative(v Value) any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	case KindList:
		out := make([]any, len(v.items))
		for i, it := range v.items {
			out[i] = ToNative(it)
		}
		return out
	case KindMap:
		out := make(map[string]any, v.m.Len())
		v.m.Range(func(k string, val Value) bool {
			out[k] = ToNative(val)
			return true
		})
		return out
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func runtimeName(fn reflect.Value) string {
	if !fn.IsNil() {
		if name := runtime.FuncForPC(fn.Pointer()).Name(); name != "" {
			return name
		}
	}
	return fn.Type().String()
}
