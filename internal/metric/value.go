// Package metric copies, encodes and orders the loosely typed values carried by
// training statistics.
package metric

import (
	"math"
	"reflect"
)

// Clone deep-copies slices, arrays and maps reachable from v. Scalars,
// strings, pointers and other values are returned as-is.
func Clone(v any) any {
	if v == nil {
		return nil
	}
	switch x := v.(type) {
	case bool, string, float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return v
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Clone(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = Clone(e)
		}
		return out
	}
	return cloneValue(reflect.ValueOf(v)).Interface()
}

func cloneValue(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(cloneValue(v.Index(i)))
		}
		return out
	case reflect.Array:
		out := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(cloneValue(v.Index(i)))
		}
		return out
	case reflect.Map:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), cloneValue(iter.Value()))
		}
		return out
	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type()).Elem()
		out.Set(cloneValue(v.Elem()))
		return out
	default:
		return v
	}
}

// CloneMap deep-copies a statistics map. A nil map stays nil.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Clone(v)
	}
	return out
}

// Tokens JSON cannot carry as numbers.
const (
	TokenNaN    = "NaN"
	TokenPosInf = "+Inf"
	TokenNegInf = "-Inf"
)

// EncodeFloat returns f, or its token when f is not finite.
func EncodeFloat(f float64) any {
	switch {
	case math.IsNaN(f):
		return TokenNaN
	case math.IsInf(f, 1):
		return TokenPosInf
	case math.IsInf(f, -1):
		return TokenNegInf
	default:
		return f
	}
}

// DecodeFloat is the inverse of EncodeFloat. nil decodes to zero.
func DecodeFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, true
	case float64:
		return x, true
	case string:
		return parseToken(x)
	default:
		return 0, false
	}
}

func parseToken(s string) (float64, bool) {
	switch s {
	case TokenNaN:
		return math.NaN(), true
	case TokenPosInf:
		return math.Inf(1), true
	case TokenNegInf:
		return math.Inf(-1), true
	default:
		return 0, false
	}
}

// EncodeJSON rewrites v so encoding/json accepts it: non-finite floats become
// tokens, wherever they are nested.
func EncodeJSON(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		return EncodeFloat(x)
	case float32:
		return EncodeFloat(float64(x))
	case bool, string, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return v
	case map[string]any:
		return EncodeJSONMap(x)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return v
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = EncodeJSON(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String || rv.IsNil() {
			return v
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = EncodeJSON(iter.Value().Interface())
		}
		return out
	default:
		return v
	}
}

func EncodeJSONMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = EncodeJSON(v)
	}
	return out
}

// DecodeJSON turns the tokens written by EncodeJSON back into floats in a
// value produced by encoding/json. A string metric spelled exactly like a
// token decodes as that float.
func DecodeJSON(v any) any {
	switch x := v.(type) {
	case string:
		if f, ok := parseToken(x); ok {
			return f
		}
		return x
	case []any:
		for i, e := range x {
			x[i] = DecodeJSON(e)
		}
		return x
	case map[string]any:
		return DecodeJSONMap(x)
	default:
		return v
	}
}

// DecodeJSONMap decodes m in place and returns it.
func DecodeJSONMap(m map[string]any) map[string]any {
	for k, v := range m {
		m[k] = DecodeJSON(v)
	}
	return m
}
