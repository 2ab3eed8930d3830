package value

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
)

// FromGo maps plain Go data into the value model. The mapping is total: values with no
// counterpart become Unrepresentable instead of failing.
//
// Maps with string keys become records with keys in sorted order, because Go maps carry no
// order of their own. Use NewRecord directly when the producer has a meaningful order.
func FromGo(v any) Value {
	return FromGoDepth(v, DefaultMaxDepth)
}

// FromGoDepth is FromGo with an explicit nesting bound.
func FromGoDepth(v any, maxDepth int) Value {
	return fromGo(v, NewPath(maxDepth))
}

// FromGoPath converts v while sharing an existing path with an enclosing converter.
func FromGoPath(v any, path *Path) Value {
	return fromGo(v, path)
}

func fromGo(v any, path *Path) Value {
	switch x := v.(type) {
	case nil:
		return Null{}
	case Value:
		return x
	case bool:
		return Boolean(x)
	case int:
		return Integer(x)
	case int8:
		return Integer(x)
	case int16:
		return Integer(x)
	case int32:
		return Integer(x)
	case int64:
		return Integer(x)
	case uint8:
		return Integer(x)
	case uint16:
		return Integer(x)
	case uint32:
		return Integer(x)
	case uint:
		return fromUnsigned(uint64(x))
	case uint64:
		return fromUnsigned(x)
	case float32:
		return Real(x)
	case float64:
		return Real(x)
	case json.Number:
		return fromNumber(x)
	case string:
		return Text(x)
	case []byte:
		return Unrepresentable{Tag: "bytes", Raw: x, Reason: "byte strings have no text form"}
	}
	return fromReflect(reflect.ValueOf(v), path)
}

func fromUnsigned(u uint64) Value {
	if u > math.MaxInt64 {
		return Unrepresentable{
			Tag:    "uint64",
			Raw:    []byte(strconv.FormatUint(u, 10)),
			Reason: "integer exceeds the signed 64-bit range",
		}
	}
	return Integer(u)
}

// fromNumber keeps the integer/real distinction of the JSON text.
func fromNumber(n json.Number) Value {
	if i, err := n.Int64(); err == nil {
		return Integer(i)
	}
	if isIntegerLiteral(string(n)) {
		return Unrepresentable{
			Tag:    "number",
			Raw:    []byte(n),
			Reason: "integer exceeds the signed 64-bit range",
		}
	}
	if f, err := n.Float64(); err == nil {
		return Real(f)
	}
	return Unrepresentable{Tag: "number", Raw: []byte(n), Reason: "not a number"}
}

func isIntegerLiteral(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '-' {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// containerID identifies a slice or map by its backing storage.
type containerID struct {
	kind reflect.Kind
	ptr  uintptr
	n    int
}

func fromReflect(rv reflect.Value, path *Path) Value {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null{}
		}
		// pointers are entered so self-referencing structures terminate
		var id any
		if rv.Kind() == reflect.Pointer {
			id = containerID{kind: reflect.Pointer, ptr: rv.Pointer()}
		}
		leave, err := path.Enter(id)
		if err != nil {
			return Degraded(rv.Type().String(), nil, err)
		}
		defer leave()
		return fromGo(rv.Elem().Interface(), path)

	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Null{}
		}
		var id any
		if rv.Kind() == reflect.Slice && rv.Len() > 0 {
			id = containerID{kind: reflect.Slice, ptr: rv.Pointer(), n: rv.Len()}
		}
		leave, err := path.Enter(id)
		if err != nil {
			return Degraded(rv.Type().String(), nil, err)
		}
		defer leave()
		out := make(List, rv.Len())
		for i := range rv.Len() {
			out[i] = fromGo(rv.Index(i).Interface(), path)
		}
		return out

	case reflect.Map:
		if rv.IsNil() {
			return Null{}
		}
		if rv.Type().Key().Kind() != reflect.String {
			return Unrepresentable{
				Tag:    rv.Type().String(),
				Reason: "map keys are not strings",
			}
		}
		leave, err := path.Enter(containerID{kind: reflect.Map, ptr: rv.Pointer()})
		if err != nil {
			return Degraded(rv.Type().String(), nil, err)
		}
		defer leave()
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		rec := NewRecord(len(keys))
		for _, k := range keys {
			elem := rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key()))
			rec.Set(k, fromGo(elem.Interface(), path))
		}
		return rec

	case reflect.Bool:
		return Boolean(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Integer(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return fromUnsigned(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return Real(rv.Float())
	case reflect.String:
		return Text(rv.String())
	}

	if !rv.IsValid() {
		return Null{}
	}
	return Unrepresentable{
		Tag:    rv.Type().String(),
		Raw:    []byte(fmt.Sprint(rv.Interface())),
		Reason: "no mapping for Go type",
	}
}
