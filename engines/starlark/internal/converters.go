package internal

import (
	"errors"
	"fmt"

	starlarkLib "go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/robbyt/go-scriptbridge/platform/value"
)

// ToValue converts a Starlark value into the value model. The conversion is total.
func ToValue(v starlarkLib.Value, path *value.Path) value.Value {
	if v == nil {
		return value.Null{}
	}

	switch v := v.(type) {
	case starlarkLib.NoneType:
		return value.Null{}
	case starlarkLib.Bool:
		return value.Boolean(v)
	case starlarkLib.Int:
		i, ok := v.Int64()
		if !ok {
			return value.Unrepresentable{
				Tag:    v.Type(),
				Raw:    []byte(v.String()),
				Reason: "integer exceeds the signed 64-bit range",
			}
		}
		return value.Integer(i)
	case starlarkLib.Float:
		return value.Real(v)
	case starlarkLib.String:
		return value.Text(v)
	case starlarkLib.Bytes:
		return value.Unrepresentable{Tag: v.Type(), Raw: []byte(v), Reason: "byte strings have no text form"}

	case *starlarkLib.List:
		leave, err := path.Enter(v)
		if err != nil {
			return value.Degraded(v.Type(), nil, err)
		}
		defer leave()
		out := make(value.List, v.Len())
		for i := range v.Len() {
			out[i] = ToValue(v.Index(i), path)
		}
		return out

	case starlarkLib.Tuple:
		// tuples are immutable, so they can only reach themselves through a mutable container
		leave, err := path.Enter(nil)
		if err != nil {
			return value.Degraded(v.Type(), nil, err)
		}
		defer leave()
		out := make(value.List, len(v))
		for i, elem := range v {
			out[i] = ToValue(elem, path)
		}
		return out

	case *starlarkLib.Set:
		leave, err := path.Enter(v)
		if err != nil {
			return value.Degraded(v.Type(), nil, err)
		}
		defer leave()
		out := make(value.List, 0, v.Len())
		iter := v.Iterate()
		defer iter.Done()
		var elem starlarkLib.Value
		for iter.Next(&elem) {
			out = append(out, ToValue(elem, path))
		}
		return out

	case *starlarkLib.Dict:
		leave, err := path.Enter(v)
		if err != nil {
			return value.Degraded(v.Type(), nil, err)
		}
		defer leave()
		items := v.Items()
		keys, err := dictKeys(items)
		if err != nil {
			return value.Unrepresentable{Tag: v.Type(), Raw: []byte(v.String()), Reason: err.Error()}
		}
		rec := value.NewRecord(len(items))
		for i, item := range items {
			rec.Set(keys[i], ToValue(item[1], path))
		}
		return rec

	case *starlarkstruct.Struct:
		leave, err := path.Enter(v)
		if err != nil {
			return value.Degraded(v.Type(), nil, err)
		}
		defer leave()
		names := v.AttrNames()
		rec := value.NewRecord(len(names))
		for _, name := range names {
			attr, err := v.Attr(name)
			if err != nil {
				rec.Set(name, value.Unrepresentable{Tag: "attr", Reason: err.Error()})
				continue
			}
			rec.Set(name, ToValue(attr, path))
		}
		return rec

	case *starlarkstruct.Module:
		return value.Reference{Class: v.Type(), Handle: v.Name}
	case starlarkLib.Callable:
		return value.Reference{Class: v.Type(), Handle: v.Name()}
	}

	return value.Unrepresentable{
		Tag:    v.Type(),
		Raw:    []byte(v.String()),
		Reason: "no mapping for starlark type",
	}
}

// dictKey renders a dict key as a record field name. String keys are used as is; other keys
// use their Starlark representation.
func dictKey(k starlarkLib.Value) string {
	if s, ok := k.(starlarkLib.String); ok {
		return string(s)
	}
	return k.String()
}

// ErrKeyCollision is the reason recorded when two dict keys render to the same field name.
var ErrKeyCollision = errors.New("dict keys collide as field names")

// dictKeys names the record fields for a dict's items. A string key that renders the same as
// another key switches to its quoted representation, so {1: a, "1": b} keeps both fields as
// 1 and "1". Keys that still collide make the dict unrepresentable.
func dictKeys(items []starlarkLib.Tuple) ([]string, error) {
	keys := make([]string, len(items))
	counts := make(map[string]int, len(items))
	for i, item := range items {
		keys[i] = dictKey(item[0])
		counts[keys[i]]++
	}
	for i, item := range items {
		if _, ok := item[0].(starlarkLib.String); ok && counts[keys[i]] > 1 {
			keys[i] = item[0].String()
		}
	}

	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			return nil, fmt.Errorf("%w: %s", ErrKeyCollision, k)
		}
		seen[k] = struct{}{}
	}
	return keys, nil
}

// ErrNotConvertible is returned when input data has no Starlark counterpart.
var ErrNotConvertible = errors.New("value cannot be passed to starlark")

// FromValue converts a model value into a Starlark value for use as script input.
func FromValue(v value.Value) (starlarkLib.Value, error) {
	switch v := v.(type) {
	case nil, value.Null:
		return starlarkLib.None, nil
	case value.Boolean:
		return starlarkLib.Bool(v), nil
	case value.Integer:
		return starlarkLib.MakeInt64(int64(v)), nil
	case value.Real:
		return starlarkLib.Float(v), nil
	case value.Text:
		return starlarkLib.String(v), nil
	case value.List:
		elems := make([]starlarkLib.Value, len(v))
		for i, item := range v {
			sv, err := FromValue(item)
			if err != nil {
				return nil, fmt.Errorf("list element %d: %w", i, err)
			}
			elems[i] = sv
		}
		return starlarkLib.NewList(elems), nil
	case *value.Record:
		dict := starlarkLib.NewDict(v.Len())
		for k, item := range v.All() {
			sv, err := FromValue(item)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", k, err)
			}
			if err := dict.SetKey(starlarkLib.String(k), sv); err != nil {
				return nil, fmt.Errorf("field %q: %w", k, err)
			}
		}
		return dict, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotConvertible, v)
}

// ConvertToStringDict builds the predeclared ctx global from provider data.
func ConvertToStringDict(ctxName string, inputData map[string]any) (starlarkLib.StringDict, error) {
	ctxVal, err := FromValue(value.FromGo(inputData))
	if err != nil {
		return nil, fmt.Errorf("failed to convert input data: %w", err)
	}
	return starlarkLib.StringDict{ctxName: ctxVal}, nil
}
