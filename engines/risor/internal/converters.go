package internal

import (
	"errors"
	"fmt"
	"time"

	risorLib "github.com/risor-io/risor"
	"github.com/risor-io/risor/object"

	"github.com/robbyt/go-scriptbridge/platform/value"
)

// ConvertToRisorOptions wraps the input data in a single global visible to the script.
//
// For example, if the inputData is {"foo": "bar"}, the script can read ctx["foo"].
func ConvertToRisorOptions(ctxKey string, inputData map[string]any) []risorLib.Option {
	return []risorLib.Option{
		risorLib.WithGlobal(ctxKey, inputData),
	}
}

// ScriptError returns the Go error carried by a Risor error object, or nil when obj is not an
// error.
func ScriptError(obj object.Object) error {
	e, ok := obj.(*object.Error)
	if !ok {
		return nil
	}
	if err := e.Value(); err != nil {
		return err
	}
	return errors.New(e.Inspect())
}

// ToValue converts a Risor object into the value model. Risor maps carry no insertion order,
// so their keys are emitted sorted.
func ToValue(obj object.Object, path *value.Path) value.Value {
	if obj == nil {
		return value.Null{}
	}

	switch o := obj.(type) {
	case *object.NilType:
		return value.Null{}
	case *object.Bool:
		return value.Boolean(o.Value())
	case *object.Int:
		return value.Integer(o.Value())
	case *object.Float:
		return value.Real(o.Value())
	case *object.String:
		return value.Text(o.Value())
	case *object.ByteSlice:
		return value.Unrepresentable{
			Tag:    string(o.Type()),
			Raw:    o.Value(),
			Reason: "byte slices have no text form",
		}
	case *object.Time:
		return value.Unrepresentable{
			Tag:    string(o.Type()),
			Raw:    []byte(o.Value().Format(time.RFC3339Nano)),
			Reason: "dates have no variant; raw holds RFC 3339 text",
		}

	case *object.List:
		leave, err := path.Enter(o)
		if err != nil {
			return value.Degraded(string(o.Type()), nil, err)
		}
		defer leave()
		items := o.Value()
		out := make(value.List, len(items))
		for i, item := range items {
			out[i] = ToValue(item, path)
		}
		return out

	case *object.Map:
		leave, err := path.Enter(o)
		if err != nil {
			return value.Degraded(string(o.Type()), nil, err)
		}
		defer leave()
		items := o.Value()
		keys := o.SortedKeys()
		rec := value.NewRecord(len(keys))
		for _, k := range keys {
			rec.Set(k, ToValue(items[k], path))
		}
		return rec

	case *object.Error:
		return value.Unrepresentable{
			Tag:    string(o.Type()),
			Raw:    []byte(o.Inspect()),
			Reason: "error objects are reported as failures, not values",
		}
	}

	switch t := string(obj.Type()); t {
	case "set":
		return value.FromGoPath(obj.Interface(), path)
	case "function", "builtin", "module", "partial":
		return value.Reference{Class: t, Handle: obj.Inspect()}
	default:
		return value.Unrepresentable{
			Tag:    t,
			Raw:    []byte(obj.Inspect()),
			Reason: fmt.Sprintf("no mapping for risor type %q", t),
		}
	}
}
