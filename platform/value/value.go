// Package value is the language-neutral result model produced by every host runtime adapter.
//
// A Value is exactly one of the variants declared in this package. The set is closed: code outside
// the package cannot add new variants, so a type switch over Null, Boolean, Integer, Real, Text,
// List, *Record, Reference and Unrepresentable is exhaustive.
package value

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// Value is a result returned by a host scripting runtime after conversion.
type Value interface {
	// Kind reports which variant the value is.
	Kind() Kind

	// Interface returns the plain Go form of the value: nil, bool, int64, float64, string,
	// []any, map[string]any, or the variant itself for references and unrepresentable values.
	Interface() any

	// String returns an inspection string for logs and diagnostics.
	String() string

	sealed()
}

// Null is the absence of a value (None, nil, missing value).
type Null struct{}

func (Null) Kind() Kind { return KindNull }
func (Null) Interface() any { return nil }
func (Null) String() string { return "null" }
func (Null) sealed() {}

// Boolean is a true/false value.
type Boolean bool

func (Boolean) Kind() Kind { return KindBoolean }
func (b Boolean) Interface() any { return bool(b) }
func (b Boolean) String() string { return strconv.FormatBool(bool(b)) }
func (Boolean) sealed() {}

// Integer is a signed 64-bit integer tagged as an integer by the runtime.
type Integer int64

func (Integer) Kind() Kind { return KindInteger }
func (i Integer) Interface() any { return int64(i) }
func (i Integer) String() string { return strconv.FormatInt(int64(i), 10) }
func (Integer) sealed() {}

// Real is a double precision floating point number tagged as a real by the runtime.
type Real float64

func (Real) Kind() Kind { return KindReal }
func (r Real) Interface() any { return float64(r) }
func (r Real) String() string { return formatReal(float64(r)) }
func (Real) sealed() {}

// formatReal keeps reals visibly distinct from integers.
func formatReal(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnNI") {
		s += ".0"
	}
	return s
}

// Text is a unicode string.
type Text string

func (Text) Kind() Kind { return KindText }
func (t Text) Interface() any { return string(t) }
func (t Text) String() string { return strconv.Quote(string(t)) }
func (Text) sealed() {}

// List is an ordered sequence of values.
type List []Value

func (List) Kind() Kind { return KindList }

func (l List) Interface() any {
	out := make([]any, len(l))
	for i, v := range l {
		out[i] = v.Interface()
	}
	return out
}

func (l List) String() string {
	parts := make([]string, len(l))
	for i, v := range l {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (List) sealed() {}

// Reference is an opaque handle to a live object inside the runtime. It cannot be decomposed
// without another round trip to the runtime that produced it.
type Reference struct {
	// Class is the runtime's class or type name for the referenced object.
	Class string
	// Handle is the runtime specific text that identifies the object.
	Handle string
}

func (Reference) Kind() Kind { return KindReference }
func (r Reference) Interface() any { return r }
func (r Reference) String() string { return fmt.Sprintf("ref<%s>(%s)", r.Class, r.Handle) }
func (Reference) sealed() {}

// Unrepresentable preserves a runtime value that has no mapping in this model: the raw type tag,
// the raw bytes (when the runtime exposes them) and the reason the mapping fell back.
type Unrepresentable struct {
	Tag    string
	Raw    []byte
	Reason string
}

func (Unrepresentable) Kind() Kind { return KindUnrepresentable }
func (u Unrepresentable) Interface() any { return u }

func (u Unrepresentable) String() string {
	raw := hex.EncodeToString(u.Raw)
	if len(raw) > 64 {
		raw = raw[:64] + "..."
	}
	if u.Reason == "" {
		return fmt.Sprintf("unrepresentable<%s>(%s)", u.Tag, raw)
	}
	return fmt.Sprintf("unrepresentable<%s>(%s): %s", u.Tag, raw, u.Reason)
}
func (Unrepresentable) sealed() {}

// IsNull reports whether v is nil or the Null variant.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Null)
	return ok
}
