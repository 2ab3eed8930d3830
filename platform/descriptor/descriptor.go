// Package descriptor models the native result descriptors handed back by runtimes that do not
// produce in-process Go objects, and maps them totally into the value model.
//
// A descriptor carries a four character type code plus either raw bytes (scalars), child items
// (lists) or keyed fields (records and object specifiers). Numeric payloads are little endian.
package descriptor

import (
	"encoding/binary"
	"math"
	"strings"
	"time"
	"unicode/utf16"
)

// Code is a four character descriptor type code.
type Code string

// Type codes understood by ToValue. Anything else converts to value.Unrepresentable.
const (
	TypeNull        Code = "null"
	TypeMissing     Code = "msng"
	TypeTrue        Code = "true"
	TypeFalse       Code = "fals"
	TypeBoolean     Code = "bool"
	TypeShort       Code = "shor"
	TypeLong        Code = "long"
	TypeComp        Code = "comp"
	TypeMagnitude   Code = "magn"
	TypeUComp       Code = "ucom"
	TypeSingle      Code = "sing"
	TypeDouble      Code = "doub"
	TypeUTF8        Code = "utf8"
	TypeUnicode     Code = "utxt"
	TypeText        Code = "TEXT"
	TypeList        Code = "list"
	TypeRecord      Code = "reco"
	TypeObject      Code = "obj "
	TypeAlias       Code = "alis"
	TypeFileURL     Code = "furl"
	TypeProcess     Code = "psn "
	TypeEnumerated  Code = "enum"
	TypeType        Code = "type"
	TypeDate        Code = "ldt "
	TypeData        Code = "tdta"
	TypeApplication Code = "capp"
)

// Keywords used inside object specifier and record descriptors.
const (
	KeyUserFields = "usrf"
	KeyWant       = "want"
	KeyForm       = "form"
	KeySeld       = "seld"
	KeyFrom       = "from"

	// FormText marks an object specifier whose selector is the runtime's own rendering of the
	// whole reference.
	FormText   = "text"
	FormIndex  = "indx"
	FormName   = "name"
	FormID     = "ID  "
	FormProp   = "prop"
	FormAbsPos = "abso"
)

// NormalizeCode pads or truncates s to four characters.
func NormalizeCode(s string) Code {
	switch {
	case len(s) > 4:
		return Code(s[:4])
	case len(s) < 4:
		return Code(s + strings.Repeat(" ", 4-len(s)))
	}
	return Code(s)
}

// Descriptor is one native result descriptor.
type Descriptor struct {
	Type   Code
	Data   []byte
	Items  []*Descriptor
	Fields []Field
}

// Field is one keyed entry of a record or object specifier.
type Field struct {
	Key   string
	Value *Descriptor
}

// Field returns the first field stored under key.
func (d *Descriptor) Field(key string) (*Descriptor, bool) {
	if d == nil {
		return nil, false
	}
	for _, f := range d.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Null returns a null descriptor.
func Null() *Descriptor { return &Descriptor{Type: TypeNull} }

// Missing returns the "missing value" descriptor.
func Missing() *Descriptor { return &Descriptor{Type: TypeMissing} }

// Bool returns a boolean descriptor.
func Bool(b bool) *Descriptor {
	if b {
		return &Descriptor{Type: TypeTrue}
	}
	return &Descriptor{Type: TypeFalse}
}

// Int32 returns a "long" descriptor.
func Int32(i int32) *Descriptor {
	return &Descriptor{Type: TypeLong, Data: binary.LittleEndian.AppendUint32(nil, uint32(i))}
}

// Int64 returns a "comp" descriptor.
func Int64(i int64) *Descriptor {
	return &Descriptor{Type: TypeComp, Data: binary.LittleEndian.AppendUint64(nil, uint64(i))}
}

// Uint64 returns a "ucom" descriptor.
func Uint64(u uint64) *Descriptor {
	return &Descriptor{Type: TypeUComp, Data: binary.LittleEndian.AppendUint64(nil, u)}
}

// Float64 returns a "doub" descriptor.
func Float64(f float64) *Descriptor {
	return &Descriptor{Type: TypeDouble, Data: binary.LittleEndian.AppendUint64(nil, math.Float64bits(f))}
}

// UTF8 returns a "utf8" text descriptor.
func UTF8(s string) *Descriptor {
	return &Descriptor{Type: TypeUTF8, Data: []byte(s)}
}

// Unicode returns a "utxt" descriptor holding s as little endian UTF-16 without a byte order
// mark.
func Unicode(s string) *Descriptor {
	units := utf16.Encode([]rune(s))
	data := make([]byte, 0, len(units)*2)
	for _, u := range units {
		data = binary.LittleEndian.AppendUint16(data, u)
	}
	return &Descriptor{Type: TypeUnicode, Data: data}
}

// List returns a list descriptor.
func List(items ...*Descriptor) *Descriptor {
	if items == nil {
		items = []*Descriptor{}
	}
	return &Descriptor{Type: TypeList, Items: items}
}

// Record returns a record descriptor.
func Record(fields ...Field) *Descriptor {
	return &Descriptor{Type: TypeRecord, Fields: fields}
}

// TypeCode returns a "type" descriptor naming a class.
func TypeCode(class string) *Descriptor {
	return &Descriptor{Type: TypeType, Data: []byte(class)}
}

// Enum returns an enumerated constant descriptor.
func Enum(name string) *Descriptor {
	return &Descriptor{Type: TypeEnumerated, Data: []byte(name)}
}

// Alias returns an alias descriptor holding a file path.
func Alias(path string) *Descriptor {
	return &Descriptor{Type: TypeAlias, Data: []byte(path)}
}

// Date returns an "ldt " descriptor: whole seconds since 1904-01-01 in t's wall clock.
func Date(t time.Time) *Descriptor {
	wall := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
	secs := wall.Unix() - dateEpoch.Unix()
	return &Descriptor{Type: TypeDate, Data: binary.LittleEndian.AppendUint64(nil, uint64(secs))}
}

// Raw returns a descriptor with an arbitrary type code and payload.
func Raw(code Code, data []byte) *Descriptor {
	return &Descriptor{Type: code, Data: data}
}

// Object returns an object specifier for an element of class selected by form and seld inside
// from. A nil from means the runtime's root container.
func Object(class, form string, seld, from *Descriptor) *Descriptor {
	if from == nil {
		from = Null()
	}
	return &Descriptor{
		Type: TypeObject,
		Fields: []Field{
			{Key: KeyWant, Value: TypeCode(class)},
			{Key: KeyForm, Value: Enum(form)},
			{Key: KeySeld, Value: seld},
			{Key: KeyFrom, Value: from},
		},
	}
}

// Application returns the object specifier for an application addressed by name.
func Application(name string) *Descriptor {
	return Object(string(TypeApplication), FormName, UTF8(name), nil)
}
