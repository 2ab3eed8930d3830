package descriptor

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/robbyt/go-scriptbridge/platform/value"
)

// dateEpoch is the zero point of "ldt " payloads.
var dateEpoch = time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC)

// ToValue maps d into the value model with the default depth bound. The mapping is total.
func ToValue(d *Descriptor) value.Value {
	return ToValueDepth(d, value.DefaultMaxDepth)
}

// ToValueDepth is ToValue with an explicit nesting bound.
func ToValueDepth(d *Descriptor, maxDepth int) value.Value {
	return Convert(d, value.NewPath(maxDepth))
}

// Convert maps d using an existing conversion path.
func Convert(d *Descriptor, path *value.Path) value.Value {
	if d == nil {
		return value.Null{}
	}

	switch d.Type {
	case TypeNull, TypeMissing:
		return value.Null{}
	case TypeTrue:
		return value.Boolean(true)
	case TypeFalse:
		return value.Boolean(false)
	case TypeBoolean:
		if len(d.Data) != 1 {
			return malformed(d, "boolean payload must be 1 byte")
		}
		return value.Boolean(d.Data[0] != 0)

	case TypeShort:
		if len(d.Data) != 2 {
			return malformed(d, "short payload must be 2 bytes")
		}
		return value.Integer(int16(binary.LittleEndian.Uint16(d.Data)))
	case TypeLong:
		if len(d.Data) != 4 {
			return malformed(d, "long payload must be 4 bytes")
		}
		return value.Integer(int32(binary.LittleEndian.Uint32(d.Data)))
	case TypeComp:
		if len(d.Data) != 8 {
			return malformed(d, "comp payload must be 8 bytes")
		}
		return value.Integer(int64(binary.LittleEndian.Uint64(d.Data)))
	case TypeMagnitude:
		if len(d.Data) != 4 {
			return malformed(d, "magnitude payload must be 4 bytes")
		}
		return value.Integer(binary.LittleEndian.Uint32(d.Data))
	case TypeUComp:
		if len(d.Data) != 8 {
			return malformed(d, "ucom payload must be 8 bytes")
		}
		u := binary.LittleEndian.Uint64(d.Data)
		if u > math.MaxInt64 {
			return value.Unrepresentable{
				Tag:    string(d.Type),
				Raw:    d.Data,
				Reason: "integer " + strconv.FormatUint(u, 10) + " exceeds the signed 64-bit range",
			}
		}
		return value.Integer(u)

	case TypeSingle:
		if len(d.Data) != 4 {
			return malformed(d, "single payload must be 4 bytes")
		}
		return value.Real(math.Float32frombits(binary.LittleEndian.Uint32(d.Data)))
	case TypeDouble:
		if len(d.Data) != 8 {
			return malformed(d, "double payload must be 8 bytes")
		}
		return value.Real(math.Float64frombits(binary.LittleEndian.Uint64(d.Data)))

	case TypeUTF8:
		if !utf8.Valid(d.Data) {
			return malformed(d, "invalid UTF-8")
		}
		return value.Text(d.Data)
	case TypeUnicode:
		return decodeText(d, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder().Bytes)
	case TypeText:
		return decodeText(d, charmap.Macintosh.NewDecoder().Bytes)

	case TypeList:
		return convertList(d, path)
	case TypeRecord:
		return convertRecord(d, path)
	case TypeObject:
		return convertObject(d, path)

	case TypeAlias:
		return reference(d, "alias")
	case TypeFileURL:
		return reference(d, "file")
	case TypeEnumerated:
		return reference(d, "constant")
	case TypeType:
		return reference(d, "class")

	case TypeDate:
		if len(d.Data) != 8 {
			return malformed(d, "date payload must be 8 bytes")
		}
		secs := int64(binary.LittleEndian.Uint64(d.Data))
		return value.Unrepresentable{
			Tag:    string(d.Type),
			Raw:    d.Data,
			Reason: "date " + time.Unix(dateEpoch.Unix()+secs, 0).UTC().Format(time.RFC3339) + " has no value variant",
		}
	case TypeProcess:
		return value.Unrepresentable{Tag: string(d.Type), Raw: d.Data, Reason: "process serial numbers are host specific"}
	}

	return value.Unrepresentable{
		Tag:    string(d.Type),
		Raw:    d.Data,
		Reason: "no mapping for descriptor type",
	}
}

func malformed(d *Descriptor, reason string) value.Unrepresentable {
	return value.Unrepresentable{Tag: string(d.Type), Raw: d.Data, Reason: "malformed: " + reason}
}

func decodeText(d *Descriptor, decode func([]byte) ([]byte, error)) value.Value {
	out, err := decode(d.Data)
	if err != nil {
		return malformed(d, err.Error())
	}
	return value.Text(out)
}

func reference(d *Descriptor, class string) value.Value {
	if !utf8.Valid(d.Data) {
		return value.Unrepresentable{Tag: string(d.Type), Raw: d.Data, Reason: "binary " + class + " payload"}
	}
	return value.Reference{Class: class, Handle: string(d.Data)}
}

func convertList(d *Descriptor, path *value.Path) value.Value {
	leave, err := path.Enter(d)
	if err != nil {
		return value.Degraded(string(d.Type), nil, err)
	}
	defer leave()

	out := make(value.List, len(d.Items))
	for i, item := range d.Items {
		out[i] = Convert(item, path)
	}
	return out
}

func convertRecord(d *Descriptor, path *value.Path) value.Value {
	leave, err := path.Enter(d)
	if err != nil {
		return value.Degraded(string(d.Type), nil, err)
	}
	defer leave()

	rec := value.NewRecord(len(d.Fields))
	for _, f := range d.Fields {
		if f.Key == KeyUserFields && f.Value != nil && f.Value.Type == TypeList {
			setUserFields(rec, f.Value, path)
			continue
		}
		rec.Set(f.Key, Convert(f.Value, path))
	}
	return rec
}

// setUserFields flattens the alternating key/value list that carries user defined record keys.
func setUserFields(rec *value.Record, list *Descriptor, path *value.Path) {
	leave, err := path.Enter(list)
	if err != nil {
		rec.Set(KeyUserFields, value.Degraded(string(list.Type), nil, err))
		return
	}
	defer leave()

	items := list.Items
	for i := 0; i+1 < len(items); i += 2 {
		key, ok := Convert(items[i], path).(value.Text)
		if !ok {
			key = value.Text(fmt.Sprintf("%s%d", KeyUserFields, i/2))
		}
		rec.Set(string(key), Convert(items[i+1], path))
	}
	if len(items)%2 == 1 {
		rec.Set(KeyUserFields, Convert(items[len(items)-1], path))
	}
}

func convertObject(d *Descriptor, path *value.Path) value.Value {
	leave, err := path.Enter(d)
	if err != nil {
		return value.Degraded(string(d.Type), nil, err)
	}
	defer leave()

	want, ok := d.Field(KeyWant)
	if !ok || want == nil {
		return malformed(d, "object specifier without a class")
	}
	handle, err := renderSpecifier(d, path)
	if err != nil {
		return malformed(d, err.Error())
	}
	return value.Reference{Class: className(string(want.Data)), Handle: handle}
}

// renderSpecifier writes an object specifier chain the way a script would address it, for
// example `window 1 of application "Finder"`.
func renderSpecifier(d *Descriptor, path *value.Path) (string, error) {
	var parts []string
	var leaves []func()
	defer func() {
		for i := len(leaves) - 1; i >= 0; i-- {
			leaves[i]()
		}
	}()

	for cur := d; cur != nil && cur.Type == TypeObject; {
		part, err := renderElement(cur, path)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)

		from, ok := cur.Field(KeyFrom)
		if !ok || from == nil || from.Type == TypeNull {
			break
		}
		if from.Type != TypeObject {
			return "", fmt.Errorf("container of type %q", from.Type)
		}
		leave, err := path.Enter(from)
		if err != nil {
			return "", err
		}
		leaves = append(leaves, leave)
		cur = from
	}
	return strings.Join(parts, " of "), nil
}

func renderElement(d *Descriptor, path *value.Path) (string, error) {
	want, _ := d.Field(KeyWant)
	form, _ := d.Field(KeyForm)
	seld, _ := d.Field(KeySeld)
	if want == nil || form == nil {
		return "", fmt.Errorf("incomplete object specifier")
	}
	class := className(string(want.Data))
	sel := Convert(seld, path)

	switch string(form.Data) {
	case FormText:
		if t, ok := sel.(value.Text); ok {
			return string(t), nil
		}
	case FormIndex, FormAbsPos:
		return class + " " + plain(sel), nil
	case FormName:
		return class + " " + sel.String(), nil
	case FormID:
		return class + " id " + sel.String(), nil
	case FormProp:
		return plain(sel), nil
	}
	return class + " " + plain(sel), nil
}

// plain renders a selector without quoting bare constants.
func plain(v value.Value) string {
	switch x := v.(type) {
	case value.Text:
		return string(x)
	case value.Reference:
		return x.Handle
	}
	return v.String()
}

var classNames = map[string]string{
	string(TypeApplication): "application",
}

func className(code string) string {
	if name, ok := classNames[code]; ok {
		return name
	}
	return strings.TrimSpace(code)
}
