package descriptor

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/encoding/charmap"
)

// ErrInvalidJSON is returned when a JSON descriptor cannot be turned into a native one.
var ErrInvalidJSON = errors.New("invalid descriptor JSON")

// wire is the JSON form of a descriptor exchanged with plugin runtimes. Scalars may carry
// their payload as raw base64 bytes in "data" or in the friendlier "text", "int", "real" and
// "bool" members, which are encoded into the native payload for the declared type.
type wire struct {
	Type   string        `json:"type"`
	Data   []byte        `json:"data,omitempty"`
	Text   *string       `json:"text,omitempty"`
	Int    json.Number   `json:"int,omitempty"`
	Real   json.Number   `json:"real,omitempty"`
	Bool   *bool         `json:"bool,omitempty"`
	Items  []*Descriptor `json:"items,omitempty"`
	Fields []wireField   `json:"fields,omitempty"`
}

type wireField struct {
	Key   string      `json:"key"`
	Value *Descriptor `json:"value"`
}

// MarshalJSON always emits the raw payload.
func (d *Descriptor) MarshalJSON() ([]byte, error) {
	w := wire{Type: string(d.Type), Data: d.Data, Items: d.Items}
	for _, f := range d.Fields {
		w.Fields = append(w.Fields, wireField(f))
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the wire form. Numbers are read as text so integers keep full
// precision.
func (d *Descriptor) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var w wire
	if err := dec.Decode(&w); err != nil {
		return err
	}
	if w.Type == "" {
		return fmt.Errorf("%w: missing type", ErrInvalidJSON)
	}

	code := NormalizeCode(w.Type)
	payload, err := encodePayload(code, w)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidJSON, code, err)
	}

	*d = Descriptor{Type: code, Data: payload, Items: w.Items}
	for _, f := range w.Fields {
		d.Fields = append(d.Fields, Field(f))
	}
	if code == TypeList && d.Items == nil {
		d.Items = []*Descriptor{}
	}
	return nil
}

// Decode reads one JSON descriptor.
func Decode(data []byte) (*Descriptor, error) {
	d := &Descriptor{}
	if err := json.Unmarshal(data, d); err != nil {
		return nil, err
	}
	return d, nil
}

func encodePayload(code Code, w wire) ([]byte, error) {
	switch {
	case w.Text != nil:
		return encodeText(code, *w.Text)
	case w.Int != "":
		return encodeInt(code, w.Int)
	case w.Real != "":
		f, err := strconv.ParseFloat(string(w.Real), 64)
		if err != nil {
			return nil, err
		}
		switch code {
		case TypeSingle:
			return binary.LittleEndian.AppendUint32(nil, math.Float32bits(float32(f))), nil
		case TypeDouble:
			return binary.LittleEndian.AppendUint64(nil, math.Float64bits(f)), nil
		}
		return nil, errors.New("real payload for a non-real type")
	case w.Bool != nil:
		switch code {
		case TypeBoolean:
			if *w.Bool {
				return []byte{1}, nil
			}
			return []byte{0}, nil
		case TypeTrue, TypeFalse:
			return nil, nil
		}
		return nil, errors.New("bool payload for a non-boolean type")
	}
	return w.Data, nil
}

func encodeText(code Code, s string) ([]byte, error) {
	switch code {
	case TypeUnicode:
		return Unicode(s).Data, nil
	case TypeText:
		return charmap.Macintosh.NewEncoder().Bytes([]byte(s))
	}
	return []byte(s), nil
}

func encodeInt(code Code, n json.Number) ([]byte, error) {
	if code == TypeUComp {
		u, err := strconv.ParseUint(string(n), 10, 64)
		if err != nil {
			return nil, err
		}
		return binary.LittleEndian.AppendUint64(nil, u), nil
	}

	var bits int
	switch code {
	case TypeShort:
		bits = 16
	case TypeLong:
		bits = 32
	case TypeComp:
		bits = 64
	case TypeMagnitude:
		u, err := strconv.ParseUint(string(n), 10, 32)
		if err != nil {
			return nil, err
		}
		return binary.LittleEndian.AppendUint32(nil, uint32(u)), nil
	default:
		return nil, errors.New("int payload for a non-integer type")
	}

	i, err := strconv.ParseInt(string(n), 10, bits)
	if err != nil {
		return nil, err
	}
	switch bits {
	case 16:
		return binary.LittleEndian.AppendUint16(nil, uint16(i)), nil
	case 32:
		return binary.LittleEndian.AppendUint32(nil, uint32(i)), nil
	}
	return binary.LittleEndian.AppendUint64(nil, uint64(i)), nil
}
