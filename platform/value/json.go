package value

import (
	"bytes"
	"encoding/json"
	"math"
)

// MarshalJSON renders Null as JSON null.
func (Null) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// MarshalJSON renders finite reals as numbers that keep a fraction or exponent, so 2.0 does
// not read back as an integer. Non-finite reals are strings.
func (r Real) MarshalJSON() ([]byte, error) {
	f := float64(r)
	switch {
	case math.IsNaN(f):
		return []byte(`"NaN"`), nil
	case math.IsInf(f, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Inf"`), nil
	}
	return []byte(formatReal(f)), nil
}

// MarshalJSON renders the list as an array; a nil list is an empty array.
func (l List) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, v := range l {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSON(&buf, v); err != nil {
			return nil, err
		}
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// MarshalJSON renders the record as an object with keys in record order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	i := 0
	for k, v := range r.All() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if err := writeJSON(&buf, v); err != nil {
			return nil, err
		}
		i++
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type referenceJSON struct {
	Class  string `json:"class"`
	Handle string `json:"handle"`
}

// MarshalJSON renders the reference as {"$reference": {"class": ..., "handle": ...}}.
func (r Reference) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]referenceJSON{
		"$reference": {Class: r.Class, Handle: r.Handle},
	})
}

type unrepresentableJSON struct {
	Tag    string `json:"tag"`
	Raw    []byte `json:"raw,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// MarshalJSON renders the fallback as {"$unrepresentable": {...}} with raw bytes in base64.
func (u Unrepresentable) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]unrepresentableJSON{
		"$unrepresentable": {Tag: u.Tag, Raw: u.Raw, Reason: u.Reason},
	})
}

func writeJSON(buf *bytes.Buffer, v Value) error {
	if v == nil {
		v = Null{}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}

// ToJSON marshals any value, treating a nil Value as null.
func ToJSON(v Value) ([]byte, error) {
	if v == nil {
		v = Null{}
	}
	return json.Marshal(v)
}
