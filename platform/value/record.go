package value

import (
	"iter"
	"slices"
	"strconv"
	"strings"
)

// Record is an ordered mapping from field keys to values. Keys keep the order in which the
// runtime produced them; setting an existing key replaces the value in place.
type Record struct {
	keys   []string
	fields map[string]Value
}

// NewRecord returns an empty record with room for size fields.
func NewRecord(size int) *Record {
	if size < 0 {
		size = 0
	}
	return &Record{
		keys:   make([]string, 0, size),
		fields: make(map[string]Value, size),
	}
}

// RecordOf builds a record from fields, in order.
func RecordOf(pairs ...Field) *Record {
	r := NewRecord(len(pairs))
	for _, p := range pairs {
		r.Set(p.Key, p.Value)
	}
	return r
}

// Field is one key/value pair of a Record.
type Field struct {
	Key   string
	Value Value
}

// Set stores v under key. A nil v is stored as Null.
func (r *Record) Set(key string, v Value) {
	if v == nil {
		v = Null{}
	}
	if r.fields == nil {
		r.fields = make(map[string]Value)
	}
	if _, exists := r.fields[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.fields[key] = v
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (Value, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.fields[key]
	return v, ok
}

// Len returns the number of fields.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Keys returns the field keys in order.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	return slices.Clone(r.keys)
}

// All iterates the fields in order.
func (r *Record) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if r == nil {
			return
		}
		for _, k := range r.keys {
			if !yield(k, r.fields[k]) {
				return
			}
		}
	}
}

// Fields returns the key/value pairs in order.
func (r *Record) Fields() []Field {
	out := make([]Field, 0, r.Len())
	for k, v := range r.All() {
		out = append(out, Field{Key: k, Value: v})
	}
	return out
}

func (*Record) Kind() Kind { return KindRecord }

// Interface returns a map[string]any. Go maps are unordered; use All or Keys when order matters.
func (r *Record) Interface() any {
	out := make(map[string]any, r.Len())
	for k, v := range r.All() {
		out[k] = v.Interface()
	}
	return out
}

func (r *Record) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	i := 0
	for k, v := range r.All() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.Quote(k))
		sb.WriteString(": ")
		sb.WriteString(v.String())
		i++
	}
	sb.WriteByte('}')
	return sb.String()
}

func (*Record) sealed() {}
