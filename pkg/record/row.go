// Package record holds the decoded form of one element of an uploaded JSON array.
//
// A Row keeps every value as its raw JSON text, so numbers outside the float64
// safe range keep their exact digits and unknown fields pass through untouched.
package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Kind describes the JSON type of a field value.
type Kind int

const (
	KindMissing Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "missing"
	}
}

// field is a single key/value pair in document order.
type field struct {
	Key   string
	Value json.RawMessage
}

// Row is one element of the uploaded array. Elements that are not JSON objects
// are kept verbatim and report no fields.
type Row struct {
	raw    json.RawMessage
	fields []field
	index  map[string]int
}

// Decode builds a Row from the raw JSON text of one array element.
func Decode(data []byte) (Row, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Row{}, errors.New("empty element")
	}
	if kindOf(data) != KindObject {
		if !json.Valid(data) {
			return Row{}, errors.New("invalid element")
		}
		return Row{raw: append(json.RawMessage(nil), data...)}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if _, err := dec.Token(); err != nil {
		return Row{}, fmt.Errorf("read object start: %w", err)
	}

	r := Row{index: make(map[string]int)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Row{}, fmt.Errorf("read key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return Row{}, fmt.Errorf("unexpected key token %v", tok)
		}

		var val json.RawMessage
		if err := dec.Decode(&val); err != nil {
			return Row{}, fmt.Errorf("read value for %q: %w", key, err)
		}

		// duplicate keys: last value wins, first position is kept
		if i, dup := r.index[key]; dup {
			r.fields[i].Value = val
			continue
		}
		r.index[key] = len(r.fields)
		r.fields = append(r.fields, field{Key: key, Value: val})
	}
	if _, err := dec.Token(); err != nil {
		return Row{}, fmt.Errorf("read object end: %w", err)
	}

	return r, nil
}

// MustDecode is Decode for literals in tests and fixtures.
func MustDecode(s string) Row {
	r, err := Decode([]byte(s))
	if err != nil {
		panic(fmt.Sprintf("record: %v", err))
	}
	return r
}

// IsObject reports whether the element was a JSON object.
func (r Row) IsObject() bool { return r.raw == nil }

func (r Row) Len() int { return len(r.fields) }

func (r Row) Keys() []string {
	keys := make([]string, len(r.fields))
	for i, f := range r.fields {
		keys[i] = f.Key
	}
	return keys
}

// Has reports whether key is an own property of the row.
func (r Row) Has(key string) bool {
	_, ok := r.index[key]
	return ok
}

// Raw returns the untouched JSON text of a field.
func (r Row) Raw(key string) (json.RawMessage, bool) {
	i, ok := r.index[key]
	if !ok {
		return nil, false
	}
	return r.fields[i].Value, true
}

func (r Row) Kind(key string) Kind {
	raw, ok := r.Raw(key)
	if !ok {
		return KindMissing
	}
	return kindOf(raw)
}

// StringValue returns the decoded value of a string field.
func (r Row) StringValue(key string) (string, bool) {
	raw, ok := r.Raw(key)
	if !ok || kindOf(raw) != KindString {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Number returns a numeric field with its exact digits.
func (r Row) Number(key string) (json.Number, bool) {
	raw, ok := r.Raw(key)
	if !ok || kindOf(raw) != KindNumber {
		return "", false
	}
	return json.Number(raw), true
}

// Display renders a field value for messages: strings unquoted, everything
// else as compact JSON, and "(none)" for a missing field.
func (r Row) Display(key string) string {
	raw, ok := r.Raw(key)
	if !ok {
		return "(none)"
	}
	if s, ok := r.StringValue(key); ok {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func (r Row) MarshalJSON() ([]byte, error) {
	if r.raw != nil {
		return r.raw, nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if err := json.Compact(&buf, f.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r *Row) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*r = decoded
	return nil
}

func kindOf(raw []byte) Kind {
	raw = bytes.TrimLeft(raw, " \t\r\n")
	if len(raw) == 0 {
		return KindMissing
	}
	switch raw[0] {
	case '"':
		return KindString
	case '{':
		return KindObject
	case '[':
		return KindArray
	case 't', 'f':
		return KindBool
	case 'n':
		return KindNull
	default:
		return KindNumber
	}
}
