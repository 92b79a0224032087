// Copyright 2026 Muzammil Kader
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package codec

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"

	"gitlab.com/tozd/go/errors"
)

// Object is a JSON object that keeps its members in the order they were
// parsed or set. The standard library's map-based representation re-sorts
// keys on marshal, which would make a decode→encode round trip of a dataset
// body reorder every object it touches.
type Object struct {
	Members []Member
}

// Member is a single key/value pair of an Object.
type Member struct {
	Key   string
	Value any
}

// Get returns the value for key and whether the key is present.
func (o *Object) Get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	for _, m := range o.Members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// Set replaces the value for key in place, or appends a new member if the
// key is not present.
func (o *Object) Set(key string, value any) {
	for i, m := range o.Members {
		if m.Key == key {
			o.Members[i].Value = value
			return
		}
	}
	o.Members = append(o.Members, Member{Key: key, Value: value})
}

// Delete removes the member for key, if present.
func (o *Object) Delete(key string) {
	for i, m := range o.Members {
		if m.Key == key {
			o.Members = append(o.Members[:i], o.Members[i+1:]...)
			return
		}
	}
}

// Len returns the number of members.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.Members)
}

// MarshalJSON writes the object with members in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeValue(&buf, o); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON parses data into the object, preserving member order.
func (o *Object) UnmarshalJSON(data []byte) error {
	v, err := ParseJSON(data)
	if err != nil {
		return err
	}
	parsed, ok := v.(*Object)
	if !ok {
		return errors.Errorf("expected JSON object, got %T", v)
	}
	o.Members = parsed.Members
	return nil
}

// ParseJSON parses JSON text into the codec value model: *Object for
// objects, []any for arrays, and string, json.Number, bool or nil for
// scalars.
func ParseJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := parseValue(dec)
	if err != nil {
		return nil, err
	}
	// Anything after the first value means the input was not a single
	// JSON document.
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.Errorf("trailing data after JSON value")
	}
	return v, nil
}

func parseValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Errorf("reading JSON token: %w", err)
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		obj := &Object{}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, errors.Errorf("reading object key: %w", err)
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, errors.Errorf("object key is not a string: %v", keyTok)
			}
			val, err := parseValue(dec)
			if err != nil {
				return nil, err
			}
			obj.Members = append(obj.Members, Member{Key: key, Value: val})
		}
		if _, err := dec.Token(); err != nil {
			return nil, errors.Errorf("reading object close: %w", err)
		}
		return obj, nil
	case '[':
		arr := []any{}
		for dec.More() {
			val, err := parseValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, errors.Errorf("reading array close: %w", err)
		}
		return arr, nil
	}
	return nil, errors.Errorf("unexpected JSON delimiter %q", delim)
}

// MarshalValue renders a codec value as compact JSON text. Values outside
// the codec model fall back to encoding/json.
func MarshalValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeValue(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalIndent renders a codec value as indented JSON text, for staging
// files that a human will read and edit.
func MarshalIndent(v any) ([]byte, error) {
	compact, err := MarshalValue(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return nil, errors.Errorf("indenting JSON: %w", err)
	}
	return buf.Bytes(), nil
}

func writeValue(buf *bytes.Buffer, v any) error {
	switch t := v.(type) {
	case nil:
		buf.WriteString("null")
	case *Object:
		buf.WriteByte('{')
		for i, m := range t.Members {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(m.Key)
			if err != nil {
				return errors.Errorf("marshaling object key %q: %w", m.Key, err)
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := writeValue(buf, m.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case []any:
		buf.WriteByte('[')
		for i, el := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(buf, el); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case string:
		s, err := json.Marshal(t)
		if err != nil {
			return errors.Errorf("marshaling string: %w", err)
		}
		buf.Write(s)
	case json.Number:
		buf.WriteString(t.String())
	case bool:
		buf.WriteString(strconv.FormatBool(t))
	default:
		// Not a value this package produced. Let encoding/json deal
		// with it.
		raw, err := json.Marshal(t)
		if err != nil {
			return errors.Errorf("marshaling %T: %w", t, err)
		}
		buf.Write(raw)
	}
	return nil
}
