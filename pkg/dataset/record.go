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

// Package dataset defines the record type that moves through the migration
// pipeline, including the two representations its body fields can be in:
// decoded (a native JSON value) or encoded (base64 transport text).
package dataset

import (
	"encoding/json"

	"github.com/muzammilkader/deployment-app/pkg/codec"
	"gitlab.com/tozd/go/errors"
)

type fieldState int

const (
	fieldAbsent fieldState = iota
	fieldDecoded
	fieldEncoded
)

// Field is a body or bodyMeta value in exactly one of its two
// representations. Tracking the representation explicitly, instead of
// sniffing the runtime type at every use site, is what keeps a record from
// being encoded or decoded twice.
type Field struct {
	state   fieldState
	decoded any
	encoded string
}

// Decoded wraps a native JSON value.
func Decoded(v any) Field {
	return Field{state: fieldDecoded, decoded: v}
}

// Encoded wraps transport-encoded text.
func Encoded(s string) Field {
	return Field{state: fieldEncoded, encoded: s}
}

// Absent reports whether the field was missing from the source record.
func (f Field) Absent() bool { return f.state == fieldAbsent }

// IsEncoded reports whether the field holds transport-encoded text.
func (f Field) IsEncoded() bool { return f.state == fieldEncoded }

// IsDecoded reports whether the field holds a native JSON value.
func (f Field) IsDecoded() bool { return f.state == fieldDecoded }

// Value returns the decoded value. Only meaningful when IsDecoded.
func (f Field) Value() any { return f.decoded }

// Text returns the encoded text. Only meaningful when IsEncoded.
func (f Field) Text() string { return f.encoded }

// Decode moves an encoded field to its decoded representation. Text that
// turns out not to be valid base64 is kept as-is but still becomes a
// decoded string value.
func (f Field) Decode() Field {
	if f.state != fieldEncoded {
		return f
	}
	return Decoded(codec.Decode(f.encoded))
}

// Encode moves a decoded value to its encoded representation. Absent and
// already-encoded fields pass through unchanged. Plain text gets the same
// treatment as structured values: serialized as JSON, then wrapped in
// base64.
func (f Field) Encode() (Field, error) {
	if f.state != fieldDecoded {
		return f, nil
	}
	text, err := codec.Encode(f.decoded)
	if err != nil {
		return f, err
	}
	return Encoded(text), nil
}

// wireValue is the field as it appears in a JSON document.
func (f Field) wireValue() any {
	if f.state == fieldEncoded {
		return f.encoded
	}
	return f.decoded
}

// fieldFromWire tags an incoming JSON value: strings arrive transport
// encoded, everything else is already decoded.
func fieldFromWire(v any) Field {
	if s, ok := v.(string); ok {
		return Encoded(s)
	}
	return Decoded(v)
}

// Record is one dataset as the pipeline sees it. Code identifies it within
// an environment. Extra carries any top-level fields the upstream API sent
// beyond the four this tool understands, so an upsert returns everything
// the fetch produced.
type Record struct {
	Code     string
	BodyMeta Field
	Body     Field
	Inputs   Field
	Extra    *codec.Object
}

// FromEnvelope builds a Record from a parsed API response, unwrapping the
// optional {"value": {...}} nesting some deployments use.
func FromEnvelope(v any) (*Record, error) {
	obj, ok := v.(*codec.Object)
	if !ok {
		return nil, errors.Errorf("dataset payload is not a JSON object")
	}
	if inner, ok := obj.Get("value"); ok {
		if innerObj, isObj := inner.(*codec.Object); isObj {
			obj = innerObj
		}
	}

	rec := &Record{Extra: &codec.Object{}}
	for _, m := range obj.Members {
		switch m.Key {
		case "code":
			if s, ok := m.Value.(string); ok {
				rec.Code = s
			} else {
				raw, err := codec.MarshalValue(m.Value)
				if err != nil {
					return nil, err
				}
				rec.Code = string(raw)
			}
		case "bodyMeta":
			rec.BodyMeta = fieldFromWire(m.Value)
		case "body":
			rec.Body = fieldFromWire(m.Value)
		case "inputs":
			rec.Inputs = Decoded(m.Value)
		default:
			rec.Extra.Set(m.Key, m.Value)
		}
	}
	return rec, nil
}

// Document renders the record as an ordered JSON object, the shape used
// both for staging files and for upsert payloads.
func (r *Record) Document() *codec.Object {
	doc := &codec.Object{}
	doc.Set("code", r.Code)
	if !r.BodyMeta.Absent() {
		doc.Set("bodyMeta", r.BodyMeta.wireValue())
	}
	if !r.Body.Absent() {
		doc.Set("body", r.Body.wireValue())
	}
	if !r.Inputs.Absent() {
		doc.Set("inputs", r.Inputs.wireValue())
	}
	if r.Extra != nil {
		for _, m := range r.Extra.Members {
			doc.Set(m.Key, m.Value)
		}
	}
	return doc
}

// decodedFieldsKey marks, inside a staged document, which body fields
// hold decoded plain text. A bare JSON string cannot carry that
// distinction, so without the marker a staged text body would reload
// tagged as transport-encoded and slip past substitution and re-encoding.
// The key is reserved in staged files and never appears on the wire.
const decodedFieldsKey = "decodedFields"

// StagedDocument renders the record for its staging file: the wire
// document plus the decoded-text marker when one is needed.
func (r *Record) StagedDocument() *codec.Object {
	doc := r.Document()
	var names []any
	if r.BodyMeta.IsDecoded() {
		if _, ok := r.BodyMeta.Value().(string); ok {
			names = append(names, "bodyMeta")
		}
	}
	if r.Body.IsDecoded() {
		if _, ok := r.Body.Value().(string); ok {
			names = append(names, "body")
		}
	}
	if len(names) > 0 {
		doc.Set(decodedFieldsKey, names)
	}
	return doc
}

// applyStagedMarker consumes the decoded-text marker written by
// StagedDocument, restoring the representation tag of text body fields.
func (r *Record) applyStagedMarker() {
	if r.Extra == nil {
		return
	}
	v, ok := r.Extra.Get(decodedFieldsKey)
	if !ok {
		return
	}
	r.Extra.Delete(decodedFieldsKey)
	names, ok := v.([]any)
	if !ok {
		return
	}
	for _, name := range names {
		switch name {
		case "bodyMeta":
			if r.BodyMeta.IsEncoded() {
				r.BodyMeta = Decoded(r.BodyMeta.Text())
			}
		case "body":
			if r.Body.IsEncoded() {
				r.Body = Decoded(r.Body.Text())
			}
		}
	}
}

// MarshalJSON renders the record via Document.
func (r *Record) MarshalJSON() ([]byte, error) {
	return codec.MarshalValue(r.Document())
}

// UnmarshalJSON parses a staged or fetched record document.
func (r *Record) UnmarshalJSON(data []byte) error {
	v, err := codec.ParseJSON(data)
	if err != nil {
		return err
	}
	rec, err := FromEnvelope(v)
	if err != nil {
		return err
	}
	rec.applyStagedMarker()
	*r = *rec
	return nil
}

// DecodeBodies moves body and bodyMeta to their decoded representations,
// independently. Inputs and extra fields are never transport encoded.
func (r *Record) DecodeBodies() {
	r.BodyMeta = r.BodyMeta.Decode()
	r.Body = r.Body.Decode()
}

// EncodeBodies moves decoded structured body and bodyMeta values back to
// the transport encoding.
func (r *Record) EncodeBodies() error {
	var err error
	if r.BodyMeta, err = r.BodyMeta.Encode(); err != nil {
		return errors.Errorf("encoding bodyMeta: %w", err)
	}
	if r.Body, err = r.Body.Encode(); err != nil {
		return errors.Errorf("encoding body: %w", err)
	}
	return nil
}

var _ json.Marshaler = (*Record)(nil)
var _ json.Unmarshaler = (*Record)(nil)
