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

// Package codec implements the transport encoding used by the dataset API:
// base64 text whose decoded bytes are UTF-8 JSON. Only the body and bodyMeta
// fields of a dataset record travel in this form.
package codec

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"
)

// Encode canonicalizes v to compact JSON and base64-encodes the UTF-8
// bytes. Object member order is preserved, so encoding the same value twice
// yields the same text.
func Encode(v any) (string, error) {
	raw, err := MarshalValue(v)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Decode reverses Encode, best-effort. The decoded bytes are parsed as
// JSON when possible; otherwise they are returned as text with invalid
// byte sequences replaced. Input that is not valid base64 is returned
// unchanged, which makes Decode safe to apply to a field whose encoding
// state is unknown.
func Decode(s string) any {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return s
	}
	if v, err := ParseJSON(raw); err == nil {
		return v
	}
	text := string(raw)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, string(utf8.RuneError))
	}
	return text
}
