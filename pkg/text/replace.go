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

// Package text rewrites string values inside dataset payloads, the step
// that adapts environment-specific identifiers (schema names, view names)
// when a record moves from one environment to another.
package text

import (
	"strings"

	"github.com/muzammilkader/deployment-app/pkg/codec"
)

// Rule defines a single literal find/replace pair. A rule with an empty
// From is inert: applying it would insert To between every character of
// every string, so it is skipped instead.
type Rule struct {
	// From is the text to replace
	From string `json:"from" yaml:"from" hcl:"from,attr"`

	// To is the replacement text
	To string `json:"to" yaml:"to" hcl:"to,attr"`
}

// Result contains the outcome of applying rules to a value.
type Result struct {
	// Value is the rewritten value
	Value any

	// WasModified indicates if any replacements were made
	WasModified bool

	// ReplacementCount is the number of replacements made
	ReplacementCount int
}

// Apply walks v and rewrites every string leaf with the given rules, in
// order: each rule operates on the output of the previous one. Object keys
// and non-string leaves pass through untouched, so the result always has
// the same shape as the input. Pure, no I/O.
func Apply(v any, rules []Rule) *Result {
	res := &Result{}
	res.Value = apply(v, rules, res)
	return res
}

func apply(v any, rules []Rule, res *Result) any {
	switch t := v.(type) {
	case *codec.Object:
		out := &codec.Object{Members: make([]codec.Member, len(t.Members))}
		for i, m := range t.Members {
			out.Members[i] = codec.Member{Key: m.Key, Value: apply(m.Value, rules, res)}
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, el := range t {
			out[i] = apply(el, rules, res)
		}
		return out
	case string:
		return applyString(t, rules, res)
	default:
		return v
	}
}

func applyString(s string, rules []Rule, res *Result) string {
	for _, rule := range rules {
		if rule.From == "" {
			continue
		}
		count := strings.Count(s, rule.From)
		if count == 0 {
			continue
		}
		s = strings.ReplaceAll(s, rule.From, rule.To)
		res.WasModified = true
		res.ReplacementCount += count
	}
	return s
}
