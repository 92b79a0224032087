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

package pipeline

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// Select resolves command-line arguments into dataset identifiers. Each
// argument is either a literal identifier or a doublestar glob matched
// against the pulled codes list. A literal that matches nothing in the
// list is kept as an explicitly named identifier; a glob that matches
// nothing selects nothing. With no arguments, nothing is selected —
// callers that want "everything pulled" opt in via SelectAll. Membership
// is never inferred.
func (s *Session) Select(patterns []string) ([]string, error) {
	known, err := s.store.LoadCodes()
	if err != nil {
		return nil, err
	}

	var selected []string
	seen := map[string]bool{}
	add := func(code string) {
		if !seen[code] {
			seen[code] = true
			selected = append(selected, code)
		}
	}

	for _, pattern := range patterns {
		if !isGlob(pattern) {
			add(pattern)
			continue
		}
		matched := false
		for _, code := range known {
			ok, err := doublestar.Match(pattern, code)
			if err != nil {
				return nil, errors.Errorf("invalid pattern %q: %w", pattern, err)
			}
			if ok {
				matched = true
				add(code)
			}
		}
		if !matched {
			return nil, errors.Errorf("pattern %q matched no pulled dataset codes", pattern)
		}
	}
	return selected, nil
}

// SelectAll returns every identifier recorded by the last pull.
func (s *Session) SelectAll() ([]string, error) {
	codes, err := s.store.LoadCodes()
	if err != nil {
		return nil, err
	}
	return codes, nil
}

func isGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
