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

package api

import (
	"fmt"
	"strings"
)

// AuthError reports that every candidate authentication endpoint was
// exhausted without producing a usable token. Last carries the final
// underlying error or status observed.
type AuthError struct {
	BaseURL string
	Last    error
}

func (e *AuthError) Error() string {
	if e.Last == nil {
		return fmt.Sprintf("authentication failed for all endpoints on %s", e.BaseURL)
	}
	return fmt.Sprintf("authentication failed for all endpoints on %s, last error: %v", e.BaseURL, e.Last)
}

func (e *AuthError) Unwrap() error { return e.Last }

// ListError reports that no listing endpoint produced a usable dataset
// list.
type ListError struct {
	BaseURL string
	Reason  string
}

func (e *ListError) Error() string {
	return fmt.Sprintf("listing datasets on %s: %s", e.BaseURL, e.Reason)
}

// FetchError reports that a dataset could not be retrieved from any
// candidate endpoint.
type FetchError struct {
	Code string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch dataset %q from any known endpoint", e.Code)
}

// Attempt records one failed upsert candidate for diagnosis. Status is the
// HTTP status code as text, or "err" when the request itself failed.
type Attempt struct {
	URL     string
	Status  string
	Snippet string
}

func (a Attempt) String() string {
	return fmt.Sprintf("%s [%s] %s", a.URL, a.Status, a.Snippet)
}

// UpsertError aggregates every failed upsert candidate.
type UpsertError struct {
	Code     string
	Attempts []Attempt
}

func (e *UpsertError) Error() string {
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = a.String()
	}
	return fmt.Sprintf("upsert of %q failed: %s", e.Code, strings.Join(parts, "; "))
}

// DeleteError reports a failed delete, carrying the response for
// diagnosis.
type DeleteError struct {
	Code   string
	Status int
	Body   string
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("delete of %q failed (%d): %s", e.Code, e.Status, e.Body)
}
