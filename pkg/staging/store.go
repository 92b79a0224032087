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

// Package staging is the on-disk holding area for dataset records between
// fetch and upsert. One human-readable JSON file per dataset identifier,
// safe to hand-edit, plus a codes file recording the identifiers pulled
// from the source environment.
package staging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/muzammilkader/deployment-app/pkg/codec"
	"github.com/muzammilkader/deployment-app/pkg/dataset"
	"gitlab.com/tozd/go/errors"
)

const codesFile = "dataset_codes.json"

// ValidationError reports that a hand-edited payload is not well-formed
// JSON. The previously staged copy is left untouched.
type ValidationError struct {
	Code   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("edited payload for %q is not valid JSON: %s", e.Code, e.Reason)
}

// NotStagedError reports an operation on an identifier with no local copy.
type NotStagedError struct {
	Code string
}

func (e *NotStagedError) Error() string {
	return fmt.Sprintf("dataset %q has no local staged copy", e.Code)
}

// Store persists one record per identifier under a dedicated directory.
type Store struct {
	dir string
}

// New creates a store rooted at dir. The directory is created lazily on
// first save.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the staging directory path.
func (s *Store) Dir() string { return s.dir }

// Path returns the staging file path for a dataset identifier.
func (s *Store) Path(code string) string {
	return filepath.Join(s.dir, fileName(code)+".json")
}

// fileName makes an identifier usable as a file name. Identifiers derived
// from serialized listing elements can contain path separators.
func fileName(code string) string {
	code = strings.ReplaceAll(code, string(os.PathSeparator), "_")
	return strings.ReplaceAll(code, "/", "_")
}

// Save persists a record under its identifier, fully replacing any prior
// file. The write goes to a temp file first and is renamed into place, so
// a reader of the same path never observes a partial record. The staged
// form carries the record's decoded-text marker so a reload restores the
// same field representations.
func (s *Store) Save(code string, rec *dataset.Record) error {
	data, err := codec.MarshalIndent(rec.StagedDocument())
	if err != nil {
		return errors.Errorf("serializing dataset %q: %w", code, err)
	}
	return s.writeAtomic(code, append(data, '\n'))
}

// SaveRaw validates a hand-edited payload and persists it. Malformed JSON
// is rejected with a *ValidationError before anything touches the disk.
func (s *Store) SaveRaw(code string, data []byte) error {
	if _, err := codec.ParseJSON(data); err != nil {
		return &ValidationError{Code: code, Reason: err.Error()}
	}
	return s.writeAtomic(code, data)
}

func (s *Store) writeAtomic(code string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Errorf("creating staging directory: %w", err)
	}
	path := s.Path(code)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Errorf("writing staging file for %q: %w", code, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Errorf("replacing staging file for %q: %w", code, err)
	}
	return nil
}

// Has reports whether an identifier has a staged copy.
func (s *Store) Has(code string) (bool, error) {
	_, err := os.Stat(s.Path(code))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.Errorf("checking staging file for %q: %w", code, err)
	}
	return true, nil
}

// Load returns the staged record for an identifier. A missing identifier
// returns ok=false and no error, so callers can tell "not yet fetched"
// apart from a real failure.
func (s *Store) Load(code string) (*dataset.Record, bool, error) {
	data, err := os.ReadFile(s.Path(code))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Errorf("reading staging file for %q: %w", code, err)
	}
	var rec dataset.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, false, errors.Errorf("parsing staging file for %q: %w", code, err)
	}
	if rec.Code == "" {
		rec.Code = code
	}
	return &rec, true, nil
}

// List returns the identifiers with a staged copy, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Errorf("reading staging directory: %w", err)
	}
	var codes []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") || name == codesFile {
			continue
		}
		codes = append(codes, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(codes)
	return codes, nil
}

// SaveCodes records the identifiers pulled from the source environment.
func (s *Store) SaveCodes(codes []string) error {
	data, err := json.MarshalIndent(codes, "", "  ")
	if err != nil {
		return errors.Errorf("serializing codes: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Errorf("creating staging directory: %w", err)
	}
	path := filepath.Join(s.dir, codesFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return errors.Errorf("writing codes file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Errorf("replacing codes file: %w", err)
	}
	return nil
}

// LoadCodes returns the pulled identifiers, or nil when no pull has
// happened yet.
func (s *Store) LoadCodes() ([]string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, codesFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Errorf("reading codes file: %w", err)
	}
	var codes []string
	if err := json.Unmarshal(data, &codes); err != nil {
		return nil, errors.Errorf("parsing codes file: %w", err)
	}
	return codes, nil
}

// Clear removes the whole staging directory tree. Used to reset between
// migration runs so destination-shaped data from a previous environment
// pair never leaks into a new one. Safe to call twice; the second call is
// a no-op.
func (s *Store) Clear() error {
	if err := os.RemoveAll(s.dir); err != nil {
		return errors.Errorf("clearing staging directory: %w", err)
	}
	return nil
}
