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

// Package pipeline sequences the migration: authenticate, list, fetch,
// transform, stage, upsert. State that the original tool kept in ambient
// UI globals (tokens, mode, staged-file bookkeeping) lives in an explicit
// Session passed to every operation.
package pipeline

import (
	"context"

	"github.com/muzammilkader/deployment-app/pkg/api"
	"github.com/muzammilkader/deployment-app/pkg/codec"
	"github.com/muzammilkader/deployment-app/pkg/config"
	"github.com/muzammilkader/deployment-app/pkg/dataset"
	"github.com/muzammilkader/deployment-app/pkg/staging"
	"github.com/muzammilkader/deployment-app/pkg/text"
	"github.com/rs/zerolog"
)

// Pipeline stages, used to tag per-item failures.
const (
	StageFetch     = "fetch"
	StageStage     = "stage"
	StageTransform = "transform"
	StageWrite     = "write"
)

// ItemFailure is one dataset's failure within a batch, tagged with the
// stage it failed at. Earlier-stage successes for the item are not rolled
// back.
type ItemFailure struct {
	Code  string
	Stage string
	Err   error
}

// BatchResult aggregates per-item outcomes of a batch operation. One
// item's failure never aborts the remaining items, so a result can hold
// both successes and failures. Skipped holds items the operation decided
// not to touch, such as already-staged codes in an unforced fetch.
type BatchResult struct {
	Succeeded []string
	Skipped   []string
	Failures  []ItemFailure
}

func (r *BatchResult) ok(code string) {
	r.Succeeded = append(r.Succeeded, code)
}

func (r *BatchResult) skip(code string) {
	r.Skipped = append(r.Skipped, code)
}

func (r *BatchResult) fail(code, stage string, err error) {
	r.Failures = append(r.Failures, ItemFailure{Code: code, Stage: stage, Err: err})
}

// Session holds the two environment handles, their token slots and the
// staging store. Tokens are absent until authentication succeeds and are
// reset to absent when it fails.
type Session struct {
	cfg    *config.Config
	source *api.Client
	dest   *api.Client
	store  *staging.Store

	sourceToken string
	destToken   string
}

// NewSession builds a session from a validated config.
func NewSession(cfg *config.Config) *Session {
	var opts []api.Option
	if cfg.TokenHeader != "" {
		opts = append(opts, api.WithTokenHeader(cfg.TokenHeader))
	}
	return &Session{
		cfg:    cfg,
		source: api.New(cfg.Source.BaseURL, opts...),
		dest:   api.New(cfg.Destination.BaseURL, opts...),
		store:  staging.New(cfg.StagingDir),
	}
}

// Store exposes the staging store for inspection commands.
func (s *Session) Store() *staging.Store { return s.store }

// Mode returns the operating mode.
func (s *Session) Mode() string { return s.cfg.Mode }

// AuthenticateSource fills the source token slot. On failure the slot is
// left absent, never stale.
func (s *Session) AuthenticateSource(ctx context.Context) error {
	s.sourceToken = ""
	token, err := s.source.Authenticate(ctx, s.cfg.Source.Username, s.cfg.Source.Password, s.cfg.Source.ClientName)
	if err != nil {
		return err
	}
	s.sourceToken = token
	return nil
}

// AuthenticateDestination fills the destination token slot.
func (s *Session) AuthenticateDestination(ctx context.Context) error {
	s.destToken = ""
	token, err := s.dest.Authenticate(ctx, s.cfg.Destination.Username, s.cfg.Destination.Password, s.cfg.Destination.ClientName)
	if err != nil {
		return err
	}
	s.destToken = token
	return nil
}

func (s *Session) ensureSource(ctx context.Context) error {
	if s.sourceToken != "" {
		return nil
	}
	return s.AuthenticateSource(ctx)
}

func (s *Session) ensureDestination(ctx context.Context) error {
	if s.destToken != "" {
		return nil
	}
	return s.AuthenticateDestination(ctx)
}

// PullCodes lists the dataset identifiers on the source environment and
// records them in the staging store.
func (s *Session) PullCodes(ctx context.Context) ([]string, error) {
	if err := s.ensureSource(ctx); err != nil {
		return nil, err
	}
	codes, err := s.source.ListCodes(ctx, s.sourceToken)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveCodes(codes); err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Info().Int("count", len(codes)).Msg("pulled dataset codes")
	return codes, nil
}

// Fetch retrieves each dataset from the source and stages it. In
// migration mode the body fields are decoded before staging so the staged
// file is human-readable and editable. A record is staged only when its
// fetch succeeded. Codes that already have a staged copy are skipped
// unless force is set, so a re-run never silently overwrites hand edits.
func (s *Session) Fetch(ctx context.Context, codes []string, force bool) (*BatchResult, error) {
	if err := s.ensureSource(ctx); err != nil {
		return nil, err
	}
	res := &BatchResult{}
	for _, code := range codes {
		if !force {
			staged, err := s.store.Has(code)
			if err != nil {
				res.fail(code, StageStage, err)
				continue
			}
			if staged {
				zerolog.Ctx(ctx).Debug().Str("code", code).Msg("staged copy exists, skipping fetch")
				res.skip(code)
				continue
			}
		}
		rec, err := s.source.FetchDataset(ctx, s.sourceToken, code)
		if err != nil {
			res.fail(code, StageFetch, err)
			continue
		}
		if s.cfg.Mode == config.ModeMigration {
			rec.DecodeBodies()
		}
		if err := s.store.Save(code, rec); err != nil {
			res.fail(code, StageStage, err)
			continue
		}
		res.ok(code)
	}
	return res, nil
}

// Transform applies the substitution rules to each staged record, with
// optional explicit decode before and encode after. This is the standard
// mode path, where transforms run only when the caller asks; migration
// mode runs them automatically inside Deploy.
func (s *Session) Transform(ctx context.Context, codes []string, decode, encode bool) *BatchResult {
	logger := zerolog.Ctx(ctx)
	res := &BatchResult{}
	for _, code := range codes {
		rec, ok, err := s.store.Load(code)
		if err != nil {
			res.fail(code, StageTransform, err)
			continue
		}
		if !ok {
			res.fail(code, StageTransform, &staging.NotStagedError{Code: code})
			continue
		}
		if decode {
			rec.DecodeBodies()
		}
		count := substituteRecord(rec, s.cfg.Replacements)
		if encode {
			if err := rec.EncodeBodies(); err != nil {
				res.fail(code, StageTransform, err)
				continue
			}
		}
		if err := s.store.Save(code, rec); err != nil {
			res.fail(code, StageStage, err)
			continue
		}
		logger.Debug().Str("code", code).Int("replacements", count).Msg("transformed staged dataset")
		res.ok(code)
	}
	return res
}

// Deploy upserts each staged record onto the destination. In migration
// mode the substitution rules run over the whole record first and the
// body fields are re-encoded after, in that order: substitution operates
// on readable structured text, encoding produces the wire format last. An
// identifier with no staged copy is a per-item failure, never a fetch on
// the caller's behalf.
func (s *Session) Deploy(ctx context.Context, codes []string) (*BatchResult, error) {
	if err := s.ensureDestination(ctx); err != nil {
		return nil, err
	}
	res := &BatchResult{}
	for _, code := range codes {
		rec, ok, err := s.store.Load(code)
		if err != nil {
			res.fail(code, StageStage, err)
			continue
		}
		if !ok {
			res.fail(code, StageStage, &staging.NotStagedError{Code: code})
			continue
		}
		if s.cfg.Mode == config.ModeMigration {
			substituteRecord(rec, s.cfg.Replacements)
			if err := rec.EncodeBodies(); err != nil {
				res.fail(code, StageTransform, err)
				continue
			}
		}
		if _, err := s.dest.UpsertDataset(ctx, s.destToken, code, rec); err != nil {
			res.fail(code, StageWrite, err)
			continue
		}
		res.ok(code)
	}
	return res, nil
}

// Delete removes each named dataset from the destination.
func (s *Session) Delete(ctx context.Context, codes []string) (*BatchResult, error) {
	if err := s.ensureDestination(ctx); err != nil {
		return nil, err
	}
	res := &BatchResult{}
	for _, code := range codes {
		if err := s.dest.DeleteDataset(ctx, s.destToken, code); err != nil {
			res.fail(code, StageWrite, err)
			continue
		}
		res.ok(code)
	}
	return res, nil
}

// Clear resets the staging workspace.
func (s *Session) Clear() error {
	return s.store.Clear()
}

// substituteRecord rewrites every string leaf of the record's decoded
// fields. The identifier itself is exempt: substitution adapts payload
// content, not the dataset's identity, and a rewritten code would break
// the fetch/upsert/delete correspondence.
func substituteRecord(rec *dataset.Record, rules []text.Rule) int {
	if len(rules) == 0 {
		return 0
	}
	count := 0
	if rec.BodyMeta.IsDecoded() {
		res := text.Apply(rec.BodyMeta.Value(), rules)
		rec.BodyMeta = dataset.Decoded(res.Value)
		count += res.ReplacementCount
	}
	if rec.Body.IsDecoded() {
		res := text.Apply(rec.Body.Value(), rules)
		rec.Body = dataset.Decoded(res.Value)
		count += res.ReplacementCount
	}
	if rec.Inputs.IsDecoded() {
		res := text.Apply(rec.Inputs.Value(), rules)
		rec.Inputs = dataset.Decoded(res.Value)
		count += res.ReplacementCount
	}
	if rec.Extra != nil && rec.Extra.Len() > 0 {
		res := text.Apply(rec.Extra, rules)
		if obj, ok := res.Value.(*codec.Object); ok {
			rec.Extra = obj
		}
		count += res.ReplacementCount
	}
	return count
}
