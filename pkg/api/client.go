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

// Package api is the HTTP client for the dataset service. The upstream
// contract is not fully specified and observed deployments differ, so every
// operation probes a short ordered list of candidate endpoint shapes and
// accepts the first usable response. Probing is endpoint-shape discovery,
// not retry: each candidate is tried exactly once per call.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/muzammilkader/deployment-app/pkg/codec"
	"github.com/muzammilkader/deployment-app/pkg/dataset"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

const (
	authTimeout = 12 * time.Second
	dataTimeout = 30 * time.Second

	// snippetLen bounds response bodies carried inside error values.
	snippetLen = 200

	// minTokenLen is the shortest string value the fallback token
	// extraction will accept; anything shorter is assumed to be a
	// status word, not a credential.
	minTokenLen = 10
)

// endpoint is one candidate shape for an operation: an HTTP verb plus a
// path template in which {code} stands for the dataset identifier.
type endpoint struct {
	method string
	path   string
}

func (e endpoint) resolve(base, code string) string {
	path := strings.ReplaceAll(e.path, "{code}", url.PathEscape(code))
	return base + path
}

// Candidate shapes, tried in order. The primary shape for each operation
// comes first; the rest are compatibility shims for deployments with older
// path layouts.
var (
	authPaths = []string{"/auth/login", "/authenticate", "/auth"}

	listEndpoints = []endpoint{
		{http.MethodPost, "/dataset/list"},
		{http.MethodGet, "/datasets"},
		{http.MethodGet, "/data/datasets"},
		{http.MethodGet, "/api/datasets"},
	}

	fetchEndpoints = []endpoint{
		{http.MethodGet, "/dataset/get/{code}"},
		{http.MethodGet, "/datasets/{code}"},
		{http.MethodGet, "/data/datasets/{code}"},
		{http.MethodGet, "/api/datasets/{code}"},
	}

	upsertEndpoints = []endpoint{
		{http.MethodPut, "/datasets/{code}"},
		{http.MethodPost, "/datasets"},
		{http.MethodPost, "/datasets/{code}/upsert"},
	}

	deleteEndpoint = endpoint{http.MethodDelete, "/datasets/{code}"}
)

// Client talks to one environment of the dataset service.
type Client struct {
	baseURL     string
	tokenHeader string
	auth        *http.Client
	data        *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTokenHeader sends the auth token in the named custom header (e.g.
// X-KSYS-TOKEN) instead of Authorization: Bearer.
func WithTokenHeader(name string) Option {
	return func(c *Client) {
		c.tokenHeader = name
	}
}

// New creates a client for the environment at baseURL. A bare host gets an
// https scheme; an explicit scheme is kept as-is.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: normalizeBaseURL(baseURL),
		auth:    &http.Client{Timeout: authTimeout},
		data:    &http.Client{Timeout: dataTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalized base URL the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

func normalizeBaseURL(u string) string {
	u = strings.TrimSuffix(strings.TrimSpace(u), "/")
	if !strings.Contains(u, "://") {
		u = "https://" + u
	}
	return u
}

// send issues a single request and returns the status and body. No
// retries.
func (c *Client) send(ctx context.Context, hc *http.Client, method, reqURL, token string, payload []byte) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return 0, nil, errors.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		if c.tokenHeader != "" {
			req.Header.Set(c.tokenHeader, token)
		} else {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := hc.Do(req)
	if err != nil {
		return 0, nil, errors.Errorf("%s %s: %w", method, reqURL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, errors.Errorf("reading response from %s: %w", reqURL, err)
	}
	return resp.StatusCode, data, nil
}

type probeResult struct {
	url    string
	status int
	body   []byte
}

// probe tries each candidate in order and returns the first response the
// accept function takes, plus an attempt record for every candidate that
// failed before it. A nil result means every candidate was exhausted.
func (c *Client) probe(ctx context.Context, hc *http.Client, token string, candidates []endpoint, code string, payload []byte, accept func(status int, body []byte) bool) (*probeResult, []Attempt) {
	logger := zerolog.Ctx(ctx)
	var attempts []Attempt
	for _, ep := range candidates {
		reqURL := ep.resolve(c.baseURL, code)
		status, body, err := c.send(ctx, hc, ep.method, reqURL, token, payload)
		if err != nil {
			logger.Debug().Str("url", reqURL).Err(err).Msg("candidate endpoint failed")
			attempts = append(attempts, Attempt{URL: reqURL, Status: "err", Snippet: err.Error()})
			continue
		}
		if !accept(status, body) {
			logger.Debug().Str("url", reqURL).Int("status", status).Msg("candidate endpoint rejected")
			attempts = append(attempts, Attempt{URL: reqURL, Status: strconv.Itoa(status), Snippet: snippet(body)})
			continue
		}
		logger.Debug().Str("url", reqURL).Int("status", status).Msg("candidate endpoint accepted")
		return &probeResult{url: reqURL, status: status, body: body}, attempts
	}
	return nil, attempts
}

func snippet(body []byte) string {
	s := string(body)
	if len(s) > snippetLen {
		s = s[:snippetLen]
	}
	return s
}

// Authenticate exchanges credentials for a bearer token. Candidate auth
// endpoints are tried in order; the first that returns 200/201 with a
// non-empty extractable token wins. Exhaustion of all candidates yields an
// *AuthError carrying the last underlying failure.
func (c *Client) Authenticate(ctx context.Context, username, password, clientName string) (string, error) {
	logger := zerolog.Ctx(ctx)

	payload, err := json.Marshal(map[string]string{
		"username":   username,
		"password":   password,
		"clientName": clientName,
	})
	if err != nil {
		return "", errors.Errorf("marshaling credentials: %w", err)
	}

	var lastErr error
	for _, path := range authPaths {
		reqURL := c.baseURL + path
		status, body, err := c.send(ctx, c.auth, http.MethodPost, reqURL, "", payload)
		if err != nil {
			lastErr = err
			continue
		}
		if status != http.StatusOK && status != http.StatusCreated {
			lastErr = errors.Errorf("%d %s", status, snippet(body))
			continue
		}
		if token := extractToken(body); token != "" {
			logger.Debug().Str("url", reqURL).Msg("authenticated")
			return token, nil
		}
		lastErr = errors.Errorf("no token in response from %s", reqURL)
	}
	return "", &AuthError{BaseURL: c.baseURL, Last: lastErr}
}

// extractToken pulls a token out of an auth response. In order: a known
// token field, the first string value longer than minTokenLen found
// anywhere in the parsed JSON, the trimmed raw text when the body is not
// JSON at all.
func extractToken(body []byte) string {
	v, err := codec.ParseJSON(body)
	if err != nil {
		return strings.Trim(strings.TrimSpace(string(body)), `"`)
	}
	for _, key := range []string{"token", "access_token", "accessToken"} {
		if token, ok := findStringField(v, key); ok && token != "" {
			return token
		}
	}
	if token, ok := findLongString(v); ok {
		return token
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// findStringField does a depth-first search for a string-valued member
// named key.
func findStringField(v any, key string) (string, bool) {
	switch t := v.(type) {
	case *codec.Object:
		for _, m := range t.Members {
			if m.Key == key {
				if s, ok := m.Value.(string); ok {
					return s, true
				}
			}
		}
		for _, m := range t.Members {
			if s, ok := findStringField(m.Value, key); ok {
				return s, true
			}
		}
	case []any:
		for _, el := range t {
			if s, ok := findStringField(el, key); ok {
				return s, true
			}
		}
	}
	return "", false
}

// findLongString does a depth-first search for the first string value
// longer than minTokenLen. Best-effort guess at an unspecified upstream
// token shape.
func findLongString(v any) (string, bool) {
	switch t := v.(type) {
	case *codec.Object:
		for _, m := range t.Members {
			if s, ok := findLongString(m.Value); ok {
				return s, true
			}
		}
	case []any:
		for _, el := range t {
			if s, ok := findLongString(el); ok {
				return s, true
			}
		}
	case string:
		if len(t) > minTokenLen {
			return t, true
		}
	}
	return "", false
}

// ListCodes returns the dataset identifiers available on the environment,
// in listing order. Duplicates from upstream propagate as duplicates.
func (c *Client) ListCodes(ctx context.Context, token string) ([]string, error) {
	res, _ := c.probe(ctx, c.data, token, listEndpoints, "", nil, func(status int, _ []byte) bool {
		return status == http.StatusOK
	})
	if res == nil {
		return nil, &ListError{BaseURL: c.baseURL, Reason: "no listing endpoint returned HTTP 200"}
	}

	v, err := codec.ParseJSON(res.body)
	if err != nil {
		return nil, &ListError{BaseURL: c.baseURL, Reason: fmt.Sprintf("listing response from %s is not valid JSON", res.url)}
	}

	items := normalizeListing(v)
	codes := make([]string, 0, len(items))
	for _, item := range items {
		codes = append(codes, identifierOf(item))
	}
	return codes, nil
}

// normalizeListing flattens the heterogeneous listing envelopes observed
// across deployments into a plain slice. A successful response is never
// dropped: anything unrecognized becomes a one-element list.
func normalizeListing(v any) []any {
	if list, ok := v.([]any); ok {
		return list
	}
	if obj, ok := v.(*codec.Object); ok {
		for _, key := range []string{"items", "datasets", "data", "values"} {
			if inner, ok := obj.Get(key); ok {
				if list, ok := inner.([]any); ok {
					return list
				}
			}
		}
		if inner, ok := obj.Get("value"); ok {
			if innerObj, ok := inner.(*codec.Object); ok {
				return normalizeListing(innerObj)
			}
		}
	}
	return []any{v}
}

// identifierOf derives an identifier for a listed element: the first
// present of the known code fields, else a serialized form of the element
// itself, so every listed item gets some identifier.
func identifierOf(v any) string {
	if obj, ok := v.(*codec.Object); ok {
		for _, key := range []string{"code", "datasetCode", "id", "name"} {
			if val, ok := obj.Get(key); ok {
				return stringify(val)
			}
		}
	}
	return stringify(v)
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	raw, err := codec.MarshalValue(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(raw)
}

// FetchDataset retrieves one dataset. 404s and other non-200 statuses
// skip to the next candidate shape, as does a 200 whose body is not a
// parseable record.
func (c *Client) FetchDataset(ctx context.Context, token, code string) (*dataset.Record, error) {
	var rec *dataset.Record
	accept := func(status int, body []byte) bool {
		if status != http.StatusOK {
			return false
		}
		v, err := codec.ParseJSON(body)
		if err != nil {
			return false
		}
		parsed, err := dataset.FromEnvelope(v)
		if err != nil {
			return false
		}
		rec = parsed
		return true
	}

	res, _ := c.probe(ctx, c.data, token, fetchEndpoints, code, nil, accept)
	if res == nil {
		return nil, &FetchError{Code: code}
	}
	if rec.Code == "" {
		rec.Code = code
	}
	return rec, nil
}

// UpsertDataset creates or updates a dataset on the environment. The three
// candidate shapes are tried in order and the first 200/201 wins; only
// after all three fail is an *UpsertError raised, aggregating every
// attempt. The result is the response JSON, or the raw text wrapped in a
// status_text object when the response is not JSON.
func (c *Client) UpsertDataset(ctx context.Context, token, code string, rec *dataset.Record) (any, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, errors.Errorf("marshaling dataset %q: %w", code, err)
	}

	res, attempts := c.probe(ctx, c.data, token, upsertEndpoints, code, payload, func(status int, _ []byte) bool {
		return status == http.StatusOK || status == http.StatusCreated
	})
	if res == nil {
		return nil, &UpsertError{Code: code, Attempts: attempts}
	}

	if v, err := codec.ParseJSON(res.body); err == nil {
		return v, nil
	}
	result := &codec.Object{}
	result.Set("status_text", strings.TrimSpace(string(res.body)))
	return result, nil
}

// DeleteDataset removes a dataset from the environment. A single DELETE,
// no fallback shapes; 200 and 204 are success.
func (c *Client) DeleteDataset(ctx context.Context, token, code string) error {
	reqURL := deleteEndpoint.resolve(c.baseURL, code)
	status, body, err := c.send(ctx, c.data, deleteEndpoint.method, reqURL, token, nil)
	if err != nil {
		return errors.Errorf("deleting dataset %q: %w", code, err)
	}
	if status != http.StatusOK && status != http.StatusNoContent {
		return &DeleteError{Code: code, Status: status, Body: snippet(body)}
	}
	return nil
}
