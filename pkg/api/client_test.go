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
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muzammilkader/deployment-app/pkg/dataset"
)

func parseTestRecord(t *testing.T, raw []byte) *dataset.Record {
	t.Helper()
	var rec dataset.Record
	require.NoError(t, json.Unmarshal(raw, &rec))
	return &rec
}

func TestAuthenticate_TokenShapes(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{
			name: "token_field_on_primary_endpoint",
			handler: func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/auth/login" {
					w.Write([]byte(`{"token":"tok-123"}`))
					return
				}
				w.WriteHeader(http.StatusNotFound)
			},
			want: "tok-123",
		},
		{
			name: "access_token_on_fallback_endpoint",
			handler: func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/authenticate" {
					w.WriteHeader(http.StatusCreated)
					w.Write([]byte(`{"access_token":"tok-456"}`))
					return
				}
				w.WriteHeader(http.StatusNotFound)
			},
			want: "tok-456",
		},
		{
			name: "long_string_fallback_in_nested_object",
			handler: func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/auth/login" {
					w.Write([]byte(`{"status":"ok","session":{"key":"a-long-opaque-session-value"}}`))
					return
				}
				w.WriteHeader(http.StatusNotFound)
			},
			want: "a-long-opaque-session-value",
		},
		{
			name: "raw_text_token",
			handler: func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/auth/login" {
					w.Write([]byte("  raw-token-text\n"))
					return
				}
				w.WriteHeader(http.StatusNotFound)
			},
			want: "raw-token-text",
		},
		{
			name: "empty_token_moves_to_next_candidate",
			handler: func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Path {
				case "/auth/login":
					w.Write([]byte(`{"status":"ok"}`))
				case "/authenticate":
					w.Write([]byte(`{"token":"tok-789"}`))
				default:
					w.WriteHeader(http.StatusNotFound)
				}
			},
			want: "tok-789",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			token, err := New(srv.URL).Authenticate(context.Background(), "user", "pass", "client")
			require.NoError(t, err)
			assert.Equal(t, tt.want, token)
		})
	}
}

func TestAuthenticate_SendsCredentialPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "user", body["username"])
		assert.Equal(t, "pass", body["password"])
		assert.Equal(t, "acme", body["clientName"])
		w.Write([]byte(`{"token":"tok"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Authenticate(context.Background(), "user", "pass", "acme")
	require.NoError(t, err)
}

func TestAuthenticate_AllEndpointsFail(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Authenticate(context.Background(), "user", "wrong", "client")
	require.Error(t, err)

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.NotNil(t, authErr.Last)
	assert.Contains(t, authErr.Last.Error(), "401")
	assert.Equal(t, 3, calls, "every candidate endpoint is tried exactly once")
}

func TestListCodes_Envelopes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "bare_list",
			body: `[{"code":"A"},{"code":"B"}]`,
			want: []string{"A", "B"},
		},
		{
			name: "items_envelope",
			body: `{"items":[{"code":"A"},{"id":"B"}]}`,
			want: []string{"A", "B"},
		},
		{
			name: "datasets_envelope",
			body: `{"datasets":[{"datasetCode":"D1"}]}`,
			want: []string{"D1"},
		},
		{
			name: "value_values_envelope",
			body: `{"value":{"values":[{"code":"X1"},{"code":"X2"}]}}`,
			want: []string{"X1", "X2"},
		},
		{
			name: "single_object_fallback",
			body: `{"code":"Only"}`,
			want: []string{"Only"},
		},
		{
			name: "element_without_known_fields_serialized",
			body: `[{"region":"us"}]`,
			want: []string{`{"region":"us"}`},
		},
		{
			name: "non_object_elements",
			body: `["plain",7]`,
			want: []string{"plain", "7"},
		},
		{
			name: "duplicates_propagate",
			body: `[{"code":"A"},{"code":"A"}]`,
			want: []string{"A", "A"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			codes, err := New(srv.URL).ListCodes(context.Background(), "tok")
			require.NoError(t, err)
			assert.Equal(t, tt.want, codes)
		})
	}
}

func TestListCodes_FallbackEndpoint(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path == "/data/datasets" {
			w.Write([]byte(`[{"code":"A"}]`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	codes, err := New(srv.URL).ListCodes(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, codes)
	assert.Equal(t, []string{"/dataset/list", "/datasets", "/data/datasets"}, paths)
}

func TestListCodes_Errors(t *testing.T) {
	t.Run("all_candidates_fail", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := New(srv.URL).ListCodes(context.Background(), "tok")
		var listErr *ListError
		require.ErrorAs(t, err, &listErr)
	})

	t.Run("invalid_json_on_success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>not json</html>"))
		}))
		defer srv.Close()

		_, err := New(srv.URL).ListCodes(context.Background(), "tok")
		var listErr *ListError
		require.ErrorAs(t, err, &listErr)
	})
}

func TestFetchDataset(t *testing.T) {
	payload := `{"code":"DS1","bodyMeta":"` + base64.StdEncoding.EncodeToString([]byte(`{"m":1}`)) + `","body":"` + base64.StdEncoding.EncodeToString([]byte(`{"q":"x"}`)) + `","inputs":null}`

	t.Run("primary_endpoint", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/dataset/get/DS1" {
				w.Write([]byte(payload))
				return
			}
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		rec, err := New(srv.URL).FetchDataset(context.Background(), "tok", "DS1")
		require.NoError(t, err)
		assert.Equal(t, "DS1", rec.Code)
		assert.True(t, rec.Body.IsEncoded())
	})

	t.Run("404_skips_to_next_shape", func(t *testing.T) {
		var paths []string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			paths = append(paths, r.URL.Path)
			if r.URL.Path == "/datasets/DS1" {
				w.Write([]byte(payload))
				return
			}
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		rec, err := New(srv.URL).FetchDataset(context.Background(), "tok", "DS1")
		require.NoError(t, err)
		assert.Equal(t, "DS1", rec.Code)
		assert.Equal(t, []string{"/dataset/get/DS1", "/datasets/DS1"}, paths)
	})

	t.Run("server_error_also_skips", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/api/datasets/DS1" {
				w.Write([]byte(payload))
				return
			}
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := New(srv.URL).FetchDataset(context.Background(), "tok", "DS1")
		require.NoError(t, err)
	})

	t.Run("exhaustion", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		_, err := New(srv.URL).FetchDataset(context.Background(), "tok", "Missing")
		var fetchErr *FetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.Equal(t, "Missing", fetchErr.Code)
	})

	t.Run("value_envelope", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"value":` + payload + `}`))
		}))
		defer srv.Close()

		rec, err := New(srv.URL).FetchDataset(context.Background(), "tok", "DS1")
		require.NoError(t, err)
		assert.Equal(t, "DS1", rec.Code)
	})
}

func TestTokenHeader(t *testing.T) {
	t.Run("bearer_default", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
			w.Write([]byte(`[]`))
		}))
		defer srv.Close()

		_, err := New(srv.URL).ListCodes(context.Background(), "tok-1")
		require.NoError(t, err)
	})

	t.Run("custom_header", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "tok-2", r.Header.Get("X-KSYS-TOKEN"))
			assert.Empty(t, r.Header.Get("Authorization"))
			w.Write([]byte(`[]`))
		}))
		defer srv.Close()

		_, err := New(srv.URL, WithTokenHeader("X-KSYS-TOKEN")).ListCodes(context.Background(), "tok-2")
		require.NoError(t, err)
	})
}

func TestUpsertDataset(t *testing.T) {
	record := func(t *testing.T) []byte {
		t.Helper()
		return []byte(`{"code":"DS1","body":"` + base64.StdEncoding.EncodeToString([]byte(`{"q":1}`)) + `"}`)
	}

	t.Run("first_candidate_wins", func(t *testing.T) {
		var seen []string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = append(seen, r.Method+" "+r.URL.Path)
			w.Write([]byte(`{"status":"ok"}`))
		}))
		defer srv.Close()

		rec := parseTestRecord(t, record(t))
		result, err := New(srv.URL).UpsertDataset(context.Background(), "tok", "DS1", rec)
		require.NoError(t, err)
		assert.Equal(t, []string{"PUT /datasets/DS1"}, seen, "probing stops at the first success")
		assert.NotNil(t, result)
	})

	t.Run("falls_through_candidates", func(t *testing.T) {
		var seen []string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = append(seen, r.Method+" "+r.URL.Path)
			if r.Method == http.MethodPost && r.URL.Path == "/datasets/DS1/upsert" {
				w.WriteHeader(http.StatusCreated)
				w.Write([]byte(`{"created":true}`))
				return
			}
			w.WriteHeader(http.StatusMethodNotAllowed)
		}))
		defer srv.Close()

		rec := parseTestRecord(t, record(t))
		_, err := New(srv.URL).UpsertDataset(context.Background(), "tok", "DS1", rec)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"PUT /datasets/DS1",
			"POST /datasets",
			"POST /datasets/DS1/upsert",
		}, seen)
	})

	t.Run("all_candidates_fail", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusBadRequest)
		}))
		defer srv.Close()

		rec := parseTestRecord(t, record(t))
		_, err := New(srv.URL).UpsertDataset(context.Background(), "tok", "DS1", rec)
		require.Error(t, err)

		var upsertErr *UpsertError
		require.ErrorAs(t, err, &upsertErr)
		assert.Len(t, upsertErr.Attempts, 3, "one attempt record per candidate")
		for _, a := range upsertErr.Attempts {
			assert.Equal(t, "400", a.Status)
			assert.Contains(t, a.Snippet, "nope")
		}
	})

	t.Run("non_json_response_wrapped", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK\n"))
		}))
		defer srv.Close()

		rec := parseTestRecord(t, record(t))
		result, err := New(srv.URL).UpsertDataset(context.Background(), "tok", "DS1", rec)
		require.NoError(t, err)

		out, err := json.Marshal(result)
		require.NoError(t, err)
		assert.JSONEq(t, `{"status_text":"OK"}`, string(out))
	})
}

func TestDeleteDataset(t *testing.T) {
	t.Run("success_204", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "/datasets/DS1", r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		require.NoError(t, New(srv.URL).DeleteDataset(context.Background(), "tok", "DS1"))
	})

	t.Run("failure_carries_status_and_body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "still referenced", http.StatusConflict)
		}))
		defer srv.Close()

		err := New(srv.URL).DeleteDataset(context.Background(), "tok", "DS1")
		var delErr *DeleteError
		require.ErrorAs(t, err, &delErr)
		assert.Equal(t, http.StatusConflict, delErr.Status)
		assert.Contains(t, delErr.Body, "still referenced")
	})
}

func TestNormalizeBaseURL(t *testing.T) {
	assert.Equal(t, "https://api-us.example.app", normalizeBaseURL("api-us.example.app"))
	assert.Equal(t, "https://api-us.example.app", normalizeBaseURL(" api-us.example.app/ "))
	assert.Equal(t, "http://127.0.0.1:8080", normalizeBaseURL("http://127.0.0.1:8080/"))
}
