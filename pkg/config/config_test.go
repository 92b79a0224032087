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

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muzammilkader/deployment-app/pkg/text"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, "dsdeploy.yaml", `
source:
  base_url: api-us.example.app
  username: stg_user
  password: stg_pass
  client_name: northerntrust
destination:
  base_url: api-us.example.app
  username: prd_user
  password: prd_pass
  client_name: northerntrust
mode: migration
token_header: X-KSYS-TOKEN
staging_dir: input_files
replacements:
  - from: KURTOSYS_RPT_STG.NRC.
    to: KURTOSYS_RPT_PRD.NRC.
  - from: snowflake_ntam_staging
    to: snowflake_ntam_prod
`)

	cfg, err := Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "api-us.example.app", cfg.Source.BaseURL)
	assert.Equal(t, "stg_user", cfg.Source.Username)
	assert.Equal(t, "prd_user", cfg.Destination.Username)
	assert.Equal(t, ModeMigration, cfg.Mode)
	assert.Equal(t, "X-KSYS-TOKEN", cfg.TokenHeader)
	assert.Equal(t, []text.Rule{
		{From: "KURTOSYS_RPT_STG.NRC.", To: "KURTOSYS_RPT_PRD.NRC."},
		{From: "snowflake_ntam_staging", To: "snowflake_ntam_prod"},
	}, cfg.Replacements)
}

func TestLoad_YAML_UnknownFieldRejected(t *testing.T) {
	path := writeConfig(t, "dsdeploy.yaml", `
source:
  base_url: api-us.example.app
stagingdir: typo
`)

	_, err := Load(context.Background(), path)
	require.Error(t, err)
}

func TestLoad_HCL(t *testing.T) {
	path := writeConfig(t, "dsdeploy.hcl", `
source {
  base_url    = "api-us.example.app"
  username    = "stg_user"
  password    = "stg_pass"
  client_name = "northerntrust"
}

destination {
  base_url = "api-us.example.app"
  username = "prd_user"
  password = "prd_pass"
}

mode = "migration"

replacement {
  from = "KURTOSYS_RPT_STG.NRC."
  to   = "KURTOSYS_RPT_PRD.NRC."
}

replacement {
  from = "snowflake_ntam_staging"
  to   = "snowflake_ntam_prod"
}
`)

	cfg, err := Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, ModeMigration, cfg.Mode)
	assert.Equal(t, "prd_user", cfg.Destination.Username)
	require.Len(t, cfg.Replacements, 2)
	assert.Equal(t, "KURTOSYS_RPT_STG.NRC.", cfg.Replacements[0].From)
	assert.Equal(t, "snowflake_ntam_prod", cfg.Replacements[1].To)
}

func TestLoad_JSON(t *testing.T) {
	path := writeConfig(t, "dsdeploy.json", `{
  "source": {"base_url": "api-us.example.app", "username": "u"},
  "destination": {"base_url": "api-eu.example.app"},
  "mode": "standard"
}`)

	cfg, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "api-eu.example.app", cfg.Destination.BaseURL)
	assert.Equal(t, ModeStandard, cfg.Mode)
}

func TestLoad_NoParserForExtension(t *testing.T) {
	path := writeConfig(t, "dsdeploy.toml", `whatever = true`)

	_, err := Load(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no parser found")
}

func TestValidate(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := &Config{Source: Environment{BaseURL: "api-us.example.app"}}
		require.NoError(t, cfg.Validate())

		assert.Equal(t, "api-us.example.app", cfg.Destination.BaseURL, "destination falls back to the source URL")
		assert.Equal(t, ModeStandard, cfg.Mode)
		assert.Equal(t, "input_files", cfg.StagingDir)
	})

	t.Run("source_url_required", func(t *testing.T) {
		cfg := &Config{}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "source.base_url")
	})

	t.Run("mode_rejected_when_unknown", func(t *testing.T) {
		cfg := &Config{Source: Environment{BaseURL: "x"}, Mode: "dryrun"}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dryrun")
	})

	t.Run("bearer_normalized_to_default", func(t *testing.T) {
		cfg := &Config{Source: Environment{BaseURL: "x"}, TokenHeader: "Bearer"}
		require.NoError(t, cfg.Validate())
		assert.Empty(t, cfg.TokenHeader)
	})

	t.Run("custom_token_header_kept", func(t *testing.T) {
		cfg := &Config{Source: Environment{BaseURL: "x"}, TokenHeader: "X-KSYS-TOKEN"}
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "X-KSYS-TOKEN", cfg.TokenHeader)
	})
}

func TestGetParser(t *testing.T) {
	assert.IsType(t, &YAMLParser{}, GetParser("a.yaml"))
	assert.IsType(t, &YAMLParser{}, GetParser("a.yml"))
	assert.IsType(t, &HCLParser{}, GetParser("a.hcl"))
	assert.IsType(t, &JSONParser{}, GetParser("a.json"))
	assert.Nil(t, GetParser("a.toml"))
}
