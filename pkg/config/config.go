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

// Package config loads the migration configuration: the two environments,
// the operating mode, the find/replace rules and the staging location.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/muzammilkader/deployment-app/pkg/text"
	"github.com/rs/zerolog"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// Operating modes.
const (
	ModeStandard  = "standard"
	ModeMigration = "migration"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

// 🗺️ parsers is a list of available parsers
var parsers []Parser

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// Environment is one deployment of the dataset service plus the
// credentials used against it.
type Environment struct {
	BaseURL    string `json:"base_url" yaml:"base_url" hcl:"base_url,optional"`
	Username   string `json:"username" yaml:"username" hcl:"username,optional"`
	Password   string `json:"password" yaml:"password" hcl:"password,optional"`
	ClientName string `json:"client_name" yaml:"client_name" hcl:"client_name,optional"`
}

// 📚 Config represents the complete configuration
type Config struct {
	Source      Environment `json:"source" yaml:"source" hcl:"source,block"`
	Destination Environment `json:"destination" yaml:"destination" hcl:"destination,block"`

	// Mode selects when transforms run: "standard" stages records as
	// fetched and leaves transforms to explicit invocation; "migration"
	// decodes bodies on fetch and substitutes+re-encodes on deploy.
	Mode string `json:"mode,omitempty" yaml:"mode,omitempty" hcl:"mode,optional"`

	// TokenHeader is "bearer" (or empty) for Authorization: Bearer, or
	// the name of a custom token header such as X-KSYS-TOKEN.
	TokenHeader string `json:"token_header,omitempty" yaml:"token_header,omitempty" hcl:"token_header,optional"`

	StagingDir string `json:"staging_dir,omitempty" yaml:"staging_dir,omitempty" hcl:"staging_dir,optional"`

	Replacements []text.Rule `json:"replacements,omitempty" yaml:"replacements,omitempty" hcl:"replacement,block"`
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 🔍 Validate checks the configuration and fills defaults. The original
// deployment uses one base URL for both environments with only the
// credentials differing, so the destination URL defaults to the source's.
func (cfg *Config) Validate() error {
	if cfg.Source.BaseURL == "" {
		return errors.Errorf("source.base_url is required")
	}
	if cfg.Destination.BaseURL == "" {
		cfg.Destination.BaseURL = cfg.Source.BaseURL
	}

	if cfg.Mode == "" {
		cfg.Mode = ModeStandard
	}
	if cfg.Mode != ModeStandard && cfg.Mode != ModeMigration {
		return errors.Errorf("mode must be %q or %q, got %q", ModeStandard, ModeMigration, cfg.Mode)
	}

	if cfg.StagingDir == "" {
		cfg.StagingDir = "input_files"
	}
	cfg.StagingDir = filepath.Clean(cfg.StagingDir)

	if strings.EqualFold(cfg.TokenHeader, "bearer") {
		cfg.TokenHeader = ""
	}

	return nil
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("%s -> %s (%s mode, %d rules)",
		cfg.Source.BaseURL, cfg.Destination.BaseURL, cfg.Mode, len(cfg.Replacements))
}

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

func init() {
	Register(&YAMLParser{})
}

func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

func (p *YAMLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return &cfg, nil
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

func init() {
	Register(&HCLParser{})
}

func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var cfg Config
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &cfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	return &cfg, nil
}

// 🔧 JSONParser implements the Parser interface for JSON files
type JSONParser struct{}

func init() {
	Register(&JSONParser{})
}

func (p *JSONParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".json")
}

func (p *JSONParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing JSON: %w", err)
	}
	return &cfg, nil
}
