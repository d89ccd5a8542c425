// Package config loads lensmark configuration from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/google/jsonschema-go/jsonschema"
	"k8s.io/utils/ptr"
	"sigs.k8s.io/yaml"

	"github.com/lensmark/lensmark/pkg/ai"
	"github.com/lensmark/lensmark/pkg/cloudintegration"
	"github.com/lensmark/lensmark/pkg/markdown"
	"github.com/lensmark/lensmark/pkg/util"
)

const (
	KindConfig = "Config"

	// EnvPrefix prefixes every environment override
	EnvPrefix = "LENSMARK_"
)

type Config struct {
	util.TypeMeta `json:",inline"`

	AI       ai.Config               `json:"ai,omitempty" envPrefix:"AI_"`
	Cloud    cloudintegration.Config `json:"cloud,omitempty" envPrefix:"CLOUD_"`
	Markdown MarkdownConfig          `json:"markdown,omitempty" envPrefix:"MARKDOWN_"`
	Log      LogConfig               `json:"log,omitempty" envPrefix:"LOG_"`
}

// MarkdownConfig leaves fields unset to mean "use the renderer default".
type MarkdownConfig struct {
	GFM          *bool `json:"gfm,omitempty" env:"GFM"`
	AllowRawHTML *bool `json:"allowRawHtml,omitempty" env:"ALLOW_RAW_HTML"`
	HardWraps    *bool `json:"hardWraps,omitempty" env:"HARD_WRAPS"`
}

type LogConfig struct {
	Level string `json:"level,omitempty" env:"LEVEL"`

	// Telemetry writes usage events to the log
	Telemetry bool `json:"telemetry,omitempty" env:"TELEMETRY"`
}

// RendererConfig resolves the markdown settings against the renderer defaults.
func (c *MarkdownConfig) RendererConfig() markdown.Config {
	def := markdown.DefaultConfig()
	return markdown.Config{
		GFM:          ptr.Deref(c.GFM, def.GFM),
		AllowRawHTML: ptr.Deref(c.AllowRawHTML, def.AllowRawHTML),
		HardWraps:    ptr.Deref(c.HardWraps, def.HardWraps),
	}
}

func Read(data []byte) (*Config, error) {
	cfg := &Config{}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.TypeMeta.Validate(KindConfig); err != nil {
		return nil, err
	}

	if err := cfg.expandSecrets(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file '%s' for config: %w", path, err)
	}

	return Read(data)
}

// Load reads path when given, then applies environment overrides. A missing path is not an
// error when optional is set.
func Load(path string, optional bool) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := FromFile(path)
		switch {
		case err == nil:
			cfg = loaded
		case optional && errors.Is(err, os.ErrNotExist):
		default:
			return nil, err
		}
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from LENSMARK_* variables. Unset variables leave fields alone.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Schema returns the JSON schema of the configuration file.
func Schema() (*jsonschema.Schema, error) {
	schema, err := jsonschema.For[Config](nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build config schema: %w", err)
	}
	return schema, nil
}
