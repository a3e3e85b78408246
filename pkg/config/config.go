// Package config holds the wall configuration model and loads it from TOML
// or YAML files.
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/tweetwall/pkg/errors"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "tweetwall.toml"

// Config is a complete wall configuration.
type Config struct {
	Scheduler Scheduler  `toml:"scheduler" yaml:"scheduler"`
	Canvas    Canvas     `toml:"canvas" yaml:"canvas"`
	Providers []Provider `toml:"providers" yaml:"providers"`
	Steps     []Step     `toml:"steps" yaml:"steps"`
	Sources   Sources    `toml:"sources" yaml:"sources"`
	Cache     Cache      `toml:"cache" yaml:"cache"`
	HTTP      HTTP       `toml:"http" yaml:"http"`
}

// Scheduler configures the step loop.
type Scheduler struct {
	ProceedTimeout Duration `toml:"proceed_timeout" yaml:"proceed_timeout"`
}

// Canvas is the drawable area in pixels.
type Canvas struct {
	Width  float64 `toml:"width" yaml:"width"`
	Height float64 `toml:"height" yaml:"height"`
}

// Provider configures one data provider.
type Provider struct {
	Kind   string `toml:"kind" yaml:"kind"`
	Config Blob   `toml:"config" yaml:"config"`
}

// Step configures one presentation step.
type Step struct {
	ID     string `toml:"id" yaml:"id"`
	Name   string `toml:"name" yaml:"name"`
	Config Blob   `toml:"config" yaml:"config"`
}

// Sources names the external systems content comes from. Empty values
// disable the corresponding adapter.
type Sources struct {
	RedisAddr    string `toml:"redis_addr" yaml:"redis_addr"`
	RedisChannel string `toml:"redis_channel" yaml:"redis_channel"`

	MongoURI        string `toml:"mongo_uri" yaml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database" yaml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection" yaml:"mongo_collection"`

	SQLitePath   string `toml:"sqlite_path" yaml:"sqlite_path"`
	HistoryLimit int    `toml:"history_limit" yaml:"history_limit"`

	SessionsFile string `toml:"sessions_file" yaml:"sessions_file"`
	SessionsURL  string `toml:"sessions_url" yaml:"sessions_url"`
	VotesURL     string `toml:"votes_url" yaml:"votes_url"`
}

// Cache configures where layout solutions and HTTP responses are kept.
type Cache struct {
	// Backend is "file" (default), "redis" or "none".
	Backend string   `toml:"backend" yaml:"backend"`
	Dir     string   `toml:"dir" yaml:"dir"`
	TTL     Duration `toml:"ttl" yaml:"ttl"`
}

// HTTP configures the control API.
type HTTP struct {
	// Addr to listen on; empty disables the API.
	Addr string `toml:"addr" yaml:"addr"`
}

// Duration is a time.Duration written as a Go duration string.
type Duration time.Duration

// UnmarshalText parses strings such as "8s" or "1m30s".
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText writes the duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Scheduler: Scheduler{ProceedTimeout: Duration(60 * time.Second)},
		Canvas:    Canvas{Width: 1280, Height: 720},
		Steps: []Step{
			{ID: "tweets"},
			{ID: "wordcloud"},
			{ID: "pause", Config: Blob{"title": "tweetwall"}},
		},
		Sources: Sources{
			RedisChannel:    "tweetwall:tweets",
			MongoDatabase:   "tweetwall",
			MongoCollection: "tweets",
			HistoryLimit:    200,
		},
		Cache: Cache{Backend: "file", TTL: Duration(24 * time.Hour)},
	}
}

// Load reads path, choosing the decoder by extension (.toml, .yaml, .yml,
// .json is read as YAML), and validates the result. Keys missing from the
// file keep their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config")
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	cfg, err := Parse(data, format)
	if err != nil {
		code := errors.GetCode(err)
		if code == "" {
			code = errors.ErrCodeInvalidConfig
		}
		return nil, errors.Wrap(code, err, "%s", path)
	}
	return cfg, nil
}

// Parse decodes data in the given format ("toml", "yaml", "yml" or "json")
// on top of Default and validates it.
func Parse(data []byte, format string) (*Config, error) {
	cfg := Default()
	// Steps are replaced, not merged.
	cfg.Steps = nil

	switch format {
	case "toml":
		md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(cfg)
		if err != nil {
			return nil, err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			if key := firstUnknown(undecoded); key != "" {
				return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown key %q", key)
			}
		}
	case "yaml", "yml", "json":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported config format %q", format)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// firstUnknown returns the first undecoded key outside the free-form
// config tables.
func firstUnknown(keys []toml.Key) string {
	for _, k := range keys {
		if len(k) >= 2 && (k[0] == "providers" || k[0] == "steps") && k[1] == "config" {
			continue
		}
		return k.String()
	}
	return ""
}

// Validate checks the configuration for errors that would make the wall
// unable to start.
func (c *Config) Validate() error {
	if len(c.Steps) == 0 {
		return errors.New(errors.ErrCodeEmptySteps, "no steps configured")
	}
	for i, s := range c.Steps {
		if err := errors.ValidateIdentifier("step id", s.ID); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "steps[%d]", i)
		}
	}

	seen := make(map[string]bool, len(c.Providers))
	for i, p := range c.Providers {
		if err := errors.ValidateIdentifier("provider kind", p.Kind); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "providers[%d]", i)
		}
		if seen[p.Kind] {
			return errors.New(errors.ErrCodeDuplicateProvider, "provider %q configured twice", p.Kind)
		}
		seen[p.Kind] = true
	}

	if c.Scheduler.ProceedTimeout <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "scheduler.proceed_timeout must be positive")
	}
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "canvas must have a positive size")
	}
	if c.Sources.HistoryLimit < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "sources.history_limit must not be negative")
	}
	switch c.Cache.Backend {
	case "", "file", "none":
	case "redis":
		if c.Sources.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.backend redis needs sources.redis_addr")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	return nil
}
