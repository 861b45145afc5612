/*
 * Copyright (c) 2020 Siemens AG
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy of
 * this software and associated documentation files (the "Software"), to deal in
 * the Software without restriction, including without limitation the rights to
 * use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
 * the Software, and to permit persons to whom the Software is furnished to do so,
 * subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
 * FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
 * COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
 * IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
 * CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 *
 * Author(s): Jonas Plum
 */

// Package config loads the casestore configuration from YAML.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/imdario/mergo"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds the casestore configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store"`
	Cache   CacheConfig   `yaml:"cache"`
	Views   ViewsConfig   `yaml:"views"`
	Logging LoggingConfig `yaml:"logging"`
	HTTP    HTTPConfig    `yaml:"http"`
}

// StoreConfig holds database settings.
type StoreConfig struct {
	Path     string `yaml:"path"`
	PoolSize int    `yaml:"pool_size"`
}

// CacheSize bounds one cache.
type CacheSize struct {
	Size int           `yaml:"size"`
	TTL  time.Duration `yaml:"ttl"` // expire after access, 0 never
}

// CacheConfig holds the size of every result cache.
type CacheConfig struct {
	AnalysisResults CacheSize `yaml:"analysis_results"`
	DataArtifacts   CacheSize `yaml:"data_artifacts"`
	HashHits        CacheSize `yaml:"hash_hits"`
	KeywordHits     CacheSize `yaml:"keyword_hits"`
	SetHits         CacheSize `yaml:"set_hits"`
	Views           CacheSize `yaml:"views"`
}

// ViewsConfig holds the file view preferences.
type ViewsConfig struct {
	HideKnownFiles bool `yaml:"hide_known_files"`
	HideSlackFiles bool `yaml:"hide_slack_files"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Env   string `yaml:"env"`   // prod, local, dev, docker
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Store: StoreConfig{PoolSize: 8},
		Cache: CacheConfig{
			AnalysisResults: CacheSize{Size: 1000},
			DataArtifacts:   CacheSize{Size: 1000},
			HashHits:        CacheSize{Size: 1000},
			KeywordHits:     CacheSize{Size: 1000},
			SetHits:         CacheSize{Size: 1000},
			Views:           CacheSize{Size: 15, TTL: 2 * time.Minute},
		},
		Views:   ViewsConfig{HideKnownFiles: true, HideSlackFiles: true},
		Logging: LoggingConfig{Env: "local"},
		HTTP:    HTTPConfig{Addr: ":8080"},
	}
}

// Load reads the configuration from a YAML file. An empty path returns
// the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, errors.Wrapf(err, "failed to read config %s", path)
	}
	return Parse(data)
}

// Parse decodes YAML on top of the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to parse config")
	}

	if err := cfg.ApplyDefaults(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// ApplyDefaults fills empty fields with default values. The view
// preferences are booleans and are kept as they are.
func (c *Config) ApplyDefaults() error {
	def := Default()
	if err := mergo.Merge(&c.Store, def.Store); err != nil {
		return err
	}
	if err := mergo.Merge(&c.Cache, def.Cache); err != nil {
		return err
	}
	if err := mergo.Merge(&c.Logging, def.Logging); err != nil {
		return err
	}
	return mergo.Merge(&c.HTTP, def.HTTP)
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.Store.PoolSize < 1 {
		return errors.Errorf("store.pool_size must be positive, got %d", c.Store.PoolSize)
	}
	for name, size := range map[string]CacheSize{
		"analysis_results": c.Cache.AnalysisResults,
		"data_artifacts":   c.Cache.DataArtifacts,
		"hash_hits":        c.Cache.HashHits,
		"keyword_hits":     c.Cache.KeywordHits,
		"set_hits":         c.Cache.SetHits,
		"views":            c.Cache.Views,
	} {
		if size.Size < 1 {
			return errors.Errorf("cache.%s.size must be positive, got %d", name, size.Size)
		}
		if size.TTL < 0 {
			return errors.Errorf("cache.%s.ttl must not be negative, got %s", name, size.TTL)
		}
	}
	switch c.Logging.Env {
	case "prod", "local", "dev", "docker":
	default:
		return errors.Errorf("logging.env must be prod, local, dev or docker, got %q", c.Logging.Env)
	}
	return nil
}
