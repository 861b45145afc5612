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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		check   func(t *testing.T, cfg Config)
		wantErr bool
	}{
		{"empty", "", func(t *testing.T, cfg Config) {
			assert.Equal(t, Default(), cfg)
		}, false},
		{"partial cache", "cache:\n  hash_hits:\n    size: 50\n", func(t *testing.T, cfg Config) {
			assert.Equal(t, 50, cfg.Cache.HashHits.Size)
			assert.Equal(t, 1000, cfg.Cache.KeywordHits.Size)
			assert.Equal(t, 2*time.Minute, cfg.Cache.Views.TTL)
		}, false},
		{"ttl", "cache:\n  views:\n    ttl: 30s\n", func(t *testing.T, cfg Config) {
			assert.Equal(t, 30*time.Second, cfg.Cache.Views.TTL)
			assert.Equal(t, 15, cfg.Cache.Views.Size)
		}, false},
		{"show known files", "views:\n  hide_known_files: false\n", func(t *testing.T, cfg Config) {
			assert.False(t, cfg.Views.HideKnownFiles)
			assert.True(t, cfg.Views.HideSlackFiles)
		}, false},
		{"zero size is defaulted", "cache:\n  set_hits:\n    size: 0\n", func(t *testing.T, cfg Config) {
			assert.Equal(t, 1000, cfg.Cache.SetHits.Size)
		}, false},
		{"negative size", "cache:\n  set_hits:\n    size: -1\n", nil, true},
		{"unknown env", "logging:\n  env: staging\n", nil, true},
		{"broken yaml", "store: [", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.yaml))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoad(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	path := filepath.Join(t.TempDir(), "casestore.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  path: case.db\n"), 0600))
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "case.db", cfg.Store.Path)
	assert.Equal(t, 8, cfg.Store.PoolSize)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{Cache: CacheConfig{HashHits: CacheSize{Size: 3}}}
	require.NoError(t, cfg.ApplyDefaults())
	assert.Equal(t, 3, cfg.Cache.HashHits.Size)
	assert.Equal(t, 15, cfg.Cache.Views.Size)
	assert.Equal(t, "local", cfg.Logging.Env)
	assert.False(t, cfg.Views.HideKnownFiles)
	assert.NoError(t, cfg.Validate())
}
