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

package goflatten

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatten(t *testing.T) {
	tests := []struct {
		name   string
		nested map[string]interface{}
		want   map[string]interface{}
	}{
		{"list", map[string]interface{}{"foo": []interface{}{"a", 1.0}}, map[string]interface{}{"foo.0": "a", "foo.1": 1.0}},
		{"nested", map[string]interface{}{"url": map[string]interface{}{"host": "example.org"}}, map[string]interface{}{"url.host": "example.org"}},
		{"empty object", map[string]interface{}{"foo": map[string]interface{}{}}, map[string]interface{}{}},
		{"empty list", map[string]interface{}{"foo": []interface{}{}}, map[string]interface{}{}},
		{"empty string", map[string]interface{}{"foo": ""}, map[string]interface{}{"foo": ""}},
		{"nil", map[string]interface{}{"foo": nil}, map[string]interface{}{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Flatten(tt.nested))
		})
	}
}

func TestPaths(t *testing.T) {
	nested := map[string]interface{}{
		"url":      map[string]interface{}{"path": "/", "host": "example.org"},
		"set_name": "NSRL",
		"tags":     []interface{}{"a", "b"},
		"none":     []interface{}{},
		"empty":    nil,
	}
	assert.Equal(t, []string{"set_name", "tags", "url.host", "url.path"}, Paths(nested))
}

func TestUnflatten(t *testing.T) {
	tests := []struct {
		name    string
		flat    map[string]interface{}
		want    map[string]interface{}
		wantErr error
	}{
		{"list", map[string]interface{}{"foo.0": "a", "foo.1": 1}, map[string]interface{}{"foo": []interface{}{"a", 1}}, nil},
		{"no list", map[string]interface{}{"foo.1": "a", "foo.2": 1}, map[string]interface{}{"foo": map[string]interface{}{"1": "a", "2": 1}}, nil},
		{"ordered list", map[string]interface{}{"foo.0": 1, "foo.1": 2, "foo.2": 3, "foo.10": 4},
			map[string]interface{}{"foo": map[string]interface{}{"0": 1, "1": 2, "2": 3, "10": 4}}, nil},
		{"leading zero", map[string]interface{}{"foo.00": 1}, map[string]interface{}{"foo": map[string]interface{}{"00": 1}}, nil},
		{"nested", map[string]interface{}{"url.host": "example.org", "url.path": "/", "set_name": "A"},
			map[string]interface{}{"url": map[string]interface{}{"host": "example.org", "path": "/"}, "set_name": "A"}, nil},
		{"list of objects", map[string]interface{}{"hits.0.name": "a", "hits.1.name": "b"},
			map[string]interface{}{"hits": []interface{}{map[string]interface{}{"name": "a"}, map[string]interface{}{"name": "b"}}}, nil},
		{"conflict", map[string]interface{}{"url": "x", "url.host": "example.org"}, nil, ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Unflatten(tt.flat)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "Unflatten() error = %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	nested := map[string]interface{}{"url": map[string]interface{}{"host": "example.org"}, "tags": []interface{}{"a", "b"}}
	got, err := Unflatten(Flatten(nested))
	require.NoError(t, err)
	assert.Equal(t, nested, got)
}
