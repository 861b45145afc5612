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

// Package goflatten converts nested artifact attributes from and to flat
// maps keyed by dotted attribute paths like "url.host".
package goflatten

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Delimiter separates the segments of an attribute path.
const Delimiter = "."

// ErrConflict is returned if an attribute path is both a value and the
// parent of another value, e.g. "url" and "url.host".
var ErrConflict = errors.New("conflicting attribute paths")

// Flatten returns the leaf values of decoded JSON attributes keyed by their
// path. List elements are addressed by their index. Nil values and empty
// containers have no leaves.
func Flatten(nested map[string]interface{}) map[string]interface{} {
	flat := map[string]interface{}{}
	flatten(flat, "", nested, true)
	return flat
}

// Paths returns the sorted attribute paths of nested. Lists are not
// expanded, a list is a single attribute.
func Paths(nested map[string]interface{}) []string {
	flat := map[string]interface{}{}
	flatten(flat, "", nested, false)
	paths := make([]string, 0, len(flat))
	for p := range flat {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + Delimiter + key
}

func flatten(flat map[string]interface{}, prefix string, value interface{}, lists bool) {
	switch v := value.(type) {
	case nil:
	case map[string]interface{}:
		for key, child := range v {
			flatten(flat, join(prefix, key), child, lists)
		}
	case []interface{}:
		if !lists {
			if len(v) > 0 {
				flat[prefix] = v
			}
			return
		}
		for i, child := range v {
			flatten(flat, join(prefix, strconv.Itoa(i)), child, lists)
		}
	default:
		flat[prefix] = v
	}
}

// Unflatten builds nested attributes from a flat map. Objects whose keys
// are exactly 0..n-1 become lists.
func Unflatten(flat map[string]interface{}) (map[string]interface{}, error) {
	paths := make([]string, 0, len(flat))
	for p := range flat {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	nested := map[string]interface{}{}
	for _, p := range paths {
		if err := insert(nested, strings.Split(p, Delimiter), flat[p]); err != nil {
			return nil, errors.Wrap(err, p)
		}
	}
	for key, child := range nested {
		nested[key] = lists(child)
	}
	return nested, nil
}

func insert(m map[string]interface{}, path []string, value interface{}) error {
	for _, segment := range path[:len(path)-1] {
		child, ok := m[segment]
		if !ok {
			next := map[string]interface{}{}
			m[segment] = next
			m = next
			continue
		}
		next, ok := child.(map[string]interface{})
		if !ok {
			return ErrConflict
		}
		m = next
	}
	last := path[len(path)-1]
	if _, ok := m[last]; ok {
		return ErrConflict
	}
	m[last] = value
	return nil
}

func lists(value interface{}) interface{} {
	m, ok := value.(map[string]interface{})
	if !ok {
		return value
	}
	for key, child := range m {
		m[key] = lists(child)
	}

	list := make([]interface{}, len(m))
	for key, child := range m {
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= len(m) || strconv.Itoa(i) != key {
			return m
		}
		list[i] = child
	}
	return list
}
