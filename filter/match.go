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

package filter

import (
	"reflect"

	"github.com/pkg/errors"
)

// Record gives access to the logical fields of an in-memory record. The
// second return value is false if the field is absent.
type Record interface {
	Field(name string) (interface{}, bool)
}

// RecordFunc adapts a function to the Record interface.
type RecordFunc func(name string) (interface{}, bool)

// Field calls f.
func (f RecordFunc) Field(name string) (interface{}, bool) { return f(name) }

// Map is a Record backed by a map.
type Map map[string]interface{}

// Field returns the map entry for name.
func (m Map) Field(name string) (interface{}, bool) {
	v, ok := m[name]
	return v, ok
}

// Match evaluates e against r. A nil expression matches every record.
func Match(e Expr, r Record) (bool, error) { // nolint:gocyclo
	switch e := e.(type) {
	case nil:
		return true, nil
	case Eq:
		if e.Value == nil {
			return false, errors.Wrapf(ErrUnsupported, "nil value for %s, use Blank", e.Field)
		}
		v, ok := field(r, e.Field)
		return ok && compare(v, normalize(e.Value)) == 0, nil
	case Blank:
		v, ok := field(r, e.Field)
		if !ok {
			return true, nil
		}
		s, isString := v.(string)
		return isString && IsBlank(s), nil
	case Range:
		if e.Min == nil && e.Max == nil {
			return false, errors.Wrapf(ErrUnsupported, "open range for %s", e.Field)
		}
		v, ok := field(r, e.Field)
		if !ok {
			return false, nil
		}
		if e.Min != nil {
			if c := compare(v, normalize(e.Min)); c == incomparable || c < 0 {
				return false, nil
			}
		}
		if e.Max != nil {
			if c := compare(v, normalize(e.Max)); c == incomparable || c >= 0 {
				return false, nil
			}
		}
		return true, nil
	case In:
		v, ok := field(r, e.Field)
		if !ok {
			return false, nil
		}
		for _, candidate := range e.Values {
			if compare(v, normalize(candidate)) == 0 {
				return true, nil
			}
		}
		return false, nil
	case And:
		for _, sub := range e {
			ok, err := Match(sub, r)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case Or:
		for _, sub := range e {
			ok, err := Match(sub, r)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case Not:
		if e.Expr == nil {
			return false, errors.Wrap(ErrUnsupported, "empty not")
		}
		ok, err := Match(e.Expr, r)
		return !ok, err
	default:
		return false, errors.Wrapf(ErrUnsupported, "%T", e)
	}
}

// field looks up name and treats nil values as absent.
func field(r Record, name string) (interface{}, bool) {
	v, ok := r.Field(name)
	if !ok {
		return nil, false
	}
	v = normalize(v)
	if v == nil {
		return nil, false
	}
	return v, true
}

const incomparable = 2

// normalize converts numbers to int64 or float64 and booleans to 0 or 1,
// mirroring the value model of SQLite.
func normalize(v interface{}) interface{} {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case reflect.Bool:
		if rv.Bool() {
			return int64(1)
		}
		return int64(0)
	case reflect.String:
		return rv.String()
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return normalize(rv.Elem().Interface())
	}
	return v
}

// compare returns -1, 0 or 1, or incomparable if the values have
// different kinds.
func compare(a, b interface{}) int {
	switch a := a.(type) {
	case int64:
		switch b := b.(type) {
		case int64:
			return cmp(a < b, a > b)
		case float64:
			return cmp(float64(a) < b, float64(a) > b)
		}
	case float64:
		switch b := b.(type) {
		case int64:
			return cmp(a < float64(b), a > float64(b))
		case float64:
			return cmp(a < b, a > b)
		}
	case string:
		if b, ok := b.(string); ok {
			return cmp(a < b, a > b)
		}
	}
	return incomparable
}

func cmp(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	}
	return 0
}
