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

package importer

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// zero returns the value used for a field that could not be parsed.
func zero(t ValueType) interface{} {
	switch t {
	case Integer, Long, DateTime:
		return int64(0)
	case Double:
		return float64(0)
	case JSON:
		return nil
	}
	return ""
}

// parseValue converts a TSV field. Date times become unix seconds in UTC.
func parseValue(t ValueType, raw string) (interface{}, error) {
	if t == String {
		return raw, nil
	}
	s := strings.TrimSpace(raw)
	switch t {
	case Integer:
		i, err := strconv.ParseInt(s, 10, 32)
		return int64(i), err
	case Long:
		return strconv.ParseInt(s, 10, 64)
	case Double:
		return strconv.ParseFloat(s, 64)
	case DateTime:
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, nil
		}
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts.UTC().Unix(), nil
			}
		}
		return nil, errors.Errorf("unknown time format %q", s)
	case JSON:
		var v interface{}
		err := json.Unmarshal([]byte(s), &v)
		return v, err
	}
	return nil, errors.Errorf("unknown type %s", t)
}
