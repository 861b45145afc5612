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
	"path/filepath"

	"github.com/forensicanalysis/fsdoublestar"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// ValueType is the type a TSV field is parsed into.
type ValueType string

// Value types.
const (
	String   ValueType = "string"
	Integer  ValueType = "integer"
	Long     ValueType = "long"
	Double   ValueType = "double"
	DateTime ValueType = "datetime"
	JSON     ValueType = "json"
)

func (t ValueType) valid() bool {
	switch t {
	case String, Integer, Long, Double, DateTime, JSON:
		return true
	}
	return false
}

// Mapping assigns TSV files to artifact types.
type Mapping struct {
	Files []FileMapping `yaml:"files"`
}

// FileMapping maps the files matching Glob to artifacts of ArtifactType.
type FileMapping struct {
	Glob         string   `yaml:"glob"`
	ArtifactType string   `yaml:"artifact_type"`
	Comment      string   `yaml:"comment"`
	Columns      []Column `yaml:"columns"`
}

// Column maps a TSV column to an attribute. Headers lists the accepted
// header names, compared case insensitive. A dotted attribute name
// creates a nested attribute.
type Column struct {
	Headers   []string  `yaml:"headers"`
	Attribute string    `yaml:"attribute"`
	Type      ValueType `yaml:"type"`
}

// LoadMapping reads a YAML mapping from fs.
func LoadMapping(fs afero.Fs, path string) (Mapping, error) {
	data, err := afero.ReadFile(fs, filepath.Clean(path))
	if err != nil {
		return Mapping{}, errors.Wrapf(err, "failed to read mapping %s", path)
	}
	return ParseMapping(data)
}

// ParseMapping decodes and validates a YAML mapping. A column without
// type is a string.
func ParseMapping(data []byte) (Mapping, error) {
	var m Mapping
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Mapping{}, errors.Wrap(err, "failed to parse mapping")
	}
	for i := range m.Files {
		fm := &m.Files[i]
		if fm.Glob == "" {
			return Mapping{}, errors.Errorf("mapping %d: glob is required", i)
		}
		if fm.ArtifactType == "" {
			return Mapping{}, errors.Errorf("mapping %s: artifact_type is required", fm.Glob)
		}
		for j := range fm.Columns {
			c := &fm.Columns[j]
			if c.Type == "" {
				c.Type = String
			}
			if !c.Type.valid() {
				return Mapping{}, errors.Errorf("mapping %s: unknown type %q", fm.Glob, c.Type)
			}
			if c.Attribute == "" || len(c.Headers) == 0 {
				return Mapping{}, errors.Errorf("mapping %s: column %d needs headers and an attribute", fm.Glob, j)
			}
		}
	}
	return m, nil
}

// lookup returns the first file mapping matching the slash separated
// relative path.
func (m Mapping) lookup(rel string) (*FileMapping, error) {
	for i := range m.Files {
		ok, err := fsdoublestar.Match(m.Files[i].Glob, rel)
		if err != nil {
			return nil, errors.Wrapf(err, "bad glob %s", m.Files[i].Glob)
		}
		if ok {
			return &m.Files[i], nil
		}
	}
	return nil, nil
}
