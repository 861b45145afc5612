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

package casestore

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"github.com/qri-io/jsonschema"
)

// builtinSchemas constrain the attributes of the builtin analysis results.
var builtinSchemas = map[string]string{
	"TSK_HASHSET_HIT": `{
		"type": "object",
		"properties": {
			"set_name": {"type": "string"},
			"hash_md5": {"type": "string"},
			"comment": {"type": "string"}
		},
		"required": ["set_name"]
	}`,
	"TSK_KEYWORD_HIT": `{
		"type": "object",
		"properties": {
			"set_name": {"type": "string"},
			"keyword": {"type": "string"},
			"keyword_regexp": {"type": "string"},
			"keyword_preview": {"type": "string"},
			"keyword_search_type": {"type": "integer", "minimum": 0, "maximum": 2}
		},
		"required": ["keyword"]
	}`,
	"TSK_INTERESTING_FILE_HIT": `{
		"type": "object",
		"properties": {
			"set_name": {"type": "string"},
			"comment": {"type": "string"}
		}
	}`,
	"TSK_INTERESTING_ARTIFACT_HIT": `{
		"type": "object",
		"properties": {
			"set_name": {"type": "string"},
			"comment": {"type": "string"}
		}
	}`,
}

func (store *Store) setupSchemas() error {
	names := make([]string, 0, len(builtinSchemas))
	for name := range builtinSchemas {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		schema, err := ParseSchema([]byte(builtinSchemas[name]))
		if err != nil {
			return errors.Wrap(err, fmt.Sprintf("unmarshal error %s", name))
		}
		store.SetSchema(name, schema)
	}
	return nil
}

// ParseSchema unmarshals a JSON schema.
func ParseSchema(b []byte) (*jsonschema.Schema, error) {
	schema := &jsonschema.Schema{}
	if err := json.Unmarshal(b, schema); err != nil {
		return nil, err
	}
	return schema, nil
}

// SetSchema inserts or replaces the json schema of an artifact type's
// attributes.
func (store *Store) SetSchema(typeName string, schema *jsonschema.Schema) {
	store.schemas.store(typeName, schema)
}

var errSchemaNotFound = errors.New("schema not found")

// Schema gets the attribute schema of an artifact type.
func (store *Store) Schema(typeName string) (*jsonschema.Schema, error) {
	if schema, ok := store.schemas.load(typeName); ok {
		return schema, nil
	}
	return nil, errSchemaNotFound
}
