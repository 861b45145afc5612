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
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ValidateArtifact checks an artifact without posting it. The returned
// error wraps ErrValidation for invalid attributes or scores.
func (store *Store) ValidateArtifact(ctx context.Context, artifact *Artifact) error {
	return store.validateArtifact(ctx, artifact)
}

// validateArtifact checks the type, the score and the attributes of an
// artifact. Empty attributes are normalized to an empty object.
func (store *Store) validateArtifact(ctx context.Context, artifact *Artifact) error {
	t, ok := store.types.load(artifact.TypeID)
	if !ok {
		return errors.Wrapf(ErrUnknownArtifactType, "id %d", artifact.TypeID)
	}
	if artifact.Score < SignificanceUnknown || artifact.Score > SignificanceNotable {
		return errors.Wrapf(ErrValidation, "invalid score %d", artifact.Score)
	}
	if len(artifact.Attributes) == 0 {
		artifact.Attributes = Attributes("{}")
	}
	if artifact.SourceObjType == "" {
		artifact.SourceObjType = SourceFile
	}

	flaws, err := store.validateAttributes(ctx, t.Name, artifact.Attributes)
	if err != nil {
		return err
	}
	if len(flaws) > 0 {
		return errors.Wrapf(ErrValidation, "%s attributes could not be validated [%s]", t.Name, strings.Join(flaws, ","))
	}
	return nil
}

func (store *Store) validateAttributes(ctx context.Context, typeName string, attributes Attributes) (flaws []string, err error) {
	fields := map[string]interface{}{}
	if err := json.Unmarshal(attributes, &fields); err != nil {
		return []string{fmt.Sprintf("attributes must be a json object: %s", err)}, nil
	}
	flaws = append(flaws, dottedKeys("", fields)...)

	schema, err := store.Schema(typeName)
	if err != nil {
		if err == errSchemaNotFound {
			return flaws, nil // no schema for type
		}
		return nil, errors.Wrap(err, "could not get schema")
	}

	errs, err := schema.ValidateBytes(ctx, attributes)
	if err != nil {
		return nil, err
	}
	for _, verr := range errs {
		flaws = append(flaws, fmt.Sprintf("failed to validate attributes: %s", verr.Error()))
	}
	return flaws, nil
}

// dottedKeys reports keys that contain the path separator.
func dottedKeys(prefix string, fields map[string]interface{}) (flaws []string) {
	for key, value := range fields {
		if strings.Contains(key, ".") {
			flaws = append(flaws, fmt.Sprintf("attribute '%s%s' must not contain a dot", prefix, key))
		}
		if nested, ok := value.(map[string]interface{}); ok {
			flaws = append(flaws, dottedKeys(prefix+key+".", nested)...)
		}
	}
	return flaws
}
