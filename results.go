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
	"reflect"

	"github.com/fatih/structs"
	"github.com/pkg/errors"
	"github.com/stoewer/go-strcase"
)

// HashsetHit holds the attributes of a TSK_HASHSET_HIT.
type HashsetHit struct {
	SetName string
	HashMD5 string
	Comment string
}

// KeywordHit holds the attributes of a TSK_KEYWORD_HIT. KeywordSearchType
// is 0 for exact, 1 for substring and 2 for regular expression matches.
type KeywordHit struct {
	SetName           string
	Keyword           string
	KeywordRegexp     string
	KeywordPreview    string
	KeywordSearchType int
}

// InterestingItem holds the attributes of a TSK_INTERESTING_FILE_HIT or
// TSK_INTERESTING_ARTIFACT_HIT.
type InterestingItem struct {
	SetName string
	Comment string
}

// NewAnalysisResult creates an analysis result of a file. attributes is one
// of the attribute structs above or any other struct, its fields become snake
// case attributes.
func NewAnalysisResult(typeID int, dataSourceID, objID int64, score Significance, attributes interface{}) (*Artifact, error) {
	attrs, err := AttributesFromStruct(attributes)
	if err != nil {
		return nil, err
	}
	return &Artifact{
		ObjID:         objID,
		TypeID:        typeID,
		DataSourceID:  dataSourceID,
		SourceObjType: SourceFile,
		Score:         score,
		Attributes:    attrs,
	}, nil
}

// AttributesFromStruct converts a struct into artifact attributes. Field
// names become snake case, a `structs:"name"` tag sets the name explicitly.
// Empty strings, nil pointers and empty containers are dropped, numbers and
// booleans are kept even if zero.
func AttributesFromStruct(v interface{}) (Attributes, error) {
	if !structs.IsStruct(v) {
		return nil, errors.Errorf("attributes must be a struct, got %T", v)
	}
	b, err := json.Marshal(snakeKeys(structs.Map(v)))
	if err != nil {
		return nil, err
	}
	return b, nil
}

func snakeKeys(v interface{}) interface{} {
	switch v := v.(type) {
	case map[string]interface{}:
		m := make(map[string]interface{}, len(v))
		for k, child := range v {
			if !empty(child) {
				m[strcase.SnakeCase(k)] = snakeKeys(child)
			}
		}
		return m
	case []interface{}:
		for i := range v {
			v[i] = snakeKeys(v[i])
		}
		return v
	}
	return v
}

func empty(v interface{}) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Invalid:
		return true
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return rv.Len() == 0
	case reflect.Interface, reflect.Ptr:
		return rv.IsNil()
	}
	return false
}
