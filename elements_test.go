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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArtifact_Field(t *testing.T) {
	a := &Artifact{
		ID:         7,
		TypeID:     TypeKeywordHit,
		Score:      SignificanceNotable,
		Attributes: Attributes(`{"keyword": "secret", "keyword_search_type": 1, "nested": {"key": "v"}, "null": null}`),
	}
	regexp := &Artifact{Attributes: Attributes(`{"keyword": "4111", "keyword_regexp": "\\d{4}"}`)}

	tests := []struct {
		name   string
		record *Artifact
		field  string
		want   interface{}
		wantOk bool
	}{
		{"id", a, FieldArtifactID, int64(7), true},
		{"type", a, FieldArtifactTypeID, int64(TypeKeywordHit), true},
		{"score", a, FieldScore, int64(4), true},
		{"attribute", a, Attr(AttrKeyword), "secret", true},
		{"number attribute", a, Attr(AttrKeywordSearchType), float64(1), true},
		{"nested attribute", a, Attr("nested.key"), "v", true},
		{"null attribute", a, Attr("null"), nil, false},
		{"absent attribute", a, Attr(AttrSetName), nil, false},
		{"keyword term", a, FieldKeywordTerm, "secret", true},
		{"regexp term", regexp, FieldKeywordTerm, `\d{4}`, true},
		{"unknown", a, "foo", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.record.Field(tt.field)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFile_NameExtension(t *testing.T) {
	tests := []struct {
		name string
		file File
		want string
	}{
		{"name", File{Name: "Report.PDF"}, "pdf"},
		{"explicit", File{Name: "x", Extension: ".DOCX"}, "docx"},
		{"none", File{Name: "README"}, ""},
		{"dot file", File{Name: ".bashrc"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.file.NameExtension())
		})
	}
	assert.Equal(t, "/Users/a/x.txt", (&File{ParentPath: "/Users/a/", Name: "x.txt"}).Location())
}
