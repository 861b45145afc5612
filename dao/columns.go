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

package dao

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/forensicanalysis/casestore"
	"github.com/forensicanalysis/casestore/goflatten"
)

// column couples a header with the function producing its cells, so
// headers and cells can not get out of step.
type column[R any] struct {
	key   ColumnKey
	value func(R) interface{}
}

type layout[R any] []column[R]

func (l layout[R]) keys() []ColumnKey {
	keys := make([]ColumnKey, 0, len(l))
	for _, c := range l {
		keys = append(keys, c.key)
	}
	return keys
}

func (l layout[R]) cells(r R) []interface{} {
	cells := make([]interface{}, 0, len(l))
	for _, c := range l {
		cells = append(cells, c.value(r))
	}
	return cells
}

func key(field, name, description string) ColumnKey {
	return ColumnKey{FieldName: field, DisplayName: name, Description: description}
}

/* ################################
#   Artifacts
################################ */

var sourceNameColumn = column[*casestore.Artifact]{
	key:   key(casestore.FieldSourceName, "Source Name", "Source Name"),
	value: func(a *casestore.Artifact) interface{} { return a.SourceName },
}

var sourceTypeColumn = column[*casestore.Artifact]{
	key:   key("source_type", "Source Type", "Source Type"),
	value: func(a *casestore.Artifact) interface{} { return a.SourceObjType },
}

var analysisResultColumns = layout[*casestore.Artifact]{
	sourceTypeColumn,
	{
		key:   key(casestore.FieldScore, "Score", "Score"),
		value: func(a *casestore.Artifact) interface{} { return a.Score.DisplayName() },
	},
	{
		key:   key("conclusion", "Conclusion", "Conclusion"),
		value: func(a *casestore.Artifact) interface{} { return a.Conclusion },
	},
	{
		key:   key("configuration", "Configuration", "Configuration"),
		value: func(a *casestore.Artifact) interface{} { return a.Configuration },
	},
	{
		key:   key("justification", "Justification", "Justification"),
		value: func(a *casestore.Artifact) interface{} { return a.Justification },
	},
}

var dataArtifactColumns = layout[*casestore.Artifact]{sourceTypeColumn}

// artifactLayout returns the columns of a page of artifacts: the source
// name, one column per attribute found in the page and the fixed columns
// of the category.
func artifactLayout(category casestore.Category, artifacts []*casestore.Artifact) layout[*casestore.Artifact] {
	l := layout[*casestore.Artifact]{sourceNameColumn}
	for _, name := range attributeKeys(artifacts) {
		name := name
		l = append(l, column[*casestore.Artifact]{
			key: key(casestore.Attr(name), displayName(name), ""),
			value: func(a *casestore.Artifact) interface{} {
				r := a.Attributes.Get(name)
				if !r.Exists() {
					return nil
				}
				return r.Value()
			},
		})
	}
	switch category {
	case casestore.AnalysisResult:
		l = append(l, analysisResultColumns...)
	default:
		l = append(l, dataArtifactColumns...)
	}
	return l
}

// attributeKeys returns the sorted union of the attribute paths.
func attributeKeys(artifacts []*casestore.Artifact) []string {
	seen := map[string]bool{}
	var names []string
	for _, a := range artifacts {
		m, err := a.Attributes.Map()
		if err != nil {
			continue
		}
		for _, k := range goflatten.Paths(m) {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
	}
	sort.Strings(names)
	return names
}

// displayName converts an attribute name like "set_name" into "Set Name".
func displayName(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool { return r == '_' || r == '.' })
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

/* ################################
#   Files
################################ */

func timeCell(unix int64) interface{} {
	if unix == 0 {
		return ""
	}
	return time.Unix(unix, 0).UTC().Format(time.RFC3339)
}

var fileColumns = layout[*casestore.File]{
	{key(casestore.FieldName, "Name", "Name"), func(f *casestore.File) interface{} { return f.Name }},
	{key("location", "Location", "Location"), func(f *casestore.File) interface{} { return f.Location() }},
	{key("mtime", "Modified Time", "Modified Time"), func(f *casestore.File) interface{} { return timeCell(f.Mtime) }},
	{key("ctime", "Change Time", "Change Time"), func(f *casestore.File) interface{} { return timeCell(f.Ctime) }},
	{key("atime", "Access Time", "Access Time"), func(f *casestore.File) interface{} { return timeCell(f.Atime) }},
	{key("crtime", "Created Time", "Created Time"), func(f *casestore.File) interface{} { return timeCell(f.Crtime) }},
	{key(casestore.FieldSize, "Size", "Size"), func(f *casestore.File) interface{} { return f.Size }},
	{key(casestore.FieldKnown, "Known", "Known"), func(f *casestore.File) interface{} { return f.Known.String() }},
	{key("md5", "MD5 Hash", "MD5 Hash"), func(f *casestore.File) interface{} { return f.MD5 }},
	{key(casestore.FieldMIMEType, "MIME Type", "MIME Type"), func(f *casestore.File) interface{} { return f.MIMEType }},
	{key(casestore.FieldExtension, "Extension", "Extension"), func(f *casestore.File) interface{} { return f.NameExtension() }},
}
