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
	"path"
	"strings"

	"github.com/tidwall/gjson"
)

// Attributes is the JSON object holding the typed values of an artifact.
type Attributes []byte

// Get returns the attribute at a dotted path.
func (a Attributes) Get(name string) gjson.Result {
	if len(a) == 0 {
		return gjson.Result{}
	}
	return gjson.GetBytes(a, name)
}

// String returns a string attribute. The second value is false if the
// attribute is absent or null.
func (a Attributes) String(name string) (string, bool) {
	r := a.Get(name)
	if !r.Exists() || r.Type == gjson.Null {
		return "", false
	}
	return r.String(), true
}

// Map unmarshals the attributes.
func (a Attributes) Map() (map[string]interface{}, error) {
	m := map[string]interface{}{}
	if len(a) == 0 {
		return m, nil
	}
	err := json.Unmarshal(a, &m)
	return m, err
}

// MarshalJSON embeds the attributes as an object.
func (a Attributes) MarshalJSON() ([]byte, error) {
	if len(a) == 0 {
		return []byte("{}"), nil
	}
	return a, nil
}

// Artifact is a typed finding on the blackboard.
type Artifact struct {
	ID            int64        `json:"id"`
	ObjID         int64        `json:"obj_id"`
	TypeID        int          `json:"artifact_type_id"`
	DataSourceID  int64        `json:"data_source_obj_id"`
	SourceObjType string       `json:"source_obj_type,omitempty"`
	SourceName    string       `json:"source_name,omitempty"`
	Score         Significance `json:"score"`
	Conclusion    string       `json:"conclusion,omitempty"`
	Configuration string       `json:"configuration,omitempty"`
	Justification string       `json:"justification,omitempty"`
	Attributes    Attributes   `json:"attributes"`
	InsertTime    string       `json:"insert_time,omitempty"`
}

// Field implements filter.Record. Attributes are only visible after they
// were loaded.
func (a *Artifact) Field(name string) (interface{}, bool) {
	switch name {
	case FieldArtifactID:
		return a.ID, true
	case FieldObjID:
		return a.ObjID, true
	case FieldArtifactTypeID:
		return int64(a.TypeID), true
	case FieldDataSourceID:
		return a.DataSourceID, true
	case FieldScore:
		return int64(a.Score), true
	case FieldSourceName:
		return a.SourceName, a.SourceName != ""
	case FieldKeywordTerm:
		if v, ok := a.attribute(AttrKeywordRegexp); ok {
			return v, true
		}
		return a.attribute(AttrKeyword)
	case FieldKeywordSearchType:
		if v, ok := a.attribute(AttrKeywordSearchType); ok {
			return v, true
		}
		return int64(0), true
	}
	if strings.HasPrefix(name, attributePrefix) {
		return a.attribute(strings.TrimPrefix(name, attributePrefix))
	}
	return nil, false
}

func (a *Artifact) attribute(name string) (interface{}, bool) {
	r := a.Attributes.Get(name)
	if !r.Exists() || r.Type == gjson.Null {
		return nil, false
	}
	return r.Value(), true
}

// File is a content object of a data source.
type File struct {
	ID           int64      `json:"id"`
	DataSourceID int64      `json:"data_source_obj_id"`
	Name         string     `json:"name"`
	ParentPath   string     `json:"parent_path,omitempty"`
	Extension    string     `json:"extension,omitempty"`
	MIMEType     string     `json:"mime_type,omitempty"`
	Size         int64      `json:"size"`
	DirType      NameType   `json:"dir_type"`
	Type         FileType   `json:"type"`
	Known        KnownState `json:"known"`
	Allocated    bool       `json:"allocated"`
	MD5          string     `json:"md5,omitempty"`
	Mtime        int64      `json:"mtime,omitempty"`
	Ctime        int64      `json:"ctime,omitempty"`
	Atime        int64      `json:"atime,omitempty"`
	Crtime       int64      `json:"crtime,omitempty"`
}

// Field implements filter.Record.
func (f *File) Field(name string) (interface{}, bool) {
	switch name {
	case FieldObjID:
		return f.ID, true
	case FieldDataSourceID:
		return f.DataSourceID, true
	case FieldName:
		return f.Name, true
	case FieldParentPath:
		return f.ParentPath, true
	case FieldExtension:
		return f.NameExtension(), true
	case FieldMIMEType:
		return f.MIMEType, f.MIMEType != ""
	case FieldSize:
		return f.Size, true
	case FieldDirType:
		return int64(f.DirType), true
	case FieldType:
		return int64(f.Type), true
	case FieldKnown:
		return int64(f.Known), true
	}
	return nil, false
}

// NameExtension returns the lower case extension without the dot. An
// explicitly set extension takes precedence over the name.
func (f *File) NameExtension() string {
	if f.Extension != "" {
		return strings.ToLower(strings.TrimPrefix(f.Extension, "."))
	}
	return extension(f.Name)
}

// Location is the full path of the file.
func (f *File) Location() string {
	return path.Join("/", f.ParentPath, f.Name)
}

func extension(name string) string {
	ext := path.Ext(name)
	if ext == "" || ext == name {
		return ""
	}
	return strings.ToLower(ext[1:])
}

// DataSource is one ingested piece of evidence.
type DataSource struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	AddedTime string `json:"added_time"`
}
