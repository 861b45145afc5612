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
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forensicanalysis/casestore"
	"github.com/forensicanalysis/casestore/filter"
)

const testMapping = `
files:
  - glob: "**/*history*.tsv"
    artifact_type: TSK_WEB_HISTORY
    comment: Chrome
    columns:
      - headers: [URL, Address]
        attribute: url
      - headers: [Visit Count]
        attribute: visit.count
        type: integer
      - headers: [Last Visit]
        attribute: visited
        type: datetime
      - headers: [Profile]
        attribute: profile
`

func setup(t *testing.T) (*casestore.Store, afero.Fs) {
	store, err := casestore.New(filepath.Join(t.TempDir(), "case.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() }) // nolint:errcheck

	fs := afero.NewMemMapFs()
	files := map[string]string{
		"/leapp/browser/chrome_history.tsv": "\ufeffurl \tVisit Count\tLast Visit\n" +
			"https://example.com\t3\t2021-01-02 03:04:05\n" +
			"https://example.org\tmany\t\n",
		"/leapp/notes.tsv":         "a\tb\n1\t2\n",
		"/leapp/readme.txt":        "not a tsv",
		"/leapp/empty_history.tsv": "",
	}
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0644))
	}
	return store, fs
}

func TestImporter_Import(t *testing.T) {
	store, fs := setup(t)
	ctx := context.Background()
	mapping, err := ParseMapping([]byte(testMapping))
	require.NoError(t, err)

	report, err := New(store, mapping, WithFs(fs)).Import(ctx, "/leapp", 1)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Files)
	assert.Equal(t, 2, report.Artifacts)
	assert.Equal(t, []string{"notes.tsv"}, report.Skipped)

	var parseWarnings []Warning
	for _, w := range report.Warnings {
		if w.Line > 0 {
			parseWarnings = append(parseWarnings, w)
		}
	}
	require.Len(t, parseWarnings, 1)
	assert.Equal(t, Warning{
		File: "browser/chrome_history.tsv", Line: 3, Column: "visit.count", Value: "many",
		Message: parseWarnings[0].Message,
	}, parseWarnings[0])

	artifacts, err := store.ArtifactsWhere(ctx, filter.Eq{Field: casestore.FieldArtifactTypeID, Value: casestore.TypeWebHistory}, casestore.Page{})
	require.NoError(t, err)
	require.Len(t, artifacts, 2)
	require.NoError(t, store.LoadAttributes(ctx, artifacts))

	first, second := artifacts[0], artifacts[1]
	assert.Equal(t, "https://example.com", first.Attributes.Get("url").String())
	assert.Equal(t, int64(3), first.Attributes.Get("visit.count").Int())
	assert.Equal(t, time.Date(2021, 1, 2, 3, 4, 5, 0, time.UTC).Unix(), first.Attributes.Get("visited").Int())
	assert.Equal(t, "Chrome", first.Attributes.Get("comment").String())
	assert.Equal(t, "chrome_history.tsv", first.SourceName)

	assert.True(t, second.Attributes.Get("visit.count").Exists())
	assert.Equal(t, int64(0), second.Attributes.Get("visit.count").Int())
	assert.False(t, second.Attributes.Get("visited").Exists())

	files, err := store.FilesWhere(ctx, filter.Eq{Field: casestore.FieldName, Value: "chrome_history.tsv"}, casestore.Page{})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, casestore.FileTypeLocal, files[0].Type)
	assert.Equal(t, "browser", files[0].ParentPath)
}

func TestParseMapping(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{"valid", testMapping, false},
		{"default type", "files:\n  - glob: '*.tsv'\n    artifact_type: TSK_WEB_HISTORY\n    columns:\n      - {headers: [a], attribute: a}\n", false},
		{"missing glob", "files:\n  - artifact_type: TSK_WEB_HISTORY\n", true},
		{"missing type", "files:\n  - glob: '*.tsv'\n", true},
		{"unknown value type", "files:\n  - glob: '*.tsv'\n    artifact_type: X\n    columns:\n      - {headers: [a], attribute: a, type: blob}\n", true},
		{"no headers", "files:\n  - glob: '*.tsv'\n    artifact_type: X\n    columns:\n      - {attribute: a}\n", true},
		{"no yaml", "files: [", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseMapping([]byte(tt.yaml))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, fm := range m.Files {
				for _, c := range fm.Columns {
					assert.NotEmpty(t, c.Type)
				}
			}
		})
	}
}

func Test_parseValue(t *testing.T) {
	tests := []struct {
		name    string
		t       ValueType
		raw     string
		want    interface{}
		wantErr bool
	}{
		{"string", String, " a ", " a ", false},
		{"integer", Integer, " 42 ", int64(42), false},
		{"integer overflow", Integer, "4294967296", nil, true},
		{"long", Long, "4294967296", int64(4294967296), false},
		{"double", Double, "1.5", 1.5, false},
		{"double invalid", Double, "x", nil, true},
		{"datetime unix", DateTime, "1609556645", int64(1609556645), false},
		{"datetime rfc3339", DateTime, "2021-01-02T03:04:05Z", int64(1609556645), false},
		{"datetime invalid", DateTime, "yesterday", nil, true},
		{"json", JSON, `{"a": [1]}`, map[string]interface{}{"a": []interface{}{float64(1)}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseValue(tt.t, tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_cleanHeader(t *testing.T) {
	assert.Equal(t, []string{"URL", "Visit Count"}, cleanHeader([]string{"\ufeffURL", " Visit\x00 Count "}))
}

func TestImporter_ImportInvalidRow(t *testing.T) {
	store, fs := setup(t)
	ctx := context.Background()
	mapping, err := ParseMapping([]byte(`
files:
  - glob: "hashes.tsv"
    artifact_type: TSK_HASHSET_HIT
    columns:
      - {headers: [MD5], attribute: hash_md5}
      - {headers: [Set], attribute: set_name}
`))
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, "/hashes/hashes.tsv", []byte("MD5\tSet\nabc\tNSRL\nghi\ndef\tNSRL\n"), 0644))

	report, err := New(store, mapping, WithFs(fs)).Import(ctx, "/hashes", 1)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Files)
	assert.Equal(t, 2, report.Artifacts)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, "hashes.tsv", report.Warnings[0].File)
	assert.Equal(t, 3, report.Warnings[0].Line)
	assert.Contains(t, report.Warnings[0].Message, "set_name")

	artifacts, err := store.ArtifactsWhere(ctx, filter.Eq{Field: casestore.FieldArtifactTypeID, Value: casestore.TypeHashsetHit}, casestore.Page{})
	require.NoError(t, err)
	require.Len(t, artifacts, 2)
	require.NoError(t, store.LoadAttributes(ctx, artifacts))

	var hashes []string
	for _, a := range artifacts {
		hashes = append(hashes, a.Attributes.Get(casestore.AttrHashMD5).String())
	}
	assert.ElementsMatch(t, []string{"abc", "def"}, hashes)
}
