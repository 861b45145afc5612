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

// Package importer reads artifacts from tab separated files. A mapping
// assigns each file to an artifact type and each column to an attribute.
// Fields that can not be parsed are imported with a zero value and
// reported, the import goes on.
package importer

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/forensicanalysis/fsdoublestar"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/forensicanalysis/casestore"
	"github.com/forensicanalysis/casestore/goflatten"
)

const tsvGlob = "**/*.tsv"

// Store is the part of the case store the importer writes to.
type Store interface {
	ArtifactTypeByName(name string) (casestore.ArtifactType, error)
	AddFile(ctx context.Context, file *casestore.File) error
	ValidateArtifact(ctx context.Context, artifact *casestore.Artifact) error
	PostArtifacts(ctx context.Context, artifacts []*casestore.Artifact) error
}

// Warning describes a field or file that was not imported as is.
type Warning struct {
	File    string `json:"file"`
	Line    int    `json:"line,omitempty"`
	Column  string `json:"column,omitempty"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

// Report summarizes an import.
type Report struct {
	Files     int       `json:"files"`
	Artifacts int       `json:"artifacts"`
	Skipped   []string  `json:"skipped,omitempty"`
	Warnings  []Warning `json:"warnings,omitempty"`
}

// Importer imports TSV files into a store.
type Importer struct {
	store   Store
	fs      afero.Fs
	mapping Mapping
	logger  *zap.Logger
}

// Option configures an Importer.
type Option func(*Importer)

// WithFs sets the file system the files are read from.
func WithFs(fs afero.Fs) Option {
	return func(im *Importer) {
		im.fs = fs
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(im *Importer) {
		im.logger = logger
	}
}

// New creates an importer reading from the OS file system.
func New(store Store, mapping Mapping, opts ...Option) *Importer {
	im := &Importer{store: store, fs: afero.NewOsFs(), mapping: mapping, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Import imports every TSV file below dir. Files without mapping are
// skipped.
func (im *Importer) Import(ctx context.Context, dir string, dataSourceID int64) (*Report, error) {
	var files []string
	err := afero.Walk(im.fs, dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if ok, err := fsdoublestar.Match(tsvGlob, strings.ToLower(rel)); err != nil || !ok {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "could not walk %s", dir)
	}

	report := &Report{}
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		fm, err := im.mapping.lookup(rel)
		if err != nil {
			return report, err
		}
		if fm == nil {
			im.logger.Debug("no mapping", zap.String("file", rel))
			report.Skipped = append(report.Skipped, rel)
			continue
		}
		if err := im.importFile(ctx, dir, rel, fm, dataSourceID, report); err != nil {
			return report, errors.Wrapf(err, "could not import %s", rel)
		}
	}
	return report, nil
}

func (im *Importer) importFile(ctx context.Context, dir, rel string, fm *FileMapping, dataSourceID int64, report *Report) error { // nolint:funlen,gocyclo
	at, err := im.store.ArtifactTypeByName(fm.ArtifactType)
	if err != nil {
		return err
	}

	p := filepath.Join(dir, filepath.FromSlash(rel))
	info, err := im.fs.Stat(p)
	if err != nil {
		return err
	}
	f, err := im.fs.Open(p)
	if err != nil {
		return err
	}
	defer f.Close() // nolint:errcheck

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil && err != io.EOF {
		return err
	}
	index := columnIndex(cleanHeader(header), fm.Columns)
	for i, c := range fm.Columns {
		if index[i] < 0 {
			im.warn(report, Warning{File: rel, Column: c.Attribute, Message: "column not found"})
		}
	}

	parent := path.Dir(rel)
	if parent == "." {
		parent = ""
	}
	file := &casestore.File{
		DataSourceID: dataSourceID,
		Name:         path.Base(rel),
		ParentPath:   parent,
		MIMEType:     "text/tab-separated-values",
		Size:         info.Size(),
		DirType:      casestore.NameTypeReg,
		Type:         casestore.FileTypeLocal,
		Allocated:    true,
		Mtime:        info.ModTime().Unix(),
	}
	if err := im.store.AddFile(ctx, file); err != nil {
		return err
	}
	report.Files++

	var artifacts []*casestore.Artifact
	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			im.warn(report, Warning{File: rel, Line: line, Message: err.Error()})
			continue
		}

		flat := map[string]interface{}{}
		if fm.Comment != "" {
			flat[casestore.AttrComment] = fm.Comment
		}
		for i, c := range fm.Columns {
			if index[i] < 0 || index[i] >= len(record) {
				continue
			}
			raw := record[index[i]]
			if c.Type != String && strings.TrimSpace(raw) == "" {
				continue
			}
			v, err := parseValue(c.Type, raw)
			if err != nil {
				im.warn(report, Warning{File: rel, Line: line, Column: c.Attribute, Value: raw, Message: err.Error()})
				v = zero(c.Type)
			}
			flat[c.Attribute] = v
		}

		nested, err := goflatten.Unflatten(flat)
		if err != nil {
			im.warn(report, Warning{File: rel, Line: line, Message: err.Error()})
			continue
		}
		attributes, err := json.Marshal(nested)
		if err != nil {
			return err
		}
		artifact := &casestore.Artifact{
			ObjID:         file.ID,
			TypeID:        at.ID,
			DataSourceID:  dataSourceID,
			SourceObjType: casestore.SourceFile,
			Attributes:    attributes,
		}
		if err := im.store.ValidateArtifact(ctx, artifact); err != nil {
			if !errors.Is(err, casestore.ErrValidation) {
				return err
			}
			im.warn(report, Warning{File: rel, Line: line, Message: err.Error()})
			continue
		}
		artifacts = append(artifacts, artifact)
	}

	if len(artifacts) == 0 {
		return nil
	}
	if err := im.store.PostArtifacts(ctx, artifacts); err != nil {
		return err
	}
	report.Artifacts += len(artifacts)
	im.logger.Info("imported", zap.String("file", rel), zap.String("type", at.Name), zap.Int("artifacts", len(artifacts)))
	return nil
}

func (im *Importer) warn(report *Report, w Warning) {
	im.logger.Warn(w.Message, zap.String("file", w.File), zap.Int("line", w.Line),
		zap.String("column", w.Column), zap.String("value", w.Value))
	report.Warnings = append(report.Warnings, w)
}

// cleanHeader removes unprintable characters like byte order marks.
func cleanHeader(header []string) []string {
	cleaned := make([]string, len(header))
	for i, h := range header {
		cleaned[i] = strings.TrimSpace(strings.Map(func(r rune) rune {
			if unicode.IsPrint(r) {
				return r
			}
			return -1
		}, h))
	}
	return cleaned
}

// columnIndex returns the header position of every column, -1 if absent.
func columnIndex(header []string, columns []Column) []int {
	index := make([]int, len(columns))
	for i, c := range columns {
		index[i] = -1
	headers:
		for _, alias := range c.Headers {
			for j, h := range header {
				if strings.EqualFold(h, alias) {
					index[i] = j
					break headers
				}
			}
		}
	}
	return index
}
