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
	"github.com/forensicanalysis/casestore"
)

// ColumnKey describes a column of a table result.
type ColumnKey struct {
	FieldName   string `json:"field_name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
}

// RowDTO is a row of a table result. Cells holds one value per column.
type RowDTO interface {
	RowID() int64
	Cells() []interface{}
}

// BaseRowDTO holds the values of a row.
type BaseRowDTO struct {
	ID         int64         `json:"id"`
	CellValues []interface{} `json:"cells"`
}

// RowID returns the id of the backing object.
func (r BaseRowDTO) RowID() int64 { return r.ID }

// Cells returns the cell values.
func (r BaseRowDTO) Cells() []interface{} { return r.CellValues }

// ArtifactRowDTO is a row backed by an artifact.
type ArtifactRowDTO struct {
	BaseRowDTO
	ArtifactTypeID int                 `json:"artifact_type_id"`
	DataSourceID   int64               `json:"data_source_obj_id"`
	SourceName     string              `json:"source_name"`
	Artifact       *casestore.Artifact `json:"-"`
}

// FileRowDTO is a row backed by a file.
type FileRowDTO struct {
	BaseRowDTO
	Name      string             `json:"name"`
	Extension string             `json:"extension"`
	MediaType ExtensionMediaType `json:"media_type"`
	Allocated bool               `json:"allocated"`
	FileType  casestore.FileType `json:"file_type"`
	File      *casestore.File    `json:"-"`
}

// TableSearchResults is one page of a query. TotalResults counts every
// matching item, not only the items of the page.
type TableSearchResults struct {
	TypeID       string      `json:"type_id"`
	DisplayName  string      `json:"display_name"`
	Columns      []ColumnKey `json:"columns"`
	Rows         []RowDTO    `json:"rows"`
	StartItem    int64       `json:"start_item"`
	TotalResults int64       `json:"total_results"`
}

// ArtifactTableSearchResults is a page of artifacts of one type.
type ArtifactTableSearchResults struct {
	TableSearchResults
	ArtifactType casestore.ArtifactType `json:"artifact_type"`
}

type (
	// AnalysisResultTableSearchResults is a page of analysis results.
	AnalysisResultTableSearchResults = ArtifactTableSearchResults
	// DataArtifactTableSearchResults is a page of data artifacts.
	DataArtifactTableSearchResults = ArtifactTableSearchResults
)

// TreeItem is a node of a navigation tree. TypeData holds the query
// descriptor which selects the items behind the node.
type TreeItem[T any] struct {
	TypeID      string      `json:"type_id"`
	TypeData    T           `json:"type_data"`
	ID          interface{} `json:"id"`
	DisplayName string      `json:"display_name"`
	Count       *int64      `json:"count,omitempty"`
}

// KeywordTermID identifies a search term node. The same term can be
// searched with different search types within one list.
type KeywordTermID struct {
	Term       string            `json:"term"`
	SearchType KeywordSearchType `json:"search_type"`
}

// TreeResults is a list of tree items.
type TreeResults[T any] struct {
	Items []TreeItem[T] `json:"items"`
}

// AnalysisCountRecord is a row of the analysis summary.
type AnalysisCountRecord struct {
	Identifier string `json:"identifier"`
	Count      int64  `json:"count"`
	ArtifactID int64  `json:"artifact_id"`
}

func countOf(n int64) *int64 {
	return &n
}
