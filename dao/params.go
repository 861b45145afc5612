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
	"database/sql"
	"encoding/json"
)

// SearchParams is a request for one page of a query. It is the cache key
// of the table results, two requests with equal fields share an entry.
type SearchParams[Q comparable] struct {
	Query     Q
	StartItem int64
	MaxCount  int64 // 0 returns all items
}

// NewSearchParams validates the page and creates the params.
func NewSearchParams[Q comparable](query Q, startItem, maxCount int64) (SearchParams[Q], error) {
	if startItem < 0 {
		return SearchParams[Q]{}, invalid("start item must not be negative, got %d", startItem)
	}
	if maxCount < 0 {
		return SearchParams[Q]{}, invalid("max count must not be negative, got %d", maxCount)
	}
	return SearchParams[Q]{Query: query, StartItem: startItem, MaxCount: maxCount}, nil
}

// NullString is a comparable optional string.
type NullString struct {
	sql.NullString
}

// Some returns a valid NullString.
func Some(s string) NullString {
	return NullString{sql.NullString{String: s, Valid: true}}
}

// MarshalJSON encodes an invalid string as null.
func (n NullString) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.String)
}

// UnmarshalJSON decodes null as an invalid string.
func (n *NullString) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil {
		*n = NullString{}
		return nil
	}
	*n = Some(*s)
	return nil
}

// validDataSource checks a data source id, 0 selects all data sources.
func validDataSource(id int64) error {
	if id < 0 {
		return invalid("data source id must be 0 or positive, got %d", id)
	}
	return nil
}

// DataArtifactSearchParam selects the data artifacts of a type.
type DataArtifactSearchParam struct {
	ArtifactTypeID int   `json:"artifact_type_id"`
	DataSourceID   int64 `json:"data_source_id,omitempty"`
}

// Validate checks the data source id.
func (p DataArtifactSearchParam) Validate() error {
	return validDataSource(p.DataSourceID)
}

// AnalysisResultSearchParam selects the analysis results of a type.
type AnalysisResultSearchParam struct {
	ArtifactTypeID int   `json:"artifact_type_id"`
	DataSourceID   int64 `json:"data_source_id,omitempty"`
}

// Validate checks the data source id.
func (p AnalysisResultSearchParam) Validate() error {
	return validDataSource(p.DataSourceID)
}

// AnalysisResultSetSearchParam selects the analysis results of a type in
// one set. An invalid SetName selects the results without a set.
type AnalysisResultSetSearchParam struct {
	ArtifactTypeID int        `json:"artifact_type_id"`
	DataSourceID   int64      `json:"data_source_id,omitempty"`
	SetName        NullString `json:"set_name"`
}

// Validate checks the data source id.
func (p AnalysisResultSetSearchParam) Validate() error {
	return validDataSource(p.DataSourceID)
}

// HashHitSearchParam selects the hits of one hash set.
type HashHitSearchParam struct {
	DataSourceID int64      `json:"data_source_id,omitempty"`
	SetName      NullString `json:"set_name"`
}

// Validate checks the data source id.
func (p HashHitSearchParam) Validate() error {
	return validDataSource(p.DataSourceID)
}

// KeywordSearchType is the kind of a keyword search.
type KeywordSearchType int

// Keyword search types.
const (
	ExactMatch KeywordSearchType = iota
	SubstringMatch
	RegexMatch
)

func (t KeywordSearchType) String() string {
	switch t {
	case ExactMatch:
		return "Exact"
	case SubstringMatch:
		return "Substring"
	case RegexMatch:
		return "Regex"
	}
	return "Unknown"
}

func (t KeywordSearchType) valid() bool {
	return t >= ExactMatch && t <= RegexMatch
}

// KeywordHitSearchParam selects keyword hits of one list. SearchTerm
// together with SearchType and Keyword narrow the selection if valid.
type KeywordHitSearchParam struct {
	DataSourceID int64             `json:"data_source_id,omitempty"`
	SetName      NullString        `json:"set_name"`
	SearchTerm   NullString        `json:"search_term"`
	SearchType   KeywordSearchType `json:"search_type"`
	Keyword      NullString        `json:"keyword"`
}

// Validate checks the data source id and the search type.
func (p KeywordHitSearchParam) Validate() error {
	if err := validDataSource(p.DataSourceID); err != nil {
		return err
	}
	if !p.SearchType.valid() {
		return invalid("unsupported keyword search type %d", p.SearchType)
	}
	return nil
}

// KeywordSearchTermParams is a search term of a keyword list in the tree.
// HasChildren is set if the term matched more than one keyword.
type KeywordSearchTermParams struct {
	KeywordHitSearchParam
	HasChildren bool `json:"has_children"`
}

// FileTypeExtensionsSearchParams selects files by an extension filter.
type FileTypeExtensionsSearchParams struct {
	Filter       FileExtFilter `json:"filter"`
	DataSourceID int64         `json:"data_source_id,omitempty"`
}

// Validate checks the filter and the data source id.
func (p FileTypeExtensionsSearchParams) Validate() error {
	if _, ok := extFilters[p.Filter]; !ok {
		return invalid("unsupported extension filter %d", p.Filter)
	}
	return validDataSource(p.DataSourceID)
}

// FileTypeMimeSearchParams selects files by MIME type.
type FileTypeMimeSearchParams struct {
	MimeType     string `json:"mime_type"`
	DataSourceID int64  `json:"data_source_id,omitempty"`
}

// Validate checks the MIME type and the data source id.
func (p FileTypeMimeSearchParams) Validate() error {
	if p.MimeType == "" {
		return invalid("mime type must not be empty")
	}
	return validDataSource(p.DataSourceID)
}

// FileSizeFilter is a bucket of file sizes.
type FileSizeFilter int

// File size buckets.
const (
	Size50To200MB FileSizeFilter = iota
	Size200MBTo1GB
	Size1GBPlus
)

var sizeFilters = map[FileSizeFilter]struct {
	name     string
	min, max int64 // max 0 is unbounded
}{
	Size50To200MB:  {"50 - 200MB", 50_000_000, 200_000_000},
	Size200MBTo1GB: {"200MB - 1GB", 200_000_000, 1_000_000_000},
	Size1GBPlus:    {"1GB+", 1_000_000_000, 0},
}

// DisplayName returns the name of the bucket.
func (f FileSizeFilter) DisplayName() string {
	return sizeFilters[f].name
}

// FileTypeSizeSearchParams selects files by size bucket.
type FileTypeSizeSearchParams struct {
	SizeFilter   FileSizeFilter `json:"size_filter"`
	DataSourceID int64          `json:"data_source_id,omitempty"`
}

// Validate checks the filter and the data source id.
func (p FileTypeSizeSearchParams) Validate() error {
	if _, ok := sizeFilters[p.SizeFilter]; !ok {
		return invalid("unsupported size filter %d", p.SizeFilter)
	}
	return validDataSource(p.DataSourceID)
}
