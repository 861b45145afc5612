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

package api

import (
	"net/http"

	"github.com/forensicanalysis/casestore/dao"
)

/* ################################
#   Trees
################################ */

func (s *Server) analysisResultCounts(w http.ResponseWriter, r *http.Request) {
	q := &query{r: r}
	ds := q.int64("data_source")
	if q.err != nil {
		s.handleError(r.Context(), w, q.err)
		return
	}
	res, err := s.dao.AnalysisResults.AnalysisResultCounts(r.Context(), ds)
	s.respond(w, r, res, err)
}

func (s *Server) dataArtifactCounts(w http.ResponseWriter, r *http.Request) {
	q := &query{r: r}
	ds := q.int64("data_source")
	if q.err != nil {
		s.handleError(r.Context(), w, q.err)
		return
	}
	res, err := s.dao.DataArtifacts.DataArtifactCounts(r.Context(), ds)
	s.respond(w, r, res, err)
}

func (s *Server) setCounts(w http.ResponseWriter, r *http.Request) {
	q := &query{r: r}
	typeID := int(q.path("type"))
	ds := q.int64("data_source")
	if q.err != nil {
		s.handleError(r.Context(), w, q.err)
		return
	}
	res, err := s.dao.AnalysisResults.SetCounts(r.Context(), typeID, ds, q.nullString("null_set"))
	s.respond(w, r, res, err)
}

func (s *Server) hashHitSetCounts(w http.ResponseWriter, r *http.Request) {
	q := &query{r: r}
	ds := q.int64("data_source")
	if q.err != nil {
		s.handleError(r.Context(), w, q.err)
		return
	}
	res, err := s.dao.AnalysisResults.HashHitSetCounts(r.Context(), ds)
	s.respond(w, r, res, err)
}

func (s *Server) keywordSetCounts(w http.ResponseWriter, r *http.Request) {
	q := &query{r: r}
	ds := q.int64("data_source")
	if q.err != nil {
		s.handleError(r.Context(), w, q.err)
		return
	}
	res, err := s.dao.AnalysisResults.KeywordSetCounts(r.Context(), ds, q.nullString("null_set"))
	s.respond(w, r, res, err)
}

func (s *Server) keywordSearchTermCounts(w http.ResponseWriter, r *http.Request) {
	q := &query{r: r}
	ds := q.int64("data_source")
	if q.err != nil {
		s.handleError(r.Context(), w, q.err)
		return
	}
	res, err := s.dao.AnalysisResults.KeywordSearchTermCounts(r.Context(), q.nullString("set"), ds)
	s.respond(w, r, res, err)
}

func (s *Server) keywordMatchCounts(w http.ResponseWriter, r *http.Request) {
	q := &query{r: r}
	ds := q.int64("data_source")
	searchType := dao.KeywordSearchType(q.int("search_type"))
	if q.err != nil {
		s.handleError(r.Context(), w, q.err)
		return
	}
	res, err := s.dao.AnalysisResults.KeywordMatchCounts(r.Context(), q.nullString("set"), q.string("term"), searchType, ds)
	s.respond(w, r, res, err)
}

// fileExtensionCounts returns the root filters or, with parent=documents,
// the document sub filters.
func (s *Server) fileExtensionCounts(w http.ResponseWriter, r *http.Request) {
	q := &query{r: r}
	ds := q.int64("data_source")
	if q.err != nil {
		s.handleError(r.Context(), w, q.err)
		return
	}
	var filters []dao.FileExtFilter
	switch q.string("parent") {
	case "":
	case "documents":
		filters = dao.DocumentExtFilters
	default:
		writeError(w, http.StatusBadRequest, "invalid_argument", "unknown parent "+q.string("parent"))
		return
	}
	res, err := s.dao.Views.FileExtensionCounts(r.Context(), filters, ds)
	s.respond(w, r, res, err)
}

/* ################################
#   Tables
################################ */

func (s *Server) analysisResults(w http.ResponseWriter, r *http.Request) {
	q := &query{r: r}
	key := dao.AnalysisResultSearchParam{ArtifactTypeID: int(q.path("type")), DataSourceID: q.int64("data_source")}
	p := q.page()
	if q.err != nil {
		s.handleError(r.Context(), w, q.err)
		return
	}
	res, err := s.dao.AnalysisResults.AnalysisResultsForTable(r.Context(), key, p.start, p.max, p.refresh)
	s.respond(w, r, res, err)
}

func (s *Server) dataArtifacts(w http.ResponseWriter, r *http.Request) {
	q := &query{r: r}
	key := dao.DataArtifactSearchParam{ArtifactTypeID: int(q.path("type")), DataSourceID: q.int64("data_source")}
	p := q.page()
	if q.err != nil {
		s.handleError(r.Context(), w, q.err)
		return
	}
	res, err := s.dao.DataArtifacts.DataArtifactsForTable(r.Context(), key, p.start, p.max, p.refresh)
	s.respond(w, r, res, err)
}

func (s *Server) hashHits(w http.ResponseWriter, r *http.Request) {
	q := &query{r: r}
	key := dao.HashHitSearchParam{DataSourceID: q.int64("data_source"), SetName: q.nullString("set")}
	p := q.page()
	if q.err != nil {
		s.handleError(r.Context(), w, q.err)
		return
	}
	res, err := s.dao.AnalysisResults.HashHitsForTable(r.Context(), key, p.start, p.max, p.refresh)
	s.respond(w, r, res, err)
}

func (s *Server) keywordHits(w http.ResponseWriter, r *http.Request) {
	q := &query{r: r}
	key := dao.KeywordHitSearchParam{
		DataSourceID: q.int64("data_source"),
		SetName:      q.nullString("set"),
		SearchTerm:   q.nullString("term"),
		SearchType:   dao.KeywordSearchType(q.int("search_type")),
		Keyword:      q.nullString("keyword"),
	}
	p := q.page()
	if q.err != nil {
		s.handleError(r.Context(), w, q.err)
		return
	}
	res, err := s.dao.AnalysisResults.KeywordHitsForTable(r.Context(), key, p.start, p.max, p.refresh)
	s.respond(w, r, res, err)
}

func (s *Server) setHits(w http.ResponseWriter, r *http.Request) {
	q := &query{r: r}
	key := dao.AnalysisResultSetSearchParam{
		ArtifactTypeID: int(q.path("type")),
		DataSourceID:   q.int64("data_source"),
		SetName:        q.nullString("set"),
	}
	p := q.page()
	if q.err != nil {
		s.handleError(r.Context(), w, q.err)
		return
	}
	res, err := s.dao.AnalysisResults.SetHitsForTable(r.Context(), key, p.start, p.max, p.refresh)
	s.respond(w, r, res, err)
}

func (s *Server) filesByExtension(w http.ResponseWriter, r *http.Request) {
	q := &query{r: r}
	key := dao.FileTypeExtensionsSearchParams{Filter: dao.FileExtFilter(q.path("filter")), DataSourceID: q.int64("data_source")}
	p := q.page()
	if q.err != nil {
		s.handleError(r.Context(), w, q.err)
		return
	}
	res, err := s.dao.Views.FilesByExtension(r.Context(), key, p.start, p.max, p.refresh)
	s.respond(w, r, res, err)
}

func (s *Server) filesByMime(w http.ResponseWriter, r *http.Request) {
	q := &query{r: r}
	key := dao.FileTypeMimeSearchParams{MimeType: q.string("mime"), DataSourceID: q.int64("data_source")}
	p := q.page()
	if q.err != nil {
		s.handleError(r.Context(), w, q.err)
		return
	}
	res, err := s.dao.Views.FilesByMime(r.Context(), key, p.start, p.max, p.refresh)
	s.respond(w, r, res, err)
}

func (s *Server) filesBySize(w http.ResponseWriter, r *http.Request) {
	q := &query{r: r}
	key := dao.FileTypeSizeSearchParams{SizeFilter: dao.FileSizeFilter(q.path("filter")), DataSourceID: q.int64("data_source")}
	p := q.page()
	if q.err != nil {
		s.handleError(r.Context(), w, q.err)
		return
	}
	res, err := s.dao.Views.FilesBySize(r.Context(), key, p.start, p.max, p.refresh)
	s.respond(w, r, res, err)
}

/* ################################
#   Summary
################################ */

// Summary is the analysis summary of a data source.
type Summary struct {
	Hashsets         []dao.AnalysisCountRecord `json:"hashsets"`
	Keywords         []dao.AnalysisCountRecord `json:"keywords"`
	InterestingItems []dao.AnalysisCountRecord `json:"interesting_items"`
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	q := &query{r: r}
	ds := q.path("dataSource")
	if q.err != nil {
		s.handleError(r.Context(), w, q.err)
		return
	}
	ctx := r.Context()
	var sum Summary
	var err error
	if sum.Hashsets, err = s.dao.Summary.HashsetCounts(ctx, ds); err != nil {
		s.handleError(ctx, w, err)
		return
	}
	if sum.Keywords, err = s.dao.Summary.KeywordCounts(ctx, ds); err != nil {
		s.handleError(ctx, w, err)
		return
	}
	if sum.InterestingItems, err = s.dao.Summary.InterestingItemCounts(ctx, ds); err != nil {
		s.handleError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
