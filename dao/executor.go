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
	"context"

	"github.com/forensicanalysis/casestore"
	"github.com/forensicanalysis/casestore/cache"
	"github.com/forensicanalysis/casestore/filter"
)

// artifactQuery selects artifacts of one type. Where is executed by the
// store. Match, if set, is evaluated on the artifacts returned by Where
// after their attributes are loaded, and paging happens in memory.
type artifactQuery struct {
	artifactType casestore.ArtifactType
	where        filter.Expr
	match        filter.Expr
}

func typeFilter(typeID int, dataSourceID int64) filter.Expr {
	e := filter.And{filter.Eq{Field: casestore.FieldArtifactTypeID, Value: typeID}}
	if dataSourceID > 0 {
		e = append(e, filter.Eq{Field: casestore.FieldDataSourceID, Value: dataSourceID})
	}
	return e
}

// setFilter selects the artifacts of a set. An invalid name selects the
// artifacts without a set name.
func setFilter(setName NullString) filter.Expr {
	if !setName.Valid || filter.IsBlank(setName.String) {
		return filter.Blank{Field: casestore.Attr(casestore.AttrSetName)}
	}
	return filter.Eq{Field: casestore.Attr(casestore.AttrSetName), Value: setName.String}
}

func keywordFilter(p KeywordHitSearchParam) filter.Expr {
	e := filter.And{setFilter(p.SetName)}
	if p.SearchTerm.Valid {
		e = append(e,
			filter.Eq{Field: casestore.FieldKeywordTerm, Value: p.SearchTerm.String},
			filter.Eq{Field: casestore.FieldKeywordSearchType, Value: int(p.SearchType)},
		)
	}
	if p.Keyword.Valid {
		e = append(e, filter.Eq{Field: casestore.Attr(casestore.AttrKeyword), Value: p.Keyword.String})
	}
	return e
}

// artifactType resolves a type id and checks its category.
func artifactType(store Store, id int, category casestore.Category) (casestore.ArtifactType, error) {
	at, err := store.ArtifactType(id)
	if err != nil {
		return at, invalid("unknown artifact type %d", id)
	}
	if at.Category != category {
		return at, invalid("artifact type %s is not a %s type", at.Name, category)
	}
	return at, nil
}

// fetchArtifacts executes q and builds the page.
func fetchArtifacts(ctx context.Context, store Store, q artifactQuery, start, max int64) (*ArtifactTableSearchResults, error) {
	var page []*casestore.Artifact
	var total int64

	if q.match == nil {
		var err error
		page, err = store.ArtifactsWhere(ctx, q.where, casestore.Page{Offset: start, Limit: max})
		if err != nil {
			return nil, err
		}
		if err := store.LoadAttributes(ctx, page); err != nil {
			return nil, err
		}
		total = int64(len(page))
		if start > 0 || (max > 0 && total >= max) {
			if total, err = store.CountArtifactsWhere(ctx, q.where); err != nil {
				return nil, err
			}
		}
	} else {
		all, err := store.ArtifactsWhere(ctx, q.where, casestore.Page{})
		if err != nil {
			return nil, err
		}
		if err := store.LoadAttributes(ctx, all); err != nil {
			return nil, err
		}
		var matched []*casestore.Artifact
		for _, a := range all {
			ok, err := filter.Match(q.match, a)
			if err != nil {
				return nil, err
			}
			if ok {
				matched = append(matched, a)
			}
		}
		total = int64(len(matched))
		page = window(matched, start, max)
	}

	l := artifactLayout(q.artifactType.Category, page)
	rows := make([]RowDTO, 0, len(page))
	for _, a := range page {
		rows = append(rows, ArtifactRowDTO{
			BaseRowDTO:     BaseRowDTO{ID: a.ID, CellValues: l.cells(a)},
			ArtifactTypeID: a.TypeID,
			DataSourceID:   a.DataSourceID,
			SourceName:     a.SourceName,
			Artifact:       a,
		})
	}
	return &ArtifactTableSearchResults{
		TableSearchResults: TableSearchResults{
			TypeID:       q.artifactType.Name,
			DisplayName:  q.artifactType.DisplayName,
			Columns:      l.keys(),
			Rows:         rows,
			StartItem:    start,
			TotalResults: total,
		},
		ArtifactType: q.artifactType,
	}, nil
}

// window returns the items [start, start+max). A max of 0 means all.
func window[T any](items []T, start, max int64) []T {
	n := int64(len(items))
	if start >= n {
		return nil
	}
	end := n
	if max > 0 && start+max < n {
		end = start + max
	}
	return items[start:end]
}

// fetchFiles executes a file query and builds the page.
func fetchFiles(ctx context.Context, store Store, typeID, name string, where filter.Expr, start, max int64) (*TableSearchResults, error) {
	files, err := store.FilesWhere(ctx, where, casestore.Page{Offset: start, Limit: max})
	if err != nil {
		return nil, err
	}
	total := int64(len(files))
	if start > 0 || (max > 0 && total >= max) {
		if total, err = store.CountFilesWhere(ctx, where); err != nil {
			return nil, err
		}
	}
	rows := make([]RowDTO, 0, len(files))
	for _, f := range files {
		ext := f.NameExtension()
		rows = append(rows, FileRowDTO{
			BaseRowDTO: BaseRowDTO{ID: f.ID, CellValues: fileColumns.cells(f)},
			Name:       f.Name,
			Extension:  ext,
			MediaType:  MediaTypeOf(ext),
			Allocated:  f.Allocated,
			FileType:   f.Type,
			File:       f,
		})
	}
	return &TableSearchResults{
		TypeID:       typeID,
		DisplayName:  name,
		Columns:      fileColumns.keys(),
		Rows:         rows,
		StartItem:    start,
		TotalResults: total,
	}, nil
}

// cached serves params from c. A hard refresh drops every cached page of
// the same query first.
func cached[Q comparable, V any](ctx context.Context, c *cache.Cache[SearchParams[Q], V], params SearchParams[Q], hardRefresh bool, op string, load cache.Loader[V]) (V, error) {
	if hardRefresh {
		c.InvalidateFunc(func(k SearchParams[Q]) bool { return k.Query == params.Query })
	}
	v, err := c.Get(ctx, params, load)
	if err != nil {
		return v, execErr(op, err)
	}
	return v, nil
}

// compatible tells if an event of data source eventDS can change the result
// of a query on queryDS. 0 stands for all data sources.
func compatible(queryDS, eventDS int64) bool {
	return queryDS == 0 || eventDS == 0 || queryDS == eventDS
}
