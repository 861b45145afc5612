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
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/forensicanalysis/casestore"
	"github.com/forensicanalysis/casestore/cache"
	"github.com/forensicanalysis/casestore/config"
	"github.com/forensicanalysis/casestore/filter"
)

// ViewsDAO serves the file views by extension, MIME type and size.
type ViewsDAO struct {
	store  Store
	logger *zap.Logger

	mu    sync.RWMutex
	prefs config.ViewsConfig

	byExt  *cache.Cache[SearchParams[FileTypeExtensionsSearchParams], *TableSearchResults]
	byMime *cache.Cache[SearchParams[FileTypeMimeSearchParams], *TableSearchResults]
	bySize *cache.Cache[SearchParams[FileTypeSizeSearchParams], *TableSearchResults]
}

func newViewsDAO(store Store, cfg config.Config, logger *zap.Logger) (*ViewsDAO, error) {
	d := &ViewsDAO{store: store, logger: logger, prefs: cfg.Views}
	var err error
	if d.byExt, err = newCache[FileTypeExtensionsSearchParams, *TableSearchResults]("files_by_extension", cfg.Cache.Views, logger); err != nil {
		return nil, err
	}
	if d.byMime, err = newCache[FileTypeMimeSearchParams, *TableSearchResults]("files_by_mime", cfg.Cache.Views, logger); err != nil {
		return nil, err
	}
	if d.bySize, err = newCache[FileTypeSizeSearchParams, *TableSearchResults]("files_by_size", cfg.Cache.Views, logger); err != nil {
		return nil, err
	}
	return d, nil
}

// SetPreferences changes which files the views hide and drops the cached
// pages.
func (d *ViewsDAO) SetPreferences(prefs config.ViewsConfig) {
	d.mu.Lock()
	d.prefs = prefs
	d.mu.Unlock()
	d.DropCaches()
}

func (d *ViewsDAO) preferences() config.ViewsConfig {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.prefs
}

/* ################################
#   Filters
################################ */

func (d *ViewsDAO) hiddenFilter(dataSourceID int64) filter.And {
	var e filter.And
	if d.preferences().HideKnownFiles {
		e = append(e, filter.Not{Expr: filter.Eq{Field: casestore.FieldKnown, Value: int(casestore.KnownKnown)}})
	}
	if dataSourceID > 0 {
		e = append(e, filter.Eq{Field: casestore.FieldDataSourceID, Value: dataSourceID})
	}
	return e
}

func (d *ViewsDAO) extFilter(key FileTypeExtensionsSearchParams) filter.Expr {
	e := filter.And{filter.Eq{Field: casestore.FieldDirType, Value: int(casestore.NameTypeReg)}}
	e = append(e, d.hiddenFilter(key.DataSourceID)...)
	return append(e, filter.In{Field: casestore.FieldExtension, Values: filter.Strings(key.Filter.Extensions()...)})
}

func (d *ViewsDAO) mimeFilter(key FileTypeMimeSearchParams) filter.Expr {
	types := []casestore.FileType{
		casestore.FileTypeFS, casestore.FileTypeCarved, casestore.FileTypeDerived,
		casestore.FileTypeLayout, casestore.FileTypeLocal,
	}
	if !d.preferences().HideSlackFiles {
		types = append(types, casestore.FileTypeSlack)
	}
	e := filter.And{
		filter.Eq{Field: casestore.FieldDirType, Value: int(casestore.NameTypeReg)},
		filter.In{Field: casestore.FieldType, Values: filter.Ints(types...)},
	}
	e = append(e, d.hiddenFilter(key.DataSourceID)...)
	return append(e, filter.Eq{Field: casestore.FieldMIMEType, Value: key.MimeType})
}

func (d *ViewsDAO) sizeFilter(key FileTypeSizeSearchParams) filter.Expr {
	e := filter.And{sizeRange(key.SizeFilter), filter.Not{Expr: filter.Eq{Field: casestore.FieldType, Value: int(casestore.FileTypeUnallocBlocks)}}}
	return append(e, d.hiddenFilter(key.DataSourceID)...)
}

func sizeRange(f FileSizeFilter) filter.Range {
	bucket := sizeFilters[f]
	r := filter.Range{Field: casestore.FieldSize, Min: bucket.min}
	if bucket.max > 0 {
		r.Max = bucket.max
	}
	return r
}

/* ################################
#   Tables
################################ */

// FilesByExtension returns a page of the files matching an extension
// filter.
func (d *ViewsDAO) FilesByExtension(ctx context.Context, key FileTypeExtensionsSearchParams, startItem, maxCount int64, hardRefresh bool) (*TableSearchResults, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	params, err := NewSearchParams(key, startItem, maxCount)
	if err != nil {
		return nil, err
	}
	return cached(ctx, d.byExt, params, hardRefresh, "files by extension", func(ctx context.Context) (*TableSearchResults, error) {
		return fetchFiles(ctx, d.store, "FILE_VIEW_EXT_"+strconv.Itoa(int(key.Filter)), key.Filter.DisplayName(),
			d.extFilter(key), params.StartItem, params.MaxCount)
	})
}

// FilesByMime returns a page of the files of a MIME type.
func (d *ViewsDAO) FilesByMime(ctx context.Context, key FileTypeMimeSearchParams, startItem, maxCount int64, hardRefresh bool) (*TableSearchResults, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	params, err := NewSearchParams(key, startItem, maxCount)
	if err != nil {
		return nil, err
	}
	return cached(ctx, d.byMime, params, hardRefresh, "files by mime", func(ctx context.Context) (*TableSearchResults, error) {
		return fetchFiles(ctx, d.store, "FILE_VIEW_MIME_TYPE", key.MimeType, d.mimeFilter(key), params.StartItem, params.MaxCount)
	})
}

// FilesBySize returns a page of the files in a size bucket.
func (d *ViewsDAO) FilesBySize(ctx context.Context, key FileTypeSizeSearchParams, startItem, maxCount int64, hardRefresh bool) (*TableSearchResults, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	params, err := NewSearchParams(key, startItem, maxCount)
	if err != nil {
		return nil, err
	}
	return cached(ctx, d.bySize, params, hardRefresh, "files by size", func(ctx context.Context) (*TableSearchResults, error) {
		return fetchFiles(ctx, d.store, "FILE_VIEW_SIZE_"+strconv.Itoa(int(key.SizeFilter)), key.SizeFilter.DisplayName(),
			d.sizeFilter(key), params.StartItem, params.MaxCount)
	})
}

// FileExtensionCounts returns one tree item per extension filter with the
// number of matching files. Nil filters count the root filters.
func (d *ViewsDAO) FileExtensionCounts(ctx context.Context, filters []FileExtFilter, dataSourceID int64) (*TreeResults[FileTypeExtensionsSearchParams], error) {
	if filters == nil {
		filters = RootExtFilters
	}
	items := make([]TreeItem[FileTypeExtensionsSearchParams], 0, len(filters))
	for _, f := range filters {
		key := FileTypeExtensionsSearchParams{Filter: f, DataSourceID: dataSourceID}
		if err := key.Validate(); err != nil {
			return nil, err
		}
		n, err := d.store.CountFilesWhere(ctx, d.extFilter(key))
		if err != nil {
			return nil, execErr("file extension counts", err)
		}
		items = append(items, TreeItem[FileTypeExtensionsSearchParams]{
			TypeID:      "FILE_VIEW_EXT",
			TypeData:    key,
			ID:          int(f),
			DisplayName: f.DisplayName(),
			Count:       countOf(n),
		})
	}
	return &TreeResults[FileTypeExtensionsSearchParams]{Items: items}, nil
}

/* ################################
#   Invalidation
################################ */

func (d *ViewsDAO) matches(e filter.Expr, file *casestore.File) bool {
	if file == nil {
		return false
	}
	ok, err := filter.Match(e, file)
	if err != nil {
		d.logger.Warn("could not match file", zap.Int64("obj_id", file.ID), zap.Error(err))
		return true
	}
	return ok
}

// The invalidation predicates only check the data source and the attribute
// a view is keyed by, never known state or file type.

func dataSourceOf(dataSourceID int64) filter.And {
	if dataSourceID > 0 {
		return filter.And{filter.Eq{Field: casestore.FieldDataSourceID, Value: dataSourceID}}
	}
	return filter.And{}
}

// IsFilesByExtInvalidating tells if a changed file may affect the results
// of key.
func (d *ViewsDAO) IsFilesByExtInvalidating(key FileTypeExtensionsSearchParams, file *casestore.File) bool {
	e := append(dataSourceOf(key.DataSourceID), filter.In{Field: casestore.FieldExtension, Values: filter.Strings(key.Filter.Extensions()...)})
	return d.matches(e, file)
}

// IsFilesByMimeInvalidating tells if a changed file may affect the results
// of key.
func (d *ViewsDAO) IsFilesByMimeInvalidating(key FileTypeMimeSearchParams, file *casestore.File) bool {
	e := append(dataSourceOf(key.DataSourceID), filter.Eq{Field: casestore.FieldMIMEType, Value: key.MimeType})
	return d.matches(e, file)
}

// IsFilesBySizeInvalidating tells if a changed file may affect the results
// of key.
func (d *ViewsDAO) IsFilesBySizeInvalidating(key FileTypeSizeSearchParams, file *casestore.File) bool {
	e := append(dataSourceOf(key.DataSourceID), sizeRange(key.SizeFilter))
	return d.matches(e, file)
}

// DropCaches drops every cached page of the views.
func (d *ViewsDAO) DropCaches() {
	d.byExt.InvalidateAll()
	d.byMime.InvalidateAll()
	d.bySize.InvalidateAll()
}

// Invalidate drops the cached pages a new file shows up in.
func (d *ViewsDAO) Invalidate(file *casestore.File) {
	d.byExt.InvalidateFunc(func(k SearchParams[FileTypeExtensionsSearchParams]) bool {
		return d.IsFilesByExtInvalidating(k.Query, file)
	})
	d.byMime.InvalidateFunc(func(k SearchParams[FileTypeMimeSearchParams]) bool {
		return d.IsFilesByMimeInvalidating(k.Query, file)
	})
	d.bySize.InvalidateFunc(func(k SearchParams[FileTypeSizeSearchParams]) bool {
		return d.IsFilesBySizeInvalidating(k.Query, file)
	})
}
