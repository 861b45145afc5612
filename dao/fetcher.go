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
	"sync/atomic"

	"github.com/forensicanalysis/casestore"
)

// FetchFunc loads a page of the results of params.
type FetchFunc[P comparable, R any] func(ctx context.Context, params P, startItem, maxCount int64, hardRefresh bool) (R, error)

// Fetcher pages through the results of one query. Events that change the
// results mark the fetcher, the next page is then loaded bypassing the
// cache.
type Fetcher[P comparable, R any] struct {
	params       P
	fetch        FetchFunc[P, R]
	invalidating func(params P, evt casestore.Event) bool
	refresh      atomic.Bool
}

// NewFetcher creates a fetcher for params.
func NewFetcher[P comparable, R any](params P, fetch FetchFunc[P, R], invalidating func(P, casestore.Event) bool) *Fetcher[P, R] {
	return &Fetcher[P, R]{params: params, fetch: fetch, invalidating: invalidating}
}

// Params returns the query of the fetcher.
func (f *Fetcher[P, R]) Params() P {
	return f.params
}

// HandleEvent marks the fetcher if evt changes its results.
func (f *Fetcher[P, R]) HandleEvent(evt casestore.Event) bool {
	if f.invalidating == nil || !f.invalidating(f.params, evt) {
		return false
	}
	f.refresh.Store(true)
	return true
}

// Subscribe passes the events of bus to HandleEvent until the returned
// function is called.
func (f *Fetcher[P, R]) Subscribe(bus *casestore.Bus) func() {
	return bus.Subscribe(func(evt casestore.Event) { f.HandleEvent(evt) })
}

// RefreshRequired tells if an event changed the results since the last
// page was loaded.
func (f *Fetcher[P, R]) RefreshRequired() bool {
	return f.refresh.Load()
}

// Page loads page pageIdx of size pageSize.
func (f *Fetcher[P, R]) Page(ctx context.Context, pageSize, pageIdx int64) (R, error) {
	if pageSize < 0 || pageIdx < 0 {
		var zero R
		return zero, invalid("page size and index must not be negative")
	}
	hard := f.refresh.Swap(false)
	r, err := f.fetch(ctx, f.params, pageIdx*pageSize, pageSize, hard)
	if err != nil && hard {
		f.refresh.Store(true)
	}
	return r, err
}

func onModuleData[P comparable](fn func(P, casestore.ModuleDataEvent) bool) func(P, casestore.Event) bool {
	return func(p P, evt casestore.Event) bool {
		e, ok := evt.(casestore.ModuleDataEvent)
		return ok && fn(p, e)
	}
}

func onContent[P comparable](fn func(P, *casestore.File) bool) func(P, casestore.Event) bool {
	return func(p P, evt casestore.Event) bool {
		e, ok := evt.(casestore.ContentEvent)
		return ok && fn(p, e.File)
	}
}

// AnalysisResultFetcher pages the analysis results of a type.
func (d *AnalysisResultDAO) AnalysisResultFetcher(params AnalysisResultSearchParam) *Fetcher[AnalysisResultSearchParam, *AnalysisResultTableSearchResults] {
	return NewFetcher[AnalysisResultSearchParam, *AnalysisResultTableSearchResults](params, d.AnalysisResultsForTable, onModuleData(d.IsAnalysisResultsInvalidating))
}

// HashHitFetcher pages the hits of a hash set.
func (d *AnalysisResultDAO) HashHitFetcher(params HashHitSearchParam) *Fetcher[HashHitSearchParam, *AnalysisResultTableSearchResults] {
	return NewFetcher[HashHitSearchParam, *AnalysisResultTableSearchResults](params, d.HashHitsForTable, onModuleData(d.IsHashHitInvalidating))
}

// KeywordHitFetcher pages keyword hits.
func (d *AnalysisResultDAO) KeywordHitFetcher(params KeywordHitSearchParam) *Fetcher[KeywordHitSearchParam, *AnalysisResultTableSearchResults] {
	return NewFetcher[KeywordHitSearchParam, *AnalysisResultTableSearchResults](params, d.KeywordHitsForTable, onModuleData(d.IsKeywordHitInvalidating))
}

// SetHitFetcher pages the analysis results of a set.
func (d *AnalysisResultDAO) SetHitFetcher(params AnalysisResultSetSearchParam) *Fetcher[AnalysisResultSetSearchParam, *AnalysisResultTableSearchResults] {
	return NewFetcher[AnalysisResultSetSearchParam, *AnalysisResultTableSearchResults](params, d.SetHitsForTable, onModuleData(d.IsSetHitInvalidating))
}

// DataArtifactFetcher pages the data artifacts of a type.
func (d *DataArtifactDAO) DataArtifactFetcher(params DataArtifactSearchParam) *Fetcher[DataArtifactSearchParam, *DataArtifactTableSearchResults] {
	return NewFetcher[DataArtifactSearchParam, *DataArtifactTableSearchResults](params, d.DataArtifactsForTable, onModuleData(d.IsDataArtifactInvalidating))
}

// FilesByExtensionFetcher pages the files of an extension filter.
func (d *ViewsDAO) FilesByExtensionFetcher(params FileTypeExtensionsSearchParams) *Fetcher[FileTypeExtensionsSearchParams, *TableSearchResults] {
	return NewFetcher[FileTypeExtensionsSearchParams, *TableSearchResults](params, d.FilesByExtension, onContent(d.IsFilesByExtInvalidating))
}

// FilesByMimeFetcher pages the files of a MIME type.
func (d *ViewsDAO) FilesByMimeFetcher(params FileTypeMimeSearchParams) *Fetcher[FileTypeMimeSearchParams, *TableSearchResults] {
	return NewFetcher[FileTypeMimeSearchParams, *TableSearchResults](params, d.FilesByMime, onContent(d.IsFilesByMimeInvalidating))
}

// FilesBySizeFetcher pages the files of a size bucket.
func (d *ViewsDAO) FilesBySizeFetcher(params FileTypeSizeSearchParams) *Fetcher[FileTypeSizeSearchParams, *TableSearchResults] {
	return NewFetcher[FileTypeSizeSearchParams, *TableSearchResults](params, d.FilesBySize, onContent(d.IsFilesBySizeInvalidating))
}
