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

	"go.uber.org/zap"

	"github.com/forensicanalysis/casestore"
	"github.com/forensicanalysis/casestore/cache"
	"github.com/forensicanalysis/casestore/config"
)

// AnalysisResultDAO serves pages and trees of analysis results. Every
// query family has its own cache.
type AnalysisResultDAO struct {
	store  Store
	logger *zap.Logger

	analysisResults *cache.Cache[SearchParams[AnalysisResultSearchParam], *AnalysisResultTableSearchResults]
	hashHits        *cache.Cache[SearchParams[HashHitSearchParam], *AnalysisResultTableSearchResults]
	keywordHits     *cache.Cache[SearchParams[KeywordHitSearchParam], *AnalysisResultTableSearchResults]
	setHits         *cache.Cache[SearchParams[AnalysisResultSetSearchParam], *AnalysisResultTableSearchResults]
}

func newAnalysisResultDAO(store Store, cfg config.CacheConfig, logger *zap.Logger) (*AnalysisResultDAO, error) {
	d := &AnalysisResultDAO{store: store, logger: logger}
	var err error
	if d.analysisResults, err = newCache[AnalysisResultSearchParam, *AnalysisResultTableSearchResults]("analysis_results", cfg.AnalysisResults, logger); err != nil {
		return nil, err
	}
	if d.hashHits, err = newCache[HashHitSearchParam, *AnalysisResultTableSearchResults]("hash_hits", cfg.HashHits, logger); err != nil {
		return nil, err
	}
	if d.keywordHits, err = newCache[KeywordHitSearchParam, *AnalysisResultTableSearchResults]("keyword_hits", cfg.KeywordHits, logger); err != nil {
		return nil, err
	}
	if d.setHits, err = newCache[AnalysisResultSetSearchParam, *AnalysisResultTableSearchResults]("set_hits", cfg.SetHits, logger); err != nil {
		return nil, err
	}
	return d, nil
}

/* ################################
#   Tables
################################ */

// AnalysisResultsForTable returns a page of the analysis results of a type.
func (d *AnalysisResultDAO) AnalysisResultsForTable(ctx context.Context, key AnalysisResultSearchParam, startItem, maxCount int64, hardRefresh bool) (*AnalysisResultTableSearchResults, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	at, err := artifactType(d.store, key.ArtifactTypeID, casestore.AnalysisResult)
	if err != nil {
		return nil, err
	}
	params, err := NewSearchParams(key, startItem, maxCount)
	if err != nil {
		return nil, err
	}
	return cached(ctx, d.analysisResults, params, hardRefresh, "analysis results", func(ctx context.Context) (*AnalysisResultTableSearchResults, error) {
		q := artifactQuery{artifactType: at, where: typeFilter(at.ID, key.DataSourceID)}
		return fetchArtifacts(ctx, d.store, q, params.StartItem, params.MaxCount)
	})
}

// HashHitsForTable returns a page of the hits of a hash set.
func (d *AnalysisResultDAO) HashHitsForTable(ctx context.Context, key HashHitSearchParam, startItem, maxCount int64, hardRefresh bool) (*AnalysisResultTableSearchResults, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	at, err := artifactType(d.store, casestore.TypeHashsetHit, casestore.AnalysisResult)
	if err != nil {
		return nil, err
	}
	params, err := NewSearchParams(key, startItem, maxCount)
	if err != nil {
		return nil, err
	}
	return cached(ctx, d.hashHits, params, hardRefresh, "hash hits", func(ctx context.Context) (*AnalysisResultTableSearchResults, error) {
		q := artifactQuery{artifactType: at, where: typeFilter(at.ID, key.DataSourceID), match: setFilter(key.SetName)}
		return fetchArtifacts(ctx, d.store, q, params.StartItem, params.MaxCount)
	})
}

// KeywordHitsForTable returns a page of keyword hits.
func (d *AnalysisResultDAO) KeywordHitsForTable(ctx context.Context, key KeywordHitSearchParam, startItem, maxCount int64, hardRefresh bool) (*AnalysisResultTableSearchResults, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	at, err := artifactType(d.store, casestore.TypeKeywordHit, casestore.AnalysisResult)
	if err != nil {
		return nil, err
	}
	params, err := NewSearchParams(key, startItem, maxCount)
	if err != nil {
		return nil, err
	}
	return cached(ctx, d.keywordHits, params, hardRefresh, "keyword hits", func(ctx context.Context) (*AnalysisResultTableSearchResults, error) {
		q := artifactQuery{artifactType: at, where: typeFilter(at.ID, key.DataSourceID), match: keywordFilter(key)}
		return fetchArtifacts(ctx, d.store, q, params.StartItem, params.MaxCount)
	})
}

// SetHitsForTable returns a page of the analysis results of a
// type in one set, e.g. an interesting items rule set.
func (d *AnalysisResultDAO) SetHitsForTable(ctx context.Context, key AnalysisResultSetSearchParam, startItem, maxCount int64, hardRefresh bool) (*AnalysisResultTableSearchResults, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	at, err := artifactType(d.store, key.ArtifactTypeID, casestore.AnalysisResult)
	if err != nil {
		return nil, err
	}
	params, err := NewSearchParams(key, startItem, maxCount)
	if err != nil {
		return nil, err
	}
	return cached(ctx, d.setHits, params, hardRefresh, "analysis result sets", func(ctx context.Context) (*AnalysisResultTableSearchResults, error) {
		q := artifactQuery{artifactType: at, where: typeFilter(at.ID, key.DataSourceID), match: setFilter(key.SetName)}
		return fetchArtifacts(ctx, d.store, q, params.StartItem, params.MaxCount)
	})
}

/* ################################
#   Invalidation
################################ */

// IsAnalysisResultsInvalidating tells if evt can change the results of key.
func (d *AnalysisResultDAO) IsAnalysisResultsInvalidating(key AnalysisResultSearchParam, evt casestore.ModuleDataEvent) bool {
	return key.ArtifactTypeID == evt.ArtifactTypeID && compatible(key.DataSourceID, evt.DataSourceID)
}

// IsHashHitInvalidating tells if evt can change the results of key.
func (d *AnalysisResultDAO) IsHashHitInvalidating(key HashHitSearchParam, evt casestore.ModuleDataEvent) bool {
	return evt.ArtifactTypeID == casestore.TypeHashsetHit && compatible(key.DataSourceID, evt.DataSourceID)
}

// IsKeywordHitInvalidating tells if evt can change the results of key.
func (d *AnalysisResultDAO) IsKeywordHitInvalidating(key KeywordHitSearchParam, evt casestore.ModuleDataEvent) bool {
	return evt.ArtifactTypeID == casestore.TypeKeywordHit && compatible(key.DataSourceID, evt.DataSourceID)
}

// IsSetHitInvalidating tells if evt can change the results of key.
func (d *AnalysisResultDAO) IsSetHitInvalidating(key AnalysisResultSetSearchParam, evt casestore.ModuleDataEvent) bool {
	return key.ArtifactTypeID == evt.ArtifactTypeID && compatible(key.DataSourceID, evt.DataSourceID)
}

// DropAnalysisResultCache drops every cached analysis result page.
func (d *AnalysisResultDAO) DropAnalysisResultCache() { d.analysisResults.InvalidateAll() }

// DropHashHitCache drops every cached hash hit page.
func (d *AnalysisResultDAO) DropHashHitCache() { d.hashHits.InvalidateAll() }

// DropKeywordHitCache drops every cached keyword hit page.
func (d *AnalysisResultDAO) DropKeywordHitCache() { d.keywordHits.InvalidateAll() }

// DropSetHitCache drops every cached set page.
func (d *AnalysisResultDAO) DropSetHitCache() { d.setHits.InvalidateAll() }

// DropCaches drops every cache of the DAO.
func (d *AnalysisResultDAO) DropCaches() {
	d.DropAnalysisResultCache()
	d.DropHashHitCache()
	d.DropKeywordHitCache()
	d.DropSetHitCache()
}

// Invalidate drops the cached pages evt can change.
func (d *AnalysisResultDAO) Invalidate(evt casestore.ModuleDataEvent) {
	d.analysisResults.InvalidateFunc(func(k SearchParams[AnalysisResultSearchParam]) bool {
		return d.IsAnalysisResultsInvalidating(k.Query, evt)
	})
	d.hashHits.InvalidateFunc(func(k SearchParams[HashHitSearchParam]) bool {
		return d.IsHashHitInvalidating(k.Query, evt)
	})
	d.keywordHits.InvalidateFunc(func(k SearchParams[KeywordHitSearchParam]) bool {
		return d.IsKeywordHitInvalidating(k.Query, evt)
	})
	d.setHits.InvalidateFunc(func(k SearchParams[AnalysisResultSetSearchParam]) bool {
		return d.IsSetHitInvalidating(k.Query, evt)
	})
}
