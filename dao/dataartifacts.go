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

// DataArtifactDAO serves pages and trees of data artifacts.
type DataArtifactDAO struct {
	store         Store
	logger        *zap.Logger
	dataArtifacts *cache.Cache[SearchParams[DataArtifactSearchParam], *DataArtifactTableSearchResults]
}

func newDataArtifactDAO(store Store, cfg config.CacheConfig, logger *zap.Logger) (*DataArtifactDAO, error) {
	c, err := newCache[DataArtifactSearchParam, *DataArtifactTableSearchResults]("data_artifacts", cfg.DataArtifacts, logger)
	if err != nil {
		return nil, err
	}
	return &DataArtifactDAO{store: store, logger: logger, dataArtifacts: c}, nil
}

// DataArtifactsForTable returns a page of the data artifacts of a type.
func (d *DataArtifactDAO) DataArtifactsForTable(ctx context.Context, key DataArtifactSearchParam, startItem, maxCount int64, hardRefresh bool) (*DataArtifactTableSearchResults, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	at, err := artifactType(d.store, key.ArtifactTypeID, casestore.DataArtifact)
	if err != nil {
		return nil, err
	}
	params, err := NewSearchParams(key, startItem, maxCount)
	if err != nil {
		return nil, err
	}
	return cached(ctx, d.dataArtifacts, params, hardRefresh, "data artifacts", func(ctx context.Context) (*DataArtifactTableSearchResults, error) {
		q := artifactQuery{artifactType: at, where: typeFilter(at.ID, key.DataSourceID)}
		return fetchArtifacts(ctx, d.store, q, params.StartItem, params.MaxCount)
	})
}

// DataArtifactCounts returns one tree item per data artifact type with
// artifacts in the data source.
func (d *DataArtifactDAO) DataArtifactCounts(ctx context.Context, dataSourceID int64) (*TreeResults[DataArtifactSearchParam], error) {
	counts, err := typeCounts(ctx, d.store, casestore.DataArtifact, dataSourceID)
	if err != nil {
		return nil, err
	}
	items := make([]TreeItem[DataArtifactSearchParam], 0, len(counts))
	for _, c := range counts {
		items = append(items, TreeItem[DataArtifactSearchParam]{
			TypeID:      casestore.DataArtifact.String(),
			TypeData:    DataArtifactSearchParam{ArtifactTypeID: c.artifactType.ID, DataSourceID: dataSourceID},
			ID:          c.artifactType.ID,
			DisplayName: c.artifactType.DisplayName,
			Count:       countOf(c.count),
		})
	}
	return &TreeResults[DataArtifactSearchParam]{Items: items}, nil
}

// IsDataArtifactInvalidating tells if evt can change the results of key.
func (d *DataArtifactDAO) IsDataArtifactInvalidating(key DataArtifactSearchParam, evt casestore.ModuleDataEvent) bool {
	return key.ArtifactTypeID == evt.ArtifactTypeID && compatible(key.DataSourceID, evt.DataSourceID)
}

// DropDataArtifactCache drops every cached page.
func (d *DataArtifactDAO) DropDataArtifactCache() { d.dataArtifacts.InvalidateAll() }

// Invalidate drops the cached pages evt can change.
func (d *DataArtifactDAO) Invalidate(evt casestore.ModuleDataEvent) {
	d.dataArtifacts.InvalidateFunc(func(k SearchParams[DataArtifactSearchParam]) bool {
		return d.IsDataArtifactInvalidating(k.Query, evt)
	})
}
