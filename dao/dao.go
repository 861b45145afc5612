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

// Package dao provides cached, paged access to the contents of a case
// store. A DAO is created per open case and holds one cache per query
// family. Table queries take a query descriptor, a page and a hard
// refresh flag; tree queries return counts per node.
package dao

import (
	"go.uber.org/zap"

	"github.com/forensicanalysis/casestore"
	"github.com/forensicanalysis/casestore/cache"
	"github.com/forensicanalysis/casestore/config"
)

// DAO bundles the DAOs of one case.
type DAO struct {
	AnalysisResults *AnalysisResultDAO
	DataArtifacts   *DataArtifactDAO
	Views           *ViewsDAO
	Summary         *AnalysisSummary

	logger *zap.Logger
}

// Option configures a DAO.
type Option func(*DAO)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(d *DAO) {
		d.logger = logger
	}
}

// New creates the DAOs for store. The cache sizes and view preferences are
// taken from cfg.
func New(store Store, cfg config.Config, opts ...Option) (*DAO, error) {
	d := &DAO{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	cache.RegisterMetrics()

	var err error
	if d.AnalysisResults, err = newAnalysisResultDAO(store, cfg.Cache, d.logger); err != nil {
		return nil, err
	}
	if d.DataArtifacts, err = newDataArtifactDAO(store, cfg.Cache, d.logger); err != nil {
		return nil, err
	}
	if d.Views, err = newViewsDAO(store, cfg, d.logger); err != nil {
		return nil, err
	}
	d.Summary = &AnalysisSummary{store: store}
	return d, nil
}

func newCache[Q comparable, V any](name string, size config.CacheSize, logger *zap.Logger) (*cache.Cache[SearchParams[Q], V], error) {
	return cache.New[SearchParams[Q], V](name, size.Size, cache.WithTTL(size.TTL), cache.WithLogger(logger))
}

// DropCaches drops every cached page.
func (d *DAO) DropCaches() {
	d.AnalysisResults.DropCaches()
	d.DataArtifacts.DropDataArtifactCache()
	d.Views.DropCaches()
}

// Subscribe drops the cached pages changed by the events of bus until the
// returned function is called.
func (d *DAO) Subscribe(bus *casestore.Bus) func() {
	return bus.Subscribe(func(evt casestore.Event) {
		switch e := evt.(type) {
		case casestore.ModuleDataEvent:
			d.logger.Debug("module data", zap.Int("artifact_type_id", e.ArtifactTypeID), zap.Int64("data_source_id", e.DataSourceID))
			d.AnalysisResults.Invalidate(e)
			d.DataArtifacts.Invalidate(e)
		case casestore.ContentEvent:
			d.Views.Invalidate(e.File)
		}
	})
}
