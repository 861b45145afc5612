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
	"github.com/forensicanalysis/casestore/filter"
)

// Store is the part of the case store the DAOs read from.
type Store interface {
	ArtifactType(id int) (casestore.ArtifactType, error)
	ArtifactTypes(category casestore.Category) []casestore.ArtifactType
	ArtifactsWhere(ctx context.Context, expr filter.Expr, page casestore.Page) ([]*casestore.Artifact, error)
	CountArtifactsWhere(ctx context.Context, expr filter.Expr) (int64, error)
	LoadAttributes(ctx context.Context, artifacts []*casestore.Artifact) error
	GroupArtifacts(ctx context.Context, grouping casestore.Grouping, expr filter.Expr) ([]casestore.Group, error)
	FilesWhere(ctx context.Context, expr filter.Expr, page casestore.Page) ([]*casestore.File, error)
	CountFilesWhere(ctx context.Context, expr filter.Expr) (int64, error)
}

var _ Store = (*casestore.Store)(nil)
