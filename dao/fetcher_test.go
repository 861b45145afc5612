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
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forensicanalysis/casestore"
)

func TestFetcher_Page(t *testing.T) {
	store, cs, d := setup(t)
	ctx := context.Background()
	post(t, store, casestore.TypeWebHistory, 1, `{}`)

	f := d.DataArtifacts.DataArtifactFetcher(DataArtifactSearchParam{ArtifactTypeID: casestore.TypeWebHistory, DataSourceID: 1})
	unsubscribe := f.Subscribe(store.Bus())
	defer unsubscribe()

	got, err := f.Page(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.TotalResults)

	post(t, store, casestore.TypeWebBookmark, 1, `{}`)
	post(t, store, casestore.TypeWebHistory, 2, `{}`)
	assert.False(t, f.RefreshRequired())

	post(t, store, casestore.TypeWebHistory, 1, `{}`)
	assert.True(t, f.RefreshRequired())

	got, err = f.Page(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.TotalResults)
	assert.False(t, f.RefreshRequired())
	assert.Equal(t, int32(2), cs.artifactQueries.Load())

	got, err = f.Page(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.StartItem)
	assert.Len(t, got.Rows, 1)
}

func TestFetcher_RefreshIsKeptOnError(t *testing.T) {
	fail := true
	var hardRefreshes []bool
	fetch := func(ctx context.Context, params string, start, max int64, hardRefresh bool) (int, error) {
		hardRefreshes = append(hardRefreshes, hardRefresh)
		if fail {
			return 0, errors.New("broken")
		}
		return 1, nil
	}
	f := NewFetcher[string, int]("query", fetch, func(string, casestore.Event) bool { return true })

	assert.True(t, f.HandleEvent(casestore.ContentEvent{}))
	_, err := f.Page(context.Background(), 10, 0)
	assert.Error(t, err)
	assert.True(t, f.RefreshRequired())

	fail = false
	_, err = f.Page(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.False(t, f.RefreshRequired())
	assert.Equal(t, []bool{true, true}, hardRefreshes)

	_, err = f.Page(context.Background(), -1, 0)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestFetcher_Views(t *testing.T) {
	store, _, d := setup(t)
	f := d.Views.FilesByExtensionFetcher(FileTypeExtensionsSearchParams{Filter: ExtImages})
	unsubscribe := f.Subscribe(store.Bus())
	defer unsubscribe()

	require.NoError(t, store.AddFile(context.Background(), &casestore.File{Name: "a.txt", DataSourceID: 1, DirType: casestore.NameTypeReg}))
	assert.False(t, f.RefreshRequired())
	require.NoError(t, store.AddFile(context.Background(), &casestore.File{Name: "a.jpg", DataSourceID: 1, DirType: casestore.NameTypeReg}))
	assert.True(t, f.RefreshRequired())
}
