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

package casestore

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forensicanalysis/casestore/filter"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) record(evt Event) {
	r.mu.Lock()
	r.events = append(r.events, evt)
	r.mu.Unlock()
}

func setup(t *testing.T) (*Store, *recorder) {
	store, err := New(filepath.Join(t.TempDir(), "case.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() }) // nolint:errcheck

	r := &recorder{}
	store.Bus().Subscribe(r.record)
	return store, r
}

func post(t *testing.T, store *Store, typeID int, ds int64, attributes string) *Artifact {
	a := &Artifact{TypeID: typeID, DataSourceID: ds, Attributes: Attributes(attributes)}
	require.NoError(t, store.PostArtifact(context.Background(), a))
	return a
}

func TestNew(t *testing.T) {
	dir := t.TempDir()
	url := filepath.Join(dir, "sub", "case.db")

	tests := []struct {
		name    string
		open    func(string, ...Option) (*Store, error)
		url     string
		wantErr error
	}{
		{"Open missing", Open, url, ErrStoreNotExists},
		{"New", New, url, nil},
		{"New existing", New, url, ErrStoreExists},
		{"Open existing", Open, url, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := tt.open(tt.url)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "error = %v, want %v", err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			at, err := store.ArtifactType(TypeHashsetHit)
			assert.NoError(t, err)
			assert.Equal(t, "TSK_HASHSET_HIT", at.Name)
			assert.NoError(t, store.Close())
		})
	}
}

func TestStore_Closed(t *testing.T) {
	store, _ := setup(t)
	require.NoError(t, store.Close())
	assert.NoError(t, store.Close())

	_, err := store.DataSources(context.Background())
	assert.True(t, errors.Is(err, ErrStoreClosed))
}

func TestStore_AddDataSource(t *testing.T) {
	store, _ := setup(t)
	ctx := context.Background()

	first, err := store.AddDataSource(ctx, "image1.E01")
	require.NoError(t, err)
	second, err := store.AddDataSource(ctx, "phone.tar")
	require.NoError(t, err)

	dataSources, err := store.DataSources(ctx)
	require.NoError(t, err)
	require.Len(t, dataSources, 2)
	assert.Equal(t, first.ID, dataSources[0].ID)
	assert.Equal(t, "phone.tar", dataSources[1].Name)
	assert.Less(t, first.ID, second.ID)
}

func TestStore_AddArtifactType(t *testing.T) {
	store, _ := setup(t)
	ctx := context.Background()

	custom, err := store.AddArtifactType(ctx, "ILEAPP_CHROME_SEARCHES", "Chrome Searches", DataArtifact)
	require.NoError(t, err)
	assert.Equal(t, firstCustomType, custom.ID)

	again, err := store.AddArtifactType(ctx, "ILEAPP_CHROME_SEARCHES", "Chrome Searches", DataArtifact)
	require.NoError(t, err)
	assert.Equal(t, custom, again)

	_, err = store.AddArtifactType(ctx, "ILEAPP_CHROME_SEARCHES", "", AnalysisResult)
	assert.True(t, errors.Is(err, ErrValidation))

	next, err := store.AddArtifactType(ctx, "ILEAPP_WIFI", "Wifi", DataArtifact)
	require.NoError(t, err)
	assert.Equal(t, firstCustomType+1, next.ID)

	byName, err := store.ArtifactTypeByName("ILEAPP_WIFI")
	require.NoError(t, err)
	assert.Equal(t, next, byName)

	_, err = store.ArtifactType(4711)
	assert.True(t, errors.Is(err, ErrUnknownArtifactType))
}

func TestStore_AddArtifactTypeConcurrent(t *testing.T) {
	store, _ := setup(t)
	ctx := context.Background()

	names := []string{"ILEAPP_A", "ILEAPP_B", "ILEAPP_C", "ILEAPP_D", "ILEAPP_A", "ILEAPP_B"}
	types := make([]ArtifactType, len(names))
	errs := make([]error, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			types[i], errs[i] = store.AddArtifactType(ctx, name, name, DataArtifact)
		}(i, name)
	}
	wg.Wait()

	ids := map[string]int{}
	for i, name := range names {
		require.NoError(t, errs[i], name)
		if id, ok := ids[name]; ok {
			assert.Equal(t, id, types[i].ID, name)
		}
		ids[name] = types[i].ID
	}
	seen := map[int]bool{}
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		assert.GreaterOrEqual(t, id, firstCustomType)
		assert.Less(t, id, firstCustomType+4)
		seen[id] = true
	}
}

func TestStore_PostArtifacts(t *testing.T) {
	tests := []struct {
		name    string
		typeID  int
		attr    string
		wantErr error
	}{
		{"hash hit", TypeHashsetHit, `{"set_name": "NSRL"}`, nil},
		{"empty attributes", TypeWebHistory, ``, nil},
		{"missing set name", TypeHashsetHit, `{"hash_md5": "abc"}`, ErrValidation},
		{"wrong search type", TypeKeywordHit, `{"keyword": "a", "keyword_search_type": 7}`, ErrValidation},
		{"dotted key", TypeWebHistory, `{"url.host": "example.com"}`, ErrValidation},
		{"no object", TypeWebHistory, `[1, 2]`, ErrValidation},
		{"unknown type", 4711, `{}`, ErrUnknownArtifactType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, r := setup(t)
			a := &Artifact{TypeID: tt.typeID, DataSourceID: 1, Attributes: Attributes(tt.attr)}
			err := store.PostArtifact(context.Background(), a)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "error = %v, want %v", err, tt.wantErr)
				assert.Empty(t, r.events)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, a.ID)
			assert.NotEmpty(t, a.InsertTime)
			assert.Equal(t, []Event{ModuleDataEvent{ArtifactTypeID: tt.typeID, DataSourceID: 1, Count: 1}}, r.events)
		})
	}
}

func TestStore_PostArtifactsEvents(t *testing.T) {
	store, r := setup(t)
	err := store.PostArtifacts(context.Background(), []*Artifact{
		{TypeID: TypeHashsetHit, DataSourceID: 1, Attributes: Attributes(`{"set_name": "A"}`)},
		{TypeID: TypeKeywordHit, DataSourceID: 1, Attributes: Attributes(`{"keyword": "k"}`)},
		{TypeID: TypeHashsetHit, DataSourceID: 1, Attributes: Attributes(`{"set_name": "B"}`)},
		{TypeID: TypeHashsetHit, DataSourceID: 2, Attributes: Attributes(`{"set_name": "A"}`)},
	})
	require.NoError(t, err)
	assert.Equal(t, []Event{
		ModuleDataEvent{ArtifactTypeID: TypeHashsetHit, DataSourceID: 1, Count: 2},
		ModuleDataEvent{ArtifactTypeID: TypeKeywordHit, DataSourceID: 1, Count: 1},
		ModuleDataEvent{ArtifactTypeID: TypeHashsetHit, DataSourceID: 2, Count: 1},
	}, r.events)
}

func TestStore_ArtifactsWhere(t *testing.T) {
	store, _ := setup(t)
	ctx := context.Background()

	file := &File{DataSourceID: 1, Name: "evil.exe", ParentPath: "/Windows"}
	require.NoError(t, store.AddFile(ctx, file))

	a1 := &Artifact{ObjID: file.ID, TypeID: TypeHashsetHit, DataSourceID: 1, Attributes: Attributes(`{"set_name": "A"}`)}
	require.NoError(t, store.PostArtifact(ctx, a1))
	a2 := post(t, store, TypeHashsetHit, 1, `{"set_name": "B"}`)
	a3 := post(t, store, TypeHashsetHit, 2, `{"set_name": "A"}`)
	post(t, store, TypeKeywordHit, 1, `{"keyword": "secret"}`)

	tests := []struct {
		name    string
		expr    filter.Expr
		page    Page
		wantIDs []int64
	}{
		{"type", filter.Eq{Field: FieldArtifactTypeID, Value: TypeHashsetHit}, Page{}, []int64{a1.ID, a2.ID, a3.ID}},
		{"type and data source", filter.And{
			filter.Eq{Field: FieldArtifactTypeID, Value: TypeHashsetHit},
			filter.Eq{Field: FieldDataSourceID, Value: 1},
		}, Page{}, []int64{a1.ID, a2.ID}},
		{"attribute", filter.Eq{Field: Attr(AttrSetName), Value: "A"}, Page{}, []int64{a1.ID, a3.ID}},
		{"page", filter.Eq{Field: FieldArtifactTypeID, Value: TypeHashsetHit}, Page{Offset: 1, Limit: 1}, []int64{a2.ID}},
		{"offset beyond", nil, Page{Offset: 10}, []int64{}},
		{"source name", filter.Eq{Field: FieldSourceName, Value: "evil.exe"}, Page{}, []int64{a1.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			artifacts, err := store.ArtifactsWhere(ctx, tt.expr, tt.page)
			require.NoError(t, err)
			ids := []int64{}
			for _, a := range artifacts {
				ids = append(ids, a.ID)
				assert.Empty(t, a.Attributes)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}

	artifacts, err := store.ArtifactsWhere(ctx, filter.Eq{Field: FieldArtifactID, Value: a1.ID}, Page{})
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	assert.Equal(t, "evil.exe", artifacts[0].SourceName)
	assert.Equal(t, SourceFile, artifacts[0].SourceObjType)

	count, err := store.CountArtifactsWhere(ctx, filter.Eq{Field: Attr(AttrSetName), Value: "A"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	_, err = store.ArtifactsWhere(ctx, filter.Eq{Field: "attr.x'); DROP TABLE artifacts; --", Value: 1}, Page{})
	assert.True(t, errors.Is(err, filter.ErrUnknownField))
}

func TestStore_LoadAttributes(t *testing.T) {
	store, _ := setup(t)
	ctx := context.Background()

	for i := 0; i < attributeChunk+3; i++ {
		post(t, store, TypeHashsetHit, 1, `{"set_name": "A"}`)
	}
	post(t, store, TypeHashsetHit, 1, `{"set_name": "B", "hash_md5": "abc"}`)

	artifacts, err := store.ArtifactsWhere(ctx, nil, Page{})
	require.NoError(t, err)
	require.Len(t, artifacts, attributeChunk+4)
	require.NoError(t, store.LoadAttributes(ctx, artifacts))

	for _, a := range artifacts[:attributeChunk+3] {
		setName, _ := a.Attributes.String(AttrSetName)
		assert.Equal(t, "A", setName)
	}
	last := artifacts[len(artifacts)-1]
	hash, ok := last.Attributes.String(AttrHashMD5)
	assert.True(t, ok)
	assert.Equal(t, "abc", hash)
}

func TestStore_GroupArtifacts(t *testing.T) {
	store, _ := setup(t)
	ctx := context.Background()

	a := post(t, store, TypeInterestingFileHit, 1, `{"set_name": "A"}`)
	empty := post(t, store, TypeInterestingFileHit, 1, `{}`)
	b := post(t, store, TypeInterestingFileHit, 1, `{"set_name": "B"}`)
	post(t, store, TypeInterestingFileHit, 1, `{"set_name": "A"}`)
	post(t, store, TypeInterestingFileHit, 2, `{"set_name": "B"}`)

	groups, err := store.GroupArtifacts(ctx, Grouping{Keys: []string{Attr(AttrSetName)}, Distinct: FieldDataSourceID},
		filter.Eq{Field: FieldArtifactTypeID, Value: TypeInterestingFileHit})
	require.NoError(t, err)
	assert.Equal(t, []Group{
		{Keys: []interface{}{"A"}, Count: 2, Distinct: 1, FirstID: a.ID},
		{Keys: []interface{}{nil}, Count: 1, Distinct: 1, FirstID: empty.ID},
		{Keys: []interface{}{"B"}, Count: 2, Distinct: 2, FirstID: b.ID},
	}, groups)

	_, err = store.GroupArtifacts(ctx, Grouping{}, nil)
	assert.Error(t, err)
}

func TestStore_Files(t *testing.T) {
	store, r := setup(t)
	ctx := context.Background()

	files := []*File{
		{DataSourceID: 1, Name: "IMG_0001.JPG", MIMEType: "image/jpeg", Size: 1000, DirType: NameTypeReg},
		{DataSourceID: 1, Name: "notes.txt", Size: 60e6, DirType: NameTypeReg, Known: KnownKnown},
		{DataSourceID: 2, Name: "movie.mp4", MIMEType: "video/mp4", Size: 300e6, DirType: NameTypeReg},
	}
	for _, f := range files {
		require.NoError(t, store.AddFile(ctx, f))
	}
	require.Len(t, r.events, 3)
	assert.Equal(t, "IMG_0001.JPG", r.events[0].(ContentEvent).File.Name)
	assert.Equal(t, "jpg", files[0].Extension)

	tests := []struct {
		name    string
		expr    filter.Expr
		wantIDs []int64
	}{
		{"extension", filter.In{Field: FieldExtension, Values: filter.Strings("jpg", "png")}, []int64{files[0].ID}},
		{"mime", filter.Eq{Field: FieldMIMEType, Value: "video/mp4"}, []int64{files[2].ID}},
		{"no mime", filter.Blank{Field: FieldMIMEType}, []int64{files[1].ID}},
		{"size", filter.Range{Field: FieldSize, Min: 50e6, Max: 200e6}, []int64{files[1].ID}},
		{"not known", filter.Not{Expr: filter.Eq{Field: FieldKnown, Value: KnownKnown}}, []int64{files[0].ID, files[2].ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.FilesWhere(ctx, tt.expr, Page{})
			require.NoError(t, err)
			ids := []int64{}
			for _, f := range got {
				ids = append(ids, f.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)

			count, err := store.CountFilesWhere(ctx, tt.expr)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.wantIDs)), count)
		})
	}

	err := store.AddFile(ctx, &File{})
	assert.True(t, errors.Is(err, ErrValidation))
}
