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
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/forensicanalysis/casestore"
	"github.com/forensicanalysis/casestore/config"
	"github.com/forensicanalysis/casestore/dao"
)

func setup(t *testing.T) (*casestore.Store, *Server, *observer.ObservedLogs) {
	store, err := casestore.New(filepath.Join(t.TempDir(), "case.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() }) // nolint:errcheck

	d, err := dao.New(store, config.Default())
	require.NoError(t, err)

	core, logs := observer.New(zap.InfoLevel)
	return store, New(d, zap.New(core)), logs
}

func post(t *testing.T, store *casestore.Store, typeID int, ds int64, attributes string) {
	a := &casestore.Artifact{TypeID: typeID, DataSourceID: ds, Attributes: casestore.Attributes(attributes)}
	require.NoError(t, store.PostArtifact(context.Background(), a))
}

func get(t *testing.T, s *Server, url string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestServer_Status(t *testing.T) {
	store, s, _ := setup(t)
	post(t, store, casestore.TypeHashsetHit, 1, `{"set_name": "A"}`)
	post(t, store, casestore.TypeKeywordHit, 1, `{"set_name": "K", "keyword": "foo"}`)

	tests := []struct {
		name string
		url  string
		want int
	}{
		{"analysis result tree", "/tree/analysis-results?data_source=1", http.StatusOK},
		{"data artifact tree", "/tree/data-artifacts", http.StatusOK},
		{"set tree", "/tree/sets/12?null_set=No+Set", http.StatusOK},
		{"hash set tree", "/tree/hashsets", http.StatusOK},
		{"keyword sets", "/tree/keywords/sets", http.StatusOK},
		{"keyword terms", "/tree/keywords/terms?set=K", http.StatusOK},
		{"keyword matches", "/tree/keywords/matches?set=K&term=foo&search_type=0", http.StatusOK},
		{"extension tree", "/tree/files/extensions", http.StatusOK},
		{"document tree", "/tree/files/extensions?parent=documents", http.StatusOK},
		{"unknown parent", "/tree/files/extensions?parent=foo", http.StatusBadRequest},
		{"analysis results", "/table/analysis-results/10?start=0&max=10", http.StatusOK},
		{"data artifacts", "/table/data-artifacts/4", http.StatusOK},
		{"wrong category", "/table/data-artifacts/10", http.StatusBadRequest},
		{"hash hits", "/table/hashsets?set=A", http.StatusOK},
		{"keyword hits", "/table/keywords?set=K&term=foo", http.StatusOK},
		{"set hits", "/table/sets/12?set=A", http.StatusOK},
		{"files by extension", "/table/files/extension/0", http.StatusOK},
		{"files by mime", "/table/files/mime?mime=image/png", http.StatusOK},
		{"files by size", "/table/files/size/1", http.StatusOK},
		{"summary", "/summary/1", http.StatusOK},
		{"metrics", "/metrics", http.StatusOK},
		{"bad data source", "/tree/analysis-results?data_source=x", http.StatusBadRequest},
		{"negative start", "/table/hashsets?start=-1", http.StatusBadRequest},
		{"bad refresh", "/table/hashsets?refresh=maybe", http.StatusBadRequest},
		{"bad type", "/table/analysis-results/x", http.StatusBadRequest},
		{"unknown route", "/foo", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, tt.url)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestServer_Tables(t *testing.T) {
	store, s, _ := setup(t)
	post(t, store, casestore.TypeHashsetHit, 1, `{"set_name": "A"}`)
	post(t, store, casestore.TypeHashsetHit, 1, `{"set_name": "A"}`)
	post(t, store, casestore.TypeHashsetHit, 1, `{"set_name": "B"}`)

	rec := get(t, s, "/table/hashsets?set=A&max=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got struct {
		Rows         []json.RawMessage `json:"rows"`
		TotalResults int64             `json:"total_results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got.Rows, 1)
	assert.Equal(t, int64(2), got.TotalResults)
}

func TestServer_Summary(t *testing.T) {
	store, s, _ := setup(t)
	post(t, store, casestore.TypeHashsetHit, 1, `{"set_name": "A"}`)
	post(t, store, casestore.TypeHashsetHit, 1, `{"set_name": "A"}`)
	post(t, store, casestore.TypeHashsetHit, 1, `{"set_name": "B"}`)

	rec := get(t, s, "/summary/1")
	require.Equal(t, http.StatusOK, rec.Code)

	var got Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Hashsets, 2)
	assert.Equal(t, "A", got.Hashsets[0].Identifier)
	assert.Equal(t, int64(2), got.Hashsets[0].Count)
	assert.Empty(t, got.Keywords)
}

func TestServer_Errors(t *testing.T) {
	store, s, logs := setup(t)
	require.NoError(t, store.Close())

	rec := get(t, s, "/table/analysis-results/10")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal_error", body.Code)
	assert.Equal(t, 1, logs.FilterMessage("internal error").Len())
	assert.Equal(t, 1, logs.FilterMessage("http_request").Len())
}

func TestRecoverer(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := recoverer(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 1, logs.FilterMessage("panic").Len())
}
