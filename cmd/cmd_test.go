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

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/forensicanalysis/casestore"
)

func setup(t *testing.T) string {
	storePath := filepath.Join(t.TempDir(), "test.casestore")
	store, err := casestore.New(storePath)
	require.NoError(t, err)
	defer store.Close() // nolint:errcheck

	ctx := context.Background()
	for _, attributes := range []interface{}{
		casestore.HashsetHit{SetName: "A"},
		casestore.HashsetHit{SetName: "A"},
		casestore.HashsetHit{SetName: "B"},
	} {
		a, err := casestore.NewAnalysisResult(casestore.TypeHashsetHit, 1, 0, casestore.SignificanceNotable, attributes)
		require.NoError(t, err)
		require.NoError(t, store.PostArtifact(ctx, a))
	}
	a, err := casestore.NewAnalysisResult(casestore.TypeKeywordHit, 1, 0, casestore.SignificanceLikelyNotable, casestore.KeywordHit{SetName: "K", Keyword: "foo"})
	require.NoError(t, err)
	require.NoError(t, store.PostArtifact(ctx, a))

	err = store.PostArtifact(ctx, &casestore.Artifact{TypeID: casestore.TypeWebHistory, DataSourceID: 1, Attributes: casestore.Attributes(`{"url": "https://example.org"}`)})
	require.NoError(t, err)
	return storePath
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCreate(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "new.casestore")
	_, err := run(t, Create(), storePath)
	require.NoError(t, err)
	assert.FileExists(t, storePath)

	_, err = run(t, Create(), storePath)
	assert.Error(t, err)
}

func TestTree(t *testing.T) {
	storePath := setup(t)

	tests := []struct {
		name      string
		args      []string
		wantItems int
		wantErr   bool
	}{
		{"analysis results", []string{"analysis-results", storePath}, 2, false},
		{"data artifacts", []string{"data-artifacts", storePath}, 1, false},
		{"hash sets", []string{"hashsets", storePath}, 2, false},
		{"keyword sets", []string{"keyword-sets", storePath}, 1, false},
		{"keyword terms", []string{"keyword-terms", "--set", "K", storePath}, 1, false},
		{"sets", []string{"sets", "--type", "10", "--data-source", "1", storePath}, 2, false},
		{"extensions", []string{"extensions", storePath}, 7, false},
		{"documents", []string{"extensions", "--documents", storePath}, 5, false},
		{"unknown kind", []string{"foo", storePath}, 0, true},
		{"missing store", []string{"hashsets", storePath + ".missing"}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, Tree(), tt.args...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			var got struct {
				Items []json.RawMessage `json:"items"`
			}
			require.NoError(t, json.Unmarshal([]byte(out), &got))
			assert.Len(t, got.Items, tt.wantItems)
		})
	}
}

func TestTable(t *testing.T) {
	storePath := setup(t)

	tests := []struct {
		name      string
		args      []string
		wantRows  int
		wantTotal int64
		wantErr   bool
	}{
		{"hash set", []string{"hashsets", "--set", "A", storePath}, 2, 2, false},
		{"hash set page", []string{"hashsets", "--set", "A", "--max", "1", storePath}, 1, 2, false},
		{"null hash set", []string{"hashsets", storePath}, 0, 0, false},
		{"keywords", []string{"keywords", "--set", "K", "--term", "foo", storePath}, 1, 1, false},
		{"data artifacts", []string{"data-artifacts", "--type", "4", storePath}, 1, 1, false},
		{"wrong category", []string{"data-artifacts", "--type", "10", storePath}, 0, 0, true},
		{"negative start", []string{"hashsets", "--start=-1", storePath}, 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, Table(), tt.args...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			var got struct {
				Rows         []json.RawMessage `json:"rows"`
				TotalResults int64             `json:"total_results"`
			}
			require.NoError(t, json.Unmarshal([]byte(out), &got))
			assert.Len(t, got.Rows, tt.wantRows)
			assert.Equal(t, tt.wantTotal, got.TotalResults)
		})
	}
}

func TestSummary(t *testing.T) {
	storePath := setup(t)

	out, err := run(t, Summary(), "--data-source", "1", storePath)
	require.NoError(t, err)

	var got summary
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Hashsets, 2)
	assert.Equal(t, "A", got.Hashsets[0].Identifier)
	assert.Equal(t, int64(2), got.Hashsets[0].Count)
	require.Len(t, got.Keywords, 1)
	assert.Equal(t, "K", got.Keywords[0].Identifier)
}

func TestImport(t *testing.T) {
	storePath := setup(t)
	dir := t.TempDir()
	mappingPath := filepath.Join(dir, "mapping.yaml")
	require.NoError(t, os.WriteFile(mappingPath, []byte(`files:
  - glob: "**/history.tsv"
    artifact_type: TSK_WEB_HISTORY
    columns:
      - headers: [URL]
        attribute: url
`), 0o600))
	exportDir := filepath.Join(dir, "export")
	require.NoError(t, os.MkdirAll(exportDir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(exportDir, "history.tsv"), []byte("URL\nhttps://a.example\nhttps://b.example\n"), 0o600))

	out, err := run(t, Import(), "--mapping", mappingPath, "--data-source", "laptop", storePath, exportDir)
	require.NoError(t, err)

	var report struct {
		Files     int `json:"files"`
		Artifacts int `json:"artifacts"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 1, report.Files)
	assert.Equal(t, 2, report.Artifacts)

	out, err = run(t, DataSources(), storePath)
	require.NoError(t, err)
	var sources []casestore.DataSource
	require.NoError(t, json.Unmarshal([]byte(out), &sources))
	require.Len(t, sources, 1)
	assert.Equal(t, "laptop", sources[0].Name)

	out, err = run(t, Table(), "data-artifacts", "--type", "4", "--data-source", "1", storePath)
	require.NoError(t, err)
	assert.Contains(t, out, `"total_results":3`)
}

func TestPost(t *testing.T) {
	storePath := setup(t)

	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"hash set hit", []string{"TSK_HASHSET_HIT", `{"set_name": "C"}`, "--data-source", "1", storePath}, false},
		{"schema violation", []string{"TSK_HASHSET_HIT", `{"comment": "no set"}`, storePath}, true},
		{"invalid json", []string{"TSK_HASHSET_HIT", `{`, storePath}, true},
		{"unknown type", []string{"TSK_FOO", `{}`, storePath}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, Post(), tt.args...)
			assert.Equal(t, tt.wantErr, err != nil, "Post() error = %v", err)
		})
	}

	out, err := run(t, Tree(), "hashsets", storePath)
	require.NoError(t, err)
	assert.Contains(t, out, `"display_name":"C"`)
}

func Test_serve(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, ln, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}), zap.NewNop())
	}()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)

	cancel()
	assert.NoError(t, <-done)
}
