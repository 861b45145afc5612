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
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forensicanalysis/casestore/dao"
)

var tables = map[string]queryFunc{
	"analysis-results": func(ctx context.Context, d *dao.DAO, f *queryFlags) (interface{}, error) {
		key := dao.AnalysisResultSearchParam{ArtifactTypeID: f.typeID, DataSourceID: f.dataSource}
		return d.AnalysisResults.AnalysisResultsForTable(ctx, key, f.start, f.max, false)
	},
	"data-artifacts": func(ctx context.Context, d *dao.DAO, f *queryFlags) (interface{}, error) {
		key := dao.DataArtifactSearchParam{ArtifactTypeID: f.typeID, DataSourceID: f.dataSource}
		return d.DataArtifacts.DataArtifactsForTable(ctx, key, f.start, f.max, false)
	},
	"hashsets": func(ctx context.Context, d *dao.DAO, f *queryFlags) (interface{}, error) {
		key := dao.HashHitSearchParam{DataSourceID: f.dataSource, SetName: f.set()}
		return d.AnalysisResults.HashHitsForTable(ctx, key, f.start, f.max, false)
	},
	"keywords": func(ctx context.Context, d *dao.DAO, f *queryFlags) (interface{}, error) {
		key := dao.KeywordHitSearchParam{
			DataSourceID: f.dataSource,
			SetName:      f.set(),
			SearchTerm:   f.optional("term", f.term),
			SearchType:   dao.KeywordSearchType(f.searchType),
			Keyword:      f.optional("keyword", f.keyword),
		}
		return d.AnalysisResults.KeywordHitsForTable(ctx, key, f.start, f.max, false)
	},
	"sets": func(ctx context.Context, d *dao.DAO, f *queryFlags) (interface{}, error) {
		key := dao.AnalysisResultSetSearchParam{ArtifactTypeID: f.typeID, DataSourceID: f.dataSource, SetName: f.set()}
		return d.AnalysisResults.SetHitsForTable(ctx, key, f.start, f.max, false)
	},
	"extension": func(ctx context.Context, d *dao.DAO, f *queryFlags) (interface{}, error) {
		key := dao.FileTypeExtensionsSearchParams{Filter: dao.FileExtFilter(f.filter), DataSourceID: f.dataSource}
		return d.Views.FilesByExtension(ctx, key, f.start, f.max, false)
	},
	"mime": func(ctx context.Context, d *dao.DAO, f *queryFlags) (interface{}, error) {
		key := dao.FileTypeMimeSearchParams{MimeType: f.mimeType, DataSourceID: f.dataSource}
		return d.Views.FilesByMime(ctx, key, f.start, f.max, false)
	},
	"size": func(ctx context.Context, d *dao.DAO, f *queryFlags) (interface{}, error) {
		key := dao.FileTypeSizeSearchParams{SizeFilter: dao.FileSizeFilter(f.filter), DataSourceID: f.dataSource}
		return d.Views.FilesBySize(ctx, key, f.start, f.max, false)
	},
}

// Table is the casestore table commandline subcommand
func Table() *cobra.Command {
	f := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "table <kind> <casestore>",
		Short: "Print a page of a table",
		Long:  "Print a page of a table. Kinds: " + strings.Join(kinds(tables), ", "),
		Args:  cobra.ExactArgs(2), //nolint:gomnd
		RunE: func(cmd *cobra.Command, args []string) error {
			table, ok := tables[args[0]]
			if !ok {
				return fmt.Errorf("unknown table %s, expected one of: %s", args[0], strings.Join(kinds(tables), ", "))
			}
			if err := storeExists(args[1]); err != nil {
				return err
			}
			f.cmd = cmd

			s, err := openSession(cmd, args[1])
			if err != nil {
				return err
			}
			defer s.Close()

			res, err := table(cmd.Context(), s.dao, f)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	configFlags(cmd)
	f.register(cmd)
	cmd.Flags().StringVar(&f.keyword, "keyword", "", "keywords: matched keyword")
	cmd.Flags().StringVar(&f.mimeType, "mime", "", "mime: MIME type")
	cmd.Flags().IntVar(&f.filter, "filter", 0, "extension, size: filter id")
	cmd.Flags().Int64Var(&f.start, "start", 0, "index of the first row")
	cmd.Flags().Int64Var(&f.max, "max", 0, "maximum number of rows, 0 for all")
	return cmd
}
