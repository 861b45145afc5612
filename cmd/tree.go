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
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forensicanalysis/casestore/dao"
)

type queryFunc func(ctx context.Context, d *dao.DAO, f *queryFlags) (interface{}, error)

var trees = map[string]queryFunc{
	"analysis-results": func(ctx context.Context, d *dao.DAO, f *queryFlags) (interface{}, error) {
		return d.AnalysisResults.AnalysisResultCounts(ctx, f.dataSource)
	},
	"data-artifacts": func(ctx context.Context, d *dao.DAO, f *queryFlags) (interface{}, error) {
		return d.DataArtifacts.DataArtifactCounts(ctx, f.dataSource)
	},
	"sets": func(ctx context.Context, d *dao.DAO, f *queryFlags) (interface{}, error) {
		return d.AnalysisResults.SetCounts(ctx, f.typeID, f.dataSource, f.nullSet())
	},
	"hashsets": func(ctx context.Context, d *dao.DAO, f *queryFlags) (interface{}, error) {
		return d.AnalysisResults.HashHitSetCounts(ctx, f.dataSource)
	},
	"keyword-sets": func(ctx context.Context, d *dao.DAO, f *queryFlags) (interface{}, error) {
		return d.AnalysisResults.KeywordSetCounts(ctx, f.dataSource, f.nullSet())
	},
	"keyword-terms": func(ctx context.Context, d *dao.DAO, f *queryFlags) (interface{}, error) {
		return d.AnalysisResults.KeywordSearchTermCounts(ctx, f.set(), f.dataSource)
	},
	"keyword-matches": func(ctx context.Context, d *dao.DAO, f *queryFlags) (interface{}, error) {
		return d.AnalysisResults.KeywordMatchCounts(ctx, f.set(), f.term, dao.KeywordSearchType(f.searchType), f.dataSource)
	},
	"extensions": func(ctx context.Context, d *dao.DAO, f *queryFlags) (interface{}, error) {
		var filters []dao.FileExtFilter
		if f.documents {
			filters = dao.DocumentExtFilters
		}
		return d.Views.FileExtensionCounts(ctx, filters, f.dataSource)
	},
}

func kinds[V any](m map[string]V) []string {
	var names []string
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tree is the casestore tree commandline subcommand
func Tree() *cobra.Command {
	f := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "tree <kind> <casestore>",
		Short: "Print the counts of a tree",
		Long:  "Print the counts of a tree. Kinds: " + strings.Join(kinds(trees), ", "),
		Args:  cobra.ExactArgs(2), //nolint:gomnd
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, ok := trees[args[0]]
			if !ok {
				return fmt.Errorf("unknown tree %s, expected one of: %s", args[0], strings.Join(kinds(trees), ", "))
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

			res, err := tree(cmd.Context(), s.dao, f)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	configFlags(cmd)
	f.register(cmd)
	cmd.Flags().BoolVar(&f.documents, "documents", false, "extensions: count the document sub filters")
	return cmd
}

/* ################################
#   Flags
################################ */

// queryFlags are the flags shared by the tree and table commands.
type queryFlags struct {
	cmd *cobra.Command

	dataSource int64
	typeID     int
	setName    string
	nullName   string
	term       string
	searchType int
	keyword    string
	mimeType   string
	filter     int
	documents  bool
	start, max int64
}

func (f *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&f.dataSource, "data-source", 0, "data source id, 0 for all")
	cmd.Flags().IntVar(&f.typeID, "type", 0, "artifact type id")
	cmd.Flags().StringVar(&f.setName, "set", "", "set name, the null set if not given")
	cmd.Flags().StringVar(&f.nullName, "null-set", "", "display name of artifacts without set")
	cmd.Flags().StringVar(&f.term, "term", "", "keyword search term")
	cmd.Flags().IntVar(&f.searchType, "search-type", 0, "keyword search type: 0 exact, 1 substring, 2 regex")
}

// set is null unless --set was given.
func (f *queryFlags) set() dao.NullString {
	return f.optional("set", f.setName)
}

func (f *queryFlags) nullSet() dao.NullString {
	return f.optional("null-set", f.nullName)
}

func (f *queryFlags) optional(name, value string) dao.NullString {
	if f.cmd == nil || !f.cmd.Flags().Changed(name) {
		return dao.NullString{}
	}
	return dao.Some(value)
}
