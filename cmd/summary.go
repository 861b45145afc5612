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
	"github.com/spf13/cobra"

	"github.com/forensicanalysis/casestore/dao"
)

type summary struct {
	Hashsets         []dao.AnalysisCountRecord `json:"hashsets"`
	Keywords         []dao.AnalysisCountRecord `json:"keywords"`
	InterestingItems []dao.AnalysisCountRecord `json:"interesting_items"`
}

// Summary is the casestore summary commandline subcommand
func Summary() *cobra.Command {
	var dataSource int64
	cmd := &cobra.Command{
		Use:   "summary <casestore>",
		Short: "Print the hash set, keyword and interesting item counts of a data source",
		Args:  requireOneStore,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			var sum summary
			if sum.Hashsets, err = s.dao.Summary.HashsetCounts(ctx, dataSource); err != nil {
				return err
			}
			if sum.Keywords, err = s.dao.Summary.KeywordCounts(ctx, dataSource); err != nil {
				return err
			}
			if sum.InterestingItems, err = s.dao.Summary.InterestingItemCounts(ctx, dataSource); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), sum)
		},
	}
	configFlags(cmd)
	cmd.Flags().Int64Var(&dataSource, "data-source", 0, "data source id")
	return cmd
}
