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
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/forensicanalysis/casestore/importer"
)

// Import is the casestore import commandline subcommand
func Import() *cobra.Command {
	var mappingPath, dataSourceName string
	cmd := &cobra.Command{
		Use:   "import <casestore> <dir>",
		Short: "Import the TSV files of a directory as a new data source",
		Args:  cobra.ExactArgs(2), //nolint:gomnd
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := storeExists(args[0]); err != nil {
				return err
			}
			fs := afero.NewOsFs()
			mapping, err := importer.LoadMapping(fs, mappingPath)
			if err != nil {
				return err
			}

			s, err := openSession(cmd, args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			name := dataSourceName
			if name == "" {
				name = args[1]
			}
			ds, err := s.store.AddDataSource(cmd.Context(), name)
			if err != nil {
				return errors.Wrap(err, "could not add data source")
			}

			im := importer.New(s.store, mapping, importer.WithFs(fs), importer.WithLogger(s.logger))
			report, err := im.Import(cmd.Context(), args[1], ds.ID)
			if err != nil {
				return err
			}
			s.logger.Info("imported", zap.Int64("data_source", ds.ID), zap.Int("files", report.Files),
				zap.Int("artifacts", report.Artifacts), zap.Int("warnings", len(report.Warnings)))
			return printJSON(cmd.OutOrStdout(), report)
		},
	}
	configFlags(cmd)
	cmd.Flags().StringVar(&mappingPath, "mapping", "", "YAML file mapping TSV files to artifact types")
	cmd.Flags().StringVar(&dataSourceName, "data-source", "", "name of the data source, the directory if not given")
	_ = cmd.MarkFlagRequired("mapping")
	return cmd
}
