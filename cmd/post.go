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
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/forensicanalysis/casestore"
)

// Post is the casestore post commandline subcommand
func Post() *cobra.Command {
	var dataSource, objID int64
	var score int
	cmd := &cobra.Command{
		Use:   "post <type> <json> <casestore>",
		Short: "Post an artifact with the given json attributes",
		Args:  cobra.ExactArgs(3), //nolint:gomnd
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := storeExists(args[2]); err != nil {
				return err
			}
			if !json.Valid([]byte(args[1])) {
				return errors.New("attributes are not valid json")
			}

			s, err := openSession(cmd, args[2])
			if err != nil {
				return err
			}
			defer s.Close()

			at, err := s.store.ArtifactTypeByName(args[0])
			if err != nil {
				return err
			}
			artifact := &casestore.Artifact{
				ObjID:        objID,
				TypeID:       at.ID,
				DataSourceID: dataSource,
				Score:        casestore.Significance(score),
				Attributes:   casestore.Attributes(args[1]),
			}
			if err := s.store.PostArtifact(cmd.Context(), artifact); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), artifact)
		},
	}
	configFlags(cmd)
	cmd.Flags().Int64Var(&dataSource, "data-source", 0, "data source id")
	cmd.Flags().Int64Var(&objID, "obj-id", 0, "id of the source file")
	cmd.Flags().IntVar(&score, "score", 0, "score: 0 unknown, 1 likely not notable, 2 not notable, 3 likely notable, 4 notable")
	return cmd
}
