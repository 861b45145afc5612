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

// casestore is a tool to review the findings of a forensic case.
// It provides various subcommands:
//     create    Create a casestore
//     import    Import the TSV files of a directory as a new data source
//     sources   List all data sources
//     tree      Print the counts of a tree
//     table     Print a page of a table
//     summary   Print the analysis summary of a data source
//     post      Post an artifact
//     serve     Run a http API
//
// Usage
//
// Create a casestore and import a directory
//     casestore create my.casestore
//     casestore import my.casestore ./export --mapping mapping.yaml --data-source laptop
// Browse the case
//     casestore tree analysis-results my.casestore
//     casestore tree keyword-terms --set "Email Addresses" my.casestore
//     casestore table hashsets --set NSRL --max 50 my.casestore > nsrl.json
//     casestore summary --data-source 1 my.casestore
// Post an analysis result
//     casestore post TSK_HASHSET_HIT '{"set_name": "NSRL"}' --data-source 1 my.casestore
// Serve the case
//     CASESTORE_LOG_LEVEL=debug casestore serve --addr :8080 my.casestore
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/forensicanalysis/casestore/cmd"
)

func main() {
	cobra.OnInitialize(cmd.InitConfig)

	rootCmd := &cobra.Command{
		Use:   "casestore",
		Short: "Review forensic cases",
	}
	rootCmd.AddCommand(cmd.Create(), cmd.Import(), cmd.DataSources(), cmd.Tree(), cmd.Table(), cmd.Summary(), cmd.Post(), cmd.Serve())
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
