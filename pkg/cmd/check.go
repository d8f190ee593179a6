// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/consensys/go-truthtree/pkg/tree"
	"github.com/consensys/go-truthtree/pkg/util"
	"github.com/consensys/go-truthtree/pkg/util/termio"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] pattern...",
	Short: "check one or more truth trees.",
	Long: `Check whether one or more truth trees are correct, reporting
	feedback for every node which is not.  Trees are given as files or as
	glob patterns (e.g. "trees/**/*.json"), and are checked in parallel.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			ctx, stop = signal.NotifyContext(context.Background(), os.Interrupt)
			jobs      = settings.Workers()
			colour    = termio.IsTerminal(os.Stdout)
		)
		//
		defer stop()
		//
		if cmd.Flags().Changed("jobs") {
			jobs = int(GetUint(cmd, "jobs"))
		}
		//
		files, err := expandPatterns(args)
		if err != nil {
			return err
		}
		//
		reports := checkFiles(ctx, files, jobs)
		ok := printReports(os.Stdout, reports, colour)
		//
		if GetFlag(cmd, "watch") {
			return watch(ctx, args, jobs, settings.Debounce, func(reports []report) {
				printReports(os.Stdout, reports, colour)
			})
		} else if !ok {
			os.Exit(1)
		}
		//
		return nil
	},
}

// Failure records feedback for a node which is not valid, or not decomposed.
type failure struct {
	id       tree.NodeID
	text     string
	response tree.Response
}

// Report summarises the outcome of checking a single file.
type report struct {
	filename string
	verdict  tree.Verdict
	failures []failure
	// Error reading or checking the file (if any)
	err error
}

// Correct determines whether the checked tree was correct.
func (p *report) Correct() bool {
	return p.err == nil && p.verdict == tree.Correct
}

// Expand a set of glob patterns into a sorted list of files.  A pattern
// without any matches is kept as is, so that a missing file is reported as
// such.
func expandPatterns(patterns []string) ([]string, error) {
	var files []string
	//
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		} else if len(matches) == 0 {
			matches = []string{pattern}
		}
		//
		files = append(files, matches...)
	}
	//
	slices.Sort(files)
	//
	return slices.Compact(files), nil
}

// Check a set of files in parallel, using at most a given number of jobs.
// Reports are returned in the same order as the files.
func checkFiles(ctx context.Context, files []string, jobs int) []report {
	var (
		reports = make([]report, len(files))
		g, gctx = errgroup.WithContext(ctx)
	)
	//
	g.SetLimit(max(1, jobs))
	//
	for i, filename := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				reports[i] = report{filename: filename, err: err}
			} else {
				reports[i] = checkFile(filename)
			}
			//
			return nil
		})
	}
	// Errors are held in the reports
	_ = g.Wait()
	//
	return reports
}

// Check a single file, recording feedback for every node which fails.
func checkFile(filename string) report {
	stats := util.NewPerfStats()
	defer stats.Log(fmt.Sprintf("Checking %s", filename))
	//
	t, err := readTree(filename)
	if err != nil {
		return report{filename: filename, err: err}
	}
	//
	verdict, err := t.IsCorrect()
	if err != nil {
		return report{filename: filename, verdict: verdict, err: fmt.Errorf("%s: %w", filename, err)}
	}
	//
	var failures []failure
	//
	for _, id := range t.Nodes() {
		node, _ := t.Node(id)
		//
		if r := t.IsValid(id); r != tree.Valid {
			failures = append(failures, failure{id, node.Text(), r})
		} else if r := t.IsDecomposed(id); r != tree.Valid {
			failures = append(failures, failure{id, node.Text(), r})
		}
	}
	//
	return report{filename, verdict, failures, nil}
}

// Print a set of reports, returning true if every tree was correct.
func printReports(out io.Writer, reports []report, colour bool) bool {
	var (
		ok    = true
		red   = termio.NewAnsiEscape().FgColour(termio.TERM_RED)
		green = termio.NewAnsiEscape().FgColour(termio.TERM_GREEN)
	)
	//
	for _, r := range reports {
		if r.err != nil {
			ok = false
			//
			fmt.Fprintf(out, "%s: %s\n", r.filename, red.Wrap(r.err.Error(), colour))
			//
			continue
		} else if r.Correct() {
			fmt.Fprintf(out, "%s: %s\n", r.filename, green.Wrap(r.verdict.Message(), colour))
		} else {
			ok = false
			//
			fmt.Fprintf(out, "%s: %s\n", r.filename, red.Wrap(r.verdict.Message(), colour))
		}
		//
		printFailures(out, r.failures, colour)
	}
	//
	return ok
}

func printFailures(out io.Writer, failures []failure, colour bool) {
	if len(failures) == 0 {
		return
	}
	//
	table := termio.NewTablePrinter(3)
	table.AnsiEscapes(colour)
	//
	for _, f := range failures {
		row := table.AddRow(strconv.FormatUint(uint64(f.id), 10), f.text, f.response.Message())
		table.SetEscape(2, row, termio.NewAnsiEscape().FgColour(termio.TERM_YELLOW))
	}
	//
	table.SetMaxWidth(1, 40)
	//
	if err := table.Print(indented{out, "    "}); err != nil {
		log.Error(err)
	}
	// Show where the text went wrong
	for _, f := range failures {
		if f.response == tree.NotParsable {
			fmt.Fprintf(out, "    node %d:\n", f.id)
			printSyntaxError(out, "      ", f.text)
		}
	}
}

// Indented prefixes every write with a given indent.  Writes are assumed to be
// whole lines.
type indented struct {
	out    io.Writer
	indent string
}

func (p indented) Write(data []byte) (int, error) {
	if _, err := io.WriteString(p.out, p.indent); err != nil {
		return 0, err
	}
	//
	return p.out.Write(data)
}

// Parent directories of a set of files, without duplicates.
func directories(files []string) []string {
	var dirs []string
	//
	for _, file := range files {
		dirs = append(dirs, filepath.Dir(file))
	}
	//
	slices.Sort(dirs)
	//
	return slices.Compact(dirs)
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().Bool("watch", false, "recheck trees whenever they change, including trees in newly created directories")
	checkCmd.Flags().UintP("jobs", "j", 0, "number of trees to check in parallel (default one per CPU)")
}
