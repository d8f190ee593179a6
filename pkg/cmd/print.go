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
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/consensys/go-truthtree/pkg/tree"
	"github.com/consensys/go-truthtree/pkg/util/termio"
	"github.com/spf13/cobra"
)

var printCmd = &cobra.Command{
	Use:   "print [flags] tree_file",
	Short: "print a truth tree.",
	Long: `Print a truth tree with one node per line, indented by branch, along
	with feedback for each node.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := readTree(args[0])
		if err != nil {
			return err
		}
		//
		colour := termio.IsTerminal(os.Stdout) && !GetFlag(cmd, "no-colour")
		//
		return printTree(os.Stdout, t, colour, GetFlag(cmd, "feedback"))
	},
}

// Print a tree one node per line.  The children of a branching node are drawn
// below it, each indented as its own branch.
func printTree(out io.Writer, t *tree.Tree, colour bool, feedback bool) error {
	if err := t.CheckRepresentation(); err != nil {
		return fmt.Errorf("%w: %w", tree.ErrMalformed, err)
	}
	//
	p := treePrinter{out, t, colour, feedback}
	//
	return p.branch(t.Root(), "", "")
}

type treePrinter struct {
	out      io.Writer
	tree     *tree.Tree
	colour   bool
	feedback bool
}

// Print the branch starting from a given node.  The first line is prefixed by
// head, and subsequent lines by rest.
func (p *treePrinter) branch(id tree.NodeID, head string, rest string) error {
	for prefix := head; ; prefix = rest {
		node, _ := p.tree.Node(id)
		//
		if err := p.line(node, prefix); err != nil {
			return err
		}
		//
		children := node.Children()
		//
		switch len(children) {
		case 0:
			return nil
		case 1:
			id = children[0]
			continue
		}
		//
		for i, child := range children {
			var err error
			//
			if i+1 == len(children) {
				err = p.branch(child, rest+"└─ ", rest+"   ")
			} else {
				err = p.branch(child, rest+"├─ ", rest+"│  ")
			}
			//
			if err != nil {
				return err
			}
		}
		//
		return nil
	}
}

func (p *treePrinter) line(node *tree.Node, prefix string) error {
	var (
		builder strings.Builder
		id      = node.ID()
		valid   = p.tree.IsValid(id) == tree.Valid && p.tree.IsDecomposed(id) == tree.Valid
		faint   = termio.NewAnsiEscape().Faint()
		mark    = termio.NewAnsiEscape().FgColour(termio.TERM_GREEN).Wrap("✓", p.colour)
	)
	//
	if !valid {
		mark = termio.NewAnsiEscape().FgColour(termio.TERM_RED).Wrap("✗", p.colour)
	}
	//
	builder.WriteString(prefix)
	builder.WriteString(fmt.Sprintf("%d. ", id))
	//
	if node.IsEmpty() {
		builder.WriteString(faint.Wrap("(empty)", p.colour))
	} else {
		builder.WriteString(node.Text())
	}
	//
	if node.IsPremise() {
		builder.WriteString(faint.Wrap(" [premise]", p.colour))
	} else if ante := node.Antecedent(); ante.HasValue() {
		builder.WriteString(faint.Wrap(fmt.Sprintf(" [from %d]", ante.Unwrap()), p.colour))
	}
	//
	if refs := node.Decomposition(); node.IsClosedTerminator() && len(refs) > 0 {
		builder.WriteString(faint.Wrap(" [closes "+joinIDs(refs)+"]", p.colour))
	}
	//
	builder.WriteString(" ")
	builder.WriteString(mark)
	//
	if p.feedback && !valid {
		builder.WriteString(" ")
		builder.WriteString(termio.NewAnsiEscape().FgColour(termio.TERM_YELLOW).Wrap(p.tree.Feedback(id), p.colour))
	}
	//
	_, err := fmt.Fprintln(p.out, builder.String())
	//
	return err
}

func joinIDs(ids []tree.NodeID) string {
	strs := make([]string, len(ids))
	//
	for i, id := range ids {
		strs[i] = fmt.Sprintf("%d", id)
	}
	//
	return strings.Join(strs, ", ")
}

func init() {
	rootCmd.AddCommand(printCmd)
	printCmd.Flags().Bool("feedback", true, "show feedback for nodes which are not valid")
	printCmd.Flags().Bool("no-colour", false, "disable ANSI colours")
}
