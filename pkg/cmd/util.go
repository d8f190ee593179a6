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
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/consensys/go-truthtree/pkg/logic/parser"
	"github.com/consensys/go-truthtree/pkg/tree"
	"github.com/consensys/go-truthtree/pkg/util/source"
	"github.com/spf13/cobra"
)

// GetFlag gets an expected flag, or panic if an error arises.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetUint gets an expected unsigned integer flag, or panic if an error arises.
func GetUint(cmd *cobra.Command, flag string) uint {
	r, err := cmd.Flags().GetUint(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetString gets an expected string flag, or panic if an error arises.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// Read a tree from a given file.
func readTree(filename string) (*tree.Tree, error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	//
	t, err := tree.Deserialize(bytes, parser.New())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	//
	return t, nil
}

// Write a tree to a given file, or to stdout if no file is given.
func writeTree(filename string, t *tree.Tree) error {
	bytes, err := t.Serialize()
	if err != nil {
		return err
	}
	//
	return writeOutput(filename, append(bytes, '\n'))
}

// Write some data to a given file, or to stdout if no file is given.
func writeOutput(filename string, data []byte) error {
	if filename == "" || filename == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	//
	return os.WriteFile(filename, data, 0644)
}

// Print the syntax error(s) for a node's text, with the offending text
// highlighted.
func printSyntaxError(out io.Writer, indent string, text string) {
	var errs source.Errors
	//
	if _, err := parser.New().Parse(text); err == nil || !errors.As(err, &errs) || len(errs) == 0 {
		return
	}
	//
	for _, line := range strings.Split(errs[0].Highlight(), "\n") {
		fmt.Fprintf(out, "%s%s\n", indent, line)
	}
	//
	fmt.Fprintf(out, "%s%s\n", indent, errs[0].Message())
}
