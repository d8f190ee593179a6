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

	"github.com/consensys/go-truthtree/pkg/logic/parser"
	"github.com/consensys/go-truthtree/pkg/tree"
	"github.com/spf13/cobra"
)

var newCmd = &cobra.Command{
	Use:   "new [flags]",
	Short: "create an empty truth tree.",
	Long: `Create a truth tree holding a single empty node, using the options
	given in the configuration file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := newTree()
		if err != nil {
			return err
		}
		//
		return writeTree(GetString(cmd, "out"), t)
	},
}

// Construct an empty tree with the configured options.
func newTree() (*tree.Tree, error) {
	t := tree.Empty(parser.New())
	//
	if !t.SetOptions(settings.Options) {
		return nil, errors.New("cannot set tree options")
	}
	//
	return t, nil
}

func init() {
	rootCmd.AddCommand(newCmd)
	newCmd.Flags().StringP("out", "o", "", "output file (default stdout)")
}
