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
	"github.com/consensys/go-truthtree/pkg/script"
	"github.com/consensys/go-truthtree/pkg/tree"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:   "apply [flags] script_file",
	Short: "apply an edit script to a truth tree.",
	Long: `Replay the edits in a YAML script against a truth tree (or an empty
	tree), writing out the result.  Replaying stops at the first edit which
	the tree refuses.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			t   *tree.Tree
			err error
		)
		//
		s, err := script.ReadFile(args[0])
		if err != nil {
			return err
		}
		//
		if input := GetString(cmd, "in"); input != "" {
			t, err = readTree(input)
		} else {
			t, err = newTree()
		}
		//
		if err != nil {
			return err
		}
		//
		labels, err := s.Apply(t, settings.Substitutions)
		if err != nil {
			return err
		}
		//
		for label, id := range labels {
			log.Debugf("%s = %d", label, id)
		}
		//
		return writeTree(GetString(cmd, "out"), t)
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().StringP("in", "i", "", "tree to edit (default an empty tree)")
	applyCmd.Flags().StringP("out", "o", "", "output file (default stdout)")
}
