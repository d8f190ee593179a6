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
	"os"
	"time"

	"github.com/consensys/go-truthtree/pkg/logic/parser"
	"github.com/consensys/go-truthtree/pkg/store"
	"github.com/consensys/go-truthtree/pkg/util/termio"
	"github.com/spf13/cobra"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "manage a library of truth trees.",
	Long: `Manage a library of named truth trees, held in a SQLite database
	whose location is given by the configuration file (or --store).`,
}

var storePutCmd = &cobra.Command{
	Use:   "put [flags] name tree_file",
	Short: "add a tree to the library.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := readTree(args[1])
		if err != nil {
			return err
		}
		//
		return withLibrary(cmd, func(lib *store.Library) error {
			digest, err := lib.Put(args[0], t)
			if err == nil {
				fmt.Printf("%s %s\n", args[0], digest)
			}
			//
			return err
		})
	},
}

var storeGetCmd = &cobra.Command{
	Use:   "get [flags] name",
	Short: "retrieve a tree from the library.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLibrary(cmd, func(lib *store.Library) error {
			t, err := lib.Get(args[0], parser.New())
			if err != nil {
				return err
			}
			//
			return writeTree(GetString(cmd, "out"), t)
		})
	},
}

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "list the trees in the library.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLibrary(cmd, func(lib *store.Library) error {
			entries, err := lib.List()
			if err != nil {
				return err
			}
			//
			table := termio.NewTablePrinter(4)
			table.AnsiEscapes(termio.IsTerminal(os.Stdout))
			//
			for _, entry := range entries {
				row := table.AddRow(entry.Name, entry.Digest[:12], fmt.Sprintf("%d", entry.Size),
					entry.Updated.Format(time.DateTime))
				table.SetEscape(0, row, termio.NewAnsiEscape().Bold())
			}
			//
			return table.Print(os.Stdout)
		})
	},
}

var storeRmCmd = &cobra.Command{
	Use:   "rm name...",
	Short: "remove trees from the library.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLibrary(cmd, func(lib *store.Library) error {
			for _, name := range args {
				if err := lib.Delete(name); err != nil {
					return err
				}
			}
			//
			return nil
		})
	},
}

// Open the configured library, run some action against it and close it again.
func withLibrary(cmd *cobra.Command, action func(*store.Library) error) error {
	path := settings.Store
	//
	if cmd.Flags().Changed("store") {
		path = GetString(cmd, "store")
	}
	//
	lib, err := store.Open(path)
	if err != nil {
		return err
	}
	//
	if err = action(lib); err != nil {
		lib.Close()
		return err
	}
	//
	return lib.Close()
}

func init() {
	rootCmd.AddCommand(storeCmd)
	storeCmd.AddCommand(storePutCmd, storeGetCmd, storeListCmd, storeRmCmd)
	storeCmd.PersistentFlags().String("store", "", "library file (overrides configuration)")
	storeGetCmd.Flags().StringP("out", "o", "", "output file (default stdout)")
}
