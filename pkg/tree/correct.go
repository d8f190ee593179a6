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
package tree

import (
	"errors"
	"fmt"
	"slices"
)

// ErrMalformed indicates a tree whose internal links are inconsistent.  Such a
// tree cannot be reliably checked.
var ErrMalformed = errors.New("malformed tree")

// IsCorrect checks whether this tree as a whole is a finished and correct
// truth tree.  An error is returned only when the tree is malformed.
func (t *Tree) IsCorrect() (Verdict, error) {
	if err := t.CheckRepresentation(); err != nil {
		return Malformed, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	//
	open := false
	//
	for _, id := range t.Nodes() {
		node := t.nodes[id]
		//
		if t.IsValid(id) != Valid {
			return Incorrect, nil
		} else if !t.leaves.Contains(id) {
			continue
		}
		//
		if t.options.RequireAllBranchesTerminated && !node.IsTerminator() {
			return Unterminated, nil
		} else if !t.options.RequireAllBranchesTerminated && node.IsOpenTerminator() {
			open = true
		}
	}
	// An open branch shows the premises are satisfiable
	if open {
		return Correct, nil
	}
	//
	for leaf := range t.leaves.All() {
		if !t.nodes[leaf].IsTerminator() {
			return Unterminated, nil
		}
	}
	//
	return Correct, nil
}

// CheckRepresentation checks the internal links of this tree are consistent.
// That is, parent and child links agree, the tree has a single root, the
// leaves are exactly those nodes without children, and every statement's
// antecedent lists it as part of its decomposition (and vice versa).
func (t *Tree) CheckRepresentation() error {
	if err := t.checkStructure(); err != nil {
		return err
	}
	//
	for _, id := range t.Nodes() {
		node := t.nodes[id]
		//
		if node.IsTerminator() {
			continue
		}
		//
		if node.antecedent.HasValue() {
			antecedent, ok := t.nodes[node.antecedent.Unwrap()]
			//
			switch {
			case !ok:
				return fmt.Errorf("node %d has unknown antecedent %d", id, node.antecedent.Unwrap())
			case !antecedent.decomposition.Contains(id):
				return fmt.Errorf("node %d missing from decomposition of antecedent %d", id, antecedent.id)
			case !t.IsAncestorOf(antecedent.id, id):
				return fmt.Errorf("antecedent %d is not above node %d", antecedent.id, id)
			}
		}
		//
		for member := range node.decomposition.All() {
			if other, ok := t.nodes[member]; !ok {
				return fmt.Errorf("node %d decomposes into unknown node %d", id, member)
			} else if other.antecedent.IsEmpty() || other.antecedent.Unwrap() != id {
				return fmt.Errorf("node %d decomposes into %d, which is not derived from it", id, member)
			}
		}
	}
	//
	return nil
}

// Check the parent, child and leaf links are consistent, and that every node
// is reachable from the root.
func (t *Tree) checkStructure() error {
	root, ok := t.nodes[t.root]
	//
	if !ok {
		return fmt.Errorf("unknown root %d", t.root)
	} else if root.parent.HasValue() {
		return fmt.Errorf("root %d has parent %d", t.root, root.parent.Unwrap())
	}
	//
	leaves := make([]NodeID, 0)
	//
	for _, id := range t.Nodes() {
		node := t.nodes[id]
		//
		if len(node.children) == 0 {
			leaves = append(leaves, id)
		}
		//
		if node.parent.IsEmpty() && id != t.root {
			return fmt.Errorf("node %d has no parent, but is not the root", id)
		} else if node.parent.HasValue() {
			parent, ok := t.nodes[node.parent.Unwrap()]
			//
			if !ok || !slices.Contains(parent.children, id) {
				return fmt.Errorf("node %d is not a child of its parent %d", id, node.parent.Unwrap())
			}
		}
		//
		for _, child := range node.children {
			if c, ok := t.nodes[child]; !ok {
				return fmt.Errorf("node %d has unknown child %d", id, child)
			} else if c.parent.IsEmpty() || c.parent.Unwrap() != id {
				return fmt.Errorf("node %d has child %d which is not linked back", id, child)
			}
		}
	}
	//
	if !slices.Equal(leaves, t.leaves.ToArray()) {
		return fmt.Errorf("leaves %v do not match nodes without children %v", t.leaves.ToArray(), leaves)
	}
	// Every node must reach the root without revisiting anything
	for _, id := range t.Nodes() {
		node := t.nodes[id]
		//
		for steps := 0; node.parent.HasValue(); steps++ {
			if steps > len(t.nodes) {
				return fmt.Errorf("node %d is on a cycle", id)
			}
			//
			node = t.nodes[node.parent.Unwrap()]
		}
		//
		if node.id != t.root {
			return fmt.Errorf("node %d is not connected to root %d", id, t.root)
		}
	}
	//
	return nil
}
