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
	"fmt"
	"strings"

	"github.com/consensys/go-truthtree/pkg/logic"
	"github.com/consensys/go-truthtree/pkg/util/collection/set"
)

// IsDecomposed checks whether a given node has been decomposed in every open
// branch which contains it.  As with IsValid, the node must exist and the tree
// must be well formed.
func (t *Tree) IsDecomposed(id NodeID) Response {
	node := t.lookup(id)
	//
	if node.statement == nil {
		if node.IsEmpty() || node.IsTerminator() {
			return Valid
		}
		//
		return NotParsable
	} else if len(node.statement.Decompose()) == 0 {
		return Valid
	}
	//
	for member := range node.decomposition.All() {
		if !t.IsAncestorOf(id, member) {
			return ReferenceNotAfter
		}
	}
	//
	for leaf := range t.leaves.All() {
		if !t.nodes[leaf].IsOpenTerminator() || !t.IsAncestorOf(id, leaf) {
			continue
		}
		//
		var (
			branch = t.ancestorSet(leaf)
			r      Response
		)
		//
		switch stmt := node.statement.(type) {
		case *logic.Existential:
			r = t.isExistentialDecomposed(node, stmt, branch)
		case *logic.Universal:
			r = t.isUniversalDecomposed(node, stmt, leaf, branch)
		default:
			r = InvalidDecomposition
			//
			for member := range t.correctDecomposition(id).All() {
				if branch.Contains(member) {
					r = Valid
					break
				}
			}
		}
		//
		if r != Valid {
			return r
		}
	}
	//
	return Valid
}

// An existential must be instantiated exactly once in the branch, using new
// constants for its variables.
func (t *Tree) isExistentialDecomposed(node *Node, stmt *logic.Existential, branch *set.SortedSet[NodeID]) Response {
	members := t.membersIn(node, branch)
	//
	if len(members) != 1 {
		return ExistenceDecomposeLength
	}
	//
	member := t.nodes[members[0]]
	//
	if member.statement == nil {
		return InvalidDecomposition
	} else if _, ok := stmt.EqualsMap(member.statement); !ok {
		return InvalidDecomposition
	} else if len(member.statement.NewConstants(t.Universe(member.id))) != len(stmt.Variables()) {
		return InvalidDecomposition
	}
	//
	return Valid
}

// A universal must be instantiated in the branch for every combination of
// constants in the universe at the end of the branch.
func (t *Tree) isUniversalDecomposed(node *Node, stmt *logic.Universal, leaf NodeID,
	branch *set.SortedSet[NodeID]) Response {
	var (
		members   = t.membersIn(node, branch)
		universe  = t.Universe(leaf)
		variables = stmt.Variables()
	)
	//
	if len(members) == 0 {
		return UniversalDecomposeLength
	} else if len(members) < power(len(universe), len(variables)) {
		return UniversalDomainNotDecomposed
	}
	//
	remaining := make(map[string]bool)
	for _, key := range tuples(universe, len(variables)) {
		remaining[key] = true
	}
	//
	for _, id := range members {
		member := t.nodes[id]
		//
		if member.statement == nil {
			return InvalidDecomposition
		}
		//
		assignment, ok := stmt.EqualsMap(member.statement)
		if !ok {
			return InvalidDecomposition
		}
		//
		delete(remaining, assignment.Key(variables))
	}
	//
	if len(remaining) != 0 {
		return UniversalDomainNotDecomposed
	}
	//
	return Valid
}

// Determine the members of a node's decomposition which lie on a given branch.
func (t *Tree) membersIn(node *Node, branch *set.SortedSet[NodeID]) []NodeID {
	var members []NodeID
	//
	for member := range node.decomposition.All() {
		if branch.Contains(member) {
			members = append(members, member)
		}
	}
	//
	return members
}

// Determine which members of a node's decomposition together form a correct
// decomposition of its statement.  For each point where the decomposition
// starts, the branches below it are walked (down to the next split) to gather
// the statements in each, and these are then checked against the statement.
// The result is cached until invalidated.
func (t *Tree) correctDecomposition(id NodeID) *set.SortedSet[NodeID] {
	node := t.nodes[id]
	//
	if node.statement == nil {
		return set.NewSortedSet[NodeID]()
	} else if node.correct != nil {
		return node.correct
	}
	//
	var (
		correct = set.NewSortedSet[NodeID]()
		visited = make(map[NodeID]bool)
	)
	//
	for start := range node.decomposition.All() {
		if visited[start] {
			continue
		}
		//
		member := t.lookup(start)
		//
		if member.parent.IsEmpty() {
			panic(fmt.Sprintf("decomposition member %d has no parent", start))
		} else if node.decomposition.Contains(member.parent.Unwrap()) {
			visited[start] = true
			continue
		}
		//
		branches, ids, ok := t.gatherBranches(node, member.parent.Unwrap(), visited)
		//
		if ok && node.statement.HasDecomposition(branches) {
			for _, n := range ids {
				correct.Insert(n)
			}
		}
	}
	//
	node.correct = correct
	//
	return correct
}

// Gather the statements from the decomposition of a node which lie on each
// branch below a given split point.  Each branch runs down until the next
// split or leaf.  This fails if any gathered node has no statement.
func (t *Tree) gatherBranches(node *Node, split NodeID, visited map[NodeID]bool) ([][]logic.Statement, []NodeID,
	bool) {
	var (
		branches [][]logic.Statement
		ids      []NodeID
		ok       = true
	)
	//
	for _, child := range t.nodes[split].children {
		var branch []logic.Statement
		//
		if visited[child] {
			panic(fmt.Sprintf("revisited node %d in child branch", child))
		}
		//
		for current := t.nodes[child]; ; current = t.nodes[current.children[0]] {
			if node.decomposition.Contains(current.id) {
				visited[current.id] = true
				//
				if current.statement == nil {
					ok = false
				} else if ok {
					branch = append(branch, current.statement)
					ids = append(ids, current.id)
				}
			}
			//
			if len(current.children) != 1 {
				break
			}
		}
		//
		branches = append(branches, branch)
	}
	//
	return branches, ids, ok
}

func power(base int, exponent int) int {
	result := 1
	//
	for range exponent {
		result *= base
	}
	//
	return result
}

// Generate keys for every tuple of a given size over the universe, matching
// the format of logic.Assignment.Key.
func tuples(universe []logic.Term, size int) []string {
	keys := []string{""}
	//
	for i := range size {
		var next []string
		//
		for _, prefix := range keys {
			for _, c := range universe {
				if i == 0 {
					next = append(next, c.String())
				} else {
					next = append(next, strings.Join([]string{prefix, c.String()}, ","))
				}
			}
		}
		//
		keys = next
	}
	//
	if size == 0 {
		return nil
	}
	//
	return keys
}
