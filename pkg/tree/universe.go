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
	"slices"

	"github.com/consensys/go-truthtree/pkg/logic"
	log "github.com/sirupsen/logrus"
)

// Universe records the universe of discourse at a node: that is, the
// constants introduced by the statements strictly above it.  Most statements
// introduce no constants, in which case a node simply inherits the universe
// of its parent.
type Universe struct {
	own       bool
	constants []logic.Term
}

// Own constructs a universe which is held by the node itself.
func Own(constants []logic.Term) Universe {
	return Universe{true, constants}
}

// Inherited constructs a universe which is the same as that of the parent.
func Inherited() Universe {
	return Universe{false, nil}
}

// IsInherited checks whether this universe defers to the parent.
func (u Universe) IsInherited() bool {
	return !u.own
}

// Universe returns the constants in the universe of discourse at a given
// node.  An unknown node has an empty universe.
func (t *Tree) Universe(id NodeID) []logic.Term {
	node, ok := t.nodes[id]
	//
	if !ok {
		return nil
	}
	//
	for !node.universe.own {
		if node.parent.IsEmpty() {
			log.Warnf("root node %d has no universe", node.id)
			return nil
		}
		//
		node = t.nodes[node.parent.Unwrap()]
	}
	//
	return node.universe.constants
}

// Determine the universe which the children of a given node receive, along
// with whether or not it differs from the node's own universe.
func (t *Tree) universeAfter(id NodeID) ([]logic.Term, bool) {
	var (
		node     = t.nodes[id]
		universe = t.Universe(id)
	)
	//
	if node.statement == nil {
		return universe, false
	}
	//
	constants := node.statement.NewConstants(universe)
	//
	if len(constants) == 0 {
		return universe, false
	}
	//
	return append(slices.Clone(universe), constants...), true
}

// Push a universe down through the subtree rooted at a given node.
func (t *Tree) propagate(id NodeID, universe []logic.Term, changed bool) {
	node := t.nodes[id]
	//
	if changed {
		node.universe = Own(universe)
	} else {
		node.universe = Inherited()
	}
	//
	next, changed := t.universeAfter(id)
	//
	for _, child := range node.children {
		t.propagate(child, next, changed)
	}
}

// Recompute the universe of the subtree rooted at a given node, based on its
// position in the tree.
func (t *Tree) repropagate(id NodeID) {
	parent := t.nodes[id].parent
	//
	if parent.IsEmpty() {
		t.propagate(id, nil, true)
	} else {
		universe, changed := t.universeAfter(parent.Unwrap())
		t.propagate(id, universe, changed)
	}
}
