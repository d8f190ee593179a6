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
	"maps"
	"slices"

	"github.com/consensys/go-truthtree/pkg/logic"
	"github.com/consensys/go-truthtree/pkg/util/collection/set"
)

// Parser is responsible for turning the text of a node into a statement.
type Parser interface {
	Parse(text string) (logic.Statement, error)
}

// Options determine which variations of the truth tree rules are in force.
type Options struct {
	// Closed terminators must reference an atomic statement and its negation,
	// rather than any statement and its negation.
	RequireAtomicContradiction bool `json:"requireAtomicContradiction" yaml:"require_atomic_contradiction"`
	// Every branch must be terminated, even when some branch is open.
	RequireAllBranchesTerminated bool `json:"requireAllBranchesTerminated" yaml:"require_all_branches_terminated"`
	// Prevents premises and options from being changed.
	LockedOptions bool `json:"lockedOptions" yaml:"locked_options"`
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		RequireAtomicContradiction:   true,
		RequireAllBranchesTerminated: true,
		LockedOptions:                false,
	}
}

// Tree is a truth tree: a branching sequence of statements, where each
// statement is either a premise or derived from a statement above it, and
// each branch ends in a terminator.  A tree owns all of its nodes, and all
// changes to a tree must go through its methods to keep it consistent.  Trees
// are not safe for concurrent use.
type Tree struct {
	nodes  map[NodeID]*Node
	root   NodeID
	leaves *set.SortedSet[NodeID]
	// Options in force for this tree
	options Options
	// Parser for the text of each node
	parser Parser
	// Universe propagation is suspended whilst a tree is being constructed.
	initialised bool
}

// Empty constructs a tree holding a single empty node.
func Empty(parser Parser) *Tree {
	root := newNode(0)
	root.universe = Own(nil)
	//
	return &Tree{
		nodes:       map[NodeID]*Node{0: root},
		root:        0,
		leaves:      set.NewSortedSet[NodeID](0),
		options:     DefaultOptions(),
		parser:      parser,
		initialised: true,
	}
}

// Root returns the root node of this tree.
func (t *Tree) Root() NodeID {
	return t.root
}

// Node returns the node with a given identifier, or false if no such node
// exists.
func (t *Tree) Node(id NodeID) (*Node, bool) {
	node, ok := t.nodes[id]
	return node, ok
}

// Nodes returns the identifiers of all nodes in this tree in ascending order.
func (t *Tree) Nodes() []NodeID {
	return slices.Sorted(maps.Keys(t.nodes))
}

// Leaves returns the identifiers of all nodes without children, in ascending
// order.
func (t *Tree) Leaves() []NodeID {
	return t.leaves.ToArray()
}

// Options returns the options in force for this tree.
func (t *Tree) Options() Options {
	return t.options
}

// SetOptions changes the options in force for this tree, unless they are
// locked.
func (t *Tree) SetOptions(options Options) bool {
	if t.options.LockedOptions {
		return refused("options are locked")
	}
	//
	t.options = options
	//
	return true
}

// BranchHead returns the first node of the innermost branch containing a
// given node, or false if the node is unknown.
func (t *Tree) BranchHead(id NodeID) (NodeID, bool) {
	node, ok := t.nodes[id]
	//
	if !ok {
		return 0, false
	}
	//
	for node.parent.HasValue() {
		parent := t.nodes[node.parent.Unwrap()]
		//
		if len(parent.children) != 1 {
			break
		}
		//
		node = parent
	}
	//
	return node.id, true
}

// LeftmostNode returns the leaf reached by following the first child from a
// given node, or false if the node is unknown.
func (t *Tree) LeftmostNode(id NodeID) (NodeID, bool) {
	node, ok := t.nodes[id]
	//
	if !ok {
		return 0, false
	}
	//
	for len(node.children) > 0 {
		node = t.nodes[node.children[0]]
	}
	//
	return node.id, true
}

// RightmostNode returns the leaf reached by following the last child from a
// given node, or false if the node is unknown.
func (t *Tree) RightmostNode(id NodeID) (NodeID, bool) {
	node, ok := t.nodes[id]
	//
	if !ok {
		return 0, false
	}
	//
	for len(node.children) > 0 {
		node = t.nodes[node.children[len(node.children)-1]]
	}
	//
	return node.id, true
}

// Ancestors returns the nodes strictly above a given node, starting from its
// parent.  An unknown node has no ancestors.
func (t *Tree) Ancestors(id NodeID) []NodeID {
	var ancestors []NodeID
	//
	node, ok := t.nodes[id]
	//
	for ok && node.parent.HasValue() {
		ancestors = append(ancestors, node.parent.Unwrap())
		node, ok = t.nodes[node.parent.Unwrap()]
	}
	//
	return ancestors
}

// IsAncestorOf checks whether one node is strictly above another.
func (t *Tree) IsAncestorOf(ancestor NodeID, id NodeID) bool {
	node, ok := t.nodes[id]
	//
	for ok && node.parent.HasValue() {
		if node.parent.Unwrap() == ancestor {
			return true
		}
		//
		node, ok = t.nodes[node.parent.Unwrap()]
	}
	//
	return false
}

func (t *Tree) ancestorSet(id NodeID) *set.SortedSet[NodeID] {
	return set.NewSortedSet(t.Ancestors(id)...)
}

func (t *Tree) nextID() NodeID {
	var next NodeID
	//
	for id := range t.nodes {
		next = max(next, id+1)
	}
	//
	return next
}

func (t *Tree) lookup(id NodeID) *Node {
	if node, ok := t.nodes[id]; ok {
		return node
	}
	//
	panic(fmt.Sprintf("unknown node %d", id))
}

// Parse the text of a node, such that any failure gives no statement.
func (t *Tree) parse(text string) logic.Statement {
	if stmt, err := t.parser.Parse(text); err == nil {
		return stmt
	}
	//
	return nil
}

// Discard the cached correct decomposition of a given node.
func (t *Tree) invalidateDecomposition(id NodeID) {
	if node, ok := t.nodes[id]; ok {
		node.correct = nil
	}
}

// Discard all cached correct decompositions, as needed after any change to
// the shape of the tree.
func (t *Tree) invalidateAll() {
	for _, node := range t.nodes {
		node.correct = nil
	}
}
