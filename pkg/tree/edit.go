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
	"slices"

	"github.com/consensys/go-truthtree/pkg/logic"
	"github.com/consensys/go-truthtree/pkg/util"
	"github.com/consensys/go-truthtree/pkg/util/collection/set"
	log "github.com/sirupsen/logrus"
)

// SetText changes the text of a node, and hence its statement.  Premises
// cannot be changed when options are locked.
func (t *Tree) SetText(id NodeID, text string) bool {
	node, ok := t.nodes[id]
	//
	if !ok {
		return refused(fmt.Sprintf("cannot set text of unknown node %d", id))
	} else if node.premise && t.options.LockedOptions {
		return refused(fmt.Sprintf("cannot change premise %d (options locked)", id))
	}
	//
	wasTerminator := node.IsTerminator()
	node.text = text
	// References change meaning when a node becomes (or stops being) a
	// terminator.
	if wasTerminator != node.IsTerminator() {
		t.detach(id)
	}
	//
	t.setStatement(id, t.parse(text))
	//
	return true
}

// TogglePremise flips whether or not a node is a premise.  The set of
// premises cannot be changed when options are locked.
func (t *Tree) TogglePremise(id NodeID) bool {
	node, ok := t.nodes[id]
	//
	if !ok {
		return refused(fmt.Sprintf("cannot toggle premise of unknown node %d", id))
	} else if t.options.LockedOptions {
		return refused(fmt.Sprintf("cannot toggle premise %d (options locked)", id))
	}
	//
	node.premise = !node.premise
	//
	return true
}

// SetAntecedent records that a node is derived from some statement above it.
// Any previous antecedent of the node is forgotten.
func (t *Tree) SetAntecedent(id NodeID, antecedent NodeID) bool {
	node, ok1 := t.nodes[id]
	ante, ok2 := t.nodes[antecedent]
	//
	switch {
	case !ok1 || !ok2:
		return refused(fmt.Sprintf("cannot derive %d from %d (unknown node)", id, antecedent))
	case node.IsTerminator() || ante.IsTerminator():
		return refused(fmt.Sprintf("cannot derive %d from %d (terminator)", id, antecedent))
	case !t.IsAncestorOf(antecedent, id):
		return refused(fmt.Sprintf("cannot derive %d from %d (not an ancestor)", id, antecedent))
	}
	//
	t.ClearAntecedent(id)
	node.antecedent = util.Some(antecedent)
	ante.decomposition.Insert(id)
	t.invalidateDecomposition(antecedent)
	//
	return true
}

// ClearAntecedent forgets the statement a node was derived from (if any).
func (t *Tree) ClearAntecedent(id NodeID) bool {
	node, ok := t.nodes[id]
	//
	if !ok || node.antecedent.IsEmpty() {
		return false
	}
	//
	antecedent := node.antecedent.Unwrap()
	//
	if ante, ok := t.nodes[antecedent]; ok {
		ante.decomposition.Remove(id)
		t.invalidateDecomposition(antecedent)
	}
	//
	node.antecedent = util.None[NodeID]()
	//
	return true
}

// ToggleReference adds (or removes) a statement referenced by a terminator.
func (t *Tree) ToggleReference(terminator NodeID, target NodeID) bool {
	node, ok := t.nodes[terminator]
	//
	switch {
	case !ok || !node.IsTerminator():
		return refused(fmt.Sprintf("cannot reference from %d (not a terminator)", terminator))
	case terminator == target:
		return refused(fmt.Sprintf("terminator %d cannot reference itself", terminator))
	}
	//
	if _, ok := t.nodes[target]; !ok {
		return refused(fmt.Sprintf("cannot reference unknown node %d", target))
	} else if !node.decomposition.Remove(target) {
		node.decomposition.Insert(target)
	}
	//
	return true
}

// InsertBefore adds a new empty node directly above a given node, in the same
// branch.  If the given node was the root, the new node becomes the root.
func (t *Tree) InsertBefore(id NodeID) (NodeID, bool) {
	child, ok := t.nodes[id]
	//
	if !ok {
		return refusedID(fmt.Sprintf("cannot insert before unknown node %d", id))
	}
	//
	node := newNode(t.nextID())
	node.parent = child.parent
	node.children = []NodeID{id}
	t.nodes[node.id] = node
	//
	if child.parent.HasValue() {
		parent := t.nodes[child.parent.Unwrap()]
		index := slices.Index(parent.children, id)
		parent.children[index] = node.id
	} else {
		t.root = node.id
	}
	//
	child.parent = util.Some(node.id)
	//
	t.repropagate(node.id)
	t.invalidateAll()
	//
	return node.id, true
}

// InsertAfter adds a new empty node below a given node.  When newBranch is
// set, the new node starts a new branch after any existing children and the
// given node is returned (so that further branches can be added easily).
// Otherwise, the new node is placed between the given node and its children,
// and is returned.
func (t *Tree) InsertAfter(id NodeID, newBranch bool) (NodeID, bool) {
	parent, ok := t.nodes[id]
	//
	if !ok {
		return refusedID(fmt.Sprintf("cannot insert after unknown node %d", id))
	}
	//
	node := newNode(t.nextID())
	node.parent = util.Some(id)
	t.nodes[node.id] = node
	//
	if newBranch {
		parent.children = append(parent.children, node.id)
		t.leaves.Remove(id)
		t.leaves.Insert(node.id)
	} else {
		node.children = parent.children
		parent.children = []NodeID{node.id}
		//
		for _, child := range node.children {
			t.nodes[child].parent = util.Some(node.id)
		}
		//
		if t.leaves.Remove(id) {
			t.leaves.Insert(node.id)
		}
	}
	//
	t.repropagate(node.id)
	t.invalidateAll()
	//
	if newBranch {
		return id, true
	}
	//
	return node.id, true
}

// DeleteNode removes a single node from the tree, connecting its children to
// its parent.  This is refused when it would merge the branches below a
// branch head into its parent's branches, or leave the tree without a single
// root.  On success, the sole child of the deleted node is returned if it had
// one, otherwise its parent.
func (t *Tree) DeleteNode(id NodeID) (NodeID, bool) {
	node, ok := t.nodes[id]
	//
	if !ok {
		return refusedID(fmt.Sprintf("cannot delete unknown node %d", id))
	} else if node.parent.IsEmpty() && len(node.children) != 1 {
		return refusedID(fmt.Sprintf("cannot delete root %d with %d children", id, len(node.children)))
	} else if node.parent.HasValue() && len(t.nodes[node.parent.Unwrap()].children) != 1 &&
		len(node.children) > 1 {
		return refusedID(fmt.Sprintf("cannot delete branch head %d with %d children", id, len(node.children)))
	}
	//
	switch {
	case node.parent.IsEmpty():
		// Sole child becomes the root
		t.root = node.children[0]
		t.nodes[t.root].parent = util.None[NodeID]()
	case len(t.nodes[node.parent.Unwrap()].children) != 1:
		// Branch head with at most one child
		parent := t.nodes[node.parent.Unwrap()]
		index := slices.Index(parent.children, id)
		//
		if len(node.children) == 1 {
			parent.children[index] = node.children[0]
			t.nodes[node.children[0]].parent = node.parent
		} else {
			parent.children = slices.Delete(parent.children, index, index+1)
		}
	default:
		// Only child, so children move up to the parent
		parent := t.nodes[node.parent.Unwrap()]
		parent.children = node.children
		//
		for _, child := range node.children {
			t.nodes[child].parent = node.parent
		}
		//
		if len(node.children) == 0 {
			t.leaves.Insert(parent.id)
		}
	}
	//
	t.leaves.Remove(id)
	t.unlink(id)
	delete(t.nodes, id)
	// Retract any constants introduced by the deleted node
	for _, child := range node.children {
		t.repropagate(child)
	}
	//
	t.invalidateAll()
	//
	if len(node.children) == 1 {
		return node.children[0], true
	}
	//
	return node.parent.Unwrap(), true
}

// DeleteBranch removes a node along with everything below it, returning the
// node's parent.  The root cannot be removed in this way.
func (t *Tree) DeleteBranch(id NodeID) (NodeID, bool) {
	node, ok := t.nodes[id]
	//
	if !ok {
		return refusedID(fmt.Sprintf("cannot delete unknown branch %d", id))
	} else if node.parent.IsEmpty() {
		return refusedID(fmt.Sprintf("cannot delete branch at root %d", id))
	}
	//
	parent := node.parent.Unwrap()
	//
	t.deleteSubtree(id)
	//
	return parent, true
}

// Delete a node and its descendants, children first and from right to left.
// Since the node is never the root, every deletion here is legal.
func (t *Tree) deleteSubtree(id NodeID) {
	node := t.nodes[id]
	//
	for i := len(node.children) - 1; i >= 0; i-- {
		t.deleteSubtree(node.children[i])
	}
	//
	if _, ok := t.DeleteNode(id); !ok {
		panic(fmt.Sprintf("failed deleting node %d", id))
	}
}

// Set the statement of a node, invalidating anything which depends on it.
func (t *Tree) setStatement(id NodeID, statement logic.Statement) {
	node := t.nodes[id]
	node.statement = statement
	//
	t.invalidateDecomposition(id)
	//
	if node.antecedent.HasValue() {
		t.invalidateDecomposition(node.antecedent.Unwrap())
	}
	//
	if t.initialised {
		t.propagate(id, t.Universe(id), node.universe.own)
	}
}

// Remove all logical links to or from a node which is about to be deleted.
func (t *Tree) unlink(id NodeID) {
	for _, other := range t.nodes {
		if other.decomposition.Remove(id) {
			t.invalidateDecomposition(other.id)
		}
		//
		if other.antecedent.HasValue() && other.antecedent.Unwrap() == id {
			other.antecedent = util.None[NodeID]()
		}
	}
}

// Remove the logical links of a node itself, in both directions.
func (t *Tree) detach(id NodeID) {
	node := t.nodes[id]
	//
	t.ClearAntecedent(id)
	//
	for _, member := range node.decomposition.ToArray() {
		if other, ok := t.nodes[member]; ok && other.antecedent.HasValue() && other.antecedent.Unwrap() == id {
			other.antecedent = util.None[NodeID]()
		}
	}
	//
	node.decomposition = set.NewSortedSet[NodeID]()
	t.invalidateDecomposition(id)
}

func refused(msg string) bool {
	log.Debugf("refused edit: %s", msg)
	return false
}

func refusedID(msg string) (NodeID, bool) {
	log.Debugf("refused edit: %s", msg)
	return 0, false
}
