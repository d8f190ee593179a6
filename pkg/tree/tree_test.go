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
	"math/rand/v2"
	"os"
	"path"
	"slices"
	"testing"

	"github.com/consensys/go-truthtree/pkg/logic/parser"
	"github.com/consensys/go-truthtree/pkg/util/assert"
)

// ============================================================================
// Closed terminators
// ============================================================================

func Test_Closed_01(t *testing.T) {
	tree := newTree()
	p := setPremise(t, tree, tree.Root(), "P")
	q := addPremise(t, tree, p, "¬P")
	x := addNode(t, tree, q, "×")
	//
	assert.Equal(t, ClosedReferenceLength, tree.IsValid(x))
	assert.True(t, tree.ToggleReference(x, p))
	assert.Equal(t, ClosedReferenceLength, tree.IsValid(x))
	assert.True(t, tree.ToggleReference(x, q))
	assert.Equal(t, Valid, tree.IsValid(x))
	checkVerdict(t, tree, Correct)
}

func Test_Closed_02(t *testing.T) {
	// Reference to a sibling branch
	tree := newTree()
	root := setPremise(t, tree, tree.Root(), "A")
	left := addBranch(t, tree, root, "P")
	right := addBranch(t, tree, root, "¬P")
	assert.True(t, tree.TogglePremise(left))
	assert.True(t, tree.TogglePremise(right))
	x := addNode(t, tree, left, "×")
	//
	assert.True(t, tree.ToggleReference(x, left))
	assert.True(t, tree.ToggleReference(x, right))
	assert.Equal(t, ClosedNotAncestor, tree.IsValid(x))
}

func Test_Closed_03(t *testing.T) {
	tree := newTree()
	p := setPremise(t, tree, tree.Root(), "A ∧ B")
	q := addPremise(t, tree, p, "¬(A ∧ B)")
	x := addNode(t, tree, q, "×")
	//
	assert.True(t, tree.ToggleReference(x, q))
	assert.True(t, tree.ToggleReference(x, p))
	assert.Equal(t, ClosedNotAtomic, tree.IsValid(x))
	// Relax the rules
	options := tree.Options()
	options.RequireAtomicContradiction = false
	assert.True(t, tree.SetOptions(options))
	assert.Equal(t, Valid, tree.IsValid(x))
}

func Test_Closed_04(t *testing.T) {
	tree := newTree()
	p := setPremise(t, tree, tree.Root(), "P")
	q := addPremise(t, tree, p, "Q")
	x := addNode(t, tree, q, "×")
	//
	assert.True(t, tree.ToggleReference(x, p))
	assert.True(t, tree.ToggleReference(x, q))
	assert.Equal(t, ClosedNotContradiction, tree.IsValid(x))
	// Toggling removes the reference
	assert.True(t, tree.ToggleReference(x, q))
	assert.Equal(t, 1, len(mustNode(t, tree, x).Decomposition()))
}

func Test_Closed_05(t *testing.T) {
	tree := newTree()
	p := setPremise(t, tree, tree.Root(), "P")
	e := addNode(t, tree, p, "")
	x := addNode(t, tree, e, "×")
	//
	assert.True(t, tree.ToggleReference(x, p))
	assert.True(t, tree.ToggleReference(x, e))
	assert.Equal(t, ClosedReferenceInvalid, tree.IsValid(x))
	// Only terminators can reference
	assert.False(t, tree.ToggleReference(e, p))
	assert.False(t, tree.ToggleReference(x, x))
}

func Test_Terminator_01(t *testing.T) {
	tree := newTree()
	p := setPremise(t, tree, tree.Root(), "P")
	x := addNode(t, tree, p, "◯")
	addNode(t, tree, x, "Q")
	//
	assert.Equal(t, TerminatorNotLast, tree.IsValid(x))
}

// ============================================================================
// Open terminators
// ============================================================================

func Test_Open_01(t *testing.T) {
	tree := newTree()
	p := setPremise(t, tree, tree.Root(), "P")
	o := addNode(t, tree, p, "◯")
	//
	assert.Equal(t, Valid, tree.IsValid(o))
	assert.Equal(t, "This open branch represents a valid assignment.", tree.Feedback(o))
	checkVerdict(t, tree, Correct)
}

func Test_Open_02(t *testing.T) {
	tree := newTree()
	p := setPremise(t, tree, tree.Root(), "P")
	q := addPremise(t, tree, p, "R")
	r := addPremise(t, tree, q, "¬P")
	o := addNode(t, tree, r, "◯")
	//
	assert.Equal(t, OpenContradiction, tree.IsValid(o))
	checkVerdict(t, tree, Incorrect)
}

func Test_Open_03(t *testing.T) {
	tree := newTree()
	p := setPremise(t, tree, tree.Root(), "P ∧ Q")
	o := addNode(t, tree, p, "◯")
	// Premise not decomposed
	assert.Equal(t, OpenInvalidAncestor, tree.IsValid(o))
	assert.Equal(t, InvalidDecomposition, tree.IsDecomposed(p))
	// Open terminators reference nothing
	assert.True(t, tree.ToggleReference(o, p))
	assert.Equal(t, OpenDecomposed, tree.IsValid(o))
}

func Test_Open_04(t *testing.T) {
	tree := newTree()
	p := setPremise(t, tree, tree.Root(), "P ∧ Q")
	a := addNode(t, tree, p, "P")
	b := addNode(t, tree, a, "Q")
	o := addNode(t, tree, b, "◯")
	//
	assert.True(t, tree.SetAntecedent(a, p))
	assert.True(t, tree.SetAntecedent(b, p))
	assert.Equal(t, Valid, tree.IsDecomposed(p))
	assert.Equal(t, Valid, tree.IsValid(o))
	assert.Equal(t, "This statement is a logical consequence and is decomposed correctly.", tree.Feedback(a))
}

func Test_Open_05(t *testing.T) {
	// An open branch suffices when not every branch must be terminated.
	tree := newTree()
	p := setPremise(t, tree, tree.Root(), "P ∨ Q")
	a := addBranch(t, tree, p, "P")
	b := addBranch(t, tree, p, "Q")
	o := addNode(t, tree, a, "◯")
	//
	assert.True(t, tree.SetAntecedent(a, p))
	assert.True(t, tree.SetAntecedent(b, p))
	assert.Equal(t, Valid, tree.IsValid(o))
	checkVerdict(t, tree, Unterminated)
	//
	options := tree.Options()
	options.RequireAllBranchesTerminated = false
	assert.True(t, tree.SetOptions(options))
	checkVerdict(t, tree, Correct)
}

// ============================================================================
// Logical consequence
// ============================================================================

func Test_Valid_01(t *testing.T) {
	tree := newTree()
	assert.Equal(t, Valid, tree.IsValid(tree.Root()))
	assert.Equal(t, Valid, tree.IsDecomposed(tree.Root()))
	//
	assert.True(t, tree.SetText(tree.Root(), "P ∧"))
	assert.Equal(t, NotParsable, tree.IsValid(tree.Root()))
	assert.Equal(t, NotParsable, tree.IsDecomposed(tree.Root()))
	assert.Equal(t, "This statement is not parsable.", tree.Feedback(tree.Root()))
}

func Test_Valid_02(t *testing.T) {
	tree := newTree()
	p := setPremise(t, tree, tree.Root(), "P ∧ Q")
	a := addNode(t, tree, p, "P")
	// No antecedent
	assert.Equal(t, NotLogicalConsequence, tree.IsValid(a))
	// Antecedent must be above
	assert.False(t, tree.SetAntecedent(p, a))
	assert.False(t, tree.SetAntecedent(a, a))
	// Only part of a decomposition
	assert.True(t, tree.SetAntecedent(a, p))
	assert.Equal(t, NotLogicalConsequence, tree.IsValid(a))
	//
	b := addNode(t, tree, a, "Q")
	assert.True(t, tree.SetAntecedent(b, p))
	assert.Equal(t, Valid, tree.IsValid(a))
	assert.Equal(t, Valid, tree.IsValid(b))
}

func Test_Valid_03(t *testing.T) {
	tree := newTree()
	p := setPremise(t, tree, tree.Root(), "P → Q")
	a := addBranch(t, tree, p, "¬P")
	b := addBranch(t, tree, p, "Q")
	//
	assert.True(t, tree.SetAntecedent(a, p))
	assert.True(t, tree.SetAntecedent(b, p))
	assert.Equal(t, Valid, tree.IsValid(a))
	assert.Equal(t, Valid, tree.IsValid(b))
	// Clearing one antecedent breaks both
	assert.True(t, tree.ClearAntecedent(b))
	assert.Equal(t, NotLogicalConsequence, tree.IsValid(a))
	assert.Equal(t, NotLogicalConsequence, tree.IsValid(b))
	assert.NoError(t, tree.CheckRepresentation())
}

func Test_Valid_04(t *testing.T) {
	tree := newTree()
	p := setPremise(t, tree, tree.Root(), "¬(P ∨ Q)")
	a := addNode(t, tree, p, "¬Q")
	b := addNode(t, tree, a, "¬P")
	o := addNode(t, tree, b, "◯")
	//
	assert.True(t, tree.SetAntecedent(a, p))
	assert.True(t, tree.SetAntecedent(b, p))
	assert.Equal(t, Valid, tree.IsValid(a))
	assert.Equal(t, Valid, tree.IsValid(b))
	assert.Equal(t, Valid, tree.IsValid(o))
}

func Test_Valid_05(t *testing.T) {
	// Idempotent results
	tree := loadTree(t, "modus_tollens.json")
	//
	for _, id := range tree.Nodes() {
		assert.Equal(t, tree.IsValid(id), tree.IsValid(id))
		assert.Equal(t, tree.IsDecomposed(id), tree.IsDecomposed(id))
		assert.Equal(t, Valid, tree.IsValid(id))
	}
}

func Test_Valid_06(t *testing.T) {
	// Changing a statement invalidates the decomposition it belongs to.
	tree := newTree()
	p := setPremise(t, tree, tree.Root(), "A ∧ B")
	a := addNode(t, tree, p, "A")
	b := addNode(t, tree, a, "B")
	assert.True(t, tree.SetAntecedent(a, p))
	assert.True(t, tree.SetAntecedent(b, p))
	assert.Equal(t, Valid, tree.IsValid(a))
	//
	assert.True(t, tree.SetText(b, "C"))
	assert.Equal(t, NotLogicalConsequence, tree.IsValid(a))
	assert.Equal(t, NotLogicalConsequence, tree.IsValid(b))
	//
	assert.True(t, tree.SetText(b, "B"))
	assert.Equal(t, Valid, tree.IsValid(a))
	// Changing the antecedent itself
	assert.True(t, tree.SetText(p, "A ∧ C"))
	assert.Equal(t, NotLogicalConsequence, tree.IsValid(a))
	assert.True(t, tree.SetText(b, "C"))
	assert.Equal(t, Valid, tree.IsValid(a))
	assert.Equal(t, Valid, tree.IsValid(b))
}

func Test_Valid_07(t *testing.T) {
	// Structural edits invalidate decompositions.
	tree := newTree()
	p := setPremise(t, tree, tree.Root(), "A ∨ B")
	a := addBranch(t, tree, p, "A")
	b := addBranch(t, tree, p, "B")
	assert.True(t, tree.SetAntecedent(a, p))
	assert.True(t, tree.SetAntecedent(b, p))
	assert.Equal(t, Valid, tree.IsValid(a))
	//
	c := addBranch(t, tree, p, "C")
	assert.Equal(t, NotLogicalConsequence, tree.IsValid(a))
	//
	_, ok := tree.DeleteBranch(c)
	assert.True(t, ok)
	assert.Equal(t, Valid, tree.IsValid(a))
}

func Test_Valid_08(t *testing.T) {
	// Decomposition into a statement above
	tree, err := Deserialize([]byte(`{"nodes":[`+
		`{"id":0,"text":"A","premise":true,"antecedent":1,"children":[1],"decomposition":[]},`+
		`{"id":1,"text":"A ∧ B","premise":true,"parent":0,"children":[],"decomposition":[0]}]}`), parser.New())
	assert.NoError(t, err)
	assert.Equal(t, ReferenceNotAfter, tree.IsDecomposed(1))
	assert.Equal(t, ReferenceNotAfter.Message(), tree.Feedback(1))
	assert.Error(t, tree.CheckRepresentation())
}

// ============================================================================
// Quantifiers
// ============================================================================

func Test_Existential_01(t *testing.T) {
	tree := newTree()
	p := setPremise(t, tree, tree.Root(), "∃x P(x)")
	a := addNode(t, tree, p, "P(a)")
	o := addNode(t, tree, a, "◯")
	//
	assert.Equal(t, ExistenceDecomposeLength, tree.IsDecomposed(p))
	assert.True(t, tree.SetAntecedent(a, p))
	assert.Equal(t, Valid, tree.IsValid(a))
	assert.Equal(t, Valid, tree.IsDecomposed(p))
	assert.Equal(t, Valid, tree.IsValid(o))
	checkVerdict(t, tree, Correct)
}

func Test_Existential_02(t *testing.T) {
	tree := newTree()
	r := setPremise(t, tree, tree.Root(), "R(a)")
	p := addPremise(t, tree, r, "∃x P(x)")
	a := addNode(t, tree, p, "P(a)")
	assert.True(t, tree.SetAntecedent(a, p))
	// Constant a is already in the universe
	assert.Equal(t, ExistenceInstantiationLength, tree.IsValid(a))
	//
	assert.True(t, tree.SetText(a, "Q(b)"))
	assert.Equal(t, InvalidInstantiation, tree.IsValid(a))
	//
	assert.True(t, tree.SetText(a, "P(b)"))
	assert.Equal(t, Valid, tree.IsValid(a))
}

func Test_Existential_03(t *testing.T) {
	tree := newTree()
	p := setPremise(t, tree, tree.Root(), "∃x P(x)")
	a := addNode(t, tree, p, "P(a)")
	b := addNode(t, tree, a, "P(b)")
	addNode(t, tree, b, "◯")
	assert.True(t, tree.SetAntecedent(a, p))
	assert.True(t, tree.SetAntecedent(b, p))
	// Instantiated twice in the same branch
	assert.Equal(t, ExistenceDecomposeLength, tree.IsDecomposed(p))
}

func Test_Existential_04(t *testing.T) {
	tree := loadTree(t, "existential.json")
	//
	checkVerdict(t, tree, Correct)
	checkUniverse(t, tree, 4, "a")
	assert.True(t, tree.Options().LockedOptions)
	// Locked options protect premises
	assert.False(t, tree.SetText(0, "∃x P(x)"))
	assert.False(t, tree.TogglePremise(1))
	assert.False(t, tree.SetOptions(DefaultOptions()))
	assert.True(t, tree.SetText(1, "P(a) ∧ Q(a)"))
}

func Test_Universal_01(t *testing.T) {
	tree := newTree()
	p := setPremise(t, tree, tree.Root(), "∀x P(x)")
	q := addPremise(t, tree, p, "Q(a,b)")
	a := addNode(t, tree, q, "P(a)")
	o := addNode(t, tree, a, "◯")
	//
	assert.Equal(t, UniversalDecomposeLength, tree.IsDecomposed(p))
	assert.True(t, tree.SetAntecedent(a, p))
	assert.Equal(t, Valid, tree.IsValid(a))
	assert.Equal(t, UniversalDomainNotDecomposed, tree.IsDecomposed(p))
	assert.Equal(t, OpenInvalidAncestor, tree.IsValid(o))
	//
	b := addNode(t, tree, a, "P(b)")
	assert.True(t, tree.SetAntecedent(b, p))
	assert.Equal(t, Valid, tree.IsDecomposed(p))
	assert.Equal(t, Valid, tree.IsValid(o))
	checkVerdict(t, tree, Correct)
}

func Test_Universal_02(t *testing.T) {
	tree := newTree()
	p := setPremise(t, tree, tree.Root(), "∀x P(x)")
	q := addPremise(t, tree, p, "Q(a,b)")
	a := addNode(t, tree, q, "P(a)")
	b := addNode(t, tree, a, "P(a)")
	addNode(t, tree, b, "◯")
	assert.True(t, tree.SetAntecedent(a, p))
	assert.True(t, tree.SetAntecedent(b, p))
	// Enough instantiations, but not of every constant
	assert.Equal(t, UniversalDomainNotDecomposed, tree.IsDecomposed(p))
	//
	assert.True(t, tree.SetText(b, "R(b)"))
	assert.Equal(t, InvalidInstantiation, tree.IsValid(b))
	assert.Equal(t, InvalidDecomposition, tree.IsDecomposed(p))
}

func Test_Universal_03(t *testing.T) {
	tree := newTree()
	p := setPremise(t, tree, tree.Root(), "∀x,y R(x,y)")
	q := addPremise(t, tree, p, "Q(a)")
	a := addNode(t, tree, q, "R(a,a)")
	addNode(t, tree, a, "◯")
	assert.True(t, tree.SetAntecedent(a, p))
	//
	assert.Equal(t, Valid, tree.IsValid(a))
	assert.Equal(t, Valid, tree.IsDecomposed(p))
}

func Test_Insert_01(t *testing.T) {
	tree := newTree()
	p := setPremise(t, tree, tree.Root(), "P ∧ Q")
	a := addNode(t, tree, p, "P")
	b := addNode(t, tree, a, "Q")
	assert.True(t, tree.SetAntecedent(a, p))
	assert.True(t, tree.SetAntecedent(b, p))
	// Moving the statement below its decomposition
	n, ok := tree.InsertBefore(p)
	assert.True(t, ok)
	assert.True(t, tree.SetText(n, "R"))
	assert.True(t, tree.TogglePremise(n))
	assert.Equal(t, Valid, tree.IsDecomposed(p))
	assert.Equal(t, n, tree.Root())
}

// ============================================================================
// Universe
// ============================================================================

func Test_Universe_01(t *testing.T) {
	tree := newTree()
	p := setPremise(t, tree, tree.Root(), "P(a)")
	q := addPremise(t, tree, p, "Q(b,a)")
	r := addPremise(t, tree, q, "R")
	//
	checkUniverse(t, tree, p)
	checkUniverse(t, tree, q, "a")
	checkUniverse(t, tree, r, "a", "b")
	assert.True(t, mustNode(t, tree, q).universe.own)
	assert.True(t, mustNode(t, tree, r).universe.own)
	// Retract constants of a deleted node
	_, ok := tree.DeleteNode(q)
	assert.True(t, ok)
	checkUniverse(t, tree, r, "a")
	assert.True(t, mustNode(t, tree, r).universe.own)
	// Text changes propagate
	assert.True(t, tree.SetText(p, "P(c)"))
	checkUniverse(t, tree, r, "c")
	assert.True(t, tree.SetText(p, "P"))
	checkUniverse(t, tree, r)
	assert.True(t, mustNode(t, tree, r).universe.IsInherited())
}

func Test_Universe_02(t *testing.T) {
	tree := newTree()
	p := setPremise(t, tree, tree.Root(), "P(a)")
	q := addPremise(t, tree, p, "Q")
	// Insertions inherit the universe
	n, ok := tree.InsertBefore(q)
	assert.True(t, ok)
	checkUniverse(t, tree, n, "a")
	checkUniverse(t, tree, q, "a")
	//
	assert.True(t, tree.SetText(n, "R(b)"))
	checkUniverse(t, tree, q, "a", "b")
	// New root
	m, ok := tree.InsertBefore(p)
	assert.True(t, ok)
	assert.True(t, tree.SetText(m, "S(c)"))
	checkUniverse(t, tree, m)
	checkUniverse(t, tree, q, "c", "a", "b")
}

// ============================================================================
// Structural edits
// ============================================================================

func Test_Edit_01(t *testing.T) {
	tree := newTree()
	root := tree.Root()
	a := addBranch(t, tree, root, "A")
	b := addBranch(t, tree, root, "B")
	c := addBranch(t, tree, a, "C")
	d := addBranch(t, tree, a, "D")
	// Cannot delete a branch head with multiple children
	_, ok := tree.DeleteNode(a)
	assert.False(t, ok)
	// Nor the root with multiple children
	_, ok = tree.DeleteNode(root)
	assert.False(t, ok)
	// Nor the root as a branch
	_, ok = tree.DeleteBranch(root)
	assert.False(t, ok)
	//
	assert.Equal(t, []NodeID{b, c, d}, tree.Leaves())
	assert.NoError(t, tree.CheckRepresentation())
}

func Test_Edit_02(t *testing.T) {
	tree := newTree()
	root := tree.Root()
	a := addNode(t, tree, root, "A")
	b := addNode(t, tree, a, "B")
	// Splice out a single-child node
	n, ok := tree.DeleteNode(a)
	assert.True(t, ok)
	assert.Equal(t, b, n)
	assert.Equal(t, []NodeID{b}, mustNode(t, tree, root).Children())
	assert.Equal(t, root, mustNode(t, tree, b).Parent().Unwrap())
	// Delete the leaf
	n, ok = tree.DeleteNode(b)
	assert.True(t, ok)
	assert.Equal(t, root, n)
	assert.Equal(t, []NodeID{root}, tree.Leaves())
	assert.NoError(t, tree.CheckRepresentation())
}

func Test_Edit_03(t *testing.T) {
	tree := newTree()
	root := tree.Root()
	a := addBranch(t, tree, root, "A")
	b := addBranch(t, tree, root, "B")
	c := addNode(t, tree, b, "C")
	// Removing an empty branch head
	n, ok := tree.DeleteNode(a)
	assert.True(t, ok)
	assert.Equal(t, root, n)
	assert.Equal(t, []NodeID{b}, mustNode(t, tree, root).Children())
	// Removing a branch head with one child
	n, ok = tree.DeleteNode(b)
	assert.True(t, ok)
	assert.Equal(t, c, n)
	assert.Equal(t, []NodeID{c}, mustNode(t, tree, root).Children())
	assert.Equal(t, []NodeID{c}, tree.Leaves())
	assert.NoError(t, tree.CheckRepresentation())
}

func Test_Edit_04(t *testing.T) {
	tree := newTree()
	root := tree.Root()
	a := addNode(t, tree, root, "A")
	// Delete root with one child
	n, ok := tree.DeleteNode(root)
	assert.True(t, ok)
	assert.Equal(t, a, n)
	assert.Equal(t, a, tree.Root())
	assert.True(t, mustNode(t, tree, a).Parent().IsEmpty())
	// Unknown nodes
	_, ok = tree.DeleteNode(root)
	assert.False(t, ok)
	_, ok = tree.InsertAfter(root, false)
	assert.False(t, ok)
	_, ok = tree.InsertBefore(root)
	assert.False(t, ok)
	assert.False(t, tree.SetText(root, "A"))
	assert.NoError(t, tree.CheckRepresentation())
}

func Test_Edit_05(t *testing.T) {
	tree := newTree()
	root := tree.Root()
	a := addBranch(t, tree, root, "A")
	b := addBranch(t, tree, root, "B")
	c := addBranch(t, tree, a, "C")
	addBranch(t, tree, a, "D")
	addNode(t, tree, c, "E")
	// Delete a whole branch
	n, ok := tree.DeleteBranch(a)
	assert.True(t, ok)
	assert.Equal(t, root, n)
	assert.Equal(t, []NodeID{root, b}, tree.Nodes())
	assert.Equal(t, []NodeID{b}, tree.Leaves())
	// Deleting the only branch leaves the parent a leaf
	n, ok = tree.DeleteBranch(b)
	assert.True(t, ok)
	assert.Equal(t, root, n)
	assert.Equal(t, []NodeID{root}, tree.Leaves())
	assert.NoError(t, tree.CheckRepresentation())
}

func Test_Edit_06(t *testing.T) {
	// Deletion clears logical links in both directions
	tree := newTree()
	p := setPremise(t, tree, tree.Root(), "P ∧ ¬P")
	a := addNode(t, tree, p, "P")
	b := addNode(t, tree, a, "¬P")
	x := addNode(t, tree, b, "×")
	assert.True(t, tree.SetAntecedent(a, p))
	assert.True(t, tree.SetAntecedent(b, p))
	assert.True(t, tree.ToggleReference(x, a))
	assert.True(t, tree.ToggleReference(x, b))
	checkVerdict(t, tree, Correct)
	//
	_, ok := tree.DeleteNode(a)
	assert.True(t, ok)
	assert.Equal(t, []NodeID{b}, mustNode(t, tree, p).Decomposition())
	assert.Equal(t, []NodeID{b}, mustNode(t, tree, x).Decomposition())
	assert.NoError(t, tree.CheckRepresentation())
	//
	_, ok = tree.DeleteNode(p)
	assert.True(t, ok)
	assert.True(t, mustNode(t, tree, b).Antecedent().IsEmpty())
	assert.NoError(t, tree.CheckRepresentation())
}

func Test_Edit_07(t *testing.T) {
	// Becoming a terminator drops logical links
	tree := newTree()
	p := setPremise(t, tree, tree.Root(), "P ∧ Q")
	a := addNode(t, tree, p, "P")
	assert.True(t, tree.SetAntecedent(a, p))
	assert.True(t, tree.SetText(a, "×"))
	assert.Equal(t, 0, len(mustNode(t, tree, p).Decomposition()))
	assert.True(t, mustNode(t, tree, a).Antecedent().IsEmpty())
	// And stopping being one drops references
	assert.True(t, tree.ToggleReference(a, p))
	assert.True(t, tree.SetText(a, "Q"))
	assert.Equal(t, 0, len(mustNode(t, tree, a).Decomposition()))
	assert.NoError(t, tree.CheckRepresentation())
}

func Test_Edit_08(t *testing.T) {
	tree := newTree()
	root := tree.Root()
	a := addBranch(t, tree, root, "A")
	b := addBranch(t, tree, root, "B")
	c := addNode(t, tree, a, "C")
	d := addBranch(t, tree, c, "D")
	e := addBranch(t, tree, c, "E")
	//
	checkNavigation(t, a, tree.BranchHead, c)
	checkNavigation(t, d, tree.BranchHead, d)
	checkNavigation(t, root, tree.BranchHead, root)
	checkNavigation(t, d, tree.LeftmostNode, root)
	checkNavigation(t, b, tree.RightmostNode, root)
	checkNavigation(t, e, tree.RightmostNode, a)
	assert.Equal(t, []NodeID{c, a, root}, tree.Ancestors(e))
}

func Test_Edit_10(t *testing.T) {
	// Unknown nodes are refused rather than dereferenced
	tree := newTree()
	addNode(t, tree, tree.Root(), "A")
	//
	for _, nav := range []func(NodeID) (NodeID, bool){tree.BranchHead, tree.LeftmostNode, tree.RightmostNode} {
		_, ok := nav(99)
		assert.False(t, ok)
	}
	//
	assert.Equal(t, 0, len(tree.Ancestors(99)))
	assert.Equal(t, 0, len(tree.Universe(99)))
	assert.False(t, tree.IsAncestorOf(0, 99))
}

func Test_Edit_09(t *testing.T) {
	// Random edits always preserve the representation invariants.
	for seed := range uint64(20) {
		var (
			rng   = rand.New(rand.NewPCG(seed, 1))
			tree  = newTree()
			texts = []string{"", "P", "¬P", "P ∧ Q", "P ∨ Q", "∀x P(x)", "P(a)", "◯", "×"}
		)
		//
		for range 200 {
			ids := tree.Nodes()
			id := ids[rng.IntN(len(ids))]
			other := ids[rng.IntN(len(ids))]
			//
			switch rng.IntN(9) {
			case 0:
				tree.InsertAfter(id, false)
			case 1:
				tree.InsertAfter(id, true)
			case 2:
				tree.InsertBefore(id)
			case 3:
				tree.DeleteNode(id)
			case 4:
				tree.DeleteBranch(id)
			case 5:
				tree.SetText(id, texts[rng.IntN(len(texts))])
			case 6:
				tree.SetAntecedent(id, other)
			case 7:
				tree.ToggleReference(id, other)
			case 8:
				tree.TogglePremise(id)
			}
			//
			if err := tree.CheckRepresentation(); err != nil {
				t.Fatalf("seed %d: %s", seed, err)
			}
			//
			checkLeaves(t, tree)
			// Any check must complete
			tree.IsCorrect()
		}
	}
}

// ============================================================================
// Whole trees
// ============================================================================

func Test_Correct_01(t *testing.T) {
	tree := loadTree(t, "modus_tollens.json")
	checkVerdict(t, tree, Correct)
	assert.Equal(t, "This branch is successfully closed.", tree.Feedback(5))
	assert.Equal(t, "This statement is a premise.", tree.Feedback(0))
}

func Test_Correct_02(t *testing.T) {
	tree := loadTree(t, "bad_closure.json")
	checkVerdict(t, tree, Incorrect)
	assert.Equal(t, ClosedNotContradiction, tree.IsValid(5))
	assert.Equal(t, ClosedNotContradiction.Message(), tree.Feedback(5))
	assert.Equal(t, DefaultOptions(), tree.Options())
}

func Test_Correct_03(t *testing.T) {
	tree := loadTree(t, "malformed.json")
	//
	verdict, err := tree.IsCorrect()
	assert.Equal(t, Malformed, verdict)
	assert.True(t, errors.Is(err, ErrMalformed))
	assert.Equal(t, "This tree is malformed -- please save this tree and contact a developer.", verdict.Message())
}

func Test_Correct_04(t *testing.T) {
	tree := newTree()
	setPremise(t, tree, tree.Root(), "P")
	checkVerdict(t, tree, Unterminated)
	assert.Equal(t, "Every branch must be terminated.", Unterminated.Message())
}

// ============================================================================
// Serialisation
// ============================================================================

func Test_Json_01(t *testing.T) {
	for _, name := range []string{"modus_tollens.json", "bad_closure.json", "existential.json"} {
		checkRoundTrip(t, loadTree(t, name))
	}
}

func Test_Json_02(t *testing.T) {
	tree := newTree()
	p := setPremise(t, tree, tree.Root(), "P ∨ Q")
	a := addBranch(t, tree, p, "P")
	addBranch(t, tree, p, "Q")
	assert.True(t, tree.SetAntecedent(a, p))
	addNode(t, tree, a, "◯")
	//
	checkRoundTrip(t, tree)
}

func Test_Json_03(t *testing.T) {
	tree, err := Deserialize([]byte(`{"nodes":[{"id":3,"text":"P(a)","children":[],"decomposition":[]}]}`),
		parser.New())
	assert.NoError(t, err)
	assert.Equal(t, NodeID(3), tree.Root())
	assert.Equal(t, DefaultOptions(), tree.Options())
	//
	bytes, err := tree.Serialize()
	assert.NoError(t, err)
	assert.Equal(t, `{"nodes":[{"id":3,"text":"P(a)","children":[],"decomposition":[]}],`+
		`"options":{"requireAtomicContradiction":true,"requireAllBranchesTerminated":true,"lockedOptions":false}}`,
		string(bytes))
}

func Test_Json_04(t *testing.T) {
	tree, err := Deserialize([]byte(`{"nodes":[{"id":0,"text":"","children":[],"decomposition":[]}],`+
		`"options":{"lockedOptions":true}}`), parser.New())
	assert.NoError(t, err)
	assert.Equal(t, Options{true, true, true}, tree.Options())
}

func Test_Json_05(t *testing.T) {
	checkInvalidJson(t, `not json`)
	checkInvalidJson(t, `[1,2]`)
	checkInvalidJson(t, `{}`)
	checkInvalidJson(t, `{"nodes":[]}`)
}

func Test_Json_06(t *testing.T) {
	// Missing fields
	checkInvalidJson(t, `{"nodes":[{"text":"","children":[],"decomposition":[]}]}`)
	checkInvalidJson(t, `{"nodes":[{"id":0,"children":[],"decomposition":[]}]}`)
	checkInvalidJson(t, `{"nodes":[{"id":0,"text":"","decomposition":[]}]}`)
	checkInvalidJson(t, `{"nodes":[{"id":0,"text":"","children":[]}]}`)
}

func Test_Json_07(t *testing.T) {
	// Roots
	checkInvalidJson(t, `{"nodes":[{"id":0,"text":"","children":[],"decomposition":[]},`+
		`{"id":1,"text":"","children":[],"decomposition":[]}]}`)
	checkInvalidJson(t, `{"nodes":[{"id":0,"text":"","parent":1,"children":[1],"decomposition":[]},`+
		`{"id":1,"text":"","parent":0,"children":[0],"decomposition":[]}]}`)
	// Duplicates and unknown nodes
	checkInvalidJson(t, `{"nodes":[{"id":0,"text":"","children":[],"decomposition":[]},`+
		`{"id":0,"text":"","parent":0,"children":[],"decomposition":[]}]}`)
	checkInvalidJson(t, `{"nodes":[{"id":0,"text":"","children":[4],"decomposition":[]}]}`)
	checkInvalidJson(t, `{"nodes":[{"id":0,"text":"","children":[],"decomposition":[],"antecedent":2}]}`)
	// Cycles
	checkInvalidJson(t, `{"nodes":[{"id":0,"text":"","children":[1],"decomposition":[]},`+
		`{"id":1,"text":"","parent":0,"children":[0],"decomposition":[]}]}`)
}

// ============================================================================
// Helpers
// ============================================================================

func newTree() *Tree {
	return Empty(parser.New())
}

func loadTree(t *testing.T, name string) *Tree {
	t.Helper()
	//
	bytes, err := os.ReadFile(path.Join("testdata", name))
	assert.NoError(t, err)
	//
	tree, err := Deserialize(bytes, parser.New())
	assert.NoError(t, err)
	//
	return tree
}

func mustNode(t *testing.T, tree *Tree, id NodeID) *Node {
	t.Helper()
	//
	node, ok := tree.Node(id)
	assert.True(t, ok, "unknown node %d", id)
	//
	return node
}

func setPremise(t *testing.T, tree *Tree, id NodeID, text string) NodeID {
	t.Helper()
	assert.True(t, tree.SetText(id, text))
	assert.True(t, tree.TogglePremise(id))
	//
	return id
}

func addPremise(t *testing.T, tree *Tree, id NodeID, text string) NodeID {
	t.Helper()
	return setPremise(t, tree, addNode(t, tree, id, text), text)
}

func addNode(t *testing.T, tree *Tree, id NodeID, text string) NodeID {
	t.Helper()
	//
	n, ok := tree.InsertAfter(id, false)
	assert.True(t, ok)
	assert.True(t, tree.SetText(n, text))
	//
	return n
}

func addBranch(t *testing.T, tree *Tree, id NodeID, text string) NodeID {
	t.Helper()
	//
	parent, ok := tree.InsertAfter(id, true)
	assert.True(t, ok)
	assert.Equal(t, id, parent)
	//
	children := mustNode(t, tree, id).Children()
	n := children[len(children)-1]
	assert.True(t, tree.SetText(n, text))
	//
	return n
}

func checkVerdict(t *testing.T, tree *Tree, expected Verdict) {
	t.Helper()
	//
	verdict, err := tree.IsCorrect()
	assert.NoError(t, err)
	assert.Equal(t, expected, verdict)
}

func checkUniverse(t *testing.T, tree *Tree, id NodeID, expected ...string) {
	t.Helper()
	//
	var actual []string
	for _, c := range tree.Universe(id) {
		actual = append(actual, c.String())
	}
	//
	assert.True(t, slices.Equal(expected, actual), "node %d has universe %v", id, actual)
}

func checkNavigation(t *testing.T, expected NodeID, nav func(NodeID) (NodeID, bool), id NodeID) {
	t.Helper()
	//
	actual, ok := nav(id)
	assert.True(t, ok, "unknown node %d", id)
	assert.Equal(t, expected, actual)
}

func checkLeaves(t *testing.T, tree *Tree) {
	t.Helper()
	//
	var leaves []NodeID
	//
	for _, id := range tree.Nodes() {
		if len(mustNode(t, tree, id).Children()) == 0 {
			leaves = append(leaves, id)
		}
	}
	//
	assert.True(t, slices.Equal(leaves, tree.Leaves()))
}

func checkRoundTrip(t *testing.T, tree *Tree) {
	t.Helper()
	//
	bytes, err := tree.Serialize()
	assert.NoError(t, err)
	//
	clone, err := Deserialize(bytes, parser.New())
	assert.NoError(t, err)
	//
	again, err := clone.Serialize()
	assert.NoError(t, err)
	assert.Equal(t, string(bytes), string(again))
	//
	assert.Equal(t, tree.Nodes(), clone.Nodes())
	assert.Equal(t, tree.Root(), clone.Root())
	assert.Equal(t, tree.Leaves(), clone.Leaves())
	assert.Equal(t, tree.Options(), clone.Options())
	//
	for _, id := range tree.Nodes() {
		lhs, rhs := mustNode(t, tree, id), mustNode(t, clone, id)
		assert.Equal(t, lhs.Text(), rhs.Text())
		assert.Equal(t, tree.IsValid(id), clone.IsValid(id))
		assert.True(t, slices.Equal(lhs.Children(), rhs.Children()))
	}
}

func checkInvalidJson(t *testing.T, input string) {
	t.Helper()
	//
	_, err := Deserialize([]byte(input), parser.New())
	assert.Error(t, err, input)
}
