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
	"github.com/consensys/go-truthtree/pkg/logic"
)

// IsValid checks whether a given node is justified by the nodes above it.
// Premises and empty nodes are always valid, terminators must be justified by
// their branch, and all other statements must follow from their antecedent.
// This panics on an unknown node, and may panic on a tree which fails
// CheckRepresentation.
func (t *Tree) IsValid(id NodeID) Response {
	node := t.lookup(id)
	//
	switch {
	case node.IsTerminator() && len(node.children) > 0:
		return TerminatorNotLast
	case node.IsOpenTerminator():
		return t.isOpenTerminatorValid(node)
	case node.IsClosedTerminator():
		return t.isClosedTerminatorValid(node)
	case node.statement == nil && node.IsEmpty():
		return Valid
	case node.statement == nil:
		return NotParsable
	case node.premise:
		return Valid
	case node.antecedent.IsEmpty():
		return NotLogicalConsequence
	}
	//
	antecedent, ok := t.nodes[node.antecedent.Unwrap()]
	//
	if !ok || antecedent.statement == nil || !t.IsAncestorOf(antecedent.id, id) {
		return NotLogicalConsequence
	}
	// Instantiations of quantifiers are not part of any decomposition
	if q, ok := antecedent.statement.(logic.Quantifier); ok {
		if _, ok := q.EqualsMap(node.statement); !ok {
			return InvalidInstantiation
		} else if _, ok := q.(*logic.Existential); ok &&
			len(node.statement.NewConstants(t.Universe(id))) != len(q.Variables()) {
			return ExistenceInstantiationLength
		}
		//
		return Valid
	}
	//
	if t.correctDecomposition(antecedent.id).Contains(id) {
		return Valid
	}
	//
	return NotLogicalConsequence
}

// An open terminator is valid when its branch contains no contradiction, and
// every statement in it is both valid and decomposed.
func (t *Tree) isOpenTerminatorValid(node *Node) Response {
	if node.decomposition.Len() != 0 {
		return OpenDecomposed
	}
	// Complements of the literals seen so far
	complements := make(map[string]bool)
	//
	for _, id := range t.Ancestors(node.id) {
		stmt := t.nodes[id].statement
		//
		if stmt != nil && logic.IsLiteral(stmt) {
			if complements[stmt.String()] {
				return OpenContradiction
			}
			//
			complements[logic.Negate(stmt).String()] = true
		}
		//
		if t.IsValid(id) != Valid || t.IsDecomposed(id) != Valid {
			return OpenInvalidAncestor
		}
	}
	//
	return Valid
}

// A closed terminator is valid when it references exactly two statements
// above it, one of which is the negation of the other.
func (t *Tree) isClosedTerminatorValid(node *Node) Response {
	if node.decomposition.Len() != 2 {
		return ClosedReferenceLength
	}
	//
	var (
		refs       = node.decomposition.ToArray()
		statements [2]logic.Statement
	)
	//
	for i, id := range refs {
		ref, ok := t.nodes[id]
		if !ok || ref.statement == nil {
			return ClosedReferenceInvalid
		}
		//
		statements[i] = ref.statement
	}
	//
	for i := range 2 {
		first, second := statements[i], statements[1-i]
		//
		if not, ok := first.(*logic.Not); !ok || !not.Operand().Equals(second) {
			continue
		} else if _, atomic := second.(*logic.Atomic); !atomic && t.options.RequireAtomicContradiction {
			return ClosedNotAtomic
		}
		//
		for _, id := range refs {
			if !t.IsAncestorOf(id, node.id) {
				return ClosedNotAncestor
			}
		}
		//
		return Valid
	}
	//
	return ClosedNotContradiction
}

// Feedback explains the status of a given node to the user.  As with IsValid,
// the node must exist and the tree must be well formed.
func (t *Tree) Feedback(id NodeID) string {
	node := t.lookup(id)
	//
	if r := t.IsValid(id); r != Valid {
		return r.Message()
	} else if r := t.IsDecomposed(id); r != Valid {
		return r.Message()
	}
	//
	switch {
	case node.premise:
		return "This statement is a premise."
	case node.IsOpenTerminator():
		return "This open branch represents a valid assignment."
	case node.IsClosedTerminator():
		return "This branch is successfully closed."
	}
	//
	return "This statement is a logical consequence and is decomposed correctly."
}
