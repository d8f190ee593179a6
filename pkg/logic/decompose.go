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
package logic

import (
	"slices"
)

// Decompose implementation for the Statement interface.  A conjunction
// decomposes into a single branch containing each conjunct.
func (p *And) Decompose() [][]Statement {
	return [][]Statement{slices.Clone(p.operands)}
}

// Decompose implementation for the Statement interface.  A disjunction
// decomposes into one branch per disjunct.
func (p *Or) Decompose() [][]Statement {
	branches := make([][]Statement, len(p.operands))
	//
	for i, operand := range p.operands {
		branches[i] = []Statement{operand}
	}
	//
	return branches
}

// Decompose implementation for the Statement interface.  A conditional
// decomposes into two branches, one where the antecedent is false and one where
// the consequent is true.
func (p *Conditional) Decompose() [][]Statement {
	return [][]Statement{{NewNot(p.lhs)}, {p.rhs}}
}

// Decompose implementation for the Statement interface.  A biconditional
// decomposes into two branches, one where both sides hold and one where
// neither does.
func (p *Biconditional) Decompose() [][]Statement {
	return [][]Statement{{p.lhs, p.rhs}, {NewNot(p.lhs), NewNot(p.rhs)}}
}

// Decompose implementation for the Statement interface.  The decomposition of
// a negation is determined by the statement being negated.
func (p *Not) Decompose() [][]Statement {
	switch s := p.operand.(type) {
	case *Atomic:
		return nil
	case *Not:
		return [][]Statement{{s.operand}}
	case *And:
		branches := make([][]Statement, len(s.operands))
		for i, operand := range s.operands {
			branches[i] = []Statement{NewNot(operand)}
		}
		//
		return branches
	case *Or:
		branch := make([]Statement, len(s.operands))
		for i, operand := range s.operands {
			branch[i] = NewNot(operand)
		}
		//
		return [][]Statement{branch}
	case *Conditional:
		return [][]Statement{{s.lhs, NewNot(s.rhs)}}
	case *Biconditional:
		return [][]Statement{{s.lhs, NewNot(s.rhs)}, {NewNot(s.lhs), s.rhs}}
	case *Existential:
		return [][]Statement{{NewUniversal(s.variables, NewNot(s.body))}}
	case *Universal:
		return [][]Statement{{NewExistential(s.variables, NewNot(s.body))}}
	}
	//
	panic("unreachable")
}

// Check whether the given branches realise the expected decomposition of a
// statement.  Each branch must correspond with exactly one expected branch,
// where the statements within them are compared as multisets.
func hasDecomposition(stmt Statement, branches [][]Statement) bool {
	expected := stmt.Decompose()
	//
	if len(expected) != len(branches) {
		return false
	}
	//
	used := make([]bool, len(expected))
	//
	for _, branch := range branches {
		actual := canonicalBranch(branch)
		matched := false
		//
		for i, e := range expected {
			if !used[i] && slices.Equal(actual, canonicalBranch(e)) {
				used[i], matched = true, true
				break
			}
		}
		//
		if !matched {
			return false
		}
	}
	//
	return true
}

// Canonical form of a branch, which ignores the order of statements.
func canonicalBranch(branch []Statement) []string {
	strs := make([]string, len(branch))
	//
	for i, stmt := range branch {
		strs[i] = stmt.String()
	}
	//
	slices.Sort(strs)
	//
	return strs
}
