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
	"strings"
)

// Statement represents a first-order logic formula.  The set of statements is
// closed: the only implementations are Atomic, Not, And, Or, Conditional,
// Biconditional, Existential and Universal.  Statements are immutable once
// constructed.
type Statement interface {
	// String returns the canonical textual form of this statement.  Two
	// statements are equal if, and only if, their canonical forms are equal.
	String() string
	// Equals checks whether this statement is structurally identical to
	// another.
	Equals(Statement) bool
	// Decompose returns the branches which a correct decomposition of this
	// statement must produce.  This is empty for statements which cannot be
	// decomposed (i.e. literals).
	Decompose() [][]Statement
	// HasDecomposition checks whether a given set of branches realises a
	// correct decomposition of this statement.  The order of branches, and of
	// statements within a branch, is not significant.
	HasDecomposition(branches [][]Statement) bool
	// NewConstants returns the constants used by this statement which are not
	// already within the given universe of discourse.
	NewConstants(universe []Term) []Term
	// Substitute every free occurrence of a variable in this statement.
	substitute(mapping map[string]Term) Statement
	// Match this statement against another, binding symbolic placeholders.
	match(other Statement, assignment Assignment) bool
	// Collect all constants (i.e. unbound names) used in this statement.
	constants(bound []string, constants []Term) []Term
}

// Quantifier is implemented by the two quantified statements (Existential and
// Universal).
type Quantifier interface {
	Statement
	// Variables returns the variables bound by this quantifier.
	Variables() []Term
	// Body returns the statement being quantified over.
	Body() Statement
	// Symbolized returns the body of this quantifier with every free
	// occurrence of a bound variable replaced by a symbolic placeholder.
	Symbolized() Statement
	// EqualsMap matches the symbolized body of this quantifier against a given
	// statement.  If the statement is an instantiation of this quantifier, the
	// assignment of bound variables to terms is returned.
	EqualsMap(Statement) (Assignment, bool)
}

// ============================================================================
// Atomic
// ============================================================================

// Atomic represents a predicate applied to zero or more terms, such as "P" or
// "Loves(a,b)".
type Atomic struct {
	predicate string
	args      []Term
}

// NewAtomic constructs a new atomic statement.
func NewAtomic(predicate string, args ...Term) *Atomic {
	return &Atomic{predicate, args}
}

// Predicate returns the name of the predicate being applied.
func (p *Atomic) Predicate() string {
	return p.predicate
}

// Args returns the terms to which the predicate is applied.
func (p *Atomic) Args() []Term {
	return p.args
}

// Equals implementation for the Statement interface.
func (p *Atomic) Equals(other Statement) bool {
	if o, ok := other.(*Atomic); ok {
		return p.predicate == o.predicate && slices.EqualFunc(p.args, o.args, Term.Equals)
	}
	//
	return false
}

// Decompose implementation for the Statement interface.
func (p *Atomic) Decompose() [][]Statement {
	return nil
}

// HasDecomposition implementation for the Statement interface.
func (p *Atomic) HasDecomposition(branches [][]Statement) bool {
	return hasDecomposition(p, branches)
}

// NewConstants implementation for the Statement interface.
func (p *Atomic) NewConstants(universe []Term) []Term {
	return newConstants(p, universe)
}

func (p *Atomic) String() string {
	if len(p.args) == 0 {
		return p.predicate
	}
	//
	var builder strings.Builder
	//
	builder.WriteString(p.predicate)
	writeTerms(&builder, p.args)
	//
	return builder.String()
}

func (p *Atomic) substitute(mapping map[string]Term) Statement {
	args := make([]Term, len(p.args))
	for i, arg := range p.args {
		args[i] = arg.substitute(mapping)
	}
	//
	return &Atomic{p.predicate, args}
}

func (p *Atomic) match(other Statement, assignment Assignment) bool {
	o, ok := other.(*Atomic)
	//
	if !ok || p.predicate != o.predicate || len(p.args) != len(o.args) {
		return false
	}
	//
	for i := range p.args {
		if !p.args[i].match(o.args[i], assignment) {
			return false
		}
	}
	//
	return true
}

func (p *Atomic) constants(bound []string, constants []Term) []Term {
	for _, arg := range p.args {
		constants = arg.constants(bound, constants)
	}
	//
	return constants
}

// ============================================================================
// Not
// ============================================================================

// Not represents the logical negation of a statement.
type Not struct {
	operand Statement
}

// NewNot constructs the negation of a given statement.
func NewNot(operand Statement) *Not {
	return &Not{operand}
}

// Operand returns the statement being negated.
func (p *Not) Operand() Statement {
	return p.operand
}

// Equals implementation for the Statement interface.
func (p *Not) Equals(other Statement) bool {
	if o, ok := other.(*Not); ok {
		return p.operand.Equals(o.operand)
	}
	//
	return false
}

// HasDecomposition implementation for the Statement interface.
func (p *Not) HasDecomposition(branches [][]Statement) bool {
	return hasDecomposition(p, branches)
}

// NewConstants implementation for the Statement interface.
func (p *Not) NewConstants(universe []Term) []Term {
	return newConstants(p, universe)
}

func (p *Not) String() string {
	return "¬" + p.operand.String()
}

func (p *Not) substitute(mapping map[string]Term) Statement {
	return &Not{p.operand.substitute(mapping)}
}

func (p *Not) match(other Statement, assignment Assignment) bool {
	if o, ok := other.(*Not); ok {
		return p.operand.match(o.operand, assignment)
	}
	//
	return false
}

func (p *Not) constants(bound []string, constants []Term) []Term {
	return p.operand.constants(bound, constants)
}

// ============================================================================
// And / Or
// ============================================================================

// And represents the conjunction of two or more statements.
type And struct {
	operands []Statement
}

// NewAnd constructs the conjunction of two or more statements.
func NewAnd(operands ...Statement) *And {
	return &And{operands}
}

// Operands returns the statements being conjoined.
func (p *And) Operands() []Statement {
	return p.operands
}

// Equals implementation for the Statement interface.
func (p *And) Equals(other Statement) bool {
	if o, ok := other.(*And); ok {
		return slices.EqualFunc(p.operands, o.operands, Statement.Equals)
	}
	//
	return false
}

// HasDecomposition implementation for the Statement interface.
func (p *And) HasDecomposition(branches [][]Statement) bool {
	return hasDecomposition(p, branches)
}

// NewConstants implementation for the Statement interface.
func (p *And) NewConstants(universe []Term) []Term {
	return newConstants(p, universe)
}

func (p *And) String() string {
	return writeNary(" ∧ ", p.operands...)
}

func (p *And) substitute(mapping map[string]Term) Statement {
	return &And{substituteAll(p.operands, mapping)}
}

func (p *And) match(other Statement, assignment Assignment) bool {
	if o, ok := other.(*And); ok {
		return matchAll(p.operands, o.operands, assignment)
	}
	//
	return false
}

func (p *And) constants(bound []string, constants []Term) []Term {
	return constantsAll(p.operands, bound, constants)
}

// Or represents the disjunction of two or more statements.
type Or struct {
	operands []Statement
}

// NewOr constructs the disjunction of two or more statements.
func NewOr(operands ...Statement) *Or {
	return &Or{operands}
}

// Operands returns the statements being disjoined.
func (p *Or) Operands() []Statement {
	return p.operands
}

// Equals implementation for the Statement interface.
func (p *Or) Equals(other Statement) bool {
	if o, ok := other.(*Or); ok {
		return slices.EqualFunc(p.operands, o.operands, Statement.Equals)
	}
	//
	return false
}

// HasDecomposition implementation for the Statement interface.
func (p *Or) HasDecomposition(branches [][]Statement) bool {
	return hasDecomposition(p, branches)
}

// NewConstants implementation for the Statement interface.
func (p *Or) NewConstants(universe []Term) []Term {
	return newConstants(p, universe)
}

func (p *Or) String() string {
	return writeNary(" ∨ ", p.operands...)
}

func (p *Or) substitute(mapping map[string]Term) Statement {
	return &Or{substituteAll(p.operands, mapping)}
}

func (p *Or) match(other Statement, assignment Assignment) bool {
	if o, ok := other.(*Or); ok {
		return matchAll(p.operands, o.operands, assignment)
	}
	//
	return false
}

func (p *Or) constants(bound []string, constants []Term) []Term {
	return constantsAll(p.operands, bound, constants)
}

// ============================================================================
// Conditional / Biconditional
// ============================================================================

// Conditional represents a material implication "lhs → rhs".
type Conditional struct {
	lhs Statement
	rhs Statement
}

// NewConditional constructs a new material implication.
func NewConditional(lhs Statement, rhs Statement) *Conditional {
	return &Conditional{lhs, rhs}
}

// Lhs returns the antecedent of this implication.
func (p *Conditional) Lhs() Statement {
	return p.lhs
}

// Rhs returns the consequent of this implication.
func (p *Conditional) Rhs() Statement {
	return p.rhs
}

// Equals implementation for the Statement interface.
func (p *Conditional) Equals(other Statement) bool {
	if o, ok := other.(*Conditional); ok {
		return p.lhs.Equals(o.lhs) && p.rhs.Equals(o.rhs)
	}
	//
	return false
}

// HasDecomposition implementation for the Statement interface.
func (p *Conditional) HasDecomposition(branches [][]Statement) bool {
	return hasDecomposition(p, branches)
}

// NewConstants implementation for the Statement interface.
func (p *Conditional) NewConstants(universe []Term) []Term {
	return newConstants(p, universe)
}

func (p *Conditional) String() string {
	return writeNary(" → ", p.lhs, p.rhs)
}

func (p *Conditional) substitute(mapping map[string]Term) Statement {
	return &Conditional{p.lhs.substitute(mapping), p.rhs.substitute(mapping)}
}

func (p *Conditional) match(other Statement, assignment Assignment) bool {
	if o, ok := other.(*Conditional); ok {
		return p.lhs.match(o.lhs, assignment) && p.rhs.match(o.rhs, assignment)
	}
	//
	return false
}

func (p *Conditional) constants(bound []string, constants []Term) []Term {
	return p.rhs.constants(bound, p.lhs.constants(bound, constants))
}

// Biconditional represents a material equivalence "lhs ↔ rhs".
type Biconditional struct {
	lhs Statement
	rhs Statement
}

// NewBiconditional constructs a new material equivalence.
func NewBiconditional(lhs Statement, rhs Statement) *Biconditional {
	return &Biconditional{lhs, rhs}
}

// Lhs returns the left-hand side of this equivalence.
func (p *Biconditional) Lhs() Statement {
	return p.lhs
}

// Rhs returns the right-hand side of this equivalence.
func (p *Biconditional) Rhs() Statement {
	return p.rhs
}

// Equals implementation for the Statement interface.
func (p *Biconditional) Equals(other Statement) bool {
	if o, ok := other.(*Biconditional); ok {
		return p.lhs.Equals(o.lhs) && p.rhs.Equals(o.rhs)
	}
	//
	return false
}

// HasDecomposition implementation for the Statement interface.
func (p *Biconditional) HasDecomposition(branches [][]Statement) bool {
	return hasDecomposition(p, branches)
}

// NewConstants implementation for the Statement interface.
func (p *Biconditional) NewConstants(universe []Term) []Term {
	return newConstants(p, universe)
}

func (p *Biconditional) String() string {
	return writeNary(" ↔ ", p.lhs, p.rhs)
}

func (p *Biconditional) substitute(mapping map[string]Term) Statement {
	return &Biconditional{p.lhs.substitute(mapping), p.rhs.substitute(mapping)}
}

func (p *Biconditional) match(other Statement, assignment Assignment) bool {
	if o, ok := other.(*Biconditional); ok {
		return p.lhs.match(o.lhs, assignment) && p.rhs.match(o.rhs, assignment)
	}
	//
	return false
}

func (p *Biconditional) constants(bound []string, constants []Term) []Term {
	return p.rhs.constants(bound, p.lhs.constants(bound, constants))
}

// ============================================================================
// Helpers
// ============================================================================

// IsLiteral checks whether a statement is either atomic, or the negation of an
// atomic statement.
func IsLiteral(stmt Statement) bool {
	switch s := stmt.(type) {
	case *Atomic:
		return true
	case *Not:
		_, ok := s.operand.(*Atomic)
		return ok
	}
	//
	return false
}

// Negate returns the complement of a statement.  That is, the operand of a
// negation, or otherwise the negation of the statement itself.
func Negate(stmt Statement) Statement {
	if n, ok := stmt.(*Not); ok {
		return n.operand
	}
	//
	return NewNot(stmt)
}

func writeNary(connective string, operands ...Statement) string {
	var builder strings.Builder
	//
	builder.WriteString("(")
	//
	for i, operand := range operands {
		if i != 0 {
			builder.WriteString(connective)
		}
		//
		builder.WriteString(operand.String())
	}
	//
	builder.WriteString(")")
	//
	return builder.String()
}

func substituteAll(stmts []Statement, mapping map[string]Term) []Statement {
	nstmts := make([]Statement, len(stmts))
	for i, stmt := range stmts {
		nstmts[i] = stmt.substitute(mapping)
	}
	//
	return nstmts
}

func matchAll(lhs []Statement, rhs []Statement, assignment Assignment) bool {
	if len(lhs) != len(rhs) {
		return false
	}
	//
	for i := range lhs {
		if !lhs[i].match(rhs[i], assignment) {
			return false
		}
	}
	//
	return true
}

func constantsAll(stmts []Statement, bound []string, constants []Term) []Term {
	for _, stmt := range stmts {
		constants = stmt.constants(bound, constants)
	}
	//
	return constants
}

func newConstants(stmt Statement, universe []Term) []Term {
	var nconstants []Term
	//
	for _, c := range stmt.constants(nil, nil) {
		if !containsTerm(universe, c) {
			nconstants = append(nconstants, c)
		}
	}
	//
	return nconstants
}
