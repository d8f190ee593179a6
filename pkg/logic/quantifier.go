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

// quantifier captures what is common to both existential and universal
// statements.
type quantifier struct {
	variables []Term
	body      Statement
}

// Variables implementation for the Quantifier interface.
func (p *quantifier) Variables() []Term {
	return p.variables
}

// Body implementation for the Quantifier interface.
func (p *quantifier) Body() Statement {
	return p.body
}

// Symbolized implementation for the Quantifier interface.
func (p *quantifier) Symbolized() Statement {
	mapping := make(map[string]Term, len(p.variables))
	//
	for _, v := range p.variables {
		mapping[v.name] = Term{v.name, nil, true}
	}
	//
	return p.body.substitute(mapping)
}

// EqualsMap implementation for the Quantifier interface.
func (p *quantifier) EqualsMap(other Statement) (Assignment, bool) {
	assignment := make(Assignment)
	//
	if p.Symbolized().match(other, assignment) {
		return assignment, true
	}
	//
	return nil, false
}

// Check whether the given branches consist of a single (non-empty) branch of
// instantiations of this quantifier.
func (p *quantifier) instantiatedBy(branches [][]Statement) bool {
	if len(branches) != 1 || len(branches[0]) == 0 {
		return false
	}
	//
	for _, stmt := range branches[0] {
		if _, ok := p.EqualsMap(stmt); !ok {
			return false
		}
	}
	//
	return true
}

func (p *quantifier) equals(o *quantifier) bool {
	return slices.EqualFunc(p.variables, o.variables, Term.Equals) && p.body.Equals(o.body)
}

func (p *quantifier) string(symbol string) string {
	var builder strings.Builder
	//
	builder.WriteString(symbol)
	//
	for i, v := range p.variables {
		if i != 0 {
			builder.WriteString(",")
		}
		//
		builder.WriteString(v.String())
	}
	//
	builder.WriteString(" ")
	builder.WriteString(p.body.String())
	//
	return builder.String()
}

// Substitute within the body, except for variables which this quantifier
// rebinds.
func (p *quantifier) substitute(mapping map[string]Term) quantifier {
	inner := make(map[string]Term, len(mapping))
	//
	for name, term := range mapping {
		if !slices.ContainsFunc(p.variables, func(v Term) bool { return v.name == name }) {
			inner[name] = term
		}
	}
	//
	return quantifier{p.variables, p.body.substitute(inner)}
}

func (p *quantifier) match(o *quantifier, assignment Assignment) bool {
	return slices.EqualFunc(p.variables, o.variables, Term.Equals) && p.body.match(o.body, assignment)
}

func (p *quantifier) constants(bound []string, constants []Term) []Term {
	nbound := slices.Clone(bound)
	//
	for _, v := range p.variables {
		nbound = append(nbound, v.name)
	}
	//
	return p.body.constants(nbound, constants)
}

// ============================================================================
// Existential
// ============================================================================

// Existential represents a statement "∃x P(x)" asserting that some individual
// in the domain satisfies the body.
type Existential struct {
	quantifier
}

// NewExistential constructs a new existential statement binding the given
// variables.
func NewExistential(variables []Term, body Statement) *Existential {
	return &Existential{quantifier{variables, body}}
}

// Equals implementation for the Statement interface.
func (p *Existential) Equals(other Statement) bool {
	if o, ok := other.(*Existential); ok {
		return p.equals(&o.quantifier)
	}
	//
	return false
}

// Decompose implementation for the Statement interface.  An existential
// decomposes into a single instantiation of its body.
func (p *Existential) Decompose() [][]Statement {
	return [][]Statement{{p.Symbolized()}}
}

// HasDecomposition implementation for the Statement interface.  This holds
// for a single branch holding exactly one instantiation.
func (p *Existential) HasDecomposition(branches [][]Statement) bool {
	return p.instantiatedBy(branches) && len(branches[0]) == 1
}

// NewConstants implementation for the Statement interface.
func (p *Existential) NewConstants(universe []Term) []Term {
	return newConstants(p, universe)
}

func (p *Existential) String() string {
	return p.string("∃")
}

func (p *Existential) substitute(mapping map[string]Term) Statement {
	return &Existential{p.quantifier.substitute(mapping)}
}

func (p *Existential) match(other Statement, assignment Assignment) bool {
	if o, ok := other.(*Existential); ok {
		return p.quantifier.match(&o.quantifier, assignment)
	}
	//
	return false
}

// ============================================================================
// Universal
// ============================================================================

// Universal represents a statement "∀x P(x)" asserting that every individual
// in the domain satisfies the body.
type Universal struct {
	quantifier
}

// NewUniversal constructs a new universal statement binding the given
// variables.
func NewUniversal(variables []Term, body Statement) *Universal {
	return &Universal{quantifier{variables, body}}
}

// Equals implementation for the Statement interface.
func (p *Universal) Equals(other Statement) bool {
	if o, ok := other.(*Universal); ok {
		return p.equals(&o.quantifier)
	}
	//
	return false
}

// Decompose implementation for the Statement interface.  A universal
// decomposes into instantiations of its body, the first of which is
// representative of them all.
func (p *Universal) Decompose() [][]Statement {
	return [][]Statement{{p.Symbolized()}}
}

// HasDecomposition implementation for the Statement interface.  This holds
// for a single branch holding one or more instantiations.
func (p *Universal) HasDecomposition(branches [][]Statement) bool {
	return p.instantiatedBy(branches)
}

// NewConstants implementation for the Statement interface.
func (p *Universal) NewConstants(universe []Term) []Term {
	return newConstants(p, universe)
}

func (p *Universal) String() string {
	return p.string("∀")
}

func (p *Universal) substitute(mapping map[string]Term) Statement {
	return &Universal{p.quantifier.substitute(mapping)}
}

func (p *Universal) match(other Statement, assignment Assignment) bool {
	if o, ok := other.(*Universal); ok {
		return p.quantifier.match(&o.quantifier, assignment)
	}
	//
	return false
}
