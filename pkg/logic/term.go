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

// Term represents an individual in the domain of discourse.  A term is either
// a simple name (a constant, or a variable when bound by some quantifier) or a
// function applied to one or more argument terms.
type Term struct {
	name string
	args []Term
	// Symbolic terms are placeholders standing for the bound variable of a
	// quantifier.  They arise only from symbolisation, and match any term.
	symbolic bool
}

// NewConstant constructs a simple named term.
func NewConstant(name string) Term {
	return Term{name, nil, false}
}

// NewFunction constructs a term applying a given function to one or more
// arguments.
func NewFunction(name string, args ...Term) Term {
	return Term{name, args, false}
}

// Name returns the name of this term, or of the function being applied.
func (t Term) Name() string {
	return t.name
}

// Args returns the arguments of a function application, or nil for a simple
// name.
func (t Term) Args() []Term {
	return t.args
}

// IsSymbolic checks whether this term is a placeholder for a bound variable.
func (t Term) IsSymbolic() bool {
	return t.symbolic
}

// Equals checks whether two terms are structurally identical.
func (t Term) Equals(o Term) bool {
	return t.name == o.name && t.symbolic == o.symbolic && slices.EqualFunc(t.args, o.args, Term.Equals)
}

func (t Term) String() string {
	if len(t.args) == 0 {
		return t.name
	}
	//
	var builder strings.Builder
	//
	builder.WriteString(t.name)
	writeTerms(&builder, t.args)
	//
	return builder.String()
}

// Substitute every free occurrence of a variable for its replacement.
func (t Term) substitute(mapping map[string]Term) Term {
	if len(t.args) == 0 {
		if replacement, ok := mapping[t.name]; ok && !t.symbolic {
			return replacement
		}
		//
		return t
	}
	//
	args := make([]Term, len(t.args))
	for i, arg := range t.args {
		args[i] = arg.substitute(mapping)
	}
	//
	return Term{t.name, args, t.symbolic}
}

// Match this term, which may contain symbolic placeholders, against a concrete
// term.  Placeholders are bound in the assignment as they are encountered, and
// must be bound consistently.
func (t Term) match(o Term, assignment Assignment) bool {
	if t.symbolic {
		if bound, ok := assignment[t.name]; ok {
			return bound.Equals(o)
		}
		//
		assignment[t.name] = o
		//
		return true
	} else if t.name != o.name || o.symbolic || len(t.args) != len(o.args) {
		return false
	}
	//
	for i := range t.args {
		if !t.args[i].match(o.args[i], assignment) {
			return false
		}
	}
	//
	return true
}

// Collect the constants used within this term which are not bound.  Functions
// are not themselves constants, though their arguments may be.
func (t Term) constants(bound []string, constants []Term) []Term {
	if len(t.args) != 0 {
		for _, arg := range t.args {
			constants = arg.constants(bound, constants)
		}
	} else if !t.symbolic && !slices.Contains(bound, t.name) && !containsTerm(constants, t) {
		constants = append(constants, t)
	}
	//
	return constants
}

// Assignment maps the bound variables of a quantifier to the terms they were
// instantiated with.
type Assignment map[string]Term

// Key returns a canonical string for the terms assigned to a given sequence
// of variables, which is useful for indexing.  Missing variables are rendered
// as "?".
func (p Assignment) Key(variables []Term) string {
	var builder strings.Builder
	//
	for i, v := range variables {
		if i != 0 {
			builder.WriteString(",")
		}
		//
		if t, ok := p[v.name]; ok {
			builder.WriteString(t.String())
		} else {
			builder.WriteString("?")
		}
	}
	//
	return builder.String()
}

// ContainsTerm checks whether a given term is contained in a list of terms.
func containsTerm(terms []Term, term Term) bool {
	return slices.ContainsFunc(terms, term.Equals)
}

func writeTerms(builder *strings.Builder, terms []Term) {
	builder.WriteString("(")
	//
	for i, arg := range terms {
		if i != 0 {
			builder.WriteString(",")
		}
		//
		builder.WriteString(arg.String())
	}
	//
	builder.WriteString(")")
}
