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
package parser

import (
	"slices"

	"github.com/consensys/go-truthtree/pkg/logic"
	"github.com/consensys/go-truthtree/pkg/util/source"
	"github.com/consensys/go-truthtree/pkg/util/source/lex"
)

// Parse a given input string into a first-order logic statement.  For
// example, "∀x (P(x) → Q(x))" or "¬(A ∧ B)".  Connectives of different kinds
// cannot be mixed without braces, and conditionals cannot be chained.
func Parse(input string) (logic.Statement, []source.SyntaxError) {
	var (
		text  = source.NewText("statement", input)
		lexer = lex.NewLexer(text.Contents(), rules...).Skip(WHITESPACE)
		// Lex as many tokens as possible
		tokens = lexer.Collect()
	)
	// Check whether anything was left (if so this is an error)
	if lexer.Remaining() != 0 {
		err := text.SyntaxError(lexer.Unmatched(), "unknown text encountered")

		return nil, []source.SyntaxError{*err}
	}
	//
	parser := &Parser{text, tokens, 0}
	//
	if parser.follows(END_OF) {
		return nil, parser.syntaxErrors(parser.lookahead(), "empty statement")
	}
	// Parse statement
	stmt, errs := parser.parseStatement()
	// Check all parsed
	if len(errs) == 0 && !parser.Done() {
		return nil, parser.syntaxErrors(parser.lookahead(), "unknown token")
	} else if len(errs) != 0 {
		return nil, errs
	}
	//
	return stmt, nil
}

// FirstOrder is a stateless parser for first-order logic statements, which
// reports all failures as a single error.
type FirstOrder struct{}

// New constructs a parser for first-order logic statements.
func New() FirstOrder {
	return FirstOrder{}
}

// Parse a given string into a statement, or fail with an error of type
// source.Errors.
func (FirstOrder) Parse(input string) (logic.Statement, error) {
	stmt, errs := Parse(input)
	//
	if len(errs) != 0 {
		return nil, source.Errors(errs)
	}
	//
	return stmt, nil
}

// END_OF signals "end of file"
const END_OF uint = 0

// WHITESPACE signals whitespace
const WHITESPACE uint = 1

// LBRACE signals "left brace"
const LBRACE uint = 2

// RBRACE signals "right brace"
const RBRACE uint = 3

// COMMA separates arguments and bound variables
const COMMA uint = 4

// IDENTIFIER signals a predicate, function, constant or variable name.
const IDENTIFIER uint = 5

// NOT represents logical negation
const NOT uint = 6

// AND represents logical conjunction
const AND uint = 7

// OR represents logical disjunction
const OR uint = 8

// IMPLIES represents material implication
const IMPLIES uint = 9

// IFF represents material equivalence
const IFF uint = 10

// FORALL represents universal quantification
const FORALL uint = 11

// EXISTS represents existential quantification
const EXISTS uint = 12

// CONNECTIVES captures the set of binary logical connectives.
var CONNECTIVES = []uint{AND, OR, IMPLIES, IFF}

// Rule for describing whitespace
var whitespace lex.Scanner[rune] = lex.Many(lex.OneOf(' ', '\t', '\n', '\r'))

var identifierStart lex.Scanner[rune] = lex.Or(
	lex.Unit('_'),
	lex.Within('a', 'z'),
	lex.Within('A', 'Z'))

var identifierRest lex.Scanner[rune] = lex.Many(lex.Or(
	lex.Unit('_'),
	lex.Unit('\''),
	lex.Within('0', '9'),
	lex.Within('a', 'z'),
	lex.Within('A', 'Z')))

// Rule for describing identifiers
var identifier lex.Scanner[rune] = lex.And(identifierStart, identifierRest)

// lexing rules.  Observe that longer operators must precede their prefixes.
var rules []lex.LexRule[rune] = []lex.LexRule[rune]{
	lex.Rule(lex.Unit('('), LBRACE),
	lex.Rule(lex.Unit(')'), RBRACE),
	lex.Rule(lex.Unit(','), COMMA),
	lex.Rule(lex.Or(lex.String("<->"), lex.OneOf('↔', '⇔', '≡')), IFF),
	lex.Rule(lex.Or(lex.String("->"), lex.OneOf('→', '⇒', '⊃')), IMPLIES),
	lex.Rule(lex.Or(lex.String("&&"), lex.OneOf('∧', '&', '^')), AND),
	lex.Rule(lex.Or(lex.String("||"), lex.OneOf('∨', '|')), OR),
	lex.Rule(lex.OneOf('¬', '~', '!'), NOT),
	lex.Rule(lex.OneOf('∀'), FORALL),
	lex.Rule(lex.OneOf('∃'), EXISTS),
	lex.Rule(whitespace, WHITESPACE),
	lex.Rule(identifier, IDENTIFIER),
	lex.Rule(lex.Eof[rune](), END_OF),
}

// Parser is a recursive descent parser for first-order logic statements.
type Parser struct {
	text   *source.Text
	tokens []lex.Token
	// Position within the tokens
	index int
}

// Done determines whether or not the parser has parsed all the available
// tokens.
func (p *Parser) Done() bool {
	return p.index+1 >= len(p.tokens)
}

// Parse a sequence of unit statements joined by connectives of one kind.
func (p *Parser) parseStatement() (logic.Statement, []source.SyntaxError) {
	var (
		start      = p.lookahead()
		term, errs = p.parseUnitStatement()
		// match all terms
		terms = []logic.Statement{term}
		// initialise lookahead
		kind = p.lookahead().Kind
	)
	//
	for len(errs) == 0 && !p.follows(END_OF, RBRACE) {
		var next logic.Statement
		// Sanity check
		if !p.follows(CONNECTIVES...) {
			return nil, p.syntaxErrors(p.lookahead(), "expected logical connective")
		} else if !p.follows(kind) {
			return nil, p.syntaxErrors(p.lookahead(), "braces required")
		} else if len(terms) == 2 && (kind == IMPLIES || kind == IFF) {
			return nil, p.syntaxErrors(p.lookahead(), "braces required")
		}
		// Consume connective
		p.expect(kind)
		//
		next, errs = p.parseUnitStatement()
		// Accumulate arguments
		terms = append(terms, next)
	}
	//
	switch {
	case len(errs) != 0:
		return nil, errs
	case len(terms) == 1:
		return term, nil
	case kind == AND:
		return logic.NewAnd(terms...), nil
	case kind == OR:
		return logic.NewOr(terms...), nil
	case kind == IMPLIES:
		return logic.NewConditional(terms[0], terms[1]), nil
	case kind == IFF:
		return logic.NewBiconditional(terms[0], terms[1]), nil
	}
	//
	return nil, p.syntaxErrors(start, "unknown connective")
}

func (p *Parser) parseUnitStatement() (logic.Statement, []source.SyntaxError) {
	token := p.lookahead()
	//
	switch token.Kind {
	case NOT:
		p.expect(NOT)
		//
		operand, errs := p.parseUnitStatement()
		if len(errs) != 0 {
			return nil, errs
		}
		//
		return logic.NewNot(operand), nil
	case FORALL, EXISTS:
		return p.parseQuantifier()
	case LBRACE:
		return p.parseBracketedStatement()
	case IDENTIFIER:
		return p.parseAtomic()
	}
	//
	return nil, p.syntaxErrors(token, "unknown expression")
}

func (p *Parser) parseQuantifier() (logic.Statement, []source.SyntaxError) {
	var (
		kind      = p.expect(p.lookahead().Kind).Kind
		variables []logic.Term
	)
	// Parse one or more variables
	for {
		if !p.follows(IDENTIFIER) {
			return nil, p.syntaxErrors(p.lookahead(), "expected variable")
		}
		//
		name := p.string(p.expect(IDENTIFIER))
		variables = append(variables, logic.NewConstant(name))
		//
		if !p.match(COMMA) {
			break
		}
	}
	// Parse body
	body, errs := p.parseUnitStatement()
	//
	switch {
	case len(errs) != 0:
		return nil, errs
	case kind == FORALL:
		return logic.NewUniversal(variables, body), nil
	default:
		return logic.NewExistential(variables, body), nil
	}
}

func (p *Parser) parseBracketedStatement() (logic.Statement, []source.SyntaxError) {
	p.expect(LBRACE)
	//
	stmt, errs := p.parseStatement()
	//
	if len(errs) == 0 && !p.match(RBRACE) {
		return nil, p.syntaxErrors(p.lookahead(), "expected ')'")
	}
	//
	return stmt, errs
}

func (p *Parser) parseAtomic() (logic.Statement, []source.SyntaxError) {
	name := p.string(p.expect(IDENTIFIER))
	// Check for arguments
	if !p.follows(LBRACE) {
		return logic.NewAtomic(name), nil
	}
	//
	args, errs := p.parseArguments()
	if len(errs) != 0 {
		return nil, errs
	}
	//
	return logic.NewAtomic(name, args...), nil
}

// Parse a bracketed, comma-separated list of terms.
func (p *Parser) parseArguments() ([]logic.Term, []source.SyntaxError) {
	var args []logic.Term
	//
	p.expect(LBRACE)
	//
	for {
		arg, errs := p.parseTerm()
		if len(errs) != 0 {
			return nil, errs
		}
		//
		args = append(args, arg)
		//
		if p.match(RBRACE) {
			return args, nil
		} else if !p.match(COMMA) {
			return nil, p.syntaxErrors(p.lookahead(), "expected ',' or ')'")
		}
	}
}

func (p *Parser) parseTerm() (logic.Term, []source.SyntaxError) {
	if !p.follows(IDENTIFIER) {
		return logic.Term{}, p.syntaxErrors(p.lookahead(), "expected term")
	}
	//
	name := p.string(p.expect(IDENTIFIER))
	//
	if !p.follows(LBRACE) {
		return logic.NewConstant(name), nil
	}
	//
	args, errs := p.parseArguments()
	if len(errs) != 0 {
		return logic.Term{}, errs
	}
	//
	return logic.NewFunction(name, args...), nil
}

// Get the text representing the given token as a string.
func (p *Parser) string(token lex.Token) string {
	return p.text.Slice(token.Span)
}

// Follows checks whether one of the given token kinds is next.
func (p *Parser) follows(options ...uint) bool {
	return slices.Contains(options, p.lookahead().Kind)
}

// Lookahead returns the next token.  This must exist because EOF is always
// appended at the end of the token stream.
func (p *Parser) lookahead() lex.Token {
	return p.tokens[p.index]
}

func (p *Parser) expect(kind uint) lex.Token {
	if p.lookahead().Kind != kind {
		panic("internal failure")
	}
	//
	token := p.tokens[p.index]
	p.index++
	//
	return token
}

func (p *Parser) match(kind uint) bool {
	if p.lookahead().Kind == kind {
		p.index++
		return true
	}
	//
	return false
}

func (p *Parser) syntaxErrors(token lex.Token, msg string) []source.SyntaxError {
	return []source.SyntaxError{*p.text.SyntaxError(token.Span, msg)}
}
