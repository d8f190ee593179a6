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
package lex

import (
	"iter"
	"slices"

	"github.com/consensys/go-truthtree/pkg/util"
	"github.com/consensys/go-truthtree/pkg/util/source"
)

// Token associates a tag with a given range of characters in the text being
// scanned.
type Token struct {
	Kind uint
	Span source.Span
}

// LexRule is a rule for associating groups of characters with a given tag.
//
// nolint
type LexRule[T any] struct {
	scanner Scanner[T]
	tag     uint
}

// Rule constructs a new lexing rule which maps matching characters to a given
// tag.
func Rule[T any](scanner Scanner[T], tag uint) LexRule[T] {
	return LexRule[T]{scanner, tag}
}

// Lexer tokenises a given input sequence using a fixed list of rules.  Rules
// are tried in order, and the first rule which matches determines the tag of
// the next token.  Tokens whose tag is marked as skipped (e.g. whitespace) are
// consumed but never returned.
type Lexer[T any] struct {
	items []T
	index int
	rules []LexRule[T]
	skip  []uint
	// Token scanned but not yet returned.
	peeked util.Option[Token]
}

// NewLexer constructs a new lexer with a given set of lexing rules.
func NewLexer[T any](input []T, rules ...LexRule[T]) *Lexer[T] {
	return &Lexer[T]{items: input, rules: rules}
}

// Skip marks the given tags as separators, such that tokens with those tags
// are consumed silently.
func (p *Lexer[T]) Skip(tags ...uint) *Lexer[T] {
	p.skip = append(p.skip, tags...)
	return p
}

// Remaining determines how many items from the original sequence were left
// unconsumed.
func (p *Lexer[T]) Remaining() uint {
	return uint(max(0, len(p.items)-p.index))
}

// Unmatched returns the span of items which no rule could consume.  This is
// empty when the input was lexed completely.
func (p *Lexer[T]) Unmatched() source.Span {
	start := min(p.index, len(p.items))
	return source.NewSpan(start, len(p.items))
}

// HasNext checks whether or not there are any tokens remaining.
func (p *Lexer[T]) HasNext() bool {
	p.scan()
	return p.peeked.HasValue()
}

// Next returns the next token and advances the lexer.  This panics if there is
// no next token.
func (p *Lexer[T]) Next() Token {
	if !p.HasNext() {
		panic("no tokens remaining")
	}
	//
	next := p.peeked.Unwrap()
	p.peeked = util.None[Token]()
	//
	return next
}

// All iterates the remaining tokens.
func (p *Lexer[T]) All() iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for p.HasNext() {
			if !yield(p.Next()) {
				return
			}
		}
	}
}

// Collect lexes all remaining tokens in one go.
func (p *Lexer[T]) Collect() []Token {
	return slices.Collect(p.All())
}

// Scan forward to the next token which is not skipped, if there is one.
func (p *Lexer[T]) scan() {
	for p.peeked.IsEmpty() {
		token, ok := p.match()
		//
		if !ok {
			return
		} else if p.index == len(p.items) {
			// EOF condition
			p.index++
		} else {
			p.index = token.Span.End()
		}
		//
		if !slices.Contains(p.skip, token.Kind) {
			p.peeked = util.Some(token)
		}
	}
}

// Find the first rule matching at the current position.
func (p *Lexer[T]) match() (Token, bool) {
	if p.index > len(p.items) {
		return Token{}, false
	}
	//
	for _, r := range p.rules {
		if n := r.scanner(p.items[p.index:]); n > 0 {
			end := min(len(p.items), p.index+int(n))
			return Token{r.tag, source.NewSpan(p.index, end)}, true
		}
	}
	//
	return Token{}, false
}
