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
package source

import (
	"fmt"
	"strings"
)

// Text represents a piece of statement text being parsed.  The contents are
// held as runes since most logical symbols lie outside of ASCII.
type Text struct {
	// Name used when reporting errors (e.g. the node identifier).
	name string
	// Contents of this text.
	contents []rune
}

// NewText constructs a new text from a given string.
func NewText(name string, text string) *Text {
	return &Text{name, []rune(text)}
}

// Name returns the name associated with this text.
func (s *Text) Name() string {
	return s.name
}

// Contents returns the contents of this text.
func (s *Text) Contents() []rune {
	return s.contents
}

// Slice returns the string covered by a given span of this text.
func (s *Text) Slice(span Span) string {
	start, end := min(span.start, len(s.contents)), min(span.end, len(s.contents))
	return string(s.contents[start:end])
}

// SyntaxError constructs a syntax error over a given span of this text with a
// given message.
func (s *Text) SyntaxError(span Span, msg string) *SyntaxError {
	return &SyntaxError{s, span, msg}
}

// SyntaxError is a structured error which retains the span of the original
// text where an error occurred, along with an error message.
type SyntaxError struct {
	text *Text
	// Span of the original text where the error arose.
	span Span
	// Error message being reported
	msg string
}

// Text returns the underlying text that this syntax error covers.
func (p *SyntaxError) Text() *Text {
	return p.text
}

// Span returns the span of the original text on which this error is reported.
func (p *SyntaxError) Span() Span {
	return p.span
}

// Message returns the message to be reported.
func (p *SyntaxError) Message() string {
	return p.msg
}

// Error implements the error interface.
func (p *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d:%s", p.span.Start(), p.span.End(), p.Message())
}

// Highlight renders the original text with a line of carets underneath the
// offending span, which is convenient when reporting errors on a terminal.
func (p *SyntaxError) Highlight() string {
	var (
		builder strings.Builder
		width   = max(1, p.span.Length())
	)
	//
	builder.WriteString(string(p.text.contents))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat(" ", min(p.span.start, len(p.text.contents))))
	builder.WriteString(strings.Repeat("^", width))
	//
	return builder.String()
}

// Errors is a convenience type for a list of syntax errors which itself
// implements the error interface.
type Errors []SyntaxError

// Error implements the error interface by reporting the first error.
func (p Errors) Error() string {
	if len(p) == 0 {
		return "no errors"
	} else if len(p) == 1 {
		return p[0].Error()
	}
	//
	return fmt.Sprintf("%s (and %d more)", p[0].Error(), len(p)-1)
}
