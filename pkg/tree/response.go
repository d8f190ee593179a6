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

// Response is the outcome of checking a single node.  Either the node is
// Valid, or the response identifies why it is not.
type Response uint8

const (
	// Valid indicates the check succeeded.
	Valid Response = iota
	// NotParsable indicates non-empty text which is not a statement.
	NotParsable
	// NotLogicalConsequence indicates a statement which does not follow from
	// any statement before it.
	NotLogicalConsequence
	// InvalidInstantiation indicates a statement which does not instantiate
	// the quantifier it references.
	InvalidInstantiation
	// ExistenceInstantiationLength indicates an existential instantiation
	// which introduces the wrong number of new constants.
	ExistenceInstantiationLength
	// OpenDecomposed indicates an open terminator with references.
	OpenDecomposed
	// OpenContradiction indicates an open branch containing a literal and its
	// negation.
	OpenContradiction
	// OpenInvalidAncestor indicates an open branch with an invalid or
	// undecomposed statement.
	OpenInvalidAncestor
	// ClosedReferenceLength indicates a closed terminator which does not
	// reference exactly two statements.
	ClosedReferenceLength
	// ClosedReferenceInvalid indicates a closed terminator referencing
	// something which is not a statement.
	ClosedReferenceInvalid
	// ClosedNotAtomic indicates a closed terminator whose contradiction is not
	// atomic, when atomic contradictions are required.
	ClosedNotAtomic
	// ClosedNotAncestor indicates a closed terminator referencing a statement
	// outside its branch.
	ClosedNotAncestor
	// ClosedNotContradiction indicates a closed terminator whose references do
	// not contradict.
	ClosedNotContradiction
	// TerminatorNotLast indicates a terminator followed by other nodes.
	TerminatorNotLast
	// ReferenceNotAfter indicates a decomposition into statements which do not
	// follow the statement being decomposed.
	ReferenceNotAfter
	// InvalidDecomposition indicates a statement which is not decomposed
	// correctly in some open branch.
	InvalidDecomposition
	// ExistenceDecomposeLength indicates an existential decomposed more than
	// once (or not at all) in some open branch.
	ExistenceDecomposeLength
	// UniversalDecomposeLength indicates a universal which is never
	// instantiated in some open branch.
	UniversalDecomposeLength
	// UniversalDomainNotDecomposed indicates a universal which is not
	// instantiated for every constant in some open branch.
	UniversalDomainNotDecomposed
)

var responses = []struct {
	code    string
	message string
}{
	{"valid", "This statement is valid."},
	{"not_parsable", "This statement is not parsable."},
	{"not_logical_consequence",
		"This statement is not a logical consequence of a statement that occurs before it."},
	{"invalid_instantiation", "This statement does not instantiate the statement it references"},
	{"existence_instantiation_length", "An existence statement must instantiate a new constant."},
	{"open_decomposed", "An open terminator must reference no statements."},
	{"open_contradiction", "This branch contains a contradiction."},
	{"open_invalid_ancestor", "This branch contains an invalid statement."},
	{"closed_reference_length", "A closing terminator must reference exactly two statements."},
	{"closed_reference_invalid", "The referenced statements must be valid."},
	{"closed_not_atomic", "The referenced statements must consist of a literal and its negation"},
	{"closed_not_ancestor", "A closing terminator must only reference statements that occur before it."},
	{"closed_not_contradiction", "The referenced statements must consist of a statement and its negation"},
	{"terminator_not_last", "No statements can occur in a branch after a terminator."},
	{"reference_not_after", "A statement must decompose into statements that occur after it."},
	{"invalid_decomposition", "This statement is not decomposed correctly."},
	{"existence_decompose_length", "An existence statement can only be decomposed once per branch."},
	{"universal_decompose_length", "A universal statement must be decomposed at least once."},
	{"universal_domain_not_decomposed",
		"A universal statement must instantiate every variable in the universe of discourse."},
}

// Code returns the symbolic code of this response, such as
// "open_contradiction".
func (r Response) Code() string {
	return responses[r].code
}

// Message returns the user-facing explanation of this response.
func (r Response) Message() string {
	return responses[r].message
}

func (r Response) String() string {
	return r.Code()
}

// ResponseOf returns the response with a given symbolic code, if one exists.
func ResponseOf(code string) (Response, bool) {
	for i, r := range responses {
		if r.code == code {
			return Response(i), true
		}
	}
	//
	return Valid, false
}

// Verdict is the outcome of checking a tree as a whole.
type Verdict uint8

const (
	// Correct indicates every node is valid and the tree is finished.
	Correct Verdict = iota
	// Incorrect indicates some node is not valid.
	Incorrect
	// Unterminated indicates some branch still needs a terminator.
	Unterminated
	// Malformed indicates the tree's internal links are inconsistent.
	Malformed
)

// Message returns the user-facing explanation of this verdict.
func (v Verdict) Message() string {
	switch v {
	case Correct:
		return "This tree is correct!"
	case Incorrect:
		return "This tree is incorrect."
	case Unterminated:
		return "Every branch must be terminated."
	case Malformed:
		return "This tree is malformed -- please save this tree and contact a developer."
	}
	//
	panic("unreachable")
}

func (v Verdict) String() string {
	switch v {
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	case Unterminated:
		return "unterminated"
	default:
		return "malformed"
	}
}
