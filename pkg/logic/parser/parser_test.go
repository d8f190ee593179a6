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
	"errors"
	"testing"

	"github.com/consensys/go-truthtree/pkg/logic"
	"github.com/consensys/go-truthtree/pkg/util/assert"
	"github.com/consensys/go-truthtree/pkg/util/source"
)

func Test_Parse_01(t *testing.T) {
	checkParse(t, "A", "A")
	checkParse(t, "  A  ", "A")
	checkParse(t, "P(a, b)", "P(a,b)")
	checkParse(t, "Loves(f(a),b')", "Loves(f(a),b')")
}

func Test_Parse_02(t *testing.T) {
	checkParse(t, "A ∧ B", "(A ∧ B)")
	checkParse(t, "A & B & C", "(A ∧ B ∧ C)")
	checkParse(t, "A ∨ B", "(A ∨ B)")
	checkParse(t, "A | B || C", "(A ∨ B ∨ C)")
}

func Test_Parse_03(t *testing.T) {
	checkParse(t, "A → B", "(A → B)")
	checkParse(t, "A->B", "(A → B)")
	checkParse(t, "A ↔ B", "(A ↔ B)")
	checkParse(t, "A <-> B", "(A ↔ B)")
	checkParse(t, "(A → B) → C", "((A → B) → C)")
}

func Test_Parse_04(t *testing.T) {
	checkParse(t, "¬A", "¬A")
	checkParse(t, "~~A", "¬¬A")
	checkParse(t, "!(A | B)", "¬(A ∨ B)")
	checkParse(t, "¬A ∧ B", "(¬A ∧ B)")
}

func Test_Parse_05(t *testing.T) {
	checkParse(t, "∀x P(x)", "∀x P(x)")
	checkParse(t, "∃x,y R(x,y)", "∃x,y R(x,y)")
	checkParse(t, "∀x (P(x) → Q(x))", "∀x (P(x) → Q(x))")
	checkParse(t, "¬∃x ∀y R(x,y)", "¬∃x ∀y R(x,y)")
	checkParse(t, "∀x P(x) ∧ Q", "(∀x P(x) ∧ Q)")
}

func Test_Parse_06(t *testing.T) {
	stmt, errs := Parse("∀x,y (P(x) ∨ Q(y))")
	assert.Equal(t, 0, len(errs))
	//
	q, ok := stmt.(*logic.Universal)
	assert.True(t, ok)
	assert.Equal(t, 2, len(q.Variables()))
	assert.Equal(t, "(P(x) ∨ Q(y))", q.Body().String())
}

func Test_ParseInvalid_01(t *testing.T) {
	checkParseError(t, "", 0, 0)
	checkParseError(t, "   ", 3, 3)
}

func Test_ParseInvalid_02(t *testing.T) {
	// Terminators are not statements
	checkParseError(t, "◯", 0, 1)
	checkParseError(t, "×", 0, 1)
	checkParseError(t, "A # B", 2, 5)
}

func Test_ParseInvalid_03(t *testing.T) {
	// Mixed connectives require braces
	checkParseError(t, "A ∧ B ∨ C", 6, 7)
	checkParseError(t, "A → B → C", 6, 7)
	checkParseError(t, "A ↔ B ∧ C", 6, 7)
}

func Test_ParseInvalid_04(t *testing.T) {
	checkParseError(t, "(A", 2, 2)
	checkParseError(t, "A)", 1, 2)
	checkParseError(t, "A B", 2, 3)
	checkParseError(t, "A ∧", 3, 3)
}

func Test_ParseInvalid_05(t *testing.T) {
	checkParseError(t, "P(a,", 4, 4)
	checkParseError(t, "P(a b)", 4, 5)
	checkParseError(t, "P()", 2, 3)
	checkParseError(t, "∀ (P)", 2, 3)
	checkParseError(t, "∀x,", 3, 3)
}

func Test_FirstOrder_01(t *testing.T) {
	parser := New()
	//
	stmt, err := parser.Parse("A ∧ ¬A")
	assert.NoError(t, err)
	assert.Equal(t, "(A ∧ ¬A)", stmt.String())
}

func Test_FirstOrder_02(t *testing.T) {
	var errs source.Errors
	//
	stmt, err := New().Parse("A ∧ B ∨ C")
	assert.True(t, stmt == nil)
	assert.True(t, errors.As(err, &errs))
	assert.Equal(t, 1, len(errs))
	assert.Equal(t, "braces required", errs[0].Message())
}

func checkParse(t *testing.T, input string, expected string) {
	t.Helper()
	//
	stmt, errs := Parse(input)
	//
	if len(errs) != 0 {
		t.Fatalf("parsing \"%s\" failed: %s", input, errs[0].Message())
	}
	//
	assert.Equal(t, expected, stmt.String())
}

func checkParseError(t *testing.T, input string, start int, end int) {
	t.Helper()
	//
	stmt, errs := Parse(input)
	//
	if len(errs) == 0 {
		t.Fatalf("parsing \"%s\" should have failed (got %s)", input, stmt.String())
	}
	//
	span := errs[0].Span()
	assert.Equal(t, start, span.Start(), input)
	assert.Equal(t, end, span.End(), input)
}
