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
	"strings"

	"github.com/consensys/go-truthtree/pkg/logic"
	"github.com/consensys/go-truthtree/pkg/util"
	"github.com/consensys/go-truthtree/pkg/util/collection/set"
)

// OpenTerminator marks a branch as open (i.e. satisfiable).
const OpenTerminator = "◯"

// ClosedTerminator marks a branch as closed by a contradiction.
const ClosedTerminator = "×"

// NodeID identifies a node within a tree.  Identifiers are stable for the
// lifetime of a node, and are never shared by two live nodes.
type NodeID uint

// Node represents a single line of a truth tree.  Nodes are owned by their
// tree, and can only be modified through it.
type Node struct {
	id        NodeID
	text      string
	statement logic.Statement
	premise   bool
	// Structural links
	parent   util.Option[NodeID]
	children []NodeID
	// The statement this node was derived from (if any).
	antecedent util.Option[NodeID]
	// For a statement, the nodes derived from it.  For a terminator, the
	// statements it references.
	decomposition *set.SortedSet[NodeID]
	// Constants introduced above this node.
	universe Universe
	// Cached subset of the decomposition which is correct, or nil if not yet
	// determined.
	correct *set.SortedSet[NodeID]
}

func newNode(id NodeID) *Node {
	return &Node{
		id:            id,
		decomposition: set.NewSortedSet[NodeID](),
		universe:      Inherited(),
	}
}

// ID returns the identifier of this node.
func (p *Node) ID() NodeID {
	return p.id
}

// Text returns the raw text of this node.
func (p *Node) Text() string {
	return p.text
}

// Statement returns the statement this node's text represents, or nil if the
// text is empty or could not be parsed.
func (p *Node) Statement() logic.Statement {
	return p.statement
}

// IsPremise checks whether this node is a premise of the tree.
func (p *Node) IsPremise() bool {
	return p.premise
}

// Parent returns the parent of this node, which is empty only for the root.
func (p *Node) Parent() util.Option[NodeID] {
	return p.parent
}

// Children returns the children of this node in order.
func (p *Node) Children() []NodeID {
	return p.children
}

// Antecedent returns the node this node was derived from, if any.
func (p *Node) Antecedent() util.Option[NodeID] {
	return p.antecedent
}

// Decomposition returns the nodes this node decomposes into or, for a
// terminator, the nodes it references.
func (p *Node) Decomposition() []NodeID {
	return p.decomposition.ToArray()
}

// IsTerminator checks whether this node terminates its branch.
func (p *Node) IsTerminator() bool {
	return p.IsOpenTerminator() || p.IsClosedTerminator()
}

// IsOpenTerminator checks whether this node marks its branch as open.
func (p *Node) IsOpenTerminator() bool {
	return strings.TrimSpace(p.text) == OpenTerminator
}

// IsClosedTerminator checks whether this node marks its branch as closed.
func (p *Node) IsClosedTerminator() bool {
	return strings.TrimSpace(p.text) == ClosedTerminator
}

// IsEmpty checks whether this node has no text (ignoring whitespace).
func (p *Node) IsEmpty() bool {
	return strings.TrimSpace(p.text) == ""
}
