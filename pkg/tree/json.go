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
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/consensys/go-truthtree/pkg/util"
	"github.com/consensys/go-truthtree/pkg/util/collection/set"
)

// jsonNode is the serialised form of a node.  Required fields are pointers,
// so that missing fields can be detected.
type jsonNode struct {
	ID            *NodeID             `json:"id"`
	Text          *string             `json:"text"`
	Children      *[]NodeID           `json:"children"`
	Decomposition *[]NodeID           `json:"decomposition"`
	Premise       bool                `json:"premise,omitempty"`
	Parent        util.Option[NodeID] `json:"parent,omitzero"`
	Antecedent    util.Option[NodeID] `json:"antecedent,omitzero"`
}

type jsonTree struct {
	Nodes   []jsonNode `json:"nodes"`
	Options *Options   `json:"options,omitempty"`
}

// Serialize this tree into JSON.  Nodes are written in order of their
// identifiers.
func (t *Tree) Serialize() ([]byte, error) {
	var (
		ids     = t.Nodes()
		options = t.options
		tree    = jsonTree{make([]jsonNode, len(ids)), &options}
	)
	//
	for i, id := range ids {
		var (
			node          = t.nodes[id]
			children      = append(make([]NodeID, 0, len(node.children)), node.children...)
			decomposition = append(make([]NodeID, 0, node.decomposition.Len()), node.decomposition.ToArray()...)
		)
		//
		tree.Nodes[i] = jsonNode{&node.id, &node.text, &children, &decomposition, node.premise, node.parent,
			node.antecedent}
	}
	//
	return json.Marshal(tree)
}

// Deserialize a tree from JSON, using a given parser for the text of each
// node.  This checks the tree has a single root and that all referenced nodes
// exist, but not that the tree is otherwise well formed (see
// CheckRepresentation).
func Deserialize(data []byte, parser Parser) (*Tree, error) {
	var (
		options = DefaultOptions()
		raw     = jsonTree{Options: &options}
	)
	//
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("tree is not in JSON: %w", err)
	} else if len(raw.Nodes) == 0 {
		return nil, errors.New("tree is empty")
	} else if raw.Options == nil {
		raw.Options = &options
	}
	//
	tree := &Tree{
		nodes:   make(map[NodeID]*Node, len(raw.Nodes)),
		leaves:  set.NewSortedSet[NodeID](),
		options: *raw.Options,
		parser:  parser,
	}
	roots := 0
	//
	for i, jn := range raw.Nodes {
		node, err := tree.decodeNode(i, jn)
		if err != nil {
			return nil, err
		}
		//
		if node.parent.IsEmpty() {
			tree.root = node.id
			roots++
		}
		//
		if len(node.children) == 0 {
			tree.leaves.Insert(node.id)
		}
		//
		tree.nodes[node.id] = node
	}
	//
	if roots == 0 {
		return nil, errors.New("tree has no root")
	} else if roots > 1 {
		return nil, errors.New("tree has multiple roots")
	} else if err := tree.checkReferences(); err != nil {
		return nil, err
	} else if err := tree.checkAcyclic(); err != nil {
		return nil, err
	}
	// Load the universe
	tree.propagate(tree.root, nil, true)
	tree.initialised = true
	//
	return tree, nil
}

func (t *Tree) decodeNode(index int, jn jsonNode) (*Node, error) {
	switch {
	case jn.ID == nil:
		return nil, fmt.Errorf("node %d: id not found", index)
	case jn.Text == nil:
		return nil, fmt.Errorf("node %d: text not found", *jn.ID)
	case jn.Children == nil:
		return nil, fmt.Errorf("node %d: children not found", *jn.ID)
	case jn.Decomposition == nil:
		return nil, fmt.Errorf("node %d: decomposition not found", *jn.ID)
	}
	//
	if _, ok := t.nodes[*jn.ID]; ok {
		return nil, fmt.Errorf("node %d: duplicate id", *jn.ID)
	}
	//
	node := newNode(*jn.ID)
	node.text = *jn.Text
	node.statement = t.parse(node.text)
	node.premise = jn.Premise
	node.parent = jn.Parent
	node.children = slices.Clone(*jn.Children)
	node.antecedent = jn.Antecedent
	node.decomposition = set.NewSortedSet(*jn.Decomposition...)
	//
	return node, nil
}

// Check every node referenced from another node exists.
func (t *Tree) checkReferences() error {
	for _, id := range t.Nodes() {
		var (
			node = t.nodes[id]
			refs = slices.Concat(node.children, node.decomposition.ToArray())
		)
		//
		if node.parent.HasValue() {
			refs = append(refs, node.parent.Unwrap())
		}
		//
		if node.antecedent.HasValue() {
			refs = append(refs, node.antecedent.Unwrap())
		}
		//
		for _, ref := range refs {
			if _, ok := t.nodes[ref]; !ok {
				return fmt.Errorf("node %d: references unknown node %d", id, ref)
			}
		}
	}
	//
	return nil
}

// Check neither the parent links nor the child links contain a cycle, since
// otherwise the tree cannot be traversed.
func (t *Tree) checkAcyclic() error {
	var (
		visited = make(map[NodeID]bool)
		stack   = []NodeID{t.root}
	)
	//
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		//
		if visited[id] {
			return fmt.Errorf("node %d: reached twice from root", id)
		}
		//
		visited[id] = true
		stack = append(stack, t.nodes[id].children...)
	}
	//
	for id, node := range t.nodes {
		for steps := 0; node.parent.HasValue(); steps++ {
			if steps > len(t.nodes) {
				return fmt.Errorf("node %d: parent links form a cycle", id)
			}
			//
			node = t.nodes[node.parent.Unwrap()]
		}
	}
	//
	return nil
}
