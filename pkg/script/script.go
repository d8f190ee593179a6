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
package script

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/consensys/go-truthtree/pkg/tree"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ErrRefused is returned when a tree refuses an edit made by some step.
var ErrRefused = errors.New("edit refused")

// Script is a sequence of edits which, when replayed against a tree, build or
// modify it.  Scripts are written in YAML.
type Script struct {
	// Options to use for the resulting tree (if any).
	Options *tree.Options `yaml:"options,omitempty"`
	// Edits to replay, in order.
	Steps []Step `yaml:"steps"`
}

// Step is a single edit within a script.
type Step struct {
	// Op identifies the kind of edit.
	Op string `yaml:"op"`
	// Node being edited.
	Node Ref `yaml:"node,omitempty"`
	// Label to give a newly inserted node.
	As string `yaml:"as,omitempty"`
	// Text for the edited (or inserted) node.
	Text *string `yaml:"text,omitempty"`
	// Start a new branch (insert-after only).
	Branch bool `yaml:"branch,omitempty"`
	// Statement from which the node is derived (antecedent only).
	Of Ref `yaml:"of,omitempty"`
	// Statements referenced by a terminator (reference only).
	To []Ref `yaml:"to,omitempty"`
}

// Supported kinds of step.
const (
	InsertAfter  = "insert-after"
	InsertBefore = "insert-before"
	Delete       = "delete"
	DeleteBranch = "delete-branch"
	Text         = "text"
	Premise      = "premise"
	Antecedent   = "antecedent"
	Reference    = "reference"
)

// Ref identifies a node within a script, either by its identifier, by a label
// given to it by an earlier step, or as "root".
type Ref struct {
	label string
	id    tree.NodeID
	set   bool
}

// ID constructs a reference to a node by its identifier.
func ID(id tree.NodeID) Ref {
	return Ref{"", id, true}
}

// Label constructs a reference to a node by its label.
func Label(label string) Ref {
	return Ref{label, 0, true}
}

// IsZero determines whether this reference was given.
func (r Ref) IsZero() bool {
	return !r.set
}

func (r Ref) String() string {
	if r.label != "" {
		return r.label
	}
	//
	return strconv.FormatUint(uint64(r.id), 10)
}

// UnmarshalYAML decodes a reference from either an integer or a label.
func (r *Ref) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected node identifier or label", value.Line)
	} else if value.Tag == "!!int" {
		var id uint
		//
		if err := value.Decode(&id); err != nil {
			return fmt.Errorf("line %d: invalid node identifier %q", value.Line, value.Value)
		}
		//
		*r = ID(tree.NodeID(id))
	} else if value.Value == "" {
		return fmt.Errorf("line %d: empty node label", value.Line)
	} else {
		*r = Label(value.Value)
	}
	//
	return nil
}

// MarshalYAML encodes a reference as either an integer or a label.
func (r Ref) MarshalYAML() (any, error) {
	if r.label != "" {
		return r.label, nil
	}
	//
	return uint(r.id), nil
}

// Parse a script from its YAML text.  Unknown fields are rejected, as are
// steps which are missing the fields their kind requires.
func Parse(data []byte) (*Script, error) {
	var script Script
	//
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	//
	if err := decoder.Decode(&script); err != nil {
		return nil, fmt.Errorf("parsing script: %w", err)
	}
	//
	for i, step := range script.Steps {
		if err := step.check(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	//
	return &script, nil
}

// ReadFile reads and parses a script from a given file.
func ReadFile(filename string) (*Script, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	//
	script, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	//
	return script, nil
}

// Encode this script as YAML.
func (p *Script) Encode() ([]byte, error) {
	var buf bytes.Buffer
	//
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	//
	if err := encoder.Encode(p); err != nil {
		return nil, err
	}
	//
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	//
	return buf.Bytes(), nil
}

// Build replays this script against a fresh tree.
func (p *Script) Build(parser tree.Parser, substitutions map[string]string) (*tree.Tree, map[string]tree.NodeID,
	error) {
	t := tree.Empty(parser)
	labels, err := p.Apply(t, substitutions)
	//
	return t, labels, err
}

// Apply replays this script against a given tree, stopping at the first step
// which the tree refuses.  Substitutions are applied to the text of every
// step, such that (for example) "forall" can be written for "∀".  The labels
// given to nodes by the script are returned.  Options in the script are set
// before any step is replayed, except that locking them is deferred until all
// steps are complete.
func (p *Script) Apply(t *tree.Tree, substitutions map[string]string) (map[string]tree.NodeID, error) {
	var (
		labels   = map[string]tree.NodeID{"root": t.Root()}
		replacer = newReplacer(substitutions)
	)
	//
	if p.Options != nil {
		unlocked := *p.Options
		unlocked.LockedOptions = false
		//
		if !t.SetOptions(unlocked) {
			return labels, fmt.Errorf("setting options: %w", ErrRefused)
		}
	}
	//
	for i, step := range p.Steps {
		if err := step.apply(t, labels, replacer); err != nil {
			return labels, fmt.Errorf("step %d (%s): %w", i+1, step.Op, err)
		}
		//
		log.Debugf("applied step %d (%s %s)", i+1, step.Op, step.Node)
	}
	//
	if p.Options != nil && p.Options.LockedOptions && !t.SetOptions(*p.Options) {
		return labels, fmt.Errorf("locking options: %w", ErrRefused)
	}
	//
	return labels, nil
}

func (p *Step) check() error {
	inserting := p.Op == InsertAfter || p.Op == InsertBefore
	//
	switch p.Op {
	case InsertAfter, InsertBefore, Delete, DeleteBranch, Premise:
		// fine
	case Text:
		if p.Text == nil {
			return errors.New("missing text")
		}
	case Antecedent:
		if p.Of.IsZero() {
			return errors.New("missing antecedent")
		}
	case Reference:
		if len(p.To) == 0 {
			return errors.New("missing references")
		}
	case "":
		return errors.New("missing op")
	default:
		return fmt.Errorf("unknown op %q", p.Op)
	}
	//
	switch {
	case p.Node.IsZero():
		return errors.New("missing node")
	case p.Branch && p.Op != InsertAfter:
		return fmt.Errorf("%s cannot start a branch", p.Op)
	case p.As != "" && !inserting:
		return fmt.Errorf("%s cannot label a node", p.Op)
	case p.Text != nil && !inserting && p.Op != Text:
		return fmt.Errorf("%s cannot set text", p.Op)
	case !p.Of.IsZero() && p.Op != Antecedent:
		return fmt.Errorf("%s has no antecedent", p.Op)
	case len(p.To) > 0 && p.Op != Reference:
		return fmt.Errorf("%s has no references", p.Op)
	case p.As == "root":
		return errors.New("label \"root\" is reserved")
	}
	//
	return nil
}

func (p *Step) apply(t *tree.Tree, labels map[string]tree.NodeID, replacer *strings.Replacer) error {
	id, err := resolve(p.Node, labels)
	if err != nil {
		return err
	}
	//
	switch p.Op {
	case InsertAfter:
		var ok bool
		//
		if id, ok = t.InsertAfter(id, p.Branch); !ok {
			return ErrRefused
		} else if p.Branch {
			// New branch is always the last child
			node, _ := t.Node(id)
			children := node.Children()
			id = children[len(children)-1]
		}
		//
		return p.label(t, id, labels, replacer)
	case InsertBefore:
		var ok bool
		//
		if id, ok = t.InsertBefore(id); !ok {
			return ErrRefused
		}
		//
		labels["root"] = t.Root()
		//
		return p.label(t, id, labels, replacer)
	case Delete:
		if _, ok := t.DeleteNode(id); !ok {
			return ErrRefused
		}
		//
		forget(t, labels)
	case DeleteBranch:
		if _, ok := t.DeleteBranch(id); !ok {
			return ErrRefused
		}
		//
		forget(t, labels)
	case Text:
		if !t.SetText(id, replacer.Replace(*p.Text)) {
			return ErrRefused
		}
	case Premise:
		if !t.TogglePremise(id) {
			return ErrRefused
		}
	case Antecedent:
		antecedent, err := resolve(p.Of, labels)
		if err != nil {
			return err
		} else if !t.SetAntecedent(id, antecedent) {
			return ErrRefused
		}
	case Reference:
		for _, ref := range p.To {
			target, err := resolve(ref, labels)
			if err != nil {
				return err
			} else if !t.ToggleReference(id, target) {
				return ErrRefused
			}
		}
	default:
		panic("unreachable")
	}
	//
	return nil
}

// Label a newly inserted node and set its text, as requested.
func (p *Step) label(t *tree.Tree, id tree.NodeID, labels map[string]tree.NodeID, replacer *strings.Replacer) error {
	if p.As != "" {
		labels[p.As] = id
	}
	//
	if p.Text != nil && !t.SetText(id, replacer.Replace(*p.Text)) {
		return ErrRefused
	}
	//
	return nil
}

func resolve(ref Ref, labels map[string]tree.NodeID) (tree.NodeID, error) {
	if ref.label == "" {
		return ref.id, nil
	} else if id, ok := labels[ref.label]; ok {
		return id, nil
	}
	//
	return 0, fmt.Errorf("unknown label %q", ref.label)
}

// Drop labels of nodes which no longer exist, and keep "root" pointing at the
// root.
func forget(t *tree.Tree, labels map[string]tree.NodeID) {
	for label, id := range labels {
		if _, ok := t.Node(id); !ok {
			delete(labels, label)
		}
	}
	//
	labels["root"] = t.Root()
}

// Construct a replacer which prefers longer patterns over shorter ones.
func newReplacer(substitutions map[string]string) *strings.Replacer {
	var (
		keys  = make([]string, 0, len(substitutions))
		pairs = make([]string, 0, 2*len(substitutions))
	)
	//
	for key := range substitutions {
		if key != "" {
			keys = append(keys, key)
		}
	}
	//
	slices.SortFunc(keys, func(l, r string) int {
		if len(l) != len(r) {
			return len(r) - len(l)
		}
		//
		return strings.Compare(l, r)
	})
	//
	for _, key := range keys {
		pairs = append(pairs, key, substitutions[key])
	}
	//
	return strings.NewReplacer(pairs...)
}
