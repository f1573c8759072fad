// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package graph holds the closed node/relationship label sets, deterministic
// id derivation, and the arena-style snapshot the rest of the ingestion
// pipeline builds up phase by phase.
//
// Nodes and relationships reference each other by id string only. There are
// no back-pointers and no cycles in the Go object graph itself, regardless of
// what the underlying CONTAINS/CALLS graph looks like.
package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
)

// NodeLabel is the closed set of node kinds this pipeline produces.
type NodeLabel string

const (
	LabelProject     NodeLabel = "Project"
	LabelPackage     NodeLabel = "Package"
	LabelModule      NodeLabel = "Module"
	LabelFolder      NodeLabel = "Folder"
	LabelFile        NodeLabel = "File"
	LabelClass       NodeLabel = "Class"
	LabelFunction    NodeLabel = "Function"
	LabelMethod      NodeLabel = "Method"
	LabelVariable    NodeLabel = "Variable"
	LabelInterface   NodeLabel = "Interface"
	LabelEnum        NodeLabel = "Enum"
	LabelDecorator   NodeLabel = "Decorator"
	LabelImport      NodeLabel = "Import"
	LabelType        NodeLabel = "Type"
	LabelCodeElement NodeLabel = "CodeElement"
	LabelCommunity   NodeLabel = "Community"
	LabelProcess     NodeLabel = "Process"
)

// RelType is the closed set of relationship kinds this pipeline produces.
type RelType string

const (
	RelContains       RelType = "CONTAINS"
	RelDefines        RelType = "DEFINES"
	RelImports        RelType = "IMPORTS"
	RelCalls          RelType = "CALLS"
	RelExtends        RelType = "EXTENDS"
	RelImplements     RelType = "IMPLEMENTS"
	RelMemberOf       RelType = "MEMBER_OF"
	RelStepInProcess  RelType = "STEP_IN_PROCESS"
)

// Reason tags attached to resolved CALLS/EXTENDS/IMPLEMENTS edges, explaining
// how the resolver arrived at the target.
const (
	ReasonImportResolved     = "import-resolved"
	ReasonSameFile           = "same-file"
	ReasonFuzzyGlobal        = "fuzzy-global"
	ReasonFuzzyGlobalAmbig   = "fuzzy-global-ambiguous"
	ReasonStructuralContains = "structural-contains"
	ReasonStructuralDefines  = "structural-defines"
	ReasonStructuralImport   = "structural-import"
	ReasonCommunityMember    = "community-member"
	ReasonProcessStep        = "process-step"
)

// Confidence tiers from spec section 3 invariant 5.
const (
	ConfidenceResolved     = 1.0
	ConfidenceFuzzySingle  = 0.8
	ConfidenceFuzzyAmbigMax = 0.5
	ConfidenceFuzzyAmbigMin = 0.3
)

// Node is a single entity in the code knowledge graph. Once inserted into a
// Snapshot it is never mutated, and Snapshot offers no way to remove it.
type Node struct {
	ID         string
	Label      NodeLabel
	Name       string
	FilePath   string
	StartLine  int
	EndLine    int
	Language   string
	IsExported bool
	// Props carries label-specific attributes (heuristicLabel, cohesion,
	// symbolCount for Community; stepCount for Process; signature for
	// Function/Method) without growing the struct for every label.
	Props map[string]any
}

// Relationship is a directed, immutable edge between two node ids.
type Relationship struct {
	ID         string
	SourceID   string
	TargetID   string
	Type       RelType
	Confidence float64
	Reason     string
	Step       *int
}

// DeriveNodeID computes the deterministic node id mandated by spec invariant 1:
// stable given exactly (label, filePath, name), independent of line/column so
// that id churn never comes from the parser tightening a span boundary.
func DeriveNodeID(label NodeLabel, filePath, name string) string {
	h := sha256.New()
	h.Write([]byte(label))
	h.Write([]byte{0})
	h.Write([]byte(filePath))
	h.Write([]byte{0})
	h.Write([]byte(name))
	return hex.EncodeToString(h.Sum(nil))[:32]
}

// DeriveRelID computes a deterministic relationship id so duplicate emission
// (e.g. the same CALLS edge observed from two sub-batches) coalesces instead
// of duplicating.
func DeriveRelID(relType RelType, sourceID, targetID, reason string) string {
	h := sha256.New()
	h.Write([]byte(relType))
	h.Write([]byte{0})
	h.Write([]byte(sourceID))
	h.Write([]byte{0})
	h.Write([]byte(targetID))
	h.Write([]byte{0})
	h.Write([]byte(reason))
	return hex.EncodeToString(h.Sum(nil))[:32]
}

// Snapshot is the arena: every node and relationship produced by the
// pipeline so far, indexed by id. It is the orchestrator's exclusive-write
// resource — workers never touch it directly (spec section 5).
type Snapshot struct {
	mu    sync.Mutex
	nodes map[string]*Node
	rels  map[string]*Relationship
	// order preserves insertion order for deterministic snapshot export.
	nodeOrder []string
	relOrder  []string
}

// NewSnapshot creates an empty graph snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		nodes: make(map[string]*Node),
		rels:  make(map[string]*Relationship),
	}
}

// AddNode inserts a node if its id is not already present. Returns false if
// the node already existed (callers treat this as an idempotent upsert, not
// an error, since the same definition may be revisited across sub-batches).
func (s *Snapshot) AddNode(n *Node) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.nodes[n.ID]; exists {
		return false
	}
	s.nodes[n.ID] = n
	s.nodeOrder = append(s.nodeOrder, n.ID)
	return true
}

// AddRelationship inserts a relationship if both endpoints exist in the
// snapshot (invariant 2) and the id is not already present. Returns an error
// if an endpoint is missing so the resolver can log a Resolution-miss rather
// than silently corrupt the graph.
func (s *Snapshot) AddRelationship(r *Relationship) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[r.SourceID]; !ok {
		return fmt.Errorf("relationship %s: source node %s does not exist", r.ID, r.SourceID)
	}
	if _, ok := s.nodes[r.TargetID]; !ok {
		return fmt.Errorf("relationship %s: target node %s does not exist", r.ID, r.TargetID)
	}
	if _, exists := s.rels[r.ID]; exists {
		return nil
	}
	s.rels[r.ID] = r
	s.relOrder = append(s.relOrder, r.ID)
	return nil
}

// GetNode returns the node with the given id, if present.
func (s *Snapshot) GetNode(id string) (*Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[id]
	return n, ok
}

// HasNode reports whether a node id exists.
func (s *Snapshot) HasNode(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.nodes[id]
	return ok
}

// Nodes returns all nodes in insertion order. The returned slice is a fresh
// copy safe for the caller to mutate.
func (s *Snapshot) Nodes() []*Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Node, 0, len(s.nodeOrder))
	for _, id := range s.nodeOrder {
		out = append(out, s.nodes[id])
	}
	return out
}

// Relationships returns all relationships in insertion order.
func (s *Snapshot) Relationships() []*Relationship {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Relationship, 0, len(s.relOrder))
	for _, id := range s.relOrder {
		out = append(out, s.rels[id])
	}
	return out
}

// RelationshipsByType returns every relationship of a given type, in
// insertion order. Used by the Community and Process processors to build
// their restricted subgraphs.
func (s *Snapshot) RelationshipsByType(t RelType) []*Relationship {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Relationship
	for _, id := range s.relOrder {
		r := s.rels[id]
		if r.Type == t {
			out = append(out, r)
		}
	}
	return out
}

// NodeCount returns the number of distinct nodes currently in the snapshot.
func (s *Snapshot) NodeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nodes)
}

// RelationshipCount returns the number of distinct relationships currently
// in the snapshot.
func (s *Snapshot) RelationshipCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rels)
}
