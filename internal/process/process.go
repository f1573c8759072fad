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

// Package process implements the Process Processor (spec 4.9): detection of
// end-to-end execution flows by bounded depth-first search from entry points
// to terminal sinks across the resolved CALLS graph.
//
// Like internal/community, no equivalent pass exists anywhere in the
// reference pack — axon-go's pipeline calls a ProcessHeritage step at the
// analogous point but its body isn't present in the retrieval pack. This
// package is authored from the spec's algorithm description, reusing the
// community package's errgroup-based parallel-fan-out idiom for the
// per-entry-point DFS sweep.
package process

import (
	"context"
	"path"
	"regexp"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/securityphoenix/gitnexus/internal/graph"
)

// Config tunes the detection run (spec section 6).
type Config struct {
	MaxDepth int
	MinSteps int
}

// DefaultConfig returns spec section 6's defaults.
func DefaultConfig() Config {
	return Config{MaxDepth: 20, MinSteps: 3}
}

var (
	entryPatterns = regexp.MustCompile(`(?i)(^|[/_-])(cli|main|index|handler)([/_.-]|$)`)
	sinkPatterns  = regexp.MustCompile(`(?i)(db|database|sql|http|socket|net|io|fs|file|write|read|query|fetch|request)`)
)

// Step is one node along a detected path, paired with the confidence of the
// CALLS edge that led into it (1.0 for the entry point itself).
type Step struct {
	NodeID     string
	Confidence float64
}

// Result is one detected process: an ordered path of steps from an entry
// point to a terminal.
type Result struct {
	ID              string
	Name            string
	Steps           []Step
	CrossCommunity  bool
	CommunityCount  int
}

// callGraph is the directed adjacency used for entry/terminal classification
// and DFS traversal, restricted to resolved CALLS edges.
type callGraph struct {
	out      map[string][]graph.Relationship
	inDegree map[string]int
	nodes    []string
}

func buildCallGraph(snap *graph.Snapshot) *callGraph {
	cg := &callGraph{
		out:      make(map[string][]graph.Relationship),
		inDegree: make(map[string]int),
	}
	seen := make(map[string]bool)
	addNode := func(id string) {
		if !seen[id] {
			seen[id] = true
			cg.nodes = append(cg.nodes, id)
		}
	}
	for _, r := range snap.RelationshipsByType(graph.RelCalls) {
		if r.SourceID == r.TargetID {
			continue
		}
		addNode(r.SourceID)
		addNode(r.TargetID)
		cg.out[r.SourceID] = append(cg.out[r.SourceID], *r)
		cg.inDegree[r.TargetID]++
	}
	sort.Strings(cg.nodes)
	for _, outs := range cg.out {
		sort.Slice(outs, func(i, j int) bool { return outs[i].TargetID < outs[j].TargetID })
	}
	return cg
}

func matchesPattern(snap *graph.Snapshot, id string, re *regexp.Regexp) bool {
	n, ok := snap.GetNode(id)
	if !ok {
		return false
	}
	return re.MatchString(path.Base(n.FilePath)) || re.MatchString(n.Name)
}

func isEntry(cg *callGraph, snap *graph.Snapshot, id string) bool {
	return (len(cg.out[id]) > 0 && cg.inDegree[id] == 0) || matchesPattern(snap, id, entryPatterns)
}

func isTerminal(cg *callGraph, snap *graph.Snapshot, id string) bool {
	return (cg.inDegree[id] > 0 && len(cg.out[id]) == 0) || matchesPattern(snap, id, sinkPatterns)
}

// rawPath is a DFS-discovered acyclic route from an entry to a terminal.
type rawPath struct {
	steps []Step
}

func (p rawPath) confidenceSum() float64 {
	var sum float64
	for _, s := range p.steps {
		sum += s.Confidence
	}
	return sum
}

// dfsFromEntry performs a bounded, acyclic depth-first search from entry,
// returning every path that reaches a terminal within maxDepth hops.
func dfsFromEntry(cg *callGraph, snap *graph.Snapshot, entry string, maxDepth int) []rawPath {
	var results []rawPath
	visiting := map[string]bool{entry: true}
	path := []Step{{NodeID: entry, Confidence: 1.0}}

	var walk func(node string, depth int)
	walk = func(node string, depth int) {
		if isTerminal(cg, snap, node) && depth > 0 {
			cp := make([]Step, len(path))
			copy(cp, path)
			results = append(results, rawPath{steps: cp})
		}
		if depth >= maxDepth {
			return
		}
		for _, edge := range cg.out[node] {
			next := edge.TargetID
			if visiting[next] {
				continue
			}
			visiting[next] = true
			path = append(path, Step{NodeID: next, Confidence: edge.Confidence})
			walk(next, depth+1)
			path = path[:len(path)-1]
			delete(visiting, next)
		}
	}
	walk(entry, 0)
	return results
}

// Detect runs entry/terminal classification and bounded DFS across snap's
// resolved CALLS graph, ranks candidate paths, and returns the kept Processes
// (spec 4.9 steps 1-5).
//
// communityOf, when non-nil, maps a node id to its community id (as produced
// by internal/community.Detect) and is used to label processes and flag
// cross-community crossings; a nil map (no prior community pass, or a node
// absent from it) degrades CrossCommunity/CommunityCount to their zero
// values without affecting path selection. communityNames maps a community
// id to its heuristic label (internal/community.Result.HeuristicLabel),
// used only for Result.Name display text.
func Detect(ctx context.Context, snap *graph.Snapshot, communityOf, communityNames map[string]string, cfg Config) ([]Result, error) {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultConfig().MaxDepth
	}
	if cfg.MinSteps <= 0 {
		cfg.MinSteps = DefaultConfig().MinSteps
	}

	cg := buildCallGraph(snap)
	if len(cg.nodes) == 0 {
		return nil, nil
	}

	var entries []string
	for _, n := range cg.nodes {
		if isEntry(cg, snap, n) {
			entries = append(entries, n)
		}
	}

	pathsByEntry := make([][]rawPath, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	for i, e := range entries {
		i, e := i, e
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			pathsByEntry[i] = dfsFromEntry(cg, snap, e, cfg.MaxDepth)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []rawPath
	for _, ps := range pathsByEntry {
		for _, p := range ps {
			if len(p.steps) >= cfg.MinSteps {
				all = append(all, p)
			}
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		if len(all[i].steps) != len(all[j].steps) {
			return len(all[i].steps) > len(all[j].steps)
		}
		if all[i].confidenceSum() != all[j].confidenceSum() {
			return all[i].confidenceSum() > all[j].confidenceSum()
		}
		return all[i].steps[0].NodeID < all[j].steps[0].NodeID
	})

	symbolCount := len(cg.nodes)
	maxProcesses := clamp(20, symbolCount/10, 300)
	if len(all) > maxProcesses {
		all = all[:maxProcesses]
	}

	results := make([]Result, 0, len(all))
	for _, p := range all {
		results = append(results, buildResult(snap, communityOf, communityNames, p))
	}
	return results, nil
}

func clamp(lo, v, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func buildResult(snap *graph.Snapshot, communityOf, communityNames map[string]string, p rawPath) Result {
	communities := make(map[string]bool)
	for _, s := range p.steps {
		if c, ok := communityOf[s.NodeID]; ok {
			communities[c] = true
		}
	}

	entryName := nodeName(snap, p.steps[0].NodeID)
	dominant := dominantCommunityName(communityOf, communityNames, p.steps)
	name := entryName
	if dominant != "" {
		name = entryName + " -> " + dominant
	}

	return Result{
		Name:           name,
		Steps:          p.steps,
		CrossCommunity: len(communities) >= 2,
		CommunityCount: len(communities),
	}
}

func nodeName(snap *graph.Snapshot, id string) string {
	if n, ok := snap.GetNode(id); ok {
		return n.Name
	}
	return id
}

// dominantCommunityName returns the heuristic label of the community with
// the most steps in p, used only for display naming (spec 4.9: "labeled
// heuristically by the entry and dominant community names").
func dominantCommunityName(communityOf, communityNames map[string]string, steps []Step) string {
	counts := make(map[string]int)
	for _, s := range steps {
		if c, ok := communityOf[s.NodeID]; ok {
			counts[c]++
		}
	}
	best := ""
	bestCount := 0
	var keys []string
	for c := range counts {
		keys = append(keys, c)
	}
	sort.Strings(keys)
	for _, c := range keys {
		if counts[c] > bestCount {
			best = c
			bestCount = counts[c]
		}
	}
	if best == "" {
		return ""
	}
	return communityNames[best]
}
