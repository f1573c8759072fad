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

package pipeline

import (
	"strings"

	"github.com/securityphoenix/gitnexus/internal/community"
	"github.com/securityphoenix/gitnexus/internal/graph"
	"github.com/securityphoenix/gitnexus/internal/metrics"
	"github.com/securityphoenix/gitnexus/internal/parse"
	"github.com/securityphoenix/gitnexus/internal/process"
	"github.com/securityphoenix/gitnexus/internal/resolve"
	"github.com/securityphoenix/gitnexus/internal/structure"
)

// registerDefinitions adds one graph Node per Definition plus a DEFINES edge
// from its enclosing symbol (or the File node, for top-level definitions —
// spec section 9) and registers it in the SymbolTable so later chunks'
// same-file and import-resolved lookups can find it.
func registerDefinitions(snap *graph.Snapshot, symbols *resolve.SymbolTable, filePath, fileNodeID string, defs []parse.Definition) {
	for _, def := range defs {
		id := graph.DeriveNodeID(def.Label, filePath, def.Name)
		snap.AddNode(&graph.Node{
			ID: id, Label: def.Label, Name: def.Name, FilePath: filePath,
			StartLine: def.StartLine, EndLine: def.EndLine, IsExported: def.IsExported,
		})

		parentID := fileNodeID
		if def.Enclosing != "" {
			if enclosingID, ok := symbols.LookupInFile(filePath, def.Enclosing); ok {
				parentID = enclosingID
			}
		}
		relID := graph.DeriveRelID(graph.RelDefines, parentID, id, graph.ReasonStructuralDefines)
		_ = snap.AddRelationship(&graph.Relationship{
			ID: relID, SourceID: parentID, TargetID: id, Type: graph.RelDefines,
			Confidence: 1.0, Reason: graph.ReasonStructuralDefines,
		})

		symbols.Register(filePath, def.Name, id)
	}
}

// registerImports resolves each Import's specifier to a file path and, when
// resolution succeeds and the target is a known File node, records the edge
// both in the ImportMap (for the Call Resolver) and as an IMPORTS
// relationship in the graph.
func registerImports(snap *graph.Snapshot, importMap *resolve.ImportMap, resolver *resolve.ImportResolver, structResult structure.Result, filePath, fileNodeID string, imports []parse.Import) {
	for _, imp := range imports {
		target, ok := resolver.Resolve(filePath, imp.Source)
		if !ok {
			continue
		}
		importMap.Add(filePath, target)
		targetFileID, ok := structResult.FileNodeID[target]
		if !ok {
			continue
		}
		relID := graph.DeriveRelID(graph.RelImports, fileNodeID, targetFileID, graph.ReasonStructuralImport)
		_ = snap.AddRelationship(&graph.Relationship{
			ID: relID, SourceID: fileNodeID, TargetID: targetFileID, Type: graph.RelImports,
			Confidence: 1.0, Reason: graph.ReasonStructuralImport,
		})
	}
}

// resolveCalls resolves every non-noise CallSite in a file against the Call
// Resolver and emits a CALLS edge for each hit. Unresolved calls are
// silently omitted (spec 7's Resolution-miss policy) and only tallied.
func resolveCalls(snap *graph.Snapshot, m *metrics.Registry, symbols *resolve.SymbolTable, resolver *resolve.CallResolver, filePath, fileNodeID string, calls []parse.CallSite, resolvedCount, unresolvedCount *int) {
	for _, call := range calls {
		if parse.IsNoiseCall(call.CalleeName) {
			continue
		}
		sourceID := fileNodeID
		if call.Enclosing != "" {
			if id, ok := symbols.LookupInFile(filePath, call.Enclosing); ok {
				sourceID = id
			}
		}
		resolution, ok := resolver.Resolve(filePath, call.CalleeName)
		if !ok {
			*unresolvedCount++
			continue
		}
		relID := graph.DeriveRelID(graph.RelCalls, sourceID, resolution.TargetID, resolution.Reason)
		if err := snap.AddRelationship(&graph.Relationship{
			ID: relID, SourceID: sourceID, TargetID: resolution.TargetID, Type: graph.RelCalls,
			Confidence: resolution.Confidence, Reason: resolution.Reason,
		}); err == nil {
			*resolvedCount++
			m.ObserveCallResolved(resolution.Reason)
		}
	}
}

// resolveHeritage resolves every HeritageClause's parent name and emits an
// EXTENDS or IMPLEMENTS edge, chosen by resolve.RelTypeFor from the clause
// kind alone.
func resolveHeritage(snap *graph.Snapshot, symbols *resolve.SymbolTable, resolver *resolve.HeritageResolver, filePath string, clauses []parse.HeritageClause, resolvedCount *int) {
	for _, h := range clauses {
		childID, ok := symbols.LookupInFile(filePath, h.ChildName)
		if !ok {
			continue
		}
		resolution, ok := resolver.Resolve(filePath, h.ParentName)
		if !ok {
			continue
		}
		if _, ok := snap.GetNode(resolution.TargetID); !ok {
			continue
		}
		relType := resolve.RelTypeFor(string(h.Kind))
		relID := graph.DeriveRelID(relType, childID, resolution.TargetID, resolution.Reason)
		if err := snap.AddRelationship(&graph.Relationship{
			ID: relID, SourceID: childID, TargetID: resolution.TargetID, Type: relType,
			Confidence: resolution.Confidence, Reason: resolution.Reason,
		}); err == nil {
			*resolvedCount++
		}
	}
}

// applyCommunities materializes community.Detect's results as Community
// nodes and MEMBER_OF edges, and returns the node-id -> community-id and
// community-id -> heuristic-label maps the Process Processor needs.
func applyCommunities(snap *graph.Snapshot, results []community.Result) (communityOf, communityNames map[string]string) {
	communityOf = make(map[string]string)
	communityNames = make(map[string]string)

	for _, r := range results {
		// DeriveNodeID's contract is (label, filePath, name); there is no
		// natural filePath for a Community, so the sorted member-id list
		// (already unique per community) stands in for it, keeping ids
		// stable across re-runs that reach the same partition.
		id := graph.DeriveNodeID(graph.LabelCommunity, strings.Join(r.Members, ","), r.Name)
		snap.AddNode(&graph.Node{
			ID: id, Label: graph.LabelCommunity, Name: r.Name,
			Props: map[string]any{
				"heuristicLabel": r.HeuristicLabel,
				"cohesion":       r.Cohesion,
				"symbolCount":    len(r.Members),
			},
		})
		communityNames[id] = r.HeuristicLabel
		for _, member := range r.Members {
			communityOf[member] = id
			relID := graph.DeriveRelID(graph.RelMemberOf, member, id, graph.ReasonCommunityMember)
			_ = snap.AddRelationship(&graph.Relationship{
				ID: relID, SourceID: member, TargetID: id, Type: graph.RelMemberOf,
				Confidence: 1.0, Reason: graph.ReasonCommunityMember,
			})
		}
	}
	return communityOf, communityNames
}

// applyProcesses materializes process.Detect's results as Process nodes and
// STEP_IN_PROCESS edges, returning the count crossing >= 2 communities
// (spec 4.9's separate observability metric).
func applyProcesses(snap *graph.Snapshot, results []process.Result) int {
	crossCommunity := 0
	for _, r := range results {
		stepIDs := make([]string, len(r.Steps))
		for i, s := range r.Steps {
			stepIDs[i] = s.NodeID
		}
		id := graph.DeriveNodeID(graph.LabelProcess, strings.Join(stepIDs, ","), r.Name)
		snap.AddNode(&graph.Node{
			ID: id, Label: graph.LabelProcess, Name: r.Name,
			Props: map[string]any{
				"stepCount":      len(r.Steps),
				"crossCommunity": r.CrossCommunity,
			},
		})
		for idx, s := range r.Steps {
			step := idx
			relID := graph.DeriveRelID(graph.RelStepInProcess, s.NodeID, id, graph.ReasonProcessStep)
			_ = snap.AddRelationship(&graph.Relationship{
				ID: relID, SourceID: s.NodeID, TargetID: id, Type: graph.RelStepInProcess,
				Confidence: s.Confidence, Reason: graph.ReasonProcessStep, Step: &step,
			})
		}
		if r.CrossCommunity {
			crossCommunity++
		}
	}
	return crossCommunity
}

// countDeadSymbols implements SPEC_FULL section 12's dead-symbol
// observability metric: code-symbol nodes with zero in-degree and zero
// out-degree under CALLS.
func countDeadSymbols(snap *graph.Snapshot) int {
	eligible := map[graph.NodeLabel]bool{
		graph.LabelFunction: true, graph.LabelMethod: true,
		graph.LabelClass: true, graph.LabelInterface: true,
	}
	degree := make(map[string]int)
	for _, r := range snap.RelationshipsByType(graph.RelCalls) {
		degree[r.SourceID]++
		degree[r.TargetID]++
	}

	count := 0
	for _, n := range snap.Nodes() {
		if !eligible[n.Label] {
			continue
		}
		if degree[n.ID] == 0 {
			count++
		}
	}
	return count
}

// crossCommunityCallRatio computes the fraction of resolved CALLS edges
// whose endpoints fall in different communities (SPEC_FULL section 12).
func crossCommunityCallRatio(snap *graph.Snapshot, communityOf map[string]string) float64 {
	calls := snap.RelationshipsByType(graph.RelCalls)
	if len(calls) == 0 {
		return 0
	}
	cross := 0
	for _, r := range calls {
		if communityOf[r.SourceID] != communityOf[r.TargetID] {
			cross++
		}
	}
	return float64(cross) / float64(len(calls))
}
