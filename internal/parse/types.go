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

// Package parse implements the Parser and Extractor (spec 4.4): a parser
// pool of non-shared tree-sitter parsers, one per worker, each running a
// language-specific extraction over its sub-batch of files.
package parse

import "github.com/securityphoenix/gitnexus/internal/graph"

// Definition is a single symbol-definition descriptor captured from a parsed
// file (spec 4.4 step 4): a class/interface/function/method/enum/type
// declaration with its name and source span.
type Definition struct {
	Label      graph.NodeLabel
	Name       string
	StartLine  int
	EndLine    int
	IsExported bool
	// Enclosing is the name of the definition this one is nested inside
	// (e.g. a Method's receiver/class), empty for top-level definitions.
	Enclosing string
}

// Import is a single import statement captured from a parsed file: the
// source specifier as written, plus any local alias.
type Import struct {
	Source string
	Alias  string
	Line   int
}

// CallSite is a single call expression captured from a parsed file: the
// callee name (spec 4.4: "enclosing-function info when determinable").
type CallSite struct {
	CalleeName string
	// Enclosing is the name of the innermost function/method/arrow
	// definition containing this call site, empty if the call is at
	// top-level (attributed to the File node per spec section 9).
	Enclosing string
	Line      int
}

// HeritageClause is a single extends/implements relationship captured from a
// parsed file (spec 4.7).
type HeritageClause struct {
	ChildName  string
	ParentName string
	Kind       HeritageKind
	Line       int
}

// HeritageKind distinguishes class inheritance from interface implementation.
type HeritageKind string

const (
	HeritageExtends    HeritageKind = "extends"
	HeritageImplements HeritageKind = "implements"
)

// ExtractedRecord is the per-file bag of everything a worker pulled out of
// one file's syntax tree (spec section 3: ExtractedRecord).
type ExtractedRecord struct {
	FilePath    string
	Definitions []Definition
	Imports     []Import
	Calls       []CallSite
	Heritage    []HeritageClause
	// ParseFailed marks a Parse-failure (spec section 7): the grammar
	// reported a syntax error, but whatever could be extracted still was.
	ParseFailed bool
}

// noiseBlacklist is the built-in noise filter for calls (spec 4.4): common
// stdlib/collection/logging calls and language keywords that are never
// meaningful symbol resolution targets.
//
// extractTSCalleeName (ts_extract.go) resolves a member_expression call to
// its bare "property" child text, discarding the receiver — console.log(...)
// and require("x").log(...) both surface as the callee name "log". The JS/TS
// entries below are keyed the same way (property name only, no receiver) so
// they actually match what the extractor emits; a qualified key like
// "console.log" would never match a callee name of "log" and would silently
// never filter anything.
var noiseBlacklist = map[string]bool{
	// JS/TS
	"log": true, "error": true, "warn": true, "info": true, "debug": true,
	"setTimeout": true, "setInterval": true, "clearTimeout": true,
	"clearInterval": true, "require": true, "stringify": true, "parse": true,
	"keys": true, "values": true, "entries": true, "assign": true,
	"isArray": true, "from": true, "max": true, "min": true,
	"floor": true, "ceil": true, "round": true, "random": true,
	"map": true, "filter": true, "reduce": true, "forEach": true, "push": true, "pop": true,
	"slice": true, "splice": true, "join": true, "concat": true, "includes": true, "indexOf": true,
	"toString": true, "valueOf": true, "hasOwnProperty": true,

	// Python
	"print": true, "len": true, "range": true, "enumerate": true, "zip": true, "map__py": true,
	"isinstance": true, "issubclass": true, "super": true, "str": true, "int": true, "float": true,
	"list": true, "dict": true, "set": true, "tuple": true, "open": true, "input": true,
	"sorted": true, "reversed": true, "getattr": true, "setattr": true, "hasattr": true,

	// Go
	"append": true, "make": true, "new": true, "panic": true, "recover": true, "println": true, "Println": true,
	"delete": true, "copy": true, "close": true, "cap": true,
}

// IsNoiseCall reports whether a callee name should be filtered out before
// emission (spec 4.4 noise filter).
func IsNoiseCall(name string) bool {
	return noiseBlacklist[name]
}
