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

package parse

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/securityphoenix/gitnexus/internal/graph"
)

// extractTSFamily walks a TypeScript or JavaScript syntax tree and produces
// an ExtractedRecord. Grounded on parser_typescript.go's function/method
// walking (walkTSFunctions, extractTSInterface/extractTSClass), with
// heritage-clause extraction newly added (SPEC_FULL.md 4.7 gap: the teacher
// never extracted class_heritage at all).
func extractTSFamily(tree *sitter.Tree, src []byte, filePath string) *ExtractedRecord {
	rec := &ExtractedRecord{FilePath: filePath}
	root := tree.RootNode()
	if root.HasError() {
		rec.ParseFailed = true
	}

	stack := &enclosingStack{}

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "import_statement":
			extractTSImport(n, src, rec)

		case "function_declaration", "generator_function_declaration":
			name := nodeText(n.ChildByFieldName("name"), src)
			rec.Definitions = append(rec.Definitions, Definition{
				Label: graph.LabelFunction, Name: name,
				StartLine: startLine(n), EndLine: endLine(n), IsExported: true,
			})
			stack.push(name)
			walkChildren(n, walk)
			stack.pop()
			return

		case "variable_declarator":
			value := n.ChildByFieldName("value")
			if value != nil && (value.Type() == "arrow_function" || value.Type() == "function_expression") {
				name := nodeText(n.ChildByFieldName("name"), src)
				rec.Definitions = append(rec.Definitions, Definition{
					Label: graph.LabelFunction, Name: name,
					StartLine: startLine(n), EndLine: endLine(n), IsExported: true,
				})
				stack.push(name)
				walkChildren(n, walk)
				stack.pop()
				return
			}

		case "class_declaration":
			name := nodeText(n.ChildByFieldName("name"), src)
			rec.Definitions = append(rec.Definitions, Definition{
				Label: graph.LabelClass, Name: name,
				StartLine: startLine(n), EndLine: endLine(n), IsExported: true,
			})
			extractTSHeritage(n, src, name, rec)
			stack.push(name)
			walkChildren(n, walk)
			stack.pop()
			return

		case "interface_declaration":
			name := nodeText(n.ChildByFieldName("name"), src)
			rec.Definitions = append(rec.Definitions, Definition{
				Label: graph.LabelInterface, Name: name,
				StartLine: startLine(n), EndLine: endLine(n), IsExported: true,
			})
			extractTSInterfaceHeritage(n, src, name, rec)

		case "method_definition":
			name := nodeText(n.ChildByFieldName("name"), src)
			cls := stack.current()
			fullName := name
			if cls != "" {
				fullName = cls + "." + name
			}
			rec.Definitions = append(rec.Definitions, Definition{
				Label: graph.LabelMethod, Name: fullName,
				StartLine: startLine(n), EndLine: endLine(n), IsExported: true,
				Enclosing: cls,
			})
			stack.push(fullName)
			walkChildren(n, walk)
			stack.pop()
			return

		case "type_alias_declaration":
			name := nodeText(n.ChildByFieldName("name"), src)
			rec.Definitions = append(rec.Definitions, Definition{
				Label: graph.LabelType, Name: name,
				StartLine: startLine(n), EndLine: endLine(n), IsExported: true,
			})

		case "enum_declaration":
			name := nodeText(n.ChildByFieldName("name"), src)
			rec.Definitions = append(rec.Definitions, Definition{
				Label: graph.LabelEnum, Name: name,
				StartLine: startLine(n), EndLine: endLine(n), IsExported: true,
			})

		case "call_expression":
			calleeName := extractTSCalleeName(n, src)
			if calleeName != "" && !IsNoiseCall(calleeName) {
				rec.Calls = append(rec.Calls, CallSite{
					CalleeName: calleeName,
					Enclosing:  stack.current(),
					Line:       startLine(n),
				})
			}
		}
		walkChildren(n, walk)
	}
	walk(root)
	return rec
}

func extractTSImport(n *sitter.Node, src []byte, rec *ExtractedRecord) {
	source := n.ChildByFieldName("source")
	if source == nil {
		return
	}
	spec := trimQuotes(nodeText(source, src))
	rec.Imports = append(rec.Imports, Import{Source: spec, Line: startLine(n)})
}

func trimQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'' || first == '`') && first == last {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func extractTSHeritage(classDecl *sitter.Node, src []byte, childName string, rec *ExtractedRecord) {
	var heritage *sitter.Node
	walkChildren(classDecl, func(c *sitter.Node) {
		if c.Type() == "class_heritage" {
			heritage = c
		}
	})
	if heritage == nil {
		return
	}
	walkChildren(heritage, func(c *sitter.Node) {
		switch c.Type() {
		case "extends_clause":
			value := c.ChildByFieldName("value")
			if value == nil {
				// Fall back to scanning named children for an identifier.
				walkChildren(c, func(cc *sitter.Node) {
					if cc.Type() == "identifier" && value == nil {
						value = cc
					}
				})
			}
			if value != nil {
				rec.Heritage = append(rec.Heritage, HeritageClause{
					ChildName: childName, ParentName: nodeText(value, src), Kind: HeritageExtends, Line: startLine(c),
				})
			}
		case "implements_clause":
			walkChildren(c, func(cc *sitter.Node) {
				if cc.Type() == "type_identifier" || cc.Type() == "identifier" {
					rec.Heritage = append(rec.Heritage, HeritageClause{
						ChildName: childName, ParentName: nodeText(cc, src), Kind: HeritageImplements, Line: startLine(c),
					})
				}
			})
		}
	})
}

func extractTSInterfaceHeritage(ifaceDecl *sitter.Node, src []byte, childName string, rec *ExtractedRecord) {
	walkChildren(ifaceDecl, func(c *sitter.Node) {
		if c.Type() != "extends_type_clause" {
			return
		}
		walkChildren(c, func(cc *sitter.Node) {
			if cc.Type() == "type_identifier" {
				rec.Heritage = append(rec.Heritage, HeritageClause{
					ChildName: childName, ParentName: nodeText(cc, src), Kind: HeritageExtends, Line: startLine(c),
				})
			}
		})
	})
}

func extractTSCalleeName(n *sitter.Node, src []byte) string {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return ""
	}
	switch fn.Type() {
	case "identifier":
		return nodeText(fn, src)
	case "member_expression":
		prop := fn.ChildByFieldName("property")
		return nodeText(prop, src)
	default:
		return ""
	}
}
