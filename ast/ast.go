// seehuhn.de/go/fea - a compiler for the Adobe OpenType Feature File language
// Copyright (C) 2024  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package ast provides typed, read-only views over a syntax.Node tree
// (spec.md §4.3). A view never owns or copies tree data; it is a thin
// wrapper that knows how to pick apart one particular node shape. This
// mirrors the teacher's closed tagged union of gtab.Subtable
// implementations (Gsub1_1, Gpos2_1, ...), dispatched by a type switch
// rather than by virtual methods — here the switch is on token.Kind instead
// of a Go type, since every view wraps the same underlying *syntax.Node.
package ast

import (
	"strings"

	"seehuhn.de/go/fea/syntax"
	"seehuhn.de/go/fea/token"
)

// File is the root of a parsed (and include-expanded) document.
type File struct{ N *syntax.Node }

// NewFile wraps a parsed root node.
func NewFile(n *syntax.Node) File { return File{N: n} }

// TopLevelItems returns every non-trivia direct child of the root: language
// system declarations, glyph class defs, markClass/anchorDef/
// valueRecordDef statements, feature blocks, named lookup blocks, table
// blocks, and anonymous blocks (spec.md §2 Root).
func (f File) TopLevelItems() []syntax.Element { return f.N.NonTrivia() }

// LanguageSystem is a `languagesystem <script> <language>;` declaration.
type LanguageSystem struct{ N *syntax.Node }

// Script returns the script tag.
func (ls LanguageSystem) Script() string { return nthTagText(ls.N, 0) }

// Language returns the language tag.
func (ls LanguageSystem) Language() string { return nthTagText(ls.N, 1) }

// GlyphClassDef is a `@name = <glyph class>;` statement.
type GlyphClassDef struct{ N *syntax.Node }

// Name returns the class name, including the leading '@'.
func (d GlyphClassDef) Name() string {
	for _, c := range d.N.NonTrivia() {
		if c.Kind() == token.GlyphClassName {
			if tok, ok := c.(syntax.Token); ok {
				return tok.Text
			}
		}
	}
	return ""
}

// Value returns the glyph-class-valued expression being assigned.
func (d GlyphClassDef) Value() GlyphClassValue {
	items := d.N.NonTrivia()
	for i, c := range items {
		if c.Kind() == token.GlyphClassName && i > 0 {
			// the name being defined, not a reference inside the value;
			// the value starts right after the '=' that follows it.
			continue
		}
	}
	for _, c := range items {
		switch c.Kind() {
		case token.GlyphClassLiteralNode, token.GlyphNameNode,
			token.GlyphRangeNode, token.GlyphClassRefNode:
			if n, ok := c.(*syntax.Node); ok {
				return GlyphClassValue{N: n}
			}
		}
	}
	return GlyphClassValue{}
}

// GlyphClassValue is any glyph-class-valued expression: a single glyph
// name, a glyph range, a named class reference, or a bracketed literal
// list of any of those (spec.md §2 GlyphClass).
type GlyphClassValue struct{ N *syntax.Node }

// IsZero reports whether the view wraps no node (a malformed or
// unrecognized value).
func (v GlyphClassValue) IsZero() bool { return v.N == nil }

// Elements returns the atoms (names, ranges, class refs) making up the
// value. For a bracketed literal this is every bracketed element; for a
// bare value it is a single-element slice containing the value itself.
func (v GlyphClassValue) Elements() []GlyphAtom {
	if v.N == nil {
		return nil
	}
	if v.N.Kind() != token.GlyphClassLiteralNode {
		return []GlyphAtom{{N: v.N}}
	}
	var out []GlyphAtom
	for _, c := range v.N.NonTrivia() {
		if n, ok := c.(*syntax.Node); ok {
			out = append(out, GlyphAtom{N: n})
		}
	}
	return out
}

// GlyphAtom is one atomic glyph reference: a name, a name-name range, or a
// named class reference.
type GlyphAtom struct{ N *syntax.Node }

// Kind reports which of GlyphNameNode / GlyphRangeNode / GlyphClassRefNode
// this atom is.
func (a GlyphAtom) Kind() token.Kind { return a.N.Kind() }

// Name returns the glyph name for a GlyphNameNode, or the first endpoint's
// name for a GlyphRangeNode.
func (a GlyphAtom) Name() string {
	for _, c := range a.N.NonTrivia() {
		if tok, ok := c.(syntax.Token); ok && tok.Kind() == token.GlyphName {
			return tok.Text
		}
	}
	return ""
}

// RangeEnd returns the second endpoint's name for a GlyphRangeNode.
func (a GlyphAtom) RangeEnd() string {
	names := a.N.ChildrenOfKind(token.GlyphName)
	if len(names) < 2 {
		return ""
	}
	if tok, ok := names[1].(syntax.Token); ok {
		return tok.Text
	}
	return ""
}

// ClassName returns the referenced class's name (including the leading
// '@') for a GlyphClassRefNode.
func (a GlyphAtom) ClassName() string {
	for _, c := range a.N.NonTrivia() {
		if tok, ok := c.(syntax.Token); ok && tok.Kind() == token.GlyphClassName {
			return tok.Text
		}
	}
	return ""
}

// FeatureBlock is a `feature <tag> { ... } <tag>;` block.
type FeatureBlock struct{ N *syntax.Node }

// Tag returns the feature tag.
func (f FeatureBlock) Tag() string { return nthTagText(f.N, 0) }

// UseExtension reports whether the block is marked `useExtension`.
func (f FeatureBlock) UseExtension() bool {
	for _, c := range f.N.NonTrivia() {
		if c.Kind() == token.KwUseExtension {
			return true
		}
	}
	return false
}

// Statements returns the block body's non-trivia children, excluding the
// opening/closing tag tokens and brace.
func (f FeatureBlock) Statements() []syntax.Element {
	return bodyBetweenBraces(f.N)
}

// LookupBlock is a named `lookup <name> { ... } <name>;` definition.
type LookupBlock struct{ N *syntax.Node }

// Name returns the lookup's name.
func (l LookupBlock) Name() string { return nthIdentText(l.N, 0) }

// Statements returns the block body's non-trivia children.
func (l LookupBlock) Statements() []syntax.Element { return bodyBetweenBraces(l.N) }

// LookupRef is a bare `lookup <name>;` reference statement inside a
// feature or another lookup block.
type LookupRef struct{ N *syntax.Node }

// Name returns the referenced lookup's name.
func (l LookupRef) Name() string { return nthIdentText(l.N, 0) }

// MarkClass is a `markClass <glyphs> <anchor> @name;` statement.
type MarkClass struct{ N *syntax.Node }

// Glyphs returns the glyph-class value the mark glyphs belong to.
func (m MarkClass) Glyphs() GlyphClassValue {
	for _, c := range m.N.NonTrivia() {
		switch c.Kind() {
		case token.GlyphClassLiteralNode, token.GlyphNameNode,
			token.GlyphRangeNode, token.GlyphClassRefNode:
			if n, ok := c.(*syntax.Node); ok {
				return GlyphClassValue{N: n}
			}
		}
	}
	return GlyphClassValue{}
}

// Anchor returns the mark attachment anchor.
func (m MarkClass) Anchor() Anchor {
	for _, c := range m.N.NonTrivia() {
		if c.Kind() == token.AnchorNode {
			if n, ok := c.(*syntax.Node); ok {
				return Anchor{N: n}
			}
		}
	}
	return Anchor{}
}

// ClassName returns the mark class's name, including the leading '@'.
func (m MarkClass) ClassName() string {
	classes := m.N.ChildrenOfKind(token.GlyphClassName)
	if len(classes) == 0 {
		return ""
	}
	if tok, ok := classes[len(classes)-1].(syntax.Token); ok {
		return tok.Text
	}
	return ""
}

// Anchor is an `<anchor x y>`, `<anchor NULL>`, or `<anchor name>` value.
type Anchor struct{ N *syntax.Node }

// IsNull reports whether the anchor is `<anchor NULL>`.
func (a Anchor) IsNull() bool {
	if a.N == nil {
		return true
	}
	for _, c := range a.N.NonTrivia() {
		if c.Kind() == token.KwNull || c.Kind() == token.KwNULL {
			return true
		}
	}
	return false
}

// IsRef reports whether the anchor refers to an anchorDef by name rather
// than giving coordinates inline.
func (a Anchor) IsRef() bool {
	if a.N == nil {
		return false
	}
	for _, c := range a.N.NonTrivia() {
		if c.Kind() == token.AnchorRefNode {
			return true
		}
	}
	return false
}

// RefName returns the anchorDef name for an IsRef anchor.
func (a Anchor) RefName() string {
	for _, c := range a.N.NonTrivia() {
		if n, ok := c.(*syntax.Node); ok && n.Kind() == token.AnchorRefNode {
			return nthIdentText(n, 0)
		}
	}
	return ""
}

// XY returns the inline x, y coordinates for a coordinate anchor.
func (a Anchor) XY() (x, y int, ok bool) {
	nums := numberTokens(a.N)
	if len(nums) < 2 {
		return 0, 0, false
	}
	x, xok := parseSignedInt(nums[0])
	y, yok := parseSignedInt(nums[1])
	return x, y, xok && yok
}

// AnchorDef is a top-level `anchorDef <x> <y> [contourpoint <n>] <name>;`
// statement.
type AnchorDef struct{ N *syntax.Node }

// Name returns the anchor's name.
func (d AnchorDef) Name() string { return lastIdentText(d.N) }

// XY returns the anchor's coordinates.
func (d AnchorDef) XY() (x, y int, ok bool) {
	nums := numberTokens(d.N)
	if len(nums) < 2 {
		return 0, 0, false
	}
	x, xok := parseSignedInt(nums[0])
	y, yok := parseSignedInt(nums[1])
	return x, y, xok && yok
}

// ValueRecordDef is a top-level `valueRecordDef <value record> <name>;`
// statement.
type ValueRecordDef struct{ N *syntax.Node }

// Name returns the defined name.
func (d ValueRecordDef) Name() string { return lastIdentText(d.N) }

// Record reinterprets the definition's node as a ValueRecord view. This
// works because ValueRecord's accessors only look at number, NULL, and
// ValueRecordRefNode children, which ignores the trailing name Ident that
// follows the value in a `valueRecordDef <value record> <name>;`
// statement.
func (d ValueRecordDef) Record() ValueRecord { return ValueRecord{N: d.N} }

// --- small shared helpers ---------------------------------------------

// nthTagText returns the text of the n-th Tag token among n's non-trivia
// children.
func nthTagText(n *syntax.Node, idx int) string {
	tags := n.ChildrenOfKind(token.Tag)
	if idx >= len(tags) {
		return ""
	}
	if tok, ok := tags[idx].(syntax.Token); ok {
		return tok.Text
	}
	return ""
}

// nthIdentText returns the text of the n-th Ident token.
func nthIdentText(n *syntax.Node, idx int) string {
	idents := n.ChildrenOfKind(token.Ident)
	if idx >= len(idents) {
		return ""
	}
	if tok, ok := idents[idx].(syntax.Token); ok {
		return tok.Text
	}
	return ""
}

// lastIdentText returns the text of the last Ident token, used for
// `... name;`-shaped definitions where the name comes last.
func lastIdentText(n *syntax.Node) string {
	idents := n.ChildrenOfKind(token.Ident)
	if len(idents) == 0 {
		return ""
	}
	if tok, ok := idents[len(idents)-1].(syntax.Token); ok {
		return tok.Text
	}
	return ""
}

// numberTokens returns the text of every Number/Float token among n's
// direct non-trivia children, in order, with an immediately preceding
// Hyphen token folded into the text as a sign.
func numberTokens(n *syntax.Node) []string {
	var out []string
	pendingMinus := false
	for _, c := range n.NonTrivia() {
		tok, ok := c.(syntax.Token)
		if !ok {
			continue
		}
		switch tok.Kind() {
		case token.Hyphen:
			pendingMinus = true
		case token.Number, token.Float:
			text := tok.Text
			if pendingMinus {
				text = "-" + text
			}
			out = append(out, text)
			pendingMinus = false
		}
	}
	return out
}

func parseSignedInt(s string) (int, bool) {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	v := 0
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		v = v*10 + int(r-'0')
	}
	if neg {
		v = -v
	}
	return v, true
}

// bodyBetweenBraces returns the non-trivia children of n that lie strictly
// between its first LBrace and matching RBrace.
func bodyBetweenBraces(n *syntax.Node) []syntax.Element {
	children := n.Children()
	start, end := -1, -1
	depth := 0
	for i, c := range children {
		switch c.Kind() {
		case token.LBrace:
			if depth == 0 && start == -1 {
				start = i
			}
			depth++
		case token.RBrace:
			depth--
			if depth == 0 && end == -1 {
				end = i
			}
		}
	}
	if start == -1 || end == -1 || end <= start {
		return nil
	}
	var out []syntax.Element
	for _, c := range children[start+1 : end] {
		if c.Kind().IsTrivia() {
			continue
		}
		out = append(out, c)
	}
	return out
}
