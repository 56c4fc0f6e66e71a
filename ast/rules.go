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

package ast

import (
	"seehuhn.de/go/fea/syntax"
	"seehuhn.de/go/fea/token"
)

// Rule is a generic view over any GSUB/GPOS rule node, or an `ignore`
// statement. Callers switch on Kind() to decide which further accessors
// (Positions, Replacement, Anchors, ...) make sense, the same way the
// compile package's lowering switches over gtab.Subtable's concrete types.
type Rule struct{ N *syntax.Node }

// Kind reports the rule's CST node kind (GsubType1Node, GposType4Node,
// GsubIgnoreNode, ...).
func (r Rule) Kind() token.Kind { return r.N.Kind() }

// Positions returns the rule's input glyph-class positions, in order,
// skipping `by`/`from` and everything after (the replacement side). For
// contextual rules (GsubType5Node, GsubType6Node, GposType8Node) this
// includes every position, marked or not — a position is "marked" when it
// is directly followed by a single-quote in the source (spec.md §2's
// "marked" input glyphs select the glyphs a nested lookup applies to);
// inline `lookup <name>;` references immediately following a marked
// position attach to that position specifically.
func (r Rule) Positions() []RulePosition {
	var out []RulePosition
	children := r.N.NonTrivia()
	for i := 0; i < len(children); i++ {
		c := children[i]
		switch c.Kind() {
		case token.KwBy, token.KwFrom:
			return out
		case token.GlyphClassLiteralNode, token.GlyphNameNode,
			token.GlyphRangeNode, token.GlyphClassRefNode:
			n, ok := c.(*syntax.Node)
			if !ok {
				continue
			}
			pos := RulePosition{Value: GlyphClassValue{N: n}}
			j := i + 1
			if j < len(children) && children[j].Kind() == token.Quote {
				pos.Marked = true
				j++
				for j < len(children) {
					ln, ok := children[j].(*syntax.Node)
					if !ok || ln.Kind() != token.LookupRefNode {
						break
					}
					pos.Lookups = append(pos.Lookups, LookupRef{N: ln})
					j++
				}
			}
			out = append(out, pos)
			i = j - 1
		}
	}
	return out
}

// Replacement returns the glyph-class values listed after `by`/`from`, in
// order (the output side of a substitution).
func (r Rule) Replacement() []GlyphClassValue {
	var out []GlyphClassValue
	seenBy := false
	for _, c := range r.N.NonTrivia() {
		if c.Kind() == token.KwBy || c.Kind() == token.KwFrom {
			seenBy = true
			continue
		}
		if !seenBy {
			continue
		}
		switch c.Kind() {
		case token.GlyphClassLiteralNode, token.GlyphNameNode,
			token.GlyphRangeNode, token.GlyphClassRefNode:
			if n, ok := c.(*syntax.Node); ok {
				out = append(out, GlyphClassValue{N: n})
			}
		}
	}
	return out
}

// Anchors returns every <anchor ...> value appearing directly in the rule,
// in document order (mark-attachment rules carry one or more).
func (r Rule) Anchors() []Anchor {
	var out []Anchor
	for _, c := range r.N.NonTrivia() {
		if n, ok := c.(*syntax.Node); ok && n.Kind() == token.AnchorNode {
			out = append(out, Anchor{N: n})
		}
	}
	return out
}

// MarkClassRefs returns the `@markClassName` references used by a mark
// attachment rule (after `mark`).
func (r Rule) MarkClassRefs() []string {
	var out []string
	afterMark := false
	for _, c := range r.N.NonTrivia() {
		if c.Kind() == token.KwMark {
			afterMark = true
			continue
		}
		if afterMark && c.Kind() == token.GlyphClassRefNode {
			if n, ok := c.(*syntax.Node); ok {
				out = append(out, GlyphAtom{N: n}.ClassName())
				afterMark = false
			}
		}
	}
	return out
}

// MarkAnchorEntry is one (anchor, mark class) pair in a mark-attachment
// rule, in document order. NewComponent marks the first entry following a
// `ligComponent` boundary, letting a mark-to-ligature rule's anchors be
// grouped back into per-component sets.
type MarkAnchorEntry struct {
	Anchor       Anchor
	ClassName    string
	NewComponent bool
}

// MarkAnchors returns every (anchor, markClass) pair in a mark-attachment
// rule (GposType4Node, GposType5Node, GposType6Node), in document order.
func (r Rule) MarkAnchors() []MarkAnchorEntry {
	var out []MarkAnchorEntry
	var pending *Anchor
	newComponent := true
	for _, c := range r.N.NonTrivia() {
		switch c.Kind() {
		case token.KwLigComponent:
			newComponent = true
		case token.AnchorNode:
			if n, ok := c.(*syntax.Node); ok {
				a := Anchor{N: n}
				pending = &a
			}
		case token.GlyphClassRefNode:
			n, ok := c.(*syntax.Node)
			if !ok || pending == nil {
				continue
			}
			for _, cc := range n.NonTrivia() {
				if tok, ok := cc.(syntax.Token); ok && tok.Kind() == token.GlyphClassName {
					out = append(out, MarkAnchorEntry{Anchor: *pending, ClassName: tok.Text, NewComponent: newComponent})
					pending = nil
					newComponent = false
				}
			}
		}
	}
	return out
}

// ValueRecords returns every ValueRecordNode appearing directly in the
// rule, in document order (GPOS single/pair adjustments carry one or two).
func (r Rule) ValueRecords() []ValueRecord {
	var out []ValueRecord
	for _, c := range r.N.NonTrivia() {
		if n, ok := c.(*syntax.Node); ok && n.Kind() == token.ValueRecordNode {
			out = append(out, ValueRecord{N: n})
		}
	}
	return out
}

// LookupRefs returns the named-lookup references attached to marked
// positions of a chaining contextual rule.
func (r Rule) LookupRefs() []LookupRef {
	var out []LookupRef
	for _, c := range r.N.NonTrivia() {
		if n, ok := c.(*syntax.Node); ok && n.Kind() == token.LookupRefNode {
			out = append(out, LookupRef{N: n})
		}
	}
	return out
}

// RulePosition is one glyph-class position in a rule's input sequence.
type RulePosition struct {
	Value   GlyphClassValue
	Marked  bool
	Lookups []LookupRef
}

// ValueRecord is a GPOS `<xPlacement yPlacement xAdvance yAdvance>`,
// abbreviated single-number, `<NULL>`, or named-reference value.
type ValueRecord struct{ N *syntax.Node }

// IsNull reports whether the value record is `<NULL>`.
func (v ValueRecord) IsNull() bool {
	for _, c := range v.N.NonTrivia() {
		if c.Kind() == token.KwNull || c.Kind() == token.KwNULL {
			return true
		}
	}
	return false
}

// IsRef reports whether the value record is a bare identifier referencing
// a valueRecordDef.
func (v ValueRecord) IsRef() bool {
	for _, c := range v.N.NonTrivia() {
		if c.Kind() == token.ValueRecordRefNode {
			return true
		}
	}
	return false
}

// RefName returns the valueRecordDef name for an IsRef value record.
func (v ValueRecord) RefName() string {
	for _, c := range v.N.NonTrivia() {
		if n, ok := c.(*syntax.Node); ok && n.Kind() == token.ValueRecordRefNode {
			return nthIdentText(n, 0)
		}
	}
	return ""
}

// Numbers returns the record's numeric fields in order: either a single
// advance value, or xPlacement/yPlacement/xAdvance/yAdvance.
func (v ValueRecord) Numbers() []string { return numberTokens(v.N) }

// ScriptStmt is a `script <tag>;` statement inside a feature block.
type ScriptStmt struct{ N *syntax.Node }

// Tag returns the script tag.
func (s ScriptStmt) Tag() string { return nthTagText(s.N, 0) }

// LanguageStmt is a `language <tag> [exclude_dflt|include_dflt];`
// statement.
type LanguageStmt struct{ N *syntax.Node }

// Tag returns the language tag.
func (s LanguageStmt) Tag() string { return nthTagText(s.N, 0) }

// ExcludeDflt reports whether `exclude_dflt` was given.
func (s LanguageStmt) ExcludeDflt() bool {
	for _, c := range s.N.NonTrivia() {
		if c.Kind() == token.KwExcludeDflt {
			return true
		}
	}
	return false
}

// SubtableStmt is an explicit `subtable;` break statement.
type SubtableStmt struct{ N *syntax.Node }

// LookupflagStmt is a `lookupflag ...;` statement; its payload is kept as
// flat tokens and interpreted by the compile package, since the flag
// grammar (bare numeric value vs. a space-separated list of named flags,
// optionally followed by `UseMarkFilteringSet @class`) is a lowering
// concern rather than a parse-time one.
type LookupflagStmt struct{ N *syntax.Node }

// Tokens returns the statement's flag payload tokens, in order, excluding
// the leading `lookupflag` keyword and the terminating semicolon.
func (s LookupflagStmt) Tokens() []syntax.Token {
	var out []syntax.Token
	for _, c := range s.N.NonTrivia() {
		if c.Kind() == token.Semi || c.Kind() == token.KwLookupflag {
			continue
		}
		if tok, ok := c.(syntax.Token); ok {
			out = append(out, tok)
		}
	}
	return out
}

// Table is a `table <tag> { ... } <tag>;` block.
type Table struct{ N *syntax.Node }

// Tag returns the table tag (e.g. "head", "GDEF", "OS/2").
func (t Table) Tag() string { return nthTagText(t.N, 0) }

// Entries returns the table's TableEntryNode children.
func (t Table) Entries() []TableEntry {
	var out []TableEntry
	for _, c := range bodyBetweenBraces(t.N) {
		if n, ok := c.(*syntax.Node); ok && n.Kind() == token.TableEntryNode {
			out = append(out, TableEntry{N: n})
		}
	}
	return out
}

// TableEntry is one field statement inside a table block; its payload is
// preserved as flat tokens, since every table has its own field grammar
// resolved during lowering (spec.md §3 supplemented features).
type TableEntry struct{ N *syntax.Node }

// Tokens returns the entry's non-trivia tokens, excluding the terminating
// semicolon.
func (e TableEntry) Tokens() []syntax.Token {
	var out []syntax.Token
	for _, c := range e.N.NonTrivia() {
		if c.Kind() == token.Semi {
			continue
		}
		if tok, ok := c.(syntax.Token); ok {
			out = append(out, tok)
		}
	}
	return out
}

// AnonBlock is an `anon <tag> { ... raw bytes ... } <tag>;` block.
type AnonBlock struct{ N *syntax.Node }

// Tag returns the anonymous table's tag.
func (a AnonBlock) Tag() string { return nthTagText(a.N, 0) }

// Content returns the raw, verbatim text between the braces.
func (a AnonBlock) Content() string {
	children := a.N.Children()
	start, end := -1, -1
	for i, c := range children {
		if c.Kind() == token.LBrace && start == -1 {
			start = i
		}
		if c.Kind() == token.RBrace {
			end = i
		}
	}
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	var buf []byte
	for _, c := range children[start+1 : end] {
		if tok, ok := c.(syntax.Token); ok {
			buf = append(buf, tok.Text...)
		}
	}
	return string(buf)
}
