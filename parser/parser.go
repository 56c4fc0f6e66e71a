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

// Package parser turns a lexed feature-file token stream into a lossless
// concrete syntax tree (spec.md §4.2). It is a recursive-descent parser with
// one-token (non-trivia) lookahead, built on the same item/backlog shape as
// seehuhn.de/go/sfnt's opentype/gtab/builder.parser, but driving a
// syntax.TreeSink instead of building gtab.LookupTable values directly, and
// recovering from errors (emitting a Bad-wrapped node and resynchronizing at
// a statement boundary) instead of panicking through a parseError.
package parser

import (
	"fmt"

	"seehuhn.de/go/fea/diag"
	"seehuhn.de/go/fea/lexer"
	"seehuhn.de/go/fea/syntax"
	"seehuhn.de/go/fea/token"
)

// Parser drives a syntax.TreeSink from a flat lexer.Item stream.
type Parser struct {
	items []lexer.Item
	pos   int // index into items of the next item not yet consumed
	sink  syntax.TreeSink
	file  syntax.FileID
	bag   *diag.Bag
}

// New creates a parser over src, reporting diagnostics against file into bag
// and emitting tree events into sink.
func New(src string, file syntax.FileID, bag *diag.Bag, sink syntax.TreeSink) (*Parser, error) {
	items, err := lexer.Lex(src)
	if se, ok := err.(*lexer.SyntaxError); ok {
		bag.Errorf(diag.Syntax, file, syntax.Range{Start: se.Pos, End: se.Pos + 1}, "%s", se.Message)
	} else if err != nil {
		return nil, err
	}
	return &Parser{items: items, sink: sink, file: file, bag: bag}, nil
}

// --- low-level cursor ---------------------------------------------------

// nth returns the kind of the n-th non-trivia token ahead of the cursor
// (0 is "the next significant token").
func (p *Parser) nth(n int) token.Kind {
	i := p.pos
	seen := 0
	for i < len(p.items) {
		if !p.items[i].Kind.IsTrivia() {
			if seen == n {
				return p.items[i].Kind
			}
			seen++
		}
		i++
	}
	return token.EOF
}

func (p *Parser) at(k token.Kind) bool { return p.nth(0) == k }

func (p *Parser) atEOF() bool { return p.nth(0) == token.EOF }

// bump forwards every trivia item plus exactly one significant item to the
// sink, optionally remapping the significant item's reported Kind (used to
// reclassify a bare Ident as a Tag, a glyph name, etc. — spec.md §4.2's
// EatRemap).
func (p *Parser) bump(remap token.Kind) {
	for p.pos < len(p.items) && p.items[p.pos].Kind.IsTrivia() {
		it := p.items[p.pos]
		p.sink.Token(it.Kind, it.Text)
		p.pos++
	}
	if p.pos >= len(p.items) {
		return
	}
	it := p.items[p.pos]
	kind := it.Kind
	if remap != token.Bad {
		kind = remap
	}
	p.sink.Token(kind, it.Text)
	p.pos++
}

// eat consumes the next significant token verbatim, returning its text.
func (p *Parser) eat() string {
	if p.pos < len(p.items) {
		text := p.currentText()
		p.bump(token.Bad)
		return text
	}
	return ""
}

// currentText returns the text of the next significant token without
// consuming anything.
func (p *Parser) currentText() string {
	i := p.pos
	for i < len(p.items) && p.items[i].Kind.IsTrivia() {
		i++
	}
	if i < len(p.items) {
		return p.items[i].Text
	}
	return ""
}

// currentTextAt returns the text of the n-th significant token ahead of the
// cursor without consuming anything.
func (p *Parser) currentTextAt(n int) string {
	i := p.pos
	seen := 0
	for i < len(p.items) {
		if !p.items[i].Kind.IsTrivia() {
			if seen == n {
				return p.items[i].Text
			}
			seen++
		}
		i++
	}
	return ""
}

func (p *Parser) currentRange() syntax.Range {
	i := p.pos
	pos := 0
	for j := 0; j < i; j++ {
		pos += len(p.items[j].Text)
	}
	for i < len(p.items) && p.items[i].Kind.IsTrivia() {
		pos += len(p.items[i].Text)
		i++
	}
	width := 1
	if i < len(p.items) {
		width = len(p.items[i].Text)
		if width == 0 {
			width = 1
		}
	}
	return syntax.Range{Start: pos, End: pos + width}
}

// expect consumes the next significant token if it has kind k, reporting a
// syntax error and leaving the cursor in place otherwise.
func (p *Parser) expect(k token.Kind) bool {
	if p.at(k) {
		p.bump(token.Bad)
		return true
	}
	p.errorf("expected %s, found %s", k, p.nth(0))
	return false
}

// expectRemap is expect, but reclassifies the consumed token's reported Kind
// to as (e.g. an Ident consumed as a Tag). Where k is Ident, a keyword is
// accepted too, since tags and names such as `mark` spell reserved words.
func (p *Parser) expectRemap(k, as token.Kind) bool {
	next := p.nth(0)
	if next == k || (k == token.Ident && next >= token.KwTable && next <= token.KwAnon) {
		p.bump(as)
		return true
	}
	p.errorf("expected %s, found %s", k, p.nth(0))
	return false
}

func (p *Parser) errorf(format string, args ...any) {
	p.sink.Error(p.currentRange(), fmt.Sprintf(format, args...))
	p.bag.Errorf(diag.Syntax, p.file, p.currentRange(), format, args...)
}

// recoverTo skips significant tokens (wrapping each as a child of the
// current node, via bump) until one of the given kinds is reached or EOF,
// so that a single malformed statement does not derail the rest of the
// file (spec.md §7: diagnostics accumulate, parsing never aborts).
func (p *Parser) recoverTo(stop ...token.Kind) {
	stopSet := token.NewSet(stop...)
	for !p.atEOF() && !stopSet[p.nth(0)] {
		p.bump(token.Bad)
	}
}

// --- entry point ----------------------------------------------------------

// ParseFile parses a complete file's token stream as the content of a single
// Root node (or, for an included file, the node the caller will splice in).
func (p *Parser) ParseFile() {
	p.sink.StartNode(token.Root)
	for !p.atEOF() {
		p.parseTopLevelItem()
	}
	p.bump(token.Bad) // trailing trivia before EOF, if any, plus EOF itself
	p.sink.FinishNode()
}

func (p *Parser) parseTopLevelItem() {
	switch p.nth(0) {
	case token.KwInclude:
		p.parseInclude()
	case token.KwLanguagesystem:
		p.parseLanguageSystem()
	case token.GlyphClassName:
		p.parseGlyphClassDef()
	case token.KwMarkClass:
		p.parseMarkClass()
	case token.KwAnchorDef:
		p.parseAnchorDef()
	case token.KwValueRecordDef:
		p.parseValueRecordDef()
	case token.KwFeature:
		p.parseFeatureBlock()
	case token.KwLookup:
		p.parseLookupBlock()
	case token.KwTable:
		p.parseTable()
	case token.KwAnon:
		p.parseAnonBlock()
	default:
		p.errorf("unexpected token %s at top level", p.nth(0))
		p.recoverTo(token.KwInclude, token.KwLanguagesystem, token.GlyphClassName,
			token.KwMarkClass, token.KwAnchorDef, token.KwValueRecordDef,
			token.KwFeature, token.KwLookup, token.KwTable, token.KwAnon)
	}
}

// parseInclude handles `include(path);`.
func (p *Parser) parseInclude() {
	p.sink.StartNode(token.IncludeNode)
	p.expect(token.KwInclude)
	if p.at(token.LParen) {
		p.bump(token.Bad)
		for !p.at(token.RParen) && !p.atEOF() {
			p.bump(token.Bad)
		}
		p.expect(token.RParen)
	}
	p.expect(token.Semi)
	p.sink.FinishNode()
}

// parseLanguageSystem handles `languagesystem <script> <language>;`.
func (p *Parser) parseLanguageSystem() {
	p.sink.StartNode(token.LanguageSystemNode)
	p.expect(token.KwLanguagesystem)
	p.expectRemap(token.Ident, token.Tag)
	p.expectRemap(token.Ident, token.Tag)
	p.expect(token.Semi)
	p.sink.FinishNode()
}

// parseGlyphClassDef handles `@name = <glyph class>;`.
func (p *Parser) parseGlyphClassDef() {
	p.sink.StartNode(token.GlyphClassDefNode)
	p.expect(token.GlyphClassName)
	p.expect(token.Equals)
	p.parseGlyphClassValue()
	p.expect(token.Semi)
	p.sink.FinishNode()
}

// parseMarkClass handles `markClass <glyphs> <anchor> @name;`.
func (p *Parser) parseMarkClass() {
	p.sink.StartNode(token.MarkClassNode)
	p.expect(token.KwMarkClass)
	p.parseGlyphClassValue()
	p.parseAnchor()
	p.expect(token.GlyphClassName)
	p.expect(token.Semi)
	p.sink.FinishNode()
}

// parseAnchorDef handles `anchorDef <x> <y> [contourpoint <n>] name;`.
func (p *Parser) parseAnchorDef() {
	p.sink.StartNode(token.AnchorDefNode)
	p.expect(token.KwAnchorDef)
	p.parseNumberLike()
	p.parseNumberLike()
	if p.at(token.KwContourpoint) {
		p.bump(token.Bad)
		p.parseNumberLike()
	}
	p.expectRemap(token.Ident, token.Ident)
	p.expect(token.Semi)
	p.sink.FinishNode()
}

// parseValueRecordDef handles `valueRecordDef <value record> name;`.
func (p *Parser) parseValueRecordDef() {
	p.sink.StartNode(token.ValueRecordDefNode)
	p.expect(token.KwValueRecordDef)
	p.parseValueRecord()
	p.expectRemap(token.Ident, token.Ident)
	p.expect(token.Semi)
	p.sink.FinishNode()
}

// parseAnonBlock handles `anon <tag> { ... } <tag>;`.
func (p *Parser) parseAnonBlock() {
	p.sink.StartNode(token.AnonBlockNode)
	p.expect(token.KwAnon)
	p.expectRemap(token.Ident, token.Tag)
	p.expect(token.LBrace)
	depth := 1
	for depth > 0 && !p.atEOF() {
		if p.at(token.LBrace) {
			depth++
		} else if p.at(token.RBrace) {
			depth--
			if depth == 0 {
				break
			}
		}
		p.bump(token.Bad)
	}
	p.expect(token.RBrace)
	p.expectRemap(token.Ident, token.Tag)
	p.expect(token.Semi)
	p.sink.FinishNode()
}

// parseTable handles `table <tag> { ... } <tag>;`.
func (p *Parser) parseTable() {
	p.sink.StartNode(token.TableNode)
	p.expect(token.KwTable)
	p.expectRemap(token.Ident, token.Tag)
	p.expect(token.LBrace)
	for !p.at(token.RBrace) && !p.atEOF() {
		p.parseTableEntry()
	}
	p.expect(token.RBrace)
	p.expectRemap(token.Ident, token.Tag)
	p.expect(token.Semi)
	p.sink.FinishNode()
}

// parseTableEntry parses one `<field> <values...>;` line inside a table
// block. Field-specific structure (head.FontRevision, hhea.Ascender, OS/2's
// many numeric and range fields, name's stringy nameid records, and GDEF's
// GlyphClassDef/Attach/LigatureCaretByPos/MarkAttachClass sub-blocks) is
// resolved by the compile package's table lowering (spec.md §3 supplemented
// features), not by the parser: here every entry is just a flat run of
// tokens up to its terminating semicolon, preserved losslessly.
func (p *Parser) parseTableEntry() {
	p.sink.StartNode(token.TableEntryNode)
	if p.at(token.KwAnchorDef) {
		// GDEF's `Attach` sub-block or similar nested block; pass through.
	}
	if p.at(token.LBrace) {
		depth := 1
		p.bump(token.Bad)
		for depth > 0 && !p.atEOF() {
			if p.at(token.LBrace) {
				depth++
			} else if p.at(token.RBrace) {
				depth--
				if depth == 0 {
					p.bump(token.Bad)
					break
				}
			}
			p.bump(token.Bad)
		}
	} else {
		for !p.at(token.Semi) && !p.atEOF() {
			p.bump(token.Bad)
		}
	}
	p.expect(token.Semi)
	p.sink.FinishNode()
}

// --- feature / lookup blocks ----------------------------------------------

// parseFeatureBlock handles `feature <tag> { ... } <tag>;`.
func (p *Parser) parseFeatureBlock() {
	p.sink.StartNode(token.FeatureNode)
	p.expect(token.KwFeature)
	p.expectRemap(token.Ident, token.Tag)
	p.expect(token.LBrace)
	for !p.at(token.RBrace) && !p.atEOF() {
		p.parseBlockStatement()
	}
	p.expect(token.RBrace)
	p.expectRemap(token.Ident, token.Tag)
	if p.at(token.KwUseExtension) {
		p.bump(token.Bad)
	}
	p.expect(token.Semi)
	p.sink.FinishNode()
}

// parseLookupBlock handles both a named-lookup definition
// (`lookup name { ... } name;`) and a bare lookup reference statement
// (`lookup name;`) inside a feature block; it decides which by peeking at
// the token after the name, matching spec.md §2's NamedLookupBlock vs
// LookupRef distinction.
func (p *Parser) parseLookupBlock() {
	// look ahead past `lookup <name>` to see whether a block follows.
	isRef := p.nth(2) != token.LBrace && p.nth(2) != token.KwUseExtension

	if isRef {
		p.sink.StartNode(token.LookupRefNode)
		p.expect(token.KwLookup)
		p.expectRemap(token.Ident, token.Ident)
		p.expect(token.Semi)
		p.sink.FinishNode()
		return
	}

	p.sink.StartNode(token.LookupBlockNode)
	p.expect(token.KwLookup)
	p.expectRemap(token.Ident, token.Ident)
	if p.at(token.KwUseExtension) {
		p.bump(token.Bad)
	}
	p.expect(token.LBrace)
	for !p.at(token.RBrace) && !p.atEOF() {
		p.parseBlockStatement()
	}
	p.expect(token.RBrace)
	p.expectRemap(token.Ident, token.Ident)
	p.expect(token.Semi)
	p.sink.FinishNode()
}

// parseBlockStatement parses one statement inside a feature or lookup
// block body: script/language/subtable/lookupflag statements, a nested
// named-lookup reference or definition, or a GSUB/GPOS rule.
func (p *Parser) parseBlockStatement() {
	switch p.nth(0) {
	case token.KwScript:
		p.parseScriptStmt()
	case token.KwLanguage:
		p.parseLanguageStmt()
	case token.KwSubtable:
		p.parseSubtableStmt()
	case token.KwLookup:
		p.parseLookupBlock()
	case token.KwLookupflag:
		p.parseLookupflagStmt()
	case token.KwSubstitute, token.KwSub, token.KwReversesub, token.KwRsub:
		p.parseGsubRule()
	case token.KwPosition, token.KwPos:
		p.parseGposRule()
	case token.KwIgnore:
		p.parseIgnoreRule()
	case token.GlyphClassName:
		p.parseGlyphClassDef()
	case token.KwParameters, token.KwFeatureNames, token.KwSizemenuname,
		token.KwCvParameters:
		p.parseFeatureParamStatement()
	default:
		p.errorf("unexpected token %s in block", p.nth(0))
		p.recoverTo(token.Semi, token.RBrace)
		if p.at(token.Semi) {
			p.bump(token.Bad)
		}
	}
}

func (p *Parser) parseScriptStmt() {
	p.sink.StartNode(token.ScriptStmtNode)
	p.expect(token.KwScript)
	p.expectRemap(token.Ident, token.Tag)
	p.expect(token.Semi)
	p.sink.FinishNode()
}

func (p *Parser) parseLanguageStmt() {
	p.sink.StartNode(token.LanguageStmtNode)
	p.expect(token.KwLanguage)
	p.expectRemap(token.Ident, token.Tag)
	for p.at(token.KwExcludeDflt) || p.at(token.KwIncludeDflt) || p.at(token.KwRequired) {
		p.bump(token.Bad)
	}
	p.expect(token.Semi)
	p.sink.FinishNode()
}

func (p *Parser) parseSubtableStmt() {
	p.sink.StartNode(token.SubtableStmtNode)
	p.expect(token.KwSubtable)
	p.expect(token.Semi)
	p.sink.FinishNode()
}

func (p *Parser) parseLookupflagStmt() {
	p.sink.StartNode(token.LookupflagStmtNode)
	p.expect(token.KwLookupflag)
	for !p.at(token.Semi) && !p.atEOF() {
		p.bump(token.Bad)
	}
	p.expect(token.Semi)
	p.sink.FinishNode()
}

// parseFeatureParamStatement handles `parameters`, `featureNames { ... }`,
// `sizemenuname ...`, and `cvParameters { ... }` statements: their payload
// is preserved as flat tokens (or one level of brace nesting) and
// interpreted during lowering.
func (p *Parser) parseFeatureParamStatement() {
	p.sink.StartNode(token.TableEntryNode)
	p.bump(token.Bad)
	if p.at(token.LBrace) {
		depth := 1
		p.bump(token.Bad)
		for depth > 0 && !p.atEOF() {
			if p.at(token.LBrace) {
				depth++
			} else if p.at(token.RBrace) {
				depth--
			}
			p.bump(token.Bad)
			if depth == 0 {
				break
			}
		}
	} else {
		for !p.at(token.Semi) && !p.atEOF() {
			p.bump(token.Bad)
		}
	}
	p.expect(token.Semi)
	p.sink.FinishNode()
}
