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

package parser

import "seehuhn.de/go/fea/token"

// parseGlyphValue parses one glyph reference: a bare glyph name, a CID
// (\123), or a named glyph class reference (@name). This is the atom that
// glyph-class literals and rule positions are built from (spec.md §4.1).
func (p *Parser) parseGlyphValue() {
	switch p.nth(0) {
	case token.GlyphClassName:
		p.sink.StartNode(token.GlyphClassRefNode)
		p.bump(token.Bad)
		p.sink.FinishNode()
	case token.Cid:
		p.bump(token.Bad)
	case token.Ident, token.GlyphName:
		if p.nth(1) == token.Hyphen {
			// `A - Z` glyph range: both endpoints are children of one
			// GlyphRangeNode, so ast.GlyphAtom.Name/RangeEnd can read them
			// back off the same node.
			p.sink.StartNode(token.GlyphRangeNode)
			p.expectRemap(token.Ident, token.GlyphName)
			p.bump(token.Bad) // hyphen
			p.expectRemap(token.Ident, token.GlyphName)
			p.sink.FinishNode()
			return
		}
		p.sink.StartNode(token.GlyphNameNode)
		p.expectRemap(token.Ident, token.GlyphName)
		p.sink.FinishNode()
	default:
		p.errorf("expected glyph name, class, or CID, found %s", p.nth(0))
		p.bump(token.Bad)
	}
}

// parseGlyphClassValue parses a glyph-class-valued expression: a single
// glyph value, or a bracketed list `[ g1 g2 g3-g9 @other ]` (spec.md §4.1,
// §2 GlyphClass).
func (p *Parser) parseGlyphClassValue() {
	if !p.at(token.LBracket) {
		p.parseGlyphValue()
		return
	}
	p.sink.StartNode(token.GlyphClassLiteralNode)
	p.expect(token.LBracket)
	for !p.at(token.RBracket) && !p.atEOF() {
		p.parseGlyphValue()
	}
	p.expect(token.RBracket)
	p.sink.FinishNode()
}

// parseNumberLike consumes a Number or Float token (optionally preceded by
// a bare '-' the lexer did not fold into the literal).
func (p *Parser) parseNumberLike() {
	if p.at(token.Hyphen) {
		p.bump(token.Bad)
	}
	if p.at(token.Number) || p.at(token.Float) {
		p.bump(token.Bad)
		return
	}
	p.errorf("expected number, found %s", p.nth(0))
}

// parseAnchor parses `<anchor x y>`, `<anchor NULL>`, or `<anchor name>`
// (anchorDef reference) (spec.md §2 anchor, §4.1).
func (p *Parser) parseAnchor() {
	p.sink.StartNode(token.AnchorNode)
	p.expect(token.LAngle)
	p.expect(token.KwAnchor)
	switch {
	case p.at(token.KwNull) || p.at(token.KwNULL):
		p.bump(token.Bad)
	case p.at(token.Number) || p.at(token.Hyphen):
		p.parseNumberLike()
		p.parseNumberLike()
		if p.at(token.KwContourpoint) {
			p.bump(token.Bad)
			p.parseNumberLike()
		}
	default:
		p.sink.StartNode(token.AnchorRefNode)
		p.expectRemap(token.Ident, token.Ident)
		p.sink.FinishNode()
	}
	p.expect(token.RAngle)
	p.sink.FinishNode()
}

// parseValueRecord parses a GPOS value record: `<xPla yPla xAdv yAdv>`, the
// abbreviated single-number advance form, `<NULL>`, or a bare identifier
// referencing a valueRecordDef (spec.md §2 ValueRecord, §4.1).
func (p *Parser) parseValueRecord() {
	p.sink.StartNode(token.ValueRecordNode)
	switch {
	case p.at(token.LAngle):
		p.bump(token.Bad)
		if p.at(token.KwNull) || p.at(token.KwNULL) {
			p.bump(token.Bad)
		} else {
			for i := 0; i < 4 && (p.at(token.Number) || p.at(token.Hyphen)); i++ {
				p.parseNumberLike()
			}
			if p.at(token.LAngle) {
				// device-table subrecords; preserved as flat tokens
				// (spec.md's device adjustments are a lowering concern, not
				// a parse-time one).
				for !p.at(token.RAngle) && !p.atEOF() {
					p.bump(token.Bad)
				}
			}
		}
		p.expect(token.RAngle)
	case p.at(token.Number) || p.at(token.Hyphen):
		p.parseNumberLike()
	case p.at(token.Ident):
		p.sink.StartNode(token.ValueRecordRefNode)
		p.bump(token.Bad)
		p.sink.FinishNode()
	default:
		p.errorf("expected value record, found %s", p.nth(0))
	}
	p.sink.FinishNode()
}

// atRuleBoundary reports whether the parser has reached a token that cannot
// start another glyph/value-record/anchor position, i.e. the run of
// positions in the current rule statement is over.
func (p *Parser) atRuleBoundary() bool {
	switch p.nth(0) {
	case token.Semi, token.KwBy, token.KwFrom, token.RBrace:
		return true
	}
	return p.atEOF()
}

// parsePosition parses one position in a GSUB/GPOS rule's input/context
// sequence: a glyph value, optionally followed by a single-quote marking it
// as part of the input sequence of a contextual rule (spec.md §2's
// "marked" input glyphs), and — for GPOS contextual rules — an inline value
// record or anchor attachment.
func (p *Parser) parsePosition(isPos bool) {
	p.parseGlyphClassValue()
	if p.at(token.Quote) {
		p.bump(token.Bad)
		for p.at(token.KwLookup) {
			p.sink.StartNode(token.LookupRefNode)
			p.bump(token.Bad)
			p.expectRemap(token.Ident, token.Ident)
			p.sink.FinishNode()
		}
	}
	if isPos && p.at(token.LAngle) && p.nth(1) == token.KwAnchor {
		p.parseAnchor()
		return
	}
	if isPos && (p.at(token.LAngle) || p.at(token.Number) || p.at(token.Hyphen)) {
		p.parseValueRecord()
	}
}

// peekStatement returns the significant-token kinds from the current
// position up to (but not including) the statement-terminating semicolon,
// without consuming anything. It is used to classify a rule's shape (spec.md
// §2's GSUB/GPOS subtypes) before the node kind is known, since StartNode
// must be told the kind up front.
func (p *Parser) peekStatement() []token.Kind {
	var kinds []token.Kind
	i := p.pos
	for i < len(p.items) {
		k := p.items[i].Kind
		if !k.IsTrivia() {
			if k == token.Semi || k == token.EOF {
				break
			}
			kinds = append(kinds, k)
		}
		i++
	}
	return kinds
}

func containsKind(kinds []token.Kind, k token.Kind) bool {
	for _, x := range kinds {
		if x == k {
			return true
		}
	}
	return false
}

// countGlyphPositionsBeforeBy returns the number of top-level glyph
// positions (names, classes, CIDs at bracket depth 0) before the first `by`
// or `from` keyword, used to tell a single substitution from a ligature
// substitution (one input position vs. several).
func countGlyphPositionsBeforeBy(kinds []token.Kind) int {
	depth := 0
	count := 0
	for _, k := range kinds {
		switch k {
		case token.KwBy, token.KwFrom:
			return count
		case token.LBracket:
			if depth == 0 {
				count++
			}
			depth++
		case token.RBracket:
			depth--
		default:
			if depth == 0 && (k == token.Ident || k == token.GlyphName || k == token.GlyphClassName || k == token.Cid) {
				count++
			}
		}
	}
	return count
}

// classifyGsubRule determines the GSUB rule subtype from the statement's
// keyword shape, matching the fea-rs rule grammar's discrimination between
// single/multiple/alternate/ligature/context/chaining-context/reverse-
// chaining-single substitutions.
func classifyGsubRule(isReverse bool, kinds []token.Kind) token.Kind {
	switch {
	case isReverse:
		return token.GsubType8Node
	case containsKind(kinds, token.KwFrom):
		return token.GsubType3Node
	case containsKind(kinds, token.Quote):
		return token.GsubType6Node
	case containsKind(kinds, token.KwBy) && countGlyphPositionsBeforeBy(kinds) > 1:
		return token.GsubType4Node
	case containsKind(kinds, token.KwBy):
		for i, k := range kinds {
			if k == token.KwBy && countTopLevelPositions(kinds[i+1:]) > 1 {
				return token.GsubType2Node
			}
		}
		return token.GsubType1Node
	default:
		return token.GsubType5Node
	}
}

// parseGsubRule parses a `substitute`/`sub`/`reversesub`/`rsub` statement.
// The precise rule shape (single, multiple, alternate, ligature, context,
// chaining context, or reverse chaining single) is discriminated by
// peeking the statement's keyword shape before the node is opened, matching
// the productions in fea-rs's rule grammar; the resulting CST node kind
// records that classification for the ast/compile layers.
func (p *Parser) parseGsubRule() {
	isReverse := p.at(token.KwReversesub) || p.at(token.KwRsub)
	kind := classifyGsubRule(isReverse, p.peekStatement())

	p.sink.StartNode(kind)
	p.bump(token.Bad) // sub/substitute/rsub/reversesub

	for !p.atRuleBoundary() {
		p.parsePosition(false)
	}

	if p.at(token.KwBy) || p.at(token.KwFrom) {
		p.bump(token.Bad)
		for !p.atRuleBoundary() {
			p.parseGlyphClassValue()
		}
	}
	p.expect(token.Semi)
	p.sink.FinishNode()
}

// countTopLevelPositions counts glyph positions at bracket depth 0 in a GPOS
// statement's keyword shape, used to tell a single adjustment from a pair
// adjustment.
func countTopLevelPositions(kinds []token.Kind) int {
	depth := 0
	count := 0
	for _, k := range kinds {
		switch k {
		case token.LBracket:
			if depth == 0 {
				count++
			}
			depth++
		case token.RBracket:
			depth--
		default:
			if depth == 0 && (k == token.Ident || k == token.GlyphName || k == token.GlyphClassName || k == token.Cid) {
				count++
			}
		}
	}
	return count
}

// classifyGposRule determines the GPOS rule subtype from the statement's
// leading keyword and overall shape.
func classifyGposRule(isCursive, isBase bool, kinds []token.Kind) token.Kind {
	isLig := containsKind(kinds, token.KwLigComponent)
	isMark := containsKind(kinds, token.KwMark)
	switch {
	case isCursive:
		return token.GposType3Node
	case isLig:
		return token.GposType5Node
	case isBase && isMark:
		return token.GposType4Node
	case isMark && !isBase:
		return token.GposType6Node
	case containsKind(kinds, token.Quote):
		return token.GposType8Node
	case countTopLevelPositions(kinds) > 1:
		return token.GposType2Node
	default:
		return token.GposType1Node
	}
}

// parseGposRule parses a `position`/`pos` statement, classified the same
// way parseGsubRule classifies GSUB rules.
func (p *Parser) parseGposRule() {
	stmt := p.peekStatement()
	isCursive := len(stmt) > 1 && stmt[1] == token.Ident && p.currentTextAt(1) == "cursive"
	isBase := len(stmt) > 1 && stmt[1] == token.KwBase
	kind := classifyGposRule(isCursive, isBase, stmt)

	p.sink.StartNode(kind)
	p.bump(token.Bad) // pos/position

	if isCursive || isBase {
		p.bump(token.Bad)
	}

	if isCursive {
		// `cursive <glyphs> <entryAnchor> <exitAnchor>;` - exactly two
		// anchors follow the covered glyphs with no glyph token between
		// them, unlike every other gpos rule shape.
		p.parseGlyphClassValue()
		p.parseAnchor()
		p.parseAnchor()
		p.expect(token.Semi)
		p.sink.FinishNode()
		return
	}

	for !p.atRuleBoundary() {
		switch {
		case p.at(token.KwLigComponent):
			p.bump(token.Bad)
		case p.at(token.KwMark):
			p.bump(token.Bad)
			if p.at(token.GlyphClassName) {
				p.parseGlyphValue()
			}
		case p.at(token.LAngle) && p.nth(1) == token.KwAnchor:
			// An anchor following `ligComponent`/`mark` with no glyph
			// token before it (mark-to-base/ligature/mark record shape).
			p.parseAnchor()
		default:
			p.parsePosition(true)
		}
	}
	p.expect(token.Semi)
	p.sink.FinishNode()
}

// parseIgnoreRule parses `ignore sub ...;` / `ignore pos ...;` / `ignore
// substitute ...;` / `ignore position ...;`.
func (p *Parser) parseIgnoreRule() {
	isPos := p.currentTextAt(1) == "position" || p.currentTextAt(1) == "pos"
	kind := token.GsubIgnoreNode
	if isPos {
		kind = token.GposIgnoreNode
	}
	p.sink.StartNode(kind)
	p.bump(token.Bad) // ignore
	p.bump(token.Bad) // sub/pos keyword
	for !p.at(token.Semi) && !p.atEOF() {
		p.parsePosition(false)
		if p.at(token.Comma) {
			p.bump(token.Bad)
		}
	}
	p.expect(token.Semi)
	p.sink.FinishNode()
}
