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

package compile

import (
	"seehuhn.de/go/fea/ast"
	"seehuhn.de/go/fea/glyph"
	"seehuhn.de/go/fea/opentype/anchor"
	"seehuhn.de/go/fea/opentype/coverage"
	"seehuhn.de/go/fea/opentype/gtab"
	"seehuhn.de/go/fea/syntax"
	"seehuhn.de/go/fea/token"
)

// lowerRule dispatches one GSUB/GPOS rule or ignore statement by its CST
// kind to the builder accumulating the currently open lookup, opening a
// fresh lookup first when the rule shape changed (spec.md §4.5.2-§4.5.4).
func (c *Context) lowerRule(n *syntax.Node) {
	rule := ast.Rule{N: n}
	switch rule.Kind() {
	case token.GsubType1Node:
		c.lowerGsubSingle(rule)
	case token.GsubType2Node:
		c.lowerGsubMultiple(rule)
	case token.GsubType3Node:
		c.lowerGsubAlternate(rule)
	case token.GsubType4Node:
		c.lowerGsubLigature(rule)
	case token.GsubType5Node:
		c.lowerGsubContext(rule)
	case token.GsubType6Node:
		c.lowerChain(rule, token.GsubType6Node)
	case token.GsubType8Node:
		c.lowerGsubReverseChain(rule)
	case token.GsubIgnoreNode:
		c.lowerIgnore(rule, true)
	case token.GposType1Node:
		c.lowerGposSingle(rule)
	case token.GposType2Node:
		c.lowerGposPair(rule)
	case token.GposType3Node:
		c.lowerGposCursive(rule)
	case token.GposType4Node:
		c.lowerGposMarkToBase(rule)
	case token.GposType5Node:
		c.lowerGposMarkToLig(rule)
	case token.GposType6Node:
		c.lowerGposMarkToMark(rule)
	case token.GposType8Node:
		c.lowerChain(rule, token.GposType8Node)
	case token.GposIgnoreNode:
		c.lowerIgnore(rule, false)
	}
}

// --- GSUB ----------------------------------------------------------------

func (c *Context) lowerGsubSingle(rule ast.Rule) {
	positions := rule.Positions()
	repl := rule.Replacement()
	if len(positions) == 0 || len(repl) == 0 {
		return
	}
	from := c.glyphIDsOf(positions[0].Value)
	to := c.glyphIDsOf(repl[0])

	lk := c.ensureLookup(token.GsubType1Node, false)
	b := lk.builder.(*gtab.SingleSubBuilder)
	if len(to) == 1 {
		for _, g := range from {
			b.Add(g, to[0])
		}
		return
	}
	if len(from) == len(to) {
		for i, g := range from {
			b.Add(g, to[i])
		}
	}
}

func (c *Context) lowerGsubMultiple(rule ast.Rule) {
	positions := rule.Positions()
	if len(positions) == 0 {
		return
	}
	from := c.glyphIDsOf(positions[0].Value)
	var to []glyph.ID
	for _, r := range rule.Replacement() {
		to = append(to, c.glyphIDsOf(r)...)
	}
	lk := c.ensureLookup(token.GsubType2Node, false)
	b := lk.builder.(*gtab.MultipleSubBuilder)
	for _, g := range from {
		b.Add(g, to)
	}
}

func (c *Context) lowerGsubAlternate(rule ast.Rule) {
	positions := rule.Positions()
	if len(positions) == 0 {
		return
	}
	from := c.glyphIDsOf(positions[0].Value)
	var alts []glyph.ID
	for _, r := range rule.Replacement() {
		alts = append(alts, c.glyphIDsOf(r)...)
	}
	lk := c.ensureLookup(token.GsubType3Node, false)
	b := lk.builder.(*gtab.AlternateSubBuilder)
	for _, g := range from {
		b.Add(g, alts)
	}
}

func (c *Context) lowerGsubLigature(rule ast.Rule) {
	positions := rule.Positions()
	if len(positions) == 0 {
		return
	}
	repl := rule.Replacement()
	if len(repl) == 0 {
		return
	}
	to := c.glyphIDsOf(repl[0])
	if len(to) == 0 {
		return
	}
	lk := c.ensureLookup(token.GsubType4Node, false)
	b := lk.builder.(*gtab.LigatureSubBuilder)
	c.forEachCombination(positions, func(ids []glyph.ID) {
		if len(ids) == 0 {
			return
		}
		b.Add(ids[0], ids[1:], to[0])
	})
}

// forEachCombination calls fn once per combination of one glyph chosen from
// each position's resolved glyph class, in position order. Most ligature
// and context rules use single-glyph positions (one combination); a
// position written as a bracketed class expands into one combination per
// member, matching the "parallel glyph classes" substitution shape.
func (c *Context) forEachCombination(positions []ast.RulePosition, fn func([]glyph.ID)) {
	classes := make([][]glyph.ID, len(positions))
	for i, p := range positions {
		classes[i] = c.glyphIDsOf(p.Value)
	}
	cur := make([]glyph.ID, len(classes))
	var rec func(i int)
	rec = func(i int) {
		if i == len(classes) {
			out := make([]glyph.ID, len(cur))
			copy(out, cur)
			fn(out)
			return
		}
		for _, g := range classes[i] {
			cur[i] = g
			rec(i + 1)
		}
	}
	rec(0)
}

func (c *Context) lowerGsubContext(rule ast.Rule) {
	positions := rule.Positions()
	if len(positions) == 0 {
		return
	}
	lk := c.ensureLookup(token.GsubType5Node, false)
	b := lk.builder.(*gtab.ContextBuilder)
	c.addContextRules(positions, func(first glyph.ID, rest []glyph.ID, actions gtab.SeqLookups) {
		b.Add(first, rest, actions)
	})
}

// addContextRules expands a contextual rule's marked positions into one
// call to add per combination of input glyphs, attaching each marked
// position's inline `lookup <name>;` references as SeqLookups at that
// position's index into the matched input.
func (c *Context) addContextRules(positions []ast.RulePosition, add func(first glyph.ID, rest []glyph.ID, actions gtab.SeqLookups)) {
	classes := make([][]glyph.ID, len(positions))
	for i, p := range positions {
		classes[i] = c.glyphIDsOf(p.Value)
	}
	var actions gtab.SeqLookups
	for i, p := range positions {
		for _, ref := range p.Lookups {
			if id, ok := c.lookups.ByName(ref.Name()); ok {
				actions = append(actions, gtab.SeqLookup{SequenceIndex: uint16(i), LookupID: id})
			}
		}
	}

	cur := make([]glyph.ID, len(classes))
	var rec func(i int)
	rec = func(i int) {
		if i == len(classes) {
			if len(cur) == 0 {
				return
			}
			rest := make([]glyph.ID, len(cur)-1)
			copy(rest, cur[1:])
			add(cur[0], rest, actions)
			return
		}
		for _, g := range classes[i] {
			cur[i] = g
			rec(i + 1)
		}
	}
	rec(0)
}

// chainParts splits a chaining-context rule's positions into backtrack
// (unmarked positions before the first marked one), input (the contiguous
// run of marked positions), and lookahead (unmarked positions after the
// last marked one) — the standard decomposition of a feature-file chaining
// rule into an OpenType ChainContextFormat1 record.
func chainParts(positions []ast.RulePosition) (backtrack, input, lookahead []ast.RulePosition) {
	first, last := -1, -1
	for i, p := range positions {
		if p.Marked {
			if first == -1 {
				first = i
			}
			last = i
		}
	}
	if first == -1 {
		// no marks at all: the whole sequence is the input, matching a
		// plain (non-contextual) contextual-looking rule.
		return nil, positions, nil
	}
	return positions[:first], positions[first : last+1], positions[last+1:]
}

func (c *Context) lowerGsubReverseChain(rule ast.Rule) {
	positions := rule.Positions()
	backtrackPos, inputPos, lookaheadPos := chainParts(positions)
	if len(inputPos) == 0 {
		return
	}
	from := c.glyphIDsOf(inputPos[0].Value)

	var to []glyph.ID
	for _, r := range rule.Replacement() {
		to = append(to, c.glyphIDsOf(r)...)
	}
	if len(to) == 0 {
		return
	}

	// a reversesub rule's backtrack/lookahead context is per-subtable, not
	// per-glyph, so every distinct context gets its own lookup and
	// subtable rather than sharing the currently open one.
	backtrack := make([]coverage.Set, len(backtrackPos))
	for i, p := range backtrackPos {
		backtrack[i] = setOf(c.glyphIDsOf(p.Value))
	}
	lookahead := make([]coverage.Set, len(lookaheadPos))
	for i, p := range lookaheadPos {
		lookahead[i] = setOf(c.glyphIDsOf(p.Value))
	}

	c.closeLookup()
	lt := &gtab.LookupTable{
		Meta: &gtab.LookupMetaInfo{
			LookupType:       8,
			LookupFlags:      c.curLookupFlags,
			MarkFilteringSet: c.curMarkFilterSetID,
		},
		Name: c.pendingLookupName,
	}
	c.pendingLookupName = ""
	id := c.lookups.Append(lt)

	b := gtab.NewReverseChainSubBuilder(backtrack, lookahead)
	if len(to) == 1 {
		for _, g := range from {
			b.Add(g, to[0])
		}
	} else if len(from) == len(to) {
		for i, g := range from {
			b.Add(g, to[i])
		}
	}
	lt.Subtables = append(lt.Subtables, b.Build())
	c.registerFeatureUse(id)
}

func setOf(ids []glyph.ID) coverage.Set {
	s := coverage.NewSet()
	for _, g := range ids {
		s.Add(g)
	}
	return s
}

func (c *Context) lowerIgnore(rule ast.Rule, gsub bool) {
	positions := rule.Positions()
	backtrackPos, inputPos, lookaheadPos := chainParts(positions)
	if len(inputPos) == 0 {
		inputPos, backtrackPos, lookaheadPos = positions, nil, nil
	}

	kind := token.GsubIgnoreNode
	if !gsub {
		kind = token.GposIgnoreNode
	}
	lk := c.ensureLookup(kind, false)
	b := lk.builder.(*gtab.ChainBuilder)

	backtrack := make([][]glyph.ID, len(backtrackPos))
	for i, p := range backtrackPos {
		backtrack[i] = c.glyphIDsOf(p.Value)
	}
	lookahead := make([][]glyph.ID, len(lookaheadPos))
	for i, p := range lookaheadPos {
		lookahead[i] = c.glyphIDsOf(p.Value)
	}

	c.forEachChainCombination(backtrack, inputPos, lookahead, func(first glyph.ID, rest, bt, la []glyph.ID) {
		// an `ignore` rule matches the context but applies no action: an
		// empty SeqLookups list suppresses the lookup it would otherwise
		// participate in, per spec.md §4.2's "ignore rules short-circuit".
		b.Add(first, rest, bt, la, nil)
	})
}

// forEachChainCombination enumerates every combination of the input
// positions' resolved glyph classes with every backtrack and lookahead
// glyph combination, calling fn once per combination; the backtrack
// sequence is passed in source reading order, as ChainedContextRule keeps
// it.
func (c *Context) forEachChainCombination(backtrack [][]glyph.ID, input []ast.RulePosition, lookahead [][]glyph.ID, fn func(first glyph.ID, rest, bt, la []glyph.ID)) {
	inClasses := make([][]glyph.ID, len(input))
	for i, p := range input {
		inClasses[i] = c.glyphIDsOf(p.Value)
	}

	var recBT func(i int, acc []glyph.ID)
	var recInput func(i int, acc []glyph.ID, bt []glyph.ID)
	var recLA func(i int, acc []glyph.ID, bt, in []glyph.ID)

	recLA = func(i int, acc []glyph.ID, bt, in []glyph.ID) {
		if i == len(lookahead) {
			if len(in) == 0 {
				return
			}
			fn(in[0], in[1:], bt, acc)
			return
		}
		for _, g := range lookahead[i] {
			recLA(i+1, append(acc, g), bt, in)
		}
	}
	recInput = func(i int, acc []glyph.ID, bt []glyph.ID) {
		if i == len(inClasses) {
			recLA(0, nil, bt, acc)
			return
		}
		for _, g := range inClasses[i] {
			recInput(i+1, append(acc, g), bt)
		}
	}
	recBT = func(i int, acc []glyph.ID) {
		if i == len(backtrack) {
			recInput(0, nil, acc)
			return
		}
		for _, g := range backtrack[i] {
			recBT(i+1, append(acc, g))
		}
	}
	recBT(0, nil)
}

func (c *Context) lowerChain(rule ast.Rule, kind token.Kind) {
	positions := rule.Positions()
	backtrackPos, inputPos, lookaheadPos := chainParts(positions)
	if len(inputPos) == 0 {
		return
	}

	lk := c.ensureLookup(kind, false)
	b := lk.builder.(*gtab.ChainBuilder)

	backtrack := make([][]glyph.ID, len(backtrackPos))
	for i, p := range backtrackPos {
		backtrack[i] = c.glyphIDsOf(p.Value)
	}
	lookahead := make([][]glyph.ID, len(lookaheadPos))
	for i, p := range lookaheadPos {
		lookahead[i] = c.glyphIDsOf(p.Value)
	}

	var actions gtab.SeqLookups
	for i, p := range inputPos {
		for _, ref := range p.Lookups {
			if id, ok := c.lookups.ByName(ref.Name()); ok {
				actions = append(actions, gtab.SeqLookup{SequenceIndex: uint16(i), LookupID: id})
			}
		}
	}

	c.forEachChainCombination(backtrack, inputPos, lookahead, func(first glyph.ID, rest, bt, la []glyph.ID) {
		b.Add(first, rest, bt, la, actions)
	})
}

// --- GPOS ------------------------------------------------------------

func (c *Context) lowerGposSingle(rule ast.Rule) {
	positions := rule.Positions()
	values := rule.ValueRecords()
	if len(positions) == 0 || len(values) == 0 {
		return
	}
	glyphs := c.glyphIDsOf(positions[0].Value)
	val := c.resolveValueRecordView(values[0])

	lk := c.ensureLookup(token.GposType1Node, false)
	b := lk.builder.(*gtab.SinglePosBuilder)
	b.Add(glyphs, val)
}

func (c *Context) lowerGposPair(rule ast.Rule) {
	positions := rule.Positions()
	values := rule.ValueRecords()
	if len(positions) < 2 {
		return
	}
	first := c.glyphIDsOf(positions[0].Value)
	second := c.glyphIDsOf(positions[1].Value)
	var v1, v2 gtab.ValueRecord
	if len(values) > 0 {
		v1 = c.resolveValueRecordView(values[0])
	}
	if len(values) > 1 {
		v2 = c.resolveValueRecordView(values[1])
	}

	classPair := isClassLike(positions[0].Value) || isClassLike(positions[1].Value)
	lk := c.ensureLookup(token.GposType2Node, classPair)
	b := lk.builder.(*gtab.PairPosBuilder)

	if classPair {
		firstKey := classKey(glyph.Class(first))
		secondKey := classKey(glyph.Class(second))
		fc := c.pairClassID(lk, firstKey, true)
		sc := c.pairClassID(lk, secondKey, false)
		b.AddClassPair(first, second, fc, sc, gtab.PairAdjust{First: v1, Second: v2})
		return
	}
	for _, g1 := range first {
		for _, g2 := range second {
			b.AddPair(g1, g2, gtab.PairAdjust{First: v1, Second: v2})
		}
	}
}

// pairClassID interns a canonical glyph-class key to a small per-lookup
// class number, separately for the first and second position of a
// class-pair GPOS rule (their class numberings are independent).
func (c *Context) pairClassID(lk *openLookup, key string, first bool) uint16 {
	if first {
		if lk.firstClassIDs == nil {
			lk.firstClassIDs = make(map[string]uint16)
		}
		if id, ok := lk.firstClassIDs[key]; ok {
			return id
		}
		id := uint16(len(lk.firstClassIDs)) + 1
		lk.firstClassIDs[key] = id
		return id
	}
	if lk.secondClassIDs == nil {
		lk.secondClassIDs = make(map[string]uint16)
	}
	if id, ok := lk.secondClassIDs[key]; ok {
		return id
	}
	id := uint16(len(lk.secondClassIDs)) + 1
	lk.secondClassIDs[key] = id
	return id
}

func (c *Context) lowerGposCursive(rule ast.Rule) {
	positions := rule.Positions()
	anchors := rule.Anchors()
	if len(positions) == 0 || len(anchors) < 2 {
		return
	}
	glyphs := c.glyphIDsOf(positions[0].Value)
	entry := c.resolveAnchor(anchors[0])
	exit := c.resolveAnchor(anchors[1])

	lk := c.ensureLookup(token.GposType3Node, false)
	b := lk.builder.(*gtab.CursivePosBuilder)
	for _, g := range glyphs {
		b.Add(g, entry, exit)
	}
}

func (c *Context) lowerGposMarkToBase(rule ast.Rule) {
	positions := rule.Positions()
	if len(positions) == 0 {
		return
	}
	bases := c.glyphIDsOf(positions[0].Value)

	lk := c.ensureLookup(token.GposType4Node, false)
	b := lk.builder.(*gtab.MarkToBaseBuilder)
	for _, entry := range rule.MarkAnchors() {
		anc := c.resolveAnchor(entry.Anchor)
		for _, g := range bases {
			b.AddBase(g, entry.ClassName, anc)
		}
	}
}

func (c *Context) lowerGposMarkToLig(rule ast.Rule) {
	positions := rule.Positions()
	if len(positions) == 0 {
		return
	}
	ligs := c.glyphIDsOf(positions[0].Value)

	var components []map[string]anchor.Table
	for _, entry := range rule.MarkAnchors() {
		if entry.NewComponent || len(components) == 0 {
			components = append(components, make(map[string]anchor.Table))
		}
		components[len(components)-1][entry.ClassName] = c.resolveAnchor(entry.Anchor)
	}

	lk := c.ensureLookup(token.GposType5Node, false)
	b := lk.builder.(*gtab.MarkToLigBuilder)
	for _, g := range ligs {
		b.AddLigature(g, components)
	}
}

func (c *Context) lowerGposMarkToMark(rule ast.Rule) {
	positions := rule.Positions()
	if len(positions) == 0 {
		return
	}
	mark2s := c.glyphIDsOf(positions[0].Value)

	lk := c.ensureLookup(token.GposType6Node, false)
	b := lk.builder.(*gtab.MarkToMarkBuilder)
	for _, entry := range rule.MarkAnchors() {
		anc := c.resolveAnchor(entry.Anchor)
		for _, g := range mark2s {
			b.AddMark2(g, entry.ClassName, anc)
		}
	}
}

// resolveValueRecordView converts an ast.ValueRecord view to a
// gtab.ValueRecord, sharing resolveValueRecord's named-reference and
// numeric-field logic.
func (c *Context) resolveValueRecordView(v ast.ValueRecord) gtab.ValueRecord {
	return c.resolveValueRecord(v)
}
