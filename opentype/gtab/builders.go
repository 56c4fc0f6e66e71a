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

package gtab

import (
	"seehuhn.de/go/fea/glyph"
	"seehuhn.de/go/fea/opentype/anchor"
	"seehuhn.de/go/fea/opentype/classdef"
	"seehuhn.de/go/fea/opentype/coverage"
	"seehuhn.de/go/fea/opentype/markarray"
)

// A layout builder accumulates one rule block's worth of rule data and
// turns it into a Subtable on demand (spec.md §4.5). Builders are
// one-shot: Build consumes the accumulated state, so a builder must not be
// reused across a `subtable;` break — lowering allocates a fresh builder
// each time one is needed.

// SinglePosBuilder accumulates GPOS type 1 rules.
type SinglePosBuilder struct {
	values map[glyph.ID]ValueRecord
}

// NewSinglePosBuilder creates an empty builder.
func NewSinglePosBuilder() *SinglePosBuilder {
	return &SinglePosBuilder{values: make(map[glyph.ID]ValueRecord)}
}

// Add records that every glyph in glyphs gets value, overwriting any
// earlier value for the same glyph (matches `pos` statement semantics:
// later statements for the same glyph win within a subtable).
func (b *SinglePosBuilder) Add(glyphs []glyph.ID, value ValueRecord) {
	for _, g := range glyphs {
		b.values[g] = value
	}
}

// Build emits the accumulated rules as a Gpos1_1 (if every glyph shares
// one value record) or a Gpos1_2 (otherwise).
func (b *SinglePosBuilder) Build() Subtable {
	cov := coverage.New(coverageSetOf(b.values))
	if allSameValue(b.values) {
		var v ValueRecord
		for _, x := range b.values {
			v = x
			break
		}
		return &Gpos1_1{Cov: cov, Value: v}
	}
	return &Gpos1_2{Cov: cov, Values: b.values}
}

func allSameValue(m map[glyph.ID]ValueRecord) bool {
	first := true
	var v ValueRecord
	for _, x := range m {
		if first {
			v, first = x, false
			continue
		}
		if x != v {
			return false
		}
	}
	return true
}

func coverageSetOf[V any](m map[glyph.ID]V) coverage.Set {
	s := coverage.NewSet()
	for g := range m {
		s.Add(g)
	}
	return s
}

// PairPosBuilder accumulates GPOS type 2 rules, both specific-pair and
// class-pair shapes. A given builder instance handles only one of the two
// shapes, matching the fact that a `feature kern { ... }` block mixing
// specific and class pairs lowers to two separate lookups (spec.md §4.5
// "rule-shape changes start a new lookup").
type PairPosBuilder struct {
	specific map[glyph.ID]map[glyph.ID]PairAdjust

	classMode   bool
	firstClass  *classdef.Builder
	secondClass *classdef.Builder
	adjust      map[[2]uint16]PairAdjust
}

// NewPairPosBuilder creates an empty specific-pair builder.
func NewPairPosBuilder() *PairPosBuilder {
	return &PairPosBuilder{specific: make(map[glyph.ID]map[glyph.ID]PairAdjust)}
}

// NewClassPairPosBuilder creates an empty class-pair builder.
func NewClassPairPosBuilder() *PairPosBuilder {
	return &PairPosBuilder{
		classMode:   true,
		firstClass:  classdef.NewBuilder(),
		secondClass: classdef.NewBuilder(),
		adjust:      make(map[[2]uint16]PairAdjust),
	}
}

// AddPair records a specific-glyph-pair adjustment.
func (b *PairPosBuilder) AddPair(first, second glyph.ID, adj PairAdjust) {
	if b.specific[first] == nil {
		b.specific[first] = make(map[glyph.ID]PairAdjust)
	}
	b.specific[first][second] = adj
}

// AddClassPair records a class-pair adjustment.
func (b *PairPosBuilder) AddClassPair(firstGlyphs, secondGlyphs []glyph.ID, firstClass, secondClass uint16, adj PairAdjust) {
	b.firstClass.Assign(firstGlyphs, firstClass)
	b.secondClass.Assign(secondGlyphs, secondClass)
	b.adjust[[2]uint16{firstClass, secondClass}] = adj
}

// Build emits the accumulated rules as a Gpos2_1 or Gpos2_2.
func (b *PairPosBuilder) Build() Subtable {
	if b.classMode {
		first := b.firstClass.Build()
		set := coverage.NewSet()
		for g := range first {
			set.Add(g)
		}
		var maxFirst, maxSecond uint16
		for k := range b.adjust {
			if k[0] > maxFirst {
				maxFirst = k[0]
			}
			if k[1] > maxSecond {
				maxSecond = k[1]
			}
		}
		return &Gpos2_2{
			Cov:         coverage.New(set),
			FirstClass:  first,
			SecondClass: b.secondClass.Build(),
			NumClasses1: maxFirst + 1,
			NumClasses2: maxSecond + 1,
			Adjust:      b.adjust,
		}
	}

	set := coverage.NewSet()
	for g := range b.specific {
		set.Add(g)
	}
	return &Gpos2_1{Cov: coverage.New(set), Pairs: b.specific}
}

// CursivePosBuilder accumulates GPOS type 3 rules.
type CursivePosBuilder struct {
	records map[glyph.ID]EntryExitRecord
}

// NewCursivePosBuilder creates an empty builder.
func NewCursivePosBuilder() *CursivePosBuilder {
	return &CursivePosBuilder{records: make(map[glyph.ID]EntryExitRecord)}
}

// Add records a glyph's entry/exit anchors.
func (b *CursivePosBuilder) Add(g glyph.ID, entry, exit anchor.Table) {
	b.records[g] = EntryExitRecord{Entry: entry, Exit: exit}
}

// Build emits a Gpos3_1.
func (b *CursivePosBuilder) Build() Subtable {
	return &Gpos3_1{Cov: coverage.New(coverageSetOf(b.records)), Records: b.records}
}

// markAttachBuilder holds the bookkeeping shared by MarkToBaseBuilder,
// MarkToLigBuilder, and MarkToMarkBuilder: a mark class interns to a small
// integer and accumulates one anchor per mark glyph.
type markAttachBuilder struct {
	classByName map[string]uint16
	nextClass   uint16
	markAnchor  map[glyph.ID]markarray.Record
}

func newMarkAttachBuilder() markAttachBuilder {
	return markAttachBuilder{
		classByName: make(map[string]uint16),
		markAnchor:  make(map[glyph.ID]markarray.Record),
	}
}

// classID interns className, assigning it a fresh class number on first
// use (matches `markClass` definitions being named, not numbered, in a
// feature file; numbers are assigned in first-seen order).
func (b *markAttachBuilder) classID(className string) uint16 {
	id, ok := b.classByName[className]
	if !ok {
		id = b.nextClass
		b.classByName[className] = id
		b.nextClass++
	}
	return id
}

// AddMark records a mark glyph's class and attachment anchor.
func (b *markAttachBuilder) AddMark(g glyph.ID, className string, anc anchor.Table) {
	b.markAnchor[g] = markarray.Record{Class: b.classID(className), Anchor: anc}
}

func (b *markAttachBuilder) markArray() (coverage.Table, markarray.Table) {
	set := coverage.NewSet()
	for g := range b.markAnchor {
		set.Add(g)
	}
	cov := coverage.New(set)
	arr := make(markarray.Table, len(b.markAnchor))
	for g, rec := range b.markAnchor {
		arr[cov[g]] = rec
	}
	return cov, arr
}

// MarkToBaseBuilder accumulates GPOS type 4 rules.
type MarkToBaseBuilder struct {
	markAttachBuilder
	baseAnchors map[glyph.ID]map[uint16]anchor.Table
}

// NewMarkToBaseBuilder creates an empty builder.
func NewMarkToBaseBuilder() *MarkToBaseBuilder {
	return &MarkToBaseBuilder{
		markAttachBuilder: newMarkAttachBuilder(),
		baseAnchors:       make(map[glyph.ID]map[uint16]anchor.Table),
	}
}

// AddBase records a base glyph's anchor for the named mark class.
func (b *MarkToBaseBuilder) AddBase(g glyph.ID, className string, anc anchor.Table) {
	if b.baseAnchors[g] == nil {
		b.baseAnchors[g] = make(map[uint16]anchor.Table)
	}
	b.baseAnchors[g][b.classID(className)] = anc
}

// Build emits a Gpos4_1.
func (b *MarkToBaseBuilder) Build() Subtable {
	markCov, markArr := b.markArray()

	baseSet := coverage.NewSet()
	for g := range b.baseAnchors {
		baseSet.Add(g)
	}
	baseCov := coverage.New(baseSet)

	byIndex := make(map[int]map[uint16]anchor.Table, len(b.baseAnchors))
	for g, anchors := range b.baseAnchors {
		byIndex[baseCov[g]] = anchors
	}

	return &Gpos4_1{
		MarkCov:     markCov,
		BaseCov:     baseCov,
		MarkArray:   markArr,
		BaseAnchors: byIndex,
	}
}

// MarkToLigBuilder accumulates GPOS type 5 rules.
type MarkToLigBuilder struct {
	markAttachBuilder
	ligAnchors map[glyph.ID][]map[uint16]anchor.Table
}

// NewMarkToLigBuilder creates an empty builder.
func NewMarkToLigBuilder() *MarkToLigBuilder {
	return &MarkToLigBuilder{
		markAttachBuilder: newMarkAttachBuilder(),
		ligAnchors:        make(map[glyph.ID][]map[uint16]anchor.Table),
	}
}

// AddLigature records a ligature glyph's per-component anchor set; each
// call appends one component's worth of (class -> anchor) assignments.
func (b *MarkToLigBuilder) AddLigature(g glyph.ID, components []map[string]anchor.Table) {
	comps := make([]map[uint16]anchor.Table, len(components))
	for i, comp := range components {
		m := make(map[uint16]anchor.Table, len(comp))
		for className, anc := range comp {
			m[b.classID(className)] = anc
		}
		comps[i] = m
	}
	b.ligAnchors[g] = comps
}

// Build emits a Gpos5_1.
func (b *MarkToLigBuilder) Build() Subtable {
	markCov, markArr := b.markArray()

	ligSet := coverage.NewSet()
	for g := range b.ligAnchors {
		ligSet.Add(g)
	}
	ligCov := coverage.New(ligSet)

	byIndex := make(map[int][]map[uint16]anchor.Table, len(b.ligAnchors))
	for g, comps := range b.ligAnchors {
		byIndex[ligCov[g]] = comps
	}

	return &Gpos5_1{
		MarkCov:    markCov,
		LigCov:     ligCov,
		MarkArray:  markArr,
		LigAnchors: byIndex,
	}
}

// MarkToMarkBuilder accumulates GPOS type 6 rules.
type MarkToMarkBuilder struct {
	markAttachBuilder
	mark2Anchors map[glyph.ID]map[uint16]anchor.Table
}

// NewMarkToMarkBuilder creates an empty builder.
func NewMarkToMarkBuilder() *MarkToMarkBuilder {
	return &MarkToMarkBuilder{
		markAttachBuilder: newMarkAttachBuilder(),
		mark2Anchors:      make(map[glyph.ID]map[uint16]anchor.Table),
	}
}

// AddMark2 records a mark2 glyph's anchor for the named mark class.
func (b *MarkToMarkBuilder) AddMark2(g glyph.ID, className string, anc anchor.Table) {
	if b.mark2Anchors[g] == nil {
		b.mark2Anchors[g] = make(map[uint16]anchor.Table)
	}
	b.mark2Anchors[g][b.classID(className)] = anc
}

// Build emits a Gpos6_1.
func (b *MarkToMarkBuilder) Build() Subtable {
	mark1Cov, mark1Arr := b.markArray()

	mark2Set := coverage.NewSet()
	for g := range b.mark2Anchors {
		mark2Set.Add(g)
	}
	mark2Cov := coverage.New(mark2Set)

	byIndex := make(map[int]map[uint16]anchor.Table, len(b.mark2Anchors))
	for g, anchors := range b.mark2Anchors {
		byIndex[mark2Cov[g]] = anchors
	}

	return &Gpos6_1{
		Mark1Cov:     mark1Cov,
		Mark2Cov:     mark2Cov,
		Mark1Array:   mark1Arr,
		Mark2Anchors: byIndex,
	}
}

// SingleSubBuilder accumulates GSUB type 1 rules.
type SingleSubBuilder struct {
	replace map[glyph.ID]glyph.ID
}

// NewSingleSubBuilder creates an empty builder.
func NewSingleSubBuilder() *SingleSubBuilder {
	return &SingleSubBuilder{replace: make(map[glyph.ID]glyph.ID)}
}

// Add records that from maps to to. When from and to are parallel glyph
// classes of equal length, the caller is expected to call Add once per
// pair (spec.md §4.2's "parallel class substitution").
func (b *SingleSubBuilder) Add(from, to glyph.ID) {
	b.replace[from] = to
}

// Build emits a Gsub1_1.
func (b *SingleSubBuilder) Build() Subtable {
	set := coverage.NewSet()
	for g := range b.replace {
		set.Add(g)
	}
	return &Gsub1_1{Cov: coverage.New(set), Replacement: b.replace}
}

// MultipleSubBuilder accumulates GSUB type 2 rules.
type MultipleSubBuilder struct {
	replace map[glyph.ID][]glyph.ID
}

// NewMultipleSubBuilder creates an empty builder.
func NewMultipleSubBuilder() *MultipleSubBuilder {
	return &MultipleSubBuilder{replace: make(map[glyph.ID][]glyph.ID)}
}

// Add records that from expands to the sequence to.
func (b *MultipleSubBuilder) Add(from glyph.ID, to []glyph.ID) {
	b.replace[from] = to
}

// Build emits a Gsub2_1.
func (b *MultipleSubBuilder) Build() Subtable {
	set := coverage.NewSet()
	for g := range b.replace {
		set.Add(g)
	}
	return &Gsub2_1{Cov: coverage.New(set), Replace: b.replace}
}

// AlternateSubBuilder accumulates GSUB type 3 rules.
type AlternateSubBuilder struct {
	alternates map[glyph.ID][]glyph.ID
}

// NewAlternateSubBuilder creates an empty builder.
func NewAlternateSubBuilder() *AlternateSubBuilder {
	return &AlternateSubBuilder{alternates: make(map[glyph.ID][]glyph.ID)}
}

// Add records from's set of alternates.
func (b *AlternateSubBuilder) Add(from glyph.ID, alternates []glyph.ID) {
	b.alternates[from] = alternates
}

// Build emits a Gsub3_1.
func (b *AlternateSubBuilder) Build() Subtable {
	set := coverage.NewSet()
	for g := range b.alternates {
		set.Add(g)
	}
	return &Gsub3_1{Cov: coverage.New(set), Alternates: b.alternates}
}

// LigatureSubBuilder accumulates GSUB type 4 rules.
type LigatureSubBuilder struct {
	ligatures map[glyph.ID][]Ligature
}

// NewLigatureSubBuilder creates an empty builder.
func NewLigatureSubBuilder() *LigatureSubBuilder {
	return &LigatureSubBuilder{ligatures: make(map[glyph.ID][]Ligature)}
}

// Add records one ligature: first is the covered first component, rest is
// the remaining components in order, out is the resulting glyph. Ligatures
// for the same first glyph are tried in the order they were added, so
// callers should add longer rest sequences first to get longest-match
// behavior (spec.md §4.2 "ligature substitution tries longest match
// first").
func (b *LigatureSubBuilder) Add(first glyph.ID, rest []glyph.ID, out glyph.ID) {
	b.ligatures[first] = append(b.ligatures[first], Ligature{In: rest, Out: out})
}

// Build emits a Gsub4_1.
func (b *LigatureSubBuilder) Build() Subtable {
	set := coverage.NewSet()
	for g := range b.ligatures {
		set.Add(g)
	}
	return &Gsub4_1{Cov: coverage.New(set), Ligatures: b.ligatures}
}

// ReverseChainSubBuilder accumulates GSUB type 8 rules. Unlike the other
// substitution builders it also carries the backtrack/lookahead context
// directly, since a reverse chaining rule has no nested lookups to carry
// that context instead (spec.md §4.2 "reversesub is single-pass,
// right-to-left").
type ReverseChainSubBuilder struct {
	replace   map[glyph.ID]glyph.ID
	backtrack []coverage.Set
	lookahead []coverage.Set
}

// NewReverseChainSubBuilder creates an empty builder for the given
// backtrack (reading order) and lookahead context, shared by every glyph
// the rule covers.
func NewReverseChainSubBuilder(backtrack, lookahead []coverage.Set) *ReverseChainSubBuilder {
	return &ReverseChainSubBuilder{
		replace:   make(map[glyph.ID]glyph.ID),
		backtrack: backtrack,
		lookahead: lookahead,
	}
}

// Add records that from maps to to under the builder's context.
func (b *ReverseChainSubBuilder) Add(from, to glyph.ID) {
	b.replace[from] = to
}

// Build emits a Gsub8_1.
func (b *ReverseChainSubBuilder) Build() Subtable {
	set := coverage.NewSet()
	for g := range b.replace {
		set.Add(g)
	}
	backtrack := make([]coverage.Table, len(b.backtrack))
	for i, s := range b.backtrack {
		backtrack[i] = coverage.New(s)
	}
	lookahead := make([]coverage.Table, len(b.lookahead))
	for i, s := range b.lookahead {
		lookahead[i] = coverage.New(s)
	}
	return &Gsub8_1{
		Cov:         coverage.New(set),
		Backtrack:   backtrack,
		Lookahead:   lookahead,
		Replacement: b.replace,
	}
}

// ContextBuilder accumulates GSUB type 5 / GPOS type 7 rules (format 1,
// literal glyph sequences — the only context shape SPEC_FULL.md's lowering
// pass produces; class- and coverage-based formats 2/3 are available as
// SeqContext2/SeqContext3 for a future lowering strategy but have no
// builder yet since no source construct currently requires them).
type ContextBuilder struct {
	sets map[glyph.ID][]ContextRule
}

// NewContextBuilder creates an empty builder.
func NewContextBuilder() *ContextBuilder {
	return &ContextBuilder{sets: make(map[glyph.ID][]ContextRule)}
}

// Add records one context rule: first is the covered first input glyph,
// rest is the remaining input glyphs, actions are the nested lookups to
// apply at their recorded sequence indices.
func (b *ContextBuilder) Add(first glyph.ID, rest []glyph.ID, actions SeqLookups) {
	b.sets[first] = append(b.sets[first], ContextRule{Input: rest, Actions: actions})
}

// Build emits a SeqContext1.
func (b *ContextBuilder) Build() Subtable {
	set := coverage.NewSet()
	for g := range b.sets {
		set.Add(g)
	}
	return &SeqContext1{Cov: coverage.New(set), Sets: b.sets}
}

// ChainBuilder accumulates GSUB type 6 / GPOS type 8 chaining-context
// rules (format 1, literal glyph sequences; see ContextBuilder's doc
// comment for why formats 2/3 have no builder).
type ChainBuilder struct {
	sets map[glyph.ID][]ChainedContextRule
}

// NewChainBuilder creates an empty builder.
func NewChainBuilder() *ChainBuilder {
	return &ChainBuilder{sets: make(map[glyph.ID][]ChainedContextRule)}
}

// Add records one chaining-context rule.
func (b *ChainBuilder) Add(first glyph.ID, rest, backtrack, lookahead []glyph.ID, actions SeqLookups) {
	b.sets[first] = append(b.sets[first], ChainedContextRule{
		Backtrack: backtrack,
		Input:     rest,
		Lookahead: lookahead,
		Actions:   actions,
	})
}

// Build emits a ChainedSeqContext1.
func (b *ChainBuilder) Build() Subtable {
	set := coverage.NewSet()
	for g := range b.sets {
		set.Add(g)
	}
	return &ChainedSeqContext1{Cov: coverage.New(set), Sets: b.sets}
}
