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

// GSUB subtables.

// Gsub1_1 is GSUB lookup type 1 ("Single Substitution"): each covered
// glyph maps to exactly one replacement glyph.
type Gsub1_1 struct {
	Cov         coverage.Table
	Replacement map[glyph.ID]glyph.ID
}

func (*Gsub1_1) isSubtable() {}

// Gsub2_1 is GSUB lookup type 2 ("Multiple Substitution"): each covered
// glyph expands into a sequence of one or more replacement glyphs.
type Gsub2_1 struct {
	Cov     coverage.Table
	Replace map[glyph.ID][]glyph.ID
}

func (*Gsub2_1) isSubtable() {}

// Gsub3_1 is GSUB lookup type 3 ("Alternate Substitution"): each covered
// glyph offers a set of alternates, one of which a shaping engine may pick.
type Gsub3_1 struct {
	Cov        coverage.Table
	Alternates map[glyph.ID][]glyph.ID
}

func (*Gsub3_1) isSubtable() {}

// Ligature is one ligature substitution: a sequence of glyphs following
// the covered first glyph, and the resulting ligature glyph.
type Ligature struct {
	In  []glyph.ID // the glyphs after the first, matched in order
	Out glyph.ID
}

// Gsub4_1 is GSUB lookup type 4 ("Ligature Substitution"): each covered
// first glyph has a set of candidate ligatures, tried longest-match-first.
type Gsub4_1 struct {
	Cov        coverage.Table
	Ligatures  map[glyph.ID][]Ligature
}

func (*Gsub4_1) isSubtable() {}

// Gsub8_1 is GSUB lookup type 8 ("Reverse Chaining Contextual Single
// Substitution"): unlike every other GSUB/GPOS lookup type, a shaping
// engine applies this one right-to-left and in a single pass with no
// nested lookups, substituting the covered glyph directly wherever the
// backtrack/lookahead context matches.
type Gsub8_1 struct {
	Cov         coverage.Table
	Backtrack   []coverage.Table // reading order, matched before the input glyph
	Lookahead   []coverage.Table
	Replacement map[glyph.ID]glyph.ID
}

func (*Gsub8_1) isSubtable() {}

// GPOS subtables.

// PairAdjust holds the two value records of a specific (or class) pair
// adjustment: the first record applies to the first glyph, the second to
// the second glyph.
type PairAdjust struct {
	First, Second ValueRecord
}

// ValueRecord mirrors the OpenType GPOS ValueRecord: up to four
// placement/advance adjustments in the X and Y directions, each optional
// (a zero Has* flag means "not present", distinct from "present and
// zero").
type ValueRecord struct {
	XPlacement, YPlacement               int16
	XAdvance, YAdvance                   int16
	HasXPlacement, HasYPlacement         bool
	HasXAdvance, HasYAdvance             bool
}

// IsEmpty reports whether the value record carries no adjustment at all,
// the `<NULL>` / bare `0` case in a feature file.
func (v ValueRecord) IsEmpty() bool {
	return !v.HasXPlacement && !v.HasYPlacement && !v.HasXAdvance && !v.HasYAdvance
}

// Gpos1_1 is GPOS lookup type 1 ("Single Adjustment"): every covered glyph
// gets the same value record.
type Gpos1_1 struct {
	Cov   coverage.Table
	Value ValueRecord
}

func (*Gpos1_1) isSubtable() {}

// Gpos1_2 is GPOS lookup type 1 with a value record per glyph, used when
// a `pos` rule's right-hand side gives different adjustments to different
// covered glyphs (e.g. via distinct glyph classes in a rule sequence).
type Gpos1_2 struct {
	Cov    coverage.Table
	Values map[glyph.ID]ValueRecord
}

func (*Gpos1_2) isSubtable() {}

// Gpos2_1 is GPOS lookup type 2 ("Pair Adjustment") format 1: specific
// glyph pairs each have their own pair of value records.
type Gpos2_1 struct {
	Cov   coverage.Table
	Pairs map[glyph.ID]map[glyph.ID]PairAdjust
}

func (*Gpos2_1) isSubtable() {}

// Gpos2_2 is GPOS lookup type 2 format 2: pairs are matched by glyph class
// rather than individually, the `pos @class1 @class2 <adj>;` class-pair
// rule shape.
type Gpos2_2 struct {
	Cov          coverage.Table
	FirstClass   classdef.Table
	SecondClass  classdef.Table
	NumClasses1  uint16
	NumClasses2  uint16
	Adjust       map[[2]uint16]PairAdjust
}

func (*Gpos2_2) isSubtable() {}

// EntryExitRecord is one glyph's cursive-attachment anchors: where a
// following glyph may enter this glyph's attachment, and where this glyph
// exits to attach to a following glyph. Either anchor may be absent
// (anchor.Table.IsEmpty()).
type EntryExitRecord struct {
	Entry, Exit anchor.Table
}

// Gpos3_1 is GPOS lookup type 3 ("Cursive Attachment").
type Gpos3_1 struct {
	Cov     coverage.Table
	Records map[glyph.ID]EntryExitRecord
}

func (*Gpos3_1) isSubtable() {}

// Gpos4_1 is GPOS lookup type 4 ("Mark-to-Base Attachment"): marks attach
// to an anchor on a base glyph selected by the mark's class.
type Gpos4_1 struct {
	MarkCov   coverage.Table
	BaseCov   coverage.Table
	MarkArray markarray.Table

	// BaseAnchors[baseCoverageIndex][markClass] is the anchor a mark of
	// that class attaches to on that base glyph.
	BaseAnchors map[int]map[uint16]anchor.Table
}

func (*Gpos4_1) isSubtable() {}

// Gpos5_1 is GPOS lookup type 5 ("Mark-to-Ligature Attachment"): like
// Gpos4_1, but each ligature glyph offers one anchor set per component.
type Gpos5_1 struct {
	MarkCov   coverage.Table
	LigCov    coverage.Table
	MarkArray markarray.Table

	// LigAnchors[ligCoverageIndex][componentIndex][markClass] is the
	// anchor a mark of that class attaches to on that ligature component.
	LigAnchors map[int][]map[uint16]anchor.Table
}

func (*Gpos5_1) isSubtable() {}

// Gpos6_1 is GPOS lookup type 6 ("Mark-to-Mark Attachment"): a mark
// attaches to an anchor on another mark (e.g. stacking diacritics).
type Gpos6_1 struct {
	Mark1Cov   coverage.Table
	Mark2Cov   coverage.Table
	Mark1Array markarray.Table

	// Mark2Anchors[mark2CoverageIndex][markClass] is the anchor a mark1 of
	// that class attaches to on that mark2 glyph.
	Mark2Anchors map[int]map[uint16]anchor.Table
}

func (*Gpos6_1) isSubtable() {}

// SeqLookup records that, at sequenceIndex glyphs into a context rule's
// matched input, lookupID should be applied.
type SeqLookup struct {
	SequenceIndex uint16
	LookupID      LookupID
}

// SeqLookups is an ordered list of nested-lookup applications attached to
// one context or chaining-context rule.
type SeqLookups []SeqLookup

// SeqContext1 is GSUB/GPOS lookup type 5/7 format 1 ("Glyph Contexts"):
// the matched input is specified as literal glyph sequences, grouped by
// their first covered glyph.
type SeqContext1 struct {
	Cov  coverage.Table
	Sets map[glyph.ID][]ContextRule
}

func (*SeqContext1) isSubtable() {}

// ContextRule is one candidate input-sequence match (after the first,
// covered glyph) together with the nested lookups it triggers.
type ContextRule struct {
	Input   []glyph.ID
	Actions SeqLookups
}

// SeqContext2 is format 2: input glyphs are matched by class rather than
// by exact glyph.
type SeqContext2 struct {
	Cov     coverage.Table
	Classes classdef.Table
	Sets    map[uint16][]ClassContextRule
}

func (*SeqContext2) isSubtable() {}

// ClassContextRule is the class-sequence analogue of ContextRule.
type ClassContextRule struct {
	Input   []uint16
	Actions SeqLookups
}

// SeqContext3 is format 3: each rule enumerates explicit coverage tables
// for every position in the sequence (the `pos|sub [a b] [c d]' <lookup>;`
// shape with no repetition).
type SeqContext3 struct {
	Input   []coverage.Table
	Actions SeqLookups
}

func (*SeqContext3) isSubtable() {}

// ChainedSeqContext1 is GSUB/GPOS lookup type 6/8 format 1: chaining
// context expressed via literal backtrack/input/lookahead glyph sequences.
type ChainedSeqContext1 struct {
	Cov  coverage.Table
	Sets map[glyph.ID][]ChainedContextRule
}

func (*ChainedSeqContext1) isSubtable() {}

// ChainedContextRule is one chaining-context candidate match.
type ChainedContextRule struct {
	Backtrack []glyph.ID // stored in reading order, matched before the input
	Input     []glyph.ID // glyphs after the first, which is implied by Sets' key
	Lookahead []glyph.ID
	Actions   SeqLookups
}

// ChainedSeqContext2 is format 2: backtrack/input/lookahead matched by
// class.
type ChainedSeqContext2 struct {
	Cov             coverage.Table
	BacktrackClass  classdef.Table
	InputClass      classdef.Table
	LookaheadClass  classdef.Table
	Sets            map[uint16][]ChainedClassContextRule
}

func (*ChainedSeqContext2) isSubtable() {}

// ChainedClassContextRule is the class-sequence analogue of
// ChainedContextRule.
type ChainedClassContextRule struct {
	Backtrack []uint16
	Input     []uint16
	Lookahead []uint16
	Actions   SeqLookups
}

// ChainedSeqContext3 is format 3: explicit coverage tables at every
// backtrack/input/lookahead position, with no repetition.
type ChainedSeqContext3 struct {
	Backtrack []coverage.Table
	Input     []coverage.Table
	Lookahead []coverage.Table
	Actions   SeqLookups
}

func (*ChainedSeqContext3) isSubtable() {}
