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

// Package gdef represents the OpenType GDEF (Glyph Definition) table: glyph
// classification (base/ligature/mark/component), mark attachment classes,
// mark glyph filtering sets, and ligature caret positions.
package gdef

import (
	"seehuhn.de/go/fea/glyph"
	"seehuhn.de/go/fea/opentype/classdef"
)

// Glyph classes as used in GDEF's GlyphClassDef table (ISO 14496-22 / the
// OpenType spec numbers these 1-4; 0 means "unclassified").
const (
	ClassBase      uint16 = 1
	ClassLigature  uint16 = 2
	ClassMark      uint16 = 3
	ClassComponent uint16 = 4
)

// Table is a GDEF table, either written explicitly by a `table GDEF { ...
// } GDEF;` block or inferred from the rules a compilation defines (spec.md
// §4.5's "GDEF: explicit block, else inferred from classes touched by
// rules").
type Table struct {
	// GlyphClass classifies each glyph as base/ligature/mark/component.
	GlyphClass classdef.Table

	// MarkAttachClass assigns each mark glyph to a mark-attachment class,
	// used by the lookupflag `MarkAttachmentType` filter.
	MarkAttachClass classdef.Table

	// MarkGlyphSets are the named mark-filtering sets referenced by
	// lookupflag `UseMarkFilteringSet`, identified by the interned set
	// index used in a lookup's LookupFlags.MarkFilteringSet.
	MarkGlyphSets []glyph.Class

	// LigatureCarets maps a ligature glyph to its caret positions, as
	// written by GDEF's `LigatureCaretByPos` sub-blocks
	// (`LigatureCaretByIndex` entries are not lowered into it). Caret values are font design units along the writing
	// direction.
	LigatureCarets map[glyph.ID][]int16
}

// NewInferred builds a GDEF table holding only glyphClass, with no mark
// attachment classes, filtering sets, or ligature carets; callers may fill
// MarkAttachClass and MarkGlyphSets on the result afterwards.
func NewInferred(glyphClass classdef.Table) *Table {
	return &Table{GlyphClass: glyphClass}
}
