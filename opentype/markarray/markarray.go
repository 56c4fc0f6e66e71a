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

// Package markarray represents an OpenType MarkArray table: for each mark
// glyph covered by a mark-attachment subtable, the mark's class number
// (which selects which base/ligature-component anchor it attaches to) and
// its own attachment anchor.
package markarray

import "seehuhn.de/go/fea/opentype/anchor"

// Record is one mark glyph's entry in a MarkArray: its mark class and its
// anchor relative to the mark glyph's origin.
type Record struct {
	Class  uint16
	Anchor anchor.Table
}

// Table maps each mark glyph's coverage index (see coverage.Table) to its
// Record. Builders key it by coverage index rather than by glyph.ID
// directly because that is the order the OpenType MarkArray table is
// serialized in.
type Table map[int]Record
