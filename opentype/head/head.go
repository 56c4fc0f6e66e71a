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

// Package head represents an OpenType "head" table. A feature file's
// `table head { FontRevision <number>; } head;` block only ever sets
// FontRevision (spec.md §1's lowering target, SPEC_FULL §3); the remaining
// fields exist so that a caller assembling a complete font can merge this
// package's Info into the rest of its head data.
package head

import (
	"time"

	"seehuhn.de/go/geom/rect"
)

// Info holds the fields a feature file can set in a `table head` block,
// plus the surrounding head-table fields a full compilation pipeline
// needs to carry alongside them.
type Info struct {
	// FontRevision is the only field `table head { ... } head;` can set
	// (SPEC_FULL §3's "FontRevision <number>;" statement).
	FontRevision float64

	HasYBaseAt0 bool
	HasXBaseAt0 bool

	UnitsPerEm uint16

	Created  time.Time
	Modified time.Time

	FontBBox rect.Rect

	IsBold   bool
	IsItalic bool

	LowestRecPPEM uint16

	// LocaFormat is 0 for short offsets, 1 for long offsets; it depends on
	// the font's glyph count and outline data, not on anything a feature
	// file can express, so it defaults to 0 until an assembler overrides
	// it.
	LocaFormat int16
}
