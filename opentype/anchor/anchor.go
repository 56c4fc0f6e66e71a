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

// Package anchor represents an OpenType Anchor table, used by cursive
// attachment (GPOS type 3) and mark attachment (GPOS types 4-6) subtables
// to record the exact point two glyphs connect at.
package anchor

// Table is one anchor point, in font design units. A zero Table (X == 0,
// Y == 0, ContourPoint == 0) is a legitimate anchor at the origin; use
// IsEmpty to test for "no anchor" (the `<anchor NULL>` case) instead of
// comparing to the zero value.
type Table struct {
	X, Y int16

	// HasContourPoint reports whether ContourPoint is meaningful (set by
	// `anchorDef`'s optional `contourpoint` clause, or an inline `<anchor x
	// y contourpoint n>`). It only affects hinting in a TrueType-outline
	// font and has no effect on shaping.
	HasContourPoint bool
	ContourPoint    uint16

	// empty marks an explicit `<anchor NULL>`, distinguishing "no
	// attachment here" from a real anchor at (0, 0).
	empty bool
}

// Null is the anchor value for `<anchor NULL>`.
var Null = Table{empty: true}

// IsEmpty reports whether the anchor is the `<anchor NULL>` placeholder.
func (t Table) IsEmpty() bool { return t.empty }

// New builds a coordinate anchor at (x, y).
func New(x, y int16) Table {
	return Table{X: x, Y: y}
}

// NewWithContourPoint builds a coordinate anchor that also records a
// TrueType contour point index.
func NewWithContourPoint(x, y int16, point uint16) Table {
	return Table{X: x, Y: y, HasContourPoint: true, ContourPoint: point}
}
