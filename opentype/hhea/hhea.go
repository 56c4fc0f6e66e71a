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

// Package hhea represents an OpenType "hhea" table, populated by a feature
// file's `table hhea { ... } hhea;` block (SPEC_FULL §3).
package hhea

import "seehuhn.de/go/postscript/funit"

// Info holds the fields `table hhea { ... } hhea;` can set: CaretOffset,
// Ascender, Descender, and LineGap.
type Info struct {
	CaretOffset funit.Int16
	Ascender    funit.Int16
	Descender   funit.Int16
	LineGap     funit.Int16
}
