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

// Package vmtx represents the per-glyph overrides an OpenType "vmtx" table
// can take from a feature file's `table vmtx { ... } vmtx;` block
// (SPEC_FULL §3): a glyph's vertical origin Y coordinate and vertical
// advance, each settable independently per glyph.
package vmtx

import (
	"seehuhn.de/go/fea/glyph"
	"seehuhn.de/go/postscript/funit"
)

// Info accumulates the vertical-metric overrides named in a `table vmtx`
// block. A glyph absent from OriginY or AdvanceY keeps whatever value an
// assembler's default vertical metrics computation would otherwise give
// it.
type Info struct {
	OriginY  map[glyph.ID]funit.Int16
	AdvanceY map[glyph.ID]funit.Int16
}

// NewInfo creates an empty Info.
func NewInfo() *Info {
	return &Info{
		OriginY:  make(map[glyph.ID]funit.Int16),
		AdvanceY: make(map[glyph.ID]funit.Int16),
	}
}
