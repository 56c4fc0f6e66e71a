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

// Package classdef represents an OpenType ClassDef table: a mapping from
// glyph to a small integer class number, used by GDEF's glyph
// classification, by contextual-rule class sequences, and by mark
// attachment classes.
package classdef

import "seehuhn.de/go/fea/glyph"

// Table maps a glyph to its class number. Glyphs absent from the map
// belong to class 0.
type Table map[glyph.ID]uint16

// Class returns g's class, defaulting to 0 for glyphs not present in t.
func (t Table) Class(g glyph.ID) uint16 {
	return t[g]
}

// Classes returns the distinct, non-zero class numbers used by t, in
// ascending order.
func (t Table) Classes() []uint16 {
	seen := make(map[uint16]bool)
	for _, c := range t {
		if c != 0 {
			seen[c] = true
		}
	}
	out := make([]uint16, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// Builder accumulates (glyph set, class number) assignments while a rule
// block is open, the way a layout builder accretes rule input (spec.md §2).
// A glyph assigned more than once keeps its most recent class, matching
// `class <glyphs> <n>;` statement semantics: later statements win.
type Builder struct {
	table Table
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder { return &Builder{table: make(Table)} }

// Assign records that every glyph in glyphs belongs to class.
func (b *Builder) Assign(glyphs []glyph.ID, class uint16) {
	for _, g := range glyphs {
		b.table[g] = class
	}
}

// Build returns the finished Table.
func (b *Builder) Build() Table { return b.table }
