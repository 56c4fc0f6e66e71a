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

// Package vhea represents an OpenType "vhea" table, populated by a feature
// file's `table vhea { ... } vhea;` block (SPEC_FULL §3).
package vhea

import "seehuhn.de/go/postscript/funit"

// Info holds the fields `table vhea { ... } vhea;` can set.
type Info struct {
	VertTypoAscender  funit.Int16
	VertTypoDescender funit.Int16
	VertTypoLineGap   funit.Int16
}
