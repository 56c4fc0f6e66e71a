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

package glyph

import "golang.org/x/exp/slices"

// Class is an ordered multiset of glyph IDs, with a canonical
// (sorted, deduplicated) form used as a hash-map key — e.g. when the same
// set of mark-filtering glyphs is named twice and should collapse to one
// mark-filtering-set id.
type Class []ID

// SortAndDedupe returns the canonical form of c: ascending order, with
// duplicates removed. The receiver is left unmodified.
func (c Class) SortAndDedupe() Class {
	out := slices.Clone([]ID(c))
	slices.Sort(out)
	out = slices.Compact(out)
	return Class(out)
}

// Key returns a comparable string suitable for use as a map key, built from
// the canonical form. Two classes with the same members (regardless of
// original order or repeats) produce the same Key.
func (c Class) Key() string {
	canon := c.SortAndDedupe()
	buf := make([]byte, 0, len(canon)*3)
	for i, id := range canon {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = appendUint16(buf, uint16(id))
	}
	return string(buf)
}

func appendUint16(buf []byte, v uint16) []byte {
	if v == 0 {
		return append(buf, '0')
	}
	var tmp [5]byte
	n := len(tmp)
	for v > 0 {
		n--
		tmp[n] = byte('0' + v%10)
		v /= 10
	}
	return append(buf, tmp[n:]...)
}

// Contains reports whether id is a member of c (after canonicalization).
func (c Class) Contains(id ID) bool {
	canon := c.SortAndDedupe()
	_, found := slices.BinarySearch([]ID(canon), id)
	return found
}
