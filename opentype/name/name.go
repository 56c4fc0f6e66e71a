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

// Package name represents an OpenType "name" table as populated by a
// feature file's `table name { nameid <id> [platform encoding language]
// "string"; } name;` block (SPEC_FULL §3). Each statement names one
// (nameID, platform, encoding, language) slot directly, unlike the
// higher-level per-language Table/Info pairing a full font assembler
// might use elsewhere.
package name

// Spec identifies one name-table platform/encoding/language slot.
type Spec struct {
	PlatformID uint16
	EncodingID uint16
	LanguageID uint16
}

// Windows Unicode BMP is the default slot a bare `nameid <id> "string";`
// statement (no explicit platform/encoding/language) is written to.
var DefaultSpec = Spec{PlatformID: 3, EncodingID: 1, LanguageID: 0x0409}

// Macintosh Roman English is the default slot a `nameid` entry also
// implicitly targets on the Macintosh platform when no explicit platform
// is given (matches common compiler behavior of writing both a Windows
// and Macintosh record for a plain string literal).
var DefaultMacSpec = Spec{PlatformID: 1, EncodingID: 0, LanguageID: 0}

// Record is one name-table entry: which (nameID, platform, encoding,
// language) slot it occupies, and its string value.
type Record struct {
	NameID uint16
	Spec   Spec
	Value  string
}

// Info accumulates the records a `table name { ... } name;` block writes.
type Info struct {
	Records []Record
}

// Add appends a record, in statement order (later statements for the same
// slot are expected to simply add another record; a lowering pass that
// wants last-one-wins semantics can de-duplicate by (NameID, Spec) before
// handing Records to an assembler).
func (info *Info) Add(nameID uint16, spec Spec, value string) {
	info.Records = append(info.Records, Record{NameID: nameID, Spec: spec, Value: value})
}
