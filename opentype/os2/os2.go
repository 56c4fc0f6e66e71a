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

// Package os2 represents the information carried by an OpenType "OS/2"
// table: weight/width class, embedding permissions, typographic metrics,
// Unicode/codepage coverage bitfields, and the style flags a feature
// file's `table OS/2 { ... } OS/2;` block can set (spec.md §4.6). This
// package models the decoded Info only — serializing it to the binary
// "OS/2" wire format is an external collaborator's job (spec.md §1
// Non-goals).
package os2

import (
	"fmt"

	"seehuhn.de/go/postscript/funit"
)

// Info contains the fields that a feature file's OS/2 table block can
// populate.
type Info struct {
	WeightClass Weight
	WidthClass  Width

	IsBold    bool // glyphs are emboldened
	IsItalic  bool // font contains italic or oblique glyphs
	IsRegular bool // glyphs are in the standard weight/style for the font
	IsOblique bool // font contains oblique glyphs

	FirstCharIndex uint16
	LastCharIndex  uint16

	Ascent     funit.Int16
	Descent    funit.Int16 // negative
	WinAscent  funit.Int16
	WinDescent funit.Int16 // positive
	LineGap    funit.Int16
	CapHeight  funit.Int16
	XHeight    funit.Int16

	AvgGlyphWidth funit.Int16 // arithmetic average of the width of all non-zero width glyphs

	SubscriptXSize     funit.Int16
	SubscriptYSize     funit.Int16
	SubscriptXOffset   funit.Int16
	SubscriptYOffset   funit.Int16
	SuperscriptXSize   funit.Int16
	SuperscriptYSize   funit.Int16
	SuperscriptXOffset funit.Int16
	SuperscriptYOffset funit.Int16
	StrikeoutSize      funit.Int16
	StrikeoutPosition  funit.Int16

	FamilyClass int16    // https://docs.microsoft.com/en-us/typography/opentype/spec/ibmfc
	Panose      [10]byte // https://monotype.github.io/panose/
	Vendor      string   // https://docs.microsoft.com/en-us/typography/opentype/spec/os2#achvendid

	UnicodeRange  UnicodeRange
	CodePageRange CodePageRange

	PermUse          Permissions
	PermNoSubsetting bool // the font may not be subsetted prior to embedding
	PermOnlyBitmap   bool // only bitmaps contained in the font may be embedded
}

// Weight is the OS/2 "usWeightClass" value, 1-1000, with the nine named
// classes from the OpenType spec pre-defined.
type Weight uint16

const (
	WeightThin       Weight = 100
	WeightExtraLight Weight = 200
	WeightLight      Weight = 300
	WeightNormal     Weight = 400
	WeightMedium     Weight = 500
	WeightSemiBold   Weight = 600
	WeightBold       Weight = 700
	WeightExtraBold  Weight = 800
	WeightBlack      Weight = 900
)

// Width is the OS/2 "usWidthClass" value, 1-9.
type Width uint16

const (
	WidthUltraCondensed Width = 1
	WidthExtraCondensed Width = 2
	WidthCondensed      Width = 3
	WidthSemiCondensed  Width = 4
	WidthNormal         Width = 5
	WidthSemiExpanded   Width = 6
	WidthExpanded       Width = 7
	WidthExtraExpanded  Width = 8
	WidthUltraExpanded  Width = 9
)

// UnicodeRange is a bitfield which describes which unicode
// blocks or ranges are "functional" in a font.
// https://learn.microsoft.com/en-us/typography/opentype/spec/os2#ur
type UnicodeRange [4]uint32

// Set sets the given bit in the unicode range.
func (ur *UnicodeRange) Set(bit UnicodeRangeBit) {
	w := bit / 32
	bit = bit % 32
	ur[w] |= 1 << bit
}

// Bool sets or clears the given bit in the unicode range.
func (ur *UnicodeRange) Bool(bit UnicodeRangeBit, set bool) {
	w := bit / 32
	bit = bit % 32
	if set {
		ur[w] |= 1 << bit
	} else {
		ur[w] &^= 1 << bit
	}
}

type UnicodeRangeBit int

const (
	URBasicLatin                UnicodeRangeBit = 0
	URLatin1Sup                 UnicodeRangeBit = 1
	URLatinExtA                 UnicodeRangeBit = 2
	URLatinExtB                 UnicodeRangeBit = 3
	URIPAExtensions             UnicodeRangeBit = 4
	URSpacingModifierLetters    UnicodeRangeBit = 5
	URCombiningDiacriticalMarks UnicodeRangeBit = 6
	URGreek                     UnicodeRangeBit = 7
	URCoptic                    UnicodeRangeBit = 8
	URCyrillic                  UnicodeRangeBit = 9
	URArmenian                  UnicodeRangeBit = 10
	URHebrew                    UnicodeRangeBit = 11
	URVai                       UnicodeRangeBit = 12
	URArabic                    UnicodeRangeBit = 13
	URNko                       UnicodeRangeBit = 14
	URDevanagari                UnicodeRangeBit = 15
	URBengali                   UnicodeRangeBit = 16
	URGurmukhi                  UnicodeRangeBit = 17
	URGujarati                  UnicodeRangeBit = 18
	UROriya                     UnicodeRangeBit = 19
	URTamil                     UnicodeRangeBit = 20
	URTelugu                    UnicodeRangeBit = 21
	URKannada                   UnicodeRangeBit = 22
	URMalayalam                 UnicodeRangeBit = 23
	URThai                      UnicodeRangeBit = 24
	URLao                       UnicodeRangeBit = 25
	URGeorgian                  UnicodeRangeBit = 26
	URBalinese                  UnicodeRangeBit = 27
	URHangulJamo                UnicodeRangeBit = 28
	URLatinExtAdditional        UnicodeRangeBit = 29
	URGreekExt                  UnicodeRangeBit = 30
	URGeneralPunctuation        UnicodeRangeBit = 31
	URSuperscriptsSubscripts    UnicodeRangeBit = 32
	URCurrencySymbols           UnicodeRangeBit = 33
)

// CodePageRange is a bitmask of code pages supported by a font.
type CodePageRange uint64

// Set sets the given bit in the code page range.
func (cpr *CodePageRange) Set(bit CodePage) {
	*cpr |= 1 << bit
}

// CodePage represents the positions of individual bits which may be set in
// a CodePageRange.
type CodePage int

// List of code pages supported by the "OS/2" table.
const (
	CP1252      CodePage = 0  // CP1252, Latin 1
	CP1250      CodePage = 1  // CP1250, Latin 2: Eastern Europe
	CP1251      CodePage = 2  // CP1251, Cyrillic
	CP1253      CodePage = 3  // CP1253, Greek
	CP1254      CodePage = 4  // CP1254, Turkish
	CP1255      CodePage = 5  // CP1255, Hebrew
	CP1256      CodePage = 6  // CP1256, Arabic
	CP1257      CodePage = 7  // CP1257, Windows Baltic
	CP1258      CodePage = 8  // CP1258, Vietnamese
	CP874       CodePage = 16 // CP874, Thai
	CP932       CodePage = 17 // CP932, JIS/Japan
	CP936       CodePage = 18 // CP936, Chinese: Simplified chars - PRC and Singapore
	CP949       CodePage = 19 // CP949, Korean Wansung
	CP950       CodePage = 20 // CP950, Chinese: Traditional chars - Taiwan and Hong Kong
	CP1361      CodePage = 21 // CP1361, Korean Johab
	CPMacintosh CodePage = 29 // Macintosh Character Set (US Roman)
	CPOEM       CodePage = 30 // OEM Character Set
	CPSymbol    CodePage = 31 // Symbol Character Set
	CP869       CodePage = 48 // CP869, IBM Greek
	CP866       CodePage = 49 // CP866, MS-DOS Russian
	CP865       CodePage = 50 // CP865, MS-DOS Nordic
	CP864       CodePage = 51 // CP864, Arabic
	CP863       CodePage = 52 // CP863, MS-DOS Canadian French
	CP862       CodePage = 53 // CP862, Hebrew
	CP861       CodePage = 54 // CP861, MS-DOS Icelandic
	CP860       CodePage = 55 // CP860, MS-DOS Portuguese
	CP857       CodePage = 56 // CP857, IBM Turkish
	CP855       CodePage = 57 // CP855, IBM Cyrillic; primarily Russian
	CP852       CodePage = 58 // CP852, Latin 2
	CP775       CodePage = 59 // CP775, MS-DOS Baltic
	CP737       CodePage = 60 // CP737, Greek; former 437 G
	CP708       CodePage = 61 // CP708, Arabic; ASMO 708
	CP850       CodePage = 62 // CP850, WE/Latin 1
	CP437       CodePage = 63 // CP437, US
)

// Permissions describes rights to embed and use a font.
type Permissions int

func (perm Permissions) String() string {
	switch perm {
	case PermInstall:
		return "can install"
	case PermEdit:
		return "can edit"
	case PermView:
		return "can view"
	case PermRestricted:
		return "restricted"
	default:
		return fmt.Sprintf("Permissions(%d)", perm)
	}
}

// The possible permission values.
// https://learn.microsoft.com/en-us/typography/opentype/spec/os2#fstype
const (
	PermInstall    Permissions = iota // bits 0-3 unset
	PermEdit                          // only bit 3 set
	PermView                          // only bit 2 set
	PermRestricted                    // only bit 1 set
)
