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

package compile

import (
	"testing"

	"seehuhn.de/go/fea/ast"
	"seehuhn.de/go/fea/diag"
	"seehuhn.de/go/fea/glyph"
	"seehuhn.de/go/fea/parser"
	"seehuhn.de/go/fea/syntax"
)

func validateSource(t *testing.T, src string, names []string) *diag.Bag {
	t.Helper()
	bag := &diag.Bag{}
	builder := syntax.NewBuilder()
	p, err := parser.New(src, 0, bag, builder)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p.ParseFile()
	root := builder.Finish()

	glyphs := glyph.NewNameMap(names)
	v := NewValidator(glyphs, 0, bag)
	v.Validate(ast.NewFile(root))
	return bag
}

func TestValidatorUndefinedGlyph(t *testing.T) {
	bag := validateSource(t, "feature liga { sub a b by ab; } liga;\n", []string{".notdef", "b", "ab"})
	if !bag.HasErrors() {
		t.Fatalf("expected an error for undefined glyph %q, got none", "a")
	}
}

func TestValidatorKnownGlyphsPass(t *testing.T) {
	bag := validateSource(t, "feature liga { sub a b by ab; } liga;\n",
		[]string{".notdef", "a", "b", "ab"})
	for _, d := range bag.All() {
		if d.IsError() {
			t.Errorf("unexpected error: %s", d.Message)
		}
	}
}

func TestValidatorLanguageSystemOrdering(t *testing.T) {
	src := "languagesystem latn TRK;\nlanguagesystem DFLT dflt;\n"
	bag := validateSource(t, src, []string{".notdef"})
	if !bag.HasErrors() {
		t.Fatalf("expected an ordering error when DFLT dflt is not first")
	}
}

func TestValidatorUndefinedGlyphClass(t *testing.T) {
	bag := validateSource(t, "feature liga { sub @vowels by a; } liga;\n", []string{".notdef", "a"})
	if !bag.HasErrors() {
		t.Fatalf("expected a reference error for undefined glyph class @vowels")
	}
}

func TestValidatorSizeFeatureRequiresParameters(t *testing.T) {
	src := "feature size { sizemenuname \"Display\"; } size;\n"
	bag := validateSource(t, src, []string{".notdef"})
	if !bag.HasErrors() {
		t.Fatalf("expected an error: size feature without a parameters statement")
	}
}

func TestValidatorGlyphRangeDescendingIsError(t *testing.T) {
	src := "feature liga { sub [a9-a1] by b; } liga;\n"
	bag := validateSource(t, src, []string{".notdef", "a1", "a2", "a3", "a4", "a5", "a6", "a7", "a8", "a9", "b"})
	if !bag.HasErrors() {
		t.Fatalf("expected an error for a descending glyph range")
	}
}

func TestValidatorOS2PanoseRange(t *testing.T) {
	src := "table OS/2 {\n  Panose 2 11 6 2 2 1 4 200 2 3;\n} OS/2;\n"
	bag := validateSource(t, src, []string{".notdef"})
	if !bag.HasErrors() {
		t.Fatalf("expected an error: Panose value 200 is out of range 0..127")
	}
}
