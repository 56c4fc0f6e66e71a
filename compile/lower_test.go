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

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/fea/ast"
	"seehuhn.de/go/fea/diag"
	"seehuhn.de/go/fea/glyph"
	"seehuhn.de/go/fea/opentype/gtab"
	"seehuhn.de/go/fea/parser"
	"seehuhn.de/go/fea/syntax"
)

// lowerSource parses and lowers src against names, failing the test if
// parsing or validation reports an error.
func lowerSource(t *testing.T, src string, names []string) *Compilation {
	t.Helper()
	bag := &diag.Bag{}
	builder := syntax.NewBuilder()
	p, err := parser.New(src, 0, bag, builder)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p.ParseFile()
	root := builder.Finish()
	f := ast.NewFile(root)

	glyphs := glyph.NewNameMap(names)
	v := NewValidator(glyphs, 0, bag)
	v.Validate(f)
	if bag.HasErrors() {
		t.Fatalf("unexpected validation errors: %v", bag.All())
	}

	c := NewContext(glyphs, 0, bag)
	c.Lower(f)
	if bag.HasErrors() {
		t.Fatalf("unexpected lowering errors: %v", bag.All())
	}
	return c.Result()
}

// TestLowerFeatureWithNoScriptCoversAllLanguageSystems checks that a
// feature body with no script/language statement attaches its lookup to
// every declared languagesystem, not just the ones under the default
// script (spec.md §4.5.1 rule 1).
func TestLowerFeatureWithNoScriptCoversAllLanguageSystems(t *testing.T) {
	src := "languagesystem DFLT dflt;\nlanguagesystem latn TRK;\n" +
		"feature liga { sub f i by f_i; } liga;\n"
	result := lowerSource(t, src, []string{".notdef", "f", "i", "f_i"})

	if result.Lookups.Len() == 0 {
		t.Fatalf("expected at least one lookup")
	}
	id := gtab.LookupID(0)

	want := map[FeatureKey][]gtab.LookupID{
		{Feature: "liga", Script: "DFLT", Language: "dflt"}: {id},
		{Feature: "liga", Script: "latn", Language: "TRK"}:  {id},
	}
	if diff := cmp.Diff(want, result.Features); diff != "" {
		t.Errorf("Features mismatch (-want +got):\n%s", diff)
	}
}

// TestLowerScriptStatementNarrowsToSingleDefaultLanguage checks that a bare
// `script <tag>;` statement narrows the current language systems to that
// script's own default language only, not every languagesystem declared
// for that script (spec.md §4.5.1 rule 2).
func TestLowerScriptStatementNarrowsToSingleDefaultLanguage(t *testing.T) {
	src := "languagesystem latn TRK;\nlanguagesystem latn ENG;\n" +
		"feature liga {\n  script latn;\n  sub f i by f_i;\n} liga;\n"
	result := lowerSource(t, src, []string{".notdef", "f", "i", "f_i"})

	id := gtab.LookupID(0)
	want := map[FeatureKey][]gtab.LookupID{
		{Feature: "liga", Script: "latn", Language: "dflt"}: {id},
	}
	if diff := cmp.Diff(want, result.Features); diff != "" {
		t.Errorf("Features mismatch (-want +got):\n%s", diff)
	}
}

// TestLowerLanguageStatementInheritsDefaultOnce checks that a
// `language <tag>;` statement (without exclude_dflt) copies the lookups
// already registered against the script's dflt language system into its
// own list once, and that lookups opened afterward register only against
// the named language, not back into dflt (spec.md §4.5.1 rule 3).
func TestLowerLanguageStatementInheritsDefaultOnce(t *testing.T) {
	src := "languagesystem latn dflt;\nlanguagesystem latn TRK;\n" +
		"feature liga {\n" +
		"  script latn;\n" +
		"  sub f i by f_i;\n" +
		"  language TRK;\n" +
		"  sub c t by c_t;\n" +
		"} liga;\n"
	result := lowerSource(t, src, []string{".notdef", "f", "i", "f_i", "c", "t", "c_t"})

	if result.Lookups.Len() != 2 {
		t.Fatalf("expected 2 lookups, got %d", result.Lookups.Len())
	}
	dfltID, trkID := gtab.LookupID(0), gtab.LookupID(1)

	want := map[FeatureKey][]gtab.LookupID{
		{Feature: "liga", Script: "latn", Language: "dflt"}: {dfltID},
		{Feature: "liga", Script: "latn", Language: "TRK"}:  {dfltID, trkID},
	}
	if diff := cmp.Diff(want, result.Features); diff != "" {
		t.Errorf("Features mismatch (-want +got):\n%s", diff)
	}
}
