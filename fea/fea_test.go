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

package fea

import (
	"fmt"
	"testing"

	"seehuhn.de/go/fea/glyph"
	"seehuhn.de/go/fea/parser"
)

func memoryReader(files map[string]string) parser.FileReader {
	return func(path string) (string, error) {
		src, ok := files[path]
		if !ok {
			return "", fmt.Errorf("no such file: %s", path)
		}
		return src, nil
	}
}

func TestParseRootFileExpandsIncludes(t *testing.T) {
	files := map[string]string{
		"root.fea": "include(common.fea);\nfeature liga { sub f i by f_i; } liga;\n",
		"common.fea": "languagesystem DFLT dflt;\n",
	}
	tree, bag, err := ParseRootFile("root.fea", memoryReader(files))
	if err != nil {
		t.Fatalf("ParseRootFile: %v", err)
	}
	for _, d := range bag.All() {
		if d.IsError() {
			t.Errorf("unexpected parse error: %s", d.Message)
		}
	}
	want := files["common.fea"] + "\nfeature liga { sub f i by f_i; } liga;\n"
	if got := tree.Root.Text(); got != want {
		t.Errorf("include expansion text mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestCompileEndToEnd(t *testing.T) {
	files := map[string]string{
		"root.fea": "languagesystem DFLT dflt;\nfeature liga { sub f i by f_i; } liga;\n",
	}
	tree, bag, err := ParseRootFile("root.fea", memoryReader(files))
	if err != nil {
		t.Fatalf("ParseRootFile: %v", err)
	}
	if bag.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", bag.All())
	}

	glyphs := glyph.NewNameMap([]string{".notdef", "f", "i", "f_i"})
	result, compileBag := Compile(tree, glyphs)
	for _, d := range compileBag.All() {
		t.Logf("diag: %s", d.Message)
	}
	if compileBag.HasErrors() {
		t.Fatalf("unexpected compile errors")
	}
	if result == nil {
		t.Fatal("expected a non-nil Compilation")
	}
	if result.Lookups.Len() == 0 {
		t.Error("expected at least one lookup to be registered")
	}
}

func TestCompileSkipsLoweringAfterValidationErrors(t *testing.T) {
	files := map[string]string{
		"root.fea": "feature liga { sub missing_glyph by f_i; } liga;\n",
	}
	tree, bag, err := ParseRootFile("root.fea", memoryReader(files))
	if err != nil {
		t.Fatalf("ParseRootFile: %v", err)
	}
	if bag.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", bag.All())
	}

	glyphs := glyph.NewNameMap([]string{".notdef", "f_i"})
	result, compileBag := Compile(tree, glyphs)
	if !compileBag.HasErrors() {
		t.Fatalf("expected a validation error for the undefined glyph")
	}
	if result != nil {
		t.Fatalf("expected lowering to be skipped, got a Compilation")
	}
}
