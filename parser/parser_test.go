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

package parser

import (
	"testing"

	"seehuhn.de/go/fea/diag"
	"seehuhn.de/go/fea/syntax"
	"seehuhn.de/go/fea/token"
)

func parseString(t *testing.T, src string) *syntax.Node {
	t.Helper()
	bag := &diag.Bag{}
	builder := syntax.NewBuilder()
	p, err := New(src, 0, bag, builder)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p.ParseFile()
	if bag.HasErrors() {
		for _, d := range bag.All() {
			t.Logf("diag: %s", d.Message)
		}
		t.Fatalf("unexpected parse errors")
	}
	return builder.Finish()
}

func TestParseLosslessRoundTrip(t *testing.T) {
	src := "languagesystem DFLT dflt;\n\nfeature liga {\n    sub a b by ab;\n} liga;\n"
	root := parseString(t, src)
	if got := root.Text(); got != src {
		t.Errorf("lossless round trip failed:\n got: %q\nwant: %q", got, src)
	}
}

func TestParseGlyphClassDef(t *testing.T) {
	root := parseString(t, "@vowels = [a e i o u];\n")
	defs := root.ChildrenOfKind(token.GlyphClassDefNode)
	if len(defs) != 1 {
		t.Fatalf("expected 1 glyph class def, got %d", len(defs))
	}
}

func TestParseFeatureWithSingleSub(t *testing.T) {
	src := "feature smcp {\n    sub a by a.sc;\n} smcp;\n"
	root := parseString(t, src)
	features := root.ChildrenOfKind(token.FeatureNode)
	if len(features) != 1 {
		t.Fatalf("expected 1 feature block, got %d", len(features))
	}
	feat := features[0].(*syntax.Node)
	var found bool
	for _, c := range feat.Children() {
		if c.Kind() == token.GsubType1Node {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a GsubType1Node rule inside the feature block")
	}
}

func TestParseLigature(t *testing.T) {
	src := "feature liga {\n    sub f i by f_i;\n} liga;\n"
	root := parseString(t, src)
	feat := root.ChildrenOfKind(token.FeatureNode)[0].(*syntax.Node)
	var found bool
	for _, c := range feat.Children() {
		if c.Kind() == token.GsubType4Node {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a GsubType4Node (ligature) rule inside the feature block")
	}
}

func TestParseLookupBlockAndRef(t *testing.T) {
	src := "lookup MyLookup {\n    sub a by b;\n} MyLookup;\n\nfeature test {\n    lookup MyLookup;\n} test;\n"
	root := parseString(t, src)
	if len(root.ChildrenOfKind(token.LookupBlockNode)) != 1 {
		t.Fatalf("expected a top-level LookupBlockNode")
	}
	feat := root.ChildrenOfKind(token.FeatureNode)[0].(*syntax.Node)
	var found bool
	for _, c := range feat.Children() {
		if c.Kind() == token.LookupRefNode {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a LookupRefNode inside the feature block")
	}
}

func TestParsePairPos(t *testing.T) {
	src := "feature kern {\n    pos a b -50;\n} kern;\n"
	root := parseString(t, src)
	feat := root.ChildrenOfKind(token.FeatureNode)[0].(*syntax.Node)
	var found bool
	for _, c := range feat.Children() {
		if c.Kind() == token.GposType2Node {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a GposType2Node (pair) rule inside the feature block")
	}
}

func TestParseMarkToBase(t *testing.T) {
	src := "feature mark {\n" +
		"    pos base a <anchor 250 450> mark @TOP_MARKS;\n" +
		"} mark;\n"
	root := parseString(t, src)
	feat := root.ChildrenOfKind(token.FeatureNode)[0].(*syntax.Node)
	var found bool
	for _, c := range feat.Children() {
		if c.Kind() == token.GposType4Node {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a GposType4Node (mark-to-base) rule inside the feature block")
	}
}

// TestParseLookupflagStatement checks that `lookupflag` is recognized as
// its own keyword (not left as a bare Ident that falls through to the
// block statement's error-recovery branch), and that its LookupflagStmtNode
// carries the flag words as children alongside the leading keyword.
func TestParseLookupflagStatement(t *testing.T) {
	src := "feature mark {\n" +
		"    lookupflag UseMarkFilteringSet @TOP_MARKS;\n" +
		"    pos base a <anchor 250 450> mark @TOP_MARKS;\n" +
		"} mark;\n"
	root := parseString(t, src)
	feat := root.ChildrenOfKind(token.FeatureNode)[0].(*syntax.Node)
	stmts := feat.ChildrenOfKind(token.LookupflagStmtNode)
	if len(stmts) != 1 {
		t.Fatalf("expected 1 LookupflagStmtNode, got %d", len(stmts))
	}
	stmt := stmts[0].(*syntax.Node)
	var sawKeyword, sawFlag bool
	for _, c := range stmt.Children() {
		switch c.Kind() {
		case token.KwLookupflag:
			sawKeyword = true
		case token.KwUseMarkFilteringSet:
			sawFlag = true
		}
	}
	if !sawKeyword {
		t.Errorf("expected the lookupflag keyword token as a child of LookupflagStmtNode")
	}
	if !sawFlag {
		t.Errorf("expected UseMarkFilteringSet as a child of LookupflagStmtNode")
	}
}
