package lexer

import (
	"testing"

	"seehuhn.de/go/fea/token"
)

func kinds(items []Item) []token.Kind {
	out := make([]token.Kind, len(items))
	for i, it := range items {
		out[i] = it.Kind
	}
	return out
}

func TestLexBasic(t *testing.T) {
	items, err := Lex("feature liga { sub a b by ab; } liga;")
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	want := []token.Kind{
		token.KwFeature, token.Whitespace, token.Ident, token.Whitespace,
		token.LBrace, token.Whitespace, token.KwSub, token.Whitespace,
		token.Ident, token.Whitespace, token.Ident, token.Whitespace,
		token.KwBy, token.Whitespace, token.Ident, token.Semi, token.Whitespace,
		token.RBrace, token.Whitespace, token.Ident, token.Semi, token.EOF,
	}
	got := kinds(items)
	if len(got) != len(want) {
		t.Fatalf("got %d items, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("item %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLexTriviaRoundTrip(t *testing.T) {
	src := "# a comment\nfeature liga {\n  sub a by b;\n} liga;\n"
	items, err := Lex(src)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	var rebuilt string
	for _, it := range items {
		if it.Kind == token.EOF {
			continue
		}
		rebuilt += it.Text
	}
	if rebuilt != src {
		t.Errorf("lossless round trip failed:\n got: %q\nwant: %q", rebuilt, src)
	}
}

func TestLexLiterals(t *testing.T) {
	items, err := Lex(`@UC = [A-Z]; \123 1.5 -2 0x1F "str\"ing"`)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	var got []token.Kind
	for _, it := range items {
		if it.Kind == token.Whitespace {
			continue
		}
		got = append(got, it.Kind)
	}
	want := []token.Kind{
		token.GlyphClassName, token.Equals, token.LBracket, token.Ident,
		token.Hyphen, token.Ident, token.RBracket, token.Semi,
		token.Cid, token.Float, token.Number, token.Number, token.String, token.EOF,
	}
	if len(got) != len(want) {
		t.Fatalf("got %d non-trivia items, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("item %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLexUnclosedString(t *testing.T) {
	_, err := Lex(`"unterminated`)
	if err == nil {
		t.Fatal("expected error for unclosed string")
	}
	if _, ok := err.(*SyntaxError); !ok {
		t.Fatalf("expected *SyntaxError, got %T", err)
	}
}
