package sqlshim

import "testing"

func TestTokenizeFiltersWhitespace(t *testing.T) {
	toks := FilterSignificant(Tokenize("SELECT   1  "))
	if len(toks) != 2 {
		t.Fatalf("got %d tokens, want 2: %+v", len(toks), toks)
	}
	if toks[0].Kind != TokWord || toks[0].Text != "SELECT" {
		t.Errorf("tok0 = %+v", toks[0])
	}
	if toks[1].Kind != TokNumber || toks[1].Text != "1" {
		t.Errorf("tok1 = %+v", toks[1])
	}
}

func TestTokenizeDropsComments(t *testing.T) {
	toks := FilterSignificant(Tokenize("SELECT 1 -- trailing comment\n, 2 /* block */ , 3"))
	var words []string
	for _, tok := range toks {
		words = append(words, tok.Text)
	}
	want := []string{"SELECT", "1", ",", "2", ",", "3"}
	if len(words) != len(want) {
		t.Fatalf("got %v, want %v", words, want)
	}
	for i := range want {
		if words[i] != want[i] {
			t.Errorf("tok[%d] = %q, want %q", i, words[i], want[i])
		}
	}
}

func TestTokenizePlaceholder(t *testing.T) {
	toks := FilterSignificant(Tokenize("WHERE x = $1"))
	last := toks[len(toks)-1]
	if last.Kind != TokPlaceholder || last.Text != "$1" {
		t.Errorf("last tok = %+v, want placeholder $1", last)
	}
}

func TestTokenizeQuotedStringWithEscape(t *testing.T) {
	toks := FilterSignificant(Tokenize(`SELECT 'it''s a test'`))
	if len(toks) != 2 || toks[1].Kind != TokString {
		t.Fatalf("got %+v", toks)
	}
	if toks[1].Text != `'it''s a test'` {
		t.Errorf("string tok = %q", toks[1].Text)
	}
}

func TestMatchableCaseInsensitiveForWords(t *testing.T) {
	a := Token{TokWord, "SELECT"}
	b := Token{TokWord, "select"}
	if !a.matchable(b) {
		t.Error("expected keyword match to be case-insensitive")
	}
	s1 := Token{TokString, "'Foo'"}
	s2 := Token{TokString, "'foo'"}
	if s1.matchable(s2) {
		t.Error("expected string literal match to be case-sensitive")
	}
}
