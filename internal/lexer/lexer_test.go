package lexer

import "testing"

func TestBasicTokens(t *testing.T) {
	input := `$count = 42;
$label = "hello"`

	tests := []struct {
		expectedKind TokenKind
		expectedText string
	}{
		{TokenDollarIdent, "$count"},
		{TokenAssign, "="},
		{TokenInteger, "42"},
		{TokenSemicolon, ";"},
		{TokenNewline, "\n"},
		{TokenDollarIdent, "$label"},
		{TokenAssign, "="},
		{TokenString, "hello"},
		{TokenEOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Kind != tt.expectedKind {
			t.Fatalf("tests[%d] - token kind wrong. expected=%q, got=%q",
				i, tt.expectedKind, tok.Kind)
		}

		if tok.Text != tt.expectedText {
			t.Fatalf("tests[%d] - text wrong. expected=%q, got=%q",
				i, tt.expectedText, tok.Text)
		}
	}
}

func TestKeywords(t *testing.T) {
	input := `class constructor return async public private protected this new true false null`

	tests := []TokenKind{
		TokenClass,
		TokenConstructor,
		TokenReturn,
		TokenAsync,
		TokenPublic,
		TokenPrivate,
		TokenProtected,
		TokenThis,
		TokenNew,
		TokenBool,
		TokenBool,
		TokenNull,
		TokenEOF,
	}

	l := New(input)

	for i, expected := range tests {
		tok := l.NextToken()
		if tok.Kind != expected {
			t.Fatalf("tests[%d] - token kind wrong. expected=%q, got=%q",
				i, expected, tok.Kind)
		}
	}
}

func TestStringQuoteStyles(t *testing.T) {
	input := "'single' \"double\" `backtick`"

	tests := []struct {
		expectedKind TokenKind
		expectedText string
	}{
		{TokenString, "single"},
		{TokenString, "double"},
		{TokenTemplate, "backtick"},
		{TokenEOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Kind != tt.expectedKind {
			t.Fatalf("tests[%d] - token kind wrong. expected=%q, got=%q",
				i, tt.expectedKind, tok.Kind)
		}
		if tok.Text != tt.expectedText {
			t.Fatalf("tests[%d] - text wrong. expected=%q, got=%q",
				i, tt.expectedText, tok.Text)
		}
	}
}

func TestNumberLiterals(t *testing.T) {
	input := "42 19.99 0 3.0"

	tests := []struct {
		expectedKind TokenKind
		expectedText string
	}{
		{TokenInteger, "42"},
		{TokenFloat, "19.99"},
		{TokenInteger, "0"},
		{TokenFloat, "3.0"},
		{TokenEOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Kind != tt.expectedKind {
			t.Fatalf("tests[%d] - token kind wrong. expected=%q, got=%q",
				i, tt.expectedKind, tok.Kind)
		}
		if tok.Text != tt.expectedText {
			t.Fatalf("tests[%d] - text wrong. expected=%q, got=%q",
				i, tt.expectedText, tok.Text)
		}
	}
}

func TestOperators(t *testing.T) {
	input := `= == === != !== ! => < <= > >= && || + - * / %`

	tests := []TokenKind{
		TokenAssign, TokenEq, TokenStrictEq, TokenNe, TokenStrictNe,
		TokenBang, TokenArrow, TokenLt, TokenLe, TokenGt, TokenGe,
		TokenAnd, TokenOr, TokenPlus, TokenMinus, TokenStar,
		TokenSlash, TokenPercent, TokenEOF,
	}

	l := New(input)

	for i, expected := range tests {
		tok := l.NextToken()
		if tok.Kind != expected {
			t.Fatalf("tests[%d] - token kind wrong. expected=%q, got=%q",
				i, expected, tok.Kind)
		}
	}
}

func TestCommentsDiscardedButTracked(t *testing.T) {
	input := "// leading comment\n$a = 1 /* inline */ + 2"

	l := New(input)

	tok := l.NextToken()
	if tok.Kind != TokenComment {
		t.Fatalf("expected comment token, got %q", tok.Kind)
	}

	tok = l.NextToken()
	if tok.Kind != TokenNewline {
		t.Fatalf("expected newline token, got %q", tok.Kind)
	}

	tok = l.NextToken()
	if tok.Kind != TokenDollarIdent || tok.Line != 2 {
		t.Fatalf("expected $a on line 2, got %q on line %d", tok.Text, tok.Line)
	}

	kinds := []TokenKind{TokenAssign, TokenInteger, TokenComment, TokenPlus, TokenInteger, TokenEOF}
	for i, expected := range kinds {
		tok = l.NextToken()
		if tok.Kind != expected {
			t.Fatalf("kinds[%d] - token kind wrong. expected=%q, got=%q",
				i, expected, tok.Kind)
		}
	}
}

func TestPositionTracking(t *testing.T) {
	input := "$a = 1\n  $b = 2"

	l := New(input)

	tok := l.NextToken()
	if tok.Line != 1 || tok.Column != 1 || tok.Index != 0 {
		t.Fatalf("$a position wrong: line=%d column=%d index=%d", tok.Line, tok.Column, tok.Index)
	}

	// Skip to $b: '=', '1', newline.
	l.NextToken()
	l.NextToken()
	l.NextToken()

	tok = l.NextToken()
	if tok.Text != "$b" {
		t.Fatalf("expected $b, got %q", tok.Text)
	}
	if tok.Line != 2 || tok.Column != 3 {
		t.Fatalf("$b position wrong: line=%d column=%d", tok.Line, tok.Column)
	}
	if tok.Index != 9 {
		t.Fatalf("$b index wrong: %d", tok.Index)
	}
}

func TestLoneDollar(t *testing.T) {
	l := New("$ = 5")

	tok := l.NextToken()
	if tok.Kind != TokenDollar {
		t.Fatalf("expected lone dollar token, got %q", tok.Kind)
	}
}

func TestUnterminatedString(t *testing.T) {
	l := New(`$a = "oops`)

	l.NextToken() // $a
	l.NextToken() // =
	tok := l.NextToken()
	if tok.Kind != TokenError {
		t.Fatalf("expected error token for unterminated string, got %q", tok.Kind)
	}
}
