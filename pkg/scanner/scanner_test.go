package scanner

import "testing"

func collectTypes(source string) []TokenType {
	s := New(source)
	var types []TokenType
	for {
		tok := s.Next()
		types = append(types, tok.Type)
		if tok.Type == TokenEOF {
			return types
		}
	}
}

func TestPunctuationAndOperators(t *testing.T) {
	got := collectTypes("(){};,.+-*/ ! != = == < <= > >=")
	want := []TokenType{
		TokenLeftParen, TokenRightParen, TokenLeftBrace, TokenRightBrace,
		TokenSemicolon, TokenComma, TokenDot, TokenPlus, TokenMinus, TokenStar, TokenSlash,
		TokenBang, TokenBangEqual, TokenEqual, TokenEqualEqual,
		TokenLess, TokenLessEqual, TokenGreater, TokenGreaterEqual,
		TokenEOF,
	}
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	got := collectTypes("class else fun if nil or print return super ego true var while and false for")
	want := []TokenType{
		TokenClass, TokenElse, TokenFun, TokenIf, TokenNil, TokenOr, TokenPrint,
		TokenReturn, TokenSuper, TokenEgo, TokenTrue, TokenVar, TokenWhile,
		TokenAnd, TokenFalse, TokenFor, TokenEOF,
	}
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestIdentifierNotKeywordPrefix(t *testing.T) {
	s := New("classroom")
	tok := s.Next()
	if tok.Type != TokenIdentifier || tok.Lexeme != "classroom" {
		t.Errorf("got %v %q, want identifier %q", tok.Type, tok.Lexeme, "classroom")
	}
}

func TestStringLiteral(t *testing.T) {
	s := New(`"hello world"`)
	tok := s.Next()
	if tok.Type != TokenString {
		t.Fatalf("Type = %v, want TokenString", tok.Type)
	}
	if tok.Lexeme != `"hello world"` {
		t.Errorf("Lexeme = %q, want %q", tok.Lexeme, `"hello world"`)
	}
}

func TestUnterminatedString(t *testing.T) {
	s := New(`"oops`)
	tok := s.Next()
	if tok.Type != TokenError {
		t.Fatalf("Type = %v, want TokenError", tok.Type)
	}
	if tok.Lexeme != "Unterminated string." {
		t.Errorf("Lexeme = %q, want %q", tok.Lexeme, "Unterminated string.")
	}
}

func TestNumberLiteral(t *testing.T) {
	tests := []string{"123", "3.14", "0"}
	for _, src := range tests {
		s := New(src)
		tok := s.Next()
		if tok.Type != TokenNumber || tok.Lexeme != src {
			t.Errorf("New(%q).Next() = %v %q, want TokenNumber %q", src, tok.Type, tok.Lexeme, src)
		}
	}
}

func TestCommentsAndWhitespaceSkipped(t *testing.T) {
	got := collectTypes("// a comment\n  \t 42 // trailing\n")
	want := []TokenType{TokenNumber, TokenEOF}
	if len(got) != len(want) || got[0] != want[0] {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestLineTracking(t *testing.T) {
	s := New("1\n2\n3")
	var lines []int
	for {
		tok := s.Next()
		if tok.Type == TokenEOF {
			break
		}
		lines = append(lines, tok.Line)
	}
	want := []int{1, 2, 3}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("token %d line = %d, want %d", i, lines[i], w)
		}
	}
}

func TestUnexpectedCharacter(t *testing.T) {
	s := New("@")
	tok := s.Next()
	if tok.Type != TokenError || tok.Lexeme != "Unexpected character." {
		t.Errorf("got %v %q, want error %q", tok.Type, tok.Lexeme, "Unexpected character.")
	}
}
