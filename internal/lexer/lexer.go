// Package lexer implements the Pulse dialect lexical analyzer.
// The dialect is ECMAScript-like with $-prefixed bindable identifiers,
// an optional reactive suffix marker, optional type annotations, and
// optional statement terminators.
package lexer

import (
	"fmt"
)

// TokenKind represents the kind of a token
type TokenKind int

// String returns a string representation of the token kind
func (tk TokenKind) String() string {
	if name, ok := tokenNames[tk]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(tk))
}

// Token kinds
const (
	// Special tokens
	TokenEOF TokenKind = iota
	TokenError
	TokenNewline
	TokenComment

	// Literals and names
	TokenIdentifier
	TokenDollarIdent
	TokenDollar // lone '$' with no name attached
	TokenInteger
	TokenFloat
	TokenString
	TokenTemplate
	TokenBool
	TokenNull

	// Keywords
	TokenClass
	TokenConstructor
	TokenReturn
	TokenAsync
	TokenAwait
	TokenPublic
	TokenPrivate
	TokenProtected
	TokenThis
	TokenNew

	// Operators
	TokenAssign
	TokenArrow
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenPercent
	TokenEq
	TokenStrictEq
	TokenNe
	TokenStrictNe
	TokenLt
	TokenLe
	TokenGt
	TokenGe
	TokenAnd
	TokenOr
	TokenBang

	// Punctuation
	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenLBracket
	TokenRBracket
	TokenSemicolon
	TokenComma
	TokenDot
	TokenColon
)

// Token represents a lexical token with position information.
// Tokens are immutable once produced; the parser borrows them but
// never mutates them.
type Token struct {
	Kind   TokenKind
	Text   string
	Line   int // 1-based line number
	Column int // 1-based column number
	Index  int // 0-based byte offset in source
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("{Kind: %s, Text: %q, Line: %d, Column: %d}",
		t.Kind, t.Text, t.Line, t.Column)
}

// tokenNames provides string representations for token kinds
var tokenNames = map[TokenKind]string{
	TokenEOF:     "EOF",
	TokenError:   "ERROR",
	TokenNewline: "NEWLINE",
	TokenComment: "COMMENT",

	TokenIdentifier:  "IDENTIFIER",
	TokenDollarIdent: "DOLLAR_IDENTIFIER",
	TokenDollar:      "DOLLAR",
	TokenInteger:     "INTEGER",
	TokenFloat:       "FLOAT",
	TokenString:      "STRING",
	TokenTemplate:    "TEMPLATE",
	TokenBool:        "BOOL",
	TokenNull:        "NULL",

	TokenClass:       "CLASS",
	TokenConstructor: "CONSTRUCTOR",
	TokenReturn:      "RETURN",
	TokenAsync:       "ASYNC",
	TokenAwait:       "AWAIT",
	TokenPublic:      "PUBLIC",
	TokenPrivate:     "PRIVATE",
	TokenProtected:   "PROTECTED",
	TokenThis:        "THIS",
	TokenNew:         "NEW",

	TokenAssign:   "ASSIGN",
	TokenArrow:    "ARROW",
	TokenPlus:     "PLUS",
	TokenMinus:    "MINUS",
	TokenStar:     "STAR",
	TokenSlash:    "SLASH",
	TokenPercent:  "PERCENT",
	TokenEq:       "EQ",
	TokenStrictEq: "STRICT_EQ",
	TokenNe:       "NE",
	TokenStrictNe: "STRICT_NE",
	TokenLt:       "LT",
	TokenLe:       "LE",
	TokenGt:       "GT",
	TokenGe:       "GE",
	TokenAnd:      "AND",
	TokenOr:       "OR",
	TokenBang:     "BANG",

	TokenLParen:    "LPAREN",
	TokenRParen:    "RPAREN",
	TokenLBrace:    "LBRACE",
	TokenRBrace:    "RBRACE",
	TokenLBracket:  "LBRACKET",
	TokenRBracket:  "RBRACKET",
	TokenSemicolon: "SEMICOLON",
	TokenComma:     "COMMA",
	TokenDot:       "DOT",
	TokenColon:     "COLON",
}

// keywords maps string keywords to their token kinds
var keywords = map[string]TokenKind{
	"class":       TokenClass,
	"constructor": TokenConstructor,
	"return":      TokenReturn,
	"async":       TokenAsync,
	"await":       TokenAwait,
	"public":      TokenPublic,
	"private":     TokenPrivate,
	"protected":   TokenProtected,
	"this":        TokenThis,
	"new":         TokenNew,
	"true":        TokenBool,
	"false":       TokenBool,
	"null":        TokenNull,
}

// Lexer represents the lexical analyzer
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int  // current line number
	column       int  // current column number

	filename string // source filename for error reporting

	// Temporary state for string handling
	stringTerminated bool // whether last string was properly terminated
}

// New creates a new lexer instance
func New(input string) *Lexer {
	return NewWithFilename(input, "")
}

// NewWithFilename creates a new lexer instance with filename for error reporting
func NewWithFilename(input, filename string) *Lexer {
	l := &Lexer{
		input:    input,
		line:     1,
		column:   0,
		filename: filename,
	}
	l.readChar()
	return l
}

// Tokenize consumes the whole input and returns the token sequence,
// terminated by a single EOF token.
func (l *Lexer) Tokenize() []Token {
	tokens := make([]Token, 0, 64)
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Kind == TokenEOF {
			return tokens
		}
	}
}

// readChar reads the next character and advances position
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0 // ASCII NUL character represents "EOF"
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++

	if l.ch == '\n' {
		l.line++
		l.column = 0
	} else {
		l.column++
	}
}

// peekChar returns the next character without advancing position
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// skipWhitespace skips whitespace characters (except newlines)
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
		l.readChar()
	}
}

// readIdentifier reads an identifier starting at the current character
func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber reads an integer or decimal literal and reports whether
// a decimal point was consumed
func (l *Lexer) readNumber() (string, bool) {
	position := l.position
	hasDecimal := false

	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		hasDecimal = true
		l.readChar() // consume '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	return l.input[position:l.position], hasDecimal
}

// readString reads a quoted string literal. Single, double, and
// backtick quotes are all accepted; the caller passes the opening
// quote character. The surrounding quotes are not part of the result.
func (l *Lexer) readString(quote byte) string {
	position := l.position + 1 // skip the opening quote
	terminated := false

	for {
		l.readChar()
		if l.ch == quote {
			terminated = true
			break
		}
		if l.ch == 0 {
			// Unterminated string
			break
		}
		if l.ch == '\\' {
			l.readChar() // skip the escaped character
		}
	}

	l.stringTerminated = terminated

	return l.input[position:l.position]
}

func (l *Lexer) readComment() string {
	position := l.position
	if l.ch == '/' && l.peekChar() == '/' {
		// Single-line comment
		for l.ch != '\n' && l.ch != 0 {
			l.readChar()
		}
	} else if l.ch == '/' && l.peekChar() == '*' {
		// Multi-line comment
		l.readChar() // skip '/'
		l.readChar() // skip '*'
		for {
			if l.ch == '*' && l.peekChar() == '/' {
				l.readChar() // skip '*'
				l.readChar() // skip '/'
				break
			}
			if l.ch == 0 {
				break
			}
			l.readChar()
		}
	}
	return l.input[position:l.position]
}

// isLetter checks if character is ASCII letter
func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z'
}

// isDigit checks if character is ASCII digit
func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// NextToken scans the input and returns the next token with full
// position information
func (l *Lexer) NextToken() Token {
	var tok Token

	l.skipWhitespace()

	startLine, startColumn, startIndex := l.line, l.column, l.position

	switch l.ch {
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			if l.peekChar() == '=' {
				l.readChar()
				tok = l.newTokenAt(TokenStrictEq, "===", startLine, startColumn, startIndex)
			} else {
				tok = l.newTokenAt(TokenEq, "==", startLine, startColumn, startIndex)
			}
		} else if l.peekChar() == '>' {
			l.readChar()
			tok = l.newTokenAt(TokenArrow, "=>", startLine, startColumn, startIndex)
		} else {
			tok = l.newTokenAt(TokenAssign, "=", startLine, startColumn, startIndex)
		}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			if l.peekChar() == '=' {
				l.readChar()
				tok = l.newTokenAt(TokenStrictNe, "!==", startLine, startColumn, startIndex)
			} else {
				tok = l.newTokenAt(TokenNe, "!=", startLine, startColumn, startIndex)
			}
		} else {
			// Reactive suffix marker or logical NOT; the parser
			// disambiguates from context.
			tok = l.newTokenAt(TokenBang, "!", startLine, startColumn, startIndex)
		}
	case '+':
		tok = l.newTokenAt(TokenPlus, "+", startLine, startColumn, startIndex)
	case '-':
		tok = l.newTokenAt(TokenMinus, "-", startLine, startColumn, startIndex)
	case '*':
		tok = l.newTokenAt(TokenStar, "*", startLine, startColumn, startIndex)
	case '/':
		if l.peekChar() == '/' || l.peekChar() == '*' {
			commentText := l.readComment()
			return l.newTokenAt(TokenComment, commentText, startLine, startColumn, startIndex)
		}
		tok = l.newTokenAt(TokenSlash, "/", startLine, startColumn, startIndex)
	case '%':
		tok = l.newTokenAt(TokenPercent, "%", startLine, startColumn, startIndex)
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.newTokenAt(TokenLe, "<=", startLine, startColumn, startIndex)
		} else {
			tok = l.newTokenAt(TokenLt, "<", startLine, startColumn, startIndex)
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.newTokenAt(TokenGe, ">=", startLine, startColumn, startIndex)
		} else {
			tok = l.newTokenAt(TokenGt, ">", startLine, startColumn, startIndex)
		}
	case '&':
		if l.peekChar() == '&' {
			l.readChar()
			tok = l.newTokenAt(TokenAnd, "&&", startLine, startColumn, startIndex)
		} else {
			tok = l.newTokenAt(TokenError, string(l.ch), startLine, startColumn, startIndex)
		}
	case '|':
		if l.peekChar() == '|' {
			l.readChar()
			tok = l.newTokenAt(TokenOr, "||", startLine, startColumn, startIndex)
		} else {
			tok = l.newTokenAt(TokenError, string(l.ch), startLine, startColumn, startIndex)
		}
	case ':':
		tok = l.newTokenAt(TokenColon, ":", startLine, startColumn, startIndex)
	case ';':
		tok = l.newTokenAt(TokenSemicolon, ";", startLine, startColumn, startIndex)
	case ',':
		tok = l.newTokenAt(TokenComma, ",", startLine, startColumn, startIndex)
	case '.':
		tok = l.newTokenAt(TokenDot, ".", startLine, startColumn, startIndex)
	case '(':
		tok = l.newTokenAt(TokenLParen, "(", startLine, startColumn, startIndex)
	case ')':
		tok = l.newTokenAt(TokenRParen, ")", startLine, startColumn, startIndex)
	case '{':
		tok = l.newTokenAt(TokenLBrace, "{", startLine, startColumn, startIndex)
	case '}':
		tok = l.newTokenAt(TokenRBrace, "}", startLine, startColumn, startIndex)
	case '[':
		tok = l.newTokenAt(TokenLBracket, "[", startLine, startColumn, startIndex)
	case ']':
		tok = l.newTokenAt(TokenRBracket, "]", startLine, startColumn, startIndex)
	case '$':
		if isLetter(l.peekChar()) || l.peekChar() == '_' {
			l.readChar() // move onto the first name character
			name := l.readIdentifier()
			return l.newTokenAt(TokenDollarIdent, "$"+name, startLine, startColumn, startIndex)
		}
		tok = l.newTokenAt(TokenDollar, "$", startLine, startColumn, startIndex)
	case '"', '\'':
		quote := l.ch
		stringLiteral := l.readString(quote)
		if !l.stringTerminated {
			tok = l.newTokenAt(TokenError, "unterminated string literal", startLine, startColumn, startIndex)
		} else {
			tok = l.newTokenAt(TokenString, stringLiteral, startLine, startColumn, startIndex)
		}
	case '`':
		stringLiteral := l.readString('`')
		if !l.stringTerminated {
			tok = l.newTokenAt(TokenError, "unterminated template literal", startLine, startColumn, startIndex)
		} else {
			// Template literals normalize to the same string kind as
			// quoted literals; the raw text is kept for consumers.
			tok = l.newTokenAt(TokenTemplate, stringLiteral, startLine, startColumn, startIndex)
		}
	case '\n':
		tok = l.newTokenAt(TokenNewline, "\n", startLine, startColumn, startIndex)
	case 0:
		return l.newTokenAt(TokenEOF, "", l.line, l.column, l.position)
	default:
		if isLetter(l.ch) || l.ch == '_' {
			identLiteral := l.readIdentifier()
			return l.newTokenAt(lookupIdent(identLiteral), identLiteral, startLine, startColumn, startIndex)
		} else if isDigit(l.ch) {
			numberLiteral, hasDecimal := l.readNumber()
			kind := TokenInteger
			if hasDecimal {
				kind = TokenFloat
			}
			return l.newTokenAt(kind, numberLiteral, startLine, startColumn, startIndex)
		}
		tok = l.newTokenAt(TokenError, string(l.ch), startLine, startColumn, startIndex)
	}

	l.readChar()
	return tok
}

// newTokenAt creates a token anchored at an explicit start position
func (l *Lexer) newTokenAt(kind TokenKind, text string, line, column, index int) Token {
	return Token{
		Kind:   kind,
		Text:   text,
		Line:   line,
		Column: column,
		Index:  index,
	}
}

// lookupIdent checks if identifier is a keyword
func lookupIdent(ident string) TokenKind {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return TokenIdentifier
}
