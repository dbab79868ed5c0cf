// Package lexer scans MDSL source text into a token stream.
//
// Grounded on tokenmodel/dsl/lexer.go's char-at-a-time scanner shape
// (readChar/peekChar/skipWhitespace, a byte-indexed cursor with a sentinel
// zero byte at EOF), extended per spec.md §4.2 to the full MDSL token set:
// case-insensitive keywords, //, /* */ and # comments, double-quoted
// strings with escapes, $variable references, @annotations, and the full
// punctuation set.
package lexer

import (
	"strings"

	"github.com/mdsl-lang/mdslc/diag"
	"github.com/mdsl-lang/mdslc/lang/token"
	"github.com/mdsl-lang/mdslc/sourcemap"
)

// Lexer scans one file's content into tokens.
type Lexer struct {
	file    sourcemap.FileID
	src     string
	pos     int // offset of ch
	readPos int // offset of next byte
	ch      byte

	errs *diag.Sink
}

// New creates a Lexer over the given file's already-interned content.
func New(file sourcemap.FileID, src string) *Lexer {
	l := &Lexer{file: file, src: src, errs: diag.NewSink()}
	l.readChar()
	return l
}

// Errors returns every lexical error accumulated so far.
func (l *Lexer) Errors() *diag.Sink { return l.errs }

func (l *Lexer) readChar() {
	if l.readPos >= len(l.src) {
		l.ch = 0
	} else {
		l.ch = l.src[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
}

func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.src) {
		return 0
	}
	return l.src[l.readPos]
}

func (l *Lexer) span(start int) sourcemap.Span {
	return sourcemap.Span{File: l.file, Start: start, End: l.pos}
}

func (l *Lexer) skipTrivia() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r':
			l.readChar()
		case l.ch == '#':
			for l.ch != 0 && l.ch != '\n' {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != 0 && l.ch != '\n' {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			start := l.pos
			l.readChar()
			l.readChar()
			closed := false
			for l.ch != 0 {
				if l.ch == '*' && l.peekChar() == '/' {
					l.readChar()
					l.readChar()
					closed = true
					break
				}
				l.readChar()
			}
			if !closed {
				l.errs.Errorf(l.span(start), diag.KindUnterminatedComment, "unterminated block comment")
			}
		default:
			return
		}
	}
}

// Next returns the next token in the stream. Once EOF is returned, every
// subsequent call returns EOF again.
func (l *Lexer) Next() token.Token {
	l.skipTrivia()
	start := l.pos

	switch {
	case l.ch == 0:
		return token.Token{Kind: token.EOF, Span: l.span(start)}
	case l.ch == '{':
		l.readChar()
		return token.Token{Kind: token.LBrace, Literal: "{", Span: l.span(start)}
	case l.ch == '}':
		l.readChar()
		return token.Token{Kind: token.RBrace, Literal: "}", Span: l.span(start)}
	case l.ch == '(':
		l.readChar()
		return token.Token{Kind: token.LParen, Literal: "(", Span: l.span(start)}
	case l.ch == ')':
		l.readChar()
		return token.Token{Kind: token.RParen, Literal: ")", Span: l.span(start)}
	case l.ch == '[':
		l.readChar()
		return token.Token{Kind: token.LBracket, Literal: "[", Span: l.span(start)}
	case l.ch == ']':
		l.readChar()
		return token.Token{Kind: token.RBracket, Literal: "]", Span: l.span(start)}
	case l.ch == ',':
		l.readChar()
		return token.Token{Kind: token.Comma, Literal: ",", Span: l.span(start)}
	case l.ch == ';':
		l.readChar()
		return token.Token{Kind: token.Semicolon, Literal: ";", Span: l.span(start)}
	case l.ch == ':':
		l.readChar()
		return token.Token{Kind: token.Colon, Literal: ":", Span: l.span(start)}
	case l.ch == '=':
		l.readChar()
		return token.Token{Kind: token.Equals, Literal: "=", Span: l.span(start)}
	case l.ch == '.':
		if isDigit(l.peekChar()) {
			// Tolerate a leading-dot fractional literal (".5") even though
			// spec.md's grammar always writes a leading digit; harmless to
			// accept defensively.
			lit := l.readNumber()
			return token.Token{Kind: token.Number, Literal: lit, Span: l.span(start)}
		}
		l.readChar()
		return token.Token{Kind: token.Dot, Literal: ".", Span: l.span(start)}
	case l.ch == '-':
		if l.peekChar() == '>' {
			l.readChar()
			l.readChar()
			return token.Token{Kind: token.Arrow, Literal: "->", Span: l.span(start)}
		}
		if isDigit(l.peekChar()) {
			l.readChar()
			lit := "-" + l.readNumber()
			return token.Token{Kind: token.Number, Literal: lit, Span: l.span(start)}
		}
		l.errs.Errorf(l.span(start), diag.KindUnexpectedChar, "unexpected character %q", l.ch)
		l.readChar()
		return l.Next()
	case l.ch == '"':
		lit, ok := l.readString()
		if !ok {
			l.errs.Errorf(l.span(start), diag.KindUnterminatedString, "unterminated string literal")
		}
		return token.Token{Kind: token.String, Literal: lit, Span: l.span(start)}
	case l.ch == '$':
		l.readChar()
		name := l.readIdent()
		if name == "" {
			l.errs.Errorf(l.span(start), diag.KindUnexpectedChar, "expected identifier after '$'")
		}
		return token.Token{Kind: token.Variable, Literal: name, Span: l.span(start)}
	case l.ch == '@':
		l.readChar()
		name := l.readIdent()
		if name == "" {
			l.errs.Errorf(l.span(start), diag.KindUnexpectedChar, "expected identifier after '@'")
		}
		return token.Token{Kind: token.Annotation, Literal: name, Span: l.span(start)}
	case isDigit(l.ch):
		lit := l.readNumber()
		return token.Token{Kind: token.Number, Literal: lit, Span: l.span(start)}
	case isIdentStart(l.ch):
		lit := l.readIdent()
		if kind, ok := token.LookupKeyword(lit); ok {
			return token.Token{Kind: kind, Literal: strings.ToUpper(lit), Span: l.span(start)}
		}
		return token.Token{Kind: token.Ident, Literal: lit, Span: l.span(start)}
	default:
		l.errs.Errorf(l.span(start), diag.KindUnexpectedChar, "unexpected character %q", l.ch)
		l.readChar()
		return l.Next()
	}
}

func (l *Lexer) readIdent() string {
	start := l.pos
	for isIdentPart(l.ch) {
		l.readChar()
	}
	return l.src[start:l.pos]
}

func (l *Lexer) readNumber() string {
	start := l.pos
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.src[start:l.pos]
}

// readString consumes the opening quote, the body (honoring \" \\ \n
// escapes), and the closing quote. It returns ok=false if EOF or a
// newline is hit before the closing quote (multi-line strings are not
// permitted, per spec.md §4.2).
func (l *Lexer) readString() (string, bool) {
	l.readChar() // consume opening quote
	var b strings.Builder
	for {
		if l.ch == 0 || l.ch == '\n' {
			return b.String(), false
		}
		if l.ch == '"' {
			l.readChar()
			return b.String(), true
		}
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			case 'n':
				b.WriteByte('\n')
			default:
				b.WriteByte('\\')
				b.WriteByte(l.ch)
			}
			l.readChar()
			continue
		}
		b.WriteByte(l.ch)
		l.readChar()
	}
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isIdentStart(ch byte) bool {
	return (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z') || ch == '_'
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

// Tokenize scans the whole file and returns every token including the
// trailing EOF, for callers (like the `lex` CLI subcommand) that want the
// full stream rather than pull-based access.
func Tokenize(file sourcemap.FileID, src string) ([]token.Token, *diag.Sink) {
	l := New(file, src)
	var toks []token.Token
	for {
		t := l.Next()
		toks = append(toks, t)
		if t.Kind == token.EOF {
			break
		}
	}
	return toks, l.Errors()
}
