package terms

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokAtom
	tokString
	tokInteger
	tokFloat
	tokChar
	tokPunct
	tokDot
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of file"
	case tokAtom:
		return "atom"
	case tokString:
		return "string"
	case tokInteger:
		return "integer"
	case tokFloat:
		return "float"
	case tokChar:
		return "character"
	case tokPunct:
		return "punctuation"
	case tokDot:
		return "full stop"
	}
	return "unknown"
}

// token.text is the decoded value for atoms and strings and the raw source
// for everything else.
type token struct {
	kind  tokenKind
	text  string
	start int
	end   int
	line  int
	col   int
}

// SyntaxError reports where a file stops being a valid term sequence
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Msg)
}

type lexer struct {
	src  string
	pos  int
	line int
	col  int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1, col: 1}
}

func (l *lexer) errorf(line, col int, format string, args ...interface{}) error {
	return &SyntaxError{Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}

func (l *lexer) peekByte(offset int) byte {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

func (l *lexer) advance(n int) {
	for i := 0; i < n && l.pos < len(l.src); i++ {
		if l.src[l.pos] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.pos++
	}
}

func (l *lexer) skipSpaceAndComments() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '%':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.advance(1)
			}
		case isSpace(c):
			l.advance(1)
		default:
			return
		}
	}
}

func (l *lexer) next() (token, error) {
	l.skipSpaceAndComments()
	tok := token{start: l.pos, line: l.line, col: l.col}
	if l.pos >= len(l.src) {
		tok.kind = tokEOF
		tok.end = l.pos
		return tok, nil
	}

	c := l.src[l.pos]
	var err error
	switch {
	case isLower(c):
		for l.pos < len(l.src) && isNameChar(l.src[l.pos]) {
			l.advance(1)
		}
		tok.kind = tokAtom
		tok.text = l.src[tok.start:l.pos]
	case isUpper(c) || c == '_':
		return tok, l.errorf(tok.line, tok.col, "variables are not allowed in consulted files")
	case c == '\'':
		tok.kind = tokAtom
		tok.text, err = l.readQuoted('\'')
	case c == '"':
		tok.kind = tokString
		tok.text, err = l.readQuoted('"')
	case isDigit(c):
		tok.kind, err = l.readNumber()
		tok.text = l.src[tok.start:l.pos]
	case c == '$':
		l.advance(1)
		err = l.readCharLiteral()
		tok.kind = tokChar
		tok.text = l.src[tok.start:l.pos]
	case c == '.':
		next := l.peekByte(1)
		if next != 0 && !isSpace(next) && next != '%' {
			return tok, l.errorf(tok.line, tok.col, "unexpected '.'")
		}
		l.advance(1)
		tok.kind = tokDot
		tok.text = "."
	default:
		tok.kind = tokPunct
		tok.text, err = l.readPunct()
	}
	if err != nil {
		return tok, err
	}
	tok.end = l.pos
	return tok, nil
}

func (l *lexer) readPunct() (string, error) {
	two := ""
	if l.pos+1 < len(l.src) {
		two = l.src[l.pos : l.pos+2]
	}
	switch two {
	case "<<", ">>", "#{", "=>", ":=":
		l.advance(2)
		return two, nil
	}
	c := l.src[l.pos]
	switch c {
	case '{', '}', '[', ']', '|', ',', ':', '/', '-', '+':
		l.advance(1)
		return string(c), nil
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.pos:])
	return "", l.errorf(l.line, l.col, "unexpected character %q", r)
}

func (l *lexer) readNumber() (tokenKind, error) {
	line, col := l.line, l.col
	l.readDigits(isDigit)
	if l.peekByte(0) == '#' {
		l.advance(1)
		if !isAlnum(l.peekByte(0)) {
			return tokInteger, l.errorf(line, col, "malformed based integer")
		}
		l.readDigits(isAlnum)
		return tokInteger, nil
	}
	if l.peekByte(0) != '.' || !isDigit(l.peekByte(1)) {
		return tokInteger, nil
	}
	l.advance(1)
	l.readDigits(isDigit)
	if e := l.peekByte(0); e == 'e' || e == 'E' {
		l.advance(1)
		if s := l.peekByte(0); s == '+' || s == '-' {
			l.advance(1)
		}
		if !isDigit(l.peekByte(0)) {
			return tokFloat, l.errorf(line, col, "malformed float exponent")
		}
		l.readDigits(isDigit)
	}
	return tokFloat, nil
}

// readDigits also accepts '_' between digits, as OTP 23 does
func (l *lexer) readDigits(ok func(byte) bool) {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if ok(c) || (c == '_' && ok(l.peekByte(1))) {
			l.advance(1)
			continue
		}
		return
	}
}

func (l *lexer) readCharLiteral() error {
	if l.pos >= len(l.src) {
		return l.errorf(l.line, l.col, "unterminated character literal")
	}
	if l.src[l.pos] == '\\' {
		_, err := l.readEscape()
		return err
	}
	_, size := utf8.DecodeRuneInString(l.src[l.pos:])
	l.advance(size)
	return nil
}

func (l *lexer) readQuoted(quote byte) (string, error) {
	line, col := l.line, l.col
	l.advance(1)
	var sb strings.Builder
	for {
		if l.pos >= len(l.src) {
			return "", l.errorf(line, col, "unterminated %s", quoteName(quote))
		}
		c := l.src[l.pos]
		switch c {
		case quote:
			l.advance(1)
			return sb.String(), nil
		case '\\':
			r, err := l.readEscape()
			if err != nil {
				return "", err
			}
			sb.WriteRune(r)
		default:
			r, size := utf8.DecodeRuneInString(l.src[l.pos:])
			sb.WriteRune(r)
			l.advance(size)
		}
	}
}

// readEscape decodes the escape sequence starting at the backslash
func (l *lexer) readEscape() (rune, error) {
	line, col := l.line, l.col
	l.advance(1)
	if l.pos >= len(l.src) {
		return 0, l.errorf(line, col, "unterminated escape sequence")
	}
	c := l.src[l.pos]
	switch c {
	case 'n':
		l.advance(1)
		return '\n', nil
	case 't':
		l.advance(1)
		return '\t', nil
	case 'r':
		l.advance(1)
		return '\r', nil
	case 's':
		l.advance(1)
		return ' ', nil
	case 'b':
		l.advance(1)
		return '\b', nil
	case 'f':
		l.advance(1)
		return '\f', nil
	case 'e':
		l.advance(1)
		return 0x1b, nil
	case 'v':
		l.advance(1)
		return '\v', nil
	case 'd':
		l.advance(1)
		return 0x7f, nil
	case '^':
		l.advance(1)
		if l.pos >= len(l.src) {
			return 0, l.errorf(line, col, "unterminated control escape")
		}
		ctl := l.src[l.pos]
		l.advance(1)
		return rune(ctl & 0x1f), nil
	case 'x':
		l.advance(1)
		return l.readHexEscape(line, col)
	}
	if c >= '0' && c <= '7' {
		start := l.pos
		for i := 0; i < 3 && l.peekByte(0) >= '0' && l.peekByte(0) <= '7'; i++ {
			l.advance(1)
		}
		n, _ := strconv.ParseInt(l.src[start:l.pos], 8, 32)
		return rune(n), nil
	}
	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	l.advance(size)
	return r, nil
}

func (l *lexer) readHexEscape(line, col int) (rune, error) {
	var digits string
	if l.peekByte(0) == '{' {
		l.advance(1)
		start := l.pos
		for isHex(l.peekByte(0)) {
			l.advance(1)
		}
		digits = l.src[start:l.pos]
		if l.peekByte(0) != '}' {
			return 0, l.errorf(line, col, "malformed \\x{...} escape")
		}
		l.advance(1)
	} else {
		start := l.pos
		for i := 0; i < 2 && isHex(l.peekByte(0)); i++ {
			l.advance(1)
		}
		digits = l.src[start:l.pos]
	}
	n, err := strconv.ParseInt(digits, 16, 32)
	if err != nil {
		return 0, l.errorf(line, col, "malformed \\x escape")
	}
	return rune(n), nil
}

func quoteName(q byte) string {
	if q == '\'' {
		return "quoted atom"
	}
	return "string"
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isAlnum(c byte) bool { return isDigit(c) || isLower(c) || isUpper(c) }
func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isNameChar(c byte) bool {
	return isAlnum(c) || c == '_' || c == '@'
}
