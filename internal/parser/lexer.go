package parser

import (
	"unicode/utf8"
)

// lexer produces tokens lazily over a source buffer, referencing spans by
// offset only — it never copies substrings (spec.md 4.2, "tokens never own
// substrings").
type lexer struct {
	src  []byte
	pos  int
	line int
	col  int
}

func newLexer(src []byte) *lexer {
	return &lexer{src: src, pos: 0, line: 1, col: 1}
}

func (lx *lexer) atEnd() bool { return lx.pos >= len(lx.src) }

func (lx *lexer) peekByte() byte {
	if lx.atEnd() {
		return 0
	}

	return lx.src[lx.pos]
}

func (lx *lexer) peekByteAt(offset int) byte {
	if lx.pos+offset >= len(lx.src) {
		return 0
	}

	return lx.src[lx.pos+offset]
}

func (lx *lexer) advance() byte {
	b := lx.src[lx.pos]
	lx.pos++

	if b == '\n' {
		lx.line++
		lx.col = 1
	} else {
		lx.col++
	}

	return b
}

func (lx *lexer) position() (int, int) { return lx.line, lx.col }

// skipWhitespace advances past spaces, tabs, and newlines without
// producing tokens, and returns the number of newlines skipped. next
// discards that count; comment attachment compares token line numbers.
func (lx *lexer) skipWhitespace() (newlines int) {
	for !lx.atEnd() {
		b := lx.peekByte()
		if b == ' ' || b == '\t' || b == '\r' {
			lx.advance()

			continue
		}

		if b == '\n' {
			lx.advance()
			newlines++

			continue
		}

		break
	}

	return newlines
}

// next scans and returns the next token, skipping leading whitespace.
// Comments are returned as tokens too; the parser decides attachment.
func (lx *lexer) next() Token {
	lx.skipWhitespace()

	startLine, startCol := lx.position()
	start := lx.pos

	if lx.atEnd() {
		return Token{Kind: TokenEOF, Start: uint32(start), End: uint32(start), Line: startLine, Col: startCol}
	}

	b := lx.peekByte()

	switch {
	case b == '/' && lx.peekByteAt(1) == '/':
		return lx.scanLineComment(start, startLine, startCol)
	case b == '/' && lx.peekByteAt(1) == '*':
		return lx.scanBlockComment(start, startLine, startCol)
	case isIdentStart(b):
		return lx.scanIdentifier(start, startLine, startCol)
	case b >= '0' && b <= '9':
		return lx.scanNumber(start, startLine, startCol)
	case b == '"':
		return lx.scanString(start, startLine, startCol)
	case b == '\'':
		return lx.scanChar(start, startLine, startCol)
	default:
		return lx.scanOperatorOrPunct(start, startLine, startCol)
	}
}

func isIdentStart(b byte) bool {
	return b == '_' || b == '$' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b >= utf8.RuneSelf
}

func isIdentPart(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

func (lx *lexer) scanLineComment(start, line, col int) Token {
	for !lx.atEnd() && lx.peekByte() != '\n' {
		lx.advance()
	}

	return Token{Kind: TokenLineComment, Start: uint32(start), End: uint32(lx.pos), Line: line, Col: col}
}

func (lx *lexer) scanBlockComment(start, line, col int) Token {
	isDoc := lx.peekByteAt(2) == '*' && lx.peekByteAt(3) != '/'

	lx.advance() // '/'
	lx.advance() // '*'

	for !lx.atEnd() {
		if lx.peekByte() == '*' && lx.peekByteAt(1) == '/' {
			lx.advance()
			lx.advance()

			break
		}

		lx.advance()
	}

	kind := TokenBlockComment
	if isDoc {
		kind = TokenDocComment
	}

	return Token{Kind: kind, Start: uint32(start), End: uint32(lx.pos), Line: line, Col: col}
}

func (lx *lexer) scanIdentifier(start, line, col int) Token {
	for !lx.atEnd() && isIdentPart(lx.peekByte()) {
		lx.advance()
	}

	text := string(lx.src[start:lx.pos])

	kind := TokenIdentifier

	switch {
	case booleanLiterals[text]:
		kind = TokenBoolLiteral
	case text == "null":
		kind = TokenNullLiteral
	case isKeyword(text):
		kind = TokenKeyword
	}

	return Token{Kind: kind, Start: uint32(start), End: uint32(lx.pos), Line: line, Col: col}
}

func (lx *lexer) scanNumber(start, line, col int) Token {
	isFloat := false

	for !lx.atEnd() && (isDigitOrSeparator(lx.peekByte()) || isHexOrExpChar(lx.peekByte())) {
		if lx.peekByte() == '.' || lx.peekByte() == 'e' || lx.peekByte() == 'E' {
			isFloat = true
		}

		lx.advance()
	}

	// Trailing type suffix: f/F/d/D/l/L.
	if !lx.atEnd() && isNumberSuffix(lx.peekByte()) {
		if lx.peekByte() == 'f' || lx.peekByte() == 'F' || lx.peekByte() == 'd' || lx.peekByte() == 'D' {
			isFloat = true
		}

		lx.advance()
	}

	kind := TokenIntLiteral
	if isFloat {
		kind = TokenFloatLiteral
	}

	return Token{Kind: kind, Start: uint32(start), End: uint32(lx.pos), Line: line, Col: col}
}

func isDigitOrSeparator(b byte) bool {
	return (b >= '0' && b <= '9') || b == '_' || b == '.'
}

func isHexOrExpChar(b byte) bool {
	switch b {
	case 'x', 'X', 'a', 'A', 'b', 'B', 'c', 'C', 'e', 'E', '+', '-':
		return true
	default:
		return false
	}
}

func isNumberSuffix(b byte) bool {
	switch b {
	case 'f', 'F', 'd', 'D', 'l', 'L':
		return true
	default:
		return false
	}
}

func (lx *lexer) scanString(start, line, col int) Token {
	lx.advance() // opening quote

	for !lx.atEnd() && lx.peekByte() != '"' {
		if lx.peekByte() == '\\' {
			lx.advance()
		}

		if !lx.atEnd() {
			lx.advance()
		}
	}

	if !lx.atEnd() {
		lx.advance() // closing quote
	}

	return Token{Kind: TokenStringLiteral, Start: uint32(start), End: uint32(lx.pos), Line: line, Col: col}
}

func (lx *lexer) scanChar(start, line, col int) Token {
	lx.advance() // opening quote

	for !lx.atEnd() && lx.peekByte() != '\'' {
		if lx.peekByte() == '\\' {
			lx.advance()
		}

		if !lx.atEnd() {
			lx.advance()
		}
	}

	if !lx.atEnd() {
		lx.advance() // closing quote
	}

	return Token{Kind: TokenCharLiteral, Start: uint32(start), End: uint32(lx.pos), Line: line, Col: col}
}

// multiCharOperators lists operator spellings longer than one byte, tried
// longest-first so e.g. ">>>=" is not mis-scanned as ">" four times.
var multiCharOperators = []string{
	">>>=", "<<=", ">>=", ">>>", "...",
	"==", "!=", "<=", ">=", "&&", "||", "++", "--",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<", ">>",
	"->", "::",
}

func (lx *lexer) scanOperatorOrPunct(start, line, col int) Token {
	rest := lx.src[lx.pos:]

	for _, op := range multiCharOperators {
		if hasPrefixBytes(rest, op) {
			for range len(op) {
				lx.advance()
			}

			return Token{Kind: TokenOperator, Start: uint32(start), End: uint32(lx.pos), Line: line, Col: col}
		}
	}

	b := lx.advance()

	kind := TokenOperator
	if isPunct(b) {
		kind = TokenPunct
	}

	return Token{Kind: kind, Start: uint32(start), End: uint32(lx.pos), Line: line, Col: col}
}

func hasPrefixBytes(s []byte, prefix string) bool {
	if len(s) < len(prefix) {
		return false
	}

	return string(s[:len(prefix)]) == prefix
}

func isPunct(b byte) bool {
	switch b {
	case '(', ')', '{', '}', '[', ']', ';', ',', '.', '@':
		return true
	default:
		return false
	}
}

// runeAt decodes the rune starting at byte offset off. Nothing in the
// parser calls it: identifier length (MaxIdentifierLength) is counted in
// bytes.
func runeAt(src []byte, off int) (rune, int) {
	return utf8.DecodeRune(src[off:])
}
