// Copyright © 2016 Abcum Ltd
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package lex

import (
	"fmt"
	"strings"

	"github.com/abcum/partiql/errs"
)

const eof = rune(0)

// Triple is one (start_offset, Token, end_offset) scan result,
// carrying the token's decoded literal text.
type Triple struct {
	Start, End int
	Tok        Token
	Lit        string
}

// Scanner is a hand-rolled recursive scanner over a rune slice,
// following the teacher's sql/scanner.go next()/undo() shape rather
// than bufio.Reader, since embedded-literal scanning (backtick
// regions) needs unbounded pushback while tracking nested quotes and
// comments.
type Scanner struct {
	src  []rune
	pos  int // index of the next rune to read
	offs []int // byte offset of each rune in src, for error spans
	off  *OffsetTracker
}

// New builds a Scanner over src.
func New(src string) *Scanner {
	runes := []rune(src)
	offsets := make([]int, len(runes)+1)
	b := 0
	for i, r := range runes {
		offsets[i] = b
		b += runeLen(r)
	}
	offsets[len(runes)] = b
	s := &Scanner{src: runes, offs: offsets, off: NewOffsetTracker(len(src))}
	for i, r := range runes {
		if r == '\n' {
			s.off.RecordNewline(offsets[i+1])
		}
	}
	return s
}

// Offsets returns the scanner's OffsetTracker, for resolving error
// spans to (line, column) positions.
func (s *Scanner) Offsets() *OffsetTracker { return s.off }

func runeLen(r rune) int {
	switch {
	case r < 0x80:
		return 1
	case r < 0x800:
		return 2
	case r < 0x10000:
		return 3
	default:
		return 4
	}
}

func (s *Scanner) next() rune {
	if s.pos >= len(s.src) {
		s.pos++
		return eof
	}
	r := s.src[s.pos]
	s.pos++
	return r
}

func (s *Scanner) undo() {
	if s.pos > 0 {
		s.pos--
	}
}

func (s *Scanner) peek() rune {
	r := s.next()
	s.undo()
	return r
}

func (s *Scanner) byteOffset(pos int) int {
	if pos < 0 {
		pos = 0
	}
	if pos > len(s.offs)-1 {
		pos = len(s.offs) - 1
	}
	return s.offs[pos]
}

// Scan reads and returns the next token. It never panics: all error
// conditions surface as Triple{Tok: ILLEGAL} with an accompanying
// error.
func (s *Scanner) Scan() (Triple, error) {

	start := s.pos
	ch := s.next()

	for isBlank(ch) {
		start = s.pos
		ch = s.next()
	}

	startByte := s.byteOffset(start)

	mk := func(tok Token, lit string) (Triple, error) {
		return Triple{Start: startByte, End: s.byteOffset(s.pos), Tok: tok, Lit: lit}, nil
	}
	fail := func(e error) (Triple, error) {
		return Triple{Start: startByte, End: s.byteOffset(s.pos), Tok: ILLEGAL}, e
	}

	switch {

	case ch == eof:
		return mk(EOF, "")

	case isIdentStart(ch):
		return s.scanIdent(ch, mk)

	case ch == '"':
		return s.scanQuotedIdent(mk, fail)

	case ch == '@':
		return s.scanAtIdent(mk, fail)

	case isDigit(ch):
		return s.scanNumber(ch, mk)

	case ch == '\'':
		return s.scanString(mk, fail)

	case ch == '`':
		return s.scanEmbedded(mk, fail)

	case ch == '-' && s.peek() == '-':
		s.next()
		s.skipLineComment()
		return s.Scan()

	case ch == '/' && s.peek() == '*':
		s.next()
		if err := s.skipBlockComment(); err != nil {
			return fail(err)
		}
		return s.Scan()

	case ch == '<':
		if s.peek() == '<' {
			s.next()
			return mk(DLCHEVRON, "<<")
		}
		if s.peek() == '=' {
			s.next()
			return mk(LTE, "<=")
		}
		if s.peek() == '>' {
			s.next()
			return mk(NEQ, "<>")
		}
		return mk(LT, "<")

	case ch == '>':
		if s.peek() == '>' {
			s.next()
			return mk(DRCHEVRON, ">>")
		}
		if s.peek() == '=' {
			s.next()
			return mk(GTE, ">=")
		}
		return mk(GT, ">")

	case ch == '=':
		if s.peek() == '=' {
			s.next()
			return mk(DEQ, "==")
		}
		return mk(EQ, "=")

	case ch == '!':
		if s.peek() == '=' {
			s.next()
			return mk(NEQ, "!=")
		}
		return fail(&errs.LexicalError{Reason: "unexpected '!'"})

	case ch == '|':
		if s.peek() == '|' {
			s.next()
			return mk(PIPE, "||")
		}
		return fail(&errs.LexicalError{Reason: "unexpected '|'"})

	case ch == '(':
		return mk(LPAREN, "(")
	case ch == ')':
		return mk(RPAREN, ")")
	case ch == '[':
		return mk(LBRACK, "[")
	case ch == ']':
		return mk(RBRACK, "]")
	case ch == '{':
		return mk(LBRACE, "{")
	case ch == '}':
		return mk(RBRACE, "}")
	case ch == ',':
		return mk(COMMA, ",")
	case ch == ';':
		return mk(SEMICOLON, ";")
	case ch == ':':
		return mk(COLON, ":")
	case ch == '.':
		if isDigit(s.peek()) {
			s.undo() // let scanNumber consume the leading '.'
			return s.scanNumber(s.next(), mk)
		}
		return mk(DOT, ".")
	case ch == '*':
		return mk(STAR, "*")
	case ch == '+':
		return mk(PLUS, "+")
	case ch == '-':
		return mk(MINUS, "-")
	case ch == '/':
		return mk(SLASH, "/")
	case ch == '%':
		return mk(PERCENT, "%")
	case ch == '^':
		return mk(CARET, "^")
	}

	return fail(&errs.LexicalError{Reason: fmt.Sprintf("invalid input %q", ch)})
}

func isBlank(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n'
}

func isIdentStart(ch rune) bool {
	return ch == '_' || ch == '$' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch rune) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func (s *Scanner) scanIdent(first rune, mk func(Token, string) (Triple, error)) (Triple, error) {
	var b strings.Builder
	b.WriteRune(first)
	for isIdentPart(s.peek()) {
		b.WriteRune(s.next())
	}
	lit := b.String()
	return mk(Lookup(lit), lit)
}

func (s *Scanner) scanAtIdent(mk func(Token, string) (Triple, error), fail func(error) (Triple, error)) (Triple, error) {
	var b strings.Builder
	for isIdentPart(s.peek()) {
		b.WriteRune(s.next())
	}
	if b.Len() == 0 {
		return fail(&errs.LexicalError{Reason: "expected identifier after '@'"})
	}
	return mk(ATIDENT, b.String())
}

func (s *Scanner) scanQuotedIdent(mk func(Token, string) (Triple, error), fail func(error) (Triple, error)) (Triple, error) {
	var b strings.Builder
	for {
		ch := s.next()
		if ch == eof {
			return fail(&errs.LexicalError{Reason: "unterminated quoted identifier"})
		}
		if ch == '"' {
			break
		}
		b.WriteRune(ch)
	}
	return mk(QUOTEDIENT, b.String())
}

func (s *Scanner) scanString(mk func(Token, string) (Triple, error), fail func(error) (Triple, error)) (Triple, error) {
	var b strings.Builder
	for {
		ch := s.next()
		if ch == eof {
			return fail(&errs.LexicalError{Reason: "unterminated string literal"})
		}
		if ch == '\'' {
			if s.peek() == '\'' {
				s.next()
				b.WriteRune('\'')
				continue
			}
			break
		}
		b.WriteRune(ch)
	}
	return mk(STRING, b.String())
}

func (s *Scanner) scanNumber(first rune, mk func(Token, string) (Triple, error)) (Triple, error) {
	var b strings.Builder
	b.WriteRune(first)
	if first != '.' {
		for isDigit(s.peek()) {
			b.WriteRune(s.next())
		}
	}
	if first == '.' || s.peek() == '.' {
		if first != '.' {
			b.WriteRune(s.next()) // consume '.'
		}
		for isDigit(s.peek()) {
			b.WriteRune(s.next())
		}
	}
	if p := s.peek(); p == 'e' || p == 'E' {
		save := s.pos
		b2 := b.String()
		exp := string(s.next())
		if p2 := s.peek(); p2 == '+' || p2 == '-' {
			exp += string(s.next())
		}
		if isDigit(s.peek()) {
			for isDigit(s.peek()) {
				exp += string(s.next())
			}
			b.Reset()
			b.WriteString(b2 + exp)
		} else {
			s.pos = save
		}
	}
	return mk(NUMBER, b.String())
}

func (s *Scanner) skipLineComment() {
	for {
		ch := s.next()
		if ch == eof || ch == '\n' {
			return
		}
	}
}

// skipBlockComment consumes a /* ... */ comment, supporting nesting,
// per §4.1 ("Block comments ... nesting supported when parsing
// top-level comments").
func (s *Scanner) skipBlockComment() error {
	depth := 1
	for depth > 0 {
		ch := s.next()
		if ch == eof {
			return &errs.LexicalError{Reason: "unterminated comment"}
		}
		if ch == '/' && s.peek() == '*' {
			s.next()
			depth++
			continue
		}
		if ch == '*' && s.peek() == '/' {
			s.next()
			depth--
		}
	}
	return nil
}

// scanEmbedded scans a back-ticked embedded value region (§4.1): it
// must stay aware of nested quotes and comments so that a backtick
// inside an embedded string does not terminate the literal early, but
// block comments are NOT permitted to nest while inside the embedded
// region (forbidden per §4.1).
func (s *Scanner) scanEmbedded(mk func(Token, string) (Triple, error), fail func(error) (Triple, error)) (Triple, error) {
	var b strings.Builder
	for {
		ch := s.next()
		switch ch {
		case eof:
			return fail(&errs.LexicalError{Reason: "unterminated embedded value literal"})
		case '`':
			return mk(EMBEDDED, b.String())
		case '\'', '"':
			b.WriteRune(ch)
			quote := ch
			triple := false
			if quote == '\'' && s.peek() == '\'' {
				s.next()
				if s.peek() == '\'' {
					s.next()
					triple = true
					b.WriteString("''")
				} else {
					// empty '' string
					b.WriteRune('\'')
					continue
				}
			}
			if err := s.scanNestedString(&b, quote, triple); err != nil {
				return fail(err)
			}
		case '/':
			if s.peek() == '*' {
				return fail(&errs.LexicalError{Reason: "nested block comments are not allowed inside an embedded value literal"})
			}
			b.WriteRune(ch)
		default:
			b.WriteRune(ch)
		}
	}
}

// scanNestedString consumes the remainder of a quoted region found
// inside an embedded-value literal (including PartiQL's triple-quoted
// long strings), appending its text (including the closing
// delimiter(s)) to b.
func (s *Scanner) scanNestedString(b *strings.Builder, quote rune, triple bool) error {
	closesNeeded := 1
	if triple {
		closesNeeded = 3
	}
	run := 0
	for {
		ch := s.next()
		if ch == eof {
			return &errs.LexicalError{Reason: "unterminated string inside embedded value literal"}
		}
		b.WriteRune(ch)
		if ch == quote {
			run++
			if run == closesNeeded {
				return nil
			}
		} else {
			run = 0
		}
	}
}
