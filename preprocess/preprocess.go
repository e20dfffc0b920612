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

// Package preprocess rewrites SQL-ism keyword-delimited function
// calls (TRIM(LEADING 'x' FROM s), SUBSTRING(s FROM 2 FOR 3), ...)
// into uniform function calls with positional-or-named arguments
// (§4.2). Grounded on partiql-parser/src/preprocessor.rs's
// FnExprArgMatch pattern primitives, reimplemented over lex.Triple
// tokens since this module's lexer has no regex-token abstraction.
package preprocess

import (
	"strings"

	"github.com/abcum/partiql/errs"
	"github.com/abcum/partiql/lex"
)

// argMatch is one pattern primitive, mirroring §4.2's table.
type argMatch struct {
	kind matchKind
	// for namedKw/synthesize
	kw  lex.Token
	lit string
	// for namedArgKwSet: the reserved-keyword tokens this slot accepts
	// (e.g. LEADING/TRAILING/BOTH, which the lexer never emits as
	// IDENT, so namedArgID cannot be used for them)
	kwSet []lex.Token
	// for namedID: case-insensitive set of acceptable identifier spellings
	idSet map[string]bool
}

type matchKind int

const (
	anyOne matchKind = iota
	anyZeroOrMore
	namedArgKw
	namedArgKwSet
	namedArgID
	synthesize
)

// pattern is an ordered list of argMatch primitives describing one
// accepted argument shape for a built-in.
type pattern []argMatch

// builtin bundles every accepted pattern for one rewritten function
// name.
type builtin struct {
	name     string
	patterns []pattern
}

func kw(t lex.Token) argMatch { return argMatch{kind: namedArgKw, kw: t} }
func id(words ...string) argMatch {
	set := map[string]bool{}
	for _, w := range words {
		set[strings.ToLower(w)] = true
	}
	return argMatch{kind: namedArgID, idSet: set}
}

// kwChoice matches whichever of the given reserved-keyword tokens is
// present, naming the argument after the matched keyword's own
// spelling (e.g. LEADING/TRAILING/BOTH, which the lexer reserves and
// therefore never tokenizes as IDENT).
func kwChoice(toks ...lex.Token) argMatch {
	return argMatch{kind: namedArgKwSet, kwSet: toks}
}
func one() argMatch               { return argMatch{kind: anyOne} }
func star() argMatch              { return argMatch{kind: anyZeroOrMore} }
func syn(lit string) argMatch     { return argMatch{kind: synthesize, lit: lit} }

var builtins = []builtin{
	{
		name: "trim",
		patterns: []pattern{
			// TRIM(LEADING 'x' FROM s)
			{kwChoice(lex.LEADING, lex.TRAILING, lex.BOTH), one(), star(), kw(lex.FROM), one(), star()},
			// TRIM(LEADING FROM s) -- synthesize default ' '
			{kwChoice(lex.LEADING, lex.TRAILING, lex.BOTH), syn(" "), kw(lex.FROM), one(), star()},
			// TRIM('x' FROM s)
			{one(), star(), kw(lex.FROM), one(), star()},
			// TRIM(FROM s)
			{kw(lex.FROM), one(), star()},
		},
	},
	{
		name: "substring",
		patterns: []pattern{
			// SUBSTRING(s FROM 2 FOR 3)
			{one(), star(), kw(lex.FROM), one(), star(), kw(lex.FOR), one(), star()},
			// SUBSTRING(s FROM 2)
			{one(), star(), kw(lex.FROM), one(), star()},
		},
	},
	{
		name: "extract",
		patterns: []pattern{
			{id("year", "month", "day", "hour", "minute", "second",
				"timezone_hour", "timezone_minute"), kw(lex.FROM), one(), star()},
		},
	},
	{
		name: "position",
		patterns: []pattern{
			{one(), star(), kw(lex.IN), one(), star()},
		},
	},
	{
		name: "overlay",
		patterns: []pattern{
			{one(), star(), kw(lex.PLACING), one(), star(), kw(lex.FROM), one(), star(), kw(lex.FOR), one(), star()},
		},
	},
}

// cast and count are deliberately absent from this table. CAST(x AS
// type) lexes its AS as the reserved lex.CAST keyword token rather
// than lex.IDENT, so a call-site pattern here could never match it;
// parser.parseCastExpr already parses it as its own AST node.
// COUNT(DISTINCT x) is parsed directly by parseCallExpr, which checks
// for a literal DISTINCT token and sets CallExpr.Distinct — rewriting
// it into a named "distinct" argument here would hide that token from
// the parser and silently turn it into an ordinary named argument
// instead.

func lookup(name string) (builtin, bool) {
	low := strings.ToLower(name)
	for _, b := range builtins {
		if b.name == low {
			return b, true
		}
	}
	return builtin{}, false
}

// Rewrite scans tok for recognized built-in call sites and rewrites
// the tokens of each matching call so the parser sees a uniform
// positional-or-named argument list. Preprocessing never fails outright:
// an unmatched call site is left untouched (§4.2 "non-rewriting
// fallback"); only an unterminated call is an error.
func Rewrite(tok []lex.Triple) ([]lex.Triple, error) {
	out := make([]lex.Triple, 0, len(tok))
	i := 0
	for i < len(tok) {
		t := tok[i]
		if t.Tok == lex.IDENT {
			if b, ok := lookup(t.Lit); ok && i+1 < len(tok) && tok[i+1].Tok == lex.LPAREN {
				end, err := matchingParen(tok, i+1)
				if err != nil {
					return nil, err
				}
				args := tok[i+2 : end] // tokens strictly inside the parens
				if rewritten, ok := tryRewrite(b, args); ok {
					out = append(out, t, tok[i+1])
					out = append(out, rewritten...)
					out = append(out, tok[end])
					i = end + 1
					continue
				}
				// no pattern matched: copy the call verbatim, but still
				// recurse into it so nested calls to built-ins are rewritten.
				inner, err := Rewrite(args)
				if err != nil {
					return nil, err
				}
				out = append(out, t, tok[i+1])
				out = append(out, inner...)
				out = append(out, tok[end])
				i = end + 1
				continue
			}
		}
		out = append(out, t)
		i++
	}
	return out, nil
}

// matchingParen returns the index of the RPAREN matching the LPAREN
// at tok[open], accounting for nested parens.
func matchingParen(tok []lex.Triple, open int) (int, error) {
	depth := 0
	for i := open; i < len(tok); i++ {
		switch tok[i].Tok {
		case lex.LPAREN:
			depth++
		case lex.RPAREN:
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, &errs.LexicalError{Reason: "unterminated call: missing closing ')'"}
}

// tryRewrite attempts every pattern for b against args in turn,
// returning the first complete match (§9: "tries all patterns in
// parallel and drops patterns that fail").
func tryRewrite(b builtin, args []lex.Triple) ([]lex.Triple, bool) {
	for _, p := range b.patterns {
		if out, ok := matchPattern(p, args); ok {
			return out, true
		}
	}
	return nil, false
}

// matchPattern greedily matches one pattern against args, producing a
// rewritten token sequence with NamedArgKw/NamedArgId matches turned
// into `name: ` token pairs ahead of the argument tokens they name,
// and argument runs separated by COMMA.
func matchPattern(p pattern, args []lex.Triple) ([]lex.Triple, bool) {

	var out []lex.Triple
	pos := 0
	argIdx := 0
	pendingName := ""

	emitArgStart := func() {
		if argIdx > 0 {
			out = append(out, lex.Triple{Tok: lex.COMMA, Lit: ","})
		}
		if pendingName != "" {
			out = append(out, lex.Triple{Tok: lex.IDENT, Lit: pendingName}, lex.Triple{Tok: lex.COLON, Lit: ":"})
			pendingName = ""
		}
		argIdx++
	}

	for pi := 0; pi < len(p); pi++ {
		m := p[pi]
		switch m.kind {

		case namedArgKw:
			if pos >= len(args) || args[pos].Tok != m.kw {
				return nil, false
			}
			pendingName = strings.ToLower(m.kw.String())
			pos++

		case namedArgKwSet:
			if pos >= len(args) || !tokIn(args[pos].Tok, m.kwSet) {
				return nil, false
			}
			pendingName = strings.ToLower(args[pos].Tok.String())
			pos++

		case namedArgID:
			// EXTRACT's field names (year/month/.../timezone_minute) are
			// flags, not values: the matched identifier itself becomes
			// the argument name, with a synthesized literal `true` as
			// its value (§4.2: EXTRACT(HOUR FROM t) -> EXTRACT(hour:
			// true, from: t)).
			if pos >= len(args) || args[pos].Tok != lex.IDENT || !m.idSet[strings.ToLower(args[pos].Lit)] {
				return nil, false
			}
			pendingName = strings.ToLower(args[pos].Lit)
			pos++
			emitArgStart()
			out = append(out, lex.Triple{Tok: lex.TRUE, Lit: "true"})

		case synthesize:
			emitArgStart()
			out = append(out, lex.Triple{Tok: lex.STRING, Lit: m.lit})

		case anyOne:
			if pos >= len(args) || isStructural(args[pos].Tok) {
				return nil, false
			}
			emitArgStart()
			out = append(out, args[pos])
			pos++

		case anyZeroOrMore:
			// Continues the argument opened by the preceding AnyOne:
			// no new comma, no new name prefix.
			for pos < len(args) && !isStructural(args[pos].Tok) && !isUpcomingKeyword(p, pi, args, pos) {
				out = append(out, args[pos])
				pos++
			}
		}
	}

	if pos != len(args) {
		return nil, false
	}

	return out, true
}

// isStructural reports whether tok is call-punctuation that a bare
// AnyOne/AnyZeroOrMore match must not consume (comma breaks argument
// runs; this function only ever sees tokens already isolated to one
// argument list, so only COMMA is relevant).
func isStructural(tok lex.Token) bool {
	return tok == lex.COMMA
}

// isUpcomingKeyword stops a greedy AnyZeroOrMore run as soon as the
// next pattern element is a NamedArgKw/NamedArgId that the upcoming
// tokens can satisfy; a simple one-token lookahead is sufficient for
// the fixed set of patterns this package matches, since no pattern
// nests two greedy runs back-to-back without an intervening keyword.
func isUpcomingKeyword(p pattern, idx int, args []lex.Triple, pos int) bool {
	if idx+1 >= len(p) {
		return false
	}
	next := p[idx+1]
	if pos >= len(args) {
		return false
	}
	switch next.kind {
	case namedArgKw:
		return args[pos].Tok == next.kw
	case namedArgKwSet:
		return tokIn(args[pos].Tok, next.kwSet)
	case namedArgID:
		return args[pos].Tok == lex.IDENT && next.idSet[strings.ToLower(args[pos].Lit)]
	}
	return false
}

// tokIn reports whether tok appears in set.
func tokIn(tok lex.Token, set []lex.Token) bool {
	for _, t := range set {
		if tok == t {
			return true
		}
	}
	return false
}
