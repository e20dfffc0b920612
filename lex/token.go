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

// Package lex implements the lexer/preprocessor front door (§4.1):
// it maps input text to a stream of (start, Token, end) triples and
// tracks line boundaries for diagnostics. Grounded on the teacher's
// sql/scanner.go and sql/token.go, extended with PartiQL's embedded
// backtick-value literals and dotted path punctuation.
package lex

// Token identifies a lexical token kind.
type Token int

const (
	ILLEGAL Token = iota
	EOF

	literalsBeg
	IDENT      // unquoted identifier
	QUOTEDIENT // "double quoted" identifier
	ATIDENT    // @-prefixed identifier
	NUMBER     // 123, 123.456, 1e10
	STRING     // 'single quoted'
	EMBEDDED   // `backtick embedded value`
	literalsEnd

	punctBeg
	LPAREN    // (
	RPAREN    // )
	LBRACK    // [
	RBRACK    // ]
	LBRACE    // {
	RBRACE    // }
	DLCHEVRON // <<
	DRCHEVRON // >>
	COMMA     // ,
	SEMICOLON // ;
	COLON     // :
	DOT       // .
	STAR      // *
	EQ        // =
	DEQ       // ==
	NEQ       // != or <>
	LT        // <
	LTE       // <=
	GT        // >
	GTE       // >=
	PLUS      // +
	MINUS     // -
	SLASH     // /
	PERCENT   // %
	CARET     // ^
	PIPE      // || (string concat)
	punctEnd

	keywordsBeg
	SELECT
	FROM
	WHERE
	GROUP
	BY
	HAVING
	ORDER
	ASC
	DESC
	NULLS
	FIRST
	LAST
	LIMIT
	OFFSET
	DISTINCT
	ALL
	UNION
	INTERSECT
	EXCEPT
	OUTER
	INNER
	LEFT
	RIGHT
	FULL
	CROSS
	NATURAL
	JOIN
	ON
	USING
	AS
	AT
	LATERAL
	PIVOT
	UNPIVOT
	VALUE
	WITH
	AND
	OR
	NOT
	IN
	IS
	LIKE
	ESCAPE
	BETWEEN
	TRUE
	FALSE
	NULL
	MISSING
	CASE
	WHEN
	THEN
	ELSE
	END
	CAST
	LEADING
	TRAILING
	BOTH
	FOR
	PLACING
	keywordsEnd
)

var keywords = map[string]Token{
	"select": SELECT, "from": FROM, "where": WHERE, "group": GROUP, "by": BY,
	"having": HAVING, "order": ORDER, "asc": ASC, "desc": DESC, "nulls": NULLS,
	"first": FIRST, "last": LAST, "limit": LIMIT, "offset": OFFSET,
	"distinct": DISTINCT, "all": ALL, "union": UNION, "intersect": INTERSECT,
	"except": EXCEPT, "outer": OUTER, "inner": INNER, "left": LEFT,
	"right": RIGHT, "full": FULL, "cross": CROSS, "natural": NATURAL,
	"join": JOIN, "on": ON, "using": USING, "as": AS, "at": AT,
	"lateral": LATERAL, "pivot": PIVOT, "unpivot": UNPIVOT, "value": VALUE,
	"with": WITH, "and": AND, "or": OR, "not": NOT, "in": IN, "is": IS,
	"like": LIKE, "escape": ESCAPE, "between": BETWEEN, "true": TRUE,
	"false": FALSE, "null": NULL, "missing": MISSING, "case": CASE,
	"when": WHEN, "then": THEN, "else": ELSE, "end": END, "cast": CAST,
	"leading": LEADING, "trailing": TRAILING, "both": BOTH, "for": FOR,
	"placing": PLACING,
}

// Lookup returns the keyword Token for a case-folded identifier, or
// IDENT if ident is not a reserved word.
func Lookup(ident string) Token {
	if tok, ok := keywords[lower(ident)]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword reports whether tok is one of the reserved words in §6.3.
func IsKeyword(tok Token) bool {
	return tok > keywordsBeg && tok < keywordsEnd
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// String names a Token for diagnostics.
func (t Token) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return "UNKNOWN"
}

var tokenNames = map[Token]string{
	ILLEGAL: "ILLEGAL", EOF: "EOF", IDENT: "IDENT", QUOTEDIENT: "QUOTEDIENT",
	ATIDENT: "ATIDENT", NUMBER: "NUMBER", STRING: "STRING", EMBEDDED: "EMBEDDED",
	LPAREN: "(", RPAREN: ")", LBRACK: "[", RBRACK: "]", LBRACE: "{", RBRACE: "}",
	DLCHEVRON: "<<", DRCHEVRON: ">>", COMMA: ",", SEMICOLON: ";", COLON: ":",
	DOT: ".", STAR: "*", EQ: "=", DEQ: "==", NEQ: "!=", LT: "<", LTE: "<=",
	GT: ">", GTE: ">=", PLUS: "+", MINUS: "-", SLASH: "/", PERCENT: "%",
	CARET: "^", PIPE: "||",
}

func init() {
	for word, tok := range keywords {
		tokenNames[tok] = word
	}
}
