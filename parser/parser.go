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

// Package parser builds an ast.Query from the token stream produced by
// lex+preprocess (§4.1/§4.2). Grounded on the teacher's sql/parser.go
// shouldBe/mightBe/scan/unscan idiom, adapted from its single-token
// pushback buffer to a plain token slice with an index, since this
// module tokenizes eagerly rather than streaming from a Scanner.
package parser

import (
	"strings"

	"github.com/abcum/partiql/ast"
	"github.com/abcum/partiql/errs"
	"github.com/abcum/partiql/lex"
	"github.com/abcum/partiql/preprocess"
)

// Parser holds the token stream and current read position.
type Parser struct {
	tok []lex.Triple
	pos int
}

// Parse lexes, preprocesses and parses src into a Query.
func Parse(src string) (*ast.Query, error) {
	sc := lex.New(src)
	var triples []lex.Triple
	for {
		t, err := sc.Scan()
		if err != nil {
			line, col, _ := sc.Offsets().Position(t.Start)
			return nil, &errs.LexicalError{Reason: err.Error(), Pos: errs.Span{Start: t.Start, End: t.End, Line: line, Col: col}}
		}
		triples = append(triples, t)
		if t.Tok == lex.EOF {
			break
		}
	}
	rewritten, err := preprocess.Rewrite(triples)
	if err != nil {
		return nil, err
	}
	p := &Parser{tok: rewritten}
	stmt, err := p.parseQueryStatement()
	if err != nil {
		return nil, err
	}
	if _, _, err := p.shouldBe(lex.EOF); err != nil {
		return nil, err
	}
	return &ast.Query{Stmt: stmt}, nil
}

// parseQueryStatement parses either a full SELECT, or (§4.3's
// ExprQuery form) a standalone expression with no SELECT/FROM at all,
// e.g. the query "2*2". The latter lowers to a FROM-less
// SelectStatement so plan.Lower's existing ExprQueryOp path handles it
// unchanged.
func (p *Parser) parseQueryStatement() (*ast.SelectStatement, error) {
	if p.peek().Tok == lex.SELECT {
		return p.parseSelectStatement()
	}
	if p.peek().Tok == lex.PIVOT {
		return p.parsePivotStatement()
	}
	x, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.SelectStatement{ProjectKind: ast.ProjectValue, ValueExpr: x}, nil
}

func (p *Parser) peek() lex.Triple {
	if p.pos >= len(p.tok) {
		return lex.Triple{Tok: lex.EOF}
	}
	return p.tok[p.pos]
}

func (p *Parser) scan() lex.Triple {
	t := p.peek()
	if p.pos < len(p.tok) {
		p.pos++
	}
	return t
}

func (p *Parser) unscan() {
	if p.pos > 0 {
		p.pos--
	}
}

func (p *Parser) in(tok lex.Token, set []lex.Token) bool {
	for _, t := range set {
		if tok == t {
			return true
		}
	}
	return false
}

// mightBe consumes the next token if it is one of expected, reporting
// whether it matched; otherwise it leaves the stream untouched.
func (p *Parser) mightBe(expected ...lex.Token) (lex.Triple, bool) {
	t := p.scan()
	if p.in(t.Tok, expected) {
		return t, true
	}
	p.unscan()
	return lex.Triple{}, false
}

// mightBeIdent consumes the next token if it is an unreserved
// identifier matching lit case-insensitively (e.g. the PARTIAL in
// GROUP PARTIAL BY, which the lexer has no reserved token for).
func (p *Parser) mightBeIdent(lit string) bool {
	t := p.scan()
	if t.Tok == lex.IDENT && strings.EqualFold(t.Lit, lit) {
		return true
	}
	p.unscan()
	return false
}

// shouldBe consumes the next token, requiring it to be one of expected.
func (p *Parser) shouldBe(expected ...lex.Token) (lex.Triple, bool, error) {
	t := p.scan()
	if p.in(t.Tok, expected) {
		return t, true, nil
	}
	p.unscan()
	names := make([]string, len(expected))
	for i, e := range expected {
		names[i] = e.String()
	}
	return t, false, &errs.SyntaxError{Found: t.Lit, Expected: names}
}
