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

package parser

import (
	"strconv"

	"github.com/abcum/partiql/ast"
	"github.com/abcum/partiql/errs"
	"github.com/abcum/partiql/lex"
)

// parseExpr is the entry point for expression parsing, implementing
// the precedence ladder OR < AND < NOT < predicates < || < +- < */% <
// unary < postfix path < primary.
func (p *Parser) parseExpr() (ast.Expr, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (ast.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.mightBe(lex.OR); !ok {
			return left, nil
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = ast.BinaryExpr{Op: ast.OpOr, X: left, Y: right}
	}
}

func (p *Parser) parseAnd() (ast.Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.mightBe(lex.AND); !ok {
			return left, nil
		}
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = ast.BinaryExpr{Op: ast.OpAnd, X: left, Y: right}
	}
}

func (p *Parser) parseNot() (ast.Expr, error) {
	if _, ok := p.mightBe(lex.NOT); ok {
		x, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return ast.UnaryExpr{Op: ast.OpNot, X: x}, nil
	}
	return p.parsePredicate()
}

// parsePredicate handles the comparison-level operators and the
// postfix predicates (BETWEEN, IN, IS, LIKE) that all bind looser than
// concatenation but tighter than NOT.
func (p *Parser) parsePredicate() (ast.Expr, error) {
	left, err := p.parseConcat()
	if err != nil {
		return nil, err
	}
	return p.parsePredicateTail(left)
}

func (p *Parser) parsePredicateTail(left ast.Expr) (ast.Expr, error) {
	negate := false
	if _, ok := p.mightBe(lex.NOT); ok {
		negate = true
	}

	if t, ok := p.mightBe(lex.EQ, lex.DEQ, lex.NEQ, lex.LT, lex.LTE, lex.GT, lex.GTE); ok {
		if negate {
			p.unscan() // NOT only combines with BETWEEN/IN/LIKE, not comparisons
			return left, nil
		}
		right, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		return ast.BinaryExpr{Op: cmpOp(t.Tok), X: left, Y: right}, nil
	}

	if _, ok := p.mightBe(lex.BETWEEN); ok {
		lo, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		if _, _, err := p.shouldBe(lex.AND); err != nil {
			return nil, err
		}
		hi, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		be := ast.BetweenExpr{X: left, Lo: lo, Hi: hi}
		if negate {
			return ast.UnaryExpr{Op: ast.OpNot, X: be}, nil
		}
		return be, nil
	}

	if _, ok := p.mightBe(lex.IN); ok {
		right, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		in := ast.BinaryExpr{Op: ast.OpIn, X: left, Y: right}
		if negate {
			return ast.UnaryExpr{Op: ast.OpNot, X: in}, nil
		}
		return in, nil
	}

	if _, ok := p.mightBe(lex.LIKE); ok {
		pattern, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		var esc ast.Expr
		if _, ok := p.mightBe(lex.ESCAPE); ok {
			esc, err = p.parseConcat()
			if err != nil {
				return nil, err
			}
		}
		return ast.LikeExpr{X: left, Pattern: pattern, Escape: esc, Negate: negate}, nil
	}

	if negate {
		return nil, &errs.SyntaxError{Found: "NOT", Expected: []string{"BETWEEN", "IN", "LIKE"}}
	}

	if _, ok := p.mightBe(lex.IS); ok {
		innerNegate := false
		if _, ok := p.mightBe(lex.NOT); ok {
			innerNegate = true
		}
		t, _, err := p.shouldBe(lex.NULL, lex.MISSING)
		if err != nil {
			return nil, err
		}
		kind := ast.IsNull
		if t.Tok == lex.MISSING {
			kind = ast.IsMissing
		}
		return ast.IsExpr{X: left, Kind: kind, Negate: innerNegate}, nil
	}

	return left, nil
}

func cmpOp(t lex.Token) ast.BinaryOp {
	switch t {
	case lex.EQ, lex.DEQ:
		return ast.OpEq
	case lex.NEQ:
		return ast.OpNeq
	case lex.LT:
		return ast.OpLt
	case lex.LTE:
		return ast.OpLte
	case lex.GT:
		return ast.OpGt
	case lex.GTE:
		return ast.OpGte
	}
	return ast.OpEq
}

func (p *Parser) parseConcat() (ast.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.mightBe(lex.PIPE); !ok {
			return left, nil
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = ast.BinaryExpr{Op: ast.OpConcat, X: left, Y: right}
	}
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		t, ok := p.mightBe(lex.PLUS, lex.MINUS)
		if !ok {
			return left, nil
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		op := ast.OpAdd
		if t.Tok == lex.MINUS {
			op = ast.OpSub
		}
		left = ast.BinaryExpr{Op: op, X: left, Y: right}
	}
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t, ok := p.mightBe(lex.STAR, lex.SLASH, lex.PERCENT)
		if !ok {
			return left, nil
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		var op ast.BinaryOp
		switch t.Tok {
		case lex.STAR:
			op = ast.OpMul
		case lex.SLASH:
			op = ast.OpDiv
		case lex.PERCENT:
			op = ast.OpMod
		}
		left = ast.BinaryExpr{Op: op, X: left, Y: right}
	}
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	if t, ok := p.mightBe(lex.MINUS, lex.PLUS); ok {
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		op := ast.OpNeg
		if t.Tok == lex.PLUS {
			op = ast.OpPos
		}
		return ast.UnaryExpr{Op: op, X: x}, nil
	}
	return p.parsePostfix()
}

// parsePostfix applies `.key`, `[index]` and `.*` path navigation
// steps to a primary expression (§4.4.9).
func (p *Parser) parsePostfix() (ast.Expr, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	var steps []ast.PathStep
	for {
		if _, ok := p.mightBe(lex.DOT); ok {
			if _, ok := p.mightBe(lex.STAR); ok {
				steps = append(steps, ast.PathStep{Kind: ast.StepWildcard})
				continue
			}
			t, _, err := p.shouldBe(lex.IDENT, lex.QUOTEDIENT)
			if err != nil {
				return nil, err
			}
			steps = append(steps, ast.PathStep{Kind: ast.StepKey, Key: ast.StringLit{Val: t.Lit}})
			continue
		}
		if _, ok := p.mightBe(lex.LBRACK); ok {
			if _, ok := p.mightBe(lex.STAR); ok {
				if _, _, err := p.shouldBe(lex.RBRACK); err != nil {
					return nil, err
				}
				steps = append(steps, ast.PathStep{Kind: ast.StepWildcard})
				continue
			}
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, _, err := p.shouldBe(lex.RBRACK); err != nil {
				return nil, err
			}
			steps = append(steps, ast.PathStep{Kind: ast.StepIndex, Key: idx})
			continue
		}
		break
	}
	if len(steps) == 0 {
		return base, nil
	}
	return ast.PathExpr{Base: base, Steps: steps}, nil
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	t := p.scan()
	switch t.Tok {

	case lex.NULL:
		return ast.NullLit{}, nil
	case lex.MISSING:
		return ast.MissingLit{}, nil
	case lex.TRUE:
		return ast.BoolLit{Val: true}, nil
	case lex.FALSE:
		return ast.BoolLit{Val: false}, nil
	case lex.NUMBER:
		return parseNumberLit(t.Lit), nil
	case lex.STRING:
		return ast.StringLit{Val: t.Lit}, nil
	case lex.ATIDENT:
		return ast.Ident{Name: t.Lit, AtPrefixed: true}, nil
	case lex.QUOTEDIENT:
		return ast.Ident{Name: t.Lit, CaseSensitive: true}, nil

	case lex.STAR:
		return ast.Wildcard{}, nil

	case lex.LPAREN:
		if _, ok := p.mightBe(lex.SELECT); ok {
			p.unscan()
			stmt, err := p.parseSelectStatement()
			if err != nil {
				return nil, err
			}
			if _, _, err := p.shouldBe(lex.RPAREN); err != nil {
				return nil, err
			}
			return ast.SelectExpr{Stmt: stmt}, nil
		}
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, _, err := p.shouldBe(lex.RPAREN); err != nil {
			return nil, err
		}
		return x, nil

	case lex.LBRACK:
		return p.parseListExpr()

	case lex.DLCHEVRON:
		return p.parseBagExpr()

	case lex.LBRACE:
		return p.parseTupleExpr()

	case lex.CASE:
		return p.parseCaseExpr()

	case lex.CAST:
		return p.parseCastExpr()

	case lex.IDENT:
		if _, ok := p.mightBe(lex.LPAREN); ok {
			return p.parseCallExpr(t.Lit)
		}
		return ast.Ident{Name: t.Lit}, nil
	}

	return nil, &errs.SyntaxError{Found: t.Lit, Expected: []string{"expression"}}
}

func parseNumberLit(lit string) ast.Expr {
	if n, err := strconv.ParseInt(lit, 10, 64); err == nil {
		return ast.IntLit{Val: n}
	}
	if f, err := strconv.ParseFloat(lit, 64); err == nil {
		return ast.RealLit{Val: f}
	}
	return ast.DecimalLit{Val: lit}
}

func (p *Parser) parseListExpr() (ast.Expr, error) {
	var items []ast.Expr
	if _, ok := p.mightBe(lex.RBRACK); ok {
		return ast.ListExpr{Items: items}, nil
	}
	for {
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		items = append(items, x)
		if _, ok := p.mightBe(lex.COMMA); ok {
			continue
		}
		break
	}
	if _, _, err := p.shouldBe(lex.RBRACK); err != nil {
		return nil, err
	}
	return ast.ListExpr{Items: items}, nil
}

func (p *Parser) parseBagExpr() (ast.Expr, error) {
	var items []ast.Expr
	if _, ok := p.mightBe(lex.DRCHEVRON); ok {
		return ast.BagExpr{Items: items}, nil
	}
	for {
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		items = append(items, x)
		if _, ok := p.mightBe(lex.COMMA); ok {
			continue
		}
		break
	}
	if _, _, err := p.shouldBe(lex.DRCHEVRON); err != nil {
		return nil, err
	}
	return ast.BagExpr{Items: items}, nil
}

func (p *Parser) parseTupleExpr() (ast.Expr, error) {
	var fields []ast.TupleField
	if _, ok := p.mightBe(lex.RBRACE); ok {
		return ast.TupleExpr{Fields: fields}, nil
	}
	for {
		key, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, _, err := p.shouldBe(lex.COLON); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.TupleField{Key: key, Val: val})
		if _, ok := p.mightBe(lex.COMMA); ok {
			continue
		}
		break
	}
	if _, _, err := p.shouldBe(lex.RBRACE); err != nil {
		return nil, err
	}
	return ast.TupleExpr{Fields: fields}, nil
}

func (p *Parser) parseCaseExpr() (ast.Expr, error) {
	var operand ast.Expr
	if _, ok := p.mightBe(lex.WHEN); !ok {
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		operand = x
		if _, _, err := p.shouldBe(lex.WHEN); err != nil {
			return nil, err
		}
	}
	var whens []ast.CaseWhen
	for {
		when, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, _, err := p.shouldBe(lex.THEN); err != nil {
			return nil, err
		}
		then, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		whens = append(whens, ast.CaseWhen{When: when, Then: then})
		if _, ok := p.mightBe(lex.WHEN); ok {
			continue
		}
		break
	}
	var elseExpr ast.Expr
	if _, ok := p.mightBe(lex.ELSE); ok {
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elseExpr = x
	}
	if _, _, err := p.shouldBe(lex.END); err != nil {
		return nil, err
	}
	return ast.CaseExpr{Operand: operand, Whens: whens, Else: elseExpr}, nil
}

func (p *Parser) parseCastExpr() (ast.Expr, error) {
	if _, _, err := p.shouldBe(lex.LPAREN); err != nil {
		return nil, err
	}
	x, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, _, err := p.shouldBe(lex.AS); err != nil {
		return nil, err
	}
	t, _, err := p.shouldBe(lex.IDENT)
	if err != nil {
		return nil, err
	}
	if _, _, err := p.shouldBe(lex.RPAREN); err != nil {
		return nil, err
	}
	return ast.CastExpr{X: x, Type: t.Lit}, nil
}

// parseCallExpr parses a function call's arguments once the opening
// LPAREN has already been consumed; it recognises the preprocessor's
// `name: value` named-argument rewriting (§4.2) alongside plain
// positional arguments, and the COUNT(DISTINCT x) / COUNT(*) forms.
func (p *Parser) parseCallExpr(name string) (ast.Expr, error) {
	call := ast.CallExpr{Name: name, Named: map[string]ast.Expr{}}

	if _, ok := p.mightBe(lex.DISTINCT); ok {
		call.Distinct = true
	}

	if _, ok := p.mightBe(lex.RPAREN); ok {
		return call, nil
	}

	for {
		if t, ok := p.mightBe(lex.IDENT); ok {
			if _, ok := p.mightBe(lex.COLON); ok {
				val, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				call.Named[t.Lit] = val
				if _, ok := p.mightBe(lex.COMMA); ok {
					continue
				}
				break
			}
			p.unscan()
		}
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
		if _, ok := p.mightBe(lex.COMMA); ok {
			continue
		}
		break
	}

	if _, _, err := p.shouldBe(lex.RPAREN); err != nil {
		return nil, err
	}
	return call, nil
}
