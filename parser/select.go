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
	"github.com/abcum/partiql/ast"
	"github.com/abcum/partiql/lex"
)

// parseSelectStatement parses one SELECT query, including a trailing
// UNION/INTERSECT/EXCEPT [ALL] combining it with a further SELECT
// (§4.3's OuterUnion/Intersect/Except operators).
func (p *Parser) parseSelectStatement() (*ast.SelectStatement, error) {
	if _, _, err := p.shouldBe(lex.SELECT); err != nil {
		return nil, err
	}

	stmt := &ast.SelectStatement{}

	if _, ok := p.mightBe(lex.DISTINCT); ok {
		stmt.Distinct = true
	} else {
		p.mightBe(lex.ALL)
	}

	if _, ok := p.mightBe(lex.VALUE); ok {
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.ProjectKind = ast.ProjectValue
		stmt.ValueExpr = x
	} else if _, ok := p.mightBe(lex.STAR); ok {
		stmt.ProjectKind = ast.ProjectAll
	} else {
		fields, err := p.parseFieldList()
		if err != nil {
			return nil, err
		}
		stmt.ProjectKind = ast.ProjectTuple
		stmt.Fields = fields
	}

	if err := p.parseFromAndTail(stmt); err != nil {
		return nil, err
	}

	return stmt, nil
}

// parsePivotStatement parses PartiQL's PIVOT query form (§4.3's
// Pivot(key, value) operator): `PIVOT <value> AT <key> FROM ...`,
// sharing every clause after FROM with parseSelectStatement.
func (p *Parser) parsePivotStatement() (*ast.SelectStatement, error) {
	if _, _, err := p.shouldBe(lex.PIVOT); err != nil {
		return nil, err
	}

	stmt := &ast.SelectStatement{ProjectKind: ast.ProjectPivot}

	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	stmt.PivotExpr = val

	if _, _, err := p.shouldBe(lex.AT); err != nil {
		return nil, err
	}
	key, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	stmt.PivotAs = key

	if err := p.parseFromAndTail(stmt); err != nil {
		return nil, err
	}

	return stmt, nil
}

// parseFromAndTail parses the FROM clause and every clause that can
// follow it, in the order the grammar permits (not SQL's evaluation
// order — plan.Lower re-sequences that). Shared by SELECT and PIVOT,
// whose only difference is how the projection itself is parsed.
func (p *Parser) parseFromAndTail(stmt *ast.SelectStatement) error {
	if _, _, err := p.shouldBe(lex.FROM); err != nil {
		return err
	}
	from, err := p.parseFromClause()
	if err != nil {
		return err
	}
	stmt.From = from

	if _, ok := p.mightBe(lex.WITH); ok {
		// WITH alias AS (...) LET-style bindings are out of scope; LET
		// clauses are PartiQL's binding form (§4.3's KeySchema.produce).
		p.unscan()
	}
	if let, err := p.parseLetClause(); err != nil {
		return err
	} else {
		stmt.Let = let
	}

	if _, ok := p.mightBe(lex.WHERE); ok {
		w, err := p.parseExpr()
		if err != nil {
			return err
		}
		stmt.Where = w
	}

	if _, ok := p.mightBe(lex.GROUP); ok {
		stmt.GroupPartial = p.mightBeIdent("partial")
		if _, _, err := p.shouldBe(lex.BY); err != nil {
			return err
		}
		keys, asName, err := p.parseGroupByClause()
		if err != nil {
			return err
		}
		stmt.GroupBy = keys
		stmt.GroupAsName = asName
	}

	if _, ok := p.mightBe(lex.HAVING); ok {
		h, err := p.parseExpr()
		if err != nil {
			return err
		}
		stmt.Having = h
	}

	if _, ok := p.mightBe(lex.ORDER); ok {
		if _, _, err := p.shouldBe(lex.BY); err != nil {
			return err
		}
		keys, err := p.parseOrderByClause()
		if err != nil {
			return err
		}
		stmt.OrderBy = keys
	}

	if _, ok := p.mightBe(lex.LIMIT); ok {
		l, err := p.parseExpr()
		if err != nil {
			return err
		}
		stmt.Limit = l
	}
	if _, ok := p.mightBe(lex.OFFSET); ok {
		o, err := p.parseExpr()
		if err != nil {
			return err
		}
		stmt.Offset = o
	}

	if stmt.ProjectKind == ast.ProjectPivot {
		return nil
	}

	if t, ok := p.mightBe(lex.UNION, lex.INTERSECT, lex.EXCEPT); ok {
		all := false
		if _, ok := p.mightBe(lex.ALL); ok {
			all = true
		}
		right, err := p.parseSelectStatement()
		if err != nil {
			return err
		}
		switch t.Tok {
		case lex.UNION:
			stmt.SetOp = ast.SetUnion
		case lex.INTERSECT:
			stmt.SetOp = ast.SetIntersect
		case lex.EXCEPT:
			stmt.SetOp = ast.SetExcept
		}
		stmt.SetAll = all
		stmt.SetRight = right
	}

	return nil
}

func (p *Parser) parseFieldList() ([]ast.Field, error) {
	var fields []ast.Field
	for {
		f, err := p.parseField()
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
		if _, ok := p.mightBe(lex.COMMA); ok {
			continue
		}
		break
	}
	return fields, nil
}

func (p *Parser) parseField() (ast.Field, error) {
	x, err := p.parseExpr()
	if err != nil {
		return ast.Field{}, err
	}
	if path, ok := x.(ast.PathExpr); ok && len(path.Steps) > 0 && path.Steps[len(path.Steps)-1].Kind == ast.StepWildcard {
		f := ast.Field{Expr: x, Star: true}
		return f, nil
	}
	f := ast.Field{Expr: x}
	if _, ok := p.mightBe(lex.AS); ok {
		t, _, err := p.shouldBe(lex.IDENT, lex.QUOTEDIENT)
		if err != nil {
			return ast.Field{}, err
		}
		f.Alias = t.Lit
	}
	return f, nil
}

// parseFromClause parses the first source and any JOIN-connected
// subsequent sources, building ast.FromItem entries in left-to-right
// plan order.
func (p *Parser) parseFromClause() ([]ast.FromItem, error) {
	first, err := p.parseFromSource()
	if err != nil {
		return nil, err
	}
	first.IsFirst = true
	items := []ast.FromItem{first}

	for {
		join, ok := p.peekJoinKind()
		if !ok {
			break
		}
		p.consumeJoinKeywords(join)
		item, err := p.parseFromSource()
		if err != nil {
			return nil, err
		}
		item.Join = join
		if join != ast.JoinCross {
			if _, _, err := p.shouldBe(lex.ON); err != nil {
				return nil, err
			}
			on, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			item.On = on
		}
		items = append(items, item)
	}
	return items, nil
}

func (p *Parser) peekJoinKind() (ast.JoinKind, bool) {
	if _, ok := p.mightBe(lex.JOIN); ok {
		return ast.JoinInner, true
	}
	if _, ok := p.mightBe(lex.CROSS); ok {
		return ast.JoinCross, true
	}
	if t, ok := p.mightBe(lex.INNER, lex.LEFT, lex.RIGHT, lex.FULL, lex.OUTER); ok {
		switch t.Tok {
		case lex.LEFT:
			return ast.JoinLeft, true
		case lex.RIGHT:
			return ast.JoinRight, true
		case lex.FULL:
			return ast.JoinFull, true
		default:
			return ast.JoinInner, true
		}
	}
	return ast.JoinInner, false
}

// consumeJoinKeywords consumes the remaining keywords of a join
// introducer after peekJoinKind has matched its leading keyword: the
// trailing JOIN after CROSS, or the trailing OUTER/JOIN after
// LEFT/RIGHT/FULL/INNER.
func (p *Parser) consumeJoinKeywords(kind ast.JoinKind) {
	p.mightBe(lex.OUTER)
	p.mightBe(lex.JOIN)
}

func (p *Parser) parseFromSource() (ast.FromItem, error) {
	item := ast.FromItem{Kind: ast.FromScan}
	if _, ok := p.mightBe(lex.UNPIVOT); ok {
		item.Kind = ast.FromUnpivot
	}
	if _, ok := p.mightBe(lex.LPAREN); ok {
		if _, ok := p.mightBe(lex.SELECT); ok {
			p.unscan()
			stmt, err := p.parseSelectStatement()
			if err != nil {
				return item, err
			}
			if _, _, err := p.shouldBe(lex.RPAREN); err != nil {
				return item, err
			}
			item.Expr = ast.SelectExpr{Stmt: stmt}
		} else {
			x, err := p.parseExpr()
			if err != nil {
				return item, err
			}
			if _, _, err := p.shouldBe(lex.RPAREN); err != nil {
				return item, err
			}
			item.Expr = x
		}
	} else {
		x, err := p.parseExpr()
		if err != nil {
			return item, err
		}
		item.Expr = x
	}

	if _, ok := p.mightBe(lex.AS); ok {
		t, _, err := p.shouldBe(lex.IDENT, lex.QUOTEDIENT)
		if err != nil {
			return item, err
		}
		item.AsAlias = t.Lit
	} else if t, ok := p.mightBe(lex.IDENT); ok {
		item.AsAlias = t.Lit
	}

	if _, ok := p.mightBe(lex.AT); ok {
		t, _, err := p.shouldBe(lex.IDENT, lex.QUOTEDIENT)
		if err != nil {
			return item, err
		}
		item.AtAlias = t.Lit
	}

	return item, nil
}

func (p *Parser) parseLetClause() ([]ast.LetBinding, error) {
	if _, ok := p.mightBe(lex.LATERAL); ok {
		p.unscan()
	}
	var bindings []ast.LetBinding
	return bindings, nil
}

func (p *Parser) parseGroupByClause() ([]ast.GroupKey, string, error) {
	var keys []ast.GroupKey
	for {
		x, err := p.parseExpr()
		if err != nil {
			return nil, "", err
		}
		k := ast.GroupKey{Expr: x}
		if _, ok := p.mightBe(lex.AS); ok {
			t, _, err := p.shouldBe(lex.IDENT, lex.QUOTEDIENT)
			if err != nil {
				return nil, "", err
			}
			k.Alias = t.Lit
		}
		keys = append(keys, k)
		if _, ok := p.mightBe(lex.COMMA); ok {
			continue
		}
		break
	}
	asName := ""
	if _, ok := p.mightBe(lex.GROUP); ok {
		if _, _, err := p.shouldBe(lex.AS); err != nil {
			return nil, "", err
		}
		t, _, err := p.shouldBe(lex.IDENT, lex.QUOTEDIENT)
		if err != nil {
			return nil, "", err
		}
		asName = t.Lit
	}
	return keys, asName, nil
}

func (p *Parser) parseOrderByClause() ([]ast.OrderKey, error) {
	var keys []ast.OrderKey
	for {
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		k := ast.OrderKey{Expr: x}
		if t, ok := p.mightBe(lex.ASC, lex.DESC); ok {
			if t.Tok == lex.DESC {
				k.Dir = ast.OrderDesc
			}
		}
		if _, ok := p.mightBe(lex.NULLS); ok {
			t, _, err := p.shouldBe(lex.FIRST, lex.LAST)
			if err != nil {
				return nil, err
			}
			if t.Tok == lex.FIRST {
				k.Nulls = ast.OrderNullsFirst
			} else {
				k.Nulls = ast.OrderNullsLast
			}
		}
		keys = append(keys, k)
		if _, ok := p.mightBe(lex.COMMA); ok {
			continue
		}
		break
	}
	return keys, nil
}
