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
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/abcum/partiql/ast"
)

func TestParseSelectClauses(t *testing.T) {

	Convey("a bare SELECT * FROM parses the wildcard projection", t, func() {
		q, err := Parse("SELECT * FROM customers")
		So(err, ShouldBeNil)
		So(q.Stmt.ProjectKind, ShouldEqual, ast.ProjectAll)
		So(q.Stmt.From, ShouldHaveLength, 1)
		id, ok := q.Stmt.From[0].Expr.(ast.Ident)
		So(ok, ShouldBeTrue)
		So(id.Name, ShouldEqual, "customers")
	})

	Convey("SELECT VALUE parses its single value expression", t, func() {
		q, err := Parse("SELECT VALUE name FROM customers")
		So(err, ShouldBeNil)
		So(q.Stmt.ProjectKind, ShouldEqual, ast.ProjectValue)
		id, ok := q.Stmt.ValueExpr.(ast.Ident)
		So(ok, ShouldBeTrue)
		So(id.Name, ShouldEqual, "name")
	})

	Convey("a projection list with an AS alias records it on the Field", t, func() {
		q, err := Parse("SELECT name AS n, age FROM customers")
		So(err, ShouldBeNil)
		So(q.Stmt.Fields, ShouldHaveLength, 2)
		So(q.Stmt.Fields[0].Alias, ShouldEqual, "n")
		So(q.Stmt.Fields[1].Alias, ShouldEqual, "")
	})

	Convey("WHERE parses a comparison expression", t, func() {
		q, err := Parse("SELECT a FROM t WHERE a > 1")
		So(err, ShouldBeNil)
		bin, ok := q.Stmt.Where.(ast.BinaryExpr)
		So(ok, ShouldBeTrue)
		So(bin.Op, ShouldEqual, ast.OpGt)
	})

	Convey("GROUP BY and HAVING both parse", t, func() {
		q, err := Parse("SELECT a FROM t GROUP BY a HAVING COUNT(*) > 1")
		So(err, ShouldBeNil)
		So(q.Stmt.GroupBy, ShouldHaveLength, 1)
		So(q.Stmt.Having, ShouldNotBeNil)
	})

	Convey("ORDER BY parses direction and nulls placement", t, func() {
		q, err := Parse("SELECT a FROM t ORDER BY a DESC NULLS LAST, b")
		So(err, ShouldBeNil)
		So(q.Stmt.OrderBy, ShouldHaveLength, 2)
		So(q.Stmt.OrderBy[0].Dir, ShouldEqual, ast.OrderDesc)
		So(q.Stmt.OrderBy[1].Dir, ShouldEqual, ast.OrderAsc)
		So(q.Stmt.OrderBy[0].Nulls, ShouldEqual, ast.OrderNullsLast)
		So(q.Stmt.OrderBy[1].Nulls, ShouldEqual, ast.OrderNullsDefault)
	})

	Convey("LIMIT and OFFSET both parse as expressions", t, func() {
		q, err := Parse("SELECT a FROM t LIMIT 5 OFFSET 10")
		So(err, ShouldBeNil)
		lim, ok := q.Stmt.Limit.(ast.IntLit)
		So(ok, ShouldBeTrue)
		So(lim.Val, ShouldEqual, 5)
		off, ok := q.Stmt.Offset.(ast.IntLit)
		So(ok, ShouldBeTrue)
		So(off.Val, ShouldEqual, 10)
	})

	Convey("DISTINCT before the projection list sets Distinct", t, func() {
		q, err := Parse("SELECT DISTINCT a FROM t")
		So(err, ShouldBeNil)
		So(q.Stmt.Distinct, ShouldBeTrue)
	})

	Convey("a JOIN ON clause records its predicate and kind", t, func() {
		q, err := Parse("SELECT a FROM x LEFT JOIN y ON x.id = y.id")
		So(err, ShouldBeNil)
		So(q.Stmt.From, ShouldHaveLength, 2)
		So(q.Stmt.From[1].Join, ShouldEqual, ast.JoinLeft)
		So(q.Stmt.From[1].On, ShouldNotBeNil)
	})

	Convey("a CROSS JOIN has no ON predicate", t, func() {
		q, err := Parse("SELECT a FROM x CROSS JOIN y")
		So(err, ShouldBeNil)
		So(q.Stmt.From[1].Join, ShouldEqual, ast.JoinCross)
		So(q.Stmt.From[1].On, ShouldBeNil)
	})

	Convey("UNION combines two statements and records SetRight", t, func() {
		q, err := Parse("SELECT a FROM x UNION SELECT b FROM y")
		So(err, ShouldBeNil)
		So(q.Stmt.SetOp, ShouldEqual, ast.SetUnion)
		So(q.Stmt.SetRight, ShouldNotBeNil)
	})
}

func TestParseExpressions(t *testing.T) {

	Convey("a path expression chains key and index steps", t, func() {
		q, err := Parse("SELECT a.b[0].c FROM t")
		So(err, ShouldBeNil)
		path, ok := q.Stmt.Fields[0].Expr.(ast.PathExpr)
		So(ok, ShouldBeTrue)
		So(path.Steps, ShouldHaveLength, 3)
		So(path.Steps[0].Kind, ShouldEqual, ast.StepKey)
		So(path.Steps[1].Kind, ShouldEqual, ast.StepIndex)
		So(path.Steps[2].Kind, ShouldEqual, ast.StepKey)
	})

	Convey("BETWEEN parses its low and high bounds", t, func() {
		q, err := Parse("SELECT a FROM t WHERE a BETWEEN 1 AND 10")
		So(err, ShouldBeNil)
		between, ok := q.Stmt.Where.(ast.BetweenExpr)
		So(ok, ShouldBeTrue)
		lo, ok := between.Lo.(ast.IntLit)
		So(ok, ShouldBeTrue)
		So(lo.Val, ShouldEqual, 1)
	})

	Convey("LIKE parses its pattern and NOT LIKE negates it", t, func() {
		q, err := Parse("SELECT a FROM t WHERE a NOT LIKE 'x%'")
		So(err, ShouldBeNil)
		like, ok := q.Stmt.Where.(ast.LikeExpr)
		So(ok, ShouldBeTrue)
		So(like.Negate, ShouldBeTrue)
	})

	Convey("IS NULL and IS NOT MISSING both parse their kind and negation", t, func() {
		q, err := Parse("SELECT a FROM t WHERE a IS NULL")
		So(err, ShouldBeNil)
		is, ok := q.Stmt.Where.(ast.IsExpr)
		So(ok, ShouldBeTrue)
		So(is.Kind, ShouldEqual, ast.IsNull)
		So(is.Negate, ShouldBeFalse)

		q, err = Parse("SELECT a FROM t WHERE a IS NOT MISSING")
		So(err, ShouldBeNil)
		is, ok = q.Stmt.Where.(ast.IsExpr)
		So(ok, ShouldBeTrue)
		So(is.Kind, ShouldEqual, ast.IsMissing)
		So(is.Negate, ShouldBeTrue)
	})

	Convey("a searched CASE parses its WHEN/THEN arms and ELSE", t, func() {
		q, err := Parse("SELECT CASE WHEN a > 1 THEN 'big' ELSE 'small' END FROM t")
		So(err, ShouldBeNil)
		ce, ok := q.Stmt.Fields[0].Expr.(ast.CaseExpr)
		So(ok, ShouldBeTrue)
		So(ce.Operand, ShouldBeNil)
		So(ce.Whens, ShouldHaveLength, 1)
		So(ce.Else, ShouldNotBeNil)
	})

	Convey("a simple CASE records its operand", t, func() {
		q, err := Parse("SELECT CASE a WHEN 1 THEN 'one' END FROM t")
		So(err, ShouldBeNil)
		ce, ok := q.Stmt.Fields[0].Expr.(ast.CaseExpr)
		So(ok, ShouldBeTrue)
		So(ce.Operand, ShouldNotBeNil)
	})

	Convey("CAST parses its target type name", t, func() {
		q, err := Parse("SELECT CAST(a AS INTEGER) FROM t")
		So(err, ShouldBeNil)
		cast, ok := q.Stmt.Fields[0].Expr.(ast.CastExpr)
		So(ok, ShouldBeTrue)
		So(cast.Type, ShouldEqual, "INTEGER")
	})

	Convey("COUNT(DISTINCT x) sets CallExpr.Distinct without a named argument", t, func() {
		q, err := Parse("SELECT COUNT(DISTINCT a) FROM t")
		So(err, ShouldBeNil)
		call, ok := q.Stmt.Fields[0].Expr.(ast.CallExpr)
		So(ok, ShouldBeTrue)
		So(call.Distinct, ShouldBeTrue)
		So(call.Args, ShouldHaveLength, 1)
	})

	Convey("a call with a named argument records it under CallExpr.Named", t, func() {
		q, err := Parse("SELECT myFn(x, scale: 2) FROM t")
		So(err, ShouldBeNil)
		call, ok := q.Stmt.Fields[0].Expr.(ast.CallExpr)
		So(ok, ShouldBeTrue)
		So(call.Args, ShouldHaveLength, 1)
		So(call.Named, ShouldContainKey, "scale")
	})

	Convey("a tuple constructor parses key/value fields", t, func() {
		q, err := Parse("SELECT {'a': 1, 'b': 2} FROM t")
		So(err, ShouldBeNil)
		tup, ok := q.Stmt.Fields[0].Expr.(ast.TupleExpr)
		So(ok, ShouldBeTrue)
		So(tup.Fields, ShouldHaveLength, 2)
	})

	Convey("a list constructor parses its items in order", t, func() {
		q, err := Parse("SELECT [1, 2, 3] FROM t")
		So(err, ShouldBeNil)
		list, ok := q.Stmt.Fields[0].Expr.(ast.ListExpr)
		So(ok, ShouldBeTrue)
		So(list.Items, ShouldHaveLength, 3)
	})

	Convey("a subquery in FROM position parses as a SelectExpr", t, func() {
		q, err := Parse("SELECT a FROM (SELECT b FROM t) AS sub")
		So(err, ShouldBeNil)
		sel, ok := q.Stmt.From[0].Expr.(ast.SelectExpr)
		So(ok, ShouldBeTrue)
		So(sel.Stmt, ShouldNotBeNil)
		So(q.Stmt.From[0].AsAlias, ShouldEqual, "sub")
	})

	Convey("an @-prefixed identifier sets AtPrefixed", t, func() {
		q, err := Parse("SELECT @outer FROM t")
		So(err, ShouldBeNil)
		id, ok := q.Stmt.Fields[0].Expr.(ast.Ident)
		So(ok, ShouldBeTrue)
		So(id.AtPrefixed, ShouldBeTrue)
	})

	Convey("a malformed statement reports a syntax error", t, func() {
		_, err := Parse("SELECT FROM FROM")
		So(err, ShouldNotBeNil)
	})
}
