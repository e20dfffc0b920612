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

package resolve

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/abcum/partiql/ast"
	"github.com/abcum/partiql/parser"
)

func mustParse(t *testing.T, src string) *ast.SelectStatement {
	t.Helper()
	q, err := parser.Parse(src)
	So(err, ShouldBeNil)
	return q.Stmt
}

func TestResolveFromAlias(t *testing.T) {

	Convey("an un-aliased FROM item defaults to its bare identifier", t, func() {
		stmt := mustParse(t, "SELECT * FROM customers")
		res, err := Resolve(stmt, nil)
		So(err, ShouldBeNil)
		So(res.FromAlias, ShouldResemble, []string{"customers"})
	})

	Convey("an un-aliased FROM item defaults to its path's trailing key", t, func() {
		stmt := mustParse(t, "SELECT * FROM a.b.c")
		res, err := Resolve(stmt, nil)
		So(err, ShouldBeNil)
		So(res.FromAlias, ShouldResemble, []string{"c"})
	})

	Convey("an explicit AS alias always wins", t, func() {
		stmt := mustParse(t, "SELECT * FROM customers AS cust")
		res, err := Resolve(stmt, nil)
		So(err, ShouldBeNil)
		So(res.FromAlias, ShouldResemble, []string{"cust"})
	})

	Convey("multiple FROM items each get their own default alias", t, func() {
		stmt := mustParse(t, "SELECT * FROM a CROSS JOIN b AS bb")
		res, err := Resolve(stmt, nil)
		So(err, ShouldBeNil)
		So(res.FromAlias, ShouldResemble, []string{"a", "bb"})
	})
}

func TestResolveFieldAlias(t *testing.T) {

	Convey("a bare identifier field defaults its alias to its own name", t, func() {
		stmt := mustParse(t, "SELECT name FROM customers")
		res, err := Resolve(stmt, nil)
		So(err, ShouldBeNil)
		So(res.FieldAlias, ShouldResemble, []string{"name"})
		So(res.Schema.Produce, ShouldResemble, []string{"name"})
	})

	Convey("a path expression field defaults its alias to the trailing key", t, func() {
		stmt := mustParse(t, "SELECT a.b.c FROM customers")
		res, err := Resolve(stmt, nil)
		So(err, ShouldBeNil)
		So(res.FieldAlias, ShouldResemble, []string{"c"})
	})

	Convey("an explicit AS alias always wins over inference", t, func() {
		stmt := mustParse(t, "SELECT name AS n FROM customers")
		res, err := Resolve(stmt, nil)
		So(err, ShouldBeNil)
		So(res.FieldAlias, ShouldResemble, []string{"n"})
	})

	Convey("a non-identifier field gets a fresh positional alias", t, func() {
		stmt := mustParse(t, "SELECT 1 + 1 FROM customers")
		res, err := Resolve(stmt, nil)
		So(err, ShouldBeNil)
		So(res.FieldAlias, ShouldResemble, []string{"_1"})
	})

	Convey("SELECT VALUE produces a single _val output name", t, func() {
		stmt := mustParse(t, "SELECT VALUE name FROM customers")
		res, err := Resolve(stmt, nil)
		So(err, ShouldBeNil)
		So(res.Schema.Produce, ShouldResemble, []string{"_val"})
	})

	Convey("SELECT * produces the FROM aliases as its output names", t, func() {
		stmt := mustParse(t, "SELECT * FROM a CROSS JOIN b")
		res, err := Resolve(stmt, nil)
		So(err, ShouldBeNil)
		So(res.Schema.Produce, ShouldResemble, []string{"a", "b"})
	})
}

func TestResolveSetOpRight(t *testing.T) {

	Convey("a UNION statement resolves its right-hand side too", t, func() {
		stmt := mustParse(t, "SELECT a FROM x UNION SELECT b FROM y")
		res, err := Resolve(stmt, nil)
		So(err, ShouldBeNil)
		So(res.SetRight, ShouldNotBeNil)
		So(res.SetRight.FromAlias, ShouldResemble, []string{"y"})
	})
}

func TestOrder(t *testing.T) {

	Convey("a bare identifier resolves Local-first", t, func() {
		So(Order(ast.Ident{Name: "x"}), ShouldEqual, LocalFirst)
	})

	Convey("an @-prefixed identifier resolves Global-first", t, func() {
		So(Order(ast.Ident{Name: "x", AtPrefixed: true}), ShouldEqual, GlobalFirst)
	})
}
