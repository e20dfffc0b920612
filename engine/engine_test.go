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

package engine

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/abcum/partiql/value"
)

func customerEnv() *value.Env {
	row := func(id int, name string, balance float64) value.Tuple {
		return value.Tuple{
			{Key: "id", Val: value.Integer(id)},
			{Key: "firstName", Val: value.String(name)},
			{Key: "balance", Val: value.Real(balance)},
		}
	}
	env := value.NewEnv()
	env.Bind("customer", value.Bag{
		row(5, "jason", 100),
		row(4, "sisko", 0),
		row(3, "jason", -30),
		row(2, "miriam", 20),
		row(1, "miriam", 10),
	})
	return env
}

func TestEndToEndScenarios(t *testing.T) {

	Convey("S1: DISTINCT projection with a concatenation expression", t, func() {
		e := New()
		v, err := e.Run(`SELECT DISTINCT firstName, (firstName || firstName) AS doubleName FROM customer WHERE balance > 0`, customerEnv())
		So(err, ShouldBeNil)

		bag, ok := v.(value.Bag)
		So(ok, ShouldBeTrue)
		So(bag, ShouldHaveLength, 2)

		names := map[string]string{}
		for _, elem := range bag {
			tup := elem.(value.Tuple)
			names[string(tup.Get("firstName", true).(value.String))] = string(tup.Get("doubleName", true).(value.String))
		}
		So(names["jason"], ShouldEqual, "jasonjason")
		So(names["miriam"], ShouldEqual, "miriammiriam")
	})

	Convey("S2: SELECT VALUE over a list input preserves list-ness", t, func() {
		env := value.NewEnv()
		env.Bind("data", value.List{
			value.Tuple{{Key: "a", Val: value.Integer(1)}},
			value.Tuple{{Key: "a", Val: value.Integer(2)}},
			value.Tuple{{Key: "a", Val: value.Integer(3)}},
		})

		e := New()
		v, err := e.Run(`SELECT VALUE 2*v.a FROM data AS v`, env)
		So(err, ShouldBeNil)

		lst, ok := v.(value.List)
		So(ok, ShouldBeTrue)
		So(lst, ShouldResemble, value.List{value.Integer(2), value.Integer(4), value.Integer(6)})
	})

	Convey("S3: tuple constructor elides a Missing field", t, func() {
		env := value.NewEnv()
		env.Bind("data", value.List{
			value.Tuple{{Key: "a", Val: value.Integer(1)}, {Key: "b", Val: value.Integer(1)}},
			value.Tuple{{Key: "a", Val: value.Integer(2)}},
		})

		e := New()
		v, err := e.Run(`SELECT VALUE {'a':v.a,'b':v.b} FROM data AS v`, env)
		So(err, ShouldBeNil)

		lst, ok := v.(value.List)
		So(ok, ShouldBeTrue)
		So(lst, ShouldHaveLength, 2)

		first := lst[0].(value.Tuple)
		So(first.Get("a", true), ShouldEqual, value.Integer(1))
		So(first.Get("b", true), ShouldEqual, value.Integer(1))

		second := lst[1].(value.Tuple)
		So(second.Get("a", true), ShouldEqual, value.Integer(2))
		_, hasB := second.Get("b", true).(value.Missing)
		So(hasB, ShouldBeTrue)
	})

	Convey("S4: list constructor retains Missing where a tuple constructor would elide", t, func() {
		env := value.NewEnv()
		env.Bind("data", value.List{
			value.Tuple{{Key: "a", Val: value.Integer(1)}, {Key: "b", Val: value.Integer(1)}},
			value.Tuple{{Key: "a", Val: value.Integer(2)}},
		})

		e := New()
		v, err := e.Run(`SELECT VALUE [v.a, v.b] FROM data AS v`, env)
		So(err, ShouldBeNil)

		lst, ok := v.(value.List)
		So(ok, ShouldBeTrue)
		So(lst, ShouldHaveLength, 2)
		So(lst[0], ShouldResemble, value.List{value.Integer(1), value.Integer(1)})

		second := lst[1].(value.List)
		So(second, ShouldHaveLength, 2)
		So(second[0], ShouldEqual, value.Integer(2))
		_, isMissing := second[1].(value.Missing)
		So(isMissing, ShouldBeTrue)
	})

	Convey("S5: UNPIVOT iterates a tuple's pairs", t, func() {
		env := value.NewEnv()
		env.Bind("justATuple", value.Tuple{
			{Key: "amzn", Val: value.Real(840.05)},
			{Key: "tdc", Val: value.Real(31.06)},
		})

		e := New()
		v, err := e.Run(`SELECT VALUE {'symbol':k,'price':v} FROM UNPIVOT justATuple AS v AT k`, env)
		So(err, ShouldBeNil)

		bag, ok := v.(value.Bag)
		So(ok, ShouldBeTrue)
		So(bag, ShouldHaveLength, 2)

		prices := map[string]value.Value{}
		for _, elem := range bag {
			tup := elem.(value.Tuple)
			prices[string(tup.Get("symbol", true).(value.String))] = tup.Get("price", true)
		}
		So(prices["amzn"], ShouldEqual, value.Real(840.05))
		So(prices["tdc"], ShouldEqual, value.Real(31.06))
	})

	Convey("S6: GROUP BY with a DISTINCT aggregate skips Missing input", t, func() {
		env := value.NewEnv()
		env.Bind("t", value.Bag{
			value.Tuple{{Key: "g", Val: value.Integer(1)}, {Key: "v", Val: value.Integer(10)}},
			value.Tuple{{Key: "g", Val: value.Integer(1)}, {Key: "v", Val: value.Integer(10)}},
			value.Tuple{{Key: "g", Val: value.Integer(1)}, {Key: "v", Val: value.Missing{}}},
			value.Tuple{{Key: "g", Val: value.Integer(2)}, {Key: "v", Val: value.Integer(5)}},
		})

		e := New()
		v, err := e.Run(`SELECT g, COUNT(DISTINCT v) AS c, SUM(v) AS s FROM t GROUP BY g`, env)
		So(err, ShouldBeNil)

		bag, ok := v.(value.Bag)
		So(ok, ShouldBeTrue)
		So(bag, ShouldHaveLength, 2)

		byGroup := map[int64]value.Tuple{}
		for _, elem := range bag {
			tup := elem.(value.Tuple)
			byGroup[int64(tup.Get("g", true).(value.Integer))] = tup
		}
		So(byGroup[1].Get("c", true), ShouldEqual, value.Integer(1))
		So(byGroup[1].Get("s", true), ShouldEqual, value.Integer(20))
		So(byGroup[2].Get("c", true), ShouldEqual, value.Integer(1))
		So(byGroup[2].Get("s", true), ShouldEqual, value.Integer(5))
	})

	Convey("PIVOT assembles one tuple keyed by the evaluated key expression", t, func() {
		env := value.NewEnv()
		env.Bind("quotes", value.Bag{
			value.Tuple{{Key: "symbol", Val: value.String("amzn")}, {Key: "price", Val: value.Real(840.05)}},
			value.Tuple{{Key: "symbol", Val: value.String("tdc")}, {Key: "price", Val: value.Real(31.06)}},
		})

		e := New()
		v, err := e.Run(`PIVOT q.price AT q.symbol FROM quotes AS q`, env)
		So(err, ShouldBeNil)

		tup, ok := v.(value.Tuple)
		So(ok, ShouldBeTrue)
		So(tup.Get("amzn", true), ShouldEqual, value.Real(840.05))
		So(tup.Get("tdc", true), ShouldEqual, value.Real(31.06))
	})

	Convey("PIVOT drops pairs whose key does not evaluate to a String", t, func() {
		env := value.NewEnv()
		env.Bind("quotes", value.Bag{
			value.Tuple{{Key: "symbol", Val: value.Integer(1)}, {Key: "price", Val: value.Real(1.0)}},
			value.Tuple{{Key: "symbol", Val: value.String("ok")}, {Key: "price", Val: value.Real(2.0)}},
		})

		e := New()
		v, err := e.Run(`PIVOT q.price AT q.symbol FROM quotes AS q`, env)
		So(err, ShouldBeNil)

		tup, ok := v.(value.Tuple)
		So(ok, ShouldBeTrue)
		So(len(tup), ShouldEqual, 1)
		So(tup.Get("ok", true), ShouldEqual, value.Real(2.0))
	})

	Convey("AVG of an Integer column widens to Decimal, not Real", t, func() {
		env := value.NewEnv()
		env.Bind("t", value.Bag{
			value.Tuple{{Key: "v", Val: value.Integer(1)}},
			value.Tuple{{Key: "v", Val: value.Integer(2)}},
		})

		e := New()
		v, err := e.Run(`SELECT VALUE AVG(v) FROM t`, env)
		So(err, ShouldBeNil)
		bag, ok := v.(value.Bag)
		So(ok, ShouldBeTrue)
		So(bag, ShouldHaveLength, 1)
		_, isDecimal := bag[0].(value.Decimal)
		So(isDecimal, ShouldBeTrue)
	})

	Convey("ANY/EVERY yield Missing when a non-Boolean value is folded", t, func() {
		env := value.NewEnv()
		env.Bind("t", value.Bag{
			value.Tuple{{Key: "v", Val: value.Integer(1)}},
			value.Tuple{{Key: "v", Val: value.Integer(2)}},
		})

		e := New()
		v, err := e.Run(`SELECT VALUE ANY(v) FROM t`, env)
		So(err, ShouldBeNil)
		bag, ok := v.(value.Bag)
		So(ok, ShouldBeTrue)
		So(bag, ShouldHaveLength, 1)
		So(bag[0], ShouldEqual, value.Missing{})

		v, err = e.Run(`SELECT VALUE EVERY(v) FROM t`, env)
		So(err, ShouldBeNil)
		bag, ok = v.(value.Bag)
		So(ok, ShouldBeTrue)
		So(bag, ShouldHaveLength, 1)
		So(bag[0], ShouldEqual, value.Missing{})
	})

	Convey("INTERSECT ALL consumes matched occurrences one at a time", t, func() {
		env := value.NewEnv()
		env.Bind("a", value.Bag{value.Integer(1), value.Integer(1), value.Integer(2)})
		env.Bind("b", value.Bag{value.Integer(1)})

		e := New()
		v, err := e.Run(`SELECT VALUE x FROM a AS x INTERSECT ALL SELECT VALUE y FROM b AS y`, env)
		So(err, ShouldBeNil)
		bag, ok := v.(value.Bag)
		So(ok, ShouldBeTrue)
		So(bag, ShouldHaveLength, 1)
		So(bag[0], ShouldEqual, value.Integer(1))
	})

	Convey("EXCEPT ALL removes matched occurrences one at a time, keeping the rest", t, func() {
		env := value.NewEnv()
		env.Bind("a", value.Bag{value.Integer(1), value.Integer(1), value.Integer(2)})
		env.Bind("b", value.Bag{value.Integer(1)})

		e := New()
		v, err := e.Run(`SELECT VALUE x FROM a AS x EXCEPT ALL SELECT VALUE y FROM b AS y`, env)
		So(err, ShouldBeNil)
		bag, ok := v.(value.Bag)
		So(ok, ShouldBeTrue)
		So(bag, ShouldHaveLength, 2)
	})
}

func TestKeywordDelimitedBuiltins(t *testing.T) {

	Convey("TRIM(LEADING 'x' FROM s) trims only the leading run", t, func() {
		e := New()
		v, err := e.Run(`SELECT VALUE TRIM(LEADING 'x' FROM s) FROM data AS d LET s = d.s`, listEnv("xxhixx"))
		So(err, ShouldBeNil)
		lst := v.(value.List)
		So(lst[0], ShouldEqual, value.String("hixx"))
	})

	Convey("TRIM(FROM s) defaults the character set to a space", t, func() {
		e := New()
		v, err := e.Run(`SELECT VALUE TRIM(FROM s) FROM data AS d LET s = d.s`, listEnv("  hi  "))
		So(err, ShouldBeNil)
		lst := v.(value.List)
		So(lst[0], ShouldEqual, value.String("hi"))
	})

	Convey("TRIM(BOTH FROM s) trims both ends with the synthesized default character", t, func() {
		e := New()
		v, err := e.Run(`SELECT VALUE TRIM(BOTH FROM s) FROM data AS d LET s = d.s`, listEnv("  hi  "))
		So(err, ShouldBeNil)
		lst := v.(value.List)
		So(lst[0], ShouldEqual, value.String("hi"))
	})

	Convey("EXTRACT(HOUR FROM t) pulls the hour field out of a DateTime", t, func() {
		env := value.NewEnv()
		env.Bind("t", value.DateTime{T: time.Date(2024, 3, 15, 10, 30, 45, 0, time.UTC)})
		e := New()
		v, err := e.Run(`SELECT VALUE EXTRACT(HOUR FROM t)`, env)
		So(err, ShouldBeNil)
		So(v, ShouldEqual, value.Integer(10))
	})

	Convey("EXTRACT(YEAR FROM t) pulls the year field out of a DateTime", t, func() {
		env := value.NewEnv()
		env.Bind("t", value.DateTime{T: time.Date(2024, 3, 15, 10, 30, 45, 0, time.UTC)})
		e := New()
		v, err := e.Run(`SELECT VALUE EXTRACT(YEAR FROM t)`, env)
		So(err, ShouldBeNil)
		So(v, ShouldEqual, value.Integer(2024))
	})
}

func listEnv(s string) *value.Env {
	env := value.NewEnv()
	env.Bind("data", value.List{
		value.Tuple{{Key: "s", Val: value.String(s)}},
	})
	return env
}

func TestCrossJoin(t *testing.T) {

	Convey("CROSS JOIN produces the cartesian product of both sides", t, func() {
		env := value.NewEnv()
		env.Bind("a", value.Bag{value.Tuple{{Key: "x", Val: value.Integer(1)}}, value.Tuple{{Key: "x", Val: value.Integer(2)}}})
		env.Bind("b", value.Bag{value.Tuple{{Key: "y", Val: value.Integer(10)}}})

		e := New()
		v, err := e.Run(`SELECT x, y FROM a CROSS JOIN b`, env)
		So(err, ShouldBeNil)
		bag, ok := v.(value.Bag)
		So(ok, ShouldBeTrue)
		So(bag, ShouldHaveLength, 2)
	})

	Convey("LEFT JOIN pads unmatched right-hand fields with Null, not Missing", t, func() {
		env := value.NewEnv()
		env.Bind("l", value.Bag{value.Tuple{{Key: "id", Val: value.Integer(1)}}, value.Tuple{{Key: "id", Val: value.Integer(2)}}})
		env.Bind("r", value.Bag{value.Tuple{{Key: "id", Val: value.Integer(1)}, {Key: "x", Val: value.String("matched")}}})

		e := New()
		v, err := e.Run(`SELECT l.id AS id, r.x AS x FROM l LEFT JOIN r ON l.id = r.id`, env)
		So(err, ShouldBeNil)
		bag, ok := v.(value.Bag)
		So(ok, ShouldBeTrue)
		So(bag, ShouldHaveLength, 2)

		byID := map[int64]value.Tuple{}
		for _, elem := range bag {
			tup := elem.(value.Tuple)
			byID[int64(tup.Get("id", true).(value.Integer))] = tup
		}
		So(byID[1].Get("x", true), ShouldEqual, value.String("matched"))
		_, isNull := byID[2].Get("x", true).(value.Null)
		So(isNull, ShouldBeTrue)
	})
}

func TestInOperator(t *testing.T) {

	Convey("IN finds a match in a List or Bag", t, func() {
		e := New()
		v, err := e.Run(`SELECT VALUE 2 IN [1, 2, 3]`, value.NewEnv())
		So(err, ShouldBeNil)
		So(v, ShouldEqual, value.Boolean(true))

		v, err = e.Run(`SELECT VALUE 5 IN [1, 2, 3]`, value.NewEnv())
		So(err, ShouldBeNil)
		So(v, ShouldEqual, value.Boolean(false))
	})

	Convey("a Missing or Null LHS propagates to Null, not Missing", t, func() {
		env := value.NewEnv()
		env.Bind("t", value.Tuple{{Key: "present", Val: value.Integer(1)}})

		e := New()
		v, err := e.Run(`SELECT VALUE t.absent IN [1, 2, 3] FROM t`, env)
		So(err, ShouldBeNil)
		bag, ok := v.(value.Bag)
		So(ok, ShouldBeTrue)
		So(bag, ShouldHaveLength, 1)
		_, ok = bag[0].(value.Null)
		So(ok, ShouldBeTrue)
	})

	Convey("a non-collection RHS yields Null", t, func() {
		e := New()
		v, err := e.Run(`SELECT VALUE 1 IN 5`, value.NewEnv())
		So(err, ShouldBeNil)
		_, ok := v.(value.Null)
		So(ok, ShouldBeTrue)
	})

	Convey("an unmatched LHS with a Missing/Null element in the RHS yields Null", t, func() {
		e := New()
		v, err := e.Run(`SELECT VALUE 9 IN [1, MISSING, 3]`, value.NewEnv())
		So(err, ShouldBeNil)
		_, ok := v.(value.Null)
		So(ok, ShouldBeTrue)

		v, err = e.Run(`SELECT VALUE 9 IN [1, NULL, 3]`, value.NewEnv())
		So(err, ShouldBeNil)
		_, ok = v.(value.Null)
		So(ok, ShouldBeTrue)
	})
}

func TestCompileCache(t *testing.T) {

	Convey("compiling the same source twice returns the same cached plan", t, func() {
		e := New()
		p1, err := e.Compile(`SELECT VALUE 1`)
		So(err, ShouldBeNil)
		p2, err := e.Compile(`SELECT VALUE 1`)
		So(err, ShouldBeNil)
		So(p1, ShouldEqual, p2)
	})

	Convey("a syntax error never populates the cache and is reported to the caller", t, func() {
		e := New()
		_, err := e.Run(`SELECT FROM FROM`, value.NewEnv())
		So(err, ShouldNotBeNil)
		_, cached := e.cache.Get(`SELECT FROM FROM`)
		So(cached, ShouldBeFalse)
	})
}
