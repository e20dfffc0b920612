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

package comp

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/abcum/partiql/value"
)

func TestCompare(t *testing.T) {

	Convey("absent values sort least", t, func() {
		So(Compare(value.Null{}, value.Integer(0), nil), ShouldBeLessThan, 0)
		So(Compare(value.Missing{}, value.Null{}, nil), ShouldEqual, 0)
	})

	Convey("NaN sorts strictly less than -Inf and compares equal to itself", t, func() {
		nan := value.Real(math.NaN())
		ninf := value.Real(math.Inf(-1))
		So(Compare(nan, ninf, nil), ShouldBeLessThan, 0)
		So(Compare(nan, nan, nil), ShouldEqual, 0)
	})

	Convey("numbers cross-type compare via promotion", t, func() {
		So(Compare(value.Integer(1), value.Real(1.5), nil), ShouldBeLessThan, 0)
		So(Compare(value.Integer(2), value.Real(1.5), nil), ShouldBeGreaterThan, 0)
	})

	Convey("type classes order booleans before numbers before strings", t, func() {
		So(Compare(value.Boolean(true), value.Integer(0), nil), ShouldBeLessThan, 0)
		So(Compare(value.Integer(0), value.String("a"), nil), ShouldBeLessThan, 0)
	})

	Convey("lists compare positionally with shorter-is-less on common prefix", t, func() {
		a := value.List{value.Integer(1), value.Integer(2)}
		b := value.List{value.Integer(1), value.Integer(2), value.Integer(3)}
		So(Compare(a, b, nil), ShouldBeLessThan, 0)
	})
}

func TestCompareKey(t *testing.T) {

	Convey("NULLS LAST overrides the natural least-rank placement", t, func() {
		k := Key{Dir: Asc, Nulls: NullsLast}
		So(CompareKey(value.Null{}, value.Integer(1), k), ShouldBeGreaterThan, 0)
	})

	Convey("DESC flips the comparison sign", t, func() {
		k := Key{Dir: Desc}
		So(CompareKey(value.Integer(1), value.Integer(2), k), ShouldBeGreaterThan, 0)
	})

	Convey("two absent values under NULLS FIRST/LAST stay tied", t, func() {
		k := Key{Dir: Asc, Nulls: NullsFirst}
		So(CompareKey(value.Null{}, value.Missing{}, k), ShouldEqual, 0)
	})
}
