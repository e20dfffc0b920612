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

package preprocess

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/abcum/partiql/lex"
)

func lexAll(t *testing.T, src string) []lex.Triple {
	t.Helper()
	s := lex.New(src)
	var out []lex.Triple
	for {
		tr, err := s.Scan()
		So(err, ShouldBeNil)
		if tr.Tok == lex.EOF {
			return out
		}
		out = append(out, tr)
	}
}

func rewritten(t *testing.T, src string) string {
	t.Helper()
	toks, err := Rewrite(lexAll(t, src))
	So(err, ShouldBeNil)
	var b string
	for i, tr := range toks {
		if i > 0 {
			b += " "
		}
		if tr.Lit != "" {
			b += tr.Lit
		} else {
			b += tr.Tok.String()
		}
	}
	return b
}

func TestRewriteBuiltins(t *testing.T) {

	Convey("TRIM(LEADING 'x' FROM s) rewrites to named leading/from arguments", t, func() {
		got := rewritten(t, `TRIM(LEADING 'x' FROM s)`)
		So(got, ShouldEqual, `TRIM ( leading : x , from : s )`)
	})

	Convey("TRIM(FROM s) rewrites to a single named from argument", t, func() {
		got := rewritten(t, `TRIM(FROM s)`)
		So(got, ShouldEqual, `TRIM ( from : s )`)
	})

	Convey("TRIM(BOTH FROM s) synthesizes the default trim character", t, func() {
		got := rewritten(t, `TRIM(BOTH FROM s)`)
		So(got, ShouldEqual, `TRIM ( both :   , from : s )`)
	})

	Convey("SUBSTRING(s FROM 2 FOR 3) rewrites to positional+named arguments", t, func() {
		got := rewritten(t, `SUBSTRING(s FROM 2 FOR 3)`)
		So(got, ShouldEqual, `SUBSTRING ( s , from : 2 , for : 3 )`)
	})

	Convey("EXTRACT(HOUR FROM t) names the field as a boolean-true flag", t, func() {
		got := rewritten(t, `EXTRACT(HOUR FROM t)`)
		So(got, ShouldEqual, `EXTRACT ( hour : true , from : t )`)
	})

	Convey("POSITION('a' IN s) rewrites IN to a named in argument", t, func() {
		got := rewritten(t, `POSITION('a' IN s)`)
		So(got, ShouldEqual, `POSITION ( a , in : s )`)
	})

	Convey("OVERLAY(s PLACING 'xx' FROM 2 FOR 3) rewrites every keyword phrase", t, func() {
		got := rewritten(t, `OVERLAY(s PLACING 'xx' FROM 2 FOR 3)`)
		So(got, ShouldEqual, `OVERLAY ( s , placing : xx , from : 2 , for : 3 )`)
	})

	Convey("a nested call to the same builtin rewrites both levels", t, func() {
		got := rewritten(t, `TRIM(FROM TRIM(FROM s))`)
		So(got, ShouldEqual, `TRIM ( from : TRIM ( from : s ) )`)
	})

	Convey("an unrecognized call is left untouched", t, func() {
		got := rewritten(t, `UPPER(s)`)
		So(got, ShouldEqual, `UPPER ( s )`)
	})

	Convey("an unterminated call reports an error instead of hanging", t, func() {
		_, err := Rewrite(lexAll(t, `TRIM(FROM s`))
		So(err, ShouldNotBeNil)
	})
}
