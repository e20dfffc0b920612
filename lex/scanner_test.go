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

package lex

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func scanAll(src string) ([]Triple, error) {
	s := New(src)
	var out []Triple
	for {
		tr, err := s.Scan()
		if err != nil {
			return out, err
		}
		if tr.Tok == EOF {
			return out, nil
		}
		out = append(out, tr)
	}
}

func TestScanBasics(t *testing.T) {

	Convey("keywords are recognized case-insensitively", t, func() {
		toks, err := scanAll("SeLeCt FROM")
		So(err, ShouldBeNil)
		So(toks, ShouldHaveLength, 2)
		So(toks[0].Tok, ShouldEqual, SELECT)
		So(toks[1].Tok, ShouldEqual, FROM)
	})

	Convey("unquoted identifiers fall back to IDENT", t, func() {
		toks, err := scanAll("customer")
		So(err, ShouldBeNil)
		So(toks, ShouldHaveLength, 1)
		So(toks[0].Tok, ShouldEqual, IDENT)
		So(toks[0].Lit, ShouldEqual, "customer")
	})

	Convey("double-quoted identifiers preserve case and are never keywords", t, func() {
		toks, err := scanAll(`"Select"`)
		So(err, ShouldBeNil)
		So(toks, ShouldHaveLength, 1)
		So(toks[0].Tok, ShouldEqual, QUOTEDIENT)
		So(toks[0].Lit, ShouldEqual, "Select")
	})

	Convey("single-quoted strings unescape doubled quotes", t, func() {
		toks, err := scanAll(`'it''s'`)
		So(err, ShouldBeNil)
		So(toks, ShouldHaveLength, 1)
		So(toks[0].Tok, ShouldEqual, STRING)
		So(toks[0].Lit, ShouldEqual, "it's")
	})

	Convey("multi-char punctuation is preferred over its single-char prefix", t, func() {
		toks, err := scanAll("<= >= <> == << >> ||")
		So(err, ShouldBeNil)
		kinds := []Token{LTE, GTE, NEQ, DEQ, DLCHEVRON, DRCHEVRON, PIPE}
		So(toks, ShouldHaveLength, len(kinds))
		for i, k := range kinds {
			So(toks[i].Tok, ShouldEqual, k)
		}
	})

	Convey("line comments run to end of line and are skipped", t, func() {
		toks, err := scanAll("SELECT -- a trailing remark\nFROM")
		So(err, ShouldBeNil)
		So(toks, ShouldHaveLength, 2)
		So(toks[0].Tok, ShouldEqual, SELECT)
		So(toks[1].Tok, ShouldEqual, FROM)
	})

	Convey("block comments nest", t, func() {
		toks, err := scanAll("SELECT /* outer /* inner */ still outer */ FROM")
		So(err, ShouldBeNil)
		So(toks, ShouldHaveLength, 2)
	})

	Convey("an unterminated block comment is a LexicalError", t, func() {
		_, err := scanAll("SELECT /* never closed")
		So(err, ShouldNotBeNil)
	})

	Convey("backtick embedded literals tolerate nested quotes", t, func() {
		toks, err := scanAll("`has 'a quote' and \"a quoted\" run`")
		So(err, ShouldBeNil)
		So(toks, ShouldHaveLength, 1)
		So(toks[0].Tok, ShouldEqual, EMBEDDED)
		So(toks[0].Lit, ShouldEqual, `has 'a quote' and "a quoted" run`)
	})

	Convey("an unterminated embedded literal errors instead of running to EOF silently", t, func() {
		_, err := scanAll("`never closed")
		So(err, ShouldNotBeNil)
	})

	Convey("numeric literals cover integers, fixed-point and scientific reals", t, func() {
		toks, err := scanAll("123 1.5 1e10 1.5e-3")
		So(err, ShouldBeNil)
		So(toks, ShouldHaveLength, 4)
		for _, tr := range toks {
			So(tr.Tok, ShouldEqual, NUMBER)
		}
	})

	Convey("an invalid character reports its offset", t, func() {
		_, err := scanAll("SELECT # FROM")
		So(err, ShouldNotBeNil)

		s := New("SELECT # FROM")
		_, err = s.Scan()
		So(err, ShouldBeNil)
		tr, err := s.Scan()
		So(err, ShouldNotBeNil)
		So(tr.Start, ShouldEqual, 7)
	})
}

func TestOffsetTracker(t *testing.T) {

	Convey("Position resolves a byte offset to 1-based line/column", t, func() {
		s := New("ab\ncd\nef")
		line, col, err := s.Offsets().Position(0)
		So(err, ShouldBeNil)
		So(line, ShouldEqual, 1)
		So(col, ShouldEqual, 1)

		line, col, err = s.Offsets().Position(3)
		So(err, ShouldBeNil)
		So(line, ShouldEqual, 2)
		So(col, ShouldEqual, 1)

		line, col, err = s.Offsets().Position(7)
		So(err, ShouldBeNil)
		So(line, ShouldEqual, 3)
		So(col, ShouldEqual, 2)
	})

	Convey("an out-of-range offset is an error, not a panic", t, func() {
		s := New("abc")
		_, _, err := s.Offsets().Position(-1)
		So(err, ShouldNotBeNil)
		_, _, err = s.Offsets().Position(100)
		So(err, ShouldNotBeNil)
	})
}
