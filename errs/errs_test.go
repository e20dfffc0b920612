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

package errs

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestErrorMessages(t *testing.T) {

	Convey("LexicalError reports its position and reason", t, func() {
		err := &LexicalError{Reason: "unterminated string", Pos: Span{Line: 2, Col: 5}}
		So(err.Error(), ShouldEqual, `lexical error at line 2, column 5: unterminated string`)
	})

	Convey("SyntaxError reports what was found and what was expected", t, func() {
		err := &SyntaxError{Found: "FROM", Expected: []string{"IDENT", "STAR"}, Pos: Span{Line: 1, Col: 8}}
		So(err.Error(), ShouldEqual, `syntax error at line 1, column 8: found "FROM", expected one of [IDENT STAR]`)
	})

	Convey("ResolutionError names the unresolved symbol", t, func() {
		err := &ResolutionError{Name: "nope", Reason: "no such FROM alias"}
		So(err.Error(), ShouldEqual, `cannot resolve "nope": no such FROM alias`)
	})

	Convey("UnsupportedFeature names the deferred feature", t, func() {
		err := &UnsupportedFeature{Feature: "GROUP PARTIAL BY"}
		So(err.Error(), ShouldEqual, `unsupported feature: GROUP PARTIAL BY`)
	})

	Convey("every error kind implements the error interface", t, func() {
		var errs []error
		errs = append(errs, &LexicalError{}, &SyntaxError{}, &ResolutionError{}, &UnsupportedFeature{}, &TypeError{}, &IllegalState{}, &EvaluationError{})
		for _, e := range errs {
			So(e.Error(), ShouldNotBeEmpty)
		}
	})
}
