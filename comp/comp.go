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

// Package comp implements the total order over Values used by ORDER
// BY (§3.3), extending the teacher's plain switch-on-type comparator
// (util/comp/comp.go) with PartiQL's absent-value placement, NaN
// tie-breaking and cross-type numeric comparison.
package comp

import (
	"math"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/abcum/partiql/value"
)

// class assigns each Value kind its rank in the total order:
//
//	absent < false < true < numbers < DateTime < String < Blob < List < Tuple < Bag
func class(v value.Value) int {
	switch v.(type) {
	case value.Null, value.Missing:
		return 0
	case value.Boolean:
		return 1
	case value.Integer, value.Real, value.Decimal:
		return 2
	case value.DateTime:
		return 3
	case value.String:
		return 4
	case value.Blob:
		return 5
	case value.List:
		return 6
	case value.Tuple:
		return 7
	case value.Bag:
		return 8
	}
	return 9
}

// Collator, when non-nil, is used to order String values; the
// zero value orders by unicode codepoint (strings.Compare). Building
// one from golang.org/x/text/collate lets callers opt into
// locale-aware ORDER BY without changing the comparator's shape.
type Collator struct {
	c *collate.Collator
}

// NewCollator builds a Collator for the given BCP 47 locale tag, e.g.
// "en", "de", "sv". The root/empty tag falls back to lexicographic
// byte comparison.
func NewCollator(tag string) *Collator {
	if tag == "" {
		return nil
	}
	t, err := language.Parse(tag)
	if err != nil || t == language.Und {
		return nil
	}
	return &Collator{c: collate.New(t)}
}

func (cl *Collator) compareStrings(a, b string) int {
	if cl == nil || cl.c == nil {
		return strings.Compare(a, b)
	}
	return cl.c.CompareString(a, b)
}

// Compare implements the total order. A negative result means a
// sorts before b, 0 means equal-for-ordering-purposes, positive means
// a sorts after b. It never panics and never returns an error: every
// Value is comparable to every other Value under this order.
func Compare(a, b value.Value, cl *Collator) int {

	ca, cb := class(a), class(b)
	if ca != cb {
		return ca - cb
	}

	switch ca {

	case 0: // Null/Missing: both sort as the single "absent" rank.
		return 0

	case 1:
		x, y := bool(a.(value.Boolean)), bool(b.(value.Boolean))
		switch {
		case x == y:
			return 0
		case !x && y:
			return -1
		default:
			return 1
		}

	case 2:
		return compareNumeric(a, b)

	case 3:
		x, y := a.(value.DateTime), b.(value.DateTime)
		switch {
		case x.T.Before(y.T):
			return -1
		case x.T.After(y.T):
			return 1
		default:
			return 0
		}

	case 4:
		return cl.compareStrings(string(a.(value.String)), string(b.(value.String)))

	case 5:
		return strings.Compare(string(a.(value.Blob)), string(b.(value.Blob)))

	case 6:
		return compareList(a.(value.List), b.(value.List), cl)

	case 7:
		return compareTuple(a.(value.Tuple), b.(value.Tuple), cl)

	case 8:
		return compareBag(a.(value.Bag), b.(value.Bag), cl)
	}

	return 0
}

// compareNumeric orders numbers as NaN < -inf < finite < +inf,
// cross-type comparable via the promotion ladder, per §3.3 and the
// original's `Ord for Value` impl (see SPEC_FULL.md supplemental #1).
func compareNumeric(a, b value.Value) int {

	af, aIsReal := realOf(a)
	bf, bIsReal := realOf(b)

	if aIsReal && math.IsNaN(af) {
		if bIsReal && math.IsNaN(bf) {
			return 0
		}
		return -1
	}
	if bIsReal && math.IsNaN(bf) {
		return 1
	}

	if aIsReal && math.IsInf(af, -1) {
		if bIsReal && math.IsInf(bf, -1) {
			return 0
		}
		return -1
	}
	if bIsReal && math.IsInf(bf, -1) {
		return 1
	}

	if aIsReal && math.IsInf(af, 1) {
		if bIsReal && math.IsInf(bf, 1) {
			return 0
		}
		return 1
	}
	if bIsReal && math.IsInf(bf, 1) {
		return -1
	}

	return value.CompareNumbers(a, b)
}

func realOf(v value.Value) (float64, bool) {
	if r, ok := v.(value.Real); ok {
		return float64(r), true
	}
	return 0, false
}

// compareList orders two lists positionally, falling back to length
// when one is a prefix of the other.
func compareList(a, b value.List, cl *Collator) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := Compare(a[i], b[i], cl); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

// compareTuple orders two tuples by their sorted field names, then
// positionally by value, falling back to arity. Tuple ordering is not
// load-bearing for the spec's testable properties (tuples are not
// directly ORDER BY targets in well-formed queries) but must still be
// total.
func compareTuple(a, b value.Tuple, cl *Collator) int {
	ak, bk := a.Keys(), b.Keys()
	sortStrings(ak)
	sortStrings(bk)
	for i := 0; i < len(ak) && i < len(bk); i++ {
		if c := strings.Compare(ak[i], bk[i]); c != 0 {
			return c
		}
	}
	if len(ak) != len(bk) {
		return len(ak) - len(bk)
	}
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := Compare(a[i].Val, b[i].Val, cl); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

// compareBag orders two bags via a canonical sort of their elements,
// then positionally; this is only used for ORDER BY tie-breaking
// since bags themselves are unordered.
func compareBag(a, b value.Bag, cl *Collator) int {
	sa := append(value.Bag(nil), a...)
	sb := append(value.Bag(nil), b...)
	sortValues(sa, cl)
	sortValues(sb, cl)
	for i := 0; i < len(sa) && i < len(sb); i++ {
		if c := Compare(sa[i], sb[i], cl); c != 0 {
			return c
		}
	}
	return len(sa) - len(sb)
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

func sortValues(v []value.Value, cl *Collator) {
	for i := 1; i < len(v); i++ {
		for j := i; j > 0 && Compare(v[j-1], v[j], cl) > 0; j-- {
			v[j-1], v[j] = v[j], v[j-1]
		}
	}
}
