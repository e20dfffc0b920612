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

package value

// kernel computes strict value equality (no absent-value handling),
// shared by both Equal and GroupEqual. Grounded on the original
// implementation's single EqualityValue<NULLS_EQUAL> kernel rather than
// two independently hand-rolled comparators.
func kernel(a, b Value) bool {

	switch x := a.(type) {

	case Boolean:
		y, ok := b.(Boolean)
		return ok && x == y

	case Integer, Real, Decimal:
		if !isNumeric(b) {
			return false
		}
		return numCompare(a, b) == 0

	case String:
		y, ok := b.(String)
		return ok && x == y

	case Blob:
		y, ok := b.(Blob)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if x[i] != y[i] {
				return false
			}
		}
		return true

	case DateTime:
		y, ok := b.(DateTime)
		return ok && x.T.Equal(y.T)

	case List:
		y, ok := b.(List)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !kernel(x[i], y[i]) {
				return false
			}
		}
		return true

	case Bag:
		y, ok := b.(Bag)
		return ok && bagEqual(x, y)

	case Tuple:
		y, ok := b.(Tuple)
		return ok && tupleEqual(x, y)

	}

	return false
}

func isNumeric(v Value) bool {
	switch v.(type) {
	case Integer, Real, Decimal:
		return true
	}
	return false
}

// Equal implements normal PartiQL equality: any Missing operand
// yields Missing, any remaining Null operand yields Null, otherwise a
// Boolean per the kernel above. Two Missings are NOT equal here.
func Equal(a, b Value) Value {
	if _, ok := a.(Missing); ok {
		return Missing{}
	}
	if _, ok := b.(Missing); ok {
		return Missing{}
	}
	if _, ok := a.(Null); ok {
		return Null{}
	}
	if _, ok := b.(Null); ok {
		return Null{}
	}
	return Boolean(kernel(a, b))
}

// GroupEqual implements the "group-nulls" equality used by GROUP BY
// and DISTINCT, under which Missing and Null (in any combination) are
// considered equal to one another.
func GroupEqual(a, b Value) Value {
	aAbsent, bAbsent := IsAbsent(a), IsAbsent(b)
	if aAbsent || bAbsent {
		return Boolean(aAbsent && bAbsent)
	}
	return Boolean(kernel(a, b))
}

// NotEqual is the negation of Equal under the same absent-propagation
// rules.
func NotEqual(a, b Value) Value {
	eq := Equal(a, b)
	switch v := eq.(type) {
	case Boolean:
		return Boolean(!v)
	default:
		return eq
	}
}

// bagEqual is multiset equality: every element of a must be matched,
// with multiplicity, by an element of b.
func bagEqual(a, b Bag) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, av := range a {
		found := false
		for j, bv := range b {
			if used[j] {
				continue
			}
			if kernel(av, bv) {
				used[j] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// tupleEqual implements §3.2's multiset-of-pairs tuple equality:
// field order does not matter, but duplicate keys with distinct
// values do (because a pair is only matched once).
func tupleEqual(a, b Tuple) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, ap := range a {
		found := false
		for j, bp := range b {
			if used[j] {
				continue
			}
			if ap.Key == bp.Key && kernel(ap.Val, bp.Val) {
				used[j] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
