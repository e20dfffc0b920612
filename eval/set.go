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

package eval

import (
	"github.com/abcum/partiql/ast"
	"github.com/abcum/partiql/errs"
	"github.com/abcum/partiql/plan"
	"github.com/abcum/partiql/value"
)

// execSetOp implements UNION/INTERSECT/EXCEPT between two SELECTs
// (§4.3's OuterUnion/Intersect/Except): a bag operator with an
// All/Distinct qualifier, coercing both sides through the shared
// tuple-equality kernel F.
func (c *ctx) execSetOp(n plan.SetOp, global *value.Env) ([]binding, bool, error) {
	left, _, err := c.exec(n.Left, global)
	if err != nil {
		return nil, false, err
	}
	right, _, err := c.exec(n.Right, global)
	if err != nil {
		return nil, false, err
	}

	var out []binding
	switch n.Kind {
	case ast.SetUnion:
		out = append(out, left...)
		out = append(out, right...)
		if !n.All {
			out = c.execDistinct(out)
		}
		return out, false, nil

	case ast.SetIntersect:
		// ALL needs per-occurrence multiset consumption (min of the two
		// sides' counts); DISTINCT only asks whether right contains the
		// value at all, which containsTuple already answers directly.
		if n.All {
			out = multisetIntersect(left, right)
		} else {
			for _, l := range left {
				if containsTuple(right, l) {
					out = append(out, l)
				}
			}
			out = c.execDistinct(out)
		}

	case ast.SetExcept:
		if n.All {
			out = multisetExcept(left, right)
		} else {
			for _, l := range left {
				if !containsTuple(right, l) {
					out = append(out, l)
				}
			}
			out = c.execDistinct(out)
		}

	default:
		return nil, false, &errs.IllegalState{Reason: "unknown set operator"}
	}

	return out, false, nil
}

func containsTuple(set []binding, t binding) bool {
	for _, s := range set {
		if tupleEqual(value.Tuple(t), value.Tuple(s)) {
			return true
		}
	}
	return false
}

// multisetIntersect keeps, for each left element, one matching right
// element if still unconsumed — the min-of-counts contract §4.4.8
// requires for INTERSECT ALL.
func multisetIntersect(left, right []binding) []binding {
	used := make([]bool, len(right))
	var out []binding
	for _, l := range left {
		for i, r := range right {
			if used[i] {
				continue
			}
			if tupleEqual(value.Tuple(l), value.Tuple(r)) {
				out = append(out, l)
				used[i] = true
				break
			}
		}
	}
	return out
}

// multisetExcept drops, for each left element, one matching right
// element if still unconsumed, keeping the rest — the multiset
// difference §4.4.8 requires for EXCEPT ALL.
func multisetExcept(left, right []binding) []binding {
	used := make([]bool, len(right))
	var out []binding
	for _, l := range left {
		matched := false
		for i, r := range right {
			if used[i] {
				continue
			}
			if tupleEqual(value.Tuple(l), value.Tuple(r)) {
				used[i] = true
				matched = true
				break
			}
		}
		if !matched {
			out = append(out, l)
		}
	}
	return out
}
