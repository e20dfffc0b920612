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
	"github.com/abcum/partiql/plan"
	"github.com/abcum/partiql/value"
)

// execJoin implements INNER/LEFT/RIGHT/FULL/CROSS JOIN (§4.4.2).
// RIGHT and FULL are not native operators: per the Open Question
// decision recorded in DESIGN.md, they are evaluated as their
// symmetric extension. RIGHT is a LEFT join run with the operands
// swapped, with each binding's left-hand pairs moved back in front;
// FULL is a LEFT join followed by a second pass that appends the
// right-hand rows that matched nothing.
func (c *ctx) execJoin(n plan.JoinOp, global *value.Env) ([]binding, bool, error) {
	left, _, err := c.exec(n.Left, global)
	if err != nil {
		return nil, false, err
	}
	right, _, err := c.exec(n.Right, global)
	if err != nil {
		return nil, false, err
	}

	switch n.Kind {
	case ast.JoinCross:
		return c.crossJoin(left, right, nil, global)
	case ast.JoinInner:
		return c.innerJoin(left, right, n.On, global)
	case ast.JoinLeft:
		return c.leftJoin(left, right, n.On, global)
	case ast.JoinRight:
		out, err := c.leftJoin(right, left, n.On, global)
		if err != nil {
			return nil, false, err
		}
		isLeft := map[string]bool{}
		for _, k := range fieldNamesOf(left) {
			isLeft[k] = true
		}
		for i, b := range out {
			var l, r binding
			for _, p := range b {
				if isLeft[p.Key] {
					l = append(l, p)
				} else {
					r = append(r, p)
				}
			}
			out[i] = combine(l, r)
		}
		return out, false, nil
	case ast.JoinFull:
		return c.fullJoin(left, right, n.On, global)
	}
	return nil, false, nil
}

func combine(l, r binding) binding {
	out := make(binding, 0, len(l)+len(r))
	out = append(out, l...)
	out = append(out, r...)
	return out
}

func (c *ctx) crossJoin(left, right []binding, on ast.Expr, global *value.Env) ([]binding, bool, error) {
	var out []binding
	for _, l := range left {
		for _, r := range right {
			b := combine(l, r)
			if on != nil {
				env := global.ExtendTuple(b)
				v, err := c.evalExpr(on, env)
				if err != nil {
					return nil, false, err
				}
				if keep, ok := v.(value.Boolean); !ok || !bool(keep) {
					continue
				}
			}
			out = append(out, b)
		}
	}
	return out, false, nil
}

func (c *ctx) innerJoin(left, right []binding, on ast.Expr, global *value.Env) ([]binding, bool, error) {
	return c.crossJoin(left, right, on, global)
}

// leftJoin keeps every left binding, padding with Null for every
// right-hand field when no right binding satisfies on (§4.4.2).
func (c *ctx) leftJoin(left, right []binding, on ast.Expr, global *value.Env) ([]binding, error) {
	rightFields := fieldNamesOf(right)
	var out []binding
	for _, l := range left {
		matched := false
		for _, r := range right {
			b := combine(l, r)
			env := global.ExtendTuple(b)
			v, err := c.evalExpr(on, env)
			if err != nil {
				return nil, err
			}
			if keep, ok := v.(value.Boolean); ok && bool(keep) {
				out = append(out, b)
				matched = true
			}
		}
		if !matched {
			b := l
			for _, f := range rightFields {
				b = b.Set(f, value.Null{})
			}
			out = append(out, b)
		}
	}
	return out, nil
}

// fullJoin extends leftJoin with right-hand rows that matched no left
// binding, padded symmetrically.
func (c *ctx) fullJoin(left, right []binding, on ast.Expr, global *value.Env) ([]binding, bool, error) {
	leftFields := fieldNamesOf(left)
	lj, err := c.leftJoin(left, right, on, global)
	if err != nil {
		return nil, false, err
	}
	matchedRight := make([]bool, len(right))
	for _, l := range left {
		for i, r := range right {
			b := combine(l, r)
			env := global.ExtendTuple(b)
			v, err := c.evalExpr(on, env)
			if err != nil {
				return nil, false, err
			}
			if keep, ok := v.(value.Boolean); ok && bool(keep) {
				matchedRight[i] = true
			}
		}
	}
	out := lj
	for i, r := range right {
		if matchedRight[i] {
			continue
		}
		b := r
		for _, f := range leftFields {
			b = b.Set(f, value.Null{})
		}
		out = append(out, b)
	}
	return out, false, nil
}

func fieldNamesOf(bindings []binding) []string {
	seen := map[string]bool{}
	var names []string
	for _, b := range bindings {
		for _, k := range b.Keys() {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
	}
	return names
}
