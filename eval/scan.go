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

// execScan implements the Scan operator (§4.4.2): evaluate the source
// expression, iterate its elements, bind each to As and its ordinal
// (if the source is a List) to At.
func (c *ctx) execScan(n plan.ScanOp, global *value.Env) ([]binding, bool, error) {
	src, err := c.evalExpr(n.Expr, global)
	if err != nil {
		return nil, false, err
	}

	var items []value.Value
	ordered := false
	switch s := src.(type) {
	case value.List:
		items = s
		ordered = true
	case value.Bag:
		items = s
	case value.Missing, value.Null:
		return nil, false, nil
	default:
		items = []value.Value{s}
	}

	out := make([]binding, len(items))
	for i, item := range items {
		var b binding
		b = b.Set(n.As, item)
		if n.At != "" {
			if ordered {
				b = b.Set(n.At, value.Integer(i))
			} else {
				b = b.Set(n.At, value.Missing{})
			}
		}
		out[i] = b
	}
	return out, ordered, nil
}

// execUnpivot implements the Unpivot operator (§4.4.2): treats src as
// a tuple and binds each (value, key) pair to As/At.
func (c *ctx) execUnpivot(n plan.UnpivotOp, global *value.Env) ([]binding, bool, error) {
	src, err := c.evalExpr(n.Expr, global)
	if err != nil {
		return nil, false, err
	}
	t, ok := src.(value.Tuple)
	if !ok {
		if value.IsAbsent(src) {
			return nil, false, nil
		}
		return nil, false, &errs.TypeError{Reason: "UNPIVOT requires a tuple value"}
	}
	out := make([]binding, len(t))
	for i, p := range t {
		var b binding
		b = b.Set(n.As, p.Val)
		if n.At != "" {
			b = b.Set(n.At, value.String(p.Key))
		}
		out[i] = b
	}
	return out, false, nil
}

// execFilter implements both Filter and Having (§4.4.2/§4.4.5): the
// predicate keeps a binding only when it evaluates to exactly
// Boolean(true); Null/Missing/non-boolean results drop the row.
func (c *ctx) execFilter(pred ast.Expr, in []binding, global *value.Env) ([]binding, error) {
	out := make([]binding, 0, len(in))
	for _, b := range in {
		env := global.ExtendTuple(b)
		v, err := c.evalExpr(pred, env)
		if err != nil {
			if c.opts.Mode == Strict {
				return nil, err
			}
			continue
		}
		if keep, ok := v.(value.Boolean); ok && bool(keep) {
			out = append(out, b)
		}
	}
	return out, nil
}
