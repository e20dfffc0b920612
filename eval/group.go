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
	"fmt"

	"github.com/abcum/partiql/ast"
	"github.com/abcum/partiql/errs"
	"github.com/abcum/partiql/plan"
	"github.com/abcum/partiql/value"
)

// groupField is the hidden binding field GroupByOp attaches to every
// output row, carrying the group's original member bindings so a
// later Project/Having/OrderBy stage can evaluate aggregate calls
// against it. Grounded on the teacher's db/iterator.go CombinedState,
// which likewise bundled per-group accumulator state onto the row
// flowing to the projection stage.
const groupField = "__group__"

// execGroupBy implements GroupBy (§4.4.3): partitions in by Keys using
// GroupEqual (Null/Missing-tolerant) equality, producing one output
// binding per partition with the key aliases bound, the optional
// GROUP AS binding, and the hidden groupField for aggregate
// evaluation.
func (c *ctx) execGroupBy(n plan.GroupByOp, in []binding, global *value.Env) ([]binding, error) {
	type group struct {
		keyVals []value.Value
		rows    []binding
	}
	var groups []*group

	for _, row := range in {
		env := global.ExtendTuple(row)
		keyVals := make([]value.Value, len(n.Keys))
		for i, k := range n.Keys {
			v, err := c.evalExpr(k.Expr, env)
			if err != nil {
				return nil, err
			}
			keyVals[i] = v
		}

		var match *group
		for _, g := range groups {
			if keysEqual(g.keyVals, keyVals) {
				match = g
				break
			}
		}
		if match == nil {
			match = &group{keyVals: keyVals}
			groups = append(groups, match)
		}
		match.rows = append(match.rows, row)
	}

	if len(n.Keys) == 0 && len(groups) == 0 {
		// An aggregate over zero input rows still produces one empty
		// group (e.g. COUNT(*) over an empty table is 0, not absent).
		groups = append(groups, &group{})
	}

	out := make([]binding, len(groups))
	for gi, g := range groups {
		var b binding
		for i, k := range n.Keys {
			alias := k.Alias
			if alias == "" {
				alias = aliasOfExpr(k.Expr, gi)
			}
			b = b.Set(alias, g.keyVals[i])
		}
		if n.GroupAs != "" {
			rows := make(value.Bag, len(g.rows))
			for i, r := range g.rows {
				rows[i] = value.Tuple(r)
			}
			b = b.Set(n.GroupAs, rows)
		}
		rows := make(value.Bag, len(g.rows))
		for i, r := range g.rows {
			rows[i] = value.Tuple(r)
		}
		b = b.Set(groupField, rows)
		out[gi] = b
	}
	return out, nil
}

// keysEqual applies GroupEqual pairwise (§3's "group nulls" rule:
// Null groups with Null, Missing groups with Missing).
func keysEqual(a, b []value.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		eq := value.GroupEqual(a[i], b[i])
		if bv, ok := eq.(value.Boolean); !ok || !bool(bv) {
			return false
		}
	}
	return true
}

func aliasOfExpr(e ast.Expr, ordinal int) string {
	if id, ok := e.(ast.Ident); ok {
		return id.Name
	}
	return fmt.Sprintf("_%d", ordinal+1)
}

// evalAggregate computes one aggregate call's value over env's bound
// group (§4.4.3): COUNT/SUM/AVG/MIN/MAX/ANY/EVERY, each honoring
// DISTINCT when the call requests it.
func (c *ctx) evalAggregate(call ast.CallExpr, env *value.Env) (value.Value, error) {
	rows, ok := env.Get(groupField, true)
	if !ok {
		return nil, &errs.UnsupportedFeature{Feature: "aggregate " + call.Name + "() outside of a grouped query"}
	}
	bag, _ := rows.(value.Bag)

	isCountStar := false
	if len(call.Args) == 1 {
		if _, ok := call.Args[0].(ast.Wildcard); ok {
			isCountStar = true
		}
	}

	var vals []value.Value
	for _, r := range bag {
		rowEnv := env.ExtendTuple(r.(value.Tuple))
		if isCountStar {
			vals = append(vals, value.Boolean(true))
			continue
		}
		v, err := c.evalExpr(call.Args[0], rowEnv)
		if err != nil {
			return nil, err
		}
		if !value.IsAbsent(v) {
			vals = append(vals, v)
		}
	}

	if call.Distinct {
		vals = distinctValues(vals)
	}

	return aggregateOp(call.Name, vals)
}

func distinctValues(in []value.Value) []value.Value {
	var out []value.Value
	for _, v := range in {
		dup := false
		for _, o := range out {
			eq := value.Equal(v, o)
			if b, ok := eq.(value.Boolean); ok && bool(b) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, v)
		}
	}
	return out
}
