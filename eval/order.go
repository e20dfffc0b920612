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
	"sort"

	"github.com/abcum/partiql/ast"
	"github.com/abcum/partiql/comp"
	"github.com/abcum/partiql/plan"
	"github.com/abcum/partiql/value"
)

// execOrderBy implements ORDER BY (§4.4.4): a stable multi-key sort,
// each key independently overridable with NULLS FIRST/LAST.
func (c *ctx) execOrderBy(n plan.OrderByOp, in []binding, global *value.Env) ([]binding, error) {
	type row struct {
		b    binding
		keys []value.Value
	}
	rows := make([]row, len(in))
	for i, b := range in {
		env := global.ExtendTuple(b)
		keys := make([]value.Value, len(n.Keys))
		for j, k := range n.Keys {
			v, err := c.evalExpr(k.Expr, env)
			if err != nil {
				if c.opts.Mode == Strict {
					return nil, err
				}
				v = value.Missing{}
			}
			keys[j] = v
		}
		rows[i] = row{b: b, keys: keys}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		for k, spec := range n.Keys {
			ck := comp.Key{
				Dir:    sortDir(spec.Dir),
				Nulls:  sortNulls(spec.Nulls),
				Collar: c.opts.Collator,
			}
			cmp := comp.CompareKey(rows[i].keys[k], rows[j].keys[k], ck)
			if cmp != 0 {
				return cmp < 0
			}
		}
		return false
	})

	out := make([]binding, len(rows))
	for i, r := range rows {
		out[i] = r.b
	}
	return out, nil
}

func sortDir(d ast.OrderDir) comp.Direction {
	if d == ast.OrderDesc {
		return comp.Desc
	}
	return comp.Asc
}

func sortNulls(n ast.OrderNulls) comp.NullsPlacement {
	switch n {
	case ast.OrderNullsFirst:
		return comp.NullsFirst
	case ast.OrderNullsLast:
		return comp.NullsLast
	}
	return comp.NullsDefault
}
