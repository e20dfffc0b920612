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
	"github.com/abcum/partiql/plan"
	"github.com/abcum/partiql/value"
)

// execProject implements SELECT a, b, ... (§4.4.6): emits one tuple
// per input binding, eliding any field whose expression evaluates to
// Missing; a `path.*` field splats every field of its value into the
// output tuple instead of binding one named field.
func (c *ctx) execProject(n plan.ProjectOp, in []binding, global *value.Env) ([]binding, error) {
	out := make([]binding, 0, len(in))
	for _, b := range in {
		env := global.ExtendTuple(b)
		var row binding
		for i, f := range n.Fields {
			v, err := c.evalExpr(f, env)
			if err != nil {
				if c.opts.Mode == Strict {
					return nil, err
				}
				v = value.Missing{}
			}
			if n.Stars[i] {
				if t, ok := v.(value.Tuple); ok {
					for _, p := range t {
						row = row.Set(p.Key, p.Val)
					}
				}
				continue
			}
			if _, ok := v.(value.Missing); ok {
				continue
			}
			row = row.Set(n.Aliases[i], v)
		}
		out = append(out, row)
	}
	return out, nil
}

// execProjectValue implements SELECT VALUE expr (§4.4.6): emits the
// expression's value directly as the row, stashed under the internal
// "_val" key so Eval can unwrap it into the result container.
func (c *ctx) execProjectValue(n plan.ProjectValueOp, in []binding, global *value.Env) ([]binding, error) {
	out := make([]binding, len(in))
	for i, b := range in {
		env := global.ExtendTuple(b)
		v, err := c.evalExpr(n.Expr, env)
		if err != nil {
			if c.opts.Mode == Strict {
				return nil, err
			}
			v = value.Missing{}
		}
		var row binding
		row = row.Set("_val", v)
		out[i] = row
	}
	return out, nil
}

// execProjectAll implements SELECT * (§4.4.6). Passthrough bindings
// whose single field is itself a Tuple are returned unwrapped, as if
// the FROM source's value had been emitted directly; any other shape
// (a join, a grouped binding, or a non-tuple scanned value) falls
// through to the splat form, flattening every field's own fields (for
// Tuple-valued fields) or the field itself into one output tuple.
func (c *ctx) execProjectAll(n plan.ProjectAllOp, in []binding) []binding {
	out := make([]binding, len(in))
	for i, b := range in {
		if n.Passthrough && len(b) == 1 {
			if t, ok := b[0].Val.(value.Tuple); ok {
				out[i] = t
				continue
			}
		}
		var row binding
		for _, p := range b {
			if t, ok := p.Val.(value.Tuple); ok {
				for _, tp := range t {
					row = row.Set(tp.Key, tp.Val)
				}
				continue
			}
			row = row.Set(p.Key, p.Val)
		}
		out[i] = row
	}
	return out
}

// execDistinct deduplicates bindings using the same equality kernel
// Equal uses for tuples (multiset-of-pairs comparison), per §4.4.8.
func (c *ctx) execDistinct(in []binding) []binding {
	var out []binding
	for _, b := range in {
		dup := false
		for _, o := range out {
			if tupleEqual(value.Tuple(b), value.Tuple(o)) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, b)
		}
	}
	return out
}

// tupleEqual reuses the strict equality kernel via value.Equal on two
// wrapped tuples.
func tupleEqual(a, b value.Tuple) bool {
	eq := value.Equal(a, b)
	bv, ok := eq.(value.Boolean)
	return ok && bool(bv)
}
