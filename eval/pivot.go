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

// execPivot implements the Pivot operator (§4.3/§4.4.6): assembles a
// single tuple by evaluating Key/Value per input binding, keeping
// only pairs whose key evaluates to a String; other pairs are dropped.
func (c *ctx) execPivot(n plan.PivotOp, global *value.Env) (value.Value, error) {
	in, _, err := c.exec(n.In, global)
	if err != nil {
		return nil, err
	}

	var out value.Tuple
	for _, b := range in {
		env := global.ExtendTuple(b)

		k, err := c.evalExpr(n.Key, env)
		if err != nil {
			if c.opts.Mode == Strict {
				return nil, err
			}
			continue
		}
		key, ok := k.(value.String)
		if !ok {
			continue
		}

		v, err := c.evalExpr(n.Value, env)
		if err != nil {
			if c.opts.Mode == Strict {
				return nil, err
			}
			v = value.Missing{}
		}
		out = out.Set(string(key), v)
	}
	return out, nil
}
