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
	"github.com/abcum/partiql/errs"
	"github.com/abcum/partiql/plan"
	"github.com/abcum/partiql/value"
)

// execLimitOffset skips Offset bindings then keeps at most Limit
// (§4.3's LimitOffset operator).
func (c *ctx) execLimitOffset(n plan.LimitOffsetOp, in []binding, global *value.Env) ([]binding, error) {
	offset := 0
	if n.Offset != nil {
		v, err := c.evalExpr(n.Offset, global)
		if err != nil {
			return nil, err
		}
		i, ok := v.(value.Integer)
		if !ok {
			return nil, &errs.TypeError{Reason: "OFFSET must be an integer"}
		}
		offset = int(i)
	}
	if offset < 0 {
		offset = 0
	}
	if offset > len(in) {
		offset = len(in)
	}
	in = in[offset:]

	if n.Limit == nil {
		return in, nil
	}
	v, err := c.evalExpr(n.Limit, global)
	if err != nil {
		return nil, err
	}
	i, ok := v.(value.Integer)
	if !ok {
		return nil, &errs.TypeError{Reason: "LIMIT must be an integer"}
	}
	limit := int(i)
	if limit < 0 {
		limit = 0
	}
	if limit > len(in) {
		limit = len(in)
	}
	return in[:limit], nil
}
