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
	"strings"

	"github.com/shopspring/decimal"

	"github.com/abcum/partiql/comp"
	"github.com/abcum/partiql/errs"
	"github.com/abcum/partiql/value"
)

// aggregateOp folds vals (already DISTINCT-deduplicated and absent-
// filtered by evalAggregate) under one of the aggregate names §4.4.3
// requires. COUNT counts rows regardless of type; SUM/AVG require
// numeric operands and yield Missing on a non-numeric input; MIN/MAX
// order by the total-order comparator so any comparable type works;
// ANY/EVERY yield Missing if any input is not Boolean.
func aggregateOp(name string, vals []value.Value) (value.Value, error) {
	switch strings.ToLower(name) {

	case "count":
		return value.Integer(len(vals)), nil

	case "sum":
		if len(vals) == 0 {
			return value.Null{}, nil
		}
		acc := vals[0]
		for _, v := range vals[1:] {
			acc = value.Add(acc, v)
		}
		return acc, nil

	case "avg":
		if len(vals) == 0 {
			return value.Null{}, nil
		}
		acc := vals[0]
		for _, v := range vals[1:] {
			acc = value.Add(acc, v)
		}
		// §4.4.3: an Integer sum widens to Decimal before dividing,
		// rather than Div's usual not-exact-division widening to Real.
		if n, ok := acc.(value.Integer); ok {
			acc = value.NewDecimal(decimal.NewFromInt(int64(n)))
		}
		return value.Div(acc, value.Integer(len(vals))), nil

	case "min", "max":
		if len(vals) == 0 {
			return value.Null{}, nil
		}
		cl := comp.NewCollator("")
		best := vals[0]
		for _, v := range vals[1:] {
			cmp := comp.Compare(v, best, cl)
			if (strings.EqualFold(name, "min") && cmp < 0) || (strings.EqualFold(name, "max") && cmp > 0) {
				best = v
			}
		}
		return best, nil

	case "any":
		found := false
		for _, v := range vals {
			b, ok := v.(value.Boolean)
			if !ok {
				return value.Missing{}, nil
			}
			if bool(b) {
				found = true
			}
		}
		return value.Boolean(found), nil

	case "every":
		all := true
		for _, v := range vals {
			b, ok := v.(value.Boolean)
			if !ok {
				return value.Missing{}, nil
			}
			if !bool(b) {
				all = false
			}
		}
		return value.Boolean(all), nil
	}
	return nil, &errs.EvaluationError{Reason: "unknown aggregate: " + name}
}
