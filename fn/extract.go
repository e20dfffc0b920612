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

package fn

import (
	"strings"

	"github.com/abcum/partiql/errs"
	"github.com/abcum/partiql/value"
	"github.com/shopspring/decimal"
)

// extract implements EXTRACT(part FROM datetime). preprocess rewrites
// it into extract(<part>: true, from: <datetime>), and the evaluator
// calls extract(<part-name as a String>, <datetime>).
func extract(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, &errs.EvaluationError{Reason: "extract expects 2 arguments"}
	}
	if v, ok := propagateAbsent(args); ok {
		return v, nil
	}
	part, ok := args[0].(value.String)
	if !ok {
		return value.Missing{}, nil
	}
	dt, ok := args[1].(value.DateTime)
	if !ok {
		return value.Missing{}, nil
	}
	t := dt.T
	switch strings.ToLower(string(part)) {
	case "year":
		return value.Integer(t.Year()), nil
	case "month":
		return value.Integer(int(t.Month())), nil
	case "day":
		return value.Integer(t.Day()), nil
	case "hour":
		return value.Integer(t.Hour()), nil
	case "minute":
		return value.Integer(t.Minute()), nil
	case "second":
		secs := decimal.NewFromInt(int64(t.Second())).Add(
			decimal.New(int64(t.Nanosecond()), -9))
		return value.NewDecimal(secs), nil
	case "timezone_hour":
		if !dt.HasOffset {
			return value.Missing{}, nil
		}
		_, offset := t.Zone()
		return value.Integer(offset / 3600), nil
	case "timezone_minute":
		if !dt.HasOffset {
			return value.Missing{}, nil
		}
		_, offset := t.Zone()
		return value.Integer((offset / 60) % 60), nil
	}
	return value.Missing{}, nil
}
