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
	"strconv"
	"strings"

	"github.com/abcum/partiql/errs"
	"github.com/abcum/partiql/value"
	"github.com/shopspring/decimal"
)

// cast implements CAST(x AS type); the parser builds an ast.CastExpr
// and the evaluator calls cast(<x>, <type-name as a String>). A cast that cannot be
// performed yields Missing (§4.4.9), never an error: casts run inside
// expression position where absent-propagation is the contract.
func cast(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, &errs.EvaluationError{Reason: "cast expects 2 arguments"}
	}
	if _, ok := args[0].(value.Missing); ok {
		return value.Missing{}, nil
	}
	typeName, ok := args[1].(value.String)
	if !ok {
		return nil, &errs.EvaluationError{Reason: "cast target type must be a name"}
	}
	return castTo(args[0], strings.ToLower(string(typeName)))
}

func castTo(v value.Value, typ string) (value.Value, error) {
	switch typ {
	case "boolean", "bool":
		switch x := v.(type) {
		case value.Boolean:
			return x, nil
		case value.String:
			switch strings.ToLower(string(x)) {
			case "true":
				return value.Boolean(true), nil
			case "false":
				return value.Boolean(false), nil
			}
		}
	case "integer", "int":
		switch x := v.(type) {
		case value.Integer:
			return x, nil
		case value.Real:
			return value.Integer(int64(x)), nil
		case value.Decimal:
			return value.Integer(x.D.IntPart()), nil
		case value.String:
			if n, err := strconv.ParseInt(strings.TrimSpace(string(x)), 10, 64); err == nil {
				return value.Integer(n), nil
			}
		}
	case "real", "float", "double":
		switch x := v.(type) {
		case value.Real:
			return x, nil
		case value.Integer:
			return value.Real(float64(x)), nil
		case value.Decimal:
			f, _ := x.D.Float64()
			return value.Real(f), nil
		case value.String:
			if f, err := strconv.ParseFloat(strings.TrimSpace(string(x)), 64); err == nil {
				return value.Real(f), nil
			}
		}
	case "decimal", "numeric":
		switch x := v.(type) {
		case value.Decimal:
			return x, nil
		case value.Integer:
			return value.NewDecimal(decimal.NewFromInt(int64(x))), nil
		case value.Real:
			return value.NewDecimal(decimal.NewFromFloat(float64(x))), nil
		case value.String:
			if d, err := decimal.NewFromString(strings.TrimSpace(string(x))); err == nil {
				return value.NewDecimal(d), nil
			}
		}
	case "string", "varchar", "text":
		if s, ok := v.(value.String); ok {
			return s, nil
		}
		return value.String(value.Stringify(v)), nil
	}
	return value.Missing{}, nil
}
