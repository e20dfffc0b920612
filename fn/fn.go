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

// Package fn implements PartiQL's scalar and collection built-in
// functions (§4.4.9's function-call expression form). Grounded on the
// teacher's util/fncs/fnc.go dispatch-by-name Run() switch, adapted to
// operate over value.Value instead of interface{}.
package fn

import (
	"strings"

	"github.com/abcum/partiql/errs"
	"github.com/abcum/partiql/value"
)

// Run dispatches a scalar built-in call by name. Named args are
// resolved by the caller (eval) into positional order before Run is
// invoked; Run only ever sees positional args.
func Run(name string, args []value.Value) (value.Value, error) {
	switch strings.ToLower(name) {

	case "upper":
		return strFn(args, strings.ToUpper)
	case "lower":
		return strFn(args, strings.ToLower)
	case "trim":
		return trim(args)
	case "substring":
		return substring(args)
	case "position":
		return position(args)
	case "overlay":
		return overlay(args)
	case "char_length", "character_length":
		return charLength(args)
	case "octet_length":
		return octetLength(args)
	case "bit_length":
		return bitLength(args)
	case "concat":
		return concat(args)
	case "extract":
		return extract(args)
	case "cast":
		return cast(args)
	case "abs":
		return absFn(args)
	case "mod":
		return modFn(args)
	case "exists":
		return existsFn(args)
	case "cardinality":
		return cardinality(args)

	default:
		return nil, &errs.EvaluationError{Reason: "unknown function: " + name}
	}
}

// propagateAbsent returns (Missing|Null, true) if any arg is absent,
// following §3's three-valued propagation: Missing dominates Null.
func propagateAbsent(args []value.Value) (value.Value, bool) {
	sawNull := false
	for _, a := range args {
		if _, ok := a.(value.Missing); ok {
			return value.Missing{}, true
		}
		if _, ok := a.(value.Null); ok {
			sawNull = true
		}
	}
	if sawNull {
		return value.Null{}, true
	}
	return nil, false
}

func strFn(args []value.Value, f func(string) string) (value.Value, error) {
	if len(args) != 1 {
		return nil, &errs.EvaluationError{Reason: "expects 1 argument"}
	}
	if v, ok := propagateAbsent(args); ok {
		return v, nil
	}
	s, ok := args[0].(value.String)
	if !ok {
		return value.Missing{}, nil
	}
	return value.String(f(string(s))), nil
}

func charLength(args []value.Value) (value.Value, error) {
	if v, ok := propagateAbsent(args); ok {
		return v, nil
	}
	s, ok := args[0].(value.String)
	if !ok {
		return value.Missing{}, nil
	}
	return value.Integer(len([]rune(string(s)))), nil
}

func concat(args []value.Value) (value.Value, error) {
	if v, ok := propagateAbsent(args); ok {
		return v, nil
	}
	var b strings.Builder
	for _, a := range args {
		s, ok := a.(value.String)
		if !ok {
			return value.Missing{}, nil
		}
		b.WriteString(string(s))
	}
	return value.String(b.String()), nil
}

func absFn(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, &errs.EvaluationError{Reason: "abs expects 1 argument"}
	}
	if v, ok := propagateAbsent(args); ok {
		return v, nil
	}
	switch n := args[0].(type) {
	case value.Integer:
		if n < 0 {
			return -n, nil
		}
		return n, nil
	case value.Real:
		if n < 0 {
			return -n, nil
		}
		return n, nil
	case value.Decimal:
		return value.Decimal{D: n.D.Abs()}, nil
	}
	return value.Missing{}, nil
}

// modFn implements the MOD(a, b) built-in by delegating to the same
// numeric-promotion kernel the `%` operator uses.
func modFn(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, &errs.EvaluationError{Reason: "mod expects 2 arguments"}
	}
	return value.Mod(args[0], args[1]), nil
}

// cardinality returns the element/field count of a List, Bag or
// Tuple (§4.4.9's collection functions).
func cardinality(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, &errs.EvaluationError{Reason: "cardinality expects 1 argument"}
	}
	if v, ok := propagateAbsent(args); ok {
		return v, nil
	}
	switch v := args[0].(type) {
	case value.List:
		return value.Integer(len(v)), nil
	case value.Bag:
		return value.Integer(len(v)), nil
	case value.Tuple:
		return value.Integer(len(v)), nil
	}
	return value.Missing{}, nil
}

func existsFn(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, &errs.EvaluationError{Reason: "exists expects 1 argument"}
	}
	switch v := args[0].(type) {
	case value.Missing:
		return value.Boolean(false), nil
	case value.List:
		return value.Boolean(len(v) > 0), nil
	case value.Bag:
		return value.Boolean(len(v) > 0), nil
	default:
		return value.Boolean(true), nil
	}
}
