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
)

// trim implements the rewritten TRIM(spec, chars, source) call
// produced by preprocess.Rewrite; spec is one of "leading", "trailing",
// "both" or absent (meaning "both").
func trim(args []value.Value) (value.Value, error) {
	if len(args) < 2 {
		return nil, &errs.EvaluationError{Reason: "trim expects at least 2 arguments"}
	}
	if v, ok := propagateAbsent(args); ok {
		return v, nil
	}
	chars, ok1 := args[len(args)-2].(value.String)
	src, ok2 := args[len(args)-1].(value.String)
	if !ok1 || !ok2 {
		return value.Missing{}, nil
	}
	mode := "both"
	if len(args) >= 3 {
		if s, ok := args[0].(value.String); ok {
			mode = strings.ToLower(string(s))
		}
	}
	cutset := string(chars)
	s := string(src)
	switch mode {
	case "leading":
		s = strings.TrimLeft(s, cutset)
	case "trailing":
		s = strings.TrimRight(s, cutset)
	default:
		s = strings.Trim(s, cutset)
	}
	return value.String(s), nil
}

// substring implements SUBSTRING(s FROM start [FOR len]). preprocess
// rewrites it into substring(s, from: start, for: len), and the
// evaluator passes the arguments here as (start, [len,] s): the
// source string is always the last argument.
func substring(args []value.Value) (value.Value, error) {
	if len(args) < 2 {
		return nil, &errs.EvaluationError{Reason: "substring expects at least 2 arguments"}
	}
	if v, ok := propagateAbsent(args); ok {
		return v, nil
	}
	src, ok := args[len(args)-1].(value.String)
	if !ok {
		return value.Missing{}, nil
	}
	from, ok := asInt(args[0])
	if !ok {
		return value.Missing{}, nil
	}
	runes := []rune(string(src))
	start := int(from) - 1 // PartiQL SUBSTRING is 1-based
	length := len(runes) - start
	if len(args) == 3 {
		l, ok := asInt(args[1])
		if !ok {
			return value.Missing{}, nil
		}
		length = int(l)
	}
	if start < 0 {
		length += start
		start = 0
	}
	if start >= len(runes) || length <= 0 {
		return value.String(""), nil
	}
	end := start + length
	if end > len(runes) {
		end = len(runes)
	}
	return value.String(string(runes[start:end])), nil
}

// position implements POSITION(needle IN haystack), returning the
// 1-based index of the first match, or 0 if absent.
func position(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, &errs.EvaluationError{Reason: "position expects 2 arguments"}
	}
	if v, ok := propagateAbsent(args); ok {
		return v, nil
	}
	needle, ok1 := args[0].(value.String)
	haystack, ok2 := args[1].(value.String)
	if !ok1 || !ok2 {
		return value.Missing{}, nil
	}
	idx := strings.Index(string(haystack), string(needle))
	if idx < 0 {
		return value.Integer(0), nil
	}
	return value.Integer(len([]rune(string(haystack)[:idx])) + 1), nil
}

// overlay implements OVERLAY(s PLACING r FROM start [FOR len]).
func overlay(args []value.Value) (value.Value, error) {
	if len(args) < 3 {
		return nil, &errs.EvaluationError{Reason: "overlay expects at least 3 arguments"}
	}
	if v, ok := propagateAbsent(args); ok {
		return v, nil
	}
	src, ok1 := args[0].(value.String)
	repl, ok2 := args[1].(value.String)
	from, ok3 := asInt(args[2])
	if !ok1 || !ok2 || !ok3 {
		return value.Missing{}, nil
	}
	runes := []rune(string(src))
	start := int(from) - 1
	length := len([]rune(string(repl)))
	if len(args) == 4 {
		l, ok := asInt(args[3])
		if !ok {
			return value.Missing{}, nil
		}
		length = int(l)
	}
	if start < 0 {
		start = 0
	}
	if start > len(runes) {
		start = len(runes)
	}
	end := start + length
	if end > len(runes) {
		end = len(runes)
	}
	out := string(runes[:start]) + string(repl) + string(runes[end:])
	return value.String(out), nil
}

// octetLength returns a string's UTF-8 byte length (§4.4.9's
// OCTET_LENGTH, distinct from CHAR_LENGTH's rune count).
func octetLength(args []value.Value) (value.Value, error) {
	if v, ok := propagateAbsent(args); ok {
		return v, nil
	}
	s, ok := args[0].(value.String)
	if !ok {
		return value.Missing{}, nil
	}
	return value.Integer(len(string(s))), nil
}

// bitLength is OCTET_LENGTH scaled to bits.
func bitLength(args []value.Value) (value.Value, error) {
	v, err := octetLength(args)
	if err != nil {
		return nil, err
	}
	n, ok := v.(value.Integer)
	if !ok {
		return v, nil
	}
	return value.Integer(n * 8), nil
}

func asInt(v value.Value) (int64, bool) {
	switch n := v.(type) {
	case value.Integer:
		return int64(n), true
	case value.Real:
		return int64(n), true
	case value.Decimal:
		return n.D.IntPart(), true
	}
	return 0, false
}
