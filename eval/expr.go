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

	"github.com/abcum/partiql/ast"
	"github.com/abcum/partiql/comp"
	"github.com/abcum/partiql/errs"
	"github.com/abcum/partiql/fn"
	"github.com/abcum/partiql/plan"
	"github.com/abcum/partiql/resolve"
	"github.com/abcum/partiql/value"
	"github.com/shopspring/decimal"
)

// evalExpr evaluates e against env, implementing §4.4.9's expression
// semantics: three-valued logic, absent-value propagation, and path
// navigation that degrades to Missing rather than erroring.
func (c *ctx) evalExpr(e ast.Expr, env *value.Env) (value.Value, error) {
	switch x := e.(type) {

	case ast.NullLit:
		return value.Null{}, nil
	case ast.MissingLit:
		return value.Missing{}, nil
	case ast.BoolLit:
		return value.Boolean(x.Val), nil
	case ast.IntLit:
		return value.Integer(x.Val), nil
	case ast.RealLit:
		return value.Real(x.Val), nil
	case ast.DecimalLit:
		d, err := decimal.NewFromString(x.Val)
		if err != nil {
			return value.Missing{}, nil
		}
		return value.NewDecimal(d), nil
	case ast.StringLit:
		return value.String(x.Val), nil

	case ast.Ident:
		if v, ok := env.Get(x.Name, x.CaseSensitive); ok {
			return v, nil
		}
		return value.Missing{}, nil

	case ast.Wildcard:
		return value.Missing{}, nil

	case ast.TupleExpr:
		return c.evalTupleExpr(x, env)
	case ast.ListExpr:
		return c.evalListExpr(x, env)
	case ast.BagExpr:
		return c.evalBagExpr(x, env)

	case ast.UnaryExpr:
		return c.evalUnary(x, env)
	case ast.BinaryExpr:
		return c.evalBinary(x, env)
	case ast.IsExpr:
		return c.evalIs(x, env)
	case ast.BetweenExpr:
		return c.evalBetween(x, env)
	case ast.LikeExpr:
		return c.evalLike(x, env)
	case ast.CaseExpr:
		return c.evalCase(x, env)
	case ast.CastExpr:
		v, err := c.evalExpr(x.X, env)
		if err != nil {
			return nil, err
		}
		return fn.Run("cast", []value.Value{v, value.String(x.Type)})

	case ast.PathExpr:
		return c.evalPath(x, env)

	case ast.CallExpr:
		return c.evalCall(x, env)

	case ast.SelectExpr:
		return c.evalSubquery(x, env)
	}
	return nil, &errs.EvaluationError{Reason: "unsupported expression"}
}

func (c *ctx) evalTupleExpr(x ast.TupleExpr, env *value.Env) (value.Value, error) {
	var t value.Tuple
	for _, f := range x.Fields {
		k, err := c.evalExpr(f.Key, env)
		if err != nil {
			return nil, err
		}
		key, ok := k.(value.String)
		if !ok {
			continue // non-string keys are dropped, mirroring Pivot's contract
		}
		v, err := c.evalExpr(f.Val, env)
		if err != nil {
			return nil, err
		}
		if value.IsAbsent(v) {
			continue
		}
		t = t.Set(string(key), v)
	}
	return t, nil
}

func (c *ctx) evalListExpr(x ast.ListExpr, env *value.Env) (value.Value, error) {
	out := make(value.List, len(x.Items))
	for i, item := range x.Items {
		v, err := c.evalExpr(item, env)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (c *ctx) evalBagExpr(x ast.BagExpr, env *value.Env) (value.Value, error) {
	out := make(value.Bag, len(x.Items))
	for i, item := range x.Items {
		v, err := c.evalExpr(item, env)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (c *ctx) evalUnary(x ast.UnaryExpr, env *value.Env) (value.Value, error) {
	v, err := c.evalExpr(x.X, env)
	if err != nil {
		return nil, err
	}
	switch x.Op {
	case ast.OpNeg:
		return value.Neg(v), nil
	case ast.OpPos:
		return value.Pos(v), nil
	case ast.OpNot:
		b, ok := v.(value.Boolean)
		if !ok {
			if value.IsAbsent(v) {
				return v, nil
			}
			return value.Null{}, nil
		}
		return value.Boolean(!bool(b)), nil
	}
	return nil, &errs.EvaluationError{Reason: "unsupported unary operator"}
}

func (c *ctx) evalBinary(x ast.BinaryExpr, env *value.Env) (value.Value, error) {
	switch x.Op {
	case ast.OpAnd:
		return c.evalAnd(x, env)
	case ast.OpOr:
		return c.evalOr(x, env)
	}

	l, err := c.evalExpr(x.X, env)
	if err != nil {
		return nil, err
	}
	r, err := c.evalExpr(x.Y, env)
	if err != nil {
		return nil, err
	}

	switch x.Op {
	case ast.OpAdd:
		return value.Add(l, r), nil
	case ast.OpSub:
		return value.Sub(l, r), nil
	case ast.OpMul:
		return value.Mul(l, r), nil
	case ast.OpDiv:
		return value.Div(l, r), nil
	case ast.OpMod:
		return value.Mod(l, r), nil
	case ast.OpConcat:
		return evalConcat(l, r), nil
	case ast.OpEq:
		return value.Equal(l, r), nil
	case ast.OpNeq:
		return value.NotEqual(l, r), nil
	case ast.OpLt, ast.OpLte, ast.OpGt, ast.OpGte:
		return c.evalCompare(x.Op, l, r), nil
	case ast.OpIn:
		return evalIn(l, r), nil
	}
	return nil, &errs.EvaluationError{Reason: "unsupported binary operator"}
}

// evalAnd/evalOr implement three-valued short-circuit logic (§3.2):
// AND is false if either operand is false regardless of the other's
// absence; OR is true if either operand is true.
func (c *ctx) evalAnd(x ast.BinaryExpr, env *value.Env) (value.Value, error) {
	l, err := c.evalExpr(x.X, env)
	if err != nil {
		return nil, err
	}
	if lb, ok := l.(value.Boolean); ok && !bool(lb) {
		return value.Boolean(false), nil
	}
	r, err := c.evalExpr(x.Y, env)
	if err != nil {
		return nil, err
	}
	if rb, ok := r.(value.Boolean); ok && !bool(rb) {
		return value.Boolean(false), nil
	}
	lb, lok := l.(value.Boolean)
	rb, rok := r.(value.Boolean)
	if lok && rok {
		return value.Boolean(bool(lb) && bool(rb)), nil
	}
	if value.IsAbsent(l) || value.IsAbsent(r) {
		return value.Missing{}, nil
	}
	return value.Null{}, nil
}

func (c *ctx) evalOr(x ast.BinaryExpr, env *value.Env) (value.Value, error) {
	l, err := c.evalExpr(x.X, env)
	if err != nil {
		return nil, err
	}
	if lb, ok := l.(value.Boolean); ok && bool(lb) {
		return value.Boolean(true), nil
	}
	r, err := c.evalExpr(x.Y, env)
	if err != nil {
		return nil, err
	}
	if rb, ok := r.(value.Boolean); ok && bool(rb) {
		return value.Boolean(true), nil
	}
	lb, lok := l.(value.Boolean)
	rb, rok := r.(value.Boolean)
	if lok && rok {
		return value.Boolean(bool(lb) || bool(rb)), nil
	}
	if value.IsAbsent(l) || value.IsAbsent(r) {
		return value.Missing{}, nil
	}
	return value.Null{}, nil
}

func evalConcat(l, r value.Value) value.Value {
	if value.IsAbsent(l) || value.IsAbsent(r) {
		if _, ok := l.(value.Missing); ok {
			return value.Missing{}
		}
		if _, ok := r.(value.Missing); ok {
			return value.Missing{}
		}
		return value.Null{}
	}
	ls, ok1 := l.(value.String)
	rs, ok2 := r.(value.String)
	if !ok1 || !ok2 {
		return value.Missing{}
	}
	return value.String(string(ls) + string(rs))
}

func (c *ctx) evalCompare(op ast.BinaryOp, l, r value.Value) value.Value {
	if value.IsAbsent(l) {
		return l
	}
	if value.IsAbsent(r) {
		return r
	}
	cmp := comp.Compare(l, r, c.opts.Collator)
	switch op {
	case ast.OpLt:
		return value.Boolean(cmp < 0)
	case ast.OpLte:
		return value.Boolean(cmp <= 0)
	case ast.OpGt:
		return value.Boolean(cmp > 0)
	case ast.OpGte:
		return value.Boolean(cmp >= 0)
	}
	return value.Null{}
}

func evalIn(l, r value.Value) value.Value {
	// IN's Missing/Null LHS propagates to Null rather than the usual
	// Missing-dominates-Null rule (§4.4.9).
	if value.IsAbsent(l) {
		return value.Null{}
	}
	switch rv := r.(type) {
	case value.List:
		return inSeq(l, rv)
	case value.Bag:
		return inSeq(l, rv)
	}
	// A non-collection RHS is a Null result, not Missing.
	return value.Null{}
}

func inSeq(l value.Value, items []value.Value) value.Value {
	sawAbsent := false
	for _, item := range items {
		eq := value.Equal(l, item)
		if b, ok := eq.(value.Boolean); ok && bool(b) {
			return value.Boolean(true)
		}
		if value.IsAbsent(eq) {
			sawAbsent = true
		}
	}
	if sawAbsent {
		return value.Null{}
	}
	return value.Boolean(false)
}

func (c *ctx) evalIs(x ast.IsExpr, env *value.Env) (value.Value, error) {
	v, err := c.evalExpr(x.X, env)
	if err != nil {
		return nil, err
	}
	var result bool
	switch x.Kind {
	case ast.IsNull:
		_, result = v.(value.Null)
	case ast.IsMissing:
		_, result = v.(value.Missing)
	}
	if x.Negate {
		result = !result
	}
	return value.Boolean(result), nil
}

func (c *ctx) evalBetween(x ast.BetweenExpr, env *value.Env) (value.Value, error) {
	v, err := c.evalExpr(x.X, env)
	if err != nil {
		return nil, err
	}
	lo, err := c.evalExpr(x.Lo, env)
	if err != nil {
		return nil, err
	}
	hi, err := c.evalExpr(x.Hi, env)
	if err != nil {
		return nil, err
	}
	geLo := c.evalCompare(ast.OpGte, v, lo)
	leHi := c.evalCompare(ast.OpLte, v, hi)
	return c.evalAndVals(geLo, leHi)
}

func (c *ctx) evalAndVals(l, r value.Value) (value.Value, error) {
	if lb, ok := l.(value.Boolean); ok && !bool(lb) {
		return value.Boolean(false), nil
	}
	if rb, ok := r.(value.Boolean); ok && !bool(rb) {
		return value.Boolean(false), nil
	}
	lb, lok := l.(value.Boolean)
	rb, rok := r.(value.Boolean)
	if lok && rok {
		return value.Boolean(bool(lb) && bool(rb)), nil
	}
	if value.IsAbsent(l) || value.IsAbsent(r) {
		return value.Missing{}, nil
	}
	return value.Null{}, nil
}

func (c *ctx) evalLike(x ast.LikeExpr, env *value.Env) (value.Value, error) {
	v, err := c.evalExpr(x.X, env)
	if err != nil {
		return nil, err
	}
	p, err := c.evalExpr(x.Pattern, env)
	if err != nil {
		return nil, err
	}
	if value.IsAbsent(v) {
		return v, nil
	}
	if value.IsAbsent(p) {
		return p, nil
	}
	s, ok1 := v.(value.String)
	pat, ok2 := p.(value.String)
	if !ok1 || !ok2 {
		return value.Missing{}, nil
	}
	esc := byte(0)
	hasEsc := false
	if x.Escape != nil {
		e, err := c.evalExpr(x.Escape, env)
		if err != nil {
			return nil, err
		}
		if es, ok := e.(value.String); ok && len(es) == 1 {
			esc = es[0]
			hasEsc = true
		}
	}
	match := likeMatch(string(s), string(pat), esc, hasEsc)
	if x.Negate {
		match = !match
	}
	return value.Boolean(match), nil
}

// likeMatch implements SQL LIKE with `_`/`%` wildcards and an optional
// escape byte, via a standard DP-free recursive matcher (patterns in
// this language are short; the recursion depth is bounded by pattern
// length).
func likeMatch(s, pat string, esc byte, hasEsc bool) bool {
	var match func(si, pi int) bool
	match = func(si, pi int) bool {
		if pi == len(pat) {
			return si == len(s)
		}
		if hasEsc && pat[pi] == esc && pi+1 < len(pat) {
			if si < len(s) && s[si] == pat[pi+1] {
				return match(si+1, pi+2)
			}
			return false
		}
		switch pat[pi] {
		case '%':
			for k := si; k <= len(s); k++ {
				if match(k, pi+1) {
					return true
				}
			}
			return false
		case '_':
			return si < len(s) && match(si+1, pi+1)
		default:
			return si < len(s) && s[si] == pat[pi] && match(si+1, pi+1)
		}
	}
	return match(0, 0)
}

func (c *ctx) evalCase(x ast.CaseExpr, env *value.Env) (value.Value, error) {
	var operand value.Value
	if x.Operand != nil {
		v, err := c.evalExpr(x.Operand, env)
		if err != nil {
			return nil, err
		}
		operand = v
	}
	for _, w := range x.Whens {
		wv, err := c.evalExpr(w.When, env)
		if err != nil {
			return nil, err
		}
		var hit bool
		if x.Operand != nil {
			eq := value.Equal(operand, wv)
			b, ok := eq.(value.Boolean)
			hit = ok && bool(b)
		} else {
			b, ok := wv.(value.Boolean)
			hit = ok && bool(b)
		}
		if hit {
			return c.evalExpr(w.Then, env)
		}
	}
	if x.Else != nil {
		return c.evalExpr(x.Else, env)
	}
	return value.Null{}, nil
}

// evalPath implements `.key`/`[i]`/`.*`/`[*]` navigation (§4.4.9): a
// missing key or out-of-bounds index degrades to Missing rather than
// erroring, a key or index step on a Null base yields Null (so an
// outer join's Null-padded alias projects its fields as Null), and a
// wildcard step yields a Bag of the remaining navigation applied to
// every element.
func (c *ctx) evalPath(x ast.PathExpr, env *value.Env) (value.Value, error) {
	base, err := c.evalExpr(x.Base, env)
	if err != nil {
		return nil, err
	}
	return c.applySteps(base, x.Steps, env)
}

func (c *ctx) applySteps(v value.Value, steps []ast.PathStep, env *value.Env) (value.Value, error) {
	if len(steps) == 0 {
		return v, nil
	}
	step := steps[0]
	rest := steps[1:]
	if _, ok := v.(value.Null); ok && step.Kind != ast.StepWildcard {
		return value.Null{}, nil
	}

	switch step.Kind {
	case ast.StepKey:
		k, err := c.evalExpr(step.Key, env)
		if err != nil {
			return nil, err
		}
		key, ok := k.(value.String)
		if !ok {
			return value.Missing{}, nil
		}
		t, ok := v.(value.Tuple)
		if !ok {
			return value.Missing{}, nil
		}
		return c.applySteps(t.Get(string(key), false), rest, env)

	case ast.StepIndex:
		i, err := c.evalExpr(step.Key, env)
		if err != nil {
			return nil, err
		}
		idx, ok := i.(value.Integer)
		if !ok {
			return value.Missing{}, nil
		}
		l, ok := v.(value.List)
		if !ok || int(idx) < 0 || int(idx) >= len(l) {
			return value.Missing{}, nil
		}
		return c.applySteps(l[idx], rest, env)

	case ast.StepWildcard:
		switch coll := v.(type) {
		case value.List:
			out := make(value.Bag, 0, len(coll))
			for _, e := range coll {
				r, err := c.applySteps(e, rest, env)
				if err != nil {
					return nil, err
				}
				if !value.IsAbsent(r) {
					out = append(out, r)
				}
			}
			return out, nil
		case value.Bag:
			out := make(value.Bag, 0, len(coll))
			for _, e := range coll {
				r, err := c.applySteps(e, rest, env)
				if err != nil {
					return nil, err
				}
				if !value.IsAbsent(r) {
					out = append(out, r)
				}
			}
			return out, nil
		case value.Tuple:
			out := make(value.Bag, 0, len(coll))
			for _, p := range coll {
				r, err := c.applySteps(p.Val, rest, env)
				if err != nil {
					return nil, err
				}
				if !value.IsAbsent(r) {
					out = append(out, r)
				}
			}
			return out, nil
		}
		return value.Missing{}, nil
	}
	return value.Missing{}, nil
}

// evalCall dispatches a function call expression, resolving named
// arguments left by preprocess.Rewrite into the positional order Run
// expects. Aggregate names (COUNT/SUM/...) are handled by GroupByOp
// when they appear inside a SELECT/HAVING/ORDER BY reached through a
// GROUP BY; a bare aggregate call with no grouping context (e.g. a
// whole-input aggregate) is evaluated directly against the single
// implicit group.
func (c *ctx) evalCall(x ast.CallExpr, env *value.Env) (value.Value, error) {
	if isAggregateName(x.Name) {
		return c.evalAggregate(x, env)
	}
	switch strings.ToLower(x.Name) {
	case "extract":
		return c.evalExtract(x, env)
	case "trim":
		return c.evalTrim(x, env)
	}
	args := make([]value.Value, len(x.Args))
	for i, a := range x.Args {
		v, err := c.evalExpr(a, env)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	var named []value.Value
	for _, name := range namedArgOrder(x.Name) {
		if e, ok := x.Named[name]; ok {
			v, err := c.evalExpr(e, env)
			if err != nil {
				return nil, err
			}
			named = append(named, v)
		}
	}
	if strings.EqualFold(x.Name, "substring") {
		// fn's substring takes (from, [for,] source): the source goes last.
		return fn.Run(x.Name, append(named, args...))
	}
	return fn.Run(x.Name, append(args, named...))
}

// namedArgOrder returns the positional slot order in which a
// rewritten built-in's named arguments must be appended, matching the
// argument order fn.Run expects for that name. trim and extract are
// handled separately (evalTrim, evalExtract): their named keys carry
// meaning in the key itself (which trim mode, which date part), not
// just in the value, so they can't be flattened generically.
func namedArgOrder(name string) []string {
	switch strings.ToLower(name) {
	case "substring":
		return []string{"from", "for"}
	case "position":
		return []string{"in"}
	case "overlay":
		return []string{"placing", "from", "for"}
	}
	return nil
}

// extractFields lists EXTRACT's date-part flag names in the order
// preprocess.Rewrite's pattern table recognizes them (§4.2).
var extractFields = []string{
	"year", "month", "day", "hour", "minute", "second", "timezone_hour", "timezone_minute",
}

// evalExtract evaluates EXTRACT(hour: true, from: t) (preprocess's
// rewrite of EXTRACT(HOUR FROM t)): the named key that fired is the
// date part itself, not its synthesized `true` value, so it is
// threaded through as fn.Run's positional part-name argument.
func (c *ctx) evalExtract(x ast.CallExpr, env *value.Env) (value.Value, error) {
	var part string
	for _, f := range extractFields {
		if _, ok := x.Named[f]; ok {
			part = f
			break
		}
	}
	if part == "" {
		return value.Missing{}, nil
	}
	fromExpr, ok := x.Named["from"]
	if !ok {
		return value.Missing{}, nil
	}
	dt, err := c.evalExpr(fromExpr, env)
	if err != nil {
		return nil, err
	}
	return fn.Run("extract", []value.Value{value.String(part), dt})
}

// evalTrim evaluates TRIM in any of its rewritten forms: the bare
// two-argument form (chars, from), the mode-qualified form
// (leading/trailing/both: chars, from: s), and the bare
// TRIM(from: s) form, which defaults the character set to a single
// space (§4.2).
func (c *ctx) evalTrim(x ast.CallExpr, env *value.Env) (value.Value, error) {
	var args []value.Value

	for _, a := range x.Args {
		v, err := c.evalExpr(a, env)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	for _, mode := range []string{"leading", "trailing", "both"} {
		e, ok := x.Named[mode]
		if !ok {
			continue
		}
		v, err := c.evalExpr(e, env)
		if err != nil {
			return nil, err
		}
		args = append([]value.Value{value.String(mode)}, append(args, v)...)
		break
	}

	if e, ok := x.Named["from"]; ok {
		v, err := c.evalExpr(e, env)
		if err != nil {
			return nil, err
		}
		if len(args) == 0 {
			args = append(args, value.String(" "))
		}
		args = append(args, v)
	}

	return fn.Run(x.Name, args)
}

func isAggregateName(name string) bool {
	switch strings.ToLower(name) {
	case "count", "sum", "avg", "min", "max", "any", "every":
		return true
	}
	return false
}

// evalSubquery evaluates a SELECT appearing in expression position
// (§4.4.7): it is resolved and lowered fresh on every call since it
// may be correlated against the current binding, then run with env as
// its outer/global scope so unqualified names fall through to the
// enclosing query's bindings.
func (c *ctx) evalSubquery(x ast.SelectExpr, env *value.Env) (value.Value, error) {
	r, err := resolve.Resolve(x.Stmt, nil)
	if err != nil {
		return nil, err
	}
	p := plan.Lower(r)
	return Eval(p, env, c.opts)
}
