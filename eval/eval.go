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

// Package eval executes a lowered plan graph (§4.4) against a global
// binding environment. Execution is single-threaded and cooperative:
// one goroutine walks the plan bottom-up, materializing each
// operator's output bindings before its consumer runs. Grounded on
// the teacher's db/iterator.go operator semantics, stripped of its
// channel/worker-pool concurrency since §5 mandates synchronous,
// non-reentrant evaluation.
package eval

import (
	"github.com/abcum/partiql/comp"
	"github.com/abcum/partiql/errs"
	"github.com/abcum/partiql/plan"
	"github.com/abcum/partiql/value"
)

// Mode selects how evaluation errors that §4.4 calls out as
// recoverable (a failed arithmetic op, a bad path step) are handled:
// Permissive degrades the offending value to Missing/Null and keeps
// going; Strict raises the error immediately.
type Mode int

const (
	Permissive Mode = iota
	Strict
)

// Options configures one evaluation run.
type Options struct {
	Mode     Mode
	Collator *comp.Collator
}

// DefaultOptions returns the root-locale, permissive configuration
// used when a caller doesn't need anything special.
func DefaultOptions() Options {
	return Options{Mode: Permissive, Collator: comp.NewCollator("")}
}

// ctx bundles the per-run configuration threaded through every
// recursive eval call.
type ctx struct {
	opts Options
}

// binding is one row flowing between plan operators: a tuple whose
// fields are the aliases currently in scope.
type binding = value.Tuple

// Eval runs the plan rooted at sink against global (the ambient/outer
// binding environment, e.g. session variables reachable via `@name`)
// and returns the query's result value.
func Eval(sink *plan.Sink, global *value.Env, opts Options) (value.Value, error) {
	c := &ctx{opts: opts}

	if eq, ok := sink.In.(plan.ExprQueryOp); ok {
		return c.evalExpr(eq.Expr, global)
	}

	if piv, ok := sink.In.(plan.PivotOp); ok {
		return c.execPivot(piv, global)
	}

	bindings, ordered, err := c.exec(sink.In, global)
	if err != nil {
		return nil, err
	}

	if sink.IsValue {
		vals := make([]value.Value, len(bindings))
		for i, b := range bindings {
			vals[i] = b.Get("_val", true)
		}
		if ordered || sink.Ordered {
			return value.List(vals), nil
		}
		return value.Bag(vals), nil
	}

	vals := make([]value.Value, len(bindings))
	for i, b := range bindings {
		vals[i] = b
	}
	if ordered || sink.Ordered {
		return value.List(vals), nil
	}
	return value.Bag(vals), nil
}

// exec dispatches one plan node, returning its output bindings and
// whether that output's order is semantically meaningful (and must
// therefore surface as a List rather than a Bag; §4.4's "Ordering
// guarantees").
func (c *ctx) exec(op plan.Op, global *value.Env) ([]binding, bool, error) {
	switch n := op.(type) {

	case plan.ScanOp:
		return c.execScan(n, global)
	case plan.UnpivotOp:
		return c.execUnpivot(n, global)
	case plan.JoinOp:
		return c.execJoin(n, global)
	case plan.FilterOp:
		in, ordered, err := c.exec(n.In, global)
		if err != nil {
			return nil, false, err
		}
		out, err := c.execFilter(n.Pred, in, global)
		return out, ordered, err
	case plan.HavingOp:
		in, ordered, err := c.exec(n.In, global)
		if err != nil {
			return nil, false, err
		}
		out, err := c.execFilter(n.Pred, in, global)
		return out, ordered, err
	case plan.GroupByOp:
		if n.Partial {
			return nil, false, &errs.UnsupportedFeature{Feature: "GROUP PARTIAL"}
		}
		in, _, err := c.exec(n.In, global)
		if err != nil {
			return nil, false, err
		}
		out, err := c.execGroupBy(n, in, global)
		return out, false, err
	case plan.OrderByOp:
		in, _, err := c.exec(n.In, global)
		if err != nil {
			return nil, false, err
		}
		out, err := c.execOrderBy(n, in, global)
		return out, true, err
	case plan.LimitOffsetOp:
		in, ordered, err := c.exec(n.In, global)
		if err != nil {
			return nil, false, err
		}
		out, err := c.execLimitOffset(n, in, global)
		return out, ordered, err
	case plan.ProjectOp:
		in, ordered, err := c.exec(n.In, global)
		if err != nil {
			return nil, false, err
		}
		out, err := c.execProject(n, in, global)
		return out, ordered, err
	case plan.ProjectAllOp:
		in, ordered, err := c.exec(n.In, global)
		if err != nil {
			return nil, false, err
		}
		return c.execProjectAll(n, in), ordered, nil
	case plan.ProjectValueOp:
		in, ordered, err := c.exec(n.In, global)
		if err != nil {
			return nil, false, err
		}
		out, err := c.execProjectValue(n, in, global)
		return out, ordered, err
	case plan.DistinctOp:
		in, _, err := c.exec(n.In, global)
		if err != nil {
			return nil, false, err
		}
		return c.execDistinct(in), false, nil
	case plan.SetOp:
		return c.execSetOp(n, global)
	}
	return nil, false, &errs.IllegalState{Reason: "unreachable plan node"}
}
