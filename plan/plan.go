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

// Package plan lowers a resolved query into the directed bindings-
// operator graph described by §4.3: FROM -> WHERE -> GROUP BY ->
// HAVING -> ORDER BY -> LIMIT/OFFSET -> SELECT -> DISTINCT (there is
// no LET stage; LET bindings are not lowered). Each
// node consumes zero, one or two input operators and is executed by
// the eval package. Grounded on the teacher's db/iterator.go operator
// shapes (groupable/orderable/workable structs), generalized from its
// concurrent worker-pool model to the single-threaded contract of §5.
package plan

import "github.com/abcum/partiql/ast"

// Op is any node of the lowered plan graph.
type Op interface {
	planNode()
}

// ScanOp iterates expr's elements, binding each to As and its ordinal
// (if the source is ordered) to At.
type ScanOp struct {
	Expr ast.Expr
	As   string
	At   string
}

// UnpivotOp treats expr's value as a tuple, binding each (value, key)
// pair to As/At.
type UnpivotOp struct {
	Expr ast.Expr
	As   string
	At   string
}

// JoinOp combines Left and Right bindings under Kind; RIGHT/FULL are
// lowered to INNER/LEFT plus a symmetric anti-join extension by the
// evaluator (see eval/join.go and the Open Question decision in
// DESIGN.md).
type JoinOp struct {
	Kind  ast.JoinKind
	On    ast.Expr
	Left  Op
	Right Op
}

// FilterOp keeps bindings where Pred evaluates to Boolean(true).
type FilterOp struct {
	Pred ast.Expr
	In   Op
}

// HavingOp has an identical contract to FilterOp; kept as a distinct
// node so the plan records its position after GroupBy.
type HavingOp struct {
	Pred ast.Expr
	In   Op
}

// GroupByOp partitions bindings by Keys, producing one output binding
// per group with the group key aliases bound plus, if GroupAs is set,
// a nested group of the original bindings (§4.4.3).
type GroupByOp struct {
	Keys    []ast.GroupKey
	GroupAs string
	Partial bool // GROUP PARTIAL BY; reserved per §4.4.3, rejected by eval
	In      Op
}

// OrderByOp sorts bindings by Keys (§4.4.4).
type OrderByOp struct {
	Keys []ast.OrderKey
	In   Op
}

// LimitOffsetOp skips Offset bindings then keeps at most Limit.
type LimitOffsetOp struct {
	Limit  ast.Expr
	Offset ast.Expr
	In     Op
}

// ProjectOp emits a tuple per input binding from Fields/Aliases,
// eliding any field whose expression evaluates to Missing.
type ProjectOp struct {
	Fields  []ast.Expr
	Aliases []string
	Stars   []bool // true where Fields[i] is a `path.*` splat field
	In      Op
}

// ProjectAllOp implements SELECT *. Passthrough is true when the
// input binding already *is* the desired output shape (a single
// non-UNPIVOT FROM source with no AT alias and no grouping) so each
// binding tuple's sole field value can be returned unchanged; when
// false the binding's fields are splatted into one flat tuple (§4.4.6).
type ProjectAllOp struct {
	Passthrough bool
	In          Op
}

// ProjectValueOp implements SELECT VALUE expr.
type ProjectValueOp struct {
	Expr ast.Expr
	In   Op
}

// PivotOp implements PIVOT value AT key FROM ...: one output tuple is
// built by evaluating Key/Value per input binding, keeping only pairs
// whose key evaluates to a String (§4.3/§4.4.6).
type PivotOp struct {
	Key   ast.Expr
	Value ast.Expr
	In    Op
}

// DistinctOp deduplicates its input.
type DistinctOp struct {
	In Op
}

// ExprQueryOp evaluates a standalone expression with no FROM clause.
type ExprQueryOp struct {
	Expr ast.Expr
}

// SetOp combines Left and Right under a bag set operator.
type SetOp struct {
	Kind ast.SetOp
	All  bool
	Left Op
	Right Op
}

// Sink is always the plan's root; it captures the final result.
type Sink struct {
	In      Op
	IsValue bool // true if In ultimately yields a scalar sequence, not tuples
	IsPivot bool // true if In is a PivotOp: the result is one tuple, not a sequence
	Ordered bool // true if output container type must be List, not Bag
}

func (ScanOp) planNode()         {}
func (UnpivotOp) planNode()      {}
func (JoinOp) planNode()         {}
func (FilterOp) planNode()       {}
func (HavingOp) planNode()       {}
func (GroupByOp) planNode()      {}
func (OrderByOp) planNode()      {}
func (LimitOffsetOp) planNode()  {}
func (ProjectOp) planNode()      {}
func (ProjectAllOp) planNode()   {}
func (ProjectValueOp) planNode() {}
func (PivotOp) planNode()        {}
func (DistinctOp) planNode()     {}
func (ExprQueryOp) planNode()    {}
func (SetOp) planNode()          {}
func (Sink) planNode()           {}
