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

package ast

// Query is the top-level parse result: a single SELECT-FROM-WHERE
// query (§1 scopes this module to the read path; DDL/DML statements
// are a Non-goal).
type Query struct {
	Stmt *SelectStatement
}

// FromKind distinguishes a collection scan from an UNPIVOT of a tuple.
type FromKind int

const (
	FromScan FromKind = iota
	FromUnpivot
)

// JoinKind enumerates the supported join forms; RIGHT and FULL pass
// through planning unchanged and are evaluated as their symmetric
// extension by the eval package (see eval/join.go).
type JoinKind int

const (
	JoinInner JoinKind = iota
	JoinLeft
	JoinRight
	JoinFull
	JoinCross
)

// FromItem is one element of a FROM clause: either the first source,
// or a subsequent item joined onto the accumulated source.
type FromItem struct {
	Kind FromKind
	Expr Expr

	AsAlias string // AS binding; empty if absent
	AtAlias string // AT binding (UNPIVOT's key / Scan's ordinal); empty if absent

	Join    JoinKind
	IsFirst bool // true for the first FROM item; Join/On are unused then
	On      Expr // join predicate; nil for CROSS JOIN
}

// LetBinding is one `LET alias = expr` clause entry. The parser
// produces no LetBinding values (parseLetClause always returns an
// empty list) and plan.Lower does not read SelectStatement.Let, so
// LET bindings are never evaluated.
type LetBinding struct {
	Alias string
	Expr  Expr
}

// Field is one SELECT-list entry.
type Field struct {
	Expr  Expr
	Alias string // explicit AS alias; empty if the planner must infer one
	Star  bool   // true for `expr.*` projection
}

// ProjectKind distinguishes the three projection forms (§4.3/§4.4.6).
type ProjectKind int

const (
	ProjectTuple ProjectKind = iota // SELECT a, b, ...
	ProjectValue                    // SELECT VALUE expr
	ProjectAll                      // SELECT *
	ProjectPivot                    // PIVOT value AT key FROM ...
)

// GroupKey is one GROUP BY key expression, optionally aliased for
// reference from SELECT/HAVING/ORDER BY.
type GroupKey struct {
	Expr  Expr
	Alias string
}

// OrderDir and OrderNulls mirror comp.Direction/NullsPlacement at the
// syntax level so the parser doesn't need to import comp.
type OrderDir int

const (
	OrderAsc OrderDir = iota
	OrderDesc
)

type OrderNulls int

const (
	OrderNullsDefault OrderNulls = iota
	OrderNullsFirst
	OrderNullsLast
)

// OrderKey is one ORDER BY key.
type OrderKey struct {
	Expr  Expr
	Dir   OrderDir
	Nulls OrderNulls
}

// SetOp enumerates the bag set operators usable between two SELECTs
// (§4.3's OuterUnion/Intersect/Except operators).
type SetOp int

const (
	SetNone SetOp = iota
	SetUnion
	SetIntersect
	SetExcept
)

// SelectStatement is the full AST for one SELECT query, covering every
// clause named in §4.3's operator inventory.
type SelectStatement struct {
	ProjectKind ProjectKind
	Fields      []Field // for ProjectTuple
	ValueExpr   Expr    // for ProjectValue
	PivotExpr   Expr    // for PIVOT; nil otherwise
	PivotAs     Expr

	From []FromItem
	Let  []LetBinding
	Where Expr

	GroupBy      []GroupKey
	GroupAsName  string // GROUP AS binding; empty if absent
	GroupPartial bool   // GROUP PARTIAL BY; reserved, not implemented by eval
	Having       Expr

	OrderBy []OrderKey

	Limit  Expr
	Offset Expr

	Distinct bool

	SetOp    SetOp
	SetRight *SelectStatement // right-hand operand of a set operator; nil otherwise
	SetAll   bool             // UNION ALL vs UNION (dedup)
}
