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

package plan

import (
	"strings"

	"github.com/abcum/partiql/ast"
	"github.com/abcum/partiql/resolve"
)

// Lower builds the plan graph for res, wiring clauses in SQL's
// evaluation order rather than textual order (§4.3).
func Lower(res *resolve.Resolved) *Sink {
	stmt := res.Stmt

	if len(stmt.From) == 0 {
		return &Sink{In: ExprQueryOp{Expr: valueExprOf(stmt)}, IsValue: true}
	}

	var root Op
	for i, item := range stmt.From {
		alias := res.FromAlias[i]
		var node Op
		if item.Kind == ast.FromUnpivot {
			node = UnpivotOp{Expr: item.Expr, As: alias, At: item.AtAlias}
		} else {
			node = ScanOp{Expr: item.Expr, As: alias, At: item.AtAlias}
		}
		if i == 0 {
			root = node
			continue
		}
		root = JoinOp{Kind: item.Join, On: item.On, Left: root, Right: node}
	}

	if stmt.Where != nil {
		root = FilterOp{Pred: stmt.Where, In: root}
	}

	if len(stmt.GroupBy) > 0 {
		root = GroupByOp{Keys: stmt.GroupBy, GroupAs: stmt.GroupAsName, Partial: stmt.GroupPartial, In: root}
	} else if stmtUsesAggregate(stmt) {
		// No explicit GROUP BY, but the SELECT/HAVING/ORDER BY list calls
		// an aggregate: the whole input forms one implicit group (§4.4.3).
		root = GroupByOp{In: root}
	}

	if stmt.Having != nil {
		root = HavingOp{Pred: stmt.Having, In: root}
	}

	if len(stmt.OrderBy) > 0 {
		root = OrderByOp{Keys: stmt.OrderBy, In: root}
	}

	if stmt.Limit != nil || stmt.Offset != nil {
		root = LimitOffsetOp{Limit: stmt.Limit, Offset: stmt.Offset, In: root}
	}

	ordered := len(stmt.OrderBy) > 0

	if stmt.ProjectKind == ast.ProjectPivot {
		root = PivotOp{Key: stmt.PivotAs, Value: stmt.PivotExpr, In: root}
		return &Sink{In: root, IsPivot: true}
	}

	switch stmt.ProjectKind {
	case ast.ProjectValue:
		root = ProjectValueOp{Expr: stmt.ValueExpr, In: root}
	case ast.ProjectAll:
		// Passthrough only when the binding is already shaped like the
		// desired output: exactly one FROM source, no AT ordinal/key
		// field riding along, and no GROUP BY reshaping the binding.
		passthrough := len(stmt.From) == 1 && stmt.From[0].AtAlias == "" &&
			stmt.From[0].Kind != ast.FromUnpivot &&
			len(stmt.GroupBy) == 0 && !stmtUsesAggregate(stmt)
		root = ProjectAllOp{Passthrough: passthrough, In: root}
	default:
		fields := make([]ast.Expr, len(stmt.Fields))
		stars := make([]bool, len(stmt.Fields))
		for i, f := range stmt.Fields {
			fields[i] = f.Expr
			stars[i] = f.Star
		}
		root = ProjectOp{Fields: fields, Aliases: res.FieldAlias, Stars: stars, In: root}
	}

	if stmt.Distinct {
		root = DistinctOp{In: root}
	}

	if stmt.SetOp != ast.SetNone && res.SetRight != nil {
		root = SetOp{Kind: stmt.SetOp, All: stmt.SetAll, Left: root, Right: Lower(res.SetRight).In}
	}

	return &Sink{In: root, IsValue: stmt.ProjectKind == ast.ProjectValue, Ordered: ordered}
}

// valueExprOf supports the degenerate `SELECT VALUE expr` / bare
// expression query form with no FROM clause (§4.3's ExprQuery).
func valueExprOf(stmt *ast.SelectStatement) ast.Expr {
	if stmt.ProjectKind == ast.ProjectValue {
		return stmt.ValueExpr
	}
	if len(stmt.Fields) == 1 {
		return stmt.Fields[0].Expr
	}
	return ast.NullLit{}
}

// stmtUsesAggregate reports whether any SELECT-list, HAVING or ORDER
// BY expression calls an aggregate function.
func stmtUsesAggregate(stmt *ast.SelectStatement) bool {
	for _, f := range stmt.Fields {
		if exprUsesAggregate(f.Expr) {
			return true
		}
	}
	if stmt.ValueExpr != nil && exprUsesAggregate(stmt.ValueExpr) {
		return true
	}
	if stmt.PivotExpr != nil && exprUsesAggregate(stmt.PivotExpr) {
		return true
	}
	if stmt.PivotAs != nil && exprUsesAggregate(stmt.PivotAs) {
		return true
	}
	if stmt.Having != nil && exprUsesAggregate(stmt.Having) {
		return true
	}
	for _, k := range stmt.OrderBy {
		if exprUsesAggregate(k.Expr) {
			return true
		}
	}
	return false
}

func exprUsesAggregate(e ast.Expr) bool {
	switch x := e.(type) {
	case ast.CallExpr:
		switch strings.ToLower(x.Name) {
		case "count", "sum", "avg", "min", "max", "any", "every":
			return true
		}
		for _, a := range x.Args {
			if exprUsesAggregate(a) {
				return true
			}
		}
	case ast.UnaryExpr:
		return exprUsesAggregate(x.X)
	case ast.BinaryExpr:
		return exprUsesAggregate(x.X) || exprUsesAggregate(x.Y)
	case ast.IsExpr:
		return exprUsesAggregate(x.X)
	case ast.BetweenExpr:
		return exprUsesAggregate(x.X) || exprUsesAggregate(x.Lo) || exprUsesAggregate(x.Hi)
	case ast.LikeExpr:
		return exprUsesAggregate(x.X) || exprUsesAggregate(x.Pattern)
	case ast.CaseExpr:
		for _, w := range x.Whens {
			if exprUsesAggregate(w.When) || exprUsesAggregate(w.Then) {
				return true
			}
		}
		if x.Else != nil {
			return exprUsesAggregate(x.Else)
		}
	case ast.CastExpr:
		return exprUsesAggregate(x.X)
	case ast.PathExpr:
		return exprUsesAggregate(x.Base)
	}
	return false
}
