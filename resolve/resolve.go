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

// Package resolve implements PartiQL's non-lexical name resolution
// (§4.3): it walks a parsed ast.SelectStatement and produces a
// KeySchema per query, inferring SELECT-list aliases, recording
// FROM-introduced symbols, and fixing the lookup order (Local vs
// Global) every unqualified identifier should use. Grounded on the
// teacher's db/ executor's "current record" vs "outer" variable
// resolution, generalized to PartiQL's nested-query scoping.
package resolve

import (
	"fmt"

	"github.com/abcum/partiql/ast"
)

// LookupOrder is the ordered preference list a NameRef resolves
// through; AtPrefixed identifiers reverse the default order (§4.3).
type LookupOrder int

const (
	LocalFirst LookupOrder = iota
	GlobalFirst
)

// KeySchema is the resolver's output for one query-or-FROM-let node:
// the set of symbols it introduces to enclosing scopes, and the set
// of names it must resolve.
type KeySchema struct {
	Produce []string
	Consume []NameRef
}

// NameRef is one resolved identifier use-site.
type NameRef struct {
	Symbol string
	Order  LookupOrder
}

// Scope records, for one query level, which FROM-item aliases are
// visible (lateral scoping: a later FROM item sees earlier ones in
// the same clause) and the fresh-alias counter for inferring SELECT
// output names.
type Scope struct {
	Parent  *Scope
	Aliases map[string]bool
	fresh   int
}

func newScope(parent *Scope) *Scope {
	return &Scope{Parent: parent, Aliases: map[string]bool{}}
}

func (s *Scope) nextFresh() string {
	s.fresh++
	return fmt.Sprintf("_%d", s.fresh)
}

// Resolved annotates a SelectStatement with its resolver output: the
// FROM-item aliases (defaulted where the parser left them empty), the
// SELECT-list aliases (inferred where absent), and the KeySchema.
type Resolved struct {
	Stmt       *ast.SelectStatement
	FromAlias  []string // one alias per FromItem, positionally
	FieldAlias []string // one alias per Field, positionally (ProjectTuple only)
	Schema     KeySchema
	SetRight   *Resolved // resolved right-hand side of a set operator
}

// Resolve walks stmt and produces its Resolved form. parent is the
// enclosing scope (nil at the top level); it is threaded through so a
// correlated subquery's Resolve call can see the outer FROM aliases.
func Resolve(stmt *ast.SelectStatement, parent *Scope) (*Resolved, error) {
	scope := newScope(parent)

	fromAlias := make([]string, len(stmt.From))
	for i, item := range stmt.From {
		alias := item.AsAlias
		if alias == "" {
			alias = inferFromAlias(item.Expr, i)
		}
		fromAlias[i] = alias
		scope.Aliases[alias] = true
		if item.AtAlias != "" {
			scope.Aliases[item.AtAlias] = true
		}
	}

	var fieldAlias []string
	var produce []string
	switch stmt.ProjectKind {
	case ast.ProjectTuple:
		fieldAlias = make([]string, len(stmt.Fields))
		for i, f := range stmt.Fields {
			alias := f.Alias
			if alias == "" {
				alias = inferFieldAlias(f.Expr, scope)
			}
			fieldAlias[i] = alias
			produce = append(produce, alias)
		}
	case ast.ProjectValue:
		produce = append(produce, "_val")
	case ast.ProjectAll:
		produce = fromAlias
	case ast.ProjectPivot:
		// PIVOT builds one tuple with data-dependent keys; it introduces
		// no statically-known output symbols.
	}

	res := &Resolved{
		Stmt:       stmt,
		FromAlias:  fromAlias,
		FieldAlias: fieldAlias,
		Schema:     KeySchema{Produce: produce},
	}

	if stmt.SetRight != nil {
		right, err := Resolve(stmt.SetRight, parent)
		if err != nil {
			return nil, err
		}
		res.SetRight = right
	}

	return res, nil
}

// inferFromAlias derives a default alias for an un-aliased FROM item,
// following PartiQL's rule of using the expression's trailing
// identifier (e.g. `FROM a.b.c` defaults to alias `c`).
func inferFromAlias(e ast.Expr, ordinal int) string {
	switch x := e.(type) {
	case ast.Ident:
		return x.Name
	case ast.PathExpr:
		for i := len(x.Steps) - 1; i >= 0; i-- {
			if x.Steps[i].Kind == ast.StepKey {
				if lit, ok := x.Steps[i].Key.(ast.StringLit); ok {
					return lit.Val
				}
			}
		}
	}
	return fmt.Sprintf("_%d", ordinal+1)
}

// inferFieldAlias derives a default SELECT-list column name: the bare
// identifier, or the final path segment, or a fresh `_N` name for
// anything else (§4.3).
func inferFieldAlias(e ast.Expr, scope *Scope) string {
	switch x := e.(type) {
	case ast.Ident:
		return x.Name
	case ast.PathExpr:
		for i := len(x.Steps) - 1; i >= 0; i-- {
			if x.Steps[i].Kind == ast.StepKey {
				if lit, ok := x.Steps[i].Key.(ast.StringLit); ok {
					return lit.Val
				}
			}
		}
	}
	return scope.nextFresh()
}

// Order resolves the lookup order for an ast.Ident use-site: an
// AtPrefixed identifier inverts the default Local-then-Global order
// into Global-then-Local (§4.3).
func Order(id ast.Ident) LookupOrder {
	if id.AtPrefixed {
		return GlobalFirst
	}
	return LocalFirst
}
