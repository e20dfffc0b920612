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

package value

// Env is the binding environment (§6.1): a map from name to Value,
// read-only during evaluation (§5). Entries remember their original
// spelling so case-insensitive lookup can return it.
type Env struct {
	parent *Env
	order  []string
	vals   map[string]Value
	fold   map[string]string // fold(name) -> first-inserted original spelling
}

// NewEnv returns an empty binding environment.
func NewEnv() *Env {
	return &Env{vals: map[string]Value{}, fold: map[string]string{}}
}

// Bind inserts or overwrites name in the environment.
func (e *Env) Bind(name string, v Value) *Env {
	if _, exists := e.vals[name]; !exists {
		e.order = append(e.order, name)
		if _, ok := e.fold[Fold(name)]; !ok {
			e.fold[Fold(name)] = name
		}
	}
	e.vals[name] = v
	return e
}

// Get performs a name lookup. Case-sensitive lookup is a direct map
// hit; case-insensitive lookup returns the first insertion-order
// match on case-folded equality (§6.1).
func (e *Env) Get(name string, caseSensitive bool) (Value, bool) {
	if caseSensitive {
		if v, ok := e.vals[name]; ok {
			return v, true
		}
	} else if orig, ok := e.fold[Fold(name)]; ok {
		return e.vals[orig], true
	}
	if e.parent != nil {
		return e.parent.Get(name, caseSensitive)
	}
	return nil, false
}

// Child returns a new Env that layers additional bindings on top of
// e without mutating it; lookups miss on e fall through to parent.
func (e *Env) Child() *Env {
	c := NewEnv()
	c.parent = e
	return c
}

// ExtendTuple returns a new Env with every field of t bound, layered
// over e. Used to promote a binding tuple to a full evaluation
// environment (§4.4.7 subqueries, VarRef lookup).
func (e *Env) ExtendTuple(t Tuple) *Env {
	c := e.Child()
	for _, p := range t {
		c.Bind(p.Key, p.Val)
	}
	return c
}

// the parent chain is consulted after the local map misses.
