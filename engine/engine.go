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

// Package engine wires the four staged entry points — parse, resolve,
// lower, evaluate — behind one Engine value, with a compiled-plan
// cache in front of the parse/resolve/lower pipeline. Grounded on the
// teacher's db package, which similarly fronted its KV engine with a
// single entry-point struct carrying shared config.
package engine

import (
	"github.com/dgraph-io/ristretto"
	"github.com/rs/xid"

	"github.com/abcum/partiql/comp"
	"github.com/abcum/partiql/eval"
	"github.com/abcum/partiql/log"
	"github.com/abcum/partiql/parser"
	"github.com/abcum/partiql/plan"
	"github.com/abcum/partiql/resolve"
	"github.com/abcum/partiql/value"
)

// Engine holds the compiled-plan cache and evaluation options shared
// by every query run through it.
type Engine struct {
	cache *ristretto.Cache
	opts  eval.Options
}

// Option configures a new Engine.
type Option func(*Engine)

// WithMode selects strict or permissive error handling (§4.4).
func WithMode(m eval.Mode) Option {
	return func(e *Engine) { e.opts.Mode = m }
}

// WithLocale selects the collation locale used for string comparisons
// and ORDER BY (§4.4.4).
func WithLocale(tag string) Option {
	return func(e *Engine) { e.opts.Collator = comp.NewCollator(tag) }
}

// WithCacheSize overrides the plan cache's counter/cost budget.
func WithCacheSize(maxCost int64) Option {
	return func(e *Engine) {
		c, err := ristretto.NewCache(&ristretto.Config{
			NumCounters: maxCost * 10,
			MaxCost:     maxCost,
			BufferItems: 64,
		})
		if err != nil {
			log.Warn("plan cache disabled: ", err)
			return
		}
		e.cache = c
	}
}

// New builds an Engine with the teacher-grounded defaults: permissive
// mode, root locale, and a 1000-plan cache.
func New(opts ...Option) *Engine {
	e := &Engine{opts: eval.DefaultOptions()}
	WithCacheSize(1000)(e)
	for _, o := range opts {
		o(e)
	}
	return e
}

// compiled is what the plan cache stores: a lowered plan ready to run
// against any binding environment.
type compiled struct {
	sink *plan.Sink
}

// Compile runs parse -> resolve -> lower, reusing a cached plan for
// identical source text when the cache is enabled.
func (e *Engine) Compile(src string) (*plan.Sink, error) {
	if e.cache != nil {
		if v, ok := e.cache.Get(src); ok {
			return v.(*compiled).sink, nil
		}
	}

	q, err := parser.Parse(src)
	if err != nil {
		return nil, err
	}
	res, err := resolve.Resolve(q.Stmt, nil)
	if err != nil {
		return nil, err
	}
	sink := plan.Lower(res)

	if e.cache != nil {
		e.cache.Set(src, &compiled{sink: sink}, 1)
		// Set is buffered; Wait makes the plan visible to the next Get.
		e.cache.Wait()
	}
	return sink, nil
}

// Run compiles and evaluates src against global, returning the
// query's result value. Every run is tagged with a correlation ID for
// structured logging, grounded on the teacher's use of a generated
// request ID to correlate log lines across a query's lifecycle.
func (e *Engine) Run(src string, global *value.Env) (value.Value, error) {
	id := xid.New().String()
	logger := log.WithFields(map[string]interface{}{"query_id": id})
	logger.Debug("compiling query")

	sink, err := e.Compile(src)
	if err != nil {
		logger.Warn("compile failed: ", err)
		return nil, err
	}

	logger.Debug("evaluating query")
	v, err := eval.Eval(sink, global, e.opts)
	if err != nil {
		logger.Warn("evaluation failed: ", err)
		return nil, err
	}
	return v, nil
}
