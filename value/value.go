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

// Package value implements the PartiQL data algebra: scalars, tuples,
// lists and bags, together with their ordering, equality and
// arithmetic contracts.
package value

import (
	"time"

	"github.com/shopspring/decimal"
)

// Value is the tagged union described by the data model. Every
// concrete type below implements it; the set is closed deliberately
// so the evaluator can switch over concrete types instead of paying
// for open dynamic dispatch.
type Value interface {
	isValue()
}

// Null is SQL NULL.
type Null struct{}

// Missing is PartiQL's absent-attribute value.
type Missing struct{}

// Boolean wraps a three-state boolean outcome.
type Boolean bool

// Integer is a 64-bit signed integer.
type Integer int64

// Real is a 64-bit float with PartiQL's total order (NaN sorts least).
type Real float64

// Decimal is an arbitrary-precision fixed value, the widest rung of
// the promotion ladder.
type Decimal struct {
	D decimal.Decimal
}

// String is UTF-8 text.
type String string

// Blob is an opaque byte sequence.
type Blob []byte

// DateTime is a date/time/timestamp with an optional UTC offset.
//
// HasOffset distinguishes a timestamp with a recorded zone from a
// "local" date/time read with no zone information; Go's time.Time
// cannot represent that distinction on its own.
type DateTime struct {
	T         time.Time
	HasOffset bool
}

// List is an ordered, duplicate-permitting sequence of Values.
type List []Value

// Bag is an unordered multiset of Values.
type Bag []Value

// Pair is one (key, value) entry of a Tuple. Keys are not required to
// be unique; Tuple preserves insertion order but compares by multiset
// of pairs (see Equal).
type Pair struct {
	Key string
	Val Value
}

// Tuple is an insertion-ordered sequence of key/value pairs.
type Tuple []Pair

func (Null) isValue()     {}
func (Missing) isValue()  {}
func (Boolean) isValue()  {}
func (Integer) isValue()  {}
func (Real) isValue()     {}
func (Decimal) isValue()  {}
func (String) isValue()   {}
func (Blob) isValue()     {}
func (DateTime) isValue() {}
func (List) isValue()     {}
func (Bag) isValue()      {}
func (Tuple) isValue()    {}

// IsAbsent reports whether v is Null or Missing.
func IsAbsent(v Value) bool {
	switch v.(type) {
	case Null, Missing:
		return true
	}
	return false
}

// IsPresent is the complement of IsAbsent.
func IsPresent(v Value) bool {
	return !IsAbsent(v)
}

// IsSequence reports whether v is a List or a Bag.
func IsSequence(v Value) bool {
	switch v.(type) {
	case List, Bag:
		return true
	}
	return false
}

// NewDecimal builds a Decimal value from a decimal.Decimal.
func NewDecimal(d decimal.Decimal) Decimal {
	return Decimal{D: d}
}

// Get looks up the first pair in the tuple matching name, honoring
// case sensitivity as requested. It returns Missing if no pair
// matches, mirroring §4.4.9's Path navigation contract.
func (t Tuple) Get(name string, caseSensitive bool) Value {
	for _, p := range t {
		if p.Key == name || (!caseSensitive && foldEq(p.Key, name)) {
			return p.Val
		}
	}
	return Missing{}
}

// Set returns a copy of the tuple with name bound to val, appending a
// new pair if name is not already present. Tuple construction follows
// §3.4: operators own the Values they emit, so Set clones the
// backing slice rather than mutating it in place.
func (t Tuple) Set(name string, val Value) Tuple {
	out := make(Tuple, len(t), len(t)+1)
	copy(out, t)
	for i, p := range out {
		if p.Key == name {
			out[i].Val = val
			return out
		}
	}
	return append(out, Pair{Key: name, Val: val})
}

// Keys returns the tuple's field names in insertion order (duplicates
// included).
func (t Tuple) Keys() []string {
	out := make([]string, len(t))
	for i, p := range t {
		out[i] = p.Key
	}
	return out
}
