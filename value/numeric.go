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

import (
	"math"

	"github.com/shopspring/decimal"
)

// rung identifies a position on the Int -> Real -> Decimal promotion
// ladder (§9 "Number promotion").
type rung int

const (
	rungInt rung = iota
	rungReal
	rungDecimal
)

func rungOf(v Value) (rung, bool) {
	switch v.(type) {
	case Integer:
		return rungInt, true
	case Real:
		return rungReal, true
	case Decimal:
		return rungDecimal, true
	}
	return 0, false
}

// promote raises v to the target rung. Promoting a non-finite Real to
// Decimal degrades to Missing (§9), since Decimal cannot represent
// NaN or infinities.
func promote(v Value, to rung) Value {
	switch v := v.(type) {
	case Integer:
		switch to {
		case rungInt:
			return v
		case rungReal:
			return Real(float64(v))
		case rungDecimal:
			return Decimal{D: decimal.NewFromInt(int64(v))}
		}
	case Real:
		switch to {
		case rungReal:
			return v
		case rungDecimal:
			f := float64(v)
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return Missing{}
			}
			return Decimal{D: decimal.NewFromFloat(f)}
		}
	case Decimal:
		if to == rungDecimal {
			return v
		}
	}
	return Missing{}
}

// alignNumeric promotes a and b to their common (wider) rung. It
// assumes both operands are already known numeric.
func alignNumeric(a, b Value) (Value, Value) {
	ra, _ := rungOf(a)
	rb, _ := rungOf(b)
	top := ra
	if rb > top {
		top = rb
	}
	return promote(a, top), promote(b, top)
}

// numCompare compares two already-numeric values after promotion to
// their common rung. NaN reals are handled by the caller (Compare);
// this helper is only used where NaN cannot occur (Equal's kernel
// treats NaN specially via Go's own != semantics, matching the
// original's float equality).
// CompareNumbers compares two numeric Values after promoting both to
// their common rung. Callers handling NaN/Infinity placement (comp
// package) must special-case those before calling this; it assumes
// finite inputs once both sides are Decimal (Decimal cannot hold
// non-finite values in the first place).
func CompareNumbers(a, b Value) int {
	return numCompare(a, b)
}

func numCompare(a, b Value) int {
	pa, pb := alignNumeric(a, b)
	switch x := pa.(type) {
	case Integer:
		y := pb.(Integer)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		default:
			return 0
		}
	case Real:
		y := pb.(Real)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		default:
			return 0
		}
	case Decimal:
		y := pb.(Decimal)
		return x.D.Cmp(y.D)
	}
	return 0
}

func numAdd(a, b Value) Value {
	pa, pb := alignNumeric(a, b)
	if _, ok := pa.(Missing); ok {
		return Missing{}
	}
	if _, ok := pb.(Missing); ok {
		return Missing{}
	}
	switch x := pa.(type) {
	case Integer:
		return x + pb.(Integer)
	case Real:
		return x + pb.(Real)
	case Decimal:
		return Decimal{D: x.D.Add(pb.(Decimal).D)}
	}
	return Missing{}
}

func numSub(a, b Value) Value {
	pa, pb := alignNumeric(a, b)
	if _, ok := pa.(Missing); ok {
		return Missing{}
	}
	if _, ok := pb.(Missing); ok {
		return Missing{}
	}
	switch x := pa.(type) {
	case Integer:
		return x - pb.(Integer)
	case Real:
		return x - pb.(Real)
	case Decimal:
		return Decimal{D: x.D.Sub(pb.(Decimal).D)}
	}
	return Missing{}
}

func numMul(a, b Value) Value {
	pa, pb := alignNumeric(a, b)
	if _, ok := pa.(Missing); ok {
		return Missing{}
	}
	if _, ok := pb.(Missing); ok {
		return Missing{}
	}
	switch x := pa.(type) {
	case Integer:
		return x * pb.(Integer)
	case Real:
		return x * pb.(Real)
	case Decimal:
		return Decimal{D: x.D.Mul(pb.(Decimal).D)}
	}
	return Missing{}
}

func numDiv(a, b Value) Value {
	pa, pb := alignNumeric(a, b)
	if _, ok := pa.(Missing); ok {
		return Missing{}
	}
	if _, ok := pb.(Missing); ok {
		return Missing{}
	}
	switch x := pa.(type) {
	case Integer:
		y := pb.(Integer)
		if y == 0 {
			return Missing{}
		}
		if x%y == 0 {
			return x / y
		}
		return Real(float64(x) / float64(y))
	case Real:
		return x / pb.(Real)
	case Decimal:
		y := pb.(Decimal)
		if y.D.IsZero() {
			return Missing{}
		}
		return Decimal{D: x.D.Div(y.D)}
	}
	return Missing{}
}

func numMod(a, b Value) Value {
	pa, pb := alignNumeric(a, b)
	if _, ok := pa.(Missing); ok {
		return Missing{}
	}
	if _, ok := pb.(Missing); ok {
		return Missing{}
	}
	switch x := pa.(type) {
	case Integer:
		y := pb.(Integer)
		if y == 0 {
			return Missing{}
		}
		return x % y
	case Real:
		y := pb.(Real)
		return Real(math.Mod(float64(x), float64(y)))
	case Decimal:
		y := pb.(Decimal)
		if y.D.IsZero() {
			return Missing{}
		}
		return Decimal{D: x.D.Mod(y.D)}
	}
	return Missing{}
}

func numNeg(a Value) Value {
	switch x := a.(type) {
	case Integer:
		return -x
	case Real:
		return -x
	case Decimal:
		return Decimal{D: x.D.Neg()}
	}
	return Missing{}
}

// Add applies the binary `+` operator with MISSING/NULL propagation
// and numeric promotion (§4.4.9).
func Add(a, b Value) Value { return arith(a, b, numAdd) }

// Sub applies the binary `-` operator.
func Sub(a, b Value) Value { return arith(a, b, numSub) }

// Mul applies the binary `*` operator.
func Mul(a, b Value) Value { return arith(a, b, numMul) }

// Div applies the binary `/` operator. Integer division that is not
// exact widens to Real, matching common PartiQL implementations'
// pragmatic treatment (division is the one operator the spec does not
// pin to integer truncation).
func Div(a, b Value) Value { return arith(a, b, numDiv) }

// Mod applies the MOD() built-in / `%` operator.
func Mod(a, b Value) Value { return arith(a, b, numMod) }

func arith(a, b Value, op func(Value, Value) Value) Value {
	if _, ok := a.(Missing); ok {
		return Missing{}
	}
	if _, ok := b.(Missing); ok {
		return Missing{}
	}
	if _, ok := a.(Null); ok {
		return Null{}
	}
	if _, ok := b.(Null); ok {
		return Null{}
	}
	if !isNumeric(a) || !isNumeric(b) {
		return Missing{}
	}
	return op(a, b)
}

// Neg applies unary `-`.
func Neg(a Value) Value {
	if _, ok := a.(Missing); ok {
		return Missing{}
	}
	if _, ok := a.(Null); ok {
		return Null{}
	}
	if !isNumeric(a) {
		return Missing{}
	}
	return numNeg(a)
}

// Pos applies unary `+`.
func Pos(a Value) Value {
	if _, ok := a.(Missing); ok {
		return Missing{}
	}
	if _, ok := a.(Null); ok {
		return Null{}
	}
	if !isNumeric(a) {
		return Missing{}
	}
	return a
}
