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

package comp

import "github.com/abcum/partiql/value"

// Direction is ASC or DESC for one ORDER BY key.
type Direction int

const (
	Asc Direction = iota
	Desc
)

// NullsPlacement overrides the default placement of absent values for
// one ORDER BY key.
type NullsPlacement int

const (
	// NullsDefault leaves absent values at their natural rank (least).
	NullsDefault NullsPlacement = iota
	NullsFirst
	NullsLast
)

// Key is one ORDER BY sort specification already reduced to the two
// operand Values being compared.
type Key struct {
	Dir    Direction
	Nulls  NullsPlacement
	Collar *Collator
}

// CompareKey compares a and b for a single sort key, applying the
// NULLS FIRST/LAST override and the ASC/DESC flip on top of the base
// total order (§3.3).
func CompareKey(a, b value.Value, k Key) int {

	aAbs, bAbs := value.IsAbsent(a), value.IsAbsent(b)

	if k.Nulls != NullsDefault && (aAbs || bAbs) {
		switch {
		case aAbs && bAbs:
			return 0
		case k.Nulls == NullsFirst:
			if aAbs {
				return -1
			}
			return 1
		default: // NullsLast
			if aAbs {
				return 1
			}
			return -1
		}
	}

	c := Compare(a, b, k.Collar)
	if k.Dir == Desc {
		return -c
	}
	return c
}
