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
	"golang.org/x/text/cases"
)

var folder = cases.Fold()

// foldEq reports whether a and b are equal under Unicode case
// folding. Used for case-insensitive environment and tuple-field
// lookup (§6.1: "case-insensitive lookup returns the first
// insertion-order match on case-folded equality").
func foldEq(a, b string) bool {
	if a == b {
		return true
	}
	return folder.String(a) == folder.String(b)
}

// Fold returns the Unicode case-fold normal form of s, using the root
// locale. Exported so the environment (Env) can precompute fold keys
// once rather than per lookup.
func Fold(s string) string {
	return folder.String(s)
}
