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
	"fmt"
	"strconv"
	"strings"
)

// String renders v using PartiQL notation: "<<...>>" for bags,
// "[...]" for lists, "{...}" for tuples, "'...'" for strings, the
// bare literal for everything else. Grounded on the notation used by
// the original implementation's pretty-printer.
func (v Null) String() string    { return "NULL" }
func (v Missing) String() string { return "MISSING" }

func (v Boolean) String() string { return strconv.FormatBool(bool(v)) }
func (v Integer) String() string { return strconv.FormatInt(int64(v), 10) }
func (v Real) String() string    { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v Decimal) String() string { return v.D.String() }
func (v String) String() string  { return "'" + strings.ReplaceAll(string(v), "'", "''") + "'" }
func (v Blob) String() string    { return fmt.Sprintf("%x", []byte(v)) }

func (v DateTime) String() string {
	if v.HasOffset {
		return v.T.Format("2006-01-02T15:04:05.999999999Z07:00")
	}
	return v.T.Format("2006-01-02T15:04:05.999999999")
}

func (v List) String() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = Stringify(e)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (v Bag) String() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = Stringify(e)
	}
	return "<<" + strings.Join(parts, ", ") + ">>"
}

func (v Tuple) String() string {
	parts := make([]string, len(v))
	for i, p := range v {
		parts[i] = "'" + p.Key + "': " + Stringify(p.Val)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// stringer is implemented by every concrete Value type above.
type stringer interface {
	String() string
}

// Stringify renders any Value via its concrete String() method.
func Stringify(v Value) string {
	if s, ok := v.(stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", v)
}
