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

package lex

import (
	"fmt"
	"sort"
)

// OffsetTracker is the sidecar structure from §4.1 that records the
// byte offset of every line start, and resolves any byte offset to a
// (line, column) position in O(log n) via binary search.
type OffsetTracker struct {
	lineStarts []int // lineStarts[i] = byte offset of the first byte of line i+1
	srcLen     int
}

// NewOffsetTracker creates a tracker for a source of the given byte
// length; line 1 always starts at offset 0.
func NewOffsetTracker(srcLen int) *OffsetTracker {
	return &OffsetTracker{lineStarts: []int{0}, srcLen: srcLen}
}

// RecordNewline must be called with the byte offset immediately after
// each '\n' encountered while scanning, in increasing order.
func (t *OffsetTracker) RecordNewline(offsetAfterNewline int) {
	t.lineStarts = append(t.lineStarts, offsetAfterNewline)
}

// Position resolves a byte offset to its 1-based (line, column).
// Offsets past EOF or negative are errors, not panics.
func (t *OffsetTracker) Position(offset int) (line, col int, err error) {
	if offset < 0 || offset > t.srcLen {
		return 0, 0, fmt.Errorf("offset %d out of range [0,%d]", offset, t.srcLen)
	}
	// sort.Search finds the first lineStarts[i] > offset; the line
	// containing offset is the one just before that.
	i := sort.Search(len(t.lineStarts), func(i int) bool {
		return t.lineStarts[i] > offset
	})
	line = i // lineStarts[0] is line 1, so index i-1 -> line i
	col = offset - t.lineStarts[i-1] + 1
	return line, col, nil
}
