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

// Package external adapts value.Value trees to and from external
// wire formats (§6.2): JSON, CBOR and MessagePack via ugorji/go/codec,
// and Hjson as a second, human-authorable reader for the same
// boundary. Grounded on the teacher's util/pack package, which
// similarly fronted a single Encode/Decode pair over a pluggable byte
// codec — generalized here from one GOB-like format to three
// registered codec.Handle kinds plus the Hjson reader.
//
// None of JSON, CBOR or MessagePack has a native PartiQL Missing,
// Bag or offset-aware DateTime, so the adapter carries them as tagged
// objects ($missing and $bag single-key, $date with an $offset flag) rather than relying on
// format-specific extension tags — the same tagging works unchanged
// across all three codec.Handle kinds.
package external

import (
	"bytes"
	"time"

	hjson "github.com/hjson/hjson-go"
	"github.com/ugorji/go/codec"

	"github.com/abcum/partiql/errs"
	"github.com/abcum/partiql/value"
)

// Format selects the wire encoding used by Encode/Decode.
type Format int

const (
	// JSON is plain JSON.
	JSON Format = iota
	// CBOR is a compact binary format.
	CBOR
	// MessagePack is a compact binary format.
	MessagePack
)

const (
	tagMissing = "$missing"
	tagBag     = "$bag"
	tagDate    = "$date"
	tagOffset  = "$offset"
)

// handle returns the codec.Handle for f.
func handle(f Format) codec.Handle {
	switch f {
	case CBOR:
		return &codec.CborHandle{}
	case MessagePack:
		return &codec.MsgpackHandle{}
	default:
		h := &codec.JsonHandle{}
		h.Canonical = true
		return h
	}
}

// Encode marshals v into the wire format f, converting every
// value.Value leaf to its native Go equivalent first (§6.2: the
// adapter owns the boundary, not the evaluator).
func Encode(v value.Value, f Format) ([]byte, error) {
	native := toGo(v)
	var buf bytes.Buffer
	if err := codec.NewEncoder(&buf, handle(f)).Encode(native); err != nil {
		return nil, &errs.IllegalState{Reason: "encode: " + err.Error()}
	}
	return buf.Bytes(), nil
}

// Decode unmarshals src in wire format f into a value.Value tree.
func Decode(src []byte, f Format) (value.Value, error) {
	var native interface{}
	if err := codec.NewDecoderBytes(src, handle(f)).Decode(&native); err != nil {
		return nil, &errs.IllegalState{Reason: "decode: " + err.Error()}
	}
	return fromGo(native), nil
}

// DecodeHjson parses src as Hjson (a relaxed, human-authorable JSON
// superset) into a value.Value tree, so literal environments can be
// written without building Go structs by hand.
func DecodeHjson(src []byte) (value.Value, error) {
	var native interface{}
	if err := hjson.Unmarshal(src, &native); err != nil {
		return nil, &errs.IllegalState{Reason: "hjson: " + err.Error()}
	}
	return fromGo(native), nil
}

// toGo converts a value.Value tree into plain Go values (map, slice,
// string, bool, int64, float64, []byte, time.Time) that codec can
// marshal directly, tagging the constructs none of the wire formats
// can express natively.
func toGo(v value.Value) interface{} {
	switch x := v.(type) {
	case value.Null, nil:
		return nil
	case value.Missing:
		return map[string]interface{}{tagMissing: true}
	case value.Boolean:
		return bool(x)
	case value.Integer:
		return int64(x)
	case value.Real:
		return float64(x)
	case value.Decimal:
		return x.D.String()
	case value.String:
		return string(x)
	case value.Blob:
		return []byte(x)
	case value.DateTime:
		return map[string]interface{}{
			tagDate:   x.T.Format(time.RFC3339Nano),
			tagOffset: x.HasOffset,
		}
	case value.List:
		out := make([]interface{}, len(x))
		for i, e := range x {
			out[i] = toGo(e)
		}
		return out
	case value.Bag:
		items := make([]interface{}, len(x))
		for i, e := range x {
			items[i] = toGo(e)
		}
		return map[string]interface{}{tagBag: items}
	case value.Tuple:
		out := make(map[string]interface{}, len(x))
		for _, p := range x {
			out[p.Key] = toGo(p.Val)
		}
		return out
	default:
		return nil
	}
}

// fromGo converts a plain Go value decoded off the wire back into a
// value.Value tree, recognizing the $missing/$bag/$date tags toGo
// produces.
func fromGo(v interface{}) value.Value {
	switch x := v.(type) {
	case nil:
		return value.Null{}
	case bool:
		return value.Boolean(x)
	case int64:
		return value.Integer(x)
	case int:
		return value.Integer(int64(x))
	case float64:
		return value.Real(x)
	case string:
		return value.String(x)
	case []byte:
		return value.Blob(x)
	case []interface{}:
		out := make(value.List, len(x))
		for i, e := range x {
			out[i] = fromGo(e)
		}
		return out
	case map[string]interface{}:
		return fromGoMap(x)
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(x))
		for k, val := range x {
			if ks, ok := k.(string); ok {
				m[ks] = val
			}
		}
		return fromGoMap(m)
	default:
		return value.Missing{}
	}
}

func fromGoMap(m map[string]interface{}) value.Value {
	if _, ok := m[tagMissing]; ok && len(m) == 1 {
		return value.Missing{}
	}
	if items, ok := m[tagBag]; ok && len(m) == 1 {
		list, _ := items.([]interface{})
		out := make(value.Bag, len(list))
		for i, e := range list {
			out[i] = fromGo(e)
		}
		return out
	}
	if iso, ok := m[tagDate]; ok {
		s, _ := iso.(string)
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return value.Missing{}
		}
		hasOffset, _ := m[tagOffset].(bool)
		return value.DateTime{T: t, HasOffset: hasOffset}
	}
	out := make(value.Tuple, 0, len(m))
	for k, val := range m {
		out = append(out, value.Pair{Key: k, Val: fromGo(val)})
	}
	return out
}
