// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ValueKind identifies which variant a Value holds.
type ValueKind uint8

const (
	// ValueNull is the zero Value.
	ValueNull ValueKind = iota

	// ValueString holds a string.
	ValueString

	// ValueInt holds a 64-bit signed integer.
	ValueInt

	// ValueFloat holds a 64-bit float.
	ValueFloat

	// ValueList holds an ordered list of values.
	ValueList

	// ValueMap holds a nested attribute map.
	ValueMap
)

var valueKindNames = map[ValueKind]string{
	ValueNull:   "null",
	ValueString: "string",
	ValueInt:    "int",
	ValueFloat:  "float",
	ValueList:   "list",
	ValueMap:    "map",
}

// String returns the string representation of the ValueKind.
func (k ValueKind) String() string {
	if name, ok := valueKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Value is a tagged variant used for node and edge attributes.
//
// The zero Value is null. Values are immutable from the outside: list and map
// variants are returned by the accessors as the stored slice/map, so callers
// that need to extend a list should use Append, which returns a new Value.
type Value struct {
	kind ValueKind
	s    string
	i    int64
	f    float64
	list []Value
	m    Attrs
}

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: ValueString, s: s} }

// IntValue wraps an integer.
func IntValue(i int64) Value { return Value{kind: ValueInt, i: i} }

// FloatValue wraps a float.
func FloatValue(f float64) Value { return Value{kind: ValueFloat, f: f} }

// ListValue wraps a list of values.
func ListValue(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: ValueList, list: items}
}

// StringsValue wraps a list of strings.
func StringsValue(items ...string) Value {
	list := make([]Value, len(items))
	for i, s := range items {
		list[i] = StringValue(s)
	}
	return Value{kind: ValueList, list: list}
}

// MapValue wraps a nested attribute map.
func MapValue(m Attrs) Value {
	if m == nil {
		m = Attrs{}
	}
	return Value{kind: ValueMap, m: m}
}

// Kind returns the variant held by v.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether v is the zero Value.
func (v Value) IsNull() bool { return v.kind == ValueNull }

// AsString returns the string and true if v holds a string.
func (v Value) AsString() (string, bool) { return v.s, v.kind == ValueString }

// AsInt returns the integer and true if v holds an integer.
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == ValueInt }

// AsFloat returns the float and true if v holds a float or an integer.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case ValueFloat:
		return v.f, true
	case ValueInt:
		return float64(v.i), true
	default:
		return 0, false
	}
}

// AsList returns the list and true if v holds a list.
func (v Value) AsList() ([]Value, bool) { return v.list, v.kind == ValueList }

// AsMap returns the nested map and true if v holds a map.
func (v Value) AsMap() (Attrs, bool) { return v.m, v.kind == ValueMap }

// Strings returns the string items of a list value, skipping non-string items.
// A string value is returned as a one-element slice.
func (v Value) Strings() []string {
	switch v.kind {
	case ValueString:
		return []string{v.s}
	case ValueList:
		out := make([]string, 0, len(v.list))
		for _, item := range v.list {
			if s, ok := item.AsString(); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Integer interprets v as an integer.
//
// Description:
//
//	Accepts integer values, floats with no fractional part, and strings
//	holding a base-10 integer (surrounding whitespace is ignored). Loaders
//	that read delimited files store weights as strings, so both forms must
//	be accepted.
//
// Outputs:
//
//	int64 - The integer value.
//	bool - False if v cannot be read as an integer.
func (v Value) Integer() (int64, bool) {
	switch v.kind {
	case ValueInt:
		return v.i, true
	case ValueFloat:
		if v.f == math.Trunc(v.f) && !math.IsInf(v.f, 0) {
			return int64(v.f), true
		}
		return 0, false
	case ValueString:
		n, err := strconv.ParseInt(strings.TrimSpace(v.s), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Append returns a list value with items appended. A null value is treated as
// an empty list and a scalar value becomes the first element.
func (v Value) Append(items ...Value) Value {
	var base []Value
	switch v.kind {
	case ValueNull:
	case ValueList:
		base = make([]Value, len(v.list), len(v.list)+len(items))
		copy(base, v.list)
	default:
		base = []Value{v}
	}
	return ListValue(append(base, items...)...)
}

// Equal reports whether v and other hold the same variant and contents.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case ValueNull:
		return true
	case ValueString:
		return v.s == other.s
	case ValueInt:
		return v.i == other.i
	case ValueFloat:
		return v.f == other.f
	case ValueList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	case ValueMap:
		return v.m.Equal(other.m)
	}
	return false
}

// String formats v for display.
func (v Value) String() string {
	switch v.kind {
	case ValueString:
		return v.s
	case ValueInt:
		return strconv.FormatInt(v.i, 10)
	case ValueFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case ValueList:
		parts := make([]string, len(v.list))
		for i, item := range v.list {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, " ") + "]"
	case ValueMap:
		keys := v.m.Keys()
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ":" + v.m[k].String()
		}
		return "{" + strings.Join(parts, " ") + "}"
	default:
		return "<null>"
	}
}

// jsonValue is the wire form of a Value. Exactly one field is set.
type jsonValue struct {
	S *string  `json:"s,omitempty"`
	I *int64   `json:"i,omitempty"`
	F *float64 `json:"f,omitempty"`
	L *[]Value `json:"l,omitempty"`
	M *Attrs   `json:"m,omitempty"`
}

// MarshalJSON encodes v with an explicit variant tag so that integers and
// floats survive a round trip.
func (v Value) MarshalJSON() ([]byte, error) {
	var w jsonValue
	switch v.kind {
	case ValueNull:
		return []byte("null"), nil
	case ValueString:
		w.S = &v.s
	case ValueInt:
		w.I = &v.i
	case ValueFloat:
		w.F = &v.f
	case ValueList:
		list := v.list
		w.L = &list
	case ValueMap:
		m := v.m
		w.M = &m
	default:
		return nil, fmt.Errorf("marshal value: unknown kind %d", v.kind)
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Value{}
		return nil
	}
	var w jsonValue
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("unmarshal value: %w", err)
	}
	switch {
	case w.S != nil:
		*v = StringValue(*w.S)
	case w.I != nil:
		*v = IntValue(*w.I)
	case w.F != nil:
		*v = FloatValue(*w.F)
	case w.L != nil:
		*v = ListValue(*w.L...)
	case w.M != nil:
		*v = MapValue(*w.M)
	default:
		*v = Value{}
	}
	return nil
}

// Attrs is a named attribute map attached to nodes and edges.
//
// Attrs is a reference type: the map returned by the graph is the one stored
// in it.
type Attrs map[string]Value

// GetString returns the string stored under key, or "" if absent or not a
// string.
func (a Attrs) GetString(key string) string {
	s, _ := a[key].AsString()
	return s
}

// SetString stores a string under key.
func (a Attrs) SetString(key, value string) {
	a[key] = StringValue(value)
}

// Keys returns the attribute names in sorted order.
func (a Attrs) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports whether both maps hold the same keys with equal values.
func (a Attrs) Equal(other Attrs) bool {
	if len(a) != len(other) {
		return false
	}
	for k, v := range a {
		ov, ok := other[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}
