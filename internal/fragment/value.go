// Package fragment implements the lazy composite nodes a schema graph is
// assembled from, and the flattening rules that turn a tree of nodes into a
// single normalized document.
package fragment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindAbsent Kind = iota
	KindScalar
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "absent"
	}
}

// Value is a flattened node: absent, a scalar, an ordered list or an
// ordered map. The zero Value is absent.
type Value struct {
	kind   Kind
	scalar any
	list   []Value
	fields *orderedmap.OrderedMap[string, Value]
}

// Absent is the value of a fragment that has nothing to say. Parents drop it.
func Absent() Value { return Value{} }

func Str(s string) Value { return Value{kind: KindScalar, scalar: s} }
func Int(i int) Value { return Value{kind: KindScalar, scalar: i} }
func Float(f float64) Value { return Value{kind: KindScalar, scalar: f} }
func Bool(b bool) Value { return Value{kind: KindScalar, scalar: b} }
func ListOf(items ...Value) Value {
	return Value{kind: KindList, list: items}.normalize()
}

// NonEmpty returns s as a scalar, or Absent when s is empty.
func NonEmpty(s string) Value {
	if s == "" {
		return Absent()
	}
	return Str(s)
}

// Scalar wraps a Go scalar. Unsupported types yield Absent.
func Scalar(v any) Value {
	switch t := v.(type) {
	case nil:
		return Absent()
	case string:
		return Str(t)
	case bool:
		return Bool(t)
	case int:
		return Int(t)
	case int64:
		return Int(int(t))
	case int32:
		return Int(int(t))
	case float64:
		return Float(t)
	case float32:
		return Float(float64(t))
	case Value:
		return t
	}
	return Absent()
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }
func (v Value) IsMap() bool { return v.kind == KindMap }
func (v Value) IsList() bool { return v.kind == KindList }
func (v Value) IsScalar() bool { return v.kind == KindScalar }
func (v Value) Schema() Value { return v.normalize() }
func (v Value) ScalarAny() any { return v.scalar }

// String renders a scalar with fmt. Lists, maps and absent values render as "".
func (v Value) String() string {
	if v.kind != KindScalar {
		return ""
	}
	if s, ok := v.scalar.(string); ok {
		return s
	}
	return fmt.Sprint(v.scalar)
}

// Len is the number of list items or map entries.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.list)
	case KindMap:
		return v.fields.Len()
	}
	return 0
}

// Get returns the entry stored under key, or Absent.
func (v Value) Get(key string) Value {
	if v.kind != KindMap {
		return Absent()
	}
	val, _ := v.fields.Get(key)
	return val
}

// Has reports whether a map value carries key.
func (v Value) Has(key string) bool {
	if v.kind != KindMap {
		return false
	}
	_, ok := v.fields.Get(key)
	return ok
}

// Index returns the i-th list item, or Absent.
func (v Value) Index(i int) Value {
	if v.kind != KindList || i < 0 || i >= len(v.list) {
		return Absent()
	}
	return v.list[i]
}

// Items returns a copy of the list items.
func (v Value) Items() []Value {
	if v.kind != KindList {
		return nil
	}
	return append([]Value(nil), v.list...)
}

// Keys returns map keys in insertion order.
func (v Value) Keys() []string {
	if v.kind != KindMap {
		return nil
	}
	keys := make([]string, 0, v.fields.Len())
	for pair := v.fields.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// With returns a copy of a map value with key set to val. Setting an
// existing key keeps its position. Non-map receivers are promoted to a map
// holding only key.
func (v Value) With(key string, val Value) Value {
	out := orderedmap.New[string, Value]()
	if v.kind == KindMap {
		for pair := v.fields.Oldest(); pair != nil; pair = pair.Next() {
			out.Set(pair.Key, pair.Value)
		}
	}
	if val.IsAbsent() {
		out.Delete(key)
	} else {
		out.Set(key, val)
	}
	return Value{kind: KindMap, fields: out}
}

// Prepend puts key first. A list receiver keeps its items under their
// index keys after the new entry, the way an array merge would.
func Prepend(v Value, key string, val Value) Value {
	out := orderedmap.New[string, Value]()
	if !val.IsAbsent() {
		out.Set(key, val)
	}
	switch v.kind {
	case KindMap:
		for pair := v.fields.Oldest(); pair != nil; pair = pair.Next() {
			if pair.Key == key {
				continue
			}
			out.Set(pair.Key, pair.Value)
		}
	case KindList:
		for i, item := range v.list {
			out.Set(strconv.Itoa(i), item)
		}
	}
	return Value{kind: KindMap, fields: out}
}

// IsEmpty reports whether v carries nothing worth emitting: absent, an empty
// string, or an empty list or map.
func IsEmpty(v Value) bool {
	switch v.kind {
	case KindAbsent:
		return true
	case KindScalar:
		if v.scalar == nil {
			return true
		}
		s, ok := v.scalar.(string)
		return ok && s == ""
	default:
		return v.Len() == 0
	}
}

// Interface converts v into plain Go values (map[string]any, []any,
// scalars). Map key order is lost.
func (v Value) Interface() any {
	switch v.kind {
	case KindScalar:
		return v.scalar
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Interface()
		}
		return out
	case KindMap:
		out := make(map[string]any, v.fields.Len())
		for pair := v.fields.Oldest(); pair != nil; pair = pair.Next() {
			out[pair.Key] = pair.Value.Interface()
		}
		return out
	}
	return nil
}

// MarshalJSON writes maps in insertion order. Absent values encode as null;
// flattening keeps them out of any emitted document.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case KindAbsent:
		buf.WriteString("null")
	case KindScalar:
		b, err := json.Marshal(v.scalar)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindList:
		buf.WriteByte('[')
		for i, item := range v.list {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMap:
		buf.WriteByte('{')
		first := true
		for pair := v.fields.Oldest(); pair != nil; pair = pair.Next() {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			key, err := json.Marshal(pair.Key)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := pair.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

// normalize re-applies the flattening rules to an already built value.
func (v Value) normalize() Value {
	switch v.kind {
	case KindList:
		out := make([]Value, 0, len(v.list))
		for _, item := range v.list {
			item = item.normalize()
			if item.IsAbsent() {
				continue
			}
			out = append(out, item)
		}
		return Value{kind: KindList, list: out}
	case KindMap:
		b := newBuilder()
		for pair := v.fields.Oldest(); pair != nil; pair = pair.Next() {
			b.add(pair.Key, pair.Value.normalize())
		}
		return b.value()
	}
	return v
}
