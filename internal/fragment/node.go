package fragment

import (
	"strconv"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Node is anything that flattens into a Value. Composites cache their
// result; calling Schema twice returns the same value.
type Node interface {
	Schema() Value
}

// Map is a raw, ordered key to Node structure.
type Map struct {
	fields *orderedmap.OrderedMap[string, Node]
}

// NewMap returns an empty raw map.
func NewMap() *Map {
	return &Map{fields: orderedmap.New[string, Node]()}
}

// Set stores n under key and returns m for chaining.
func (m *Map) Set(key string, n Node) *Map {
	if n == nil {
		n = Absent()
	}
	m.fields.Set(key, n)
	return m
}

// Get returns the raw node stored under key.
func (m *Map) Get(key string) (Node, bool) {
	return m.fields.Get(key)
}

func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return m.fields.Len()
}

func (m *Map) Schema() Value { return Flatten(m) }

// List is a raw ordered list of nodes.
type List []Node

func (l List) Schema() Value { return Flatten(l) }

// Ref is the {"@id": id} reference used to point at another graph node.
// An empty id yields Absent.
func Ref(id string) Node {
	if id == "" {
		return Absent()
	}
	return NewMap().Set("@id", Str(id))
}

// Flatten resolves n into a Value:
//   - absent children are dropped, never kept as placeholders
//   - a map whose surviving keys are all indexes becomes a list, in
//     insertion order
//   - any other map keeps every surviving key
func Flatten(n Node) Value {
	switch t := n.(type) {
	case nil:
		return Absent()
	case Value:
		return t.normalize()
	case *Map:
		if t == nil {
			return Absent()
		}
		b := newBuilder()
		for pair := t.fields.Oldest(); pair != nil; pair = pair.Next() {
			b.add(pair.Key, Flatten(pair.Value))
		}
		return b.value()
	case List:
		out := make([]Value, 0, len(t))
		for _, child := range t {
			v := Flatten(child)
			if v.IsAbsent() {
				continue
			}
			out = append(out, v)
		}
		return Value{kind: KindList, list: out}
	default:
		return t.Schema()
	}
}

type builder struct {
	fields  *orderedmap.OrderedMap[string, Value]
	indexed bool
}

func newBuilder() *builder {
	return &builder{fields: orderedmap.New[string, Value](), indexed: true}
}

func (b *builder) add(key string, v Value) {
	if v.IsAbsent() {
		return
	}
	if !isIndex(key) {
		b.indexed = false
	}
	b.fields.Set(key, v)
}

func (b *builder) value() Value {
	if !b.indexed {
		return Value{kind: KindMap, fields: b.fields}
	}
	list := make([]Value, 0, b.fields.Len())
	for pair := b.fields.Oldest(); pair != nil; pair = pair.Next() {
		list = append(list, pair.Value)
	}
	return Value{kind: KindList, list: list}
}

func isIndex(key string) bool {
	n, err := strconv.Atoi(key)
	return err == nil && n >= 0 && strconv.Itoa(n) == key
}

// Lazy memoizes a composite's flattened value for the composite's lifetime.
// Embed it and implement Schema as
//
//	func (c *T) Schema() fragment.Value { return c.Memo(c.raw) }
type Lazy struct {
	once  sync.Once
	value Value
}

// Memo flattens raw() on the first call and returns the cached value after.
func (l *Lazy) Memo(raw func() Node) Value {
	l.once.Do(func() {
		l.value = Flatten(raw())
	})
	return l.value
}

// Composite is an ad-hoc lazy node built from a function.
type Composite struct {
	Lazy
	raw func() Node
}

// Func wraps raw as a memoized node.
func Func(raw func() Node) *Composite {
	return &Composite{raw: raw}
}

func (c *Composite) Schema() Value { return c.Memo(c.raw) }
