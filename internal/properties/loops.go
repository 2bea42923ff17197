package properties

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/AaronLay10/schemagraph/internal/fragment"
)

// LoopHelper expands a definition once per repeated item.
type LoopHelper interface {
	Resolve(def *Definition) fragment.Value
}

// LoopFactory creates a helper for the argument of a loop id ("faq" in
// "meta:faq"). It reports false when the data source is unavailable.
type LoopFactory func(arg string, r *Resolver, scope Scope) (LoopHelper, bool)

// Loops maps loop kinds to factories. A loop id is "kind:arg" or a bare
// kind.
type Loops struct {
	factories map[string]LoopFactory
}

// NewLoops returns a registry holding the "meta" loop.
func NewLoops() *Loops {
	l := &Loops{factories: make(map[string]LoopFactory)}
	l.Register("meta", newMetaLoop)
	return l
}

func (l *Loops) Register(kind string, f LoopFactory) {
	l.factories[kind] = f
}

// Create returns the helper for id, or false when no helper can serve it.
func (l *Loops) Create(id string, r *Resolver, scope Scope) (LoopHelper, bool) {
	kind, arg, _ := strings.Cut(id, ":")
	f, ok := l.factories[kind]
	if !ok {
		return nil, false
	}
	return f(arg, r, scope)
}

// metaLoop repeats over an array in the entity's custom fields.
type metaLoop struct {
	items []gjson.Result
	r     *Resolver
	scope Scope
}

func newMetaLoop(path string, r *Resolver, scope Scope) (LoopHelper, bool) {
	meta := scope.Entity.MetaJSON()
	if meta == "" || path == "" {
		return nil, false
	}
	res := gjson.Get(meta, path)
	if !res.IsArray() {
		return nil, false
	}
	return &metaLoop{items: res.Array(), r: r, scope: scope}, true
}

func (m *metaLoop) Resolve(def *Definition) fragment.Value {
	var out []fragment.Value
	for _, item := range m.items {
		s := m.scope
		s.Item = item
		v := m.r.Resolve(def, s)
		if fragment.IsEmpty(v) {
			continue
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return fragment.Absent()
	}
	return fragment.ListOf(out...)
}
