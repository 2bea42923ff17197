package properties

import (
	"github.com/tidwall/gjson"

	"github.com/AaronLay10/schemagraph/internal/content"
	"github.com/AaronLay10/schemagraph/internal/fragment"
	"github.com/AaronLay10/schemagraph/internal/lookup"
)

// Scope is the context a definition resolves against. Item is the current
// element while a loop expands; it does not exist outside loops.
type Scope struct {
	Entity      content.Entity
	IsFrontPage bool
	Item        gjson.Result
}

// Resolver turns definitions into values. It is built per graph build
// around that build's lookup service.
type Resolver struct {
	lookup  *lookup.Service
	sources *Sources
	loops   *Loops
}

// NewResolver returns a resolver. Nil registries fall back to the built-in
// sources and loops.
func NewResolver(l *lookup.Service, sources *Sources, loops *Loops) *Resolver {
	if sources == nil {
		sources = NewSources()
	}
	if loops == nil {
		loops = NewLoops()
	}
	return &Resolver{lookup: l, sources: sources, loops: loops}
}

func (r *Resolver) Lookup() *lookup.Service { return r.lookup }

// ResolveAll resolves every definition and keeps the non-empty results in
// authored order. Index-like keys collapse the result into a list.
func (r *Resolver) ResolveAll(defs *Definitions, scope Scope) fragment.Value {
	m := fragment.NewMap()
	defs.Each(func(key string, def *Definition) {
		v := r.Resolve(def, scope)
		if fragment.IsEmpty(v) {
			return
		}
		m.Set(key, v)
	})
	return fragment.Flatten(m)
}

// Resolve resolves one definition. The first matching case wins: versioned,
// looped, nested, leaf. Anything else is Absent.
func (r *Resolver) Resolve(def *Definition, scope Scope) fragment.Value {
	if def == nil {
		return fragment.Absent()
	}

	if def.ActiveVersion != "" {
		if version, ok := def.Properties.Get(def.ActiveVersion); ok {
			return r.Resolve(version, scope)
		}
	}

	if def.Loop != "" {
		helper, ok := r.loops.Create(def.Loop, r, scope)
		if !ok {
			return fragment.Absent()
		}
		inner := *def
		inner.Loop = ""
		return helper.Resolve(&inner)
	}

	if def.Properties.Len() > 0 {
		return r.nested(def, scope)
	}

	if def.Source != "" {
		src, ok := r.sources.Create(def.Source, def.Value, def.Type)
		if !ok {
			return fragment.Absent()
		}
		return Clean(r.lookup, def.Type, src.Value(r.lookup, scope))
	}

	return fragment.Absent()
}

func (r *Resolver) nested(def *Definition, scope Scope) fragment.Value {
	m := fragment.NewMap()
	missing := false
	def.Properties.Each(func(key string, child *Definition) {
		if missing {
			return
		}
		v := r.Resolve(child, scope)
		if fragment.IsEmpty(v) {
			if child.RequiredInBlock {
				missing = true
			}
			return
		}
		m.Set(key, v)
	})
	if missing || m.Len() == 0 {
		return fragment.Absent()
	}

	v := fragment.Flatten(m)
	if def.Type != "" && !IsSimpleType(def.Type) && v.IsMap() {
		v = fragment.Prepend(v, "@type", fragment.Str(def.Type))
	}
	return v
}
