package customtype

import (
	"github.com/AaronLay10/schemagraph/internal/conditions"
	"github.com/AaronLay10/schemagraph/internal/fragment"
	"github.com/AaronLay10/schemagraph/internal/properties"
)

// Type is a custom type bound to one page context. It is a graph node:
// Schema resolves the properties once and puts @type first.
type Type struct {
	fragment.Lazy

	def      *Definition
	eval     *conditions.Evaluator
	resolver *properties.Resolver
	scope    properties.Scope
}

// New binds def to the page described by scope.
func New(def *Definition, eval *conditions.Evaluator, resolver *properties.Resolver, scope properties.Scope) *Type {
	return &Type{def: def, eval: eval, resolver: resolver, scope: scope}
}

func (t *Type) Definition() *Definition { return t.def }
func (t *Type) IsActive() bool { return t.def.Active }
func (t *Type) TypeName() string { return t.def.Type }

// ConditionsMet evaluates the type's rule set for the bound page.
func (t *Type) ConditionsMet() bool {
	return t.eval.Met(t.def.Conditions, t.scope.Entity, t.scope.IsFrontPage)
}

// Applies reports whether the type joins the page's graph.
func (t *Type) Applies() bool {
	return t.IsActive() && t.ConditionsMet()
}

// Schema is Absent when none of the properties resolve.
func (t *Type) Schema() fragment.Value {
	return t.Memo(func() fragment.Node {
		v := t.resolver.ResolveAll(t.def.Properties, t.scope)
		if fragment.IsEmpty(v) {
			return fragment.Absent()
		}
		return fragment.Prepend(v, "@type", fragment.Str(t.def.Type))
	})
}
