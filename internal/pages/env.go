// Package pages assembles the graph for each kind of page: a fixed set of
// site and content nodes followed by the custom types that apply.
package pages

import (
	"github.com/AaronLay10/schemagraph/internal/conditions"
	"github.com/AaronLay10/schemagraph/internal/config"
	"github.com/AaronLay10/schemagraph/internal/content"
	"github.com/AaronLay10/schemagraph/internal/customtype"
	"github.com/AaronLay10/schemagraph/internal/fragment"
	"github.com/AaronLay10/schemagraph/internal/lookup"
	"github.com/AaronLay10/schemagraph/internal/properties"
)

// Env is shared by every builder of one graph build.
type Env struct {
	Lookup   *lookup.Service
	Eval     *conditions.Evaluator
	Resolver *properties.Resolver
	Types    []customtype.Definition

	// OnCustomType, when set, is told about every custom type considered
	// for the page and whether it joined the graph.
	OnCustomType func(def *customtype.Definition, applied bool)
}

// NewEnv wires a build environment over a settings snapshot.
func NewEnv(settings *config.Settings, repo content.Repository, types []customtype.Definition) *Env {
	l := lookup.New(settings, repo)
	return &Env{
		Lookup:   l,
		Eval:     conditions.NewEvaluator(repo),
		Resolver: properties.NewResolver(l, nil, nil),
		Types:    types,
	}
}

// DateRange selects a date archive. Zero parts are unset.
type DateRange struct {
	Year  int
	Month int
	Day   int
}

// Context describes the page being built.
type Context struct {
	Entity          content.Entity
	URL             string
	Title           string
	Description     string
	IsFrontPage     bool
	IncludeComments bool

	// Members are the posts a collection page lists.
	Members []*content.Post

	Query    string
	Date     DateRange
	PostType string
}

type base struct {
	fragment.Lazy
	env *Env
	ctx *Context
}

func (b *base) lookup() *lookup.Service { return b.env.Lookup }
func (b *base) opts() config.SchemaOptions { return b.env.Lookup.Options() }
func (b *base) repo() content.Repository { return b.env.Lookup.Repository() }

// pageURL is the canonical url of the page, falling back to the entity's
// own link.
func (b *base) pageURL() string {
	e := b.ctx.Entity
	switch {
	case b.ctx.URL != "":
		return b.ctx.URL
	case e.Post != nil:
		return e.Post.Permalink
	case e.Term != nil:
		return e.Term.Link
	case e.User != nil:
		return e.User.ArchiveURL
	}
	return b.lookup().SiteURL()
}

func (b *base) pageTitle() string {
	e := b.ctx.Entity
	switch {
	case b.ctx.Title != "":
		return b.ctx.Title
	case e.Post != nil:
		return e.Post.Title
	case e.Term != nil:
		return e.Term.Name
	case e.User != nil:
		return e.User.Name
	}
	return b.lookup().Site().Name
}

func (b *base) pageDescription() string {
	e := b.ctx.Entity
	switch {
	case b.ctx.Description != "":
		return b.ctx.Description
	case e.Post != nil:
		return e.Post.Excerpt
	case e.Term != nil:
		return e.Term.Description
	case e.User != nil:
		return e.User.Description
	}
	return b.lookup().Site().Description
}

// CustomTypes is the list of custom types that apply to the page. An
// Article gets mainEntityOfPage pointing at the page's webpage node.
type CustomTypes struct{ base }

func NewCustomTypes(env *Env, ctx *Context) *CustomTypes {
	return &CustomTypes{base{env: env, ctx: ctx}}
}

func (c *CustomTypes) Schema() fragment.Value { return c.Memo(c.raw) }

func (c *CustomTypes) raw() fragment.Node {
	scope := properties.Scope{Entity: c.ctx.Entity, IsFrontPage: c.ctx.IsFrontPage}
	var out fragment.List
	for i := range c.env.Types {
		def := &c.env.Types[i]
		t := customtype.New(def, c.env.Eval, c.env.Resolver, scope)
		applied := t.Applies()
		if c.env.OnCustomType != nil {
			c.env.OnCustomType(def, applied)
		}
		if !applied {
			continue
		}
		out = append(out, c.withPage(t))
	}
	return out
}

func (c *CustomTypes) withPage(t *customtype.Type) fragment.Node {
	if t.TypeName() != "Article" {
		return t
	}
	url := c.pageURL()
	return fragment.Func(func() fragment.Node {
		v := t.Schema()
		if v.IsAbsent() {
			return v
		}
		if !v.Has("@id") {
			v = v.With("@id", fragment.Str(lookup.ID(url, "custom-"+t.Definition().ID)))
		}
		return v.With("mainEntityOfPage", fragment.Flatten(fragment.Ref(lookup.WebpageID(url))))
	})
}

// fallback is the graph of a page whose own schema is disabled: only the
// custom types that apply.
func fallback(env *Env, ctx *Context) fragment.Node {
	return NewCustomTypes(env, ctx)
}

// graph joins page nodes and the page's custom types into one list.
func graph(env *Env, ctx *Context, nodes ...fragment.Node) fragment.Node {
	types := NewCustomTypes(env, ctx).Schema()
	out := fragment.List(nodes)
	for _, v := range types.Items() {
		out = append(out, v)
	}
	return out
}
