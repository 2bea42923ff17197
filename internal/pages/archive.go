package pages

import (
	"fmt"
	"net/url"
	"time"

	"github.com/AaronLay10/schemagraph/internal/fragment"
)

// Archive is the graph of a listing page: site nodes, a collection page
// whose main entity lists the members, and the page's custom types.
type Archive struct {
	base
	typ string
}

func NewArchive(env *Env, ctx *Context) *Archive {
	return &Archive{base: base{env: env, ctx: ctx}, typ: "CollectionPage"}
}

func (a *Archive) Schema() fragment.Value { return a.Memo(a.raw) }

func (a *Archive) raw() fragment.Node {
	return graph(a.env, a.ctx,
		NewHeader(a.env, a.ctx),
		NewFooter(a.env, a.ctx),
		NewPublisher(a.env, a.ctx),
		NewWebsite(a.env, a.ctx),
		NewCollection(a.env, a.ctx, a.typ),
		NewBreadcrumb(a.env, a.ctx),
		NewMenu(a.env, a.ctx),
	)
}

// DateArchive lists posts of a year, month or day.
type DateArchive struct{ base }

func NewDateArchive(env *Env, ctx *Context) *DateArchive {
	return &DateArchive{base{env: env, ctx: ctx}}
}

func (d *DateArchive) Schema() fragment.Value { return d.Memo(d.raw) }

func (d *DateArchive) raw() fragment.Node {
	if !d.opts().EnableDateArchives {
		return fallback(d.env, d.ctx)
	}
	ctx := *d.ctx
	if ctx.Title == "" {
		ctx.Title = dateTitle(ctx.Date)
	}
	return NewArchive(d.env, &ctx)
}

func dateTitle(r DateRange) string {
	switch {
	case r.Year == 0:
		return ""
	case r.Month == 0:
		return fmt.Sprint(r.Year)
	case r.Day == 0:
		return time.Date(r.Year, time.Month(r.Month), 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
	}
	return time.Date(r.Year, time.Month(r.Month), r.Day, 0, 0, 0, 0, time.UTC).Format("January 2, 2006")
}

// TaxArchive lists the posts of a term, unless its taxonomy's archives
// are disabled or excluded.
type TaxArchive struct{ base }

func NewTaxArchive(env *Env, ctx *Context) *TaxArchive {
	return &TaxArchive{base{env: env, ctx: ctx}}
}

func (t *TaxArchive) Schema() fragment.Value { return t.Memo(t.raw) }

func (t *TaxArchive) raw() fragment.Node {
	term := t.ctx.Entity.Term
	if term == nil || !t.opts().TaxonomyArchiveEnabled(term.Taxonomy) {
		return fallback(t.env, t.ctx)
	}
	return NewArchive(t.env, t.ctx)
}

// PostTypeArchive lists the items of a post type.
type PostTypeArchive struct{ base }

func NewPostTypeArchive(env *Env, ctx *Context) *PostTypeArchive {
	return &PostTypeArchive{base{env: env, ctx: ctx}}
}

func (p *PostTypeArchive) Schema() fragment.Value { return p.Memo(p.raw) }

func (p *PostTypeArchive) raw() fragment.Node {
	if !p.opts().PostTypeArchiveEnabled(p.ctx.PostType) {
		return fallback(p.env, p.ctx)
	}
	ctx := *p.ctx
	if pt, ok := p.repo().PostType(ctx.PostType); ok {
		if ctx.Title == "" {
			ctx.Title = pt.Label
		}
		if ctx.URL == "" {
			ctx.URL = pt.ArchiveURL
		}
	}
	return NewArchive(p.env, &ctx)
}

// Search is the search results page.
type Search struct{ base }

func NewSearch(env *Env, ctx *Context) *Search { return &Search{base{env: env, ctx: ctx}} }

func (s *Search) Schema() fragment.Value { return s.Memo(s.raw) }

func (s *Search) raw() fragment.Node {
	if !s.opts().EnableSearch {
		return fallback(s.env, s.ctx)
	}
	ctx := *s.ctx
	if ctx.Title == "" {
		ctx.Title = fmt.Sprintf("Search results for %q", ctx.Query)
	}
	if ctx.URL == "" {
		ctx.URL = s.lookup().SiteURL() + "?s=" + url.QueryEscape(ctx.Query)
	}
	a := NewArchive(s.env, &ctx)
	a.typ = "SearchResultsPage"
	return a
}

// WooShop is the shop's product listing.
type WooShop struct{ base }

func NewWooShop(env *Env, ctx *Context) *WooShop { return &WooShop{base{env: env, ctx: ctx}} }

func (w *WooShop) Schema() fragment.Value { return w.Memo(w.raw) }

func (w *WooShop) raw() fragment.Node {
	if !w.opts().EnableShop {
		return fallback(w.env, w.ctx)
	}
	ctx := *w.ctx
	if ctx.Entity.Post == nil {
		if shop, ok := w.repo().Post(w.lookup().Site().ShopPageID); ok {
			ctx.Entity.Post = shop
		}
	}
	return NewArchive(w.env, &ctx)
}
