package pages

import "github.com/AaronLay10/schemagraph/internal/fragment"

// StaticHome is the graph of a static front page. The publisher node is
// complete here when the front page is the publisher output page.
type StaticHome struct{ base }

func NewStaticHome(env *Env, ctx *Context) *StaticHome { return &StaticHome{base{env: env, ctx: ctx}} }

func (h *StaticHome) Schema() fragment.Value { return h.Memo(h.raw) }

func (h *StaticHome) raw() fragment.Node {
	if !h.opts().EnableHomepage {
		return fallback(h.env, h.ctx)
	}
	return graph(h.env, h.ctx,
		NewHeader(h.env, h.ctx),
		NewFooter(h.env, h.ctx),
		NewPublisher(h.env, h.ctx),
		NewWebsite(h.env, h.ctx),
		NewWebpage(h.env, h.ctx),
		NewMenu(h.env, h.ctx),
	)
}

// BlogHome is the graph of the blog listing: the front page when it shows
// latest posts, or the configured posts page.
type BlogHome struct{ base }

func NewBlogHome(env *Env, ctx *Context) *BlogHome { return &BlogHome{base{env: env, ctx: ctx}} }

func (h *BlogHome) Schema() fragment.Value { return h.Memo(h.raw) }

func (h *BlogHome) raw() fragment.Node {
	enabled := h.opts().EnableBlogPage
	if h.ctx.IsFrontPage {
		enabled = h.opts().EnableHomepage
	}
	if !enabled {
		return fallback(h.env, h.ctx)
	}

	ctx := h.ctx
	if !ctx.IsFrontPage && ctx.Entity.Post == nil {
		if page, ok := h.repo().Post(h.lookup().Site().PostsPageID); ok {
			c := *ctx
			c.Entity.Post = page
			ctx = &c
		}
	}

	nodes := []fragment.Node{
		NewHeader(h.env, ctx),
		NewFooter(h.env, ctx),
		NewPublisher(h.env, ctx),
		NewWebsite(h.env, ctx),
		NewBlogHomeWebpage(h.env, ctx),
	}
	if !ctx.IsFrontPage {
		nodes = append(nodes, NewBreadcrumb(h.env, ctx))
	}
	nodes = append(nodes, NewMenu(h.env, ctx))
	return graph(h.env, ctx, nodes...)
}

// AuthorArchive is the profile page of an author.
type AuthorArchive struct{ base }

func NewAuthorArchive(env *Env, ctx *Context) *AuthorArchive {
	return &AuthorArchive{base{env: env, ctx: ctx}}
}

func (a *AuthorArchive) Schema() fragment.Value { return a.Memo(a.raw) }

func (a *AuthorArchive) raw() fragment.Node {
	u := a.ctx.Entity.User
	if u == nil || !a.opts().EnableAuthorArchives {
		return fallback(a.env, a.ctx)
	}

	profile := NewCollection(a.env, a.ctx, "ProfilePage")
	profile.main = fragment.Ref(a.lookup().PersonID(u.ID))

	return graph(a.env, a.ctx,
		NewHeader(a.env, a.ctx),
		NewFooter(a.env, a.ctx),
		NewPublisher(a.env, a.ctx),
		NewWebsite(a.env, a.ctx),
		profile,
		NewPostAuthor(a.env, a.ctx),
		NewBreadcrumb(a.env, a.ctx),
		NewMenu(a.env, a.ctx),
	)
}
