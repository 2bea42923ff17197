package pages

import "github.com/AaronLay10/schemagraph/internal/fragment"

// Article is the graph of a single content item. Posts get an article
// node; other post types are described by their webpage node.
type Article struct{ base }

func NewArticle(env *Env, ctx *Context) *Article { return &Article{base{env: env, ctx: ctx}} }

func (a *Article) Schema() fragment.Value { return a.Memo(a.raw) }

func (a *Article) raw() fragment.Node {
	p := a.ctx.Entity.Post
	if p == nil {
		return fallback(a.env, a.ctx)
	}

	nodes := []fragment.Node{
		NewHeader(a.env, a.ctx),
		NewFooter(a.env, a.ctx),
		NewPublisher(a.env, a.ctx),
		NewWebsite(a.env, a.ctx),
		NewBreadcrumb(a.env, a.ctx),
		NewMenu(a.env, a.ctx),
	}
	if p.Type == "post" {
		nodes = append(nodes,
			NewPostAuthor(a.env, a.ctx),
			NewMinimalWebpage(a.env, a.ctx),
			NewPost(a.env, a.ctx, p))
	} else {
		nodes = append(nodes, NewWebpage(a.env, a.ctx))
	}
	return graph(a.env, a.ctx, nodes...)
}
