package printer

import (
	"github.com/AaronLay10/schemagraph/internal/content"
	"github.com/AaronLay10/schemagraph/internal/fragment"
	"github.com/AaronLay10/schemagraph/internal/pages"
)

// Builder returns the page builder for kind, or nil when the kind has no
// graph.
func Builder(kind Kind, env *pages.Env, c *pages.Context) fragment.Node {
	switch kind {
	case KindSingular:
		return pages.NewArticle(env, c)
	case KindFrontPage:
		c.IsFrontPage = true
		if c.Entity.Post == nil {
			return pages.NewBlogHome(env, c)
		}
		return pages.NewStaticHome(env, c)
	case KindBlogHome:
		c.IsFrontPage = true
		return pages.NewBlogHome(env, c)
	case KindPostsPage:
		return pages.NewBlogHome(env, c)
	case KindTaxonomy:
		return pages.NewTaxArchive(env, c)
	case KindAuthor:
		return pages.NewAuthorArchive(env, c)
	case KindDate:
		return pages.NewDateArchive(env, c)
	case KindPostTypeArchive:
		return pages.NewPostTypeArchive(env, c)
	case KindSearch:
		return pages.NewSearch(env, c)
	case KindShop:
		return pages.NewWooShop(env, c)
	}
	return nil
}

// fillMembers queries the posts a collection page lists when the caller
// did not supply them.
func (p *Printer) fillMembers(kind Kind, c *pages.Context) {
	if c.Members != nil {
		return
	}

	var q content.Query
	switch kind {
	case KindBlogHome, KindPostsPage:
		q = content.Query{Type: "post"}
	case KindFrontPage:
		if c.Entity.Post != nil {
			return
		}
		q = content.Query{Type: "post"}
	case KindTaxonomy:
		if c.Entity.Term == nil {
			return
		}
		q = content.Query{Taxonomy: c.Entity.Term.Taxonomy, TermID: c.Entity.Term.ID}
	case KindAuthor:
		if c.Entity.User == nil {
			return
		}
		q = content.Query{AuthorID: c.Entity.User.ID}
	case KindDate:
		q = content.Query{Type: "post", Year: c.Date.Year, Month: c.Date.Month, Day: c.Date.Day}
	case KindPostTypeArchive:
		q = content.Query{Type: c.PostType}
	case KindSearch:
		q = content.Query{Search: c.Query}
	case KindShop:
		q = content.Query{Type: "product"}
	default:
		return
	}
	c.Members = p.repo.Posts(q)
}
