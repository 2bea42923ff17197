package pages

import (
	"github.com/AaronLay10/schemagraph/internal/fragment"
	"github.com/AaronLay10/schemagraph/internal/lookup"
)

// webpageType picks AboutPage or ContactPage for the configured pages.
func (b *base) webpageType() string {
	if p := b.ctx.Entity.Post; p != nil {
		switch p.ID {
		case b.opts().AboutPageID:
			return "AboutPage"
		case b.opts().ContactPageID:
			return "ContactPage"
		}
	}
	return "WebPage"
}

// pageLinks adds the references every webpage node carries.
func (b *base) pageLinks(m *fragment.Map, url string) *fragment.Map {
	m.Set("isPartOf", fragment.Ref(b.lookup().WebsiteID()))
	if b.ctx.IsFrontPage {
		m.Set("about", fragment.Ref(b.lookup().PublisherID()))
	} else {
		m.Set("breadcrumb", fragment.Ref(lookup.BreadcrumbID(url)))
	}
	if hasMenu(b.env) {
		m.Set("hasPart", fragment.Ref(b.lookup().MenuID()))
	}
	return m
}

// Webpage is the full page node for pages that are not articles.
type Webpage struct{ base }

func NewWebpage(env *Env, ctx *Context) *Webpage { return &Webpage{base{env: env, ctx: ctx}} }

func (w *Webpage) Schema() fragment.Value { return w.Memo(w.raw) }

func (w *Webpage) raw() fragment.Node {
	l := w.lookup()
	url := w.pageURL()
	m := fragment.NewMap().
		Set("@type", fragment.Str(w.webpageType())).
		Set("@id", fragment.Str(lookup.WebpageID(url))).
		Set("url", fragment.Str(url)).
		Set("name", fragment.NonEmpty(w.pageTitle())).
		Set("description", text(l, w.pageDescription())).
		Set("inLanguage", fragment.NonEmpty(l.Site().Language))

	if p := w.ctx.Entity.Post; p != nil {
		m.Set("datePublished", date(p.Published))
		m.Set("dateModified", date(modified(p)))
		imageID := l.FirstImage(p.ThumbnailID, w.opts().DefaultImageID)
		m.Set("primaryImageOfPage", l.ImageObject(imageID, lookup.ImageID(url)))
	}

	w.pageLinks(m, url)
	return m.Set("potentialAction", fragment.List{fragment.NewMap().
		Set("@type", fragment.Str("ReadAction")).
		Set("target", fragment.List{fragment.Str(url)})})
}

// MinimalWebpage is the page node of an article page. The article node
// carries the details.
type MinimalWebpage struct{ base }

func NewMinimalWebpage(env *Env, ctx *Context) *MinimalWebpage {
	return &MinimalWebpage{base{env: env, ctx: ctx}}
}

func (w *MinimalWebpage) Schema() fragment.Value { return w.Memo(w.raw) }

func (w *MinimalWebpage) raw() fragment.Node {
	url := w.pageURL()
	m := fragment.NewMap().
		Set("@type", fragment.Str(w.webpageType())).
		Set("@id", fragment.Str(lookup.WebpageID(url))).
		Set("url", fragment.Str(url)).
		Set("name", fragment.NonEmpty(w.pageTitle()))
	return w.pageLinks(m, url)
}

// Collection is the page node of a listing page.
type Collection struct {
	base
	typ  string
	main fragment.Node
}

func NewCollection(env *Env, ctx *Context, typ string) *Collection {
	return &Collection{base: base{env: env, ctx: ctx}, typ: typ}
}

func (c *Collection) Schema() fragment.Value { return c.Memo(c.raw) }

func (c *Collection) raw() fragment.Node {
	l := c.lookup()
	url := c.pageURL()
	m := fragment.NewMap().
		Set("@type", fragment.Str(c.typ)).
		Set("@id", fragment.Str(lookup.WebpageID(url))).
		Set("url", fragment.Str(url)).
		Set("name", fragment.NonEmpty(c.pageTitle())).
		Set("description", text(l, c.pageDescription())).
		Set("inLanguage", fragment.NonEmpty(l.Site().Language))
	c.pageLinks(m, url)
	if c.main != nil {
		return m.Set("mainEntity", c.main)
	}
	return m.Set("mainEntity", c.mainEntity())
}

// mainEntity lists the page's members: an ItemList of urls, or embedded
// post summaries when the site asks for them.
func (b *base) mainEntity() fragment.Node {
	if len(b.ctx.Members) == 0 {
		return fragment.Absent()
	}
	if b.opts().ListsPosts() {
		var posts fragment.List
		for _, p := range b.ctx.Members {
			posts = append(posts, NewPostSummary(b.env, b.ctx, p))
		}
		return posts
	}

	var items fragment.List
	for i, p := range b.ctx.Members {
		items = append(items, fragment.NewMap().
			Set("@type", fragment.Str("ListItem")).
			Set("position", fragment.Int(i+1)).
			Set("url", fragment.NonEmpty(p.Permalink)))
	}
	return fragment.NewMap().
		Set("@type", fragment.Str("ItemList")).
		Set("numberOfItems", fragment.Int(len(items))).
		Set("itemListElement", items)
}

// BlogHomeWebpage is the page node of a posts listing that is the blog
// itself: the front page showing latest posts, or the posts page.
type BlogHomeWebpage struct{ base }

func NewBlogHomeWebpage(env *Env, ctx *Context) *BlogHomeWebpage {
	return &BlogHomeWebpage{base{env: env, ctx: ctx}}
}

func (w *BlogHomeWebpage) Schema() fragment.Value { return w.Memo(w.raw) }

func (w *BlogHomeWebpage) raw() fragment.Node {
	l := w.lookup()
	url := w.pageURL()
	m := fragment.NewMap().
		Set("@type", fragment.Str("CollectionPage")).
		Set("@id", fragment.Str(lookup.WebpageID(url))).
		Set("url", fragment.Str(url)).
		Set("name", fragment.NonEmpty(w.pageTitle())).
		Set("description", text(l, w.pageDescription())).
		Set("inLanguage", fragment.NonEmpty(l.Site().Language))
	w.pageLinks(m, url)

	blog := fragment.NewMap().
		Set("@type", fragment.Str("Blog")).
		Set("@id", fragment.Str(lookup.ID(url, "blog"))).
		Set("name", fragment.NonEmpty(w.pageTitle())).
		Set("publisher", fragment.Ref(l.PublisherID()))
	if w.opts().ListsPosts() {
		blog.Set("blogPost", w.mainEntity())
	} else {
		blog.Set("hasPart", w.mainEntity())
	}
	return m.Set("mainEntity", blog)
}
