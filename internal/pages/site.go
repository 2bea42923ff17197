package pages

import (
	"strconv"

	"github.com/AaronLay10/schemagraph/internal/content"
	"github.com/AaronLay10/schemagraph/internal/fragment"
	"github.com/AaronLay10/schemagraph/internal/lookup"
)

// Header is the site's WPHeader, emitted only when enabled.
type Header struct{ base }

func NewHeader(env *Env, ctx *Context) *Header { return &Header{base{env: env, ctx: ctx}} }

func (h *Header) Schema() fragment.Value { return h.Memo(h.raw) }

func (h *Header) raw() fragment.Node {
	if !h.opts().EnableHeader {
		return fragment.Absent()
	}
	site := h.lookup().Site()
	return fragment.NewMap().
		Set("@type", fragment.Str("WPHeader")).
		Set("@id", fragment.Str(h.lookup().HeaderID())).
		Set("url", fragment.Str(h.lookup().SiteURL())).
		Set("headline", fragment.NonEmpty(site.Name)).
		Set("description", fragment.NonEmpty(site.Description))
}

// Footer is the site's WPFooter, emitted only when enabled.
type Footer struct{ base }

func NewFooter(env *Env, ctx *Context) *Footer { return &Footer{base{env: env, ctx: ctx}} }

func (f *Footer) Schema() fragment.Value { return f.Memo(f.raw) }

func (f *Footer) raw() fragment.Node {
	if !f.opts().EnableFooter {
		return fragment.Absent()
	}
	site := f.lookup().Site()
	return fragment.NewMap().
		Set("@type", fragment.Str("WPFooter")).
		Set("@id", fragment.Str(f.lookup().FooterID())).
		Set("url", fragment.Str(f.lookup().SiteURL())).
		Set("headline", fragment.NonEmpty(site.Name)).
		Set("copyrightHolder", fragment.Ref(f.lookup().PublisherID()))
}

// Website describes the site, with a SearchAction when search schema is on.
type Website struct{ base }

func NewWebsite(env *Env, ctx *Context) *Website { return &Website{base{env: env, ctx: ctx}} }

func (w *Website) Schema() fragment.Value { return w.Memo(w.raw) }

func (w *Website) raw() fragment.Node {
	l := w.lookup()
	site := l.Site()
	m := fragment.NewMap().
		Set("@type", fragment.Str("WebSite")).
		Set("@id", fragment.Str(l.WebsiteID())).
		Set("url", fragment.Str(l.SiteURL())).
		Set("name", fragment.NonEmpty(site.Name)).
		Set("description", fragment.NonEmpty(site.Description)).
		Set("inLanguage", fragment.NonEmpty(site.Language)).
		Set("publisher", fragment.Ref(l.PublisherID()))

	if w.opts().EnableSearch {
		m.Set("potentialAction", fragment.NewMap().
			Set("@type", fragment.Str("SearchAction")).
			Set("target", fragment.NewMap().
				Set("@type", fragment.Str("EntryPoint")).
				Set("urlTemplate", fragment.Str(l.SiteURL()+"?s={search_term_string}"))).
			Set("query-input", fragment.Str("required name=search_term_string")))
	}
	return m
}

// Publisher is the site's identity: an Organization, or the publishing
// person when the site publishes as a person.
type Publisher struct{ base }

func NewPublisher(env *Env, ctx *Context) *Publisher { return &Publisher{base{env: env, ctx: ctx}} }

func (p *Publisher) Schema() fragment.Value { return p.Memo(p.raw) }

func (p *Publisher) raw() fragment.Node {
	if p.opts().PublisherIsPerson() {
		return NewPublishingPerson(p.env, p.ctx)
	}

	l := p.lookup()
	site := l.Site()
	logoID := lookup.ID(l.SiteURL(), "logo")
	logo := l.ImageObject(l.FirstImage(p.opts().OrganizationLogoID, site.LogoID), logoID)

	m := fragment.NewMap().
		Set("@type", fragment.Str("Organization")).
		Set("@id", fragment.Str(l.OrganizationID())).
		Set("name", fragment.NonEmpty(lookup.FirstNonEmpty(p.opts().OrganizationName, site.Name))).
		Set("url", fragment.Str(l.SiteURL())).
		Set("logo", logo).
		Set("sameAs", l.SameAs())
	if !fragment.Flatten(logo).IsAbsent() {
		m.Set("image", fragment.Ref(logoID))
	}
	return m
}

// PublishingPerson is the Person the site publishes as. The publisher
// output page carries the full node; other pages a short one.
type PublishingPerson struct{ base }

func NewPublishingPerson(env *Env, ctx *Context) *PublishingPerson {
	return &PublishingPerson{base{env: env, ctx: ctx}}
}

func (p *PublishingPerson) Schema() fragment.Value { return p.Memo(p.raw) }

func (p *PublishingPerson) raw() fragment.Node {
	u, ok := p.lookup().PublishingPerson()
	if !ok {
		return fragment.Absent()
	}
	full := p.lookup().IsOutputPage(p.ctx.Entity, p.ctx.IsFrontPage)
	m := person(p.env, u, full)
	if full {
		m.Set("sameAs", lookup.StringList(append(sameAs(u), p.lookup().Settings().Social.Profiles()...)))
	}
	return m
}

// person renders a user. The short form carries only identity.
func person(env *Env, u *content.User, full bool) *fragment.Map {
	l := env.Lookup
	m := fragment.NewMap().
		Set("@type", fragment.Str("Person")).
		Set("@id", fragment.Str(l.PersonID(u.ID))).
		Set("name", fragment.NonEmpty(u.Name)).
		Set("url", fragment.NonEmpty(lookup.FirstNonEmpty(u.ArchiveURL, u.URL)))
	if !full {
		return m
	}

	m.Set("description", fragment.NonEmpty(u.Description))
	if l.Options().AuthorGravatar && u.AvatarURL != "" {
		m.Set("image", fragment.NewMap().
			Set("@type", fragment.Str("ImageObject")).
			Set("@id", fragment.Str(lookup.ID(l.SiteURL(), "personlogo-"+strconv.Itoa(u.ID)))).
			Set("url", fragment.Str(u.AvatarURL)).
			Set("caption", fragment.NonEmpty(u.Name)))
	}
	m.Set("sameAs", lookup.StringList(sameAs(u)))
	return m
}

func sameAs(u *content.User) []string {
	var out []string
	if u.URL != "" {
		out = append(out, u.URL)
	}
	return append(out, u.SameAs...)
}

// Breadcrumb is the page's trail from the site root.
type Breadcrumb struct{ base }

func NewBreadcrumb(env *Env, ctx *Context) *Breadcrumb { return &Breadcrumb{base{env: env, ctx: ctx}} }

func (b *Breadcrumb) Schema() fragment.Value { return b.Memo(b.raw) }

type crumb struct {
	name string
	url  string
}

func (b *Breadcrumb) raw() fragment.Node {
	l := b.lookup()
	url := b.pageURL()

	crumbs := []crumb{{name: "Home", url: l.SiteURL()}}
	if !b.ctx.IsFrontPage {
		crumbs = append(crumbs, b.ancestors()...)
		crumbs = append(crumbs, crumb{name: b.pageTitle(), url: url})
	}

	var items fragment.List
	for i, c := range crumbs {
		items = append(items, fragment.NewMap().
			Set("@type", fragment.Str("ListItem")).
			Set("position", fragment.Int(i+1)).
			Set("name", fragment.NonEmpty(c.name)).
			Set("item", fragment.NonEmpty(c.url)))
	}

	return fragment.NewMap().
		Set("@type", fragment.Str("BreadcrumbList")).
		Set("@id", fragment.Str(lookup.BreadcrumbID(url))).
		Set("itemListElement", items)
}

// ancestors lists the crumbs between the root and the page: parent pages,
// a post's first category with its parents, or a term's parents.
func (b *Breadcrumb) ancestors() []crumb {
	repo := b.repo()
	e := b.ctx.Entity

	var out []crumb
	switch {
	case e.Post != nil && e.Post.Type == "post":
		if ids := e.Post.TermIDs("category"); len(ids) > 0 {
			if t, ok := repo.Term(ids[0]); ok {
				out = append(termChain(repo, t.ParentID), crumb{name: t.Name, url: t.Link})
			}
		}
	case e.Post != nil:
		for id, seen := e.Post.ParentID, 0; id != 0 && seen < 32; seen++ {
			p, ok := repo.Post(id)
			if !ok {
				break
			}
			out = append([]crumb{{name: p.Title, url: p.Permalink}}, out...)
			id = p.ParentID
		}
	case e.Term != nil:
		out = termChain(repo, e.Term.ParentID)
	}
	return out
}

func termChain(repo content.Repository, id int) []crumb {
	var out []crumb
	for seen := 0; id != 0 && seen < 32; seen++ {
		t, ok := repo.Term(id)
		if !ok {
			break
		}
		out = append([]crumb{{name: t.Name, url: t.Link}}, out...)
		id = t.ParentID
	}
	return out
}

// Menu is the site navigation for the configured menu location.
type Menu struct{ base }

func NewMenu(env *Env, ctx *Context) *Menu { return &Menu{base{env: env, ctx: ctx}} }

func (m *Menu) Schema() fragment.Value { return m.Memo(m.raw) }

func (m *Menu) raw() fragment.Node {
	loc := m.opts().MenuLocation
	if loc == "" {
		return fragment.Absent()
	}
	menu, ok := m.repo().Menu(loc)
	if !ok || len(menu.Items) == 0 {
		return fragment.Absent()
	}

	var parts fragment.List
	for _, it := range menu.Items {
		parts = append(parts, fragment.NewMap().
			Set("@type", fragment.Str("SiteNavigationElement")).
			Set("name", fragment.NonEmpty(it.Title)).
			Set("url", fragment.NonEmpty(it.URL)))
	}

	return fragment.NewMap().
		Set("@type", fragment.Str("SiteNavigationElement")).
		Set("@id", fragment.Str(m.lookup().MenuID())).
		Set("name", fragment.NonEmpty(menu.Name)).
		Set("hasPart", parts)
}

// hasMenu reports whether a Menu node will be emitted, so pages can point
// at it.
func hasMenu(env *Env) bool {
	loc := env.Lookup.Options().MenuLocation
	if loc == "" {
		return false
	}
	menu, ok := env.Lookup.Repository().Menu(loc)
	return ok && len(menu.Items) > 0
}
