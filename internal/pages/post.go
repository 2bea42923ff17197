package pages

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/AaronLay10/schemagraph/internal/content"
	"github.com/AaronLay10/schemagraph/internal/fragment"
	"github.com/AaronLay10/schemagraph/internal/lookup"
	"github.com/AaronLay10/schemagraph/internal/properties"
)

// Post is the article node of a content item. In summary form it is the
// short entry collection pages embed.
type Post struct {
	base
	post    *content.Post
	summary bool
}

func NewPost(env *Env, ctx *Context, p *content.Post) *Post {
	return &Post{base: base{env: env, ctx: ctx}, post: p}
}

func NewPostSummary(env *Env, ctx *Context, p *content.Post) *Post {
	return &Post{base: base{env: env, ctx: ctx}, post: p, summary: true}
}

func (p *Post) Schema() fragment.Value { return p.Memo(p.raw) }

func (p *Post) raw() fragment.Node {
	post := p.post
	if post == nil {
		return fragment.Absent()
	}
	l := p.lookup()
	typ := p.opts().ArticleSchemaType()
	imageID := l.FirstImage(post.ThumbnailID, p.opts().DefaultImageID)

	if p.summary {
		m := fragment.NewMap().
			Set("@type", fragment.Str(typ)).
			Set("@id", fragment.Str(lookup.ArticleID(post.Permalink))).
			Set("headline", fragment.NonEmpty(post.Title)).
			Set("url", fragment.NonEmpty(post.Permalink)).
			Set("datePublished", date(post.Published)).
			Set("author", p.authorRef())
		if img, ok := l.Image(imageID); ok {
			m.Set("image", fragment.NonEmpty(img.URL))
		}
		return m
	}

	url := p.pageURL()
	m := fragment.NewMap().
		Set("@type", fragment.Str(typ)).
		Set("@id", fragment.Str(lookup.ArticleID(url))).
		Set("isPartOf", fragment.Ref(lookup.WebpageID(url))).
		Set("mainEntityOfPage", fragment.Ref(lookup.WebpageID(url))).
		Set("headline", fragment.NonEmpty(post.Title)).
		Set("description", text(l, post.Excerpt)).
		Set("datePublished", date(post.Published)).
		Set("dateModified", date(modified(post))).
		Set("author", p.authorRef()).
		Set("publisher", fragment.Ref(l.PublisherID())).
		Set("image", l.ImageObject(imageID, lookup.ImageID(url))).
		Set("articleSection", lookup.StringList(termNames(p.repo(), post, "category"))).
		Set("keywords", fragment.NonEmpty(strings.Join(termNames(p.repo(), post, "post_tag"), ", "))).
		Set("inLanguage", fragment.NonEmpty(l.Site().Language))

	if p.ctx.IncludeComments && p.opts().EnableComments {
		if n := approvedCount(p.repo(), post.ID); n > 0 {
			m.Set("commentCount", fragment.Int(n))
		}
		m.Set("comment", NewComments(p.env, p.ctx, post))
	}
	return m
}

func (p *Post) authorRef() fragment.Node {
	u, ok := p.repo().User(p.post.AuthorID)
	if !ok {
		return fragment.Absent()
	}
	if !p.summary {
		u = p.credited(u)
	}
	return fragment.Ref(p.lookup().PersonID(u.ID))
}

// credited is the user a page names as its author. The publisher output
// page of a person-published site credits the publishing person; every
// other page credits its own author.
func (b *base) credited(author *content.User) *content.User {
	l := b.lookup()
	if !l.IsOutputPage(b.ctx.Entity, b.ctx.IsFrontPage) {
		return author
	}
	if pp, ok := l.PublishingPerson(); ok {
		return pp
	}
	return author
}

// PostAuthor is the Person node of the page's credited author: the post's
// author on content pages, the user on author archives. It is left out when
// that is the publishing person, whose node the publisher already emits.
type PostAuthor struct{ base }

func NewPostAuthor(env *Env, ctx *Context) *PostAuthor {
	return &PostAuthor{base{env: env, ctx: ctx}}
}

func (a *PostAuthor) Schema() fragment.Value { return a.Memo(a.raw) }

func (a *PostAuthor) raw() fragment.Node {
	u := a.author()
	if u == nil {
		return fragment.Absent()
	}
	u = a.credited(u)
	if pp, ok := a.lookup().PublishingPerson(); ok && pp.ID == u.ID {
		return fragment.Absent()
	}
	return person(a.env, u, true)
}

func (a *PostAuthor) author() *content.User {
	e := a.ctx.Entity
	if e.User != nil {
		return e.User
	}
	if e.Post != nil {
		if u, ok := a.repo().User(e.Post.AuthorID); ok {
			return u
		}
	}
	return nil
}

// Comments is the approved comment tree of a post, replies nested under
// their parent. It is emitted only when the caller asks for comments.
type Comments struct {
	base
	post *content.Post
}

func NewComments(env *Env, ctx *Context, p *content.Post) *Comments {
	return &Comments{base: base{env: env, ctx: ctx}, post: p}
}

func (c *Comments) Schema() fragment.Value { return c.Memo(c.raw) }

func (c *Comments) raw() fragment.Node {
	if !c.ctx.IncludeComments || !c.opts().EnableComments || c.post == nil {
		return fragment.Absent()
	}

	children := make(map[int][]content.Comment)
	for _, cm := range c.repo().Comments(c.post.ID) {
		if cm.Approved {
			children[cm.ParentID] = append(children[cm.ParentID], cm)
		}
	}
	if len(children[0]) == 0 {
		return fragment.Absent()
	}
	return c.tree(children, 0)
}

func (c *Comments) tree(children map[int][]content.Comment, parent int) fragment.Node {
	var out fragment.List
	for _, cm := range children[parent] {
		if cm.ID == parent {
			continue
		}
		node := fragment.NewMap().
			Set("@type", fragment.Str("Comment")).
			Set("@id", fragment.Str(CommentID(c.post.Permalink, cm.ID))).
			Set("dateCreated", date(cm.Date)).
			Set("text", text(c.lookup(), cm.Content)).
			Set("author", fragment.NewMap().
				Set("@type", fragment.Str("Person")).
				Set("name", fragment.NonEmpty(cm.Author)).
				Set("url", fragment.NonEmpty(cm.AuthorURL)))
		if len(children[cm.ID]) > 0 {
			node.Set("comment", c.tree(children, cm.ID))
		}
		out = append(out, node)
	}
	return out
}

// CommentID is the @id of a comment: the post url and the md5 of the
// comment id.
func CommentID(postURL string, id int) string {
	sum := md5.Sum([]byte(strconv.Itoa(id)))
	return postURL + "#comment-" + hex.EncodeToString(sum[:])
}

func approvedCount(repo content.Repository, postID int) int {
	n := 0
	for _, cm := range repo.Comments(postID) {
		if cm.Approved {
			n++
		}
	}
	return n
}

func termNames(repo content.Repository, p *content.Post, taxonomy string) []string {
	var names []string
	for _, id := range p.TermIDs(taxonomy) {
		if t, ok := repo.Term(id); ok {
			names = append(names, t.Name)
		}
	}
	return names
}

func text(l *lookup.Service, s string) fragment.Value {
	return properties.Clean(l, "Text", fragment.Str(s))
}

func date(t time.Time) fragment.Value {
	if t.IsZero() {
		return fragment.Absent()
	}
	return fragment.Str(t.Format(time.RFC3339))
}

func modified(p *content.Post) time.Time {
	if p.Modified.IsZero() {
		return p.Published
	}
	return p.Modified
}
