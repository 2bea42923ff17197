package pages

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AaronLay10/schemagraph/internal/conditions"
	"github.com/AaronLay10/schemagraph/internal/config"
	"github.com/AaronLay10/schemagraph/internal/content"
	"github.com/AaronLay10/schemagraph/internal/customtype"
	"github.com/AaronLay10/schemagraph/internal/fragment"
	"github.com/AaronLay10/schemagraph/internal/properties"
)

func loadRepo(t *testing.T) *content.MemoryRepository {
	t.Helper()
	repo, err := content.LoadSite("../content/testdata/site.yaml")
	require.NoError(t, err)
	return repo
}

func allOn() config.SchemaOptions {
	return config.SchemaOptions{
		EnableHeader:           true,
		EnableFooter:           true,
		EnableComments:         true,
		EnableSearch:           true,
		EnableShop:             true,
		EnableHomepage:         true,
		EnableBlogPage:         true,
		EnableAuthorArchives:   true,
		EnableDateArchives:     true,
		EnableTaxonomyArchives: true,
		EnablePostTypeArchives: true,
		MenuLocation:           "primary",
		DefaultImageID:         102,
		AboutPageID:            5,
		ContactPageID:          6,
	}
}

func newEnv(t *testing.T, opts config.SchemaOptions, types ...customtype.Definition) (*Env, *content.MemoryRepository) {
	t.Helper()
	repo := loadRepo(t)
	return NewEnv(&config.Settings{Version: 1, Schema: opts}, repo, types), repo
}

func postCtx(t *testing.T, repo content.Repository, id int) *Context {
	t.Helper()
	p, ok := repo.Post(id)
	require.True(t, ok)
	return &Context{Entity: content.PostEntity(p)}
}

func typesOf(v fragment.Value) []string {
	var out []string
	for _, n := range v.Items() {
		out = append(out, n.Get("@type").String())
	}
	return out
}

func find(v fragment.Value, typ string) fragment.Value {
	for _, n := range v.Items() {
		if n.Get("@type").String() == typ {
			return n
		}
	}
	return fragment.Absent()
}

func toJSON(t *testing.T, v fragment.Value) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestPostPageScenario(t *testing.T) {
	opts := allOn()
	opts.EnableSearch = false
	env, repo := newEnv(t, opts)
	ctx := postCtx(t, repo, 10)
	ctx.IncludeComments = true

	g := NewArticle(env, ctx).Schema()
	require.True(t, g.IsList())
	assert.Equal(t, []string{
		"WPHeader", "WPFooter", "Organization", "WebSite", "BreadcrumbList",
		"SiteNavigationElement", "Person", "WebPage", "Article",
	}, typesOf(g))

	author := find(g, "Person")
	assert.Equal(t, "https://example.com/#/schema/person/2", author.Get("@id").String())

	article := find(g, "Article")
	assert.JSONEq(t, `{"@id":"https://example.com/#/schema/person/2"}`, toJSON(t, article.Get("author")))
	assert.JSONEq(t, `{"@id":"https://example.com/hello-world/#webpage"}`, toJSON(t, article.Get("isPartOf")))
	assert.Equal(t, "A first post about tools.", article.Get("description").String())
	assert.Equal(t, "Guides", article.Get("articleSection").Index(0).String())
	assert.Equal(t, "go", article.Get("keywords").String())
	assert.Equal(t, 2, article.Get("commentCount").ScalarAny())

	webpage := find(g, "WebPage")
	assert.JSONEq(t, `{"@id":"https://example.com/#website"}`, toJSON(t, webpage.Get("isPartOf")))
	assert.False(t, find(g, "WebSite").Has("potentialAction"))
}

func TestCommentsTree(t *testing.T) {
	env, repo := newEnv(t, allOn())
	ctx := postCtx(t, repo, 10)
	ctx.IncludeComments = true
	post, _ := repo.Post(10)

	v := NewComments(env, ctx, post).Schema()
	require.True(t, v.IsList())
	require.Equal(t, 1, v.Len(), "unapproved comments are left out")

	top := v.Index(0)
	assert.Equal(t, "https://example.com/hello-world/#comment-c4ca4238a0b923820dcc509a6f75849b", top.Get("@id").String())
	assert.Equal(t, "Ada", top.Get("author").Get("name").String())

	replies := top.Get("comment")
	require.Equal(t, 1, replies.Len())
	assert.Equal(t, CommentID(post.Permalink, 2), replies.Index(0).Get("@id").String())
}

func TestCommentsNeedRequestAndToggle(t *testing.T) {
	env, repo := newEnv(t, allOn())
	post, _ := repo.Post(10)

	ctx := postCtx(t, repo, 10)
	assert.True(t, NewComments(env, ctx, post).Schema().IsAbsent(), "not requested")

	opts := allOn()
	opts.EnableComments = false
	env, _ = newEnv(t, opts)
	ctx.IncludeComments = true
	assert.True(t, NewComments(env, ctx, post).Schema().IsAbsent(), "disabled")
}

func TestTaxArchiveDisabledScenario(t *testing.T) {
	def := customtype.Definition{
		ID:     "news",
		Type:   "Article",
		Active: true,
		Conditions: conditions.RuleSet{
			{{LHS: "post_category", Operator: "=", RHS: 5}},
		},
		Properties: properties.NewDefinitions().Set("headline", &properties.Definition{Source: "post_title"}),
	}
	opts := allOn()
	opts.EnableTaxonomyArchives = false
	env, repo := newEnv(t, opts, def)

	news, _ := repo.Term(5)
	ctx := &Context{Entity: content.TermEntity(news)}

	g := NewTaxArchive(env, ctx).Schema()
	assert.Equal(t, []string{"Article"}, typesOf(g))

	article := g.Index(0)
	assert.Equal(t, "News", article.Get("headline").String())
	assert.JSONEq(t, `{"@id":"https://example.com/category/news/#webpage"}`, toJSON(t, article.Get("mainEntityOfPage")))
	assert.Equal(t, "https://example.com/category/news/#custom-news", article.Get("@id").String())
}

func TestEmptyCustomTypesLeaveNoNode(t *testing.T) {
	unresolved := properties.NewDefinitions().
		Set("recipeYield", &properties.Definition{Source: "custom_field", Value: "no.such.field"})
	global := conditions.RuleSet{{{LHS: "show_globally", Operator: "=", RHS: true}}}
	env, repo := newEnv(t, allOn(),
		customtype.Definition{ID: "recipe", Type: "Recipe", Active: true, Conditions: global, Properties: unresolved},
		customtype.Definition{ID: "story", Type: "Article", Active: true, Conditions: global, Properties: unresolved},
	)

	g := NewArticle(env, postCtx(t, repo, 10)).Schema()
	assert.NotContains(t, typesOf(g), "Recipe")
	assert.Equal(t, 1, countType(g, "Article"))
}

func TestTaxArchiveEnabled(t *testing.T) {
	env, repo := newEnv(t, allOn())
	guides, _ := repo.Term(7)
	members := repo.Posts(content.Query{Type: "post", Taxonomy: "category", TermID: 7})
	ctx := &Context{Entity: content.TermEntity(guides), Members: members}

	g := NewTaxArchive(env, ctx).Schema()
	assert.Contains(t, typesOf(g), "CollectionPage")

	page := find(g, "CollectionPage")
	assert.Equal(t, "Guides", page.Get("name").String())
	assert.JSONEq(t, `{
		"@type": "ItemList",
		"numberOfItems": 1,
		"itemListElement": [{"@type":"ListItem","position":1,"url":"https://example.com/hello-world/"}]
	}`, toJSON(t, page.Get("mainEntity")))

	crumbs := find(g, "BreadcrumbList").Get("itemListElement")
	require.Equal(t, 3, crumbs.Len())
	assert.Equal(t, "News", crumbs.Index(1).Get("name").String())
}

func TestExcludedTaxonomyFallsBack(t *testing.T) {
	opts := allOn()
	opts.ExcludedTaxonomies = []string{"post_tag"}
	env, repo := newEnv(t, opts)
	tag, _ := repo.Term(20)

	g := NewTaxArchive(env, &Context{Entity: content.TermEntity(tag)}).Schema()
	assert.Equal(t, 0, g.Len())
}

func TestArchivePostSummaries(t *testing.T) {
	opts := allOn()
	opts.ArchiveMainEntity = "posts"
	env, repo := newEnv(t, opts)

	ctx := &Context{
		Date:    DateRange{Year: 2024, Month: 3},
		URL:     "https://example.com/2024/03/",
		Members: repo.Posts(content.Query{Type: "post", Year: 2024, Month: 3}),
	}

	g := NewDateArchive(env, ctx).Schema()
	page := find(g, "CollectionPage")
	assert.Equal(t, "March 2024", page.Get("name").String())

	main := page.Get("mainEntity")
	require.True(t, main.IsList())
	require.Equal(t, 1, main.Len())
	assert.Equal(t, "Hello World", main.Index(0).Get("headline").String())
	assert.Equal(t, "https://example.com/uploads/hello.jpg", main.Index(0).Get("image").String())
}

func TestSearchPage(t *testing.T) {
	env, repo := newEnv(t, allOn())
	ctx := &Context{Query: "second", Members: repo.Posts(content.Query{Search: "second"})}

	g := NewSearch(env, ctx).Schema()
	page := find(g, "SearchResultsPage")
	require.True(t, page.IsMap())
	assert.Equal(t, "https://example.com/?s=second#webpage", page.Get("@id").String())
	assert.Equal(t, `Search results for "second"`, page.Get("name").String())

	action := find(g, "WebSite").Get("potentialAction")
	assert.Equal(t, "SearchAction", action.Get("@type").String())

	opts := allOn()
	opts.EnableSearch = false
	env, _ = newEnv(t, opts)
	assert.Equal(t, 0, NewSearch(env, ctx).Schema().Len())
}

func TestPostTypeArchiveAndShop(t *testing.T) {
	env, repo := newEnv(t, allOn())
	products := repo.Posts(content.Query{Type: "product"})

	g := NewPostTypeArchive(env, &Context{PostType: "product", Members: products}).Schema()
	page := find(g, "CollectionPage")
	assert.Equal(t, "Products", page.Get("name").String())
	assert.Equal(t, "https://example.com/shop/", page.Get("url").String())

	g = NewWooShop(env, &Context{Members: products}).Schema()
	page = find(g, "CollectionPage")
	assert.Equal(t, "Shop", page.Get("name").String())
}

func TestStaticHome(t *testing.T) {
	env, repo := newEnv(t, allOn())
	ctx := postCtx(t, repo, 2)
	ctx.IsFrontPage = true

	g := NewStaticHome(env, ctx).Schema()
	assert.Equal(t, []string{"WPHeader", "WPFooter", "Organization", "WebSite", "WebPage", "SiteNavigationElement"}, typesOf(g))

	page := find(g, "WebPage")
	assert.JSONEq(t, `{"@id":"https://example.com/#organization"}`, toJSON(t, page.Get("about")))
	assert.False(t, page.Has("breadcrumb"))
	assert.JSONEq(t, `{"@id":"https://example.com/#navigation"}`, toJSON(t, page.Get("hasPart")))
}

func TestBlogHome(t *testing.T) {
	env, repo := newEnv(t, allOn())
	ctx := &Context{Members: repo.Posts(content.Query{Type: "post"})}

	g := NewBlogHome(env, ctx).Schema()
	page := find(g, "CollectionPage")
	assert.Equal(t, "https://example.com/blog/#webpage", page.Get("@id").String())
	blog := page.Get("mainEntity")
	assert.Equal(t, "Blog", blog.Get("@type").String())
	assert.Equal(t, 2, blog.Get("hasPart").Get("numberOfItems").ScalarAny())
	assert.Contains(t, typesOf(g), "BreadcrumbList")

	opts := allOn()
	opts.EnableHomepage = false
	env, _ = newEnv(t, opts)
	front := &Context{IsFrontPage: true, Members: ctx.Members}
	assert.Equal(t, 0, NewBlogHome(env, front).Schema().Len())
}

func TestAuthorArchive(t *testing.T) {
	env, repo := newEnv(t, allOn())
	john, _ := repo.User(2)

	g := NewAuthorArchive(env, &Context{Entity: content.UserEntity(john)}).Schema()
	profile := find(g, "ProfilePage")
	assert.JSONEq(t, `{"@id":"https://example.com/#/schema/person/2"}`, toJSON(t, profile.Get("mainEntity")))
	assert.Equal(t, "https://example.com/author/john/#webpage", profile.Get("@id").String())
	assert.Equal(t, "John Writer", find(g, "Person").Get("name").String())
}

func TestPersonPublisher(t *testing.T) {
	opts := allOn()
	opts.Type = "person"
	opts.PublishingPersonID = 1
	opts.AuthorGravatar = true
	env, repo := newEnv(t, opts)

	// Jane publishes the site and wrote post 11: one Person node, the publisher.
	ctx := postCtx(t, repo, 11)
	g := NewArticle(env, ctx).Schema()
	assert.Equal(t, 1, countType(g, "Person"))
	publisher := find(g, "Person")
	assert.Equal(t, "https://example.com/#/schema/person/1", publisher.Get("@id").String())
	assert.False(t, publisher.Has("description"), "short form away from the output page")

	// On the static front page the publishing person is complete.
	home := postCtx(t, repo, 2)
	home.IsFrontPage = true
	g = NewStaticHome(env, home).Schema()
	publisher = find(g, "Person")
	assert.Equal(t, "Editor in chief.", publisher.Get("description").String())
	assert.Equal(t, "https://secure.gravatar.com/avatar/jane", publisher.Get("image").Get("url").String())
	assert.Equal(t, "https://twitter.com/janedoe", publisher.Get("sameAs").Index(1).String())

	// Someone else's post still gets its author node.
	g = NewArticle(env, postCtx(t, repo, 10)).Schema()
	assert.Equal(t, 2, countType(g, "Person"))
}

func TestOutputPageCreditsPublishingPerson(t *testing.T) {
	opts := allOn()
	opts.Type = "person"
	opts.PublishingPersonID = 1
	opts.OutputPageID = 10
	env, repo := newEnv(t, opts)

	// Post 10 is John's, but it is the publisher output page.
	g := NewArticle(env, postCtx(t, repo, 10)).Schema()
	assert.Equal(t, 1, countType(g, "Person"))
	publisher := find(g, "Person")
	assert.Equal(t, "https://example.com/#/schema/person/1", publisher.Get("@id").String())
	assert.Equal(t, "Editor in chief.", publisher.Get("description").String())

	assert.JSONEq(t, `{"@id":"https://example.com/#/schema/person/1"}`, toJSON(t, find(g, "Article").Get("author")))

	// Away from the output page John is credited and gets his own node.
	opts.OutputPageID = 11
	env, _ = newEnv(t, opts)
	g = NewArticle(env, postCtx(t, repo, 10)).Schema()
	assert.Equal(t, 2, countType(g, "Person"))
	assert.JSONEq(t, `{"@id":"https://example.com/#/schema/person/2"}`, toJSON(t, find(g, "Article").Get("author")))
}

func TestCommentCountNeedsRequest(t *testing.T) {
	env, repo := newEnv(t, allOn())
	g := NewArticle(env, postCtx(t, repo, 10)).Schema()

	article := find(g, "Article")
	require.False(t, article.IsAbsent())
	assert.False(t, article.Has("commentCount"))
	assert.False(t, article.Has("comment"))
}

func countType(v fragment.Value, typ string) int {
	n := 0
	for _, it := range typesOf(v) {
		if it == typ {
			n++
		}
	}
	return n
}

func TestHeaderFooterDisabled(t *testing.T) {
	env, repo := newEnv(t, config.SchemaOptions{})
	ctx := postCtx(t, repo, 10)

	g := NewArticle(env, ctx).Schema()
	assert.NotContains(t, typesOf(g), "WPHeader")
	assert.NotContains(t, typesOf(g), "WPFooter")
	assert.NotContains(t, typesOf(g), "SiteNavigationElement")
	assert.False(t, find(g, "WebPage").Has("hasPart"))
}

func TestAboutAndContactPages(t *testing.T) {
	env, repo := newEnv(t, allOn())

	g := NewArticle(env, postCtx(t, repo, 5)).Schema()
	assert.Contains(t, typesOf(g), "AboutPage")
	assert.NotContains(t, typesOf(g), "Article")

	g = NewArticle(env, postCtx(t, repo, 6)).Schema()
	crumbs := find(g, "BreadcrumbList").Get("itemListElement")
	require.Equal(t, 3, crumbs.Len())
	assert.Equal(t, "About", crumbs.Index(1).Get("name").String())
	assert.Contains(t, typesOf(g), "ContactPage")
}

func TestCustomTypesHook(t *testing.T) {
	defs, err := customtype.LoadDefinitions("../customtype/testdata/types.yaml")
	require.NoError(t, err)
	env, repo := newEnv(t, allOn(), defs...)

	seen := map[string]bool{}
	env.OnCustomType = func(def *customtype.Definition, applied bool) { seen[def.ID] = applied }

	g := NewArticle(env, postCtx(t, repo, 10)).Schema()
	assert.Equal(t, map[string]bool{"faq": true, "news-article": false, "draft-event": false}, seen)

	faq := find(g, "FAQPage")
	assert.Equal(t, 2, faq.Get("mainEntity").Len())
}

func TestBuildersMemoize(t *testing.T) {
	env, repo := newEnv(t, allOn())
	a := NewArticle(env, postCtx(t, repo, 10))

	calls := 0
	env.OnCustomType = func(*customtype.Definition, bool) { calls++ }
	env.Types = []customtype.Definition{{ID: "x", Type: "Thing", Active: true}}

	first := a.Schema()
	second := a.Schema()
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}
