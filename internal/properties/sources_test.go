package properties

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AaronLay10/schemagraph/internal/config"
	"github.com/AaronLay10/schemagraph/internal/content"
	"github.com/AaronLay10/schemagraph/internal/fragment"
	"github.com/AaronLay10/schemagraph/internal/lookup"
)

func TestBuiltinSources(t *testing.T) {
	r, repo := newResolver(t)
	scope := postScope(t, repo, 10)

	tests := []struct {
		name string
		def  Definition
		want string
	}{
		{name: "text", def: Definition{Source: "text", Value: "hi"}, want: `"hi"`},
		{name: "title", def: Definition{Source: "post_title"}, want: `"Hello World"`},
		{name: "excerpt as text strips markup", def: Definition{Source: "post_excerpt", Type: "Text"}, want: `"A first post about tools."`},
		{name: "date", def: Definition{Source: "post_date", Type: "DateTime"}, want: `"2024-03-10T08:30:00Z"`},
		{name: "modified", def: Definition{Source: "post_modified"}, want: `"2024-03-12T10:00:00Z"`},
		{name: "permalink", def: Definition{Source: "post_permalink", Type: "URL"}, want: `"https://example.com/hello-world/"`},
		{name: "thumbnail url", def: Definition{Source: "post_thumbnail", Type: "ImageURL"}, want: `"https://example.com/uploads/hello.jpg"`},
		{name: "author name", def: Definition{Source: "author_name"}, want: `"John Writer"`},
		{name: "author url falls back to archive", def: Definition{Source: "author_url"}, want: `"https://example.com/author/john/"`},
		{name: "site name", def: Definition{Source: "site_name"}, want: `"Example Journal"`},
		{name: "site url", def: Definition{Source: "site_url"}, want: `"https://example.com/"`},
		{name: "terms", def: Definition{Source: "term_list", Value: "category"}, want: `"Guides"`},
		{name: "custom field list", def: Definition{Source: "custom_field", Value: "faq.#.question"}, want: `["What is this?","Who writes it?","How often?"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := r.Resolve(&tt.def, scope)
			assert.JSONEq(t, tt.want, toJSON(t, v))
		})
	}
}

func TestThumbnailAsImageObject(t *testing.T) {
	r, repo := newResolver(t)

	v := r.Resolve(&Definition{Source: "post_thumbnail", Type: "ImageObject"}, postScope(t, repo, 10))
	require.True(t, v.IsMap())
	assert.Equal(t, "ImageObject", v.Get("@type").String())
	assert.Equal(t, 1200, v.Get("width").ScalarAny())
}

func TestTermScopeSources(t *testing.T) {
	r, repo := newResolver(t)
	term, _ := repo.Term(5)
	scope := Scope{Entity: content.TermEntity(term)}

	assert.Equal(t, "News", r.Resolve(&Definition{Source: "post_title"}, scope).String())
	assert.True(t, r.Resolve(&Definition{Source: "post_date"}, scope).IsAbsent())
}

func TestRegisterSource(t *testing.T) {
	repo, err := content.LoadSite("../content/testdata/site.yaml")
	require.NoError(t, err)

	sources := NewSources()
	sources.Register("shout", func(value, _ string) Source {
		return SourceFunc(func(*lookup.Service, Scope) fragment.Value {
			return fragment.Str(value + "!")
		})
	})
	r := NewResolver(lookup.New(&config.Settings{}, repo), sources, nil)

	v := r.Resolve(&Definition{Source: "shout", Value: "hey"}, Scope{})
	assert.Equal(t, "hey!", v.String())
}

func TestClean(t *testing.T) {
	r, _ := newResolver(t)
	l := r.Lookup()

	assert.Equal(t, "+15551234567", Clean(l, "Phone", fragment.Str(" +1 (555) 123-4567 ")).String())
	assert.Equal(t, "2024-05-01T00:00:00Z", Clean(l, "DateTime", fragment.Str("2024-05-01")).String())
	assert.Equal(t, "soon", Clean(l, "DateTime", fragment.Str("soon")).String())
	assert.Equal(t, "a & b", Clean(l, "Text", fragment.Str("<p>a &amp;  b</p>")).String())
	assert.True(t, Clean(l, "ImageURL", fragment.Int(999)).IsAbsent())
	assert.Equal(t, 7, Clean(l, "", fragment.Int(7)).ScalarAny())
}
