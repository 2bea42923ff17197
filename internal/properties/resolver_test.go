package properties

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/AaronLay10/schemagraph/internal/config"
	"github.com/AaronLay10/schemagraph/internal/content"
	"github.com/AaronLay10/schemagraph/internal/fragment"
	"github.com/AaronLay10/schemagraph/internal/lookup"
)

func newResolver(t *testing.T) (*Resolver, content.Repository) {
	t.Helper()
	repo, err := content.LoadSite("../content/testdata/site.yaml")
	require.NoError(t, err)
	return NewResolver(lookup.New(&config.Settings{Version: 1}, repo), nil, nil), repo
}

func postScope(t *testing.T, repo content.Repository, id int) Scope {
	t.Helper()
	p, ok := repo.Post(id)
	require.True(t, ok)
	return Scope{Entity: content.PostEntity(p)}
}

func decode(t *testing.T, doc string) *Definitions {
	t.Helper()
	defs := NewDefinitions()
	require.NoError(t, yaml.Unmarshal([]byte(doc), defs))
	return defs
}

func toJSON(t *testing.T, v fragment.Value) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestVersionedOverride(t *testing.T) {
	r, repo := newResolver(t)

	def := &Definition{
		ActiveVersion: "b",
		Properties: NewDefinitions().
			Set("a", &Definition{Source: "text", Value: "A"}).
			Set("b", &Definition{Source: "text", Value: "X"}),
	}

	v := r.Resolve(def, postScope(t, repo, 10))
	assert.Equal(t, "X", v.String())
}

func TestVersionedFallsThroughWhenVersionMissing(t *testing.T) {
	r, repo := newResolver(t)

	def := &Definition{
		ActiveVersion: "missing",
		Type:          "Thing",
		Properties:    NewDefinitions().Set("name", &Definition{Source: "text", Value: "N"}),
	}

	v := r.Resolve(def, postScope(t, repo, 10))
	assert.JSONEq(t, `{"@type":"Thing","name":"N"}`, toJSON(t, v))
}

func TestRequiredInBlockGating(t *testing.T) {
	r, repo := newResolver(t)

	def := &Definition{
		Type: "Review",
		Properties: NewDefinitions().
			Set("title", &Definition{Source: "custom_field", Value: "missing", RequiredInBlock: true}).
			Set("image", &Definition{Source: "post_thumbnail", Type: "ImageURL"}),
	}

	assert.True(t, r.Resolve(def, postScope(t, repo, 10)).IsAbsent())
}

func TestNestedPrependsType(t *testing.T) {
	r, repo := newResolver(t)

	def := &Definition{
		Type: "Rating",
		Properties: NewDefinitions().
			Set("ratingValue", &Definition{Source: "custom_field", Value: "rating"}).
			Set("bestRating", &Definition{Source: "text", Value: "5"}),
	}

	v := r.Resolve(def, postScope(t, repo, 10))
	require.True(t, v.IsMap())
	assert.Equal(t, []string{"@type", "ratingValue", "bestRating"}, v.Keys())
	assert.JSONEq(t, `{"@type":"Rating","ratingValue":4.5,"bestRating":"5"}`, toJSON(t, v))
}

func TestNestedSimpleTypeGetsNoType(t *testing.T) {
	r, repo := newResolver(t)

	def := &Definition{
		Type:       "Text",
		Properties: NewDefinitions().Set("name", &Definition{Source: "post_title"}),
	}

	v := r.Resolve(def, postScope(t, repo, 10))
	assert.False(t, v.Has("@type"))
}

func TestNestedIndexKeysBecomeList(t *testing.T) {
	r, repo := newResolver(t)

	def := &Definition{
		Type: "Thing",
		Properties: NewDefinitions().
			Set("0", &Definition{Source: "text", Value: "first"}).
			Set("1", &Definition{Source: "text", Value: ""}).
			Set("2", &Definition{Source: "text", Value: "third"}),
	}

	v := r.Resolve(def, postScope(t, repo, 10))
	require.True(t, v.IsList())
	assert.JSONEq(t, `["first","third"]`, toJSON(t, v))
}

func TestUnknownLoopCollapsesRequiredBlock(t *testing.T) {
	r, repo := newResolver(t)

	looped := &Definition{Loop: "nowhere:items", Source: "text", Value: "x"}
	assert.True(t, r.Resolve(looped, postScope(t, repo, 10)).IsAbsent())

	looped.RequiredInBlock = true
	parent := &Definition{
		Type: "FAQPage",
		Properties: NewDefinitions().
			Set("name", &Definition{Source: "post_title"}).
			Set("mainEntity", looped),
	}
	assert.True(t, r.Resolve(parent, postScope(t, repo, 10)).IsAbsent())
}

func TestMetaLoop(t *testing.T) {
	r, repo := newResolver(t)

	defs := decode(t, `
name:
  source: post_title
mainEntity:
  loop: meta:faq
  type: Question
  properties:
    name:
      source: loop_field
      value: question
      required_in_block: true
    acceptedAnswer:
      type: Answer
      required_in_block: true
      properties:
        text:
          source: loop_field
          value: answer
          type: Text
          required_in_block: true
`)

	v := r.ResolveAll(defs, postScope(t, repo, 10))
	assert.JSONEq(t, `{
		"name": "Hello World",
		"mainEntity": [
			{"@type":"Question","name":"What is this?","acceptedAnswer":{"@type":"Answer","text":"A journal."}},
			{"@type":"Question","name":"How often?","acceptedAnswer":{"@type":"Answer","text":"Weekly."}}
		]
	}`, toJSON(t, v))
}

func TestMetaLoopWithoutMeta(t *testing.T) {
	r, repo := newResolver(t)

	def := &Definition{Loop: "meta:faq", Source: "loop_field", Value: "question"}
	assert.True(t, r.Resolve(def, postScope(t, repo, 11)).IsAbsent())
}

func TestResolveAllOmitsEmpty(t *testing.T) {
	r, repo := newResolver(t)

	defs := NewDefinitions().
		Set("headline", &Definition{Source: "post_title"}).
		Set("nothing", &Definition{}).
		Set("blank", &Definition{Source: "text", Value: ""}).
		Set("unknown", &Definition{Source: "no_such_source"}).
		Set("email", &Definition{Source: "custom_field", Value: "contact.email", Type: "Email"})

	v := r.ResolveAll(defs, postScope(t, repo, 10))
	assert.Equal(t, []string{"headline", "email"}, v.Keys())
	assert.Equal(t, "press@example.com", v.Get("email").String())
}

func TestDefinitionsKeepOrder(t *testing.T) {
	defs := decode(t, "zeta: {source: text, value: z}\nalpha: {source: text, value: a}\nmid: {source: text, value: m}\n")

	var keys []string
	defs.Each(func(key string, _ *Definition) { keys = append(keys, key) })
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, keys)

	fromJSON := NewDefinitions()
	require.NoError(t, json.Unmarshal([]byte(`{"b":{"source":"text"},"a":{"activeVersion":"x","requiredInBlock":true}}`), fromJSON))
	keys = nil
	fromJSON.Each(func(key string, _ *Definition) { keys = append(keys, key) })
	assert.Equal(t, []string{"b", "a"}, keys)

	a, ok := fromJSON.Get("a")
	require.True(t, ok)
	assert.Equal(t, "x", a.ActiveVersion)
	assert.True(t, a.RequiredInBlock)
}
