package printer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AaronLay10/schemagraph/internal/content"
)

func TestTargetResolve(t *testing.T) {
	repo, err := content.LoadSite("../content/testdata/site.yaml")
	require.NoError(t, err)

	req, err := Target{Kind: KindSingular, ID: 10, Comments: true}.Resolve(repo)
	require.NoError(t, err)
	assert.Equal(t, content.KindPost, req.Entity.Kind())
	assert.Equal(t, "Hello World", req.Entity.Post.Title)
	assert.True(t, req.IncludeComments)

	req, err = Target{Kind: KindFrontPage}.Resolve(repo)
	require.NoError(t, err)
	assert.Equal(t, 2, req.Entity.Post.ID, "defaults to the site front page")

	req, err = Target{Kind: KindTaxonomy, ID: 7}.Resolve(repo)
	require.NoError(t, err)
	assert.Equal(t, "Guides", req.Entity.Term.Name)

	req, err = Target{Kind: KindAuthor, ID: 2}.Resolve(repo)
	require.NoError(t, err)
	assert.Equal(t, "John Writer", req.Entity.User.Name)

	req, err = Target{Kind: KindDate, Year: 2024, Month: 3}.Resolve(repo)
	require.NoError(t, err)
	assert.Equal(t, 3, req.Date.Month)

	req, err = Target{Kind: KindSearch, Query: "second"}.Resolve(repo)
	require.NoError(t, err)
	assert.Equal(t, "second", req.Query)
	assert.Equal(t, content.KindSite, req.Entity.Kind())
}

func TestTargetResolveErrors(t *testing.T) {
	repo, err := content.LoadSite("../content/testdata/site.yaml")
	require.NoError(t, err)

	tests := []struct {
		name     string
		target   Target
		notFound bool
	}{
		{"missing post", Target{Kind: KindSingular, ID: 999}, true},
		{"missing term", Target{Kind: KindTaxonomy, ID: 999}, true},
		{"missing user", Target{Kind: KindAuthor, ID: 999}, true},
		{"unknown post type", Target{Kind: KindPostTypeArchive, PostType: "recipe"}, true},
		{"date without year", Target{Kind: KindDate}, false},
		{"unknown kind", Target{Kind: "feed"}, false},
		{"bad month", Target{Kind: KindDate, Year: 2024, Month: 13}, false},
		{"bad url", Target{Kind: KindSearch, URL: "not a url"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.target.Resolve(repo)
			require.Error(t, err)
			assert.Equal(t, tt.notFound, errors.Is(err, ErrNotFound))
		})
	}
}
