package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestLoadSite(t *testing.T) {
	repo, err := LoadSite("testdata/site.yaml")
	require.NoError(t, err)

	site := repo.Site()
	assert.Equal(t, "Example Journal", site.Name)
	assert.Equal(t, 2, site.FrontPageID)

	post, ok := repo.Post(10)
	require.True(t, ok)
	assert.Equal(t, "Hello World", post.Title)
	assert.Equal(t, []int{7}, post.TermIDs("category"))
	assert.Equal(t, 2024, post.Published.Year())

	assert.True(t, repo.IsTaxonomy("category"))
	assert.False(t, repo.IsTaxonomy("post"))
	assert.True(t, repo.IsPostType("product"))
}

func TestLoadSiteRejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 2\n"), 0600))

	_, err := LoadSite(path)
	assert.Error(t, err)
}

func TestPostsQuery(t *testing.T) {
	repo, err := LoadSite("testdata/site.yaml")
	require.NoError(t, err)

	posts := repo.Posts(Query{Type: "post"})
	require.Len(t, posts, 2, "drafts are never listed")
	assert.Equal(t, 11, posts[0].ID, "newest first")

	inCat := repo.Posts(Query{Type: "post", Taxonomy: "category", TermID: 7})
	require.Len(t, inCat, 1)
	assert.Equal(t, 10, inCat[0].ID)

	byAuthor := repo.Posts(Query{AuthorID: 2})
	require.Len(t, byAuthor, 1)

	march := repo.Posts(Query{Type: "post", Year: 2024, Month: 3})
	require.Len(t, march, 1)

	found := repo.Posts(Query{Search: "second"})
	require.Len(t, found, 1)
	assert.Equal(t, 11, found[0].ID)

	limited := repo.Posts(Query{Limit: 1})
	assert.Len(t, limited, 1)
}

func TestMetaJSON(t *testing.T) {
	repo, err := LoadSite("testdata/site.yaml")
	require.NoError(t, err)

	post, _ := repo.Post(10)
	meta := PostEntity(post).MetaJSON()
	assert.Equal(t, "What is this?", gjson.Get(meta, "faq.0.question").String())
	assert.Equal(t, "", SiteEntity().MetaJSON())
}

func TestEntityKind(t *testing.T) {
	assert.Equal(t, KindSite, SiteEntity().Kind())
	assert.Equal(t, KindPost, PostEntity(&Post{}).Kind())
	assert.Equal(t, KindTerm, TermEntity(&Term{}).Kind())
	assert.Equal(t, KindUser, UserEntity(&User{}).Kind())
}
