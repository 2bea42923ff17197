// Package content holds the read-only view of a site's entities that graph
// builds consult: posts, terms, users, images, comments and menus.
package content

import (
	"encoding/json"
	"time"
)

// Site describes the site as a whole.
type Site struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	URL         string `yaml:"url" json:"url"`
	Language    string `yaml:"language" json:"language"`
	LogoID      int    `yaml:"logo" json:"logo"`
	FrontPageID int    `yaml:"front_page" json:"front_page"` // 0 when the front page lists posts
	PostsPageID int    `yaml:"posts_page" json:"posts_page"`
	ShopPageID  int    `yaml:"shop_page" json:"shop_page"`
}

// PostType is a registered content type.
type PostType struct {
	Name       string `yaml:"name"`
	Label      string `yaml:"label"`
	ArchiveURL string `yaml:"archive_url"`
}

// Taxonomy is a registered taxonomy.
type Taxonomy struct {
	Name  string `yaml:"name"`
	Label string `yaml:"label"`
}

// Post is a content item of any post type.
type Post struct {
	ID          int              `yaml:"id"`
	Type        string           `yaml:"type"`
	Status      string           `yaml:"status"`
	Title       string           `yaml:"title"`
	Excerpt     string           `yaml:"excerpt"`
	Content     string           `yaml:"content"`
	Permalink   string           `yaml:"permalink"`
	Published   time.Time        `yaml:"published"`
	Modified    time.Time        `yaml:"modified"`
	AuthorID    int              `yaml:"author"`
	ThumbnailID int              `yaml:"thumbnail"`
	ParentID    int              `yaml:"parent"`
	Format      string           `yaml:"format"`
	Template    string           `yaml:"template"`
	ProductType string           `yaml:"product_type"`
	Terms       map[string][]int `yaml:"terms"`
	Meta        map[string]any   `yaml:"meta"`
}

// TermIDs returns the ids of the post's terms in taxonomy.
func (p *Post) TermIDs(taxonomy string) []int {
	if p == nil {
		return nil
	}
	return append([]int(nil), p.Terms[taxonomy]...)
}

// MetaJSON returns the post's custom fields as a JSON document, or "" when
// the post carries none.
func (p *Post) MetaJSON() string {
	if p == nil || len(p.Meta) == 0 {
		return ""
	}
	b, err := json.Marshal(p.Meta)
	if err != nil {
		return ""
	}
	return string(b)
}

// Term is a taxonomy term.
type Term struct {
	ID          int    `yaml:"id"`
	Taxonomy    string `yaml:"taxonomy"`
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug"`
	Link        string `yaml:"link"`
	Description string `yaml:"description"`
	ParentID    int    `yaml:"parent"`
}

// User is an author or site member.
type User struct {
	ID          int      `yaml:"id"`
	Login       string   `yaml:"login"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Email       string   `yaml:"email"`
	URL         string   `yaml:"url"`
	ArchiveURL  string   `yaml:"archive_url"`
	AvatarURL   string   `yaml:"avatar_url"`
	Roles       []string `yaml:"roles"`
	SameAs      []string `yaml:"same_as"`
}

// Image is attachment metadata.
type Image struct {
	ID      int    `yaml:"id"`
	URL     string `yaml:"url"`
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	Caption string `yaml:"caption"`
	Alt     string `yaml:"alt"`
}

// Comment is a comment on a post. ParentID is 0 for top-level comments.
type Comment struct {
	ID        int       `yaml:"id"`
	PostID    int       `yaml:"post"`
	ParentID  int       `yaml:"parent"`
	Author    string    `yaml:"author"`
	AuthorURL string    `yaml:"author_url"`
	Content   string    `yaml:"content"`
	Date      time.Time `yaml:"date"`
	Approved  bool      `yaml:"approved"`
}

// MenuItem is a single navigation entry.
type MenuItem struct {
	Title string `yaml:"title"`
	URL   string `yaml:"url"`
}

// Menu is a navigation menu assigned to a theme location.
type Menu struct {
	Location string     `yaml:"location"`
	Name     string     `yaml:"name"`
	Items    []MenuItem `yaml:"items"`
}

// Query selects posts for collection pages. Zero fields do not filter.
type Query struct {
	Type     string
	Taxonomy string
	TermID   int
	AuthorID int
	Year     int
	Month    int
	Day      int
	Search   string
	Limit    int
}

// Repository is the read-only content lookup a build consults.
type Repository interface {
	Site() Site
	Post(id int) (*Post, bool)
	Term(id int) (*Term, bool)
	User(id int) (*User, bool)
	Image(id int) (*Image, bool)
	Comments(postID int) []Comment
	Menu(location string) (*Menu, bool)
	Posts(q Query) []*Post
	PostType(name string) (*PostType, bool)
	IsPostType(name string) bool
	IsTaxonomy(name string) bool
}
