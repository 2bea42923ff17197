package content

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// SiteFile is the on-disk fixture format of a site's content.
type SiteFile struct {
	Version    int        `yaml:"version"`
	Site       Site       `yaml:"site"`
	PostTypes  []PostType `yaml:"post_types"`
	Taxonomies []Taxonomy `yaml:"taxonomies"`
	Posts      []Post     `yaml:"posts"`
	Terms      []Term     `yaml:"terms"`
	Users      []User     `yaml:"users"`
	Images     []Image    `yaml:"images"`
	Comments   []Comment  `yaml:"comments"`
	Menus      []Menu     `yaml:"menus"`
}

// MemoryRepository serves content from memory. It is never mutated after
// construction, so concurrent builds may share one.
type MemoryRepository struct {
	site       Site
	postTypes  map[string]*PostType
	taxonomies map[string]*Taxonomy
	posts      map[int]*Post
	order      []*Post
	terms      map[int]*Term
	users      map[int]*User
	images     map[int]*Image
	comments   map[int][]Comment
	menus      map[string]*Menu
}

// LoadSite reads a YAML site fixture.
func LoadSite(path string) (*MemoryRepository, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read site file: %w", err)
	}

	var sf SiteFile
	if err := yaml.Unmarshal(b, &sf); err != nil {
		return nil, fmt.Errorf("failed to parse site file: %w", err)
	}

	if sf.Version != 1 {
		return nil, fmt.Errorf("unsupported site file version: %d", sf.Version)
	}

	return NewMemoryRepository(&sf), nil
}

// NewMemoryRepository indexes the contents of sf.
func NewMemoryRepository(sf *SiteFile) *MemoryRepository {
	r := &MemoryRepository{
		site:       sf.Site,
		postTypes:  make(map[string]*PostType),
		taxonomies: make(map[string]*Taxonomy),
		posts:      make(map[int]*Post),
		terms:      make(map[int]*Term),
		users:      make(map[int]*User),
		images:     make(map[int]*Image),
		comments:   make(map[int][]Comment),
		menus:      make(map[string]*Menu),
	}

	for i := range sf.PostTypes {
		r.postTypes[sf.PostTypes[i].Name] = &sf.PostTypes[i]
	}
	for i := range sf.Taxonomies {
		r.taxonomies[sf.Taxonomies[i].Name] = &sf.Taxonomies[i]
	}
	for i := range sf.Posts {
		p := &sf.Posts[i]
		if p.Type == "" {
			p.Type = "post"
		}
		r.posts[p.ID] = p
		r.order = append(r.order, p)
	}
	for i := range sf.Terms {
		r.terms[sf.Terms[i].ID] = &sf.Terms[i]
	}
	for i := range sf.Users {
		r.users[sf.Users[i].ID] = &sf.Users[i]
	}
	for i := range sf.Images {
		r.images[sf.Images[i].ID] = &sf.Images[i]
	}
	for _, c := range sf.Comments {
		r.comments[c.PostID] = append(r.comments[c.PostID], c)
	}
	for i := range sf.Menus {
		r.menus[sf.Menus[i].Location] = &sf.Menus[i]
	}

	// newest first, the order collection pages list posts in
	sort.SliceStable(r.order, func(i, j int) bool {
		return r.order[i].Published.After(r.order[j].Published)
	})

	return r
}

func (r *MemoryRepository) Site() Site { return r.site }

func (r *MemoryRepository) Post(id int) (*Post, bool) {
	p, ok := r.posts[id]
	return p, ok
}

func (r *MemoryRepository) Term(id int) (*Term, bool) {
	t, ok := r.terms[id]
	return t, ok
}

func (r *MemoryRepository) User(id int) (*User, bool) {
	u, ok := r.users[id]
	return u, ok
}

func (r *MemoryRepository) Image(id int) (*Image, bool) {
	img, ok := r.images[id]
	return img, ok
}

func (r *MemoryRepository) Comments(postID int) []Comment {
	return append([]Comment(nil), r.comments[postID]...)
}

func (r *MemoryRepository) Menu(location string) (*Menu, bool) {
	m, ok := r.menus[location]
	return m, ok
}

func (r *MemoryRepository) PostType(name string) (*PostType, bool) {
	pt, ok := r.postTypes[name]
	return pt, ok
}

func (r *MemoryRepository) IsPostType(name string) bool {
	_, ok := r.postTypes[name]
	return ok
}

func (r *MemoryRepository) IsTaxonomy(name string) bool {
	_, ok := r.taxonomies[name]
	return ok
}

// Posts returns published posts matching q, newest first.
func (r *MemoryRepository) Posts(q Query) []*Post {
	var out []*Post
	for _, p := range r.order {
		if !q.matches(p) {
			continue
		}
		out = append(out, p)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out
}

func (q Query) matches(p *Post) bool {
	if p.Status != "" && p.Status != "publish" {
		return false
	}
	if q.Type != "" && p.Type != q.Type {
		return false
	}
	if q.Taxonomy != "" && q.TermID != 0 && !containsInt(p.Terms[q.Taxonomy], q.TermID) {
		return false
	}
	if q.AuthorID != 0 && p.AuthorID != q.AuthorID {
		return false
	}
	if q.Year != 0 && p.Published.Year() != q.Year {
		return false
	}
	if q.Month != 0 && int(p.Published.Month()) != q.Month {
		return false
	}
	if q.Day != 0 && p.Published.Day() != q.Day {
		return false
	}
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(p.Title), needle) &&
			!strings.Contains(strings.ToLower(p.Content), needle) {
			return false
		}
	}
	return true
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
