package properties

import (
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/AaronLay10/schemagraph/internal/content"
	"github.com/AaronLay10/schemagraph/internal/fragment"
	"github.com/AaronLay10/schemagraph/internal/lookup"
)

// Source supplies the raw value of a leaf definition.
type Source interface {
	Value(l *lookup.Service, s Scope) fragment.Value
}

// SourceFunc adapts a function to Source.
type SourceFunc func(l *lookup.Service, s Scope) fragment.Value

func (f SourceFunc) Value(l *lookup.Service, s Scope) fragment.Value { return f(l, s) }

// Factory builds a Source from a definition's value and declared type.
type Factory func(value, typ string) Source

// Sources maps source tags to factories.
type Sources struct {
	factories map[string]Factory
}

// NewSources returns a registry holding the built-in sources.
func NewSources() *Sources {
	s := &Sources{factories: make(map[string]Factory)}

	s.Register("text", func(value, _ string) Source {
		return SourceFunc(func(*lookup.Service, Scope) fragment.Value {
			return fragment.NonEmpty(value)
		})
	})
	s.Register("post_title", entityField(func(p *content.Post) string { return p.Title },
		func(t *content.Term) string { return t.Name },
		func(u *content.User) string { return u.Name }))
	s.Register("post_excerpt", entityField(func(p *content.Post) string { return p.Excerpt },
		func(t *content.Term) string { return t.Description },
		func(u *content.User) string { return u.Description }))
	s.Register("post_content", entityField(func(p *content.Post) string { return p.Content }, nil, nil))
	s.Register("post_permalink", entityField(func(p *content.Post) string { return p.Permalink },
		func(t *content.Term) string { return t.Link },
		func(u *content.User) string { return u.ArchiveURL }))
	s.Register("post_date", postTime(func(p *content.Post) time.Time { return p.Published }))
	s.Register("post_modified", postTime(func(p *content.Post) time.Time {
		if p.Modified.IsZero() {
			return p.Published
		}
		return p.Modified
	}))
	s.Register("post_thumbnail", postThumbnail)
	s.Register("author_name", author(func(u *content.User) string { return u.Name }))
	s.Register("author_url", author(func(u *content.User) string {
		return lookup.FirstNonEmpty(u.URL, u.ArchiveURL)
	}))
	s.Register("site_name", static(func(l *lookup.Service) string { return l.Site().Name }))
	s.Register("site_url", static(func(l *lookup.Service) string { return l.SiteURL() }))
	s.Register("custom_field", customField)
	s.Register("term_list", termList)
	s.Register("loop_field", loopField)

	return s
}

// Register adds or replaces the factory for tag.
func (s *Sources) Register(tag string, f Factory) {
	s.factories[tag] = f
}

// Create builds the source for tag. Unknown tags report false.
func (s *Sources) Create(tag, value, typ string) (Source, bool) {
	f, ok := s.factories[tag]
	if !ok {
		return nil, false
	}
	return f(value, typ), true
}

func entityField(post func(*content.Post) string, term func(*content.Term) string, user func(*content.User) string) Factory {
	return func(string, string) Source {
		return SourceFunc(func(_ *lookup.Service, s Scope) fragment.Value {
			e := s.Entity
			switch {
			case e.Post != nil && post != nil:
				return fragment.NonEmpty(post(e.Post))
			case e.Term != nil && term != nil:
				return fragment.NonEmpty(term(e.Term))
			case e.User != nil && user != nil:
				return fragment.NonEmpty(user(e.User))
			}
			return fragment.Absent()
		})
	}
}

func postTime(get func(*content.Post) time.Time) Factory {
	return func(string, string) Source {
		return SourceFunc(func(_ *lookup.Service, s Scope) fragment.Value {
			if s.Entity.Post == nil {
				return fragment.Absent()
			}
			t := get(s.Entity.Post)
			if t.IsZero() {
				return fragment.Absent()
			}
			return fragment.Str(t.Format(time.RFC3339))
		})
	}
}

// postThumbnail yields the image id for ImageObject properties, which
// cleaning expands, and the image url otherwise.
func postThumbnail(_, typ string) Source {
	return SourceFunc(func(l *lookup.Service, s Scope) fragment.Value {
		p := s.Entity.Post
		if p == nil || p.ThumbnailID == 0 {
			return fragment.Absent()
		}
		if typ == "ImageObject" {
			return fragment.Int(p.ThumbnailID)
		}
		img, ok := l.Image(p.ThumbnailID)
		if !ok {
			return fragment.Absent()
		}
		return fragment.NonEmpty(img.URL)
	})
}

func author(get func(*content.User) string) Factory {
	return func(string, string) Source {
		return SourceFunc(func(l *lookup.Service, s Scope) fragment.Value {
			if u := s.Entity.User; u != nil {
				return fragment.NonEmpty(get(u))
			}
			if p := s.Entity.Post; p != nil {
				if u, ok := l.Repository().User(p.AuthorID); ok {
					return fragment.NonEmpty(get(u))
				}
			}
			return fragment.Absent()
		})
	}
}

func static(get func(*lookup.Service) string) Factory {
	return func(string, string) Source {
		return SourceFunc(func(l *lookup.Service, _ Scope) fragment.Value {
			return fragment.NonEmpty(get(l))
		})
	}
}

// customField reads a gjson path from the entity's custom fields.
func customField(path, _ string) Source {
	return SourceFunc(func(_ *lookup.Service, s Scope) fragment.Value {
		meta := s.Entity.MetaJSON()
		if meta == "" || path == "" {
			return fragment.Absent()
		}
		return fromResult(gjson.Get(meta, path))
	})
}

// termList joins the names of the post's terms in the taxonomy named by
// value.
func termList(taxonomy, _ string) Source {
	return SourceFunc(func(l *lookup.Service, s Scope) fragment.Value {
		p := s.Entity.Post
		if p == nil {
			return fragment.Absent()
		}
		var names []string
		for _, id := range p.TermIDs(taxonomy) {
			if t, ok := l.Repository().Term(id); ok {
				names = append(names, t.Name)
			}
		}
		return fragment.NonEmpty(strings.Join(names, ", "))
	})
}

// loopField reads a gjson path from the current loop item.
func loopField(path, _ string) Source {
	return SourceFunc(func(_ *lookup.Service, s Scope) fragment.Value {
		if !s.Item.Exists() {
			return fragment.Absent()
		}
		if path == "" {
			return fromResult(s.Item)
		}
		return fromResult(s.Item.Get(path))
	})
}
