package printer

import (
	"errors"
	"fmt"

	"github.com/AaronLay10/schemagraph/internal/config"
	"github.com/AaronLay10/schemagraph/internal/content"
	"github.com/AaronLay10/schemagraph/internal/pages"
)

// ErrNotFound is returned when a target names content the repository
// does not have.
var ErrNotFound = errors.New("content not found")

// Target names a page by ids rather than loaded content. It is what the
// command line and render requests carry.
type Target struct {
	Kind     Kind   `json:"kind" validate:"required,oneof=singular front_page blog_home posts_page taxonomy author date post_type_archive search shop not_found"`
	ID       int    `json:"id,omitempty" validate:"gte=0"`
	URL      string `json:"url,omitempty" validate:"omitempty,url"`
	Query    string `json:"query,omitempty"`
	Year     int    `json:"year,omitempty" validate:"gte=0"`
	Month    int    `json:"month,omitempty" validate:"gte=0,lte=12"`
	Day      int    `json:"day,omitempty" validate:"gte=0,lte=31"`
	PostType string `json:"post_type,omitempty"`
	Comments bool   `json:"comments,omitempty"`
}

// Resolve loads the content t names and returns the request to print.
func (t Target) Resolve(repo content.Repository) (Request, error) {
	if err := config.ValidateStruct(&t); err != nil {
		return Request{}, err
	}

	req := Request{Kind: t.Kind, Context: pages.Context{
		URL:             t.URL,
		Query:           t.Query,
		Date:            pages.DateRange{Year: t.Year, Month: t.Month, Day: t.Day},
		PostType:        t.PostType,
		IncludeComments: t.Comments,
	}}

	switch t.Kind {
	case KindSingular, KindPostsPage:
		post, ok := repo.Post(t.ID)
		if !ok && t.Kind == KindSingular {
			return Request{}, fmt.Errorf("%w: post %d", ErrNotFound, t.ID)
		}
		if ok {
			req.Entity = content.PostEntity(post)
		}
	case KindFrontPage:
		id := t.ID
		if id == 0 {
			id = repo.Site().FrontPageID
		}
		if post, ok := repo.Post(id); ok {
			req.Entity = content.PostEntity(post)
		}
	case KindTaxonomy:
		term, ok := repo.Term(t.ID)
		if !ok {
			return Request{}, fmt.Errorf("%w: term %d", ErrNotFound, t.ID)
		}
		req.Entity = content.TermEntity(term)
	case KindAuthor:
		user, ok := repo.User(t.ID)
		if !ok {
			return Request{}, fmt.Errorf("%w: user %d", ErrNotFound, t.ID)
		}
		req.Entity = content.UserEntity(user)
	case KindDate:
		if t.Year == 0 {
			return Request{}, errors.New("date archive needs a year")
		}
	case KindPostTypeArchive:
		if !repo.IsPostType(t.PostType) {
			return Request{}, fmt.Errorf("%w: post type %q", ErrNotFound, t.PostType)
		}
	}
	return req, nil
}
