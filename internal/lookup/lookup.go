// Package lookup is the leaf every graph piece reads from: the build's
// settings snapshot, the content repository and canonical node ids.
package lookup

import (
	"fmt"
	"strings"
	"sync"

	"github.com/AaronLay10/schemagraph/internal/config"
	"github.com/AaronLay10/schemagraph/internal/content"
	"github.com/AaronLay10/schemagraph/internal/fragment"
)

// Service answers read-only questions for one graph build. It is created
// per build and discarded with it.
type Service struct {
	settings *config.Settings
	repo     content.Repository

	mu     sync.Mutex
	images map[int]*content.Image
}

// New returns a Service over a settings snapshot. A nil snapshot behaves
// like all-defaults settings.
func New(settings *config.Settings, repo content.Repository) *Service {
	if settings == nil {
		settings = &config.Settings{Version: 1}
	}
	return &Service{
		settings: settings,
		repo:     repo,
		images:   make(map[int]*content.Image),
	}
}

func (s *Service) Settings() *config.Settings { return s.settings }
func (s *Service) Options() config.SchemaOptions { return s.settings.Schema }
func (s *Service) Repository() content.Repository { return s.repo }
func (s *Service) Site() content.Site { return s.repo.Site() }

// SiteURL is the site root with exactly one trailing slash.
func (s *Service) SiteURL() string {
	return strings.TrimRight(s.repo.Site().URL, "/") + "/"
}

// ID builds a node id from a page url and an anchor name.
func ID(url, name string) string {
	return url + "#" + name
}

func (s *Service) WebsiteID() string { return ID(s.SiteURL(), "website") }
func (s *Service) MenuID() string { return ID(s.SiteURL(), "navigation") }
func (s *Service) HeaderID() string { return ID(s.SiteURL(), "header") }
func (s *Service) FooterID() string { return ID(s.SiteURL(), "footer") }

func (s *Service) OrganizationID() string { return ID(s.SiteURL(), "organization") }

// PersonID is the id of a user's Person node.
func (s *Service) PersonID(userID int) string {
	return fmt.Sprintf("%s#/schema/person/%d", s.SiteURL(), userID)
}

// PublisherID points at the Organization, or at the publishing person when
// the site publishes as a person.
func (s *Service) PublisherID() string {
	if s.Options().PublisherIsPerson() {
		return s.PersonID(s.Options().PublishingPersonID)
	}
	return s.OrganizationID()
}

func WebpageID(url string) string { return ID(url, "webpage") }
func BreadcrumbID(url string) string { return ID(url, "breadcrumb") }
func ArticleID(url string) string { return ID(url, "article") }
func ImageID(url string) string { return ID(url, "primaryimage") }

// Image returns image metadata, memoized for the build.
func (s *Service) Image(id int) (*content.Image, bool) {
	if id <= 0 {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if img, ok := s.images[id]; ok {
		return img, img != nil
	}
	img, ok := s.repo.Image(id)
	if !ok {
		img = nil
	}
	s.images[id] = img
	return img, img != nil
}

// ImageObject renders an image as an ImageObject node carrying nodeID, or
// Absent when the image is unknown.
func (s *Service) ImageObject(id int, nodeID string) fragment.Node {
	img, ok := s.Image(id)
	if !ok {
		return fragment.Absent()
	}

	m := fragment.NewMap().
		Set("@type", fragment.Str("ImageObject")).
		Set("@id", fragment.NonEmpty(nodeID)).
		Set("url", fragment.Str(img.URL)).
		Set("contentUrl", fragment.Str(img.URL))
	if img.Width > 0 {
		m.Set("width", fragment.Int(img.Width))
	}
	if img.Height > 0 {
		m.Set("height", fragment.Int(img.Height))
	}
	m.Set("caption", fragment.NonEmpty(FirstNonEmpty(img.Caption, img.Alt)))
	return m
}

// FirstNonEmpty returns the first non-empty string.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// FirstImage returns the first id that names a known image, or 0.
func (s *Service) FirstImage(ids ...int) int {
	for _, id := range ids {
		if _, ok := s.Image(id); ok {
			return id
		}
	}
	return 0
}

// SameAs is the site's social profile list as a node.
func (s *Service) SameAs() fragment.Node {
	return StringList(s.settings.Social.Profiles())
}

// StringList renders strings as a list node; an empty input is Absent.
func StringList(items []string) fragment.Node {
	var l fragment.List
	for _, it := range items {
		if it != "" {
			l = append(l, fragment.Str(it))
		}
	}
	if len(l) == 0 {
		return fragment.Absent()
	}
	return l
}

// PublishingPerson returns the user the site publishes as, when the
// publisher is a person.
func (s *Service) PublishingPerson() (*content.User, bool) {
	if !s.Options().PublisherIsPerson() {
		return nil, false
	}
	return s.repo.User(s.Options().PublishingPersonID)
}

// OutputPageID is the page that carries the full publisher node. It
// defaults to the static front page.
func (s *Service) OutputPageID() int {
	if id := s.Options().OutputPageID; id > 0 {
		return id
	}
	return s.repo.Site().FrontPageID
}

// IsOutputPage reports whether the current page carries the full publisher
// node. With no output page configured the front page does.
func (s *Service) IsOutputPage(entity content.Entity, isFrontPage bool) bool {
	id := s.OutputPageID()
	if id == 0 {
		return isFrontPage
	}
	return entity.Post != nil && entity.Post.ID == id
}
