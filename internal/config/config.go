package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrUnsupportedVersion is returned for settings documents of an unknown version.
var ErrUnsupportedVersion = errors.New("unsupported settings version")

// Settings is a read-only snapshot of every option a graph build consults.
// A build takes one snapshot and never re-reads the store.
type Settings struct {
	Version int           `yaml:"version" json:"version"`
	Schema  SchemaOptions `yaml:"schema" json:"schema"`
	Social  SocialOptions `yaml:"social" json:"social"`
}

// SchemaOptions are the structured-data toggles and identities. Every field
// is optional; the zero value disables a feature.
type SchemaOptions struct {
	// publisher identity: "organization" (default) or "person"
	Type               string `yaml:"type" json:"type" validate:"omitempty,oneof=organization person"`
	OrganizationName   string `yaml:"organization_name" json:"organization_name"`
	OrganizationLogoID int    `yaml:"organization_logo" json:"organization_logo"`
	PublishingPersonID int    `yaml:"publishing_person" json:"publishing_person" validate:"gte=0"`

	// OutputPageID is the page that carries the full publisher node; 0 is the front page.
	OutputPageID   int `yaml:"output_page" json:"output_page" validate:"gte=0"`
	AboutPageID    int `yaml:"about_page" json:"about_page" validate:"gte=0"`
	ContactPageID  int `yaml:"contact_page" json:"contact_page" validate:"gte=0"`
	DefaultImageID int `yaml:"default_image" json:"default_image" validate:"gte=0"`

	ArticleType       string `yaml:"article_type" json:"article_type" validate:"omitempty,oneof=Article NewsArticle BlogPosting"`
	ArchiveMainEntity string `yaml:"archive_main_entity" json:"archive_main_entity" validate:"omitempty,oneof=itemlist posts"`
	MenuLocation      string `yaml:"menu_location" json:"menu_location"`

	EnableHeader           bool `yaml:"enable_header" json:"enable_header"`
	EnableFooter           bool `yaml:"enable_footer" json:"enable_footer"`
	EnableComments         bool `yaml:"enable_comments" json:"enable_comments"`
	EnableSearch           bool `yaml:"enable_search" json:"enable_search"`
	EnableShop             bool `yaml:"enable_shop" json:"enable_shop"`
	EnableHomepage         bool `yaml:"enable_homepage" json:"enable_homepage"`
	EnableBlogPage         bool `yaml:"enable_blog_page" json:"enable_blog_page"`
	EnableAuthorArchives   bool `yaml:"enable_author_archives" json:"enable_author_archives"`
	EnableDateArchives     bool `yaml:"enable_date_archives" json:"enable_date_archives"`
	EnableTaxonomyArchives bool `yaml:"enable_taxonomy_archives" json:"enable_taxonomy_archives"`
	EnablePostTypeArchives bool `yaml:"enable_post_type_archives" json:"enable_post_type_archives"`
	AuthorGravatar         bool `yaml:"author_gravatar" json:"author_gravatar"`

	ExcludedTaxonomies []string `yaml:"excluded_taxonomies" json:"excluded_taxonomies"`
	ExcludedPostTypes  []string `yaml:"excluded_post_types" json:"excluded_post_types"`
}

// PublisherIsPerson reports whether the site publishes as a person.
func (o SchemaOptions) PublisherIsPerson() bool {
	return o.Type == "person"
}

// ArticleSchemaType returns the configured article type, defaulting to "Article".
func (o SchemaOptions) ArticleSchemaType() string {
	if o.ArticleType == "" {
		return "Article"
	}
	return o.ArticleType
}

// ListsPosts reports whether archive main entities embed post summaries
// instead of an ItemList of URLs.
func (o SchemaOptions) ListsPosts() bool {
	return o.ArchiveMainEntity == "posts"
}

// TaxonomyArchiveEnabled reports whether taxonomy archives of taxonomy get
// the full collection graph.
func (o SchemaOptions) TaxonomyArchiveEnabled(taxonomy string) bool {
	return o.EnableTaxonomyArchives && !contains(o.ExcludedTaxonomies, taxonomy)
}

// PostTypeArchiveEnabled reports whether the archive of postType gets the
// full collection graph.
func (o SchemaOptions) PostTypeArchiveEnabled(postType string) bool {
	return o.EnablePostTypeArchives && !contains(o.ExcludedPostTypes, postType)
}

// SocialOptions are the site-wide social profile URLs.
type SocialOptions struct {
	Facebook  string   `yaml:"facebook" json:"facebook" validate:"omitempty,url"`
	Twitter   string   `yaml:"twitter" json:"twitter" validate:"omitempty,url"`
	Instagram string   `yaml:"instagram" json:"instagram" validate:"omitempty,url"`
	LinkedIn  string   `yaml:"linkedin" json:"linkedin" validate:"omitempty,url"`
	YouTube   string   `yaml:"youtube" json:"youtube" validate:"omitempty,url"`
	Pinterest string   `yaml:"pinterest" json:"pinterest" validate:"omitempty,url"`
	Other     []string `yaml:"other" json:"other" validate:"dive,url"`
}

// Profiles returns the configured profile URLs in a stable order.
func (s SocialOptions) Profiles() []string {
	var out []string
	for _, u := range []string{s.Facebook, s.Twitter, s.Instagram, s.LinkedIn, s.YouTube, s.Pinterest} {
		if u != "" {
			out = append(out, u)
		}
	}
	for _, u := range s.Other {
		if u != "" {
			out = append(out, u)
		}
	}
	return out
}

// LoadSettings reads and validates a YAML settings file.
func LoadSettings(path string) (*Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSettings(b)
}

// ParseSettings decodes and validates a YAML settings document.
func ParseSettings(b []byte) (*Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, err
	}

	if s.Version != 1 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, s.Version)
	}

	if err := Validate(&s); err != nil {
		return nil, err
	}

	return &s, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
