package properties

import (
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/AaronLay10/schemagraph/internal/fragment"
	"github.com/AaronLay10/schemagraph/internal/lookup"
)

var (
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	spacePattern = regexp.MustCompile(`\s+`)
	phonePattern = regexp.MustCompile(`[^0-9+]`)
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// Clean formats a source's raw value for its declared type. Lists are
// cleaned item by item.
func Clean(l *lookup.Service, typ string, v fragment.Value) fragment.Value {
	if v.IsList() {
		var items []fragment.Value
		for _, it := range v.Items() {
			items = append(items, Clean(l, typ, it))
		}
		return fragment.ListOf(items...)
	}
	if !v.IsScalar() {
		return v
	}

	s := strings.TrimSpace(v.String())
	switch typ {
	case "Text":
		return fragment.NonEmpty(stripTags(s))
	case "TextFull", "URL":
		return fragment.NonEmpty(s)
	case "Email":
		return fragment.NonEmpty(strings.TrimPrefix(s, "mailto:"))
	case "Phone":
		return fragment.NonEmpty(phonePattern.ReplaceAllString(s, ""))
	case "DateTime":
		return fragment.NonEmpty(formatDate(s))
	case "ImageObject":
		if id, err := strconv.Atoi(s); err == nil {
			return fragment.Flatten(l.ImageObject(id, ""))
		}
		if s == "" {
			return fragment.Absent()
		}
		return fragment.Flatten(fragment.NewMap().
			Set("@type", fragment.Str("ImageObject")).
			Set("url", fragment.Str(s)))
	case "ImageURL":
		if id, err := strconv.Atoi(s); err == nil {
			img, ok := l.Image(id)
			if !ok {
				return fragment.Absent()
			}
			return fragment.NonEmpty(img.URL)
		}
		return fragment.NonEmpty(s)
	}
	return v
}

func stripTags(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
}

// formatDate rewrites recognized dates as RFC 3339 and passes anything
// else through.
func formatDate(s string) string {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(time.RFC3339)
		}
	}
	return s
}
