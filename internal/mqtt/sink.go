package mqtt

import (
	"context"
	"net/url"
	"strings"

	"github.com/AaronLay10/schemagraph/internal/printer"
)

// Publisher sends one message. *Client implements it.
type Publisher interface {
	Publish(topic string, retained bool, payload []byte) error
}

// GraphSink publishes every emitted graph, retained, on
// <prefix>/graphs/<kind>/<slug>.
type GraphSink struct {
	pub    Publisher
	prefix string
}

func NewGraphSink(pub Publisher, prefix string) *GraphSink {
	return &GraphSink{pub: pub, prefix: strings.TrimSuffix(prefix, "/")}
}

// Publish satisfies printer.Sink.
func (s *GraphSink) Publish(ctx context.Context, kind printer.Kind, req printer.Request, doc []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.pub.Publish(s.Topic(kind, req), true, doc)
}

// Topic returns where the graph of req is published.
func (s *GraphSink) Topic(kind printer.Kind, req printer.Request) string {
	return s.prefix + "/graphs/" + string(kind) + "/" + slug(req)
}

// slug names the page by its url path, or "index" for the root. MQTT
// wildcards never appear in it.
func slug(req printer.Request) string {
	raw := req.URL
	if raw == "" {
		switch e := req.Entity; {
		case e.Post != nil:
			raw = e.Post.Permalink
		case e.Term != nil:
			raw = e.Term.Link
		case e.User != nil:
			raw = e.User.ArchiveURL
		}
	}

	path := raw
	if u, err := url.Parse(raw); err == nil {
		path = u.Path
		if u.RawQuery != "" {
			path += "/" + u.RawQuery
		}
	}
	path = strings.Trim(path, "/")
	if path == "" {
		return "index"
	}
	return strings.NewReplacer("+", "_", "#", "_", "=", "_", "&", "_").Replace(path)
}
