// Package printer turns a page request into the page's graph document,
// at most once per request.
package printer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AaronLay10/schemagraph/internal/config"
	"github.com/AaronLay10/schemagraph/internal/content"
	"github.com/AaronLay10/schemagraph/internal/customtype"
	"github.com/AaronLay10/schemagraph/internal/events"
	"github.com/AaronLay10/schemagraph/internal/fragment"
	"github.com/AaronLay10/schemagraph/internal/metrics"
	"github.com/AaronLay10/schemagraph/internal/pages"
)

// Kind names the kind of page being rendered.
type Kind string

const (
	KindSingular        Kind = "singular"
	KindFrontPage       Kind = "front_page"
	KindBlogHome        Kind = "blog_home"
	KindPostsPage       Kind = "posts_page"
	KindTaxonomy        Kind = "taxonomy"
	KindAuthor          Kind = "author"
	KindDate            Kind = "date"
	KindPostTypeArchive Kind = "post_type_archive"
	KindSearch          Kind = "search"
	KindShop            Kind = "shop"
	KindNotFound        Kind = "not_found"
)

// Kinds lists every page kind a request may name.
var Kinds = []Kind{
	KindSingular, KindFrontPage, KindBlogHome, KindPostsPage, KindTaxonomy, KindAuthor,
	KindDate, KindPostTypeArchive, KindSearch, KindShop, KindNotFound,
}

// Request is one page render.
type Request struct {
	Kind Kind
	pages.Context
}

// BuildSession carries the per-request state: whether the graph was already
// emitted, and the settings snapshot the request builds with. Create one per
// request and never share it across requests.
type BuildSession struct {
	ID uuid.UUID

	mu       sync.Mutex
	done     bool
	settings *config.Settings
}

func NewBuildSession() *BuildSession {
	return &BuildSession{ID: uuid.New()}
}

// Done reports whether the session already emitted its graph.
func (s *BuildSession) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// claim marks the session done and reports whether the caller got it first.
func (s *BuildSession) claim() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return false
	}
	s.done = true
	return true
}

// snapshot loads settings from store on first use and reuses them after.
func (s *BuildSession) snapshot(ctx context.Context, store config.Store) (*config.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings != nil {
		return s.settings, nil
	}
	settings, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.settings = settings
	return settings, nil
}

// Document is the emitted graph.
type Document struct {
	Graph fragment.Value
}

func (d *Document) MarshalJSON() ([]byte, error) {
	graph := d.Graph
	if !graph.IsList() {
		graph = fragment.ListOf()
	}
	body, err := json.Marshal(graph)
	if err != nil {
		return nil, err
	}
	return []byte(`{"@context":"https://schema.org","@graph":` + string(body) + `}`), nil
}

// Len is the number of top-level nodes.
func (d *Document) Len() int { return d.Graph.Len() }

// Sink receives every emitted document.
type Sink interface {
	Publish(ctx context.Context, kind Kind, req Request, doc []byte) error
}

// Printer renders page requests. It is safe to share across requests; all
// per-request state lives in the BuildSession.
type Printer struct {
	store   config.Store
	repo    content.Repository
	types   func() []customtype.Definition
	metrics *metrics.Collector
	sinks   []Sink
}

// Option configures a Printer.
type Option func(*Printer)

func WithMetrics(c *metrics.Collector) Option { return func(p *Printer) { p.metrics = c } }

// WithSink adds a sink. Every sink receives every emitted document.
func WithSink(s Sink) Option {
	return func(p *Printer) { p.sinks = append(p.sinks, s) }
}

// WithTypes sets the source of custom type definitions, read once per build.
func WithTypes(types func() []customtype.Definition) Option {
	return func(p *Printer) { p.types = types }
}

func New(store config.Store, repo content.Repository, opts ...Option) *Printer {
	p := &Printer{store: store, repo: repo}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Print builds and serializes the graph for req. It returns nil when the
// session already emitted, when the kind has no graph, or when the graph
// is empty. Only settings and sink I/O produce errors.
func (p *Printer) Print(ctx context.Context, session *BuildSession, req Request) (*Document, error) {
	start := time.Now()
	fields := map[string]interface{}{"session": session.ID.String(), "kind": string(req.Kind)}

	if session.Done() {
		events.Emit("debug", "graph.skipped", "graph already emitted for this request", fields)
		p.observe(req.Kind, "skipped", 0, start)
		return nil, nil
	}

	settings, err := session.snapshot(ctx, p.store)
	if err != nil {
		events.Emit("error", "settings.error", "failed to load settings", with(fields, "error", err.Error()))
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	env := pages.NewEnv(settings, p.repo, p.customTypes())
	env.OnCustomType = func(def *customtype.Definition, applied bool) {
		name := "customtype.skipped"
		if applied {
			name = "customtype.matched"
		}
		events.Emit("debug", name, def.Type, with(fields, "custom_type", def.ID))
		if p.metrics != nil {
			p.metrics.ObserveCustomType(applied)
		}
	}

	c := req.Context
	p.fillMembers(req.Kind, &c)

	node := Builder(req.Kind, env, &c)
	if node == nil {
		events.Emit("debug", "graph.skipped", "no graph for this page kind", fields)
		p.observe(req.Kind, "skipped", 0, start)
		return nil, nil
	}

	doc := &Document{Graph: typedOnly(node.Schema())}
	if doc.Len() == 0 {
		events.Emit("debug", "graph.empty", "nothing to emit", fields)
		p.observe(req.Kind, "empty", 0, start)
		return nil, nil
	}

	if !session.claim() {
		events.Emit("debug", "graph.skipped", "graph already emitted for this request", fields)
		p.observe(req.Kind, "skipped", 0, start)
		return nil, nil
	}

	events.Emit("info", "graph.built", "graph emitted", with(fields, "nodes", doc.Len()))
	p.observe(req.Kind, "built", doc.Len(), start)

	if len(p.sinks) > 0 {
		if err := p.publish(ctx, req, doc, fields); err != nil {
			return doc, err
		}
	}
	return doc, nil
}

// publish hands doc to every sink; one failing sink does not stop the rest.
func (p *Printer) publish(ctx context.Context, req Request, doc *Document, fields map[string]interface{}) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode graph: %w", err)
	}

	var errs []error
	for _, sink := range p.sinks {
		err := sink.Publish(ctx, req.Kind, req, b)
		if p.metrics != nil {
			p.metrics.ObserveSink(err)
		}
		if err != nil {
			events.Emit("error", "sink.error", "failed to publish graph", with(fields, "error", err.Error()))
			errs = append(errs, err)
			continue
		}
		events.Emit("info", "sink.published", "graph published", fields)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to publish graph: %w", err)
	}
	return nil
}

func (p *Printer) customTypes() []customtype.Definition {
	if p.types == nil {
		return nil
	}
	return p.types()
}

func (p *Printer) observe(kind Kind, outcome string, nodes int, start time.Time) {
	if p.metrics != nil {
		p.metrics.ObserveBuild(string(kind), outcome, nodes, time.Since(start))
	}
}

// typedOnly keeps the top-level nodes that carry @type.
func typedOnly(v fragment.Value) fragment.Value {
	var out []fragment.Value
	for _, n := range v.Items() {
		if n.IsMap() && n.Has("@type") {
			out = append(out, n)
		}
	}
	return fragment.ListOf(out...)
}

func with(fields map[string]interface{}, key string, value interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out[key] = value
	return out
}
