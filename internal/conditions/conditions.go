// Package conditions decides whether a page satisfies a rule set: an OR of
// groups, each an AND of {lhs, operator, rhs} rules.
package conditions

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AaronLay10/schemagraph/internal/content"
)

const (
	OpEqual    = "="
	OpNotEqual = "!="
)

// Rule compares a context-derived value (LHS) against a literal (RHS).
type Rule struct {
	LHS      string `yaml:"lhs" json:"lhs" validate:"required"`
	Operator string `yaml:"operator" json:"operator" validate:"omitempty,oneof== !="`
	RHS      any    `yaml:"rhs" json:"rhs"`
}

// Group is satisfied when all of its rules hold.
type Group []Rule

// RuleSet is satisfied when any group is.
type RuleSet []Group

// Context is what an LHS handler reads.
type Context struct {
	Entity      content.Entity
	IsFrontPage bool
	Repo        content.Repository
}

// Handler resolves an LHS tag to a string, an int, a bool or a list of ids.
// "" means the context has no value for the tag.
type Handler func(c Context) any

// Evaluator holds the LHS dispatch table. Build it once and share it.
type Evaluator struct {
	repo     content.Repository
	handlers map[string]Handler
}

// NewEvaluator returns an evaluator with the built-in LHS tags registered.
func NewEvaluator(repo content.Repository) *Evaluator {
	e := &Evaluator{repo: repo, handlers: make(map[string]Handler)}
	e.Register("post_type", postType)
	e.Register("post_category", termsIn("category"))
	e.Register("post_tag", termsIn("post_tag"))
	e.Register("post_format", postFormat)
	e.Register("page_template", pageTemplate)
	e.Register("author_role", authorRoles)
	e.Register("product_type", productType)
	e.Register("show_globally", func(Context) any { return true })
	e.Register("homepage", func(c Context) any { return c.IsFrontPage })
	return e
}

// Register adds or replaces the handler for tag.
func (e *Evaluator) Register(tag string, h Handler) {
	e.handlers[tag] = h
}

// Met reports whether rules hold for the page. Groups whose rules were all
// skipped take no part in the result, so a rule set made only of such
// groups is not met.
func (e *Evaluator) Met(rules RuleSet, entity content.Entity, isFrontPage bool) bool {
	c := Context{Entity: entity, IsFrontPage: isFrontPage, Repo: e.repo}
	for _, g := range rules {
		result, counted := e.group(g, c)
		if counted && result {
			return true
		}
	}
	return false
}

// group evaluates one AND group. counted is false when every rule was
// skipped. A rule whose lhs is a boolean decides the group on its own,
// whatever the rules before it returned.
func (e *Evaluator) group(g Group, c Context) (result, counted bool) {
	result = true
	for _, r := range g {
		lhs := e.Resolve(r.LHS, c)
		if b, ok := lhs.(bool); ok {
			return b, true
		}

		rhs := coerce(r.RHS)
		if blank(lhs) && blank(rhs) {
			continue
		}

		counted = true
		if !compare(lhs, r.Operator, rhs) {
			result = false
		}
	}
	return result, counted
}

// Resolve returns the value of tag for c. Unknown tags resolve to "".
func (e *Evaluator) Resolve(tag string, c Context) any {
	if h, ok := e.handlers[tag]; ok {
		return h(c)
	}
	if c.Repo == nil {
		return ""
	}
	if c.Repo.IsTaxonomy(tag) {
		return termsIn(tag)(c)
	}
	if c.Repo.IsPostType(tag) {
		if p := c.Entity.Post; p != nil && p.Type == tag {
			return p.ID
		}
	}
	return ""
}

func compare(lhs any, op string, rhs any) bool {
	var eq bool
	switch l := lhs.(type) {
	case []int:
		for _, id := range l {
			if equal(id, rhs) {
				eq = true
				break
			}
		}
	case []string:
		for _, s := range l {
			if equal(coerce(s), rhs) {
				eq = true
				break
			}
		}
	default:
		eq = equal(coerce(lhs), rhs)
	}

	if op == OpNotEqual {
		return !eq
	}
	return eq
}

func equal(a, b any) bool {
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// coerce turns numeric-looking strings into ints.
func coerce(v any) any {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
		return t
	case int64:
		return int(t)
	case float64:
		if t == float64(int(t)) {
			return int(t)
		}
	}
	return v
}

func blank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []int:
		return len(t) == 0
	case []string:
		return len(t) == 0
	}
	return false
}

func postType(c Context) any {
	if p := c.Entity.Post; p != nil {
		return p.Type
	}
	return ""
}

// termsIn lists the post's term ids in taxonomy, or the term itself when
// the page is an archive of that taxonomy.
func termsIn(taxonomy string) Handler {
	return func(c Context) any {
		switch {
		case c.Entity.Post != nil:
			return c.Entity.Post.TermIDs(taxonomy)
		case c.Entity.Term != nil && c.Entity.Term.Taxonomy == taxonomy:
			return []int{c.Entity.Term.ID}
		}
		return ""
	}
}

func postFormat(c Context) any {
	p := c.Entity.Post
	if p == nil {
		return ""
	}
	if p.Format == "" && p.Type == "post" {
		return "standard"
	}
	return p.Format
}

func pageTemplate(c Context) any {
	if p := c.Entity.Post; p != nil {
		return p.Template
	}
	return ""
}

func authorRoles(c Context) any {
	if u := c.Entity.User; u != nil {
		return u.Roles
	}
	if p := c.Entity.Post; p != nil && c.Repo != nil {
		if u, ok := c.Repo.User(p.AuthorID); ok {
			return u.Roles
		}
	}
	return ""
}

func productType(c Context) any {
	if p := c.Entity.Post; p != nil && p.Type == "product" {
		return p.ProductType
	}
	return ""
}
