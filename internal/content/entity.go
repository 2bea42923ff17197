package content

// EntityKind names what an Entity wraps.
type EntityKind string

const (
	KindSite EntityKind = "site"
	KindPost EntityKind = "post"
	KindTerm EntityKind = "term"
	KindUser EntityKind = "user"
)

// Entity is the page's context object: one content item, term or user, or
// none at all for site-level pages. At most one field is set.
type Entity struct {
	Post *Post
	Term *Term
	User *User
}

func PostEntity(p *Post) Entity { return Entity{Post: p} }
func TermEntity(t *Term) Entity { return Entity{Term: t} }
func UserEntity(u *User) Entity { return Entity{User: u} }
func SiteEntity() Entity { return Entity{} }

// Kind reports which variant e holds.
func (e Entity) Kind() EntityKind {
	switch {
	case e.Post != nil:
		return KindPost
	case e.Term != nil:
		return KindTerm
	case e.User != nil:
		return KindUser
	default:
		return KindSite
	}
}

// MetaJSON returns the entity's custom fields as JSON; only posts carry them.
func (e Entity) MetaJSON() string {
	return e.Post.MetaJSON()
}
