package article

// Article is the parsed metadata of one blog post. It is built once during
// preload and immutable for the process lifetime; re-fetching a slug does
// not touch the in-memory copy.
type Article struct {
	// Slug is the URL-safe identifier, e.g. "fast-markdown".
	Slug string

	// Title is the display title from front matter.
	Title string

	// Summary is the one-line teaser from front matter.
	Summary string

	// Author is the author key, resolved to display metadata by config.
	Author string

	// Date is seconds since epoch, normalized from the YYYY/MM/DD source
	// string at midnight local time.
	Date int64

	// Tags is the ordered tag list from front matter.
	Tags []string

	// Words is the computed word count of the article body.
	Words int
}

// Index is the process-wide article index, ordered by the configured slug
// list (most-recent-first). It is populated once at startup and read-only
// afterwards.
type Index struct {
	order  []string
	bySlug map[string]*Article
}

// NewIndex creates an Index preserving the given slug order.
func NewIndex(slugs []string) *Index {
	order := make([]string, len(slugs))
	copy(order, slugs)
	return &Index{
		order:  order,
		bySlug: make(map[string]*Article, len(slugs)),
	}
}

// Add stores an article under its slug. Later Adds for the same slug are
// ignored; the first parsed article wins for the process lifetime.
func (i *Index) Add(a *Article) {
	if _, exists := i.bySlug[a.Slug]; exists {
		return
	}
	i.bySlug[a.Slug] = a
}

// Get returns the article for slug, or nil if unknown.
func (i *Index) Get(slug string) *Article {
	return i.bySlug[slug]
}

// Latest returns the most recent article (first configured slug), or nil if
// the index is empty.
func (i *Index) Latest() *Article {
	for _, slug := range i.order {
		if a := i.bySlug[slug]; a != nil {
			return a
		}
	}
	return nil
}

// All returns articles in configured order, skipping slugs that never
// resolved (preload fails fast, so in practice none are skipped).
func (i *Index) All() []*Article {
	out := make([]*Article, 0, len(i.order))
	for _, slug := range i.order {
		if a := i.bySlug[slug]; a != nil {
			out = append(out, a)
		}
	}
	return out
}

// Len returns the number of indexed articles.
func (i *Index) Len() int {
	return len(i.bySlug)
}
