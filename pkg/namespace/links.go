package namespace

import (
	"strings"
	"sync/atomic"

	"github.com/beam-cloud/dockerfs/pkg/types"
	"github.com/tidwall/btree"
)

// Links is an immutable snapshot of one category's symbolic-link table,
// mapping a tag name to its relative target. A nil *Links is an empty
// table.
type Links struct {
	entries btree.Map[string, string]
}

type linksBuilder struct {
	links *Links
}

func newLinksBuilder() *linksBuilder {
	return &linksBuilder{links: &Links{}}
}

func (b *linksBuilder) set(name, target string) {
	b.links.entries.Set(name, target)
}

// build hands over the table. The builder must not be used afterwards.
func (b *linksBuilder) build() *Links {
	links := b.links
	b.links = nil
	return links
}

// NewLinks builds a snapshot from a plain map.
func NewLinks(targets map[string]string) *Links {
	b := newLinksBuilder()
	for name, target := range targets {
		b.set(name, target)
	}
	return b.build()
}

func (l *Links) Target(name string) (string, bool) {
	if l == nil {
		return "", false
	}
	return l.entries.Get(name)
}

func (l *Links) Contains(name string) bool {
	_, ok := l.Target(name)
	return ok
}

func (l *Links) Len() int {
	if l == nil {
		return 0
	}
	return l.entries.Len()
}

// Names returns every tag name in ascending order.
func (l *Links) Names() []string {
	if l == nil {
		return nil
	}
	names := make([]string, 0, l.entries.Len())
	l.entries.Scan(func(name, _ string) bool {
		names = append(names, name)
		return true
	})
	return names
}

// Under calls fn in ascending order for every tag below the
// separator-terminated prefix, stopping early when fn returns false.
func (l *Links) Under(prefix string, fn func(name, target string) bool) {
	if l == nil {
		return
	}
	l.entries.Ascend(prefix, func(name, target string) bool {
		if !strings.HasPrefix(name, prefix) {
			return false
		}
		return fn(name, target)
	})
}

// HasPrefix reports whether any tag lives below the separator-terminated
// prefix.
func (l *Links) HasPrefix(prefix string) bool {
	found := false
	l.Under(prefix, func(string, string) bool {
		found = true
		return false
	})
	return found
}

// Equal compares two snapshots entry by entry.
func (l *Links) Equal(other *Links) bool {
	if l.Len() != other.Len() {
		return false
	}
	if l == nil {
		return true
	}
	equal := true
	l.entries.Scan(func(name, target string) bool {
		t, ok := other.Target(name)
		equal = ok && t == target
		return equal
	})
	return equal
}

// LinkStore holds the latest published table per category. Publishing
// swaps the whole table, so readers holding an older snapshot keep a
// consistent view.
type LinkStore struct {
	tables map[types.Category]*atomic.Pointer[Links]
}

func NewLinkStore() *LinkStore {
	tables := make(map[types.Category]*atomic.Pointer[Links], len(types.Categories))
	for _, c := range types.Categories {
		tables[c] = &atomic.Pointer[Links]{}
	}
	return &LinkStore{tables: tables}
}

// Load returns nil when the category has never been listed.
func (s *LinkStore) Load(category types.Category) *Links {
	table, ok := s.tables[category]
	if !ok {
		return nil
	}
	return table.Load()
}

func (s *LinkStore) Publish(category types.Category, links *Links) {
	if table, ok := s.tables[category]; ok {
		table.Store(links)
	}
}

// View captures the current table of every category.
func (s *LinkStore) View() View {
	v := View{}
	for c, table := range s.tables {
		if links := table.Load(); links != nil {
			v[c] = links
		}
	}
	return v
}

// View is the set of link tables a single filesystem call works against.
type View map[types.Category]*Links

func (v View) Links(category types.Category) *Links {
	return v[category]
}
