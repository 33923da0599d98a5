package namespace

import (
	"context"

	"github.com/beam-cloud/dockerfs/pkg/types"
)

type EntryKind int

const (
	// EntryIdentifier is the canonical dot-prefixed file of a resource.
	EntryIdentifier EntryKind = iota
	// EntryLink is a tag or name pointing at an identifier entry.
	EntryLink
	// EntryDirectory is a synthetic level of a hierarchical tag.
	EntryDirectory
	// EntryFile is a name that coincides with its resource identifier.
	EntryFile
)

func (k EntryKind) String() string {
	switch k {
	case EntryIdentifier:
		return "identifier"
	case EntryLink:
		return "link"
	case EntryDirectory:
		return "directory"
	case EntryFile:
		return "file"
	}
	return "unknown"
}

type Entry struct {
	Name string
	Kind EntryKind
}

// ResourceSource is the part of the engine gateway the namespace reads.
type ResourceSource interface {
	List(ctx context.Context, category types.Category, includeAll bool) ([]types.Resource, error)
	Get(ctx context.Context, category types.Category, idOrName string) (*types.Resource, error)
}

// lister turns a full resource listing into root entries plus the link
// table they imply.
type lister func(resources []types.Resource) ([]Entry, *Links)

func listerFor(category types.Category) (lister, error) {
	switch category {
	case types.CategoryImages:
		return listTagged, nil
	case types.CategoryVolumes, types.CategoryContainers:
		return listNamed, nil
	}
	return nil, &types.ErrUnsupported{Op: "list", Path: separator + string(category)}
}

// Builder produces directory listings and owns the link tables they
// publish.
type Builder struct {
	source     ResourceSource
	includeAll types.IncludeAllConfig
	links      *LinkStore
}

func NewBuilder(source ResourceSource, includeAll types.IncludeAllConfig, links *LinkStore) *Builder {
	return &Builder{
		source:     source,
		includeAll: includeAll,
		links:      links,
	}
}

func (b *Builder) Links() *LinkStore {
	return b.links
}

// List returns the entries of a category directory, or of the tag
// directory named by prefix. A listing of the whole category replaces
// its link table; a prefix listing filters the current table and only
// rebuilds it when the category was never listed.
func (b *Builder) List(ctx context.Context, category types.Category, prefix string) ([]Entry, error) {
	prefix = NormalizePrefix(prefix)
	if prefix == "" {
		entries, _, err := b.refresh(ctx, category)
		return entries, err
	}

	links, err := b.current(ctx, category)
	if err != nil {
		return nil, err
	}

	return listUnder(links, prefix), nil
}

// HasPrefix reports whether any resource in the category carries a tag
// below prefix. It reads the live inventory and republishes the table.
func (b *Builder) HasPrefix(ctx context.Context, category types.Category, prefix string) (bool, error) {
	prefix = NormalizePrefix(prefix)
	if prefix == "" {
		return true, nil
	}

	_, links, err := b.refresh(ctx, category)
	if err != nil {
		return false, err
	}

	return links.HasPrefix(prefix), nil
}

func (b *Builder) current(ctx context.Context, category types.Category) (*Links, error) {
	if links := b.links.Load(category); links != nil {
		return links, nil
	}
	_, links, err := b.refresh(ctx, category)
	return links, err
}

func (b *Builder) refresh(ctx context.Context, category types.Category) ([]Entry, *Links, error) {
	list, err := listerFor(category)
	if err != nil {
		return nil, nil, err
	}

	resources, err := b.source.List(ctx, category, b.includeAll.For(category))
	if err != nil {
		return nil, nil, err
	}

	entries, links := list(resources)
	b.links.Publish(category, links)
	return entries, links, nil
}

type entrySet struct {
	entries []Entry
	seen    map[string]struct{}
}

func newEntrySet() *entrySet {
	return &entrySet{seen: map[string]struct{}{}}
}

func (s *entrySet) add(name string, kind EntryKind) {
	if name == "" {
		return
	}
	if _, ok := s.seen[name]; ok {
		return
	}
	s.seen[name] = struct{}{}
	s.entries = append(s.entries, Entry{Name: name, Kind: kind})
}

// listTagged emits each identifier entry, single-segment tags as links,
// and the first segment of every nested tag as a directory.
func listTagged(resources []types.Resource) ([]Entry, *Links) {
	set := newEntrySet()
	links := newLinksBuilder()

	for i := range resources {
		res := &resources[i]
		set.add(res.EntryName(), EntryIdentifier)

		for _, tag := range res.Names {
			segment, isDir, ok := nextSegment(tag, "")
			if !ok {
				continue
			}

			links.set(tag, linkTarget(tag, res))
			if isDir {
				set.add(segment, EntryDirectory)
			} else {
				set.add(segment, EntryLink)
			}
		}
	}

	return set.entries, links.build()
}

// listNamed emits every name followed by the identifier entry. A name
// equal to the identifier is a plain file rather than a link.
func listNamed(resources []types.Resource) ([]Entry, *Links) {
	set := newEntrySet()
	links := newLinksBuilder()

	for i := range resources {
		res := &resources[i]
		for _, name := range res.Names {
			if name == "" {
				continue
			}
			if name == res.ID || name == res.ShortID() {
				set.add(name, EntryFile)
				continue
			}
			links.set(name, linkTarget(name, res))
			set.add(name, EntryLink)
		}
		set.add(res.EntryName(), EntryIdentifier)
	}

	return set.entries, links.build()
}

func listUnder(links *Links, prefix string) []Entry {
	set := newEntrySet()
	links.Under(prefix, func(name, _ string) bool {
		segment, isDir, ok := nextSegment(name, prefix)
		if !ok {
			return true
		}
		if isDir {
			set.add(segment, EntryDirectory)
		} else {
			set.add(segment, EntryLink)
		}
		return true
	})
	return set.entries
}
