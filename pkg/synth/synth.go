// Package synth derives stat attributes for projected entries from the
// engine's partial metadata.
package synth

import (
	"context"
	"strings"
	"time"

	"github.com/beam-cloud/dockerfs/pkg/attr"
	"github.com/beam-cloud/dockerfs/pkg/namespace"
	"github.com/beam-cloud/dockerfs/pkg/types"
)

const (
	fileMode = attr.S_IFREG | attr.ReadAll
	dirMode  = attr.S_IFDIR | attr.ReadAll | attr.ExecAll
)

type Source interface {
	List(ctx context.Context, category types.Category, includeAll bool) ([]types.Resource, error)
	AggregateSizes(ctx context.Context) (map[string]int64, error)
}

type Synthesizer struct {
	source     Source
	config     types.FilesystemConfig
	includeAll types.IncludeAllConfig
}

func NewSynthesizer(source Source, config types.FilesystemConfig, includeAll types.IncludeAllConfig) *Synthesizer {
	if config.PlaceholderSize == 0 {
		config.PlaceholderSize = 1000
	}
	return &Synthesizer{
		source:     source,
		config:     config,
		includeAll: includeAll,
	}
}

func (s *Synthesizer) base(mode uint32, nlink uint32) attr.Attr {
	a := attr.Attr{
		Mode:  mode,
		Nlink: nlink,
		Uid:   s.config.Uid,
		Gid:   s.config.Gid,
		Size:  s.config.PlaceholderSize,
	}
	a.SetTimes(s.config.Epoch)
	return a
}

// Root is the top-level directory holding one entry per category.
func (s *Synthesizer) Root() attr.Attr {
	return s.base(dirMode, uint32(2+len(types.Categories)))
}

// ForResource builds the attributes of a single entry. A name found in
// links turns the entry into a symbolic link sized by its link text.
func (s *Synthesizer) ForResource(ctx context.Context, res *types.Resource, name string, links *namespace.Links) (attr.Attr, error) {
	a := s.base(fileMode, 1)
	a.SetTimes(s.createdAt(res))

	if name != "" && !strings.HasPrefix(name, types.IdentifierMarker) {
		if target, ok := links.Target(name); ok {
			a = a.WithType(attr.S_IFLNK)
			a.Size = uint64(len(target))
			return a, nil
		}
	}

	sizes := &sizeLookup{source: s.source}
	size, err := sizes.of(ctx, res)
	if err != nil {
		return attr.Attr{}, err
	}
	if size > 0 {
		a.Size = uint64(size)
	}

	return a, nil
}

// ForCategory aggregates the members of a category directory, or of the
// tag directory named by prefix.
func (s *Synthesizer) ForCategory(ctx context.Context, category types.Category, prefix string) (attr.Attr, error) {
	resources, err := s.source.List(ctx, category, s.includeAll.For(category))
	if err != nil {
		return attr.Attr{}, err
	}

	prefix = namespace.NormalizePrefix(prefix)
	sizes := &sizeLookup{source: s.source}

	latest := s.config.Epoch
	var (
		total int64
		count uint32
	)
	for i := range resources {
		res := &resources[i]
		if prefix != "" && !res.HasNamePrefix(prefix) {
			continue
		}
		count++

		if t := s.createdAt(res); t.After(latest) {
			latest = t
		}

		size, err := sizes.of(ctx, res)
		if err != nil {
			return attr.Attr{}, err
		}
		total += size
	}

	if prefix != "" && count == 0 {
		return attr.Attr{}, &types.ErrResourceNotFound{Category: category, Name: strings.TrimSuffix(prefix, "/")}
	}

	a := s.base(dirMode, 2)
	a.SetTimes(latest)
	if total > 0 {
		a.Size = uint64(total)
	}
	if s.config.CountMembersInNlink() {
		a.Nlink += count
	}
	if s.config.ReportBirthtime() {
		a.Birthtime = latest
	}

	return a, nil
}

// createdAt falls back to the configured epoch when the engine reported
// no usable creation time.
func (s *Synthesizer) createdAt(res *types.Resource) time.Time {
	if res.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, res.CreatedAt); err == nil {
			return t
		}
	}
	if res.CreatedUnix > 0 {
		return time.Unix(res.CreatedUnix, 0)
	}
	return s.config.Epoch
}

// sizeLookup fetches aggregate sizes at most once, and only when some
// resource lacks a declared size.
type sizeLookup struct {
	source Source
	sizes  map[string]int64
}

func (l *sizeLookup) of(ctx context.Context, res *types.Resource) (int64, error) {
	if res.SizeRootFs > 0 {
		return res.SizeRootFs, nil
	}
	if res.Size > 0 {
		return res.Size, nil
	}

	if l.sizes == nil {
		sizes, err := l.source.AggregateSizes(ctx)
		if err != nil {
			return 0, err
		}
		if sizes == nil {
			sizes = map[string]int64{}
		}
		l.sizes = sizes
	}

	if size, ok := l.sizes[res.ID]; ok && size > 0 {
		return size, nil
	}
	return l.sizes[res.ShortID()], nil
}
