package namespace

import (
	"context"
	"strings"

	"github.com/beam-cloud/dockerfs/pkg/types"
)

type TargetKind int

const (
	TargetRoot TargetKind = iota
	TargetCategory
	TargetResource
	TargetTagDir
)

func (k TargetKind) String() string {
	switch k {
	case TargetRoot:
		return "root"
	case TargetCategory:
		return "category"
	case TargetResource:
		return "resource"
	case TargetTagDir:
		return "tagdir"
	}
	return "unknown"
}

// Target is what a path resolved to. Resource is set only for
// TargetResource.
type Target struct {
	Kind     TargetKind
	Path     Path
	Resource *types.Resource
}

func (t *Target) IsDir() bool {
	return t.Kind != TargetResource
}

// Name is the last path component, used to look up link entries.
func (t *Target) Name() string {
	return t.Path.Key
}

type Resolver struct {
	source  ResourceSource
	builder *Builder
}

func NewResolver(source ResourceSource, builder *Builder) *Resolver {
	return &Resolver{source: source, builder: builder}
}

// Resolve maps a path to a live resource or a synthetic directory. A
// dot-prefixed key must be the exact identifier; any other key an exact
// name, falling back to a tag directory when some tag lives below it.
func (r *Resolver) Resolve(ctx context.Context, p string) (*Target, error) {
	path, err := ParsePath(p)
	if err != nil {
		return nil, err
	}

	switch {
	case path.IsRoot():
		return &Target{Kind: TargetRoot, Path: path}, nil
	case path.IsCategory():
		return &Target{Kind: TargetCategory, Path: path}, nil
	}

	notFound := &types.ErrResourceNotFound{Category: path.Category, Name: path.Key}

	if id, ok := strings.CutPrefix(path.Key, types.IdentifierMarker); ok {
		if id == "" || strings.Contains(id, separator) {
			return nil, notFound
		}
		res, err := r.source.Get(ctx, path.Category, id)
		if err != nil {
			return nil, err
		}
		// The engine also resolves names here; only the listed identifier
		// counts.
		if res.ShortID() != id {
			return nil, notFound
		}
		return &Target{Kind: TargetResource, Path: path, Resource: res}, nil
	}

	res, err := r.source.Get(ctx, path.Category, path.Key)
	switch {
	case err == nil && res.HasName(path.Key):
		return &Target{Kind: TargetResource, Path: path, Resource: res}, nil
	case err != nil && !types.IsNotFound(err):
		return nil, err
	}

	if !path.Category.Hierarchical() {
		return nil, notFound
	}

	ok, err := r.builder.HasPrefix(ctx, path.Category, path.Key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound
	}

	return &Target{Kind: TargetTagDir, Path: path}, nil
}
