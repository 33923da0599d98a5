package dockerfs

import (
	"context"
	"strings"
	"time"

	"github.com/beam-cloud/dockerfs/pkg/attr"
	"github.com/beam-cloud/dockerfs/pkg/metrics"
	"github.com/beam-cloud/dockerfs/pkg/namespace"
	"github.com/beam-cloud/dockerfs/pkg/synth"
	"github.com/beam-cloud/dockerfs/pkg/types"
	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"
)

const writeFlags = unix.O_WRONLY | unix.O_RDWR | unix.O_APPEND | unix.O_TRUNC | unix.O_CREAT

// Dispatcher answers path-level filesystem calls. Every call resolves its
// path against the live inventory; only the link tables of the most recent
// listings carry over between calls.
type Dispatcher struct {
	resolver *namespace.Resolver
	builder  *namespace.Builder
	synth    *synth.Synthesizer
	handles  *HandleTable
	payload  []byte
}

func NewDispatcher(resolver *namespace.Resolver, builder *namespace.Builder, synthesizer *synth.Synthesizer, config types.FilesystemConfig) *Dispatcher {
	return &Dispatcher{
		resolver: resolver,
		builder:  builder,
		synth:    synthesizer,
		handles:  NewHandleTable(config.ReservedHandles, config.MaxHandles),
		payload:  []byte(config.PlaceholderPayload),
	}
}

// view is the state a single call works against: the link tables as they
// were when the call started.
type view struct {
	links   namespace.View
	builder *namespace.Builder
}

func (d *Dispatcher) view() *view {
	return &view{links: d.builder.Links().View(), builder: d.builder}
}

// linksFor lists the category first when it has no table yet.
func (v *view) linksFor(ctx context.Context, category types.Category) (*namespace.Links, error) {
	if links := v.links.Links(category); links != nil {
		return links, nil
	}
	if _, err := v.builder.List(ctx, category, ""); err != nil {
		return nil, err
	}
	links := v.builder.Links().Load(category)
	v.links[category] = links
	return links, nil
}

func (d *Dispatcher) call(op, path string, fn func(v *view) error) error {
	start := time.Now()
	log.Debug().Str("op", op).Str("path", path).Msg("fuse call")

	err := fn(d.view())

	metrics.RecordOperation(op, resultLabel(err), time.Since(start))
	if err != nil {
		logError(op, path, err)
	}
	return err
}

func (d *Dispatcher) Getattr(ctx context.Context, path string) (attr.Attr, error) {
	var out attr.Attr
	err := d.call("getattr", path, func(v *view) error {
		a, err := d.getattr(ctx, v, path)
		if err != nil {
			return err
		}
		out = a
		log.Debug().Str("path", path).Stringer("attr", a).Msg("attributes")
		return nil
	})
	return out, err
}

func (d *Dispatcher) getattr(ctx context.Context, v *view, path string) (attr.Attr, error) {
	target, err := d.resolver.Resolve(ctx, path)
	if err != nil {
		return attr.Attr{}, err
	}

	switch target.Kind {
	case namespace.TargetRoot:
		return d.synth.Root(), nil
	case namespace.TargetCategory:
		return d.synth.ForCategory(ctx, target.Path.Category, "")
	case namespace.TargetTagDir:
		return d.synth.ForCategory(ctx, target.Path.Category, target.Path.Key)
	}

	var links *namespace.Links
	if !strings.HasPrefix(target.Name(), types.IdentifierMarker) {
		links, err = v.linksFor(ctx, target.Path.Category)
		if err != nil {
			return attr.Attr{}, err
		}
	}
	return d.synth.ForResource(ctx, target.Resource, target.Name(), links)
}

// Readdir always starts with the two navigational entries.
func (d *Dispatcher) Readdir(ctx context.Context, path string) ([]namespace.Entry, error) {
	var out []namespace.Entry
	err := d.call("readdir", path, func(v *view) error {
		entries, err := d.readdir(ctx, path)
		if err != nil {
			return err
		}
		out = append([]namespace.Entry{
			{Name: ".", Kind: namespace.EntryDirectory},
			{Name: "..", Kind: namespace.EntryDirectory},
		}, entries...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (d *Dispatcher) readdir(ctx context.Context, path string) ([]namespace.Entry, error) {
	target, err := d.resolver.Resolve(ctx, path)
	if err != nil {
		return nil, err
	}

	switch target.Kind {
	case namespace.TargetRoot:
		entries := make([]namespace.Entry, 0, len(types.Categories))
		for _, c := range types.Categories {
			entries = append(entries, namespace.Entry{Name: string(c), Kind: namespace.EntryDirectory})
		}
		return entries, nil
	case namespace.TargetCategory:
		return d.builder.List(ctx, target.Path.Category, "")
	case namespace.TargetTagDir:
		return d.builder.List(ctx, target.Path.Category, target.Path.Key)
	}

	return nil, &types.ErrUnsupported{Op: "readdir", Path: path}
}

func (d *Dispatcher) Readlink(ctx context.Context, path string) (string, error) {
	var out string
	err := d.call("readlink", path, func(v *view) error {
		p, err := namespace.ParsePath(path)
		if err != nil {
			return err
		}
		if p.IsRoot() || p.IsCategory() {
			return &types.ErrNotSymlink{Path: path}
		}

		links, err := v.linksFor(ctx, p.Category)
		if err != nil {
			return err
		}
		if target, ok := links.Target(p.Key); ok {
			out = target
			return nil
		}

		// Tell a missing entry apart from one that is not a link.
		if _, err := d.resolver.Resolve(ctx, path); err != nil {
			return err
		}
		return &types.ErrNotSymlink{Path: path}
	})
	return out, err
}

func (d *Dispatcher) Access(ctx context.Context, path string, mode uint32) error {
	return d.call("access", path, func(v *view) error {
		target, err := d.resolver.Resolve(ctx, path)
		if err != nil {
			return err
		}

		switch {
		case mode&unix.W_OK != 0:
			return &types.ErrReadOnly{Op: "access", Path: path}
		case mode&^(unix.R_OK|unix.X_OK) != 0:
			return &types.ErrAccessDenied{Path: path, Mode: mode}
		case mode&unix.X_OK != 0 && !target.IsDir():
			return &types.ErrAccessDenied{Path: path, Mode: mode}
		}
		return nil
	})
}

func (d *Dispatcher) Open(ctx context.Context, path string, flags uint32) (Handle, error) {
	var h Handle
	err := d.call("open", path, func(v *view) error {
		if flags&writeFlags != 0 {
			return &types.ErrReadOnly{Op: "open", Path: path}
		}
		if _, err := d.resolver.Resolve(ctx, path); err != nil {
			return err
		}

		var err error
		h, err = d.handles.Allocate(path)
		return err
	})
	return h, err
}

// Read returns the placeholder payload whatever the offset and length.
// Callers copy at most the length they asked for.
func (d *Dispatcher) Read(path string, length int, offset int64, h Handle) ([]byte, error) {
	var out []byte
	err := d.call("read", path, func(v *view) error {
		if _, err := d.handles.Lookup(h); err != nil {
			return err
		}
		out = d.payload
		return nil
	})
	return out, err
}

func (d *Dispatcher) Release(path string, h Handle) error {
	return d.call("release", path, func(v *view) error {
		return d.handles.Release(h)
	})
}

func (d *Dispatcher) Flush(path string, h Handle) error {
	return d.call("flush", path, func(v *view) error {
		log.Warn().Str("path", path).Uint64("handle", uint64(h)).Msg("flush on read-only filesystem")
		return nil
	})
}

// ReadOnly rejects any call of the write family.
func (d *Dispatcher) ReadOnly(op, path string) error {
	return d.call(op, path, func(v *view) error {
		return &types.ErrReadOnly{Op: op, Path: path}
	})
}

func (d *Dispatcher) OpenHandles() int {
	return d.handles.Len()
}
