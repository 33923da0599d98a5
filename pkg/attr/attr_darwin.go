//go:build darwin

package attr

import "github.com/hanwen/go-fuse/v2/fuse"

func fillPlatform(a Attr, out *fuse.Attr) {
	if !a.Birthtime.IsZero() {
		out.Crtime_ = uint64(a.Birthtime.Unix())
		out.Crtimensec_ = uint32(a.Birthtime.Nanosecond())
	}
	out.Flags_ = a.Flags
}
