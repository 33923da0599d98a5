//go:build !darwin

package attr

import "github.com/hanwen/go-fuse/v2/fuse"

// The kernel protocol has no birthtime or flags outside darwin; they stay
// display-only there.
func fillPlatform(a Attr, out *fuse.Attr) {}
