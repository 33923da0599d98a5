package dockerfs

import (
	"context"
	"path"
	"syscall"

	"github.com/beam-cloud/dockerfs/pkg/namespace"
	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// node binds one path of the projected tree to the kernel bridge. Nodes
// hold no state besides their path; every call goes to the dispatcher.
type node struct {
	fs.Inode
	dispatcher *Dispatcher
	path       string
}

type fileHandle struct {
	handle Handle
}

var _ fs.InodeEmbedder = (*node)(nil)
var _ fs.NodeLookuper = (*node)(nil)
var _ fs.NodeGetattrer = (*node)(nil)
var _ fs.NodeReaddirer = (*node)(nil)
var _ fs.NodeReadlinker = (*node)(nil)
var _ fs.NodeOpener = (*node)(nil)
var _ fs.NodeReader = (*node)(nil)
var _ fs.NodeReleaser = (*node)(nil)
var _ fs.NodeFlusher = (*node)(nil)
var _ fs.NodeAccesser = (*node)(nil)
var _ fs.NodeSetattrer = (*node)(nil)
var _ fs.NodeCreater = (*node)(nil)
var _ fs.NodeMkdirer = (*node)(nil)
var _ fs.NodeMknoder = (*node)(nil)
var _ fs.NodeRmdirer = (*node)(nil)
var _ fs.NodeUnlinker = (*node)(nil)
var _ fs.NodeRenamer = (*node)(nil)
var _ fs.NodeSymlinker = (*node)(nil)
var _ fs.NodeLinker = (*node)(nil)
var _ fs.NodeWriter = (*node)(nil)
var _ fs.NodeSetxattrer = (*node)(nil)
var _ fs.NodeRemovexattrer = (*node)(nil)

func newRoot(d *Dispatcher) *node {
	return &node{dispatcher: d, path: "/"}
}

func (n *node) child(name string) string {
	return path.Join(n.path, name)
}

func entryMode(kind namespace.EntryKind) uint32 {
	switch kind {
	case namespace.EntryDirectory:
		return fuse.S_IFDIR
	case namespace.EntryLink:
		return fuse.S_IFLNK
	}
	return fuse.S_IFREG
}

func (n *node) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	p := n.child(name)

	a, err := n.dispatcher.Getattr(ctx, p)
	if err != nil {
		return nil, Errno(err)
	}
	a.Fill(&out.Attr)

	child := n.NewInode(ctx, &node{dispatcher: n.dispatcher, path: p}, fs.StableAttr{Mode: a.Type()})
	return child, fs.OK
}

func (n *node) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	a, err := n.dispatcher.Getattr(ctx, n.path)
	if err != nil {
		return Errno(err)
	}
	a.Fill(&out.Attr)
	return fs.OK
}

// Readdir leaves out "." and "..": the bridge adds them itself.
func (n *node) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	entries, err := n.dispatcher.Readdir(ctx, n.path)
	if err != nil {
		return nil, Errno(err)
	}

	out := make([]fuse.DirEntry, 0, len(entries))
	for _, e := range entries {
		if e.Name == "." || e.Name == ".." {
			continue
		}
		out = append(out, fuse.DirEntry{Name: e.Name, Mode: entryMode(e.Kind)})
	}
	return fs.NewListDirStream(out), fs.OK
}

func (n *node) Readlink(ctx context.Context) ([]byte, syscall.Errno) {
	target, err := n.dispatcher.Readlink(ctx, n.path)
	if err != nil {
		return nil, Errno(err)
	}
	return []byte(target), fs.OK
}

func (n *node) Access(ctx context.Context, mask uint32) syscall.Errno {
	return Errno(n.dispatcher.Access(ctx, n.path, mask))
}

func (n *node) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	h, err := n.dispatcher.Open(ctx, n.path, flags)
	if err != nil {
		return nil, 0, Errno(err)
	}
	return &fileHandle{handle: h}, 0, fs.OK
}

func (n *node) Read(ctx context.Context, fh fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	h, ok := fh.(*fileHandle)
	if !ok {
		return nil, syscall.EBADF
	}

	data, err := n.dispatcher.Read(n.path, len(dest), off, h.handle)
	if err != nil {
		return nil, Errno(err)
	}

	c := copy(dest, data)
	return fuse.ReadResultData(dest[:c]), fs.OK
}

func (n *node) Release(ctx context.Context, fh fs.FileHandle) syscall.Errno {
	h, ok := fh.(*fileHandle)
	if !ok {
		return syscall.EBADF
	}
	return Errno(n.dispatcher.Release(n.path, h.handle))
}

func (n *node) Flush(ctx context.Context, fh fs.FileHandle) syscall.Errno {
	var h Handle
	if f, ok := fh.(*fileHandle); ok {
		h = f.handle
	}
	return Errno(n.dispatcher.Flush(n.path, h))
}

func (n *node) readOnly(op, name string) syscall.Errno {
	p := n.path
	if name != "" {
		p = n.child(name)
	}
	return Errno(n.dispatcher.ReadOnly(op, p))
}

func (n *node) Setattr(ctx context.Context, fh fs.FileHandle, in *fuse.SetAttrIn, out *fuse.AttrOut) syscall.Errno {
	return n.readOnly("setattr", "")
}

func (n *node) Create(ctx context.Context, name string, flags uint32, mode uint32, out *fuse.EntryOut) (*fs.Inode, fs.FileHandle, uint32, syscall.Errno) {
	return nil, nil, 0, n.readOnly("create", name)
}

func (n *node) Mkdir(ctx context.Context, name string, mode uint32, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	return nil, n.readOnly("mkdir", name)
}

func (n *node) Mknod(ctx context.Context, name string, mode uint32, dev uint32, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	return nil, n.readOnly("mknod", name)
}

func (n *node) Rmdir(ctx context.Context, name string) syscall.Errno {
	return n.readOnly("rmdir", name)
}

func (n *node) Unlink(ctx context.Context, name string) syscall.Errno {
	return n.readOnly("unlink", name)
}

func (n *node) Rename(ctx context.Context, name string, newParent fs.InodeEmbedder, newName string, flags uint32) syscall.Errno {
	return n.readOnly("rename", name)
}

func (n *node) Symlink(ctx context.Context, target, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	return nil, n.readOnly("symlink", name)
}

func (n *node) Link(ctx context.Context, target fs.InodeEmbedder, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	return nil, n.readOnly("link", name)
}

func (n *node) Write(ctx context.Context, fh fs.FileHandle, data []byte, off int64) (uint32, syscall.Errno) {
	return 0, n.readOnly("write", "")
}

func (n *node) Setxattr(ctx context.Context, name string, data []byte, flags uint32) syscall.Errno {
	return n.readOnly("setxattr", "")
}

func (n *node) Removexattr(ctx context.Context, name string) syscall.Errno {
	return n.readOnly("removexattr", "")
}
