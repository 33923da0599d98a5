// Package attr models the stat(2) metadata reported for every entry of the
// projected filesystem.
package attr

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hanwen/go-fuse/v2/fuse"
	"golang.org/x/sys/unix"
)

const (
	S_IFMT  uint32 = unix.S_IFMT
	S_IFDIR uint32 = unix.S_IFDIR
	S_IFREG uint32 = unix.S_IFREG
	S_IFLNK uint32 = unix.S_IFLNK

	// ReadAll is r-- for owner, group and other.
	ReadAll uint32 = 0o444
	// ExecAll is --x for owner, group and other. On a directory it means
	// listable.
	ExecAll uint32 = 0o111
)

type Attr struct {
	Mode  uint32
	Nlink uint32
	Uid   uint32
	Gid   uint32
	Size  uint64

	Atime time.Time
	Mtime time.Time
	Ctime time.Time
	// Birthtime is zero on platforms that do not report it.
	Birthtime time.Time
	Flags     uint32
}

func (a Attr) Type() uint32 {
	return a.Mode & S_IFMT
}

// Perm returns the permission bits, S_IMODE in C.
func (a Attr) Perm() uint32 {
	return a.Mode &^ S_IFMT
}

func (a Attr) IsDir() bool {
	return a.Type() == S_IFDIR
}

func (a Attr) IsSymlink() bool {
	return a.Type() == S_IFLNK
}

func (a Attr) IsRegular() bool {
	return a.Type() == S_IFREG
}

// WithType replaces the file-type bits and keeps the permission bits.
func (a Attr) WithType(fileType uint32) Attr {
	a.Mode = a.Perm() | (fileType & S_IFMT)
	return a
}

func (a *Attr) SetTimes(t time.Time) {
	a.Atime, a.Mtime, a.Ctime = t, t, t
}

// Fill copies the attributes into the kernel bridge representation.
func (a Attr) Fill(out *fuse.Attr) {
	out.Mode = a.Mode
	out.Nlink = a.Nlink
	out.Owner = fuse.Owner{Uid: a.Uid, Gid: a.Gid}
	out.Size = a.Size
	out.Blocks = (a.Size + 511) / 512
	atime, mtime, ctime := a.Atime, a.Mtime, a.Ctime
	out.SetTimes(&atime, &mtime, &ctime)
	fillPlatform(a, out)
}

type Field struct {
	Key   string
	Value string
}

// Fields lists the populated attributes under their st_* names, formatted
// for humans: timestamps as ISO-8601 and the mode in octal.
func (a Attr) Fields() []Field {
	fields := []Field{
		{"st_atime", formatTime(a.Atime)},
		{"st_ctime", formatTime(a.Ctime)},
		{"st_mtime", formatTime(a.Mtime)},
	}
	if !a.Birthtime.IsZero() {
		fields = append(fields, Field{"st_birthtime", formatTime(a.Birthtime)})
	}
	fields = append(fields,
		Field{"st_gid", strconv.FormatUint(uint64(a.Gid), 10)},
		Field{"st_mode", formatOctal(a.Mode)},
		Field{"st_nlink", strconv.FormatUint(uint64(a.Nlink), 10)},
		Field{"st_size", strconv.FormatUint(a.Size, 10)},
		Field{"st_uid", strconv.FormatUint(uint64(a.Uid), 10)},
	)
	if a.Flags != 0 {
		fields = append(fields, Field{"st_flags", strconv.FormatUint(uint64(a.Flags), 10)})
	}
	return fields
}

// String renders one "key: value" line per attribute.
func (a Attr) String() string {
	var sb strings.Builder
	for i, f := range a.Fields() {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%s: %s", f.Key, f.Value)
	}
	return sb.String()
}

func formatTime(t time.Time) string {
	return t.Format("2006-01-02T15:04:05.999999999")
}

func formatOctal(v uint32) string {
	return "0o" + strconv.FormatUint(uint64(v), 8)
}
