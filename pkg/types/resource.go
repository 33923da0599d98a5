package types

import (
	"fmt"
	"strings"
)

type Category string

const (
	CategoryVolumes    Category = "volumes"
	CategoryImages     Category = "images"
	CategoryContainers Category = "containers"
)

// Categories is the fixed root layout, in listing order.
var Categories = []Category{CategoryVolumes, CategoryImages, CategoryContainers}

func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategoryVolumes, CategoryImages, CategoryContainers:
		return c, nil
	}
	return "", &ErrResourceNotFound{Name: s}
}

func (c Category) String() string {
	return string(c)
}

// Hierarchical reports whether names in this category may contain '/'
// separators that are decomposed into directory levels.
func (c Category) Hierarchical() bool {
	return c == CategoryImages
}

const IdentifierMarker = "."

var knownHashPrefixes = []string{"sha256:", "sha384:", "sha512:"}

// Resource is a snapshot of a single engine object. Size fields are zero
// when the engine did not report them.
type Resource struct {
	Category Category
	ID       string
	Names    []string

	// Images and containers report a unix creation time, volumes an RFC3339
	// string. At most one of the two is set.
	CreatedUnix int64
	CreatedAt   string

	SizeRootFs int64
	Size       int64
}

// ShortID is the identifier with any well-known hash-algorithm prefix stripped.
func (r *Resource) ShortID() string {
	return StripHashPrefix(r.ID)
}

// EntryName is the canonical dot-prefixed filesystem name of the resource.
func (r *Resource) EntryName() string {
	return IdentifierMarker + r.ShortID()
}

func (r *Resource) HasName(name string) bool {
	for _, n := range r.Names {
		if n == name {
			return true
		}
	}
	return false
}

// HasNamePrefix reports whether any name lives under the directory prefix.
// The prefix must already be separator-terminated.
func (r *Resource) HasNamePrefix(prefix string) bool {
	for _, n := range r.Names {
		if strings.HasPrefix(n, prefix) {
			return true
		}
	}
	return false
}

func (r *Resource) String() string {
	return fmt.Sprintf("%s/%s", r.Category, r.ShortID())
}

func StripHashPrefix(id string) string {
	for _, prefix := range knownHashPrefixes {
		if strings.HasPrefix(id, prefix) {
			return id[len(prefix):]
		}
	}
	return id
}
