package types

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCategory(t *testing.T) {
	for _, c := range Categories {
		got, err := ParseCategory(string(c))
		assert.NoError(t, err)
		assert.Equal(t, c, got)
	}

	for _, s := range []string{"", "networks", ".Trash", "Images"} {
		_, err := ParseCategory(s)
		assert.True(t, IsNotFound(err), s)
	}
}

func TestHierarchical(t *testing.T) {
	assert.True(t, CategoryImages.Hierarchical())
	assert.False(t, CategoryVolumes.Hierarchical())
	assert.False(t, CategoryContainers.Hierarchical())
}

func TestShortID(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"sha256:deadbeef", "deadbeef"},
		{"sha512:cafe", "cafe"},
		{"abc123", "abc123"},
		{"myvol", "myvol"},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			res := Resource{ID: tt.id}
			assert.Equal(t, tt.want, res.ShortID())
			assert.Equal(t, "."+tt.want, res.EntryName())
		})
	}
}

func TestResourceNames(t *testing.T) {
	res := Resource{Names: []string{"app:latest", "team/app:v2"}}

	assert.True(t, res.HasName("app:latest"))
	assert.False(t, res.HasName("app"))
	assert.True(t, res.HasNamePrefix("team/"))
	assert.False(t, res.HasNamePrefix("tea/"))
}

func TestErrorClassification(t *testing.T) {
	notFound := fmt.Errorf("getattr: %w", &ErrResourceNotFound{Category: CategoryImages, Name: "x"})
	assert.True(t, IsNotFound(notFound))
	assert.True(t, IsExpected(notFound))
	assert.Equal(t, "getattr: resource not found: images/x", notFound.Error())

	assert.True(t, IsExpected(&ErrUnsupported{Op: "readdir", Path: "/x"}))
	assert.False(t, IsExpected(&ErrReadOnly{Op: "mkdir", Path: "/x"}))
	assert.False(t, IsExpected(ErrInvariantViolation))
	assert.True(t, IsAccessDenied(&ErrAccessDenied{Path: "/x", Mode: 1}))
	assert.True(t, IsNotSymlink(&ErrNotSymlink{Path: "/x"}))
}
