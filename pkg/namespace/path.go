package namespace

import (
	"strings"

	"github.com/beam-cloud/dockerfs/pkg/types"
)

const separator = "/"

// Path is a filesystem path split into its category and the remainder
// after it. Key keeps any nested '/' separators.
type Path struct {
	Category types.Category
	Key      string
}

func (p Path) IsRoot() bool {
	return p.Category == ""
}

func (p Path) IsCategory() bool {
	return p.Category != "" && p.Key == ""
}

func (p Path) String() string {
	if p.IsRoot() {
		return separator
	}
	if p.Key == "" {
		return separator + string(p.Category)
	}
	return separator + string(p.Category) + separator + p.Key
}

// ParsePath validates the category segment before anything else so an
// unknown top-level name never reaches the engine.
func ParsePath(p string) (Path, error) {
	trimmed := strings.Trim(p, separator)
	if trimmed == "" {
		return Path{}, nil
	}

	head, rest, _ := strings.Cut(trimmed, separator)
	category, err := types.ParseCategory(head)
	if err != nil {
		return Path{}, &types.ErrResourceNotFound{Name: p}
	}

	return Path{Category: category, Key: strings.Trim(rest, separator)}, nil
}
