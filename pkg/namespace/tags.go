package namespace

import (
	"strings"

	"github.com/beam-cloud/dockerfs/pkg/types"
)

const parentDir = "../"

// NormalizePrefix strips trailing separators and appends exactly one, so
// "team", "team/" and "team//" all select the same subtree. The empty
// prefix stays empty.
func NormalizePrefix(prefix string) string {
	prefix = strings.TrimRight(prefix, separator)
	if prefix == "" {
		return ""
	}
	return prefix + separator
}

// linkTarget is the path from the directory holding name back up to the
// identifier entry at the category root.
func linkTarget(name string, res *types.Resource) string {
	return strings.Repeat(parentDir, depth(name)) + res.EntryName()
}

func depth(name string) int {
	return strings.Count(name, separator)
}

// nextSegment returns the first component of name below prefix and
// whether more components follow it.
func nextSegment(name, prefix string) (segment string, isDir bool, ok bool) {
	if !strings.HasPrefix(name, prefix) {
		return "", false, false
	}

	rest := name[len(prefix):]
	if rest == "" {
		return "", false, false
	}

	if i := strings.Index(rest, separator); i >= 0 {
		if i == 0 {
			return "", false, false
		}
		return rest[:i], true, true
	}
	return rest, false, true
}
