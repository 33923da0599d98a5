package engine

import (
	"context"

	"github.com/beam-cloud/dockerfs/pkg/types"
)

// Client is the call contract of the container engine. Implementations
// return *types.ErrResourceNotFound from Get on a miss and pass every other
// engine failure through unmodified.
type Client interface {
	List(ctx context.Context, category types.Category, includeAll bool) ([]types.Resource, error)
	Get(ctx context.Context, category types.Category, idOrName string) (*types.Resource, error)
	// DiskUsage maps resource identifiers to their on-disk size.
	DiskUsage(ctx context.Context) (map[string]int64, error)
	Ping(ctx context.Context) error
	Close() error
}
