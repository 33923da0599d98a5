package engine

import (
	"context"
	"time"

	"github.com/beam-cloud/dockerfs/pkg/metrics"
	"github.com/beam-cloud/dockerfs/pkg/types"
	expirable "github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

const diskUsageCacheKey = "disk-usage"

// Gateway is the only path from the filesystem to the engine. Resources are
// fetched fresh on every call; only the aggregate disk-usage query, which is
// expensive on the engine side, is cached for a short TTL.
type Gateway struct {
	client Client
	sizes  *expirable.LRU[string, map[string]int64]
	group  singleflight.Group
}

func NewGateway(client Client, config types.CacheConfig) *Gateway {
	ttl := config.DiskUsageTTL
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Gateway{
		client: client,
		sizes:  expirable.NewLRU[string, map[string]int64](1, nil, ttl),
	}
}

func (g *Gateway) List(ctx context.Context, category types.Category, includeAll bool) ([]types.Resource, error) {
	metrics.RecordEngineRequest("list_" + string(category))
	return g.client.List(ctx, category, includeAll)
}

func (g *Gateway) Get(ctx context.Context, category types.Category, idOrName string) (*types.Resource, error) {
	metrics.RecordEngineRequest("get_" + string(category))
	return g.client.Get(ctx, category, idOrName)
}

// AggregateSizes returns identifier to size for every resource the engine
// accounts for. The engine is asked at most once per TTL window.
func (g *Gateway) AggregateSizes(ctx context.Context) (map[string]int64, error) {
	if sizes, ok := g.sizes.Get(diskUsageCacheKey); ok {
		metrics.RecordDiskUsageCache(true)
		return sizes, nil
	}
	metrics.RecordDiskUsageCache(false)

	v, err, _ := g.group.Do(diskUsageCacheKey, func() (interface{}, error) {
		if sizes, ok := g.sizes.Get(diskUsageCacheKey); ok {
			return sizes, nil
		}

		metrics.RecordEngineRequest("disk_usage")
		sizes, err := g.client.DiskUsage(ctx)
		if err != nil {
			return nil, err
		}

		g.sizes.Add(diskUsageCacheKey, sizes)
		return sizes, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(map[string]int64), nil
}

// Invalidate drops the cached aggregate sizes.
func (g *Gateway) Invalidate() {
	g.sizes.Purge()
}

func (g *Gateway) Ping(ctx context.Context) error {
	return g.client.Ping(ctx)
}

func (g *Gateway) Close() error {
	return g.client.Close()
}
