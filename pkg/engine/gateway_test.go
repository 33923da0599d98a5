package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/beam-cloud/dockerfs/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateSizesOncePerWindow(t *testing.T) {
	client := NewFakeClient().SetSize("sha256:a", 100).SetSize("v1", 200)
	gateway := NewGateway(client, types.CacheConfig{DiskUsageTTL: time.Minute})

	for i := 0; i < 100; i++ {
		sizes, err := gateway.AggregateSizes(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(100), sizes["sha256:a"])
		assert.Equal(t, int64(200), sizes["v1"])
	}

	assert.Equal(t, 1, client.DiskUsageCalls)
}

func TestAggregateSizesConcurrentMisses(t *testing.T) {
	client := NewFakeClient().SetSize("v1", 1)
	gateway := NewGateway(client, types.CacheConfig{DiskUsageTTL: time.Minute})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := gateway.AggregateSizes(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, client.DiskUsageCalls, 20)
	_, err := gateway.AggregateSizes(context.Background())
	require.NoError(t, err)
	calls := client.DiskUsageCalls
	_, _ = gateway.AggregateSizes(context.Background())
	assert.Equal(t, calls, client.DiskUsageCalls)
}

func TestAggregateSizesExpire(t *testing.T) {
	client := NewFakeClient().SetSize("v1", 1)
	gateway := NewGateway(client, types.CacheConfig{DiskUsageTTL: 500 * time.Millisecond})

	_, err := gateway.AggregateSizes(context.Background())
	require.NoError(t, err)

	client.SetSize("v1", 2)
	sizes, err := gateway.AggregateSizes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), sizes["v1"])

	assert.Eventually(t, func() bool {
		sizes, err := gateway.AggregateSizes(context.Background())
		return err == nil && sizes["v1"] == 2
	}, 3*time.Second, 50*time.Millisecond)
	assert.GreaterOrEqual(t, client.DiskUsageCalls, 2)
}

func TestAggregateSizesInvalidate(t *testing.T) {
	client := NewFakeClient()
	gateway := NewGateway(client, types.CacheConfig{DiskUsageTTL: time.Minute})

	_, err := gateway.AggregateSizes(context.Background())
	require.NoError(t, err)
	gateway.Invalidate()
	_, err = gateway.AggregateSizes(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, client.DiskUsageCalls)
}

func TestAggregateSizesErrorNotCached(t *testing.T) {
	client := NewFakeClient()
	client.Err = errors.New("permission denied")
	gateway := NewGateway(client, types.CacheConfig{DiskUsageTTL: time.Minute})

	_, err := gateway.AggregateSizes(context.Background())
	assert.ErrorIs(t, err, client.Err)

	client.Err = nil
	_, err = gateway.AggregateSizes(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 2, client.DiskUsageCalls)
}

func TestGatewayFetchesResourcesFresh(t *testing.T) {
	client := NewFakeClient().Add(types.Resource{Category: types.CategoryVolumes, ID: "v1", Names: []string{"v1"}})
	gateway := NewGateway(client, types.CacheConfig{DiskUsageTTL: time.Minute})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		resources, err := gateway.List(ctx, types.CategoryVolumes, false)
		require.NoError(t, err)
		assert.Len(t, resources, 1)

		res, err := gateway.Get(ctx, types.CategoryVolumes, "v1")
		require.NoError(t, err)
		assert.Equal(t, "v1", res.ID)
	}

	assert.Equal(t, 3, client.ListCalls)
	assert.Equal(t, 3, client.GetCalls)

	_, err := gateway.Get(ctx, types.CategoryVolumes, "missing")
	assert.True(t, types.IsNotFound(err))
}
