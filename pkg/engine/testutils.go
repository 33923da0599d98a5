package engine

import (
	"context"
	"strings"
	"sync"

	"github.com/beam-cloud/dockerfs/pkg/types"
)

// FakeClient is an in-memory Client for tests.
type FakeClient struct {
	mu        sync.Mutex
	resources map[types.Category][]types.Resource
	sizes     map[string]int64

	// Err, when set, is returned from every call.
	Err     error
	PingErr error

	ListCalls      int
	GetCalls       int
	DiskUsageCalls int
	PingCalls      int
}

func NewFakeClient() *FakeClient {
	return &FakeClient{
		resources: map[types.Category][]types.Resource{},
		sizes:     map[string]int64{},
	}
}

func (f *FakeClient) Add(resources ...types.Resource) *FakeClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range resources {
		f.resources[r.Category] = append(f.resources[r.Category], r)
	}
	return f
}

func (f *FakeClient) SetSize(id string, size int64) *FakeClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sizes[id] = size
	return f
}

func (f *FakeClient) Reset(category types.Category) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.resources, category)
}

func (f *FakeClient) List(ctx context.Context, category types.Category, includeAll bool) ([]types.Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListCalls++
	if f.Err != nil {
		return nil, f.Err
	}
	return append([]types.Resource(nil), f.resources[category]...), nil
}

// Get matches the full identifier, the identifier without its hash prefix,
// or any name, like the engine does.
func (f *FakeClient) Get(ctx context.Context, category types.Category, idOrName string) (*types.Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GetCalls++
	if f.Err != nil {
		return nil, f.Err
	}
	for _, r := range f.resources[category] {
		if r.ID == idOrName || r.ShortID() == idOrName || r.HasName(idOrName) {
			res := r
			return &res, nil
		}
		if len(idOrName) >= 12 && strings.HasPrefix(r.ShortID(), idOrName) {
			res := r
			return &res, nil
		}
	}
	return nil, &types.ErrResourceNotFound{Category: category, Name: idOrName}
}

func (f *FakeClient) DiskUsage(ctx context.Context) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DiskUsageCalls++
	if f.Err != nil {
		return nil, f.Err
	}
	sizes := make(map[string]int64, len(f.sizes))
	for k, v := range f.sizes {
		sizes[k] = v
	}
	return sizes, nil
}

func (f *FakeClient) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PingCalls++
	return f.PingErr
}

func (f *FakeClient) Close() error {
	return nil
}
