package dockerfs

import (
	"testing"

	"github.com/beam-cloud/dockerfs/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleTableStartsAtReservedIndex(t *testing.T) {
	table := NewHandleTable(3, 0)

	first, err := table.Allocate("/images/.a")
	require.NoError(t, err)
	second, err := table.Allocate("/images/.b")
	require.NoError(t, err)

	assert.Equal(t, uint32(3), first.Index())
	assert.Equal(t, uint32(4), second.Index())
	assert.Equal(t, 2, table.Len())

	p, err := table.Lookup(second)
	require.NoError(t, err)
	assert.Equal(t, "/images/.b", p)
}

func TestHandleTableDoubleRelease(t *testing.T) {
	table := NewHandleTable(3, 0)

	h, err := table.Allocate("/volumes/.v1")
	require.NoError(t, err)
	require.NoError(t, table.Release(h))

	err = table.Release(h)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrInvariantViolation)
	assert.Equal(t, 0, table.Len())
}

func TestHandleTableReuseBumpsGeneration(t *testing.T) {
	table := NewHandleTable(3, 0)

	old, err := table.Allocate("/volumes/.v1")
	require.NoError(t, err)
	require.NoError(t, table.Release(old))

	reused, err := table.Allocate("/volumes/.v2")
	require.NoError(t, err)
	assert.Equal(t, old.Index(), reused.Index())
	assert.NotEqual(t, old.Generation(), reused.Generation())

	_, err = table.Lookup(old)
	assert.ErrorIs(t, err, types.ErrInvariantViolation)

	err = table.Release(old)
	assert.ErrorIs(t, err, types.ErrInvariantViolation)

	p, err := table.Lookup(reused)
	require.NoError(t, err)
	assert.Equal(t, "/volumes/.v2", p)
}

func TestHandleTableUnknownHandle(t *testing.T) {
	table := NewHandleTable(3, 0)

	for _, h := range []Handle{0, 1, 2, newHandle(3, 1), newHandle(100, 1)} {
		assert.ErrorIs(t, table.Release(h), types.ErrInvariantViolation, "handle %d", h.Index())
	}
}

func TestHandleTableExhaustion(t *testing.T) {
	table := NewHandleTable(0, 2)

	a, err := table.Allocate("/a")
	require.NoError(t, err)
	_, err = table.Allocate("/b")
	require.NoError(t, err)

	_, err = table.Allocate("/c")
	assert.ErrorIs(t, err, types.ErrInvariantViolation)

	require.NoError(t, table.Release(a))
	_, err = table.Allocate("/c")
	assert.NoError(t, err)
}

func TestHandleTableGrows(t *testing.T) {
	table := NewHandleTable(3, 0)

	for i := 0; i < 500; i++ {
		_, err := table.Allocate("/images/.a")
		require.NoError(t, err)
	}
	assert.Equal(t, 500, table.Len())
}
