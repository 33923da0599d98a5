package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/beam-cloud/dockerfs/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestWaitForEngineSinglePing(t *testing.T) {
	client := NewFakeClient()
	client.PingErr = errors.New("connection refused")

	err := WaitForEngine(context.Background(), client, types.EngineConfig{})
	assert.ErrorIs(t, err, client.PingErr)
	assert.Equal(t, 1, client.PingCalls)
}

func TestWaitForEngineReady(t *testing.T) {
	client := NewFakeClient()

	err := WaitForEngine(context.Background(), client, types.EngineConfig{StartupTimeout: time.Second})
	assert.NoError(t, err)
	assert.Equal(t, 1, client.PingCalls)
}

func TestWaitForEngineGivesUp(t *testing.T) {
	client := NewFakeClient()
	client.PingErr = errors.New("connection refused")

	start := time.Now()
	err := WaitForEngine(context.Background(), client, types.EngineConfig{StartupTimeout: 600 * time.Millisecond})
	assert.ErrorIs(t, err, client.PingErr)
	assert.GreaterOrEqual(t, client.PingCalls, 2)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestWaitForEngineCancelled(t *testing.T) {
	client := NewFakeClient()
	client.PingErr = errors.New("connection refused")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WaitForEngine(ctx, client, types.EngineConfig{StartupTimeout: time.Minute})
	assert.Error(t, err)
}
