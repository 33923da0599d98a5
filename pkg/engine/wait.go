package engine

import (
	"context"
	"time"

	"github.com/beam-cloud/dockerfs/pkg/types"
	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

// WaitForEngine blocks until the engine answers a ping or the startup
// timeout elapses. A zero timeout pings exactly once. Only startup is
// retried; failures during filesystem operation are surfaced immediately.
func WaitForEngine(ctx context.Context, client Client, config types.EngineConfig) error {
	if config.StartupTimeout <= 0 {
		return client.Ping(ctx)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = config.StartupTimeout

	return backoff.RetryNotify(func() error {
		return client.Ping(ctx)
	}, backoff.WithContext(b, ctx), func(err error, d time.Duration) {
		log.Warn().Err(err).Dur("retry_in", d).Msg("container engine not ready")
	})
}
