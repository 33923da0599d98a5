package dockerfs

import (
	"context"
	"time"

	"github.com/beam-cloud/dockerfs/pkg/engine"
	"github.com/beam-cloud/dockerfs/pkg/metrics"
	"github.com/beam-cloud/dockerfs/pkg/namespace"
	"github.com/beam-cloud/dockerfs/pkg/synth"
	"github.com/beam-cloud/dockerfs/pkg/types"
	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/rs/zerolog/log"
)

// FileSystem wires the engine gateway to the dispatcher and owns the mount
// and the optional metrics endpoint.
type FileSystem struct {
	config     types.AppConfig
	gateway    *engine.Gateway
	dispatcher *Dispatcher
	server     *fuse.Server
	metrics    *metrics.Server
}

func NewFileSystem(config types.AppConfig, client engine.Client) *FileSystem {
	gateway := engine.NewGateway(client, config.Cache)
	includeAll := config.Engine.IncludeAll

	builder := namespace.NewBuilder(gateway, includeAll, namespace.NewLinkStore())
	resolver := namespace.NewResolver(gateway, builder)
	synthesizer := synth.NewSynthesizer(gateway, config.Filesystem, includeAll)

	return &FileSystem{
		config:     config,
		gateway:    gateway,
		dispatcher: NewDispatcher(resolver, builder, synthesizer, config.Filesystem),
	}
}

func (f *FileSystem) Dispatcher() *Dispatcher {
	return f.dispatcher
}

// Mount attaches the filesystem and starts the metrics endpoint when one
// is configured. Cancelling ctx unmounts.
func (f *FileSystem) Mount(ctx context.Context, mountPoint string) error {
	if addr := f.config.Monitoring.MetricsAddress; addr != "" {
		f.metrics = metrics.NewServer(addr)
		f.metrics.Start()
	}

	server, err := Mount(ctx, mountPoint, f.config.Filesystem, f.dispatcher)
	if err != nil {
		return err
	}
	f.server = server

	return nil
}

// Refresh drops the cached aggregate sizes so the next attribute lookup
// asks the engine again.
func (f *FileSystem) Refresh() {
	f.gateway.Invalidate()
	log.Info().Msg("disk usage cache cleared")
}

// Wait blocks until the filesystem is unmounted.
func (f *FileSystem) Wait() {
	if f.server != nil {
		f.server.Wait()
	}
}

func (f *FileSystem) Close() error {
	if f.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := f.metrics.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("unable to stop metrics server")
		}
	}
	return f.gateway.Close()
}
