package dockerfs

import (
	"context"
	"fmt"
	"os"

	"github.com/beam-cloud/dockerfs/pkg/types"
	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/rs/zerolog/log"
)

const mountName = "dockerfs"

func mountOptions(config types.FilesystemConfig) *fs.Options {
	entryTimeout := config.EntryTimeout
	attrTimeout := config.AttrTimeout
	negativeTimeout := config.NegativeTimeout

	return &fs.Options{
		EntryTimeout:    &entryTimeout,
		AttrTimeout:     &attrTimeout,
		NegativeTimeout: &negativeTimeout,
		MountOptions: fuse.MountOptions{
			FsName:     config.FsName,
			Name:       mountName,
			AllowOther: config.AllowOther,
			Debug:      config.Debug,
			// Calls are dispatched one at a time.
			SingleThreaded: true,
			DisableXAttrs:  true,
		},
	}
}

// Mount attaches the filesystem at mountPoint and returns once the kernel
// has acknowledged the mount. The filesystem is unmounted when ctx is
// cancelled.
func Mount(ctx context.Context, mountPoint string, config types.FilesystemConfig, d *Dispatcher) (*fuse.Server, error) {
	info, err := os.Stat(mountPoint)
	if err != nil {
		return nil, fmt.Errorf("mount point %s: %w", mountPoint, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("mount point %s is not a directory", mountPoint)
	}

	server, err := fs.Mount(mountPoint, newRoot(d), mountOptions(config))
	if err != nil {
		return nil, fmt.Errorf("could not mount %s: %w", mountPoint, err)
	}

	log.Info().Str("mount_point", mountPoint).Str("fs_name", config.FsName).Msg("filesystem mounted")

	go func() {
		<-ctx.Done()
		if err := server.Unmount(); err != nil {
			log.Error().Err(err).Str("mount_point", mountPoint).Msg("unable to unmount filesystem")
			return
		}
		log.Info().Str("mount_point", mountPoint).Msg("filesystem unmounted")
	}()

	return server, nil
}
