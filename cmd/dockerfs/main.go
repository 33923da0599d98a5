package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/beam-cloud/dockerfs/pkg/common"
	"github.com/beam-cloud/dockerfs/pkg/dockerfs"
	"github.com/beam-cloud/dockerfs/pkg/engine"
	"github.com/beam-cloud/dockerfs/pkg/types"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

var errUsage = errors.New("usage: dockerfs [flags] <mountpoint>")

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatal().Err(err).Msg("dockerfs exited")
	}
}

func run(args []string) error {
	var (
		configPath     string
		debug          bool
		dockerHost     string
		allowOther     bool
		metricsAddress string
	)

	flagSet := pflag.NewFlagSet("dockerfs", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", "", "path to a yaml or json configuration file")
	flagSet.BoolVarP(&debug, "debug", "d", false, "enable debug logging and fuse request tracing")
	flagSet.StringVar(&dockerHost, "docker-host", "", "docker daemon address (default: DOCKER_HOST)")
	flagSet.BoolVar(&allowOther, "allow-other", false, "allow other users to access the mount")
	flagSet.StringVar(&metricsAddress, "metrics-address", "", "serve prometheus metrics on this address")
	flagSet.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n\nFlags:\n%s", errUsage, flagSet.FlagUsages())
	}

	if err := flagSet.Parse(args); err != nil {
		return err
	}

	cm, err := common.NewConfigManager[types.AppConfig](common.ConfigOptions{Path: configPath})
	if err != nil {
		return err
	}

	overrides := map[string]interface{}{}
	if flagSet.Changed("debug") {
		overrides["debugMode"] = debug
		overrides["filesystem.debug"] = debug
	}
	if flagSet.Changed("docker-host") {
		overrides["engine.host"] = dockerHost
	}
	if flagSet.Changed("allow-other") {
		overrides["filesystem.allowOther"] = allowOther
	}
	if flagSet.Changed("metrics-address") {
		overrides["monitoring.metricsAddress"] = metricsAddress
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		if len(rest) > 1 {
			return errUsage
		}
		overrides["mountPoint"] = rest[0]
	}
	for key, value := range overrides {
		if err := cm.Set(key, value); err != nil {
			return err
		}
	}

	config, err := cm.GetConfig()
	if err != nil {
		return err
	}
	if config.MountPoint == "" {
		flagSet.Usage()
		return errUsage
	}

	closer, err := common.ConfigureLogging(config)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := engine.NewDockerClient(config.Engine)
	if err != nil {
		return err
	}

	if err := engine.WaitForEngine(ctx, client, config.Engine); err != nil {
		client.Close()
		return fmt.Errorf("container engine unavailable: %w", err)
	}

	fsys := dockerfs.NewFileSystem(config, client)
	defer fsys.Close()

	if err := fsys.Mount(ctx, config.MountPoint); err != nil {
		return err
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-hup:
				fsys.Refresh()
			case <-ctx.Done():
				return
			}
		}
	}()

	fsys.Wait()
	log.Info().Msg("dockerfs stopped")

	return nil
}
