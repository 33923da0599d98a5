package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/beam-cloud/dockerfs/pkg/types"
	dockertypes "github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/volume"
	"github.com/docker/docker/client"
	"github.com/docker/docker/errdefs"
)

const danglingTag = "<none>:<none>"

// DockerClient talks to a Docker engine over its HTTP API.
type DockerClient struct {
	cli *client.Client
}

func NewDockerClient(config types.EngineConfig) (*DockerClient, error) {
	opts := []client.Opt{client.FromEnv}
	if config.Host != "" {
		opts = append(opts, client.WithHost(config.Host))
	}
	if config.APIVersion != "" {
		opts = append(opts, client.WithVersion(config.APIVersion))
	} else {
		opts = append(opts, client.WithAPIVersionNegotiation())
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}

	return &DockerClient{cli: cli}, nil
}

func (d *DockerClient) List(ctx context.Context, category types.Category, includeAll bool) ([]types.Resource, error) {
	switch category {
	case types.CategoryVolumes:
		// Volumes have no stopped state; includeAll has no meaning here.
		resp, err := d.cli.VolumeList(ctx, volume.ListOptions{})
		if err != nil {
			return nil, err
		}
		resources := make([]types.Resource, 0, len(resp.Volumes))
		for _, v := range resp.Volumes {
			if v == nil {
				continue
			}
			resources = append(resources, volumeResource(*v))
		}
		return resources, nil

	case types.CategoryImages:
		summaries, err := d.cli.ImageList(ctx, image.ListOptions{All: includeAll})
		if err != nil {
			return nil, err
		}
		resources := make([]types.Resource, 0, len(summaries))
		for _, s := range summaries {
			resources = append(resources, imageResource(s))
		}
		return resources, nil

	case types.CategoryContainers:
		containers, err := d.cli.ContainerList(ctx, container.ListOptions{All: includeAll})
		if err != nil {
			return nil, err
		}
		resources := make([]types.Resource, 0, len(containers))
		for _, c := range containers {
			resources = append(resources, containerResource(c))
		}
		return resources, nil
	}

	return nil, &types.ErrResourceNotFound{Name: string(category)}
}

func (d *DockerClient) Get(ctx context.Context, category types.Category, idOrName string) (*types.Resource, error) {
	var (
		res types.Resource
		err error
	)

	switch category {
	case types.CategoryVolumes:
		var v volume.Volume
		v, err = d.cli.VolumeInspect(ctx, idOrName)
		if err == nil {
			res = volumeResource(v)
		}
	case types.CategoryImages:
		var inspect dockertypes.ImageInspect
		inspect, _, err = d.cli.ImageInspectWithRaw(ctx, idOrName)
		if err == nil {
			res = imageInspectResource(inspect)
		}
	case types.CategoryContainers:
		var inspect dockertypes.ContainerJSON
		inspect, err = d.cli.ContainerInspect(ctx, idOrName)
		if err == nil {
			res = containerInspectResource(inspect)
		}
	default:
		return nil, &types.ErrResourceNotFound{Category: category, Name: idOrName}
	}

	if err != nil {
		// The engine rejects keys it cannot parse as a reference, such as
		// uppercase names; no resource can carry them.
		if errdefs.IsNotFound(err) || errdefs.IsInvalidParameter(err) {
			return nil, &types.ErrResourceNotFound{Category: category, Name: idOrName}
		}
		return nil, err
	}

	return &res, nil
}

func (d *DockerClient) DiskUsage(ctx context.Context) (map[string]int64, error) {
	usage, err := d.cli.DiskUsage(ctx, dockertypes.DiskUsageOptions{})
	if err != nil {
		return nil, err
	}
	return diskUsageSizes(usage), nil
}

func (d *DockerClient) Ping(ctx context.Context) error {
	_, err := d.cli.Ping(ctx)
	return err
}

func (d *DockerClient) Close() error {
	return d.cli.Close()
}

func diskUsageSizes(usage dockertypes.DiskUsage) map[string]int64 {
	sizes := make(map[string]int64, len(usage.Images)+len(usage.Containers)+len(usage.Volumes))

	for _, i := range usage.Images {
		if i != nil {
			sizes[i.ID] = i.Size
		}
	}

	for _, c := range usage.Containers {
		if c == nil {
			continue
		}
		size := c.SizeRootFs
		if size <= 0 {
			size = c.SizeRw
		}
		sizes[c.ID] = size
	}

	for _, v := range usage.Volumes {
		// A size of -1 means the engine could not compute it.
		if v != nil && v.UsageData != nil && v.UsageData.Size >= 0 {
			sizes[v.Name] = v.UsageData.Size
		}
	}

	return sizes
}

// Volumes are identified by name; the engine has no separate ID.
func volumeResource(v volume.Volume) types.Resource {
	res := types.Resource{
		Category:  types.CategoryVolumes,
		ID:        v.Name,
		Names:     []string{v.Name},
		CreatedAt: v.CreatedAt,
	}
	if v.UsageData != nil && v.UsageData.Size > 0 {
		res.Size = v.UsageData.Size
	}
	return res
}

func imageResource(s image.Summary) types.Resource {
	return types.Resource{
		Category:    types.CategoryImages,
		ID:          s.ID,
		Names:       imageTags(s.RepoTags),
		CreatedUnix: s.Created,
		Size:        s.Size,
	}
}

func imageInspectResource(i dockertypes.ImageInspect) types.Resource {
	return types.Resource{
		Category:    types.CategoryImages,
		ID:          i.ID,
		Names:       imageTags(i.RepoTags),
		CreatedUnix: parseUnix(i.Created),
		Size:        i.Size,
	}
}

func containerResource(c dockertypes.Container) types.Resource {
	names := make([]string, 0, len(c.Names))
	for _, n := range c.Names {
		names = append(names, strings.TrimPrefix(n, "/"))
	}
	return types.Resource{
		Category:    types.CategoryContainers,
		ID:          c.ID,
		Names:       names,
		CreatedUnix: c.Created,
		SizeRootFs:  c.SizeRootFs,
	}
}

func containerInspectResource(c dockertypes.ContainerJSON) types.Resource {
	res := types.Resource{Category: types.CategoryContainers}
	if c.ContainerJSONBase == nil {
		return res
	}

	res.ID = c.ID
	res.Names = []string{strings.TrimPrefix(c.Name, "/")}
	res.CreatedUnix = parseUnix(c.Created)
	if c.SizeRootFs != nil {
		res.SizeRootFs = *c.SizeRootFs
	}
	return res
}

func imageTags(repoTags []string) []string {
	tags := make([]string, 0, len(repoTags))
	for _, t := range repoTags {
		if t == "" || t == danglingTag {
			continue
		}
		tags = append(tags, t)
	}
	return tags
}

func parseUnix(s string) int64 {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return 0
	}
	return t.Unix()
}
