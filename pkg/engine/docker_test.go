package engine

import (
	"testing"

	"github.com/beam-cloud/dockerfs/pkg/types"
	dockertypes "github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/volume"
	"github.com/stretchr/testify/assert"
)

func TestVolumeResource(t *testing.T) {
	res := volumeResource(volume.Volume{
		Name:      "myvol",
		CreatedAt: "2024-03-01T10:00:00Z",
		UsageData: &volume.UsageData{Size: 2048, RefCount: 1},
	})

	assert.Equal(t, types.CategoryVolumes, res.Category)
	assert.Equal(t, "myvol", res.ID)
	assert.Equal(t, []string{"myvol"}, res.Names)
	assert.Equal(t, "2024-03-01T10:00:00Z", res.CreatedAt)
	assert.Equal(t, int64(2048), res.Size)

	res = volumeResource(volume.Volume{Name: "nousage", UsageData: &volume.UsageData{Size: -1}})
	assert.Equal(t, int64(0), res.Size)
}

func TestImageResource(t *testing.T) {
	res := imageResource(image.Summary{
		ID:       "sha256:deadbeef",
		RepoTags: []string{"app:latest", "<none>:<none>", "", "team/app:v2"},
		Created:  1700000000,
		Size:     4096,
	})

	assert.Equal(t, types.CategoryImages, res.Category)
	assert.Equal(t, "sha256:deadbeef", res.ID)
	assert.Equal(t, "deadbeef", res.ShortID())
	assert.Equal(t, []string{"app:latest", "team/app:v2"}, res.Names)
	assert.Equal(t, int64(1700000000), res.CreatedUnix)
	assert.Equal(t, int64(4096), res.Size)
}

func TestImageInspectResource(t *testing.T) {
	res := imageInspectResource(dockertypes.ImageInspect{
		ID:       "sha256:deadbeef",
		RepoTags: []string{"app:latest"},
		Created:  "2023-11-14T22:13:20.123456789Z",
		Size:     10,
	})

	assert.Equal(t, int64(1700000000), res.CreatedUnix)
	assert.Equal(t, []string{"app:latest"}, res.Names)

	res = imageInspectResource(dockertypes.ImageInspect{ID: "sha256:x", Created: "not a time"})
	assert.Equal(t, int64(0), res.CreatedUnix)
	assert.Empty(t, res.Names)
}

func TestContainerResource(t *testing.T) {
	res := containerResource(dockertypes.Container{
		ID:         "abc123",
		Names:      []string{"/web", "/web-alias"},
		Created:    1700000000,
		SizeRootFs: 512,
	})

	assert.Equal(t, types.CategoryContainers, res.Category)
	assert.Equal(t, []string{"web", "web-alias"}, res.Names)
	assert.Equal(t, int64(512), res.SizeRootFs)
}

func TestContainerInspectResource(t *testing.T) {
	size := int64(4096)
	res := containerInspectResource(dockertypes.ContainerJSON{
		ContainerJSONBase: &dockertypes.ContainerJSONBase{
			ID:         "abc123",
			Name:       "/web",
			Created:    "2023-11-14T22:13:20Z",
			SizeRootFs: &size,
		},
	})

	assert.Equal(t, "abc123", res.ID)
	assert.Equal(t, []string{"web"}, res.Names)
	assert.Equal(t, int64(1700000000), res.CreatedUnix)
	assert.Equal(t, size, res.SizeRootFs)

	res = containerInspectResource(dockertypes.ContainerJSON{})
	assert.Equal(t, "", res.ID)
}

func TestDiskUsageSizes(t *testing.T) {
	sizes := diskUsageSizes(dockertypes.DiskUsage{
		Images: []*image.Summary{
			{ID: "sha256:a", Size: 100},
			nil,
		},
		Containers: []*dockertypes.Container{
			{ID: "c1", SizeRootFs: 300, SizeRw: 10},
			{ID: "c2", SizeRw: 20},
		},
		Volumes: []*volume.Volume{
			{Name: "v1", UsageData: &volume.UsageData{Size: 400}},
			{Name: "v2", UsageData: &volume.UsageData{Size: -1}},
			{Name: "v3"},
		},
	})

	assert.Equal(t, map[string]int64{
		"sha256:a": 100,
		"c1":       300,
		"c2":       20,
		"v1":       400,
	}, sizes)
}
