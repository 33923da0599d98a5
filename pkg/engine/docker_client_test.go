package engine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/beam-cloud/dockerfs/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestDaemon answers every request with the given status and message.
func newTestDaemon(t *testing.T, status int, message string) *DockerClient {
	t.Setenv("DOCKER_HOST", "")
	t.Setenv("DOCKER_TLS_VERIFY", "")
	t.Setenv("DOCKER_CERT_PATH", "")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"message":"` + message + `"}`))
	}))
	t.Cleanup(srv.Close)

	d, err := NewDockerClient(types.EngineConfig{
		Host:       "tcp://" + strings.TrimPrefix(srv.URL, "http://"),
		APIVersion: "1.46",
	})
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func TestDockerGetMisses(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		message  string
		category types.Category
		key      string
	}{
		{"missing image", http.StatusNotFound, "No such image: gone:latest", types.CategoryImages, "gone:latest"},
		{"unparsable reference", http.StatusBadRequest, "invalid reference format: repository name must be lowercase", types.CategoryImages, "_DS_Store"},
		{"missing container", http.StatusNotFound, "No such container: web", types.CategoryContainers, "web"},
		{"missing volume", http.StatusNotFound, "get ghost: no such volume", types.CategoryVolumes, "ghost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDaemon(t, tt.status, tt.message)

			res, err := d.Get(context.Background(), tt.category, tt.key)
			assert.Nil(t, res)
			require.Error(t, err)

			var notFound *types.ErrResourceNotFound
			require.ErrorAs(t, err, &notFound)
			assert.Equal(t, tt.category, notFound.Category)
			assert.Equal(t, tt.key, notFound.Name)
		})
	}
}

func TestDockerGetPassesEngineFailures(t *testing.T) {
	d := newTestDaemon(t, http.StatusInternalServerError, "daemon exploded")

	_, err := d.Get(context.Background(), types.CategoryImages, "app:latest")
	require.Error(t, err)
	assert.False(t, types.IsNotFound(err))
	assert.Contains(t, err.Error(), "daemon exploded")
}
