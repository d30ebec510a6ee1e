package redis

import (
	"context"
	"fmt"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/huynhanx03/item-store/pkg/settings"
)

const (
	redisImage = "redis:7-alpine"
	redisPort  = "6379/tcp"
)

func TestStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	if !isDockerRunning(ctx) {
		t.Skip("Docker is not running, skipping integration test")
	}

	addr, terminate, err := setupRedisBox(ctx)
	if err != nil {
		t.Fatalf("failed to setup redis container: %v", err)
	}
	defer terminate()

	store, err := NewConnection(&settings.Redis{Addrs: []string{addr}, KeepAlive: true})
	require.NoError(t, err)
	defer store.Close()

	results, err := store.MSet(ctx, map[string][]byte{"it:a:1": []byte("x")}, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true}, results)

	values, err := store.MGet(ctx, []string{"it:a:1", "it:a:2"})
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("x"), nil}, values)

	ttl, err := store.TTL(ctx, "it:a:1")
	require.NoError(t, err)
	assert.InDelta(t, time.Minute.Seconds(), ttl.Seconds(), 2)

	require.NoError(t, store.Delete(ctx, []string{"it:a:1"}))
	values, err = store.MGet(ctx, []string{"it:a:1"})
	require.NoError(t, err)
	assert.Nil(t, values[0])
}

func setupRedisBox(ctx context.Context) (string, func(), error) {
	req := testcontainers.ContainerRequest{
		Image:        redisImage,
		ExposedPorts: []string{redisPort},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx)
		return "", nil, fmt.Errorf("failed to get host: %w", err)
	}

	mappedPort, err := container.MappedPort(ctx, redisPort)
	if err != nil {
		container.Terminate(ctx)
		return "", nil, fmt.Errorf("failed to get mapped port: %w", err)
	}

	terminate := func() {
		if err := container.Terminate(ctx); err != nil {
			fmt.Printf("failed to terminate container: %v\n", err)
		}
	}

	return fmt.Sprintf("%s:%s", host, mappedPort.Port()), terminate, nil
}

func isDockerRunning(ctx context.Context) bool {
	cmd := exec.CommandContext(ctx, "docker", "info")
	if err := cmd.Run(); err != nil {
		return false
	}
	return true
}
