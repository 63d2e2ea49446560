package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/database"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// Container-backed tests run only with GOJENGA_INTEGRATION=1 and a reachable docker daemon.
func requireIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("GOJENGA_INTEGRATION") != "1" {
		t.Skip("set GOJENGA_INTEGRATION=1 to run container-backed store tests")
	}
}

func startContainer(t *testing.T, req testcontainers.ContainerRequest, port string) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start %s", req.Image)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = c.Terminate(ctx)
	})

	host, err := c.Host(ctx)
	require.NoError(t, err)
	mapped, err := c.MappedPort(ctx, nat.Port(port))
	require.NoError(t, err)
	return fmt.Sprintf("%s:%s", host, mapped.Port())
}

func TestRedisStore_Contract(t *testing.T) {
	requireIntegration(t)

	addr := startContainer(t, testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
	}, "6379/tcp")

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.Ping(context.Background()).Err())

	runStoreContract(t, NewRedisStore(rdb, "it:"))
}

func TestPostgresStore_Contract(t *testing.T) {
	requireIntegration(t)

	const (
		user     = "db_user"
		password = "db_password"
		dbName   = "gojenga"
	)
	addr := startContainer(t, testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     user,
			"POSTGRES_PASSWORD": password,
			"POSTGRES_DB":       dbName,
		},
		// The image restarts once after init; the second "ready" line is the real one.
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}, "5432/tcp")

	dsn := fmt.Sprintf("%s:%s@%s/%s?sslmode=disable", user, password, addr, dbName)
	logger := zap.NewNop()
	require.NoError(t, database.RunMigrations(logger, dsn))

	db, closer, err := database.New(context.Background(), logger, database.Config{PrimaryDSN: dsn, MaxConns: 25})
	require.NoError(t, err)
	t.Cleanup(closer)

	runStoreContract(t, NewPostgresStore(db))
}
