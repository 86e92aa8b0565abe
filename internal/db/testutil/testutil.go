// Package testutil spins up throwaway MongoDB and Redis containers
// for integration tests.
package testutil

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const testDatabase = "vtapi_test"

// TestDatabase represents a test MongoDB instance.
type TestDatabase struct {
	DB        *mongo.Database
	Client    *mongo.Client
	Container *mongodb.MongoDBContainer
	URI       string
}

// SetupTestDatabase creates a MongoDB container and returns a
// connected database handle.
func SetupTestDatabase(t *testing.T) *TestDatabase {
	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetConnectTimeout(10*time.Second))
	require.NoError(t, err)

	err = client.Ping(ctx, readpref.Primary())
	require.NoError(t, err)

	return &TestDatabase{
		DB:        client.Database(testDatabase),
		Client:    client,
		Container: mongoContainer,
		URI:       uri,
	}
}

// Cleanup disconnects the client and terminates the container.
func (td *TestDatabase) Cleanup(t *testing.T) {
	ctx := context.Background()

	if td.Client != nil {
		require.NoError(t, td.Client.Disconnect(ctx))
	}
	if td.Container != nil {
		require.NoError(t, td.Container.Terminate(ctx))
	}
}

// DropCollections drops the named collections for test isolation.
func (td *TestDatabase) DropCollections(t *testing.T, names ...string) {
	ctx := context.Background()
	for _, name := range names {
		require.NoError(t, td.DB.Collection(name).Drop(ctx))
	}
}

// TestRedis represents a test Redis instance.
type TestRedis struct {
	Client    *goredis.Client
	Container *tcredis.RedisContainer
}

// SetupTestRedis creates a Redis container and returns a connected client.
func SetupTestRedis(t *testing.T) *TestRedis {
	ctx := context.Background()

	redisContainer, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)

	uri, err := redisContainer.ConnectionString(ctx)
	require.NoError(t, err)

	opts, err := goredis.ParseURL(uri)
	require.NoError(t, err)

	client := goredis.NewClient(opts)
	require.NoError(t, client.Ping(ctx).Err())

	return &TestRedis{
		Client:    client,
		Container: redisContainer,
	}
}

// Cleanup closes the client and terminates the container.
func (tr *TestRedis) Cleanup(t *testing.T) {
	ctx := context.Background()

	if tr.Client != nil {
		require.NoError(t, tr.Client.Close())
	}
	if tr.Container != nil {
		require.NoError(t, tr.Container.Terminate(ctx))
	}
}
