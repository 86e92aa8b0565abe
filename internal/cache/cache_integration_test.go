//go:build integration
// +build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ihateani-me/ihaapi-go/internal/db/testutil"
)

type payload struct {
	Total int      `json:"total"`
	Items []string `json:"items"`
}

func TestCacheRoundTrip(t *testing.T) {
	tr := testutil.SetupTestRedis(t)
	defer tr.Cleanup(t)

	ctx := context.Background()
	svc := NewFromClient(tr.Client)

	t.Run("miss returns found false", func(t *testing.T) {
		var out payload
		found, ttl, err := svc.GetWithTTL(ctx, "missing-key", &out)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Zero(t, ttl)
	})

	t.Run("set then get", func(t *testing.T) {
		in := payload{Total: 2, Items: []string{"a", "b"}}
		require.NoError(t, svc.SetEX(ctx, "some-key", in, 30*time.Second))

		var out payload
		found, ttl, err := svc.GetWithTTL(ctx, "some-key", &out)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, in, out)
		assert.Greater(t, ttl, 20*time.Second)
		assert.LessOrEqual(t, ttl, 30*time.Second)
	})

	t.Run("delete by pattern", func(t *testing.T) {
		require.NoError(t, svc.SetEX(ctx, "vtapi-gqlcache-live-a", payload{}, time.Minute))
		require.NoError(t, svc.SetEX(ctx, "vtapi-gqlcache-channels-b", payload{}, time.Minute))
		require.NoError(t, svc.SetEX(ctx, "other-key", payload{}, time.Minute))

		removed, err := svc.Delete(ctx, "vtapi-gqlcache-*")
		require.NoError(t, err)
		assert.EqualValues(t, 2, removed)

		var out payload
		found, _, err := svc.GetWithTTL(ctx, "other-key", &out)
		require.NoError(t, err)
		assert.True(t, found)
	})
}
