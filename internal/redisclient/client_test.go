package redisclient

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	mr := miniredis.RunT(t)

	client, err := NewClient(mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return client
}

func TestBindOrderIDFirstWriterWins(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	bound, err := client.BindOrderID(ctx, "key-1", "ORDER-A", time.Minute)
	require.NoError(t, err)
	assert.True(t, bound)

	// A concurrent submission that minted its own id loses the bind and must
	// fall back to the winner's id.
	bound, err = client.BindOrderID(ctx, "key-1", "ORDER-B", time.Minute)
	require.NoError(t, err)
	assert.False(t, bound)

	orderID, err := client.OrderIDForKey(ctx, "key-1")
	require.NoError(t, err)
	assert.Equal(t, "ORDER-A", orderID)
}

func TestOrderIDForKeyUnknown(t *testing.T) {
	client := newTestClient(t)

	orderID, err := client.OrderIDForKey(context.Background(), "never-bound")
	require.NoError(t, err)
	assert.Empty(t, orderID)
}

func TestGetJSONMiss(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	var dest []string
	hit, err := client.GetJSON(ctx, "missing", &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, client.SetJSON(ctx, "present", []string{"a", "b"}, time.Minute))
	hit, err = client.GetJSON(ctx, "present", &dest)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"a", "b"}, dest)
}
