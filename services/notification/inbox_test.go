package notification

import (
	"context"
	"fmt"
	"testing"
	"time"

	"mindbloom/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInbox(t *testing.T) (*RedisInbox, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisInbox(client), mr
}

func TestInboxNewestFirstAndCapped(t *testing.T) {
	inbox, mr := newTestInbox(t)
	ctx := context.Background()

	for i := 0; i < InboxCapacity+5; i++ {
		require.NoError(t, inbox.Push(ctx, "user-1", models.Notice{Title: fmt.Sprintf("n%d", i)}))
	}

	all, err := inbox.List(ctx, "user-1", 0)
	require.NoError(t, err)
	assert.Len(t, all, InboxCapacity)
	assert.Equal(t, fmt.Sprintf("n%d", InboxCapacity+4), all[0].Title)
	assert.False(t, all[0].CreatedAt.IsZero())
	assert.Equal(t, inboxTTL, mr.TTL(inboxPrefix+"user-1"))

	few, err := inbox.List(ctx, "user-1", 3)
	require.NoError(t, err)
	assert.Len(t, few, 3)

	other, err := inbox.List(ctx, "user-2", 5)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestInboxRequiresRecipient(t *testing.T) {
	inbox, _ := newTestInbox(t)

	assert.Error(t, inbox.Push(context.Background(), "", models.Notice{Title: "x", CreatedAt: time.Now()}))
	notices, err := inbox.List(context.Background(), "", 5)
	assert.NoError(t, err)
	assert.Nil(t, notices)
}
