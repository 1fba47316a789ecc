package booking

import (
	"context"
	"testing"
	"time"

	"mindbloom/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*FlowStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewFlowStore(client, time.Hour), mr
}

func TestFlowStoreLoadMissing(t *testing.T) {
	store, _ := newTestStore(t)

	state, err := store.Load(context.Background(), "sid")
	require.NoError(t, err)
	assert.Equal(t, NewState(), state)
}

func TestFlowStoreRoundTrip(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	state := NewState()
	state.Phase = PhaseConfirmed
	state.SelectedDate = "2025-04-15"
	state.SelectedTime = "09:00 - 09:30"
	state.SlotID = 1
	state.Appointment = &models.Appointment{ID: 10, Date: "2025-04-15", Status: models.StatusBooked}

	require.NoError(t, store.Save(ctx, "sid", state))
	assert.Equal(t, time.Hour, mr.TTL(flowPrefix+"sid"))

	loaded, err := store.Load(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, state, loaded)

	require.NoError(t, store.Clear(ctx, "sid"))
	assert.False(t, mr.Exists(flowPrefix+"sid"))
}

func TestFlowStoreNeverPersistsLoading(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	state := NewState()
	state.Phase = PhaseLoading
	require.NoError(t, store.Save(ctx, "sid", state))

	loaded, err := store.Load(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, PhaseError, loaded.Phase)
}

func TestFlowStoreLoadCorrupt(t *testing.T) {
	store, mr := newTestStore(t)
	require.NoError(t, mr.Set(flowPrefix+"sid", "{not json"))

	state, err := store.Load(context.Background(), "sid")
	assert.Error(t, err)
	assert.Equal(t, NewState(), state)
}

func TestFlowStoreLock(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	unlock, err := store.Lock(ctx, "sid")
	require.NoError(t, err)
	assert.True(t, mr.Exists(lockPrefix+"sid"))

	_, err = store.Lock(ctx, "sid")
	assert.ErrorIs(t, err, ErrInFlight)

	other, err := store.Lock(ctx, "other")
	require.NoError(t, err)
	other()

	unlock()
	assert.False(t, mr.Exists(lockPrefix+"sid"))

	again, err := store.Lock(ctx, "sid")
	require.NoError(t, err)
	again()
}

func TestFlowStoreUnlockKeepsForeignLock(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	unlock, err := store.Lock(ctx, "sid")
	require.NoError(t, err)

	// The lock expired and another request took it.
	mr.FastForward(defaultLockTTL + time.Second)
	require.NoError(t, mr.Set(lockPrefix+"sid", "someone-else"))

	unlock()
	got, err := mr.Get(lockPrefix + "sid")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}
