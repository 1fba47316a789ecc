package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	flowPrefix = "bookingFlow:"
	lockPrefix = "bookingLock:"

	defaultLockTTL = 30 * time.Second
)

// unlockScript deletes the lock only when it still holds our token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// FlowStore keeps each web session's booking state in Redis.
type FlowStore struct {
	client  *redis.Client
	ttl     time.Duration
	lockTTL time.Duration
}

func NewFlowStore(client *redis.Client, ttl time.Duration) *FlowStore {
	return &FlowStore{client: client, ttl: ttl, lockTTL: defaultLockTTL}
}

// Load returns the stored state, or a fresh one when none exists.
func (s *FlowStore) Load(ctx context.Context, sessionID string) (State, error) {
	data, err := s.client.Get(ctx, flowPrefix+sessionID).Bytes()
	if err == redis.Nil {
		return NewState(), nil
	}
	if err != nil {
		return NewState(), fmt.Errorf("failed to load booking flow: %w", err)
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return NewState(), fmt.Errorf("failed to unmarshal booking flow: %w", err)
	}
	return state, nil
}

// Save stores state and refreshes its TTL. A request that was interrupted
// mid-flight is never persisted as loading.
func (s *FlowStore) Save(ctx context.Context, sessionID string, state State) error {
	if state.Phase == PhaseLoading {
		state.Phase = PhaseError
	}
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal booking flow: %w", err)
	}
	if err := s.client.Set(ctx, flowPrefix+sessionID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save booking flow: %w", err)
	}
	return nil
}

// Clear drops the stored state.
func (s *FlowStore) Clear(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, flowPrefix+sessionID).Err()
}

// Lock takes the per-session submit lock. It returns ErrInFlight when another
// request holds it. The returned func releases the lock.
func (s *FlowStore) Lock(ctx context.Context, sessionID string) (func(), error) {
	key := lockPrefix + sessionID
	token := uuid.New().String()

	ok, err := s.client.SetNX(ctx, key, token, s.lockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire booking lock: %w", err)
	}
	if !ok {
		return nil, ErrInFlight
	}

	return func() {
		// Released with a fresh context so a canceled request still unlocks.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		// On failure the TTL expires the lock.
		_ = unlockScript.Run(releaseCtx, s.client, []string{key}, token).Err()
	}, nil
}
