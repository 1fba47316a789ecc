// File: mindbloom/utils/auth_session.go
package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const WebSessionPrefix = "webSession:"

var ErrSessionNotFound = errors.New("session not found")

// WebSession is the server-side state of one browser. It carries the backend
// bearer token that the browser would otherwise keep in local storage.
type WebSession struct {
	ID            string    `json:"id"`
	Token         string    `json:"token,omitempty"`
	Email         string    `json:"email,omitempty"`
	Name          string    `json:"name,omitempty"`
	Admin         bool      `json:"admin,omitempty"`
	Flash         string    `json:"flash,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// Authenticated reports whether a backend token is attached.
func (s *WebSession) Authenticated() bool {
	return s != nil && s.Token != ""
}

// Login attaches the backend token and the user details decoded from it.
func (s *WebSession) Login(token string) {
	s.Token = token
	s.Email = ""
	s.Name = ""
	if claims, err := DecodeToken(token); err == nil {
		s.Email = claims.Email
		s.Name = claims.Name
	}
}

// Logout drops the token and user details but keeps the session itself.
func (s *WebSession) Logout() {
	s.Token = ""
	s.Email = ""
	s.Name = ""
}

// PopFlash returns the pending flash message and clears it.
func (s *WebSession) PopFlash() string {
	msg := s.Flash
	s.Flash = ""
	return msg
}

// SessionStore keeps web sessions in Redis with a sliding TTL. With a
// sealer set, the backend token is encrypted before it reaches Redis.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
	sealer *Sealer
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

// WithSealer enables token encryption at rest.
func (s *SessionStore) WithSealer(sealer *Sealer) *SessionStore {
	s.sealer = sealer
	return s
}

// New returns a fresh, unsaved session.
func (s *SessionStore) New() *WebSession {
	now := time.Now()
	return &WebSession{
		ID:            uuid.New().String(),
		CreatedAt:     now,
		LastUpdatedAt: now,
	}
}

// Save stores the session and refreshes its TTL.
func (s *SessionStore) Save(ctx context.Context, session *WebSession) error {
	session.LastUpdatedAt = time.Now()
	stored := *session
	if s.sealer != nil && stored.Token != "" {
		sealed, err := s.sealer.Seal(stored.Token)
		if err != nil {
			return fmt.Errorf("failed to seal session token: %w", err)
		}
		stored.Token = sealed
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal web session: %w", err)
	}
	if err := s.client.Set(ctx, WebSessionPrefix+session.ID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save web session: %w", err)
	}
	return nil
}

// Get loads a session by id.
func (s *SessionStore) Get(ctx context.Context, id string) (*WebSession, error) {
	data, err := s.client.Get(ctx, WebSessionPrefix+id).Result()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load web session: %w", err)
	}
	var session WebSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal web session: %w", err)
	}
	if s.sealer != nil && session.Token != "" {
		token, err := s.sealer.Open(session.Token)
		if err != nil {
			// Sealed under another secret: the user logs in again.
			GetLogger().Warn("Dropping unreadable session token", zap.String("sessionID", id), zap.Error(err))
			session.Logout()
		} else {
			session.Token = token
		}
	}
	return &session, nil
}

// Rotate gives session a new id and deletes the record kept under the old
// one. The session itself is saved by the caller as usual.
func (s *SessionStore) Rotate(ctx context.Context, session *WebSession) error {
	oldID := session.ID
	session.ID = uuid.New().String()
	if oldID == "" {
		return nil
	}
	if err := s.Delete(ctx, oldID); err != nil {
		return fmt.Errorf("failed to delete rotated web session: %w", err)
	}
	return nil
}

// Delete removes a session.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, WebSessionPrefix+id).Err()
}

// TTL is the lifetime applied on every save.
func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}
