package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/talentotech/storefront/internal/domain"
	"github.com/talentotech/storefront/internal/inventory"
	"github.com/talentotech/storefront/internal/storage"
)

// KV keys, kept compatible with the stored-credential layout.
const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyUser         = "user"
)

// Session is the single session context object, constructed once at
// startup and passed to every consumer. It owns the stored credentials
// and the cached user snapshot, and it is the inventory client's token
// source: expiry anywhere in the session funnels back here.
type Session struct {
	mu     sync.RWMutex
	id     uuid.UUID
	kv     storage.KV
	client *inventory.Client
	logger *zap.Logger

	access  string
	refresh string
	user    *domain.User
}

// New restores any stored credentials and wires the session into the
// inventory client as token source and session-expired handler.
func New(ctx context.Context, kv storage.KV, client *inventory.Client, logger *zap.Logger) *Session {
	s := &Session{
		id:     uuid.New(),
		kv:     kv,
		client: client,
		logger: logger,
	}
	s.restore(ctx)

	client.SetTokenSource(s)
	client.OnSessionExpired(func() {
		s.Expire(context.Background())
	})
	return s
}

func (s *Session) restore(ctx context.Context) {
	access, err := s.kv.Get(ctx, keyAccessToken)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("Failed to read stored token", zap.Error(err))
		}
		return
	}

	userData, err := s.kv.Get(ctx, keyUser)
	if err != nil {
		// Token without a user snapshot is an incomplete login; drop it.
		s.purge(ctx)
		return
	}

	var user domain.User
	if err := json.Unmarshal(userData, &user); err != nil {
		s.logger.Warn("Discarding malformed user snapshot", zap.Error(err))
		s.purge(ctx)
		return
	}

	s.access = string(access)
	if refresh, err := s.kv.Get(ctx, keyRefreshToken); err == nil {
		s.refresh = string(refresh)
	}
	s.user = &user
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// AccessToken implements inventory.TokenSource.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

// IsAuthenticated reports whether the session holds credentials.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access != ""
}

// User returns a copy of the cached user snapshot, or nil.
func (s *Session) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsStaff reports whether the session user holds the staff role.
func (s *Session) IsStaff() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.IsStaff
}

// Login exchanges credentials for tokens and persists them together with
// a minimal user snapshot.
func (s *Session) Login(ctx context.Context, username, password string) error {
	tokens, err := s.client.Login(ctx, username, password)
	if err != nil {
		return err
	}

	// The auth service exposes no profile endpoint; the staff flag follows
	// the reserved admin account name.
	user := &domain.User{
		Username: username,
		IsStaff:  strings.EqualFold(username, "admin"),
	}

	s.mu.Lock()
	s.access = tokens.Access
	s.refresh = tokens.Refresh
	s.user = user
	s.mu.Unlock()

	if err := s.kv.Set(ctx, keyAccessToken, []byte(tokens.Access)); err != nil {
		s.logger.Warn("Failed to persist access token", zap.Error(err))
	}
	if err := s.kv.Set(ctx, keyRefreshToken, []byte(tokens.Refresh)); err != nil {
		s.logger.Warn("Failed to persist refresh token", zap.Error(err))
	}
	if data, err := json.Marshal(user); err == nil {
		if err := s.kv.Set(ctx, keyUser, data); err != nil {
			s.logger.Warn("Failed to persist user snapshot", zap.Error(err))
		}
	}

	s.logger.Info("Session started", zap.String("username", username))
	return nil
}

// Register creates an account; the caller still has to log in afterwards.
func (s *Session) Register(ctx context.Context, username, email, password string) error {
	return s.client.Register(ctx, username, email, password)
}

// Logout clears credentials in memory and in the KV.
func (s *Session) Logout(ctx context.Context) {
	s.purge(ctx)
	s.logger.Info("Session ended")
}

// Expire is the 401 path: same teardown as logout, different log line.
func (s *Session) Expire(ctx context.Context) {
	s.purge(ctx)
	s.logger.Warn("Session expired, credentials cleared")
}

func (s *Session) purge(ctx context.Context) {
	s.mu.Lock()
	s.access = ""
	s.refresh = ""
	s.user = nil
	s.mu.Unlock()

	for _, key := range []string{keyAccessToken, keyRefreshToken, keyUser} {
		if err := s.kv.Delete(ctx, key); err != nil {
			s.logger.Warn("Failed to delete session key", zap.String("key", key), zap.Error(err))
		}
	}
}
