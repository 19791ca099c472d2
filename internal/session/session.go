// Package session provides Valkey-backed HTTP session management.
// Sessions are identified by a secure cookie and stored as JSON in Valkey
// with automatic TTL expiry. Expiry extension goes through an explicit
// Refresh call governed by an injectable policy, so the host application
// decides when recovery runs (request middleware, lifecycle hooks) instead
// of the store wiring itself up.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// CookieName is the name of the session cookie sent to the browser.
	CookieName = "hpk_session"

	// DefaultTTL is how long a session lives in Valkey before automatic expiry.
	DefaultTTL = 24 * time.Hour

	// keyPrefix namespaces session keys in Valkey to avoid collisions.
	keyPrefix = "session:"

	// idLength is the byte length of the random session ID (32 bytes = 64 hex chars).
	idLength = 32
)

// Data holds the session payload stored in Valkey.
type Data struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

// RefreshPolicy bounds how often and how long TTL refreshes may run.
type RefreshPolicy struct {
	// MinInterval is the minimum time between two refreshes of the same
	// session. Calls inside the window are no-ops.
	MinInterval time.Duration

	// Cooldown suppresses further attempts after a failed refresh, so a
	// struggling Valkey is not hammered on every request.
	Cooldown time.Duration

	// Timeout caps a single refresh round trip.
	Timeout time.Duration
}

// DefaultRefreshPolicy suits per-request middleware refreshing.
var DefaultRefreshPolicy = RefreshPolicy{
	MinInterval: 5 * time.Minute,
	Cooldown:    30 * time.Second,
	Timeout:     2 * time.Second,
}

// Store manages session lifecycle in Valkey.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	policy RefreshPolicy

	mu          sync.Mutex
	lastRefresh map[string]time.Time // session ID -> last successful refresh
	failedAt    time.Time            // last refresh failure, for the cooldown
	lastPrune   time.Time            // last lastRefresh sweep
}

// NewStore creates a session store backed by the given Valkey client.
func NewStore(client *redis.Client, policy RefreshPolicy) *Store {
	if policy.Timeout == 0 {
		policy = DefaultRefreshPolicy
	}
	return &Store{
		client:      client,
		ttl:         DefaultTTL,
		policy:      policy,
		lastRefresh: make(map[string]time.Time),
	}
}

// Create generates a new session, stores it in Valkey, and sets the
// session cookie on the response. Returns the session ID.
func (s *Store) Create(ctx context.Context, w http.ResponseWriter, data *Data) (string, error) {
	id, err := generateID()
	if err != nil {
		return "", fmt.Errorf("session create: %w", err)
	}

	data.CreatedAt = time.Now()

	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("session marshal: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+id, payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("session store: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true behind TLS in production
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.ttl.Seconds()),
	})

	return id, nil
}

// Get retrieves session data from Valkey using the session ID from the
// request cookie. Returns nil if no valid session exists.
func (s *Store) Get(ctx context.Context, r *http.Request) (*Data, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, nil // No cookie = no session (not an error)
	}

	payload, err := s.client.Get(ctx, keyPrefix+cookie.Value).Bytes()
	if err == redis.Nil {
		return nil, nil // Session expired or doesn't exist
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}

	var data Data
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("session unmarshal: %w", err)
	}

	return &data, nil
}

// Refresh extends the session TTL, subject to the store's policy: a
// session refreshed within MinInterval is left alone, and after a failure
// no attempt is made until Cooldown passes. Callers invoke this from
// request middleware or lifecycle hooks; it never blocks longer than the
// policy Timeout.
func (s *Store) Refresh(ctx context.Context, r *http.Request) error {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil
	}
	id := cookie.Value

	s.mu.Lock()
	now := time.Now()
	s.pruneLocked(now)
	if now.Sub(s.lastRefresh[id]) < s.policy.MinInterval {
		s.mu.Unlock()
		return nil
	}
	if now.Sub(s.failedAt) < s.policy.Cooldown {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.policy.Timeout)
	defer cancel()

	ok, err := s.client.Expire(ctx, keyPrefix+id, s.ttl).Result()
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.failedAt = time.Now()
		return fmt.Errorf("session refresh: %w", err)
	}
	if ok {
		s.lastRefresh[id] = time.Now()
	}
	return nil
}

// pruneLocked sweeps lastRefresh entries that have aged out of the
// MinInterval window. Such entries no longer throttle anything, and
// sessions that expire in Valkey without an explicit logout would
// otherwise accumulate here for the life of the process. Runs at most
// once per MinInterval. Caller must hold s.mu.
func (s *Store) pruneLocked(now time.Time) {
	if now.Sub(s.lastPrune) < s.policy.MinInterval {
		return
	}
	for id, at := range s.lastRefresh {
		if now.Sub(at) >= s.policy.MinInterval {
			delete(s.lastRefresh, id)
		}
	}
	s.lastPrune = now
}

// Update replaces the session data in Valkey without changing the session
// ID or cookie. Resets the TTL.
func (s *Store) Update(ctx context.Context, r *http.Request, data *Data) error {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return fmt.Errorf("session update: no cookie")
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("session marshal: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+cookie.Value, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("session update: %w", err)
	}

	return nil
}

// Destroy removes the session from Valkey and clears the cookie.
func (s *Store) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil // No cookie, nothing to destroy
	}

	s.client.Del(ctx, keyPrefix+cookie.Value)
	s.mu.Lock()
	delete(s.lastRefresh, cookie.Value)
	s.mu.Unlock()

	// Expire the cookie immediately.
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	return nil
}

// generateID creates a cryptographically random session identifier.
func generateID() (string, error) {
	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
