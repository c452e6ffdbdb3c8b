// Package session holds the logged-in identity and persists it across runs.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"quiz-client/internal/quiz"
)

var ErrCorruptSession = errors.New("stored session is corrupt")

// Manager is the session context handed to the views. Current is safe to call from
// any goroutine.
type Manager struct {
	store Store
	log   zerolog.Logger
	now   func() time.Time

	mu       sync.RWMutex
	identity *quiz.Identity
}

func NewManager(store Store, log zerolog.Logger) *Manager {
	return &Manager{
		store: store,
		log:   log.With().Str("component", "session").Logger(),
		now:   time.Now,
	}
}

// Restore loads the stored identity. Corrupt state is cleared and reported as
// unauthenticated (ok == false, err == nil); only store failures are returned.
func (m *Manager) Restore(ctx context.Context) (quiz.Identity, bool, error) {
	data, err := m.store.Load(ctx)
	if errors.Is(err, ErrNoSession) {
		return quiz.Identity{}, false, nil
	}
	if err != nil {
		return quiz.Identity{}, false, fmt.Errorf("load session: %w", err)
	}

	identity, err := m.decode(data)
	if err != nil {
		m.log.Warn().Err(err).Msg("Discarding stored session")
		if clearErr := m.store.Clear(ctx); clearErr != nil {
			return quiz.Identity{}, false, fmt.Errorf("clear session: %w", clearErr)
		}
		m.set(nil)
		return quiz.Identity{}, false, nil
	}

	m.set(&identity)
	m.log.Debug().Str("student_id", identity.StudentID.String()).Msg("Session restored")
	return identity, true, nil
}

// Establish records a fresh login and persists it.
func (m *Manager) Establish(ctx context.Context, identity quiz.Identity) error {
	if identity.StudentID.Empty() {
		return errors.New("identity has no student id")
	}

	data, err := json.Marshal(identity)
	if err != nil {
		return err
	}
	if err := m.store.Save(ctx, data); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	m.set(&identity)
	m.log.Info().Str("student_id", identity.StudentID.String()).Msg("Logged in")
	return nil
}

// End logs out and removes the persisted identity.
func (m *Manager) End(ctx context.Context) error {
	m.set(nil)
	if err := m.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	m.log.Info().Msg("Logged out")
	return nil
}

func (m *Manager) Current() (quiz.Identity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.identity == nil {
		return quiz.Identity{}, false
	}
	return *m.identity, true
}

func (m *Manager) set(identity *quiz.Identity) {
	m.mu.Lock()
	m.identity = identity
	m.mu.Unlock()
}

func (m *Manager) decode(data []byte) (quiz.Identity, error) {
	var identity quiz.Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		return quiz.Identity{}, fmt.Errorf("%w: %v", ErrCorruptSession, err)
	}
	if identity.StudentID.Empty() {
		return quiz.Identity{}, fmt.Errorf("%w: missing student id", ErrCorruptSession)
	}
	if err := m.checkToken(identity.Token); err != nil {
		return quiz.Identity{}, err
	}
	return identity, nil
}

// checkToken rejects malformed or expired JWTs. The signature is the backend's to
// verify; opaque tokens are accepted as they are.
func (m *Manager) checkToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" || strings.Count(token, ".") != 2 {
		return nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return fmt.Errorf("%w: token: %v", ErrCorruptSession, err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return fmt.Errorf("%w: token exp: %v", ErrCorruptSession, err)
	}
	if exp != nil && !exp.After(m.now()) {
		return fmt.Errorf("%w: token expired at %s", ErrCorruptSession, exp.UTC().Format(time.RFC3339))
	}
	return nil
}
