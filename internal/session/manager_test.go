package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"quiz-client/internal/quiz"
)

func newFileManager(t *testing.T) (*Manager, *FileStore) {
	t.Helper()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "nested", "session.json"))
	require.NoError(t, err)
	return NewManager(store, zerolog.Nop()), store
}

func signToken(t *testing.T, expires time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "7",
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestRestoreWithoutStoredSession(t *testing.T) {
	manager, _ := newFileManager(t)

	_, ok, err := manager.Restore(context.Background())
	require.NoError(t, err)
	require.False(t, ok)

	_, ok = manager.Current()
	require.False(t, ok)
}

func TestEstablishPersistsAcrossManagers(t *testing.T) {
	ctx := context.Background()
	manager, store := newFileManager(t)

	identity := quiz.Identity{StudentID: quiz.NewID("7"), Name: "Ana", Email: "ana@example.com", Token: signToken(t, time.Now().Add(time.Hour))}
	require.NoError(t, manager.Establish(ctx, identity))

	current, ok := manager.Current()
	require.True(t, ok)
	require.Equal(t, identity, current)

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	restored, ok, err := NewManager(store, zerolog.Nop()).Restore(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, identity, restored)
}

func TestEstablishKeepsStringIDsThatLookNumeric(t *testing.T) {
	ctx := context.Background()
	manager, store := newFileManager(t)

	var identity quiz.Identity
	require.NoError(t, json.Unmarshal([]byte(`{"student_id":"007","name":"Bond"}`), &identity))
	require.NoError(t, manager.Establish(ctx, identity))

	data, err := store.Load(ctx)
	require.NoError(t, err)
	require.Contains(t, string(data), `"student_id":"007"`)

	restored, ok, err := NewManager(store, zerolog.Nop()).Restore(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, identity, restored)
	require.False(t, restored.StudentID.Numeric())
}

func TestEstablishRejectsMissingID(t *testing.T) {
	manager, _ := newFileManager(t)
	require.Error(t, manager.Establish(context.Background(), quiz.Identity{Name: "nobody"}))
}

func TestRestoreDiscardsCorruptState(t *testing.T) {
	cases := map[string]string{
		"bad json":      `{"student_id":`,
		"missing id":    `{"name":"Ana"}`,
		"malformed jwt": `{"student_id":"7","token":"abc.def.ghi"}`,
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			manager, store := newFileManager(t)
			require.NoError(t, store.Save(ctx, []byte(payload)))

			_, ok, err := manager.Restore(ctx)
			require.NoError(t, err)
			require.False(t, ok)

			_, err = store.Load(ctx)
			require.ErrorIs(t, err, ErrNoSession)
		})
	}
}

func TestRestoreDiscardsExpiredToken(t *testing.T) {
	ctx := context.Background()
	manager, store := newFileManager(t)
	require.NoError(t, manager.Establish(ctx, quiz.Identity{StudentID: quiz.NewID("7"), Token: signToken(t, time.Now().Add(-time.Minute))}))

	fresh := NewManager(store, zerolog.Nop())
	_, ok, err := fresh.Restore(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	_, ok = fresh.Current()
	require.False(t, ok)
}

func TestRestoreAcceptsOpaqueToken(t *testing.T) {
	ctx := context.Background()
	manager, store := newFileManager(t)
	require.NoError(t, store.Save(ctx, []byte(`{"id":9,"token":"opaque-session-token"}`)))

	identity, ok, err := manager.Restore(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, quiz.NumericID(9), identity.StudentID)
}

func TestEndClearsStore(t *testing.T) {
	ctx := context.Background()
	manager, store := newFileManager(t)
	require.NoError(t, manager.Establish(ctx, quiz.Identity{StudentID: quiz.NewID("7")}))

	require.NoError(t, manager.End(ctx))
	_, ok := manager.Current()
	require.False(t, ok)

	_, err := store.Load(ctx)
	require.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, manager.End(ctx))
}
