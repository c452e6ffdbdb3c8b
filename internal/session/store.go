package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrNoSession is returned by Store.Load when nothing is stored.
var ErrNoSession = errors.New("no stored session")

// Store persists the encoded identity between runs.
type Store interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Clear(ctx context.Context) error
}

// FileStore keeps the identity in a single JSON file readable only by the owner.
type FileStore struct {
	path string
}

func NewFileStore(path string) (*FileStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return &FileStore{path: path}, nil
}

// DefaultPath is <user config dir>/quiz-client/session.json.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "quiz-client", "session.json"), nil
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, ErrNoSession
	}
	return data, nil
}

func (s *FileStore) Save(_ context.Context, data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, s.path)
}

func (s *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// NewRedisClient creates and validates a Redis client connection.
func NewRedisClient(ctx context.Context, url string, log zerolog.Logger) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	log.Info().
		Str("addr", opt.Addr).
		Int("db", opt.DB).
		Msg("Redis connected")

	return rdb, nil
}

const redisKeyPrefix = "quiz-client:session:"

// RedisStore shares the identity between terminals of one lab machine profile.
type RedisStore struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

// NewRedisStore stores under quiz-client:session:<profile>. A zero ttl keeps the
// key until it is cleared.
func NewRedisStore(rdb *redis.Client, profile string, ttl time.Duration) *RedisStore {
	profile = strings.TrimSpace(profile)
	if profile == "" {
		profile = "default"
	}
	return &RedisStore{rdb: rdb, key: redisKeyPrefix + profile, ttl: ttl}
}

func (s *RedisStore) Key() string {
	return s.key
}

func (s *RedisStore) Load(ctx context.Context) ([]byte, error) {
	data, err := s.rdb.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	return data, nil
}

func (s *RedisStore) Save(ctx context.Context, data []byte) error {
	if err := s.rdb.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	return nil
}
