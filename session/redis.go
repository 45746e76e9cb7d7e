package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/itsneelabh/storefront/api"
	"github.com/itsneelabh/storefront/core"
	"github.com/redis/go-redis/v9"
)

// RedisManager keeps sessions in Redis hashes so several storefront
// replicas can share them
type RedisManager struct {
	client *redis.Client
	config Config
	logger core.Logger
	now    func() time.Time

	// Graceful shutdown support
	stopChan  chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	ownClient bool
}

// NewRedisManager connects to redisURL and starts the cleanup routine
func NewRedisManager(redisURL string, config Config, logger core.Logger) (*RedisManager, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, &core.OpError{
			Op:   "session.NewRedisManager",
			Kind: "config",
			Err:  fmt.Errorf("invalid redis URL: %v: %w", err, core.ErrInvalidConfiguration),
		}
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %v: %w", err, core.ErrConnectionFailed)
	}

	m := NewRedisManagerWithClient(client, config, logger)
	m.ownClient = true
	return m, nil
}

// NewRedisManagerWithClient uses an existing client. Close does not close
// a client it did not create.
func NewRedisManagerWithClient(client *redis.Client, config Config, logger core.Logger) *RedisManager {
	if logger == nil {
		logger = core.NoOpLogger{}
	}
	m := &RedisManager{
		client:   client,
		config:   config.withDefaults(),
		logger:   core.WithComponent(logger, "session"),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	m.startCleanupRoutine()
	return m
}

// Create stores a new anonymous session
func (r *RedisManager) Create(ctx context.Context) (*Session, error) {
	now := r.now()
	s := &Session{
		ID:        uuid.New().String(),
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(r.config.TTL),
	}
	if err := r.write(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return s, nil
}

// Get loads a session
func (r *RedisManager) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, core.NewOpError("session.Get", "session", core.ErrSessionNotFound)
	}
	result, err := r.client.HGetAll(ctx, r.sessionKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if len(result) == 0 {
		return nil, &core.OpError{Op: "session.Get", Kind: "session", ID: id, Err: core.ErrSessionNotFound}
	}

	s, err := parseSession(id, result)
	if err != nil {
		return nil, &core.OpError{Op: "session.Get", Kind: "session", ID: id, Err: fmt.Errorf("%v: %w", err, core.ErrSessionNotFound)}
	}
	if s.Expired(r.now()) {
		return nil, &core.OpError{Op: "session.Get", Kind: "session", ID: id, Err: core.ErrSessionExpired}
	}
	return s, nil
}

// Save writes the session back and slides its expiry forward
func (r *RedisManager) Save(ctx context.Context, s *Session) error {
	now := r.now()
	s.UpdatedAt = now
	s.ExpiresAt = now.Add(r.config.TTL)
	if err := r.write(ctx, s); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *RedisManager) write(ctx context.Context, s *Session) error {
	fields := map[string]interface{}{
		"id":         s.ID,
		"token":      s.Token,
		"created_at": s.CreatedAt.Unix(),
		"updated_at": s.UpdatedAt.Unix(),
		"expires_at": s.ExpiresAt.Unix(),
		"user":       "",
		"flashes":    "",
	}
	if s.User != nil {
		data, err := json.Marshal(s.User)
		if err != nil {
			return err
		}
		fields["user"] = string(data)
	}
	if len(s.Flashes) > 0 {
		data, err := json.Marshal(s.Flashes)
		if err != nil {
			return err
		}
		fields["flashes"] = string(data)
	}

	key := r.sessionKey(s.ID)
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, r.config.TTL)
	pipe.SAdd(ctx, r.activeSessionsKey(), s.ID)
	_, err := pipe.Exec(ctx)
	return err
}

// Delete removes a session
func (r *RedisManager) Delete(ctx context.Context, id string) error {
	pipe := r.client.Pipeline()
	pipe.Del(ctx, r.sessionKey(id))
	pipe.SRem(ctx, r.activeSessionsKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ListActiveSessions returns the IDs in the active set
func (r *RedisManager) ListActiveSessions(ctx context.Context) ([]string, error) {
	ids, err := r.client.SMembers(ctx, r.activeSessionsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list active sessions: %w", err)
	}
	return ids, nil
}

// CleanupExpiredSessions drops expired sessions and prunes IDs whose hash
// Redis already evicted. It returns the number of IDs removed.
func (r *RedisManager) CleanupExpiredSessions(ctx context.Context) (int, error) {
	ids, err := r.ListActiveSessions(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, id := range ids {
		_, err := r.Get(ctx, id)
		switch {
		case err == nil:
			continue
		case errors.Is(err, core.ErrSessionNotFound):
			r.client.SRem(ctx, r.activeSessionsKey(), id)
			removed++
		case errors.Is(err, core.ErrSessionExpired):
			if err := r.Delete(ctx, id); err != nil {
				r.logger.Warn("Failed to delete expired session", map[string]interface{}{
					"session_id": id,
					"error":      err,
				})
				continue
			}
			removed++
		default:
			return removed, err
		}
	}
	return removed, nil
}

// Close stops the cleanup routine and, if it created it, the client
func (r *RedisManager) Close() error {
	r.stopOnce.Do(func() { close(r.stopChan) })
	r.wg.Wait()
	if r.ownClient {
		return r.client.Close()
	}
	return nil
}

func (r *RedisManager) startCleanupRoutine() {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(r.config.CleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				n, err := r.CleanupExpiredSessions(ctx)
				cancel()
				if err != nil {
					r.logger.Warn("Session cleanup failed", map[string]interface{}{"error": err})
				} else if n > 0 {
					r.logger.Debug("Expired sessions removed", map[string]interface{}{"count": n})
				}
			case <-r.stopChan:
				return
			}
		}
	}()
}

// Key helpers
func (r *RedisManager) sessionKey(id string) string {
	return r.config.KeyPrefix + ":" + id
}

func (r *RedisManager) activeSessionsKey() string {
	return r.config.KeyPrefix + "s:active"
}

// parseSession rebuilds a session from its Redis hash
func parseSession(id string, data map[string]string) (*Session, error) {
	s := &Session{ID: id, Token: data["token"]}

	for field, dst := range map[string]*time.Time{
		"created_at": &s.CreatedAt,
		"updated_at": &s.UpdatedAt,
		"expires_at": &s.ExpiresAt,
	} {
		if v, ok := data[field]; ok && v != "" {
			ts, err := parseUnixTime(v)
			if err != nil {
				return nil, fmt.Errorf("bad %s: %w", field, err)
			}
			*dst = ts
		}
	}

	if v := data["user"]; v != "" {
		var u api.User
		if err := json.Unmarshal([]byte(v), &u); err != nil {
			return nil, fmt.Errorf("bad user snapshot: %w", err)
		}
		s.User = &u
	}
	if v := data["flashes"]; v != "" {
		if err := json.Unmarshal([]byte(v), &s.Flashes); err != nil {
			return nil, fmt.Errorf("bad flashes: %w", err)
		}
	}
	return s, nil
}

func parseUnixTime(v string) (time.Time, error) {
	sec, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(sec, 0), nil
}
