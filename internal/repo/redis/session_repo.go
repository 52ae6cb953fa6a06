package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	authsvc "github.com/kbediako/rentpadi/internal/services/auth"
)

const (
	sessionPrefix      = "sessions:"
	refreshPrefix      = "refresh:"
	userSessionsPrefix = "user_sessions:"
)

type SessionRepo struct {
	client *goredis.Client
}

func NewSessionRepo(client *goredis.Client) *SessionRepo {
	return &SessionRepo{client: client}
}

func (r *SessionRepo) Create(ctx context.Context, session authsvc.SessionRecord, refreshToken string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if strings.TrimSpace(session.SID) == "" || strings.TrimSpace(refreshToken) == "" || session.UserID <= 0 {
		return authsvc.ErrInvalidInput
	}

	ttl := ttlFor(session.ExpiresAt)
	fields := map[string]interface{}{
		"user_id":    session.UserID,
		"role":       session.Role,
		"refresh":    refreshToken,
		"expires_at": session.ExpiresAt.UTC().Format(time.RFC3339Nano),
	}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, sessionPrefix+session.SID, fields)
	pipe.Expire(ctx, sessionPrefix+session.SID, ttl)
	pipe.Set(ctx, refreshPrefix+refreshToken, session.SID, ttl)
	pipe.SAdd(ctx, userSessionsKey(session.UserID), session.SID)
	pipe.Expire(ctx, userSessionsKey(session.UserID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

func (r *SessionRepo) GetSession(ctx context.Context, sid string) (authsvc.SessionRecord, error) {
	if r.client == nil {
		return authsvc.SessionRecord{}, fmt.Errorf("redis client is nil")
	}

	fields, err := r.client.HGetAll(ctx, sessionPrefix+sid).Result()
	if err != nil {
		return authsvc.SessionRecord{}, fmt.Errorf("get session: %w", err)
	}
	if len(fields) == 0 {
		return authsvc.SessionRecord{}, authsvc.ErrSessionNotFound
	}

	return parseSession(sid, fields)
}

func (r *SessionRepo) GetByRefreshToken(ctx context.Context, refreshToken string) (authsvc.SessionRecord, error) {
	if r.client == nil {
		return authsvc.SessionRecord{}, fmt.Errorf("redis client is nil")
	}

	sid, err := r.client.Get(ctx, refreshPrefix+refreshToken).Result()
	if err == goredis.Nil {
		return authsvc.SessionRecord{}, authsvc.ErrRefreshNotFound
	}
	if err != nil {
		return authsvc.SessionRecord{}, fmt.Errorf("resolve refresh token: %w", err)
	}

	return r.GetSession(ctx, sid)
}

func (r *SessionRepo) RotateRefresh(ctx context.Context, sid, oldRefreshToken, newRefreshToken string, expiresAt time.Time) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	mappedSID, err := r.client.Get(ctx, refreshPrefix+oldRefreshToken).Result()
	if err == goredis.Nil || (err == nil && mappedSID != sid) {
		return authsvc.ErrRefreshNotFound
	}
	if err != nil {
		return fmt.Errorf("resolve old refresh token: %w", err)
	}

	ttl := ttlFor(expiresAt)
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, refreshPrefix+oldRefreshToken)
	pipe.Set(ctx, refreshPrefix+newRefreshToken, sid, ttl)
	pipe.HSet(ctx, sessionPrefix+sid, map[string]interface{}{
		"refresh":    newRefreshToken,
		"expires_at": expiresAt.UTC().Format(time.RFC3339Nano),
	})
	pipe.Expire(ctx, sessionPrefix+sid, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("rotate refresh token: %w", err)
	}

	return nil
}

func (r *SessionRepo) DeleteSession(ctx context.Context, sid string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	session, err := r.GetSession(ctx, sid)
	if err != nil {
		if err == authsvc.ErrSessionNotFound {
			return nil
		}
		return err
	}

	fields, err := r.client.HGetAll(ctx, sessionPrefix+sid).Result()
	if err != nil {
		return fmt.Errorf("read session for delete: %w", err)
	}

	pipe := r.client.TxPipeline()
	if token, ok := fields["refresh"]; ok && token != "" {
		pipe.Del(ctx, refreshPrefix+token)
	}
	pipe.Del(ctx, sessionPrefix+sid)
	pipe.SRem(ctx, userSessionsKey(session.UserID), sid)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

func (r *SessionRepo) DeleteAllForUser(ctx context.Context, userID int64) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if userID <= 0 {
		return authsvc.ErrInvalidInput
	}

	sids, err := r.client.SMembers(ctx, userSessionsKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("list user sessions: %w", err)
	}

	for _, sid := range sids {
		if err := r.DeleteSession(ctx, sid); err != nil {
			return err
		}
	}

	if err := r.client.Del(ctx, userSessionsKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete user session index: %w", err)
	}

	return nil
}

func parseSession(sid string, fields map[string]string) (authsvc.SessionRecord, error) {
	userID, err := strconv.ParseInt(fields["user_id"], 10, 64)
	if err != nil || userID <= 0 {
		return authsvc.SessionRecord{}, fmt.Errorf("corrupt session record for sid %s", sid)
	}

	expiresAt, err := time.Parse(time.RFC3339Nano, fields["expires_at"])
	if err != nil {
		return authsvc.SessionRecord{}, fmt.Errorf("corrupt session expiry for sid %s", sid)
	}

	return authsvc.SessionRecord{
		SID:       sid,
		UserID:    userID,
		Role:      fields["role"],
		ExpiresAt: expiresAt,
	}, nil
}

func userSessionsKey(userID int64) string {
	return userSessionsPrefix + strconv.FormatInt(userID, 10)
}

func ttlFor(expiresAt time.Time) time.Duration {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		ttl = time.Minute
	}
	return ttl
}
