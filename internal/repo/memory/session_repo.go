package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	authsvc "github.com/kbediako/rentpadi/internal/services/auth"
)

// SessionRepo keeps auth sessions in process memory. Dev-mode substitute
// for the Redis-backed store; sessions vanish on restart.
type SessionRepo struct {
	mu        sync.Mutex
	sessions  map[string]authsvc.SessionRecord
	byRefresh map[string]string
	refresh   map[string]string
}

func NewSessionRepo() *SessionRepo {
	return &SessionRepo{
		sessions:  make(map[string]authsvc.SessionRecord),
		byRefresh: make(map[string]string),
		refresh:   make(map[string]string),
	}
}

func (r *SessionRepo) Create(_ context.Context, session authsvc.SessionRecord, refreshToken string) error {
	if strings.TrimSpace(session.SID) == "" || strings.TrimSpace(refreshToken) == "" || session.UserID <= 0 {
		return authsvc.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.SID] = session
	r.byRefresh[refreshToken] = session.SID
	r.refresh[session.SID] = refreshToken
	return nil
}

func (r *SessionRepo) GetSession(_ context.Context, sid string) (authsvc.SessionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[sid]
	if !ok {
		return authsvc.SessionRecord{}, authsvc.ErrSessionNotFound
	}
	return session, nil
}

func (r *SessionRepo) GetByRefreshToken(_ context.Context, refreshToken string) (authsvc.SessionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sid, ok := r.byRefresh[refreshToken]
	if !ok {
		return authsvc.SessionRecord{}, authsvc.ErrRefreshNotFound
	}
	session, ok := r.sessions[sid]
	if !ok {
		return authsvc.SessionRecord{}, authsvc.ErrSessionNotFound
	}
	return session, nil
}

func (r *SessionRepo) RotateRefresh(_ context.Context, sid, oldRefreshToken, newRefreshToken string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	mappedSID, ok := r.byRefresh[oldRefreshToken]
	if !ok || mappedSID != sid {
		return authsvc.ErrRefreshNotFound
	}
	session, ok := r.sessions[sid]
	if !ok {
		return authsvc.ErrSessionNotFound
	}

	delete(r.byRefresh, oldRefreshToken)
	r.byRefresh[newRefreshToken] = sid
	r.refresh[sid] = newRefreshToken
	session.ExpiresAt = expiresAt
	r.sessions[sid] = session
	return nil
}

func (r *SessionRepo) DeleteSession(_ context.Context, sid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteSessionLocked(sid)
	return nil
}

func (r *SessionRepo) DeleteAllForUser(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for sid, session := range r.sessions {
		if session.UserID == userID {
			r.deleteSessionLocked(sid)
		}
	}
	return nil
}

func (r *SessionRepo) deleteSessionLocked(sid string) {
	if token, ok := r.refresh[sid]; ok {
		delete(r.byRefresh, token)
		delete(r.refresh, sid)
	}
	delete(r.sessions, sid)
}
