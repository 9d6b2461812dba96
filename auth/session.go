package auth

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
	"github.com/tgportal/tgportal/model"
)

// SessionTTL is the single session duration used by both login and refresh.
const SessionTTL = 2 * time.Hour

const tokenBytes = 32 // 256 bits

// SessionService issues, validates, refreshes and revokes bearer sessions
// against a SessionStore.
type SessionService struct {
	sessions SessionStore
	now      Clock
}

func NewSessionService(sessions SessionStore) *SessionService {
	return &SessionService{sessions: sessions, now: time.Now}
}

func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "generate session token")
	}
	return hex.EncodeToString(buf), nil
}

// Issue creates and persists a fresh session for the admin. Expiry is always
// strictly in the future at creation.
func (s *SessionService) Issue(admin *model.Admin, clientIP, userAgent string) (*model.AdminSession, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	session := &model.AdminSession{
		Token:     token,
		AdminId:   admin.Id,
		ExpiresAt: s.now().Add(SessionTTL),
		ClientIP:  clientIP,
		UserAgent: userAgent,
	}
	if err := s.sessions.CreateSession(session); err != nil {
		return nil, errors.Wrap(err, "persist session")
	}
	return session, nil
}

// Validate looks the token up by exact match and returns the owning admin's
// public identity. A missing token and an expired one present identically as
// ErrSessionInvalid; an expired row is deleted on the way out.
func (s *SessionService) Validate(token string) (*model.AdminInfo, error) {
	session, err := s.sessions.SessionByToken(token)
	if err != nil {
		return nil, errors.Wrap(err, "look up session")
	}
	if session == nil {
		return nil, ErrSessionInvalid
	}
	if !s.now().Before(session.ExpiresAt) {
		// Best effort cleanup, the row is dead either way.
		s.sessions.DeleteSession(token)
		return nil, ErrSessionInvalid
	}
	if session.Admin == nil {
		return nil, ErrSessionInvalid
	}
	info := &model.AdminInfo{}
	if err := copier.Copy(info, session.Admin); err != nil {
		return nil, errors.Wrap(err, "copy admin identity")
	}
	return info, nil
}

// Refresh validates the token, deletes it and issues a replacement for the
// same admin with a fresh expiry. The old token stops working the moment the
// delete lands.
func (s *SessionService) Refresh(token, clientIP, userAgent string) (*model.AdminSession, error) {
	session, err := s.sessions.SessionByToken(token)
	if err != nil {
		return nil, errors.Wrap(err, "look up session")
	}
	if session == nil || !s.now().Before(session.ExpiresAt) || session.Admin == nil {
		return nil, ErrSessionInvalid
	}
	if err := s.sessions.DeleteSession(token); err != nil {
		return nil, errors.Wrap(err, "revoke refreshed session")
	}
	return s.Issue(session.Admin, clientIP, userAgent)
}

// Revoke deletes the session if present. Revoking a nonexistent or expired
// token is not an error.
func (s *SessionService) Revoke(token string) error {
	return s.sessions.DeleteSession(token)
}
