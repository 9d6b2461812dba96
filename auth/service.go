package auth

import (
	"strings"

	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tgportal/tgportal/model"
	"github.com/tgportal/tgportal/utils"
	Logger "github.com/tgportal/tgportal/utils/log"
)

// Service wires the limiter, verifier and session service into the
// caller-facing login operations. All collaborators are injected; there are
// no package-level singletons.
type Service struct {
	admins   AdminStore
	verifier *Verifier
	sessions *SessionService
	limiter  *Limiter
	activity ActivityLogger
}

func NewService(admins AdminStore, verifier *Verifier, sessions *SessionService, limiter *Limiter, activity ActivityLogger) *Service {
	return &Service{
		admins:   admins,
		verifier: verifier,
		sessions: sessions,
		limiter:  limiter,
		activity: activity,
	}
}

// Login runs the full gate order: rate limit first, then credential
// verification, then session issuance. Unknown email, wrong password and a
// failed IP allowlist check all surface as ErrInvalidCredentials.
func (s *Service) Login(email, password, clientIP, userAgent string) (*model.AdminSession, *model.AdminInfo, error) {
	allowed, err := s.limiter.Allow(LoginKey(email, clientIP))
	if err != nil {
		return nil, nil, err
	}
	if !allowed {
		return nil, nil, ErrRateLimited
	}

	admin, err := s.admins.AdminByEmail(strings.ToLower(email))
	if err != nil {
		return nil, nil, errors.Wrap(err, "look up admin")
	}
	if admin == nil {
		// Unknown email: no admin record, so no failed-attempt counter to
		// bump. Same response as a wrong password.
		return nil, nil, ErrInvalidCredentials
	}

	if len(admin.AllowedIPs) > 0 && !utils.ContainsString(admin.AllowedIPs, clientIP) {
		Logger.Log.WithFields(logrus.Fields{"admin_id": admin.Id, "ip": clientIP}).Warn("login from address outside allowlist")
		return nil, nil, ErrInvalidCredentials
	}

	if err := s.verifier.Verify(admin, password); err != nil {
		return nil, nil, err
	}

	session, err := s.sessions.Issue(admin, clientIP, userAgent)
	if err != nil {
		return nil, nil, err
	}
	info := &model.AdminInfo{}
	if err := copier.Copy(info, admin); err != nil {
		return nil, nil, errors.Wrap(err, "copy admin identity")
	}
	s.activity.Record(admin.Id, "login", "", clientIP)
	return session, info, nil
}

// Logout revokes the session. Idempotent.
func (s *Service) Logout(token, clientIP string) error {
	info, err := s.sessions.Validate(token)
	if err := s.sessions.Revoke(token); err != nil {
		return err
	}
	if err == nil {
		s.activity.Record(info.Id, "logout", "", clientIP)
	}
	return nil
}

// Refresh swaps the token for a fresh one with a new expiry.
func (s *Service) Refresh(token, clientIP, userAgent string) (*model.AdminSession, *model.AdminInfo, error) {
	session, err := s.sessions.Refresh(token, clientIP, userAgent)
	if err != nil {
		return nil, nil, err
	}
	admin, err := s.admins.AdminByID(session.AdminId)
	if err != nil {
		return nil, nil, errors.Wrap(err, "look up admin")
	}
	if admin == nil {
		return nil, nil, ErrSessionInvalid
	}
	info := &model.AdminInfo{}
	if err := copier.Copy(info, admin); err != nil {
		return nil, nil, errors.Wrap(err, "copy admin identity")
	}
	return session, info, nil
}

// ChangePassword verifies the session and the current password, enforces the
// policy on the new one and persists it under the preferred scheme.
func (s *Service) ChangePassword(token, currentPassword, newPassword, clientIP string) error {
	info, err := s.sessions.Validate(token)
	if err != nil {
		return err
	}
	admin, err := s.admins.AdminByID(info.Id)
	if err != nil {
		return errors.Wrap(err, "look up admin")
	}
	if admin == nil {
		return ErrSessionInvalid
	}
	if err := s.verifier.Verify(admin, currentPassword); err != nil {
		return err
	}
	if err := ValidateNewPassword(newPassword); err != nil {
		return err
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	admin.HashScheme = model.HashSchemeBcrypt
	admin.PasswordHash = hash
	if err := s.admins.UpdateAdmin(admin); err != nil {
		return errors.Wrap(err, "persist new password")
	}
	s.activity.Record(admin.Id, "change_password", "", clientIP)
	return nil
}
