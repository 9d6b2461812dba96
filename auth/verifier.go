package auth

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tgportal/tgportal/model"
	Logger "github.com/tgportal/tgportal/utils/log"
)

const (
	// MaxFailedAttempts consecutive failures lock the account.
	MaxFailedAttempts = 5
	// LockDuration is how long a locked account stays locked.
	LockDuration = 30 * time.Minute
)

// Verifier checks a supplied password against an admin's stored credential
// and drives the lockout state machine:
//
//	UNLOCKED -> (failed attempt #5) -> LOCKED(until=now+30min) -> (elapses) -> UNLOCKED
//
// It also performs the scheme migration: a successful match against the
// legacy sha256 hash re-hashes the password with bcrypt and persists the
// upgrade. The upgrade write is best-effort; the login already succeeded, so
// a failure there is logged, not surfaced.
type Verifier struct {
	admins AdminStore
	now    Clock
}

func NewVerifier(admins AdminStore) *Verifier {
	return &Verifier{admins: admins, now: time.Now}
}

// Verify returns nil on success, ErrAccountLocked while the lock holds and
// ErrInvalidCredentials on a wrong password. While locked it short-circuits
// without touching the password at all. Counter updates are persisted
// through the AdminStore; a store failure surfaces as-is so the caller does
// not mistake it for bad credentials.
func (v *Verifier) Verify(admin *model.Admin, password string) error {
	now := v.now()
	if admin.LockedUntil != nil && now.Before(*admin.LockedUntil) {
		return ErrAccountLocked
	}

	if !checkHash(admin.HashScheme, admin.PasswordHash, password) {
		admin.FailedAttempts++
		if admin.FailedAttempts >= MaxFailedAttempts {
			until := now.Add(LockDuration)
			admin.LockedUntil = &until
			admin.FailedAttempts = 0
			Logger.Log.WithFields(logrus.Fields{"admin_id": admin.Id}).Warn("admin account locked after repeated failed logins")
		}
		if err := v.admins.UpdateAdmin(admin); err != nil {
			return err
		}
		return ErrInvalidCredentials
	}

	admin.FailedAttempts = 0
	admin.LockedUntil = nil
	if err := v.admins.UpdateAdmin(admin); err != nil {
		return err
	}

	v.upgradeIfNeeded(admin, password)
	return nil
}

// upgradeIfNeeded migrates a legacy-hashed credential to bcrypt after the
// password has already been verified.
func (v *Verifier) upgradeIfNeeded(admin *model.Admin, password string) {
	if admin.HashScheme != model.HashSchemeSHA256 {
		return
	}
	hash, err := HashPassword(password)
	if err != nil {
		Logger.Log.WithFields(logrus.Fields{"admin_id": admin.Id}).Error("rehash on legacy login failed: ", err)
		return
	}
	admin.HashScheme = model.HashSchemeBcrypt
	admin.PasswordHash = hash
	if err := v.admins.UpdateAdmin(admin); err != nil {
		Logger.Log.WithFields(logrus.Fields{"admin_id": admin.Id}).Error("persisting hash upgrade failed: ", err)
	}
}
