package model

import (
	"time"

	"github.com/lib/pq"
)

// HashScheme tags which password hashing scheme an admin's stored hash uses.
// SHA256 is the deprecated legacy scheme kept only for migration; a
// successful login against it transparently upgrades the record to bcrypt.
type HashScheme string

const (
	HashSchemeBcrypt HashScheme = "bcrypt"
	HashSchemeSHA256 HashScheme = "sha256"
)

/*

Admin is a portal administrator account.

Email: unique login identity, compared case-insensitively
HashScheme / PasswordHash: tagged credential, see HashScheme
FailedAttempts: consecutive failed logins, reset on success
LockedUntil: while set and in the future the account rejects logins
AllowedIPs: optional allowlist, empty means any origin

*/

type Admin struct {
	Id             string `gorm:"primaryKey"`
	CreatedAt      time.Time
	Email          string         `gorm:"uniqueIndex" json:"email"`
	HashScheme     HashScheme     `json:"-"`
	PasswordHash   string         `json:"-"`
	FailedAttempts int            `json:"-"`
	LockedUntil    *time.Time     `json:"-"`
	AllowedIPs     pq.StringArray `gorm:"type:text[]" json:"-"`
}

// AdminInfo is the public identity returned by session validation and login.
// It deliberately has no room for the password hash.
type AdminInfo struct {
	Id    string `json:"id"`
	Email string `json:"email"`
}
