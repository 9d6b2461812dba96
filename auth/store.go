package auth

import (
	"time"

	"github.com/tgportal/tgportal/model"
)

// AdminStore is the slice of persistent storage the auth package consumes.
// Lookups return (nil, nil) when no row matches; an error means the store
// itself failed. The gorm implementation lives in the store package; tests
// inject in-memory fakes.
type AdminStore interface {
	// AdminByEmail matches case-insensitively.
	AdminByEmail(email string) (*model.Admin, error)
	AdminByID(id string) (*model.Admin, error)
	UpdateAdmin(admin *model.Admin) error
}

// SessionStore persists bearer sessions keyed by token. Delete is idempotent:
// deleting an absent token is not an error.
type SessionStore interface {
	CreateSession(s *model.AdminSession) error
	// SessionByToken returns the session with its owning admin attached.
	SessionByToken(token string) (*model.AdminSession, error)
	DeleteSession(token string) error
}

// ActivityLogger records admin actions for the audit trail. Implementations
// must never fail the calling operation; errors are logged and swallowed.
type ActivityLogger interface {
	Record(adminID, action, detail, clientIP string)
}

// Clock lets tests drive time. Production code uses time.Now.
type Clock func() time.Time
