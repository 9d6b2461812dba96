package auth

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/tgportal/tgportal/model"
)

// In-memory fakes for the storage interfaces. Every test constructs fresh
// instances, there is no shared state between cases.

type fakeAdminStore struct {
	admins    map[string]*model.Admin
	updateErr error
	updateCnt int
}

func newFakeAdminStore(admins ...*model.Admin) *fakeAdminStore {
	s := &fakeAdminStore{admins: map[string]*model.Admin{}}
	for _, a := range admins {
		s.admins[a.Id] = a
	}
	return s
}

func (s *fakeAdminStore) AdminByEmail(email string) (*model.Admin, error) {
	for _, a := range s.admins {
		if strings.EqualFold(a.Email, email) {
			return a, nil
		}
	}
	return nil, nil
}

func (s *fakeAdminStore) AdminByID(id string) (*model.Admin, error) {
	return s.admins[id], nil
}

func (s *fakeAdminStore) UpdateAdmin(admin *model.Admin) error {
	s.updateCnt++
	if s.updateErr != nil {
		return s.updateErr
	}
	s.admins[admin.Id] = admin
	return nil
}

type fakeSessionStore struct {
	sessions  map[string]*model.AdminSession
	owners    map[string]*model.Admin
	createErr error
}

// newFakeSessionStore mimics the gorm store's Preload("Admin"): sessions read
// back with their owning admin attached, resolved from the given admins.
func newFakeSessionStore(owners ...*model.Admin) *fakeSessionStore {
	s := &fakeSessionStore{sessions: map[string]*model.AdminSession{}, owners: map[string]*model.Admin{}}
	for _, a := range owners {
		s.owners[a.Id] = a
	}
	return s
}

func (s *fakeSessionStore) CreateSession(session *model.AdminSession) error {
	if s.createErr != nil {
		return s.createErr
	}
	if _, exists := s.sessions[session.Token]; exists {
		return errors.New("duplicate token")
	}
	s.sessions[session.Token] = session
	return nil
}

func (s *fakeSessionStore) SessionByToken(token string) (*model.AdminSession, error) {
	session, ok := s.sessions[token]
	if !ok {
		return nil, nil
	}
	session.Admin = s.owners[session.AdminId]
	return session, nil
}

func (s *fakeSessionStore) DeleteSession(token string) error {
	delete(s.sessions, token)
	return nil
}

type activityEntry struct {
	adminID string
	action  string
}

type fakeActivityLogger struct {
	entries []activityEntry
}

func (l *fakeActivityLogger) Record(adminID, action, detail, clientIP string) {
	l.entries = append(l.entries, activityEntry{adminID: adminID, action: action})
}
