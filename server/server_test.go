package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgportal/tgportal/auth"
	"github.com/tgportal/tgportal/collector"
	"github.com/tgportal/tgportal/model"
)

// memStore backs the whole API with maps, standing in for both the auth
// storage interfaces and the server.Store surface.
type memStore struct {
	admins        map[string]*model.Admin
	sessions      map[string]*model.AdminSession
	posts         map[string]*model.Post
	bySourceID    map[int64]*model.Post
	sections      map[string]*model.Section
	materialTypes map[string]*model.MaterialType
	links         map[string][2][]string
	activity      []string
}

func newMemStore() *memStore {
	return &memStore{
		admins:        map[string]*model.Admin{},
		sessions:      map[string]*model.AdminSession{},
		posts:         map[string]*model.Post{},
		bySourceID:    map[int64]*model.Post{},
		sections:      map[string]*model.Section{},
		materialTypes: map[string]*model.MaterialType{},
		links:         map[string][2][]string{},
	}
}

func (s *memStore) AdminByEmail(email string) (*model.Admin, error) {
	for _, a := range s.admins {
		if strings.EqualFold(a.Email, email) {
			return a, nil
		}
	}
	return nil, nil
}

func (s *memStore) AdminByID(id string) (*model.Admin, error) { return s.admins[id], nil }

func (s *memStore) UpdateAdmin(admin *model.Admin) error {
	s.admins[admin.Id] = admin
	return nil
}

func (s *memStore) CreateSession(session *model.AdminSession) error {
	s.sessions[session.Token] = session
	return nil
}

func (s *memStore) SessionByToken(token string) (*model.AdminSession, error) {
	session, ok := s.sessions[token]
	if !ok {
		return nil, nil
	}
	session.Admin = s.admins[session.AdminId]
	return session, nil
}

func (s *memStore) DeleteSession(token string) error {
	delete(s.sessions, token)
	return nil
}

func (s *memStore) Record(adminID, action, detail, clientIP string) {
	s.activity = append(s.activity, action)
}

func (s *memStore) PostBySourceMessageID(id int64) (*model.Post, error) {
	return s.bySourceID[id], nil
}

func (s *memStore) CreatePost(post *model.Post) error {
	s.posts[post.Id] = post
	s.bySourceID[post.SourceMessageId] = post
	return nil
}

func (s *memStore) ReplacePostLinks(postID string, sectionIDs, materialTypeIDs []string) error {
	s.links[postID] = [2][]string{sectionIDs, materialTypeIDs}
	return nil
}

func (s *memStore) ListSections() ([]model.Section, error) {
	var out []model.Section
	for _, sec := range s.sections {
		out = append(out, *sec)
	}
	return out, nil
}

func (s *memStore) ListMaterialTypes() ([]model.MaterialType, error) {
	var out []model.MaterialType
	for _, mt := range s.materialTypes {
		out = append(out, *mt)
	}
	return out, nil
}

func (s *memStore) PostByID(id string) (*model.Post, error) { return s.posts[id], nil }

func (s *memStore) ListPosts(sectionID, materialTypeID string, limit, offset int) ([]model.Post, error) {
	var out []model.Post
	for _, p := range s.posts {
		out = append(out, *p)
	}
	return out, nil
}

func (s *memStore) CountCategories(sectionIDs, materialTypeIDs []string) (int64, int64, error) {
	var sections, materialTypes int64
	for _, id := range sectionIDs {
		if _, ok := s.sections[id]; ok {
			sections++
		}
	}
	for _, id := range materialTypeIDs {
		if _, ok := s.materialTypes[id]; ok {
			materialTypes++
		}
	}
	return sections, materialTypes, nil
}

func (s *memStore) CreateSection(section *model.Section) error {
	s.sections[section.Id] = section
	return nil
}

func (s *memStore) UpdateSection(section *model.Section) error {
	s.sections[section.Id] = section
	return nil
}

func (s *memStore) DeleteSection(id string) error {
	delete(s.sections, id)
	return nil
}

func (s *memStore) CreateMaterialType(materialType *model.MaterialType) error {
	s.materialTypes[materialType.Id] = materialType
	return nil
}

func (s *memStore) UpdateMaterialType(materialType *model.MaterialType) error {
	s.materialTypes[materialType.Id] = materialType
	return nil
}

func (s *memStore) DeleteMaterialType(id string) error {
	delete(s.materialTypes, id)
	return nil
}

type fakeFeed struct {
	msgs []collector.RawMessage
}

func (f *fakeFeed) RecentMessages(ctx context.Context, channelID int64, from time.Time) ([]collector.RawMessage, error) {
	return f.msgs, nil
}

func testRouter(t *testing.T, ms *memStore, feed collector.Feed) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := auth.HashPassword("Abc123!@#xyz")
	require.NoError(t, err)
	ms.admins["admin-1"] = &model.Admin{
		Id:           "admin-1",
		Email:        "admin@example.com",
		HashScheme:   model.HashSchemeBcrypt,
		PasswordHash: hash,
	}

	sessions := auth.NewSessionService(ms)
	verifier := auth.NewVerifier(ms)
	limiter := auth.NewLimiter(auth.NewMemoryRateLimitStore(), auth.LoginMaxAttempts)
	authService := auth.NewService(ms, verifier, sessions, limiter, ms)
	pipeline := collector.NewPipeline(ms)

	router := gin.New()
	NewServer(ms, authService, sessions, pipeline, feed).RegisterRoutes(router)
	return router
}

func doJSON(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != nil {
		encoded, _ := json.Marshal(body)
		reader = bytes.NewBuffer(encoded)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func loginToken(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := doJSON(router, http.MethodPost, "/api/admin/login", "", gin.H{
		"email":    "admin@example.com",
		"password": "Abc123!@#xyz",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var resp sessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.SessionToken
}

func TestLoginEndpoint(t *testing.T) {
	router := testRouter(t, newMemStore(), &fakeFeed{})

	w := doJSON(router, http.MethodPost, "/api/admin/login", "", gin.H{
		"email":    "admin@example.com",
		"password": "Abc123!@#xyz",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var resp sessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionToken)
	assert.True(t, resp.ExpiresAt.After(time.Now()))

	// Wrong password and unknown email answer identically.
	wrong := doJSON(router, http.MethodPost, "/api/admin/login", "", gin.H{
		"email": "admin@example.com", "password": "nope",
	})
	unknown := doJSON(router, http.MethodPost, "/api/admin/login", "", gin.H{
		"email": "ghost@example.com", "password": "nope",
	})
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())
}

func TestLoginRateLimitResponse(t *testing.T) {
	router := testRouter(t, newMemStore(), &fakeFeed{})
	for i := 0; i < auth.LoginMaxAttempts; i++ {
		doJSON(router, http.MethodPost, "/api/admin/login", "", gin.H{
			"email": "admin@example.com", "password": "nope",
		})
	}
	w := doJSON(router, http.MethodPost, "/api/admin/login", "", gin.H{
		"email": "admin@example.com", "password": "Abc123!@#xyz",
	})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate_limited")
}

func TestAdminRoutesRequireSession(t *testing.T) {
	router := testRouter(t, newMemStore(), &fakeFeed{})
	w := doJSON(router, http.MethodPost, "/api/admin/sync", "", gin.H{"channelId": 1})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, http.MethodPost, "/api/admin/sync", "bogus-token", gin.H{"channelId": 1})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestClassificationRoundTrip(t *testing.T) {
	ms := newMemStore()
	ms.sections["s1"] = &model.Section{Id: "s1", Name: "Tutorials", Hashtags: []string{"tutorial"}}
	ms.materialTypes["m1"] = &model.MaterialType{Id: "m1", Name: "Video", Hashtags: []string{"video"}}
	ms.posts["p1"] = &model.Post{Id: "p1", Hashtags: []string{"tutorial"}}
	router := testRouter(t, ms, &fakeFeed{})
	token := loginToken(t, router)

	w := doJSON(router, http.MethodPut, "/api/admin/posts/p1/classification", token, gin.H{
		"sectionIds":      []string{"s1"},
		"materialTypeIds": []string{"m1"},
	})
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, [2][]string{{"s1"}, {"m1"}}, ms.links["p1"])

	// Unknown category reference is a 404, nothing is written.
	w = doJSON(router, http.MethodPut, "/api/admin/posts/p1/classification", token, gin.H{
		"sectionIds": []string{"nope"},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Suggestions come from the classifier, stored links from the post.
	get := doJSON(router, http.MethodGet, "/api/admin/posts/p1/classification", token, nil)
	require.Equal(t, http.StatusOK, get.Code)
	var resp classificationResponse
	require.NoError(t, json.Unmarshal(get.Body.Bytes(), &resp))
	assert.Equal(t, []string{"s1"}, resp.SuggestedSectionIDs)
}

func TestSyncEndpoint(t *testing.T) {
	ms := newMemStore()
	feed := &fakeFeed{msgs: []collector.RawMessage{
		{ID: 42, Date: "2024-01-01T00:00:00Z", Text: json.RawMessage(`"Check this out #tutorial"`), ChatID: -1001234567},
	}}
	router := testRouter(t, ms, feed)
	token := loginToken(t, router)

	w := doJSON(router, http.MethodPost, "/api/admin/sync", token, gin.H{"channelId": -1001234567})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"processed": 1, "totalFound": 1}`, w.Body.String())

	// Re-running the same sync creates nothing new.
	w = doJSON(router, http.MethodPost, "/api/admin/sync", token, gin.H{"channelId": -1001234567})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"processed": 0, "totalFound": 1}`, w.Body.String())
	assert.Len(t, ms.posts, 1)
}

func TestChangePasswordEndpoint(t *testing.T) {
	router := testRouter(t, newMemStore(), &fakeFeed{})
	token := loginToken(t, router)

	w := doJSON(router, http.MethodPost, "/api/admin/change-password", token, gin.H{
		"currentPassword": "Abc123!@#xyz",
		"newPassword":     "abc123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "at least 12 characters")

	w = doJSON(router, http.MethodPost, "/api/admin/change-password", token, gin.H{
		"currentPassword": "Abc123!@#xyz",
		"newPassword":     "NewAbc123!@#x",
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
}
