// Package server exposes the portal's HTTP API: public browsing routes and
// the session-guarded admin routes.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/tgportal/tgportal/auth"
	"github.com/tgportal/tgportal/collector"
	"github.com/tgportal/tgportal/model"
	"github.com/tgportal/tgportal/server/middlewares"
)

// Store is the slice of storage the handlers consume. *store.GormStore
// implements it; handler tests substitute fakes.
type Store interface {
	PostByID(id string) (*model.Post, error)
	ListPosts(sectionID, materialTypeID string, limit, offset int) ([]model.Post, error)
	ListSections() ([]model.Section, error)
	ListMaterialTypes() ([]model.MaterialType, error)
	CountCategories(sectionIDs, materialTypeIDs []string) (int64, int64, error)
	ReplacePostLinks(postID string, sectionIDs, materialTypeIDs []string) error
	CreateSection(section *model.Section) error
	UpdateSection(section *model.Section) error
	DeleteSection(id string) error
	CreateMaterialType(materialType *model.MaterialType) error
	UpdateMaterialType(materialType *model.MaterialType) error
	DeleteMaterialType(id string) error
	Record(adminID, action, detail, clientIP string)
}

type Server struct {
	store    Store
	auth     *auth.Service
	sessions *auth.SessionService
	pipeline *collector.Pipeline
	feed     collector.Feed
}

func NewServer(store Store, authService *auth.Service, sessions *auth.SessionService, pipeline *collector.Pipeline, feed collector.Feed) *Server {
	return &Server{
		store:    store,
		auth:     authService,
		sessions: sessions,
		pipeline: pipeline,
		feed:     feed,
	}
}

// RegisterRoutes attaches every route to the router. Admin routes other than
// login sit behind the session middleware.
func (s *Server) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")

	api.GET("/posts", s.ListPosts)
	api.GET("/posts/:id", s.GetPost)
	api.GET("/sections", s.ListSections)
	api.GET("/material-types", s.ListMaterialTypes)

	api.POST("/admin/login", s.Login)

	admin := api.Group("/admin")
	admin.Use(middlewares.SessionAuth(s.sessions))
	admin.POST("/logout", s.Logout)
	admin.POST("/refresh", s.Refresh)
	admin.POST("/change-password", s.ChangePassword)
	admin.GET("/posts/:id/classification", s.GetClassification)
	admin.PUT("/posts/:id/classification", s.PutClassification)
	admin.POST("/sync", s.SyncRecentPosts)
	admin.POST("/import", s.ImportHistory)
	admin.POST("/sections", s.CreateSection)
	admin.PUT("/sections/:id", s.UpdateSection)
	admin.DELETE("/sections/:id", s.DeleteSection)
	admin.POST("/material-types", s.CreateMaterialType)
	admin.PUT("/material-types/:id", s.UpdateMaterialType)
	admin.DELETE("/material-types/:id", s.DeleteMaterialType)
}

// writeError maps the auth sentinels and validation errors onto response
// codes. Anything unrecognized is an upstream failure.
func writeError(c *gin.Context, err error) {
	var validation *auth.ValidationError
	switch {
	case errors.Is(err, auth.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"code": "rate_limited", "msg": err.Error()})
	case errors.Is(err, auth.ErrAccountLocked):
		c.JSON(http.StatusLocked, gin.H{"code": "account_locked", "msg": err.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"code": "invalid_credentials", "msg": err.Error()})
	case errors.Is(err, auth.ErrSessionInvalid):
		c.JSON(http.StatusUnauthorized, gin.H{"code": "session_invalid", "msg": err.Error()})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation_error", "msg": validation.Message})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"code": "upstream_failure", "msg": "temporary backend failure"})
	}
}

func currentAdmin(c *gin.Context) *model.AdminInfo {
	info, _ := c.MustGet(middlewares.AdminKey).(*model.AdminInfo)
	return info
}

func currentToken(c *gin.Context) string {
	token, _ := c.MustGet(middlewares.TokenKey).(string)
	return token
}
