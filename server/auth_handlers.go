package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type sessionResponse struct {
	SessionToken string      `json:"sessionToken"`
	ExpiresAt    time.Time   `json:"expiresAt"`
	Admin        interface{} `json:"admin"`
}

func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation_error", "msg": "email and password are required"})
		return
	}

	session, info, err := s.auth.Login(req.Email, req.Password, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse{
		SessionToken: session.Token,
		ExpiresAt:    session.ExpiresAt,
		Admin:        info,
	})
}

func (s *Server) Logout(c *gin.Context) {
	if err := s.auth.Logout(currentToken(c), c.ClientIP()); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) Refresh(c *gin.Context) {
	session, info, err := s.auth.Refresh(currentToken(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse{
		SessionToken: session.Token,
		ExpiresAt:    session.ExpiresAt,
		Admin:        info,
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

func (s *Server) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation_error", "msg": "currentPassword and newPassword are required"})
		return
	}
	if err := s.auth.ChangePassword(currentToken(c), req.CurrentPassword, req.NewPassword, c.ClientIP()); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
