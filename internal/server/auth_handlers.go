package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tgienger/projecthub/internal/auth"
	"github.com/tgienger/projecthub/internal/models"
	"github.com/tgienger/projecthub/internal/rowstore"
)

type credentials struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned by sign up and sign in.
type AuthResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (s *Server) signUp(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	u, err := s.accounts.Register(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrWeakPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		s.fail(c, err)
		return
	}
	s.issue(c, u)
}

func (s *Server) signIn(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	u, err := s.accounts.Authenticate(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	s.issue(c, u)
}

// signOut is a no-op server side: tokens are stateless and the client drops
// its copy.
func (s *Server) signOut(c *gin.Context) {
	s.logger.Info("signed out", "user_id", claimsFrom(c).UserID)
	c.JSON(http.StatusOK, gin.H{"message": "signed out"})
}

func (s *Server) currentUser(c *gin.Context) {
	u, err := s.accounts.User(c.Request.Context(), claimsFrom(c).UserID)
	if errors.Is(err, rowstore.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user no longer exists"})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

func (s *Server) issue(c *gin.Context, u models.User) {
	token, err := s.tokens.Issue(u)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, AuthResponse{Token: token, User: u})
}
