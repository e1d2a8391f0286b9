package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tgienger/projecthub/internal/auth"
	"github.com/tgienger/projecthub/internal/rowstore"
)

const claimsKey = "claims"

// requireToken verifies the bearer token and makes the request context act as
// its user.
func (s *Server) requireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
			return
		}
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			return
		}

		claims, err := s.tokens.Parse(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(claimsKey, claims)
		c.Request = c.Request.WithContext(rowstore.WithUser(c.Request.Context(), claims.UserID))
		c.Next()
	}
}

func claimsFrom(c *gin.Context) *auth.Claims {
	return c.MustGet(claimsKey).(*auth.Claims)
}
