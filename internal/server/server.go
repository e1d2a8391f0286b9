// Package server is the reference data service: the row API and the auth
// endpoints the HTTP transport talks to.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/tgienger/projecthub/internal/auth"
	"github.com/tgienger/projecthub/internal/rowstore"
)

// APIVersion prefixes every route.
const APIVersion = "v1"

// Server wires the row store and accounts to HTTP routes
type Server struct {
	store    rowstore.Client
	accounts *auth.Accounts
	tokens   *auth.Tokens
	logger   *slog.Logger
	router   *gin.Engine
}

func New(store rowstore.Client, accounts *auth.Accounts, tokens *auth.Tokens, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		store:    store,
		accounts: accounts,
		tokens:   tokens,
		logger:   logger.With("component", "server"),
	}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowHeaders:    []string{"Authorization", "Content-Type"},
		MaxAge:          12 * time.Hour,
	}))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ProjectHub data service is running"})
	})

	v1 := router.Group("/" + APIVersion)

	authGroup := v1.Group("/auth")
	authGroup.POST("/signup", s.signUp)
	authGroup.POST("/signin", s.signIn)
	authGroup.POST("/signout", s.requireToken(), s.signOut)
	authGroup.GET("/user", s.requireToken(), s.currentUser)

	rest := v1.Group("/rest", s.requireToken())
	rest.GET("/:table", s.selectRows)
	rest.POST("/:table", s.insertRow)
	rest.PATCH("/:table/:id", s.updateRow)
	rest.DELETE("/:table/:id", s.deleteRow)

	return router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			s.logger.Error("request", attrs...)
			return
		}
		s.logger.Info("request", attrs...)
	}
}
