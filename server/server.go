// Package server exposes the explorer over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ghexplorer/favorites"
	"ghexplorer/logger"
	"ghexplorer/models"
	"ghexplorer/service"
	"ghexplorer/stats"
)

// Backend is what the handlers need from the service layer.
type Backend interface {
	Search(ctx context.Context, query string, filters models.SearchFilters) (*models.SearchResult, error)
	Repository(ctx context.Context, owner, name string) (*models.Repository, error)
	RepositoryDetail(ctx context.Context, owner, name string) (*models.RepositoryDetail, error)
	User(ctx context.Context, login string) (*models.User, error)
	UserProfile(ctx context.Context, login string, sortBy stats.RepoSort) (*models.UserProfile, error)
	Status(ctx context.Context) service.Status
	Favorites() *favorites.Store
}

const shutdownTimeout = 10 * time.Second

// Server is the HTTP front end.
type Server struct {
	backend Backend
	log     *zap.Logger
	router  *gin.Engine
}

// New builds the router for backend.
func New(backend Backend) *Server {
	s := &Server{
		backend: backend,
		log:     logger.Named("server"),
	}
	s.router = s.routes()
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(requestID())
	router.Use(accessLog(s.log))
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders:   []string{requestIDHeader},
		MaxAge:          12 * time.Hour,
	}))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", s.health)
		v1.GET("/status", s.status)
		v1.GET("/search", s.search)
		v1.GET("/users/:login", s.userProfile)
		v1.GET("/repos/:owner/:repo", s.repositoryDetail)

		favs := v1.Group("/favorites")
		favs.GET("", s.listFavorites)
		favs.GET("/counts", s.favoriteCounts)
		favs.POST("/repos/:owner/:repo", s.addRepositoryFavorite)
		favs.POST("/users/:login", s.addUserFavorite)
		favs.DELETE("/:type/*id", s.removeFavorite)
		favs.DELETE("", s.clearFavorites)
	}
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
		s.log.Info("Starting HTTP server", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("Shutdown signal received, initiating graceful shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	return nil
}
