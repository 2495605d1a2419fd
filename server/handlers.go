package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"ghexplorer/favorites"
	"ghexplorer/models"
	"ghexplorer/stats"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// FavoriteResponse is returned by the add endpoints.
type FavoriteResponse struct {
	Added    bool             `json:"added"`
	Favorite *models.Favorite `json:"favorite,omitempty"`
}

// FavoritesResponse lists favorites with the per-kind counts.
type FavoritesResponse struct {
	Items  []models.Favorite `json:"items"`
	Counts favorites.Counts  `json:"counts"`
}

// health handles GET /health
func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Message: "Service is running",
	})
}

// status handles GET /status
func (s *Server) status(c *gin.Context) {
	c.JSON(http.StatusOK, s.backend.Status(c.Request.Context()))
}

// search handles GET /search?q=&language=&sort=&order=&page=&per_page=
func (s *Server) search(c *gin.Context) {
	filters := models.SearchFilters{
		Language: c.Query("language"),
		Sort:     models.SortKey(c.Query("sort")),
		Order:    models.SortOrder(c.Query("order")),
	}

	var err error
	if filters.Page, err = intQuery(c, "page"); err != nil {
		badRequest(c, "page must be a number", err)
		return
	}
	if filters.PerPage, err = intQuery(c, "per_page"); err != nil {
		badRequest(c, "per_page must be a number", err)
		return
	}

	result, err := s.backend.Search(c.Request.Context(), c.Query("q"), filters)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// userProfile handles GET /users/:login?sort=
func (s *Server) userProfile(c *gin.Context) {
	sortBy, err := stats.ParseRepoSort(c.Query("sort"))
	if err != nil {
		badRequest(c, "Unknown repository sort", err)
		return
	}

	profile, err := s.backend.UserProfile(c.Request.Context(), c.Param("login"), sortBy)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// repositoryDetail handles GET /repos/:owner/:repo
func (s *Server) repositoryDetail(c *gin.Context) {
	detail, err := s.backend.RepositoryDetail(c.Request.Context(), c.Param("owner"), c.Param("repo"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// listFavorites handles GET /favorites?type=&sort=
func (s *Server) listFavorites(c *gin.Context) {
	var kind models.FavoriteKind
	if t := c.Query("type"); t != "" && t != "all" {
		k, err := models.ParseFavoriteKind(t)
		if err != nil {
			badRequest(c, "Unknown favorite type", err)
			return
		}
		kind = k
	}
	sortBy, err := favorites.ParseSortBy(c.Query("sort"))
	if err != nil {
		badRequest(c, "Unknown favorites sort", err)
		return
	}

	store := s.backend.Favorites()
	c.JSON(http.StatusOK, FavoritesResponse{
		Items:  favorites.Sort(favorites.Filter(store.List(), kind), sortBy),
		Counts: store.Counts(),
	})
}

// favoriteCounts handles GET /favorites/counts
func (s *Server) favoriteCounts(c *gin.Context) {
	c.JSON(http.StatusOK, s.backend.Favorites().Counts())
}

// addRepositoryFavorite handles POST /favorites/repos/:owner/:repo
func (s *Server) addRepositoryFavorite(c *gin.Context) {
	ctx := c.Request.Context()
	repo, err := s.backend.Repository(ctx, c.Param("owner"), c.Param("repo"))
	if err != nil {
		writeError(c, err)
		return
	}

	store := s.backend.Favorites()
	added := store.AddRepository(ctx, *repo)
	s.respondFavorite(c, store, models.KindRepository, repo.FullName, added)
}

// addUserFavorite handles POST /favorites/users/:login
func (s *Server) addUserFavorite(c *gin.Context) {
	ctx := c.Request.Context()
	user, err := s.backend.User(ctx, c.Param("login"))
	if err != nil {
		writeError(c, err)
		return
	}

	store := s.backend.Favorites()
	added := store.AddUser(ctx, *user)
	s.respondFavorite(c, store, models.KindUser, user.Login, added)
}

func (s *Server) respondFavorite(c *gin.Context, store *favorites.Store, kind models.FavoriteKind, id string, added bool) {
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	for _, f := range store.ByKind(kind) {
		if f.ID == id {
			c.JSON(status, FavoriteResponse{Added: added, Favorite: &f})
			return
		}
	}
	// removed concurrently between add and lookup
	c.JSON(status, FavoriteResponse{Added: added})
}

// removeFavorite handles DELETE /favorites/:type/*id
func (s *Server) removeFavorite(c *gin.Context) {
	kind, err := models.ParseFavoriteKind(c.Param("type"))
	if err != nil {
		badRequest(c, "Unknown favorite type", err)
		return
	}
	id := strings.TrimPrefix(c.Param("id"), "/")
	if id == "" {
		badRequest(c, "Missing favorite id", nil)
		return
	}

	if !s.backend.Favorites().Remove(c.Request.Context(), kind, id) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Not a favorite",
			Details: string(kind) + " " + id,
		})
		return
	}
	c.Status(http.StatusNoContent)
}

// clearFavorites handles DELETE /favorites
func (s *Server) clearFavorites(c *gin.Context) {
	s.backend.Favorites().Clear(c.Request.Context())
	c.Status(http.StatusNoContent)
}

func intQuery(c *gin.Context, key string) (int, error) {
	v := c.Query(key)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
