package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ghexplorer/config"
	"ghexplorer/db"
	"ghexplorer/favorites"
	"ghexplorer/github"
	"ghexplorer/logger"
	"ghexplorer/models"
	"ghexplorer/search"
	"ghexplorer/stats"
	"ghexplorer/storage"
)

// GitHubClientInterface abstracts the GitHub client operations needed by the service
// (for testability)
type GitHubClientInterface interface {
	SearchRepositories(ctx context.Context, query string, filters models.SearchFilters) (*models.SearchResult, error)
	GetUser(ctx context.Context, login string) (*models.User, error)
	GetUserRepositories(ctx context.Context, login string, page, perPage int) []models.Repository
	GetRepository(ctx context.Context, owner, repo string) (*models.Repository, error)
	GetRepositoryDetails(ctx context.Context, owner, repo string) *models.Repository
	GetContributors(ctx context.Context, owner, repo string) []models.Contributor
	GetLanguages(ctx context.Context, owner, repo string) map[string]int64
	GetCommitsPerMonth(ctx context.Context, owner, repo string) models.Series
	GetStarsPerMonth(ctx context.Context, owner, repo string) models.Series
	Loading() bool
	LastError() string
	RateLimit() github.RateLimit
}

// Service errors
var (
	ErrServiceInit     = fmt.Errorf("service initialization error")
	ErrServiceShutdown = fmt.Errorf("service shutdown error")
)

// profileRepoLimit is how many repositories a profile page lists.
const profileRepoLimit = 100

// topLanguageCount is how many languages a profile page highlights.
const topLanguageCount = 5

// Status is the global feedback shown next to every view.
type Status struct {
	Loading   bool             `json:"loading"`
	LastError string           `json:"last_error,omitempty"`
	RateLimit github.RateLimit `json:"rate_limit"`
	Storage   string           `json:"storage"`
	StorageOK bool             `json:"storage_ok"`
}

// Service wires the GitHub client, the favorites store and its backend.
type Service struct {
	config    *config.Config
	database  *db.DB
	client    GitHubClientInterface
	favorites *favorites.Store
}

// New builds a service from cfg. The favorites backend is chosen by
// cfg.StorageBackend.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	client, err := github.NewClient(cfg.GitHubAPIURL, cfg.HTTPTimeout)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create GitHub client: %v", ErrServiceInit, err)
	}

	var (
		kv       favorites.KV
		database *db.DB
	)
	switch cfg.StorageBackend {
	case config.StorageMemory:
		kv = storage.NewMemory()
	case config.StoragePostgres:
		database, err = db.New(cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to initialize database: %v", ErrServiceInit, err)
		}
		if err := database.EnsureSchema(ctx); err != nil {
			database.Close()
			return nil, fmt.Errorf("%w: %v", ErrServiceInit, err)
		}
		kv = database
	default:
		kv, err = storage.NewFile(cfg.StoragePath)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to initialize storage: %v", ErrServiceInit, err)
		}
	}

	s := newService(ctx, cfg, client, kv)
	s.database = database

	logger.Info("Service initialized successfully",
		zap.String("github_api_url", cfg.GitHubAPIURL),
		zap.String("storage_backend", cfg.StorageBackend),
		zap.Int("favorites", s.favorites.Counts().Total))
	return s, nil
}

func newService(ctx context.Context, cfg *config.Config, client GitHubClientInterface, kv favorites.KV) *Service {
	return &Service{
		config:    cfg,
		client:    client,
		favorites: favorites.New(ctx, kv),
	}
}

// Favorites returns the favorites store.
func (s *Service) Favorites() *favorites.Store {
	return s.favorites
}

// NewController returns a search controller using the configured debounce
// and page size. The caller closes it.
func (s *Service) NewController(opts ...search.Option) *search.Controller {
	base := []search.Option{
		search.WithDebounce(s.config.SearchDebounce),
		search.WithPageSize(s.config.PageSize),
	}
	return search.NewController(s.client, append(base, opts...)...)
}

// Status reports the client's loading flag, last error and rate limit, and
// whether the favorites backend is reachable.
func (s *Service) Status(ctx context.Context) Status {
	st := Status{
		Loading:   s.client.Loading(),
		LastError: s.client.LastError(),
		RateLimit: s.client.RateLimit(),
		Storage:   s.config.StorageBackend,
		StorageOK: true,
	}
	if s.database != nil {
		if err := s.database.Ping(ctx); err != nil {
			logger.Warn("Storage health check failed", zap.Error(err))
			st.StorageOK = false
		}
	}
	return st
}

// Search runs a single search. An empty query searches the landing view
// baseline.
func (s *Service) Search(ctx context.Context, query string, filters models.SearchFilters) (*models.SearchResult, error) {
	filters = filters.WithDefaults()
	if err := filters.Validate(); err != nil {
		return nil, err
	}
	intent := search.Intent{Query: query, Filters: filters}
	return s.client.SearchRepositories(ctx, intent.EffectiveQuery(), filters)
}

// Repository fetches a single repository. Unlike RepositoryDetail, every
// failure keeps its kind, so a rate limit is not reported as not found.
func (s *Service) Repository(ctx context.Context, owner, name string) (*models.Repository, error) {
	return s.client.GetRepository(ctx, owner, name)
}

// User fetches a single user.
func (s *Service) User(ctx context.Context, login string) (*models.User, error) {
	return s.client.GetUser(ctx, login)
}

// RepositoryDetail loads a repository page. The five lookups run
// concurrently; only a missing repository is an error, the others fall back
// to empty data.
func (s *Service) RepositoryDetail(ctx context.Context, owner, name string) (*models.RepositoryDetail, error) {
	logger.Info("Fetching repository detail",
		zap.String("repo_owner", owner),
		zap.String("repo_name", name))

	var (
		repo         *models.Repository
		contributors []models.Contributor
		languages    map[string]int64
		commits      models.Series
		stars        models.Series
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		repo = s.client.GetRepositoryDetails(gctx, owner, name)
		return nil
	})
	g.Go(func() error {
		contributors = s.client.GetContributors(gctx, owner, name)
		return nil
	})
	g.Go(func() error {
		languages = s.client.GetLanguages(gctx, owner, name)
		return nil
	})
	g.Go(func() error {
		commits = s.client.GetCommitsPerMonth(gctx, owner, name)
		return nil
	})
	g.Go(func() error {
		stars = s.client.GetStarsPerMonth(gctx, owner, name)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if repo == nil {
		return nil, fmt.Errorf("repository %s/%s: %w", owner, name, github.ErrNotFound)
	}

	logger.Info("Successfully fetched repository detail",
		zap.String("repo_owner", owner),
		zap.String("repo_name", name),
		zap.Int("contributors", len(contributors)),
		zap.Int("languages", len(languages)))

	return &models.RepositoryDetail{
		Repository:     *repo,
		Contributors:   contributors,
		Languages:      languages,
		LanguageShares: stats.LanguageBreakdown(languages),
		Commits:        commits,
		Stars:          stars,
	}, nil
}

// UserProfile loads a user page: the user, their repositories ordered by
// sortBy, and statistics over those repositories.
func (s *Service) UserProfile(ctx context.Context, login string, sortBy stats.RepoSort) (*models.UserProfile, error) {
	user, err := s.client.GetUser(ctx, login)
	if err != nil {
		return nil, err
	}

	repos := s.client.GetUserRepositories(ctx, login, 1, profileRepoLimit)
	repos = stats.SortRepositories(repos, sortBy)
	userStats := stats.CalculateUserStats(repos)

	return &models.UserProfile{
		User:         *user,
		Repositories: repos,
		Stats:        userStats,
		TopLanguages: stats.TopLanguages(userStats, topLanguageCount),
	}, nil
}

// Close performs cleanup operations
func (s *Service) Close() error {
	logger.Info("Closing service")
	if s.database == nil {
		return nil
	}
	if err := s.database.Close(); err != nil {
		return fmt.Errorf("%w: failed to close database: %v", ErrServiceShutdown, err)
	}
	return nil
}
