package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"ghexplorer/logger"
	"ghexplorer/models"
	"ghexplorer/stats"
)

// DefaultBaseURL is the public GitHub REST API.
const DefaultBaseURL = "https://api.github.com"

// fallbackQuery is searched when the caller passes an empty query.
const fallbackQuery = "stars:>1"

// Client is an unauthenticated GitHub REST API client.
//
// Besides per-call errors it keeps a shared loading flag and the message of
// the last failure, for global UI feedback.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	now        func() time.Time

	mu        sync.RWMutex
	inFlight  int
	lastError string
	rateLimit RateLimit
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithClock replaces time.Now, used for the commit window.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a client for baseURL; an empty baseURL selects DefaultBaseURL.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub base URL %q: %w", baseURL, err)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    u,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	logger.Info("Initializing GitHub client", zap.String("base_url", u.String()))
	return c, nil
}

// Loading reports whether a tracked call (search or user lookup) is in flight.
func (c *Client) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inFlight > 0
}

// LastError is the message of the most recent failure, or "".
func (c *Client) LastError() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

// RateLimit returns the rate limit reported by the last response.
func (c *Client) RateLimit() RateLimit {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rateLimit
}

// begin marks a tracked call as started and clears the last error.
func (c *Client) begin() func() {
	c.mu.Lock()
	c.inFlight++
	c.lastError = ""
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		c.inFlight--
		c.mu.Unlock()
	}
}

func (c *Client) setError(err error) {
	c.mu.Lock()
	c.lastError = Message(err)
	c.mu.Unlock()
}

// SearchRepositories searches repositories matching query, narrowed by the
// language filter and ordered, sized and paged per filters.
func (c *Client) SearchRepositories(ctx context.Context, query string, filters models.SearchFilters) (*models.SearchResult, error) {
	done := c.begin()
	defer done()

	filters = filters.WithDefaults()
	q := BuildSearchQuery(query, filters.Language)

	params := url.Values{}
	params.Set("q", q)
	params.Set("sort", string(filters.Sort))
	params.Set("order", string(filters.Order))
	params.Set("per_page", strconv.Itoa(filters.PerPage))
	params.Set("page", strconv.Itoa(filters.Page))

	logger.Info("Searching repositories",
		zap.String("q", q),
		zap.String("sort", string(filters.Sort)),
		zap.String("order", string(filters.Order)),
		zap.Int("page", filters.Page))

	var result models.SearchResult
	if err := c.get(ctx, "/search/repositories", params, &result); err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		c.setError(err)
		logger.Error("Failed to search repositories", zap.Error(err), zap.String("q", q))
		return nil, fmt.Errorf("failed to search repositories: %w", err)
	}
	if result.Items == nil {
		result.Items = []models.Repository{}
	}

	logger.Info("Successfully searched repositories",
		zap.String("q", q),
		zap.Int("total_count", result.TotalCount),
		zap.Int("items", len(result.Items)))
	return &result, nil
}

// BuildSearchQuery appends the language qualifier to query.
func BuildSearchQuery(query, language string) string {
	q := strings.TrimSpace(query)
	if q == "" {
		q = fallbackQuery
	}
	if language != "" && language != models.LanguageAll {
		q += " language:" + strings.ToLower(language)
	}
	return q
}

// GetUser fetches a user profile.
func (c *Client) GetUser(ctx context.Context, login string) (*models.User, error) {
	done := c.begin()
	defer done()

	var user models.User
	if err := c.get(ctx, "/users/"+url.PathEscape(login), nil, &user); err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		c.setError(err)
		logger.Error("Failed to fetch user", zap.Error(err), zap.String("login", login))
		return nil, fmt.Errorf("failed to fetch user %s: %w", login, err)
	}

	logger.Info("Successfully fetched user",
		zap.String("login", user.Login),
		zap.Int("public_repos", user.PublicRepos))
	return &user, nil
}

// GetUserRepositories lists a user's public repositories, most recently
// updated first. Failures yield an empty list so a profile still renders.
func (c *Client) GetUserRepositories(ctx context.Context, login string, page, perPage int) []models.Repository {
	params := url.Values{}
	params.Set("type", "public")
	params.Set("sort", "updated")
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("page", strconv.Itoa(page))

	var repos []models.Repository
	if err := c.get(ctx, "/users/"+url.PathEscape(login)+"/repos", params, &repos); err != nil {
		c.setError(err)
		logger.Warn("Failed to fetch user repositories",
			zap.Error(err),
			zap.String("login", login))
		return []models.Repository{}
	}
	if repos == nil {
		repos = []models.Repository{}
	}
	return repos
}

// GetRepository fetches a repository and reports why it failed.
func (c *Client) GetRepository(ctx context.Context, owner, repo string) (*models.Repository, error) {
	var r models.Repository
	if err := c.get(ctx, repoPath(owner, repo, ""), nil, &r); err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("failed to fetch repository %s/%s: %w", owner, repo, err)
	}
	return &r, nil
}

// GetRepositoryDetails fetches a repository, or nil on failure.
func (c *Client) GetRepositoryDetails(ctx context.Context, owner, repo string) *models.Repository {
	r, err := c.GetRepository(ctx, owner, repo)
	if err != nil {
		logger.Warn("Failed to fetch repository details",
			zap.Error(err),
			zap.String("owner", owner),
			zap.String("name", repo))
		return nil
	}
	return r
}

// GetContributors returns up to five top contributors, or an empty list on failure.
func (c *Client) GetContributors(ctx context.Context, owner, repo string) []models.Contributor {
	params := url.Values{}
	params.Set("per_page", "5")

	var contributors []models.Contributor
	if err := c.get(ctx, repoPath(owner, repo, "/contributors"), params, &contributors); err != nil {
		logger.Warn("Failed to fetch contributors",
			zap.Error(err),
			zap.String("owner", owner),
			zap.String("name", repo))
		return []models.Contributor{}
	}
	if contributors == nil {
		contributors = []models.Contributor{}
	}
	return contributors
}

// GetLanguages returns bytes of code per language, or an empty map on failure.
func (c *Client) GetLanguages(ctx context.Context, owner, repo string) map[string]int64 {
	var languages map[string]int64
	if err := c.get(ctx, repoPath(owner, repo, "/languages"), nil, &languages); err != nil {
		logger.Warn("Failed to fetch languages",
			zap.Error(err),
			zap.String("owner", owner),
			zap.String("name", repo))
		return map[string]int64{}
	}
	if languages == nil {
		languages = map[string]int64{}
	}
	return languages
}

// commitResponse keeps only what the activity chart needs.
type commitResponse struct {
	SHA    string `json:"sha"`
	Commit struct {
		Author struct {
			Date time.Time `json:"date"`
		} `json:"author"`
	} `json:"commit"`
}

// GetCommitsPerMonth counts up to 100 commits of the last year per month.
// The result always has twelve buckets; failures give all zeros.
func (c *Client) GetCommitsPerMonth(ctx context.Context, owner, repo string) models.Series {
	now := c.now()

	params := url.Values{}
	params.Set("since", now.AddDate(-1, 0, 0).UTC().Format(time.RFC3339))
	params.Set("per_page", "100")

	var commits []commitResponse
	if err := c.get(ctx, repoPath(owner, repo, "/commits"), params, &commits); err != nil {
		logger.Warn("Failed to fetch commits",
			zap.Error(err),
			zap.String("owner", owner),
			zap.String("name", repo))
		return stats.EmptyActivity(now)
	}

	dates := make([]time.Time, 0, len(commits))
	for _, commit := range commits {
		dates = append(dates, commit.Commit.Author.Date)
	}

	logger.Debug("Bucketed commits",
		zap.String("owner", owner),
		zap.String("name", repo),
		zap.Int("commit_count", len(commits)))
	return stats.BucketCommits(dates, now)
}

// GetStarsPerMonth feeds the repository page's activity line chart. GitHub
// has no per-month stargazer history short of paging every stargazer, so the
// series is derived from the same commit window as GetCommitsPerMonth.
func (c *Client) GetStarsPerMonth(ctx context.Context, owner, repo string) models.Series {
	return c.GetCommitsPerMonth(ctx, owner, repo)
}

func repoPath(owner, repo, suffix string) string {
	return "/repos/" + url.PathEscape(owner) + "/" + url.PathEscape(repo) + suffix
}

// get performs a GET against path and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	reqURL, err := url.Parse(c.baseURL.String() + path)
	if err != nil {
		return newTransportError(fmt.Errorf("invalid request path %q: %w", path, err))
	}
	if params != nil {
		reqURL.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return newTransportError(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "ghexplorer")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return newTransportError(err)
	}
	defer resp.Body.Close()

	c.recordRateLimit(resp)

	if resp.StatusCode != http.StatusOK {
		logger.Debug("GitHub returned non-OK status",
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode))
		return newStatusError(resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return newTransportError(fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}
