package github

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ghexplorer/models"
)

var fixedNow = time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL, 5*time.Second, WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return client
}

func TestBuildSearchQuery(t *testing.T) {
	assert.Equal(t, "stars:>1", BuildSearchQuery("", models.LanguageAll))
	assert.Equal(t, "stars:>1", BuildSearchQuery("   ", ""))
	assert.Equal(t, "cli tool", BuildSearchQuery("cli tool", models.LanguageAll))
	assert.Equal(t, "web language:typescript", BuildSearchQuery("web", "TypeScript"))
	assert.Equal(t, "stars:>1 language:c++", BuildSearchQuery("", "C++"))
}

func TestSearchRepositories(t *testing.T) {
	testCases := []struct {
		name           string
		query          string
		filters        models.SearchFilters
		expectedQ      string
		mockStatusCode int
		mockResponse   *models.SearchResult
		expectedKind   error
		expectedMsg    string
	}{
		{
			name:      "successful search",
			query:     "stars:>1000",
			filters:   models.DefaultSearchFilters(),
			expectedQ: "stars:>1000",
			mockResponse: &models.SearchResult{
				TotalCount: 95,
				Items: []models.Repository{
					{FullName: "a/one", StargazersCount: 300},
					{FullName: "b/two", StargazersCount: 200},
				},
			},
			mockStatusCode: http.StatusOK,
		},
		{
			name:           "language qualifier",
			query:          "http",
			filters:        models.SearchFilters{Language: "Go", Sort: models.SortForks, Order: models.OrderAsc, PerPage: 10, Page: 3},
			expectedQ:      "http language:go",
			mockResponse:   &models.SearchResult{},
			mockStatusCode: http.StatusOK,
		},
		{
			name:           "rate limited",
			filters:        models.DefaultSearchFilters(),
			expectedQ:      "stars:>1",
			mockStatusCode: http.StatusForbidden,
			expectedKind:   ErrRateLimited,
			expectedMsg:    MessageRateLimited,
		},
		{
			name:           "not found",
			filters:        models.DefaultSearchFilters(),
			expectedQ:      "stars:>1",
			mockStatusCode: http.StatusNotFound,
			expectedKind:   ErrNotFound,
			expectedMsg:    MessageNotFound,
		},
		{
			name:           "invalid query",
			query:          "stars:>>",
			filters:        models.DefaultSearchFilters(),
			expectedQ:      "stars:>>",
			mockStatusCode: http.StatusUnprocessableEntity,
			expectedKind:   ErrInvalidQuery,
			expectedMsg:    MessageInvalidQuery,
		},
		{
			name:           "server error",
			filters:        models.DefaultSearchFilters(),
			expectedQ:      "stars:>1",
			mockStatusCode: http.StatusBadGateway,
			expectedKind:   ErrUnknown,
			expectedMsg:    "Http failure response: 502 Bad Gateway",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/search/repositories", r.URL.Path)
				assert.Equal(t, "application/vnd.github.v3+json", r.Header.Get("Accept"))
				assert.Empty(t, r.Header.Get("Authorization"))

				q := r.URL.Query()
				f := tc.filters.WithDefaults()
				assert.Equal(t, tc.expectedQ, q.Get("q"))
				assert.Equal(t, string(f.Sort), q.Get("sort"))
				assert.Equal(t, string(f.Order), q.Get("order"))
				assert.Equal(t, f.PerPage, atoi(t, q.Get("per_page")))
				assert.Equal(t, f.Page, atoi(t, q.Get("page")))

				w.WriteHeader(tc.mockStatusCode)
				if tc.mockResponse != nil {
					json.NewEncoder(w).Encode(tc.mockResponse)
				}
			})

			result, err := client.SearchRepositories(context.Background(), tc.query, tc.filters)

			assert.False(t, client.Loading())
			if tc.expectedKind != nil {
				assert.ErrorIs(t, err, tc.expectedKind)
				assert.Nil(t, result)
				assert.Equal(t, tc.expectedMsg, Message(err))
				assert.Equal(t, tc.expectedMsg, client.LastError())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.mockResponse.TotalCount, result.TotalCount)
			assert.Len(t, result.Items, len(tc.mockResponse.Items))
			assert.Empty(t, client.LastError())
		})
	}
}

func TestSearchRepositoriesClearsLastError(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		json.NewEncoder(w).Encode(models.SearchResult{TotalCount: 1, Items: []models.Repository{{FullName: "a/b"}}})
	})

	_, err := client.SearchRepositories(context.Background(), "x", models.DefaultSearchFilters())
	require.Error(t, err)
	assert.Equal(t, MessageRateLimited, client.LastError())

	_, err = client.SearchRepositories(context.Background(), "x", models.DefaultSearchFilters())
	require.NoError(t, err)
	assert.Empty(t, client.LastError())
}

func TestSearchRepositoriesTransportError(t *testing.T) {
	client, err := NewClient("http://127.0.0.1:1", time.Second)
	require.NoError(t, err)

	_, err = client.SearchRepositories(context.Background(), "x", models.DefaultSearchFilters())
	assert.ErrorIs(t, err, ErrUnknown)
	assert.NotEmpty(t, client.LastError())
}

func TestSearchRepositoriesCanceled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.SearchRepositories(ctx, "x", models.DefaultSearchFilters())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, client.LastError())
}

func TestGetUser(t *testing.T) {
	testCases := []struct {
		name           string
		login          string
		mockStatusCode int
		mockResponse   *models.User
		expectedKind   error
	}{
		{
			name:           "successful fetch",
			login:          "octocat",
			mockStatusCode: http.StatusOK,
			mockResponse:   &models.User{ID: 1, Login: "octocat", Name: "The Octocat", PublicRepos: 8},
		},
		{
			name:           "user not found",
			login:          "ghost-user",
			mockStatusCode: http.StatusNotFound,
			expectedKind:   ErrNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/users/"+tc.login, r.URL.Path)
				w.WriteHeader(tc.mockStatusCode)
				if tc.mockResponse != nil {
					json.NewEncoder(w).Encode(tc.mockResponse)
				}
			})

			user, err := client.GetUser(context.Background(), tc.login)

			if tc.expectedKind != nil {
				assert.ErrorIs(t, err, tc.expectedKind)
				assert.Nil(t, user)
				assert.Equal(t, MessageNotFound, client.LastError())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, *tc.mockResponse, *user)
		})
	}
}

func TestGetUserDecodesNullFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":2,"login":"x","name":null,"bio":null,"hireable":null,"created_at":"2011-01-25T18:44:36Z"}`))
	})

	user, err := client.GetUser(context.Background(), "x")
	require.NoError(t, err)
	assert.Empty(t, user.Name)
	assert.Nil(t, user.Hireable)
	assert.Equal(t, 2011, user.CreatedAt.Year())
}

func TestGetUserRepositories(t *testing.T) {
	t.Run("successful fetch", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/users/octocat/repos", r.URL.Path)
			q := r.URL.Query()
			assert.Equal(t, "public", q.Get("type"))
			assert.Equal(t, "updated", q.Get("sort"))
			assert.Equal(t, "100", q.Get("per_page"))
			assert.Equal(t, "1", q.Get("page"))
			json.NewEncoder(w).Encode([]models.Repository{{FullName: "octocat/hello"}})
		})

		repos := client.GetUserRepositories(context.Background(), "octocat", 1, 100)
		require.Len(t, repos, 1)
		assert.Equal(t, "octocat/hello", repos[0].FullName)
	})

	t.Run("failure degrades to empty list", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		repos := client.GetUserRepositories(context.Background(), "octocat", 1, 100)
		assert.NotNil(t, repos)
		assert.Empty(t, repos)
	})
}

func TestRepositoryEndpointsDegrade(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	ctx := context.Background()

	assert.Nil(t, client.GetRepositoryDetails(ctx, "o", "r"))
	assert.Equal(t, []models.Contributor{}, client.GetContributors(ctx, "o", "r"))
	assert.Equal(t, map[string]int64{}, client.GetLanguages(ctx, "o", "r"))

	series := client.GetCommitsPerMonth(ctx, "o", "r")
	require.Len(t, series.Labels, 12)
	assert.Equal(t, "Oct 26", series.Labels[11])
	assert.Equal(t, make([]int, 12), series.Values)

	// secondary lookups never touch the shared error
	assert.Empty(t, client.LastError())
}

func TestGetRepositoryKeepsErrorKind(t *testing.T) {
	testCases := []struct {
		name         string
		statusCode   int
		expectedKind error
	}{
		{name: "rate limited", statusCode: http.StatusForbidden, expectedKind: ErrRateLimited},
		{name: "not found", statusCode: http.StatusNotFound, expectedKind: ErrNotFound},
		{name: "server error", statusCode: http.StatusBadGateway, expectedKind: ErrUnknown},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/repos/golang/go", r.URL.Path)
				w.WriteHeader(tc.statusCode)
			})

			repo, err := client.GetRepository(context.Background(), "golang", "go")
			assert.Nil(t, repo)
			assert.ErrorIs(t, err, tc.expectedKind)
			if tc.expectedKind != ErrNotFound {
				assert.NotErrorIs(t, err, ErrNotFound)
			}
			assert.Nil(t, client.GetRepositoryDetails(context.Background(), "golang", "go"))
		})
	}
}

func TestRepositoryEndpoints(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/golang/go":
			json.NewEncoder(w).Encode(models.Repository{
				FullName: "golang/go", Name: "go", StargazersCount: 120000,
				License: &models.License{Key: "bsd-3-clause", Name: "BSD 3-Clause"},
			})
		case "/repos/golang/go/contributors":
			assert.Equal(t, "5", r.URL.Query().Get("per_page"))
			json.NewEncoder(w).Encode([]models.Contributor{{Login: "rsc", Contributions: 9000}})
		case "/repos/golang/go/languages":
			w.Write([]byte(`{"Go": 9000, "Assembly": 1000}`))
		case "/repos/golang/go/commits":
			q := r.URL.Query()
			assert.Equal(t, "2025-10-16T12:00:00Z", q.Get("since"))
			assert.Equal(t, "100", q.Get("per_page"))
			w.Write([]byte(`[
				{"sha":"a","commit":{"author":{"date":"2026-10-02T10:00:00Z"}}},
				{"sha":"b","commit":{"author":{"date":"2026-10-01T10:00:00Z"}}},
				{"sha":"c","commit":{"author":{"date":"2026-01-15T10:00:00Z"}}}
			]`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	repo := client.GetRepositoryDetails(ctx, "golang", "go")
	require.NotNil(t, repo)
	assert.Equal(t, "BSD 3-Clause", repo.License.Name)

	contributors := client.GetContributors(ctx, "golang", "go")
	require.Len(t, contributors, 1)
	assert.Equal(t, "rsc", contributors[0].Login)

	assert.Equal(t, map[string]int64{"Go": 9000, "Assembly": 1000}, client.GetLanguages(ctx, "golang", "go"))

	series := client.GetCommitsPerMonth(ctx, "golang", "go")
	assert.Equal(t, 2, series.Values[11])
	assert.Equal(t, "Jan 26", series.Labels[2])
	assert.Equal(t, 1, series.Values[2])

	assert.Equal(t, series, client.GetStarsPerMonth(ctx, "golang", "go"))
}

func TestRateLimitIsRecorded(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Limit", "60")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", "1792152000")
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := client.SearchRepositories(context.Background(), "", models.DefaultSearchFilters())
	require.Error(t, err)

	rl := client.RateLimit()
	assert.Equal(t, 60, rl.Limit)
	assert.Equal(t, 0, rl.Remaining)
	assert.Equal(t, time.Unix(1792152000, 0).UTC(), rl.Reset)
}

func TestLoadingDuringCall(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		json.NewEncoder(w).Encode(models.User{Login: "x"})
	})

	done := make(chan error)
	go func() {
		_, err := client.GetUser(context.Background(), "x")
		done <- err
	}()

	<-started
	assert.True(t, client.Loading())
	close(release)
	require.NoError(t, <-done)
	assert.False(t, client.Loading())
}

func TestMessage(t *testing.T) {
	assert.Equal(t, MessageUnknown, Message(nil))
	assert.Equal(t, "boom", Message(errors.New("boom")))
	assert.Equal(t, MessageNotFound, Message(newStatusError(http.StatusNotFound)))
}

func atoi(t *testing.T, s string) int {
	t.Helper()
	var n int
	require.NoError(t, json.Unmarshal([]byte(s), &n))
	return n
}
