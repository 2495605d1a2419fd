package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFavoriteJSON(t *testing.T) {
	added := time.Date(2026, 9, 30, 8, 15, 0, 0, time.UTC)
	list := []Favorite{
		{ID: "golang/go", Kind: KindRepository, Repository: &Repository{FullName: "golang/go", Name: "go", StargazersCount: 120000}, AddedAt: added},
		{ID: "octocat", Kind: KindUser, User: &User{Login: "octocat", PublicRepos: 8}, AddedAt: added.Add(time.Hour)},
	}

	raw, err := json.Marshal(list)
	require.NoError(t, err)

	var generic []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &generic))
	assert.Equal(t, "repository", generic[0]["type"])
	assert.Equal(t, "2026-09-30T08:15:00Z", generic[0]["addedAt"])
	assert.Equal(t, "go", generic[0]["data"].(map[string]interface{})["name"])

	var decoded []Favorite
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, 120000, decoded[0].Repository.StargazersCount)
	assert.Nil(t, decoded[0].User)
	assert.Equal(t, "octocat", decoded[1].User.Login)
	assert.True(t, decoded[1].AddedAt.Equal(added.Add(time.Hour)))
}

func TestFavoriteJSONRejectsUnknownType(t *testing.T) {
	var f Favorite
	err := json.Unmarshal([]byte(`{"id":"x","type":"organization","data":{},"addedAt":"2026-01-01T00:00:00Z"}`), &f)
	assert.Error(t, err)

	_, err = json.Marshal(Favorite{ID: "x"})
	assert.Error(t, err)
}

func TestFavoriteAccessors(t *testing.T) {
	repo := Favorite{ID: "golang/go", Kind: KindRepository, Repository: &Repository{Name: "go", StargazersCount: 5}}
	user := Favorite{ID: "octocat", Kind: KindUser, User: &User{Login: "octocat", PublicRepos: 8}}
	bare := Favorite{ID: "orphan", Kind: KindUser}

	assert.Equal(t, "go", repo.DisplayName())
	assert.Equal(t, 5, repo.Popularity())
	assert.Equal(t, "octocat", user.DisplayName())
	assert.Equal(t, 8, user.Popularity())
	assert.Equal(t, "orphan", bare.DisplayName())
	assert.Equal(t, 0, bare.Popularity())
}

func TestParseFavoriteKind(t *testing.T) {
	for in, expected := range map[string]FavoriteKind{
		"repository": KindRepository, "repos": KindRepository, "repo": KindRepository,
		"user": KindUser, "users": KindUser,
	} {
		k, err := ParseFavoriteKind(in)
		assert.NoError(t, err, in)
		assert.Equal(t, expected, k, in)
	}
	_, err := ParseFavoriteKind("org")
	assert.Error(t, err)
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		name     string
		result   *SearchResult
		perPage  int
		expected int
	}{
		{name: "nil result", result: nil, perPage: 30, expected: 0},
		{name: "empty", result: &SearchResult{}, perPage: 30, expected: 0},
		{name: "exact", result: &SearchResult{TotalCount: 90}, perPage: 30, expected: 3},
		{name: "partial last page", result: &SearchResult{TotalCount: 91}, perPage: 30, expected: 4},
		{name: "invalid page size", result: &SearchResult{TotalCount: 91}, perPage: 0, expected: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.result.PageCount(tt.perPage))
		})
	}
}

func TestSearchFiltersValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*SearchFilters)
		wantErr bool
	}{
		{name: "defaults", modify: func(*SearchFilters) {}},
		{name: "known language", modify: func(f *SearchFilters) { f.Language = "Rust" }},
		{name: "unknown language", modify: func(f *SearchFilters) { f.Language = "COBOL" }, wantErr: true},
		{name: "page zero", modify: func(f *SearchFilters) { f.Page = 0 }, wantErr: true},
		{name: "per page too large", modify: func(f *SearchFilters) { f.PerPage = MaxPerPage + 1 }, wantErr: true},
		{name: "bad sort", modify: func(f *SearchFilters) { f.Sort = "popularity" }, wantErr: true},
		{name: "bad order", modify: func(f *SearchFilters) { f.Order = "sideways" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := DefaultSearchFilters()
			tt.modify(&f)
			err := f.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFilters)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWithDefaults(t *testing.T) {
	assert.Equal(t, DefaultSearchFilters(), SearchFilters{}.WithDefaults())

	f := SearchFilters{Language: "Go", PerPage: 10}.WithDefaults()
	assert.Equal(t, "Go", f.Language)
	assert.Equal(t, 10, f.PerPage)
	assert.Equal(t, SortStars, f.Sort)
	assert.Equal(t, 1, f.Page)
}
