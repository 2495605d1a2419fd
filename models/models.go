// Package models defines the core data structures used throughout the application.
package models

import (
	"fmt"
	"time"
)

// Repository represents a GitHub repository as returned by the REST API.
// FullName ("owner/name") is its identity key.
type Repository struct {
	ID              int64     `json:"id"`
	Owner           User      `json:"owner"`
	Name            string    `json:"name"`
	FullName        string    `json:"full_name"`
	Description     string    `json:"description"`
	HTMLURL         string    `json:"html_url"`
	StargazersCount int       `json:"stargazers_count"`
	ForksCount      int       `json:"forks_count"`
	WatchersCount   int       `json:"watchers_count"`
	Language        string    `json:"language"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	PushedAt        time.Time `json:"pushed_at"`
	Size            int       `json:"size"`
	OpenIssuesCount int       `json:"open_issues_count"`
	Topics          []string  `json:"topics"`
	License         *License  `json:"license"`
}

// License is the license summary attached to a repository.
type License struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// User represents a GitHub account. Login is its identity key.
type User struct {
	ID              int64     `json:"id"`
	Login           string    `json:"login"`
	AvatarURL       string    `json:"avatar_url"`
	HTMLURL         string    `json:"html_url"`
	Name            string    `json:"name"`
	Bio             string    `json:"bio"`
	Location        string    `json:"location"`
	Email           string    `json:"email"`
	Blog            string    `json:"blog"`
	TwitterUsername string    `json:"twitter_username"`
	Company         string    `json:"company"`
	Hireable        *bool     `json:"hireable"`
	PublicRepos     int       `json:"public_repos"`
	PublicGists     int       `json:"public_gists"`
	Followers       int       `json:"followers"`
	Following       int       `json:"following"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Contributor is one entry of a repository's contributor list.
type Contributor struct {
	Login         string `json:"login"`
	AvatarURL     string `json:"avatar_url"`
	HTMLURL       string `json:"html_url"`
	Contributions int    `json:"contributions"`
}

// SearchResult is the envelope returned by the search endpoints.
type SearchResult struct {
	TotalCount        int          `json:"total_count"`
	IncompleteResults bool         `json:"incomplete_results"`
	Items             []Repository `json:"items"`
}

// PageCount returns how many pages of perPage items the result spans.
func (r *SearchResult) PageCount(perPage int) int {
	if r == nil || perPage < 1 || r.TotalCount <= 0 {
		return 0
	}
	return (r.TotalCount + perPage - 1) / perPage
}

// Series is a labeled numeric series ready for charting.
type Series struct {
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
}

// LanguageShare is a language's share of a repository's code.
type LanguageShare struct {
	Name       string `json:"name"`
	Bytes      int64  `json:"bytes"`
	Percentage int    `json:"percentage"`
}

// LanguageCount is a language with the number of repositories using it.
type LanguageCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// UserStats summarizes a list of repositories.
type UserStats struct {
	TotalStars           int            `json:"total_stars"`
	TotalForks           int            `json:"total_forks"`
	LanguageDistribution map[string]int `json:"language_distribution"`
	RepositoryTypes      map[string]int `json:"repository_types"`
	AverageRepoSize      int            `json:"average_repo_size"`
}

// RepositoryDetail aggregates everything shown on a repository page.
type RepositoryDetail struct {
	Repository     Repository       `json:"repository"`
	Contributors   []Contributor    `json:"contributors"`
	Languages      map[string]int64 `json:"languages"`
	LanguageShares []LanguageShare  `json:"language_shares"`
	Commits        Series           `json:"commits"`
	Stars          Series           `json:"stars"`
}

// UserProfile aggregates everything shown on a user page.
type UserProfile struct {
	User         User            `json:"user"`
	Repositories []Repository    `json:"repositories"`
	Stats        UserStats       `json:"stats"`
	TopLanguages []LanguageCount `json:"top_languages"`
}

// FavoriteKind distinguishes favorited repositories from favorited users.
type FavoriteKind string

const (
	KindRepository FavoriteKind = "repository"
	KindUser       FavoriteKind = "user"
)

// ParseFavoriteKind accepts the singular and plural spellings used by the views.
func ParseFavoriteKind(s string) (FavoriteKind, error) {
	switch s {
	case "repository", "repositories", "repo", "repos":
		return KindRepository, nil
	case "user", "users":
		return KindUser, nil
	}
	return "", fmt.Errorf("unknown favorite kind %q", s)
}

// Favorite is a favorited repository or user. Exactly one of Repository and
// User is set, matching Kind.
type Favorite struct {
	ID         string
	Kind       FavoriteKind
	Repository *Repository
	User       *User
	AddedAt    time.Time
}

// DisplayName is the name shown in lists: repository name or user login.
func (f Favorite) DisplayName() string {
	if f.Kind == KindRepository && f.Repository != nil {
		return f.Repository.Name
	}
	if f.User != nil {
		return f.User.Login
	}
	return f.ID
}

// Popularity is the star count of a repository or the public repository
// count of a user.
func (f Favorite) Popularity() int {
	if f.Kind == KindRepository && f.Repository != nil {
		return f.Repository.StargazersCount
	}
	if f.User != nil {
		return f.User.PublicRepos
	}
	return 0
}
