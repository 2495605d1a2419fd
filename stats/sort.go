package stats

import (
	"fmt"
	"sort"
	"strings"

	"ghexplorer/models"
)

// RepoSort orders a user's repository list.
type RepoSort string

const (
	RepoSortUpdated RepoSort = "updated"
	RepoSortStars   RepoSort = "stars"
	RepoSortForks   RepoSort = "forks"
	RepoSortName    RepoSort = "name"
)

// ParseRepoSort validates s; the empty string selects RepoSortUpdated.
func ParseRepoSort(s string) (RepoSort, error) {
	switch RepoSort(s) {
	case "", RepoSortUpdated:
		return RepoSortUpdated, nil
	case RepoSortStars, RepoSortForks, RepoSortName:
		return RepoSort(s), nil
	}
	return "", fmt.Errorf("unknown repository sort %q", s)
}

// SortRepositories returns a sorted copy of repos. Stars, forks and updated
// sort descending; name sorts ascending, case-insensitively.
func SortRepositories(repos []models.Repository, by RepoSort) []models.Repository {
	out := make([]models.Repository, len(repos))
	copy(out, repos)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch by {
		case RepoSortStars:
			return a.StargazersCount > b.StargazersCount
		case RepoSortForks:
			return a.ForksCount > b.ForksCount
		case RepoSortName:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		default:
			return a.UpdatedAt.After(b.UpdatedAt)
		}
	})
	return out
}
