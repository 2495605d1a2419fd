package favorites

import (
	"fmt"
	"sort"
	"strings"

	"ghexplorer/models"
)

// SortBy orders the favorites view.
type SortBy string

const (
	SortRecent SortBy = "recent"
	SortName   SortBy = "name"
	SortStars  SortBy = "stars"
)

// ParseSortBy parses a SortBy; "" selects SortRecent.
func ParseSortBy(s string) (SortBy, error) {
	switch SortBy(s) {
	case "", SortRecent:
		return SortRecent, nil
	case SortName, SortStars:
		return SortBy(s), nil
	}
	return "", fmt.Errorf("unknown favorites sort %q", s)
}

// Sort returns a sorted copy of list.
//
// SortName orders by repository name or login, SortStars by stars for
// repositories and public repository count for users (highest first), and
// SortRecent by AddedAt, newest first.
func Sort(list []models.Favorite, by SortBy) []models.Favorite {
	out := clone(list)
	var less func(a, b models.Favorite) bool
	switch by {
	case SortName:
		less = func(a, b models.Favorite) bool {
			na, nb := strings.ToLower(a.DisplayName()), strings.ToLower(b.DisplayName())
			if na != nb {
				return na < nb
			}
			return a.DisplayName() < b.DisplayName()
		}
	case SortStars:
		less = func(a, b models.Favorite) bool { return a.Popularity() > b.Popularity() }
	default:
		less = func(a, b models.Favorite) bool { return a.AddedAt.After(b.AddedAt) }
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// Filter keeps the favorites of kind. An empty kind keeps everything.
func Filter(list []models.Favorite, kind models.FavoriteKind) []models.Favorite {
	out := make([]models.Favorite, 0, len(list))
	for _, f := range list {
		if kind == "" || f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}
