package models

import (
	"errors"
	"fmt"
)

// LanguageAll disables the language qualifier of a search.
const LanguageAll = "All"

// PopularLanguages is the fixed language enumeration offered as a search filter.
var PopularLanguages = []string{
	"JavaScript", "TypeScript", "Python", "Java", "C++", "C#", "PHP", "Ruby",
	"Go", "Rust", "Swift", "Kotlin", "Dart", "Vue", "React", "Angular",
}

// SortKey is the field search results are ordered by.
type SortKey string

const (
	SortStars   SortKey = "stars"
	SortForks   SortKey = "forks"
	SortUpdated SortKey = "updated"
	SortCreated SortKey = "created"
)

// SortKeys lists the valid sort keys in display order.
var SortKeys = []SortKey{SortStars, SortForks, SortUpdated, SortCreated}

// SortOrder is the direction of a search sort.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

const (
	DefaultPerPage = 30
	MaxPerPage     = 100
)

// ErrInvalidFilters is returned by SearchFilters.Validate.
var ErrInvalidFilters = errors.New("invalid search filters")

// SearchFilters holds the filter state of a repository search.
type SearchFilters struct {
	Language string    `json:"language"`
	Sort     SortKey   `json:"sort"`
	Order    SortOrder `json:"order"`
	PerPage  int       `json:"per_page"`
	Page     int       `json:"page"`
}

// DefaultSearchFilters returns the landing view filters.
func DefaultSearchFilters() SearchFilters {
	return SearchFilters{
		Language: LanguageAll,
		Sort:     SortStars,
		Order:    OrderDesc,
		PerPage:  DefaultPerPage,
		Page:     1,
	}
}

// WithDefaults fills zero-valued fields from DefaultSearchFilters.
func (f SearchFilters) WithDefaults() SearchFilters {
	d := DefaultSearchFilters()
	if f.Language == "" {
		f.Language = d.Language
	}
	if f.Sort == "" {
		f.Sort = d.Sort
	}
	if f.Order == "" {
		f.Order = d.Order
	}
	if f.PerPage == 0 {
		f.PerPage = d.PerPage
	}
	if f.Page == 0 {
		f.Page = d.Page
	}
	return f
}

// Validate reports whether the filters describe a legal search.
func (f SearchFilters) Validate() error {
	if f.Page < 1 {
		return fmt.Errorf("%w: page must be >= 1, got %d", ErrInvalidFilters, f.Page)
	}
	if f.PerPage < 1 || f.PerPage > MaxPerPage {
		return fmt.Errorf("%w: per_page must be within 1..%d, got %d", ErrInvalidFilters, MaxPerPage, f.PerPage)
	}
	if !IsKnownLanguage(f.Language) {
		return fmt.Errorf("%w: unknown language %q", ErrInvalidFilters, f.Language)
	}
	switch f.Sort {
	case SortStars, SortForks, SortUpdated, SortCreated:
	default:
		return fmt.Errorf("%w: unknown sort %q", ErrInvalidFilters, f.Sort)
	}
	switch f.Order {
	case OrderAsc, OrderDesc:
	default:
		return fmt.Errorf("%w: unknown order %q", ErrInvalidFilters, f.Order)
	}
	return nil
}

// IsKnownLanguage reports whether lang is "All" or one of PopularLanguages.
func IsKnownLanguage(lang string) bool {
	if lang == LanguageAll {
		return true
	}
	for _, l := range PopularLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

// QuickFilter is a preset query plus filter overrides.
type QuickFilter struct {
	Label    string
	Query    string
	Language string
	Sort     SortKey
}

// QuickFilters are the dashboard presets.
var QuickFilters = []QuickFilter{
	{Label: "Trending Today", Query: "created:>2024-01-01", Sort: SortStars},
	{Label: "Most Stars", Query: "stars:>1000", Sort: SortStars},
	{Label: "React Projects", Language: "React"},
	{Label: "TypeScript", Language: "TypeScript"},
	{Label: "Open Source", Query: "is:public"},
	{Label: "Recently Updated", Query: "pushed:>2024-01-01", Sort: SortUpdated},
}
