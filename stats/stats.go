// Package stats reduces repository lists and language/commit data into the
// summaries shown on profile and repository pages. Everything here is pure.
package stats

import (
	"math"
	"sort"
	"strings"

	"ghexplorer/models"
)

// Repository categories.
const (
	CategoryFrontend = "Frontend"
	CategoryBackend  = "Backend"
	CategoryMobile   = "Mobile"
	CategoryAIML     = "AI/ML"
	CategoryTools    = "Tools"
	CategoryGames    = "Games"
	CategoryLibrary  = "Library"
	CategoryOther    = "Other"
)

// MaxLanguageShares caps LanguageBreakdown.
const MaxLanguageShares = 5

type categoryRule struct {
	category string
	topics   []string
	match    func(name, description string) bool
}

// Order matters: the first matching rule wins.
var categoryRules = []categoryRule{
	{category: CategoryFrontend, topics: []string{"frontend", "ui", "css", "html", "react", "vue", "angular"}},
	{category: CategoryBackend, topics: []string{"backend", "api", "server", "database", "nodejs"}},
	{category: CategoryMobile, topics: []string{"mobile", "android", "ios", "flutter", "react-native"}},
	{category: CategoryAIML, topics: []string{"machine-learning", "ai", "ml", "data-science", "tensorflow", "pytorch"}},
	{
		category: CategoryTools,
		topics:   []string{"tool", "cli", "utility", "automation"},
		match:    func(name, _ string) bool { return strings.Contains(name, "tool") },
	},
	{
		category: CategoryGames,
		topics:   []string{"game", "gaming", "unity", "engine"},
		match:    func(_, description string) bool { return strings.Contains(description, "game") },
	},
	{category: CategoryLibrary, topics: []string{"library", "framework", "package", "npm"}},
}

// Categorize assigns a repository to exactly one category. Repositories
// without topics are always Other.
func Categorize(repo models.Repository) string {
	if len(repo.Topics) == 0 {
		return CategoryOther
	}

	topics := make(map[string]struct{}, len(repo.Topics))
	for _, t := range repo.Topics {
		topics[strings.ToLower(t)] = struct{}{}
	}
	name := strings.ToLower(repo.Name)
	description := strings.ToLower(repo.Description)

	for _, rule := range categoryRules {
		for _, t := range rule.topics {
			if _, ok := topics[t]; ok {
				return rule.category
			}
		}
		if rule.match != nil && rule.match(name, description) {
			return rule.category
		}
	}
	return CategoryOther
}

// AverageRepoSize returns the rounded mean size in KB, or 0 for no repositories.
func AverageRepoSize(repos []models.Repository) int {
	if len(repos) == 0 {
		return 0
	}
	total := 0
	for _, r := range repos {
		total += r.Size
	}
	return int(math.Round(float64(total) / float64(len(repos))))
}

// CalculateUserStats recomputes the full summary of repos.
func CalculateUserStats(repos []models.Repository) models.UserStats {
	s := models.UserStats{
		LanguageDistribution: map[string]int{},
		RepositoryTypes:      map[string]int{},
	}
	for _, r := range repos {
		s.TotalStars += r.StargazersCount
		s.TotalForks += r.ForksCount
		if r.Language != "" {
			s.LanguageDistribution[r.Language]++
		}
		s.RepositoryTypes[Categorize(r)]++
	}
	s.AverageRepoSize = AverageRepoSize(repos)
	return s
}

// TopLanguages returns the n most used languages of s, most used first.
// Ties are broken by name.
func TopLanguages(s models.UserStats, n int) []models.LanguageCount {
	out := make([]models.LanguageCount, 0, len(s.LanguageDistribution))
	for name, count := range s.LanguageDistribution {
		out = append(out, models.LanguageCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// LanguageBreakdown converts a bytes-per-language mapping into the top five
// languages by rounded percentage. A zero total yields an empty slice.
func LanguageBreakdown(languages map[string]int64) []models.LanguageShare {
	var total int64
	for _, b := range languages {
		total += b
	}
	if total <= 0 {
		return []models.LanguageShare{}
	}

	shares := make([]models.LanguageShare, 0, len(languages))
	for name, b := range languages {
		shares = append(shares, models.LanguageShare{
			Name:       name,
			Bytes:      b,
			Percentage: int(math.Round(float64(b) / float64(total) * 100)),
		})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Percentage != shares[j].Percentage {
			return shares[i].Percentage > shares[j].Percentage
		}
		if shares[i].Bytes != shares[j].Bytes {
			return shares[i].Bytes > shares[j].Bytes
		}
		return shares[i].Name < shares[j].Name
	})
	if len(shares) > MaxLanguageShares {
		shares = shares[:MaxLanguageShares]
	}
	return shares
}
