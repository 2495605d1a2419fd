package render

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"ghexplorer/models"
)

const descriptionWidth = 72

// Repository renders one search result entry.
func Repository(repo models.Repository, now time.Time) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(repo.FullName))

	stats := []string{starStyle.Render("★ " + FormatCount(repo.StargazersCount)),
		"⑂ " + FormatCount(repo.ForksCount)}
	if repo.Language != "" {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(LanguageColor(repo.Language))).Render("●")
		stats = append(stats, dot+" "+repo.Language)
	}
	stats = append(stats, mutedStyle.Render("updated "+RelativeTime(repo.UpdatedAt, now)))
	b.WriteString("  " + strings.Join(stats, "  "))

	if repo.Description != "" {
		b.WriteString("\n  " + truncate(repo.Description, descriptionWidth))
	}
	if len(repo.Topics) > 0 {
		b.WriteString("\n  " + mutedStyle.Render(strings.Join(repo.Topics, " · ")))
	}
	return b.String()
}

// RepositoryList renders repositories separated by blank lines.
func RepositoryList(repos []models.Repository, now time.Time) string {
	if len(repos) == 0 {
		return Subtle("No repositories found")
	}
	parts := make([]string, 0, len(repos))
	for _, r := range repos {
		parts = append(parts, Repository(r, now))
	}
	return strings.Join(parts, "\n\n")
}

// SearchSummary is the result header: total count and page position.
func SearchSummary(result *models.SearchResult, page, perPage int) string {
	if result == nil {
		return ""
	}
	pages := result.PageCount(perPage)
	if pages == 0 {
		page = 0
	}
	return mutedStyle.Render(fmt.Sprintf("%s repositories · page %d of %d",
		FormatCount(result.TotalCount), page, pages))
}

// UserCard renders a user profile with repository statistics.
func UserCard(p *models.UserProfile, now time.Time) string {
	u := p.User
	lines := []string{titleStyle.Render(u.Login)}
	if u.Name != "" {
		lines[0] += " " + mutedStyle.Render("("+u.Name+")")
	}
	if u.Bio != "" {
		lines = append(lines, truncate(u.Bio, descriptionWidth))
	}

	var facts []string
	for _, f := range []struct{ label, value string }{
		{"company", u.Company},
		{"location", u.Location},
		{"blog", u.Blog},
		{"email", u.Email},
	} {
		if f.value != "" {
			facts = append(facts, mutedStyle.Render(f.label+":")+" "+f.value)
		}
	}
	if len(facts) > 0 {
		lines = append(lines, strings.Join(facts, "  "))
	}

	lines = append(lines,
		fmt.Sprintf("%s followers · %s following · %d public repos · joined %s",
			FormatCount(u.Followers), FormatCount(u.Following), u.PublicRepos, RelativeTime(u.CreatedAt, now)),
		fmt.Sprintf("%s total stars · %s total forks · avg size %d KB",
			starStyle.Render(FormatCount(p.Stats.TotalStars)), FormatCount(p.Stats.TotalForks), p.Stats.AverageRepoSize),
	)

	if len(p.TopLanguages) > 0 {
		langs := make([]string, 0, len(p.TopLanguages))
		for _, l := range p.TopLanguages {
			langs = append(langs, fmt.Sprintf("%s (%d)", l.Name, l.Count))
		}
		lines = append(lines, mutedStyle.Render("languages:")+" "+strings.Join(langs, ", "))
	}
	if len(p.Stats.RepositoryTypes) > 0 {
		lines = append(lines, mutedStyle.Render("categories:")+" "+formatHistogram(p.Stats.RepositoryTypes))
	}

	return cardStyle.Render(strings.Join(lines, "\n"))
}

// formatHistogram renders counts largest first, ties by name.
func formatHistogram(h map[string]int) string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if h[keys[i]] != h[keys[j]] {
			return h[keys[i]] > h[keys[j]]
		}
		return keys[i] < keys[j]
	})
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %d", k, h[k]))
	}
	return strings.Join(parts, ", ")
}

// RepositoryDetail renders a repository page.
func RepositoryDetail(d *models.RepositoryDetail, now time.Time) string {
	r := d.Repository
	sections := []string{Repository(r, now)}

	meta := fmt.Sprintf("%d watchers · %d open issues · %d KB · created %s",
		r.WatchersCount, r.OpenIssuesCount, r.Size, RelativeTime(r.CreatedAt, now))
	if r.License != nil && r.License.Name != "" {
		meta += " · " + r.License.Name
	}
	sections = append(sections, mutedStyle.Render(meta))

	sections = append(sections, headerStyle.Render("Languages"), LanguageBars(d.LanguageShares, 30))

	if len(d.Contributors) > 0 {
		rows := make([]string, 0, len(d.Contributors))
		for _, c := range d.Contributors {
			rows = append(rows, fmt.Sprintf("%-20s %d", c.Login, c.Contributions))
		}
		sections = append(sections, headerStyle.Render("Top contributors"), strings.Join(rows, "\n"))
	}

	sections = append(sections,
		headerStyle.Render("Commits per month"), BarChart(d.Commits, 30),
		headerStyle.Render("Activity"), Sparkline(d.Stars.Values))

	return strings.Join(sections, "\n")
}

// FavoritesTable renders favorites one per line with kind, name and popularity.
func FavoritesTable(list []models.Favorite, now time.Time) string {
	if len(list) == 0 {
		return Subtle("No favorites yet")
	}
	idWidth := 0
	for _, f := range list {
		if len(f.ID) > idWidth {
			idWidth = len(f.ID)
		}
	}
	rows := []string{headerStyle.Render(fmt.Sprintf("%-10s %-*s %8s  %s", "TYPE", idWidth, "NAME", "POPULAR", "ADDED"))}
	for _, f := range list {
		rows = append(rows, fmt.Sprintf("%-10s %-*s %8s  %s",
			f.Kind, idWidth, f.ID, FormatCount(f.Popularity()), RelativeTime(f.AddedAt, now)))
	}
	return strings.Join(rows, "\n")
}
