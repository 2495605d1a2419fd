package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"ghexplorer/models"
)

var sparkTicks = []rune("▁▂▃▄▅▆▇█")

// Sparkline draws values as one line of block characters scaled to the
// largest value.
func Sparkline(values []int) string {
	max := 0
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	var b strings.Builder
	for _, v := range values {
		idx := 0
		if max > 0 && v > 0 {
			idx = v * (len(sparkTicks) - 1) / max
		}
		b.WriteRune(sparkTicks[idx])
	}
	return b.String()
}

// BarChart draws one horizontal bar per label, the longest bar width cells wide.
func BarChart(series models.Series, width int) string {
	if width < 1 {
		width = 1
	}
	max, labelWidth := 0, 0
	for i, v := range series.Values {
		if v > max {
			max = v
		}
		if i < len(series.Labels) && len(series.Labels[i]) > labelWidth {
			labelWidth = len(series.Labels[i])
		}
	}

	bar := lipgloss.NewStyle().Foreground(colorPrimary)
	lines := make([]string, 0, len(series.Values))
	for i, v := range series.Values {
		label := ""
		if i < len(series.Labels) {
			label = series.Labels[i]
		}
		n := 0
		if max > 0 {
			n = v * width / max
		}
		lines = append(lines, fmt.Sprintf("%-*s %s %d",
			labelWidth, label, bar.Render(strings.Repeat("█", n)), v))
	}
	return strings.Join(lines, "\n")
}

// LanguageBars draws the language breakdown as colored percentage bars.
func LanguageBars(shares []models.LanguageShare, width int) string {
	if len(shares) == 0 {
		return Subtle("No language data")
	}
	nameWidth := 0
	for _, s := range shares {
		if len(s.Name) > nameWidth {
			nameWidth = len(s.Name)
		}
	}
	lines := make([]string, 0, len(shares))
	for _, s := range shares {
		n := s.Percentage * width / 100
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(LanguageColor(s.Name)))
		lines = append(lines, fmt.Sprintf("%-*s %s %3d%%",
			nameWidth, s.Name, style.Render(strings.Repeat("█", n)), s.Percentage))
	}
	return strings.Join(lines, "\n")
}
