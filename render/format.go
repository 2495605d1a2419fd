package render

import (
	"fmt"
	"strconv"
	"time"
)

// FormatCount abbreviates large counts: 1500 -> "1.5k", 2300000 -> "2.3M".
func FormatCount(n int) string {
	switch {
	case n >= 1000000:
		return fmt.Sprintf("%.1fM", float64(n)/1000000)
	case n >= 1000:
		return fmt.Sprintf("%.1fk", float64(n)/1000)
	}
	return strconv.Itoa(n)
}

// RelativeTime describes t relative to now, e.g. "3d ago".
func RelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	secs := int64(now.Sub(t) / time.Second)
	switch {
	case secs < 60:
		return "just now"
	case secs < 3600:
		return fmt.Sprintf("%dm ago", secs/60)
	case secs < 86400:
		return fmt.Sprintf("%dh ago", secs/3600)
	case secs < 2592000:
		return fmt.Sprintf("%dd ago", secs/86400)
	case secs < 31536000:
		return fmt.Sprintf("%dmo ago", secs/2592000)
	}
	return fmt.Sprintf("%dy ago", secs/31536000)
}

var languageColors = map[string]string{
	"JavaScript": "#f1e05a",
	"TypeScript": "#2b7489",
	"Python":     "#3572A5",
	"Java":       "#b07219",
	"C++":        "#f34b7d",
	"C#":         "#239120",
	"PHP":        "#4F5D95",
	"Ruby":       "#701516",
	"Go":         "#00ADD8",
	"Rust":       "#dea584",
	"Swift":      "#ffac45",
	"Kotlin":     "#F18E33",
	"Dart":       "#00B4AB",
	"Vue":        "#4FC08D",
	"React":      "#61DAFB",
	"Angular":    "#DD0031",
}

// LanguageColor is the hex color of a language, gray if unknown.
func LanguageColor(language string) string {
	if c, ok := languageColors[language]; ok {
		return c
	}
	return "#6B7280"
}

func truncate(s string, max int) string {
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}
