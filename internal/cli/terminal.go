package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/tranleduy2000/javaide-sub031/pkg/suggest"
)

var (
	nameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	kindStyle   = lipgloss.NewStyle().Faint(true)
	importStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("179"))
	addStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	delStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	sourceStyle = lipgloss.NewStyle().PaddingLeft(2)
)

func renderItem(n int, it suggest.SuggestionItem) string {
	line := fmt.Sprintf("%2d. %-40s %-12s %s", n, nameStyle.Render(it.DisplayName), kindStyle.Render(it.Kind.String()), it.Detail)
	if it.ImportClass != "" {
		line += "  " + importStyle.Render("+import "+it.ImportClass)
	}
	return line
}

func renderSource(text string) string {
	return sourceStyle.Render(text)
}

func printDiff(diff string) {
	for _, line := range strings.Split(strings.TrimRight(diff, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			line = addStyle.Render(line)
		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			line = delStyle.Render(line)
		}
		log.Print(line)
	}
}

func printStats(stats map[string]int) {
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		log.Printf("%-16s %d", k, stats[k])
	}
}
