package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/johanforsgren/mantella/internal/domain"
	"github.com/johanforsgren/mantella/internal/logger"
)

func collectiveLabel(c domain.Collective) string {
	if c.Emoji == "" {
		return CollectiveStyle.Render(c.Name)
	}
	return c.Emoji + " " + CollectiveStyle.Render(c.Name)
}

func pageCount(n int) string {
	if n == 1 {
		return CountStyle.Render("(1 page)")
	}
	return CountStyle.Render(fmt.Sprintf("(%d pages)", n))
}

func pageLine(p domain.Page) string {
	if p.IsMainPage {
		return PageStyle.Render(MainPageStyle.Render("★ " + p.Name))
	}
	return PageStyle.Render("• " + p.Name)
}

// formatTree lists each collective followed by its pages. pagesOf is
// expected to return pages in display order.
func formatTree(collectives []domain.Collective, pagesOf func(string) []domain.Page) string {
	if len(collectives) == 0 {
		return MutedStyle.Render("no collectives")
	}

	var b strings.Builder
	for i, c := range collectives {
		if i > 0 {
			b.WriteString("\n")
		}
		pages := pagesOf(c.Name)
		fmt.Fprintf(&b, "%s %s\n", collectiveLabel(c), pageCount(len(pages)))
		for _, p := range pages {
			b.WriteString(pageLine(p))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatPages(pages []domain.Page) string {
	if len(pages) == 0 {
		return MutedStyle.Render("no pages")
	}
	lines := make([]string, len(pages))
	for i, p := range pages {
		lines[i] = pageLine(p) + "  " + MutedStyle.Render(p.Path)
	}
	return strings.Join(lines, "\n")
}

func formatPeople(people domain.UsersAndGroups) string {
	var b strings.Builder
	section := func(title string, names []string) {
		fmt.Fprintf(&b, "%s %s\n", TitleStyle.Render(title), CountStyle.Render(fmt.Sprintf("(%d)", len(names))))
		for _, name := range names {
			b.WriteString(PageStyle.Render("• " + name))
			b.WriteString("\n")
		}
	}
	section("Users", people.Users)
	b.WriteString("\n")
	section("Groups", people.Groups)
	return strings.TrimRight(b.String(), "\n")
}

func printLogs(w io.Writer) {
	logs := logger.GetLogs()

	fmt.Fprintln(w, TitleStyle.Render(fmt.Sprintf("Session Logs (%d entries)", len(logs))))
	if len(logs) == 0 {
		fmt.Fprintln(w, MutedStyle.Render("No logs yet"))
		return
	}
	for _, entry := range logs {
		line := fmt.Sprintf("[%s] %s", entry.Timestamp.Format("15:04:05.000"), entry.Message)
		fmt.Fprintln(w, logLineStyle(entry.Message).Render(line))
	}
}

// formatDiff prints a page diff as unified-style lines with a summary.
func formatDiff(diff domain.PageDiff) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(diff.Path) + "\n")
	if !diff.Changed() {
		b.WriteString(MutedStyle.Render("no changes") + "\n")
		return b.String()
	}

	for _, line := range diff.Lines {
		prefix := " "
		switch line.Type {
		case domain.DiffAdd:
			prefix = "+"
		case domain.DiffDelete:
			prefix = "-"
		}
		b.WriteString(diffLineStyle(line.Type).Render(prefix+line.Content) + "\n")
	}

	added, deleted := diff.Stats()
	b.WriteString(CountStyle.Render(fmt.Sprintf("+%d -%d", added, deleted)) + "\n")
	return b.String()
}
