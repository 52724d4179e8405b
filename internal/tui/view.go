package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/androiddevnotesforks/Rays-Android/internal/store"
)

// ─── Logo ────────────────────────────────────────────────────────────────────

func renderLogo(version string) string {
	logoText := []string{
		`    ____                      `,
		`   / __ \  ____ _  __  __  ___`,
		`  / /_/ / / __ '/ / / / / (_-<`,
		` / _, _/ / /_/ / / /_/ / /___/`,
		`/_/ |_|  \__,_/  \__, /       `,
		`                /____/        `,
	}

	frameStyle := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(colorOverlay).
		Padding(0, 1).
		MarginBottom(1)

	textStyle := lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	taglineStyle := lipgloss.NewStyle().Foreground(colorSubtext).Italic(true)

	var b strings.Builder
	for _, line := range logoText {
		b.WriteString(" " + textStyle.Render(line) + "\n")
	}
	b.WriteString("\n")

	tagline := " > rays, a sticker shelf you can search"
	if version != "" {
		tagline += "  " + version
	}
	b.WriteString(taglineStyle.Render(tagline))

	return frameStyle.Render(b.String()) + "\n"
}

// ─── View (main router) ─────────────────────────────────────────────────────

func (m Model) View() string {
	var content string

	switch m.Screen {
	case ScreenDashboard:
		content = m.viewDashboard()
	case ScreenSearch:
		content = m.viewSearch()
	case ScreenSearchResults:
		header := fmt.Sprintf("  Search: %q, %s", m.SearchQuery, plural(len(m.SearchResults), "result"))
		content = m.viewStickerList(header, "No stickers found. Try a different query.")
	case ScreenRecent:
		content = m.viewStickerList("  Recently Added", "No stickers yet. Import some with `rays import`.")
	case ScreenMostShared:
		content = m.viewStickerList("  Most Shared", "Nothing shared yet.")
	case ScreenStickerDetail:
		content = m.viewStickerDetail()
	default:
		content = "Unknown screen"
	}

	if m.StatusMsg != "" {
		content += "\n" + statusStyle.Render(m.StatusMsg)
	}
	if m.ErrorMsg != "" {
		content += "\n" + errorStyle.Render("Error: "+m.ErrorMsg)
	}

	return appStyle.Render(content)
}

// ─── Dashboard ───────────────────────────────────────────────────────────────

func (m Model) viewDashboard() string {
	var b strings.Builder

	b.WriteString(renderLogo(m.Version))
	b.WriteString("\n")

	if m.Stats != nil {
		statsContent := fmt.Sprintf(
			"%s %s\n%s %s\n%s %s\n%s %s",
			statNumberStyle.Render(fmt.Sprintf("%d", m.Stats.TotalStickers)),
			statLabelStyle.Render("stickers"),
			statNumberStyle.Render(fmt.Sprintf("%d", m.Stats.DistinctTags)),
			statLabelStyle.Render("tags"),
			statNumberStyle.Render(fmt.Sprintf("%d", m.Stats.TotalShares)),
			statLabelStyle.Render("shares"),
			statNumberStyle.Render(fmt.Sprintf("%d", m.Stats.TotalClicks)),
			statLabelStyle.Render("clicks"),
		)
		b.WriteString(statCardStyle.Render(statsContent))
		b.WriteString("\n")

		if len(m.PopularTags) > 0 {
			b.WriteString(titleStyle.Render("  Popular tags"))
			b.WriteString("\n")
			for _, t := range m.PopularTags {
				b.WriteString(listItemStyle.Render(fmt.Sprintf("• %s %s",
					tagStyle.Render(t.Tag),
					timestampStyle.Render(fmt.Sprintf("%.2f", t.Score)))))
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}
	} else {
		b.WriteString(statCardStyle.Render("Loading stats..."))
		b.WriteString("\n")
	}

	b.WriteString(titleStyle.Render("  Actions"))
	b.WriteString("\n")

	for i, item := range dashboardMenuItems {
		if i == m.Cursor {
			b.WriteString(menuSelectedStyle.Render("▸ " + item))
		} else {
			b.WriteString(menuItemStyle.Render("  " + item))
		}
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("\n  j/k navigate • enter select • s search • r refresh • q quit"))

	return b.String()
}

// ─── Search ──────────────────────────────────────────────────────────────────

func (m Model) viewSearch() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("  Search Stickers"))
	b.WriteString("\n\n")

	b.WriteString(searchInputStyle.Render(m.SearchInput.View()))
	b.WriteString("\n")

	mode := "keywords"
	if p := m.lib.Prefs(); p.UseRegexSearch {
		mode = "regex"
	} else if p.IntersectSearchBySpace {
		mode = "all words must match"
	}
	b.WriteString(timestampStyle.Render("  mode: " + mode))
	b.WriteString("\n\n")

	b.WriteString(helpStyle.Render("  Type a query and press enter (empty lists all) • esc go back"))

	return b.String()
}

// ─── Sticker Lists ───────────────────────────────────────────────────────────

func (m Model) viewStickerList(header, empty string) string {
	var b strings.Builder
	list := m.currentList()

	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	if len(list) == 0 {
		b.WriteString(noResultsStyle.Render(empty))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("  / search • esc back"))
		return b.String()
	}

	visible := m.listVisibleItems()
	end := m.Scroll + visible
	if end > len(list) {
		end = len(list)
	}

	for i := m.Scroll; i < end; i++ {
		b.WriteString(m.renderStickerListItem(i, list[i]))
	}

	if len(list) > visible {
		b.WriteString(fmt.Sprintf("\n  %s",
			timestampStyle.Render(fmt.Sprintf("showing %d-%d of %d", m.Scroll+1, end, len(list)))))
	}

	b.WriteString(helpStyle.Render("\n  j/k navigate • enter detail • / search • esc back"))

	return b.String()
}

// ─── Sticker Detail ──────────────────────────────────────────────────────────

func (m Model) viewStickerDetail() string {
	var b strings.Builder

	if m.Selected == nil {
		b.WriteString(headerStyle.Render("  Sticker"))
		b.WriteString("\n")
		b.WriteString(noResultsStyle.Render("Loading..."))
		return b.String()
	}

	sw := *m.Selected
	s := sw.Sticker
	blurred := m.lib.ShouldBlur(sw)

	title := s.Title
	if blurred {
		title = "(hidden)"
	} else if title == "" {
		title = "(untitled)"
	}
	b.WriteString(headerStyle.Render("  " + title))
	b.WriteString("\n")

	row := func(label, value string) {
		b.WriteString(fmt.Sprintf("%s %s\n", detailLabelStyle.Render(label), value))
	}

	row("UUID:", idStyle.Render(s.UUID))
	if blurred {
		row("Tags:", blurredStyle.Render("hidden by privacy settings"))
	} else {
		row("Tags:", renderTags(sw.TagNames()))
	}
	row("Shared:", counterStyle.Render(fmt.Sprintf("%d times", s.ShareCount)))
	row("Opened:", counterStyle.Render(fmt.Sprintf("%d times", s.ClickCount)))
	row("Created:", timestampStyle.Render(formatMillis(s.CreateTime)))
	row("Modified:", timestampStyle.Render(formatMillis(s.ModifyTime)))
	row("Last shared:", timestampStyle.Render(formatMillis(s.LastShareTime)))
	row("File:", detailValueStyle.Render(m.lib.StickerDir()+"/"+s.UUID))

	b.WriteString(sectionHeadingStyle.Render("  Actions"))
	b.WriteString("\n")

	switch {
	case m.Busy:
		b.WriteString("  " + m.Spinner.View() + " working...\n")
	case m.ConfirmDelete:
		b.WriteString(errorStyle.Render("Delete this sticker and its file? y to confirm, any key to cancel"))
		b.WriteString("\n")
	default:
		b.WriteString(helpStyle.Render("  e export • s share to device • d delete • esc back"))
	}

	return b.String()
}

// ─── Shared Renderers ────────────────────────────────────────────────────────

func (m Model) renderStickerListItem(index int, sw store.StickerWithTags) string {
	cursor := "  "
	style := listItemStyle
	if index == m.Cursor {
		cursor = "▸ "
		style = listSelectedStyle
	}

	title := sw.Sticker.Title
	if title == "" {
		title = "(untitled)"
	}
	blurred := m.lib.ShouldBlur(sw)
	if blurred {
		title = blurredStyle.Render("(hidden)")
	} else {
		title = style.Render(truncateStr(title, 40))
	}

	line := fmt.Sprintf("%s%s %s  %s\n",
		cursor,
		idStyle.Render(shortID(sw.Sticker.UUID)),
		title,
		counterStyle.Render(fmt.Sprintf("↗%d", sw.Sticker.ShareCount)))

	if !blurred && len(sw.Tags) > 0 {
		line += contentPreviewStyle.Render(truncateStr(strings.Join(sw.TagNames(), ", "), 80)) + "\n"
	}

	return line
}

func renderTags(tags []string) string {
	if len(tags) == 0 {
		return timestampStyle.Render("none")
	}
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = tagStyle.Render("#" + t)
	}
	return strings.Join(parts, " ")
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func truncateStr(s string, max int) string {
	// Remove newlines for single-line display
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

func shortID(uuid string) string {
	if len(uuid) > 8 {
		return uuid[:8]
	}
	return uuid
}

func formatMillis(ms int64) string {
	if ms <= 0 {
		return "never"
	}
	return time.UnixMilli(ms).Format("2006-01-02 15:04")
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
