package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"journeylens/api/journey"
)

// badgeColors is one category's badge in both themes.
type badgeColors struct {
	LightBg, LightFg lipgloss.Color
	DarkBg, DarkFg   lipgloss.Color
}

var categoryBadges = map[journey.Category]badgeColors{
	journey.CategoryGoogle:         {"#dbeafe", "#1d4ed8", "#1e3a8a", "#93c5fd"},
	journey.CategoryFacebook:       {"#e0e7ff", "#4338ca", "#312e81", "#a5b4fc"},
	journey.CategoryInstagram:      {"#fce7f3", "#be185d", "#831843", "#f9a8d4"},
	journey.CategoryOrganic:        {"#dcfce7", "#15803d", "#14532d", "#86efac"},
	journey.CategoryVirginia:       {"#ffedd5", "#c2410c", "#7c2d12", "#fdba74"},
	journey.CategorySiteButton:     {"#f3e8ff", "#7e22ce", "#581c87", "#d8b4fe"},
	journey.CategorySiteButtonBio:  {"#f3e8ff", "#7e22ce", "#581c87", "#d8b4fe"},
	journey.CategoryMailbiz:        {"#fee2e2", "#b91c1c", "#7f1d1d", "#fca5a5"},
	journey.CategoryDiaMaes:        {"#cffafe", "#0e7490", "#164e63", "#67e8f9"},
	journey.CategoryColecaoInverno: {"#ccfbf1", "#0f766e", "#134e4a", "#5eead4"},
	journey.CategorySaleAtacado:    {"#fef3c7", "#b45309", "#78350f", "#fcd34d"},
	journey.CategoryFreteDay:       {"#ecfccb", "#4d7c0f", "#365314", "#bef264"},
	journey.CategoryEurolinkBio:    {"#d1fae5", "#047857", "#064e3b", "#6ee7b7"},
	journey.CategoryAnaPaula:       {"#fae8ff", "#a21caf", "#701a75", "#f0abfc"},
	journey.CategoryFacebookAds:    {"#ede9fe", "#6d28d9", "#4c1d95", "#c4b5fd"},
	journey.CategoryDefault:        {"#f3f4f6", "#374151", "#374151", "#d1d5db"},
}

// Styles is the terminal palette for one theme.
type Styles struct {
	Dark   bool
	Header lipgloss.Style
	Cell   lipgloss.Style
	Muted  lipgloss.Style
	Accent lipgloss.Style
	Field  lipgloss.Style
}

func NewStyles(dark bool) Styles {
	fg, muted, accent := lipgloss.Color("#111827"), lipgloss.Color("#6b7280"), lipgloss.Color("#2563eb")
	field := lipgloss.Color("#3b82f6")
	if dark {
		fg, muted, accent = lipgloss.Color("#f3f4f6"), lipgloss.Color("#9ca3af"), lipgloss.Color("#60a5fa")
		field = lipgloss.Color("#60a5fa")
	}
	return Styles{
		Dark:   dark,
		Header: lipgloss.NewStyle().Bold(true).Foreground(accent),
		Cell:   lipgloss.NewStyle().Foreground(fg).PaddingRight(2),
		Muted:  lipgloss.NewStyle().Foreground(muted),
		Accent: lipgloss.NewStyle().Foreground(accent).Bold(true),
		Field:  lipgloss.NewStyle().Foreground(field),
	}
}

func (s Styles) Badge(category journey.Category) lipgloss.Style {
	c, ok := categoryBadges[category]
	if !ok {
		c = categoryBadges[journey.CategoryDefault]
	}
	bg, fg := c.LightBg, c.LightFg
	if s.Dark {
		bg, fg = c.DarkBg, c.DarkFg
	}
	return lipgloss.NewStyle().Background(bg).Foreground(fg).Padding(0, 1)
}

func formatMoney(v float64) string {
	return fmt.Sprintf("R$ %.2f", v)
}

func formatDuration(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).Round(time.Second).String()
}

func (s Styles) path(tps []journey.Touchpoint, truncated bool, total int) string {
	parts := make([]string, 0, len(tps)+1)
	for _, tp := range tps {
		parts = append(parts, s.Badge(tp.Category).Render(tp.Channel))
	}
	if truncated {
		parts = append(parts, s.Muted.Render(fmt.Sprintf("+%d", total-len(tps))))
	}
	return strings.Join(parts, s.Muted.Render(" → "))
}

// RenderSummary prints the headline totals.
func (s Styles) RenderSummary(sum journey.Summary) string {
	cells := []string{
		s.Header.Render("Revenue ") + s.Cell.Render(formatMoney(sum.TotalValue)),
		s.Header.Render("Sales ") + s.Cell.Render(fmt.Sprint(sum.TotalSales)),
		s.Header.Render("Journeys ") + s.Cell.Render(fmt.Sprint(sum.TotalJourneys)),
		s.Header.Render("Avg duration ") + s.Cell.Render(formatDuration(int64(sum.AvgDuration))),
		s.Header.Render("Avg ticket ") + s.Cell.Render(formatMoney(sum.AvgTicket)),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

// RenderWindow prints one page of journeys as a table.
func (s Styles) RenderWindow(w journey.Window) string {
	var b strings.Builder
	if w.MatchCount == 0 {
		b.WriteString(s.Muted.Render("No journeys found"))
		b.WriteByte('\n')
		return b.String()
	}

	header := fmt.Sprintf("%-4s %-20s %-17s %14s %6s %14s %6s %9s  %s",
		"#", "Session", "Created", "Value", "Sales", "Avg ticket", "Steps", "Duration", "Path")
	b.WriteString(s.Header.Render(header))
	b.WriteByte('\n')

	for _, item := range w.Items {
		row := fmt.Sprintf("%-4d %-20s %-17s %14s %6d %14s %6d %9s",
			item.Index+1,
			item.SessionID,
			item.CreatedAt.Format("2006-01-02 15:04"),
			formatMoney(item.TotalValue),
			item.Sales,
			formatMoney(item.AvgTicket),
			item.TouchpointCount,
			formatDuration(item.AvgDuration),
		)
		b.WriteString(s.Cell.Render(row))
		b.WriteString(s.path(item.Preview, item.Truncated, item.TouchpointCount))
		b.WriteByte('\n')
	}

	footer := fmt.Sprintf("Page %d of %d · %d journeys · sorted %s", w.Page, w.TotalPages, w.MatchCount, w.Sort)
	if w.SearchTerm != "" {
		footer += fmt.Sprintf(" · search %q", w.SearchTerm)
	}
	b.WriteString(s.Muted.Render(footer))
	b.WriteByte('\n')
	return b.String()
}

// RenderDisclosure prints the revealed part of one journey's path.
func (s Styles) RenderDisclosure(v journey.DisclosureView) string {
	var b strings.Builder
	b.WriteString(s.Accent.Render(fmt.Sprintf("Journey %s · %d of %d touchpoints", v.SessionID, v.VisibleCount, v.TouchpointCount)))
	b.WriteByte('\n')
	if v.Heavy {
		b.WriteString(s.Muted.Render("Large journey: touchpoints are shown in chunks."))
		b.WriteByte('\n')
	}
	for i, tp := range v.Touchpoints {
		fmt.Fprintf(&b, "%5d  %s  %s\n", i+1, tp.Timestamp.Format("2006-01-02 15:04:05"), s.Badge(tp.Category).Render(tp.Channel))
	}
	if v.CanRevealMore {
		b.WriteString(s.Muted.Render(fmt.Sprintf("Load %d more (--visible %d)", v.NextChunk, v.VisibleCount+v.NextChunk)))
		b.WriteByte('\n')
	}
	return b.String()
}
