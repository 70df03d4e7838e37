package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/naka-gawa/gh-log/internal/domain"
	"github.com/naka-gawa/gh-log/internal/printer"
)

const (
	dateWidth    = 6
	leadWidth    = 8
	sizeWidth    = 2
	repoMinWidth = 12
	repoMaxWidth = 28
	maxReviewers = 10
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	valueStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	keyStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	headerBox    = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(lipgloss.Color("8"))

	sizeStyles = map[domain.SizeCategory]lipgloss.Style{
		domain.SizeS:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		domain.SizeM:  lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		domain.SizeL:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		domain.SizeXL: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
)

func renderHeader(s *domain.MonthSummary, st State, width int) string {
	total := fmt.Sprintf("%d", s.TotalPRs)
	if s.IgnoredPRs > 0 {
		total += fmt.Sprintf(" (+%d ignored)", s.IgnoredPRs)
	}
	lines := []string{
		titleStyle.Render("GitHub PRs for "+s.Month.String()) + "  " + dimStyle.Render("["+viewName(st)+"]"),
		field("PRs", total) + "  " +
			field("Avg", printer.FormatHours(s.AvgLeadTimeHours)) + "  " +
			field("Median", printer.FormatHours(s.LeadTime.Median)) + "  " +
			field("Freq", printer.FormatFrequency(s.Frequency)),
		field("Sizes", s.Sizes.String()) + "  " +
			field("Review", fmt.Sprintf("%s (%d reviewed)", printer.FormatBalance(s.ReviewBalance), s.ReviewedCount)),
	}
	return headerBox.Width(width).Render(strings.Join(lines, "\n"))
}

func renderControls(st State) string {
	// d toggles grouping once the detail view is open.
	detail := "By Week"
	if st.Mode == ModeDetail && st.GroupBy == ByWeek {
		detail = "By Repo"
	}
	keys := []string{
		keyStyle.Render("s") + " Summary",
		keyStyle.Render("d") + " " + detail,
		keyStyle.Render("t") + " Tail",
		keyStyle.Render("↑↓/jk") + " Scroll",
		keyStyle.Render("q") + " Quit",
	}
	return dimStyle.Render(strings.Join(keys, "  │  "))
}

func viewName(st State) string {
	switch st.Mode {
	case ModeDetail:
		if st.GroupBy == ByRepo {
			return "Details by Repository"
		}
		return "Details by Week"
	case ModeTail:
		return "Tail (fastest first)"
	default:
		return "Summary"
	}
}

func field(label, value string) string {
	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

func section(name string, width int) string {
	rule := max(width-lipgloss.Width(name)-5, 3)
	return sectionStyle.Render("━━━ " + name + " " + strings.Repeat("━", rule))
}

func summaryLines(s *domain.MonthSummary, width int) []string {
	lines := []string{section("Weeks", width)}
	for _, w := range s.Weeks {
		lines = append(lines, fmt.Sprintf("Week %d  %s  │ %3d PRs │ Avg %-8s │ %s",
			w.Number,
			dimStyle.Render(printer.FormatWeekRange(w.Start, w.End)),
			w.PRCount,
			printer.FormatHours(w.LeadTime.Mean),
			w.Sizes.String()))
	}
	if len(s.Weeks) == 0 {
		lines = append(lines, dimStyle.Render("No pull requests this month."))
	}

	lines = append(lines, "", section("Repositories", width))
	nameWidth := repoColumnWidth(s, width)
	for _, r := range s.Repos {
		lines = append(lines, fmt.Sprintf("%s │ %3d PRs │ Avg %-8s │ %s",
			pad(printer.Truncate(r.Name, nameWidth), nameWidth),
			r.PRCount,
			printer.FormatHours(r.LeadTime.Mean),
			r.Sizes.String()))
	}

	if len(s.Reviewers) > 0 {
		lines = append(lines, "", section("Top Reviewers", width))
		for i, r := range s.Reviewers {
			if i == maxReviewers {
				break
			}
			lines = append(lines, fmt.Sprintf("%2d. %-24s %3d PRs", i+1, printer.Truncate(r.Login, 24), r.PRCount))
		}
	}

	if len(s.Warnings) > 0 {
		lines = append(lines, "", section("Data Warnings", width))
		for _, w := range s.Warnings {
			lines = append(lines, warnStyle.Render(printer.Truncate(w.String(), width)))
		}
	}
	return lines
}

func detailByWeekLines(s *domain.MonthSummary, width int) []string {
	var lines []string
	nameWidth := repoColumnWidth(s, width)
	for i, w := range s.Weeks {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, section(fmt.Sprintf("Week %d (%s) · %d PRs · Avg %s",
			w.Number, printer.FormatWeekRange(w.Start, w.End), w.PRCount, printer.FormatHours(w.LeadTime.Mean)), width))
		for _, pr := range w.PRs {
			lines = append(lines, prRow(pr, nameWidth, width))
		}
	}
	return append(lines, undatedLines(s, nameWidth, width)...)
}

func detailByRepoLines(s *domain.MonthSummary, width int) []string {
	var lines []string
	nameWidth := repoColumnWidth(s, width)
	for i, r := range s.Repos {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, section(fmt.Sprintf("%s · %d PRs · Avg %s",
			r.Name, r.PRCount, printer.FormatHours(r.LeadTime.Mean)), width))
		for _, pr := range r.PRs {
			lines = append(lines, prRow(pr, nameWidth, width))
		}
	}
	return lines
}

func undatedLines(s *domain.MonthSummary, nameWidth, width int) []string {
	var undated []domain.PRDetail
	for _, pr := range s.PRs {
		if pr.CreatedAt.IsZero() {
			undated = append(undated, pr)
		}
	}
	if len(undated) == 0 {
		return nil
	}
	lines := []string{"", section("Undated", width)}
	for _, pr := range undated {
		lines = append(lines, prRow(pr, nameWidth, width))
	}
	return lines
}

// tailLines lists every visible PR by ascending lead time. PRs whose lead
// time could not be computed sort last.
func tailLines(s *domain.MonthSummary, width int) []string {
	prs := make([]domain.PRDetail, len(s.PRs))
	copy(prs, s.PRs)
	sort.SliceStable(prs, func(i, j int) bool {
		a, b := prs[i], prs[j]
		if (a.Warning == "") != (b.Warning == "") {
			return a.Warning == ""
		}
		if a.LeadTimeHours != b.LeadTimeHours {
			return a.LeadTimeHours < b.LeadTimeHours
		}
		return false
	})

	lines := []string{section(fmt.Sprintf("All PRs by lead time · %d", len(prs)), width)}
	nameWidth := repoColumnWidth(s, width)
	for _, pr := range prs {
		lines = append(lines, prRow(pr, nameWidth, width))
	}
	return lines
}

func prRow(pr domain.PRDetail, nameWidth, width int) string {
	date := "--"
	if !pr.CreatedAt.IsZero() {
		date = printer.FormatDate(pr.CreatedAt)
	}
	lead := printer.FormatHours(pr.LeadTimeHours)
	if pr.Warning != "" {
		lead = "n/a"
	}
	number := fmt.Sprintf("#%d ", pr.Number)

	marker := ""
	if pr.Ignored() {
		marker = " (ignored)"
	}
	fixed := dateWidth + nameWidth + leadWidth + sizeWidth + lipgloss.Width(number) + lipgloss.Width(marker) + 12
	title := printer.Truncate(pr.Title, max(width-fixed, 10))

	row := fmt.Sprintf("%s │ %s │ %s%s │ %s │ %s",
		pad(date, dateWidth),
		pad(printer.Truncate(pr.Repository, nameWidth), nameWidth),
		number,
		title,
		pad(lead, leadWidth),
		sizeStyles[pr.Size].Render(pad(pr.Size.String(), sizeWidth)))
	if pr.Ignored() {
		return dimStyle.Render(row + marker)
	}
	if pr.Warning != "" {
		return row + " " + warnStyle.Render("[!]")
	}
	return row
}

func repoColumnWidth(s *domain.MonthSummary, width int) int {
	w := repoMinWidth
	for _, r := range s.Repos {
		w = max(w, lipgloss.Width(r.Name))
	}
	return min(w, repoMaxWidth, max(width/4, repoMinWidth))
}

func pad(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
