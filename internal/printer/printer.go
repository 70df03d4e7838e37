package printer

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/naka-gawa/gh-log/internal/domain"
)

// Format selects the batch output format.
type Format int

const (
	FormatText Format = iota
	FormatJSON
	FormatCSV
)

// CSVHeader is the fixed column order of the CSV export.
var CSVHeader = []string{"created_at", "repo", "number", "title", "lead_time_hours", "size", "additions", "deletions", "changed_files"}

// Print writes s to w in the requested format.
func Print(w io.Writer, s *domain.MonthSummary, format Format) error {
	switch format {
	case FormatJSON:
		return JSON(w, s)
	case FormatCSV:
		return CSV(w, s)
	default:
		return Text(w, s)
	}
}

// JSON writes the summary as indented JSON.
func JSON(w io.Writer, s *domain.MonthSummary) error {
	jsonData, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results to JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}

// CSV writes one row per visible PR in creation order.
func CSV(w io.Writer, s *domain.MonthSummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, pr := range s.PRs {
		record := []string{
			pr.CreatedAt.UTC().Format(time.RFC3339),
			pr.Repository,
			strconv.Itoa(pr.Number),
			pr.Title,
			strconv.FormatFloat(pr.LeadTimeHours, 'f', 2, 64),
			pr.Size.String(),
			strconv.Itoa(pr.Additions),
			strconv.Itoa(pr.Deletions),
			strconv.Itoa(pr.ChangedFiles),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row for %s#%d: %w", pr.Repository, pr.Number, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

const bodyPreviewWidth = 100

// Text writes a human-readable report.
func Text(w io.Writer, s *domain.MonthSummary) error {
	p := &textWriter{w: w}

	p.printf("GitHub PRs for %s\n", s.Month)
	p.printf("Total PRs: %d", s.TotalPRs)
	if s.IgnoredPRs > 0 {
		p.printf(" (+%d ignored)", s.IgnoredPRs)
	}
	p.printf(" | Avg Lead Time: %s | Median: %s | Frequency: %s\n",
		FormatHours(s.AvgLeadTimeHours), FormatHours(s.LeadTime.Median), FormatFrequency(s.Frequency))
	p.printf("Sizes: %s | Review Balance: %s (%d reviewed)\n", s.Sizes, FormatBalance(s.ReviewBalance), s.ReviewedCount)

	for _, week := range s.Weeks {
		p.printf("\nWeek %d (%s) | %d PRs | Avg: %s\n",
			week.Number, FormatWeekRange(week.Start, week.End), week.PRCount, FormatHours(week.LeadTime.Mean))
		for _, pr := range week.PRs {
			p.prLine(pr)
		}
	}
	// PRs without a creation timestamp have no week; list them separately.
	var undated []domain.PRDetail
	for _, pr := range s.PRs {
		if pr.CreatedAt.IsZero() {
			undated = append(undated, pr)
		}
	}
	if len(undated) > 0 {
		p.printf("\nUndated\n")
		for _, pr := range undated {
			p.prLine(pr)
		}
	}

	if len(s.Repos) > 0 {
		p.printf("\nRepositories\n")
		for _, repo := range s.Repos {
			p.printf("  %s | %d PRs | Avg: %s | %s\n", repo.Name, repo.PRCount, FormatHours(repo.LeadTime.Mean), repo.Sizes)
		}
	}

	if len(s.Reviewers) > 0 {
		p.printf("\nTop Reviewers\n")
		for i, reviewer := range s.Reviewers {
			if i == 10 {
				break
			}
			p.printf("  %s | %d PRs\n", reviewer.Login, reviewer.PRCount)
		}
	}

	if len(s.Warnings) > 0 {
		p.printf("\nData Warnings\n")
		for _, warning := range s.Warnings {
			p.printf("  %s\n", warning)
		}
	}
	return p.err
}

// textWriter remembers the first write error so Text can stay linear.
type textWriter struct {
	w   io.Writer
	err error
}

func (p *textWriter) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *textWriter) prLine(pr domain.PRDetail) {
	marker := ""
	if pr.Ignored() {
		marker = " (ignored)"
	}
	if pr.Warning != "" {
		marker += " [!]"
	}
	p.printf("  %s | %s #%d %s%s | %s | %s\n",
		FormatDate(pr.CreatedAt), pr.Repository, pr.Number, pr.Title, marker, FormatHours(pr.LeadTimeHours), pr.Size)
	if body := FirstLine(pr.Body, bodyPreviewWidth); body != "" {
		p.printf("      %s\n", body)
	}
}
