package usecase

import (
	"fmt"
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/naka-gawa/gh-log/internal/config"
	"github.com/naka-gawa/gh-log/internal/domain"
)

type weekKey struct {
	year, week int
}

// Summarize aggregates the visible (counted and ignored) PRs of a month.
// Only counted PRs feed numeric aggregates; ignored PRs appear in the lists.
// The result depends only on the set of inputs, not their order.
func Summarize(month domain.Month, visible []domain.ClassifiedPR, reviewedCount int, size config.SizeConfig) *domain.MonthSummary {
	prs := make([]domain.ClassifiedPR, len(visible))
	copy(prs, visible)
	sort.SliceStable(prs, func(i, j int) bool { return lessPR(prs[i].PullRequest, prs[j].PullRequest) })

	summary := &domain.MonthSummary{
		Month:         month,
		ReviewedCount: reviewedCount,
		Weeks:         []domain.WeekBucket{},
		Repos:         []domain.RepoBucket{},
		Reviewers:     []domain.ReviewerCount{},
		PRs:           make([]domain.PRDetail, 0, len(prs)),
	}

	weeks := make(map[weekKey]*domain.WeekBucket)
	weekLeads := make(map[weekKey][]float64)
	repos := make(map[string]*domain.RepoBucket)
	repoLeads := make(map[string][]float64)
	countedWeeks := make(map[weekKey]struct{})
	reviewers := make(map[string]int)
	var leads []float64

	for _, pr := range prs {
		detail := toDetail(pr, size)
		summary.PRs = append(summary.PRs, detail)
		if detail.Warning != "" {
			summary.Warnings = append(summary.Warnings, domain.DataWarning{
				Repository: pr.Repository,
				Number:     pr.Number,
				Message:    detail.Warning,
			})
		}
		counted := pr.Class == domain.Counted
		validLead := detail.Warning == ""

		repo, ok := repos[pr.Repository]
		if !ok {
			repo = &domain.RepoBucket{Name: pr.Repository}
			repos[pr.Repository] = repo
		}
		repo.PRs = append(repo.PRs, detail)

		var week *domain.WeekBucket
		var key weekKey
		if !pr.CreatedAt.IsZero() {
			key = isoWeek(pr.CreatedAt)
			week, ok = weeks[key]
			if !ok {
				start := weekStart(pr.CreatedAt)
				week = &domain.WeekBucket{
					ISOYear: key.year,
					ISOWeek: key.week,
					Start:   start,
					End:     start.AddDate(0, 0, 7).Add(-time.Second),
				}
				weeks[key] = week
			}
			week.PRs = append(week.PRs, detail)
		}

		if !counted {
			summary.IgnoredPRs++
			continue
		}

		summary.TotalPRs++
		summary.Sizes.Add(detail.Size)
		repo.PRCount++
		repo.Sizes.Add(detail.Size)
		if validLead {
			leads = append(leads, detail.LeadTimeHours)
			repoLeads[pr.Repository] = append(repoLeads[pr.Repository], detail.LeadTimeHours)
		}
		if week != nil {
			countedWeeks[key] = struct{}{}
			week.PRCount++
			week.Sizes.Add(detail.Size)
			if validLead {
				weekLeads[key] = append(weekLeads[key], detail.LeadTimeHours)
			}
		}
		for login := range reviewerSet(pr.PullRequest) {
			reviewers[login]++
		}
	}

	summary.LeadTime = leadTimeStats(leads)
	summary.AvgLeadTimeHours = summary.LeadTime.Mean
	if n := len(countedWeeks); n > 0 {
		summary.Frequency = float64(summary.TotalPRs) / float64(n)
	}
	if summary.TotalPRs > 0 {
		summary.ReviewBalance = float64(reviewedCount) / float64(summary.TotalPRs)
	}

	for key, week := range weeks {
		week.LeadTime = leadTimeStats(weekLeads[key])
		summary.Weeks = append(summary.Weeks, *week)
	}
	sort.Slice(summary.Weeks, func(i, j int) bool { return summary.Weeks[i].Start.Before(summary.Weeks[j].Start) })
	for i := range summary.Weeks {
		summary.Weeks[i].Number = i + 1
	}

	for name, repo := range repos {
		repo.LeadTime = leadTimeStats(repoLeads[name])
		summary.Repos = append(summary.Repos, *repo)
	}
	sort.Slice(summary.Repos, func(i, j int) bool {
		if summary.Repos[i].PRCount != summary.Repos[j].PRCount {
			return summary.Repos[i].PRCount > summary.Repos[j].PRCount
		}
		return summary.Repos[i].Name < summary.Repos[j].Name
	})

	for login, count := range reviewers {
		summary.Reviewers = append(summary.Reviewers, domain.ReviewerCount{Login: login, PRCount: count})
	}
	sort.Slice(summary.Reviewers, func(i, j int) bool {
		if summary.Reviewers[i].PRCount != summary.Reviewers[j].PRCount {
			return summary.Reviewers[i].PRCount > summary.Reviewers[j].PRCount
		}
		return summary.Reviewers[i].Login < summary.Reviewers[j].Login
	})

	return summary
}

func toDetail(pr domain.ClassifiedPR, size config.SizeConfig) domain.PRDetail {
	detail := domain.PRDetail{
		CreatedAt:    pr.CreatedAt,
		Repository:   pr.Repository,
		Number:       pr.Number,
		Title:        pr.Title,
		Body:         pr.Body,
		Size:         size.Category(pr.ChangedLines()),
		Additions:    pr.Additions,
		Deletions:    pr.Deletions,
		ChangedFiles: pr.ChangedFiles,
		Class:        pr.Class,
	}
	switch {
	case pr.CreatedAt.IsZero():
		detail.Warning = "missing creation timestamp"
	case pr.CompletedAt().IsZero():
		detail.Warning = "missing merge/update timestamp"
	default:
		detail.LeadTimeHours = pr.LeadTime().Hours()
		if detail.LeadTimeHours < 0 {
			detail.Warning = fmt.Sprintf("negative lead time (%.1fh): merged/updated before it was created", detail.LeadTimeHours)
		}
	}
	return detail
}

// leadTimeStats computes the lead time statistics in hours. Inputs arrive in
// a canonical order so repeated runs produce identical floats.
func leadTimeStats(hours []float64) domain.LeadTimeStats {
	if len(hours) == 0 {
		return domain.LeadTimeStats{}
	}
	data := stats.Float64Data(hours)
	mean, _ := data.Mean()
	median, _ := data.Median()
	minimum, _ := data.Min()
	maximum, _ := data.Max()
	p90, err := data.Percentile(90)
	if err != nil {
		// Too few samples for a nearest-rank percentile.
		p90 = maximum
	}
	return domain.LeadTimeStats{
		Count:  len(hours),
		Mean:   mean,
		Median: median,
		P90:    p90,
		Min:    minimum,
		Max:    maximum,
	}
}

func reviewerSet(pr domain.PullRequest) map[string]struct{} {
	set := make(map[string]struct{}, len(pr.Reviews))
	for _, review := range pr.Reviews {
		if review.Author != "" {
			set[review.Author] = struct{}{}
		}
	}
	return set
}

func lessPR(a, b domain.PullRequest) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	if a.Repository != b.Repository {
		return a.Repository < b.Repository
	}
	return a.Number < b.Number
}

func isoWeek(t time.Time) weekKey {
	year, week := t.UTC().ISOWeek()
	return weekKey{year: year, week: week}
}

// weekStart returns midnight UTC on the Monday of t's ISO week.
func weekStart(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -offset)
}
