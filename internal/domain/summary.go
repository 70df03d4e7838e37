package domain

import (
	"fmt"
	"time"
)

// LeadTimeStats summarizes lead times in hours.
type LeadTimeStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean_hours"`
	Median float64 `json:"median_hours"`
	P90    float64 `json:"p90_hours"`
	Min    float64 `json:"min_hours"`
	Max    float64 `json:"max_hours"`
}

// SizeDistribution is a histogram over S/M/L/XL.
type SizeDistribution struct {
	S  int `json:"S"`
	M  int `json:"M"`
	L  int `json:"L"`
	XL int `json:"XL"`
}

// Add increments the bucket for c.
func (d *SizeDistribution) Add(c SizeCategory) {
	switch c {
	case SizeS:
		d.S++
	case SizeM:
		d.M++
	case SizeL:
		d.L++
	case SizeXL:
		d.XL++
	}
}

func (d SizeDistribution) String() string {
	return fmt.Sprintf("S:%d M:%d L:%d XL:%d", d.S, d.M, d.L, d.XL)
}

// PRDetail is one visible (counted or ignored) PR as presented by every view.
type PRDetail struct {
	CreatedAt     time.Time      `json:"created_at"`
	Repository    string         `json:"repo"`
	Number        int            `json:"number"`
	Title         string         `json:"title"`
	Body          string         `json:"body,omitempty"`
	LeadTimeHours float64        `json:"lead_time_hours"`
	Size          SizeCategory   `json:"size"`
	Additions     int            `json:"additions"`
	Deletions     int            `json:"deletions"`
	ChangedFiles  int            `json:"changed_files"`
	Class         Classification `json:"classification"`
	Warning       string         `json:"warning,omitempty"`
}

// Ignored reports whether the PR is shown without being counted.
func (d PRDetail) Ignored() bool { return d.Class == Ignored }

// WeekBucket groups PRs by the ISO week (Monday to Sunday) they were created in.
type WeekBucket struct {
	Number   int              `json:"week"`
	ISOYear  int              `json:"iso_year"`
	ISOWeek  int              `json:"iso_week"`
	Start    time.Time        `json:"start"`
	End      time.Time        `json:"end"`
	PRCount  int              `json:"pr_count"`
	Sizes    SizeDistribution `json:"sizes"`
	LeadTime LeadTimeStats    `json:"lead_time"`
	PRs      []PRDetail       `json:"-"`
}

// RepoBucket groups PRs by repository full name.
type RepoBucket struct {
	Name     string           `json:"name"`
	PRCount  int              `json:"pr_count"`
	Sizes    SizeDistribution `json:"sizes"`
	LeadTime LeadTimeStats    `json:"lead_time"`
	PRs      []PRDetail       `json:"-"`
}

// ReviewerCount is how many counted PRs a reviewer reviewed.
type ReviewerCount struct {
	Login   string `json:"login"`
	PRCount int    `json:"pr_count"`
}

// DataWarning flags a record whose data could not be used for every metric.
type DataWarning struct {
	Repository string `json:"repo"`
	Number     int    `json:"number"`
	Message    string `json:"message"`
}

func (w DataWarning) String() string {
	return fmt.Sprintf("%s#%d: %s", w.Repository, w.Number, w.Message)
}

// MonthSummary is the aggregate for one month. It is rebuilt on every run.
type MonthSummary struct {
	Month            Month            `json:"month"`
	TotalPRs         int              `json:"total_prs"`
	IgnoredPRs       int              `json:"ignored_prs"`
	AvgLeadTimeHours float64          `json:"avg_lead_time_hours"`
	LeadTime         LeadTimeStats    `json:"lead_time"`
	Frequency        float64          `json:"frequency_per_week"`
	Sizes            SizeDistribution `json:"size_distribution"`
	ReviewedCount    int              `json:"reviewed_count"`
	ReviewBalance    float64          `json:"review_balance"`
	Weeks            []WeekBucket     `json:"weeks"`
	Repos            []RepoBucket     `json:"repos"`
	Reviewers        []ReviewerCount  `json:"top_reviewers"`
	PRs              []PRDetail       `json:"prs"`
	Warnings         []DataWarning    `json:"warnings,omitempty"`
}
