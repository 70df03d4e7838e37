// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/naka-gawa/gh-log/internal/domain"
)

// reviewsPerPR bounds the review events fetched with each pull request.
const reviewsPerPR = 10

// Fetcher is the data source the pipeline consumes: the authenticated user's
// pull requests for a month, and how many PRs by others they reviewed.
type Fetcher interface {
	FetchPullRequests(ctx context.Context, month domain.Month) ([]domain.PullRequest, error)
	FetchReviewedCount(ctx context.Context, month domain.Month) (int, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	logger        *log.Logger
}

// pullRequestNode lists the PR fields requested from the GraphQL API.
type pullRequestNode struct {
	Number     int
	Title      string
	Body       string
	Repository struct {
		NameWithOwner string
	}
	CreatedAt      githubv4.DateTime
	UpdatedAt      githubv4.DateTime
	MergedAt       *githubv4.DateTime
	Additions      int
	Deletions      int
	ChangedFiles   int
	IsDraft        bool
	ReviewDecision *githubv4.PullRequestReviewDecision
	Participants   struct {
		TotalCount int
	}
	Comments struct {
		TotalCount int
	}
	Reviews struct {
		Nodes []struct {
			Author struct {
				Login string
			}
			State       githubv4.PullRequestReviewState
			SubmittedAt *githubv4.DateTime
		}
	} `graphql:"reviews(first: $reviewCount)"`
}

// pullRequestSearchQuery pages through the authored PRs of a month.
type pullRequestSearchQuery struct {
	Search struct {
		PageInfo struct {
			HasNextPage bool
			EndCursor   githubv4.String
		}
		Nodes []struct {
			Typename    string          `graphql:"__typename"`
			PullRequest pullRequestNode `graphql:"... on PullRequest"`
		}
	} `graphql:"search(query: $query, type: ISSUE, first: 100, after: $cursor)"`
}

// issueCountQuery only needs the total, which GitHub reports on the first page.
type issueCountQuery struct {
	Search struct {
		IssueCount int
	} `graphql:"search(query: $query, type: ISSUE, first: 1)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(token string, logger *log.Logger) (*GitHubGateway, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		logger:        logger,
	}, nil
}

// createdRange renders the search qualifier covering every day of month.
func createdRange(month domain.Month) string {
	const layout = "2006-01-02"
	return fmt.Sprintf("created:%s..%s", month.Start().Format(layout), month.LastDay().Format(layout))
}

// FetchPullRequests returns every PR the authenticated user opened in month.
func (g *GitHubGateway) FetchPullRequests(ctx context.Context, month domain.Month) ([]domain.PullRequest, error) {
	g.logger.Printf("[1/2] Fetching pull requests created in %s...", month)
	query := fmt.Sprintf("is:pr author:@me %s", createdRange(month))

	variables := map[string]interface{}{
		"query":       githubv4.String(query),
		"cursor":      (*githubv4.String)(nil),
		"reviewCount": githubv4.Int(reviewsPerPR),
	}

	var prs []domain.PullRequest
	for {
		var q pullRequestSearchQuery
		if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
			return nil, fmt.Errorf("failed to execute GraphQL query for pull requests: %w", err)
		}
		for _, node := range q.Search.Nodes {
			if node.Typename != "PullRequest" {
				continue
			}
			prs = append(prs, toPullRequest(node.PullRequest))
		}
		if !q.Search.PageInfo.HasNextPage {
			break
		}
		variables["cursor"] = githubv4.NewString(q.Search.PageInfo.EndCursor)
		g.logger.Println("  Fetching next page of pull requests...")
	}
	g.logger.Printf("Completed fetching %d pull requests.", len(prs))
	return prs, nil
}

// FetchReviewedCount returns how many PRs by other authors, created in month,
// the authenticated user reviewed.
func (g *GitHubGateway) FetchReviewedCount(ctx context.Context, month domain.Month) (int, error) {
	g.logger.Printf("[2/2] Fetching reviewed PR count for %s...", month)
	query := fmt.Sprintf("is:pr reviewed-by:@me -author:@me %s", createdRange(month))

	var q issueCountQuery
	variables := map[string]interface{}{"query": githubv4.String(query)}
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return 0, fmt.Errorf("failed to execute GraphQL query for reviewed PRs: %w", err)
	}
	g.logger.Printf("Completed fetching reviewed PR count: %d", q.Search.IssueCount)
	return q.Search.IssueCount, nil
}

func toPullRequest(node pullRequestNode) domain.PullRequest {
	pr := domain.PullRequest{
		Repository:   node.Repository.NameWithOwner,
		Number:       node.Number,
		Title:        node.Title,
		Body:         node.Body,
		CreatedAt:    node.CreatedAt.Time.UTC(),
		UpdatedAt:    node.UpdatedAt.Time.UTC(),
		Additions:    node.Additions,
		Deletions:    node.Deletions,
		ChangedFiles: node.ChangedFiles,
		Participants: node.Participants.TotalCount,
		Comments:     node.Comments.TotalCount,
		IsDraft:      node.IsDraft,
		Reviews:      make([]domain.Review, 0, len(node.Reviews.Nodes)),
	}
	if node.MergedAt != nil {
		mergedAt := node.MergedAt.Time.UTC()
		pr.MergedAt = &mergedAt
	}
	if node.ReviewDecision != nil {
		pr.ReviewDecision = string(*node.ReviewDecision)
	}
	for _, review := range node.Reviews.Nodes {
		r := domain.Review{Author: review.Author.Login, State: string(review.State)}
		if review.SubmittedAt != nil {
			r.SubmittedAt = review.SubmittedAt.Time.UTC()
		}
		pr.Reviews = append(pr.Reviews, r)
	}
	return pr
}

// Viewer returns the login of the authenticated user via the REST API.
func (g *GitHubGateway) Viewer(ctx context.Context) (string, error) {
	user, _, err := g.restClient.Users.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("failed to get authenticated user with REST API: %w", err)
	}
	return user.GetLogin(), nil
}

// RateLimit returns the core REST quota of the authenticated user.
func (g *GitHubGateway) RateLimit(ctx context.Context) (remaining, limit int, reset time.Time, err error) {
	limits, _, err := g.restClient.RateLimit.Get(ctx)
	if err != nil {
		return 0, 0, time.Time{}, fmt.Errorf("failed to get rate limits with REST API: %w", err)
	}
	core := limits.GetCore()
	if core == nil {
		return 0, 0, time.Time{}, nil
	}
	return core.Remaining, core.Limit, core.Reset.Time, nil
}
