package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/gh-log/internal/domain"
)

// setupTestGateway creates a GitHubGateway that communicates with a mock HTTP server.
func setupTestGateway(t *testing.T, handler http.Handler) (*GitHubGateway, *httptest.Server) {
	server := httptest.NewServer(handler)

	restClient := github.NewClient(server.Client())
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	restClient.BaseURL = baseURL

	graphqlClient := githubv4.NewEnterpriseClient(server.URL, server.Client())
	logger := log.New(io.Discard, "", 0)

	gateway := &GitHubGateway{
		restClient:    restClient,
		graphqlClient: graphqlClient,
		logger:        logger,
	}

	return gateway, server
}

// graphqlRequest is the body githubv4 posts.
type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

func decodeGraphQL(t *testing.T, r *http.Request) graphqlRequest {
	t.Helper()
	body, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	var req graphqlRequest
	require.NoError(t, json.Unmarshal(body, &req))
	return req
}

var january = domain.Month{Year: 2025, Month: time.January}

func TestGitHubGateway_FetchPullRequests(t *testing.T) {
	page1 := `{"data":{"search":{"pageInfo":{"hasNextPage":true,"endCursor":"CUR1"},"nodes":[
		{"__typename":"PullRequest","number":12,"title":"feat: add login","body":"Adds login.",
		 "repository":{"nameWithOwner":"me/app"},
		 "createdAt":"2025-01-06T09:00:00Z","updatedAt":"2025-01-07T10:00:00Z","mergedAt":"2025-01-06T21:00:00Z",
		 "additions":40,"deletions":10,"changedFiles":3,"isDraft":false,"reviewDecision":"APPROVED",
		 "participants":{"totalCount":3},"comments":{"totalCount":2},
		 "reviews":{"nodes":[{"author":{"login":"alice"},"state":"APPROVED","submittedAt":"2025-01-06T20:00:00Z"}]}},
		{"__typename":"Issue"}
	]}}}`
	page2 := `{"data":{"search":{"pageInfo":{"hasNextPage":false,"endCursor":"CUR2"},"nodes":[
		{"__typename":"PullRequest","number":13,"title":"wip","body":"",
		 "repository":{"nameWithOwner":"me/lib"},
		 "createdAt":"2025-01-20T09:00:00Z","updatedAt":"2025-01-21T09:00:00Z","mergedAt":null,
		 "additions":1,"deletions":0,"changedFiles":1,"isDraft":true,"reviewDecision":null,
		 "participants":{"totalCount":1},"comments":{"totalCount":0},
		 "reviews":{"nodes":[]}}
	]}}}`

	calls := 0
	handler := func(w http.ResponseWriter, r *http.Request) {
		req := decodeGraphQL(t, r)
		assert.Equal(t, "is:pr author:@me created:2025-01-01..2025-01-31", req.Variables["query"])
		calls++
		w.WriteHeader(http.StatusOK)
		if calls == 1 {
			assert.Nil(t, req.Variables["cursor"])
			fmt.Fprint(w, page1)
			return
		}
		assert.Equal(t, "CUR1", req.Variables["cursor"])
		fmt.Fprint(w, page2)
	}
	gateway, server := setupTestGateway(t, http.HandlerFunc(handler))
	defer server.Close()

	prs, err := gateway.FetchPullRequests(context.Background(), january)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.Len(t, prs, 2)

	first := prs[0]
	assert.Equal(t, "me/app", first.Repository)
	assert.Equal(t, 12, first.Number)
	assert.Equal(t, "Adds login.", first.Body)
	assert.Equal(t, 40, first.Additions)
	assert.Equal(t, 10, first.Deletions)
	assert.Equal(t, 3, first.ChangedFiles)
	assert.Equal(t, 3, first.Participants)
	assert.Equal(t, 2, first.Comments)
	assert.Equal(t, "APPROVED", first.ReviewDecision)
	require.NotNil(t, first.MergedAt)
	assert.Equal(t, 12*time.Hour, first.LeadTime())
	require.Len(t, first.Reviews, 1)
	assert.Equal(t, domain.Review{Author: "alice", State: "APPROVED", SubmittedAt: time.Date(2025, 1, 6, 20, 0, 0, 0, time.UTC)}, first.Reviews[0])

	second := prs[1]
	assert.Nil(t, second.MergedAt)
	assert.True(t, second.IsDraft)
	assert.Empty(t, second.ReviewDecision)
	assert.Equal(t, 24*time.Hour, second.LeadTime())
}

// TestGitHubGateway_GraphQLErrors covers the error paths of both GraphQL fetches.
func TestGitHubGateway_GraphQLErrors(t *testing.T) {
	testCases := []struct {
		name           string
		methodToTest   func(gateway *GitHubGateway) error
		expectedErrMsg string
	}{
		{
			name: "FetchPullRequests - error case",
			methodToTest: func(gateway *GitHubGateway) error {
				_, err := gateway.FetchPullRequests(context.Background(), january)
				return err
			},
			expectedErrMsg: "failed to execute GraphQL query for pull requests",
		},
		{
			name: "FetchReviewedCount - error case",
			methodToTest: func(gateway *GitHubGateway) error {
				_, err := gateway.FetchReviewedCount(context.Background(), january)
				return err
			},
			expectedErrMsg: "failed to execute GraphQL query for reviewed PRs",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				fmt.Fprint(w, `{"errors":[{"message":"Something went wrong"}]}`)
			}
			gateway, server := setupTestGateway(t, http.HandlerFunc(handler))
			defer server.Close()

			err := tc.methodToTest(gateway)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tc.expectedErrMsg)
		})
	}
}

func TestGitHubGateway_FetchReviewedCount(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		req := decodeGraphQL(t, r)
		assert.Equal(t, "is:pr reviewed-by:@me -author:@me created:2025-01-01..2025-01-31", req.Variables["query"])
		assert.Contains(t, req.Query, "issueCount")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"data":{"search":{"issueCount":17}}}`)
	}
	gateway, server := setupTestGateway(t, http.HandlerFunc(handler))
	defer server.Close()

	count, err := gateway.FetchReviewedCount(context.Background(), january)
	require.NoError(t, err)
	assert.Equal(t, 17, count)
}

func TestGitHubGateway_RESTProbes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"login":"octocat"}`)
	})
	mux.HandleFunc("/rate_limit", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"resources":{"core":{"limit":5000,"remaining":4990,"reset":1735689600}}}`)
	})
	gateway, server := setupTestGateway(t, mux)
	defer server.Close()

	login, err := gateway.Viewer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "octocat", login)

	remaining, limit, reset, err := gateway.RateLimit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4990, remaining)
	assert.Equal(t, 5000, limit)
	assert.Equal(t, int64(1735689600), reset.Unix())
}

func TestResolveToken(t *testing.T) {
	original := runGH
	t.Cleanup(func() { runGH = original })

	t.Run("environment wins", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", " env-token ")
		runGH = func(ctx context.Context, args ...string) ([]byte, error) {
			t.Fatal("gh should not be called")
			return nil, nil
		}
		token, source, err := ResolveToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "env-token", token)
		assert.Equal(t, "GITHUB_TOKEN", source)
	})

	t.Run("falls back to gh auth token", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "")
		t.Setenv("GH_TOKEN", "")
		runGH = func(ctx context.Context, args ...string) ([]byte, error) {
			assert.Equal(t, []string{"auth", "token"}, args)
			return []byte("gho_abc\n"), nil
		}
		token, source, err := ResolveToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "gho_abc", token)
		assert.Equal(t, "gh auth token", source)
	})

	t.Run("no token anywhere", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "")
		t.Setenv("GH_TOKEN", "")
		runGH = func(ctx context.Context, args ...string) ([]byte, error) {
			return nil, errors.New("not logged in")
		}
		_, _, err := ResolveToken(context.Background())
		assert.ErrorIs(t, err, ErrNoToken)
	})
}

func TestGHVersion(t *testing.T) {
	original := runGH
	t.Cleanup(func() { runGH = original })
	runGH = func(ctx context.Context, args ...string) ([]byte, error) {
		return []byte("gh version 2.62.0 (2024-11-14)\nhttps://github.com/cli/cli/releases/tag/v2.62.0\n"), nil
	}
	version, err := GHVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "gh version 2.62.0 (2024-11-14)", version)
}
