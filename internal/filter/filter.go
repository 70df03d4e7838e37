// Package filter classifies pull requests as counted, ignored or excluded
// according to the repository and title rules of the config.
package filter

import (
	"fmt"
	"regexp"

	"github.com/naka-gawa/gh-log/internal/config"
	"github.com/naka-gawa/gh-log/internal/domain"
)

// Engine holds the compiled rule sets. It is immutable once built and safe
// for concurrent use.
type Engine struct {
	excludeRepos    map[string]struct{}
	excludePatterns []*regexp.Regexp
	ignoreRepos     map[string]struct{}
	ignorePatterns  []*regexp.Regexp
}

// New compiles every rule up front. An invalid regex fails here, before any
// record is classified.
func New(cfg config.FilterConfig) (*Engine, error) {
	excludePatterns, err := compile("exclude_patterns", cfg.ExcludePatterns)
	if err != nil {
		return nil, err
	}
	ignorePatterns, err := compile("ignore_patterns", cfg.IgnorePatterns)
	if err != nil {
		return nil, err
	}
	return &Engine{
		excludeRepos:    toSet(cfg.ExcludeRepos),
		excludePatterns: excludePatterns,
		ignoreRepos:     toSet(cfg.IgnoreRepos),
		ignorePatterns:  ignorePatterns,
	}, nil
}

// Classify returns exactly one classification for pr. Exclude rules are
// checked first and short-circuit, so they dominate ignore rules regardless
// of declaration order.
func (e *Engine) Classify(pr domain.PullRequest) domain.Classification {
	if matchRepo(e.excludeRepos, pr.Repository) || matchTitle(e.excludePatterns, pr.Title) {
		return domain.Excluded
	}
	if matchRepo(e.ignoreRepos, pr.Repository) || matchTitle(e.ignorePatterns, pr.Title) {
		return domain.Ignored
	}
	return domain.Counted
}

// Partition classifies prs, drops the excluded ones and returns the visible
// records together with the number of excluded records. Input order is kept.
func (e *Engine) Partition(prs []domain.PullRequest) ([]domain.ClassifiedPR, int) {
	visible := make([]domain.ClassifiedPR, 0, len(prs))
	excluded := 0
	for _, pr := range prs {
		class := e.Classify(pr)
		if class == domain.Excluded {
			excluded++
			continue
		}
		visible = append(visible, domain.ClassifiedPR{PullRequest: pr, Class: class})
	}
	return visible, excluded
}

func compile(field string, patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid %s entry %q: %w", field, pattern, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

func matchRepo(set map[string]struct{}, repo string) bool {
	_, ok := set[repo]
	return ok
}

func matchTitle(patterns []*regexp.Regexp, title string) bool {
	for _, re := range patterns {
		if re.MatchString(title) {
			return true
		}
	}
	return false
}
