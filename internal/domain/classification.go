package domain

import "fmt"

// Classification decides whether a pull request is shown and whether it
// contributes to metrics.
type Classification int

const (
	// Counted PRs are shown and contribute to every metric.
	Counted Classification = iota
	// Ignored PRs are shown in lists but skipped by every numeric aggregate.
	Ignored
	// Excluded PRs are never shown.
	Excluded
)

func (c Classification) String() string {
	switch c {
	case Counted:
		return "counted"
	case Ignored:
		return "ignored"
	case Excluded:
		return "excluded"
	default:
		return fmt.Sprintf("Classification(%d)", int(c))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Classification) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// ClassifiedPR pairs a record with its classification.
type ClassifiedPR struct {
	PullRequest
	Class Classification
}

// SizeCategory buckets a PR by changed lines.
type SizeCategory int

const (
	SizeS SizeCategory = iota
	SizeM
	SizeL
	SizeXL
)

func (s SizeCategory) String() string {
	switch s {
	case SizeS:
		return "S"
	case SizeM:
		return "M"
	case SizeL:
		return "L"
	case SizeXL:
		return "XL"
	default:
		return fmt.Sprintf("SizeCategory(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s SizeCategory) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
