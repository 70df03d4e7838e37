// Package cache persists one JSON snapshot of pull requests per month in the
// user's cache directory.
//
// Freshness is decided when an entry is read, relative to the current month:
// the current month expires after six hours, the previous month after
// twenty-four, and older months never expire.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/naka-gawa/gh-log/internal/config"
	"github.com/naka-gawa/gh-log/internal/domain"
)

const (
	CurrentMonthTTL  = 6 * time.Hour
	PreviousMonthTTL = 24 * time.Hour
	// MaxPullRequests caps the size of a single snapshot.
	MaxPullRequests = 10_000
)

// Entry is one month's snapshot as stored on disk.
type Entry struct {
	Month         domain.Month         `json:"month"`
	FetchedAt     time.Time            `json:"fetched_at"`
	ReviewedCount int                  `json:"reviewed_count"`
	PullRequests  []domain.PullRequest `json:"prs"`
}

// FileInfo describes a cache file for diagnostics.
type FileInfo struct {
	Month    string
	Path     string
	Modified time.Time
}

// Store is a file-backed month cache.
type Store struct {
	dir    string
	now    func() time.Time
	logger *log.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the wall clock used for freshness checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// DefaultDir returns the platform-specific cache directory for gh-log.
func DefaultDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine cache directory: %w", err)
	}
	return filepath.Join(dir, config.AppName), nil
}

// New creates a Store rooted at dir, creating the directory if needed.
func New(dir string, logger *log.Logger, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}
	s := &Store{dir: dir, now: time.Now, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the directory holding the cache files.
func (s *Store) Dir() string { return s.dir }

// Path returns the file used for month.
func (s *Store) Path(month domain.Month) string {
	return filepath.Join(s.dir, month.String()+".json")
}

// Get returns the cached snapshot for month when it is fresh. It returns nil
// on a miss, a stale entry, an unreadable entry, or when force is set.
func (s *Store) Get(month domain.Month, force bool) *Entry {
	if force {
		s.logger.Printf("Cache: bypassing cache for %s (forced)", month)
		return nil
	}
	entry := s.Load(month)
	if entry == nil {
		return nil
	}
	if !s.IsFresh(entry) {
		s.logger.Printf("Cache: entry for %s fetched at %s is stale", month, entry.FetchedAt.Format(time.RFC3339))
		return nil
	}
	return entry
}

// Load returns the stored snapshot for month regardless of freshness, or nil
// if there is none. A corrupt or unreadable file counts as a miss.
func (s *Store) Load(month domain.Month) *Entry {
	path := s.Path(month)
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Printf("Cache: failed to read %s, treating as miss: %v", path, err)
		}
		return nil
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		s.logger.Printf("Cache: failed to parse %s, treating as miss: %v", path, err)
		return nil
	}
	if entry.Month != month || entry.FetchedAt.IsZero() {
		s.logger.Printf("Cache: %s does not hold a valid snapshot for %s, treating as miss", path, month)
		return nil
	}
	return &entry
}

// IsFresh applies the TTL tier for the entry's month at the current time.
func (s *Store) IsFresh(entry *Entry) bool {
	return IsFresh(entry.Month, entry.FetchedAt, s.now())
}

// IsFresh reports whether a snapshot of month fetched at fetchedAt is still
// usable at now.
func IsFresh(month domain.Month, fetchedAt, now time.Time) bool {
	current := domain.MonthOf(now)
	age := now.Sub(fetchedAt)
	switch month {
	case current:
		return age < CurrentMonthTTL
	case current.Prev():
		return age < PreviousMonthTTL
	default:
		return true
	}
}

// Save writes entry atomically, replacing any existing file for the month.
func (s *Store) Save(entry *Entry) error {
	if len(entry.PullRequests) > MaxPullRequests {
		return fmt.Errorf("too many PRs to cache: %d (max %d)", len(entry.PullRequests), MaxPullRequests)
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize cache entry for %s: %w", entry.Month, err)
	}
	path := s.Path(entry.Month)
	if err := atomicWrite(path, data); err != nil {
		return err
	}
	s.logger.Printf("Cache: wrote %d PRs for %s to %s", len(entry.PullRequests), entry.Month, path)
	return nil
}

// List returns the month files currently in the cache, sorted by name.
func (s *Store) List() ([]FileInfo, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list cache directory %s: %w", s.dir, err)
	}
	files := make([]FileInfo, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Month:    strings.TrimSuffix(name, ".json"),
			Path:     filepath.Join(s.dir, name),
			Modified: info.ModTime(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Month < files[j].Month })
	return files, nil
}

// atomicWrite writes content to a temp file in the target directory and
// renames it into place, so readers never observe a partial file.
func atomicWrite(path string, content []byte) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".cache-tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(content); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing cache content: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpFile.Name(), path); err != nil {
		return fmt.Errorf("moving temp file to %s: %w", path, err)
	}
	return nil
}
