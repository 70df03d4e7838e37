package cache

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/gh-log/internal/domain"
)

var now = time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir(), log.New(io.Discard, "", 0), WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	return store
}

func mustMonth(t *testing.T, s string) domain.Month {
	t.Helper()
	m, err := domain.ParseMonth(s)
	require.NoError(t, err)
	return m
}

func TestIsFresh(t *testing.T) {
	current := domain.MonthOf(now)
	testCases := []struct {
		name     string
		month    domain.Month
		age      time.Duration
		expected bool
	}{
		{name: "current month 5h59m", month: current, age: 5*time.Hour + 59*time.Minute, expected: true},
		{name: "current month 6h01m", month: current, age: 6*time.Hour + time.Minute, expected: false},
		{name: "current month exactly 6h", month: current, age: 6 * time.Hour, expected: false},
		{name: "previous month 23h59m", month: current.Prev(), age: 23*time.Hour + 59*time.Minute, expected: true},
		{name: "previous month 24h01m", month: current.Prev(), age: 24*time.Hour + time.Minute, expected: false},
		{name: "older month one year", month: current.Prev().Prev(), age: 365 * 24 * time.Hour, expected: true},
		{name: "older month ten years", month: mustMonth(t, "2015-01"), age: 10 * 365 * 24 * time.Hour, expected: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsFresh(tc.month, now.Add(-tc.age), now))
		})
	}
}

func TestIsFresh_TierFollowsCalendarRollover(t *testing.T) {
	// Written late on Jan 31 while January was current; read on Feb 1 it is
	// governed by the previous-month tier instead.
	fetchedAt := time.Date(2025, time.January, 31, 20, 0, 0, 0, time.UTC)
	jan := mustMonth(t, "2025-01")

	readAt := time.Date(2025, time.February, 1, 4, 0, 0, 0, time.UTC)
	assert.True(t, IsFresh(jan, fetchedAt, readAt), "8h old entry is fresh under the 24h tier")
	assert.False(t, IsFresh(jan, fetchedAt, fetchedAt.Add(25*time.Hour)), "25h old entry is stale under the 24h tier")

	// And once March arrives it never expires.
	assert.True(t, IsFresh(jan, fetchedAt, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)))
}

func TestStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	month := domain.MonthOf(now)
	entry := &Entry{
		Month:         month,
		FetchedAt:     now.Add(-time.Hour),
		ReviewedCount: 3,
		PullRequests: []domain.PullRequest{
			{Repository: "me/app", Number: 7, Title: "feat", CreatedAt: now.Add(-48 * time.Hour), UpdatedAt: now},
		},
	}
	require.NoError(t, store.Save(entry))

	got := store.Get(month, false)
	require.NotNil(t, got)
	assert.Equal(t, 3, got.ReviewedCount)
	require.Len(t, got.PullRequests, 1)
	assert.Equal(t, "me/app", got.PullRequests[0].Repository)
	assert.True(t, got.FetchedAt.Equal(entry.FetchedAt))

	assert.Nil(t, store.Get(month, true), "force bypasses a fresh entry")
}

func TestStore_StaleEntryIsKept(t *testing.T) {
	store := newTestStore(t)
	month := domain.MonthOf(now)
	require.NoError(t, store.Save(&Entry{Month: month, FetchedAt: now.Add(-7 * time.Hour)}))

	assert.Nil(t, store.Get(month, false))
	stale := store.Load(month)
	require.NotNil(t, stale, "stale entries stay on disk for explicit fallback")
	assert.FileExists(t, store.Path(month))
}

func TestStore_CorruptEntryIsAMiss(t *testing.T) {
	store := newTestStore(t)
	month := mustMonth(t, "2024-01")

	require.NoError(t, os.WriteFile(store.Path(month), []byte(`{"month":"2024-01","fetched_at":"2024-`), 0o644))
	assert.Nil(t, store.Get(month, false))
	assert.Nil(t, store.Load(month))

	require.NoError(t, os.WriteFile(store.Path(month), []byte(`{"month":"2023-12","fetched_at":"2024-01-01T00:00:00Z"}`), 0o644))
	assert.Nil(t, store.Load(month), "an entry for another month is not trusted")
}

func TestStore_SaveOverwritesAndLeavesNoTempFiles(t *testing.T) {
	store := newTestStore(t)
	month := mustMonth(t, "2024-06")
	require.NoError(t, store.Save(&Entry{Month: month, FetchedAt: now.Add(-time.Hour), ReviewedCount: 1}))
	require.NoError(t, store.Save(&Entry{Month: month, FetchedAt: now, ReviewedCount: 2}))

	got := store.Get(month, false)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.ReviewedCount)

	matches, err := filepath.Glob(filepath.Join(store.Dir(), ".cache-tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestStore_SaveRejectsOversizedSnapshot(t *testing.T) {
	store := newTestStore(t)
	month := mustMonth(t, "2024-06")
	err := store.Save(&Entry{Month: month, FetchedAt: now, PullRequests: make([]domain.PullRequest, MaxPullRequests+1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many PRs")
	assert.NoFileExists(t, store.Path(month))
}

func TestStore_List(t *testing.T) {
	store := newTestStore(t)
	for _, m := range []string{"2025-02", "2024-12"} {
		require.NoError(t, store.Save(&Entry{Month: mustMonth(t, m), FetchedAt: now}))
	}
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "notes.txt"), []byte("x"), 0o644))

	files, err := store.List()
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "2024-12", files[0].Month)
	assert.Equal(t, "2025-02", files[1].Month)
}
