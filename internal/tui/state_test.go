package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func press(s State, keys ...string) State {
	for _, key := range keys {
		s, _ = s.HandleKey(key, 100, 10)
	}
	return s
}

func TestHandleKey_ViewTransitions(t *testing.T) {
	testCases := []struct {
		name     string
		keys     []string
		expected State
	}{
		{name: "initial state is summary", keys: nil, expected: State{Mode: ModeSummary}},
		{name: "d opens detail by week", keys: []string{"d"}, expected: State{Mode: ModeDetail, GroupBy: ByWeek}},
		{name: "d twice lands on detail by repo", keys: []string{"d", "d"}, expected: State{Mode: ModeDetail, GroupBy: ByRepo}},
		{name: "d three times cycles back to week", keys: []string{"d", "d", "d"}, expected: State{Mode: ModeDetail, GroupBy: ByWeek}},
		{name: "t opens tail", keys: []string{"d", "t"}, expected: State{Mode: ModeTail, GroupBy: ByWeek}},
		{name: "d from tail starts at week grouping", keys: []string{"d", "d", "t", "d"}, expected: State{Mode: ModeDetail, GroupBy: ByWeek}},
		{name: "s returns to summary", keys: []string{"d", "s"}, expected: State{Mode: ModeSummary}},
		{name: "switching view resets scroll", keys: []string{"j", "j", "d"}, expected: State{Mode: ModeDetail}},
		{name: "unknown keys are ignored", keys: []string{"x", "?"}, expected: State{Mode: ModeSummary}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, press(State{}, tc.keys...))
		})
	}
}

func TestHandleKey_Quit(t *testing.T) {
	for _, key := range []string{"q", "esc", "ctrl+c"} {
		_, quit := State{Mode: ModeTail}.HandleKey(key, 10, 5)
		assert.True(t, quit, key)
	}
	_, quit := State{}.HandleKey("j", 10, 5)
	assert.False(t, quit)
}

func TestHandleKey_Scrolling(t *testing.T) {
	testCases := []struct {
		name       string
		start      int
		key        string
		contentLen int
		viewport   int
		expected   int
	}{
		{name: "down moves one line", start: 0, key: "down", contentLen: 50, viewport: 10, expected: 1},
		{name: "j moves one line", start: 3, key: "j", contentLen: 50, viewport: 10, expected: 4},
		{name: "up floors at zero", start: 0, key: "k", contentLen: 50, viewport: 10, expected: 0},
		{name: "down stops at last page", start: 40, key: "j", contentLen: 50, viewport: 10, expected: 40},
		{name: "page down moves a viewport", start: 5, key: "pgdown", contentLen: 50, viewport: 10, expected: 15},
		{name: "page down clamps", start: 35, key: "pgdown", contentLen: 50, viewport: 10, expected: 40},
		{name: "page up clamps", start: 5, key: "pgup", contentLen: 50, viewport: 10, expected: 0},
		{name: "G jumps to bottom", start: 0, key: "G", contentLen: 50, viewport: 10, expected: 40},
		{name: "g jumps to top", start: 27, key: "g", contentLen: 50, viewport: 10, expected: 0},
		{name: "content shorter than viewport never scrolls", start: 0, key: "G", contentLen: 4, viewport: 10, expected: 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			next, _ := State{Offset: tc.start}.HandleKey(tc.key, tc.contentLen, tc.viewport)
			assert.Equal(t, tc.expected, next.Offset)
		})
	}
}

func TestClampOffset(t *testing.T) {
	assert.Equal(t, 0, ClampOffset(-5, 20, 10))
	assert.Equal(t, 10, ClampOffset(99, 20, 10))
	assert.Equal(t, 0, ClampOffset(3, 5, 10))
	assert.Equal(t, 7, ClampOffset(7, 20, 10))
}
