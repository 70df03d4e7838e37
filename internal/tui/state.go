// Package tui is the interactive month dashboard. The view state is a small
// value (which projection, how it is grouped, the scroll offset); every
// projection renders from the same precomputed summary.
package tui

// Mode is the active projection.
type Mode int

const (
	ModeSummary Mode = iota
	ModeDetail
	ModeTail
)

// GroupBy selects the grouping of the detail view.
type GroupBy int

const (
	ByWeek GroupBy = iota
	ByRepo
)

// Toggle flips between week and repository grouping.
func (g GroupBy) Toggle() GroupBy {
	if g == ByWeek {
		return ByRepo
	}
	return ByWeek
}

// State is the complete navigational state of the dashboard.
type State struct {
	Mode    Mode
	GroupBy GroupBy
	Offset  int
}

// HandleKey applies one key press. contentLen is the number of lines in the
// current projection and viewport the number of visible lines. It reports
// quit=true when the program should exit. Switching projection resets the
// scroll offset.
func (s State) HandleKey(key string, contentLen, viewport int) (next State, quit bool) {
	switch key {
	case "q", "esc", "ctrl+c":
		return s, true
	case "s":
		return State{Mode: ModeSummary, GroupBy: s.GroupBy}, false
	case "d":
		if s.Mode == ModeDetail {
			return State{Mode: ModeDetail, GroupBy: s.GroupBy.Toggle()}, false
		}
		return State{Mode: ModeDetail, GroupBy: ByWeek}, false
	case "t":
		return State{Mode: ModeTail, GroupBy: s.GroupBy}, false
	case "up", "k":
		s.Offset--
	case "down", "j":
		s.Offset++
	case "pgup", "ctrl+b", "b":
		s.Offset -= max(viewport, 1)
	case "pgdown", "ctrl+f", " ":
		s.Offset += max(viewport, 1)
	case "g", "home":
		s.Offset = 0
	case "G", "end":
		s.Offset = contentLen
	default:
		return s, false
	}
	s.Offset = ClampOffset(s.Offset, contentLen, viewport)
	return s, false
}

// ClampOffset keeps offset within [0, contentLen-viewport], floored at 0.
func ClampOffset(offset, contentLen, viewport int) int {
	maxOffset := contentLen - viewport
	if offset > maxOffset {
		offset = maxOffset
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}
