package clierr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCodeOf(t *testing.T) {
	cause := errors.New("boom")
	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "plain error", err: cause, expected: CodeFailure},
		{name: "usage error", err: Usagef("bad flag %s", "--x"), expected: CodeUsage},
		{name: "wrapped exit error", err: fmt.Errorf("outer: %w", Wrap(CodeFetch, "fetch", cause)), expected: CodeFetch},
		{name: "zero code is normalized", err: New(0, "zero"), expected: CodeFailure},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ExitCodeOf(tc.err))
		})
	}
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(CodeConfig, "load config", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "load config: boom", err.Error())
	assert.Equal(t, "only message", Wrap(CodeConfig, "only message", nil).Error())
}
