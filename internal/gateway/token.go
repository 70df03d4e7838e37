package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ErrNoToken is returned when neither the environment nor the GitHub CLI
// provides a token.
var ErrNoToken = errors.New("no GitHub token found: set GITHUB_TOKEN or run 'gh auth login'")

// runGH executes the GitHub CLI and returns its stdout. Tests replace it.
var runGH = func(ctx context.Context, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "gh", args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("gh %s: %w: %s", strings.Join(args, " "), err, msg)
		}
		return nil, fmt.Errorf("gh %s: %w", strings.Join(args, " "), err)
	}
	return stdout.Bytes(), nil
}

// ResolveToken finds a GitHub token and reports where it came from. The
// environment wins; otherwise the GitHub CLI's stored credentials are used.
func ResolveToken(ctx context.Context) (token, source string, err error) {
	for _, env := range []string{"GITHUB_TOKEN", "GH_TOKEN"} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v, env, nil
		}
	}
	out, err := runGH(ctx, "auth", "token")
	if err != nil {
		return "", "", fmt.Errorf("%w (%v)", ErrNoToken, err)
	}
	token = strings.TrimSpace(string(out))
	if token == "" {
		return "", "", ErrNoToken
	}
	return token, "gh auth token", nil
}

// GHVersion returns the first line of `gh --version`.
func GHVersion(ctx context.Context) (string, error) {
	out, err := runGH(ctx, "--version")
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return line, nil
}
