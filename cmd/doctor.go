package cmd

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/gh-log/internal/domain"
	"github.com/naka-gawa/gh-log/internal/gateway"
)

// prober is the part of the GitHub gateway doctor talks to.
type prober interface {
	Viewer(ctx context.Context) (string, error)
	RateLimit(ctx context.Context) (remaining, limit int, reset time.Time, err error)
}

// Seams replaced in tests.
var (
	ghVersion    = gateway.GHVersion
	resolveToken = gateway.ResolveToken
	newProber    = func(token string, logger *log.Logger) (prober, error) {
		return gateway.NewGitHubGateway(token, logger)
	}
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the environment gh-log depends on",
	Long: `Doctor checks the GitHub CLI, token resolution, API access and quota, the
cache directory and the config file. A failed check is reported but does not
fail the command.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := newLogger(cmd)
		out := cmd.OutOrStdout()

		if version, err := ghVersion(ctx); err != nil {
			fail(out, "gh CLI: %v", err)
		} else {
			ok(out, "gh CLI: %s", version)
		}

		token, source, err := resolveToken(ctx)
		if err != nil {
			fail(out, "token: %v", err)
		} else {
			ok(out, "token: found via %s", source)
			checkAPI(ctx, out, token, logger)
		}

		checkCache(out, logger)
		checkConfig(out)
		return nil
	},
}

func checkAPI(ctx context.Context, out io.Writer, token string, logger *log.Logger) {
	client, err := newProber(token, logger)
	if err != nil {
		fail(out, "API client: %v", err)
		return
	}
	if login, err := client.Viewer(ctx); err != nil {
		fail(out, "authenticated user: %v", err)
	} else {
		ok(out, "authenticated as %s", login)
	}
	remaining, limit, reset, err := client.RateLimit(ctx)
	if err != nil {
		fail(out, "rate limit: %v", err)
		return
	}
	ok(out, "rate limit: %d/%d remaining (resets %s)", remaining, limit, reset.Local().Format(time.Kitchen))
}

func checkCache(out io.Writer, logger *log.Logger) {
	store, err := openCache(logger)
	if err != nil {
		fail(out, "cache: %v", err)
		return
	}
	files, err := store.List()
	if err != nil {
		fail(out, "cache %s: %v", store.Dir(), err)
		return
	}
	ok(out, "cache: %s (%d months)", store.Dir(), len(files))
	for _, f := range files {
		state := "stale"
		if month, err := domain.ParseMonth(f.Month); err == nil {
			if entry := store.Load(month); entry == nil {
				state = "unreadable"
			} else if store.IsFresh(entry) {
				state = "fresh"
			}
		}
		fprintf(out, "    %s  %s  %s\n", f.Month, f.Modified.Local().Format(time.DateTime), state)
	}
}

func checkConfig(out io.Writer) {
	path, err := configPath()
	if err != nil {
		fail(out, "config: %v", err)
		return
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		ok(out, "config: %s (not found, using defaults)", path)
		return
	}
	if _, _, err := loadConfig(); err != nil {
		fail(out, "config: %v", err)
		return
	}
	ok(out, "config: %s", path)
}

func ok(w io.Writer, format string, args ...any) {
	fprintf(w, "✓ "+format+"\n", args...)
}

func fail(w io.Writer, format string, args ...any) {
	fprintf(w, "✗ "+format+"\n", args...)
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
