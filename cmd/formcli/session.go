package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/myrjola/formtree/internal/coordinator"
	"github.com/myrjola/formtree/internal/errors"
	"github.com/myrjola/formtree/internal/logging"
	"github.com/myrjola/formtree/internal/remote"
	"github.com/myrjola/formtree/internal/repositories"
	"github.com/myrjola/formtree/internal/sqlite"
	"github.com/spf13/cobra"
)

// session is one command invocation with a loaded form.
type session struct {
	form *coordinator.Coordinator
	out  io.Writer
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(logging.NewContextHandler(slog.NewTextHandler(w, &slog.HandlerOptions{
		AddSource:   false,
		Level:       level,
		ReplaceAttr: nil,
	})))
}

// withSession opens the local cache, loads the form and runs fn. Pending remote writes get up to the push
// timeout to finish before the command returns.
func withSession(
	cmd *cobra.Command,
	lookupEnv func(string) (string, bool),
	fn func(ctx context.Context, s *session) error,
) error {
	ctx := cmd.Context()
	cfg, err := resolveConfig(cmd, lookupEnv)
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)
	ctx = logging.WithAttrs(ctx, slog.String("command", cmd.Name()))

	var db *sqlite.Database
	if db, err = sqlite.NewDatabase(ctx, cfg.CacheURL, logger); err != nil {
		return errors.Wrap(err, "open local cache", slog.String("url", cfg.CacheURL))
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "failed to close local cache", errors.SlogError(closeErr))
		}
	}()

	stderr := cmd.ErrOrStderr()
	form := coordinator.New(
		repositories.NewCacheRepository(db, logger).Entry(repositories.FormCacheKey),
		remote.NewClient(cfg.RemoteURL, &http.Client{Timeout: cfg.PushTimeout}, logger), //nolint:exhaustruct // defaults
		logger,
		coordinator.WithPushTimeout(cfg.PushTimeout),
		coordinator.WithNotifier(func(_ context.Context, n coordinator.Notice) {
			_, _ = fmt.Fprintf(stderr, "warning: skipped %s: %v\n", n.Source, n.Err)
		}),
	)
	if err = form.Load(ctx); err != nil {
		return errors.Wrap(err, "load form")
	}

	s := &session{form: form, out: cmd.OutOrStdout()}
	fnErr := fn(ctx, s)

	waitCtx, cancel := context.WithTimeout(ctx, cfg.PushTimeout)
	defer cancel()
	if err = form.Wait(waitCtx); err != nil {
		_, _ = fmt.Fprintln(stderr, "warning: form server did not confirm the last change in time")
	}
	return fnErr
}

func (s *session) show() error {
	_, err := io.WriteString(s.out, renderTree(s.form.Submit()))
	return errors.Wrap(err, "write form")
}
