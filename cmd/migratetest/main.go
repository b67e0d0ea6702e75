package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/myrjola/formtree/internal/errors"
	"github.com/myrjola/formtree/internal/formtree"
	"github.com/myrjola/formtree/internal/repositories"
	"github.com/myrjola/formtree/internal/sqlite"
	"github.com/myrjola/formtree/internal/testhelpers"
)

// migratetest runs the schema migration against a copy of a production database and checks that the stored
// form still decodes.
func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	var (
		err       error
		start     = time.Now()
		ctx       context.Context
		sqliteURL string
		ok        bool
		cancel    context.CancelFunc
	)
	ctx = context.Background()
	ctx, cancel = context.WithTimeout(ctx, 5*time.Second) //nolint:mnd // 5 seconds

	if sqliteURL, ok = os.LookupEnv("FORMTREE_SQLITE_URL"); !ok {
		logger.LogAttrs(ctx, slog.LevelError, "FORMTREE_SQLITE_URL not set")
		os.Exit(1)
	}

	var db *sqlite.Database
	if db, err = sqlite.NewDatabase(ctx, sqliteURL, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating database",
			slog.String("url", sqliteURL), errors.SlogError(err))
		os.Exit(1)
	}

	forms := repositories.NewFormRepository(db, logger)
	tree, sequence, err := forms.Get(ctx)
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error reading stored form", errors.SlogError(err))
		os.Exit(1)
	}
	if err = formtree.Validate(tree); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "stored form is inconsistent", errors.SlogError(err))
		os.Exit(1)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "stored form",
		slog.Int("questions", tree.Len()), slog.Int64("sequence", sequence))

	if err = db.Close(); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error closing database", errors.SlogError(err))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "Migration test successful 🙌", slog.Duration("duration", time.Since(start)))
	cancel()
	os.Exit(0)
}
