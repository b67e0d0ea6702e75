package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/myrjola/formtree/internal/envstruct"
	"github.com/myrjola/formtree/internal/errors"
	"github.com/myrjola/formtree/internal/logging"
	"github.com/myrjola/formtree/internal/pprofserver"
	"github.com/myrjola/formtree/internal/repositories"
	"github.com/myrjola/formtree/internal/sqlite"
)

type application struct {
	logger    *slog.Logger
	forms     *repositories.FormRepository
	templates *templates
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"FORMTREE_ADDR" envDefault:"localhost:5000"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"FORMTREE_SQLITE_URL" envDefault:"./formtree-server.sqlite"`
	// PprofAddr is the optional address for the pprof server. Empty disables it.
	PprofAddr string `env:"FORMTREE_PPROF_ADDR" envDefault:""`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		err error
		cfg config
	)

	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	pprofserver.Launch(ctx, cfg.PprofAddr, logger)

	var db *sqlite.Database
	if db, err = sqlite.NewDatabase(ctx, cfg.SqliteURL, logger); err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "failed to close db", errors.SlogError(closeErr))
		}
	}()
	go db.StartDatabaseOptimizer(ctx, time.Hour)

	var tmpls *templates
	if tmpls, err = parseTemplates(); err != nil {
		return errors.Wrap(err, "parse templates")
	}

	app := application{
		logger:    logger,
		forms:     repositories.NewFormRepository(db, logger),
		templates: tmpls,
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr); err != nil {
		return errors.Wrap(err, "start server")
	}

	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)

	// A missing .env file is fine, the environment and the defaults still apply.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.LogAttrs(ctx, slog.LevelError, "failed to load .env", errors.SlogError(err))
		stop()
		os.Exit(1)
	}

	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		stop()
		os.Exit(1)
	}
	stop()
}
