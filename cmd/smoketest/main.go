package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/myrjola/formtree/internal/e2etest"
	"github.com/myrjola/formtree/internal/errors"
	"github.com/myrjola/formtree/internal/logging"
	"github.com/myrjola/formtree/internal/remote"
)

// TestForm reads the deployed form through the API and the preview page without modifying it.
func TestForm(ctx context.Context, client *e2etest.Client, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second) //nolint:mnd // 10 seconds
	defer cancel()
	var err error

	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		return errors.Wrap(err, "wait for healthy")
	}

	api := remote.NewClient(client.URL(), client.HTTPClient(), logger)
	tree, err := api.Fetch(ctx)
	if err != nil {
		return errors.Wrap(err, "fetch form")
	}

	var doc *goquery.Document
	if doc, err = client.GetDoc(ctx, "/preview"); err != nil {
		return errors.Wrap(err, "get preview")
	}
	if rendered := doc.Find("li[id^='question-']").Length(); rendered != tree.Len() {
		return errors.New("preview does not match the stored form",
			slog.Int("rendered", rendered), slog.Int("stored", tree.Len()))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "form", slog.Int("questions", tree.Len()))
	return nil
}

func main() {
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	url := "https://" + os.Args[1]
	ctx = logging.WithAttrs(ctx, slog.String("hostname", url))

	if err := TestForm(ctx, e2etest.NewClient(url), logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing form", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌")
	os.Exit(0)
}

