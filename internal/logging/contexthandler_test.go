package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/myrjola/formtree/internal/logging"
	"github.com/stretchr/testify/require"
)

func TestContextHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(&buf, nil)))
	logger = logger.With("source", "test")

	ctx := logging.WithAttrs(context.Background(), slog.String("method", "POST"))
	ctx = logging.WithAttrs(ctx, slog.String("uri", "/api/form"))
	logger.InfoContext(ctx, "received request")

	out := buf.String()
	require.Contains(t, out, "source=test")
	require.Contains(t, out, "method=POST")
	require.Contains(t, out, "uri=/api/form")
}

func TestWithAttrs_siblingsDoNotShare(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(&buf, nil)))

	parent := logging.WithAttrs(context.Background(), slog.String("a", "1"))
	left := logging.WithAttrs(parent, slog.String("b", "left"))
	_ = logging.WithAttrs(parent, slog.String("b", "right"))

	logger.InfoContext(left, "hello")
	require.Contains(t, buf.String(), "b=left")
	require.NotContains(t, buf.String(), "b=right")
}
