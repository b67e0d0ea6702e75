// Package remote talks to the form store served by cmd/web.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/myrjola/formtree/internal/errors"
	"github.com/myrjola/formtree/internal/models"
	"github.com/myrjola/formtree/internal/snapshot"
)

// SequenceHeader carries the sequence number of a write. The server answers reads with the sequence number of
// the stored tree in the same header.
const SequenceHeader = "X-Form-Sequence"

// FormPath is the path of the form resource relative to the base URL.
const FormPath = "/api/form"

var (
	ErrUnavailable = errors.NewSentinel("remote store unavailable")
	ErrStaleWrite  = errors.NewSentinel("remote store discarded stale write")
	ErrRejected    = errors.NewSentinel("remote store rejected form")
)

// maxResponseBytes bounds the response bodies read from the server.
const maxResponseBytes = 10 << 20

// Message is the body of the server's status responses.
type Message struct {
	Message string `json:"message"`
}

// Client is a remote store client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client for the server at baseURL, e.g. "http://localhost:5000".
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger.With("source", "RemoteClient"),
	}
}

// Fetch returns the tree stored on the server.
func (c *Client) Fetch(ctx context.Context) (models.Tree, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+FormPath, nil)
	if err != nil {
		return nil, errors.Wrap(err, "new request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(ErrUnavailable, "fetch form", slog.String("cause", err.Error()))
	}
	defer c.closeBody(ctx, resp)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.Wrap(ErrUnavailable, "read form", slog.String("cause", err.Error()))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrap(ErrUnavailable, "fetch form", slog.Int("status", resp.StatusCode))
	}

	tree, err := snapshot.Decode(body)
	if err != nil {
		return nil, errors.Wrap(err, "decode remote form")
	}
	c.logger.LogAttrs(ctx, slog.LevelDebug, "fetched form",
		slog.Int("questions", tree.Len()), slog.String("sequence", resp.Header.Get(SequenceHeader)))
	return tree, nil
}

// Push replaces the tree stored on the server. Writes with a sequence number lower than the last accepted one
// return ErrStaleWrite.
func (c *Client) Push(ctx context.Context, seq int64, tree models.Tree) error {
	data, err := snapshot.Encode(tree)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+FormPath, bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(err, "new request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SequenceHeader, strconv.FormatInt(seq, 10))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(ErrUnavailable, "push form", slog.String("cause", err.Error()))
	}
	defer c.closeBody(ctx, resp)

	var msg Message
	// The status code decides the outcome, the message only adds context.
	_ = json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&msg)

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusConflict:
		return errors.Wrap(ErrStaleWrite, "push form", slog.Int64("sequence", seq))
	case http.StatusBadRequest:
		return errors.Wrap(ErrRejected, msg.Message, slog.Int64("sequence", seq))
	default:
		return errors.Wrap(ErrUnavailable, "push form",
			slog.Int("status", resp.StatusCode), slog.String("message", msg.Message))
	}
}

func (c *Client) closeBody(ctx context.Context, resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "failed to close response body",
			errors.SlogError(errors.Wrap(err, "close body")))
	}
}
