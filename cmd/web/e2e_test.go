package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/myrjola/formtree/internal/coordinator"
	"github.com/myrjola/formtree/internal/e2etest"
	"github.com/myrjola/formtree/internal/formtree"
	"github.com/myrjola/formtree/internal/models"
	"github.com/myrjola/formtree/internal/remote"
	"github.com/myrjola/formtree/internal/repositories"
	"github.com/myrjola/formtree/internal/sqlite"
	"github.com/myrjola/formtree/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func testLookupEnv(key string) (string, bool) {
	switch key {
	case "FORMTREE_ADDR":
		return "localhost:0", true
	case "FORMTREE_SQLITE_URL":
		return ":memory:", true
	default:
		return "", false
	}
}

func startServer(t *testing.T) *e2etest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	server, err := e2etest.StartServer(ctx, io.Discard, testLookupEnv, run)
	require.NoError(t, err)
	return server
}

type response struct {
	status int
	header http.Header
	body   string
}

func do(t *testing.T, server *e2etest.Server, method, path, body string, header http.Header) response {
	t.Helper()
	ctx := context.Background()
	var (
		resp *http.Response
		err  error
	)
	if method == http.MethodPost {
		resp, err = server.Client().PostJSON(ctx, path, body, header)
	} else {
		resp, err = server.Client().Do(ctx, method, path, nil, header)
	}
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return response{status: resp.StatusCode, header: resp.Header, body: string(data)}
}

func seqHeader(seq string) http.Header {
	return http.Header{remote.SequenceHeader: []string{seq}}
}

func TestServer_basics(t *testing.T) {
	t.Parallel()
	server := startServer(t)

	resp := do(t, server, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, resp.status)
	require.Equal(t, "Form Builder API is running", resp.body)

	resp = do(t, server, http.MethodGet, "/api/healthy", "", nil)
	require.Equal(t, http.StatusOK, resp.status)
	require.JSONEq(t, `{"status":"ok"}`, resp.body)

	resp = do(t, server, http.MethodGet, "/nope", "", nil)
	require.Equal(t, http.StatusNotFound, resp.status)

	resp = do(t, server, http.MethodOptions, "/api/form", "", nil)
	require.Equal(t, http.StatusNoContent, resp.status)
	require.Equal(t, "*", resp.header.Get("Access-Control-Allow-Origin"))
	require.Contains(t, resp.header.Get("Access-Control-Allow-Headers"), remote.SequenceHeader)

	resp = do(t, server, http.MethodGet, "/api/form", "", nil)
	require.Equal(t, http.StatusOK, resp.status)
	require.JSONEq(t, `[]`, resp.body)
	require.Equal(t, "0", resp.header.Get(remote.SequenceHeader))
	require.Equal(t, "nosniff", resp.header.Get("X-Content-Type-Options"))
}

func TestServer_saveForm(t *testing.T) {
	t.Parallel()
	server := startServer(t)

	const (
		first  = `[{"id":"1","text":"Name?","type":"short","answer":null,"children":[]}]`
		second = `[{"id":"2","text":"Age?","type":"short","answer":null,"children":[]}]`
		third  = `[{"id":"3","text":"Drive?","type":"boolean","answer":true,"children":[` +
			`{"id":"4","text":"","type":"","answer":null,"children":[]}]}]`
	)

	steps := []struct {
		name        string
		body        string
		header      http.Header
		wantStatus  int
		wantMessage string
		wantStored  string
	}{
		{
			name:        "object body",
			body:        `{"id":"1"}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Form data must be an array of questions",
			wantStored:  `[]`,
		},
		{
			name:        "invalid json",
			body:        `[{"id":`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Form data must be an array of questions",
			wantStored:  `[]`,
		},
		{
			name:        "malformed question",
			body:        `[{"id":"1","type":"multiple"}]`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Form data contains malformed questions",
			wantStored:  `[]`,
		},
		{
			name:        "sequenced write",
			body:        second,
			header:      seqHeader("10"),
			wantStatus:  http.StatusOK,
			wantMessage: "Form saved successfully",
			wantStored:  second,
		},
		{
			name:        "stale write",
			body:        first,
			header:      seqHeader("5"),
			wantStatus:  http.StatusConflict,
			wantMessage: "stale form write ignored",
			wantStored:  second,
		},
		{
			name:        "invalid sequence",
			body:        first,
			header:      seqHeader("soon"),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "invalid X-Form-Sequence header",
			wantStored:  second,
		},
		{
			name:        "unsequenced write",
			body:        third,
			wantStatus:  http.StatusOK,
			wantMessage: "Form saved successfully",
			wantStored:  third,
		},
	}
	for _, step := range steps {
		resp := do(t, server, http.MethodPost, "/api/form", step.body, step.header)
		require.Equal(t, step.wantStatus, resp.status, step.name)
		var msg remote.Message
		require.NoError(t, json.Unmarshal([]byte(resp.body), &msg), step.name)
		require.Equal(t, step.wantMessage, msg.Message, step.name)

		stored := do(t, server, http.MethodGet, "/api/form", "", nil)
		require.JSONEq(t, step.wantStored, stored.body, step.name)
	}

	stored := do(t, server, http.MethodGet, "/api/form", "", nil)
	require.Equal(t, "11", stored.header.Get(remote.SequenceHeader), "unsequenced writes follow the last sequence")

	numbered := do(t, server, http.MethodGet, "/api/form/numbered", "", nil)
	require.Equal(t, http.StatusOK, numbered.status)
	require.JSONEq(t, `[{"id":"3","number":"Q1","text":"Drive?","type":"boolean","answer":true,"children":[`+
		`{"id":"4","number":"Q1.1","text":"","type":"","answer":null,"children":[]}]}]`, numbered.body)
}

func TestServer_preview(t *testing.T) {
	t.Parallel()
	server := startServer(t)
	ctx := context.Background()

	doc, err := server.Client().GetDoc(ctx, "/preview")
	require.NoError(t, err)
	require.Equal(t, 1, doc.Find(".submission-empty").Length())

	tree := models.Tree{
		{ID: "a", Text: "Do you drive?", Type: models.TypeBoolean, Answer: models.AnswerTrue,
			Children: []models.QuestionNode{
				{ID: "b", Text: "", Type: models.TypeUnset, Children: []models.QuestionNode{}},
			}},
		{ID: "c", Text: "<b>Name</b>", Type: models.TypeShortAnswer, Children: []models.QuestionNode{}},
	}
	require.NoError(t, server.RemoteClient().Push(ctx, 1, tree))

	doc, err = server.Client().GetDoc(ctx, "/preview")
	require.NoError(t, err)
	numbers := doc.Find(".submission-number").Map(func(_ int, s *goquery.Selection) string { return s.Text() })
	require.Equal(t, []string{"Q1", "Q1.1", "Q2"}, numbers)
	require.Equal(t, "(empty question)", doc.Find("#question-b .submission-text").First().Text())
	require.Equal(t, "<b>Name</b>", doc.Find("#question-c .submission-text").Text(), "text is escaped")
	require.Equal(t, "[boolean]", doc.Find("#question-a > .submission-item .submission-type").Text())
	require.Equal(t, 0, doc.Find("#question-b .submission-type").Length(), "unset type is not shown")
	require.Equal(t, 1, doc.Find("#question-a ul.submission-list #question-b").Length(), "children are nested")
}

// TestServer_coordinator runs the whole replication loop: edits are cached locally and pushed to the server,
// and a fresh client without a local cache picks the form up from the server.
func TestServer_coordinator(t *testing.T) {
	t.Parallel()
	server := startServer(t)
	ctx := context.Background()
	logger := testhelpers.NewLogger(io.Discard)

	newCoordinator := func() *coordinator.Coordinator {
		db, err := sqlite.NewDatabase(ctx, ":memory:", logger)
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
		cache := repositories.NewCacheRepository(db, logger).Entry(repositories.FormCacheKey)
		c := coordinator.New(cache, server.RemoteClient(), logger)
		require.NoError(t, c.Load(ctx))
		return c
	}

	writer := newCoordinator()
	err := writer.AddQuestion(ctx, formtree.NewNode())
	require.NoError(t, err)
	require.NoError(t, writer.Update(ctx, formtree.Path{0}, func(n models.QuestionNode) (models.QuestionNode, error) {
		return n.WithText("Do you drive?").WithType(models.TypeBoolean).WithAnswer(models.AnswerTrue), nil
	}))
	err = writer.AddChild(ctx, formtree.Path{0}, formtree.NewNode())
	require.NoError(t, err)
	require.NoError(t, writer.Wait(ctx))

	reader := newCoordinator()
	require.Equal(t, writer.Tree(), reader.Tree())
	require.Equal(t, []string{"Q1", "Q1.1"}, reader.Submit().Numbers())
}
