package httpserver

import (
	"context"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"guessingGame/internal/config"
	"guessingGame/internal/middleware"
	"guessingGame/internal/testutil"
	"guessingGame/repository"
)

type testEnv struct {
	client    *fasthttp.HostClient
	staticDir string
	users     *repository.UserRepository
	guesses   *repository.GuessRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	d := testutil.OpenInMemoryDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	staticDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "index.html"), []byte("<h1>guess</h1>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "app.js"), []byte("console.log('hi')"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(staticDir, "docs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "docs", "index.html"), []byte("docs home"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "a%41.txt"), []byte("percent"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "a b.txt"), []byte("space"), 0o644))

	users := repository.NewUserRepository(d, repository.WithLogger(logger))
	guesses := repository.NewGuessRepository(d, repository.WithLogger(logger))
	handler := NewHandler(config.StaticConfig{Dir: staticDir, Index: "index.html"}, users, guesses, logger)

	ln := fasthttputil.NewInmemoryListener()
	s := New(handler, logger)
	go func() { _ = s.Serve(ln) }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})

	return &testEnv{
		client:    &fasthttp.HostClient{Addr: "game.test", Dial: func(string) (net.Conn, error) { return ln.Dial() }},
		staticDir: staticDir,
		users:     users,
		guesses:   guesses,
	}
}

type result struct {
	status      int
	body        string
	contentType string
	requestID   string
}

func (e *testEnv) do(t *testing.T, method, path, body string) result {
	t.Helper()
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI("http://game.test" + path)
	req.Header.SetMethod(method)
	req.SetConnectionClose()
	if body != "" {
		req.Header.SetContentType("application/json")
		req.SetBodyString(body)
	}
	require.NoError(t, e.client.Do(req, resp))
	return result{
		status:      resp.StatusCode(),
		body:        string(resp.Body()),
		contentType: string(resp.Header.ContentType()),
		requestID:   string(resp.Header.Peek(middleware.HeaderRequestID)),
	}
}

func TestServer_CreateUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	r := env.do(t, fasthttp.MethodPost, "/api/users", `{"name":"alice"}`)
	assert.Equal(t, fasthttp.StatusCreated, r.status)
	assert.Equal(t, "application/json", r.contentType)
	assert.NotEmpty(t, r.requestID)

	exists, err := env.users.Exists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)

	r = env.do(t, fasthttp.MethodPost, "/api/users", `{"name":"alice"}`)
	assert.Equal(t, fasthttp.StatusConflict, r.status)
	assert.JSONEq(t, `{"error":"user already exists"}`, r.body)
}

func TestServer_RecordGuess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice, _, err := env.users.Add(ctx, "alice")
	require.NoError(t, err)

	r := env.do(t, fasthttp.MethodPost, "/api/guesses", `{"userid":`+strconv.FormatInt(alice.ID, 10)+`,"guess":5,"correct":true}`)
	require.Equal(t, fasthttp.StatusCreated, r.status, r.body)

	r = env.do(t, fasthttp.MethodPost, "/api/guesses", `{"name":"alice","guess":2,"correct":false}`)
	require.Equal(t, fasthttp.StatusCreated, r.status, r.body)

	r = env.do(t, fasthttp.MethodPost, "/api/guesses", `{"guess":5,"correct":true}`)
	assert.Equal(t, fasthttp.StatusBadRequest, r.status)

	r = env.do(t, fasthttp.MethodPost, "/api/guesses", `{"userid":999,"guess":5,"correct":true}`)
	assert.Equal(t, fasthttp.StatusNotFound, r.status)

	list, err := env.guesses.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 5, list[0].NumGuesses)
	assert.True(t, list[0].Finished)
	assert.Equal(t, 2, list[1].NumGuesses)
	assert.False(t, list[1].Finished)
}

func TestServer_StaticFiles(t *testing.T) {
	env := newTestEnv(t)

	r := env.do(t, fasthttp.MethodGet, "/", "")
	assert.Equal(t, fasthttp.StatusOK, r.status)
	assert.Equal(t, "<h1>guess</h1>", r.body)
	assert.Contains(t, r.contentType, "text/html")

	r = env.do(t, fasthttp.MethodGet, "/app.js", "")
	assert.Equal(t, fasthttp.StatusOK, r.status)
	assert.Equal(t, "console.log('hi')", r.body)
	assert.Contains(t, r.contentType, "javascript")

	r = env.do(t, fasthttp.MethodGet, "/docs", "")
	assert.Equal(t, fasthttp.StatusOK, r.status)
	assert.Equal(t, "docs home", r.body)

	r = env.do(t, fasthttp.MethodGet, "/missing.css", "")
	assert.Equal(t, fasthttp.StatusNotFound, r.status)

	r = env.do(t, fasthttp.MethodGet, "/api/nothing", "")
	assert.Equal(t, fasthttp.StatusNotFound, r.status)

	r = env.do(t, fasthttp.MethodGet, "/../../etc/passwd", "")
	assert.Equal(t, fasthttp.StatusNotFound, r.status)
}

func TestServer_StaticFilesWithEscapedNames(t *testing.T) {
	env := newTestEnv(t)

	r := env.do(t, fasthttp.MethodGet, "/a%2541.txt", "")
	assert.Equal(t, fasthttp.StatusOK, r.status)
	assert.Equal(t, "percent", r.body)

	r = env.do(t, fasthttp.MethodGet, "/a%20b.txt", "")
	assert.Equal(t, fasthttp.StatusOK, r.status)
	assert.Equal(t, "space", r.body)

	// a%41.txt must not be read as aA.txt.
	r = env.do(t, fasthttp.MethodGet, "/aA.txt", "")
	assert.Equal(t, fasthttp.StatusNotFound, r.status)
	assert.JSONEq(t, `{"error":"not found"}`, r.body)
}

func TestServer_StaticFilesServeLatestContent(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(env.staticDir, "app.js")

	r := env.do(t, fasthttp.MethodGet, "/app.js", "")
	require.Equal(t, "console.log('hi')", r.body)

	require.NoError(t, os.WriteFile(path, []byte("console.log('updated')"), 0o644))
	r = env.do(t, fasthttp.MethodGet, "/app.js", "")
	assert.Equal(t, fasthttp.StatusOK, r.status)
	assert.Equal(t, "console.log('updated')", r.body)
}

func TestServer_WrongMethodOnRoute(t *testing.T) {
	env := newTestEnv(t)

	r := env.do(t, fasthttp.MethodGet, "/api/users", "")
	assert.Equal(t, fasthttp.StatusMethodNotAllowed, r.status)
}
