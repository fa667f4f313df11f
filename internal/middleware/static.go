package middleware

import (
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/valyala/fasthttp"
)

// Static serves files from a directory in front of the route table.
type Static struct {
	root   string
	index  string
	fs     fasthttp.RequestHandler
	logger *slog.Logger
}

// NewStatic creates a Static rooted at root. Directory requests resolve to index.
func NewStatic(root, index string, logger *slog.Logger) *Static {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	fs := &fasthttp.FS{
		Root:            root,
		IndexNames:      []string{index},
		AcceptByteRange: true,
		Compress:        false,
		// Resolve stats every request; the FS must not serve a stale handle.
		SkipCache: true,
	}
	return &Static{
		root:   root,
		index:  index,
		fs:     fs.NewRequestHandler(),
		logger: logger.With("component", "static"),
	}
}

// Wrap serves the requested file when it exists and delegates to next otherwise.
func (s *Static) Wrap(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		orig := string(ctx.Path())
		rel, ok := s.Resolve(orig)
		if !ok {
			next(ctx)
			return
		}
		s.logger.Debug("serving file", "path", orig, "file", rel)

		// Point the FS handler at the resolved file so directory requests
		// never depend on its own index handling. SetPath decodes its input,
		// so rel goes in escaped.
		ctx.Request.URI().SetPath((&url.URL{Path: rel}).EscapedPath())
		s.fs(ctx)
		ctx.Request.URI().SetPath((&url.URL{Path: orig}).EscapedPath())
	}
}

// Resolve maps a request path to a slash-separated path of an existing
// regular file under the root. Paths are cleaned first, so they cannot leave it.
func (s *Static) Resolve(reqPath string) (string, bool) {
	rel := path.Clean("/" + reqPath)
	full := filepath.Join(s.root, filepath.FromSlash(rel))

	info, err := os.Stat(full)
	if err == nil && info.IsDir() {
		rel = path.Join(rel, s.index)
		full = filepath.Join(full, s.index)
		info, err = os.Stat(full)
	}
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return rel, true
}
