package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	"guessingGame/internal/config"
	"guessingGame/internal/handlers"
	"guessingGame/internal/middleware"
	"guessingGame/repository"
)

// NewHandler builds the request chain: request log, then static files,
// then the API route table.
func NewHandler(static config.StaticConfig, users repository.UserRepositoryI, guesses repository.GuessRepositoryI, logger *slog.Logger) fasthttp.RequestHandler {
	uh := handlers.NewUserHandler(users, logger)
	gh := handlers.NewGuessHandler(users, guesses, logger)

	r := router.New()
	r.POST("/api/users", uh.CreateUser)
	r.POST("/api/guesses", gh.RecordGuess)
	r.NotFound = handlers.NotFound
	r.MethodNotAllowed = handlers.MethodNotAllowed

	files := middleware.NewStatic(static.Dir, static.Index, logger)
	return middleware.RequestLog(logger)(files.Wrap(r.Handler))
}

// Server wraps a fasthttp.Server.
type Server struct {
	srv    *fasthttp.Server
	logger *slog.Logger
}

func New(handler fasthttp.RequestHandler, logger *slog.Logger) *Server {
	logger = logger.With("component", "httpserver")
	return &Server{
		srv: &fasthttp.Server{
			Handler:      handler,
			Name:         "guessingGame",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  time.Minute,
			Logger:       slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		},
		logger: logger,
	}
}

// Serve accepts connections on lis until Shutdown is called.
func (s *Server) Serve(lis net.Listener) error {
	return s.srv.Serve(lis)
}

// Shutdown stops accepting connections and waits for open ones to finish or ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.ShutdownWithContext(ctx)
}

// Start listens on addr and serves in the background. It returns a shutdown function.
func Start(addr string, handler fasthttp.RequestHandler, logger *slog.Logger) (func(context.Context) error, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s := New(handler, logger)
	go func() {
		if err := s.Serve(lis); err != nil && !errors.Is(err, net.ErrClosed) {
			s.logger.Error("serve failed", "error", err)
		}
	}()
	return s.Shutdown, nil
}
