// Package server собирает эталонный сервис анализа: HTTP API на chi
// и gRPC health-check рядом с ним.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/Jamolkhon5/clarifi/internal/ai/clarity/handler"
)

const (
	requestTimeout  = 60 * time.Second
	shutdownTimeout = 5 * time.Second
)

type Options struct {
	HTTPAddr       string
	GRPCAddr       string
	AllowedOrigins []string
}

type Server struct {
	opts   Options
	http   *http.Server
	grpc   *grpc.Server
	health *Health
	logger *zap.Logger
}

func New(opts Options, clarity *handler.ClarityHandler, logger *zap.Logger) *Server {
	health := NewHealth()
	grpcServer := grpc.NewServer()
	health.Register(grpcServer)

	return &Server{
		opts: opts,
		http: &http.Server{
			Addr:    opts.HTTPAddr,
			Handler: NewRouter(opts, clarity, logger),
		},
		grpc:   grpcServer,
		health: health,
		logger: logger,
	}
}

// NewRouter настраивает маршруты и middleware
func NewRouter(opts Options, clarity *handler.ClarityHandler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	clarity.RegisterRoutes(r)
	return r
}

// Run запускает HTTP и gRPC и блокируется до отмены ctx,
// после чего останавливает оба сервера.
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.opts.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen grpc %s: %w", s.opts.GRPCAddr, err)
	}

	errCh := make(chan error, 2)

	go func() {
		if err := s.grpc.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- fmt.Errorf("grpc serve: %w", err)
		}
	}()

	go func() {
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("listen: %w", err)
		}
	}()

	s.health.SetServing(true)
	s.logger.Info("analysis server started",
		zap.String("http", s.opts.HTTPAddr),
		zap.String("grpc", s.opts.GRPCAddr))

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	s.logger.Info("shutdown server ...")
	s.health.SetServing(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("server shutdown", zap.Error(err))
	}
	s.grpc.GracefulStop()

	s.logger.Info("server exiting")
	return runErr
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("request",
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
