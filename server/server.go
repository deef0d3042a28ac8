// Copyright 2025 Alan Matykiewicz
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to use,
// copy, modify, merge, publish, distribute, sublicense, and/or sell copies of the
// Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
// EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES
// OF MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND
// NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT
// HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY,
// WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR
// OTHER DEALINGS IN THE SOFTWARE.

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/alan-mat/responseflow/internal/provider"
)

type ServerConfig struct {
	ListenHost string
	ListenPort int

	ShutdownTimeout time.Duration
}

func DefaultConfig() ServerConfig {
	return ServerConfig{
		ListenPort:      3000,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Server exposes the unary and streaming chat relays over HTTP.
type Server struct {
	config ServerConfig

	provider provider.LMProvider
	router   http.Handler
}

func New(config ServerConfig, p provider.LMProvider) *Server {
	s := &Server{
		config:   config,
		provider: p,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Recover)
	r.Use(AccessLog)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", s.Chat)
		r.Post("/chat-stream", s.ChatStream)
		r.Options("/chat-stream", s.ChatStreamPreflight)
	})

	return r
}

// Handler returns the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve listens until ctx is done and then shuts down gracefully,
// letting in-flight streams finish within the shutdown timeout.
func (s *Server) Serve(ctx context.Context) error {
	lisAddr := fmt.Sprintf("%s:%d", s.config.ListenHost, s.config.ListenPort)
	srv := &http.Server{
		Addr:              lisAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "listener", lisAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			slog.Error("failed to serve", "err", err)
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
