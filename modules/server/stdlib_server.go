// Copyright 2025 Nhat-Nguyen Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"
)

const (
	defaultTimeout     = 10 * time.Second
	defaultDrainPeriod = 10 * time.Second
)

type (
	Server struct {
		server *http.Server
		mux    *http.ServeMux
		host   string
		port   uint16

		drain time.Duration

		// applied around the mux, first is outermost
		middlewares []func(http.Handler) http.Handler

		// services mount routes and may add middlewares of their own
		services []RegistrableService
	}

	ServerOptions func(*Server)
)

func WithWriteTimeout(t time.Duration) ServerOptions {
	return func(s *Server) {
		if t > 0 {
			s.server.WriteTimeout = t
		}
	}
}

func WithReadTimeout(t time.Duration) ServerOptions {
	return func(s *Server) {
		if t > 0 {
			s.server.ReadTimeout = t
			s.server.ReadHeaderTimeout = t
		}
	}
}

// WithDrainPeriod bounds how long Run waits for in-flight requests on shutdown.
func WithDrainPeriod(d time.Duration) ServerOptions {
	return func(s *Server) {
		if d > 0 {
			s.drain = d
		}
	}
}

// WithMux serves routes on mux instead of a private one, so the caller can
// resolve route patterns against it.
func WithMux(mux *http.ServeMux) ServerOptions {
	return func(s *Server) {
		if mux != nil {
			s.mux = mux
		}
	}
}

func WithServices(svcs ...RegistrableService) ServerOptions {
	return func(s *Server) {
		s.services = append(s.services, svcs...)
	}
}

// WithGlobalMiddlewares wraps the whole mux. The first middleware given is
// the outermost one.
func WithGlobalMiddlewares(mw ...func(http.Handler) http.Handler) ServerOptions {
	return func(s *Server) {
		for _, m := range mw {
			if m != nil {
				s.middlewares = append(s.middlewares, m)
			}
		}
	}
}

// Example usage:
//
//	srv, _ := server.New("0.0.0.0", 3000, server.WithServices(profiles))
func New(host string, port uint16, opts ...ServerOptions) (*Server, error) {
	if host == "" {
		slog.Warn("empty host, binding to all interfaces")
		host = "0.0.0.0"
	}
	if port == 0 {
		return nil, errors.New("server: port must not be 0")
	}

	s := &Server{
		host:  host,
		port:  port,
		mux:   http.NewServeMux(),
		drain: defaultDrainPeriod,
		server: &http.Server{
			Addr:              net.JoinHostPort(host, strconv.Itoa(int(port))),
			ReadTimeout:       defaultTimeout,
			ReadHeaderTimeout: defaultTimeout,
			WriteTimeout:      defaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	for _, svc := range s.services {
		svc.Register(s.mux)
		s.middlewares = append(s.middlewares, svc.Middlewares()...)
		slog.Info("registered service", slog.String("type", fmt.Sprintf("%T", svc)))
	}

	handler := http.Handler(s.mux)
	for i := len(s.middlewares) - 1; i >= 0; i-- {
		handler = s.middlewares[i](handler)
	}
	s.server.Handler = handler

	return s, nil
}

// Handler is the composed middleware chain and mux.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.server.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then drains
// in-flight requests. It returns nil after a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "started server", slog.String("addr", ln.Addr().String()))
		errCh <- s.server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	slog.InfoContext(ctx, "shutting down", slog.Duration("drain", s.drain))
	dCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.drain)
	defer cancel()

	if err := s.server.Shutdown(dCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
