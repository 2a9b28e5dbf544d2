// Package router assembles the HTTP handler: middleware stack, health checks and the
// /v1 resource routes.
package router

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"libraryadmin/internal/book"
	"libraryadmin/internal/httpx"
	"libraryadmin/internal/lending"
	"libraryadmin/internal/student"
)

const readyTimeout = 500 * time.Millisecond

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers groups the resource handlers mounted under /v1.
type Handlers struct {
	Books    *book.HTTPHandler
	Students *student.HTTPHandler
	Lending  *lending.HTTPHandler
}

// Options configures the middleware stack.
type Options struct {
	CORSAllowedOrigins []string
	MaxBodyBytes       int64
	EnableHSTS         bool
	// RateLimiter is optional.
	RateLimiter *httpx.RateLimitMiddleware
}

// New builds the root handler.
func New(log *slog.Logger, store Pinger, h Handlers, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(httpx.RequestIDMiddleware)
	r.Use(httpx.AccessLogMiddleware(log))
	r.Use(httpx.RecoveryMiddleware(log))
	r.Use(httpx.SecurityHeadersMiddleware(opts.EnableHSTS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if opts.MaxBodyBytes > 0 {
		r.Use(httpx.RequestSizeLimitMiddleware(opts.MaxBodyBytes))
	}
	if opts.RateLimiter != nil {
		r.Use(opts.RateLimiter.Middleware)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			log.WarnContext(ctx, "readiness check failed", "error", err)
			http.Error(w, "store not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Route("/books", h.Books.Routes)
		r.Route("/students", h.Students.Routes)
		r.Route("/transactions", h.Lending.TransactionRoutes)
		r.Route("/fines", h.Lending.FineRoutes)
	})

	return r
}
