// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up the JSON API routes and middleware chains for the
// AgriRise server. It organizes routes into public and admin groups with
// appropriate middleware stacks.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"agririse/internal/handlers"
	"agririse/internal/middleware"
	"agririse/internal/session"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. secure controls cookie flags and should be
// true everywhere except local development. loginLimiter throttles the
// login endpoint per client IP; the caller owns its lifecycle.
func New(sessionStore *session.Store, admin *handlers.Admin, auth *handlers.Auth, public *handlers.Public, loginLimiter *middleware.RateLimiter, secure bool) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(sessionStore))

	// Health check. No auth, no CSRF.
	r.Get("/health", healthHandler)

	// Public feed, cached in Valkey.
	r.Route("/api/posts", func(r chi.Router) {
		r.Get("/", public.Index)
		r.Get("/{slug}", public.Show)
	})

	// Admin API. Everything below carries CSRF protection; the login
	// endpoint is additionally rate limited per client IP.
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.CSRF(secure))

		r.With(loginLimiter.Middleware).Post("/login", auth.Login)
		r.Get("/session", auth.Session)
		r.Post("/logout", auth.Logout)

		// 2FA requires auth but NOT a completed second factor.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/2fa/setup", auth.TwoFASetup)
			r.Post("/2fa/verify", auth.TwoFAVerify)
		})

		// Authenticated and 2FA-verified admin area.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)

			r.Route("/posts", func(r chi.Router) {
				r.Get("/", admin.PostsList)
				r.Post("/", admin.PostCreate)
				r.Get("/{id}", admin.PostGet)
				r.Put("/{id}", admin.PostUpdate)
				r.Delete("/{id}", admin.PostDelete)
				r.Delete("/{id}/images/{imageID}", admin.GalleryImageDelete)
			})

			r.Post("/preview", admin.Preview)
			r.Post("/cache/clear", admin.CacheClear)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
