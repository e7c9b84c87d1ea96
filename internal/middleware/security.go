// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import "net/http"

// SecureHeaders adds security-related HTTP headers to every response.
// The backend serves JSON exclusively; responses must never render as a
// document, be framed, or be sniffed into something executable.
func SecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()

		// JSON stays JSON; never sniff the Content-Type.
		h.Set("X-Content-Type-Options", "nosniff")

		// API responses have no legitimate frame ancestor.
		h.Set("X-Frame-Options", "DENY")

		// If a browser is handed a response directly, nothing loads and
		// nothing embeds it.
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		// Control what information is sent in the Referer header.
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}
