package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates and returns a configured Chi router wired to h.
// apiKey, when non-empty, gates every /api route behind an x-api-key
// header check.
func NewRouter(h *Handler, apiKey string) http.Handler {
	r := chi.NewRouter()

	// ── Global middleware ─────────────────────────────────────────────────────
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	// ── Health check and metrics, unauthenticated ─────────────────────────────
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ok(w, map[string]string{"status": "ok", "service": "upishield"})
	})
	r.Handle("/metrics", promhttp.Handler())

	// ── API ────────────────────────────────────────────────────────────────────
	r.Route("/api", func(r chi.Router) {
		r.Use(requireAPIKey(apiKey))

		r.Route("/upi", func(r chi.Router) {
			r.Post("/scan", h.ScanMessage)
			r.Post("/scan-qr", h.ScanQR)
			r.Post("/validate-transaction", h.ValidateTransaction)
		})

		r.Route("/chat", func(r chi.Router) {
			r.Post("/send", h.ChatSend)
			r.Post("/victim-reply", h.ChatVictimReply)
			r.Get("/session/{sessionId}", h.ChatSession)
		})

		r.Route("/honeypot", func(r chi.Router) {
			r.Post("/", h.Honeypot)
			r.Route("/session/{sessionId}", func(r chi.Router) {
				r.Get("/", h.HoneypotSession)
				r.Delete("/", h.HoneypotSessionDelete)
				r.Post("/callback", h.HoneypotCallback)
			})
		})
	})

	return r
}

// requireAPIKey enforces the x-api-key header against key. An empty key
// disables auth entirely, matching local/dev configurations that leave
// API_KEY unset.
func requireAPIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if key == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get("x-api-key")
			if got == "" {
				unauthorized(w, "missing x-api-key header")
				return
			}
			if got != key {
				forbidden(w, "invalid x-api-key header")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger is a minimal structured-logging middleware.
// It replaces chi's default Logger to emit slog records.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.Info("http",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
