package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/example/playtestshot/internal/comments"
	"github.com/example/playtestshot/internal/session"
)

// NewRouter mounts the health check and the /api routes. A non-empty token
// enables bearer auth on /api.
func NewRouter(sessions *session.Manager, svc *comments.Service, token string, logger *slog.Logger) chi.Router {
	if logger == nil {
		logger = slog.Default()
	}
	sh := &SessionHandler{sessions: sessions}
	ch := &CommentHandler{svc: svc}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": sessions.Len()})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(AuthMiddleware(token))

		r.Post("/sessions", sh.Open)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", sh.Get)
			r.Delete("/", sh.Cancel)
			r.Post("/tool", sh.Tool)
			r.Post("/pointer", sh.Pointer)
			r.Post("/keys", sh.Keys)
			r.Post("/undo", sh.Undo)
			r.Post("/redo", sh.Redo)
			r.Post("/clear", sh.Clear)
			r.Get("/image", sh.Image)
			r.Post("/save", sh.Save)
			r.Get("/events", sh.Events)
		})

		r.Get("/comments", ch.List)
		r.Get("/comments/{id}", ch.Get)
		r.Get("/comments/{id}/screenshot", ch.Screenshot)
	})
	return r
}
