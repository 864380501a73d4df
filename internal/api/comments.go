package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/example/playtestshot/internal/comments"
)

// CommentHandler serves submitted feedback.
type CommentHandler struct {
	svc *comments.Service
}

// List handles GET /api/comments, newest first.
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	records, err := h.svc.List(r.Context(), limit)
	if err != nil {
		writeError(w, "list comments", err)
		return
	}
	if records == nil {
		records = []comments.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"comments": records,
		"total":    len(records),
	})
}

// Get handles GET /api/comments/{id}.
func (h *CommentHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get comment", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Screenshot handles GET /api/comments/{id}/screenshot.
func (h *CommentHandler) Screenshot(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get comment", err)
		return
	}
	png, err := comments.ScreenshotPNG(rec)
	if err != nil {
		writeError(w, "decode screenshot", err)
		return
	}
	writePNG(w, png)
}
