package api

import (
	"image"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/example/playtestshot/internal/apperr"
	"github.com/example/playtestshot/internal/dialog"
	"github.com/example/playtestshot/internal/session"
	"github.com/example/playtestshot/internal/tool"
)

// SessionHandler serves the annotation session routes.
type SessionHandler struct {
	sessions *session.Manager
}

type sessionResponse struct {
	ID      string         `json:"id"`
	Toolbar dialog.Toolbar `json:"toolbar"`
}

type openRequest struct {
	Source string `json:"source"`
}

type toolRequest struct {
	Tool  *string `json:"tool"`
	Size  *int    `json:"size"`
	Color *string `json:"color"`
}

type pointerRequest struct {
	Type string `json:"type"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

type keysRequest struct {
	Text     string `json:"text"`
	Key      string `json:"key"`
	Blur     bool   `json:"blur"`
	Shortcut string `json:"shortcut"`
	Ctrl     bool   `json:"ctrl"`
}

type saveRequest struct {
	Comment string `json:"comment"`
}

func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get session", err)
		return nil, false
	}
	return s, true
}

// do runs fn on the session and answers with its toolbar state.
func (h *SessionHandler) do(w http.ResponseWriter, r *http.Request, op string, fn func(*dialog.Shell) error) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	tb, err := s.Do(fn)
	if err != nil {
		writeError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: s.ID, Toolbar: tb})
}

// Open handles POST /api/sessions.
func (h *SessionHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Source) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("source is required"))
		return
	}
	s, err := h.sessions.Open(r.Context(), req.Source)
	if err != nil {
		writeError(w, "open session", err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{ID: s.ID, Toolbar: s.Toolbar()})
}

// Get handles GET /api/sessions/{id}.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: s.ID, Toolbar: s.Toolbar()})
}

// Cancel handles DELETE /api/sessions/{id}.
func (h *SessionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Cancel(chi.URLParam(r, "id")); err != nil {
		writeError(w, "cancel session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Tool handles POST /api/sessions/{id}/tool.
func (h *SessionHandler) Tool(w http.ResponseWriter, r *http.Request) {
	var req toolRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.do(w, r, "select tool", func(sh *dialog.Shell) error {
		c := sh.Controller()
		if req.Tool != nil {
			k, err := tool.ParseKind(*req.Tool)
			if err != nil {
				return err
			}
			if err := c.Select(k); err != nil {
				return err
			}
		}
		if req.Size != nil {
			c.SetBrushSize(*req.Size)
		}
		if req.Color != nil {
			return c.SetColorName(*req.Color)
		}
		return nil
	})
}

// Pointer handles POST /api/sessions/{id}/pointer. Coordinates are in
// canvas pixels.
func (h *SessionHandler) Pointer(w http.ResponseWriter, r *http.Request) {
	var req pointerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	pt := image.Pt(req.X, req.Y)
	h.do(w, r, "pointer", func(sh *dialog.Shell) error {
		c := sh.Controller()
		switch strings.ToLower(req.Type) {
		case "down":
			return c.PointerDown(pt)
		case "move":
			return c.PointerMove(pt)
		case "up":
			return c.PointerUp()
		}
		return apperr.ErrInvalidInput
	})
}

// Keys handles POST /api/sessions/{id}/keys.
func (h *SessionHandler) Keys(w http.ResponseWriter, r *http.Request) {
	var req keysRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.do(w, r, "keys", func(sh *dialog.Shell) error {
		c := sh.Controller()
		if req.Shortcut != "" {
			if utf8.RuneCountInString(req.Shortcut) != 1 {
				return apperr.ErrInvalidInput
			}
			rn, _ := utf8.DecodeRuneInString(req.Shortcut)
			if _, err := c.Shortcut(rn, req.Ctrl); err != nil {
				return err
			}
			return nil
		}
		if req.Text != "" {
			c.Type(req.Text)
		}
		if req.Key != "" {
			k, err := tool.ParseKey(req.Key)
			if err != nil {
				return err
			}
			if err := c.Key(k); err != nil {
				return err
			}
		}
		if req.Blur {
			return c.Blur()
		}
		return nil
	})
}

// Undo handles POST /api/sessions/{id}/undo.
func (h *SessionHandler) Undo(w http.ResponseWriter, r *http.Request) {
	h.do(w, r, "undo", (*dialog.Shell).Undo)
}

// Redo handles POST /api/sessions/{id}/redo.
func (h *SessionHandler) Redo(w http.ResponseWriter, r *http.Request) {
	h.do(w, r, "redo", (*dialog.Shell).Redo)
}

// Clear handles POST /api/sessions/{id}/clear.
func (h *SessionHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.do(w, r, "clear", (*dialog.Shell).Clear)
}

// Image handles GET /api/sessions/{id}/image.
func (h *SessionHandler) Image(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	art, err := s.Export()
	if err != nil {
		writeError(w, "export", err)
		return
	}
	writePNG(w, art.PNG)
}

// Save handles POST /api/sessions/{id}/save. The session is gone afterwards
// unless another save was already running.
func (h *SessionHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rec, err := h.sessions.Save(r.Context(), chi.URLParam(r, "id"), req.Comment)
	if err != nil {
		writeError(w, "save", err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// Events handles GET /api/sessions/{id}/events.
func (h *SessionHandler) Events(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Events().ServeHTTP(w, r)
}
