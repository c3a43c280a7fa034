// Package httpapp exposes the library pipelines over HTTP. Outcomes map to
// status codes here; the pipelines themselves know nothing about HTTP.
package httpapp

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/obelow/aria/internal/constants"
	"github.com/obelow/aria/internal/library"
	"github.com/obelow/aria/internal/logger"
)

type Handler struct {
	Library *library.Service
	Logger  *logger.Logger
}

func NewHandler(svc *library.Service, log *logger.Logger) *Handler {
	return &Handler{
		Library: svc,
		Logger:  log.WithComponent("http"),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	// Object store notification, not a user-facing route.
	r.Post("/hooks/object-created", h.ObjectCreated)

	r.Get("/api/songs", h.ListSongs)
	r.Post("/api/edit", h.EditSong)
	r.Delete("/api/songs/{id}", h.DeleteSong)
	r.Post("/api/songs/{id}/like", h.LikeSong)
	r.Post("/api/songs/{id}/play", h.PlaySong)
	r.Get("/api/uploads", h.ListUploads)

	r.Get("/health", h.Health)
}

// objectCreatedRequest is the notification payload the object store sends
// when an upload lands in the bucket.
type objectCreatedRequest struct {
	Key string `json:"key"`
}

func (h *Handler) ObjectCreated(w http.ResponseWriter, r *http.Request) {
	var req objectCreatedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Key == "" {
		http.Error(w, "invalid notification payload", http.StatusBadRequest)
		return
	}

	out := h.Library.HandleObjectCreated(r.Context(), req.Key)
	h.writeOutcome(w, out)
}

type editRequest struct {
	SongID string             `json:"songId"`
	Update library.SongUpdate `json:"update"`
}

func (h *Handler) EditSong(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	out := h.Library.Edit(r.Context(), bearerToken(r), req.SongID, req.Update)
	h.writeOutcome(w, out)
}

func (h *Handler) DeleteSong(w http.ResponseWriter, r *http.Request) {
	out := h.Library.Delete(r.Context(), bearerToken(r), chi.URLParam(r, "id"))
	h.writeOutcome(w, out)
}

type likeRequest struct {
	Liked bool `json:"liked"`
}

func (h *Handler) LikeSong(w http.ResponseWriter, r *http.Request) {
	var req likeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	out := h.Library.SetLiked(r.Context(), bearerToken(r), chi.URLParam(r, "id"), req.Liked)
	h.writeOutcome(w, out)
}

func (h *Handler) PlaySong(w http.ResponseWriter, r *http.Request) {
	out := h.Library.RecordPlay(r.Context(), bearerToken(r), chi.URLParam(r, "id"))
	h.writeOutcome(w, out)
}

func (h *Handler) ListSongs(w http.ResponseWriter, r *http.Request) {
	songs, out := h.Library.Songs(r.Context(), bearerToken(r))
	if out.Kind != library.KindSuccess {
		h.writeOutcome(w, out)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"songs": songs})
}

func (h *Handler) ListUploads(w http.ResponseWriter, r *http.Request) {
	actions, out := h.Library.UploadHistory(r.Context(), bearerToken(r))
	if out.Kind != library.KindSuccess {
		h.writeOutcome(w, out)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"uploads": actions})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.Library.Health(r.Context()); err != nil {
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unhealthy", "error": err.Error()})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "version": constants.Version})
}

// writeOutcome renders a pipeline outcome. Expected terminal states are 200
// with a typed body; only authentication distinguishes itself at the HTTP
// level.
func (h *Handler) writeOutcome(w http.ResponseWriter, out library.Outcome) {
	status := http.StatusOK
	if out.Kind == library.KindUnauthorized {
		status = http.StatusUnauthorized
	}
	h.writeJSON(w, status, out)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Logger.Error("failed to encode response", "error", err)
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	return strings.TrimPrefix(header, "Bearer ")
}
