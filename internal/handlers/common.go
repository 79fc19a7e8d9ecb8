package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/neurobin-systems/neurobin/internal/capture"
	"github.com/neurobin-systems/neurobin/internal/classify"
	"github.com/neurobin-systems/neurobin/internal/config"
	"github.com/neurobin-systems/neurobin/internal/imaging"
	"github.com/neurobin-systems/neurobin/internal/storage"
)

type Handler struct {
	sessionStore *storage.SessionStore
	classifier   capture.Classifier
	opener       capture.FrameSourceOpener
	normalizer   *imaging.Normalizer
	maxUpload    int64
	staticDir    string
}

// New builds the HTTP handler set. The frame source opener may be nil when
// the deployment has no camera attached; camera start requests then fail
// with a camera access error.
func New(cfg *config.Config, classifier capture.Classifier, opener capture.FrameSourceOpener) *Handler {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Handler{
		sessionStore: storage.New(),
		classifier:   classifier,
		opener:       opener,
		normalizer:   cfg.Normalizer(),
		maxUpload:    cfg.MaxUploadBytes,
		staticDir:    cfg.StaticDir,
	}
}

// Store exposes the session store for shutdown cleanup.
func (h *Handler) Store() *storage.SessionStore {
	return h.sessionStore
}

func (h *Handler) createSession() *capture.Session {
	session := capture.NewSession(uuid.NewString(), h.normalizer)
	h.sessionStore.Set(session.ID(), session)
	return session
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

// Session helpers
func (h *Handler) getSessionOrError(w http.ResponseWriter, sessionID string) (*capture.Session, bool) {
	session, exists := h.sessionStore.Get(sessionID)
	if !exists {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return session, true
}

// statusForError maps the flow's error taxonomy to HTTP status codes.
func statusForError(err error) int {
	var validationErr *imaging.ValidationError
	var processingErr *imaging.ProcessingError
	var cameraErr *capture.CameraAccessError
	var stateErr *capture.InvalidStateError
	var classErr *classify.ClassificationError

	switch {
	case errors.As(err, &validationErr), errors.As(err, &processingErr):
		return http.StatusBadRequest
	case errors.Is(err, capture.ErrMissingImage):
		return http.StatusBadRequest
	case errors.Is(err, capture.ErrClassificationPending), errors.Is(err, capture.ErrSessionChanged):
		return http.StatusConflict
	case errors.As(err, &stateErr):
		return http.StatusConflict
	case errors.As(err, &cameraErr):
		return http.StatusServiceUnavailable
	case errors.As(err, &classErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
