package handlers

import (
	"net/http"
	"strings"

	"github.com/neurobin-systems/neurobin/internal/capture"
	"github.com/neurobin-systems/neurobin/internal/models"
)

// HandleSessions lists the live capture sessions or creates a new one.
func (h *Handler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		sessions := h.sessionStore.GetAll()
		sessionList := make([]capture.Snapshot, 0, len(sessions))
		for _, session := range sessions {
			sessionList = append(sessionList, session.Snapshot())
		}
		h.writeJSON(w, sessionList)
	case "POST":
		session := h.createSession()
		h.writeJSON(w, session.Snapshot())
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleSessionDetail routes /api/sessions/{id} and its action subpaths.
func (h *Handler) HandleSessionDetail(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	sessionID, action, _ := strings.Cut(rest, "/")

	session, ok := h.getSessionOrError(w, sessionID)
	if !ok {
		return
	}

	if action == "" {
		switch r.Method {
		case "GET":
			h.writeSessionView(w, session)
		case "DELETE":
			h.sessionStore.Delete(sessionID)
			h.writeJSON(w, map[string]any{"deleted": sessionID})
		default:
			h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch action {
	case "image":
		h.handleSubmitImage(w, r, session)
	case "camera/start":
		h.handleCameraStart(w, r, session)
	case "camera/capture":
		h.handleCameraCapture(w, r, session)
	case "camera/stop":
		session.StopCamera()
		h.writeSessionView(w, session)
	case "classify":
		h.handleClassify(w, r, session)
	case "reset":
		session.Reset()
		h.writeSessionView(w, session)
	default:
		h.writeError(w, "Unknown session action: "+action, http.StatusNotFound)
	}
}

func (h *Handler) handleCameraStart(w http.ResponseWriter, r *http.Request, session *capture.Session) {
	opener := h.opener
	if opener == nil {
		opener = capture.NoCameraOpener()
	}
	if err := session.StartCamera(r.Context(), opener); err != nil {
		h.writeError(w, err.Error(), statusForError(err))
		return
	}
	h.writeSessionView(w, session)
}

func (h *Handler) handleCameraCapture(w http.ResponseWriter, r *http.Request, session *capture.Session) {
	if err := session.Capture(r.Context()); err != nil {
		h.writeError(w, err.Error(), statusForError(err))
		return
	}
	h.writeSessionView(w, session)
}

func (h *Handler) handleClassify(w http.ResponseWriter, r *http.Request, session *capture.Session) {
	result, err := session.Classify(r.Context(), h.classifier)
	if err != nil {
		h.writeError(w, err.Error(), statusForError(err))
		return
	}

	h.writeJSON(w, map[string]any{
		"session": session.Snapshot(),
		"result":  result,
		"view":    models.NewResultView(result),
	})
}

func (h *Handler) writeSessionView(w http.ResponseWriter, session *capture.Session) {
	snap := session.Snapshot()
	response := map[string]any{"session": snap}
	if snap.Result != nil {
		response["view"] = models.NewResultView(snap.Result)
	}
	h.writeJSON(w, response)
}

// HandleCategories serves the six-category guidance table.
func (h *Handler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, models.CategoryList())
}
