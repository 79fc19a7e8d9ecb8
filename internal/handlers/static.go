package handlers

import (
	"log/slog"
	"net/http"
	"path"
	"strings"
)

// HandleStatic serves the single-page frontend and its assets. A request with
// an ?image= query parameter creates a session preloaded from that URL and
// redirects to the page with the session id attached.
func (h *Handler) HandleStatic(w http.ResponseWriter, r *http.Request) {
	filepath := strings.TrimPrefix(r.URL.Path, "/")
	if filepath == "" {
		filepath = "index.html"
	}

	imageURL := r.URL.Query().Get("image")
	if imageURL != "" {
		imageData, declaredType, err := h.downloadImageFromURL(imageURL)
		if err != nil {
			slog.Error("Failed to create session from URL", "url", imageURL, "err", err)
			http.Error(w, "Failed to process image URL: "+err.Error(), http.StatusBadRequest)
			return
		}
		session := h.createSession()
		if err := session.SubmitImage(imageData, declaredType); err != nil {
			h.sessionStore.Delete(session.ID())
			http.Error(w, err.Error(), statusForError(err))
			return
		}
		http.Redirect(w, r, "/?session="+session.ID(), http.StatusFound)
		return
	}

	// Prevent directory traversal attacks
	if strings.Contains(filepath, "..") {
		http.Error(w, "Invalid file path", http.StatusBadRequest)
		return
	}

	switch {
	case strings.HasSuffix(filepath, ".css"):
		w.Header().Set("Content-Type", "text/css")
	case strings.HasSuffix(filepath, ".js"):
		w.Header().Set("Content-Type", "application/javascript")
	case strings.HasSuffix(filepath, ".html"):
		w.Header().Set("Content-Type", "text/html")
	}

	http.ServeFile(w, r, path.Join(h.staticDir, filepath))
}
