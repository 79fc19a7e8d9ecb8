package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/neurobin-systems/neurobin/internal/capture"
)

// HandleUpload creates a session from a single uploaded image in one step:
// multipart file uploads and JSON requests carrying an image URL both land
// the new session in the preview state.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		h.handleURLUpload(w, r)
		return
	}

	h.handleFileUpload(w, r)
}

func (h *Handler) handleURLUpload(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ImageURL string `json:"image_url"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if request.ImageURL == "" {
		h.writeError(w, "image_url is required", http.StatusBadRequest)
		return
	}

	imageData, declaredType, err := h.downloadImageFromURL(request.ImageURL)
	if err != nil {
		h.writeError(w, "Failed to process image URL: "+err.Error(), http.StatusBadRequest)
		return
	}

	session := h.createSession()
	if err := session.SubmitImage(imageData, declaredType); err != nil {
		h.sessionStore.Delete(session.ID())
		h.writeError(w, err.Error(), statusForError(err))
		return
	}

	h.writeJSON(w, map[string]any{
		"session": session.Snapshot(),
		"message": "Successfully processed image from URL",
		"source":  "url",
	})
}

func (h *Handler) handleFileUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("files")
	if err != nil {
		file, header, err = r.FormFile("file")
		if err != nil {
			h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	defer file.Close()

	fileData, err := io.ReadAll(io.LimitReader(file, h.maxUpload))
	if err != nil {
		h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if int64(len(fileData)) >= h.maxUpload {
		h.writeError(w, fmt.Sprintf("File too large (max %dMB)", h.maxUpload/1024/1024), http.StatusBadRequest)
		return
	}

	session := h.createSession()
	if err := session.SubmitImage(fileData, header.Header.Get("Content-Type")); err != nil {
		h.sessionStore.Delete(session.ID())
		h.writeError(w, err.Error(), statusForError(err))
		return
	}

	h.writeJSON(w, map[string]any{
		"session": session.Snapshot(),
		"message": "Successfully uploaded 1 image",
	})
}

// handleSubmitImage attaches an image to an existing session. Accepts a
// multipart file or a JSON body with an image URL.
func (h *Handler) handleSubmitImage(w http.ResponseWriter, r *http.Request, session *capture.Session) {
	contentType := r.Header.Get("Content-Type")

	var imageData []byte
	var declaredType string

	if strings.Contains(contentType, "application/json") {
		var request struct {
			ImageURL string `json:"image_url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
		if request.ImageURL == "" {
			h.writeError(w, "image_url is required", http.StatusBadRequest)
			return
		}
		data, urlType, err := h.downloadImageFromURL(request.ImageURL)
		if err != nil {
			h.writeError(w, "Failed to process image URL: "+err.Error(), http.StatusBadRequest)
			return
		}
		imageData, declaredType = data, urlType
	} else {
		file, header, err := r.FormFile("files")
		if err != nil {
			file, header, err = r.FormFile("file")
			if err != nil {
				h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
				return
			}
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, h.maxUpload))
		if err != nil {
			h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if int64(len(data)) >= h.maxUpload {
			h.writeError(w, fmt.Sprintf("File too large (max %dMB)", h.maxUpload/1024/1024), http.StatusBadRequest)
			return
		}
		imageData, declaredType = data, header.Header.Get("Content-Type")
	}

	if err := session.SubmitImage(imageData, declaredType); err != nil {
		h.writeError(w, err.Error(), statusForError(err))
		return
	}

	h.writeSessionView(w, session)
}

func (h *Handler) downloadImageFromURL(imageURL string) ([]byte, string, error) {
	resp, err := http.Get(imageURL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(io.LimitReader(resp.Body, h.maxUpload))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, resp.Header.Get("Content-Type"), nil
}
